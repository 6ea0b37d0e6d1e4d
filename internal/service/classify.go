package service

import (
	"github.com/fieldops/dispatch-backend-go/internal/telegram"
)

// Event is the classified form of one inbound update. Exactly one
// concrete type matches each update; nil means the update is not
// something the dispatch core handles and must be acknowledged as a no-op.
type Event interface {
	isEvent()
}

// CallbackEvent is an inline-keyboard button press
type CallbackEvent struct {
	CallbackID string
	ChatID     int64
	MessageID  int64
	Data       string
}

// TextEvent is a free-text chat message
type TextEvent struct {
	ChatID int64
	Text   string
}

// LocationEvent is a one-shot location share (Live=false) or a
// live-location ping delivered via edited_message (Live=true)
type LocationEvent struct {
	ChatID   int64
	Location telegram.Location
	Live     bool
}

// PhotoEvent is a photo upload with its size-ordered variants
type PhotoEvent struct {
	ChatID  int64
	Photos  []telegram.PhotoSize
	Caption string
}

func (*CallbackEvent) isEvent() {}
func (*TextEvent) isEvent()     {}
func (*LocationEvent) isEvent() {}
func (*PhotoEvent) isEvent()    {}

// Classify routes an inbound update to exactly one event branch.
// It performs no side effects.
func Classify(upd telegram.Update) Event {
	switch {
	case upd.CallbackQuery != nil:
		cq := upd.CallbackQuery
		ev := &CallbackEvent{CallbackID: cq.ID, Data: cq.Data}
		if cq.Message != nil {
			ev.ChatID = cq.Message.Chat.ID
			ev.MessageID = cq.Message.MessageID
		}
		return ev

	case upd.EditedMessage != nil && upd.EditedMessage.Location != nil:
		return &LocationEvent{
			ChatID:   upd.EditedMessage.Chat.ID,
			Location: *upd.EditedMessage.Location,
			Live:     true,
		}

	case upd.Message != nil && upd.Message.Location != nil:
		return &LocationEvent{
			ChatID:   upd.Message.Chat.ID,
			Location: *upd.Message.Location,
		}

	case upd.Message != nil && len(upd.Message.Photo) > 0:
		return &PhotoEvent{
			ChatID:  upd.Message.Chat.ID,
			Photos:  upd.Message.Photo,
			Caption: upd.Message.Caption,
		}

	case upd.Message != nil && upd.Message.Text != "":
		return &TextEvent{
			ChatID: upd.Message.Chat.ID,
			Text:   upd.Message.Text,
		}
	}

	return nil
}
