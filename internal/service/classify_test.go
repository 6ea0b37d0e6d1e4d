package service

import (
	"testing"

	"github.com/fieldops/dispatch-backend-go/internal/telegram"
)

func TestClassifyCallback(t *testing.T) {
	upd := telegram.Update{
		CallbackQuery: &telegram.CallbackQuery{
			ID:   "cb-1",
			Data: "task_start_42",
			Message: &telegram.Message{
				MessageID: 7,
				Chat:      telegram.Chat{ID: 100},
			},
		},
	}

	ev, ok := Classify(upd).(*CallbackEvent)
	if !ok {
		t.Fatalf("expected CallbackEvent, got %T", Classify(upd))
	}
	if ev.CallbackID != "cb-1" || ev.Data != "task_start_42" || ev.ChatID != 100 || ev.MessageID != 7 {
		t.Fatalf("unexpected callback event: %+v", ev)
	}
}

func TestClassifyText(t *testing.T) {
	upd := telegram.Update{
		Message: &telegram.Message{Chat: telegram.Chat{ID: 100}, Text: "done"},
	}
	ev, ok := Classify(upd).(*TextEvent)
	if !ok || ev.ChatID != 100 || ev.Text != "done" {
		t.Fatalf("expected text event for chat 100, got %#v", Classify(upd))
	}
}

func TestClassifyOneShotLocation(t *testing.T) {
	upd := telegram.Update{
		Message: &telegram.Message{
			Chat:     telegram.Chat{ID: 100},
			Location: &telegram.Location{Latitude: 1, Longitude: 2},
		},
	}
	ev, ok := Classify(upd).(*LocationEvent)
	if !ok || ev.Live {
		t.Fatalf("expected one-shot location event, got %#v", Classify(upd))
	}
}

func TestClassifyLiveLocation(t *testing.T) {
	upd := telegram.Update{
		EditedMessage: &telegram.Message{
			Chat:     telegram.Chat{ID: 100},
			Location: &telegram.Location{Latitude: 1, Longitude: 2},
		},
	}
	ev, ok := Classify(upd).(*LocationEvent)
	if !ok || !ev.Live {
		t.Fatalf("expected live location event, got %#v", Classify(upd))
	}
}

func TestClassifyPhoto(t *testing.T) {
	upd := telegram.Update{
		Message: &telegram.Message{
			Chat:    telegram.Chat{ID: 100},
			Photo:   []telegram.PhotoSize{{FileID: "small"}, {FileID: "big"}},
			Caption: "before",
		},
	}
	ev, ok := Classify(upd).(*PhotoEvent)
	if !ok || len(ev.Photos) != 2 || ev.Caption != "before" {
		t.Fatalf("expected photo event, got %#v", Classify(upd))
	}
}

func TestClassifyUnrecognized(t *testing.T) {
	if ev := Classify(telegram.Update{}); ev != nil {
		t.Fatalf("expected nil for empty update, got %#v", ev)
	}
	// edited message without a location is not a live ping
	upd := telegram.Update{EditedMessage: &telegram.Message{Chat: telegram.Chat{ID: 1}, Text: "edited"}}
	if ev := Classify(upd); ev != nil {
		t.Fatalf("expected nil for edited text, got %#v", ev)
	}
}
