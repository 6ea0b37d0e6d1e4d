package telegram

import "fmt"

// InlineKeyboardMarkup renders buttons under a message
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// InlineKeyboardButton is one inline button; Data is returned verbatim
// in the callback query when pressed
type InlineKeyboardButton struct {
	Text string `json:"text"`
	Data string `json:"callback_data"`
}

// ReplyKeyboardMarkup renders a custom reply keyboard
type ReplyKeyboardMarkup struct {
	Keyboard        [][]KeyboardButton `json:"keyboard"`
	ResizeKeyboard  bool               `json:"resize_keyboard,omitempty"`
	OneTimeKeyboard bool               `json:"one_time_keyboard,omitempty"`
}

// KeyboardButton is one reply-keyboard button
type KeyboardButton struct {
	Text            string `json:"text"`
	RequestLocation bool   `json:"request_location,omitempty"`
}

// ReplyKeyboardRemove removes a previously sent reply keyboard
type ReplyKeyboardRemove struct {
	RemoveKeyboard bool `json:"remove_keyboard"`
}

// TaskActionKeyboard builds the start/done/problem inline keyboard for a task
func TaskActionKeyboard(taskID int64) *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{
			{
				{Text: "▶️ Start", Data: fmt.Sprintf("task_start_%d", taskID)},
				{Text: "✅ Done", Data: fmt.Sprintf("task_done_%d", taskID)},
			},
			{
				{Text: "⚠️ Problem", Data: fmt.Sprintf("task_problem_%d", taskID)},
			},
		},
	}
}

// LocationRequestKeyboard builds the reply keyboard asking the worker to share location
func LocationRequestKeyboard() *ReplyKeyboardMarkup {
	return &ReplyKeyboardMarkup{
		Keyboard: [][]KeyboardButton{
			{{Text: "📍 Share location", RequestLocation: true}},
			{{Text: "Skip location"}},
		},
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}
}

// RemoveKeyboard removes the reply keyboard from the chat
func RemoveKeyboard() *ReplyKeyboardRemove {
	return &ReplyKeyboardRemove{RemoveKeyboard: true}
}
