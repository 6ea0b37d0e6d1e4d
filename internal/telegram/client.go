package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Client is a minimal Telegram Bot API client covering the calls
// the dispatch core needs
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient creates a new Telegram client
func NewClient(token string) *Client {
	return &Client{
		token:   token,
		baseURL: "https://api.telegram.org",
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type apiResponse[T any] struct {
	Ok          bool   `json:"ok"`
	Result      T      `json:"result"`
	Description string `json:"description"`
}

// SendMessage sends a text message to a chat; markup may be an
// *InlineKeyboardMarkup, *ReplyKeyboardMarkup, *ReplyKeyboardRemove or nil.
// Returns the message id of the sent message.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, markup any) (int64, error) {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	if markup != nil {
		payload["reply_markup"] = markup
	}
	var res apiResponse[Message]
	if err := c.call(ctx, "sendMessage", payload, &res); err != nil {
		return 0, err
	}
	return res.Result.MessageID, nil
}

// EditMessageText edits a previously sent message in place
func (c *Client) EditMessageText(ctx context.Context, chatID, messageID int64, text string, markup *InlineKeyboardMarkup) error {
	payload := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
	}
	if markup != nil {
		payload["reply_markup"] = markup
	}
	var res apiResponse[json.RawMessage]
	return c.call(ctx, "editMessageText", payload, &res)
}

// AnswerCallbackQuery acknowledges a button press so the client stops
// showing a progress indicator
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID, text string) error {
	payload := map[string]any{
		"callback_query_id": callbackID,
	}
	if text != "" {
		payload["text"] = text
	}
	var res apiResponse[bool]
	return c.call(ctx, "answerCallbackQuery", payload, &res)
}

// GetFileURL resolves a file id to a durable download URL
func (c *Client) GetFileURL(ctx context.Context, fileID string) (string, error) {
	payload := map[string]any{"file_id": fileID}
	var res apiResponse[File]
	if err := c.call(ctx, "getFile", payload, &res); err != nil {
		return "", err
	}
	if res.Result.FilePath == "" {
		return "", errors.New("getFile returned no file path")
	}
	return fmt.Sprintf("%s/file/bot%s/%s", c.baseURL, c.token, res.Result.FilePath), nil
}

func (c *Client) call(ctx context.Context, method string, payload any, out interface{ ok() (bool, string) }) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", method, err)
	}
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method),
		bytes.NewReader(body),
	)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s request failed: %w", method, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("telegram %s http status: %s", method, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if okFlag, desc := out.ok(); !okFlag {
		return fmt.Errorf("telegram %s: %s", method, desc)
	}
	return nil
}

func (r *apiResponse[T]) ok() (bool, string) {
	return r.Ok, r.Description
}
