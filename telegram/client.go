package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const defaultAPIBase = "https://api.telegram.org"

// Update is one inbound event from the Bot API long-poll.
type Update struct {
	UpdateID int64          `json:"update_id"`
	Message  *Message       `json:"message,omitempty"`
	Callback *CallbackQuery `json:"callback_query,omitempty"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	From      *Actor `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text,omitempty"`
}

type CallbackQuery struct {
	ID   string `json:"id"`
	From Actor  `json:"from"`
	Data string `json:"data,omitempty"`
}

type Actor struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name,omitempty"`
}

type Chat struct {
	ID int64 `json:"id"`
}

// InlineKeyboard mirrors the Bot API reply_markup structure.
type InlineKeyboard struct {
	Rows [][]InlineButton `json:"inline_keyboard"`
}

type InlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

// Client is a thin Bot API adapter. It owns the token and nothing else;
// what to say and when is the engine's business.
type Client struct {
	apiBase string
	token   string
	http    *http.Client
	log     *slog.Logger
}

func NewClient(token string, timeout time.Duration, log *slog.Logger) *Client {
	return &Client{
		apiBase: defaultAPIBase,
		token:   token,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// WithAPIBase overrides the Bot API host, used by tests and local relays.
func (c *Client) WithAPIBase(base string) *Client {
	c.apiBase = base
	return c
}

type sendMessageRequest struct {
	ChatID      int64           `json:"chat_id"`
	Text        string          `json:"text"`
	ParseMode   string          `json:"parse_mode,omitempty"`
	ReplyMarkup *InlineKeyboard `json:"reply_markup,omitempty"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

// Send delivers one message. A non-ok answer is returned as an error so the
// caller can decide whether the failure matters; pushes swallow it, replies log it.
func (c *Client) Send(ctx context.Context, msg OutboundMessage) error {
	payload := sendMessageRequest{
		ChatID:      int64(msg.ChatID),
		Text:        msg.Text,
		ParseMode:   string(msg.ParseMode),
		ReplyMarkup: msg.Keyboard,
	}
	_, err := c.post(ctx, "sendMessage", payload)
	return err
}

// AnswerCallback acknowledges a callback query so the client stops its spinner.
func (c *Client) AnswerCallback(ctx context.Context, callbackID string) error {
	_, err := c.post(ctx, "answerCallbackQuery", map[string]string{"callback_query_id": callbackID})
	return err
}

type getUpdatesRequest struct {
	Offset  int64 `json:"offset,omitempty"`
	Timeout int   `json:"timeout,omitempty"`
}

// GetUpdates long-polls the Bot API. pollTimeout is in seconds, per the API.
func (c *Client) GetUpdates(ctx context.Context, offset int64, pollTimeout int) ([]Update, error) {
	raw, err := c.post(ctx, "getUpdates", getUpdatesRequest{Offset: offset, Timeout: pollTimeout})
	if err != nil {
		return nil, err
	}

	var updates []Update
	if err := json.Unmarshal(raw, &updates); err != nil {
		return nil, fmt.Errorf("decoding updates: %w", err)
	}
	return updates, nil
}

func (c *Client) post(ctx context.Context, method string, payload any) (json.RawMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.apiBase, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	var decoded apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("telegram %s: decoding response: %w", method, err)
	}
	if !decoded.OK {
		return nil, fmt.Errorf("telegram %s: %s", method, decoded.Description)
	}
	return decoded.Result, nil
}
