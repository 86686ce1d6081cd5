//go:generate go run go.uber.org/mock/mockgen -source=transport.go -destination=../mocks/mock_transport.go -package=mocks
package telegram

import (
	"context"

	"task-bot/domain"
)

// ParseMode selects the rich-text markers of an outbound message.
type ParseMode string

const (
	ParseModeNone ParseMode = ""
	ParseModeHTML ParseMode = "HTML"
)

// OutboundMessage is a single reply or push to a chat user. It is ephemeral:
// delivery is best-effort, at-most-once, with no retry state kept.
type OutboundMessage struct {
	ChatID    domain.ChatID
	Text      string
	ParseMode ParseMode
	Keyboard  *InlineKeyboard
}

// ITransport delivers messages to the user's chat client.
type ITransport interface {
	Send(ctx context.Context, msg OutboundMessage) error
	AnswerCallback(ctx context.Context, callbackID string) error
}
