//go:generate go run go.uber.org/mock/mockgen -source=dispatcher.go -destination=../mocks/mock_dispatcher.go -package=mocks
package notify

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"task-bot/domain"
	"task-bot/moderation"
	"task-bot/telegram"
)

// IDispatcher is the post-commit hook contract: the backend reports a durably
// committed task mutation, the dispatcher pushes a chat notification for it.
type IDispatcher interface {
	OnTaskMutated(ctx context.Context, mutation domain.TaskMutation)
}

// Dispatcher formats and delivers task-mutation notifications. Delivery is
// best-effort, at-most-once: a failed push is logged and never surfaces to
// the actor whose mutation triggered it.
type Dispatcher struct {
	transport telegram.ITransport
	moderator *moderation.Moderator
	log       *slog.Logger
}

func NewDispatcher(transport telegram.ITransport, moderator *moderation.Moderator, log *slog.Logger) *Dispatcher {
	return &Dispatcher{transport: transport, moderator: moderator, log: log}
}

// OnTaskMutated resolves the owner's chat identity and pushes one message.
// Users without a linked chat identity are skipped silently: chat delivery
// is optional and its absence is not an error.
func (d *Dispatcher) OnTaskMutated(ctx context.Context, mutation domain.TaskMutation) {
	if mutation.User.TelegramID == nil {
		d.log.Debug("no chat identity linked, skipping notification",
			"kind", mutation.Kind, "task_id", mutation.Task.ID, "username", mutation.User.Username)
		return
	}

	text, ok := d.format(mutation)
	if !ok {
		return
	}

	deliveryID := uuid.New()
	chatID := *mutation.User.TelegramID

	err := d.transport.Send(ctx, telegram.OutboundMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: telegram.ParseModeHTML,
	})
	if err != nil {
		d.log.Warn("notification delivery failed",
			"delivery_id", deliveryID, "chat_id", chatID, "kind", mutation.Kind, "err", err)
		return
	}

	d.log.Info("notification delivered",
		"delivery_id", deliveryID, "chat_id", chatID, "kind", mutation.Kind, "task_id", mutation.Task.ID)
}

func (d *Dispatcher) format(mutation domain.TaskMutation) (string, bool) {
	switch mutation.Kind {
	case domain.MutationCreated:
		return d.formatCreated(mutation.Task), true
	case domain.MutationUpdated:
		if mutation.Change == nil {
			d.log.Error("update mutation without a field change", "task_id", mutation.Task.ID)
			return "", false
		}
		return d.formatUpdated(*mutation.Change), true
	case domain.MutationDeleted:
		return fmt.Sprintf("🗑 Task deleted: %s", d.clean(mutation.Task.Title)), true
	default:
		d.log.Error("unknown mutation kind", "kind", mutation.Kind)
		return "", false
	}
}

func (d *Dispatcher) formatCreated(task domain.Task) string {
	var b strings.Builder
	b.WriteString("✅ <b>New task created!</b>\n\n")
	fmt.Fprintf(&b, "📌 %s\n", d.clean(task.Title))
	if task.Description != "" {
		fmt.Fprintf(&b, "📝 %s\n", d.clean(task.Description))
	}
	fmt.Fprintf(&b, "📅 Due: %s", domain.FormatDeadline(task.Deadline))
	return b.String()
}

// formatUpdated shows the raw field identifier and the post-coercion value,
// so "is_completed" reads true/false and dates read DD.MM.YYYY.
func (d *Dispatcher) formatUpdated(change domain.FieldChange) string {
	value := change.ValueString()
	if change.Field == domain.FieldTitle || change.Field == domain.FieldDescription {
		value = d.clean(value)
	}
	return fmt.Sprintf("🔄 Task updated!\nField <b>%s</b> changed to: <i>%s</i>", change.Field, value)
}

// clean escapes markup and masks blocked words in text that originated from
// the web side.
func (d *Dispatcher) clean(text string) string {
	return html.EscapeString(d.moderator.Censor(text))
}
