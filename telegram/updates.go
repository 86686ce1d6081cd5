package telegram

import (
	"strings"

	"task-bot/domain"
)

// Callback payloads of the main menu buttons. The identifiers are part of the
// deployed keyboard contract: changing them orphans buttons on old messages.
const (
	callbackRegister   = "button_reg_pressed"
	callbackShowPrefix = "button_show_"
)

// MainKeyboard is the menu attached to most replies.
func MainKeyboard() *InlineKeyboard {
	return &InlineKeyboard{Rows: [][]InlineButton{
		{{Text: "📝 Register", CallbackData: callbackRegister}},
		{{Text: "📊 All tasks", CallbackData: callbackShowPrefix + "all"}},
		{{Text: "⏳ Active", CallbackData: callbackShowPrefix + "active"}},
		{{Text: "✅ Completed", CallbackData: callbackShowPrefix + "closed"}},
	}}
}

// MapUpdate translates a Bot API update into a domain command.
// The second return is the callback id to acknowledge, empty for messages.
// Unroutable updates (no sender, unknown payloads) return a nil command.
func MapUpdate(u Update) (domain.Command, string) {
	if u.Callback != nil {
		chatID := domain.ChatID(u.Callback.From.ID)
		switch {
		case u.Callback.Data == callbackRegister:
			return domain.StartRegistrationCommand{ChatID: chatID}, u.Callback.ID
		case strings.HasPrefix(u.Callback.Data, callbackShowPrefix):
			filter := toFilter(strings.TrimPrefix(u.Callback.Data, callbackShowPrefix))
			return domain.ShowTasksCommand{ChatID: chatID, Filter: filter}, u.Callback.ID
		default:
			return nil, u.Callback.ID
		}
	}

	if u.Message == nil || u.Message.From == nil {
		return nil, ""
	}

	chatID := domain.ChatID(u.Message.Chat.ID)
	text := u.Message.Text

	switch {
	case strings.HasPrefix(text, "/start"):
		return domain.GreetCommand{ChatID: chatID, FirstName: u.Message.From.FirstName}, ""
	case strings.HasPrefix(text, "/cancel"):
		return domain.CancelCommand{ChatID: chatID}, ""
	default:
		return domain.TextCommand{ChatID: chatID, Text: text}, ""
	}
}

func toFilter(s string) domain.TaskFilter {
	switch s {
	case "active":
		return domain.FilterActive
	case "closed":
		return domain.FilterClosed
	default:
		return domain.FilterAll
	}
}
