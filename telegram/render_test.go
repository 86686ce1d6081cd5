package telegram

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"task-bot/domain"
)

func TestRenderTaskList_EmptyListGetsHint(t *testing.T) {
	out := RenderTaskList(domain.FilterAll, nil)
	require.Contains(t, out, "No tasks found")
}

func TestRenderTaskList_FormatsEntries(t *testing.T) {
	req := require.New(t)

	tasks := []domain.Task{
		{ID: 1, Title: "buy milk", Description: "2 liters", Deadline: lo.ToPtr("2026-01-17T00:00:00"), IsCompleted: false},
		{ID: 2, Title: "call mom", IsCompleted: true},
	}

	out := RenderTaskList(domain.FilterActive, tasks)

	req.Contains(out, "(active)")
	req.Contains(out, "1. ⏳ <b>buy milk</b>")
	req.Contains(out, "<i>2 liters</i>")
	req.Contains(out, "17.01.2026")
	req.Contains(out, "2. ✅ <b>call mom</b>")
}

func TestRenderTaskList_EscapesUserText(t *testing.T) {
	tasks := []domain.Task{{ID: 1, Title: "<script>hi</script>"}}
	out := RenderTaskList(domain.FilterAll, tasks)
	require.NotContains(t, out, "<script>")
}

func TestMapUpdate_RoutesMessagesAndCallbacks(t *testing.T) {
	req := require.New(t)

	cmd, ack := MapUpdate(Update{Message: &Message{
		From: &Actor{ID: 5, FirstName: "Alice"},
		Chat: Chat{ID: 5},
		Text: "/start",
	}})
	req.Empty(ack)
	greet, ok := cmd.(domain.GreetCommand)
	req.True(ok)
	req.Equal("Alice", greet.FirstName)

	cmd, ack = MapUpdate(Update{Callback: &CallbackQuery{
		ID:   "cb-1",
		From: Actor{ID: 5},
		Data: "button_show_closed",
	}})
	req.Equal("cb-1", ack)
	show, ok := cmd.(domain.ShowTasksCommand)
	req.True(ok)
	req.Equal(domain.FilterClosed, show.Filter)

	cmd, ack = MapUpdate(Update{Callback: &CallbackQuery{ID: "cb-2", From: Actor{ID: 5}, Data: "button_reg_pressed"}})
	req.Equal("cb-2", ack)
	_, ok = cmd.(domain.StartRegistrationCommand)
	req.True(ok)

	// Unknown callback payloads still get acknowledged, but route nowhere.
	cmd, ack = MapUpdate(Update{Callback: &CallbackQuery{ID: "cb-3", From: Actor{ID: 5}, Data: "legacy_button"}})
	req.Equal("cb-3", ack)
	req.Nil(cmd)

	cmd, _ = MapUpdate(Update{Message: &Message{From: &Actor{ID: 5}, Chat: Chat{ID: 5}, Text: "/cancel"}})
	_, ok = cmd.(domain.CancelCommand)
	req.True(ok)

	cmd, _ = MapUpdate(Update{Message: &Message{From: &Actor{ID: 5}, Chat: Chat{ID: 5}, Text: "alice"}})
	text, ok := cmd.(domain.TextCommand)
	req.True(ok)
	req.Equal("alice", text.Text)
}
