package telegram

import (
	"fmt"
	"html"
	"strings"

	"github.com/samber/lo"

	"task-bot/domain"
)

// RenderTaskList formats a filtered task listing the way the bot shows it:
// numbered entries, a status icon, bold titles, italic detail lines.
func RenderTaskList(filter domain.TaskFilter, tasks []domain.Task) string {
	if len(tasks) == 0 {
		return "📭 No tasks found. Register first if you haven't yet."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<b>📋 Your tasks (%s):</b>\n\n", filter)

	lines := lo.Map(tasks, func(task domain.Task, i int) string {
		return renderTask(i+1, task)
	})
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

func renderTask(position int, task domain.Task) string {
	icon := "⏳"
	if task.IsCompleted {
		icon = "✅"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d. %s <b>%s</b>\n", position, icon, html.EscapeString(task.Title))
	if task.Description != "" {
		fmt.Fprintf(&b, "   └ <i>%s</i>\n", html.EscapeString(task.Description))
	}
	if task.Deadline != nil {
		fmt.Fprintf(&b, "   └ <i>%s</i>\n", domain.FormatDeadline(task.Deadline))
	}
	return b.String()
}
