package domain

import (
	goerrors "errors"
	"fmt"
	"strings"
	"time"

	"task-bot/errors"
)

// TaskFilter selects which slice of a user's tasks a listing returns.
type TaskFilter string

const (
	FilterAll    TaskFilter = "all"
	FilterActive TaskFilter = "active"
	FilterClosed TaskFilter = "closed"
)

// Task is the backend's task record as consumed by the bot. The bot never
// mutates tasks directly, it only renders them.
type Task struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Deadline    *string `json:"deadline,omitempty"`
	IsCompleted bool    `json:"is_completed"`
}

// User is the backend's user record, referenced by identifiers only.
// TelegramID is optional: web-only users have no linked chat identity.
type User struct {
	Username   string  `json:"username"`
	TelegramID *ChatID `json:"telegram_id,omitempty"`
}

// MutationKind tags a task mutation committed by the backend.
type MutationKind string

const (
	MutationCreated MutationKind = "created"
	MutationUpdated MutationKind = "updated"
	MutationDeleted MutationKind = "deleted"
)

// TaskField is a mutable task field. The set is closed: an update naming any
// other field is rejected at the boundary instead of being applied blindly.
type TaskField string

const (
	FieldTitle       TaskField = "title"
	FieldDescription TaskField = "description"
	FieldDeadline    TaskField = "deadline"
	FieldIsCompleted TaskField = "is_completed"
)

// FieldChange is a coerced task update: exactly one variant is populated,
// selected by Field. It replaces the backend's free-form field/new_value pair.
type FieldChange struct {
	Field TaskField
	Text  string     // title, description
	Date  *time.Time // deadline, nil when cleared or unparseable
	Done  bool       // is_completed
}

// CoerceFieldChange converts a raw field/value pair from the wire into a typed
// change, applying the same coercion rules the backend uses before committing.
func CoerceFieldChange(field, raw string) (FieldChange, error) {
	switch TaskField(field) {
	case FieldTitle:
		return FieldChange{Field: FieldTitle, Text: raw}, nil
	case FieldDescription:
		return FieldChange{Field: FieldDescription, Text: raw}, nil
	case FieldIsCompleted:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true", "1", "yes":
			return FieldChange{Field: FieldIsCompleted, Done: true}, nil
		default:
			return FieldChange{Field: FieldIsCompleted, Done: false}, nil
		}
	case FieldDeadline:
		t, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
		if err != nil {
			// Empty or malformed dates clear the deadline rather than fail.
			return FieldChange{Field: FieldDeadline, Date: nil}, nil
		}
		return FieldChange{Field: FieldDeadline, Date: &t}, nil
	default:
		return FieldChange{}, fmt.Errorf("%w: %q", errors.ErrUnknownTaskField, field)
	}
}

// ValueString renders the post-coercion value the way notifications show it.
func (c FieldChange) ValueString() string {
	switch c.Field {
	case FieldIsCompleted:
		if c.Done {
			return "true"
		}
		return "false"
	case FieldDeadline:
		if c.Date == nil {
			return DeadlineNotSet
		}
		return c.Date.Format(DeadlineLayout)
	default:
		return c.Text
	}
}

// DeadlineLayout is the user-facing date format, DD.MM.YYYY.
const DeadlineLayout = "02.01.2006"

// DeadlineNotSet is the literal shown when a task has no deadline.
const DeadlineNotSet = "not specified"

// FormatDeadline renders a backend deadline string (ISO date, optionally with
// a time part) as DD.MM.YYYY, falling back to DeadlineNotSet.
func FormatDeadline(deadline *string) string {
	if deadline == nil || strings.TrimSpace(*deadline) == "" {
		return DeadlineNotSet
	}
	raw := strings.TrimSpace(*deadline)
	if len(raw) > 10 {
		raw = raw[:10]
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		// Unknown format, show the backend's value untouched.
		return *deadline
	}
	return t.Format(DeadlineLayout)
}

// IsUnknownField reports whether err is the closed-set rejection.
func IsUnknownField(err error) bool {
	return goerrors.Is(err, errors.ErrUnknownTaskField)
}
