package notify

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"task-bot/auth"
	"task-bot/domain"
)

// TaskHookPayload is what the backend posts after committing a task mutation.
// Field/NewValue are the update variant's raw wire values, coerced here at
// the boundary instead of being applied as free-form strings.
type TaskHookPayload struct {
	Kind string `json:"kind" validate:"required,oneof=created updated deleted"`
	Task struct {
		ID          int64   `json:"id"`
		Title       string  `json:"title" validate:"required"`
		Description string  `json:"description"`
		Deadline    *string `json:"deadline"`
		IsCompleted bool    `json:"is_completed"`
	} `json:"task" validate:"required"`
	User struct {
		Username   string `json:"username" validate:"required"`
		TelegramID *int64 `json:"telegram_id"`
	} `json:"user" validate:"required"`
	Field    string `json:"field" validate:"required_if=Kind updated"`
	NewValue string `json:"new_value"`
}

// HookHandler is the synchronous post-commit endpoint (POST /hooks/task).
// It answers 204 whatever the delivery outcome: notification delivery is
// best-effort and must never fail the mutation that triggered it.
type HookHandler struct {
	dispatcher IDispatcher
	secret     []byte
	validate   *validator.Validate
	log        *slog.Logger
}

// NewHookHandler builds the hook endpoint. An empty secret disables the
// bearer check, for development setups only.
func NewHookHandler(dispatcher IDispatcher, secret []byte, log *slog.Logger) *HookHandler {
	return &HookHandler{
		dispatcher: dispatcher,
		secret:     secret,
		validate:   validator.New(),
		log:        log,
	}
}

func (h *HookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.authorized(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var payload TaskHookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "malformed payload", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		h.log.Warn("hook payload rejected", "err", err)
		http.Error(w, "invalid payload", http.StatusUnprocessableEntity)
		return
	}

	mutation, err := toMutation(payload)
	if err != nil {
		h.log.Warn("hook payload rejected", "err", err)
		http.Error(w, "invalid payload", http.StatusUnprocessableEntity)
		return
	}

	// Synchronous by contract: the backend's handler has already committed.
	h.dispatcher.OnTaskMutated(r.Context(), mutation)
	w.WriteHeader(http.StatusNoContent)
}

func (h *HookHandler) authorized(r *http.Request) bool {
	if len(h.secret) == 0 {
		return true
	}
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	if _, err := auth.ValidateToken(h.secret, token); err != nil {
		h.log.Warn("hook call with invalid token", "err", err)
		return false
	}
	return true
}

func toMutation(payload TaskHookPayload) (domain.TaskMutation, error) {
	mutation := domain.TaskMutation{
		Kind: domain.MutationKind(payload.Kind),
		Task: domain.Task{
			ID:          payload.Task.ID,
			Title:       payload.Task.Title,
			Description: payload.Task.Description,
			Deadline:    payload.Task.Deadline,
			IsCompleted: payload.Task.IsCompleted,
		},
		User: domain.User{Username: payload.User.Username},
	}
	if payload.User.TelegramID != nil {
		chatID := domain.ChatID(*payload.User.TelegramID)
		mutation.User.TelegramID = &chatID
	}

	if mutation.Kind == domain.MutationUpdated {
		change, err := domain.CoerceFieldChange(payload.Field, payload.NewValue)
		if err != nil {
			return domain.TaskMutation{}, err
		}
		mutation.Change = &change
	}
	return mutation, nil
}
