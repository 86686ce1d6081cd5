package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"task-bot/auth"
	"task-bot/domain"
)

type RecordingDispatcher struct {
	mutations []domain.TaskMutation
}

func (r *RecordingDispatcher) OnTaskMutated(_ context.Context, m domain.TaskMutation) {
	r.mutations = append(r.mutations, m)
}

func postHook(t *testing.T, handler http.Handler, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/hooks/task", bytes.NewReader(data))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func validPayload() map[string]any {
	return map[string]any{
		"kind": "created",
		"task": map[string]any{"id": 1, "title": "buy milk", "deadline": "2026-01-17"},
		"user": map[string]any{"username": "alice", "telegram_id": 12345},
	}
}

func TestHookHandler_DispatchesValidMutation(t *testing.T) {
	req := require.New(t)
	secret := []byte("hook-secret")
	dispatcher := &RecordingDispatcher{}
	handler := NewHookHandler(dispatcher, secret, testLogger())

	token, err := auth.GenerateToken(secret, "todo-backend", time.Minute)
	req.NoError(err)

	rec := postHook(t, handler, token, validPayload())
	req.Equal(http.StatusNoContent, rec.Code)

	req.Len(dispatcher.mutations, 1)
	m := dispatcher.mutations[0]
	req.Equal(domain.MutationCreated, m.Kind)
	req.Equal("buy milk", m.Task.Title)
	req.NotNil(m.User.TelegramID)
	req.Equal(domain.ChatID(12345), *m.User.TelegramID)
}

func TestHookHandler_CoercesUpdateField(t *testing.T) {
	req := require.New(t)
	dispatcher := &RecordingDispatcher{}
	handler := NewHookHandler(dispatcher, nil, testLogger())

	payload := validPayload()
	payload["kind"] = "updated"
	payload["field"] = "is_completed"
	payload["new_value"] = "yes"

	rec := postHook(t, handler, "", payload)
	req.Equal(http.StatusNoContent, rec.Code)

	req.Len(dispatcher.mutations, 1)
	change := dispatcher.mutations[0].Change
	req.NotNil(change)
	req.Equal(domain.FieldIsCompleted, change.Field)
	req.True(change.Done)
}

func TestHookHandler_RejectsBadInput(t *testing.T) {
	req := require.New(t)
	dispatcher := &RecordingDispatcher{}
	secret := []byte("hook-secret")
	handler := NewHookHandler(dispatcher, secret, testLogger())

	token, err := auth.GenerateToken(secret, "todo-backend", time.Minute)
	req.NoError(err)

	// --- Missing token ---
	rec := postHook(t, handler, "", validPayload())
	req.Equal(http.StatusUnauthorized, rec.Code)

	// --- Token signed with another secret ---
	forged, err := auth.GenerateToken([]byte("other"), "todo-backend", time.Minute)
	req.NoError(err)
	rec = postHook(t, handler, forged, validPayload())
	req.Equal(http.StatusUnauthorized, rec.Code)

	// --- Unknown mutation kind ---
	payload := validPayload()
	payload["kind"] = "archived"
	rec = postHook(t, handler, token, payload)
	req.Equal(http.StatusUnprocessableEntity, rec.Code)

	// --- Update naming a field outside the closed set ---
	payload = validPayload()
	payload["kind"] = "updated"
	payload["field"] = "owner_id"
	payload["new_value"] = "2"
	rec = postHook(t, handler, token, payload)
	req.Equal(http.StatusUnprocessableEntity, rec.Code)

	// --- Update without a field at all ---
	payload = validPayload()
	payload["kind"] = "updated"
	rec = postHook(t, handler, token, payload)
	req.Equal(http.StatusUnprocessableEntity, rec.Code)

	req.Empty(dispatcher.mutations, "rejected payloads must never reach the dispatcher")

	// --- Wrong HTTP verb ---
	get := httptest.NewRequest(http.MethodGet, "/hooks/task", nil)
	recGet := httptest.NewRecorder()
	handler.ServeHTTP(recGet, get)
	req.Equal(http.StatusMethodNotAllowed, recGet.Code)
}
