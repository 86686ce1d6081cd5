package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"task-bot/telegram"
)

// TelegramStub impersonates the Bot API: scripted update batches go out,
// everything the bot sends comes back into the ChatRecorder.
type TelegramStub struct {
	Server   *httptest.Server
	Recorder *ChatRecorder

	mu      sync.Mutex
	batches [][]telegram.Update
}

func NewTelegramStub(batches [][]telegram.Update) *TelegramStub {
	stub := &TelegramStub{
		Recorder: &ChatRecorder{},
		batches:  batches,
	}
	stub.Server = httptest.NewServer(http.HandlerFunc(stub.handle))
	return stub
}

func (s *TelegramStub) Close() { s.Server.Close() }

func (s *TelegramStub) handle(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasSuffix(r.URL.Path, "/getUpdates"):
		s.handleGetUpdates(w)
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		var msg SentMessage
		_ = json.NewDecoder(r.Body).Decode(&msg)
		s.Recorder.Record(msg)
		writeOK(w, nil)
	case strings.HasSuffix(r.URL.Path, "/answerCallbackQuery"):
		var body struct {
			CallbackQueryID string `json:"callback_query_id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		s.Recorder.Ack(body.CallbackQueryID)
		writeOK(w, nil)
	default:
		http.NotFound(w, r)
	}
}

func (s *TelegramStub) handleGetUpdates(w http.ResponseWriter) {
	s.mu.Lock()
	var batch []telegram.Update
	if len(s.batches) > 0 {
		batch = s.batches[0]
		s.batches = s.batches[1:]
	}
	s.mu.Unlock()

	// An empty answer mimics a long-poll timeout with nothing new.
	writeOK(w, batch)
}

func writeOK(w http.ResponseWriter, result any) {
	resp := map[string]any{"ok": true}
	if result != nil {
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
