package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/suite"

	"task-bot/domain"
	"task-bot/engine"
	"task-bot/gateway"
	"task-bot/repositories"
	"task-bot/runtime"
	"task-bot/runtime/workers"
	"task-bot/telegram"
)

const testChatID = 777000

// RegistrationSuite drives the whole bot in-process: scripted Telegram
// updates on one side, a stub todo backend on the other, real engine,
// orchestrator, poller and a real (in-memory) session database in between.
type RegistrationSuite struct {
	BaseSuite
}

func TestRegistrationSuite(t *testing.T) {
	suite.Run(t, new(RegistrationSuite))
}

type backendStub struct {
	mu            sync.Mutex
	registrations []map[string]any
}

func (b *backendStub) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/add_tlg/" {
			http.NotFound(w, r)
			return
		}
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)

		b.mu.Lock()
		b.registrations = append(b.registrations, payload)
		b.mu.Unlock()

		_ = json.NewEncoder(w).Encode(map[string]any{"username": payload["username"]})
	})
}

func message(updateID int64, text string) telegram.Update {
	return telegram.Update{
		UpdateID: updateID,
		Message: &telegram.Message{
			From: &telegram.Actor{ID: testChatID, FirstName: "Alice"},
			Chat: telegram.Chat{ID: testChatID},
			Text: text,
		},
	}
}

func callback(updateID int64, id, data string) telegram.Update {
	return telegram.Update{
		UpdateID: updateID,
		Callback: &telegram.CallbackQuery{ID: id, From: telegram.Actor{ID: testChatID}, Data: data},
	}
}

func (s *RegistrationSuite) Test_full_registration_flow_end_to_end() {
	req := s.Require()

	s.Step("Boot stub Telegram and stub backend")
	tg := NewTelegramStub([][]telegram.Update{
		{message(1, "/start")},
		{callback(2, "cb-reg", "button_reg_pressed")},
		{message(3, "alice")},
		{message(4, "secret1")},
	})
	defer tg.Close()

	backend := &backendStub{}
	backendSrv := httptest.NewServer(backend.handler())
	defer backendSrv.Close()

	s.Step("Boot the bot")
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	req.NoError(err)
	defer db.Close()

	sessions := repositories.NewSessionRepository(db, "e2e", s.Log)
	backendClient := gateway.NewClient(backendSrv.URL, time.Second, s.Log)
	transport := telegram.NewClient("e2e-token", time.Second, s.Log).WithAPIBase(tg.Server.URL)
	eng := engine.NewEngine(sessions, backendClient, transport, s.Log)

	sup := workers.NewSupervisor(s.Log)
	orch := runtime.NewOrchestrator(s.Log, sup, eng, 2, 8)
	sup.Add(workers.NewPollerWorker(transport, orch, 0, s.Log))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopped := make(chan struct{})
	go func() {
		orch.Run(ctx)
		close(stopped)
	}()

	s.Step("Wait for the conversation to play out")
	// Greeting, username prompt, password prompt, confirmation: 4 messages.
	req.Eventually(func() bool {
		return len(tg.Recorder.Snapshot()) >= 4
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	<-stopped

	s.Step("Assert the conversation transcript")
	transcript := tg.Recorder.Snapshot()
	s.Dump("transcript", transcript)

	req.Contains(transcript[0].Text, "Alice")
	req.Contains(transcript[1].Text, "username")
	req.Contains(transcript[2].Text, "password")
	req.Contains(transcript[3].Text, "alice")
	req.Equal([]string{"cb-reg"}, tg.Recorder.AckedIDs())

	s.Step("Assert the backend registration call")
	backend.mu.Lock()
	defer backend.mu.Unlock()
	req.Len(backend.registrations, 1)
	reg := backend.registrations[0]
	req.Equal("alice", reg["username"])
	req.Equal("secret1", reg["password"])
	req.Equal(float64(testChatID), reg["telegram_id"])

	s.Step("Assert the session ended Idle")
	state, err := sessions.Get(context.Background(), domain.ChatID(testChatID))
	req.NoError(err)
	req.True(state.IsIdle())
}
