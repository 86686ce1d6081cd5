package e2e

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
)

// BaseSuite wires the shared bits of every end-to-end scenario: configuration,
// a logger, and the fake Telegram side the bot under test talks to.
type BaseSuite struct {
	suite.Suite
	Config Config
	Log    *slog.Logger
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	s.Log = slog.New(slog.NewTextHandler(os.Stdout, nil))
}

// Step prints a colorized header so scenario phases stand out in the log.
func (s *BaseSuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// Dump logs a payload as JSON when E2E_DEBUG_JSON is enabled.
func (s *BaseSuite) Dump(label string, payload any) {
	if !s.Config.DebugJSON {
		return
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	s.Require().NoError(err)
	s.T().Logf("%s:\n%s", label, data)
}

// ChatRecorder collects everything the bot sent back to the chat side.
type ChatRecorder struct {
	mu sync.Mutex

	Messages []SentMessage
	Acked    []string
}

type SentMessage struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

func (r *ChatRecorder) Record(msg SentMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = append(r.Messages, msg)
}

func (r *ChatRecorder) Ack(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Acked = append(r.Acked, id)
}

func (r *ChatRecorder) Snapshot() []SentMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SentMessage, len(r.Messages))
	copy(out, r.Messages)
	return out
}

func (r *ChatRecorder) AckedIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Acked))
	copy(out, r.Acked)
	return out
}
