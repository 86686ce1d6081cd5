package workers

import (
	"context"
	"log/slog"

	"task-bot/domain"
	"task-bot/engine"
)

// ConversationWorker drains one shard of the command stream. Exactly one
// worker per shard: that is what makes a single user's events serial.
type ConversationWorker struct {
	commands <-chan domain.Command
	engine   engine.IEngine
	log      *slog.Logger
}

func NewConversationWorker(commands <-chan domain.Command, eng engine.IEngine, log *slog.Logger) *ConversationWorker {
	return &ConversationWorker{commands: commands, engine: eng, log: log}
}

func (w *ConversationWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case cmd, ok := <-w.commands:
			if !ok {
				return nil
			}
			w.engine.Handle(ctx, cmd)
		}
	}
}
