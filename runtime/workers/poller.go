package workers

import (
	"context"
	"log/slog"
	"time"

	"task-bot/domain"
	"task-bot/telegram"
)

const pollRetryDelay = time.Second

// IUpdateSource is the inbound side of the chat transport.
type IUpdateSource interface {
	GetUpdates(ctx context.Context, offset int64, pollTimeout int) ([]telegram.Update, error)
	AnswerCallback(ctx context.Context, callbackID string) error
}

// ICommandDispatcher routes a command onto its user's serial stream.
type ICommandDispatcher interface {
	Dispatch(ctx context.Context, cmd domain.Command) error
}

// PollerWorker long-polls the Bot API and feeds the orchestrator.
// It owns the update offset; a restart after a crash re-reads from the last
// unacknowledged update, which is the Bot API's own at-least-once contract.
type PollerWorker struct {
	source      IUpdateSource
	dispatcher  ICommandDispatcher
	pollTimeout int
	offset      int64
	log         *slog.Logger
}

func NewPollerWorker(source IUpdateSource, dispatcher ICommandDispatcher, pollTimeout int, log *slog.Logger) *PollerWorker {
	return &PollerWorker{
		source:      source,
		dispatcher:  dispatcher,
		pollTimeout: pollTimeout,
		log:         log,
	}
}

func (w *PollerWorker) Run(ctx context.Context) error {
	w.log.Info("Starting update poller")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		updates, err := w.source.GetUpdates(ctx, w.offset, w.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.log.Warn("Polling failed, backing off", "err", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pollRetryDelay):
			}
			continue
		}

		for _, update := range updates {
			w.offset = update.UpdateID + 1
			w.route(ctx, update)
		}
	}
}

func (w *PollerWorker) route(ctx context.Context, update telegram.Update) {
	cmd, callbackID := telegram.MapUpdate(update)

	// Acknowledge callbacks first, known or not, so the client UI unblocks.
	if callbackID != "" {
		if err := w.source.AnswerCallback(ctx, callbackID); err != nil {
			w.log.Warn("Callback ack failed", "callback_id", callbackID, "err", err)
		}
	}

	if cmd == nil {
		w.log.Debug("Dropping unroutable update", "update_id", update.UpdateID)
		return
	}

	if err := w.dispatcher.Dispatch(ctx, cmd); err != nil {
		w.log.Warn("Dispatch failed", "update_id", update.UpdateID, "err", err)
	}
}
