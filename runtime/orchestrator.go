// Package runtime feeds user events through per-user serial streams.
// It schedules and routes; the conversation rules themselves live in engine.
package runtime

import (
	"context"
	"log/slog"

	"task-bot/contract"
	"task-bot/domain"
	"task-bot/engine"
	"task-bot/runtime/workers"
)

// Orchestrator shards inbound commands by chat identity over a fixed pool of
// conversation workers. One worker per shard gives every user FIFO handling
// of their own events while distinct users proceed concurrently; no lock is
// needed beyond the session store's per-key atomicity.
type Orchestrator struct {
	log        *slog.Logger
	supervisor contract.ISupervisor
	engine     engine.IEngine
	shards     []chan domain.Command
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor,
	eng engine.IEngine, numWorkers, bufferSize int) *Orchestrator {
	if numWorkers < 1 {
		numWorkers = 1
	}

	shards := make([]chan domain.Command, numWorkers)
	for i := range shards {
		shards[i] = make(chan domain.Command, bufferSize)
	}

	return &Orchestrator{
		log:        log,
		supervisor: supervisor,
		engine:     eng,
		shards:     shards,
	}
}

// Run registers one conversation worker per shard and blocks under the
// supervisor until ctx is canceled.
func (o *Orchestrator) Run(ctx context.Context) {
	for _, shard := range o.shards {
		o.supervisor.Add(workers.NewConversationWorker(shard, o.engine, o.log))
	}
	o.supervisor.Run(ctx)
}

// Dispatch queues a command on its user's shard. Two commands from the same
// user always land on the same shard, in arrival order.
func (o *Orchestrator) Dispatch(ctx context.Context, cmd domain.Command) error {
	shard := o.shards[o.shardIndex(cmd.Chat())]
	select {
	case <-ctx.Done():
		return ctx.Err()
	case shard <- cmd:
		return nil
	}
}

func (o *Orchestrator) shardIndex(chatID domain.ChatID) int {
	// Chat ids can be negative (group chats), hence the unsigned conversion.
	return int(uint64(chatID) % uint64(len(o.shards)))
}

func (o *Orchestrator) Stop() {
	o.supervisor.Stop()
}
