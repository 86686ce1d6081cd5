package workers

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/process"
)

// HeartbeatWorker periodically logs process health (RSS, CPU, goroutines)
// so a stalled bot is visible in the logs without any metrics stack.
type HeartbeatWorker struct {
	log      *slog.Logger
	interval time.Duration
}

func NewHeartbeatWorker(log *slog.Logger, interval time.Duration) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, interval: interval}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting heartbeat worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}
			w.log.Info("heartbeat",
				"rss_bytes", rss,
				"cpu_percent", cpu,
				"goroutines", runtime.NumGoroutine(),
			)
		}
	}
}

// selfStats retrieves memory and CPU usage for the given process.
func selfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
