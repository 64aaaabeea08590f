package workers

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	_ "github.com/shirou/gopsutil"
	"github.com/shirou/gopsutil/process"
)

// HubStats is the point-in-time view of the hub the worker reports.
type HubStats struct {
	Sessions int
	Rooms    int
}

// HealthMonitoringWorker periodically samples the server process (CPU,
// resident memory, goroutines) together with hub occupancy and logs
// the result. Pure observability: it mutates nothing.
type HealthMonitoringWorker struct {
	log            *slog.Logger
	metricInterval time.Duration
	stats          func() HubStats
	proc           *process.Process
}

func NewHealthMonitoringWorker(log *slog.Logger, metricInterval time.Duration, stats func() HubStats) *HealthMonitoringWorker {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		// Sampling degrades to runtime-only metrics.
		log.Warn("Process handle unavailable", "error", err)
	}
	return &HealthMonitoringWorker{
		log:            log,
		metricInterval: metricInterval,
		stats:          stats,
		proc:           proc,
	}
}

func (w *HealthMonitoringWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case <-ticker.C:
			w.report()
		}
	}
}

func (w *HealthMonitoringWorker) report() {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	attrs := []any{
		"alloc_mb", mem.Alloc / 1024 / 1024,
		"num_gc", mem.NumGC,
		"goroutines", runtime.NumGoroutine(),
	}

	if w.proc != nil {
		if cpu, err := w.proc.CPUPercent(); err == nil {
			attrs = append(attrs, "cpu_percent", cpu)
		}
		if info, err := w.proc.MemoryInfo(); err == nil {
			attrs = append(attrs, "rss_mb", info.RSS/1024/1024)
		}
	}

	if w.stats != nil {
		hub := w.stats()
		attrs = append(attrs, "sessions", hub.Sessions, "rooms", hub.Rooms)
	}

	w.log.Info("Health report", attrs...)
}
