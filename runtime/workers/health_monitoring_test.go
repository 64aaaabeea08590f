package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHealthMonitoringWorker_StopsOnContextCancel(t *testing.T) {
	req := require.New(t)

	w := NewHealthMonitoringWorker(slog.Default(), 10*time.Millisecond, func() HubStats {
		return HubStats{Sessions: 3, Rooms: 2}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := w.Run(ctx)
	req.ErrorIs(err, context.DeadlineExceeded)
}

func TestHealthMonitoringWorker_ReportSurvivesNilStats(t *testing.T) {
	w := NewHealthMonitoringWorker(slog.Default(), time.Second, nil)

	// Sampling must never panic, even without a stats provider
	w.report()
}
