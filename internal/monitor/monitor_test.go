package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hotelacd/internal/acconfig"
	"hotelacd/internal/clock"
	"hotelacd/internal/detail"
	"hotelacd/internal/events"
	"hotelacd/internal/roomstate"
	"hotelacd/internal/scheduler"
)

func TestStartPollsAndStop(t *testing.T) {
	cfg := acconfig.Default()
	clk := clock.NewManual(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	store := roomstate.New(cfg)
	bus := events.NewBus()
	sched := scheduler.New(cfg, clk, store, detail.NewMemory(), bus)
	sched.Init("R1")

	mon := NewMonitor(bus, sched, 10*time.Millisecond)
	mon.Start()
	defer mon.Stop()

	require.Eventually(t, func() bool {
		m := mon.GetMetrics()
		return m.System.TotalRooms == 1
	}, time.Second, 5*time.Millisecond)

	rm, ok := mon.GetRoomMetrics("R1")
	require.True(t, ok)
	require.Equal(t, "off", rm.Phase)
}

func TestDefaultIntervalAppliedWhenZero(t *testing.T) {
	mon := NewMonitor(events.NewBus(), nil, 0)
	require.Equal(t, 5*time.Second, mon.interval)
}
