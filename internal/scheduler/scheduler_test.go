package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hotelacd/internal/acconfig"
	"hotelacd/internal/clock"
	"hotelacd/internal/detail"
	"hotelacd/internal/events"
	"hotelacd/internal/roomstate"
)

func newTestScheduler(t *testing.T, rooms ...string) (*Scheduler, *clock.Manual, *detail.Memory) {
	t.Helper()
	cfg := acconfig.Default()
	clk := clock.NewManual(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	store := roomstate.New(cfg)
	rec := detail.NewMemory()
	sched := New(cfg, clk, store, rec, events.NewBus())
	for _, r := range rooms {
		sched.Init(r)
	}
	return sched, clk, rec
}

func f(v float64) *float64                       { return &v }
func fan(v acconfig.FanSpeed) *acconfig.FanSpeed { return &v }
func mode(v acconfig.Mode) *acconfig.Mode        { return &v }

// drain advances the manual clock past the debounce window and runs one
// tick, the way the gateway's callers expect a submitted request to land.
func drain(sched *Scheduler, clk *clock.Manual) {
	clk.Advance(acconfig.Default().DebounceWindow)
	sched.Tick(clk.Now())
}

func powerOn(sched *Scheduler, roomID string, temp float64, fs acconfig.FanSpeed, m acconfig.Mode) {
	sched.Submit(roomID, Request{Action: PowerOn, TargetTemp: f(temp), Fan: fan(fs), Mode: mode(m)})
}

// TestFillAndPreempt is §8 scenario S1.
func TestFillAndPreempt(t *testing.T) {
	sched, clk, _ := newTestScheduler(t, "R1", "R2", "R3", "R4", "R5")

	powerOn(sched, "R1", 22, acconfig.FanLow, acconfig.ModeCooling)
	powerOn(sched, "R2", 22, acconfig.FanLow, acconfig.ModeCooling)
	powerOn(sched, "R3", 22, acconfig.FanLow, acconfig.ModeCooling)
	drain(sched, clk)

	for _, id := range []string{"R1", "R2", "R3"} {
		st, err := sched.State(id)
		require.NoError(t, err)
		require.Equal(t, roomstate.PhaseServing, st.Phase)
	}

	powerOn(sched, "R4", 22, acconfig.FanHigh, acconfig.ModeCooling)
	drain(sched, clk)

	st4, err := sched.State("R4")
	require.NoError(t, err)
	require.Equal(t, roomstate.PhaseServing, st4.Phase)

	// Exactly one of R1/R2/R3 is now waiting; the rest still serve.
	waiting := 0
	for _, id := range []string{"R1", "R2", "R3"} {
		st, err := sched.State(id)
		require.NoError(t, err)
		if st.Phase == roomstate.PhaseWaiting {
			waiting++
			require.Equal(t, acconfig.FanLow, st.Fan)
		} else {
			require.Equal(t, roomstate.PhaseServing, st.Phase)
		}
	}
	require.Equal(t, 1, waiting)
	require.Equal(t, 3, len(sched.serviceSet))
}

// TestTimeSliceRotation is §8 scenario S2: continuing S1, the waiter is
// eligible for promotion once its wait slice elapses.
func TestTimeSliceRotation(t *testing.T) {
	sched, clk, _ := newTestScheduler(t, "R1", "R2", "R3", "R4", "R5")

	powerOn(sched, "R1", 22, acconfig.FanLow, acconfig.ModeCooling)
	powerOn(sched, "R2", 22, acconfig.FanLow, acconfig.ModeCooling)
	powerOn(sched, "R3", 22, acconfig.FanLow, acconfig.ModeCooling)
	drain(sched, clk)
	powerOn(sched, "R4", 22, acconfig.FanHigh, acconfig.ModeCooling)
	drain(sched, clk)

	var waiterID string
	for _, id := range []string{"R1", "R2", "R3"} {
		st, _ := sched.State(id)
		if st.Phase == roomstate.PhaseWaiting {
			waiterID = id
		}
	}
	require.NotEmpty(t, waiterID)

	cfg := acconfig.Default()
	for elapsed := time.Duration(0); elapsed <= cfg.WaitTimeSlice+cfg.TickInterval; elapsed += cfg.TickInterval {
		clk.Advance(cfg.TickInterval)
		sched.Tick(clk.Now())
	}

	st, err := sched.State(waiterID)
	require.NoError(t, err)
	require.Equal(t, roomstate.PhaseServing, st.Phase)
	require.Equal(t, 3, len(sched.serviceSet))
}

// TestChangeTempIsFree is §8 scenario S3 and testable property 6.
func TestChangeTempIsFree(t *testing.T) {
	sched, clk, rec := newTestScheduler(t, "R2", "R3", "R4")

	powerOn(sched, "R2", 22, acconfig.FanLow, acconfig.ModeCooling)
	powerOn(sched, "R3", 22, acconfig.FanLow, acconfig.ModeCooling)
	powerOn(sched, "R4", 22, acconfig.FanHigh, acconfig.ModeCooling)
	drain(sched, clk)

	before, err := sched.State("R2")
	require.NoError(t, err)
	recordBefore := before.OpenRecordID
	require.NotEmpty(t, recordBefore)

	status, err := sched.Submit("R2", Request{Action: ChangeTemp, TargetTemp: f(18), Mode: mode(acconfig.ModeCooling)})
	require.NoError(t, err)
	require.Equal(t, Handled, status)

	after, err := sched.State("R2")
	require.NoError(t, err)
	require.Equal(t, roomstate.PhaseServing, after.Phase)
	require.Equal(t, 18.0, after.TargetTemp)
	require.Equal(t, recordBefore, after.OpenRecordID) // no record swap

	for _, id := range []string{"R3", "R4"} {
		st, err := sched.State(id)
		require.NoError(t, err)
		require.Equal(t, roomstate.PhaseServing, st.Phase)
	}
	require.Len(t, rec.All(), 3) // no new record opened
}

// TestTargetReachedThenRestartOnDrift is §8 scenario S4 and testable
// property 11.
func TestTargetReachedThenRestartOnDrift(t *testing.T) {
	sched, clk, rec := newTestScheduler(t, "R1")
	cfg := acconfig.Default()

	powerOn(sched, "R1", 22, acconfig.FanHigh, acconfig.ModeCooling)
	drain(sched, clk)

	// Drive ticks until the room reaches its target and flips to STANDBY.
	for i := 0; i < 30*60; i++ {
		clk.Advance(cfg.TickInterval)
		sched.Tick(clk.Now())
		st, _ := sched.State("R1")
		if st.Phase == roomstate.PhaseStandby {
			break
		}
	}

	st, err := sched.State("R1")
	require.NoError(t, err)
	require.Equal(t, roomstate.PhaseStandby, st.Phase)
	require.Empty(t, st.OpenRecordID)
	closedRecords := len(rec.ByRoom("R1"))
	require.GreaterOrEqual(t, closedRecords, 1)

	// Drift past TEMP_THRESHOLD and expect an internal restart.
	for i := 0; i < 400; i++ {
		clk.Advance(cfg.TickInterval)
		sched.Tick(clk.Now())
		st, _ = sched.State("R1")
		if st.Phase == roomstate.PhaseServing {
			break
		}
	}
	require.Equal(t, roomstate.PhaseServing, st.Phase)
	require.NotEmpty(t, st.OpenRecordID)
}

// TestDebounceCoalescing is §8 scenario S5 and testable property 9.
func TestDebounceCoalescing(t *testing.T) {
	sched, clk, rec := newTestScheduler(t, "R1")

	status1, err := sched.Submit("R1", Request{Action: PowerOn, TargetTemp: f(22), Fan: fan(acconfig.FanLow), Mode: mode(acconfig.ModeCooling)})
	require.NoError(t, err)
	require.Equal(t, Handled, status1)

	status2, err := sched.Submit("R1", Request{Action: PowerOn, TargetTemp: f(20), Fan: fan(acconfig.FanHigh), Mode: mode(acconfig.ModeCooling)})
	require.NoError(t, err)
	require.Equal(t, Coalesced, status2)

	drain(sched, clk)

	st, err := sched.State("R1")
	require.NoError(t, err)
	require.Equal(t, roomstate.PhaseServing, st.Phase)
	require.Equal(t, acconfig.FanHigh, st.Fan)
	require.Equal(t, 20.0, st.TargetTemp)
	require.Len(t, rec.All(), 1)
}

// TestCheckOutMidService is §8 scenario S6.
func TestCheckOutMidService(t *testing.T) {
	sched, clk, rec := newTestScheduler(t, "R1", "R2", "R3", "R4")

	powerOn(sched, "R1", 22, acconfig.FanLow, acconfig.ModeCooling)
	powerOn(sched, "R2", 22, acconfig.FanLow, acconfig.ModeCooling)
	powerOn(sched, "R3", 22, acconfig.FanLow, acconfig.ModeCooling)
	drain(sched, clk)
	// R4 waits: no free slot, no higher priority.
	powerOn(sched, "R4", 22, acconfig.FanLow, acconfig.ModeCooling)
	drain(sched, clk)

	st4, _ := sched.State("R4")
	require.Equal(t, roomstate.PhaseWaiting, st4.Phase)

	final, err := sched.Clear("R1")
	require.NoError(t, err)
	require.Equal(t, roomstate.PhaseServing, final.Phase) // phase at moment of clear
	require.Empty(t, final.OpenRecordID)                  // record already closed by Clear

	require.False(t, sched.store.Exists("R1"))
	records := rec.ByRoom("R1")
	require.Len(t, records, 1)
	require.False(t, records[0].Open())

	st4, err = sched.State("R4")
	require.NoError(t, err)
	require.Equal(t, roomstate.PhaseServing, st4.Phase) // promoted to fill the freed slot
}

// TestServiceSetNeverExceedsCap is testable property 1.
func TestServiceSetNeverExceedsCap(t *testing.T) {
	sched, clk, _ := newTestScheduler(t, "R1", "R2", "R3", "R4", "R5")
	for _, id := range []string{"R1", "R2", "R3", "R4", "R5"} {
		powerOn(sched, id, 22, acconfig.FanHigh, acconfig.ModeCooling)
	}
	drain(sched, clk)
	require.LessOrEqual(t, len(sched.serviceSet), acconfig.Default().MaxServiceSlots)
}

// TestTempClampsIntoBand is testable property 10.
func TestTempClampsIntoBand(t *testing.T) {
	sched, clk, _ := newTestScheduler(t, "R1")
	powerOn(sched, "R1", 5, acconfig.FanMedium, acconfig.ModeCooling) // below COOLING_MIN
	drain(sched, clk)

	st, err := sched.State("R1")
	require.NoError(t, err)
	require.Equal(t, acconfig.Default().CoolingMinTemp, st.TargetTemp)
}

// TestUnknownRoomIsRejected covers §7's UnknownRoom error kind.
func TestUnknownRoomIsRejected(t *testing.T) {
	sched, _, _ := newTestScheduler(t)
	_, err := sched.Submit("ghost", Request{Action: PowerOff})
	require.Error(t, err)
}
