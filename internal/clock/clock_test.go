package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestManualAdvanceMovesNow(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewManual(start)

	m.Advance(5 * time.Second)
	require.Equal(t, start.Add(5*time.Second), m.Now())
}

func TestManualTickerFiresOnAdvance(t *testing.T) {
	m := NewManual(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ticker := m.NewTicker(time.Second)

	m.Advance(time.Second)

	select {
	case <-ticker.C():
	default:
		t.Fatal("ticker did not fire after advancing past its period")
	}
}

func TestManualTickerBuffersOneTickAcrossSeveralPeriods(t *testing.T) {
	m := NewManual(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ticker := m.NewTicker(time.Second)

	m.Advance(3500 * time.Millisecond)

	fired := 0
	for {
		select {
		case <-ticker.C():
			fired++
			continue
		default:
		}
		break
	}
	// The channel is buffered to size 1, so only the first crossing is
	// observable: later crossings are dropped while the buffer is full, even
	// though three period boundaries were crossed.
	require.GreaterOrEqual(t, fired, 1)
}

func TestManualTickerStopIsNoop(t *testing.T) {
	m := NewManual(time.Now())
	ticker := m.NewTicker(time.Second)
	ticker.Stop() // must not panic
}

func TestRealClockAdvancesWallTime(t *testing.T) {
	r := Real{}
	before := r.Now()
	r.Sleep(time.Millisecond)
	require.True(t, r.Now().After(before) || r.Now().Equal(before))
}
