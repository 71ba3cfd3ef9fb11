package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBestOrdersByPriorityThenDeadline(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	q := New()

	q.Add(&Waiter{RoomID: "low-early", Priority: 1, WaitSliceDeadline: base, PhaseEnteredAt: base})
	q.Add(&Waiter{RoomID: "high-late", Priority: 3, WaitSliceDeadline: base.Add(time.Minute), PhaseEnteredAt: base})
	q.Add(&Waiter{RoomID: "high-early", Priority: 3, WaitSliceDeadline: base, PhaseEnteredAt: base})

	best, ok := q.Best()
	require.True(t, ok)
	require.Equal(t, "high-early", best.RoomID) // same top priority, earlier deadline wins
}

func TestAddReplacesExistingEntry(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	q := New()

	q.Add(&Waiter{RoomID: "R1", Priority: 1, WaitSliceDeadline: base})
	q.Add(&Waiter{RoomID: "R1", Priority: 3, WaitSliceDeadline: base})

	require.Equal(t, 1, q.Len())
	best, ok := q.Best()
	require.True(t, ok)
	require.Equal(t, 3, best.Priority)
}

func TestRemoveAndContains(t *testing.T) {
	q := New()
	q.Add(&Waiter{RoomID: "R1", Priority: 1})
	require.True(t, q.Contains("R1"))

	w, ok := q.Remove("R1")
	require.True(t, ok)
	require.Equal(t, "R1", w.RoomID)
	require.False(t, q.Contains("R1"))

	_, ok = q.Remove("R1")
	require.False(t, ok)
}

func TestPopBestDrainsHighestPriorityFirst(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	q := New()
	q.Add(&Waiter{RoomID: "low", Priority: 1, WaitSliceDeadline: base})
	q.Add(&Waiter{RoomID: "high", Priority: 3, WaitSliceDeadline: base})
	q.Add(&Waiter{RoomID: "mid", Priority: 2, WaitSliceDeadline: base})

	var order []string
	for {
		w, ok := q.PopBest()
		if !ok {
			break
		}
		order = append(order, w.RoomID)
	}
	require.Equal(t, []string{"high", "mid", "low"}, order)
}

func TestDueForRotationOnlyReturnsExpired(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	q := New()
	q.Add(&Waiter{RoomID: "expired", Priority: 1, WaitSliceDeadline: base})
	q.Add(&Waiter{RoomID: "not-yet", Priority: 1, WaitSliceDeadline: base.Add(time.Hour)})

	due := q.DueForRotation(base)
	require.Len(t, due, 1)
	require.Equal(t, "expired", due[0].RoomID)
}
