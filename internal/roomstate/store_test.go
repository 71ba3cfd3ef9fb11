package roomstate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hotelacd/internal/acconfig"
	"hotelacd/internal/acerrors"
)

func TestInitEstablishesOffRoomWithDefaults(t *testing.T) {
	cfg := acconfig.Default()
	store := New(cfg)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	store.Init("R1", now)

	st, ok := store.Get("R1")
	require.True(t, ok)
	require.Equal(t, PhaseOff, st.Phase)
	require.Equal(t, cfg.InitialRoomTemp, st.CurrentTemp)
	require.Equal(t, cfg.DefaultTemp, st.TargetTemp)
	require.Equal(t, acconfig.FanMedium, st.Fan)
	require.True(t, st.AccruedCost.IsZero())
}

func TestGetUnknownRoomIsNotOK(t *testing.T) {
	store := New(acconfig.Default())
	_, ok := store.Get("ghost")
	require.False(t, ok)
}

func TestMutateUnknownRoomReturnsErrUnknownRoom(t *testing.T) {
	store := New(acconfig.Default())
	err := store.Mutate("ghost", func(s *State) {})
	require.ErrorIs(t, err, acerrors.ErrUnknownRoom)
}

func TestMutateAppliesInPlace(t *testing.T) {
	store := New(acconfig.Default())
	store.Init("R1", time.Now())

	err := store.Mutate("R1", func(s *State) { s.CurrentTemp = 19.5 })
	require.NoError(t, err)

	st, _ := store.Get("R1")
	require.Equal(t, 19.5, st.CurrentTemp)
}

func TestClearRemovesRoom(t *testing.T) {
	store := New(acconfig.Default())
	store.Init("R1", time.Now())
	require.True(t, store.Exists("R1"))

	store.Clear("R1")
	require.False(t, store.Exists("R1"))
}

func TestSnapshotAllIsSortedByRoomID(t *testing.T) {
	store := New(acconfig.Default())
	now := time.Now()
	store.Init("R3", now)
	store.Init("R1", now)
	store.Init("R2", now)

	snap := store.SnapshotAll()
	require.Len(t, snap, 3)
	require.Equal(t, []string{"R1", "R2", "R3"}, []string{snap[0].RoomID, snap[1].RoomID, snap[2].RoomID})
}

func TestCloneIsIndependentOfStoredState(t *testing.T) {
	store := New(acconfig.Default())
	store.Init("R1", time.Now())

	a, _ := store.Get("R1")
	a.CurrentTemp = 999
	b, _ := store.Get("R1")
	require.NotEqual(t, a.CurrentTemp, b.CurrentTemp)
}

func TestRemainingWaitZeroOutsideWaiting(t *testing.T) {
	st := State{Phase: PhaseOff}
	require.Equal(t, time.Duration(0), st.RemainingWait(time.Now()))
}

func TestRemainingWaitCountsDownToDeadline(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	st := State{Phase: PhaseWaiting, WaitSliceDeadline: now.Add(30 * time.Second)}
	require.Equal(t, 30*time.Second, st.RemainingWait(now))
	require.Equal(t, time.Duration(0), st.RemainingWait(now.Add(time.Minute)))
}
