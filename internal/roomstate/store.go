package roomstate

import (
	"sort"
	"sync"
	"time"

	"hotelacd/internal/acconfig"
	"hotelacd/internal/acerrors"
	"hotelacd/internal/money"
)

// Store is the process-wide room_id -> State map. It is guarded by an
// RWMutex solely so Get/SnapshotAll can be called from outside the
// scheduler's own goroutine without racing its writes; the Scheduler Core
// remains the only writer (§5's "single logical writer").
type Store struct {
	mu    sync.RWMutex
	rooms map[string]*State
	cfg   acconfig.Config
}

// New returns an empty store bound to cfg's defaults for Init.
func New(cfg acconfig.Config) *Store {
	return &Store{rooms: make(map[string]*State), cfg: cfg}
}

// Init establishes a room in OFF phase with ambient current_temp, default
// target, MEDIUM fan, COOLING mode, and zero accruals. Re-init (a room
// already known, e.g. a new occupancy after check-out/check-in) resets
// accruals unconditionally, matching the original's update_or_create
// semantics rather than refusing a double-init.
func (s *Store) Init(roomID string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rooms[roomID] = &State{
		RoomID:         roomID,
		Phase:          PhaseOff,
		Mode:           acconfig.ModeCooling,
		Fan:            acconfig.FanMedium,
		CurrentTemp:    s.cfg.InitialRoomTemp,
		TargetTemp:     s.cfg.DefaultTemp,
		AccruedEnergy:  money.Zero(),
		AccruedCost:    money.Zero(),
		PhaseEnteredAt: now,
	}
}

// Clear removes a room's entry. The caller (Scheduler Core) is responsible
// for finalizing any open detail record before calling Clear.
func (s *Store) Clear(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, roomID)
}

// Get returns a copy of a room's state and whether it is known.
func (s *Store) Get(roomID string) (State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rooms[roomID]
	if !ok {
		return State{}, false
	}
	return r.Clone(), true
}

// SnapshotAll returns a copy of every known room's state, ordered by
// room_id for deterministic output.
func (s *Store) SnapshotAll() []State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]State, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomID < out[j].RoomID })
	return out
}

// Mutate runs fn against the live room entry under the write lock. Only the
// Scheduler Core's own tick goroutine should call this; roomstate itself
// never decides *what* to mutate, only guards the map (§5's single logical
// writer).
func (s *Store) Mutate(roomID string, fn func(*State)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[roomID]
	if !ok {
		return acerrors.ErrUnknownRoom
	}
	fn(r)
	return nil
}

// Exists reports whether roomID has been Init-ed.
func (s *Store) Exists(roomID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[roomID]
	return ok
}
