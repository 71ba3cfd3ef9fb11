package scheduler

import (
	"fmt"
	"sync"
	"time"

	"hotelacd/internal/acconfig"
	"hotelacd/internal/acerrors"
	"hotelacd/internal/clock"
	"hotelacd/internal/detail"
	"hotelacd/internal/events"
	"hotelacd/internal/logger"
	"hotelacd/internal/queue"
	"hotelacd/internal/roomstate"
	"hotelacd/internal/simulator"
)

// Scheduler is the Scheduler Core. It is the sole mutator of roomstate.Store
// beyond Init/Clear, the sole owner of the service set and wait set, and the
// sole reader/writer of the pending-request map (§5's "single logical
// writer"). Everything outside this package reaches it through Submit,
// State, SnapshotAll, Init, and Clear.
type Scheduler struct {
	cfg      acconfig.Config
	clk      clock.Clock
	store    *roomstate.Store
	recorder detail.Recorder
	sim      *simulator.Simulator
	bus      *events.Bus

	// serviceSet and waitQ are touched only from the tick goroutine (and
	// from Submit's CHANGE_TEMP fast path, which never touches either).
	serviceSet map[string]struct{}
	waitQ      *queue.WaitQueue

	pendingMu sync.Mutex
	pending   map[string]pendingRequest

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// New builds a Scheduler against the given collaborators. Call Run to start
// its tick loop.
func New(cfg acconfig.Config, clk clock.Clock, store *roomstate.Store, recorder detail.Recorder, bus *events.Bus) *Scheduler {
	return &Scheduler{
		cfg:        cfg,
		clk:        clk,
		store:      store,
		recorder:   recorder,
		sim:        simulator.New(cfg),
		bus:        bus,
		serviceSet: make(map[string]struct{}),
		waitQ:      queue.New(),
		pending:    make(map[string]pendingRequest),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Init establishes a room (check-in), per §4.1.
func (s *Scheduler) Init(roomID string) {
	s.store.Init(roomID, s.clk.Now())
}

// Clear finalizes a room's occupancy (check-out), per §4.1/§5: any open
// record is closed, the room leaves whichever set it was in, and its entry
// is removed from the store. Returns the final state as of the moment of
// removal.
func (s *Scheduler) Clear(roomID string) (roomstate.State, error) {
	st, ok := s.store.Get(roomID)
	if !ok {
		return roomstate.State{}, fmt.Errorf("%w: %s", acerrors.ErrUnknownRoom, roomID)
	}

	now := s.clk.Now()
	switch st.Phase {
	case roomstate.PhaseServing:
		s.closeRecord(&st, now)
		delete(s.serviceSet, roomID)
	case roomstate.PhaseWaiting:
		s.closeRecord(&st, now) // defensive; WAITING rooms never carry an open record
		s.waitQ.Remove(roomID)
	}

	s.pendingMu.Lock()
	delete(s.pending, roomID)
	s.pendingMu.Unlock()

	s.store.Clear(roomID)

	if st.Phase == roomstate.PhaseServing {
		s.admissionFromWait(now)
	}
	return st, nil
}

// State returns a room's live view, per §4.3 state(room_id).
func (s *Scheduler) State(roomID string) (roomstate.State, error) {
	st, ok := s.store.Get(roomID)
	if !ok {
		return roomstate.State{}, fmt.Errorf("%w: %s", acerrors.ErrUnknownRoom, roomID)
	}
	return st, nil
}

// SnapshotAll returns every known room's live view, per §4.3 snapshot_all().
func (s *Scheduler) SnapshotAll() []roomstate.State {
	return s.store.SnapshotAll()
}

// Submit hands a request to the Scheduler Core, per §4.3. CHANGE_TEMP is
// applied immediately and synchronously (it never touches queues or slot
// counts, so it needs no debouncing); every other action is coalesced into
// the per-room pending-request slot and picked up on the next tick whose
// debounce window has elapsed.
func (s *Scheduler) Submit(roomID string, req Request) (Status, error) {
	if !s.store.Exists(roomID) {
		return 0, fmt.Errorf("%w: %s", acerrors.ErrUnknownRoom, roomID)
	}
	if err := validateRequest(req); err != nil {
		return 0, err
	}

	now := s.clk.Now()
	if req.Action == ChangeTemp {
		s.applyChangeTemp(roomID, req)
		return Handled, nil
	}

	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	_, alreadyPending := s.pending[roomID]
	s.pending[roomID] = pendingRequest{req: req, submittedAt: now}
	if alreadyPending {
		return Coalesced, nil
	}
	return Handled, nil
}

// Run starts the tick loop on the caller's goroutine's clock and blocks
// until Stop is called. Callers typically invoke it via `go sched.Run()`.
func (s *Scheduler) Run() {
	defer close(s.doneCh)

	ticker := s.clk.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case now := <-ticker.C():
			s.tick(now)
		}
	}
}

// Stop requests the tick loop to exit after its in-flight tick completes
// (§5: "stopping the scheduler is a cooperative flag; in-flight tick
// completes, then the loop exits") and blocks until it has.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	<-s.doneCh
}

// Tick runs exactly one pass of the per-tick policy (§4.5) at the given
// time, bypassing the ticker. Tests drive the scheduler this way against a
// clock.Manual instead of racing Run's goroutine.
func (s *Scheduler) Tick(now time.Time) {
	s.tick(now)
}

func (s *Scheduler) tick(now time.Time) {
	s.drainDue(now)
	s.advanceAll(now)
	s.targetReachedCheck(now)
	s.timeSliceRotation(now)
	s.restartOnDrift(now)
	s.admissionFromWait(now)
}

func (s *Scheduler) publish(t events.Type, roomID string, now time.Time, fan acconfig.FanSpeed, mode acconfig.Mode) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.Event{Type: t, RoomID: roomID, Timestamp: now, Fan: fan, Mode: mode})
}

// closeRecord closes st's open record, if any, via the Detail Recorder and
// clears OpenRecordID on the in-memory copy. The caller is responsible for
// committing st back to the store afterward.
func (s *Scheduler) closeRecord(st *roomstate.State, now time.Time) {
	if st.OpenRecordID == "" {
		return
	}
	if err := s.recorder.Close(st.OpenRecordID, now, st.CurrentTemp, st.AccruedEnergy.Float64(), st.AccruedCost.Float64()); err != nil {
		logger.Room(st.RoomID).Warn("persistence failure closing record %s: %v", st.OpenRecordID, err)
	}
	s.publish(events.RecordClosed, st.RoomID, now, st.Fan, st.Mode)
	st.OpenRecordID = ""
}

// openRecord opens a new record for st under its current regime and stamps
// OpenRecordID on the in-memory copy. The caller commits st afterward.
func (s *Scheduler) openRecord(st *roomstate.State, now time.Time) {
	id, err := s.recorder.Open(st.RoomID, "", now, st.CurrentTemp, st.TargetTemp, st.Fan, st.Mode)
	if err != nil {
		logger.Room(st.RoomID).Warn("persistence failure opening record: %v", err)
		st.OpenRecordID = ""
		return
	}
	st.OpenRecordID = id
	s.publish(events.RecordOpened, st.RoomID, now, st.Fan, st.Mode)
}
