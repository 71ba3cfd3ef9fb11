package scheduler

import (
	"sort"
	"time"

	"hotelacd/internal/events"
	"hotelacd/internal/roomstate"
	"hotelacd/internal/simulator"
)

// drainDue implements §4.5 step 1: apply every pending request whose
// debounce window has elapsed, in the order their windows expired
// (room_id lexicographic tiebreak), per §5's ordering guarantee.
func (s *Scheduler) drainDue(now time.Time) {
	type due struct {
		roomID     string
		req        Request
		eligibleAt time.Time
	}

	s.pendingMu.Lock()
	var dues []due
	for roomID, p := range s.pending {
		eligibleAt := p.submittedAt.Add(s.cfg.DebounceWindow)
		if !eligibleAt.After(now) {
			dues = append(dues, due{roomID, p.req, eligibleAt})
			delete(s.pending, roomID)
		}
	}
	s.pendingMu.Unlock()

	sort.Slice(dues, func(i, j int) bool {
		if !dues[i].eligibleAt.Equal(dues[j].eligibleAt) {
			return dues[i].eligibleAt.Before(dues[j].eligibleAt)
		}
		return dues[i].roomID < dues[j].roomID
	})

	for _, d := range dues {
		s.apply(d.roomID, d.req, now)
	}
}

// advanceAll implements §4.5 step 2: advance every known room's simulation
// by one tick. All rooms see the same Δt snapshot (cfg.TickInterval).
func (s *Scheduler) advanceAll(now time.Time) {
	for _, st := range s.store.SnapshotAll() {
		roomID := st.RoomID
		s.store.Mutate(roomID, func(r *roomstate.State) {
			s.sim.Advance(r, s.cfg.TickInterval)
		})
	}
}

// targetReachedCheck implements §4.5 step 3.
func (s *Scheduler) targetReachedCheck(now time.Time) {
	ids := make([]string, 0, len(s.serviceSet))
	for id := range s.serviceSet {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		st, ok := s.store.Get(id)
		if !ok {
			continue
		}
		if !simulator.TargetReached(st) {
			continue
		}
		s.closeRecord(&st, now)
		st.Phase = roomstate.PhaseStandby
		st.PhaseEnteredAt = now
		st.WaitSliceDeadline = time.Time{}
		s.store.Mutate(id, func(r *roomstate.State) { *r = st })
		delete(s.serviceSet, id)
		s.publish(events.RoomStandby, id, now, st.Fan, st.Mode)
		s.admissionFromWait(now)
	}
}

// timeSliceRotation implements §4.5 step 4: swap one (waiter, victim) pair
// per eligible waiter per tick, repeating until no eligible pair remains.
func (s *Scheduler) timeSliceRotation(now time.Time) {
	for {
		due := s.waitQ.DueForRotation(now)
		if len(due) == 0 {
			return
		}

		swapped := false
		for _, w := range due {
			victim, found := s.findRotationVictim(w.Priority, now)
			if !found {
				continue
			}
			s.waitQ.Remove(w.RoomID)
			s.evictToWaiting(victim, now)
			s.promoteToServing(w.RoomID, now)
			swapped = true
			break
		}
		if !swapped {
			return
		}
	}
}

// findRotationVictim picks the SERVING room to swap out for a waiter of the
// given priority: priority ≤ waiterPriority, longest service_duration wins,
// tie-broken by lowest priority then lowest room_id, per §4.5 step 4.
func (s *Scheduler) findRotationVictim(waiterPriority int, now time.Time) (string, bool) {
	var best string
	var bestState roomstate.State
	found := false

	for id := range s.serviceSet {
		st, ok := s.store.Get(id)
		if !ok {
			continue
		}
		p := s.cfg.Priority(st.Fan)
		if p > waiterPriority {
			continue
		}
		if !found {
			best, bestState, found = id, st, true
			continue
		}

		durCur := now.Sub(st.PhaseEnteredAt)
		durBest := now.Sub(bestState.PhaseEnteredAt)
		switch {
		case durCur != durBest:
			if durCur > durBest {
				best, bestState = id, st
			}
		case p != s.cfg.Priority(bestState.Fan):
			if p < s.cfg.Priority(bestState.Fan) {
				best, bestState = id, st
			}
		case id < best:
			best, bestState = id, st
		}
	}
	return best, found
}

// restartOnDrift implements §4.5 step 5: a STANDBY room that has drifted
// past TempThreshold is re-admitted with its remembered regime.
func (s *Scheduler) restartOnDrift(now time.Time) {
	for _, st := range s.store.SnapshotAll() {
		if st.Phase != roomstate.PhaseStandby {
			continue
		}
		if !simulator.DriftExceeds(st, s.cfg.TempThreshold) {
			continue
		}
		s.publish(events.RestartOnDrift, st.RoomID, now, st.Fan, st.Mode)
		s.applyPowerOn(st.RoomID, st.TargetTemp, st.Fan, st.Mode, now)
	}
}

// admissionFromWait implements §4.5 step 6: backfill free slots from the
// wait set, best candidate first.
func (s *Scheduler) admissionFromWait(now time.Time) {
	for len(s.serviceSet) < s.cfg.MaxServiceSlots {
		w, ok := s.waitQ.PopBest()
		if !ok {
			return
		}
		s.promoteToServing(w.RoomID, now)
	}
}
