package scheduler

import (
	"time"

	"hotelacd/internal/acconfig"
	"hotelacd/internal/events"
	"hotelacd/internal/queue"
	"hotelacd/internal/roomstate"
)

// apply dispatches a drained (or internally generated) request to its §4.4
// handler. ChangeTemp normally never reaches here — Submit applies it
// synchronously — but the case is handled defensively.
func (s *Scheduler) apply(roomID string, req Request, now time.Time) {
	switch req.Action {
	case PowerOn:
		mode := derefMode(req.Mode, acconfig.ModeCooling)
		fan := derefFan(req.Fan, acconfig.FanMedium)
		target := derefFloat(req.TargetTemp, s.cfg.DefaultTemp)
		s.applyPowerOn(roomID, target, fan, mode, now)
	case PowerOff:
		s.applyPowerOff(roomID, now)
	case ChangeSpeed:
		s.applyChangeSpeed(roomID, derefFan(req.Fan, acconfig.FanMedium), now)
	case ChangeTemp:
		s.applyChangeTemp(roomID, req)
	}
}

// applyPowerOn implements §4.4 POWER_ON.
func (s *Scheduler) applyPowerOn(roomID string, target float64, fan acconfig.FanSpeed, mode acconfig.Mode, now time.Time) {
	target = s.cfg.Clamp(mode, target)

	st, ok := s.store.Get(roomID)
	if !ok {
		return
	}

	switch st.Phase {
	case roomstate.PhaseServing:
		s.closeRecord(&st, now)
		st.Fan = fan
		st.Mode = mode
		st.TargetTemp = target
		s.openRecord(&st, now)
		s.store.Mutate(roomID, func(r *roomstate.State) { *r = st })
		s.publish(events.RoomServing, roomID, now, fan, mode)

	case roomstate.PhaseWaiting:
		oldPriority := s.cfg.Priority(st.Fan)
		st.Fan = fan
		st.Mode = mode
		st.TargetTemp = target
		s.store.Mutate(roomID, func(r *roomstate.State) { *r = st })
		s.refreshWaitPriority(roomID, fan)
		if s.cfg.Priority(fan) > oldPriority {
			s.tryPreemptFromWait(roomID, now)
		}

	default: // OFF, STANDBY
		if len(s.serviceSet) < s.cfg.MaxServiceSlots {
			s.admitToService(roomID, target, fan, mode, now)
		} else {
			s.admissionByPreemption(roomID, target, fan, mode, now)
		}
	}
}

// applyPowerOff implements §4.4 POWER_OFF.
func (s *Scheduler) applyPowerOff(roomID string, now time.Time) {
	st, ok := s.store.Get(roomID)
	if !ok {
		return
	}

	switch st.Phase {
	case roomstate.PhaseServing:
		s.closeRecord(&st, now)
		st.Phase = roomstate.PhaseOff
		st.PhaseEnteredAt = now
		st.WaitSliceDeadline = time.Time{}
		s.store.Mutate(roomID, func(r *roomstate.State) { *r = st })
		delete(s.serviceSet, roomID)
		s.publish(events.RoomOff, roomID, now, st.Fan, st.Mode)
		s.admissionFromWait(now)

	case roomstate.PhaseWaiting:
		s.closeRecord(&st, now) // defensive; WAITING rooms carry no open record
		s.waitQ.Remove(roomID)
		st.Phase = roomstate.PhaseOff
		st.PhaseEnteredAt = now
		st.WaitSliceDeadline = time.Time{}
		s.store.Mutate(roomID, func(r *roomstate.State) { *r = st })
		s.publish(events.RoomOff, roomID, now, st.Fan, st.Mode)

	case roomstate.PhaseStandby:
		st.Phase = roomstate.PhaseOff
		st.PhaseEnteredAt = now
		s.store.Mutate(roomID, func(r *roomstate.State) { *r = st })
		s.publish(events.RoomOff, roomID, now, st.Fan, st.Mode)
	}
}

// applyChangeTemp implements §4.4 CHANGE_TEMP: update target_temp and mode
// wherever the room is, touching nothing else.
func (s *Scheduler) applyChangeTemp(roomID string, req Request) {
	s.store.Mutate(roomID, func(st *roomstate.State) {
		mode := st.Mode
		if req.Mode != nil {
			mode = *req.Mode
		}
		target := st.TargetTemp
		if req.TargetTemp != nil {
			target = *req.TargetTemp
		}
		st.Mode = mode
		st.TargetTemp = s.cfg.Clamp(mode, target)
	})
}

// applyChangeSpeed implements §4.4 CHANGE_SPEED.
func (s *Scheduler) applyChangeSpeed(roomID string, fan acconfig.FanSpeed, now time.Time) {
	st, ok := s.store.Get(roomID)
	if !ok {
		return
	}

	switch st.Phase {
	case roomstate.PhaseServing:
		s.closeRecord(&st, now)
		st.Fan = fan
		s.openRecord(&st, now)
		s.store.Mutate(roomID, func(r *roomstate.State) { *r = st })

	case roomstate.PhaseWaiting:
		st.Fan = fan
		s.store.Mutate(roomID, func(r *roomstate.State) { *r = st })
		s.refreshWaitPriority(roomID, fan)
		s.tryPreemptFromWait(roomID, now)

	default:
		s.store.Mutate(roomID, func(r *roomstate.State) { r.Fan = fan })
	}
}

// admitToService gives roomID a free slot outright: no preemption needed.
func (s *Scheduler) admitToService(roomID string, target float64, fan acconfig.FanSpeed, mode acconfig.Mode, now time.Time) {
	st, ok := s.store.Get(roomID)
	if !ok {
		return
	}
	st.Phase = roomstate.PhaseServing
	st.Fan = fan
	st.Mode = mode
	st.TargetTemp = target
	st.PhaseEnteredAt = now
	st.WaitSliceDeadline = time.Time{}
	s.openRecord(&st, now)
	s.store.Mutate(roomID, func(r *roomstate.State) { *r = st })
	s.serviceSet[roomID] = struct{}{}
	s.publish(events.RoomServing, roomID, now, fan, mode)
}

// admissionByPreemption implements §4.4's admission-by-preemption: evict the
// lowest-priority, longest-serving candidate below p_new if one exists,
// otherwise join the wait set with no record opened.
func (s *Scheduler) admissionByPreemption(roomID string, target float64, fan acconfig.FanSpeed, mode acconfig.Mode, now time.Time) {
	pNew := s.cfg.Priority(fan)
	victim, found := s.selectPreemptionVictim(pNew, now)
	if !found {
		s.addToWaitSet(roomID, target, fan, mode, now)
		return
	}
	s.evictToWaiting(victim, now)
	s.admitToService(roomID, target, fan, mode, now)
}

// addToWaitSet puts an OFF or STANDBY room that found no free slot and no
// preemptible server into the wait set. No detail record is opened (no
// service is given while waiting).
func (s *Scheduler) addToWaitSet(roomID string, target float64, fan acconfig.FanSpeed, mode acconfig.Mode, now time.Time) {
	st, ok := s.store.Get(roomID)
	if !ok {
		return
	}
	st.Fan = fan
	st.Mode = mode
	st.TargetTemp = target
	st.Phase = roomstate.PhaseWaiting
	st.PhaseEnteredAt = now
	st.WaitSliceDeadline = now.Add(s.cfg.WaitTimeSlice)
	st.OpenRecordID = ""
	s.store.Mutate(roomID, func(r *roomstate.State) { *r = st })
	s.waitQ.Add(&queue.Waiter{
		RoomID:            roomID,
		Priority:          s.cfg.Priority(fan),
		WaitSliceDeadline: st.WaitSliceDeadline,
		PhaseEnteredAt:    st.PhaseEnteredAt,
	})
	s.publish(events.RoomWaiting, roomID, now, fan, mode)
}

// evictToWaiting demotes a currently-SERVING room to WAITING, closing its
// record and preserving its accruals, per §4.4 step 2 / §4.5 step 4.
func (s *Scheduler) evictToWaiting(roomID string, now time.Time) {
	st, ok := s.store.Get(roomID)
	if !ok {
		return
	}
	s.closeRecord(&st, now)
	st.Phase = roomstate.PhaseWaiting
	st.PhaseEnteredAt = now
	st.WaitSliceDeadline = now.Add(s.cfg.WaitTimeSlice)
	s.store.Mutate(roomID, func(r *roomstate.State) { *r = st })
	delete(s.serviceSet, roomID)
	s.waitQ.Add(&queue.Waiter{
		RoomID:            roomID,
		Priority:          s.cfg.Priority(st.Fan),
		WaitSliceDeadline: st.WaitSliceDeadline,
		PhaseEnteredAt:    st.PhaseEnteredAt,
	})
	s.publish(events.RoomPreempted, roomID, now, st.Fan, st.Mode)
	s.publish(events.RoomWaiting, roomID, now, st.Fan, st.Mode)
}

// promoteToServing moves a waiting room into the service set, opening a new
// record and carrying its accruals forward untouched.
func (s *Scheduler) promoteToServing(roomID string, now time.Time) {
	st, ok := s.store.Get(roomID)
	if !ok {
		return
	}
	st.Phase = roomstate.PhaseServing
	st.PhaseEnteredAt = now
	st.WaitSliceDeadline = time.Time{}
	s.openRecord(&st, now)
	s.store.Mutate(roomID, func(r *roomstate.State) { *r = st })
	s.serviceSet[roomID] = struct{}{}
	s.publish(events.RoomServing, roomID, now, st.Fan, st.Mode)
}

// refreshWaitPriority re-inserts roomID's wait-queue entry with its new fan
// priority, keeping its existing deadline and phase_entered_at.
func (s *Scheduler) refreshWaitPriority(roomID string, fan acconfig.FanSpeed) {
	w, ok := s.waitQ.Remove(roomID)
	if !ok {
		return
	}
	s.waitQ.Add(&queue.Waiter{
		RoomID:            roomID,
		Priority:          s.cfg.Priority(fan),
		WaitSliceDeadline: w.WaitSliceDeadline,
		PhaseEnteredAt:    w.PhaseEnteredAt,
	})
}

// tryPreemptFromWait checks whether a WAITING room's current fan priority
// now lets it displace a lower-priority server, per CHANGE_SPEED's rule
// reused for POWER_ON regime changes on a waiting room.
func (s *Scheduler) tryPreemptFromWait(roomID string, now time.Time) {
	wst, ok := s.store.Get(roomID)
	if !ok {
		return
	}
	victim, found := s.selectPreemptionVictim(s.cfg.Priority(wst.Fan), now)
	if !found {
		return
	}
	s.waitQ.Remove(roomID)
	s.evictToWaiting(victim, now)
	s.promoteToServing(roomID, now)
}

// selectPreemptionVictim picks the service-set member to evict for a new
// priority pNew: lowest priority strictly below pNew, tie-broken by longest
// service_duration, per §4.4's admission-by-preemption step 1.
func (s *Scheduler) selectPreemptionVictim(pNew int, now time.Time) (string, bool) {
	var best string
	var bestState roomstate.State
	found := false

	for id := range s.serviceSet {
		st, ok := s.store.Get(id)
		if !ok {
			continue
		}
		p := s.cfg.Priority(st.Fan)
		if p >= pNew {
			continue
		}
		if !found {
			best, bestState, found = id, st, true
			continue
		}
		bp := s.cfg.Priority(bestState.Fan)
		if p != bp {
			if p < bp {
				best, bestState = id, st
			}
			continue
		}
		if now.Sub(st.PhaseEnteredAt) > now.Sub(bestState.PhaseEnteredAt) {
			best, bestState = id, st
		}
	}
	return best, found
}
