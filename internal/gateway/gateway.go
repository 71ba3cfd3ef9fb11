// Package gateway implements the Request Gateway (§4.3): the thin façade
// external callers (check-in/check-out, the control API) invoke to submit
// requests and query state. It owns no state of its own beyond the
// Scheduler Core handle — every method is a direct, validated pass-through,
// grounded on the reference internal/ac's interface+struct+event-publish
// shape but holding no mutex of its own (the Scheduler Core is the single
// writer; this package never touches roomstate directly).
package gateway

import (
	"fmt"
	"time"

	"hotelacd/internal/acconfig"
	"hotelacd/internal/roomstate"
	"hotelacd/internal/scheduler"
)

// RoomView is the external representation of §6's state(room_id) result.
type RoomView struct {
	RoomID        string        `json:"room_id"`
	IsOn          bool          `json:"is_on"`
	Phase         string        `json:"phase"`
	CurrentTemp   float64       `json:"current_temp"`
	TargetTemp    float64       `json:"target_temp"`
	Fan           string        `json:"fan"`
	Mode          string        `json:"mode"`
	Energy        float64       `json:"energy"`
	Cost          float64       `json:"cost"`
	RemainingWait time.Duration `json:"remaining_wait,omitempty"`
}

// SubmitResult is §6's submit(...) return shape.
type SubmitResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Gateway is the Request Gateway. It holds only a Scheduler Core handle.
type Gateway struct {
	sched *scheduler.Scheduler
}

// New returns a Gateway backed by sched.
func New(sched *scheduler.Scheduler) *Gateway {
	return &Gateway{sched: sched}
}

// Init performs check-in: establishes a room at OFF with ambient defaults.
func (g *Gateway) Init(roomID string) {
	g.sched.Init(roomID)
}

// Clear performs check-out: finalizes any open record, frees the room's
// slot (promoting a waiter if one is eligible), and removes the room.
// Returns the final state at the moment of removal.
func (g *Gateway) Clear(roomID string) (RoomView, error) {
	st, err := g.sched.Clear(roomID)
	if err != nil {
		return RoomView{}, err
	}
	return viewOf(st, time.Time{}), nil
}

// PowerOn submits a POWER_ON request.
func (g *Gateway) PowerOn(roomID string, targetTemp float64, fan acconfig.FanSpeed, mode acconfig.Mode) (SubmitResult, error) {
	return g.submit(roomID, scheduler.Request{
		Action:     scheduler.PowerOn,
		TargetTemp: &targetTemp,
		Fan:        &fan,
		Mode:       &mode,
	})
}

// PowerOff submits a POWER_OFF request.
func (g *Gateway) PowerOff(roomID string) (SubmitResult, error) {
	return g.submit(roomID, scheduler.Request{Action: scheduler.PowerOff})
}

// ChangeTemp submits a CHANGE_TEMP request. Never debounced — applied
// immediately by the Scheduler Core.
func (g *Gateway) ChangeTemp(roomID string, targetTemp float64, mode acconfig.Mode) (SubmitResult, error) {
	return g.submit(roomID, scheduler.Request{
		Action:     scheduler.ChangeTemp,
		TargetTemp: &targetTemp,
		Mode:       &mode,
	})
}

// ChangeSpeed submits a CHANGE_SPEED request.
func (g *Gateway) ChangeSpeed(roomID string, fan acconfig.FanSpeed) (SubmitResult, error) {
	return g.submit(roomID, scheduler.Request{Action: scheduler.ChangeSpeed, Fan: &fan})
}

func (g *Gateway) submit(roomID string, req scheduler.Request) (SubmitResult, error) {
	status, err := g.sched.Submit(roomID, req)
	if err != nil {
		return SubmitResult{}, err
	}
	return SubmitResult{Status: status.String(), Message: fmt.Sprintf("request %s for room %s", status, roomID)}, nil
}

// State returns the live view of a single room, per §6 state(room_id).
func (g *Gateway) State(roomID string) (RoomView, error) {
	st, err := g.sched.State(roomID)
	if err != nil {
		return RoomView{}, err
	}
	return viewOf(st, time.Now()), nil
}

// SnapshotAll returns the live view of every known room, per §6
// snapshot_all().
func (g *Gateway) SnapshotAll() []RoomView {
	snapshot := g.sched.SnapshotAll()
	now := time.Now()
	out := make([]RoomView, 0, len(snapshot))
	for _, st := range snapshot {
		out = append(out, viewOf(st, now))
	}
	return out
}

func viewOf(st roomstate.State, now time.Time) RoomView {
	var remaining time.Duration
	if !now.IsZero() {
		remaining = st.RemainingWait(now)
	}
	return RoomView{
		RoomID:        st.RoomID,
		IsOn:          st.Phase == roomstate.PhaseServing || st.Phase == roomstate.PhaseWaiting,
		Phase:         st.Phase.String(),
		CurrentTemp:   st.CurrentTemp,
		TargetTemp:    st.TargetTemp,
		Fan:           st.Fan.String(),
		Mode:          st.Mode.String(),
		Energy:        st.AccruedEnergy.Float64(),
		Cost:          st.AccruedCost.Float64(),
		RemainingWait: remaining,
	}
}
