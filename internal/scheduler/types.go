// Package scheduler is the Scheduler Core (§4.4/§4.5): the single logical
// writer that owns the service set, the wait set, and every room's live
// state. It handles power/temperature/fan-speed requests (with debouncing),
// enforces the concurrency cap, performs priority preemption and time-slice
// rotation, and detects target-reached and restart-on-drift transitions.
package scheduler

import (
	"fmt"
	"time"

	"hotelacd/internal/acconfig"
	"hotelacd/internal/acerrors"
)

// Action is one of the four request kinds a caller can submit (§3 "Pending
// Request").
type Action int

const (
	PowerOn Action = iota
	PowerOff
	ChangeTemp
	ChangeSpeed
)

func (a Action) String() string {
	switch a {
	case PowerOn:
		return "power_on"
	case PowerOff:
		return "power_off"
	case ChangeTemp:
		return "change_temp"
	case ChangeSpeed:
		return "change_speed"
	default:
		return "unknown"
	}
}

// Request is one submission to the Scheduler Core. TargetTemp, Fan, and Mode
// are optional (nil when the action does not carry them).
type Request struct {
	Action     Action
	TargetTemp *float64
	Fan        *acconfig.FanSpeed
	Mode       *acconfig.Mode
}

// Status is the synchronous result of Submit, per §4.3.
type Status int

const (
	Handled Status = iota
	Coalesced
)

func (s Status) String() string {
	if s == Coalesced {
		return "pending"
	}
	return "success"
}

// pendingRequest is one room's coalesced, not-yet-drained request (§3, §5).
type pendingRequest struct {
	req         Request
	submittedAt time.Time
}

// sanityTempLo/Hi bound CHANGE_TEMP/POWER_ON target temperatures before
// clamping into the mode's band (§7 InvalidRequest: "temperature outside
// global sanity bounds before clamping"). Values are generous on purpose —
// clamping into the mode band is the normal path (testable property 10);
// this check only rejects obviously malformed input.
const (
	sanityTempLo = -50.0
	sanityTempHi = 100.0
)

func validateRequest(req Request) error {
	switch req.Action {
	case PowerOn, PowerOff, ChangeTemp, ChangeSpeed:
	default:
		return fmt.Errorf("%w: unknown action %v", acerrors.ErrInvalidRequest, req.Action)
	}
	if req.TargetTemp != nil {
		t := *req.TargetTemp
		if t < sanityTempLo || t > sanityTempHi {
			return fmt.Errorf("%w: target_temp %.1f outside sanity bounds", acerrors.ErrInvalidRequest, t)
		}
	}
	return nil
}

func derefFan(f *acconfig.FanSpeed, def acconfig.FanSpeed) acconfig.FanSpeed {
	if f == nil {
		return def
	}
	return *f
}

func derefMode(m *acconfig.Mode, def acconfig.Mode) acconfig.Mode {
	if m == nil {
		return def
	}
	return *m
}

func derefFloat(f *float64, def float64) float64 {
	if f == nil {
		return def
	}
	return *f
}
