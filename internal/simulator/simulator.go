// Package simulator advances one room's temperature and cost accrual by one
// tick, per §4.2. It has no knowledge of queues or scheduling — the
// Scheduler Core decides which phase a room is in; the simulator only
// knows how that phase evolves over Δt.
package simulator

import (
	"time"

	"hotelacd/internal/acconfig"
	"hotelacd/internal/money"
	"hotelacd/internal/roomstate"
)

// Simulator holds the config needed to compute per-tick deltas.
type Simulator struct {
	cfg acconfig.Config
}

// New returns a Simulator bound to cfg's rate tables.
func New(cfg acconfig.Config) *Simulator {
	return &Simulator{cfg: cfg}
}

// Advance mutates s in place to reflect one tick of duration dt.
func (sim *Simulator) Advance(s *roomstate.State, dt time.Duration) {
	minutes := dt.Minutes()

	switch s.Phase {
	case roomstate.PhaseServing:
		sim.advanceServing(s, minutes)
	case roomstate.PhaseWaiting:
		// no temperature change, no cost accrual: airflow is stopped.
	case roomstate.PhaseStandby, roomstate.PhaseOff:
		sim.advanceDrift(s, minutes)
	}
}

func (sim *Simulator) advanceServing(s *roomstate.State, minutes float64) {
	rate := sim.cfg.TempChangeRate[s.Fan]
	power := sim.cfg.FanSpeedPower[s.Fan]
	delta := rate * minutes
	energyDelta := power * minutes
	costDelta := money.FromFloat(energyDelta * sim.cfg.PricePerDegree)

	switch s.Mode {
	case acconfig.ModeCooling:
		if s.CurrentTemp > s.TargetTemp {
			s.CurrentTemp -= delta
			if s.CurrentTemp < s.TargetTemp {
				s.CurrentTemp = s.TargetTemp
			}
			s.AccruedEnergy = s.AccruedEnergy.Add(money.FromFloat(energyDelta))
			s.AccruedCost = s.AccruedCost.Add(costDelta)
		}
	case acconfig.ModeHeating:
		if s.CurrentTemp < s.TargetTemp {
			s.CurrentTemp += delta
			if s.CurrentTemp > s.TargetTemp {
				s.CurrentTemp = s.TargetTemp
			}
			s.AccruedEnergy = s.AccruedEnergy.Add(money.FromFloat(energyDelta))
			s.AccruedCost = s.AccruedCost.Add(costDelta)
		}
	}
}

// advanceDrift pulls current_temp toward the ambient temperature
// (InitialRoomTemp, the building's passive baseline) at TempRestoreRate,
// clamped so it never overshoots ambient.
func (sim *Simulator) advanceDrift(s *roomstate.State, minutes float64) {
	ambient := sim.cfg.InitialRoomTemp
	delta := sim.cfg.TempRestoreRate * minutes

	switch {
	case s.CurrentTemp < ambient:
		s.CurrentTemp += delta
		if s.CurrentTemp > ambient {
			s.CurrentTemp = ambient
		}
	case s.CurrentTemp > ambient:
		s.CurrentTemp -= delta
		if s.CurrentTemp < ambient {
			s.CurrentTemp = ambient
		}
	}
}

// TargetReached reports whether a SERVING room has reached its setpoint,
// per §4.5 step 3.
func TargetReached(s roomstate.State) bool {
	switch s.Mode {
	case acconfig.ModeCooling:
		return s.CurrentTemp <= s.TargetTemp
	case acconfig.ModeHeating:
		return s.CurrentTemp >= s.TargetTemp
	default:
		return false
	}
}

// DriftExceeds reports whether a STANDBY room has drifted from its target
// by more than threshold in the aggravating direction, per §4.5 step 5.
func DriftExceeds(s roomstate.State, threshold float64) bool {
	switch s.Mode {
	case acconfig.ModeCooling:
		return s.CurrentTemp > s.TargetTemp+threshold
	case acconfig.ModeHeating:
		return s.CurrentTemp < s.TargetTemp-threshold
	default:
		return false
	}
}
