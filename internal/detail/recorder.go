package detail

import (
	"time"

	"hotelacd/internal/acconfig"
)

// Recorder is the Detail Recorder interface from §4.6/§6. The Scheduler
// Core depends on this interface, never on a concrete storage backend —
// tests use Memory; production wiring uses a GORM-backed implementation.
type Recorder interface {
	// Open begins a new billable segment for roomID and returns its
	// record_id. orderID may be empty.
	Open(roomID, orderID string, startTime time.Time, startTemp, targetTemp float64, fan acconfig.FanSpeed, mode acconfig.Mode) (string, error)

	// Update optionally reports interim energy/cost/temperature for an
	// open record. Terminal values at Close suffice; callers may skip this.
	Update(recordID string, energy, cost, currentTemp float64) error

	// Close finalizes a record. Closing an already-closed or unknown
	// record_id is a no-op, logged, never an error — §4.6's idempotence
	// invariant.
	Close(recordID string, endTime time.Time, endTemp, energy, cost float64) error
}
