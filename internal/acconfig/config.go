// Package acconfig holds the tunables for the scheduler and simulator: slot
// counts, wait-time slices, fan-speed power/rate tables, and temperature
// bands. Values default to the ones recovered from the original Python
// config.py; callers override individual fields through functional options.
package acconfig

import (
	"fmt"
	"time"

	"hotelacd/internal/acerrors"
)

// FanSpeed is one of LOW, MEDIUM, HIGH. Priority is LOW<MEDIUM<HIGH.
type FanSpeed int

const (
	FanLow FanSpeed = iota
	FanMedium
	FanHigh
)

func (f FanSpeed) String() string {
	switch f {
	case FanLow:
		return "low"
	case FanMedium:
		return "medium"
	case FanHigh:
		return "high"
	default:
		return "unknown"
	}
}

// ParseFanSpeed parses the wire representation of a fan speed.
func ParseFanSpeed(s string) (FanSpeed, error) {
	switch s {
	case "low":
		return FanLow, nil
	case "medium":
		return FanMedium, nil
	case "high":
		return FanHigh, nil
	default:
		return 0, fmt.Errorf("%w: unknown fan speed %q", acerrors.ErrInvalidRequest, s)
	}
}

// Mode is COOLING or HEATING.
type Mode int

const (
	ModeCooling Mode = iota
	ModeHeating
)

func (m Mode) String() string {
	if m == ModeHeating {
		return "heating"
	}
	return "cooling"
}

// ParseMode parses the wire representation of a mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "cooling":
		return ModeCooling, nil
	case "heating":
		return ModeHeating, nil
	default:
		return 0, fmt.Errorf("%w: unknown mode %q", acerrors.ErrInvalidRequest, s)
	}
}

// Config carries every scheduling and simulation tunable. The zero value is
// never valid; use Default() and override with options.
type Config struct {
	MaxServiceSlots int
	WaitTimeSlice   time.Duration
	TickInterval    time.Duration
	DebounceWindow  time.Duration

	DefaultTemp      float64
	InitialRoomTemp  float64
	CoolingMinTemp   float64
	CoolingMaxTemp   float64
	HeatingMinTemp   float64
	HeatingMaxTemp   float64
	TempThreshold    float64
	TempRestoreRate  float64 // °C/min, passive drift toward ambient
	PricePerDegree   float64

	FanSpeedPriority map[FanSpeed]int
	FanSpeedPower    map[FanSpeed]float64 // units/min
	TempChangeRate   map[FanSpeed]float64 // °C/min
}

// Default returns the configuration recovered from original_source/backend/config.py,
// not the (drifted) values transcribed into the reference Go scheduler.
func Default() Config {
	return Config{
		MaxServiceSlots: 3,
		WaitTimeSlice:   120 * time.Second,
		TickInterval:    1 * time.Second,
		DebounceWindow:  1 * time.Second,

		DefaultTemp:     25.0,
		InitialRoomTemp: 28.0,
		CoolingMinTemp:  18.0,
		CoolingMaxTemp:  25.0,
		HeatingMinTemp:  25.0,
		HeatingMaxTemp:  30.0,
		TempThreshold:   1.0,
		TempRestoreRate: 0.5,
		PricePerDegree:  1.0,

		FanSpeedPriority: map[FanSpeed]int{
			FanLow:    1,
			FanMedium: 2,
			FanHigh:   3,
		},
		FanSpeedPower: map[FanSpeed]float64{
			FanLow:    1.0 / 3.0,
			FanMedium: 0.5,
			FanHigh:   1.0,
		},
		TempChangeRate: map[FanSpeed]float64{
			FanLow:    1.0 / 3.0,
			FanMedium: 0.5,
			FanHigh:   1.0,
		},
	}
}

// Option mutates a Config built from Default().
type Option func(*Config)

// New builds a Config from Default() with the given overrides applied.
func New(opts ...Option) Config {
	cfg := Default()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func WithMaxServiceSlots(n int) Option { return func(c *Config) { c.MaxServiceSlots = n } }
func WithWaitTimeSlice(d time.Duration) Option {
	return func(c *Config) { c.WaitTimeSlice = d }
}
func WithTickInterval(d time.Duration) Option { return func(c *Config) { c.TickInterval = d } }

// Priority returns the arbitration priority of a fan speed (higher wins).
func (c Config) Priority(f FanSpeed) int {
	return c.FanSpeedPriority[f]
}

// Band returns the legal [min,max] target-temperature band for mode.
func (c Config) Band(m Mode) (float64, float64) {
	if m == ModeHeating {
		return c.HeatingMinTemp, c.HeatingMaxTemp
	}
	return c.CoolingMinTemp, c.CoolingMaxTemp
}

// Clamp clamps target into mode's legal band.
func (c Config) Clamp(m Mode, target float64) float64 {
	lo, hi := c.Band(m)
	if target < lo {
		return lo
	}
	if target > hi {
		return hi
	}
	return target
}
