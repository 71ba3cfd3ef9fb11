package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hotelacd/internal/acconfig"
	"hotelacd/internal/clock"
	"hotelacd/internal/detail"
	"hotelacd/internal/events"
	"hotelacd/internal/gateway"
	"hotelacd/internal/roomstate"
	"hotelacd/internal/scheduler"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the fill-and-preempt / time-slice-rotation scenario against a virtual clock",
	RunE:  runDemo,
}

// runDemo drives the scheduler through §8 scenarios S1 (fill and preempt)
// and S2 (time-slice rotation) against a clock.Manual, ticking by hand
// instead of waiting on real time.
func runDemo(cmd *cobra.Command, args []string) error {
	cfg := acconfig.Default()
	clk := clock.NewManual(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	store := roomstate.New(cfg)
	bus := events.NewBus()
	sched := scheduler.New(cfg, clk, store, detail.NewMemory(), bus)
	gw := gateway.New(sched)

	rooms := []string{"R1", "R2", "R3", "R4", "R5"}
	for _, r := range rooms {
		gw.Init(r)
	}

	drain := func() {
		clk.Advance(cfg.DebounceWindow)
		sched.Tick(clk.Now())
	}

	low := acconfig.FanLow
	high := acconfig.FanHigh
	cooling := acconfig.ModeCooling

	fmt.Println("-- S1: fill and preempt --")
	gw.PowerOn("R1", 22, low, cooling)
	gw.PowerOn("R2", 22, low, cooling)
	gw.PowerOn("R3", 22, low, cooling)
	drain()
	printSnapshot(gw)

	gw.PowerOn("R4", 22, high, cooling)
	drain()
	printSnapshot(gw)

	fmt.Println("-- S2: time-slice rotation (advancing", cfg.WaitTimeSlice, ") --")
	for elapsed := time.Duration(0); elapsed <= cfg.WaitTimeSlice+cfg.TickInterval; elapsed += cfg.TickInterval {
		clk.Advance(cfg.TickInterval)
		sched.Tick(clk.Now())
	}
	printSnapshot(gw)

	return nil
}

func printSnapshot(gw *gateway.Gateway) {
	for _, v := range gw.SnapshotAll() {
		fmt.Printf("  %-4s phase=%-8s fan=%-6s mode=%-7s current=%.2f target=%.2f cost=%.2f\n",
			v.RoomID, v.Phase, v.Fan, v.Mode, v.CurrentTemp, v.TargetTemp, v.Cost)
	}
}
