package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"hotelacd/internal/acconfig"
	"hotelacd/internal/clock"
	"hotelacd/internal/detail"
	"hotelacd/internal/events"
	"hotelacd/internal/gateway"
	"hotelacd/internal/logger"
	"hotelacd/internal/monitor"
	"hotelacd/internal/roomstate"
	"hotelacd/internal/scheduler"
)

var (
	serveRooms       []string
	serveMonitorEach time.Duration

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduler's tick loop against real time until interrupted",
		RunE:  runServe,
	}
)

func init() {
	serveCmd.Flags().StringSliceVar(&serveRooms, "rooms", []string{"101", "102", "103", "104", "105"}, "room IDs to check in at startup")
	serveCmd.Flags().DurationVar(&serveMonitorEach, "monitor-interval", 5*time.Second, "fleet status poll interval")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := acconfig.Default()
	recorder, err := openRecorder()
	if err != nil {
		return err
	}

	store := roomstate.New(cfg)
	bus := events.NewBus()
	sched := scheduler.New(cfg, clock.Real{}, store, recorder, bus)
	gw := gateway.New(sched)
	mon := monitor.NewMonitor(bus, sched, serveMonitorEach)

	for _, roomID := range serveRooms {
		gw.Init(roomID)
	}

	go sched.Run()
	mon.Start()
	logger.Info("hotelacd serving %d rooms (max_service_slots=%d)", len(serveRooms), cfg.MaxServiceSlots)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	mon.Stop()
	sched.Stop()
	return nil
}

func openRecorder() (detail.Recorder, error) {
	if dbPath == "" {
		return detail.NewMemory(), nil
	}
	return detail.OpenSQLite(dbPath)
}
