// Package monitor renders fleet-wide status without coupling the Scheduler
// Core to anyone who wants to watch it: it subscribes to the event bus for
// individual transitions and polls SnapshotAll on its own interval for an
// aggregate view.
package monitor

import (
	"sync"
	"time"

	"hotelacd/internal/events"
	"hotelacd/internal/logger"
	"hotelacd/internal/roomstate"
	"hotelacd/internal/scheduler"
)

// RoomMetrics is one room's point-in-time view, suitable for JSON-rendering
// by whatever external reporting layer consumes it.
type RoomMetrics struct {
	RoomID        string        `json:"room_id"`
	Phase         string        `json:"phase"`
	Mode          string        `json:"mode"`
	Fan           string        `json:"fan"`
	CurrentTemp   float64       `json:"current_temp"`
	TargetTemp    float64       `json:"target_temp"`
	Energy        float64       `json:"energy"`
	Cost          float64       `json:"cost"`
	RemainingWait time.Duration `json:"remaining_wait,omitempty"`
}

// SystemMetrics summarizes the fleet.
type SystemMetrics struct {
	TotalRooms int `json:"total_rooms"`
	Serving    int `json:"serving"`
	Waiting    int `json:"waiting"`
	Standby    int `json:"standby"`
	Off        int `json:"off"`
}

// Metrics is the monitor's full point-in-time snapshot.
type Metrics struct {
	Timestamp time.Time              `json:"timestamp"`
	Rooms     map[string]RoomMetrics `json:"rooms"`
	System    SystemMetrics          `json:"system"`
}

// Monitor polls the scheduler on an interval and logs individual lifecycle
// events as they're published, grounded on the reference monitor's
// combination of periodic polling and event-bus reporting.
type Monitor struct {
	mu       sync.RWMutex
	bus      *events.Bus
	sched    *scheduler.Scheduler
	interval time.Duration
	metrics  Metrics
	subs     []events.Subscription
	stopCh   chan struct{}
}

// NewMonitor returns a Monitor that polls sched every interval (default 5s
// if interval is zero) and logs events published on bus.
func NewMonitor(bus *events.Bus, sched *scheduler.Scheduler, interval time.Duration) *Monitor {
	if interval == 0 {
		interval = 5 * time.Second
	}
	return &Monitor{
		bus:      bus,
		sched:    sched,
		interval: interval,
		metrics:  Metrics{Rooms: make(map[string]RoomMetrics)},
		stopCh:   make(chan struct{}),
	}
}

// Start subscribes to every lifecycle event type and begins the periodic
// poll loop on its own goroutine.
func (m *Monitor) Start() {
	for _, t := range []events.Type{
		events.RoomServing, events.RoomWaiting, events.RoomStandby, events.RoomOff,
		events.RoomPreempted, events.RecordOpened, events.RecordClosed, events.RestartOnDrift,
	} {
		m.subs = append(m.subs, m.bus.Subscribe(t, m.logEvent))
	}
	go m.run()
	logger.Info("monitor started with poll interval %v", m.interval)
}

// Stop unsubscribes from the event bus and stops the poll loop.
func (m *Monitor) Stop() {
	for _, sub := range m.subs {
		m.bus.Unsubscribe(sub)
	}
	close(m.stopCh)
	logger.Info("monitor stopped")
}

func (m *Monitor) run() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.poll()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Monitor) poll() {
	snapshot := m.sched.SnapshotAll()
	now := time.Now()

	rooms := make(map[string]RoomMetrics, len(snapshot))
	var sys SystemMetrics
	sys.TotalRooms = len(snapshot)

	for _, st := range snapshot {
		rooms[st.RoomID] = roomMetricsOf(st, now)
		switch st.Phase {
		case roomstate.PhaseServing:
			sys.Serving++
		case roomstate.PhaseWaiting:
			sys.Waiting++
		case roomstate.PhaseStandby:
			sys.Standby++
		case roomstate.PhaseOff:
			sys.Off++
		}
	}

	m.mu.Lock()
	m.metrics = Metrics{Timestamp: now, Rooms: rooms, System: sys}
	m.mu.Unlock()

	logger.Info("fleet: %d rooms, %d serving, %d waiting, %d standby, %d off",
		sys.TotalRooms, sys.Serving, sys.Waiting, sys.Standby, sys.Off)
}

func roomMetricsOf(st roomstate.State, now time.Time) RoomMetrics {
	return RoomMetrics{
		RoomID:        st.RoomID,
		Phase:         st.Phase.String(),
		Mode:          st.Mode.String(),
		Fan:           st.Fan.String(),
		CurrentTemp:   st.CurrentTemp,
		TargetTemp:    st.TargetTemp,
		Energy:        st.AccruedEnergy.Float64(),
		Cost:          st.AccruedCost.Float64(),
		RemainingWait: st.RemainingWait(now),
	}
}

func (m *Monitor) logEvent(e events.Event) {
	logger.Room(e.RoomID).Info("%s fan=%s mode=%s", e.Type, e.Fan, e.Mode)
}

// GetMetrics returns the most recent poll's snapshot.
func (m *Monitor) GetMetrics() Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.metrics
}

// GetRoomMetrics returns a single room's most recent poll entry.
func (m *Monitor) GetRoomMetrics(roomID string) (RoomMetrics, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rm, ok := m.metrics.Rooms[roomID]
	return rm, ok
}
