package detail

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"hotelacd/internal/acconfig"
	"hotelacd/internal/logger"
)

// Memory is an in-memory Recorder fake, used in tests, by the CLI's demo
// command, and by serve when --db is empty. It keeps every record (open and closed) so tests can
// assert on the full history of an occupancy.
type Memory struct {
	mu      sync.Mutex
	records map[string]*Record
}

// NewMemory returns an empty in-memory recorder.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]*Record)}
}

func (m *Memory) Open(roomID, orderID string, startTime time.Time, startTemp, targetTemp float64, fan acconfig.FanSpeed, mode acconfig.Mode) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	m.records[id] = &Record{
		RecordID:   id,
		RoomID:     roomID,
		OrderID:    orderID,
		StartTime:  startTime,
		StartTemp:  startTemp,
		TargetTemp: targetTemp,
		Fan:        fan,
		Mode:       mode,
		open:       true,
	}
	return id, nil
}

func (m *Memory) Update(recordID string, energy, cost, currentTemp float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.records[recordID]
	if !ok || !r.open {
		return nil
	}
	r.EnergyConsumed = energy
	r.Cost = cost
	r.EndTemp = currentTemp
	return nil
}

func (m *Memory) Close(recordID string, endTime time.Time, endTemp, energy, cost float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.records[recordID]
	if !ok || !r.open {
		logger.Debug("detail: close on unknown or already-closed record %s", recordID)
		return nil
	}
	r.EndTime = endTime
	r.EndTemp = endTemp
	r.EnergyConsumed = energy
	r.Cost = cost
	r.open = false
	return nil
}

// All returns every record (open and closed), for test assertions.
func (m *Memory) All() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Record, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, *r)
	}
	return out
}

// ByRoom returns every record for roomID, oldest first.
func (m *Memory) ByRoom(roomID string) []Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Record
	for _, r := range m.records {
		if r.RoomID == roomID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}
