package detail

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"hotelacd/internal/acconfig"
	"hotelacd/internal/acerrors"
	"hotelacd/internal/logger"
)

// Row is the GORM model backing Record. Only the Detail Record table is in
// scope for persistence (§1); rooms/customers/orders/bills live entirely in
// the external collaborators this module never touches.
type Row struct {
	RecordID   string `gorm:"primaryKey;type:varchar(64)"`
	RoomID     string `gorm:"type:varchar(64);index"`
	OrderID    string `gorm:"type:varchar(64)"`
	StartTime  time.Time
	EndTime    time.Time
	StartTemp  float64
	EndTemp    float64
	TargetTemp float64
	Fan        string `gorm:"type:varchar(16)"`
	Mode       string `gorm:"type:varchar(16)"`
	Energy     float64
	Cost       float64
	Closed     bool
}

func (Row) TableName() string { return "ac_detail_records" }

// Gorm is the production Recorder, persisting to a GORM-managed SQLite
// database, grounded on the reference internal/db/detail_repository.go.
type Gorm struct {
	db *gorm.DB
}

// OpenSQLite opens (creating if needed) a SQLite-backed recorder at path
// and runs its migration.
func OpenSQLite(path string) (*Gorm, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("opening detail store: %w", err)
	}
	if err := db.AutoMigrate(&Row{}); err != nil {
		return nil, fmt.Errorf("migrating detail store: %w", err)
	}
	return &Gorm{db: db}, nil
}

func (g *Gorm) Open(roomID, orderID string, startTime time.Time, startTemp, targetTemp float64, fan acconfig.FanSpeed, mode acconfig.Mode) (string, error) {
	row := &Row{
		RecordID:   uuid.NewString(),
		RoomID:     roomID,
		OrderID:    orderID,
		StartTime:  startTime,
		StartTemp:  startTemp,
		TargetTemp: targetTemp,
		Fan:        fan.String(),
		Mode:       mode.String(),
	}
	if err := g.db.Create(row).Error; err != nil {
		logger.Error("detail: failed to open record for room %s: %v", roomID, err)
		return "", fmt.Errorf("%w: %v", acerrors.ErrPersistenceFailure, err)
	}
	logger.Room(roomID).Info("detail record %s opened (fan=%s mode=%s target=%.1f)", row.RecordID, row.Fan, row.Mode, row.TargetTemp)
	return row.RecordID, nil
}

func (g *Gorm) Update(recordID string, energy, cost, currentTemp float64) error {
	err := g.db.Model(&Row{}).
		Where("record_id = ? AND closed = ?", recordID, false).
		Updates(map[string]any{"energy": energy, "cost": cost, "end_temp": currentTemp}).Error
	if err != nil {
		logger.Error("detail: failed to update record %s: %v", recordID, err)
		return fmt.Errorf("%w: %v", acerrors.ErrPersistenceFailure, err)
	}
	return nil
}

func (g *Gorm) Close(recordID string, endTime time.Time, endTemp, energy, cost float64) error {
	result := g.db.Model(&Row{}).
		Where("record_id = ? AND closed = ?", recordID, false).
		Updates(map[string]any{
			"end_time": endTime,
			"end_temp": endTemp,
			"energy":   energy,
			"cost":     cost,
			"closed":   true,
		})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			logger.Debug("detail: close on unknown record %s", recordID)
			return nil
		}
		logger.Error("detail: failed to close record %s: %v", recordID, result.Error)
		return fmt.Errorf("%w: %v", acerrors.ErrPersistenceFailure, result.Error)
	}
	if result.RowsAffected == 0 {
		logger.Debug("detail: close on unknown or already-closed record %s", recordID)
	}
	return nil
}
