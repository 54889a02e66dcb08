package pings

import (
	"time"

	"github.com/Lokii-git/vrpa-manager/internal/models"

	"gorm.io/gorm"
)

const DefaultRetentionDays = 30

// Repo — append-only ping history with opportunistic retention pruning:
// every write drops records older than the retention window.
type Repo struct {
	db            *gorm.DB
	retentionDays int
}

func NewRepo(db *gorm.DB, retentionDays int) *Repo {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	return &Repo{db: db, retentionDays: retentionDays}
}

func (r *Repo) Append(rec *models.PingRecord) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	if err := r.db.Create(rec).Error; err != nil {
		return err
	}
	cutoff := time.Now().AddDate(0, 0, -r.retentionDays)
	return r.db.Where("timestamp < ?", cutoff).Delete(&models.PingRecord{}).Error
}

// List filters by device id and/or a trailing-days window; both optional.
func (r *Repo) List(deviceID string, days int) ([]models.PingRecord, error) {
	q := r.db.Order("timestamp")
	if deviceID != "" {
		q = q.Where("device_id = ?", deviceID)
	}
	if days > 0 {
		q = q.Where("timestamp >= ?", time.Now().AddDate(0, 0, -days))
	}
	var out []models.PingRecord
	err := q.Find(&out).Error
	return out, err
}

func (r *Repo) DeviceHistory(deviceID string, days int) ([]models.PingRecord, error) {
	return r.List(deviceID, days)
}

func (r *Repo) DeleteForDevice(deviceID string) error {
	return r.db.Where("device_id = ?", deviceID).Delete(&models.PingRecord{}).Error
}
