package fleet

import (
	"errors"

	"github.com/Lokii-git/vrpa-manager/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("device not found")

// Store — persistence contract for the fleet, so the lifecycle logic stays
// storage-agnostic.
type Store interface {
	GetDevice(id string) (*models.Device, error)
	ListDevices() ([]models.Device, error)
	CreateDevice(d *models.Device) error
	SaveDevice(d *models.Device) error
	DeleteDevice(id string) error

	SaveCheckout(c *models.Checkout) error
	SaveSchedule(s *models.ScheduledDeployment) error
	DeleteSchedule(id string) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

func (s *GormStore) GetDevice(id string) (*models.Device, error) {
	var d models.Device
	err := s.db.Preload("CurrentCheckout").Preload("NextScheduled").
		First(&d, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (s *GormStore) ListDevices() ([]models.Device, error) {
	var out []models.Device
	err := s.db.Preload("CurrentCheckout").Preload("NextScheduled").
		Order("created_at").Find(&out).Error
	return out, err
}

func (s *GormStore) CreateDevice(d *models.Device) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return s.db.Create(d).Error
}

func (s *GormStore) SaveDevice(d *models.Device) error {
	return s.db.Omit("CurrentCheckout", "NextScheduled").Save(d).Error
}

func (s *GormStore) DeleteDevice(id string) error {
	tx := s.db.Delete(&models.Device{}, "id = ?", id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) SaveCheckout(c *models.Checkout) error {
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(c).Error
}

func (s *GormStore) SaveSchedule(d *models.ScheduledDeployment) error {
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(d).Error
}

func (s *GormStore) DeleteSchedule(id string) error {
	return s.db.Delete(&models.ScheduledDeployment{}, "id = ?", id).Error
}
