package team

import (
	"github.com/Lokii-git/vrpa-manager/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

func (r *Repo) GetMember(id string) (*models.TeamMember, error) {
	var m models.TeamMember
	if err := r.db.First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repo) List() ([]models.TeamMember, error) {
	var out []models.TeamMember
	err := r.db.Order("name").Find(&out).Error
	return out, err
}

func (r *Repo) Create(m *models.TeamMember) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return r.db.Create(m).Error
}

func (r *Repo) Save(m *models.TeamMember) error { return r.db.Save(m).Error }

func (r *Repo) Delete(id string) (bool, error) {
	tx := r.db.Delete(&models.TeamMember{}, "id = ?", id)
	return tx.RowsAffected > 0, tx.Error
}

// SeedDefaults inserts the starter roster when the table is empty.
func (r *Repo) SeedDefaults() error {
	var n int64
	if err := r.db.Model(&models.TeamMember{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	defaults := []models.TeamMember{
		{ID: uuid.NewString(), Name: "John Smith", Email: "john.smith@company.com"},
		{ID: uuid.NewString(), Name: "Sarah Johnson", Email: "sarah.johnson@company.com"},
		{ID: uuid.NewString(), Name: "Mike Chen", Email: "mike.chen@company.com"},
		{ID: uuid.NewString(), Name: "Emily Davis", Email: "emily.davis@company.com"},
	}
	return r.db.Create(&defaults).Error
}
