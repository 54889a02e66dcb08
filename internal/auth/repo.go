package auth

import (
	"time"

	"github.com/Lokii-git/vrpa-manager/internal/logs"
	"github.com/Lokii-git/vrpa-manager/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

func (r *Repo) FindByUsername(username string) (*models.User, error) {
	var u models.User
	if err := r.db.First(&u, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) FindByID(id string) (*models.User, error) {
	var u models.User
	if err := r.db.First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) Save(u *models.User) error {
	u.UpdatedAt = time.Now()
	return r.db.Save(u).Error
}

// EnsureDefaultAdmin creates admin/admin when no users exist. Loud on
// purpose: the credentials must be rotated after first login.
func (r *Repo) EnsureDefaultAdmin() error {
	var n int64
	if err := r.db.Model(&models.User{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), 10)
	if err != nil {
		return err
	}
	u := &models.User{
		ID:           uuid.NewString(),
		Username:     "admin",
		PasswordHash: string(hash),
		Role:         "admin",
	}
	if err := r.db.Create(u).Error; err != nil {
		return err
	}
	logs.Logger.Warn("initial admin user created (admin/admin) — change this password immediately after first login")
	return nil
}
