package mailtpl

import (
	"errors"

	"github.com/Lokii-git/vrpa-manager/internal/models"

	"gorm.io/gorm"
)

// defaultBody seeds the template store on first boot.
const defaultBody = `Hello,

Your vRPA has been deployed and is ready for use.

Download link: ` + PlaceholderToken + `

Please confirm receipt and reach out if you run into any issues connecting.

Thanks,
The vRPA Team`

// Repo stores the single deployment email template, replaced wholesale.
type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Get() (string, error) {
	var t models.EmailTemplate
	if err := r.db.First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return t.Body, nil
}

func (r *Repo) Set(body string) error {
	var t models.EmailTemplate
	err := r.db.First(&t).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return r.db.Create(&models.EmailTemplate{Body: body}).Error
	}
	t.Body = body
	return r.db.Save(&t).Error
}

// SeedDefault installs the stock template when none is stored.
func (r *Repo) SeedDefault() error {
	var n int64
	if err := r.db.Model(&models.EmailTemplate{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return r.db.Create(&models.EmailTemplate{Body: defaultBody}).Error
}
