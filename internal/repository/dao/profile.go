package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrProfileNotFound = errors.New("profile not found")

// Profile mirrors the identity provider's user. is_admin and display_name are managed out of band.
type Profile struct {
	ID          string `gorm:"primaryKey"`
	Email       string `gorm:"index"`
	DisplayName string
	IsAdmin     bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

type ProfileDAO struct {
	db *gorm.DB
}

func NewProfileDAO(db *gorm.DB) *ProfileDAO {
	return &ProfileDAO{
		db: db,
	}
}

func (d *ProfileDAO) FindByID(ctx context.Context, id string) (Profile, error) {
	var profile Profile
	err := d.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Profile{}, ErrProfileNotFound
	}

	return profile, err
}

func (d *ProfileDAO) FindByIDs(ctx context.Context, ids []string) ([]Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var profiles []Profile
	err := d.db.WithContext(ctx).Where("id IN ?", ids).Find(&profiles).Error

	return profiles, err
}

// UpsertEmail records the email seen on a verified token without touching admin or display fields.
func (d *ProfileDAO) UpsertEmail(ctx context.Context, id, email string) error {
	profile := Profile{ID: id, Email: email}

	return d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "updated_at"}),
	}).Create(&profile).Error
}

// Save writes every column. Used by seeding and tests.
func (d *ProfileDAO) Save(ctx context.Context, profile Profile) error {
	return d.db.WithContext(ctx).Save(&profile).Error
}
