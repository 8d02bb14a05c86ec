package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rpupo63/mindmesh-portfolio/errs"
	"github.com/rpupo63/mindmesh-portfolio/models"
)

// SettingsRepo reads and writes the settings singleton row.
type SettingsRepo struct {
	db *gorm.DB
}

func NewSettingsRepo(db *gorm.DB) *SettingsRepo {
	return &SettingsRepo{db}
}

func (r *SettingsRepo) Load(ctx context.Context) (models.Settings, error) {
	var settings models.Settings
	err := r.db.WithContext(ctx).Where("id = ?", models.SettingsID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Settings{}, fmt.Errorf("settings: %w", errs.ErrNotFound)
	}
	if err != nil {
		return models.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return settings, nil
}

func (r *SettingsRepo) Save(ctx context.Context, settings models.Settings) (models.Settings, error) {
	settings.ID = models.SettingsID
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&settings).Error
	if err != nil {
		return models.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	return settings, nil
}

// CredentialsRepo reads and writes the admin credentials row.
type CredentialsRepo struct {
	db *gorm.DB
}

func NewCredentialsRepo(db *gorm.DB) *CredentialsRepo {
	return &CredentialsRepo{db}
}

func (r *CredentialsRepo) Load(ctx context.Context) (models.Credentials, error) {
	var credentials models.Credentials
	err := r.db.WithContext(ctx).Where("id = ?", models.CredentialsID).First(&credentials).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Credentials{}, fmt.Errorf("credentials: %w", errs.ErrNotFound)
	}
	if err != nil {
		return models.Credentials{}, fmt.Errorf("load credentials: %w", err)
	}
	return credentials, nil
}

func (r *CredentialsRepo) Save(ctx context.Context, credentials models.Credentials) (models.Credentials, error) {
	credentials.ID = models.CredentialsID
	credentials.UpdatedAt = time.Now().UTC()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&credentials).Error
	if err != nil {
		return models.Credentials{}, fmt.Errorf("save credentials: %w", err)
	}
	return credentials, nil
}
