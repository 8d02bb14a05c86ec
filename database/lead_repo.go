package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/mindmesh-portfolio/models"
)

type LeadRepo struct {
	db *gorm.DB
}

func NewLeadRepo(db *gorm.DB) *LeadRepo {
	return &LeadRepo{db}
}

// FindAll returns every lead, newest first
func (r *LeadRepo) FindAll(ctx context.Context) ([]models.Lead, error) {
	var leads []models.Lead
	err := r.db.WithContext(ctx).Order("captured_at DESC").Find(&leads).Error
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return leads, nil
}

func (r *LeadRepo) Add(ctx context.Context, draft models.LeadDraft) (models.Lead, error) {
	lead := models.Lead{
		ID:          uuid.New(),
		Email:       draft.Email,
		Phone:       draft.Phone,
		ProjectID:   draft.ProjectID,
		ProjectName: draft.ProjectName,
		CapturedAt:  time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&lead).Error; err != nil {
		return models.Lead{}, fmt.Errorf("insert lead: %w", err)
	}
	return lead, nil
}
