package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/mindmesh-portfolio/errs"
	"github.com/rpupo63/mindmesh-portfolio/models"
)

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

// FindAll returns every project, oldest first
func (r *ProjectRepo) FindAll(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// FindByID returns a project by its ID
func (r *ProjectRepo) FindByID(ctx context.Context, id uuid.UUID) (models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Project{}, fmt.Errorf("project %s: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return models.Project{}, fmt.Errorf("get project: %w", err)
	}
	return project, nil
}

// Add inserts a new project built from draft
func (r *ProjectRepo) Add(ctx context.Context, draft models.ProjectDraft) (models.Project, error) {
	project := draft.NewProject()
	project.ID = uuid.New()
	project.Version = 1
	project.CreatedAt = time.Now().UTC()

	if err := r.db.WithContext(ctx).Create(&project).Error; err != nil {
		return models.Project{}, fmt.Errorf("insert project: %w", err)
	}
	return project, nil
}

// Update replaces the stored project, bumping its version. The write only lands when the
// stored version still matches project.Version (unless that is zero).
func (r *ProjectRepo) Update(ctx context.Context, project models.Project) (models.Project, error) {
	tx := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", project.ID)
	if project.Version != 0 {
		tx = tx.Where("version = ?", project.Version)
	}

	res := tx.Updates(map[string]any{
		"name":              project.Name,
		"short_description": project.ShortDescription,
		"long_description":  project.LongDescription,
		"project_url":       project.ProjectURL,
		"technologies":      project.Technologies,
		"complexity":        project.Complexity,
		"project_date":      project.ProjectDate,
		"is_active":         project.IsActive,
		"avatar":            project.Avatar,
		"avatar_color":      project.AvatarColor,
		"version":           gorm.Expr("version + 1"),
	})
	if res.Error != nil {
		return models.Project{}, fmt.Errorf("update project: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, project.ID); err != nil {
			return models.Project{}, err
		}
		return models.Project{}, fmt.Errorf("project %s: %w", project.ID, errs.ErrStaleVersion)
	}
	return r.FindByID(ctx, project.ID)
}

// Delete removes a project by id; deleting an absent id is not an error
func (r *ProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Project{}).Error; err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}
