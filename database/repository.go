package database

import (
	"context"

	"github.com/google/uuid"

	"github.com/rpupo63/mindmesh-portfolio/models"
)

// Repository is the storage contract shared by the remote, local and in-memory stores.
//
// Lookups of absent records return an error matching errs.ErrNotFound. UpdateProject
// returns an error matching errs.ErrStaleVersion when the caller's Version no longer
// matches the stored one; a zero Version skips that check. DeleteProject of an absent id
// succeeds.
type Repository interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	GetProject(ctx context.Context, id uuid.UUID) (models.Project, error)
	CreateProject(ctx context.Context, draft models.ProjectDraft) (models.Project, error)
	UpdateProject(ctx context.Context, project models.Project) (models.Project, error)
	DeleteProject(ctx context.Context, id uuid.UUID) error

	ListLeads(ctx context.Context) ([]models.Lead, error)
	CreateLead(ctx context.Context, draft models.LeadDraft) (models.Lead, error)

	LoadSettings(ctx context.Context) (models.Settings, error)
	SaveSettings(ctx context.Context, settings models.Settings) (models.Settings, error)

	LoadCredentials(ctx context.Context) (models.Credentials, error)
	SaveCredentials(ctx context.Context, credentials models.Credentials) (models.Credentials, error)
}
