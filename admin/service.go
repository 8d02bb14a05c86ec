// Package admin implements the operations behind the admin console. Every successful
// mutation is followed by a full catalog reload.
package admin

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/mindmesh-portfolio/catalog"
	"github.com/rpupo63/mindmesh-portfolio/database"
	"github.com/rpupo63/mindmesh-portfolio/errs"
	"github.com/rpupo63/mindmesh-portfolio/models"
	"github.com/rpupo63/mindmesh-portfolio/services"
)

// CredentialsUpdater rotates the admin login.
type CredentialsUpdater interface {
	UpdateCredentials(ctx context.Context, update models.CredentialsUpdate) (models.Credentials, error)
}

// LeadExporter ships the lead log somewhere outside the database.
type LeadExporter interface {
	Export(ctx context.Context, leads []models.Lead) (services.ExportResult, error)
}

type Service struct {
	repo        database.Repository
	store       *catalog.Store
	credentials CredentialsUpdater
	exporter    LeadExporter
	logger      zerolog.Logger
}

type Option func(*Service)

func WithCredentialsUpdater(c CredentialsUpdater) Option {
	return func(s *Service) { s.credentials = c }
}

func WithLeadExporter(e LeadExporter) Option {
	return func(s *Service) { s.exporter = e }
}

func NewService(repo database.Repository, store *catalog.Store, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		store:  store,
		logger: log.With().Str("component", "adminService").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Projects returns the full catalog, inactive projects included.
func (s *Service) Projects(ctx context.Context) ([]models.Project, error) {
	if err := s.store.EnsureLoaded(ctx); err != nil {
		return nil, errs.NewPersistenceError("load", "projects", err)
	}
	return s.store.Snapshot(), nil
}

func (s *Service) Project(ctx context.Context, id uuid.UUID) (models.Project, error) {
	project, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return models.Project{}, errs.NewPersistenceError("get", "project", err)
	}
	return project, nil
}

// CreateProject validates draft and stores it under a fresh id.
func (s *Service) CreateProject(ctx context.Context, draft models.ProjectDraft) (models.Project, error) {
	draft = models.NormalizeProjectDraft(draft)
	if err := models.ValidateProjectDraft(draft).Err(); err != nil {
		return models.Project{}, err
	}

	project, err := s.repo.CreateProject(ctx, draft)
	if err != nil {
		return models.Project{}, errs.NewPersistenceError("create", "project", err)
	}
	s.logger.Info().Str("projectID", project.ID.String()).Str("name", project.Name).Msg("project created")
	s.reload(ctx)
	return project, nil
}

// UpdateProject replaces the stored project with the same id.
func (s *Service) UpdateProject(ctx context.Context, project models.Project) (models.Project, error) {
	draft := models.NormalizeProjectDraft(project.Draft())
	if err := models.ValidateProjectDraft(draft).Err(); err != nil {
		return models.Project{}, err
	}
	normalized := draft.NewProject()
	normalized.ID = project.ID
	normalized.Version = project.Version
	normalized.CreatedAt = project.CreatedAt

	updated, err := s.repo.UpdateProject(ctx, normalized)
	if err != nil {
		return models.Project{}, errs.NewPersistenceError("update", "project", err)
	}
	s.logger.Info().Str("projectID", updated.ID.String()).Int("version", updated.Version).Msg("project updated")
	s.reload(ctx)
	return updated, nil
}

// DeleteProject removes the project; an id that is already gone is not an error.
func (s *Service) DeleteProject(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteProject(ctx, id); err != nil {
		return errs.NewPersistenceError("delete", "project", err)
	}
	s.logger.Info().Str("projectID", id.String()).Msg("project deleted")
	s.reload(ctx)
	return nil
}

// ToggleActive flips the active flag. The write carries the version that was read, so
// a concurrent change makes it fail with a conflict instead of being overwritten.
func (s *Service) ToggleActive(ctx context.Context, id uuid.UUID) (models.Project, error) {
	project, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return models.Project{}, errs.NewPersistenceError("get", "project", err)
	}
	project.IsActive = !project.IsActive
	return s.writeActive(ctx, project)
}

// SetActive sets the active flag to active. Repeating the call changes nothing.
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) (models.Project, error) {
	project, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return models.Project{}, errs.NewPersistenceError("get", "project", err)
	}
	if project.IsActive == active {
		return project, nil
	}
	project.IsActive = active
	return s.writeActive(ctx, project)
}

func (s *Service) writeActive(ctx context.Context, project models.Project) (models.Project, error) {
	updated, err := s.repo.UpdateProject(ctx, project)
	if err != nil {
		return models.Project{}, errs.NewPersistenceError("update", "project", err)
	}
	s.logger.Info().Str("projectID", updated.ID.String()).Bool("isActive", updated.IsActive).Msg("project visibility changed")
	s.reload(ctx)
	return updated, nil
}

// Settings returns the stored settings, or the defaults when they cannot be loaded.
func (s *Service) Settings(ctx context.Context) models.Settings {
	settings, err := s.repo.LoadSettings(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("falling back to default settings")
		return models.DefaultSettings()
	}
	return settings
}

func (s *Service) SaveSettings(ctx context.Context, draft models.SettingsDraft) (models.Settings, error) {
	if err := models.ValidateSettingsDraft(draft).Err(); err != nil {
		return models.Settings{}, err
	}
	saved, err := s.repo.SaveSettings(ctx, draft.Settings())
	if err != nil {
		return models.Settings{}, errs.NewPersistenceError("save", "settings", err)
	}
	s.logger.Info().Msg("settings saved")
	return saved, nil
}

// Leads returns the lead log, newest first.
func (s *Service) Leads(ctx context.Context) ([]models.Lead, error) {
	leads, err := s.repo.ListLeads(ctx)
	if err != nil {
		return nil, errs.NewPersistenceError("list", "leads", err)
	}
	return leads, nil
}

func (s *Service) ExportLeads(ctx context.Context) (services.ExportResult, error) {
	if s.exporter == nil {
		return services.ExportResult{}, errs.NewConfigMissingError("LEAD_EXPORT_BUCKET")
	}
	leads, err := s.Leads(ctx)
	if err != nil {
		return services.ExportResult{}, err
	}
	result, err := s.exporter.Export(ctx, leads)
	if err != nil {
		return services.ExportResult{}, err
	}
	s.logger.Info().Str("key", result.Key).Int("rows", result.Rows).Msg("leads exported")
	return result, nil
}

func (s *Service) UpdateCredentials(ctx context.Context, update models.CredentialsUpdate) (models.Credentials, error) {
	if s.credentials == nil {
		return models.Credentials{}, errs.NewForbiddenError("credentials cannot be changed here")
	}
	return s.credentials.UpdateCredentials(ctx, update)
}

// Stats summarizes the catalog for the dashboard header.
func (s *Service) Stats(ctx context.Context) (catalog.Stats, error) {
	projects, err := s.Projects(ctx)
	if err != nil {
		return catalog.Stats{}, err
	}
	return catalog.Summarize(projects), nil
}

// reload refreshes the catalog after a successful write. A failed reload leaves the
// previous snapshot in place and does not undo the write.
func (s *Service) reload(ctx context.Context) {
	if err := s.store.Reload(ctx); err != nil {
		s.logger.Error().Err(err).Msg("catalog reload after write failed")
	}
}
