// Package memory is an in-process repository used by tests and DB_TYPE=memory.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rpupo63/mindmesh-portfolio/database"
	"github.com/rpupo63/mindmesh-portfolio/errs"
	"github.com/rpupo63/mindmesh-portfolio/models"
)

type Store struct {
	mu          sync.RWMutex
	projects    []models.Project
	leads       []models.Lead
	settings    *models.Settings
	credentials *models.Credentials
	now         func() time.Time
}

var _ database.Repository = (*Store)(nil)

func New() *Store {
	return &Store{now: func() time.Time { return time.Now().UTC() }}
}

func (s *Store) ListProjects(context.Context) ([]models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Project, len(s.projects))
	for i, p := range s.projects {
		out[i] = p.Clone()
	}
	return out, nil
}

func (s *Store) GetProject(_ context.Context, id uuid.UUID) (models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Project{}, fmt.Errorf("project %s: %w", id, errs.ErrNotFound)
	}
	return s.projects[i].Clone(), nil
}

func (s *Store) CreateProject(_ context.Context, draft models.ProjectDraft) (models.Project, error) {
	project := draft.NewProject()
	project.ID = uuid.New()
	project.Version = 1
	project.CreatedAt = s.now()

	s.mu.Lock()
	s.projects = append(s.projects, project.Clone())
	s.mu.Unlock()
	return project, nil
}

func (s *Store) UpdateProject(_ context.Context, project models.Project) (models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(project.ID)
	if i < 0 {
		return models.Project{}, fmt.Errorf("project %s: %w", project.ID, errs.ErrNotFound)
	}
	stored := s.projects[i]
	if project.Version != 0 && project.Version != stored.Version {
		return models.Project{}, fmt.Errorf("project %s: %w", project.ID, errs.ErrStaleVersion)
	}

	updated := project.Clone()
	updated.Version = stored.Version + 1
	updated.CreatedAt = stored.CreatedAt
	s.projects[i] = updated
	return updated.Clone(), nil
}

func (s *Store) DeleteProject(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		s.projects = append(s.projects[:i], s.projects[i+1:]...)
	}
	return nil
}

func (s *Store) ListLeads(context.Context) ([]models.Lead, error) {
	s.mu.RLock()
	out := make([]models.Lead, 0, len(s.leads))
	for i := len(s.leads) - 1; i >= 0; i-- {
		out = append(out, s.leads[i])
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].CapturedAt.After(out[j].CapturedAt) })
	return out, nil
}

func (s *Store) CreateLead(_ context.Context, draft models.LeadDraft) (models.Lead, error) {
	lead := models.Lead{
		ID:          uuid.New(),
		Email:       draft.Email,
		Phone:       draft.Phone,
		ProjectID:   draft.ProjectID,
		ProjectName: draft.ProjectName,
		CapturedAt:  s.now(),
	}
	s.mu.Lock()
	s.leads = append(s.leads, lead)
	s.mu.Unlock()
	return lead, nil
}

func (s *Store) LoadSettings(context.Context) (models.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return models.Settings{}, fmt.Errorf("settings: %w", errs.ErrNotFound)
	}
	return *s.settings, nil
}

func (s *Store) SaveSettings(_ context.Context, settings models.Settings) (models.Settings, error) {
	settings.ID = models.SettingsID
	s.mu.Lock()
	s.settings = &settings
	s.mu.Unlock()
	return settings, nil
}

func (s *Store) LoadCredentials(context.Context) (models.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.credentials == nil {
		return models.Credentials{}, fmt.Errorf("credentials: %w", errs.ErrNotFound)
	}
	return *s.credentials, nil
}

func (s *Store) SaveCredentials(_ context.Context, credentials models.Credentials) (models.Credentials, error) {
	credentials.ID = models.CredentialsID
	credentials.UpdatedAt = s.now()
	s.mu.Lock()
	s.credentials = &credentials
	s.mu.Unlock()
	return credentials, nil
}

func (s *Store) indexOf(id uuid.UUID) int {
	for i, p := range s.projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}
