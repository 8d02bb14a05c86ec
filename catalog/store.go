package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/mindmesh-portfolio/models"
)

// Loader is the part of the repository the store reads from.
type Loader interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
}

// Store keeps the most recently loaded catalog. Every Reload replaces the snapshot
// wholesale; a failed reload leaves the previous snapshot in place.
type Store struct {
	loader Loader
	logger zerolog.Logger

	mu       sync.RWMutex
	projects []models.Project
	loaded   bool
	loadedAt time.Time
}

func NewStore(loader Loader) *Store {
	return &Store{
		loader: loader,
		logger: log.With().Str("component", "catalogStore").Logger(),
	}
}

// Reload fetches the full catalog from the repository.
func (s *Store) Reload(ctx context.Context) error {
	projects, err := s.loader.ListProjects(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to reload catalog")
		return err
	}

	snapshot := make([]models.Project, len(projects))
	for i, p := range projects {
		snapshot[i] = p.Clone()
	}

	s.mu.Lock()
	s.projects = snapshot
	s.loaded = true
	s.loadedAt = time.Now()
	s.mu.Unlock()

	s.logger.Debug().Int("projects", len(snapshot)).Msg("catalog reloaded")
	return nil
}

// EnsureLoaded reloads only if nothing has been loaded yet.
func (s *Store) EnsureLoaded(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}
	return s.Reload(ctx)
}

// Snapshot returns a copy of the full catalog, active or not.
func (s *Store) Snapshot() []models.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Project, len(s.projects))
	for i, p := range s.projects {
		out[i] = p.Clone()
	}
	return out
}

// Active returns the projects visible on the public showcase.
func (s *Store) Active() []models.Project {
	return ActiveOnly(s.Snapshot())
}

// Visible runs the filter/sort pipeline over the active projects.
func (s *Store) Visible(q Query) []models.Project {
	return Filter(s.Active(), q)
}

// LoadedAt reports when the snapshot was last replaced.
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}
