package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/rpupo63/mindmesh-portfolio/errs"
	"github.com/rpupo63/mindmesh-portfolio/models"
)

// Seed writes the default settings when none are stored and, if withDemoProjects is set,
// the demo projects into an empty catalog. It is safe to run on every start.
func Seed(ctx context.Context, repo Repository, withDemoProjects bool) error {
	if _, err := repo.LoadSettings(ctx); err != nil {
		if !errors.Is(err, errs.ErrNotFound) {
			return fmt.Errorf("seed settings: %w", err)
		}
		if _, err := repo.SaveSettings(ctx, models.DefaultSettings()); err != nil {
			return fmt.Errorf("seed settings: %w", err)
		}
		log.Info().Msg("seeded default settings")
	}

	if !withDemoProjects {
		return nil
	}

	existing, err := repo.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("seed projects: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	for _, draft := range models.DemoProjects() {
		if _, err := repo.CreateProject(ctx, draft); err != nil {
			return fmt.Errorf("seed project %q: %w", draft.Name, err)
		}
	}
	log.Info().Int("projects", len(models.DemoProjects())).Msg("seeded demo projects")
	return nil
}
