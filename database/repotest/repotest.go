// Package repotest holds the behavioural tests every database.Repository must pass.
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/mindmesh-portfolio/database"
	"github.com/rpupo63/mindmesh-portfolio/errs"
	"github.com/rpupo63/mindmesh-portfolio/models"
)

// Run exercises repo through the full contract. newRepo must return an empty repository.
func Run(t *testing.T, newRepo func(t *testing.T) database.Repository) {
	t.Run("projects", func(t *testing.T) { testProjects(t, newRepo(t)) })
	t.Run("complexity precision", func(t *testing.T) { testComplexityPrecision(t, newRepo(t)) })
	t.Run("update version check", func(t *testing.T) { testUpdateVersion(t, newRepo(t)) })
	t.Run("delete is idempotent", func(t *testing.T) { testDelete(t, newRepo(t)) })
	t.Run("leads", func(t *testing.T) { testLeads(t, newRepo(t)) })
	t.Run("settings", func(t *testing.T) { testSettings(t, newRepo(t)) })
	t.Run("credentials", func(t *testing.T) { testCredentials(t, newRepo(t)) })
	t.Run("seed", func(t *testing.T) { testSeed(t, newRepo(t)) })
}

func draft(name string) models.ProjectDraft {
	return models.ProjectDraft{
		Name:             name,
		ShortDescription: name + " short",
		LongDescription:  name + " long",
		ProjectURL:       "https://example.com/" + name,
		Technologies:     []string{"Go", "go", "Go"},
		Complexity:       7.5,
		ProjectDate:      models.NewDate(2024, time.March, 1),
		IsActive:         true,
		Avatar:           models.AvatarRobot2,
		AvatarColor:      models.ColorPurple,
	}
}

func testProjects(t *testing.T, repo database.Repository) {
	ctx := context.Background()

	empty, err := repo.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	first, err := repo.CreateProject(ctx, draft("first"))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.Equal(t, 1, first.Version)
	assert.Equal(t, []string{"Go", "go", "Go"}, []string(first.Technologies))
	assert.Equal(t, "2024-03-01", first.ProjectDate.String())

	second, err := repo.CreateProject(ctx, draft("second"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	got, err := repo.GetProject(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Name, got.Name)
	assert.Equal(t, first.ShortDescription, got.ShortDescription)
	assert.Equal(t, first.LongDescription, got.LongDescription)
	assert.Equal(t, first.ProjectURL, got.ProjectURL)
	assert.InDelta(t, 7.5, got.Complexity, 0.0001)
	assert.True(t, got.IsActive)
	assert.Equal(t, models.AvatarRobot2, got.Avatar)
	assert.Equal(t, models.ColorPurple, got.AvatarColor)

	all, err := repo.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "first", all[0].Name)
	assert.Equal(t, "second", all[1].Name)

	_, err = repo.GetProject(ctx, uuid.New())
	assert.ErrorIs(t, err, errs.ErrNotFound)

	got.IsActive = false
	got.Name = "renamed"
	updated, err := repo.UpdateProject(ctx, got)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "renamed", updated.Name)
	assert.Equal(t, 2, updated.Version)

	missing := got
	missing.ID = uuid.New()
	_, err = repo.UpdateProject(ctx, missing)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func testComplexityPrecision(t *testing.T, repo database.Repository) {
	ctx := context.Background()

	d := draft("precise")
	d.Complexity = 7.25
	created, err := repo.CreateProject(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, 7.25, created.Complexity)

	got, err := repo.GetProject(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 7.25, got.Complexity)

	got.Complexity = 9.125
	updated, err := repo.UpdateProject(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, 9.125, updated.Complexity)

	all, err := repo.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 9.125, all[0].Complexity)
}

func testUpdateVersion(t *testing.T, repo database.Repository) {
	ctx := context.Background()
	created, err := repo.CreateProject(ctx, draft("race"))
	require.NoError(t, err)

	sessionA := created
	sessionB := created

	sessionA.IsActive = !sessionA.IsActive
	_, err = repo.UpdateProject(ctx, sessionA)
	require.NoError(t, err)

	sessionB.IsActive = !sessionB.IsActive
	_, err = repo.UpdateProject(ctx, sessionB)
	assert.ErrorIs(t, err, errs.ErrStaleVersion)

	unchecked := created
	unchecked.Version = 0
	unchecked.Name = "forced"
	forced, err := repo.UpdateProject(ctx, unchecked)
	require.NoError(t, err)
	assert.Equal(t, "forced", forced.Name)
	assert.Equal(t, 3, forced.Version)
}

func testDelete(t *testing.T, repo database.Repository) {
	ctx := context.Background()
	created, err := repo.CreateProject(ctx, draft("doomed"))
	require.NoError(t, err)

	require.NoError(t, repo.DeleteProject(ctx, created.ID))
	require.NoError(t, repo.DeleteProject(ctx, created.ID))

	_, err = repo.GetProject(ctx, created.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func testLeads(t *testing.T, repo database.Repository) {
	ctx := context.Background()
	projectID := uuid.New()

	first, err := repo.CreateLead(ctx, models.LeadDraft{Email: "a@b.com", Phone: "555-123-4567", ProjectID: projectID, ProjectName: "Alpha"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.False(t, first.CapturedAt.IsZero())

	time.Sleep(2 * time.Millisecond)
	second, err := repo.CreateLead(ctx, models.LeadDraft{Email: "c@d.org", Phone: "+1 555-123-4567", ProjectID: projectID, ProjectName: "Alpha"})
	require.NoError(t, err)

	leads, err := repo.ListLeads(ctx)
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, second.ID, leads[0].ID)
	assert.Equal(t, first.ID, leads[1].ID)
	assert.Equal(t, projectID, leads[1].ProjectID)
	assert.Equal(t, "Alpha", leads[1].ProjectName)
}

func testSettings(t *testing.T, repo database.Repository) {
	ctx := context.Background()

	_, err := repo.LoadSettings(ctx)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	saved, err := repo.SaveSettings(ctx, models.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, models.SettingsID, saved.ID)

	changed := saved
	changed.SiteTitle = "Another Title"
	_, err = repo.SaveSettings(ctx, changed)
	require.NoError(t, err)

	loaded, err := repo.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Another Title", loaded.SiteTitle)
	assert.Equal(t, models.DefaultSettings().ContactEmail, loaded.ContactEmail)
}

func testCredentials(t *testing.T, repo database.Repository) {
	ctx := context.Background()

	_, err := repo.LoadCredentials(ctx)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = repo.SaveCredentials(ctx, models.Credentials{Username: "admin", PasswordHash: "h1", SecretKeyHash: "s1"})
	require.NoError(t, err)
	_, err = repo.SaveCredentials(ctx, models.Credentials{Username: "root", PasswordHash: "h2", SecretKeyHash: "s2"})
	require.NoError(t, err)

	loaded, err := repo.LoadCredentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, "root", loaded.Username)
	assert.Equal(t, "h2", loaded.PasswordHash)
	assert.Equal(t, "s2", loaded.SecretKeyHash)
	assert.False(t, loaded.UpdatedAt.IsZero())
}

func testSeed(t *testing.T, repo database.Repository) {
	ctx := context.Background()

	require.NoError(t, database.Seed(ctx, repo, true))
	require.NoError(t, database.Seed(ctx, repo, true))

	projects, err := repo.ListProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, len(models.DemoProjects()))

	settings, err := repo.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings().SiteTitle, settings.SiteTitle)
}
