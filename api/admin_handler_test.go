package api

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/mindmesh-portfolio/auth"
	"github.com/rpupo63/mindmesh-portfolio/catalog"
	"github.com/rpupo63/mindmesh-portfolio/models"
)

func newDraft() models.ProjectDraft {
	return models.ProjectDraft{
		Name:             "Realtime Chat",
		ShortDescription: "WebSocket chat with presence.",
		LongDescription:  "Rooms, presence and typing indicators.",
		ProjectURL:       "https://github.com/example/chat",
		Technologies:     []string{"Go", "WebSocket"},
		Complexity:       6.5,
		ProjectDate:      models.MustParseDate("2024-05-01"),
		IsActive:         true,
		Avatar:           models.AvatarRobot4,
		AvatarColor:      models.ColorPurple,
	}
}

func TestAdminRequiresSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/admin/projects", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/admin/projects", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminLoginFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/admin/login", auth.LoginRequest{Username: testUsername, Password: "wrong", SecretKey: testSecretKey}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := env.login(t)

	rec = env.do(t, http.MethodGet, "/admin/session", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var session SessionResponse
	decode(t, rec, &session)
	assert.True(t, session.Authenticated)
	require.NotNil(t, session.Session)
	assert.Equal(t, testUsername, session.Session.Subject)

	rec = env.do(t, http.MethodGet, "/admin/projects", nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/admin/logout", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/admin/projects", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/admin/session", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	session = SessionResponse{}
	decode(t, rec, &session)
	assert.False(t, session.Authenticated)

	rec = env.do(t, http.MethodGet, "/metrics", nil, "")
	assert.Contains(t, rec.Body.String(), `portfolio_admin_session_events_total{type="login"} 1`)
	assert.Contains(t, rec.Body.String(), `portfolio_admin_session_events_total{type="logout"} 1`)
}

func TestAdminProjectLifecycle(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rec := env.do(t, http.MethodPost, "/admin/projects", models.ProjectDraft{Name: "Incomplete"}, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var invalid ErrorResponse
	decode(t, rec, &invalid)
	assert.Contains(t, invalid.Fields, "projectUrl")
	assert.Contains(t, invalid.Fields, "shortDescription")

	rec = env.do(t, http.MethodPost, "/admin/projects", newDraft(), token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created models.Project
	decode(t, rec, &created)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, 1, created.Version)
	path := "/admin/projects/" + created.ID.String()

	// the public catalog is reloaded after every write
	rec = env.do(t, http.MethodGet, "/projects?search=websocket", nil, "")
	var visible ProjectCollection
	decode(t, rec, &visible)
	assert.Equal(t, []string{"Realtime Chat"}, projectNames(visible.Projects))

	rec = env.do(t, http.MethodGet, path, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	edit := UpdateProjectRequest{ProjectDraft: newDraft(), Version: created.Version}
	edit.Complexity = 7.5
	rec = env.do(t, http.MethodPut, path, edit, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated models.Project
	decode(t, rec, &updated)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, 7.5, updated.Complexity)

	// the same stale version loses
	rec = env.do(t, http.MethodPut, path, edit, token)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, path+"/toggle", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var toggled models.Project
	decode(t, rec, &toggled)
	assert.False(t, toggled.IsActive)

	rec = env.do(t, http.MethodGet, "/projects?search=websocket", nil, "")
	visible = ProjectCollection{}
	decode(t, rec, &visible)
	assert.Empty(t, visible.Projects)

	for i := 0; i < 2; i++ {
		rec = env.do(t, http.MethodPatch, path+"/active", SetActiveRequest{IsActive: true}, token)
		require.Equal(t, http.StatusOK, rec.Code)
		var active models.Project
		decode(t, rec, &active)
		assert.True(t, active.IsActive)
		assert.Equal(t, 4, active.Version, "setting the same value twice writes once")
	}

	rec = env.do(t, http.MethodGet, "/admin/stats", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats StatsResponse
	decode(t, rec, &stats)
	assert.Equal(t, catalog.Stats{Total: 4, Active: 3, Inactive: 1}, stats.Stats)

	for i := 0; i < 2; i++ {
		rec = env.do(t, http.MethodDelete, path, nil, token)
		assert.Equal(t, http.StatusOK, rec.Code, "delete is idempotent")
	}

	rec = env.do(t, http.MethodGet, path, nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPut, path, edit, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminSettings(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rec := env.do(t, http.MethodPut, "/admin/settings", models.SettingsDraft{SiteTitle: "Labs", ContactEmail: "not-an-email"}, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var invalid ErrorResponse
	decode(t, rec, &invalid)
	assert.Equal(t, models.MsgInvalidEmail, invalid.Fields["contactEmail"])

	draft := models.SettingsDraft{
		SiteTitle:    "Labs",
		SiteTagline:  "Things I built",
		AboutMe:      "Hello.",
		ContactEmail: "owner@example.com",
	}
	rec = env.do(t, http.MethodPut, "/admin/settings", draft, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/settings", nil, "")
	var settings models.Settings
	decode(t, rec, &settings)
	assert.Equal(t, "Labs", settings.SiteTitle)
	assert.Equal(t, "owner@example.com", settings.ContactEmail)
}

func TestAdminLeads(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)
	project := env.projectByName(t, "E-commerce Platform")

	for _, email := range []string{"first@example.com", "second@example.com"} {
		rec := env.do(t, http.MethodPost, "/projects/"+project.ID.String()+"/unlock", UnlockRequest{Email: email, Phone: "555.123.4567"}, "")
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := env.do(t, http.MethodGet, "/admin/leads", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var leads LeadCollection
	decode(t, rec, &leads)
	require.Equal(t, 2, leads.Total)
	assert.Equal(t, "second@example.com", leads.Leads[0].Email)

	rec = env.do(t, http.MethodPost, "/admin/leads/export", nil, token)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAdminUpdateCredentials(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rec := env.do(t, http.MethodPut, "/admin/credentials", models.CredentialsUpdate{CurrentPassword: "wrong", NewUsername: "owner"}, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPut, "/admin/credentials", models.CredentialsUpdate{
		CurrentPassword: testPassword,
		NewUsername:     "owner",
		NewPassword:     "a-much-longer-password",
	}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password", "hashes never leave the server")

	rec = env.do(t, http.MethodPost, "/admin/login", auth.LoginRequest{Username: "owner", Password: "a-much-longer-password", SecretKey: testSecretKey}, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
