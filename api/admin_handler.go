package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/mindmesh-portfolio/admin"
	"github.com/rpupo63/mindmesh-portfolio/models"
)

type adminHandler struct {
	responder Responder
	logger    zerolog.Logger
	service   *admin.Service
}

func newAdminHandler(service *admin.Service) adminHandler {
	logger := log.With().Str("handlerName", "adminHandler").Logger()

	return adminHandler{
		responder: NewResponder(logger),
		logger:    logger,
		service:   service,
	}
}

// UpdateProjectRequest is the edit form. Version must echo the value that was read;
// zero skips the concurrent edit check.
type UpdateProjectRequest struct {
	models.ProjectDraft
	Version int `json:"version"`
}

// @Summary List all projects
// @Description Full catalog including hidden projects
// @Tags Admin
// @Produce json
// @Success 200 {object} ProjectCollection
// @Failure 401 {object} ErrorResponse
// @Router /admin/projects [get]
func (h adminHandler) getAllProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := h.service.Projects(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, ProjectCollection{
			Projects: projects,
			Total:    len(projects),
		})
	}
}

// @Summary Get project by ID
// @Tags Admin
// @Produce json
// @Param projectID path string true "Project ID"
// @Success 200 {object} models.Project
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/projects/{projectID} [get]
func (h adminHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := projectIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.service.Project(r.Context(), projectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, project)
	}
}

// @Summary Create project
// @Tags Admin
// @Accept json
// @Produce json
// @Param project body models.ProjectDraft true "Project"
// @Success 201 {object} models.Project
// @Failure 400 {object} ErrorResponse "Validation failed, see fields"
// @Failure 500 {object} ErrorResponse
// @Router /admin/projects [post]
func (h adminHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var draft models.ProjectDraft
		if err := decodeJSON(r, &draft, "project"); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.service.CreateProject(r.Context(), draft)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONWithStatus(w, http.StatusCreated, project)
	}
}

// @Summary Update project
// @Tags Admin
// @Accept json
// @Produce json
// @Param projectID path string true "Project ID"
// @Param project body UpdateProjectRequest true "Project"
// @Success 200 {object} models.Project
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Edited concurrently"
// @Router /admin/projects/{projectID} [put]
func (h adminHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := projectIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req UpdateProjectRequest
		if err := decodeJSON(r, &req, "project"); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		existing, err := h.service.Project(r.Context(), projectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project := req.ProjectDraft.NewProject()
		project.ID = projectID
		project.Version = req.Version
		project.CreatedAt = existing.CreatedAt

		updated, err := h.service.UpdateProject(r.Context(), project)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, updated)
	}
}

// @Summary Delete project
// @Description Deleting an id that no longer exists succeeds
// @Tags Admin
// @Produce json
// @Param projectID path string true "Project ID"
// @Success 200 {object} map[string]string
// @Router /admin/projects/{projectID} [delete]
func (h adminHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := projectIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.service.DeleteProject(r.Context(), projectID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, map[string]string{
			"status":  "success",
			"message": "Project deleted successfully",
		})
	}
}

// @Summary Toggle project visibility
// @Tags Admin
// @Produce json
// @Param projectID path string true "Project ID"
// @Success 200 {object} models.Project
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/projects/{projectID}/toggle [post]
func (h adminHandler) toggleProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := projectIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.service.ToggleActive(r.Context(), projectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, project)
	}
}

// @Summary Set project visibility
// @Tags Admin
// @Accept json
// @Produce json
// @Param projectID path string true "Project ID"
// @Param request body SetActiveRequest true "Visibility"
// @Success 200 {object} models.Project
// @Router /admin/projects/{projectID}/active [patch]
func (h adminHandler) setProjectActive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := projectIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req SetActiveRequest
		if err := decodeJSON(r, &req, "visibility"); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.service.SetActive(r.Context(), projectID, req.IsActive)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, project)
	}
}

// @Summary List captured leads
// @Tags Admin
// @Produce json
// @Success 200 {object} LeadCollection
// @Router /admin/leads [get]
func (h adminHandler) getLeads() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		leads, err := h.service.Leads(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, LeadCollection{Leads: leads, Total: len(leads)})
	}
}

// @Summary Export leads as CSV to object storage
// @Tags Admin
// @Produce json
// @Success 200 {object} services.ExportResult
// @Failure 503 {object} ErrorResponse "Export bucket not configured"
// @Router /admin/leads/export [post]
func (h adminHandler) exportLeads() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := h.service.ExportLeads(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, result)
	}
}

// @Summary Get site settings
// @Tags Admin
// @Produce json
// @Success 200 {object} models.Settings
// @Router /admin/settings [get]
func (h adminHandler) getSettings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteJSON(w, h.service.Settings(r.Context()))
	}
}

// @Summary Save site settings
// @Tags Admin
// @Accept json
// @Produce json
// @Param settings body models.SettingsDraft true "Settings"
// @Success 200 {object} models.Settings
// @Failure 400 {object} ErrorResponse
// @Router /admin/settings [put]
func (h adminHandler) saveSettings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var draft models.SettingsDraft
		if err := decodeJSON(r, &draft, "settings"); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		settings, err := h.service.SaveSettings(r.Context(), draft)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, settings)
	}
}

// @Summary Change the admin login
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body models.CredentialsUpdate true "Credentials update"
// @Success 200 {object} models.Credentials
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Provider does not manage credentials"
// @Router /admin/credentials [put]
func (h adminHandler) updateCredentials() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var update models.CredentialsUpdate
		if err := decodeJSON(r, &update, "credentials"); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		credentials, err := h.service.UpdateCredentials(r.Context(), update)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if session, ok := ctxGetSession(r.Context()); ok {
			h.logger.Info().Str("subject", session.Subject).Str("username", credentials.Username).Msg("admin credentials changed")
		}
		h.responder.WriteJSON(w, credentials)
	}
}

// @Summary Dashboard statistics
// @Tags Admin
// @Produce json
// @Success 200 {object} StatsResponse
// @Router /admin/stats [get]
func (h adminHandler) getStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := h.service.Stats(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		leads, err := h.service.Leads(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, StatsResponse{Stats: stats, Leads: len(leads)})
	}
}
