package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/rpupo63/mindmesh-portfolio/catalog"
	"github.com/rpupo63/mindmesh-portfolio/database"
	"github.com/rpupo63/mindmesh-portfolio/errs"
	"github.com/rpupo63/mindmesh-portfolio/leadgate"
	"github.com/rpupo63/mindmesh-portfolio/models"
	"github.com/rpupo63/mindmesh-portfolio/services"
)

type publicHandler struct {
	responder   Responder
	logger      zerolog.Logger
	repo        database.Repository
	store       *catalog.Store
	assistant   *services.Assistant
	mailer      *services.Mailer
	notifier    leadgate.Notifier
	metrics     *Metrics
	startupTime time.Time

	contactTimeout time.Duration
}

func newPublicHandler(deps Dependencies, startupTime time.Time) publicHandler {
	logger := log.With().Str("handlerName", "publicHandler").Logger()

	contactTimeout := deps.ContactTimeout
	if contactTimeout <= 0 {
		contactTimeout = DefaultContactTimeout
	}

	return publicHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		repo:        deps.Repo,
		store:       deps.Catalog,
		assistant:   deps.Assistant,
		mailer:      deps.Mailer,
		notifier:    deps.Notifier,
		metrics:     deps.Metrics,
		startupTime: startupTime,

		contactTimeout: contactTimeout,
	}
}

// health reports liveness
// @Summary Health check
// @Tags Public
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h publicHandler) health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := map[string]interface{}{
			"status":         "ok",
			"uptime_seconds": int(time.Since(h.startupTime).Seconds()),
		}
		if loadedAt := h.store.LoadedAt(); !loadedAt.IsZero() {
			response["catalog_loaded_at"] = loadedAt.UTC().Format(time.RFC3339)
		}
		h.responder.WriteJSON(w, response)
	}
}

// loadSettings returns the stored settings, or the defaults when none were saved yet.
func (h publicHandler) loadSettings(ctx context.Context) (models.Settings, error) {
	settings, err := h.repo.LoadSettings(ctx)
	if errors.Is(err, errs.ErrNotFound) {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return models.Settings{}, errs.NewPersistenceError("load", "settings", err)
	}
	return settings, nil
}

func (h publicHandler) ensureCatalog(ctx context.Context) error {
	if err := h.store.EnsureLoaded(ctx); err != nil {
		return errs.NewPersistenceError("load", "projects", err)
	}
	return nil
}

// activeProject finds a project that is currently shown on the public site.
func (h publicHandler) activeProject(r *http.Request) (models.Project, error) {
	projectID, err := projectIDParam(r)
	if err != nil {
		return models.Project{}, err
	}
	if err := h.ensureCatalog(r.Context()); err != nil {
		return models.Project{}, err
	}
	for _, p := range h.store.Active() {
		if p.ID == projectID {
			return p, nil
		}
	}
	return models.Project{}, errs.NewNotFoundError("project not found")
}

// getPortfolio returns everything the landing page needs in one call
// @Summary Get the public portfolio
// @Description Site settings, active projects (most recent first) and the technology filter options
// @Tags Public
// @Produce json
// @Success 200 {object} PortfolioResponse
// @Failure 500 {object} ErrorResponse
// @Router /portfolio [get]
func (h publicHandler) getPortfolio() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var settings models.Settings

		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			var err error
			settings, err = h.loadSettings(ctx)
			return err
		})
		g.Go(func() error {
			return h.ensureCatalog(ctx)
		})
		if err := g.Wait(); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		active := h.store.Active()
		h.responder.WriteJSON(w, PortfolioResponse{
			Settings:     settings,
			Projects:     catalog.Filter(active, catalog.Query{Sort: catalog.SortMostRecent}),
			Technologies: catalog.Technologies(active),
		})
	}
}

// getProjects runs the search, technology filter and sort over the active projects
// @Summary List visible projects
// @Tags Public
// @Produce json
// @Param search query string false "Case-insensitive match on name, description or technology"
// @Param tech query string false "Technology filter, 'all' for no filter"
// @Param sort query string false "most-recent | complexity-desc | complexity-asc"
// @Success 200 {object} ProjectCollection
// @Failure 500 {object} ErrorResponse
// @Router /projects [get]
func (h publicHandler) getProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.ensureCatalog(r.Context()); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		params := r.URL.Query()
		projects := h.store.Visible(catalog.Query{
			Search:     params.Get("search"),
			Technology: params.Get("tech"),
			Sort:       catalog.ParseSortKey(params.Get("sort")),
		})

		h.responder.WriteJSON(w, ProjectCollection{
			Projects: projects,
			Total:    len(projects),
		})
	}
}

// @Summary List the technology filter options
// @Tags Public
// @Produce json
// @Success 200 {array} string
// @Router /technologies [get]
func (h publicHandler) getTechnologies() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.ensureCatalog(r.Context()); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, catalog.Technologies(h.store.Active()))
	}
}

// @Summary Get the site settings
// @Tags Public
// @Produce json
// @Success 200 {object} models.Settings
// @Router /settings [get]
func (h publicHandler) getSettings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, err := h.loadSettings(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, settings)
	}
}

// unlockProject captures the visitor's contact details before revealing the project link
// @Summary Unlock a project link
// @Description Records a lead for the project and returns its external URL
// @Tags Public
// @Accept json
// @Produce json
// @Param projectID path string true "Project ID"
// @Param request body UnlockRequest true "Contact details"
// @Success 201 {object} UnlockResponse
// @Failure 400 {object} ErrorResponse "Validation failed, see fields"
// @Failure 404 {object} ErrorResponse "Unknown or hidden project"
// @Failure 500 {object} ErrorResponse
// @Router /projects/{projectID}/unlock [post]
func (h publicHandler) unlockProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, err := h.activeProject(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req UnlockRequest
		if err := decodeJSON(r, &req, "unlock request"); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var projectURL string
		opener := leadgate.LinkOpenerFunc(func(_ context.Context, url string) {
			projectURL = url
		})

		opts := []leadgate.Option{}
		if h.notifier != nil {
			opts = append(opts, leadgate.WithNotifier(h.notifier))
		}
		if h.metrics != nil {
			opts = append(opts, leadgate.WithObserver(h.metrics.observeGate))
		}

		gate := leadgate.New(h.repo, opener, opts...)
		gate.Open(project)
		lead, err := gate.Submit(r.Context(), req.Email, req.Phone)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSONWithStatus(w, http.StatusCreated, UnlockResponse{
			Lead:       lead,
			ProjectURL: projectURL,
		})
	}
}

// @Summary Get the assistant greeting for a project
// @Tags Public
// @Produce json
// @Param projectID path string true "Project ID"
// @Success 200 {object} ChatGreeting
// @Failure 404 {object} ErrorResponse
// @Router /projects/{projectID}/ask [get]
func (h publicHandler) getGreeting() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, err := h.activeProject(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, ChatGreeting{Greeting: services.Greeting(project.Name)})
	}
}

// askProject answers a visitor question from the project's long description
// @Summary Ask the project assistant
// @Description Assistant failures still answer 200 with a fallback message and an error string
// @Tags Public
// @Accept json
// @Produce json
// @Param projectID path string true "Project ID"
// @Param request body AskRequest true "Question"
// @Success 200 {object} AskResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /projects/{projectID}/ask [post]
func (h publicHandler) askProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, err := h.activeProject(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req AskRequest
		if err := decodeJSON(r, &req, "ask request"); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if strings.TrimSpace(req.Question) == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("question"))
			return
		}

		if h.assistant == nil {
			h.observeAssistant("unavailable")
			h.responder.WriteJSON(w, AskResponse{
				Answer: services.FallbackAnswer,
				Error:  errs.NewAIServiceError(errs.ErrAIUnavailable).Details,
			})
			return
		}

		answer, err := h.assistant.Ask(r.Context(), project.LongDescription, req.Question)
		if err != nil {
			h.logger.Warn().Err(err).Str("projectID", project.ID.String()).Msg("assistant failed")
			h.observeAssistant("error")
			h.responder.WriteJSON(w, AskResponse{
				Answer: services.FallbackAnswer,
				Error:  assistantErrorMessage(err),
			})
			return
		}

		h.observeAssistant("answered")
		h.responder.WriteJSON(w, AskResponse{Answer: answer})
	}
}

func (h publicHandler) observeAssistant(outcome string) {
	if h.metrics != nil {
		h.metrics.observeAssistant(outcome)
	}
}

func assistantErrorMessage(err error) string {
	var apiErr *errs.ApiErr
	if errors.As(err, &apiErr) && apiErr.Details != "" {
		return apiErr.Details
	}
	return err.Error()
}

// sendContact emails the contact form to the site owner
// @Summary Send a contact message
// @Tags Public
// @Accept json
// @Produce json
// @Param request body services.ContactMessage true "Contact form"
// @Success 202 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Failure 408 {object} map[string]interface{} "Email delivery timed out"
// @Failure 502 {object} ErrorResponse "Email delivery failed"
// @Failure 503 {object} ErrorResponse "Email not configured"
// @Router /contact [post]
func (h publicHandler) sendContact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var msg services.ContactMessage
		if err := decodeJSON(r, &msg, "contact message"); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		msg.Name = strings.TrimSpace(msg.Name)
		msg.Email = strings.TrimSpace(msg.Email)
		msg.Message = strings.TrimSpace(msg.Message)

		fields := errs.FieldErrors{}
		if msg.Name == "" {
			fields.Add("name", "Name is required.")
		}
		if !models.ValidEmail(msg.Email) {
			fields.Add("email", models.MsgInvalidEmail)
		}
		if msg.Message == "" {
			fields.Add("message", "Message is required.")
		}
		if err := fields.Err(); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		settings, err := h.loadSettings(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if settings.ContactEmail == "" {
			h.responder.WriteError(w, errs.NewConfigMissingError("contact email"))
			return
		}
		if h.mailer == nil {
			h.responder.WriteError(w, errs.NewConfigMissingError("RESEND_API_KEY"))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), h.contactTimeout)
		defer cancel()

		subject := fmt.Sprintf("New message from %s via %s", msg.Name, settings.SiteTitle)
		if err := h.mailer.SendEmail(ctx, subject, services.ContactHTML(msg), msg.Email, []string{settings.ContactEmail}); err != nil {
			if h.responder.CheckContextTimeout(ctx, w, h.contactTimeout, r.URL.Path) {
				return
			}
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSONWithStatus(w, http.StatusAccepted, map[string]string{
			"status":  "success",
			"message": "Message sent",
		})
	}
}
