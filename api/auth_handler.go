package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/mindmesh-portfolio/auth"
	"github.com/rpupo63/mindmesh-portfolio/errs"
)

type authHandler struct {
	responder Responder
	logger    zerolog.Logger
	sessions  *auth.Manager
}

func newAuthHandler(sessions *auth.Manager) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder: NewResponder(logger),
		logger:    logger,
		sessions:  sessions,
	}
}

// login opens an admin session
// @Summary Admin login
// @Tags Admin Auth
// @Accept json
// @Produce json
// @Param request body auth.LoginRequest true "Credentials"
// @Success 200 {object} auth.Session
// @Failure 401 {object} ErrorResponse
// @Router /admin/login [post]
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.LoginRequest
		if err := decodeJSON(r, &req, "login request"); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		session, err := h.sessions.Login(r.Context(), req)
		if err != nil {
			h.logger.Warn().Str("username", req.Username).Msg("admin login rejected")
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Info().Str("subject", session.Subject).Msg("admin logged in")
		h.responder.WriteJSON(w, session)
	}
}

// @Summary Admin logout
// @Tags Admin Auth
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 401 {object} ErrorResponse
// @Router /admin/logout [post]
func (h authHandler) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			h.responder.WriteError(w, errs.NewMissingTokenError())
			return
		}

		if err := h.sessions.Logout(r.Context(), token); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, map[string]string{
			"status":  "success",
			"message": "Logged out",
		})
	}
}

// getSession reports whether the bearer token is still a valid session. It never fails
// with 401 so the console can poll it on start-up.
// @Summary Current admin session
// @Tags Admin Auth
// @Produce json
// @Success 200 {object} SessionResponse
// @Router /admin/session [get]
func (h authHandler) getSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			h.responder.WriteJSON(w, SessionResponse{Authenticated: false})
			return
		}

		session, err := h.sessions.Validate(r.Context(), token)
		if err != nil {
			if !errs.IsAuthError(err) {
				h.responder.WriteError(w, err)
				return
			}
			h.responder.WriteJSON(w, SessionResponse{Authenticated: false})
			return
		}

		h.responder.WriteJSON(w, SessionResponse{Authenticated: true, Session: &session})
	}
}
