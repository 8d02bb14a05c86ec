package api

import (
	"time"

	"github.com/rpupo63/mindmesh-portfolio/admin"
	"github.com/rpupo63/mindmesh-portfolio/auth"
	"github.com/rpupo63/mindmesh-portfolio/catalog"
	"github.com/rpupo63/mindmesh-portfolio/database"
	"github.com/rpupo63/mindmesh-portfolio/leadgate"
	"github.com/rpupo63/mindmesh-portfolio/services"
)

// DefaultContactTimeout bounds a contact form delivery when ContactTimeout is unset.
const DefaultContactTimeout = 15 * time.Second

// Dependencies are the collaborators the HTTP layer is built from. Assistant, Mailer,
// Notifier and Metrics are optional.
type Dependencies struct {
	Repo      database.Repository
	Catalog   *catalog.Store
	Admin     *admin.Service
	Sessions  *auth.Manager
	Assistant *services.Assistant
	Mailer    *services.Mailer
	Notifier  leadgate.Notifier
	Metrics   *Metrics

	ContactTimeout time.Duration
}

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(deps Dependencies, startupTime time.Time) *routeHandlers {
	return &routeHandlers{
		publicHandler: newPublicHandler(deps, startupTime),
		authHandler:   newAuthHandler(deps.Sessions),
		adminHandler:  newAdminHandler(deps.Admin),
	}
}
