package api

import (
	"github.com/go-chi/chi/v5"
)

// setupPublicRoutes registers the visitor-facing showcase endpoints.
func setupPublicRoutes(r chi.Router, handlers *routeHandlers) {
	r.Get("/health", handlers.publicHandler.health())
	r.Get("/portfolio", handlers.publicHandler.getPortfolio())
	r.Get("/projects", handlers.publicHandler.getProjects())
	r.Get("/technologies", handlers.publicHandler.getTechnologies())
	r.Get("/settings", handlers.publicHandler.getSettings())
	r.Post("/projects/{projectID}/unlock", handlers.publicHandler.unlockProject())
	r.Get("/projects/{projectID}/ask", handlers.publicHandler.getGreeting())
	r.Post("/projects/{projectID}/ask", handlers.publicHandler.askProject())
	r.Post("/contact", handlers.publicHandler.sendContact())
}

// setupAdminRoutes registers the admin console; everything except login and the session
// probe needs a bearer session.
func setupAdminRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Route("/admin", func(r chi.Router) {
		r.Post("/login", handlers.authHandler.login())
		r.Post("/logout", handlers.authHandler.logout())
		r.Get("/session", handlers.authHandler.getSession())

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.authenticate)

			r.Get("/projects", handlers.adminHandler.getAllProjects())
			r.Post("/projects", handlers.adminHandler.createProject())
			r.Get("/projects/{projectID}", handlers.adminHandler.getProject())
			r.Put("/projects/{projectID}", handlers.adminHandler.updateProject())
			r.Delete("/projects/{projectID}", handlers.adminHandler.deleteProject())
			r.Post("/projects/{projectID}/toggle", handlers.adminHandler.toggleProject())
			r.Patch("/projects/{projectID}/active", handlers.adminHandler.setProjectActive())

			r.Get("/leads", handlers.adminHandler.getLeads())
			r.Post("/leads/export", handlers.adminHandler.exportLeads())

			r.Get("/settings", handlers.adminHandler.getSettings())
			r.Put("/settings", handlers.adminHandler.saveSettings())
			r.Put("/credentials", handlers.adminHandler.updateCredentials())
			r.Get("/stats", handlers.adminHandler.getStats())
		})
	})
}
