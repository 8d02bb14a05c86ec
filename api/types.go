package api

import (
	"github.com/rpupo63/mindmesh-portfolio/auth"
	"github.com/rpupo63/mindmesh-portfolio/catalog"
	"github.com/rpupo63/mindmesh-portfolio/errs"
	"github.com/rpupo63/mindmesh-portfolio/models"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	publicHandler publicHandler
	authHandler   authHandler
	adminHandler  adminHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string           `json:"error" example:"validation failed"`
	Message string           `json:"message,omitempty" example:"validation failed"`
	Status  string           `json:"status" example:"error"`
	Field   string           `json:"field,omitempty" example:"email"`
	Fields  errs.FieldErrors `json:"fields,omitempty"`
	Details string           `json:"details,omitempty" example:"Additional error details"`
	Cause   string           `json:"cause,omitempty" example:"Underlying error cause"`
}

// PortfolioResponse is everything the public landing page renders.
type PortfolioResponse struct {
	Settings     models.Settings  `json:"settings"`
	Projects     []models.Project `json:"projects"`
	Technologies []string         `json:"technologies"`
}

// ProjectCollection is a filtered list of projects.
type ProjectCollection struct {
	Projects []models.Project `json:"projects"`
	Total    int              `json:"total"`
}

type UnlockRequest struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type UnlockResponse struct {
	Lead       models.Lead `json:"lead"`
	ProjectURL string      `json:"projectUrl"`
}

type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse carries the assistant's answer. When the assistant fails, Answer holds the
// fallback sentence and Error explains why.
type AskResponse struct {
	Answer string `json:"answer"`
	Error  string `json:"error,omitempty"`
}

type ChatGreeting struct {
	Greeting string `json:"greeting"`
}

type SessionResponse struct {
	Authenticated bool          `json:"authenticated"`
	Session       *auth.Session `json:"session,omitempty"`
}

type SetActiveRequest struct {
	IsActive bool `json:"isActive"`
}

type StatsResponse struct {
	catalog.Stats
	Leads int `json:"leads"`
}

type LeadCollection struct {
	Leads []models.Lead `json:"leads"`
	Total int           `json:"total"`
}
