// Package leadgate implements the contact form a visitor fills in before following a
// project's external link.
package leadgate

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/mindmesh-portfolio/errs"
	"github.com/rpupo63/mindmesh-portfolio/models"
)

// MsgSubmitFailed is shown when the lead could not be recorded.
const MsgSubmitFailed = "Sorry, there was an error submitting your information. Please try again."

type State int

const (
	Closed State = iota
	AwaitingInput
	Validating
	Rejected
	Accepted
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case AwaitingInput:
		return "awaiting_input"
	case Validating:
		return "validating"
	case Rejected:
		return "rejected"
	case Accepted:
		return "accepted"
	default:
		return "unknown"
	}
}

// LeadWriter records a captured lead and assigns its id and timestamp.
type LeadWriter interface {
	CreateLead(ctx context.Context, draft models.LeadDraft) (models.Lead, error)
}

// LinkOpener sends the visitor to the project's external link.
type LinkOpener interface {
	OpenLink(ctx context.Context, url string)
}

type LinkOpenerFunc func(ctx context.Context, url string)

func (f LinkOpenerFunc) OpenLink(ctx context.Context, url string) { f(ctx, url) }

// Notifier is told about every accepted lead. Its failures never change the outcome.
type Notifier interface {
	NotifyLead(ctx context.Context, lead models.Lead) error
}

type Option func(*Gate)

func WithNotifier(n Notifier) Option {
	return func(g *Gate) { g.notifier = n }
}

// WithObserver registers fn to be called on every state transition.
func WithObserver(fn func(from, to State)) Option {
	return func(g *Gate) { g.observe = fn }
}

type Gate struct {
	leads    LeadWriter
	opener   LinkOpener
	notifier Notifier
	observe  func(from, to State)
	logger   zerolog.Logger

	mu      sync.Mutex
	state   State
	project models.Project
	email   string
	phone   string
	fields  errs.FieldErrors
	failure string
}

func New(leads LeadWriter, opener LinkOpener, opts ...Option) *Gate {
	g := &Gate{
		leads:  leads,
		opener: opener,
		logger: log.With().Str("component", "leadGate").Logger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Open starts a capture for project. Opening while another capture is pending restarts it.
func (g *Gate) Open(project models.Project) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.project = project.Clone()
	g.reset()
	g.transition(AwaitingInput)
}

// Close abandons the capture without recording anything.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.reset()
	g.transition(Closed)
}

// Submit validates the contact fields and, when they pass, records the lead and opens
// the project link exactly once. On any failure the gate stays open for another try.
func (g *Gate) Submit(ctx context.Context, email, phone string) (models.Lead, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != AwaitingInput {
		return models.Lead{}, errs.NewBadRequestError("lead gate is not open")
	}

	g.email = strings.TrimSpace(email)
	g.phone = strings.TrimSpace(phone)
	g.fields = nil
	g.failure = ""
	g.transition(Validating)

	if fields := models.ValidateContact(g.email, g.phone); len(fields) > 0 {
		g.fields = fields
		g.transition(Rejected)
		g.transition(AwaitingInput)
		return models.Lead{}, fields.Err()
	}

	lead, err := g.leads.CreateLead(ctx, models.LeadDraft{
		Email:       g.email,
		Phone:       g.phone,
		ProjectID:   g.project.ID,
		ProjectName: g.project.Name,
	})
	if err != nil {
		g.logger.Error().Err(err).Str("projectID", g.project.ID.String()).Msg("failed to record lead")
		g.failure = MsgSubmitFailed
		g.transition(AwaitingInput)
		return models.Lead{}, errs.NewInternalErrorWithDetails(MsgSubmitFailed, err)
	}

	g.transition(Accepted)
	g.opener.OpenLink(ctx, g.project.ProjectURL)

	if g.notifier != nil {
		if err := g.notifier.NotifyLead(ctx, lead); err != nil {
			g.logger.Warn().Err(err).Str("leadID", lead.ID.String()).Msg("lead notification failed")
		}
	}

	g.reset()
	g.transition(Closed)
	return lead, nil
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// FieldErrors returns the messages from the last rejected submission.
func (g *Gate) FieldErrors() errs.FieldErrors {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(errs.FieldErrors, len(g.fields))
	for k, v := range g.fields {
		out[k] = v
	}
	return out
}

// Failure returns the generic message from the last collaborator failure, if any.
func (g *Gate) Failure() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.failure
}

// Captured returns the email and phone currently held by the form.
func (g *Gate) Captured() (email, phone string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.email, g.phone
}

func (g *Gate) reset() {
	g.email = ""
	g.phone = ""
	g.fields = nil
	g.failure = ""
}

func (g *Gate) transition(to State) {
	from := g.state
	g.state = to
	if g.observe != nil {
		g.observe(from, to)
	}
}
