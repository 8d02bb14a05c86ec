// Package auth authenticates the admin console. The local provider checks bcrypt-hashed
// credentials and issues signed session tokens; the descope provider delegates both to
// Descope.
package auth

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/mindmesh-portfolio/errs"
	"github.com/rpupo63/mindmesh-portfolio/models"
)

const (
	ProviderLocal   = "local"
	ProviderDescope = "descope"
)

// Session is an authenticated admin session.
type Session struct {
	Token     string    `json:"token"`
	Subject   string    `json:"subject"`
	Provider  string    `json:"provider"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// LoginRequest is the admin login form. SecretKey is only checked by the local provider.
type LoginRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	SecretKey string `json:"secretKey"`
}

type Authenticator interface {
	Login(ctx context.Context, req LoginRequest) (Session, error)
	Validate(ctx context.Context, token string) (Session, error)
	Logout(ctx context.Context, token string) error
	Name() string
}

// CredentialsManager is implemented by providers that own the admin credentials.
type CredentialsManager interface {
	UpdateCredentials(ctx context.Context, update models.CredentialsUpdate) (models.Credentials, error)
}

type EventType string

const (
	EventLogin   EventType = "login"
	EventLogout  EventType = "logout"
	EventExpired EventType = "expired"
)

// Event is delivered to OnSessionChange listeners.
type Event struct {
	Type    EventType
	Session Session
}

// Manager wraps an Authenticator, tracks the most recent session and tells listeners
// whenever it changes.
type Manager struct {
	provider Authenticator
	logger   zerolog.Logger

	mu        sync.RWMutex
	current   *Session
	listeners map[int]func(Event)
	nextID    int
}

func NewManager(provider Authenticator) *Manager {
	return &Manager{
		provider:  provider,
		logger:    log.With().Str("component", "authManager").Str("provider", provider.Name()).Logger(),
		listeners: make(map[int]func(Event)),
	}
}

func (m *Manager) Provider() string {
	return m.provider.Name()
}

func (m *Manager) Login(ctx context.Context, req LoginRequest) (Session, error) {
	session, err := m.provider.Login(ctx, req)
	if err != nil {
		m.logger.Info().Str("username", req.Username).Msg("admin login rejected")
		return Session{}, err
	}

	m.mu.Lock()
	m.current = &session
	m.mu.Unlock()

	m.logger.Info().Str("subject", session.Subject).Msg("admin logged in")
	m.notify(Event{Type: EventLogin, Session: session})
	return session, nil
}

// Validate checks token and returns its session. An expired token that is the current
// session clears it and fires an EventExpired.
func (m *Manager) Validate(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, errs.NewMissingTokenError()
	}
	session, err := m.provider.Validate(ctx, token)
	if err != nil {
		if expired := m.clearIfCurrent(token); expired != nil && errs.IsAuthError(err) {
			m.notify(Event{Type: EventExpired, Session: *expired})
		}
		return Session{}, err
	}
	return session, nil
}

func (m *Manager) Logout(ctx context.Context, token string) error {
	if token == "" {
		return errs.NewMissingTokenError()
	}
	if err := m.provider.Logout(ctx, token); err != nil {
		return err
	}

	session := Session{Token: token, Provider: m.provider.Name()}
	if cleared := m.clearIfCurrent(token); cleared != nil {
		session = *cleared
	}
	m.notify(Event{Type: EventLogout, Session: session})
	return nil
}

// CurrentSession returns the most recent session that has not been logged out.
func (m *Manager) CurrentSession() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Session{}, false
	}
	if !m.current.ExpiresAt.IsZero() && time.Now().After(m.current.ExpiresAt) {
		return Session{}, false
	}
	return *m.current, true
}

// OnSessionChange registers fn and returns a function that unregisters it.
func (m *Manager) OnSessionChange(fn func(Event)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// UpdateCredentials rotates the admin login when the provider owns it.
func (m *Manager) UpdateCredentials(ctx context.Context, update models.CredentialsUpdate) (models.Credentials, error) {
	cm, ok := m.provider.(CredentialsManager)
	if !ok {
		return models.Credentials{}, errs.NewForbiddenError("credentials are managed by " + m.provider.Name())
	}
	return cm.UpdateCredentials(ctx, update)
}

func (m *Manager) clearIfCurrent(token string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil && m.current.Token == token {
		cleared := m.current
		m.current = nil
		return cleared
	}
	return nil
}

func (m *Manager) notify(e Event) {
	m.mu.RLock()
	fns := make([]func(Event), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.RUnlock()

	for _, fn := range fns {
		fn(e)
	}
}
