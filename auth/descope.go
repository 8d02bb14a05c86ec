package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/descope/go-sdk/descope"
	"github.com/descope/go-sdk/descope/client"

	"github.com/rpupo63/mindmesh-portfolio/errs"
)

// descopeAPI is the slice of the Descope SDK the provider calls.
type descopeAPI interface {
	SignIn(ctx context.Context, loginID, password string) (*descope.AuthenticationInfo, error)
	ValidateSession(ctx context.Context, sessionToken string) (bool, *descope.Token, error)
}

type descopeClientAPI struct {
	client *client.DescopeClient
}

func (a descopeClientAPI) SignIn(ctx context.Context, loginID, password string) (*descope.AuthenticationInfo, error) {
	return a.client.Auth.Password().SignIn(ctx, loginID, password, nil)
}

func (a descopeClientAPI) ValidateSession(ctx context.Context, sessionToken string) (bool, *descope.Token, error) {
	return a.client.Auth.ValidateSessionWithToken(ctx, sessionToken)
}

// DescopeProvider signs the admin in with a Descope password user and validates the
// resulting session JWTs.
type DescopeProvider struct {
	api     descopeAPI
	revoked *revocationList
	now     func() time.Time
}

var _ Authenticator = (*DescopeProvider)(nil)

func NewDescopeProvider(projectID string) (*DescopeProvider, error) {
	if projectID == "" {
		return nil, errs.NewConfigMissingError("DESCOPE_PROJECT_ID")
	}
	descopeClient, err := client.NewWithConfig(&client.Config{ProjectID: projectID})
	if err != nil {
		return nil, fmt.Errorf("creating descope client: %w", err)
	}
	return newDescopeProvider(descopeClientAPI{client: descopeClient}), nil
}

func newDescopeProvider(api descopeAPI) *DescopeProvider {
	return &DescopeProvider{api: api, revoked: newRevocationList(), now: time.Now}
}

func (p *DescopeProvider) Name() string { return ProviderDescope }

func (p *DescopeProvider) Login(ctx context.Context, req LoginRequest) (Session, error) {
	info, err := p.api.SignIn(ctx, req.Username, req.Password)
	if err != nil {
		return Session{}, errs.NewAuthError("invalid credentials")
	}
	if info == nil || info.SessionToken == nil || info.SessionToken.JWT == "" {
		return Session{}, errs.NewAuthError("identity provider returned no session")
	}
	return p.session(info.SessionToken, info.SessionToken.JWT), nil
}

func (p *DescopeProvider) Validate(ctx context.Context, token string) (Session, error) {
	if p.revoked.revoked(token) {
		return Session{}, errs.NewExpiredSessionError()
	}
	ok, parsed, err := p.api.ValidateSession(ctx, token)
	if err != nil || !ok || parsed == nil {
		if err == nil {
			err = fmt.Errorf("session rejected")
		}
		return Session{}, errs.NewInvalidTokenError(err)
	}
	session := p.session(parsed, token)
	if !session.ExpiresAt.IsZero() && p.now().After(session.ExpiresAt) {
		return Session{}, errs.NewExpiredSessionError()
	}
	return session, nil
}

// Logout forgets the session locally; the Descope session itself lapses at expiry.
func (p *DescopeProvider) Logout(ctx context.Context, token string) error {
	until := p.now().Add(24 * time.Hour)
	if ok, parsed, err := p.api.ValidateSession(ctx, token); err == nil && ok && parsed != nil && parsed.Expiration > 0 {
		until = time.Unix(parsed.Expiration, 0)
	}
	p.revoked.revoke(token, until, p.now())
	return nil
}

func (p *DescopeProvider) session(t *descope.Token, raw string) Session {
	s := Session{
		Token:    raw,
		Subject:  t.ID,
		Provider: ProviderDescope,
	}
	if t.Expiration > 0 {
		s.ExpiresAt = time.Unix(t.Expiration, 0).UTC()
	}
	if iat, ok := t.Claims["iat"].(float64); ok {
		s.IssuedAt = time.Unix(int64(iat), 0).UTC()
	}
	return s
}
