package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rpupo63/mindmesh-portfolio/errs"
	"github.com/rpupo63/mindmesh-portfolio/models"
)

const tokenIssuer = "mindmesh-portfolio"

// CredentialsStore is the part of the repository the local provider needs.
type CredentialsStore interface {
	LoadCredentials(ctx context.Context) (models.Credentials, error)
	SaveCredentials(ctx context.Context, credentials models.Credentials) (models.Credentials, error)
}

// LocalProvider authenticates against the single stored admin record and signs HS256
// session tokens.
type LocalProvider struct {
	store   CredentialsStore
	secret  []byte
	ttl     time.Duration
	revoked *revocationList
	now     func() time.Time
}

var (
	_ Authenticator      = (*LocalProvider)(nil)
	_ CredentialsManager = (*LocalProvider)(nil)
)

func NewLocalProvider(store CredentialsStore, secret []byte, ttl time.Duration) *LocalProvider {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &LocalProvider{
		store:   store,
		secret:  secret,
		ttl:     ttl,
		revoked: newRevocationList(),
		now:     time.Now,
	}
}

func (p *LocalProvider) Name() string { return ProviderLocal }

func (p *LocalProvider) Login(ctx context.Context, req LoginRequest) (Session, error) {
	creds, err := p.store.LoadCredentials(ctx)
	if errors.Is(err, errs.ErrNotFound) {
		return Session{}, errs.NewAuthError("no admin account has been created")
	}
	if err != nil {
		return Session{}, errs.NewPersistenceError("load", "credentials", err)
	}

	// Every check runs so a wrong username costs the same as a wrong password.
	userOK := sameString(req.Username, creds.Username)
	passOK := CheckPassword(req.Password, creds.PasswordHash) == nil
	keyOK := CheckPassword(req.SecretKey, creds.SecretKeyHash) == nil
	if !userOK || !passOK || !keyOK {
		return Session{}, errs.NewAuthError("invalid credentials")
	}

	return p.issue(creds.Username)
}

func (p *LocalProvider) issue(subject string) (Session, error) {
	now := p.now().UTC().Truncate(time.Second)
	expires := now.Add(p.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   subject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return Session{}, errs.NewInternalErrorWithCause("failed to sign session", err)
	}
	return Session{
		Token:     signed,
		Subject:   subject,
		Provider:  ProviderLocal,
		IssuedAt:  now,
		ExpiresAt: expires,
	}, nil
}

func (p *LocalProvider) parse(token string, opts ...jwt.ParserOption) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	opts = append(opts,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(p.now),
	)
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return p.secret, nil
	}, opts...)
	return claims, err
}

func (p *LocalProvider) Validate(_ context.Context, token string) (Session, error) {
	claims, err := p.parse(token)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return Session{}, errs.NewExpiredSessionError()
	case err != nil:
		return Session{}, errs.NewInvalidTokenError(err)
	case p.revoked.revoked(claims.ID):
		return Session{}, errs.NewExpiredSessionError()
	}

	return Session{
		Token:     token,
		Subject:   claims.Subject,
		Provider:  ProviderLocal,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Logout revokes token. Logging out an already expired token is a no-op.
func (p *LocalProvider) Logout(_ context.Context, token string) error {
	claims, err := p.parse(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return errs.NewInvalidTokenError(err)
	}
	if claims.ExpiresAt == nil || claims.ID == "" {
		return errs.NewInvalidTokenError(fmt.Errorf("token has no id or expiry"))
	}
	p.revoked.revoke(claims.ID, claims.ExpiresAt.Time, p.now())
	return nil
}

// UpdateCredentials checks the current password, then replaces the username and any
// non-blank secret.
func (p *LocalProvider) UpdateCredentials(ctx context.Context, update models.CredentialsUpdate) (models.Credentials, error) {
	if err := models.ValidateCredentialsUpdate(update).Err(); err != nil {
		return models.Credentials{}, err
	}

	creds, err := p.store.LoadCredentials(ctx)
	if err != nil {
		return models.Credentials{}, errs.NewPersistenceError("load", "credentials", err)
	}
	if CheckPassword(update.CurrentPassword, creds.PasswordHash) != nil {
		return models.Credentials{}, errs.NewValidationError(errs.FieldErrors{
			"currentPassword": "Current password is incorrect.",
		})
	}

	creds.Username = update.NewUsername
	if update.NewPassword != "" {
		if creds.PasswordHash, err = HashPassword(update.NewPassword); err != nil {
			return models.Credentials{}, errs.NewInternalErrorWithCause("failed to hash password", err)
		}
	}
	if update.NewSecretKey != "" {
		if creds.SecretKeyHash, err = HashPassword(update.NewSecretKey); err != nil {
			return models.Credentials{}, errs.NewInternalErrorWithCause("failed to hash secret key", err)
		}
	}

	saved, err := p.store.SaveCredentials(ctx, creds)
	if err != nil {
		return models.Credentials{}, errs.NewPersistenceError("save", "credentials", err)
	}
	return saved, nil
}

// SetCredentials hashes and stores a complete admin login, replacing any existing one.
func SetCredentials(ctx context.Context, store CredentialsStore, username, password, secretKey string) (models.Credentials, error) {
	passwordHash, err := HashPassword(password)
	if err != nil {
		return models.Credentials{}, fmt.Errorf("hash password: %w", err)
	}
	secretHash, err := HashPassword(secretKey)
	if err != nil {
		return models.Credentials{}, fmt.Errorf("hash secret key: %w", err)
	}
	return store.SaveCredentials(ctx, models.Credentials{
		Username:      username,
		PasswordHash:  passwordHash,
		SecretKeyHash: secretHash,
	})
}

// EnsureAdmin stores the given login only when no admin record exists yet.
func EnsureAdmin(ctx context.Context, store CredentialsStore, username, password, secretKey string) (bool, error) {
	_, err := store.LoadCredentials(ctx)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return false, err
	}
	if _, err := SetCredentials(ctx, store, username, password, secretKey); err != nil {
		return false, err
	}
	return true, nil
}
