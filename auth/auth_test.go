package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/descope/go-sdk/descope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/mindmesh-portfolio/database/memory"
	"github.com/rpupo63/mindmesh-portfolio/errs"
	"github.com/rpupo63/mindmesh-portfolio/models"
)

func newLocal(t *testing.T) (*LocalProvider, *memory.Store) {
	t.Helper()
	store := memory.New()
	created, err := EnsureAdmin(context.Background(), store, DefaultAdminUsername, DefaultAdminPassword, DefaultAdminSecretKey)
	require.NoError(t, err)
	require.True(t, created)
	return NewLocalProvider(store, []byte("test-secret"), time.Hour), store
}

func validLogin() LoginRequest {
	return LoginRequest{Username: DefaultAdminUsername, Password: DefaultAdminPassword, SecretKey: DefaultAdminSecretKey}
}

func TestLocalLogin(t *testing.T) {
	provider, _ := newLocal(t)
	ctx := context.Background()

	session, err := provider.Login(ctx, validLogin())
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, DefaultAdminUsername, session.Subject)
	assert.Equal(t, ProviderLocal, session.Provider)

	validated, err := provider.Validate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, DefaultAdminUsername, validated.Subject)

	bad := []LoginRequest{
		{Username: "root", Password: DefaultAdminPassword, SecretKey: DefaultAdminSecretKey},
		{Username: DefaultAdminUsername, Password: "wrong", SecretKey: DefaultAdminSecretKey},
		{Username: DefaultAdminUsername, Password: DefaultAdminPassword, SecretKey: "00000-00000-00000"},
	}
	for _, req := range bad {
		_, err := provider.Login(ctx, req)
		assert.True(t, errs.IsAuthError(err), "login %+v should be rejected", req)
	}
}

func TestLocalLoginWithoutAdmin(t *testing.T) {
	provider := NewLocalProvider(memory.New(), []byte("test-secret"), time.Hour)
	_, err := provider.Login(context.Background(), validLogin())
	assert.True(t, errs.IsAuthError(err))
}

func TestLocalValidateRejectsBadTokens(t *testing.T) {
	provider, store := newLocal(t)
	ctx := context.Background()
	session, err := provider.Login(ctx, validLogin())
	require.NoError(t, err)

	_, err = provider.Validate(ctx, session.Token+"x")
	assert.ErrorIs(t, err, errs.ErrInvalidToken)

	other := NewLocalProvider(store, []byte("another-secret"), time.Hour)
	_, err = other.Validate(ctx, session.Token)
	assert.ErrorIs(t, err, errs.ErrInvalidToken)

	provider.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = provider.Validate(ctx, session.Token)
	assert.ErrorIs(t, err, errs.ErrExpiredSession)
}

func TestLocalLogoutRevokesToken(t *testing.T) {
	provider, _ := newLocal(t)
	ctx := context.Background()
	session, err := provider.Login(ctx, validLogin())
	require.NoError(t, err)

	require.NoError(t, provider.Logout(ctx, session.Token))
	_, err = provider.Validate(ctx, session.Token)
	assert.ErrorIs(t, err, errs.ErrExpiredSession)

	fresh, err := provider.Login(ctx, validLogin())
	require.NoError(t, err)
	_, err = provider.Validate(ctx, fresh.Token)
	assert.NoError(t, err)

	assert.Error(t, provider.Logout(ctx, "not-a-token"))
}

func TestLocalUpdateCredentials(t *testing.T) {
	provider, store := newLocal(t)
	ctx := context.Background()

	_, err := provider.UpdateCredentials(ctx, models.CredentialsUpdate{CurrentPassword: "wrong", NewUsername: "owner"})
	require.Error(t, err)
	assert.Equal(t, "Current password is incorrect.", errs.Fields(err)["currentPassword"])

	_, err = provider.UpdateCredentials(ctx, models.CredentialsUpdate{CurrentPassword: DefaultAdminPassword, NewUsername: "owner", NewPassword: "short"})
	require.Error(t, err)
	assert.True(t, errs.Fields(err).Has("newPassword"))

	updated, err := provider.UpdateCredentials(ctx, models.CredentialsUpdate{
		CurrentPassword: DefaultAdminPassword,
		NewUsername:     "owner",
		NewPassword:     "a-much-better-password",
	})
	require.NoError(t, err)
	assert.Equal(t, "owner", updated.Username)

	_, err = provider.Login(ctx, validLogin())
	assert.True(t, errs.IsAuthError(err))

	_, err = provider.Login(ctx, LoginRequest{Username: "owner", Password: "a-much-better-password", SecretKey: DefaultAdminSecretKey})
	require.NoError(t, err)

	stored, err := store.LoadCredentials(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, "a-much-better-password", stored.PasswordHash)
}

func TestEnsureAdminKeepsExisting(t *testing.T) {
	_, store := newLocal(t)
	created, err := EnsureAdmin(context.Background(), store, "other", "other-password", DefaultAdminSecretKey)
	require.NoError(t, err)
	assert.False(t, created)

	creds, err := store.LoadCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultAdminUsername, creds.Username)
}

func TestManagerSessionEvents(t *testing.T) {
	provider, _ := newLocal(t)
	manager := NewManager(provider)
	ctx := context.Background()

	var events []EventType
	unsubscribe := manager.OnSessionChange(func(e Event) { events = append(events, e.Type) })

	_, ok := manager.CurrentSession()
	assert.False(t, ok)

	session, err := manager.Login(ctx, validLogin())
	require.NoError(t, err)
	current, ok := manager.CurrentSession()
	require.True(t, ok)
	assert.Equal(t, session.Token, current.Token)

	require.NoError(t, manager.Logout(ctx, session.Token))
	_, ok = manager.CurrentSession()
	assert.False(t, ok)

	_, err = manager.Login(ctx, LoginRequest{Username: "x"})
	assert.Error(t, err)

	assert.Equal(t, []EventType{EventLogin, EventLogout}, events)

	unsubscribe()
	_, err = manager.Login(ctx, validLogin())
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestManagerExpiredSessionEvent(t *testing.T) {
	provider, _ := newLocal(t)
	manager := NewManager(provider)
	ctx := context.Background()

	var events []EventType
	manager.OnSessionChange(func(e Event) { events = append(events, e.Type) })

	session, err := manager.Login(ctx, validLogin())
	require.NoError(t, err)

	provider.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = manager.Validate(ctx, session.Token)
	assert.ErrorIs(t, err, errs.ErrExpiredSession)
	assert.Equal(t, []EventType{EventLogin, EventExpired}, events)

	_, err = manager.Validate(ctx, "")
	assert.ErrorIs(t, err, errs.ErrMissingToken)
}

type fakeDescope struct {
	signInErr error
	token     *descope.Token
	valid     bool
}

func (f *fakeDescope) SignIn(context.Context, string, string) (*descope.AuthenticationInfo, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return &descope.AuthenticationInfo{SessionToken: f.token}, nil
}

func (f *fakeDescope) ValidateSession(context.Context, string) (bool, *descope.Token, error) {
	if !f.valid {
		return false, nil, errors.New("invalid session")
	}
	return true, f.token, nil
}

func TestDescopeProvider(t *testing.T) {
	ctx := context.Background()
	api := &fakeDescope{
		token: &descope.Token{JWT: "descope-jwt", ID: "U123", Expiration: time.Now().Add(time.Hour).Unix()},
		valid: true,
	}
	provider := newDescopeProvider(api)
	manager := NewManager(provider)
	assert.Equal(t, ProviderDescope, manager.Provider())

	session, err := manager.Login(ctx, LoginRequest{Username: "admin@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "descope-jwt", session.Token)
	assert.Equal(t, "U123", session.Subject)

	_, err = manager.Validate(ctx, session.Token)
	require.NoError(t, err)

	require.NoError(t, manager.Logout(ctx, session.Token))
	_, err = manager.Validate(ctx, session.Token)
	assert.ErrorIs(t, err, errs.ErrExpiredSession)

	_, err = manager.UpdateCredentials(ctx, models.CredentialsUpdate{})
	assert.True(t, errs.IsForbidden(err))

	api.signInErr = errors.New("bad password")
	_, err = manager.Login(ctx, LoginRequest{Username: "admin@example.com", Password: "nope"})
	assert.True(t, errs.IsAuthError(err))
}

func TestNewDescopeProviderRequiresProjectID(t *testing.T) {
	_, err := NewDescopeProvider("")
	assert.True(t, errs.IsConfigError(err))
}

func TestResolveSessionSecret(t *testing.T) {
	tests := []struct {
		name    string
		appEnv  string
		raw     string
		want    string
		wantErr bool
	}{
		{"production with empty secret should fail", "production", "", "", true},
		{"production with placeholder secret should fail", "production", placeholderSecret, "", true},
		{"production with valid secret should succeed", "production", "valid-secret", "valid-secret", false},
		{"dev with empty secret falls back", "development", "", devDefaultSecret, false},
		{"dev with secret keeps it", "", "mine", "mine", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveSessionSecret(tt.appEnv, tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestResolveAdminPassword(t *testing.T) {
	_, err := ResolveAdminPassword("production", "")
	assert.Error(t, err)

	got, err := ResolveAdminPassword("development", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultAdminPassword, got)

	got, err = ResolveAdminPassword("production", "s3cret-value")
	require.NoError(t, err)
	assert.Equal(t, "s3cret-value", got)
}
