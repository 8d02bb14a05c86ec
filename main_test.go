package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"syscall"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/mindmesh-portfolio/auth"
	"github.com/rpupo63/mindmesh-portfolio/errs"
	"github.com/rpupo63/mindmesh-portfolio/database/memory"
	"github.com/rpupo63/mindmesh-portfolio/database/sqlite"
)

func TestOpenRepository(t *testing.T) {
	repo, closeRepo, err := openRepository(map[string]string{"DB_TYPE": "memory"})
	require.NoError(t, err)
	defer closeRepo()
	assert.IsType(t, &memory.Store{}, repo)

	path := filepath.Join(t.TempDir(), "portfolio.db")
	repo, closeSQLite, err := openRepository(map[string]string{"DB_TYPE": "sqlite", "SQLITE_PATH": path})
	require.NoError(t, err)
	defer closeSQLite()
	assert.IsType(t, &sqlite.Store{}, repo)

	_, _, err = openRepository(map[string]string{"DB_TYPE": "oracle"})
	assert.True(t, errs.IsConfigError(err))
}

func TestNewAuthenticator(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	provider, err := newAuthenticator(ctx, map[string]string{}, repo)
	require.NoError(t, err)
	assert.Equal(t, auth.ProviderLocal, provider.Name())

	creds, err := repo.LoadCredentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, auth.DefaultAdminUsername, creds.Username)

	_, err = newAuthenticator(ctx, map[string]string{"APP_ENV": "production"}, memory.New())
	assert.Error(t, err, "production needs a session secret")

	_, err = newAuthenticator(ctx, map[string]string{"AUTH_PROVIDER": auth.ProviderDescope}, repo)
	assert.Error(t, err, "descope needs a project id")

	_, err = newAuthenticator(ctx, map[string]string{"AUTH_PROVIDER": "ldap"}, repo)
	assert.True(t, errs.IsConfigError(err))
}

func TestBuildDependenciesLeavesOutUnconfiguredIntegrations(t *testing.T) {
	deps, err := buildDependencies(context.Background(), map[string]string{"METRICS_ENABLED": "false"}, memory.New())
	require.NoError(t, err)

	assert.NotNil(t, deps.Catalog)
	assert.NotNil(t, deps.Admin)
	assert.NotNil(t, deps.Sessions)
	assert.False(t, deps.Assistant.Configured())
	assert.False(t, deps.Mailer.Configured())
	assert.Nil(t, deps.Notifier)
	assert.Nil(t, deps.Metrics)
}

func TestSetupLogger(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	setupLogger("debug", "json")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	setupLogger("nonsense", "console")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return strconv.Itoa(l.Addr().(*net.TCPAddr).Port)
}

func serveConfig(port string) map[string]string {
	return map[string]string{
		"DB_TYPE":                  "memory",
		"PORT":                     port,
		"HTTP_REQUEST_LOGGING":     "false",
		"METRICS_ENABLED":          "false",
		"SHUTDOWN_TIMEOUT_SECONDS": "2",
	}
}

func startServe(t *testing.T, ctx context.Context, port string) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- runServe(ctx, serveConfig(port)) }()

	url := fmt.Sprintf("http://127.0.0.1:%s/health", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond, "server never became healthy")
	return done
}

func TestRunServeShutsDownOnInterrupt(t *testing.T) {
	done := startServe(t, context.Background(), freePort(t))

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGINT))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after SIGINT")
	}
}

func TestRunServeStopsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := startServe(t, ctx, freePort(t))

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestRunServeReportsListenFailure(t *testing.T) {
	taken, err := net.Listen("tcp", "0.0.0.0:0")
	require.NoError(t, err)
	defer taken.Close()
	port := strconv.Itoa(taken.Addr().(*net.TCPAddr).Port)

	done := make(chan error, 1)
	go func() { done <- runServe(context.Background(), serveConfig(port)) }()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not report the bind failure")
	}
}
