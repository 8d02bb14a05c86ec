package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/mindmesh-portfolio/admin"
	"github.com/rpupo63/mindmesh-portfolio/api"
	"github.com/rpupo63/mindmesh-portfolio/auth"
	"github.com/rpupo63/mindmesh-portfolio/catalog"
	"github.com/rpupo63/mindmesh-portfolio/config"
	"github.com/rpupo63/mindmesh-portfolio/database"
	"github.com/rpupo63/mindmesh-portfolio/database/memory"
	"github.com/rpupo63/mindmesh-portfolio/database/sqlite"
	"github.com/rpupo63/mindmesh-portfolio/errs"
	"github.com/rpupo63/mindmesh-portfolio/services"
)

func setupLogger(level, format string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if format == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

func connectionConfig(cfg map[string]string) database.ConnectionConfig {
	return database.ConnectionConfig{
		URL:        config.GetString(cfg, "SUPABASE_DB_URL", ""),
		Host:       config.GetString(cfg, "SUPABASE_DB_HOST", ""),
		User:       config.GetString(cfg, "SUPABASE_DB_USER", ""),
		Password:   config.GetString(cfg, "SUPABASE_DB_PASSWORD", ""),
		Name:       config.GetString(cfg, "SUPABASE_DB_NAME", ""),
		Port:       config.GetString(cfg, "SUPABASE_DB_PORT", "5432"),
		SSLMode:    config.GetString(cfg, "SUPABASE_DB_SSLMODE", "require"),
		ReplicaDSN: config.GetString(cfg, "SUPABASE_REPLICA_DSN", ""),
	}
}

// openRepository picks the store named by DB_TYPE. The returned func releases it.
func openRepository(cfg map[string]string) (database.Repository, func(), error) {
	dbType := config.GetString(cfg, "DB_TYPE", "sqlite")
	log.Info().Str("dbType", dbType).Msg("opening repository")

	switch dbType {
	case "supa", "postgres":
		db, err := database.Connect(connectionConfig(cfg))
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(db); err != nil {
			return nil, nil, err
		}
		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return database.New(db), closeDB, nil
	case "sqlite":
		store, err := sqlite.Open(config.GetString(cfg, "SQLITE_PATH", "data/portfolio.db"))
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case "memory":
		return memory.New(), func() {}, nil
	default:
		return nil, nil, errs.NewConfigError("DB_TYPE", fmt.Errorf("unsupported DB_TYPE %q (want supa, sqlite or memory)", dbType))
	}
}

// newAuthenticator builds the provider named by AUTH_PROVIDER. The local provider also
// makes sure an admin login exists.
func newAuthenticator(ctx context.Context, cfg map[string]string, repo database.Repository) (auth.Authenticator, error) {
	appEnv := config.GetString(cfg, "APP_ENV", "development")

	switch provider := config.GetString(cfg, "AUTH_PROVIDER", auth.ProviderLocal); provider {
	case auth.ProviderLocal:
		secret, err := auth.ResolveSessionSecret(appEnv, config.GetString(cfg, "SESSION_SECRET", ""))
		if err != nil {
			return nil, err
		}
		password, err := auth.ResolveAdminPassword(appEnv, config.GetString(cfg, "ADMIN_PASSWORD", ""))
		if err != nil {
			return nil, err
		}
		created, err := auth.EnsureAdmin(ctx, repo,
			config.GetString(cfg, "ADMIN_USERNAME", auth.DefaultAdminUsername),
			password,
			config.GetString(cfg, "ADMIN_SECRET_KEY", auth.DefaultAdminSecretKey),
		)
		if err != nil {
			return nil, fmt.Errorf("ensuring admin login: %w", err)
		}
		if created {
			log.Info().Msg("created initial admin login")
		}
		ttl := config.GetDuration(cfg, "SESSION_TTL_MINUTES", time.Minute, 12*time.Hour)
		return auth.NewLocalProvider(repo, secret, ttl), nil
	case auth.ProviderDescope:
		return auth.NewDescopeProvider(config.GetString(cfg, "DESCOPE_PROJECT_ID", ""))
	default:
		return nil, errs.NewConfigError("AUTH_PROVIDER", fmt.Errorf("unsupported AUTH_PROVIDER %q", provider))
	}
}

// buildDependencies wires the services behind the HTTP API. Optional integrations
// that are not configured are left out.
func buildDependencies(ctx context.Context, cfg map[string]string, repo database.Repository) (api.Dependencies, error) {
	store := catalog.NewStore(repo)
	if err := store.Reload(ctx); err != nil {
		log.Warn().Err(err).Msg("initial catalog load failed, will retry on first request")
	}

	provider, err := newAuthenticator(ctx, cfg, repo)
	if err != nil {
		return api.Dependencies{}, err
	}
	sessions := auth.NewManager(provider)

	assistant, err := services.NewAssistant(ctx, config.GetString(cfg, "GEMINI_API_KEY", ""), config.GetString(cfg, "GEMINI_MODEL", services.DefaultAssistantModel))
	if err != nil {
		return api.Dependencies{}, err
	}

	adminOpts := []admin.Option{admin.WithCredentialsUpdater(sessions)}
	exporter, err := services.NewS3LeadExporter(ctx, config.GetString(cfg, "LEAD_EXPORT_BUCKET", ""))
	if err != nil {
		return api.Dependencies{}, err
	}
	if exporter != nil {
		adminOpts = append(adminOpts, admin.WithLeadExporter(exporter))
	}

	deps := api.Dependencies{
		Repo:      repo,
		Catalog:   store,
		Admin:     admin.NewService(repo, store, adminOpts...),
		Sessions:  sessions,
		Assistant: assistant,
		Mailer: services.NewMailer(
			config.GetString(cfg, "RESEND_API_KEY", ""),
			config.GetString(cfg, "RESEND_FROM_EMAIL", ""),
			config.GetString(cfg, "RESEND_API_URL", services.DefaultResendAPIURL),
		),
		ContactTimeout: config.GetDuration(cfg, "CONTACT_TIMEOUT_SECONDS", time.Second, api.DefaultContactTimeout),
	}

	if notifier := services.NewLeadNotifier(
		config.GetString(cfg, "TWILIO_ACCOUNT_SID", ""),
		config.GetString(cfg, "TWILIO_AUTH_TOKEN", ""),
		config.GetString(cfg, "TWILIO_FROM_NUMBER", ""),
		config.GetString(cfg, "LEAD_NOTIFY_NUMBER", ""),
	); notifier != nil {
		deps.Notifier = notifier
	}

	if config.GetBool(cfg, "METRICS_ENABLED", true) {
		deps.Metrics = api.NewMetrics()
	}

	return deps, nil
}
