package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rpupo63/mindmesh-portfolio/api"
	"github.com/rpupo63/mindmesh-portfolio/auth"
	"github.com/rpupo63/mindmesh-portfolio/config"
	"github.com/rpupo63/mindmesh-portfolio/database"
	"github.com/rpupo63/mindmesh-portfolio/models"
)

const (
	Version = "0.1.0"
	appName = "portfolio"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		logLevel  string
		logFormat string
		cfg       map[string]string
	)

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Portfolio showcase backend",
		Long: `Serves the public project showcase (search, technology filter, lead-gated
project links, per-project AI assistant, contact form) and the admin console API.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadDotEnv()
			cfg = config.New()
			if err := config.LoadSSM(cmd.Context(), cfg, config.GetString(cfg, "SSM_PARAMETER_PREFIX", "")); err != nil {
				return fmt.Errorf("loading SSM parameters: %w", err)
			}
			if logLevel == "" {
				logLevel = config.GetString(cfg, "LOG_LEVEL", "info")
			}
			if logFormat == "" {
				logFormat = config.GetString(cfg, "LOG_FORMAT", "console")
			}
			setupLogger(logLevel, logFormat)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to LOG_LEVEL")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (console, json); defaults to LOG_FORMAT")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg)
		},
	})
	cmd.AddCommand(createAdminCmd(&cfg))
	cmd.AddCommand(genModelsCmd(&cfg))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	})

	return cmd
}

func createAdminCmd(cfg *map[string]string) *cobra.Command {
	var username, password, secretKey string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create or replace the admin login",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || password == "" || secretKey == "" {
				return fmt.Errorf("--username, --password and --secret-key are required")
			}
			repo, closeRepo, err := openRepository(*cfg)
			if err != nil {
				return err
			}
			defer closeRepo()

			if _, err := auth.SetCredentials(cmd.Context(), repo, username, password, secretKey); err != nil {
				return fmt.Errorf("saving admin credentials: %w", err)
			}
			log.Info().Str("username", username).Msg("admin credentials saved")
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", auth.DefaultAdminUsername, "Admin username")
	cmd.Flags().StringVar(&password, "password", "", "Admin password")
	cmd.Flags().StringVar(&secretKey, "secret-key", "", "Admin secret key (XXXXX-XXXXX-XXXXX)")
	return cmd
}

func genModelsCmd(cfg *map[string]string) *cobra.Command {
	var outPath string
	var reportOnly bool

	cmd := &cobra.Command{
		Use:   "gen-models",
		Short: "Migrate the Postgres schema and generate gorm/gen query helpers",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.Connect(connectionConfig(*cfg))
			if err != nil {
				return err
			}
			if reportOnly {
				_, err := models.ColumnMismatchReport(db)
				return err
			}
			return models.GenerateModels(db, outPath)
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "./generated", "Output directory for generated code")
	cmd.Flags().BoolVar(&reportOnly, "report-only", false, "Only print the column mismatch report")
	return cmd
}

func runServe(ctx context.Context, cfg map[string]string) error {
	log.Info().Msg("Initializing app...")

	repo, closeRepo, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	if err := database.Seed(ctx, repo, config.GetBool(cfg, "SEED_DEMO_DATA", false)); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	deps, err := buildDependencies(ctx, cfg, repo)
	if err != nil {
		return err
	}

	// Both the listener and the signal watcher may report; buffer for each so
	// neither blocks once the other has triggered shutdown.
	errChannel := make(chan error, 2)

	server, err := api.NewServer(deps, cfg)
	if err != nil {
		return fmt.Errorf("initializing server: %w", err)
	}

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(interrupts)

	watchCtx, stopWatching := context.WithCancel(ctx)
	defer stopWatching()

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(watchCtx, interrupts, errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(config.GetDuration(cfg, "SHUTDOWN_TIMEOUT_SECONDS", time.Second, 30*time.Second))

	if errors.Is(fatalErr, errInterrupted) || errors.Is(fatalErr, context.Canceled) {
		return nil
	}
	return fatalErr
}

var errInterrupted = errors.New("interrupted")

// listenToInterrupt waits for SIGINT or SIGTERM, or for ctx to end, and reports it on errChannel.
func listenToInterrupt(ctx context.Context, interrupts <-chan os.Signal, errChannel chan<- error) {
	select {
	case sig := <-interrupts:
		errChannel <- fmt.Errorf("%w: %s", errInterrupted, sig)
	case <-ctx.Done():
		errChannel <- ctx.Err()
	}
}
