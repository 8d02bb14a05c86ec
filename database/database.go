package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"github.com/rpupo63/mindmesh-portfolio/models"
)

type Database struct {
	projectRepo     *ProjectRepo
	leadRepo        *LeadRepo
	settingsRepo    *SettingsRepo
	credentialsRepo *CredentialsRepo
}

var _ Repository = Database{}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		projectRepo:     NewProjectRepo(db),
		leadRepo:        NewLeadRepo(db),
		settingsRepo:    NewSettingsRepo(db),
		credentialsRepo: NewCredentialsRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

func (d Database) LeadRepo() *LeadRepo {
	return d.leadRepo
}

func (d Database) SettingsRepo() *SettingsRepo {
	return d.settingsRepo
}

func (d Database) CredentialsRepo() *CredentialsRepo {
	return d.credentialsRepo
}

func (d Database) ListProjects(ctx context.Context) ([]models.Project, error) {
	return d.projectRepo.FindAll(ctx)
}

func (d Database) GetProject(ctx context.Context, id uuid.UUID) (models.Project, error) {
	return d.projectRepo.FindByID(ctx, id)
}

func (d Database) CreateProject(ctx context.Context, draft models.ProjectDraft) (models.Project, error) {
	return d.projectRepo.Add(ctx, draft)
}

func (d Database) UpdateProject(ctx context.Context, project models.Project) (models.Project, error) {
	return d.projectRepo.Update(ctx, project)
}

func (d Database) DeleteProject(ctx context.Context, id uuid.UUID) error {
	return d.projectRepo.Delete(ctx, id)
}

func (d Database) ListLeads(ctx context.Context) ([]models.Lead, error) {
	return d.leadRepo.FindAll(ctx)
}

func (d Database) CreateLead(ctx context.Context, draft models.LeadDraft) (models.Lead, error) {
	return d.leadRepo.Add(ctx, draft)
}

func (d Database) LoadSettings(ctx context.Context) (models.Settings, error) {
	return d.settingsRepo.Load(ctx)
}

func (d Database) SaveSettings(ctx context.Context, settings models.Settings) (models.Settings, error) {
	return d.settingsRepo.Save(ctx, settings)
}

func (d Database) LoadCredentials(ctx context.Context) (models.Credentials, error) {
	return d.credentialsRepo.Load(ctx)
}

func (d Database) SaveCredentials(ctx context.Context, credentials models.Credentials) (models.Credentials, error) {
	return d.credentialsRepo.Save(ctx, credentials)
}

// ConnectionConfig describes the Supabase (Postgres) connection.
type ConnectionConfig struct {
	// URL, when set, is used as the DSN as is and the discrete fields are ignored.
	URL      string
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
	// ReplicaDSN, when set, routes reads to a read replica.
	ReplicaDSN string
}

func (c ConnectionConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}
	port := c.Port
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, port, sslMode)
}

// Connect opens the Postgres connection, registers the read replica if configured and
// checks the connection with a trivial query.
func Connect(c ConnectionConfig) (*gorm.DB, error) {
	gormLog := log.With().Str("component", "gorm").Logger()
	newLogger := logger.New(
		&gormLog,
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  c.DSN(),
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt: false,
		Logger:      newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if c.ReplicaDSN != "" {
		err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: []gorm.Dialector{postgres.New(postgres.Config{
				DSN:                  c.ReplicaDSN,
				PreferSimpleProtocol: true,
			})},
			Policy: dbresolver.RandomPolicy{},
		}))
		if err != nil {
			return nil, fmt.Errorf("registering read replica: %w", err)
		}
	}

	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("testing database connection: %w", err)
	}
	return db, nil
}

// Migrate enables the extensions the schema relies on and creates or updates the tables.
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
		return fmt.Errorf("enabling pgcrypto extension: %w", err)
	}
	if err := db.AutoMigrate(&models.Project{}, &models.Lead{}, &models.Settings{}, &models.Credentials{}); err != nil {
		return fmt.Errorf("auto-migrating: %w", err)
	}
	return nil
}
