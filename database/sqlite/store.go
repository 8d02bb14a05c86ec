// Package sqlite is the local durable repository, a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"

	"github.com/rpupo63/mindmesh-portfolio/database"
	"github.com/rpupo63/mindmesh-portfolio/errs"
	"github.com/rpupo63/mindmesh-portfolio/models"
)

// Store wraps access to the SQLite database.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

var _ database.Repository = (*Store)(nil)

// Open initializes a new SQLite store and runs the required migrations. Use ":memory:"
// for a throwaway database.
func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("empty database path")
	}

	dsn := ":memory:"
	if dbPath != ":memory:" {
		if err := ensureDir(dbPath); err != nil {
			return nil, err
		}
		dsn = fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=ON", dbPath)
	}

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// One connection keeps ":memory:" databases alive and serializes writers.
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	s := &Store{db: conn, logger: log.With().Str("component", "sqliteStore").Str("path", dbPath).Logger()}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	s.logger.Debug().Msg("sqlite store ready")
	return s, nil
}

// Close releases the database resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS projects (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            short_description TEXT NOT NULL,
            long_description TEXT NOT NULL DEFAULT '',
            project_url TEXT NOT NULL,
            technologies TEXT NOT NULL DEFAULT '[]',
            complexity REAL NOT NULL CHECK (complexity >= 1 AND complexity <= 10),
            project_date DATE NOT NULL,
            is_active INTEGER NOT NULL DEFAULT 1,
            avatar TEXT NOT NULL,
            avatar_color TEXT NOT NULL,
            version INTEGER NOT NULL DEFAULT 1,
            created_at TIMESTAMP NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_projects_active ON projects(is_active);`,
		`CREATE TABLE IF NOT EXISTS leads (
            id TEXT PRIMARY KEY,
            email TEXT NOT NULL,
            phone TEXT NOT NULL,
            project_id TEXT NOT NULL,
            project_name TEXT NOT NULL,
            captured_at TIMESTAMP NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_leads_captured ON leads(captured_at);`,
		`CREATE TABLE IF NOT EXISTS settings (
            id INTEGER PRIMARY KEY CHECK (id = 1),
            site_title TEXT NOT NULL,
            site_tagline TEXT NOT NULL,
            about_me TEXT NOT NULL,
            contact_email TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS credentials (
            id INTEGER PRIMARY KEY CHECK (id = 1),
            username TEXT NOT NULL,
            password_hash TEXT NOT NULL,
            secret_key_hash TEXT NOT NULL,
            updated_at TIMESTAMP NOT NULL
        );`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

const projectColumns = `id, name, short_description, long_description, project_url, technologies,
    complexity, project_date, is_active, avatar, avatar_color, version, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (models.Project, error) {
	var p models.Project
	var techs datatypes.JSONSlice[string]
	err := row.Scan(&p.ID, &p.Name, &p.ShortDescription, &p.LongDescription, &p.ProjectURL, &techs,
		&p.Complexity, &p.ProjectDate, &p.IsActive, &p.Avatar, &p.AvatarColor, &p.Version, &p.CreatedAt)
	if err != nil {
		return models.Project{}, err
	}
	if techs == nil {
		techs = datatypes.JSONSlice[string]{}
	}
	p.Technologies = techs
	return p, nil
}

// ListProjects retrieves all projects ordered by creation.
func (s *Store) ListProjects(ctx context.Context) ([]models.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at ASC, rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// GetProject fetches a single project by id.
func (s *Store) GetProject(ctx context.Context, id uuid.UUID) (models.Project, error) {
	p, err := scanProject(s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Project{}, fmt.Errorf("project %s: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return models.Project{}, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// CreateProject persists a new project with a fresh id.
func (s *Store) CreateProject(ctx context.Context, draft models.ProjectDraft) (models.Project, error) {
	p := draft.NewProject()
	p.ID = uuid.New()
	p.Version = 1
	p.CreatedAt = time.Now().UTC()
	if p.Technologies == nil {
		p.Technologies = datatypes.JSONSlice[string]{}
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO projects(`+projectColumns+`) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID.String(), p.Name, p.ShortDescription, p.LongDescription, p.ProjectURL, p.Technologies,
		p.Complexity, p.ProjectDate, p.IsActive, string(p.Avatar), string(p.AvatarColor), p.Version, p.CreatedAt)
	if err != nil {
		return models.Project{}, fmt.Errorf("insert project: %w", err)
	}
	return s.GetProject(ctx, p.ID)
}

// UpdateProject replaces a project, guarded by its version unless that is zero.
func (s *Store) UpdateProject(ctx context.Context, p models.Project) (models.Project, error) {
	techs := p.Technologies
	if techs == nil {
		techs = datatypes.JSONSlice[string]{}
	}

	res, err := s.db.ExecContext(ctx, `UPDATE projects SET name = ?, short_description = ?, long_description = ?,
        project_url = ?, technologies = ?, complexity = ?, project_date = ?, is_active = ?, avatar = ?,
        avatar_color = ?, version = version + 1
        WHERE id = ? AND (? = 0 OR version = ?)`,
		p.Name, p.ShortDescription, p.LongDescription, p.ProjectURL, techs, p.Complexity, p.ProjectDate,
		p.IsActive, string(p.Avatar), string(p.AvatarColor), p.ID.String(), p.Version, p.Version)
	if err != nil {
		return models.Project{}, fmt.Errorf("update project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Project{}, err
	}
	if affected == 0 {
		if _, err := s.GetProject(ctx, p.ID); err != nil {
			return models.Project{}, err
		}
		return models.Project{}, fmt.Errorf("project %s: %w", p.ID, errs.ErrStaleVersion)
	}
	return s.GetProject(ctx, p.ID)
}

// DeleteProject removes a project; absent ids are ignored.
func (s *Store) DeleteProject(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

// ListLeads returns every lead, newest first.
func (s *Store) ListLeads(ctx context.Context) ([]models.Lead, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, email, phone, project_id, project_name, captured_at
        FROM leads ORDER BY captured_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads := []models.Lead{}
	for rows.Next() {
		var l models.Lead
		if err := rows.Scan(&l.ID, &l.Email, &l.Phone, &l.ProjectID, &l.ProjectName, &l.CapturedAt); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

func (s *Store) CreateLead(ctx context.Context, draft models.LeadDraft) (models.Lead, error) {
	lead := models.Lead{
		ID:          uuid.New(),
		Email:       draft.Email,
		Phone:       draft.Phone,
		ProjectID:   draft.ProjectID,
		ProjectName: draft.ProjectName,
		CapturedAt:  time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO leads(id, email, phone, project_id, project_name, captured_at)
        VALUES(?, ?, ?, ?, ?, ?)`,
		lead.ID.String(), lead.Email, lead.Phone, lead.ProjectID.String(), lead.ProjectName, lead.CapturedAt)
	if err != nil {
		return models.Lead{}, fmt.Errorf("insert lead: %w", err)
	}
	return lead, nil
}

func (s *Store) LoadSettings(ctx context.Context) (models.Settings, error) {
	var st models.Settings
	err := s.db.QueryRowContext(ctx, `SELECT id, site_title, site_tagline, about_me, contact_email FROM settings WHERE id = ?`, models.SettingsID).
		Scan(&st.ID, &st.SiteTitle, &st.SiteTagline, &st.AboutMe, &st.ContactEmail)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Settings{}, fmt.Errorf("settings: %w", errs.ErrNotFound)
	}
	if err != nil {
		return models.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return st, nil
}

func (s *Store) SaveSettings(ctx context.Context, st models.Settings) (models.Settings, error) {
	st.ID = models.SettingsID
	_, err := s.db.ExecContext(ctx, `INSERT INTO settings(id, site_title, site_tagline, about_me, contact_email)
        VALUES(?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET site_title = excluded.site_title, site_tagline = excluded.site_tagline,
            about_me = excluded.about_me, contact_email = excluded.contact_email`,
		st.ID, st.SiteTitle, st.SiteTagline, st.AboutMe, st.ContactEmail)
	if err != nil {
		return models.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	return st, nil
}

func (s *Store) LoadCredentials(ctx context.Context) (models.Credentials, error) {
	var c models.Credentials
	err := s.db.QueryRowContext(ctx, `SELECT id, username, password_hash, secret_key_hash, updated_at FROM credentials WHERE id = ?`, models.CredentialsID).
		Scan(&c.ID, &c.Username, &c.PasswordHash, &c.SecretKeyHash, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Credentials{}, fmt.Errorf("credentials: %w", errs.ErrNotFound)
	}
	if err != nil {
		return models.Credentials{}, fmt.Errorf("load credentials: %w", err)
	}
	return c, nil
}

func (s *Store) SaveCredentials(ctx context.Context, c models.Credentials) (models.Credentials, error) {
	c.ID = models.CredentialsID
	c.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `INSERT INTO credentials(id, username, password_hash, secret_key_hash, updated_at)
        VALUES(?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET username = excluded.username, password_hash = excluded.password_hash,
            secret_key_hash = excluded.secret_key_hash, updated_at = excluded.updated_at`,
		c.ID, c.Username, c.PasswordHash, c.SecretKeyHash, c.UpdatedAt)
	if err != nil {
		return models.Credentials{}, fmt.Errorf("save credentials: %w", err)
	}
	return c, nil
}
