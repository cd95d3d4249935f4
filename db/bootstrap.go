package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Default admin credentials used when configuration leaves them empty.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "changeme123"
)

const schema = `
CREATE TABLE IF NOT EXISTS projects (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    slug TEXT UNIQUE NOT NULL,
    category TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    thumbnail TEXT NOT NULL DEFAULT '',
    images TEXT NOT NULL DEFAULT '',
    link TEXT NOT NULL DEFAULT '',
    github TEXT NOT NULL DEFAULT '',
    featured INTEGER NOT NULL DEFAULT 0,
    sort_order INTEGER NOT NULL DEFAULT 0,
    published INTEGER NOT NULL DEFAULT 1,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_projects_order ON projects(sort_order, created_at);

CREATE TABLE IF NOT EXISTS posts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    slug TEXT UNIQUE NOT NULL,
    excerpt TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    thumbnail TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '',
    published INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_posts_published_created ON posts(published, created_at);

CREATE TABLE IF NOT EXISTS contacts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    subject TEXT NOT NULL DEFAULT '',
    message TEXT NOT NULL,
    read INTEGER NOT NULL DEFAULT 0,
    replied INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_contacts_read ON contacts(read);

CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL DEFAULT '',
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT UNIQUE NOT NULL,
    password TEXT NOT NULL,
    email TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);
`

// Seed carries the externally configured values the bootstrap needs.
type Seed struct {
	AdminUsername string
	AdminPassword string
	AdminEmail    string
}

// UsesDefaultCredentials reports whether either admin credential is unset and
// would fall back to the built-in placeholder.
func (s Seed) UsesDefaultCredentials() bool {
	return s.AdminUsername == "" || s.AdminPassword == ""
}

func (s Seed) withDefaults() Seed {
	if s.AdminUsername == "" {
		s.AdminUsername = DefaultAdminUsername
	}
	if s.AdminPassword == "" {
		s.AdminPassword = DefaultAdminPassword
	}
	return s
}

// BootstrapReport describes what a Bootstrap call inserted.
type BootstrapReport struct {
	SampleProjects  int
	SettingsAdded   []string
	AdminCreated    bool
	AdminUsername   string
	DefaultPassword bool
}

type sampleProject struct {
	title, slug, category string
	sortOrder             int
}

var sampleProjects = []sampleProject{
	{"Project Title One", "project-one", "Web Design", 1},
	{"Project Title Two", "project-two", "Brand Identity", 2},
	{"Project Title Three", "project-three", "Development", 3},
}

const sampleDescription = "A brief description of this project, what problems it solved, and the impact it made for the client."

// DefaultSettings are inserted key by key when absent.
var DefaultSettings = []struct{ Key, Value string }{
	{"site_title", "Your Name"},
	{"site_tagline", "Designer & Developer"},
	{"site_description", "I'm a creative professional who believes in the power of thoughtful design."},
	{"contact_email", "hello@yourname.com"},
	{"social_linkedin", "#"},
	{"social_github", "#"},
	{"social_twitter", "#"},
	{"social_dribbble", "#"},
	{"about_text", "I'm a designer and developer passionate about creating beautiful, functional digital experiences."},
	{"skills", "UI/UX Design,Web Development,Brand Identity,React,Figma,Motion Design"},
}

// Bootstrap initializes the engine, creates any missing tables and seeds
// sample projects, default settings and the admin account. Each seed step
// checks for existing rows first, so Bootstrap is safe on every startup.
func Bootstrap(ctx context.Context, e *Engine, seed Seed) (BootstrapReport, error) {
	var report BootstrapReport

	if err := CreateSchema(ctx, e); err != nil {
		return report, err
	}

	n, err := seedProjects(ctx, e)
	if err != nil {
		return report, err
	}
	report.SampleProjects = n

	added, err := seedSettings(ctx, e)
	if err != nil {
		return report, err
	}
	report.SettingsAdded = added

	if seed.UsesDefaultCredentials() {
		e.logger.Warn("admin credentials not configured, falling back to defaults; set ADMIN_USERNAME and ADMIN_PASSWORD")
		report.DefaultPassword = seed.AdminPassword == ""
	}
	seed = seed.withDefaults()
	report.AdminUsername = seed.AdminUsername
	created, err := seedAdmin(ctx, e, seed)
	if err != nil {
		return report, err
	}
	report.AdminCreated = created

	e.logger.Info("database bootstrap complete",
		"sample_projects", report.SampleProjects,
		"settings_added", len(report.SettingsAdded),
		"admin_created", report.AdminCreated,
	)
	return report, nil
}

// CreateSchema initializes e and creates any missing tables and indexes
// without seeding rows.
func CreateSchema(ctx context.Context, e *Engine) error {
	if err := e.Initialize(ctx); err != nil {
		return err
	}
	if err := e.Run(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format(TimeLayout)
}

func seedProjects(ctx context.Context, e *Engine) (int, error) {
	row, err := e.QueryRow(ctx, `SELECT COUNT(*) FROM projects`)
	if err != nil {
		return 0, err
	}
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("counting projects: %w", err)
	}
	if count > 0 {
		return 0, nil
	}
	for _, p := range sampleProjects {
		ts := now()
		if _, err := e.Execute(ctx,
			`INSERT INTO projects (title, slug, category, description, featured, sort_order, published, created_at, updated_at)
			 VALUES (?, ?, ?, ?, 1, ?, 1, ?, ?)`,
			p.title, p.slug, p.category, sampleDescription, p.sortOrder, ts, ts); err != nil {
			return 0, fmt.Errorf("seeding project %q: %w", p.slug, err)
		}
	}
	return len(sampleProjects), nil
}

func seedSettings(ctx context.Context, e *Engine) ([]string, error) {
	var added []string
	for _, s := range DefaultSettings {
		row, err := e.QueryRow(ctx, `SELECT key FROM settings WHERE key = ?`, s.Key)
		if err != nil {
			return nil, err
		}
		var key string
		err = row.Scan(&key)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("reading setting %q: %w", s.Key, err)
		}
		if _, err := e.Execute(ctx, `INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)`, s.Key, s.Value, now()); err != nil {
			return nil, fmt.Errorf("seeding setting %q: %w", s.Key, err)
		}
		added = append(added, s.Key)
	}
	return added, nil
}

func seedAdmin(ctx context.Context, e *Engine, seed Seed) (bool, error) {
	row, err := e.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE username = ?`, seed.AdminUsername)
	if err != nil {
		return false, err
	}
	var count int
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("counting users: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(seed.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hashing admin password: %w", err)
	}
	if _, err := e.Execute(ctx,
		`INSERT INTO users (username, password, email, created_at) VALUES (?, ?, ?, ?)`,
		seed.AdminUsername, string(hash), seed.AdminEmail, now()); err != nil {
		return false, fmt.Errorf("creating admin user: %w", err)
	}
	e.logger.Info("admin user created", "username", seed.AdminUsername)
	return true, nil
}
