package folio

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// SiteConfig holds all configuration for a folio site.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name (default "Portfolio")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description"` // Feed and meta description
	Author      string `yaml:"author"`      // Author name for JSON-LD

	Addr         string `yaml:"addr"`          // Listen address (default ":3000")
	DatabasePath string `yaml:"database_path"` // SQLite path (default "data/portfolio.db")
	StaticDir    string `yaml:"static_dir"`    // Static assets served at /public (default "public")
	UploadsDir   string `yaml:"uploads_dir"`   // Uploaded images served at /uploads (default "uploads")

	AdminUsername string `yaml:"admin_username"` // Seeded admin account (default "admin")
	AdminPassword string `yaml:"admin_password"` // Seeded admin password (default "changeme123", with a warning)
	AdminEmail    string `yaml:"admin_email"`

	SessionSecret string        `yaml:"session_secret"` // Required: session cookie and token signing key
	CookieSecure  bool          `yaml:"cookie_secure"`  // Set true for HTTPS
	TokenTTL      time.Duration `yaml:"token_ttl"`      // API bearer token lifetime (default 24h)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Portfolio"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/portfolio.db"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.UploadsDir == "" {
		c.UploadsDir = "uploads"
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = 24 * time.Hour
	}
}

func (c SiteConfig) validate() error {
	if c.SessionSecret == "" {
		return fmt.Errorf("folio: SessionSecret is required")
	}
	return nil
}

// ConfigFromEnv builds a SiteConfig from environment variables. Unset
// values are left for setDefaults.
func ConfigFromEnv() SiteConfig {
	addr := os.Getenv("ADDR")
	if addr == "" && os.Getenv("PORT") != "" {
		addr = ":" + os.Getenv("PORT")
	}
	cfg := SiteConfig{
		Name:          os.Getenv("SITE_NAME"),
		URL:           os.Getenv("SITE_URL"),
		Description:   os.Getenv("SITE_DESCRIPTION"),
		Author:        os.Getenv("SITE_AUTHOR"),
		Addr:          addr,
		DatabasePath:  os.Getenv("DATABASE_PATH"),
		StaticDir:     os.Getenv("STATIC_DIR"),
		UploadsDir:    os.Getenv("UPLOADS_DIR"),
		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
	}
	if v, err := strconv.ParseBool(os.Getenv("COOKIE_SECURE")); err == nil {
		cfg.CookieSecure = v
	}
	if v, err := time.ParseDuration(os.Getenv("TOKEN_TTL")); err == nil {
		cfg.TokenTTL = v
	}
	return cfg
}

// LoadConfig reads the environment and, when path is non-empty, overlays
// the YAML file at path on top of it.
func LoadConfig(path string) (SiteConfig, error) {
	cfg := ConfigFromEnv()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return cfg, fmt.Errorf("opening config: %w", err)
		}
		defer f.Close()

		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("decoding config %s: %w", path, err)
		}
	}
	cfg.setDefaults()
	return cfg, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir overrides the directory served at /public.
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.Config.StaticDir = dir
	}
}

// WithLogger sets the structured logger used by the app and its store.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.logger = l
	}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
