package folio

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SITE_NAME", "SITE_URL", "SITE_DESCRIPTION", "SITE_AUTHOR", "ADDR", "PORT",
		"DATABASE_PATH", "STATIC_DIR", "UPLOADS_DIR", "ADMIN_USERNAME", "ADMIN_PASSWORD",
		"ADMIN_EMAIL", "SESSION_SECRET", "COOKIE_SECURE", "TOKEN_TTL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "Portfolio", cfg.Name)
	assert.Equal(t, "http://localhost:3000", cfg.URL)
	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, "data/portfolio.db", cfg.DatabasePath)
	assert.Equal(t, "public", cfg.StaticDir)
	assert.Equal(t, "uploads", cfg.UploadsDir)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.False(t, cfg.CookieSecure)
	assert.Error(t, cfg.validate(), "session secret is required")
}

func TestLoadConfigEnvThenYAML(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("SITE_NAME", "From Env")
	t.Setenv("SITE_AUTHOR", "Ada")
	t.Setenv("PORT", "8080")
	t.Setenv("SESSION_SECRET", "env-secret")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("TOKEN_TTL", "30m")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "From Env", cfg.Name)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.NoError(t, cfg.validate())

	path := filepath.Join(t.TempDir(), "folio.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: From YAML\ndatabase_path: /tmp/site.db\ntoken_ttl: 2h\n"), 0o644))

	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "From YAML", cfg.Name)
	assert.Equal(t, "Ada", cfg.Author, "values absent from the file keep the env value")
	assert.Equal(t, "/tmp/site.db", cfg.DatabasePath)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "env-secret", cfg.SessionSecret)
}

func TestLoadConfigErrors(t *testing.T) {
	clearConfigEnv(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: [unclosed\n"), 0o644))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestEnvOr(t *testing.T) {
	t.Setenv("FOLIO_TEST_VALUE", "")
	assert.Equal(t, "fallback", EnvOr("FOLIO_TEST_VALUE", "fallback"))
	t.Setenv("FOLIO_TEST_VALUE", "set")
	assert.Equal(t, "set", EnvOr("FOLIO_TEST_VALUE", "fallback"))
}

func TestOptions(t *testing.T) {
	dir := t.TempDir()
	static := filepath.Join(dir, "assets")
	require.NoError(t, os.MkdirAll(static, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(static, "site.css"), []byte("body{}"), 0o644))

	app := New(SiteConfig{
		DatabasePath:  filepath.Join(dir, "folio.db"),
		SessionSecret: "secret",
	}, stubViews(),
		WithStaticDir(static),
		WithCustomRoutes(func(a *App) {
			a.Echo.GET("/hello/", func(c echo.Context) error {
				return c.String(http.StatusOK, "hi from "+a.Config.Name)
			})
		}),
	)
	require.NoError(t, app.Init(context.Background()))
	t.Cleanup(func() { app.Close() })
	assert.Equal(t, static, app.Config.StaticDir)

	cl := newClient(t, app)
	rec := cl.get("/hello/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hi from Portfolio", rec.Body.String())

	rec = cl.get("/public/site.css")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "body{}", rec.Body.String())

	require.NoError(t, app.Init(context.Background()), "Init is idempotent")
}
