package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/eringen/folio"
	"github.com/eringen/folio/db"
	"github.com/eringen/folio/views"
)

// version is set at build time via ldflags.
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	// A missing .env is normal in production.
	_ = godotenv.Load()

	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd {
	case "serve":
		err = runServe(ctx)
	case "init-db":
		err = runInitDB(ctx)
	case "hash-password":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: folio hash-password <password>")
			os.Exit(1)
		}
		err = runHashPassword(os.Args[2])
	case "version":
		fmt.Printf("folio %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`folio - a portfolio site with a blog, contact form and admin panel

Usage:
  folio [command] [arguments]

Commands:
  serve                  Start the web server (default)
  init-db                Create the database schema and seed defaults
  hash-password <pw>     Print a bcrypt hash for an admin password
  version                Print the folio version
  help                   Show this help message

Configuration is read from the environment (and .env), then from the YAML
file named by FOLIO_CONFIG when it is set.`)
}

func loadConfig() (folio.SiteConfig, error) {
	cfg, err := folio.LoadConfig(os.Getenv("FOLIO_CONFIG"))
	if err != nil {
		return cfg, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func setupLogger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(folio.EnvOr("LOG_LEVEL", "info")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if folio.EnvOr("LOG_FORMAT", "text") == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func warnDefaultCredentials(cfg folio.SiteConfig) {
	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		return
	}
	yellow := color.New(color.FgYellow, color.Bold)
	yellow.Println("    ! ADMIN_USERNAME or ADMIN_PASSWORD is not set.")
	fmt.Printf("      A new admin account falls back to %s / %s. Change it before going live.\n\n",
		db.DefaultAdminUsername, db.DefaultAdminPassword)
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger()

	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)
	gray := color.New(color.FgHiBlack)

	cyan.Printf("\n    folio ")
	gray.Printf("%s\n\n", version)
	green.Print("    ▶ ")
	fmt.Printf("Site:      %s\n", cfg.URL)
	green.Print("    ▶ ")
	fmt.Printf("Listen:    %s\n", cfg.Addr)
	green.Print("    ▶ ")
	fmt.Printf("Database:  %s\n\n", cfg.DatabasePath)
	warnDefaultCredentials(cfg)

	app := folio.New(cfg, views.Default(), folio.WithLogger(logger))
	defer app.Close()

	errCh := make(chan error, 1)
	go func() { errCh <- app.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return <-errCh
}

func runInitDB(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger()

	engine := db.New(cfg.DatabasePath, db.WithLogger(logger))
	defer engine.Close()

	report, err := db.Bootstrap(ctx, engine, db.Seed{
		AdminUsername: cfg.AdminUsername,
		AdminPassword: cfg.AdminPassword,
		AdminEmail:    cfg.AdminEmail,
	})
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Print("    ✓ ")
	fmt.Printf("Database ready at %s\n", cfg.DatabasePath)
	if report.SampleProjects > 0 {
		green.Print("    ✓ ")
		fmt.Printf("Added %d sample projects\n", report.SampleProjects)
	}
	if len(report.SettingsAdded) > 0 {
		green.Print("    ✓ ")
		fmt.Printf("Added default settings: %s\n", strings.Join(report.SettingsAdded, ", "))
	}
	if report.AdminCreated {
		green.Print("    ✓ ")
		fmt.Printf("Created admin user %q\n", report.AdminUsername)
	}
	fmt.Println()
	if report.AdminCreated && report.DefaultPassword {
		warnDefaultCredentials(cfg)
	}
	return nil
}

func runHashPassword(password string) error {
	if password == "" {
		return errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	fmt.Println(string(hash))
	return nil
}
