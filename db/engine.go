// Package db owns the portfolio database file: opening it, running SQL
// against it, and bootstrapping its schema and seed rows.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotInitialized is returned by every operation attempted before Initialize.
	ErrNotInitialized = errors.New("db: engine not initialized")
	// ErrConstraint marks UNIQUE / NOT NULL / CHECK violations reported by SQLite.
	ErrConstraint = errors.New("db: constraint violation")
)

// TimeLayout is the fixed-width UTC format used for every timestamp column,
// so that ORDER BY on the text column is chronological.
const TimeLayout = "2006-01-02 15:04:05.000000"

// Result reports the outcome of a mutating statement.
type Result struct {
	LastInsertID int64
	RowsAffected int64
}

// Engine is the single owner of the database file. Reads go through the
// connection pool; writes are serialized by a mutex so there is exactly
// one writer at a time.
type Engine struct {
	path   string
	logger *slog.Logger

	mu sync.Mutex // guards db during Initialize/Close and serializes writes
	db *sql.DB
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used by the engine.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l.With("component", "store")
		}
	}
}

// New returns an engine for the database file at path. No I/O happens until
// Initialize is called.
func New(path string, opts ...Option) *Engine {
	e := &Engine{
		path:   path,
		logger: slog.Default().With("component", "store"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Path returns the backing file path.
func (e *Engine) Path() string {
	return e.path
}

// Initialize opens the database file, creating it (and its directory) when
// absent. Calling it again on an initialized engine is a no-op.
func (e *Engine) Initialize(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.db != nil {
		return nil
	}

	if dir := filepath.Dir(e.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating database directory: %w", err)
		}
	}

	// Pragmas go in the DSN so that every pooled connection gets them, not
	// just the one that happens to run a PRAGMA statement.
	dsn := "file:" + e.path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=synchronous(NORMAL)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	conn.SetMaxOpenConns(4)
	conn.SetMaxIdleConns(4)
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return fmt.Errorf("pinging database: %w", err)
	}

	e.db = conn
	e.logger.Info("database opened", "path", e.path)
	return nil
}

// Initialized reports whether Initialize has completed.
func (e *Engine) Initialized() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.db != nil
}

// Close releases the database file. The engine may be initialized again.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.db == nil {
		return nil
	}
	err := e.db.Close()
	e.db = nil
	return err
}

func (e *Engine) conn() (*sql.DB, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.db == nil {
		return nil, ErrNotInitialized
	}
	return e.db, nil
}

// Query runs a statement that returns rows. The caller closes the rows.
func (e *Engine) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	conn, err := e.conn()
	if err != nil {
		return nil, err
	}
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	return rows, nil
}

// QueryRow runs a statement expected to return at most one row. An absent
// row surfaces as sql.ErrNoRows from Scan.
func (e *Engine) QueryRow(ctx context.Context, query string, args ...any) (*sql.Row, error) {
	conn, err := e.conn()
	if err != nil {
		return nil, err
	}
	return conn.QueryRowContext(ctx, query, args...), nil
}

// Execute runs a single mutating statement. SQLite commits it before
// returning, so the change is on disk when Execute returns.
func (e *Engine) Execute(ctx context.Context, query string, args ...any) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.db == nil {
		return Result{}, ErrNotInitialized
	}
	res, err := e.db.ExecContext(ctx, query, args...)
	if err != nil {
		return Result{}, classify(err)
	}
	var out Result
	// modernc always supports both; errors here would mean a driver bug.
	out.LastInsertID, _ = res.LastInsertId()
	out.RowsAffected, _ = res.RowsAffected()
	return out, nil
}

// Run executes a schema statement or a multi-statement script.
func (e *Engine) Run(ctx context.Context, script string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.db == nil {
		return ErrNotInitialized
	}
	if _, err := e.db.ExecContext(ctx, script); err != nil {
		return classify(err)
	}
	return nil
}

// classify wraps SQLite constraint failures with ErrConstraint.
func classify(err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return fmt.Errorf("%w: %w", ErrConstraint, err)
	}
	return err
}

// IsConstraint reports whether err is a constraint violation.
func IsConstraint(err error) bool {
	return errors.Is(err, ErrConstraint)
}
