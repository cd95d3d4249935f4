package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/eringen/folio/db"
)

// User is an admin account. PasswordHash never leaves the server.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"created_at"`
}

// Users reads and writes the users table.
type Users struct {
	db *db.Engine
}

// NewUsers returns a Users repository over e.
func NewUsers(e *db.Engine) *Users {
	return &Users{db: e}
}

func (r *Users) one(ctx context.Context, query string, args ...any) (*User, error) {
	row, err := r.db.QueryRow(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var u User
	var created string
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading user: %w", err)
	}
	if u.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByUsername returns the user named username, or nil.
func (r *Users) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.one(ctx, `SELECT id, username, password, email, created_at FROM users WHERE username = ?`, username)
}

// GetByID returns the user with id, or nil.
func (r *Users) GetByID(ctx context.Context, id int64) (*User, error) {
	return r.one(ctx, `SELECT id, username, password, email, created_at FROM users WHERE id = ?`, id)
}

// Create stores a user with an already-hashed password. A taken username
// fails with db.ErrConstraint.
func (r *Users) Create(ctx context.Context, username, passwordHash, email string) (*User, error) {
	res, err := r.db.Execute(ctx,
		`INSERT INTO users (username, password, email, created_at) VALUES (?, ?, ?, ?)`,
		username, passwordHash, email, timestamp())
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return r.GetByID(ctx, res.LastInsertID)
}

// Exists reports whether a user named username exists.
func (r *Users) Exists(ctx context.Context, username string) (bool, error) {
	row, err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE username = ?`, username)
	if err != nil {
		return false, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return false, fmt.Errorf("counting users: %w", err)
	}
	return n > 0, nil
}
