// Package models holds the portfolio's entities and the repositories that
// read and write them through a db.Engine.
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eringen/folio/db"
)

// ErrEmptySlug is returned when a title yields no usable slug characters.
var ErrEmptySlug = errors.New("models: title produces an empty slug")

// Repos bundles every repository over one engine.
type Repos struct {
	Projects *Projects
	Posts    *Posts
	Contacts *Contacts
	Settings *Settings
	Users    *Users
}

// NewRepos builds all repositories over e.
func NewRepos(e *db.Engine) *Repos {
	return &Repos{
		Projects: NewProjects(e),
		Posts:    NewPosts(e),
		Contacts: NewContacts(e),
		Settings: NewSettings(e),
		Users:    NewUsers(e),
	}
}

type scanner interface {
	Scan(dest ...any) error
}

// parseLayout accepts both the fixed-width layout we write and SQLite's
// CURRENT_TIMESTAMP format without fractional seconds.
const parseLayout = "2006-01-02 15:04:05.999999999"

func timestamp() string {
	return time.Now().UTC().Format(db.TimeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(parseLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// SplitList splits a comma-delimited column into trimmed, non-empty items.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func coalesce(p *string, current string) string {
	if p == nil {
		return current
	}
	return *p
}

func coalesceBool(p *bool, current bool) bool {
	if p == nil {
		return current
	}
	return *p
}

// String returns a pointer to s, for building partial inputs.
func String(s string) *string { return &s }

// Bool returns a pointer to b, for building partial inputs.
func Bool(b bool) *bool { return &b }

// Int returns a pointer to n, for building partial inputs.
func Int(n int) *int { return &n }
