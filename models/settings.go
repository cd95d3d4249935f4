package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/eringen/folio/db"
)

// Known setting keys.
const (
	SettingSiteTitle       = "site_title"
	SettingSiteTagline     = "site_tagline"
	SettingSiteDescription = "site_description"
	SettingContactEmail    = "contact_email"
	SettingSocialLinkedIn  = "social_linkedin"
	SettingSocialGithub    = "social_github"
	SettingSocialTwitter   = "social_twitter"
	SettingSocialDribbble  = "social_dribbble"
	SettingAboutText       = "about_text"
	SettingAboutImage      = "about_image"
	SettingSkills          = "skills"
)

// SettingKeys are the text settings edited on the admin settings form, in
// display order. SettingAboutImage is set through an upload instead.
var SettingKeys = []string{
	SettingSiteTitle,
	SettingSiteTagline,
	SettingSiteDescription,
	SettingAboutText,
	SettingSkills,
	SettingContactEmail,
	SettingSocialLinkedIn,
	SettingSocialGithub,
	SettingSocialTwitter,
	SettingSocialDribbble,
}

// PublicSettingKeys are the settings exposed by the public JSON API.
var PublicSettingKeys = []string{
	SettingSiteTitle,
	SettingSiteTagline,
	SettingSiteDescription,
	SettingContactEmail,
	SettingSocialLinkedIn,
	SettingSocialGithub,
	SettingSocialTwitter,
	SettingSocialDribbble,
}

// Settings is the flat key/value store for site configuration.
type Settings struct {
	db *db.Engine
}

// NewSettings returns a Settings repository over e.
func NewSettings(e *db.Engine) *Settings {
	return &Settings{db: e}
}

// Get returns the value for key and whether it exists.
func (r *Settings) Get(ctx context.Context, key string) (string, bool, error) {
	row, err := r.db.QueryRow(ctx, `SELECT value FROM settings WHERE key = ?`, key)
	if err != nil {
		return "", false, err
	}
	var v string
	if err := row.Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading setting %q: %w", key, err)
	}
	return v, true, nil
}

// All returns every setting as a map.
func (r *Settings) All(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.Query(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("querying settings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

// Set inserts or updates key and returns the stored value.
func (r *Settings) Set(ctx context.Context, key, value string) (string, error) {
	if _, err := r.db.Execute(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, timestamp()); err != nil {
		return "", fmt.Errorf("setting %q: %w", key, err)
	}
	v, _, err := r.Get(ctx, key)
	return v, err
}

// SetMultiple applies Set for each pair in key order. It is not atomic: a
// failure leaves the keys before it updated.
func (r *Settings) SetMultiple(ctx context.Context, values map[string]string) (map[string]string, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := r.Set(ctx, k, values[k]); err != nil {
			return nil, err
		}
	}
	return r.All(ctx)
}

// Delete removes key and reports how many rows were deleted.
func (r *Settings) Delete(ctx context.Context, key string) (int64, error) {
	res, err := r.db.Execute(ctx, `DELETE FROM settings WHERE key = ?`, key)
	if err != nil {
		return 0, fmt.Errorf("deleting setting %q: %w", key, err)
	}
	return res.RowsAffected, nil
}

// Public filters all down to PublicSettingKeys. Missing keys map to "".
func Public(all map[string]string) map[string]string {
	out := make(map[string]string, len(PublicSettingKeys))
	for _, k := range PublicSettingKeys {
		out[k] = all[k]
	}
	return out
}
