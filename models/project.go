package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/eringen/folio/db"
)

// Project is a portfolio entry.
type Project struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	Thumbnail   string    `json:"thumbnail"`
	Images      string    `json:"images"`
	Link        string    `json:"link"`
	Github      string    `json:"github"`
	Featured    bool      `json:"featured"`
	SortOrder   int       `json:"sort_order"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ImageList returns the gallery image paths.
func (p Project) ImageList() []string {
	return SplitList(p.Images)
}

// ProjectInput carries caller-supplied project fields. A nil field means
// "not supplied": Create uses the zero value, Update keeps the stored value.
type ProjectInput struct {
	Title       *string
	Category    *string
	Description *string
	Content     *string
	Thumbnail   *string
	Images      *string
	Link        *string
	Github      *string
	Featured    *bool
	SortOrder   *int
	Published   *bool
}

// Merge overlays the supplied fields onto current. The slug is re-derived
// only when a title is supplied and differs from the stored one.
func (in ProjectInput) Merge(current Project) Project {
	out := current
	if in.Title != nil && *in.Title != current.Title {
		out.Title = *in.Title
		out.Slug = Slugify(*in.Title)
	}
	out.Category = coalesce(in.Category, current.Category)
	out.Description = coalesce(in.Description, current.Description)
	out.Content = coalesce(in.Content, current.Content)
	out.Thumbnail = coalesce(in.Thumbnail, current.Thumbnail)
	out.Images = coalesce(in.Images, current.Images)
	out.Link = coalesce(in.Link, current.Link)
	out.Github = coalesce(in.Github, current.Github)
	out.Featured = coalesceBool(in.Featured, current.Featured)
	if in.SortOrder != nil {
		out.SortOrder = *in.SortOrder
	}
	out.Published = coalesceBool(in.Published, current.Published)
	return out
}

const projectColumns = `id, title, slug, category, description, content, thumbnail, images, link, github, featured, sort_order, published, created_at, updated_at`

const projectOrder = ` ORDER BY sort_order ASC, created_at DESC, id DESC`

// Projects reads and writes the projects table.
type Projects struct {
	db *db.Engine
}

// NewProjects returns a Projects repository over e.
func NewProjects(e *db.Engine) *Projects {
	return &Projects{db: e}
}

func scanProject(s scanner) (Project, error) {
	var p Project
	var featured, published int
	var created, updated string
	if err := s.Scan(&p.ID, &p.Title, &p.Slug, &p.Category, &p.Description, &p.Content,
		&p.Thumbnail, &p.Images, &p.Link, &p.Github, &featured, &p.SortOrder, &published,
		&created, &updated); err != nil {
		return Project{}, err
	}
	p.Featured = featured == 1
	p.Published = published == 1
	var err error
	if p.CreatedAt, err = parseTime(created); err != nil {
		return Project{}, err
	}
	if p.UpdatedAt, err = parseTime(updated); err != nil {
		return Project{}, err
	}
	return p, nil
}

func (r *Projects) list(ctx context.Context, query string, args ...any) ([]Project, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *Projects) one(ctx context.Context, query string, args ...any) (*Project, error) {
	row, err := r.db.QueryRow(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading project: %w", err)
	}
	return &p, nil
}

// List returns projects in display order. Unpublished projects are
// included only when includeUnpublished is true.
func (r *Projects) List(ctx context.Context, includeUnpublished bool) ([]Project, error) {
	if includeUnpublished {
		return r.list(ctx, `SELECT `+projectColumns+` FROM projects`+projectOrder)
	}
	return r.list(ctx, `SELECT `+projectColumns+` FROM projects WHERE published = 1`+projectOrder)
}

// Featured returns published, featured projects in display order.
func (r *Projects) Featured(ctx context.Context) ([]Project, error) {
	return r.list(ctx, `SELECT `+projectColumns+` FROM projects WHERE published = 1 AND featured = 1`+projectOrder)
}

// Get returns the project with id, or nil when there is none.
func (r *Projects) Get(ctx context.Context, id int64) (*Project, error) {
	return r.one(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
}

// GetBySlug returns the published project with slug, or nil.
func (r *Projects) GetBySlug(ctx context.Context, slug string) (*Project, error) {
	return r.one(ctx, `SELECT `+projectColumns+` FROM projects WHERE slug = ? AND published = 1`, slug)
}

// Create inserts a project and returns it as stored. A title whose slug is
// already taken fails with db.ErrConstraint.
func (r *Projects) Create(ctx context.Context, in ProjectInput) (*Project, error) {
	title := str(in.Title)
	slug := Slugify(title)
	if slug == "" {
		return nil, ErrEmptySlug
	}
	sortOrder := 0
	if in.SortOrder != nil {
		sortOrder = *in.SortOrder
	}
	ts := timestamp()
	res, err := r.db.Execute(ctx,
		`INSERT INTO projects (title, slug, category, description, content, thumbnail, images, link, github, featured, sort_order, published, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		title, slug, str(in.Category), str(in.Description), str(in.Content), str(in.Thumbnail),
		str(in.Images), str(in.Link), str(in.Github), boolInt(coalesceBool(in.Featured, false)),
		sortOrder, boolInt(coalesceBool(in.Published, false)), ts, ts)
	if err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}
	return r.Get(ctx, res.LastInsertID)
}

// Update applies a partial update. It returns nil without error when the
// project does not exist.
func (r *Projects) Update(ctx context.Context, id int64, in ProjectInput) (*Project, error) {
	current, err := r.Get(ctx, id)
	if err != nil || current == nil {
		return nil, err
	}
	p := in.Merge(*current)
	if p.Slug == "" {
		return nil, ErrEmptySlug
	}
	if _, err := r.db.Execute(ctx,
		`UPDATE projects SET title = ?, slug = ?, category = ?, description = ?, content = ?, thumbnail = ?,
		 images = ?, link = ?, github = ?, featured = ?, sort_order = ?, published = ?, updated_at = ?
		 WHERE id = ?`,
		p.Title, p.Slug, p.Category, p.Description, p.Content, p.Thumbnail, p.Images, p.Link, p.Github,
		boolInt(p.Featured), p.SortOrder, boolInt(p.Published), timestamp(), id); err != nil {
		return nil, fmt.Errorf("updating project %d: %w", id, err)
	}
	return r.Get(ctx, id)
}

// Delete removes a project and reports how many rows were deleted.
func (r *Projects) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.Execute(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("deleting project %d: %w", id, err)
	}
	return res.RowsAffected, nil
}

// Reorder sets sort_order to each id's position in ids. Projects not listed
// keep their current sort_order.
func (r *Projects) Reorder(ctx context.Context, ids []int64) error {
	for i, id := range ids {
		if _, err := r.db.Execute(ctx, `UPDATE projects SET sort_order = ? WHERE id = ?`, i, id); err != nil {
			return fmt.Errorf("reordering project %d: %w", id, err)
		}
	}
	return nil
}

// Count returns the number of projects, published or not.
func (r *Projects) Count(ctx context.Context) (int, error) {
	row, err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM projects`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("counting projects: %w", err)
	}
	return n, nil
}
