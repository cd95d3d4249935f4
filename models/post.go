package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/eringen/folio/db"
)

// DefaultRecentLimit is used by Recent when no positive limit is given.
const DefaultRecentLimit = 5

// Post is a blog entry.
type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Excerpt   string    `json:"excerpt"`
	Content   string    `json:"content"`
	Thumbnail string    `json:"thumbnail"`
	Tags      string    `json:"tags"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TagList returns the post's tags as a slice.
func (p Post) TagList() []string {
	return SplitList(p.Tags)
}

// PostInput carries caller-supplied post fields; nil means "not supplied".
type PostInput struct {
	Title     *string
	Excerpt   *string
	Content   *string
	Thumbnail *string
	Tags      *string
	Published *bool
}

// Merge overlays the supplied fields onto current, re-deriving the slug only
// when the title changes.
func (in PostInput) Merge(current Post) Post {
	out := current
	if in.Title != nil && *in.Title != current.Title {
		out.Title = *in.Title
		out.Slug = Slugify(*in.Title)
	}
	out.Excerpt = coalesce(in.Excerpt, current.Excerpt)
	out.Content = coalesce(in.Content, current.Content)
	out.Thumbnail = coalesce(in.Thumbnail, current.Thumbnail)
	out.Tags = coalesce(in.Tags, current.Tags)
	out.Published = coalesceBool(in.Published, current.Published)
	return out
}

const postColumns = `id, title, slug, excerpt, content, thumbnail, tags, published, created_at, updated_at`

const postOrder = ` ORDER BY created_at DESC, id DESC`

// Posts reads and writes the posts table.
type Posts struct {
	db *db.Engine
}

// NewPosts returns a Posts repository over e.
func NewPosts(e *db.Engine) *Posts {
	return &Posts{db: e}
}

func scanPost(s scanner) (Post, error) {
	var p Post
	var published int
	var created, updated string
	if err := s.Scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &p.Thumbnail, &p.Tags,
		&published, &created, &updated); err != nil {
		return Post{}, err
	}
	p.Published = published == 1
	var err error
	if p.CreatedAt, err = parseTime(created); err != nil {
		return Post{}, err
	}
	if p.UpdatedAt, err = parseTime(updated); err != nil {
		return Post{}, err
	}
	return p, nil
}

func (r *Posts) list(ctx context.Context, query string, args ...any) ([]Post, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *Posts) one(ctx context.Context, query string, args ...any) (*Post, error) {
	row, err := r.db.QueryRow(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading post: %w", err)
	}
	return &p, nil
}

// List returns posts newest first, drafts included only on request.
func (r *Posts) List(ctx context.Context, includeUnpublished bool) ([]Post, error) {
	if includeUnpublished {
		return r.list(ctx, `SELECT `+postColumns+` FROM posts`+postOrder)
	}
	return r.list(ctx, `SELECT `+postColumns+` FROM posts WHERE published = 1`+postOrder)
}

// Recent returns at most limit published posts, newest first.
func (r *Posts) Recent(ctx context.Context, limit int) ([]Post, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return r.list(ctx, `SELECT `+postColumns+` FROM posts WHERE published = 1`+postOrder+` LIMIT ?`, limit)
}

// ByTag returns published posts whose tag string contains tag. This is a
// substring match, so "go" also matches "golang".
func (r *Posts) ByTag(ctx context.Context, tag string) ([]Post, error) {
	return r.list(ctx, `SELECT `+postColumns+` FROM posts WHERE published = 1 AND tags LIKE '%' || ? || '%'`+postOrder, tag)
}

// AllTags returns the sorted, deduplicated tags of all published posts.
func (r *Posts) AllTags(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT tags FROM posts WHERE published = 1`)
	if err != nil {
		return nil, fmt.Errorf("querying tags: %w", err)
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var tags string
		if err := rows.Scan(&tags); err != nil {
			return nil, err
		}
		for _, t := range SplitList(tags) {
			set[t] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	result := make([]string, 0, len(set))
	for t := range set {
		result = append(result, t)
	}
	sort.Strings(result)
	return result, nil
}

// Get returns the post with id regardless of published state, or nil.
func (r *Posts) Get(ctx context.Context, id int64) (*Post, error) {
	return r.one(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
}

// GetBySlug returns the published post with slug, or nil.
func (r *Posts) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	return r.one(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = ? AND published = 1`, slug)
}

// Create inserts a post. A title whose slug is already taken fails with
// db.ErrConstraint.
func (r *Posts) Create(ctx context.Context, in PostInput) (*Post, error) {
	title := str(in.Title)
	slug := Slugify(title)
	if slug == "" {
		return nil, ErrEmptySlug
	}
	ts := timestamp()
	res, err := r.db.Execute(ctx,
		`INSERT INTO posts (title, slug, excerpt, content, thumbnail, tags, published, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		title, slug, str(in.Excerpt), str(in.Content), str(in.Thumbnail), str(in.Tags),
		boolInt(coalesceBool(in.Published, false)), ts, ts)
	if err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}
	return r.Get(ctx, res.LastInsertID)
}

// Update applies a partial update; a missing id yields nil without error.
func (r *Posts) Update(ctx context.Context, id int64, in PostInput) (*Post, error) {
	current, err := r.Get(ctx, id)
	if err != nil || current == nil {
		return nil, err
	}
	p := in.Merge(*current)
	if p.Slug == "" {
		return nil, ErrEmptySlug
	}
	if _, err := r.db.Execute(ctx,
		`UPDATE posts SET title = ?, slug = ?, excerpt = ?, content = ?, thumbnail = ?, tags = ?, published = ?, updated_at = ?
		 WHERE id = ?`,
		p.Title, p.Slug, p.Excerpt, p.Content, p.Thumbnail, p.Tags, boolInt(p.Published), timestamp(), id); err != nil {
		return nil, fmt.Errorf("updating post %d: %w", id, err)
	}
	return r.Get(ctx, id)
}

// Delete removes a post and reports how many rows were deleted.
func (r *Posts) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.Execute(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("deleting post %d: %w", id, err)
	}
	return res.RowsAffected, nil
}

// Count returns the number of posts, drafts included.
func (r *Posts) Count(ctx context.Context) (int, error) {
	row, err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM posts`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("counting posts: %w", err)
	}
	return n, nil
}
