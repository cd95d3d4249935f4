package models

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/folio/db"
)

func newTestRepos(t *testing.T) *Repos {
	t.Helper()
	e := db.New(filepath.Join(t.TempDir(), "models.db"))
	require.NoError(t, db.CreateSchema(context.Background(), e))
	t.Cleanup(func() { e.Close() })
	return NewRepos(e)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Hello, World!  ", "hello-world"},
		{"Go 1.24 Release", "go-1-24-release"},
		{"C++ & Go", "c-and-go"},
		{"Café Crème", "cafe-creme"},
		{"---", ""},
		{"", ""},
		{"multiple   spaces___and--dashes", "multiple-spaces-and-dashes"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "Slugify(%q)", tt.in)
	}
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, SplitList(""))
	assert.Nil(t, SplitList(" , ,"))
	assert.Equal(t, []string{"go", "web"}, SplitList("go, web"))
	assert.Equal(t, []string{"a", "b"}, SplitList(",a,,b,"))
}

func TestProjectInputMerge(t *testing.T) {
	current := Project{
		ID:          7,
		Title:       "Old Title",
		Slug:        "legacy-slug",
		Category:    "Design",
		Description: "desc",
		Featured:    true,
		SortOrder:   4,
		Published:   true,
	}

	t.Run("omitted fields keep stored values", func(t *testing.T) {
		got := ProjectInput{Description: String("new desc")}.Merge(current)
		assert.Equal(t, "new desc", got.Description)
		assert.Equal(t, "Old Title", got.Title)
		assert.Equal(t, "legacy-slug", got.Slug)
		assert.Equal(t, "Design", got.Category)
		assert.True(t, got.Featured)
		assert.Equal(t, 4, got.SortOrder)
	})

	t.Run("same title keeps slug", func(t *testing.T) {
		got := ProjectInput{Title: String("Old Title")}.Merge(current)
		assert.Equal(t, "legacy-slug", got.Slug)
	})

	t.Run("new title re-derives slug", func(t *testing.T) {
		got := ProjectInput{Title: String("Brand New")}.Merge(current)
		assert.Equal(t, "Brand New", got.Title)
		assert.Equal(t, "brand-new", got.Slug)
	})

	t.Run("explicit false and zero are applied", func(t *testing.T) {
		got := ProjectInput{Featured: Bool(false), Published: Bool(false), SortOrder: Int(0)}.Merge(current)
		assert.False(t, got.Featured)
		assert.False(t, got.Published)
		assert.Equal(t, 0, got.SortOrder)
	})

	t.Run("current is not mutated", func(t *testing.T) {
		_ = ProjectInput{Title: String("Other")}.Merge(current)
		assert.Equal(t, "Old Title", current.Title)
	})
}

func TestPostInputMerge(t *testing.T) {
	current := Post{Title: "T", Slug: "t", Tags: "go", Published: false}
	got := PostInput{Tags: String("go,web"), Published: Bool(true)}.Merge(current)
	assert.Equal(t, "t", got.Slug)
	assert.Equal(t, "go,web", got.Tags)
	assert.True(t, got.Published)
}

func TestProjectCreateAndGet(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	p, err := r.Projects.Create(ctx, ProjectInput{
		Title:     String("My Great Project!"),
		Category:  String("Development"),
		Images:    String("/uploads/a.jpg, /uploads/b.jpg"),
		Featured:  Bool(true),
		Published: Bool(true),
	})
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.NotZero(t, p.ID)
	assert.Equal(t, "my-great-project", p.Slug)
	assert.Equal(t, "Development", p.Category)
	assert.True(t, p.Featured)
	assert.True(t, p.Published)
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, []string{"/uploads/a.jpg", "/uploads/b.jpg"}, p.ImageList())

	bySlug, err := r.Projects.GetBySlug(ctx, "my-great-project")
	require.NoError(t, err)
	require.NotNil(t, bySlug)
	assert.Equal(t, p.ID, bySlug.ID)
}

func TestProjectDuplicateSlugIsConstraintViolation(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	_, err := r.Projects.Create(ctx, ProjectInput{Title: String("Hello World")})
	require.NoError(t, err)

	_, err = r.Projects.Create(ctx, ProjectInput{Title: String("hello, world!")})
	require.Error(t, err)
	assert.ErrorIs(t, err, db.ErrConstraint)
}

func TestProjectCreateEmptySlug(t *testing.T) {
	r := newTestRepos(t)
	_, err := r.Projects.Create(context.Background(), ProjectInput{Title: String("!!!")})
	assert.ErrorIs(t, err, ErrEmptySlug)
}

func TestProjectUpdatePreservesSlugWithoutTitleChange(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	p, err := r.Projects.Create(ctx, ProjectInput{Title: String("Original"), Category: String("A")})
	require.NoError(t, err)

	updated, err := r.Projects.Update(ctx, p.ID, ProjectInput{
		Title:    String("Original"),
		Category: String("B"),
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "original", updated.Slug)
	assert.Equal(t, "B", updated.Category)

	renamed, err := r.Projects.Update(ctx, p.ID, ProjectInput{Title: String("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "renamed", renamed.Slug)
	assert.Equal(t, "B", renamed.Category)
}

func TestProjectUpdateMissing(t *testing.T) {
	r := newTestRepos(t)
	p, err := r.Projects.Update(context.Background(), 999, ProjectInput{Title: String("x")})
	assert.NoError(t, err)
	assert.Nil(t, p)
}

func TestProjectUpdateIntoTakenSlug(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	_, err := r.Projects.Create(ctx, ProjectInput{Title: String("Alpha")})
	require.NoError(t, err)
	b, err := r.Projects.Create(ctx, ProjectInput{Title: String("Beta")})
	require.NoError(t, err)

	_, err = r.Projects.Update(ctx, b.ID, ProjectInput{Title: String("ALPHA")})
	assert.ErrorIs(t, err, db.ErrConstraint)
}

func TestProjectListPublishedFilter(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	_, err := r.Projects.Create(ctx, ProjectInput{Title: String("Public"), Published: Bool(true)})
	require.NoError(t, err)
	draft, err := r.Projects.Create(ctx, ProjectInput{Title: String("Draft"), Published: Bool(false)})
	require.NoError(t, err)

	public, err := r.Projects.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, public, 1)
	for _, p := range public {
		assert.True(t, p.Published)
	}

	all, err := r.Projects.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	hidden, err := r.Projects.GetBySlug(ctx, draft.Slug)
	require.NoError(t, err)
	assert.Nil(t, hidden, "unpublished project must not be found by slug")

	byID, err := r.Projects.Get(ctx, draft.ID)
	require.NoError(t, err)
	assert.NotNil(t, byID, "admin lookup by id sees drafts")
}

func TestProjectFeatured(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	_, err := r.Projects.Create(ctx, ProjectInput{Title: String("Featured"), Featured: Bool(true), Published: Bool(true)})
	require.NoError(t, err)
	_, err = r.Projects.Create(ctx, ProjectInput{Title: String("Plain"), Published: Bool(true)})
	require.NoError(t, err)
	_, err = r.Projects.Create(ctx, ProjectInput{Title: String("Hidden Featured"), Featured: Bool(true)})
	require.NoError(t, err)

	featured, err := r.Projects.Featured(ctx)
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, "featured", featured[0].Slug)
}

func TestProjectReorder(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	var ids []int64
	for i, title := range []string{"One", "Two", "Three", "Untouched"} {
		p, err := r.Projects.Create(ctx, ProjectInput{Title: String(title), SortOrder: Int(10 + i), Published: Bool(true)})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}
	id1, id2, id3, other := ids[0], ids[1], ids[2], ids[3]

	require.NoError(t, r.Projects.Reorder(ctx, []int64{id3, id1, id2}))

	want := map[int64]int{id3: 0, id1: 1, id2: 2, other: 13}
	for id, order := range want {
		p, err := r.Projects.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, order, p.SortOrder, "project %d", id)
	}

	list, err := r.Projects.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, []int64{id3, id1, id2, other}, []int64{list[0].ID, list[1].ID, list[2].ID, list[3].ID})
}

func TestProjectOrderTieBreaksNewestFirst(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	first, err := r.Projects.Create(ctx, ProjectInput{Title: String("First"), Published: Bool(true)})
	require.NoError(t, err)
	second, err := r.Projects.Create(ctx, ProjectInput{Title: String("Second"), Published: Bool(true)})
	require.NoError(t, err)

	list, err := r.Projects.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestProjectDelete(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	p, err := r.Projects.Create(ctx, ProjectInput{Title: String("Gone")})
	require.NoError(t, err)

	n, err := r.Projects.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = r.Projects.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	got, err := r.Projects.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	count, err := r.Projects.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPostLifecycle(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	p, err := r.Posts.Create(ctx, PostInput{
		Title:   String("First Post"),
		Excerpt: String("short"),
		Tags:    String("go, web"),
	})
	require.NoError(t, err)
	assert.Equal(t, "first-post", p.Slug)
	assert.False(t, p.Published, "posts default to draft")
	assert.Equal(t, []string{"go", "web"}, p.TagList())

	hidden, err := r.Posts.GetBySlug(ctx, "first-post")
	require.NoError(t, err)
	assert.Nil(t, hidden)

	p, err = r.Posts.Update(ctx, p.ID, PostInput{Published: Bool(true)})
	require.NoError(t, err)
	assert.Equal(t, "first-post", p.Slug)
	assert.Equal(t, "short", p.Excerpt)

	visible, err := r.Posts.GetBySlug(ctx, "first-post")
	require.NoError(t, err)
	require.NotNil(t, visible)

	_, err = r.Posts.Create(ctx, PostInput{Title: String("First  Post!")})
	assert.ErrorIs(t, err, db.ErrConstraint)

	missing, err := r.Posts.Update(ctx, 404, PostInput{Title: String("x")})
	assert.NoError(t, err)
	assert.Nil(t, missing)

	n, err := r.Posts.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestPostQueries(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	seed := []struct {
		title, tags string
		published   bool
	}{
		{"Alpha", "go,web", true},
		{"Beta", "golang, tooling", true},
		{"Gamma", "rust", true},
		{"Delta", "go,secret", false},
		{"Epsilon", "", true},
	}
	for _, s := range seed {
		_, err := r.Posts.Create(ctx, PostInput{Title: String(s.title), Tags: String(s.tags), Published: Bool(s.published)})
		require.NoError(t, err)
	}

	t.Run("list", func(t *testing.T) {
		public, err := r.Posts.List(ctx, false)
		require.NoError(t, err)
		assert.Len(t, public, 4)
		assert.Equal(t, "epsilon", public[0].Slug, "newest first")

		all, err := r.Posts.List(ctx, true)
		require.NoError(t, err)
		assert.Len(t, all, 5)
	})

	t.Run("recent", func(t *testing.T) {
		recent, err := r.Posts.Recent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, recent, 2)
		assert.Equal(t, "epsilon", recent[0].Slug)
		assert.Equal(t, "gamma", recent[1].Slug)

		def, err := r.Posts.Recent(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, def, 4)
	})

	t.Run("by tag is a substring match on published posts", func(t *testing.T) {
		got, err := r.Posts.ByTag(ctx, "go")
		require.NoError(t, err)
		var slugs []string
		for _, p := range got {
			slugs = append(slugs, p.Slug)
		}
		assert.Equal(t, []string{"beta", "alpha"}, slugs)
	})

	t.Run("all tags", func(t *testing.T) {
		tags, err := r.Posts.AllTags(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"go", "golang", "rust", "tooling", "web"}, tags)
	})

	count, err := r.Posts.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestContactLifecycle(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	c, err := r.Contacts.Create(ctx, ContactInput{Name: "Ada", Email: "ada@example.com", Message: "Hi"})
	require.NoError(t, err)
	assert.False(t, c.Read)
	assert.False(t, c.Replied)

	other, err := r.Contacts.Create(ctx, ContactInput{Name: "Bob", Email: "bob@example.com", Subject: "Work", Message: "Hello"})
	require.NoError(t, err)

	n, err := r.Contacts.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	read, err := r.Contacts.MarkRead(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, read.Read)
	assert.False(t, read.Replied)

	unread, err := r.Contacts.Unread(ctx)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, other.ID, unread[0].ID)

	replied, err := r.Contacts.MarkReplied(ctx, other.ID)
	require.NoError(t, err)
	assert.True(t, replied.Replied)
	assert.True(t, replied.Read, "replied implies read")

	again, err := r.Contacts.Get(ctx, other.ID)
	require.NoError(t, err)
	assert.True(t, again.Replied)
	assert.True(t, again.Read)

	n, err = r.Contacts.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	list, err := r.Contacts.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, other.ID, list[0].ID)

	missing, err := r.Contacts.MarkRead(ctx, 12345)
	assert.NoError(t, err)
	assert.Nil(t, missing)

	deleted, err := r.Contacts.Delete(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestSettingsUpsert(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	v, err := r.Settings.Set(ctx, "x", "1")
	require.NoError(t, err)
	assert.Equal(t, "1", v)
	v, err = r.Settings.Set(ctx, "x", "2")
	require.NoError(t, err)
	assert.Equal(t, "2", v)

	all, err := r.Settings.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"x": "2"}, all)

	got, ok, err := r.Settings.Get(ctx, "x")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", got)

	_, ok, err = r.Settings.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSettingsSetMultipleAndDelete(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	_, err := r.Settings.Set(ctx, SettingSiteTitle, "Old")
	require.NoError(t, err)

	all, err := r.Settings.SetMultiple(ctx, map[string]string{
		SettingSiteTitle: "New",
		SettingSkills:    "Go,SQL",
	})
	require.NoError(t, err)
	assert.Equal(t, "New", all[SettingSiteTitle])
	assert.Equal(t, "Go,SQL", all[SettingSkills])
	assert.Len(t, all, 2)

	n, err := r.Settings.Delete(ctx, SettingSkills)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	pub := Public(map[string]string{SettingSiteTitle: "T", "secret": "x"})
	assert.Equal(t, "T", pub[SettingSiteTitle])
	assert.NotContains(t, pub, "secret")
	assert.Len(t, pub, len(PublicSettingKeys))
}

func TestUsers(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	u, err := r.Users.Create(ctx, "admin", "$2a$10$hash", "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, "admin", u.Username)
	assert.Equal(t, "$2a$10$hash", u.PasswordHash)

	_, err = r.Users.Create(ctx, "admin", "other", "")
	assert.ErrorIs(t, err, db.ErrConstraint)

	exists, err := r.Users.Exists(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, exists)

	byID, err := r.Users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Username, byID.Username)

	missing, err := r.Users.GetByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
