package views

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/folio"
	"github.com/eringen/folio/auth"
	"github.com/eringen/folio/models"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func samplePage() folio.Page {
	return folio.Page{
		Site: folio.Site{Name: "Folio", URL: "https://example.com"},
		Settings: map[string]string{
			models.SettingSiteTitle:     "Ada Lovelace",
			models.SettingSiteTagline:   "Engineer",
			models.SettingAboutText:     "I write **code**.",
			models.SettingSocialGithub:  "https://github.com/ada",
			models.SettingSocialTwitter: "javascript:alert(1)",
		},
		Meta:      folio.PageMeta{Title: "Home | Ada", JSONLD: `{"@type":"WebSite"}`},
		CSRFToken: "tok123",
	}
}

var now = time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)

func TestDefaultPublicPages(t *testing.T) {
	v := Default()
	project := models.Project{ID: 1, Title: "Bridge", Slug: "bridge", Category: "Dev", Content: "# Plan", Link: "https://bridge.example", Github: "javascript:x", Images: "/uploads/a.jpg", CreatedAt: now, UpdatedAt: now}
	post := models.Post{ID: 2, Title: "Notes", Slug: "notes", Excerpt: "short", Content: "Hello _there_", Tags: "go,web", CreatedAt: now}

	home := render(t, v.Home(folio.HomePage{Page: samplePage(), Featured: []models.Project{project}, Skills: []string{"Go", "SQL"}, RecentPosts: []models.Post{post}}))
	assert.Contains(t, home, "<title>Home | Ada</title>")
	assert.Contains(t, home, `href="/project/bridge/"`)
	assert.Contains(t, home, "Latest writing")
	assert.Contains(t, home, `<script type="application/ld+json">{"@type":"WebSite"}</script>`)
	assert.Contains(t, home, `href="https://github.com/ada"`)
	assert.NotContains(t, home, "javascript:alert")

	proj := render(t, v.Project(folio.ProjectPage{Page: samplePage(), Project: project}))
	assert.Contains(t, proj, `<h1 id="plan">Plan</h1>`)
	assert.Contains(t, proj, `href="https://bridge.example"`)
	assert.NotContains(t, proj, "javascript:x")
	assert.Contains(t, proj, `src="/uploads/a.jpg"`)

	blog := render(t, v.Blog(folio.BlogPage{Page: samplePage(), Posts: []models.Post{post}, Tags: []string{"go", "web"}, ActiveTag: "go"}))
	assert.Contains(t, blog, `class="tag tag-active" href="/blog/?tag=go"`)
	assert.Contains(t, blog, "March 9, 2024")

	empty := render(t, v.Blog(folio.BlogPage{Page: samplePage(), ActiveTag: "rust"}))
	assert.Contains(t, empty, "No posts tagged &ldquo;rust&rdquo; yet.")

	single := render(t, v.Post(folio.PostPage{Page: samplePage(), Post: post, Related: []models.Post{{Title: "Other", Slug: "other"}}}))
	assert.Contains(t, single, "<em>there</em>")
	assert.Contains(t, single, `href="/blog/other/"`)

	about := render(t, v.About(folio.AboutPage{Page: samplePage(), Skills: []string{"Go"}}))
	assert.Contains(t, about, "<strong>code</strong>")

	assert.Contains(t, render(t, v.NotFound(samplePage())), "Page not found")
	assert.Contains(t, render(t, v.ServerError(folio.Page{})), "Something went wrong")
}

func TestDefaultAdminPages(t *testing.T) {
	v := Default()
	page := samplePage()
	page.User = &auth.Identity{ID: 1, Username: "admin"}
	page.Flash = "Saved."

	login := render(t, v.AdminLogin(folio.LoginPage{Page: samplePage(), Username: "bob"}))
	assert.Contains(t, login, `name="_csrf" value="tok123"`)
	assert.Contains(t, login, `value="bob"`)
	assert.NotContains(t, login, "Log out")

	dash := render(t, v.AdminDashboard(folio.DashboardPage{Page: page, ProjectCount: 3, PostCount: 2, UnreadCount: 1,
		RecentContacts: []models.Contact{{ID: 9, Name: "Eve", CreatedAt: now}}}))
	assert.Contains(t, dash, "3 projects")
	assert.Contains(t, dash, `<tr class="unread">`)
	assert.Contains(t, dash, "Log out (admin)")
	assert.Contains(t, dash, "Saved.")

	newForm := render(t, v.AdminProjectForm(folio.ProjectFormPage{Page: page, Project: models.Project{Published: true}}))
	assert.Contains(t, newForm, `action="/admin/projects/"`)
	assert.Contains(t, newForm, `name="published" value="1" checked`)

	editForm := render(t, v.AdminPostForm(folio.PostFormPage{Page: page, Post: models.Post{ID: 4, Title: "T", Tags: "a,b"}}))
	assert.Contains(t, editForm, `action="/admin/posts/4/"`)
	assert.Contains(t, editForm, `value="a,b"`)

	assert.Contains(t, render(t, v.AdminProjects(folio.ProjectListPage{Page: page, Projects: []models.Project{{ID: 5, Title: "P"}}})), `/admin/projects/5/delete/`)
	assert.Contains(t, render(t, v.AdminPosts(folio.PostListPage{Page: page})), "No posts yet.")
	assert.Contains(t, render(t, v.AdminContacts(folio.ContactListPage{Page: page, Contacts: []models.Contact{{ID: 1, Name: "X", Read: true, Replied: true}}})), "replied")

	contact := render(t, v.AdminContact(folio.ContactPage{Page: page, Contact: models.Contact{ID: 7, Name: "Eve", Email: "eve@example.com", Message: "<b>hi</b>", Read: true}}))
	assert.Contains(t, contact, "/admin/contacts/7/replied/")
	assert.Contains(t, contact, "&lt;b&gt;hi&lt;/b&gt;")

	settings := render(t, v.AdminSettings(folio.SettingsPage{Page: page, Keys: models.SettingKeys}))
	assert.Contains(t, settings, `<textarea id="about_text" name="about_text" rows="5">I write **code**.</textarea>`)
	assert.Contains(t, settings, `name="site_title" value="Ada Lovelace"`)
}

func TestLink(t *testing.T) {
	assert.Equal(t, "https://a.example/x?y=1&z=2", string(Link("https://a.example/x?y=1&z=2")))
	assert.Empty(t, string(Link("javascript:alert(1)")))
	assert.Empty(t, string(Link("#")))
}

func TestSettingLabel(t *testing.T) {
	assert.Equal(t, "Site title", SettingLabel(models.SettingSiteTitle))
	assert.Equal(t, "custom_key", SettingLabel("custom_key"))
}
