// Package views provides folio's default page templates. They are
// html/template files embedded in the binary and exposed to folio as
// templ components.
package views

import (
	"context"
	"embed"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/eringen/folio"
)

//go:embed templates/*.html
var templateFS embed.FS

// parse builds one page from its layout and page file. Each page file
// defines the "content" block the layout renders.
func parse(layout, file string) *template.Template {
	return template.Must(template.New(layout).Funcs(funcs).ParseFS(templateFS,
		"templates/"+layout,
		"templates/"+file,
	))
}

func view[T any](t *template.Template) func(T) templ.Component {
	return func(data T) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			return t.Execute(w, data)
		})
	}
}

// Default returns the built-in templates. It panics if a template fails to
// parse, which only happens when the embedded files are broken.
func Default() folio.ViewFuncs {
	return folio.ViewFuncs{
		Home:    view[folio.HomePage](parse("base.html", "home.html")),
		Project: view[folio.ProjectPage](parse("base.html", "project.html")),
		Blog:    view[folio.BlogPage](parse("base.html", "blog.html")),
		Post:    view[folio.PostPage](parse("base.html", "post.html")),
		About:   view[folio.AboutPage](parse("base.html", "about.html")),

		AdminLogin:       view[folio.LoginPage](parse("admin.html", "login.html")),
		AdminDashboard:   view[folio.DashboardPage](parse("admin.html", "dashboard.html")),
		AdminProjects:    view[folio.ProjectListPage](parse("admin.html", "projects.html")),
		AdminProjectForm: view[folio.ProjectFormPage](parse("admin.html", "project_form.html")),
		AdminPosts:       view[folio.PostListPage](parse("admin.html", "posts.html")),
		AdminPostForm:    view[folio.PostFormPage](parse("admin.html", "post_form.html")),
		AdminContacts:    view[folio.ContactListPage](parse("admin.html", "contacts.html")),
		AdminContact:     view[folio.ContactPage](parse("admin.html", "contact.html")),
		AdminSettings:    view[folio.SettingsPage](parse("admin.html", "settings.html")),

		NotFound:    view[folio.Page](parse("base.html", "notfound.html")),
		ServerError: view[folio.Page](parse("base.html", "error.html")),
	}
}
