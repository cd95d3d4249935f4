package folio

import (
	"github.com/eringen/folio/auth"
	"github.com/eringen/folio/models"
)

// Site is the public, non-secret part of SiteConfig handed to templates.
type Site struct {
	Name        string
	URL         string
	Description string
	Author      string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
	JSONLD      string
}

// Page is embedded in every page's data.
type Page struct {
	Site      Site
	Settings  map[string]string
	Meta      PageMeta
	CSRFToken string
	User      *auth.Identity
	Path      string
	Flash     string
	Error     string
}

// Setting returns a setting value, or "" when unset.
func (p Page) Setting(key string) string {
	return p.Settings[key]
}

type HomePage struct {
	Page
	Featured    []models.Project
	Skills      []string
	RecentPosts []models.Post
}

type ProjectPage struct {
	Page
	Project models.Project
}

type BlogPage struct {
	Page
	Posts     []models.Post
	Tags      []string
	ActiveTag string
}

type PostPage struct {
	Page
	Post    models.Post
	Related []models.Post
}

type AboutPage struct {
	Page
	Skills []string
}

type LoginPage struct {
	Page
	Username string
}

type DashboardPage struct {
	Page
	ProjectCount   int
	PostCount      int
	UnreadCount    int
	RecentContacts []models.Contact
}

type ProjectListPage struct {
	Page
	Projects []models.Project
}

// ProjectFormPage backs both the new and edit forms. Project.ID is zero for
// a new project.
type ProjectFormPage struct {
	Page
	Project models.Project
}

type PostListPage struct {
	Page
	Posts []models.Post
}

type PostFormPage struct {
	Page
	Post models.Post
}

type ContactListPage struct {
	Page
	Contacts []models.Contact
}

type ContactPage struct {
	Page
	Contact models.Contact
}

// SettingsPage lists every setting; Keys fixes the form order.
type SettingsPage struct {
	Page
	Keys []string
}
