// Package folio is a portfolio site built with Go, Echo, and templ. It
// serves projects, a blog, an about page and a contact form, exposes the
// same content as a JSON API, and ships a session-protected admin panel.
//
// Callers provide the page templates via the ViewFuncs struct; folio owns
// the handlers, middleware, storage and authentication.
package folio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/qri-io/jsonschema"

	"github.com/eringen/folio/auth"
	"github.com/eringen/folio/db"
	"github.com/eringen/folio/models"
)

// ViewFuncs holds the templ components folio calls when rendering pages.
type ViewFuncs struct {
	Home    func(HomePage) templ.Component
	Project func(ProjectPage) templ.Component
	Blog    func(BlogPage) templ.Component
	Post    func(PostPage) templ.Component
	About   func(AboutPage) templ.Component

	AdminLogin       func(LoginPage) templ.Component
	AdminDashboard   func(DashboardPage) templ.Component
	AdminProjects    func(ProjectListPage) templ.Component
	AdminProjectForm func(ProjectFormPage) templ.Component
	AdminPosts       func(PostListPage) templ.Component
	AdminPostForm    func(PostFormPage) templ.Component
	AdminContacts    func(ContactListPage) templ.Component
	AdminContact     func(ContactPage) templ.Component
	AdminSettings    func(SettingsPage) templ.Component

	NotFound    func(Page) templ.Component
	ServerError func(Page) templ.Component
}

// App wires together the store, authentication, handlers, middleware and
// the caller's templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	DB     *db.Engine
	Repos  *models.Repos
	Auth   *auth.Authenticator
	Views  ViewFuncs

	logger         *slog.Logger
	loginLimiter   *RateLimiter
	contactLimiter *RateLimiter
	apiLimiter     *RateLimiter
	contactSchema  *jsonschema.Schema
	customRoutes   []func(*App)
	initialized    bool
}

// New creates an App. Nothing is opened until Init or Start.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  views,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.Config.setDefaults()
	a.Echo.HideBanner = true
	a.Echo.HidePort = true
	return a
}

// Init opens and bootstraps the database and registers middleware and
// routes. Start calls it when needed; tests call it directly and drive
// App.Echo with httptest.
func (a *App) Init(ctx context.Context) error {
	if a.initialized {
		return nil
	}
	if err := a.Config.validate(); err != nil {
		return err
	}

	a.DB = db.New(a.Config.DatabasePath, db.WithLogger(a.logger))
	if _, err := db.Bootstrap(ctx, a.DB, db.Seed{
		AdminUsername: a.Config.AdminUsername,
		AdminPassword: a.Config.AdminPassword,
		AdminEmail:    a.Config.AdminEmail,
	}); err != nil {
		a.DB.Close()
		return fmt.Errorf("folio: bootstrap database: %w", err)
	}
	a.Repos = models.NewRepos(a.DB)

	tokens := auth.NewTokens([]byte("api-token:"+a.Config.SessionSecret), a.Config.TokenTTL)
	a.Auth = auth.NewAuthenticator(a.Repos.Users, tokens, a.logger)

	schema, err := loadContactSchema()
	if err != nil {
		a.DB.Close()
		return err
	}
	a.contactSchema = schema

	a.loginLimiter = NewRateLimiter(5, loginWindow)
	a.contactLimiter = NewRateLimiter(5, contactWindow)
	a.apiLimiter = NewRateLimiter(100, apiWindow)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}

	a.initialized = true
	return nil
}

// Start initializes the app if needed and serves until the server is shut
// down.
func (a *App) Start() error {
	if err := a.Init(context.Background()); err != nil {
		return err
	}
	a.logger.Info("server listening", "addr", a.Config.Addr, "url", a.Config.URL)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

// Close stops background work and closes the database.
func (a *App) Close() error {
	for _, l := range []*RateLimiter{a.loginLimiter, a.contactLimiter, a.apiLimiter} {
		if l != nil {
			l.Stop()
		}
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo
	requireAuth := a.Auth.RequireAuthenticated(loginPath)

	e.Static("/public", a.Config.StaticDir)
	e.Static(uploadsURLPrefix, a.Config.UploadsDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	// Public site
	e.GET("/", a.handleHome)
	e.GET("/project/:slug/", a.handleProject)
	e.GET("/blog/", a.handleBlog)
	e.GET("/blog/:slug/", a.handlePost)
	e.GET("/about/", a.handleAbout)

	// JSON API
	api := e.Group("/api", a.apiLimiter.Middleware("Too many requests, please try again later."))
	api.GET("/projects", a.apiProjects)
	api.GET("/projects/:slug", a.apiProject)
	api.GET("/posts", a.apiPosts)
	api.GET("/posts/recent", a.apiRecentPosts)
	api.GET("/posts/:slug", a.apiPost)
	api.GET("/settings", a.apiSettings)
	api.GET("/tags", a.apiTags)
	api.POST("/contact", a.apiContact,
		a.contactLimiter.Middleware("Too many messages sent. Please try again later."))
	api.POST("/auth/token", a.apiToken)

	apiAdmin := api.Group("/admin", requireAuth)
	apiAdmin.POST("/projects/reorder", a.apiReorderProjects)
	apiAdmin.GET("/contacts/unread-count", a.apiUnreadCount)

	// Admin panel
	e.GET(loginPath, a.handleLoginForm)
	e.POST(loginPath, a.handleLogin)
	e.POST("/admin/logout/", a.handleLogout)

	admin := e.Group("/admin", requireAuth)
	admin.GET("/", a.handleDashboard)

	admin.GET("/projects/", a.handleAdminProjects)
	admin.GET("/projects/new/", a.handleNewProject)
	admin.POST("/projects/", a.handleCreateProject)
	admin.GET("/projects/:id/edit/", a.handleEditProject)
	admin.POST("/projects/:id/", a.handleUpdateProject)
	admin.POST("/projects/:id/delete/", a.handleDeleteProject)

	admin.GET("/posts/", a.handleAdminPosts)
	admin.GET("/posts/new/", a.handleNewPost)
	admin.POST("/posts/", a.handleCreatePost)
	admin.GET("/posts/:id/edit/", a.handleEditPost)
	admin.POST("/posts/:id/", a.handleUpdatePost)
	admin.POST("/posts/:id/delete/", a.handleDeletePost)

	admin.GET("/contacts/", a.handleAdminContacts)
	admin.GET("/contacts/:id/", a.handleAdminContact)
	admin.POST("/contacts/:id/replied/", a.handleContactReplied)
	admin.POST("/contacts/:id/delete/", a.handleDeleteContact)

	admin.GET("/settings/", a.handleAdminSettings)
	admin.POST("/settings/", a.handleUpdateSettings)
}
