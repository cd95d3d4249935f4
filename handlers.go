package folio

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/auth"
	"github.com/eringen/folio/models"
)

const (
	homeRecentPosts = 3
	relatedPosts    = 3
)

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	featured, err := a.Repos.Projects.Featured(ctx)
	if err != nil {
		return err
	}
	recent, err := a.Repos.Posts.Recent(ctx, homeRecentPosts)
	if err != nil {
		return err
	}
	p := a.page(c, "")
	p.Meta.JSONLD = WebsiteJsonLD(p.Site)
	return Render(c, a.Views.Home(HomePage{
		Page:        p,
		Featured:    featured,
		Skills:      models.SplitList(p.Setting(models.SettingSkills)),
		RecentPosts: recent,
	}))
}

func (a *App) handleProject(c echo.Context) error {
	project, err := a.Repos.Projects.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	if project == nil {
		return a.renderNotFound(c)
	}
	p := a.page(c, project.Title)
	p.Meta.Description = project.Description
	p.Meta.OGType = "article"
	p.Meta.Image = absURL(a.Config.URL, project.Thumbnail)
	p.Meta.JSONLD = CreativeWorkJsonLD(*project, p.Site)
	return Render(c, a.Views.Project(ProjectPage{Page: p, Project: *project}))
}

func (a *App) handleBlog(c echo.Context) error {
	ctx := c.Request().Context()
	tag := strings.TrimSpace(c.QueryParam("tag"))
	var (
		posts []models.Post
		err   error
	)
	if tag != "" {
		posts, err = a.Repos.Posts.ByTag(ctx, tag)
	} else {
		posts, err = a.Repos.Posts.List(ctx, false)
	}
	if err != nil {
		return err
	}
	tags, err := a.Repos.Posts.AllTags(ctx)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Blog(BlogPage{
		Page:      a.page(c, "Blog"),
		Posts:     posts,
		Tags:      tags,
		ActiveTag: tag,
	}))
}

func (a *App) handlePost(c echo.Context) error {
	ctx := c.Request().Context()
	post, err := a.Repos.Posts.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		return err
	}
	if post == nil {
		return a.renderNotFound(c)
	}
	all, err := a.Repos.Posts.List(ctx, false)
	if err != nil {
		return err
	}
	related := FilterRelatedPosts(*post, all)
	if len(related) > relatedPosts {
		related = related[:relatedPosts]
	}
	p := a.page(c, post.Title)
	if post.Excerpt != "" {
		p.Meta.Description = post.Excerpt
	}
	p.Meta.OGType = "article"
	p.Meta.Image = absURL(a.Config.URL, post.Thumbnail)
	p.Meta.JSONLD = BlogPostingJsonLD(*post, p.Site)
	return Render(c, a.Views.Post(PostPage{Page: p, Post: *post, Related: related}))
}

func (a *App) handleAbout(c echo.Context) error {
	p := a.page(c, "About")
	p.Meta.JSONLD = ProfileJsonLD(p.Site, p.Settings)
	p.Meta.Image = absURL(a.Config.URL, p.Setting(models.SettingAboutImage))
	return Render(c, a.Views.About(AboutPage{
		Page:   p,
		Skills: models.SplitList(p.Setting(models.SettingSkills)),
	}))
}

// handleRobots serves robots.txt from the static dir, or a default that
// keeps crawlers out of the admin panel.
func (a *App) handleRobots(c echo.Context) error {
	file := filepath.Join(a.Config.StaticDir, "robots.txt")
	if _, err := os.Stat(file); err == nil {
		return c.File(file)
	}
	body := "User-agent: *\nAllow: /\nDisallow: /admin/\nDisallow: /api/\n\nSitemap: " +
		strings.TrimRight(a.Config.URL, "/") + "/sitemap.xml\n"
	return c.String(http.StatusOK, body)
}

func (a *App) renderNotFound(c echo.Context) error {
	return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.page(c, "Not Found")))
}

func jsonError(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"error": msg})
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := "Internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	} else if isConflict(err) {
		code = http.StatusConflict
		msg = "Resource already exists"
	}
	if code >= http.StatusInternalServerError {
		a.logger.Error("server error", "method", c.Request().Method, "path", c.Request().URL.Path, "error", err)
	}

	if auth.IsAPIRequest(c.Request().URL.Path) {
		if code >= http.StatusInternalServerError {
			msg = "Internal server error"
		}
		_ = jsonError(c, code, msg)
		return
	}
	switch {
	case code == http.StatusNotFound:
		_ = a.renderNotFound(c)
	case code >= http.StatusInternalServerError:
		_ = RenderStatus(c, code, a.Views.ServerError(Page{Site: a.site(), Meta: PageMeta{Title: "Server Error"}}))
	default:
		a.Echo.DefaultHTTPErrorHandler(echo.NewHTTPError(code, msg), c)
	}
}
