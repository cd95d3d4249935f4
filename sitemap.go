package folio

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/models"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

const sitemapDate = "2006-01-02"

func (a *App) handleSitemap(c echo.Context) error {
	ctx := c.Request().Context()
	projects, err := a.Repos.Projects.List(ctx, false)
	if err != nil {
		return err
	}
	posts, err := a.Repos.Posts.List(ctx, false)
	if err != nil {
		return err
	}
	return a.renderSitemap(c, projects, posts)
}

func (a *App) renderSitemap(c echo.Context, projects []models.Project, posts []models.Post) error {
	base := a.Config.URL
	urls := []sitemapURL{
		{Loc: BuildURL(base)},
		{Loc: BuildURL(base, "about")},
		{Loc: BuildURL(base, "blog")},
	}
	for _, p := range projects {
		urls = append(urls, sitemapURL{
			Loc:     BuildURL(base, "project", p.Slug),
			LastMod: p.UpdatedAt.Format(sitemapDate),
		})
	}
	for _, p := range posts {
		urls = append(urls, sitemapURL{
			Loc:     BuildURL(base, "blog", p.Slug),
			LastMod: p.UpdatedAt.Format(sitemapDate),
		})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
