package folio

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/models"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	PubDate     string   `xml:"pubDate"`
	GUID        string   `xml:"guid"`
	Categories  []string `xml:"category"`
}

func (a *App) handleFeed(c echo.Context) error {
	ctx := c.Request().Context()
	posts, err := a.Repos.Posts.List(ctx, false)
	if err != nil {
		return err
	}
	settings, err := a.Repos.Settings.All(ctx)
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts, settings)
}

func (a *App) renderRSS(c echo.Context, posts []models.Post, settings map[string]string) error {
	base := a.Config.URL
	title := a.Config.Name
	if v := settings[models.SettingSiteTitle]; v != "" {
		title = v
	}
	desc := a.Config.Description
	if v := settings[models.SettingSiteDescription]; v != "" {
		desc = v
	}

	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		postURL := BuildURL(base, "blog", p.Slug)
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        postURL,
			Description: p.Excerpt,
			PubDate:     p.CreatedAt.Format(time.RFC1123Z),
			GUID:        postURL,
			Categories:  p.TagList(),
		})
	}
	channel := rssChannel{
		Title:       title,
		Link:        BuildURL(base),
		Description: desc,
		Items:       items,
	}
	if len(posts) > 0 {
		channel.LastBuildDate = posts[0].UpdatedAt.Format(time.RFC1123Z)
	}

	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(rssXML{Version: "2.0", Channel: channel})
}
