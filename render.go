package folio

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/auth"
	"github.com/eringen/folio/models"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

func (a *App) site() Site {
	return Site{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Author:      a.Config.Author,
	}
}

// page builds the common page data. A settings read failure is logged and
// the page renders with config-only values.
func (a *App) page(c echo.Context, title string) Page {
	settings, err := a.Repos.Settings.All(c.Request().Context())
	if err != nil {
		a.logger.Error("loading settings", "error", err)
		settings = map[string]string{}
	}
	name := a.Config.Name
	if v := settings[models.SettingSiteTitle]; v != "" {
		name = v
	}
	desc := a.Config.Description
	if v := settings[models.SettingSiteDescription]; v != "" {
		desc = v
	}
	fullTitle := name
	if title != "" {
		fullTitle = title + " | " + name
	}
	return Page{
		Site:     a.site(),
		Settings: settings,
		Meta: PageMeta{
			Title:       fullTitle,
			Description: desc,
			URL:         BuildURL(a.Config.URL, c.Request().URL.Path),
			OGType:      "website",
		},
		CSRFToken: CsrfToken(c),
		User:      auth.CurrentUser(c),
		Path:      c.Request().URL.Path,
		Flash:     c.QueryParam("msg"),
	}
}
