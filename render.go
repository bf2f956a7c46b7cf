package site

import (
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
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

// page builds the shared page context for the request. meta.URL defaults to
// the canonical URL of the request path.
func (a *App) page(c echo.Context, meta PageMeta) Page {
	loc := LocaleOf(c)
	path := c.Request().URL.Path
	if meta.URL == "" {
		meta.URL = strings.TrimRight(a.Config.Site.URL, "/") + path
	}
	if meta.OGType == "" {
		meta.OGType = "website"
	}
	if meta.Description == "" {
		meta.Description = a.Config.Site.Description(loc)
	}
	if meta.Title == "" {
		meta.Title = a.Config.Site.Title(loc)
	} else {
		meta.Title += " | " + a.Config.Site.Title(loc)
	}
	return Page{
		Locale: loc,
		Site:   a.Config.Site,
		Nav:    a.Config.Navigation,
		Meta:   meta,
		Path:   path,
		CSRF:   CsrfToken(c),
		Admin:  IsAdmin(c),
		Flash:  c.QueryParam("msg"),
	}
}
