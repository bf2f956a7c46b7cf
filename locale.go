package site

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/text/language"
)

const (
	localeCookie = "lang"
	localeKey    = "locale"
)

// supportedTags must stay in the order of Locales.
var (
	supportedTags = []language.Tag{language.Portuguese, language.English}
	localeMatcher = language.NewMatcher(supportedTags)
)

// matchAcceptLanguage maps an Accept-Language header to a supported locale.
func matchAcceptLanguage(header string) (Locale, bool) {
	if strings.TrimSpace(header) == "" {
		return "", false
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return "", false
	}
	_, idx, conf := localeMatcher.Match(tags...)
	if conf == language.No {
		return "", false
	}
	return Locales[idx], true
}

// resolveLocale picks the locale for a request: ?lang=, then the lang
// cookie, then Accept-Language, then the default.
func resolveLocale(r *http.Request) Locale {
	if loc, ok := ParseLocale(r.URL.Query().Get("lang")); ok {
		return loc
	}
	if ck, err := r.Cookie(localeCookie); err == nil {
		if loc, ok := ParseLocale(ck.Value); ok {
			return loc
		}
	}
	if loc, ok := matchAcceptLanguage(r.Header.Get("Accept-Language")); ok {
		return loc
	}
	return DefaultLocale
}

func (a *App) localeMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Set(localeKey, resolveLocale(c.Request()))
		return next(c)
	}
}

// LocaleOf returns the locale resolved for the request.
func LocaleOf(c echo.Context) Locale {
	if loc, ok := c.Get(localeKey).(Locale); ok {
		return loc
	}
	return DefaultLocale
}

func setLocaleCookie(c echo.Context, loc Locale, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     localeCookie,
		Value:    string(loc),
		Path:     "/",
		Expires:  time.Now().AddDate(1, 0, 0),
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// handleSetLocale stores the chosen locale and sends the visitor back to the
// page they came from. Only the path of the Referer is used so the redirect
// never leaves the site.
func (a *App) handleSetLocale(c echo.Context) error {
	loc, ok := ParseLocale(c.Param("locale"))
	if !ok {
		return echo.ErrNotFound
	}
	setLocaleCookie(c, loc, a.Config.Admin.CookieSecure)
	return c.Redirect(http.StatusSeeOther, backPath(c.FormValue("next"), c.Request().Referer()))
}

func backPath(next, referer string) string {
	for _, raw := range []string{next, referer} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
			continue
		}
		q := u.Query()
		q.Del("lang")
		out := u.Path
		if enc := q.Encode(); enc != "" {
			out += "?" + enc
		}
		return out
	}
	return "/"
}
