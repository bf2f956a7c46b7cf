package site

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const dashboardRecent = 5

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(AdminLoginPage{Page: a.adminPage(c, "Login")}))
	}
	return a.renderAdminDashboard(c)
}

// handleAdminLogin checks the password. Only failed attempts count towards
// the per-IP limit; a successful login clears it.
func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		a.Log.Warn("admin login blocked", zap.String("ip", ip))
		return RenderStatus(c, http.StatusTooManyRequests, a.Views.AdminLogin(AdminLoginPage{
			Page:    a.adminPage(c, "Login"),
			Blocked: true,
		}))
	}
	if !a.checkPassword(c.FormValue("password")) {
		a.loginLimiter.Record(ip)
		a.Log.Info("admin login failed", zap.String("ip", ip))
		return RenderStatus(c, http.StatusUnauthorized, a.Views.AdminLogin(AdminLoginPage{
			Page:   a.adminPage(c, "Login"),
			Failed: true,
		}))
	}
	a.loginLimiter.Reset(ip)
	if err := setAdminSession(c); err != nil {
		return err
	}
	a.Log.Info("admin login", zap.String("ip", ip))
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

// checkPassword compares against the bcrypt hash when one is configured,
// otherwise against the plain password in constant time.
func (a *App) checkPassword(pass string) bool {
	if pass == "" {
		return false
	}
	if hash := a.Config.Admin.PasswordHash; hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pass)) == nil
	}
	want := a.Config.Admin.Password
	return want != "" && subtle.ConstantTimeCompare([]byte(pass), []byte(want)) == 1
}

// HashPassword returns the bcrypt hash to put in admin.password_hash.
func HashPassword(pass string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) renderAdminDashboard(c echo.Context) error {
	ctx := c.Request().Context()
	counts, err := a.Store.Counts(ctx)
	if err != nil {
		return err
	}
	recent, err := a.Store.ListPosts(ctx, PostFilter{Limit: dashboardRecent})
	if err != nil {
		return err
	}
	pending, err := a.Store.ListPendingComments(ctx)
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(AdminDashboardPage{
		Page:    a.adminPage(c, "Dashboard"),
		Counts:  counts,
		Recent:  recent,
		Pending: head(pending, dashboardRecent),
	}))
}

// adminPage is the page context of admin screens. They are never indexed and
// have no canonical URL worth sharing.
func (a *App) adminPage(c echo.Context, title string) Page {
	p := a.page(c, PageMeta{Title: title})
	p.Meta.JSONLD = ""
	return p
}

// redirectMsg redirects to path with a flash message in ?msg=.
func redirectMsg(c echo.Context, path, msg string) error {
	return c.Redirect(http.StatusSeeOther, path+"?msg="+url.QueryEscape(msg))
}

// writeFieldError turns a store error that belongs to a form field into a
// field message. Other errors are returned unchanged.
func writeFieldError(err error, verr *ValidationError) error {
	switch {
	case errors.Is(err, ErrDuplicateSlug):
		verr.Add("slug", "this slug is already in use")
		return nil
	case errors.Is(err, ErrDocCycle):
		verr.Add("parent_id", "a page cannot be nested under itself or one of its children")
		return nil
	}
	return err
}
