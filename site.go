// Package site is the Monynha Softwares website: a bilingual (pt/en) blog,
// project portfolio and documentation site with an admin panel, built with
// Go, Echo and templ.
//
// Templates are provided through the ViewFuncs struct (see package views);
// site handles routing, middleware, persistence, search and feeds.
package site

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// App is the central application. It wires together the store, cache,
// media bucket, handlers, middleware and templates.
type App struct {
	Config  Config
	Echo    *echo.Echo
	Store   *Store
	Cache   *ContentCache
	Media   *Bucket
	Uploads *Uploader
	Views   ViewFuncs
	Log     *zap.Logger

	loginLimiter   *RateLimiter
	commentLimiter *RateLimiter
	customRoutes   []func(*App)
	staticDir      string
	ownsStore      bool
}

// New creates an App with the given configuration and views.
func New(cfg Config, views ViewFuncs, log *zap.Logger, opts ...Option) *App {
	cfg.setDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.Debug

	a := &App{
		Config:    cfg,
		Echo:      e,
		Views:     views,
		Log:       log,
		staticDir: "public",
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Init opens the store and media bucket unless they were supplied, then
// installs middleware and routes. It is called by Start; tests call it
// directly and drive a.Echo with httptest.
func (a *App) Init(ctx context.Context) error {
	if a.Store == nil {
		store, err := OpenStore(ctx, a.Config.Database, a.Log)
		if err != nil {
			return fmt.Errorf("init store: %w", err)
		}
		a.Store = store
		a.ownsStore = true
	}
	if a.Media == nil {
		bucket, err := NewBucket(a.Config.Media.Dir)
		if err != nil {
			return fmt.Errorf("init media: %w", err)
		}
		a.Media = bucket
	}
	a.Uploads = &Uploader{Bucket: a.Media, Store: a.Store, MaxWidth: a.Config.Media.MaxWidth}
	a.Cache = NewContentCache(a.Store, a.Config.CacheTTL)
	a.loginLimiter = NewRateLimiter(5, time.Minute)
	a.commentLimiter = NewRateLimiter(5, 10*time.Minute)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start initializes the app and serves HTTP until ctx is cancelled, then
// shuts the server down gracefully.
func (a *App) Start(ctx context.Context) error {
	if err := a.Config.ValidateServe(); err != nil {
		return err
	}
	if err := a.Init(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("server started", zap.String("addr", a.Config.Addr), zap.String("url", a.Config.Site.URL))
		if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.Echo.Shutdown(shutdownCtx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Built-in assets take precedence; everything else under /public comes
	// from the static dir.
	embedded, _ := fs.Sub(EmbeddedAssets, "embedded")
	assets := echo.WrapHandler(http.StripPrefix("/public/", http.FileServer(http.FS(embedded))))
	e.GET("/public/site.css", assets)
	e.GET("/public/site.js", assets)
	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/media/*", echo.WrapHandler(http.StripPrefix("/media", a.Media.Handler())))

	// Public pages
	e.GET("/", a.handleHome)
	e.GET("/blog/", a.handleBlog)
	e.GET("/blog/:slug/", a.handlePost)
	e.POST("/blog/:slug/comments/", a.handleAddComment)
	e.GET("/projects/", a.handleProjects)
	e.GET("/projects/:slug/", a.handleProject)
	e.GET("/docs/", a.handleDocs)
	e.GET("/docs/:slug/", a.handleDoc)
	e.GET("/search/", a.handleSearch)
	e.GET("/lang/:locale/", a.handleSetLocale)

	// Feeds
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	// JSON API
	api := e.Group("/api", apiCORS())
	api.GET("/search", a.handleAPISearch)
	api.GET("/rss", a.handleFeed)
	api.GET("/sitemap", a.handleSitemap)

	// Admin
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)

	admin := e.Group("/admin", requireAdmin)
	a.registerPostRoutes(admin)
	a.registerProjectRoutes(admin)
	a.registerAuthorRoutes(admin)
	a.registerCategoryRoutes(admin)
	a.registerDocRoutes(admin)
	admin.GET("/comments/", a.handleAdminComments)
	admin.POST("/comments/:id/approve/", a.handleApproveComment)
	admin.POST("/comments/:id/delete/", a.handleDeleteComment)
	admin.GET("/media/", a.handleMediaList)
	admin.POST("/media/", a.handleMediaUpload)
	admin.POST("/media/delete/", a.handleMediaDelete)
}

// Close releases the resources the app opened.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Close()
	}
	if a.commentLimiter != nil {
		a.commentLimiter.Close()
	}
	if a.Store != nil && a.ownsStore {
		return a.Store.Close()
	}
	return nil
}

func (a *App) handleFavicon(c echo.Context) error {
	p := filepath.Join(a.staticDir, "favicon.svg")
	if _, err := os.Stat(p); err == nil {
		return c.File(p)
	}
	b, err := EmbeddedAssets.ReadFile("embedded/favicon.svg")
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/svg+xml", b)
}

// handleRobots serves public/robots.txt when present, otherwise a default
// that points crawlers at the sitemap and keeps them out of the admin.
func (a *App) handleRobots(c echo.Context) error {
	p := filepath.Join(a.staticDir, "robots.txt")
	if _, err := os.Stat(p); err == nil {
		return c.File(p)
	}
	body := "User-agent: *\nAllow: /\nDisallow: /admin/\n\nSitemap: " + BuildURL(a.Config.Site.URL) + "/sitemap.xml\n"
	return c.String(http.StatusOK, body)
}
