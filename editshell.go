// Package editshell is the application shell of a static content site. It
// serves Markdown pages and wraps them in a content-management overlay whose
// edit mode is driven by a GitHub-backed preview session.
//
// Users provide their own templ components via ViewFuncs; editshell owns the
// handlers, middleware, preview session lifecycle and draft storage.
package editshell

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/eringen/editshell/internal/log"
)

// Shell is the per-request application shell state handed to views: the CMS
// instance configured for this load and the page properties it came from.
type Shell struct {
	CMS       *CMS
	Props     PageProps
	CSRFToken string
	Path      string
	Drafts    []Draft // saved drafts, listed on the home page in preview
}

// ViewFuncs holds the templ components the framework calls when rendering pages.
type ViewFuncs struct {
	Home        func(cfg SiteConfig, pages []Page, shell Shell) templ.Component
	Page        func(cfg SiteConfig, page Page, shell Shell) templ.Component
	Authorizing func(cfg SiteConfig) templ.Component
	NotFound    func(cfg SiteConfig) templ.Component
	ServerError func(cfg SiteConfig) templ.Component
}

// App wires together content, drafts, the auth provider, handlers and middleware.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Store   *Store
	Content *ContentSource
	Cache   *PageCache
	GitHub  *GitHubAuth
	Views   ViewFuncs

	sessions     *sessions.CookieStore
	loginLimiter *LoginLimiter
	log          zerolog.Logger
	customRoutes []func(*App)
	staticDir    string
	stopWatch    context.CancelFunc
}

// New creates an App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		log:       log.WithComponent("shell"),
		staticDir: "public",
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init validates configuration, opens storage, and registers middleware and
// routes. Start calls it; tests call it directly and drive a.Echo.
func (a *App) Init() error {
	if a.Config.SessionSecret == "" {
		return errors.New("editshell: SessionSecret is required")
	}
	if a.Config.RepoFullName == "" {
		return errors.New("editshell: RepoFullName is required")
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("editshell: init store: %w", err)
	}
	a.Store = store

	a.Content = NewContentSource(a.Config.ContentDir)
	a.Cache = NewPageCache(a.Content, a.Config.PageCacheTTL)

	gh, err := NewGitHubAuth(a.Config)
	if err != nil {
		return fmt.Errorf("editshell: init github: %w", err)
	}
	a.GitHub = gh

	a.sessions = a.newSessionStore()
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	if a.Config.WatchContent {
		ctx, cancel := context.WithCancel(context.Background())
		a.stopWatch = cancel
		go func() {
			if err := a.Content.Watch(ctx, a.log, a.Cache.Invalidate); err != nil {
				a.log.Warn().Err(err).Msg("content watcher stopped")
			}
		}()
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start initializes the app and serves HTTP until the server is closed.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.log.Info().Str("addr", a.Config.Addr).Str("repo", a.Config.RepoFullName).Msg("listening")
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Framework assets (editmode.js) are served from the embedded FS and fall
	// through to the user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/editmode.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))

	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	// Preview session lifecycle
	e.GET("/api/preview", a.handlePreview)
	e.GET("/api/reset-preview", a.handleResetPreview)
	e.POST("/api/edit-mode", a.handleToggleEditMode)
	e.POST("/api/pages", a.handleCreatePage)
	e.POST("/api/pages/:slug", a.handleSaveDraft)
	e.POST("/api/pages/:slug/discard", a.handleDiscardDraft)

	// Auth provider
	e.GET("/api/github-authorize", a.handleGitHubAuthorize)
	e.GET("/api/create-github-access-token", a.handleCreateAccessToken)
	e.Any("/api/proxy-github/*", a.handleProxyGitHub)
	e.GET("/github/authorizing/", a.handleAuthorizing)

	if a.Config.MetricsEnabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	e.GET("/", a.handleHome)
	e.GET("/:slug/", a.handlePage)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.stopWatch != nil {
		a.stopWatch()
	}
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
