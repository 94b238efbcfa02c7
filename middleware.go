package editshell

import (
	"crypto/sha256"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	sessionName       = "preview_session"
	sessionPreviewKey = "preview"
	sessionTokenKey   = "github_token"
	sessionStateKey   = "oauth_state"
	editModeFlashKey  = "edit_mode"

	propsContextKey = "editshell.props"
	cmsEchoKey      = "editshell.cms"
)

func (a *App) setupMiddleware() {
	e := a.Echo

	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)

	e.HTTPErrorHandler = a.httpErrorHandler

	e.Pre(middleware.NonWWWRedirect())

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			a.log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	}))

	e.Use(middleware.Recover())

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.HasPrefix(path, "/public/") || strings.HasPrefix(path, "/api/proxy-github")
		},
	}))

	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' https: data:; font-src 'self'; connect-src 'self'",
		HSTSMaxAge:            31536000,
		HSTSExcludeSubdomains: false,
	}))

	e.Use(session.Middleware(a.sessions))

	e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		ContextKey:  middleware.DefaultCSRFConfig.ContextKey,
		TokenLookup: "header:X-CSRF-Token,form:_csrf",
		CookieName:  "_csrf",
		CookiePath:  "/",
		CookieSameSite: func() http.SameSite {
			return http.SameSiteLaxMode
		}(),
		CookieSecure: a.Config.CookieSecure,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/api/proxy-github")
		},
		ErrorHandler: func(err error, c echo.Context) error {
			return c.String(http.StatusForbidden, "Forbidden")
		},
	}))

	e.Use(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.HasPrefix(path, "/public") ||
				strings.HasPrefix(path, "/api/") ||
				path == "/metrics" ||
				path == "/sitemap.xml" || path == "/feed.xml" || path == "/robots.txt"
		},
	}))

	e.Use(a.previewSessionMiddleware)
	e.Use(cacheControlMiddleware)
}

// previewSessionMiddleware resolves the preview session once per request.
// The resulting PageProps and the CMS instance configured from them are the
// only edit-mode state handlers and views see.
func (a *App) previewSessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		props := PageProps{}
		sess, err := session.Get(sessionName, c)
		if err == nil {
			props = propsFromSession(sess.Values)
		}
		cms := NewCMS(a.cmsConfig(), Resolve(props))

		if sess != nil {
			if flashes := sess.Flashes(editModeFlashKey); len(flashes) > 0 {
				if mode, ok := flashes[len(flashes)-1].(string); ok {
					switch mode {
					case "on":
						cms.Enable()
					case "off":
						cms.Disable()
					}
				}
				if err := sess.Save(c.Request(), c.Response()); err != nil {
					return err
				}
			}
		}

		c.Set(propsContextKey, props)
		c.Set(cmsEchoKey, cms)
		c.SetRequest(c.Request().WithContext(WithCMS(c.Request().Context(), cms)))
		c.Response().Header().Set("X-Edit-Mode", strconv.FormatBool(cms.Enabled()))
		return next(c)
	}
}

func cacheControlMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Request().URL.Path
		switch {
		case strings.HasPrefix(path, "/public/"):
			c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		case path == "/sitemap.xml" || path == "/feed.xml" || path == "/robots.txt":
			c.Response().Header().Set("Cache-Control", "public, max-age=86400")
		case strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/github/") || path == "/metrics":
			c.Response().Header().Set("Cache-Control", "no-store")
		default:
			// Pages embed the visitor's CSRF token and edit-mode state.
			c.Response().Header().Set("Cache-Control", "private, no-store")
		}
		return next(c)
	}
}

func (a *App) newSessionStore() *sessions.CookieStore {
	hashKey := sha256.Sum256([]byte("session-hash:" + a.Config.SessionSecret))
	blockKey := sha256.Sum256([]byte("session-block:" + a.Config.SessionSecret))
	store := sessions.NewCookieStore(hashKey[:], blockKey[:])
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   60 * 60 * 12,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	}
	return store
}

func (a *App) cmsConfig() CMSConfig {
	return CMSConfig{
		GitHub: GitHubAPI{
			Proxy:             "/api/proxy-github",
			AuthCallbackRoute: "/api/create-github-access-token",
			ClientID:          a.Config.GitHubClientID,
			BaseRepoFullName:  a.Config.RepoFullName,
		},
	}
}

// PropsOf returns the page properties resolved for this request.
func PropsOf(c echo.Context) PageProps {
	props, _ := c.Get(propsContextKey).(PageProps)
	return props
}

// CMSOf returns the CMS instance configured for this request.
func CMSOf(c echo.Context) *CMS {
	if cms, ok := c.Get(cmsEchoKey).(*CMS); ok {
		return cms
	}
	if cms, ok := CMSFromContext(c.Request().Context()); ok {
		return cms
	}
	return NewCMS(CMSConfig{}, EditState{})
}

func setPreviewSession(c echo.Context, token string) error {
	// A cookie that no longer decodes still yields a fresh session to overwrite.
	sess, err := session.Get(sessionName, c)
	if sess == nil {
		return err
	}
	sess.Values[sessionPreviewKey] = true
	sess.Values[sessionTokenKey] = token
	return sess.Save(c.Request(), c.Response())
}

func clearPreviewSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if sess == nil {
		return err
	}
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// sessionToken returns the GitHub access token bound to an active preview session.
func sessionToken(c echo.Context) (string, bool) {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return "", false
	}
	if preview, _ := sess.Values[sessionPreviewKey].(bool); !preview {
		return "", false
	}
	token, ok := sess.Values[sessionTokenKey].(string)
	return token, ok && token != ""
}

func setEditModeFlash(c echo.Context, enabled bool) error {
	sess, err := session.Get(sessionName, c)
	if sess == nil {
		return err
	}
	mode := "off"
	if enabled {
		mode = "on"
	}
	sess.AddFlash(mode, editModeFlashKey)
	return sess.Save(c.Request(), c.Response())
}

// CsrfToken extracts the CSRF token from the Echo context.
func CsrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}
