package editshell

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

// apiError is the JSON body of every non-200 API response.
type apiError struct {
	Message string `json:"message"`
}

type previewResponse struct {
	Preview bool `json:"preview"`
}

type signedTokenResponse struct {
	SignedToken string `json:"signedToken"`
}

// handlePreview starts a preview session for a bearer token that can push to
// the configured repository.
func (a *App) handlePreview(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		previewLogins.WithLabelValues("limited").Inc()
		return c.JSON(http.StatusTooManyRequests, apiError{"Too many preview attempts. Try again later."})
	}

	sealed, ok := bearerToken(c.Request())
	if !ok {
		a.loginLimiter.Record(ip)
		previewLogins.WithLabelValues("missing_token").Inc()
		return c.JSON(http.StatusUnauthorized, apiError{"Log in with GitHub to enter edit mode."})
	}
	token, err := a.GitHub.Open(sealed)
	if err != nil {
		a.loginLimiter.Record(ip)
		previewLogins.WithLabelValues("invalid_token").Inc()
		return c.JSON(http.StatusUnauthorized, apiError{"Your GitHub session has expired. Log in again."})
	}

	if err := a.GitHub.VerifyRepoAccess(c.Request().Context(), token); err != nil {
		if errors.Is(err, ErrRepoAccessDenied) {
			a.loginLimiter.Record(ip)
			previewLogins.WithLabelValues("denied").Inc()
			return c.JSON(http.StatusForbidden, apiError{"You do not have write access to " + a.Config.RepoFullName + "."})
		}
		a.log.Error().Err(err).Msg("verify repository access")
		previewLogins.WithLabelValues("error").Inc()
		return c.JSON(http.StatusBadGateway, apiError{"GitHub is unavailable. Try again later."})
	}

	if err := setPreviewSession(c, token); err != nil {
		return err
	}
	previewLogins.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, previewResponse{Preview: true})
}

func (a *App) handleResetPreview(c echo.Context) error {
	if err := clearPreviewSession(c); err != nil {
		return err
	}
	previewResets.Inc()
	return c.JSON(http.StatusOK, previewResponse{Preview: false})
}

// handleGitHubAuthorize starts the OAuth flow.
func (a *App) handleGitHubAuthorize(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if sess == nil {
		return err
	}
	state := uuid.NewString()
	sess.Values[sessionStateKey] = state
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, a.GitHub.AuthCodeURL(state))
}

// handleCreateAccessToken completes the OAuth flow and returns the sealed
// access token for the browser to store.
func (a *App) handleCreateAccessToken(c echo.Context) error {
	code := c.QueryParam("code")
	state := c.QueryParam("state")
	if code == "" {
		return c.JSON(http.StatusBadRequest, apiError{"Missing authorization code."})
	}

	sess, err := session.Get(sessionName, c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, apiError{"Authorization state expired. Try again."})
	}
	want, _ := sess.Values[sessionStateKey].(string)
	if want == "" || state != want {
		return c.JSON(http.StatusBadRequest, apiError{"Authorization state mismatch. Try again."})
	}
	delete(sess.Values, sessionStateKey)
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return err
	}

	token, err := a.GitHub.Exchange(c.Request().Context(), code)
	if err != nil {
		a.log.Warn().Err(err).Msg("github code exchange failed")
		return c.JSON(http.StatusBadGateway, apiError{"GitHub rejected the authorization code."})
	}
	sealed, err := a.GitHub.Seal(token)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, signedTokenResponse{SignedToken: sealed})
}

// handleProxyGitHub forwards GitHub API calls for an active preview session.
func (a *App) handleProxyGitHub(c echo.Context) error {
	token, ok := sessionToken(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, apiError{"Not in a preview session."})
	}
	a.GitHub.Proxy("/api/proxy-github", token).ServeHTTP(c.Response(), c.Request())
	return nil
}

// bearerToken extracts the token from an "Authorization: Bearer" header.
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if len(h) < len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(h[len(prefix):])
	return token, token != ""
}
