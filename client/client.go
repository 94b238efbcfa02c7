// Package client drives an editshell site's preview session from Go: it
// enters edit mode with a stored access token and leaves it again, reloading
// the current page after each step.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/eringen/editshell/internal/log"
)

const (
	previewPath      = "/api/preview"
	resetPreviewPath = "/api/reset-preview"
)

// previewBody is the JSON answer of the preview endpoint.
type previewBody struct {
	Preview bool   `json:"preview"`
	Message string `json:"message"`
}

// LoginError is returned by Login when the preview endpoint rejects the
// request. Its message is the server-supplied message verbatim.
type LoginError struct {
	Status  int
	Message string
}

func (e *LoginError) Error() string { return e.Message }

// Options configure a Client.
type Options struct {
	BaseURL    string       // site root, e.g. "https://example.com"
	Path       string       // current page path, reloaded after login/logout (default "/")
	HTTPClient *http.Client // default http.DefaultClient
	Tokens     TokenStore
	Navigator  Navigator
	Logger     *zerolog.Logger
}

// Client runs the login and logout flows against one site.
type Client struct {
	base   *url.URL
	path   string
	http   *http.Client
	tokens TokenStore
	nav    Navigator
	log    zerolog.Logger
}

// New validates opts and returns a Client.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("client: base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("client: base url %q must be absolute", opts.BaseURL)
	}
	if opts.Tokens == nil {
		return nil, errors.New("client: token store is required")
	}
	if opts.Navigator == nil {
		return nil, errors.New("client: navigator is required")
	}
	c := &Client{
		base:   base,
		path:   opts.Path,
		http:   opts.HTTPClient,
		tokens: opts.Tokens,
		nav:    opts.Navigator,
		log:    log.WithComponent("client"),
	}
	if c.path == "" {
		c.path = "/"
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	if opts.Logger != nil {
		c.log = *opts.Logger
	}
	return c, nil
}

// Login enters edit mode. The stored token, if any, is sent as a bearer
// token; without one the request is sent anonymously. The response body must
// be JSON whatever the status. On 200 the current path is reloaded once. Any
// other status returns a *LoginError carrying the body's message and does not
// reload.
func (c *Client) Login(ctx context.Context) error {
	token, ok, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(previewPath), nil)
	if err != nil {
		return err
	}
	if ok && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("preview request: %w", err)
	}
	defer resp.Body.Close()

	var body previewBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		return fmt.Errorf("preview response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return &LoginError{Status: resp.StatusCode, Message: body.Message}
	}

	return c.nav.Reload(ctx, c.path)
}

// Logout leaves edit mode. The page is reloaded exactly once whatever the
// outcome of the reset request; a failed reset is logged, not returned.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.resetPreview(ctx); err != nil {
		c.resetFailed(err)
	}
	return c.nav.Reload(ctx, c.path)
}

// resetFailed is the deliberate ignored-error branch of Logout.
func (c *Client) resetFailed(err error) {
	c.log.Warn().Err(err).Str("path", c.path).Msg("reset preview failed, reloading anyway")
}

func (c *Client) resetPreview(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(resetPreviewPath), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("reset request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("reset request: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) endpoint(p string) string {
	return c.base.ResolveReference(&url.URL{Path: p}).String()
}
