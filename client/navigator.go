package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"

	"golang.org/x/net/publicsuffix"
)

// Navigator performs the full reload that picks up a changed preview
// session.
type Navigator interface {
	Reload(ctx context.Context, path string) error
}

// HTTPNavigator reloads by fetching the page and records whether the
// server rendered it in edit mode.
type HTTPNavigator struct {
	base   *url.URL
	client *http.Client

	// EditMode is the X-Edit-Mode value of the last reload.
	EditMode bool
	// Status is the HTTP status of the last reload.
	Status int
}

// NewHTTPClient returns an http.Client with a cookie jar, so the preview
// session cookie set by login is sent on the reload.
func NewHTTPClient() (*http.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	return &http.Client{Jar: jar}, nil
}

// NewHTTPNavigator returns a navigator for baseURL sharing client's cookies.
func NewHTTPNavigator(baseURL string, client *http.Client) (*HTTPNavigator, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &HTTPNavigator{base: base, client: client}, nil
}

func (n *HTTPNavigator) Reload(ctx context.Context, path string) error {
	u := n.base.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("reload %s: %w", path, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	n.Status = resp.StatusCode
	n.EditMode, _ = strconv.ParseBool(resp.Header.Get("X-Edit-Mode"))
	return nil
}
