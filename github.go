package editshell

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const sealedTokenName = "cms-github-token"

var (
	// ErrRepoAccessDenied is returned when a token cannot push to the configured repository.
	ErrRepoAccessDenied = errors.New("repository access denied")
	// ErrInvalidToken is returned when a sealed token fails to decode.
	ErrInvalidToken = errors.New("invalid access token")
)

// GitHubAuth is the source-control auth provider: it runs the OAuth code
// exchange, seals the resulting access token for client-side storage,
// verifies tokens against the configured repository, and proxies GitHub API
// calls on behalf of preview sessions.
type GitHubAuth struct {
	oauth  *oauth2.Config
	apiURL *url.URL
	repo   string
	sealer *securecookie.SecureCookie
	client *http.Client
}

// NewGitHubAuth builds the auth provider from site configuration.
func NewGitHubAuth(cfg SiteConfig) (*GitHubAuth, error) {
	apiURL, err := url.Parse(cfg.GitHubAPIURL)
	if err != nil {
		return nil, fmt.Errorf("github api url: %w", err)
	}

	endpoint := github.Endpoint
	if base := strings.TrimSuffix(cfg.GitHubOAuthURL, "/"); base != "https://github.com" {
		endpoint = oauth2.Endpoint{
			AuthURL:  base + "/login/oauth/authorize",
			TokenURL: base + "/login/oauth/access_token",
		}
	}

	hashKey := sha256.Sum256([]byte("token-hash:" + cfg.SessionSecret))
	blockKey := sha256.Sum256([]byte("token-block:" + cfg.SessionSecret))
	sealer := securecookie.New(hashKey[:], blockKey[:])
	sealer.MaxAge(60 * 60 * 24 * 30)

	return &GitHubAuth{
		oauth: &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			Endpoint:     endpoint,
			RedirectURL:  cfg.URL + "/github/authorizing/",
			Scopes:       []string{"public_repo"},
		},
		apiURL: apiURL,
		repo:   cfg.RepoFullName,
		sealer: sealer,
		client: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// AuthCodeURL returns the GitHub authorize URL for state.
func (g *GitHubAuth) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state)
}

// Exchange trades an OAuth code for a GitHub access token.
func (g *GitHubAuth) Exchange(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.client)
	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchange code: %w", err)
	}
	return tok.AccessToken, nil
}

// Seal encodes an access token so it can be stored by the browser.
func (g *GitHubAuth) Seal(token string) (string, error) {
	return g.sealer.Encode(sealedTokenName, token)
}

// Open decodes a sealed token.
func (g *GitHubAuth) Open(sealed string) (string, error) {
	var token string
	if err := g.sealer.Decode(sealedTokenName, sealed, &token); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if token == "" {
		return "", ErrInvalidToken
	}
	return token, nil
}

type repoPermissions struct {
	Permissions struct {
		Push bool `json:"push"`
	} `json:"permissions"`
}

// VerifyRepoAccess checks that token can push to the configured repository.
func (g *GitHubAuth) VerifyRepoAccess(ctx context.Context, token string) error {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.client)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))

	u := g.apiURL.JoinPath("repos", g.repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("github repo lookup: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return fmt.Errorf("%w: token cannot read %s", ErrRepoAccessDenied, g.repo)
	default:
		return fmt.Errorf("github repo lookup: unexpected status %d", resp.StatusCode)
	}

	var perms repoPermissions
	if err := json.NewDecoder(resp.Body).Decode(&perms); err != nil {
		return fmt.Errorf("decode repo permissions: %w", err)
	}
	if !perms.Permissions.Push {
		return fmt.Errorf("%w: token cannot write to %s", ErrRepoAccessDenied, g.repo)
	}
	return nil
}

// Proxy returns a handler forwarding requests under prefix to the GitHub API
// with token attached.
func (g *GitHubAuth) Proxy(prefix, token string) http.Handler {
	target := g.apiURL
	return &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(target)
			r.Out.URL.Path = singleJoin(target.Path, strings.TrimPrefix(r.In.URL.Path, prefix))
			r.Out.URL.RawPath = ""
			r.Out.Host = target.Host
			r.Out.Header.Del("Cookie")
			r.Out.Header.Set("Authorization", "Bearer "+token)
		},
	}
}

func singleJoin(a, b string) string {
	a = strings.TrimSuffix(a, "/")
	if !strings.HasPrefix(b, "/") {
		b = "/" + b
	}
	return a + b
}
