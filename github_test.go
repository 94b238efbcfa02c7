package editshell

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGitHubAuth(t *testing.T, apiURL string) *GitHubAuth {
	t.Helper()
	cfg := SiteConfig{
		SessionSecret:  "test-secret",
		RepoFullName:   "octo/site",
		GitHubClientID: "client-id",
		GitHubAPIURL:   apiURL,
		GitHubOAuthURL: apiURL,
	}
	cfg.setDefaults()
	g, err := NewGitHubAuth(cfg)
	require.NoError(t, err)
	return g
}

func TestSealAndOpenToken(t *testing.T) {
	g := newTestGitHubAuth(t, "http://127.0.0.1")

	sealed, err := g.Seal("gho_abc")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "gho_abc")

	token, err := g.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "gho_abc", token)

	_, err = g.Open("not-a-sealed-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRepoAccess(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		denied   bool
		anyError bool
	}{
		{"push allowed", http.StatusOK, `{"permissions":{"push":true}}`, false, false},
		{"read only", http.StatusOK, `{"permissions":{"push":false}}`, true, true},
		{"not found", http.StatusNotFound, `{}`, true, true},
		{"bad credentials", http.StatusUnauthorized, `{}`, true, true},
		{"upstream failure", http.StatusBadGateway, `{}`, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/repos/octo/site", r.URL.Path)
				assert.Equal(t, "Bearer gho_abc", r.Header.Get("Authorization"))
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			err := newTestGitHubAuth(t, srv.URL).VerifyRepoAccess(context.Background(), "gho_abc")
			if !tt.anyError {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.denied, errors.Is(err, ErrRepoAccessDenied))
		})
	}
}

func TestExchangeCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/login/oauth/access_token", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "the-code", r.Form.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"gho_new","token_type":"bearer"}`)
	}))
	defer srv.Close()

	token, err := newTestGitHubAuth(t, srv.URL).Exchange(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "gho_new", token)
}

func TestAuthCodeURLCarriesClientAndState(t *testing.T) {
	u := newTestGitHubAuth(t, "http://gh.test").AuthCodeURL("xyz")
	assert.Contains(t, u, "http://gh.test/login/oauth/authorize")
	assert.Contains(t, u, "client_id=client-id")
	assert.Contains(t, u, "state=xyz")
}

func TestProxyForwardsWithToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/octo/site/contents/README.md", r.URL.Path)
		assert.Equal(t, "Bearer gho_abc", r.Header.Get("Authorization"))
		assert.Empty(t, r.Header.Get("Cookie"))
		_, _ = io.WriteString(w, "ok")
	}))
	defer srv.Close()

	proxy := newTestGitHubAuth(t, srv.URL).Proxy("/api/proxy-github", "gho_abc")
	req := httptest.NewRequest(http.MethodGet, "/api/proxy-github/repos/octo/site/contents/README.md", nil)
	req.Header.Set("Cookie", "preview_session=secret")
	rec := httptest.NewRecorder()
	proxy.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
