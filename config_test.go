package editshell

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnv = []string{
	"SITE_NAME", "SITE_URL", "SITE_DESCRIPTION", "SITE_AUTHOR", "ADDR",
	"DATABASE_PATH", "CONTENT_DIR", "SESSION_SECRET", "GITHUB_CLIENT_ID",
	"GITHUB_CLIENT_SECRET", "REPO_FULL_NAME", "GITHUB_API_URL", "GITHUB_OAUTH_URL",
	"LOG_LEVEL", "WATCH_CONTENT", "COOKIE_SECURE", "METRICS_ENABLED", "PAGE_CACHE_TTL",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnv {
		t.Setenv(k, "")
	}
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: From File
url: https://file.example/
repo_full_name: octo/site
page_cache_ttl: 30s
metrics_enabled: true
`), 0o644))
	t.Setenv("SITE_NAME", "From Env")
	t.Setenv("COOKIE_SECURE", "true")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "From Env", cfg.Name)
	assert.Equal(t, "https://file.example/", cfg.URL)
	assert.Equal(t, "octo/site", cfg.RepoFullName)
	assert.Equal(t, 30*time.Second, cfg.PageCacheTTL)
	assert.True(t, cfg.MetricsEnabled)
	assert.True(t, cfg.CookieSecure)
}

func TestLoadConfigRejectsBadTTL(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PAGE_CACHE_TTL", "soon")

	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	clearConfigEnv(t)
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSetDefaults(t *testing.T) {
	var cfg SiteConfig
	cfg.URL = "https://example.com/"
	cfg.setDefaults()

	assert.Equal(t, "https://example.com", cfg.URL)
	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, "data/drafts.db", cfg.DatabasePath)
	assert.Equal(t, "content", cfg.ContentDir)
	assert.Equal(t, "https://api.github.com", cfg.GitHubAPIURL)
	assert.Equal(t, "https://github.com", cfg.GitHubOAuthURL)
	assert.Equal(t, 5*time.Minute, cfg.PageCacheTTL)
}
