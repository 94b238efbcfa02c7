package editshell

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SiteConfig holds all configuration for an editshell site.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name (default "Site")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description"` // Site description for RSS and meta tags
	Author      string `yaml:"author"`

	Addr         string `yaml:"addr"`          // Listen address (default ":3000")
	DatabasePath string `yaml:"database_path"` // SQLite path for drafts (default "data/drafts.db")
	ContentDir   string `yaml:"content_dir"`   // Markdown pages (default "content")
	WatchContent bool   `yaml:"watch_content"` // Invalidate the page cache when content files change

	SessionSecret string `yaml:"session_secret"` // Required: preview session and token sealing secret
	CookieSecure  bool   `yaml:"cookie_secure"`  // Set true for HTTPS

	// Passed opaquely to the auth provider and the CMS GitHub API.
	GitHubClientID     string `yaml:"github_client_id"`
	GitHubClientSecret string `yaml:"github_client_secret"`
	RepoFullName       string `yaml:"repo_full_name"` // "owner/repo"

	GitHubAPIURL   string `yaml:"github_api_url"`   // default "https://api.github.com"
	GitHubOAuthURL string `yaml:"github_oauth_url"` // default "https://github.com"

	PageCacheTTL   time.Duration `yaml:"page_cache_ttl"` // default 5m
	MetricsEnabled bool          `yaml:"metrics_enabled"`
	LogLevel       string        `yaml:"log_level"`
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Site"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimSuffix(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/drafts.db"
	}
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.GitHubAPIURL == "" {
		c.GitHubAPIURL = "https://api.github.com"
	}
	if c.GitHubOAuthURL == "" {
		c.GitHubOAuthURL = "https://github.com"
	}
	if c.PageCacheTTL == 0 {
		c.PageCacheTTL = 5 * time.Minute
	}
}

// LoadConfig builds a SiteConfig from an optional YAML file and the process
// environment. Environment variables win over file values.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return SiteConfig{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return SiteConfig{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	envString(&cfg.Name, "SITE_NAME")
	envString(&cfg.URL, "SITE_URL")
	envString(&cfg.Description, "SITE_DESCRIPTION")
	envString(&cfg.Author, "SITE_AUTHOR")
	envString(&cfg.Addr, "ADDR")
	envString(&cfg.DatabasePath, "DATABASE_PATH")
	envString(&cfg.ContentDir, "CONTENT_DIR")
	envString(&cfg.SessionSecret, "SESSION_SECRET")
	envString(&cfg.GitHubClientID, "GITHUB_CLIENT_ID")
	envString(&cfg.GitHubClientSecret, "GITHUB_CLIENT_SECRET")
	envString(&cfg.RepoFullName, "REPO_FULL_NAME")
	envString(&cfg.GitHubAPIURL, "GITHUB_API_URL")
	envString(&cfg.GitHubOAuthURL, "GITHUB_OAUTH_URL")
	envString(&cfg.LogLevel, "LOG_LEVEL")
	envBool(&cfg.WatchContent, "WATCH_CONTENT")
	envBool(&cfg.CookieSecure, "COOKIE_SECURE")
	envBool(&cfg.MetricsEnabled, "METRICS_ENABLED")
	if v := os.Getenv("PAGE_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return SiteConfig{}, fmt.Errorf("PAGE_CACHE_TTL: %w", err)
		}
		cfg.PageCacheTTL = d
	}
	return cfg, nil
}

func envString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = strings.EqualFold(v, "true") || v == "1"
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}
