package editshell

import "context"

// GitHubAPI is the GitHub client configuration carried by the CMS instance
// and handed to the auth provider in the browser.
type GitHubAPI struct {
	Proxy             string
	AuthCallbackRoute string
	ClientID          string
	BaseRepoFullName  string
}

// CMSConfig holds the API credentials a CMS instance is constructed with.
type CMSConfig struct {
	GitHub GitHubAPI
}

// CMS is the per-request content-management instance. It owns the enabled
// flag that the edit-mode toggle flips and the sidebar/toolbar switches set
// from the resolved EditState.
type CMS struct {
	apis    CMSConfig
	enabled bool
	sidebar bool
	toolbar bool
}

// NewCMS constructs a CMS instance configured from state.
func NewCMS(cfg CMSConfig, state EditState) *CMS {
	return &CMS{
		apis:    cfg,
		enabled: state.CMSEnabled,
		sidebar: state.Sidebar,
		toolbar: state.Toolbar,
	}
}

func (c *CMS) Enabled() bool { return c.enabled }
func (c *CMS) Enable()       { c.enabled = true }
func (c *CMS) Disable()      { c.enabled = false }

// Toggle flips enablement.
func (c *CMS) Toggle() { c.enabled = !c.enabled }

// ShowSidebar reports whether the editing sidebar is rendered.
func (c *CMS) ShowSidebar() bool { return c.enabled && c.sidebar }

// ShowToolbar reports whether the editing toolbar is rendered.
func (c *CMS) ShowToolbar() bool { return c.enabled && c.toolbar }

// GitHub returns the GitHub API configuration.
func (c *CMS) GitHub() GitHubAPI { return c.apis.GitHub }

// ToggleLabel is the edit-mode toggle's label for the given enabled flag.
func ToggleLabel(enabled bool) string {
	if enabled {
		return "Exit Edit Mode"
	}
	return "Edit This Site"
}

type cmsContextKey struct{}

// WithCMS returns a copy of ctx carrying cms.
func WithCMS(ctx context.Context, cms *CMS) context.Context {
	return context.WithValue(ctx, cmsContextKey{}, cms)
}

// CMSFromContext returns the CMS instance injected at the application root.
func CMSFromContext(ctx context.Context) (*CMS, bool) {
	cms, ok := ctx.Value(cmsContextKey{}).(*CMS)
	return cms, ok && cms != nil
}
