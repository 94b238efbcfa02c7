// Package views holds the default templ components for an editshell site.
package views

import "github.com/eringen/editshell"

// Default returns the default view set.
func Default() editshell.ViewFuncs {
	return editshell.ViewFuncs{
		Home:        Home,
		Page:        Page,
		Authorizing: Authorizing,
		NotFound:    NotFound,
		ServerError: ServerError,
	}
}

func homeMeta(cfg editshell.SiteConfig) editshell.PageMeta {
	return editshell.PageMeta{
		Title:       cfg.Name,
		Description: cfg.Description,
		URL:         editshell.BuildURL(cfg.URL),
		OGType:      "website",
	}
}

func pageMeta(cfg editshell.SiteConfig, page editshell.Page) editshell.PageMeta {
	return editshell.PageMeta{
		Title:       page.Title + " | " + cfg.Name,
		Description: page.Summary,
		URL:         editshell.BuildURL(cfg.URL, page.Slug),
		OGType:      "article",
	}
}

func statusMeta(cfg editshell.SiteConfig, title string) editshell.PageMeta {
	return editshell.PageMeta{Title: title + " | " + cfg.Name, OGType: "website"}
}
