package editshell

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

func (a *App) handleHome(c echo.Context) error {
	props := PropsOf(c)
	pages, err := a.Cache.ListPages(props.Preview)
	if err != nil {
		return err
	}
	shell := a.shell(c, props)
	if props.Preview {
		drafts, err := a.Store.ListDrafts()
		if err != nil {
			a.log.Error().Err(err).Msg("list drafts")
			shell.Props.Error = "Could not load the list of saved drafts."
		}
		shell.Drafts = drafts
	}
	return Render(c, a.Views.Home(a.Config, pages, shell))
}

func (a *App) handlePage(c echo.Context) error {
	props := PropsOf(c)
	slug := c.Param("slug")
	page, err := a.Cache.GetPage(slug, props.Preview)
	switch {
	case err == nil:
		if props.Preview {
			page, props = a.overlayDraft(page, props)
		}
	case errors.Is(err, ErrNotFound) && props.Preview:
		page, err = a.newPageDraft(slug)
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.Config))
		}
		if err != nil {
			return err
		}
	case errors.Is(err, ErrNotFound):
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.Config))
	default:
		return err
	}
	return Render(c, a.Views.Page(a.Config, page, a.shell(c, props)))
}

// overlayDraft replaces page content with its saved draft. A draft that
// fails to load leaves the file content in place and reports through
// props.Error.
func (a *App) overlayDraft(page Page, props PageProps) (Page, PageProps) {
	d, err := a.Store.GetDraft(page.Slug)
	if errors.Is(err, ErrNotFound) {
		return page, props
	}
	if err != nil {
		a.log.Error().Err(err).Str("slug", page.Slug).Msg("load draft")
		props.Error = "Could not load the saved draft for this page."
		return page, props
	}
	html, err := RenderMarkdown(d.Content)
	if err != nil {
		props.Error = "The saved draft for this page could not be rendered."
		return page, props
	}
	if d.Title != "" {
		page.Title = d.Title
	}
	page.Content = d.Content
	page.HTML = html
	page.Edited = true
	return page, props
}

func (a *App) shell(c echo.Context, props PageProps) Shell {
	return Shell{
		CMS:       CMSOf(c),
		Props:     props,
		CSRFToken: CsrfToken(c),
		Path:      c.Request().URL.Path,
	}
}

func (a *App) handleAuthorizing(c echo.Context) error {
	return Render(c, a.Views.Authorizing(a.Config))
}

func (a *App) handleSitemap(c echo.Context) error {
	pages, err := a.Cache.ListPages(false)
	if err != nil {
		return err
	}
	return writeXML(c, "application/xml; charset=utf-8", sitemapDocument(a.Config, pages))
}

func (a *App) handleFeed(c echo.Context) error {
	pages, err := a.Cache.ListPages(false)
	if err != nil {
		return err
	}
	return writeXML(c, "application/rss+xml; charset=utf-8", feedDocument(a.Config, pages))
}

func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /api/\n\nSitemap: %s/sitemap.xml\n", a.Config.URL)
	return c.String(http.StatusOK, body)
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.Config))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.log.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("server error")
		_ = RenderStatus(c, code, a.Views.ServerError(a.Config))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
