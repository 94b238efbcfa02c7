package editshell

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// Slugs that would shadow framework routes under "/:slug/".
var reservedSlugs = map[string]bool{"api": true, "github": true, "public": true}

// handleToggleEditMode flips the CMS instance's enabled flag for the next
// render of path. The flip is carried as a one-shot session flash, so a plain
// reload afterwards falls back to the state resolved from the preview session.
func (a *App) handleToggleEditMode(c echo.Context) error {
	cms := CMSOf(c)
	// The form posts the state it was rendered with; that render's flash is
	// already spent.
	if shown, err := strconv.ParseBool(c.FormValue("enabled")); err == nil {
		if shown {
			cms.Enable()
		} else {
			cms.Disable()
		}
	}
	cms.Toggle()
	if err := setEditModeFlash(c, cms.Enabled()); err != nil {
		return err
	}
	editModeToggles.WithLabelValues(strconv.FormatBool(cms.Enabled())).Inc()
	return c.Redirect(http.StatusSeeOther, localPath(c.FormValue("path")))
}

// handleCreatePage starts a new page as a draft. It is listed and rendered
// for preview sessions only, like any other draft.
func (a *App) handleCreatePage(c echo.Context) error {
	if !PropsOf(c).Preview {
		return echo.NewHTTPError(http.StatusUnauthorized, "not in a preview session")
	}
	title := strings.TrimSpace(c.FormValue("title"))
	slug := Slugify(c.FormValue("slug"))
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Give the new page a title or a slug.")
	}
	if reservedSlugs[slug] {
		return echo.NewHTTPError(http.StatusBadRequest, "The slug "+slug+" is reserved.")
	}
	if _, err := a.editablePage(slug); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "A page named "+slug+" already exists.")
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	if title == "" {
		title = slug
	}
	if err := a.Store.SaveDraft(Draft{Slug: slug, Title: title, Content: c.FormValue("content")}); err != nil {
		return err
	}
	pagesCreated.Inc()
	return c.Redirect(http.StatusSeeOther, "/"+slug+"/")
}

func (a *App) handleSaveDraft(c echo.Context) error {
	if !PropsOf(c).Preview {
		return echo.NewHTTPError(http.StatusUnauthorized, "not in a preview session")
	}
	page, err := a.editablePage(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return err
	}
	title := strings.TrimSpace(c.FormValue("title"))
	if title == "" {
		title = page.Title
	}
	if err := a.Store.SaveDraft(Draft{
		Slug:    page.Slug,
		Title:   title,
		Content: c.FormValue("content"),
	}); err != nil {
		return err
	}
	draftSaves.Inc()
	return c.Redirect(http.StatusSeeOther, page.Link)
}

func (a *App) handleDiscardDraft(c echo.Context) error {
	if !PropsOf(c).Preview {
		return echo.NewHTTPError(http.StatusUnauthorized, "not in a preview session")
	}
	page, err := a.editablePage(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return err
	}
	if err := a.Store.DeleteDraft(page.Slug); err != nil {
		return err
	}
	if page.New {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return c.Redirect(http.StatusSeeOther, page.Link)
}

// editablePage returns the content page for slug, including frontmatter
// drafts, or the page that so far exists only as a saved draft.
func (a *App) editablePage(slug string) (Page, error) {
	page, err := a.Cache.GetPage(slug, true)
	if errors.Is(err, ErrNotFound) {
		return a.newPageDraft(slug)
	}
	return page, err
}

// newPageDraft builds a page from a draft that has no content file.
func (a *App) newPageDraft(slug string) (Page, error) {
	d, err := a.Store.GetDraft(slug)
	if err != nil {
		return Page{}, err
	}
	html, err := RenderMarkdown(d.Content)
	if err != nil {
		return Page{}, err
	}
	title := d.Title
	if title == "" {
		title = d.Slug
	}
	return Page{
		Slug:    d.Slug,
		Title:   title,
		Draft:   true,
		Content: d.Content,
		HTML:    html,
		Link:    "/" + d.Slug + "/",
		Edited:  true,
		New:     true,
	}, nil
}

// localPath keeps redirects on this site.
func localPath(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return "/"
	}
	return p
}
