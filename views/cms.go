package views

import (
	"net/url"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/editshell"
)

// EditToggle is the edit-mode toggle. Its label is read from the CMS
// instance on every render.
func EditToggle(shell editshell.Shell) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<form class="cms-edit-toggle" method="post" action="/api/edit-mode">`)
		h.raw(`<input type="hidden" name="_csrf" value="`)
		h.text(shell.CSRFToken)
		h.raw(`"><input type="hidden" name="path" value="`)
		h.text(shell.Path)
		h.raw(`"><input type="hidden" name="enabled" value="`, strconv.FormatBool(shell.CMS.Enabled()), `">`)
		h.raw(`<button type="submit">`)
		h.text(editshell.ToggleLabel(shell.CMS.Enabled()))
		h.raw(`</button></form>`)
	})
}

// Toolbar renders the editing toolbar. page is nil outside a content page.
func Toolbar(shell editshell.Shell, page *editshell.Page) templ.Component {
	return component(func(h *htmlWriter) {
		if !shell.CMS.ShowToolbar() {
			return
		}
		h.raw(`<div class="cms-toolbar" role="toolbar">`)
		if page == nil {
			h.raw(`<span class="cms-toolbar-title">Editing site</span>`)
			h.raw(`<a class="cms-toolbar-new" href="#cms-new-page">New page</a></div>`)
			return
		}
		h.raw(`<span class="cms-toolbar-title">`)
		h.text(page.Title)
		h.raw(`</span>`)
		switch {
		case page.New:
			h.raw(`<span class="cms-toolbar-status">New page, unpublished draft</span>`)
		case page.Edited:
			h.raw(`<span class="cms-toolbar-status">Unpublished draft</span>`)
		}
		h.raw(`<button type="submit" form="cms-page-form">Save</button>`)
		if page.Edited {
			h.raw(`<form method="post" action="/api/pages/`, url.PathEscape(page.Slug), `/discard">`)
			h.raw(`<input type="hidden" name="_csrf" value="`)
			h.text(shell.CSRFToken)
			h.raw(`"><button type="submit">Discard draft</button></form>`)
		}
		h.raw(`</div>`)
	})
}

// Sidebar renders the editing sidebar. page is nil outside a content page.
func Sidebar(shell editshell.Shell, page *editshell.Page) templ.Component {
	return component(func(h *htmlWriter) {
		if !shell.CMS.ShowSidebar() {
			return
		}
		h.raw(`<aside class="cms-sidebar"><h2>Edit mode</h2><p class="cms-repo">`)
		h.text(shell.CMS.GitHub().BaseRepoFullName)
		h.raw(`</p>`)
		if shell.Props.Error != "" {
			h.raw(`<p class="cms-error" role="alert">`)
			h.text(shell.Props.Error)
			h.raw(`</p>`)
		}
		if page == nil {
			h.render(draftList(shell.Drafts))
			h.render(newPageForm(shell))
		} else {
			h.raw(`<form id="cms-page-form" method="post" action="/api/pages/`, url.PathEscape(page.Slug), `">`)
			h.raw(`<input type="hidden" name="_csrf" value="`)
			h.text(shell.CSRFToken)
			h.raw(`"><label>Title <input type="text" name="title" value="`)
			h.text(page.Title)
			h.raw(`"></label><label>Content <textarea name="content" rows="24">`)
			h.text(page.Content)
			h.raw(`</textarea></label></form>`)
		}
		h.raw(`<button type="button" data-cms-logout>Log out</button></aside>`)
	})
}

func draftList(drafts []editshell.Draft) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<section class="cms-drafts"><h3>Unpublished drafts</h3>`)
		if len(drafts) == 0 {
			h.raw(`<p>No saved drafts.</p></section>`)
			return
		}
		h.raw(`<ul>`)
		for _, d := range drafts {
			h.raw(`<li><a href="/`, url.PathEscape(d.Slug), `/">`)
			h.text(d.Title)
			h.raw(`</a> <time datetime="`, d.UpdatedAt.UTC().Format(time.RFC3339), `">`)
			h.text(d.UpdatedAt.Format("2006-01-02 15:04"))
			h.raw(`</time></li>`)
		}
		h.raw(`</ul></section>`)
	})
}

func newPageForm(shell editshell.Shell) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<form id="cms-new-page" class="cms-new-page" method="post" action="/api/pages">`)
		h.raw(`<h3>New page</h3><input type="hidden" name="_csrf" value="`)
		h.text(shell.CSRFToken)
		h.raw(`"><label>Title <input type="text" name="title" required></label>`)
		h.raw(`<label>Slug <input type="text" name="slug" placeholder="derived from the title"></label>`)
		h.raw(`<label>Content <textarea name="content" rows="12"></textarea></label>`)
		h.raw(`<button type="submit">Create draft</button></form>`)
	})
}

// authModal asks for GitHub login when edit mode is switched on without a
// preview session.
func authModal(shell editshell.Shell) templ.Component {
	return component(func(h *htmlWriter) {
		if !shell.CMS.Enabled() || shell.Props.Preview {
			return
		}
		h.raw(`<div class="cms-auth-modal" role="dialog" aria-modal="true">`)
		h.raw(`<p>Log in with GitHub to edit `)
		h.text(shell.CMS.GitHub().BaseRepoFullName)
		h.raw(`.</p><button type="button" data-cms-login>Log in with GitHub</button>`)
		h.raw(`<p class="cms-error" data-cms-auth-error hidden></p></div>`)
	})
}
