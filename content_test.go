package editshell

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePage(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestContentSourceLoad(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "about.md", "---\ntitle: About\nsummary: Who we are\ndate: 2024-01-15\n---\n# About\n\nHello.\n")
	writePage(t, dir, "news.md", "---\ntitle: News\ndate: 2024-03-01\n---\nLatest.\n")
	writePage(t, dir, "wip.md", "---\ntitle: Work in progress\ndraft: true\n---\nSoon.\n")
	writePage(t, dir, "plain.md", "No frontmatter here.\n")
	writePage(t, dir, "notes.txt", "ignored")

	pages, err := NewContentSource(dir).Load()
	require.NoError(t, err)
	require.Len(t, pages, 4)

	assert.Equal(t, "news", pages[0].Slug)
	assert.Equal(t, "about", pages[1].Slug)

	about := pages[1]
	assert.Equal(t, "About", about.Title)
	assert.Equal(t, "Who we are", about.Summary)
	assert.Equal(t, "2024-01-15", about.Date)
	assert.Equal(t, "/about/", about.Link)
	assert.Contains(t, about.HTML, `<h1 id="about">About</h1>`)

	for _, p := range pages {
		switch p.Slug {
		case "wip":
			assert.True(t, p.Draft)
		case "plain":
			assert.Equal(t, "plain", p.Title)
			assert.Contains(t, p.HTML, "No frontmatter here.")
		}
	}
}

func TestContentSourceMissingDir(t *testing.T) {
	pages, err := NewContentSource(filepath.Join(t.TempDir(), "nope")).Load()
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestRenderMarkdownOmitsRawHTML(t *testing.T) {
	html, err := RenderMarkdown("hi <script>alert(1)</script>")
	require.NoError(t, err)
	assert.False(t, strings.Contains(html, "<script>"))
}

func TestPageCacheHidesDraftsUnlessAsked(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "about.md", "---\ntitle: About\n---\nbody\n")
	writePage(t, dir, "wip.md", "---\ntitle: WIP\ndraft: true\n---\nbody\n")

	cache := NewPageCache(NewContentSource(dir), time.Minute)

	public, err := cache.ListPages(false)
	require.NoError(t, err)
	assert.Len(t, public, 1)

	all, err := cache.ListPages(true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = cache.GetPage("wip", false)
	assert.ErrorIs(t, err, ErrNotFound)
	p, err := cache.GetPage("wip", true)
	require.NoError(t, err)
	assert.Equal(t, "WIP", p.Title)
}

func TestPageCacheInvalidate(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "about.md", "---\ntitle: About\n---\nbody\n")
	cache := NewPageCache(NewContentSource(dir), time.Hour)

	pages, err := cache.ListPages(false)
	require.NoError(t, err)
	require.Len(t, pages, 1)

	writePage(t, dir, "contact.md", "---\ntitle: Contact\n---\nbody\n")
	pages, _ = cache.ListPages(false)
	assert.Len(t, pages, 1, "cached until invalidated")

	cache.Invalidate()
	pages, err = cache.ListPages(false)
	require.NoError(t, err)
	assert.Len(t, pages, 2)
}
