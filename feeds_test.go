package editshell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedDocument(t *testing.T) {
	cfg := SiteConfig{Name: "Site", URL: "https://example.com", Description: "d"}
	pages := []Page{
		{Slug: "new", Title: "New", Summary: "s", Date: "2024-03-01"},
		{Slug: "undated", Title: "Undated"},
		{Slug: "old", Title: "Old", Date: "2023-01-01"},
	}

	doc := feedDocument(cfg, pages)
	require.Len(t, doc.Channel.Items, 3)
	assert.Equal(t, "2.0", doc.Version)
	assert.Equal(t, "https://example.com/new/", doc.Channel.Items[0].Link)
	assert.Equal(t, doc.Channel.Items[0].PubDate, doc.Channel.LastBuildDate)
	assert.Empty(t, doc.Channel.Items[1].PubDate)
}

func TestSitemapDocument(t *testing.T) {
	cfg := SiteConfig{URL: "https://example.com"}
	set := sitemapDocument(cfg, []Page{
		{Slug: "about", Date: "2024-01-15"},
		{Slug: "contact", Date: "soon"},
	})

	require.Len(t, set.URLs, 3)
	assert.Equal(t, "https://example.com", set.URLs[0].Loc)
	assert.Equal(t, sitemapURL{Loc: "https://example.com/about/", LastMod: "2024-01-15"}, set.URLs[1])
	assert.Empty(t, set.URLs[2].LastMod, "unparseable dates are left out")
}
