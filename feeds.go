package editshell

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate,omitempty"`
	GUID        string `xml:"guid"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// pageTime parses a front matter date. Pages without one report ok=false.
func pageTime(p Page) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", p.Date)
	return t, err == nil
}

// feedDocument builds the RSS channel for the published pages. pages arrive
// newest first, so the first dated page sets lastBuildDate.
func feedDocument(cfg SiteConfig, pages []Page) rssDocument {
	ch := rssChannel{
		Title:       cfg.Name,
		Link:        BuildURL(cfg.URL),
		Description: cfg.Description,
		Items:       make([]rssItem, 0, len(pages)),
	}
	for _, p := range pages {
		item := rssItem{
			Title:       p.Title,
			Link:        BuildURL(cfg.URL, p.Slug),
			Description: p.Summary,
			GUID:        BuildURL(cfg.URL, p.Slug),
		}
		if t, ok := pageTime(p); ok {
			item.PubDate = t.Format(time.RFC1123Z)
			if ch.LastBuildDate == "" {
				ch.LastBuildDate = item.PubDate
			}
		}
		ch.Items = append(ch.Items, item)
	}
	return rssDocument{Version: "2.0", Channel: ch}
}

func sitemapDocument(cfg SiteConfig, pages []Page) urlSet {
	set := urlSet{XMLNS: sitemapNS, URLs: []sitemapURL{{Loc: BuildURL(cfg.URL)}}}
	for _, p := range pages {
		u := sitemapURL{Loc: BuildURL(cfg.URL, p.Slug)}
		if _, ok := pageTime(p); ok {
			u.LastMod = p.Date
		}
		set.URLs = append(set.URLs, u)
	}
	return set
}

func writeXML(c echo.Context, contentType string, doc any) error {
	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, contentType, append([]byte(xml.Header), out...))
}
