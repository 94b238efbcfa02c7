package editshell

// Page is a content page loaded from a Markdown file, optionally overlaid
// with a draft saved during a preview session.
type Page struct {
	Slug    string
	Title   string
	Summary string
	Date    string
	Draft   bool   // frontmatter draft: only visible in preview sessions
	Content string // Markdown source
	HTML    string // rendered Content
	Link    string
	Edited  bool // Content comes from a saved draft
	New     bool // no content file yet; the page exists only as a draft
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}

// PageProps are the per-load properties handed to the application shell.
// They are resolved once per request from the preview session.
type PageProps struct {
	Preview bool
	Error   string
}
