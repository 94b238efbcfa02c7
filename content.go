package editshell

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

type pageFrontMatter struct {
	Title   string    `yaml:"title"`
	Summary string    `yaml:"summary"`
	Date    time.Time `yaml:"date"`
	Draft   bool      `yaml:"draft"`
}

var markdownEngine = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// RenderMarkdown converts Markdown source to HTML. Raw HTML in the source is
// omitted.
func RenderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("markdown: %w", err)
	}
	return buf.String(), nil
}

// ContentSource loads pages from a directory of Markdown files with YAML
// frontmatter. The file name without extension is the page slug.
type ContentSource struct {
	dir string
}

// NewContentSource returns a ContentSource rooted at dir.
func NewContentSource(dir string) *ContentSource {
	return &ContentSource{dir: dir}
}

// Load reads every *.md file in the content directory, sorted by date
// descending then slug.
func (s *ContentSource) Load() ([]Page, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var pages []Page
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".md" {
			continue
		}
		p, err := s.loadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	sort.SliceStable(pages, func(i, j int) bool {
		if pages[i].Date != pages[j].Date {
			return pages[i].Date > pages[j].Date
		}
		return pages[i].Slug < pages[j].Slug
	})
	return pages, nil
}

func (s *ContentSource) loadFile(path string) (Page, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Page{}, err
	}
	var fm pageFrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(raw), &fm)
	if err != nil {
		return Page{}, fmt.Errorf("parse frontmatter %s: %w", path, err)
	}
	slug := strings.TrimSuffix(filepath.Base(path), ".md")
	title := fm.Title
	if title == "" {
		title = slug
	}
	date := ""
	if !fm.Date.IsZero() {
		date = fm.Date.Format("2006-01-02")
	}
	content := string(body)
	html, err := RenderMarkdown(content)
	if err != nil {
		return Page{}, fmt.Errorf("%s: %w", path, err)
	}
	return Page{
		Slug:    slug,
		Title:   title,
		Summary: fm.Summary,
		Date:    date,
		Draft:   fm.Draft,
		Content: content,
		HTML:    html,
		Link:    "/" + slug + "/",
	}, nil
}

// Watch calls onChange whenever a file in the content directory is written,
// created, removed or renamed. It returns when ctx is done.
func (s *ContentSource) Watch(ctx context.Context, log zerolog.Logger, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(s.dir); err != nil {
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				log.Debug().Str("file", ev.Name).Msg("content changed")
				onChange()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("content watcher")
		}
	}
}
