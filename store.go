package editshell

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Draft is an edit saved during a preview session. It overlays the page's
// file content for preview sessions only.
type Draft struct {
	Slug      string
	Title     string
	Content   string
	UpdatedAt time.Time
}

// Store wraps a SQLite database holding page drafts.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL with a busy timeout lets readers proceed while a draft is written.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS drafts (
    slug TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);
`)
	return err
}

// SaveDraft upserts the draft for d.Slug.
func (s *Store) SaveDraft(d Draft) error {
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = time.Now()
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO drafts (slug, title, content, updated_at) VALUES (?, ?, ?, ?)`,
		d.Slug, d.Title, d.Content, d.UpdatedAt.Unix())
	return err
}

// GetDraft returns the draft for slug, or ErrNotFound.
func (s *Store) GetDraft(slug string) (Draft, error) {
	var d Draft
	var updated int64
	err := s.db.QueryRow(`SELECT slug, title, content, updated_at FROM drafts WHERE slug = ?`, slug).
		Scan(&d.Slug, &d.Title, &d.Content, &updated)
	if err != nil {
		return Draft{}, err
	}
	d.UpdatedAt = time.Unix(updated, 0)
	return d, nil
}

// ListDrafts returns every draft, most recently updated first.
func (s *Store) ListDrafts() ([]Draft, error) {
	rows, err := s.db.Query(`SELECT slug, title, content, updated_at FROM drafts ORDER BY updated_at DESC, slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drafts []Draft
	for rows.Next() {
		var d Draft
		var updated int64
		if err := rows.Scan(&d.Slug, &d.Title, &d.Content, &updated); err != nil {
			return nil, err
		}
		d.UpdatedAt = time.Unix(updated, 0)
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}

// DeleteDraft removes the draft for slug.
func (s *Store) DeleteDraft(slug string) error {
	_, err := s.db.Exec(`DELETE FROM drafts WHERE slug = ?`, slug)
	return err
}
