package editshell

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "drafts.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGetDraft(t *testing.T) {
	s := setupTestStore(t)

	d := Draft{Slug: "about", Title: "About us", Content: "# Hello", UpdatedAt: time.Unix(1700000000, 0)}
	if err := s.SaveDraft(d); err != nil {
		t.Fatalf("SaveDraft failed: %v", err)
	}

	got, err := s.GetDraft("about")
	if err != nil {
		t.Fatalf("GetDraft failed: %v", err)
	}
	if got.Title != d.Title {
		t.Errorf("Title = %q, want %q", got.Title, d.Title)
	}
	if got.Content != d.Content {
		t.Errorf("Content = %q, want %q", got.Content, d.Content)
	}
	if !got.UpdatedAt.Equal(d.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, d.UpdatedAt)
	}
}

func TestSaveDraftReplaces(t *testing.T) {
	s := setupTestStore(t)

	if err := s.SaveDraft(Draft{Slug: "about", Title: "v1", Content: "one"}); err != nil {
		t.Fatalf("SaveDraft failed: %v", err)
	}
	if err := s.SaveDraft(Draft{Slug: "about", Title: "v2", Content: "two"}); err != nil {
		t.Fatalf("SaveDraft update failed: %v", err)
	}

	got, err := s.GetDraft("about")
	if err != nil {
		t.Fatalf("GetDraft failed: %v", err)
	}
	if got.Title != "v2" || got.Content != "two" {
		t.Errorf("got %q/%q, want v2/two", got.Title, got.Content)
	}
	drafts, err := s.ListDrafts()
	if err != nil {
		t.Fatalf("ListDrafts failed: %v", err)
	}
	if len(drafts) != 1 {
		t.Errorf("ListDrafts count = %d, want 1", len(drafts))
	}
}

func TestGetDraftNotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetDraft("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListDraftsOrder(t *testing.T) {
	s := setupTestStore(t)

	_ = s.SaveDraft(Draft{Slug: "old", Title: "Old", Content: "c", UpdatedAt: time.Unix(100, 0)})
	_ = s.SaveDraft(Draft{Slug: "new", Title: "New", Content: "c", UpdatedAt: time.Unix(200, 0)})

	drafts, err := s.ListDrafts()
	if err != nil {
		t.Fatalf("ListDrafts failed: %v", err)
	}
	if len(drafts) != 2 || drafts[0].Slug != "new" {
		t.Errorf("ListDrafts = %+v, want newest first", drafts)
	}
}

func TestDeleteDraft(t *testing.T) {
	s := setupTestStore(t)

	if err := s.SaveDraft(Draft{Slug: "gone", Title: "Gone", Content: "c"}); err != nil {
		t.Fatalf("SaveDraft failed: %v", err)
	}
	if err := s.DeleteDraft("gone"); err != nil {
		t.Fatalf("DeleteDraft failed: %v", err)
	}
	if _, err := s.GetDraft("gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("draft should not exist after delete, got err: %v", err)
	}
	if err := s.DeleteDraft("never-existed"); err != nil {
		t.Errorf("DeleteDraft on missing draft should not error, got: %v", err)
	}
}
