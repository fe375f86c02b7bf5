package store

import (
	"encoding/json"
	"path/filepath"
	"testing"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrationIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	s1, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	s1.Close()

	s2, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore (reopen): %v", err)
	}
	defer s2.Close()

	var version string
	if err := s2.DB().QueryRow(`SELECT v FROM meta WHERE k='schema_version'`).Scan(&version); err != nil {
		t.Fatalf("read schema version: %v", err)
	}
	if version != "v1" {
		t.Fatalf("expected schema v1, got %s", version)
	}
}

func TestCatalogUpsertAndOrdering(t *testing.T) {
	s := tempStore(t)
	items := []CatalogItem{
		{ContentID: "c2", Kind: "lesson", Title: "Open chords", Tags: []string{"chords"}},
		{ContentID: "c1", Kind: "drill", Title: "Spider walk", Tags: []string{"warmup"}},
		{ContentID: "c3", Kind: "drill", Title: "Alternate picking", Tags: nil},
	}
	if err := s.UpsertCatalog("2026-08-01T00:00:00Z", items); err != nil {
		t.Fatalf("UpsertCatalog: %v", err)
	}

	got, err := s.ListCatalog()
	if err != nil {
		t.Fatalf("ListCatalog: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 items, got %d", len(got))
	}
	// drills before lessons, titles ascending within kind
	if got[0].ContentID != "c3" || got[1].ContentID != "c1" || got[2].ContentID != "c2" {
		t.Fatalf("unexpected order: %s %s %s", got[0].ContentID, got[1].ContentID, got[2].ContentID)
	}

	// Upsert replaces, not duplicates.
	items[0].Title = "Open chords revised"
	if err := s.UpsertCatalog("2026-08-02T00:00:00Z", items[:1]); err != nil {
		t.Fatalf("UpsertCatalog (update): %v", err)
	}
	got, err = s.ListCatalog()
	if err != nil {
		t.Fatalf("ListCatalog: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("upsert duplicated a row: %d items", len(got))
	}
	if got[2].Title != "Open chords revised" {
		t.Fatalf("title not updated: %s", got[2].Title)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	s := tempStore(t)
	doc := json.RawMessage(`{"session_id":"ses_1","attempts":[]}`)

	if err := s.SaveSession("ses_1", "lrn_a", "2026-08-01T10:00:00Z", "2026-08-01T10:20:00Z", "guitar_1", doc); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	if err := s.SaveSession("ses_2", "lrn_a", "2026-08-02T10:00:00Z", "2026-08-02T10:20:00Z", "", doc); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	if err := s.SaveSession("ses_other", "lrn_b", "2026-08-03T10:00:00Z", "2026-08-03T10:20:00Z", "", doc); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	sessions, err := s.ListSessions("lrn_a", 20)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions for lrn_a, got %d", len(sessions))
	}

	var first map[string]any
	if err := json.Unmarshal(sessions[0], &first); err != nil {
		t.Fatalf("unmarshal session: %v", err)
	}

	limited, err := s.ListSessions("lrn_a", 1)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("limit not applied: %d", len(limited))
	}
}

func TestLatestAssignment(t *testing.T) {
	s := tempStore(t)

	none, err := s.LatestAssignment("lrn_a")
	if err != nil {
		t.Fatalf("LatestAssignment: %v", err)
	}
	if none != nil {
		t.Fatal("expected nil for empty table")
	}

	if err := s.SaveAssignment("asg_1", "lrn_a", "2026-08-01T00:00:00Z", json.RawMessage(`{"n":1}`)); err != nil {
		t.Fatalf("SaveAssignment: %v", err)
	}
	if err := s.SaveAssignment("asg_2", "lrn_a", "2026-08-05T00:00:00Z", json.RawMessage(`{"n":2}`)); err != nil {
		t.Fatalf("SaveAssignment: %v", err)
	}

	latest, err := s.LatestAssignment("lrn_a")
	if err != nil {
		t.Fatalf("LatestAssignment: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(latest, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc["n"].(float64) != 2 {
		t.Fatalf("expected newest assignment, got %v", doc)
	}
}

func TestFeedbackAndAttachmentInsert(t *testing.T) {
	s := tempStore(t)

	if err := s.SaveFeedback("fb_1", "lrn_a", "ses_1", "2026-08-01T00:00:00Z", json.RawMessage(`{}`)); err != nil {
		t.Fatalf("SaveFeedback: %v", err)
	}
	if err := s.SaveAttachmentManifest("att_1", "lrn_a", "2026-08-01T00:00:00Z", json.RawMessage(`{}`)); err != nil {
		t.Fatalf("SaveAttachmentManifest: %v", err)
	}

	// Duplicate primary keys are insert errors, not silent upserts.
	if err := s.SaveFeedback("fb_1", "lrn_a", "ses_1", "2026-08-01T00:00:00Z", json.RawMessage(`{}`)); err == nil {
		t.Fatal("expected duplicate feedback ID to fail")
	}
}
