// Package store persists catalog, session, assignment, feedback, and
// attachment records in a device-local SQLite database. Records are opaque
// JSON documents keyed by string IDs; the groove core never touches this
// package.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS meta (
	k TEXT PRIMARY KEY,
	v TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS catalog (
	content_id     TEXT PRIMARY KEY,
	kind           TEXT NOT NULL,
	title          TEXT NOT NULL,
	summary        TEXT,
	tags_json      TEXT NOT NULL,
	updated_at_utc TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
	session_id        TEXT PRIMARY KEY,
	device_learner_id TEXT NOT NULL,
	started_at_utc    TEXT NOT NULL,
	ended_at_utc      TEXT NOT NULL,
	instrument_id     TEXT,
	session_json      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS assignments (
	assignment_id     TEXT PRIMARY KEY,
	device_learner_id TEXT NOT NULL,
	created_at_utc    TEXT NOT NULL,
	assignment_json   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS coach_feedback (
	feedback_id       TEXT PRIMARY KEY,
	device_learner_id TEXT NOT NULL,
	session_id        TEXT NOT NULL,
	created_at_utc    TEXT NOT NULL,
	feedback_json     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS attachments (
	attachment_id     TEXT PRIMARY KEY,
	device_learner_id TEXT NOT NULL,
	created_at_utc    TEXT NOT NULL,
	manifest_json     TEXT NOT NULL
);
`

const schemaVersion = "v1"

// #endregion schema

// #region types

// CatalogItem is one piece of practice content.
type CatalogItem struct {
	ContentID    string   `json:"content_id"`
	Kind         string   `json:"kind"` // "drill" | "lesson"
	Title        string   `json:"title"`
	Summary      string   `json:"summary"`
	Tags         []string `json:"tags"`
	UpdatedAtUTC string   `json:"updated_at_utc"`
}

// #endregion types

// #region store-struct

// Store manages the device-local SQLite database.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor

// NewStore opens the database and runs idempotent migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if _, err := db.Exec(
		`INSERT INTO meta(k, v) VALUES ('schema_version', ?)
		 ON CONFLICT(k) DO NOTHING`, schemaVersion,
	); err != nil {
		return nil, fmt.Errorf("schema marker: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region catalog

// UpsertCatalog inserts or refreshes catalog items.
func (s *Store) UpsertCatalog(updatedAtUTC string, items []CatalogItem) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, it := range items {
		tags, err := json.Marshal(it.Tags)
		if err != nil {
			return fmt.Errorf("marshal tags for %s: %w", it.ContentID, err)
		}
		_, err = tx.Exec(
			`INSERT INTO catalog(content_id, kind, title, summary, tags_json, updated_at_utc)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(content_id) DO UPDATE SET
			   kind=excluded.kind,
			   title=excluded.title,
			   summary=excluded.summary,
			   tags_json=excluded.tags_json,
			   updated_at_utc=excluded.updated_at_utc`,
			it.ContentID, it.Kind, it.Title, it.Summary, string(tags), updatedAtUTC,
		)
		if err != nil {
			return fmt.Errorf("upsert catalog %s: %w", it.ContentID, err)
		}
	}
	return tx.Commit()
}

// ListCatalog returns all catalog items ordered by kind, then title.
func (s *Store) ListCatalog() ([]CatalogItem, error) {
	rows, err := s.db.Query(
		`SELECT content_id, kind, title, summary, tags_json, updated_at_utc
		 FROM catalog ORDER BY kind, title`,
	)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	defer rows.Close()

	var out []CatalogItem
	for rows.Next() {
		var it CatalogItem
		var summary sql.NullString
		var tagsJSON string
		if err := rows.Scan(&it.ContentID, &it.Kind, &it.Title, &summary, &tagsJSON, &it.UpdatedAtUTC); err != nil {
			return nil, fmt.Errorf("scan catalog: %w", err)
		}
		it.Summary = summary.String
		if err := json.Unmarshal([]byte(tagsJSON), &it.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags for %s: %w", it.ContentID, err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// #endregion catalog

// #region sessions

// SaveSession persists one practice session document.
func (s *Store) SaveSession(sessionID, learnerID, startedAtUTC, endedAtUTC, instrumentID string, sessionJSON json.RawMessage) error {
	var instrPtr interface{}
	if instrumentID != "" {
		instrPtr = instrumentID
	}
	_, err := s.db.Exec(
		`INSERT INTO sessions(session_id, device_learner_id, started_at_utc, ended_at_utc, instrument_id, session_json)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, learnerID, startedAtUTC, endedAtUTC, instrPtr, string(sessionJSON),
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", sessionID, err)
	}
	return nil
}

// ListSessions returns up to limit session documents for a learner, newest
// first.
func (s *Store) ListSessions(learnerID string, limit int) ([]json.RawMessage, error) {
	rows, err := s.db.Query(
		`SELECT session_json FROM sessions
		 WHERE device_learner_id=? ORDER BY started_at_utc DESC LIMIT ?`,
		learnerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []json.RawMessage
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, json.RawMessage(doc))
	}
	return out, rows.Err()
}

// #endregion sessions

// #region assignments

// SaveAssignment persists one assignment document.
func (s *Store) SaveAssignment(assignmentID, learnerID, createdAtUTC string, assignmentJSON json.RawMessage) error {
	_, err := s.db.Exec(
		`INSERT INTO assignments(assignment_id, device_learner_id, created_at_utc, assignment_json)
		 VALUES (?, ?, ?, ?)`,
		assignmentID, learnerID, createdAtUTC, string(assignmentJSON),
	)
	if err != nil {
		return fmt.Errorf("save assignment %s: %w", assignmentID, err)
	}
	return nil
}

// LatestAssignment returns the most recent assignment document for a
// learner, or nil when none exists.
func (s *Store) LatestAssignment(learnerID string) (json.RawMessage, error) {
	var doc string
	err := s.db.QueryRow(
		`SELECT assignment_json FROM assignments
		 WHERE device_learner_id=? ORDER BY created_at_utc DESC LIMIT 1`,
		learnerID,
	).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest assignment: %w", err)
	}
	return json.RawMessage(doc), nil
}

// #endregion assignments

// #region feedback

// SaveFeedback persists one coach-feedback document.
func (s *Store) SaveFeedback(feedbackID, learnerID, sessionID, createdAtUTC string, feedbackJSON json.RawMessage) error {
	_, err := s.db.Exec(
		`INSERT INTO coach_feedback(feedback_id, device_learner_id, session_id, created_at_utc, feedback_json)
		 VALUES (?, ?, ?, ?, ?)`,
		feedbackID, learnerID, sessionID, createdAtUTC, string(feedbackJSON),
	)
	if err != nil {
		return fmt.Errorf("save feedback %s: %w", feedbackID, err)
	}
	return nil
}

// #endregion feedback

// #region attachments

// SaveAttachmentManifest persists one attachment manifest document.
func (s *Store) SaveAttachmentManifest(attachmentID, learnerID, createdAtUTC string, manifestJSON json.RawMessage) error {
	_, err := s.db.Exec(
		`INSERT INTO attachments(attachment_id, device_learner_id, created_at_utc, manifest_json)
		 VALUES (?, ?, ?, ?)`,
		attachmentID, learnerID, createdAtUTC, string(manifestJSON),
	)
	if err != nil {
		return fmt.Errorf("save attachment %s: %w", attachmentID, err)
	}
	return nil
}

// #endregion attachments
