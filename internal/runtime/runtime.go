// Package runtime wires identity, storage, and the assignment/coach policies
// into one device-local engine. Binaries open a Runtime and call its
// operations; they never touch the store or policies directly.
package runtime

// #region imports
import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/stringcoach/internal/assign"
	"github.com/danielpatrickdp/stringcoach/internal/blob"
	"github.com/danielpatrickdp/stringcoach/internal/coach"
	"github.com/danielpatrickdp/stringcoach/internal/identity"
	"github.com/danielpatrickdp/stringcoach/internal/log"
	"github.com/danielpatrickdp/stringcoach/internal/store"
)

// #endregion

// #region config

// Config locates the device-local data directory.
type Config struct {
	DataDir string
}

// ConfigFromEnv reads SGC_DATA_DIR, defaulting to "data".
func ConfigFromEnv() Config {
	dir := os.Getenv("SGC_DATA_DIR")
	if dir == "" {
		dir = "data"
	}
	return Config{DataDir: dir}
}

// DBPath is the SQLite database location under the data directory.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "sgc.sqlite3")
}

// SecretPath is the device secret location under the data directory.
func (c Config) SecretPath() string {
	return filepath.Join(c.DataDir, "device_secret.bin")
}

// #endregion

// #region runtime

// Runtime is the device-local engine.
type Runtime struct {
	cfg Config
	dev identity.DeviceIdentity
	st  *store.Store

	now func() time.Time
}

// Open ensures the device identity and database exist and returns a ready
// Runtime.
func Open(cfg Config) (*Runtime, error) {
	dev, err := identity.EnsureDeviceIdentity(cfg.SecretPath())
	if err != nil {
		return nil, fmt.Errorf("device identity: %w", err)
	}
	st, err := store.NewStore(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	log.Debug("runtime open", "device_id", dev.DeviceID, "db_path", cfg.DBPath())
	return &Runtime{cfg: cfg, dev: dev, st: st, now: time.Now}, nil
}

// Close releases the underlying store.
func (r *Runtime) Close() error {
	return r.st.Close()
}

// DeviceID returns the derived device identifier.
func (r *Runtime) DeviceID() string {
	return r.dev.DeviceID
}

// DBPath returns the database path in use.
func (r *Runtime) DBPath() string {
	return r.cfg.DBPath()
}

// Store exposes the underlying store for catalog seeding and inspection.
func (r *Runtime) Store() *store.Store {
	return r.st
}

// LearnerID derives the learner ID for a local slot.
func (r *Runtime) LearnerID(slot int) (string, error) {
	return identity.LearnerID(r.dev, slot)
}

// #endregion

// #region assignment

// assignmentDoc is the persisted assignment payload.
type assignmentDoc struct {
	SchemaID        string        `json:"schema_id"`
	SchemaVersion   string        `json:"schema_version"`
	AssignmentID    string        `json:"assignment_id"`
	CreatedAtUTC    string        `json:"created_at_utc"`
	DeviceLearnerID string        `json:"device_learner_id"`
	PlanLabel       string        `json:"plan_label"`
	Items           []assign.Item `json:"items"`
}

// ComputeAssignment ranks the catalog against recent sessions and persists
// the resulting plan for the learner slot.
func (r *Runtime) ComputeAssignment(slot int) (json.RawMessage, error) {
	learnerID, err := identity.LearnerID(r.dev, slot)
	if err != nil {
		return nil, err
	}

	catalog, err := r.st.ListCatalog()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	recent, err := r.st.ListSessions(learnerID, 20)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}

	items := assign.PickNextAssignment(catalog, recent, assign.DefaultPolicyConfig())
	doc := assignmentDoc{
		SchemaID:        "assignment",
		SchemaVersion:   "v1",
		AssignmentID:    "asg_" + newID(),
		CreatedAtUTC:    r.utcNow(),
		DeviceLearnerID: learnerID,
		PlanLabel:       "practice_first_v0",
		Items:           items,
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal assignment: %w", err)
	}
	if err := r.st.SaveAssignment(doc.AssignmentID, learnerID, doc.CreatedAtUTC, payload); err != nil {
		return nil, err
	}
	log.Info("assignment computed", "assignment_id", doc.AssignmentID, "items", len(items))
	return payload, nil
}

// #endregion

// #region ingest

// feedbackDoc is the persisted coach-feedback payload.
type feedbackDoc struct {
	SchemaID        string `json:"schema_id"`
	SchemaVersion   string `json:"schema_version"`
	FeedbackID      string `json:"feedback_id"`
	CreatedAtUTC    string `json:"created_at_utc"`
	DeviceLearnerID string `json:"device_learner_id"`
	SessionID       string `json:"session_id"`
	coach.Feedback
}

// IngestSession stores one practice session document for a learner slot and
// returns the stored session ID plus the generated coach feedback. The
// learner ID in the payload is always overwritten with the derived one;
// missing session_id and timestamps are filled in.
func (r *Runtime) IngestSession(payload json.RawMessage, slot int) (string, json.RawMessage, error) {
	learnerID, err := identity.LearnerID(r.dev, slot)
	if err != nil {
		return "", nil, err
	}

	var doc map[string]any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return "", nil, fmt.Errorf("parse session payload: %w", err)
	}
	doc["device_learner_id"] = learnerID

	sessionID, _ := doc["session_id"].(string)
	if sessionID == "" {
		sessionID = "ses_" + newID()
		doc["session_id"] = sessionID
	}
	now := r.utcNow()
	startedAt, _ := doc["started_at_utc"].(string)
	if startedAt == "" {
		startedAt = now
		doc["started_at_utc"] = startedAt
	}
	endedAt, _ := doc["ended_at_utc"].(string)
	if endedAt == "" {
		endedAt = now
		doc["ended_at_utc"] = endedAt
	}
	instrumentID, _ := doc["instrument_id"].(string)

	stored, err := json.Marshal(doc)
	if err != nil {
		return "", nil, fmt.Errorf("marshal session: %w", err)
	}
	if err := r.st.SaveSession(sessionID, learnerID, startedAt, endedAt, instrumentID, stored); err != nil {
		return "", nil, err
	}

	fb := feedbackDoc{
		SchemaID:        "coach_feedback",
		SchemaVersion:   "v1",
		FeedbackID:      "fb_" + newID(),
		CreatedAtUTC:    now,
		DeviceLearnerID: learnerID,
		SessionID:       sessionID,
		Feedback:        coach.FeedbackFromSession(stored),
	}
	fbPayload, err := json.Marshal(fb)
	if err != nil {
		return "", nil, fmt.Errorf("marshal feedback: %w", err)
	}
	if err := r.st.SaveFeedback(fb.FeedbackID, learnerID, sessionID, now, fbPayload); err != nil {
		return "", nil, err
	}
	log.Info("session ingested", "session_id", sessionID, "feedback_id", fb.FeedbackID)
	return sessionID, fbPayload, nil
}

// #endregion

// #region attachments

// attachmentDoc is the persisted attachment manifest.
type attachmentDoc struct {
	SchemaID        string `json:"schema_id"`
	SchemaVersion   string `json:"schema_version"`
	AttachmentID    string `json:"attachment_id"`
	CreatedAtUTC    string `json:"created_at_utc"`
	DeviceLearnerID string `json:"device_learner_id"`
	Kind            string `json:"kind"`
	SHA256          string `json:"sha256"`
	SizeBytes       int    `json:"size_bytes"`
	Path            string `json:"path"`
}

// IngestAttachment stores a media blob content-addressed under the data
// directory and persists its manifest for the learner slot.
func (r *Runtime) IngestAttachment(slot int, data []byte, ext, kind string) (json.RawMessage, error) {
	learnerID, err := identity.LearnerID(r.dev, slot)
	if err != nil {
		return nil, err
	}
	if kind == "" {
		kind = "audio"
	}

	digest, path, err := blob.Put(r.cfg.DataDir, data, ext)
	if err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}

	doc := attachmentDoc{
		SchemaID:        "attachment_manifest",
		SchemaVersion:   "v1",
		AttachmentID:    "att_" + newID(),
		CreatedAtUTC:    r.utcNow(),
		DeviceLearnerID: learnerID,
		Kind:            kind,
		SHA256:          digest,
		SizeBytes:       len(data),
		Path:            path,
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	if err := r.st.SaveAttachmentManifest(doc.AttachmentID, learnerID, doc.CreatedAtUTC, payload); err != nil {
		return nil, err
	}
	log.Info("attachment ingested", "attachment_id", doc.AttachmentID, "sha256", digest)
	return payload, nil
}

// #endregion

// #region helpers

func (r *Runtime) utcNow() string {
	return r.now().UTC().Format(time.RFC3339)
}

func newID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// #endregion
