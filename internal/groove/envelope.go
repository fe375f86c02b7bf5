package groove

// #region imports
import (
	"math"
	"time"
)

// #endregion

// #region envelope-types

// SchemaID and SchemaVersion identify the output message contract.
const (
	SchemaID      = "groove_layer_control"
	SchemaVersion = "v0"
)

// WindowMeta describes the evaluated window inside an envelope.
type WindowMeta struct {
	WindowStartUTC string  `json:"window_start_utc"`
	WindowEndUTC   string  `json:"window_end_utc"`
	DurationMS     int64   `json:"duration_ms"`
	EventCount     int     `json:"event_count"`
	Confidence     float64 `json:"confidence"`
}

// Envelope is the versioned output message emitted once per window.
type Envelope struct {
	SchemaID      string     `json:"schema_id"`
	SchemaVersion string     `json:"schema_version"`
	EmittedAtUTC  string     `json:"emitted_at_utc"`
	DeviceID      string     `json:"device_id"`
	SessionID     string     `json:"session_id"`
	Window        WindowMeta `json:"window"`
	Controls      ControlSet `json:"controls"`
	Rationale     Rationale  `json:"rationale"`
}

// EnvelopeInput bundles everything BuildEnvelope needs.
type EnvelopeInput struct {
	DeviceID  string
	SessionID string
	EmittedAt time.Time
	Config    Config
	Stats     WindowStats
	Controls  ControlSet
	Rationale Rationale
}

// #endregion

// #region build-envelope

// BuildEnvelope wraps a directive set into the versioned output message.
// Deterministic given its inputs; the only external reading is the caller's
// clock. Window start/end mirror the emission instant in v0 because the
// host, not the core, owns window boundaries.
func BuildEnvelope(in EnvelopeInput) Envelope {
	now := in.EmittedAt.Format(time.RFC3339)
	return Envelope{
		SchemaID:      SchemaID,
		SchemaVersion: SchemaVersion,
		EmittedAtUTC:  now,
		DeviceID:      in.DeviceID,
		SessionID:     in.SessionID,
		Window: WindowMeta{
			WindowStartUTC: now,
			WindowEndUTC:   now,
			DurationMS:     in.Config.WindowDurationMS,
			EventCount:     in.Stats.EventCount,
			Confidence:     round2(in.Stats.WindowConfidence),
		},
		Controls:  in.Controls,
		Rationale: in.Rationale,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// #endregion
