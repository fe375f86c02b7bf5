package groove

// #region imports
import (
	"fmt"
)

// #endregion

// #region wire-records

// EventRecord is the raw wire shape of a performance event.
type EventRecord struct {
	OnsetMS    *int64   `json:"t_onset_ms"`
	EventType  string   `json:"event_type"`
	Strength   *float64 `json:"strength"`
	Confidence *float64 `json:"confidence"`
}

// ContextRecord is the raw wire shape of an engine context.
type ContextRecord struct {
	TempoBPMTarget *float64 `json:"tempo_bpm_target"`
	TimeSignature  string   `json:"time_signature"`
	Grid           string   `json:"grid"`
	Feel           string   `json:"feel"`
	BarPosition    *float64 `json:"bar_position,omitempty"`
	SectionID      string   `json:"section_id,omitempty"`
}

// #endregion

// #region parse-event

// ParseEvent validates a raw event record and constructs a PerformanceEvent.
// The core never sees partially-invalid structures: any unknown tag, missing
// field, or out-of-range value fails here, naming the offending field.
func ParseEvent(rec EventRecord) (PerformanceEvent, error) {
	if rec.OnsetMS == nil {
		return PerformanceEvent{}, fmt.Errorf("event: missing field t_onset_ms")
	}
	if *rec.OnsetMS < 0 {
		return PerformanceEvent{}, fmt.Errorf("event: t_onset_ms must be non-negative, got %d", *rec.OnsetMS)
	}
	et, err := parseEventType(rec.EventType)
	if err != nil {
		return PerformanceEvent{}, err
	}
	if rec.Strength == nil {
		return PerformanceEvent{}, fmt.Errorf("event: missing field strength")
	}
	if *rec.Strength < 0 || *rec.Strength > 1 {
		return PerformanceEvent{}, fmt.Errorf("event: strength out of range [0,1]: %g", *rec.Strength)
	}
	if rec.Confidence == nil {
		return PerformanceEvent{}, fmt.Errorf("event: missing field confidence")
	}
	if *rec.Confidence < 0 || *rec.Confidence > 1 {
		return PerformanceEvent{}, fmt.Errorf("event: confidence out of range [0,1]: %g", *rec.Confidence)
	}
	return PerformanceEvent{
		OnsetMS:    *rec.OnsetMS,
		Type:       et,
		Strength:   *rec.Strength,
		Confidence: *rec.Confidence,
	}, nil
}

func parseEventType(s string) (EventType, error) {
	switch EventType(s) {
	case EventNoteOnset, EventStrumOnset, EventPercussiveOnset:
		return EventType(s), nil
	case "":
		return "", fmt.Errorf("event: missing field event_type")
	default:
		return "", fmt.Errorf("event: unknown event_type %q", s)
	}
}

// #endregion

// #region parse-context

// ParseContext validates a raw context record. A nil record maps to a nil
// context, which the controller treats as the missing-context regime.
func ParseContext(rec *ContextRecord) (*EngineContext, error) {
	if rec == nil {
		return nil, nil
	}
	if rec.TempoBPMTarget == nil {
		return nil, fmt.Errorf("engine_context: missing field tempo_bpm_target")
	}
	if *rec.TempoBPMTarget <= 0 {
		return nil, fmt.Errorf("engine_context: tempo_bpm_target must be positive, got %g", *rec.TempoBPMTarget)
	}
	if rec.TimeSignature == "" {
		return nil, fmt.Errorf("engine_context: missing field time_signature")
	}
	if err := validGrid(rec.Grid); err != nil {
		return nil, err
	}
	if err := validFeel(rec.Feel); err != nil {
		return nil, err
	}
	return &EngineContext{
		TempoBPMTarget: *rec.TempoBPMTarget,
		TimeSignature:  rec.TimeSignature,
		Grid:           rec.Grid,
		Feel:           rec.Feel,
		BarPosition:    rec.BarPosition,
		SectionID:      rec.SectionID,
	}, nil
}

func validGrid(s string) error {
	switch s {
	case "quarter", "eighth", "sixteenth", "triplet":
		return nil
	case "":
		return fmt.Errorf("engine_context: missing field grid")
	default:
		return fmt.Errorf("engine_context: unknown grid %q", s)
	}
}

func validFeel(s string) error {
	switch s {
	case "straight", "swing", "hybrid":
		return nil
	case "":
		return fmt.Errorf("engine_context: missing field feel")
	default:
		return fmt.Errorf("engine_context: unknown feel %q", s)
	}
}

// #endregion
