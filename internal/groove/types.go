package groove

// #region event-type

// EventType tags the kind of onset the extractor detected.
type EventType string

const (
	EventNoteOnset       EventType = "note_onset"
	EventStrumOnset      EventType = "strum_onset"
	EventPercussiveOnset EventType = "percussive_onset"
)

// #endregion

// #region tempo-policy

// TempoPolicy selects how the accompaniment clock tracks the player.
type TempoPolicy string

const (
	TempoFollowPlayer TempoPolicy = "follow_player"
	TempoSteadyClock  TempoPolicy = "steady_clock"
	TempoGentleNudge  TempoPolicy = "gentle_nudge"
)

// #endregion

// #region density-target

// DensityTarget sets how many accompaniment layers to play.
type DensityTarget string

const (
	DensitySparse DensityTarget = "sparse"
	DensityMedium DensityTarget = "medium"
	DensityFull   DensityTarget = "full"
)

// #endregion

// #region loop-policy

// LoopPolicy selects the scope of the stabilizing loop, if any.
type LoopPolicy string

const (
	LoopNone    LoopPolicy = "none"
	LoopMicro   LoopPolicy = "micro_loop"
	LoopSection LoopPolicy = "loop_section"
)

// #endregion

// #region assist-policy

// AssistPolicy sets how much scaffolding the accompaniment provides.
type AssistPolicy string

const (
	AssistMinimal    AssistPolicy = "minimal"
	AssistStandard   AssistPolicy = "standard"
	AssistSupportive AssistPolicy = "supportive"
)

// #endregion

// #region performance-event

// PerformanceEvent is a single onset event from the extractor.
// Constructed once per observed onset, never mutated.
type PerformanceEvent struct {
	OnsetMS    int64
	Type       EventType
	Strength   float64 // 0.0–1.0
	Confidence float64 // 0.0–1.0
}

// #endregion

// #region engine-context

// EngineContext carries tempo/grid/feel context from the host for one window.
// A nil *EngineContext is a first-class value meaning "context missing".
type EngineContext struct {
	TempoBPMTarget float64
	TimeSignature  string
	Grid           string // "quarter", "eighth", "sixteenth", "triplet"
	Feel           string // "straight", "swing", "hybrid"
	BarPosition    *float64
	SectionID      string
}

// #endregion

// #region window-stats

// WindowStats holds the derived statistics for a single window.
// OnsetIntervalVarianceMS is +Inf when fewer than two events exist.
type WindowStats struct {
	EventCount              int
	MeanConfidence          float64
	WindowConfidence        float64 // gated by event count
	OnsetIntervalVarianceMS float64 // stability proxy
	IsStable                bool
}

// #endregion

// #region groove-state

// GrooveState is the per-session mutable state owned by one Layer.
type GrooveState struct {
	// Fast state (session-only)
	LastWindowStats            *WindowStats
	ConsecutiveUnstableWindows int
	ConsecutiveStableWindows   int

	// Control hysteresis
	LastDensity     DensityTarget
	LastLoopPolicy  LoopPolicy
	LastTempoPolicy TempoPolicy

	// Probing state
	ProbeActive           bool
	ProbeStartWindow      int
	WindowsSinceLastProbe int

	// Slow traits (cross-session, reserved; never populated in v0)
	Latents map[string]float64
}

// NewGrooveState returns the initial state for a fresh session.
func NewGrooveState() GrooveState {
	return GrooveState{
		LastDensity:     DensityMedium,
		LastLoopPolicy:  LoopNone,
		LastTempoPolicy: TempoFollowPlayer,
		Latents:         map[string]float64{},
	}
}

// #endregion

// #region config

// Config holds the immutable tunables for the Groove Layer.
type Config struct {
	// Window parameters
	WindowDurationMS   int64
	MinEventsPerWindow int

	// Stability thresholds
	StabilityVarianceThresholdMS float64 // at or below = stable
	LowConfidenceThreshold       float64

	// Hysteresis
	WindowsToConfirmStability   int
	WindowsToConfirmInstability int

	// Probing
	MinWindowsBetweenProbes int
	ProbeDurationWindows    int
}

// DefaultConfig returns the v0 tuning.
func DefaultConfig() Config {
	return Config{
		WindowDurationMS:             15000,
		MinEventsPerWindow:           12,
		StabilityVarianceThresholdMS: 50.0,
		LowConfidenceThreshold:       0.6,
		WindowsToConfirmStability:    2,
		WindowsToConfirmInstability:  1,
		MinWindowsBetweenProbes:      6,
		ProbeDurationWindows:         2,
	}
}

// #endregion

// #region state-override

// StateOverride seeds hysteresis state before a window is processed. Used by
// the fixture harness to make recovery scenarios reachable without replaying
// a full unstable window first. Nil fields are left untouched.
type StateOverride struct {
	LastLoopPolicy *LoopPolicy
	LastDensity    *DensityTarget
}

// #endregion
