package groove

// #region imports
import (
	"time"
)

// #endregion

// #region layer

// Layer is the per-session groove controller. It owns the only mutable state
// (GrooveState) and must be invoked from one goroutine at a time, windows in
// strict arrival order: the hysteresis logic assumes sequential, gap-free
// window processing.
type Layer struct {
	deviceID  string
	sessionID string
	config    Config
	state     GrooveState
	now       func() time.Time
}

// NewLayer creates a controller for one session.
func NewLayer(deviceID, sessionID string, cfg Config) *Layer {
	return &Layer{
		deviceID:  deviceID,
		sessionID: sessionID,
		config:    cfg,
		state:     NewGrooveState(),
		now:       time.Now,
	}
}

// State returns a copy of the current hysteresis state.
func (l *Layer) State() GrooveState {
	return l.state
}

// #endregion

// #region apply-override

// ApplyOverride seeds hysteresis state before the next window. If the loop
// policy is overridden to micro_loop, the unstable counter is forced to 1:
// a micro-loop can only have been entered from an unstable window, and the
// coupling keeps recovery fixtures reachable without replaying one.
func (l *Layer) ApplyOverride(o StateOverride) {
	if o.LastLoopPolicy != nil {
		l.state.LastLoopPolicy = *o.LastLoopPolicy
	}
	if o.LastDensity != nil {
		l.state.LastDensity = *o.LastDensity
	}
	if l.state.LastLoopPolicy == LoopMicro {
		l.state.ConsecutiveUnstableWindows = 1
	}
}

// #endregion

// #region update-window

// UpdateWindow processes one window of events and emits a control envelope.
// It never fails on well-formed input: zero events and missing context are
// regimes, not errors.
func (l *Layer) UpdateWindow(events []PerformanceEvent, ec *EngineContext) Envelope {
	stats := ComputeWindowStats(events, l.config)

	controls, rationale := l.classify(stats, ec)
	l.updateState(stats, ec)

	return BuildEnvelope(EnvelopeInput{
		DeviceID:  l.deviceID,
		SessionID: l.sessionID,
		EmittedAt: l.now().UTC(),
		Config:    l.config,
		Stats:     stats,
		Controls:  controls,
		Rationale: rationale,
	})
}

// #endregion

// #region classify

// classify derives one of four directive regimes and advances the hysteresis
// counters. Decision order matters: context absence is checked before
// stability, and a stable window only counts as recovered once the
// confirmation threshold of consecutive stable windows is met.
func (l *Layer) classify(stats WindowStats, ec *EngineContext) (ControlSet, Rationale) {
	// Missing context: freeze. Counters are deliberately left as-is, so a
	// run of context-less windows neither confirms nor breaks a streak.
	if ec == nil {
		return frozenControls()
	}

	if !stats.IsStable {
		l.state.ConsecutiveUnstableWindows++
		l.state.ConsecutiveStableWindows = 0
		return unstableControls()
	}

	l.state.ConsecutiveStableWindows++
	l.state.ConsecutiveUnstableWindows = 0

	// Recovery: was in a micro-loop, now stable, not yet confirmed.
	if l.state.LastLoopPolicy == LoopMicro &&
		l.state.ConsecutiveStableWindows < l.config.WindowsToConfirmStability {
		return recoveryControls(ec)
	}

	return stableControls(ec)
}

// #endregion

// #region update-state

// updateState applies the simplified hysteresis bookkeeping after directive
// selection. Missing-context windows record the observed stats but change
// nothing else.
func (l *Layer) updateState(stats WindowStats, ec *EngineContext) {
	s := stats
	l.state.LastWindowStats = &s

	if ec == nil {
		return
	}

	if stats.IsStable {
		l.state.LastDensity = DensityMedium
		if l.state.LastLoopPolicy == LoopMicro {
			l.state.LastLoopPolicy = LoopSection
		} else if l.state.ConsecutiveStableWindows >= l.config.WindowsToConfirmStability {
			l.state.LastLoopPolicy = LoopNone
		}
		l.state.LastTempoPolicy = TempoFollowPlayer
	} else {
		l.state.LastDensity = DensitySparse
		l.state.LastLoopPolicy = LoopMicro
		l.state.LastTempoPolicy = TempoSteadyClock
	}
}

// #endregion
