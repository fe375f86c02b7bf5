package fixture

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/stringcoach/internal/groove"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a groove test vector.
// Single-window vectors carry Events; multi-window vectors carry Windows.
type Fixture struct {
	Description    string                `json:"description"`
	DeviceID       string                `json:"device_id"`
	SessionID      string                `json:"session_id"`
	EngineContext  *groove.ContextRecord `json:"engine_context"`
	Events         []groove.EventRecord  `json:"events"`
	Windows        []FixtureWindow       `json:"windows"`
	PriorStateHint *PriorStateHint       `json:"prior_state_hint"`
}

// FixtureWindow is one labeled window inside a multi-window vector.
type FixtureWindow struct {
	Label  string               `json:"label"`
	Events []groove.EventRecord `json:"events"`
}

// PriorStateHint seeds controller hysteresis before the first window.
type PriorStateHint struct {
	LastLoopPolicy string `json:"last_loop_policy,omitempty"`
	LastDensity    string `json:"last_density,omitempty"`
}

// WindowResult pairs an emitted envelope with its window label.
type WindowResult struct {
	Label    string          `json:"label,omitempty"`
	Envelope groove.Envelope `json:"envelope"`
}

// #endregion fixture-types

// #region loader

// Load reads and parses a JSON fixture file.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// #endregion loader

// #region conversion

func parseEvents(recs []groove.EventRecord) ([]groove.PerformanceEvent, error) {
	events := make([]groove.PerformanceEvent, 0, len(recs))
	for i, rec := range recs {
		ev, err := groove.ParseEvent(rec)
		if err != nil {
			return nil, fmt.Errorf("events[%d]: %w", i, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

func parseHint(h *PriorStateHint) (groove.StateOverride, error) {
	var o groove.StateOverride
	if h == nil {
		return o, nil
	}
	if h.LastLoopPolicy != "" {
		switch lp := groove.LoopPolicy(h.LastLoopPolicy); lp {
		case groove.LoopNone, groove.LoopMicro, groove.LoopSection:
			o.LastLoopPolicy = &lp
		default:
			return o, fmt.Errorf("prior_state_hint: unknown last_loop_policy %q", h.LastLoopPolicy)
		}
	}
	if h.LastDensity != "" {
		switch d := groove.DensityTarget(h.LastDensity); d {
		case groove.DensitySparse, groove.DensityMedium, groove.DensityFull:
			o.LastDensity = &d
		default:
			return o, fmt.Errorf("prior_state_hint: unknown last_density %q", h.LastDensity)
		}
	}
	return o, nil
}

// #endregion conversion

// #region process

// Process runs a single-window fixture through a fresh controller.
func Process(f *Fixture, cfg groove.Config) (groove.Envelope, error) {
	ec, err := groove.ParseContext(f.EngineContext)
	if err != nil {
		return groove.Envelope{}, err
	}
	events, err := parseEvents(f.Events)
	if err != nil {
		return groove.Envelope{}, err
	}
	override, err := parseHint(f.PriorStateHint)
	if err != nil {
		return groove.Envelope{}, err
	}

	layer := groove.NewLayer(f.DeviceID, f.SessionID, cfg)
	if f.PriorStateHint != nil {
		layer.ApplyOverride(override)
	}
	return layer.UpdateWindow(events, ec), nil
}

// ProcessMultiWindow runs each window of a multi-window fixture through one
// shared controller, preserving hysteresis across windows.
func ProcessMultiWindow(f *Fixture, cfg groove.Config) ([]WindowResult, error) {
	ec, err := groove.ParseContext(f.EngineContext)
	if err != nil {
		return nil, err
	}

	layer := groove.NewLayer(f.DeviceID, f.SessionID, cfg)
	results := make([]WindowResult, 0, len(f.Windows))
	for i, w := range f.Windows {
		events, err := parseEvents(w.Events)
		if err != nil {
			return nil, fmt.Errorf("windows[%d]: %w", i, err)
		}
		results = append(results, WindowResult{
			Label:    w.Label,
			Envelope: layer.UpdateWindow(events, ec),
		})
	}
	return results, nil
}

// #endregion process
