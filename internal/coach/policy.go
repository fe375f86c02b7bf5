package coach

// #region imports
import (
	"fmt"
	"sort"
	"strconv"
)

// #endregion

// #region severity

// Severity ranks a finding.
type Severity string

const (
	SeverityPrimary   Severity = "primary"
	SeveritySecondary Severity = "secondary"
	SeverityInfo      Severity = "info"
)

// #endregion

// #region session-record

// TimingStats summarizes the timing-error distribution of a session.
type TimingStats struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// Performance holds the measured facts the evaluator reads.
type Performance struct {
	TimingErrorMS TimingStats        `json:"timing_error_ms"`
	ErrorByStep   map[string]float64 `json:"error_by_step"`
}

// TimingSetup describes the grid the session was played against.
type TimingSetup struct {
	Grid       int     `json:"grid"` // 8 or 16 steps per bar
	LateDropMS float64 `json:"late_drop_ms"`
}

// EventCounts holds reliability counters.
type EventCounts struct {
	LateDrops int `json:"late_drops"`
}

// SessionRecord is the structured input to EvaluateSession.
type SessionRecord struct {
	SessionID   string      `json:"session_id"`
	Performance Performance `json:"performance"`
	Timing      TimingSetup `json:"timing"`
	Events      EventCounts `json:"events"`
}

// #endregion

// #region evaluation-types

// FindingEvidence points at the metric or grid step behind a finding.
type FindingEvidence struct {
	Metric      string  `json:"metric,omitempty"`
	Value       float64 `json:"value,omitempty"`
	Step        *int    `json:"step,omitempty"`
	MeanErrorMS float64 `json:"mean_error_ms,omitempty"`
}

// Finding is one structured observation about the session.
type Finding struct {
	Type           string          `json:"type"` // "timing" | "consistency"
	Severity       Severity        `json:"severity"`
	Evidence       FindingEvidence `json:"evidence"`
	Interpretation string          `json:"interpretation"`
}

// FocusRecommendation names the single concept to practice next.
type FocusRecommendation struct {
	Concept string `json:"concept"`
	Reason  string `json:"reason"`
}

// Evaluation is the full rules-first output for one session.
type Evaluation struct {
	SessionID    string              `json:"session_id"`
	CoachVersion string              `json:"coach_version"`
	Findings     []Finding           `json:"findings"`
	Strengths    []string            `json:"strengths"`
	Weaknesses   []string            `json:"weaknesses"`
	Focus        FocusRecommendation `json:"focus_recommendation"`
	Confidence   float64             `json:"confidence"`
}

// #endregion

// #region policy-config

// PolicyConfig holds the deterministic evaluation thresholds.
type PolicyConfig struct {
	// Per-step error thresholds: above primary = targeted weakness.
	StepErrorPrimaryMS   float64
	StepErrorSecondaryMS float64

	// Global mean error thresholds.
	MeanErrorPrimaryMS   float64
	MeanErrorSecondaryMS float64
}

// DefaultPolicy returns the v0 thresholds.
func DefaultPolicy() PolicyConfig {
	return PolicyConfig{
		StepErrorPrimaryMS:   25.0,
		StepErrorSecondaryMS: 15.0,
		MeanErrorPrimaryMS:   18.0,
		MeanErrorSecondaryMS: 12.0,
	}
}

// CoachVersion identifies the rule set that produced an evaluation.
const CoachVersion = "coach-rules@0.1.0"

// #endregion

// #region evaluate

// EvaluateSession reads SessionRecord facts and emits a structured
// Evaluation. Deterministic: same record, same output.
func EvaluateSession(session SessionRecord, policy PolicyConfig) Evaluation {
	var findings []Finding
	var strengths, weaknesses []string

	meanErr := session.Performance.TimingErrorMS.Mean
	stdErr := session.Performance.TimingErrorMS.Std

	// Global timing
	if meanErr <= policy.MeanErrorSecondaryMS {
		strengths = append(strengths, "Timing mean error is low.")
	} else {
		sev := SeveritySecondary
		if meanErr >= policy.MeanErrorPrimaryMS {
			sev = SeverityPrimary
		}
		weaknesses = append(weaknesses, "Timing mean error is elevated.")
		findings = append(findings, Finding{
			Type:           "timing",
			Severity:       sev,
			Evidence:       FindingEvidence{Metric: "timing_mean_ms", Value: meanErr},
			Interpretation: fmt.Sprintf("Mean timing error %.1f ms (std %.1f ms).", meanErr, stdErr),
		})
	}

	// Step-local hotspots
	topSteps := topKSteps(session.Performance.ErrorByStep, 3)
	var primaryStep *stepError
	for i, se := range topSteps {
		if se.err >= policy.StepErrorPrimaryMS && primaryStep == nil {
			primaryStep = &topSteps[i]
		}
		if se.err >= policy.StepErrorSecondaryMS {
			sev := SeveritySecondary
			if se.err >= policy.StepErrorPrimaryMS {
				sev = SeverityPrimary
			}
			step := se.step
			weaknesses = append(weaknesses, fmt.Sprintf("Hotspot at %s.", stepLabel(step, session.Timing.Grid)))
			findings = append(findings, Finding{
				Type:     "timing",
				Severity: sev,
				Evidence: FindingEvidence{Step: &step, MeanErrorMS: se.err},
				Interpretation: fmt.Sprintf("Timing hotspot: %s ~ %.1f ms.",
					stepLabel(step, session.Timing.Grid), se.err),
			})
		}
	}

	// Reliability (late drops)
	if session.Events.LateDrops == 0 {
		strengths = append(strengths, "No late-drop events.")
	} else {
		weaknesses = append(weaknesses, "Late-drop events detected (ornament protection active).")
		findings = append(findings, Finding{
			Type:     "consistency",
			Severity: SeverityInfo,
			Evidence: FindingEvidence{Metric: "late_drops", Value: float64(session.Events.LateDrops)},
			Interpretation: fmt.Sprintf("Late-drops: %d (threshold %.0f ms).",
				session.Events.LateDrops, session.Timing.LateDropMS),
		})
	}

	// Focus: hotspot > global timing > consistency.
	var focus FocusRecommendation
	var confidence float64
	switch {
	case primaryStep != nil:
		focus = FocusRecommendation{
			Concept: "grid_alignment",
			Reason: fmt.Sprintf("Highest hotspot at %s (~%.1f ms).",
				stepLabel(primaryStep.step, session.Timing.Grid), primaryStep.err),
		}
		confidence = 0.90
	case meanErr >= policy.MeanErrorSecondaryMS:
		focus = FocusRecommendation{
			Concept: "timing_foundation",
			Reason:  fmt.Sprintf("Mean timing error %.1f ms is above target.", meanErr),
		}
		confidence = 0.80
	default:
		focus = FocusRecommendation{
			Concept: "consistency",
			Reason:  "Timing is solid; build consistency and endurance with tempo ramps.",
		}
		confidence = 0.65
	}

	strengths = dedupe(strengths)
	weaknesses = dedupe(weaknesses)
	if len(strengths) == 0 {
		strengths = []string{"Session completed."}
	}
	if len(weaknesses) == 0 {
		weaknesses = []string{"No major issues detected."}
	}

	return Evaluation{
		SessionID:    session.SessionID,
		CoachVersion: CoachVersion,
		Findings:     findings,
		Strengths:    strengths,
		Weaknesses:   weaknesses,
		Focus:        focus,
		Confidence:   confidence,
	}
}

// #endregion

// #region helpers

type stepError struct {
	step int
	err  float64
}

// topKSteps returns the k worst grid steps, highest error first. Non-numeric
// keys are skipped. Ties break on step index for determinism.
func topKSteps(errorByStep map[string]float64, k int) []stepError {
	items := make([]stepError, 0, len(errorByStep))
	for key, v := range errorByStep {
		step, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		items = append(items, stepError{step: step, err: v})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].err != items[j].err {
			return items[i].err > items[j].err
		}
		return items[i].step < items[j].step
	})
	if len(items) > k {
		items = items[:k]
	}
	return items
}

func stepLabel(step, grid int) string {
	return fmt.Sprintf("step %d/%d", step, grid)
}

func dedupe(xs []string) []string {
	seen := make(map[string]bool, len(xs))
	out := make([]string, 0, len(xs))
	for _, x := range xs {
		if x == "" || seen[x] {
			continue
		}
		seen[x] = true
		out = append(out, x)
	}
	return out
}

// #endregion
