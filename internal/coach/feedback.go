// Package coach turns completed practice sessions into structured,
// deterministic feedback. Rules only: no randomness, no model calls.
package coach

// #region imports
import (
	"encoding/json"
	"fmt"
)

// #endregion

// #region feedback-types

// Feedback is the session-level coaching output.
type Feedback struct {
	Observations  []string `json:"observations"`
	NextSteps     []string `json:"next_steps"`
	Warnings      []string `json:"warnings"`
	RubricTags    []string `json:"rubric_tags"`
	Confidence    float64  `json:"confidence"`
	PolicyVersion string   `json:"policy_version"`
}

// attemptSummary is the slice of a session document this pass reads.
type attemptSummary struct {
	Attempts []struct {
		Summary struct {
			NoteAccuracyPercent *float64 `json:"note_accuracy_percent"`
			TimingErrorMSP95    *float64 `json:"timing_error_ms_p95"`
		} `json:"summary"`
	} `json:"attempts"`
}

const policyVersion = "policy_v0"

// #endregion

// #region feedback

// FeedbackFromSession aggregates attempt summaries into observations, next
// steps, and warnings. Sessions without attempts or without metrics get
// explicit guidance rather than empty output.
func FeedbackFromSession(session json.RawMessage) Feedback {
	var doc attemptSummary
	_ = json.Unmarshal(session, &doc)

	if len(doc.Attempts) == 0 {
		return Feedback{
			Observations:  []string{"No attempts recorded."},
			NextSteps:     []string{"Record at least one drill or lesson attempt next session."},
			Warnings:      []string{},
			RubricTags:    []string{"no_data"},
			Confidence:    0.4,
			PolicyVersion: policyVersion,
		}
	}

	var accs, p95s []float64
	for _, a := range doc.Attempts {
		if a.Summary.NoteAccuracyPercent != nil {
			accs = append(accs, *a.Summary.NoteAccuracyPercent)
		}
		if a.Summary.TimingErrorMSP95 != nil {
			p95s = append(p95s, *a.Summary.TimingErrorMSP95)
		}
	}

	if len(accs) == 0 && len(p95s) == 0 {
		return Feedback{
			Observations:  []string{"Session captured attempts but no summary metrics."},
			NextSteps:     []string{"Enable summary metrics capture (timing/accuracy) when available."},
			Warnings:      []string{},
			RubricTags:    []string{"metrics_missing"},
			Confidence:    0.5,
			PolicyVersion: policyVersion,
		}
	}

	fb := Feedback{
		Observations:  []string{},
		NextSteps:     []string{},
		Warnings:      []string{},
		Confidence:    0.7,
		PolicyVersion: policyVersion,
	}

	var avgAcc, avgP95 float64
	if len(accs) > 0 {
		avgAcc = mean(accs)
		fb.Observations = append(fb.Observations, fmt.Sprintf("Average note accuracy ~ %.1f%%.", avgAcc))
		if avgAcc < 75 {
			fb.NextSteps = append(fb.NextSteps, "Slow down 10-15 BPM and aim for clean fretting and consistent picking.")
			fb.Warnings = append(fb.Warnings, "Accuracy under 75% suggests tempo is too high or fingering is unstable.")
		} else {
			fb.NextSteps = append(fb.NextSteps, "Increase tempo by 5 BPM on the best-performing drill.")
		}
	}
	if len(p95s) > 0 {
		avgP95 = mean(p95s)
		fb.Observations = append(fb.Observations, fmt.Sprintf("Timing stability (p95 error) ~ %.0f ms.", avgP95))
		if avgP95 > 80 {
			fb.NextSteps = append(fb.NextSteps, "Use a click and focus on downbeat alignment for 2 minutes per drill.")
			fb.Warnings = append(fb.Warnings, "Timing drift is high; prioritize metronome work.")
		} else {
			fb.NextSteps = append(fb.NextSteps, "Add a 2-minute groove loop at current tempo to build endurance.")
		}
	}

	var tags []string
	if len(accs) > 0 && avgAcc < 75 {
		tags = append(tags, "accuracy_low")
	}
	if len(p95s) > 0 && avgP95 > 80 {
		tags = append(tags, "timing_unstable")
	}
	if len(tags) == 0 {
		tags = append(tags, "steady_progress")
	}
	fb.RubricTags = tags
	return fb
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// #endregion
