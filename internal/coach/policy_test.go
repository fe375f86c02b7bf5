package coach

import (
	"testing"
)

func cleanSession() SessionRecord {
	return SessionRecord{
		SessionID: "ses_eval",
		Performance: Performance{
			TimingErrorMS: TimingStats{Mean: 8.0, Std: 3.0},
			ErrorByStep:   map[string]float64{"0": 5.0, "4": 6.0, "8": 4.0},
		},
		Timing: TimingSetup{Grid: 16, LateDropMS: 120},
		Events: EventCounts{LateDrops: 0},
	}
}

func TestCleanSessionRecommendsConsistency(t *testing.T) {
	ev := EvaluateSession(cleanSession(), DefaultPolicy())

	if ev.Focus.Concept != "consistency" {
		t.Fatalf("expected consistency focus, got %s", ev.Focus.Concept)
	}
	if ev.Confidence != 0.65 {
		t.Fatalf("expected confidence 0.65, got %f", ev.Confidence)
	}
	if len(ev.Findings) != 0 {
		t.Fatalf("expected no findings, got %+v", ev.Findings)
	}
	if len(ev.Strengths) == 0 || len(ev.Weaknesses) == 0 {
		t.Fatal("strengths/weaknesses must never be empty")
	}
	if ev.Weaknesses[0] != "No major issues detected." {
		t.Fatalf("unexpected weakness fallback: %v", ev.Weaknesses)
	}
}

func TestElevatedGlobalTiming(t *testing.T) {
	s := cleanSession()
	s.Performance.TimingErrorMS = TimingStats{Mean: 20.0, Std: 9.0}

	ev := EvaluateSession(s, DefaultPolicy())

	if ev.Focus.Concept != "timing_foundation" {
		t.Fatalf("expected timing_foundation, got %s", ev.Focus.Concept)
	}
	if ev.Confidence != 0.80 {
		t.Fatalf("expected confidence 0.80, got %f", ev.Confidence)
	}
	if len(ev.Findings) != 1 {
		t.Fatalf("expected one finding, got %d", len(ev.Findings))
	}
	if ev.Findings[0].Severity != SeverityPrimary {
		t.Fatalf("mean 20ms >= 18ms primary threshold, got %s", ev.Findings[0].Severity)
	}
}

func TestHotspotWinsFocus(t *testing.T) {
	s := cleanSession()
	s.Performance.TimingErrorMS = TimingStats{Mean: 14.0, Std: 6.0}
	s.Performance.ErrorByStep = map[string]float64{
		"0": 5.0, "6": 30.0, "12": 17.0, "bad-key": 99.0,
	}

	ev := EvaluateSession(s, DefaultPolicy())

	if ev.Focus.Concept != "grid_alignment" {
		t.Fatalf("hotspot must win focus, got %s", ev.Focus.Concept)
	}
	if ev.Confidence != 0.90 {
		t.Fatalf("expected confidence 0.90, got %f", ev.Confidence)
	}

	// step 6 primary, step 12 secondary, global timing secondary; the
	// non-numeric key is skipped.
	var primary, secondary int
	for _, f := range ev.Findings {
		switch f.Severity {
		case SeverityPrimary:
			primary++
		case SeveritySecondary:
			secondary++
		}
	}
	if primary != 1 || secondary != 2 {
		t.Fatalf("expected 1 primary + 2 secondary findings, got %d/%d: %+v", primary, secondary, ev.Findings)
	}
}

func TestLateDropsAreInfoFindings(t *testing.T) {
	s := cleanSession()
	s.Events.LateDrops = 3

	ev := EvaluateSession(s, DefaultPolicy())

	found := false
	for _, f := range ev.Findings {
		if f.Type == "consistency" && f.Severity == SeverityInfo {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected consistency info finding, got %+v", ev.Findings)
	}
}

func TestEvaluationIsDeterministic(t *testing.T) {
	s := cleanSession()
	s.Performance.ErrorByStep = map[string]float64{
		"0": 16.0, "1": 16.0, "2": 16.0, "3": 16.0, "4": 16.0,
	}

	first := EvaluateSession(s, DefaultPolicy())
	for i := 0; i < 5; i++ {
		again := EvaluateSession(s, DefaultPolicy())
		if len(again.Findings) != len(first.Findings) {
			t.Fatal("finding count diverged")
		}
		for j := range again.Findings {
			if again.Findings[j].Interpretation != first.Findings[j].Interpretation {
				t.Fatalf("finding order diverged at %d", j)
			}
		}
	}
}
