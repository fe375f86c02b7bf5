package groove

// #region imports
import (
	"math"
	"sort"
)

// #endregion

// #region compute-window-stats

// ComputeWindowStats derives per-window statistics from a batch of events.
// Pure and deterministic: re-evaluating the same batch yields identical
// output. The input slice is not modified.
func ComputeWindowStats(events []PerformanceEvent, cfg Config) WindowStats {
	count := len(events)

	// No events = maximally uncertain, not an error.
	if count == 0 {
		return WindowStats{
			EventCount:              0,
			MeanConfidence:          0,
			WindowConfidence:        0,
			OnsetIntervalVarianceMS: math.Inf(1),
			IsStable:                false,
		}
	}

	var confSum float64
	for _, e := range events {
		confSum += e.Confidence
	}
	meanConfidence := confSum / float64(count)

	// Gate confidence by event count: evidence from few events is unreliable
	// even when individually confident. Only ever scales downward.
	countFactor := math.Min(1.0, float64(count)/float64(cfg.MinEventsPerWindow))
	windowConfidence := meanConfidence * countFactor

	variance := intervalVariance(events)

	stable := count >= cfg.MinEventsPerWindow &&
		windowConfidence >= cfg.LowConfidenceThreshold &&
		variance <= cfg.StabilityVarianceThresholdMS

	return WindowStats{
		EventCount:              count,
		MeanConfidence:          meanConfidence,
		WindowConfidence:        windowConfidence,
		OnsetIntervalVarianceMS: variance,
		IsStable:                stable,
	}
}

// #endregion

// #region interval-variance

// intervalVariance computes the sample variance (n-1) of consecutive
// inter-onset intervals. Events sharing a timestamp keep their original
// relative order (stable sort), so results are reproducible.
func intervalVariance(events []PerformanceEvent) float64 {
	if len(events) < 2 {
		return math.Inf(1)
	}

	sorted := make([]PerformanceEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OnsetMS < sorted[j].OnsetMS
	})

	intervals := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		intervals = append(intervals, float64(sorted[i].OnsetMS-sorted[i-1].OnsetMS))
	}

	// A single interval has no spread.
	if len(intervals) < 2 {
		return 0
	}

	var sum float64
	for _, iv := range intervals {
		sum += iv
	}
	mean := sum / float64(len(intervals))

	var sq float64
	for _, iv := range intervals {
		d := iv - mean
		sq += d * d
	}
	return sq / float64(len(intervals)-1)
}

// #endregion
