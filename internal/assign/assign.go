// Package assign implements the next-assignment policy: a stateless,
// practice-first ranking pass over the content catalog and recent sessions.
package assign

// #region imports
import (
	"encoding/json"
	"sort"

	"github.com/danielpatrickdp/stringcoach/internal/store"
)

// #endregion

// #region config

// PolicyConfig holds the assignment policy knobs.
type PolicyConfig struct {
	DefaultTargetMinutes  int
	MaxItems              int
	RecentSessionLookback int
}

// DefaultPolicyConfig returns the v0 tuning.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		DefaultTargetMinutes:  15,
		MaxItems:              6,
		RecentSessionLookback: 10,
	}
}

// #endregion

// #region item

// Item is one entry of an assignment plan.
type Item struct {
	ContentID      string `json:"content_id"`
	Kind           string `json:"kind"`
	TargetMinutes  int    `json:"target_minutes"`
	TargetTempoBPM int    `json:"target_tempo_bpm"`
	Priority       int    `json:"priority"`
	Why            string `json:"why"`
}

// #endregion

// #region seen-content

// sessionAttempts is the slice of a session document this policy reads.
type sessionAttempts struct {
	Attempts []struct {
		ContentID string `json:"content_id"`
	} `json:"attempts"`
}

func seenContent(recent []json.RawMessage, lookback int) map[string]bool {
	seen := make(map[string]bool)
	if lookback < len(recent) {
		recent = recent[:lookback]
	}
	for _, doc := range recent {
		var s sessionAttempts
		// Sessions that don't parse simply contribute no seen content.
		if err := json.Unmarshal(doc, &s); err != nil {
			continue
		}
		for _, a := range s.Attempts {
			if a.ContentID != "" {
				seen[a.ContentID] = true
			}
		}
	}
	return seen
}

// #endregion

// #region pick

// PickNextAssignment ranks catalog content for the next practice block:
// drills before lessons, unseen content before recently attempted content.
// Deterministic: ties keep catalog order.
func PickNextAssignment(catalog []store.CatalogItem, recent []json.RawMessage, cfg PolicyConfig) []Item {
	seen := seenContent(recent, cfg.RecentSessionLookback)

	var drills, lessons []store.CatalogItem
	for _, c := range catalog {
		switch c.Kind {
		case "drill":
			drills = append(drills, c)
		case "lesson":
			lessons = append(lessons, c)
		}
	}

	score := func(c store.CatalogItem) int {
		if !seen[c.ContentID] {
			return 100
		}
		return 10
	}
	rank := func(items []store.CatalogItem) {
		sort.SliceStable(items, func(i, j int) bool {
			return score(items[i]) > score(items[j])
		})
	}
	rank(drills)
	rank(lessons)

	ranked := append(append([]store.CatalogItem{}, drills...), lessons...)
	if len(ranked) > cfg.MaxItems {
		ranked = ranked[:cfg.MaxItems]
	}

	items := make([]Item, 0, len(ranked))
	for _, c := range ranked {
		tempo := 70
		priority := 2
		if c.Kind == "drill" {
			tempo = 90
			priority = 1
		}
		why := "Reinforce recent work"
		if !seen[c.ContentID] {
			why = "Unseen item (variety)"
		}
		items = append(items, Item{
			ContentID:      c.ContentID,
			Kind:           c.Kind,
			TargetMinutes:  cfg.DefaultTargetMinutes,
			TargetTempoBPM: tempo,
			Priority:       priority,
			Why:            why,
		})
	}
	return items
}

// #endregion
