// Package strategy turns ranked candidate schedules into
// StrategyDirectives: pairing-ID focus hints grouped by category, and
// layer-shape templates in descending order of specificity, ready for
// the layer generator to turn into concrete PBS filters.
package strategy

import (
	"strconv"

	"github.com/thehillman215/vectorbid/internal/domain"
)

// Build groups the top candidates' pairings by a small set of categories
// (credit, weekend, red-eye avoidance; there is no commute category)
// and emits one
// LayerTemplate per category that at least one candidate actually uses,
// most-specific first so the layer generator's natural descending-order
// emission needs no further reordering.
func Build(candidates []domain.CandidateSchedule, pairings map[string]domain.Pairing, pref domain.PreferenceSchema) domain.StrategyDirectives {
	focus := map[string][]string{}
	rationale := []string{}

	for _, cand := range candidates {
		for _, id := range cand.PairingIDs {
			p, ok := pairings[id]
			if !ok {
				continue
			}
			if p.HasRedEye && pref.Hard.NoRedEyes {
				focus["avoid_red_eye"] = appendUnique(focus["avoid_red_eye"], id)
			}
			if p.IncludesWeekend {
				if sp, ok := pref.SoftPrefs["weekend_priority"]; ok && sp.Direction == domain.DirectionPrefer {
					focus["weekend_priority"] = appendUnique(focus["weekend_priority"], id)
				}
			}
			if sp, ok := pref.SoftPrefs["credit"]; ok && sp.Direction == domain.DirectionPrefer && p.CreditMinutes > 0 {
				focus["credit"] = appendUnique(focus["credit"], id)
			}
		}
	}

	var templates []domain.LayerTemplate
	order := []string{"avoid_red_eye", "credit", "weekend_priority"}
	for _, category := range order {
		ids, ok := focus[category]
		if !ok || len(ids) == 0 {
			continue
		}
		prefer := domain.PreferYes
		if category == "avoid_red_eye" {
			prefer = domain.PreferNo
		}
		templates = append(templates, domain.LayerTemplate{
			Category: category,
			Prefer:   prefer,
			Hints:    map[string]any{"pairing_ids": ids},
		})
		rationale = append(rationale, "layer for "+category+" covers "+strconv.Itoa(len(ids))+" pairings")
	}

	return domain.StrategyDirectives{
		WeightDeltas:   map[string]float64{},
		FocusHints:     focus,
		LayerTemplates: templates,
		Rationale:      rationale,
	}
}

func appendUnique(list []string, id string) []string {
	for _, existing := range list {
		if existing == id {
			return list
		}
	}
	return append(list, id)
}

