package optimizer

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/thehillman215/vectorbid/internal/domain"
)

// weightedScore combines a soft-rule breakdown with persona multipliers
// into one decimal-exact total, avoiding float accumulation drift across
// potentially dozens of weighted terms. Every contribution is clamped to
// [-1,1] before weighting, and the raw rule-pack-weight*persona-multiplier
// products are normalized to sum to 1 across the rules actually present
// in breakdown, so the final score never depends on how many soft rules
// a pack happens to declare.
func weightedScore(breakdown map[string]float64, rulePackWeights map[string]float64, personaMultipliers map[string]float64) float64 {
	if len(breakdown) == 0 {
		return 0
	}

	names := make([]string, 0, len(breakdown))
	rawWeights := make(map[string]float64, len(breakdown))
	weightSum := decimal.Zero
	for name := range breakdown {
		w := rulePackWeights[name]
		if w == 0 {
			w = 1
		}
		m := personaMultipliers[name]
		if m == 0 {
			m = 1
		}
		raw := decimal.NewFromFloat(w).Mul(decimal.NewFromFloat(m))
		rawWeights[name] = w * m
		weightSum = weightSum.Add(raw)
		names = append(names, name)
	}
	if weightSum.IsZero() {
		return 0
	}

	total := decimal.Zero
	for _, name := range names {
		normalizedWeight := decimal.NewFromFloat(rawWeights[name]).Div(weightSum)
		contribution := decimal.NewFromFloat(clampContribution(breakdown[name]))
		total = total.Add(contribution.Mul(normalizedWeight))
	}
	f, _ := total.Float64()
	return f
}

// clampContribution enforces a universal [-1,1] bound on a soft rule's
// contribution, independent of whatever clamp the rule pack itself
// declares.
func clampContribution(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// softRuleWeights indexes a rule pack's soft rules by name for O(1)
// lookup during scoring.
func softRuleWeights(rules []domain.SoftRule) map[string]float64 {
	out := make(map[string]float64, len(rules))
	for _, r := range rules {
		out[r.Name] = r.Weight
	}
	return out
}

// rankTopK sorts candidates by score descending, breaking ties by fewer
// violations then by candidate ID for full determinism, and returns at
// most k.
func rankTopK(candidates []domain.CandidateSchedule, k int) []domain.CandidateSchedule {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		if len(candidates[i].Violations) != len(candidates[j].Violations) {
			return len(candidates[i].Violations) < len(candidates[j].Violations)
		}
		return candidates[i].CandidateID < candidates[j].CandidateID
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates
}
