package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thehillman215/vectorbid/internal/domain"
)

func testPairings() []domain.Pairing {
	return []domain.Pairing{
		{PairingID: "A", Days: 3, CreditMinutes: 1200, HasRedEye: false},
		{PairingID: "B", Days: 2, CreditMinutes: 900, HasRedEye: true},
		{PairingID: "C", Days: 4, CreditMinutes: 1600, HasRedEye: false},
	}
}

func TestOptimizeLegacyModeNeverFailsOnMissingRulePack(t *testing.T) {
	bundle := domain.FeatureBundle{
		Package: &domain.BidPackage{Pairings: testPairings()},
		Legacy:  true,
	}
	o := New(Config{})
	results := o.Optimize(bundle, "money_maker")
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.True(t, r.HardOK)
	}
}

func TestOptimizeReturnsEmptyForNoPairings(t *testing.T) {
	o := New(Config{})
	results := o.Optimize(domain.FeatureBundle{Package: &domain.BidPackage{}}, "money_maker")
	assert.Empty(t, results)
}

func TestRankTopKOrdersByScoreDescending(t *testing.T) {
	candidates := []domain.CandidateSchedule{
		{CandidateID: "a", Score: 10, HardOK: true},
		{CandidateID: "b", Score: 50, HardOK: true},
		{CandidateID: "c", Score: 30, HardOK: true},
	}
	ranked := rankTopK(candidates, 2)
	require.Len(t, ranked, 2)
	assert.Equal(t, "b", ranked[0].CandidateID)
	assert.Equal(t, "c", ranked[1].CandidateID)
}

func TestRetuneIsIdempotentForSameInputs(t *testing.T) {
	o := New(Config{})
	candidates := []domain.CandidateSchedule{
		{CandidateID: "a", SoftBreakdown: map[string]float64{"credit": 100}, HardOK: true},
	}
	deltas := map[string]float64{"credit": 2.0}
	first := o.Retune(candidates, deltas, "money_maker")
	second := o.Retune(candidates, deltas, "money_maker")
	assert.Equal(t, first[0].Score, second[0].Score)
}

func TestBeamSearchRespectsMaxDaysPerMonth(t *testing.T) {
	states := beamSearch(testPairings(), func(p domain.Pairing) float64 { return float64(p.CreditMinutes) }, 10, 5)
	for _, s := range states {
		assert.LessOrEqual(t, s.totalDays, 5)
	}
}

func TestOptimizeLegacyModeRejectsCandidatesOverBaselineDutyDays(t *testing.T) {
	bundle := domain.FeatureBundle{
		Package: &domain.BidPackage{Pairings: testPairings()},
		Legacy:  true,
	}
	o := New(Config{})
	results := o.Optimize(bundle, "money_maker")
	for _, r := range results {
		days := 0
		for _, id := range r.PairingIDs {
			for _, p := range testPairings() {
				if p.PairingID == id {
					days += p.Days
				}
			}
		}
		assert.LessOrEqual(t, days, legacyMaxConsecutiveDutyDays)
	}
}

func TestLegacyFAR117ViolationsFlagsExcessiveBlockMinutes(t *testing.T) {
	byID := map[string]domain.Pairing{
		"X": {PairingID: "X", Days: 1, BlockMinutes: 1000},
	}
	cand := domain.CandidateSchedule{PairingIDs: []string{"X"}}
	violations := legacyFAR117Violations(cand, byID)
	require.Len(t, violations, 1)
	assert.Equal(t, "far117.baseline.max_duty_minutes", violations[0].RuleID)
}

func TestLegacyFAR117ViolationsFlagsExcessiveConsecutiveDays(t *testing.T) {
	byID := map[string]domain.Pairing{
		"A": {PairingID: "A", Days: 4},
		"B": {PairingID: "B", Days: 4},
	}
	cand := domain.CandidateSchedule{PairingIDs: []string{"A", "B"}}
	violations := legacyFAR117Violations(cand, byID)
	require.Len(t, violations, 1)
	assert.Equal(t, "far117.baseline.max_consecutive_duty_days", violations[0].RuleID)
}

func TestCandidateIDChangesWithWeightsOrRulePackVersion(t *testing.T) {
	base := candidateID("ctx1", []string{"A", "B"}, "w1", "rp1")
	assert.NotEqual(t, base, candidateID("ctx1", []string{"A", "B"}, "w2", "rp1"))
	assert.NotEqual(t, base, candidateID("ctx1", []string{"A", "B"}, "w1", "rp2"))
	assert.NotEqual(t, base, candidateID("ctx2", []string{"A", "B"}, "w1", "rp1"))
	assert.Equal(t, base, candidateID("ctx1", []string{"A", "B"}, "w1", "rp1"))
}

func TestRationaleSurfacesTopPositiveAndNegativeContributions(t *testing.T) {
	cand := domain.CandidateSchedule{
		HardOK: true,
		SoftBreakdown: map[string]float64{
			"credit":           0.9,
			"layovers":         0.4,
			"commute_friendly": -0.2,
			"report_time":      -0.7,
		},
	}
	r := rationale(cand, "money_maker")
	assert.Contains(t, r, "+ credit (0.90)")
	assert.Contains(t, r, "- report_time (-0.70)")
}

func TestOptimizeTopKHonorsRequestedKOverConfigDefault(t *testing.T) {
	bundle := domain.FeatureBundle{
		Package: &domain.BidPackage{Pairings: testPairings()},
		Legacy:  true,
	}
	o := New(Config{TopK: 1})
	results := o.OptimizeTopK(bundle, "money_maker", 20)
	assert.Greater(t, len(results), 1)
}
