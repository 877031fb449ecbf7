package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thehillman215/vectorbid/internal/domain"
)

func TestBuildGroupsRedEyeAvoidance(t *testing.T) {
	pairings := map[string]domain.Pairing{
		"A": {PairingID: "A", HasRedEye: true},
		"B": {PairingID: "B", HasRedEye: false},
	}
	candidates := []domain.CandidateSchedule{{PairingIDs: []string{"A", "B"}}}
	pref := domain.PreferenceSchema{Hard: domain.HardConstraints{NoRedEyes: true}}

	directives := Build(candidates, pairings, pref)
	require.Contains(t, directives.FocusHints, "avoid_red_eye")
	assert.Equal(t, []string{"A"}, directives.FocusHints["avoid_red_eye"])
}

func TestGenerateLayersAssignsIncreasingN(t *testing.T) {
	directives := domain.StrategyDirectives{
		LayerTemplates: []domain.LayerTemplate{
			{Category: "avoid_red_eye", Prefer: domain.PreferNo, Hints: map[string]any{"pairing_ids": []string{"A"}}},
			{Category: "credit", Prefer: domain.PreferYes, Hints: map[string]any{"pairing_ids": []string{"B", "C"}}},
		},
	}
	artifact := GenerateLayers(directives, 10, "UAL", "2026-08")
	require.Len(t, artifact.Layers, 3)
	assert.Equal(t, 1, artifact.Layers[0].N)
	assert.Equal(t, 2, artifact.Layers[1].N)
}

func TestGenerateLayersAppendsBroadCatchAllFinalLayer(t *testing.T) {
	directives := domain.StrategyDirectives{
		LayerTemplates: []domain.LayerTemplate{
			{Category: "credit", Prefer: domain.PreferYes, Hints: map[string]any{"pairing_ids": []string{"A"}}},
		},
	}
	artifact := GenerateLayers(directives, 10, "UAL", "2026-08")
	last := artifact.Layers[len(artifact.Layers)-1]
	assert.Equal(t, domain.PreferNo, last.Prefer)
	assert.Empty(t, last.Filters)
}

func TestCanonicalizeFiltersDedupesAndMergesMembership(t *testing.T) {
	filters := canonicalizeFilters([]domain.Filter{
		{Type: "pairing_id", Op: domain.OpIn, Values: []string{"A", "B"}},
		{Type: "pairing_id", Op: domain.OpIn, Values: []string{"B", "C"}},
	})
	require.Len(t, filters, 1)
	assert.Equal(t, []string{"A", "B", "C"}, filters[0].Values)
}

func TestCanonicalizeFiltersMergesOverlappingRanges(t *testing.T) {
	filters := canonicalizeFilters([]domain.Filter{
		{Type: "report_time", Op: domain.OpBetween, Values: []string{"0600", "1200"}},
		{Type: "report_time", Op: domain.OpBetween, Values: []string{"0900", "1800"}},
	})
	require.Len(t, filters, 1)
	assert.Equal(t, []string{"0600", "1800"}, filters[0].Values)
}

func TestAwardProbabilityHasFloor(t *testing.T) {
	assert.Equal(t, 0.01, awardProbability(0, 100))
}
