package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thehillman215/vectorbid/internal/domain"
)

func TestCheckFlagsEmptyLayer(t *testing.T) {
	artifact := domain.BidLayerArtifact{
		Layers: []domain.Layer{{N: 1, Filters: nil}},
	}
	report := Check(artifact)
	assert.Len(t, report.Errors, 1)
	assert.Equal(t, domain.LintEmptyLayer, report.Errors[0].Kind)
}

func TestCheckFlagsShadow(t *testing.T) {
	filters := []domain.Filter{{Type: "pairing_id", Op: domain.OpIn, Values: []string{"A", "B"}}}
	artifact := domain.BidLayerArtifact{
		Layers: []domain.Layer{
			{N: 1, Prefer: domain.PreferYes, Filters: filters},
			{N: 2, Prefer: domain.PreferYes, Filters: filters},
		},
	}
	report := Check(artifact)
	assert.Len(t, report.Warnings, 1)
	assert.Equal(t, domain.LintShadow, report.Warnings[0].Kind)
}

func TestCheckFlagsContradiction(t *testing.T) {
	filters := []domain.Filter{{Type: "pairing_id", Op: domain.OpIn, Values: []string{"A"}}}
	artifact := domain.BidLayerArtifact{
		Layers: []domain.Layer{
			{N: 1, Prefer: domain.PreferYes, Filters: filters},
			{N: 2, Prefer: domain.PreferNo, Filters: filters},
		},
	}
	report := Check(artifact)
	assert.Len(t, report.Warnings, 1)
	assert.Equal(t, domain.LintContradiction, report.Warnings[0].Kind)
}

func TestCheckFlagsRedundantFilter(t *testing.T) {
	artifact := domain.BidLayerArtifact{
		Layers: []domain.Layer{
			{N: 1, Filters: []domain.Filter{
				{Type: "pairing_id", Op: domain.OpIn, Values: []string{"A"}},
				{Type: "pairing_id", Op: domain.OpIn, Values: []string{"B"}},
			}},
		},
	}
	report := Check(artifact)
	assert.Len(t, report.Info, 1)
	assert.Equal(t, domain.LintRedundantFilter, report.Info[0].Kind)
}

func TestCheckFlagsAirlineSpecificFilter(t *testing.T) {
	artifact := domain.BidLayerArtifact{
		Airline: "DAL",
		Layers: []domain.Layer{
			{N: 1, Filters: []domain.Filter{
				{Type: "jumpseat_priority", Op: domain.OpEq, Values: []string{"true"}},
			}},
		},
	}
	report := Check(artifact)
	require.Len(t, report.Info, 1)
	assert.Equal(t, domain.LintAirlineSpecific, report.Info[0].Kind)
}
