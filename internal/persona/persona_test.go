package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thehillman215/vectorbid/internal/domain"
)

func TestResolveFallsBackToDefaults(t *testing.T) {
	p := Resolve(MoneyMaker, nil)
	assert.Equal(t, MoneyMaker, p.Name)
	assert.Greater(t, Multiplier(p, "credit"), 1.0)
}

func TestResolveUnknownNameIsNeutral(t *testing.T) {
	p := Resolve("nonexistent", nil)
	assert.Equal(t, 1.0, Multiplier(p, "credit"))
}

func TestResolvePrefersOverride(t *testing.T) {
	overrides := map[string]domain.PersonaProfile{
		FamilyFirst: {Name: FamilyFirst, SoftWeightMultipliers: map[string]float64{"credit": 5.0}},
	}
	p := Resolve(FamilyFirst, overrides)
	assert.Equal(t, 5.0, Multiplier(p, "credit"))
}
