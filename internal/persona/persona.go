// Package persona defines the built-in named soft-weight multiplier
// profiles; Resolve also accepts caller-supplied override profiles (the
// optimizer passes none, and rule packs carry no personas).
package persona

import "github.com/thehillman215/vectorbid/internal/domain"

// Built-in persona names.
const (
	FamilyFirst = "family_first"
	MoneyMaker  = "money_maker"
	Commuter    = "commuter"
)

// Defaults returns the three built-in persona profiles. Multiplier keys
// match the closed soft-preference vocabulary in
// domain.KnownSoftPrefNames; a name absent from a profile's map is
// treated as multiplier 1.0.
func Defaults() map[string]domain.PersonaProfile {
	return map[string]domain.PersonaProfile{
		FamilyFirst: {
			Name:        FamilyFirst,
			Description: "Weights weekends, commutability, and predictable report times over credit.",
			SoftWeightMultipliers: map[string]float64{
				"weekend_priority": 1.6,
				"commute_friendly": 1.4,
				"report_time":      1.2,
				"credit":           0.7,
				"layovers":         1.1,
			},
		},
		MoneyMaker: {
			Name:        MoneyMaker,
			Description: "Weights credit and long pairings over everything else.",
			SoftWeightMultipliers: map[string]float64{
				"credit":           1.8,
				"trip_length":      1.3,
				"pairing_length":   1.3,
				"weekend_priority": 0.6,
			},
		},
		Commuter: {
			Name:        Commuter,
			Description: "Weights commute-friendly report/release times over credit or trip length.",
			SoftWeightMultipliers: map[string]float64{
				"commute_friendly": 1.9,
				"report_time":      1.5,
				"international":    0.6,
			},
		},
	}
}

// Resolve looks up name in overrides first,
// falling back to the built-in defaults, and finally to a neutral
// all-1.0 profile if name is unrecognized anywhere.
func Resolve(name string, overrides map[string]domain.PersonaProfile) domain.PersonaProfile {
	if overrides != nil {
		if p, ok := overrides[name]; ok {
			return p
		}
	}
	if p, ok := Defaults()[name]; ok {
		return p
	}
	return domain.PersonaProfile{Name: name, SoftWeightMultipliers: map[string]float64{}}
}

// Multiplier returns the multiplier for softPrefName under profile,
// defaulting to 1.0 when unspecified.
func Multiplier(profile domain.PersonaProfile, softPrefName string) float64 {
	if profile.SoftWeightMultipliers == nil {
		return 1.0
	}
	if m, ok := profile.SoftWeightMultipliers[softPrefName]; ok {
		return m
	}
	return 1.0
}
