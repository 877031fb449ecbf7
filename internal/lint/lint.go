// Package lint annotates a generated BidLayerArtifact with findings
// without mutating any layer: shadowed layers, contradictory filters
// across layers, redundant filters within one layer, airline-specific
// quirks, and empty layers.
package lint

import "github.com/thehillman215/vectorbid/internal/domain"

// Check runs every lint rule over artifact.Layers and returns the
// populated LintReport; the caller is responsible for attaching it back
// onto the artifact (lint never mutates layers themselves).
func Check(artifact domain.BidLayerArtifact) domain.LintReport {
	var report domain.LintReport

	report.Errors = append(report.Errors, emptyLayers(artifact.Layers)...)
	report.Warnings = append(report.Warnings, shadowedLayers(artifact.Layers)...)
	report.Warnings = append(report.Warnings, contradictions(artifact.Layers)...)
	report.Info = append(report.Info, redundantFilters(artifact.Layers)...)
	report.Info = append(report.Info, airlineSpecificQuirks(artifact.Airline, artifact.Layers)...)

	return report
}

// airlineSpecificQuirks flags filter types that only one airline's PBS
// engine accepts, so a bid package rendered for a different airline
// would silently no-op the layer instead of matching anything.
func airlineSpecificQuirks(airline string, layers []domain.Layer) []domain.LintFinding {
	restricted := map[string]string{
		"jumpseat_priority": "UAL",
		"reserve_day_block": "DAL",
	}
	var findings []domain.LintFinding
	for _, l := range layers {
		for _, f := range l.Filters {
			owner, ok := restricted[f.Type]
			if ok && owner != airline {
				findings = append(findings, domain.LintFinding{
					Kind:         domain.LintAirlineSpecific,
					LayerIndexes: []int{l.N},
					Detail:       "filter type " + f.Type + " is only meaningful for " + owner,
				})
			}
		}
	}
	return findings
}

// emptyLayers flags a layer with no effective filter values, except the
// artifact's last layer: an empty, prefer=NO final layer is the intended
// broad catch-all, not an authoring mistake.
func emptyLayers(layers []domain.Layer) []domain.LintFinding {
	var findings []domain.LintFinding
	for i, l := range layers {
		isTrailingCatchAll := i == len(layers)-1 && l.Prefer == domain.PreferNo
		if isTrailingCatchAll {
			continue
		}
		if len(l.Filters) == 0 || allFiltersEmpty(l.Filters) {
			findings = append(findings, domain.LintFinding{
				Kind:         domain.LintEmptyLayer,
				LayerIndexes: []int{l.N},
				Detail:       "layer has no effective filter values",
			})
		}
	}
	return findings
}

func allFiltersEmpty(filters []domain.Filter) bool {
	for _, f := range filters {
		if len(f.Values) > 0 {
			return false
		}
	}
	return true
}

// shadowedLayers flags a later layer whose filter set contains every
// filter of an earlier layer with the same prefer direction: it matches
// only trips the earlier layer already matched, and the PBS engine
// evaluates layers in order, so the later layer can never fire.
func shadowedLayers(layers []domain.Layer) []domain.LintFinding {
	var findings []domain.LintFinding
	for i := 0; i < len(layers); i++ {
		for j := i + 1; j < len(layers); j++ {
			if layers[i].Prefer != layers[j].Prefer {
				continue
			}
			if isSubsetOf(layers[i].Filters, layers[j].Filters) {
				findings = append(findings, domain.LintFinding{
					Kind:         domain.LintShadow,
					LayerIndexes: []int{layers[i].N, layers[j].N},
					Detail:       "layer is fully shadowed by an earlier layer",
				})
			}
		}
	}
	return findings
}

// contradictions flags a PreferYes layer and a PreferNo layer that match
// the exact same filter set: the two directives cancel each other.
func contradictions(layers []domain.Layer) []domain.LintFinding {
	var findings []domain.LintFinding
	for i := 0; i < len(layers); i++ {
		for j := i + 1; j < len(layers); j++ {
			if layers[i].Prefer == layers[j].Prefer {
				continue
			}
			if sameFilterSet(layers[i].Filters, layers[j].Filters) {
				findings = append(findings, domain.LintFinding{
					Kind:         domain.LintContradiction,
					LayerIndexes: []int{layers[i].N, layers[j].N},
					Detail:       "opposing prefer/avoid layers match the same filter set",
				})
			}
		}
	}
	return findings
}

// redundantFilters flags a layer whose filter list repeats the same
// (type, op) pair more than once; such duplicates have no additional
// effect beyond the first.
func redundantFilters(layers []domain.Layer) []domain.LintFinding {
	var findings []domain.LintFinding
	for _, l := range layers {
		seen := map[string]bool{}
		for _, f := range l.Filters {
			key := string(f.Type) + "|" + string(f.Op)
			if seen[key] {
				findings = append(findings, domain.LintFinding{
					Kind:         domain.LintRedundantFilter,
					LayerIndexes: []int{l.N},
					Detail:       "duplicate filter predicate: " + key,
				})
			}
			seen[key] = true
		}
	}
	return findings
}

func isSubsetOf(a, b []domain.Filter) bool {
	for _, fa := range a {
		found := false
		for _, fb := range b {
			if fa.Type == fb.Type && fa.Op == fb.Op && sameValues(fa.Values, fb.Values) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return len(a) > 0
}

func sameFilterSet(a, b []domain.Filter) bool {
	return isSubsetOf(a, b) && isSubsetOf(b, a)
}

func sameValues(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	idx := map[string]bool{}
	for _, v := range a {
		idx[v] = true
	}
	for _, v := range b {
		if !idx[v] {
			return false
		}
	}
	return true
}
