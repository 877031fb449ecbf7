package strategy

import (
	"sort"
	"strconv"

	"github.com/thehillman215/vectorbid/internal/domain"
)

// membershipCollapseThreshold bounds how many distinct values a single
// membership filter may list before canonicalize stops trying to merge
// further equality filters into it; past this point an airline's PBS
// engine tends to reject or silently truncate very long filter lists.
const membershipCollapseThreshold = 200

// GenerateLayers converts StrategyDirectives' templates into concrete,
// numbered Layer filters, emitted in the order the templates already
// carry (descending specificity), with award-probability estimated from
// each layer's pairing-ID membership size relative to the package total.
// Every layer is canonicalized before being numbered, and a broad
// prefer=NO catch-all is appended last so the bid always has a defined
// fallback instead of leaving unmatched trips to the airline's own
// tiebreaker.
func GenerateLayers(directives domain.StrategyDirectives, totalPairings int, airline, month string) domain.BidLayerArtifact {
	artifact := domain.BidLayerArtifact{
		Airline: airline,
		Format:  domain.FormatPBS2,
		Month:   month,
	}

	n := 0
	for _, tmpl := range directives.LayerTemplates {
		ids, _ := tmpl.Hints["pairing_ids"].([]string)
		filters := canonicalizeFilters([]domain.Filter{
			{Type: "pairing_id", Op: domain.OpIn, Values: ids},
		})
		if len(filters) == 0 {
			continue
		}
		n++
		artifact.Layers = append(artifact.Layers, domain.Layer{
			N:                  n,
			Prefer:             tmpl.Prefer,
			Filters:            filters,
			EstimatedAwardProb: awardProbability(len(ids), totalPairings),
		})
	}

	n++
	artifact.Layers = append(artifact.Layers, domain.Layer{
		N:                  n,
		Prefer:             domain.PreferNo,
		Filters:            nil,
		EstimatedAwardProb: 1,
	})

	return artifact
}

// canonicalizeFilters dedups identical filters, merges filters that share
// a field and operator into one filter carrying the sorted union of their
// values (an equality filter keeps its operator), and merges overlapping
// between ranges on the same field into their union so a layer never
// carries redundant predicates. A filter that cannot be merged (a
// disjoint range, or a list that would pass membershipCollapseThreshold)
// is kept as a separate filter.
func canonicalizeFilters(filters []domain.Filter) []domain.Filter {
	byKey := map[string]domain.Filter{}
	order := []string{}
	for _, f := range filters {
		if len(f.Values) == 0 && f.Op != domain.OpBetween {
			continue
		}
		key := string(f.Type) + "|" + string(f.Op)
		existing, ok := byKey[key]
		if !ok {
			f.Values = dedupSorted(f.Values)
			byKey[key] = f
			order = append(order, key)
			continue
		}
		switch f.Op {
		case domain.OpBetween:
			if len(existing.Values) != 2 || len(f.Values) != 2 ||
				(f.Values[0] <= existing.Values[1] && existing.Values[0] <= f.Values[1]) {
				byKey[key] = mergeBetween(existing, f)
				continue
			}
		default:
			merged := existing
			merged.Values = dedupSorted(append(append([]string{}, existing.Values...), f.Values...))
			if len(merged.Values) <= membershipCollapseThreshold {
				byKey[key] = merged
				continue
			}
			f.Values = dedupSorted(f.Values)
		}
		separateKey := key + "|" + strconv.Itoa(len(order))
		byKey[separateKey] = f
		order = append(order, separateKey)
	}

	out := make([]domain.Filter, 0, len(order))
	for _, key := range order {
		out = append(out, byKey[key])
	}
	return out
}

// mergeBetween collapses two "between" filters on the same field into
// their union range, taking the lower lower-bound and the higher
// upper-bound. A malformed (non two-element) range is left as the first
// filter seen rather than guessed at.
func mergeBetween(a, b domain.Filter) domain.Filter {
	if len(a.Values) != 2 || len(b.Values) != 2 {
		return a
	}
	lo, hi := a.Values[0], a.Values[1]
	if b.Values[0] < lo {
		lo = b.Values[0]
	}
	if b.Values[1] > hi {
		hi = b.Values[1]
	}
	a.Values = []string{lo, hi}
	return a
}

func dedupSorted(values []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// awardProbability is a seniority-agnostic prior: the fraction of the
// package a layer's filter set matches, clamped to a sane floor so an
// empty match never reports exactly zero (a rule pack's stats.* namespace
// supplies a sharper estimate when available; this is the fallback).
func awardProbability(matched, total int) float64 {
	if total == 0 {
		return 0
	}
	p := float64(matched) / float64(total)
	if p < 0.01 {
		return 0.01
	}
	return p
}
