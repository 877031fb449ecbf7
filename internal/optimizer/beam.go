// Package optimizer builds and ranks candidate monthly schedules with a
// beam search over the bid package's pairings, gating each candidate on
// the active rule pack's hard rules and scoring survivors with its soft
// rules, weighted per persona. Beam states are memoized on the sorted
// pairing-ID tuple they represent so two expansion paths that reach the
// same set of pairings are only evaluated once (spec.md §8 "optimizer
// determinism").
package optimizer

import (
	"sort"
	"strings"

	"github.com/thehillman215/vectorbid/internal/domain"
)

// beamState is one partial candidate under construction.
type beamState struct {
	pairingIDs    []string
	totalDays     int
	totalCredit   int
	partialScore  float64
}

func (s beamState) key() string {
	ids := append([]string(nil), s.pairingIDs...)
	sort.Strings(ids)
	return strings.Join(ids, ",")
}

// maxTripsPerMonth bounds beam depth; a real monthly bid rarely exceeds
// this many trips regardless of airline or seat.
const maxTripsPerMonth = 8

// beamSearch expands states by adding one not-yet-used pairing per step,
// keeping the top beamWidth states by partial score at each depth, and
// memoizing visited pairing-ID sets so the same combination reached via
// a different expansion order is never rescored.
func beamSearch(pairings []domain.Pairing, weight func(p domain.Pairing) float64, beamWidth int, maxDaysPerMonth int) []beamState {
	visited := make(map[string]bool)
	frontier := []beamState{{}}

	for depth := 0; depth < maxTripsPerMonth; depth++ {
		var next []beamState
		for _, state := range frontier {
			used := toSet(state.pairingIDs)
			for _, p := range pairings {
				if used[p.PairingID] {
					continue
				}
				if state.totalDays+p.Days > maxDaysPerMonth {
					continue
				}
				candidate := beamState{
					pairingIDs:   append(append([]string(nil), state.pairingIDs...), p.PairingID),
					totalDays:    state.totalDays + p.Days,
					totalCredit:  state.totalCredit + p.CreditMinutes,
					partialScore: state.partialScore + weight(p),
				}
				key := candidate.key()
				if visited[key] {
					continue
				}
				visited[key] = true
				next = append(next, candidate)
			}
		}
		if len(next) == 0 {
			break
		}
		sort.Slice(next, func(i, j int) bool { return next[i].partialScore > next[j].partialScore })
		if len(next) > beamWidth {
			next = next[:beamWidth]
		}
		frontier = append(frontier, next...)
	}

	return dedupeStates(frontier)
}

func toSet(ids []string) map[string]bool {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

func dedupeStates(states []beamState) []beamState {
	seen := make(map[string]bool)
	var out []beamState
	for _, s := range states {
		if len(s.pairingIDs) == 0 {
			continue
		}
		k := s.key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, s)
	}
	return out
}
