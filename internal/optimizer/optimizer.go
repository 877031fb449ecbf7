package optimizer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/thehillman215/vectorbid/internal/domain"
	"github.com/thehillman215/vectorbid/internal/persona"
	"github.com/thehillman215/vectorbid/internal/ruleengine"
)

// Config bounds the search: BeamWidth caps how many partial states
// survive each depth, TopK caps how many finished candidates are
// returned, MaxDaysPerMonth caps total duty days a candidate may use.
type Config struct {
	BeamWidth       int
	TopK            int
	MaxDaysPerMonth int
}

func (c Config) withDefaults() Config {
	if c.BeamWidth <= 0 {
		c.BeamWidth = 40
	}
	if c.TopK <= 0 {
		c.TopK = 10
	}
	if c.MaxDaysPerMonth <= 0 {
		c.MaxDaysPerMonth = 20
	}
	return c
}

// Optimizer builds ranked candidate schedules for one request.
type Optimizer struct {
	cfg Config
}

// New builds an Optimizer, filling in defaults for any zero-valued Config field.
func New(cfg Config) *Optimizer {
	return &Optimizer{cfg: cfg.withDefaults()}
}

// Optimize runs beam search over bundle.Package.Pairings, gates every
// finished candidate on the rule pack's hard rules (legacy mode, with no
// rule pack, gates on the fixed FAR117 baseline in legacyFAR117Violations
// instead), scores candidates with the rule pack's soft rules weighted by
// personaName's multipliers, and returns the top-K ranked candidates. A
// candidate that fails a hard rule (HardOK=false) is dropped before
// ranking and is never returned.
func (o *Optimizer) Optimize(bundle domain.FeatureBundle, personaName string) []domain.CandidateSchedule {
	return o.optimize(bundle, personaName, o.cfg.TopK)
}

// OptimizeTopK behaves like Optimize but honors a caller-requested k
// instead of the optimizer's configured default, so a request asking for
// more (or fewer) candidates than Config.TopK is never silently capped.
func (o *Optimizer) OptimizeTopK(bundle domain.FeatureBundle, personaName string, k int) []domain.CandidateSchedule {
	if k <= 0 {
		k = o.cfg.TopK
	}
	return o.optimize(bundle, personaName, k)
}

func (o *Optimizer) optimize(bundle domain.FeatureBundle, personaName string, topK int) []domain.CandidateSchedule {
	if bundle.Package == nil || len(bundle.Package.Pairings) == 0 {
		return nil
	}

	profile := persona.Resolve(personaName, nil)
	weightFn := func(p domain.Pairing) float64 {
		return float64(p.CreditMinutes) * persona.Multiplier(profile, "credit")
	}

	states := beamSearch(bundle.Package.Pairings, weightFn, o.cfg.BeamWidth, o.cfg.MaxDaysPerMonth)

	byID := make(map[string]domain.Pairing, len(bundle.Package.Pairings))
	for _, p := range bundle.Package.Pairings {
		byID[p.PairingID] = p
	}

	rulePackVersion := ""
	if bundle.RulePack != nil {
		rulePackVersion = bundle.RulePack.Version
	}

	var candidates []domain.CandidateSchedule
	for _, st := range states {
		cand := domain.CandidateSchedule{
			CandidateID: candidateID(bundle.Context.CtxID, st.pairingIDs, bundle.Preference.WeightsVersion, rulePackVersion),
			PairingIDs:  st.pairingIDs,
			State:       domain.StateConstructed,
		}

		if !bundle.Legacy && bundle.RulePack != nil {
			env := &ruleengine.Env{
				Context:   bundle.Context,
				Candidate: cand,
				FAR117:    ruleengine.FAR117{MaxDutyMinutes: 900, MinRestMinutes: 600, MaxConsecutiveDutyDays: 6},
				Contract:  ruleengine.Contract{MinDaysOffPerMonth: 10, MaxConsecutiveDays: 6},
				PairingByID: func(id string) (domain.Pairing, bool) {
					p, ok := byID[id]
					return p, ok
				},
			}
			cand.Violations = ruleengine.EvaluateHard(bundle.RulePack, env)
			cand.State = domain.StateHardChecked
			cand.HardOK = !cand.HasErrorViolation()

			breakdown := ruleengine.ScoreSoft(bundle.RulePack, env)
			cand.SoftBreakdown = breakdown
			cand.Score = weightedScore(breakdown, softRuleWeights(bundle.RulePack.SoftRules), profile.SoftWeightMultipliers)
			cand.State = domain.StateScored
			cand.LegalExplanation = legalExplanation(cand.Violations)
		} else {
			cand.Violations = legacyFAR117Violations(cand, byID)
			cand.State = domain.StateHardChecked
			cand.HardOK = !cand.HasErrorViolation()
			cand.Score = st.partialScore
			cand.State = domain.StateScored
			cand.LegalExplanation = legalExplanation(cand.Violations)
		}

		cand.Rationale = rationale(cand, personaName)
		candidates = append(candidates, cand)
	}

	ranked := rankTopK(gatingFilter(candidates), topK)
	for i := range ranked {
		ranked[i].State = domain.StateRanked
	}
	return ranked
}

// Retune re-scores the same candidate pool under adjusted weight deltas
// without rebuilding the beam search, so repeated calls with the same
// inputs are idempotent.
func (o *Optimizer) Retune(candidates []domain.CandidateSchedule, weightDeltas map[string]float64, personaName string) []domain.CandidateSchedule {
	profile := persona.Resolve(personaName, nil)
	out := make([]domain.CandidateSchedule, len(candidates))
	for i, c := range candidates {
		adjusted := make(map[string]float64, len(weightDeltas))
		for k, v := range weightDeltas {
			adjusted[k] = v
		}
		c.Score = weightedScore(c.SoftBreakdown, adjusted, profile.SoftWeightMultipliers)
		out[i] = c
	}
	return rankTopK(out, o.cfg.TopK)
}

// gatingFilter keeps only candidates with HardOK=true; candidates with an
// error-severity violation are removed and not passed on to ranking.
func gatingFilter(candidates []domain.CandidateSchedule) []domain.CandidateSchedule {
	var out []domain.CandidateSchedule
	for _, c := range candidates {
		if c.HardOK {
			out = append(out, c)
		}
	}
	return out
}

// Baseline FAR117 limits applied in legacy mode (no rule pack loaded), so
// a candidate never reaches top-K without at least these checks even when
// an airline-specific rule pack is unavailable. These mirror the defaults
// EvaluateHard's env is seeded with elsewhere in this file, since no rule
// pack exists here to carry its own far117.* values.
const (
	legacyMaxDutyMinutes         = 900
	legacyMaxConsecutiveDutyDays = 6
)

func legacyFAR117Violations(cand domain.CandidateSchedule, byID map[string]domain.Pairing) []domain.Violation {
	var violations []domain.Violation
	totalDays := 0
	for _, id := range cand.PairingIDs {
		p, ok := byID[id]
		if !ok {
			continue
		}
		totalDays += p.Days
		if float64(p.BlockMinutes) > legacyMaxDutyMinutes {
			violations = append(violations, domain.Violation{
				RuleID:   "far117.baseline.max_duty_minutes",
				Severity: domain.SeverityError,
				Detail:   "pairing block time exceeds the FAR117 maximum duty period",
			})
		}
	}
	if totalDays > legacyMaxConsecutiveDutyDays {
		violations = append(violations, domain.Violation{
			RuleID:   "far117.baseline.max_consecutive_duty_days",
			Severity: domain.SeverityError,
			Detail:   "candidate exceeds the FAR117 baseline consecutive duty day limit",
		})
	}
	return violations
}

func legalExplanation(violations []domain.Violation) []domain.LegalCitation {
	out := make([]domain.LegalCitation, 0, len(violations))
	for _, v := range violations {
		out = append(out, domain.LegalCitation{
			RuleID: v.RuleID,
			Detail: v.Detail,
		})
	}
	return out
}

const rationaleTopN = 5

// rationale surfaces the soft rules that moved this candidate's score the
// most in each direction, rather than a boilerplate pass/fail string, so a
// pilot can see why a candidate ranked where it did.
func rationale(c domain.CandidateSchedule, personaName string) []string {
	r := []string{"persona: " + personaName}
	if c.HardOK {
		r = append(r, "passes all hard rules")
	} else {
		r = append(r, "fails one or more hard rules")
	}

	names := make([]string, 0, len(c.SoftBreakdown))
	for name := range c.SoftBreakdown {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if c.SoftBreakdown[names[i]] != c.SoftBreakdown[names[j]] {
			return c.SoftBreakdown[names[i]] > c.SoftBreakdown[names[j]]
		}
		return names[i] < names[j]
	})

	var positives, negatives []string
	for _, name := range names {
		v := c.SoftBreakdown[name]
		switch {
		case v > 0 && len(positives) < rationaleTopN:
			positives = append(positives, name)
		case v < 0:
			negatives = append(negatives, name)
		}
	}
	if len(negatives) > rationaleTopN {
		negatives = negatives[len(negatives)-rationaleTopN:]
	}

	for _, name := range positives {
		r = append(r, fmt.Sprintf("+ %s (%.2f)", name, c.SoftBreakdown[name]))
	}
	for _, name := range negatives {
		r = append(r, fmt.Sprintf("- %s (%.2f)", name, c.SoftBreakdown[name]))
	}
	return r
}

// candidateID hashes the inputs that determine a candidate's identity
// across requests: the context it was built against, the pairings it
// contains, and the weights/rule-pack versions that shaped its score, so
// the same pairing set re-scored under a different rule pack or weights
// version never collides with a prior candidate's ID.
func candidateID(ctxID string, pairingIDs []string, weightsVersion, rulePackVersion string) string {
	h := sha256.New()
	h.Write([]byte(ctxID))
	h.Write([]byte{0})
	for _, id := range pairingIDs {
		h.Write([]byte(id))
		h.Write([]byte{0})
	}
	h.Write([]byte(weightsVersion))
	h.Write([]byte{0})
	h.Write([]byte(rulePackVersion))
	return hex.EncodeToString(h.Sum(nil))[:16]
}
