package ruleengine

import "github.com/thehillman215/vectorbid/internal/domain"

// EvaluateHard runs every hard rule in pack against a candidate, returning
// one domain.Violation per failing rule. A rule whose expression itself
// errors becomes a Severity-warn violation carrying the expression error
// detail, rather than aborting evaluation of the remaining rules — the
// evaluator is total (spec.md §8 "evaluator totality").
func EvaluateHard(pack *domain.RulePack, env *Env) []domain.Violation {
	var violations []domain.Violation
	for _, rule := range pack.HardRules {
		compiledExpr, ok := pack.Compiled[rule.ID]
		if !ok {
			continue
		}
		ok2, err := EvalBool(compiledExpr, env)
		if err != nil {
			violations = append(violations, domain.Violation{
				RuleID:   rule.ID,
				Severity: domain.SeverityWarn,
				Detail:   err.Error(),
			})
			continue
		}
		if !ok2 {
			violations = append(violations, domain.Violation{
				RuleID:   rule.ID,
				Severity: rule.Severity,
				Detail:   rule.Description,
			})
		}
	}
	return violations
}

// ScoreSoft evaluates every soft rule against a candidate, clamping each
// result to [ClampMin, ClampMax] and returning the breakdown keyed by
// rule name. A rule that errors contributes 0 to its own breakdown entry
// and nothing else; it never aborts scoring of the other rules.
func ScoreSoft(pack *domain.RulePack, env *Env) map[string]float64 {
	out := make(map[string]float64, len(pack.SoftRules))
	for _, rule := range pack.SoftRules {
		compiledExpr, ok := pack.Compiled[rule.Name]
		if !ok {
			continue
		}
		v, err := EvalFloat(compiledExpr, env)
		if err != nil {
			out[rule.Name] = 0
			continue
		}
		if rule.ClampMax > rule.ClampMin {
			if v < rule.ClampMin {
				v = rule.ClampMin
			}
			if v > rule.ClampMax {
				v = rule.ClampMax
			}
		}
		if rule.Direction == domain.DirectionAvoid {
			v = -v
		}
		out[rule.Name] = v
	}
	return out
}
