package ruleengine

import (
	"fmt"
	"time"

	"github.com/thehillman215/vectorbid/internal/apierrors"
	"github.com/thehillman215/vectorbid/internal/domain"
)

// FAR117 carries the regulatory constants a rule pack's expressions may
// read through the far117.* namespace. Values come from contract/config,
// not from this package, so a future revision of Part 117 never requires
// a code change here.
type FAR117 struct {
	MaxDutyMinutes          float64
	MinRestMinutes          float64
	MaxConsecutiveDutyDays  float64
}

// Contract carries carrier-specific work-rule constants for the
// contract.* namespace.
type Contract struct {
	MinDaysOffPerMonth   float64
	MaxConsecutiveDays   float64
}

// Stats carries pairing-level historical statistics for the stats.*
// namespace, looked up per pairing inside an aggregate.
type Stats struct {
	AwardProbability float64
}

// Env is the evaluation environment bound for one candidate schedule.
// PairingByID and StatsFor are injected so ruleengine stays independent
// of how packages/stats are stored.
type Env struct {
	Context   domain.ContextSnapshot
	Candidate domain.CandidateSchedule
	FAR117    FAR117
	Contract  Contract
	PairingByID func(id string) (domain.Pairing, bool)
	StatsFor    func(pairingID string) Stats
}

// pairingFrame shadows the "pairing" and "stats" namespaces while
// evaluating an aggregate's single argument once per candidate pairing.
type pairingFrame struct {
	pairing domain.Pairing
	stats   Stats
	active  bool
}

// Eval runs a compiled expression against env, returning a float64, bool,
// or string depending on the expression shape. It never panics: any
// internal inconsistency is converted to an ExpressionError so a
// malformed or unexpectedly-typed rule degrades to a logged warning, not
// a crash.
func Eval(c any, env *Env) (result any, err error) {
	cc, ok := c.(*compiled)
	if !ok {
		return nil, apierrors.NewExpressionError("ruleengine.Eval", "not a compiled expression", nil)
	}
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = apierrors.NewExpressionError("ruleengine.Eval", fmt.Sprintf("evaluation panic: %v", r), nil)
		}
	}()
	v, evalErr := evalNode(cc.root, env, pairingFrame{})
	if evalErr != nil {
		return nil, evalErr
	}
	return v, nil
}

// EvalBool runs Eval and coerces the result to bool, as required by
// HardRule.Check.
func EvalBool(c any, env *Env) (bool, error) {
	v, err := Eval(c, env)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, apierrors.NewExpressionError("ruleengine.EvalBool", "expression did not evaluate to a boolean", nil)
	}
	return b, nil
}

// EvalFloat runs Eval and coerces the result to float64, as required by
// SoftRule.Score.
func EvalFloat(c any, env *Env) (float64, error) {
	v, err := Eval(c, env)
	if err != nil {
		return 0, err
	}
	f, ok := asFloat(v)
	if !ok {
		return 0, apierrors.NewExpressionError("ruleengine.EvalFloat", "expression did not evaluate to a number", nil)
	}
	return f, nil
}

func evalNode(n node, env *Env, frame pairingFrame) (any, error) {
	switch v := n.(type) {
	case numberLit:
		return v.value, nil
	case stringLit:
		return v.value, nil
	case boolLit:
		return v.value, nil
	case listLit:
		items := make([]any, len(v.items))
		for i, item := range v.items {
			val, err := evalNode(item, env, frame)
			if err != nil {
				return nil, err
			}
			items[i] = val
		}
		return items, nil
	case selector:
		return resolveSelector(v.path, env, frame)
	case unaryExpr:
		return evalUnary(v, env, frame)
	case binaryExpr:
		return evalBinary(v, env, frame)
	case callExpr:
		return evalCall(v, env, frame)
	default:
		return nil, apierrors.NewExpressionError("ruleengine.evalNode", "unrecognized node", nil)
	}
}

func evalUnary(v unaryExpr, env *Env, frame pairingFrame) (any, error) {
	inner, err := evalNode(v.value, env, frame)
	if err != nil {
		return nil, err
	}
	switch v.op {
	case tokMinus:
		f, ok := asFloat(inner)
		if !ok {
			return nil, typeError("unary -")
		}
		return -f, nil
	case tokNot:
		b, ok := inner.(bool)
		if !ok {
			return nil, typeError("not")
		}
		return !b, nil
	default:
		return nil, typeError("unary")
	}
}

func evalBinary(v binaryExpr, env *Env, frame pairingFrame) (any, error) {
	// short-circuit and/or before evaluating the right side
	if v.op == tokAnd || v.op == tokOr {
		left, err := evalNode(v.left, env, frame)
		if err != nil {
			return nil, err
		}
		lb, ok := left.(bool)
		if !ok {
			return nil, typeError("logical operand")
		}
		if v.op == tokAnd && !lb {
			return false, nil
		}
		if v.op == tokOr && lb {
			return true, nil
		}
		right, err := evalNode(v.right, env, frame)
		if err != nil {
			return nil, err
		}
		rb, ok := right.(bool)
		if !ok {
			return nil, typeError("logical operand")
		}
		return rb, nil
	}

	left, err := evalNode(v.left, env, frame)
	if err != nil {
		return nil, err
	}
	right, err := evalNode(v.right, env, frame)
	if err != nil {
		return nil, err
	}

	switch v.op {
	case tokEq:
		return valuesEqual(left, right), nil
	case tokNeq:
		return !valuesEqual(left, right), nil
	case tokIn, tokNotIn:
		items, ok := right.([]any)
		if !ok {
			return nil, typeError("in: right operand must be a list")
		}
		member := false
		for _, item := range items {
			if valuesEqual(left, item) {
				member = true
				break
			}
		}
		if v.op == tokNotIn {
			return !member, nil
		}
		return member, nil
	case tokLt, tokLte, tokGt, tokGte:
		lf, lok := asFloat(left)
		rf, rok := asFloat(right)
		if !lok || !rok {
			return nil, typeError("comparison")
		}
		switch v.op {
		case tokLt:
			return lf < rf, nil
		case tokLte:
			return lf <= rf, nil
		case tokGt:
			return lf > rf, nil
		default:
			return lf >= rf, nil
		}
	case tokPlus, tokMinus, tokStar, tokSlash:
		lf, lok := asFloat(left)
		rf, rok := asFloat(right)
		if !lok || !rok {
			return nil, typeError("arithmetic")
		}
		switch v.op {
		case tokPlus:
			return lf + rf, nil
		case tokMinus:
			return lf - rf, nil
		case tokStar:
			return lf * rf, nil
		default:
			if rf == 0 {
				return nil, divisionByZero()
			}
			return lf / rf, nil
		}
	default:
		return nil, typeError("binary")
	}
}

func evalCall(v callExpr, env *Env, frame pairingFrame) (any, error) {
	if aggregateFunctions[v.name] {
		return evalAggregate(v, env)
	}
	args := make([]any, len(v.args))
	for i, a := range v.args {
		val, err := evalNode(a, env, frame)
		if err != nil {
			return nil, err
		}
		args[i] = val
	}
	switch v.name {
	case "min":
		a, aok := asFloat(args[0])
		b, bok := asFloat(args[1])
		if !aok || !bok {
			return nil, typeError("min")
		}
		if a < b {
			return a, nil
		}
		return b, nil
	case "max":
		a, aok := asFloat(args[0])
		b, bok := asFloat(args[1])
		if !aok || !bok {
			return nil, typeError("max")
		}
		if a > b {
			return a, nil
		}
		return b, nil
	case "between":
		x, xok := asFloat(args[0])
		lo, lok := asFloat(args[1])
		hi, hok := asFloat(args[2])
		if !xok || !lok || !hok {
			return nil, typeError("between")
		}
		return x >= lo && x <= hi, nil
	case "dow":
		s, ok := args[0].(string)
		if !ok {
			return nil, typeError("dow")
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			t, err = time.Parse("2006-01-02", s)
			if err != nil {
				return nil, typeError("dow: unparseable date")
			}
		}
		return float64(t.Weekday()), nil
	case "hours_between":
		s1, ok1 := args[0].(string)
		s2, ok2 := args[1].(string)
		if !ok1 || !ok2 {
			return nil, typeError("hours_between")
		}
		t1, e1 := time.Parse(time.RFC3339, s1)
		t2, e2 := time.Parse(time.RFC3339, s2)
		if e1 != nil || e2 != nil {
			return nil, typeError("hours_between: unparseable timestamp")
		}
		return t2.Sub(t1).Hours(), nil
	default:
		return nil, apierrors.NewExpressionError("ruleengine.evalCall", "unreachable: unknown function "+v.name, nil)
	}
}

// evalAggregate evaluates sum/any/all/count over the candidate's
// pairings, binding "pairing" and "stats" to the current one each
// iteration.
func evalAggregate(v callExpr, env *Env) (any, error) {
	switch v.name {
	case "sum":
		var total float64
		err := forEachPairing(env, func(frame pairingFrame) error {
			val, err := evalNode(v.args[0], env, frame)
			if err != nil {
				return err
			}
			f, ok := asFloat(val)
			if !ok {
				return typeError("sum body")
			}
			total += f
			return nil
		})
		return total, err
	case "count":
		var total float64
		err := forEachPairing(env, func(frame pairingFrame) error {
			val, err := evalNode(v.args[0], env, frame)
			if err != nil {
				return err
			}
			b, ok := val.(bool)
			if !ok {
				return typeError("count body")
			}
			if b {
				total++
			}
			return nil
		})
		return total, err
	case "any":
		found := false
		err := forEachPairing(env, func(frame pairingFrame) error {
			if found {
				return nil
			}
			val, err := evalNode(v.args[0], env, frame)
			if err != nil {
				return err
			}
			b, ok := val.(bool)
			if !ok {
				return typeError("any body")
			}
			if b {
				found = true
			}
			return nil
		})
		return found, err
	case "all":
		all := true
		err := forEachPairing(env, func(frame pairingFrame) error {
			val, err := evalNode(v.args[0], env, frame)
			if err != nil {
				return err
			}
			b, ok := val.(bool)
			if !ok {
				return typeError("all body")
			}
			if !b {
				all = false
			}
			return nil
		})
		return all, err
	default:
		return nil, typeError("aggregate")
	}
}

func forEachPairing(env *Env, f func(frame pairingFrame) error) error {
	for _, id := range env.Candidate.PairingIDs {
		p, ok := env.PairingByID(id)
		if !ok {
			continue
		}
		st := Stats{}
		if env.StatsFor != nil {
			st = env.StatsFor(id)
		}
		if err := f(pairingFrame{pairing: p, stats: st, active: true}); err != nil {
			return err
		}
	}
	return nil
}

func resolveSelector(path []string, env *Env, frame pairingFrame) (any, error) {
	switch path[0] {
	case "context":
		return resolveContext(path[1:], env.Context)
	case "candidate":
		return resolveCandidate(path[1:], env.Candidate)
	case "pairing":
		if !frame.active {
			return nil, apierrors.NewExpressionError("ruleengine.resolveSelector", "pairing.* referenced outside aggregate", nil)
		}
		return resolvePairing(path[1:], frame.pairing)
	case "far117":
		return resolveFAR117(path[1:], env.FAR117)
	case "contract":
		return resolveContract(path[1:], env.Contract)
	case "stats":
		if !frame.active {
			return nil, apierrors.NewExpressionError("ruleengine.resolveSelector", "stats.* referenced outside aggregate", nil)
		}
		return resolveStats(path[1:], frame.stats)
	default:
		return nil, apierrors.NewExpressionError("ruleengine.resolveSelector", "unknown namespace: "+path[0], nil)
	}
}

func resolveContext(field []string, c domain.ContextSnapshot) (any, error) {
	if len(field) != 1 {
		return nil, typeError("context selector")
	}
	switch field[0] {
	case "seniority_percentile":
		return c.SeniorityPercentile, nil
	case "month":
		return c.Month, nil
	case "airline":
		return c.Airline, nil
	case "base":
		return c.Base, nil
	case "seat":
		return string(c.Seat), nil
	default:
		return nil, unknownField("context", field[0])
	}
}

func resolveCandidate(field []string, c domain.CandidateSchedule) (any, error) {
	if len(field) != 1 {
		return nil, typeError("candidate selector")
	}
	switch field[0] {
	case "score":
		return c.Score, nil
	case "hard_ok":
		return c.HardOK, nil
	case "pairing_count":
		return float64(len(c.PairingIDs)), nil
	default:
		return nil, unknownField("candidate", field[0])
	}
}

func resolvePairing(field []string, p domain.Pairing) (any, error) {
	if len(field) != 1 {
		return nil, typeError("pairing selector")
	}
	switch field[0] {
	case "credit_minutes":
		return float64(p.CreditMinutes), nil
	case "block_minutes":
		return float64(p.BlockMinutes), nil
	case "days":
		return float64(p.Days), nil
	case "includes_weekend":
		return p.IncludesWeekend, nil
	case "has_red_eye":
		return p.HasRedEye, nil
	case "equipment":
		return p.Equipment, nil
	case "report_hour":
		return float64(p.ReportHour()), nil
	default:
		return nil, unknownField("pairing", field[0])
	}
}

func resolveFAR117(field []string, f FAR117) (any, error) {
	if len(field) != 1 {
		return nil, typeError("far117 selector")
	}
	switch field[0] {
	case "max_duty_minutes":
		return f.MaxDutyMinutes, nil
	case "min_rest_minutes":
		return f.MinRestMinutes, nil
	case "max_consecutive_duty_days":
		return f.MaxConsecutiveDutyDays, nil
	default:
		return nil, unknownField("far117", field[0])
	}
}

func resolveContract(field []string, c Contract) (any, error) {
	if len(field) != 1 {
		return nil, typeError("contract selector")
	}
	switch field[0] {
	case "min_days_off_per_month":
		return c.MinDaysOffPerMonth, nil
	case "max_consecutive_days":
		return c.MaxConsecutiveDays, nil
	default:
		return nil, unknownField("contract", field[0])
	}
}

func resolveStats(field []string, s Stats) (any, error) {
	if len(field) != 1 {
		return nil, typeError("stats selector")
	}
	switch field[0] {
	case "award_probability":
		return s.AwardProbability, nil
	default:
		return nil, unknownField("stats", field[0])
	}
}

func asFloat(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

func valuesEqual(a, b any) bool {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		return af == bf
	}
	return a == b
}

func typeError(where string) error {
	return apierrors.NewExpressionError("ruleengine.eval", "type error in "+where, nil)
}

func divisionByZero() error {
	return apierrors.NewExpressionError("ruleengine.eval", "division by zero", nil)
}

func unknownField(ns, field string) error {
	return apierrors.NewExpressionError("ruleengine.eval", "unknown field "+ns+"."+field, nil)
}
