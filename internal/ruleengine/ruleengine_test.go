package ruleengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thehillman215/vectorbid/internal/apierrors"
	"github.com/thehillman215/vectorbid/internal/domain"
)

func testEnv(pairings []domain.Pairing, candidate domain.CandidateSchedule) *Env {
	byID := make(map[string]domain.Pairing, len(pairings))
	for _, p := range pairings {
		byID[p.PairingID] = p
	}
	return &Env{
		Context:   domain.ContextSnapshot{Month: "2026-08", Airline: "UAL"},
		Candidate: candidate,
		FAR117:    FAR117{MaxDutyMinutes: 900, MinRestMinutes: 600},
		Contract:  Contract{MinDaysOffPerMonth: 10},
		PairingByID: func(id string) (domain.Pairing, bool) {
			p, ok := byID[id]
			return p, ok
		},
	}
}

func TestCompileRejectsUnknownNamespace(t *testing.T) {
	_, err := Compile("foo.bar == 1")
	require.Error(t, err)
}

func TestCompileRejectsDisallowedFunction(t *testing.T) {
	_, err := Compile("exec(candidate.score)")
	require.Error(t, err)
}

func TestCompileRejectsPairingOutsideAggregate(t *testing.T) {
	_, err := Compile("pairing.has_red_eye == true")
	require.Error(t, err)
}

func TestEvalBoolSimpleComparison(t *testing.T) {
	c, err := Compile("context.seniority_percentile > 0.5")
	require.NoError(t, err)
	env := testEnv(nil, domain.CandidateSchedule{})
	env.Context.SeniorityPercentile = 0.8
	ok, err := EvalBool(c, env)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvalAggregateAny(t *testing.T) {
	c, err := Compile("any(pairing.has_red_eye)")
	require.NoError(t, err)
	pairings := []domain.Pairing{
		{PairingID: "p1", HasRedEye: false},
		{PairingID: "p2", HasRedEye: true},
	}
	env := testEnv(pairings, domain.CandidateSchedule{PairingIDs: []string{"p1", "p2"}})
	ok, err := EvalBool(c, env)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvalAggregateSumCredit(t *testing.T) {
	c, err := Compile("sum(pairing.credit_minutes) > 6000")
	require.NoError(t, err)
	pairings := []domain.Pairing{
		{PairingID: "p1", CreditMinutes: 3000},
		{PairingID: "p2", CreditMinutes: 4000},
	}
	env := testEnv(pairings, domain.CandidateSchedule{PairingIDs: []string{"p1", "p2"}})
	ok, err := EvalBool(c, env)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvalFloatScoreExpression(t *testing.T) {
	c, err := Compile("min(candidate.score, 100)")
	require.NoError(t, err)
	env := testEnv(nil, domain.CandidateSchedule{Score: 42})
	v, err := EvalFloat(c, env)
	require.NoError(t, err)
	assert.Equal(t, 42.0, v)
}

func TestEvalNeverPanicsOnTypeMismatch(t *testing.T) {
	c, err := Compile("context.airline + 1")
	require.NoError(t, err)
	env := testEnv(nil, domain.CandidateSchedule{})
	_, err = Eval(c, env)
	assert.Error(t, err)
}

func TestEvaluateHardAggregatesViolations(t *testing.T) {
	pack := &domain.RulePack{
		HardRules: []domain.HardRule{
			{ID: "no-red-eyes", Severity: domain.SeverityError, Check: "all(pairing.has_red_eye == false)"},
		},
	}
	compiledExpr, err := Compile("all(pairing.has_red_eye == false)")
	require.NoError(t, err)
	pack.Compiled = map[string]domain.CompiledExpr{"no-red-eyes": compiledExpr}

	pairings := []domain.Pairing{{PairingID: "p1", HasRedEye: true}}
	env := testEnv(pairings, domain.CandidateSchedule{PairingIDs: []string{"p1"}})

	violations := EvaluateHard(pack, env)
	require.Len(t, violations, 1)
	assert.Equal(t, "no-red-eyes", violations[0].RuleID)
}

func TestEvalInMembership(t *testing.T) {
	c, err := Compile(`context.base in ["SFO", "LAX"]`)
	require.NoError(t, err)
	env := testEnv(nil, domain.CandidateSchedule{})
	env.Context.Base = "LAX"
	ok, err := EvalBool(c, env)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvalNotInMembership(t *testing.T) {
	c, err := Compile(`context.base not_in ["SFO", "LAX"]`)
	require.NoError(t, err)
	env := testEnv(nil, domain.CandidateSchedule{})
	env.Context.Base = "ORD"
	ok, err := EvalBool(c, env)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCompileRejectsDisallowedNamespaceInsideListLiteral(t *testing.T) {
	_, err := Compile(`context.base in [foo.bar]`)
	require.Error(t, err)
}

func TestEvalDivisionByZeroYieldsExpressionError(t *testing.T) {
	c, err := Compile("candidate.score / 0")
	require.NoError(t, err)
	env := testEnv(nil, domain.CandidateSchedule{Score: 10})
	_, err = Eval(c, env)
	require.Error(t, err)
	pe, ok := apierrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apierrors.ExpressionError, pe.Kind)
}

func TestEvaluateHardSurfacesDivisionByZeroAsWarning(t *testing.T) {
	pack := &domain.RulePack{
		HardRules: []domain.HardRule{
			{ID: "bad-math", Severity: domain.SeverityError, Check: "candidate.score / 0 > 1"},
		},
	}
	compiledExpr, err := Compile("candidate.score / 0 > 1")
	require.NoError(t, err)
	pack.Compiled = map[string]domain.CompiledExpr{"bad-math": compiledExpr}

	env := testEnv(nil, domain.CandidateSchedule{Score: 10})
	violations := EvaluateHard(pack, env)
	require.Len(t, violations, 1)
	assert.Equal(t, domain.SeverityWarn, violations[0].Severity)
}

func TestScoreSoftClampsAndFlipsDirection(t *testing.T) {
	compiledExpr, err := Compile("candidate.score")
	require.NoError(t, err)
	pack := &domain.RulePack{
		SoftRules: []domain.SoftRule{
			{Name: "credit", Direction: domain.DirectionAvoid, ClampMin: 0, ClampMax: 10, Score: "candidate.score"},
		},
		Compiled: map[string]domain.CompiledExpr{"credit": compiledExpr},
	}
	env := testEnv(nil, domain.CandidateSchedule{Score: 50})
	breakdown := ScoreSoft(pack, env)
	assert.Equal(t, -10.0, breakdown["credit"])
}
