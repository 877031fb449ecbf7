package domain

// Severity is how seriously a hard-rule violation should be treated.
type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warn"
)

// HardRule is a side-effect-free boolean expression over the restricted
// namespace (context, candidate, pairing, far117, contract, stats). The
// Check field holds source text; RulePack.Compiled holds the parsed AST
// keyed by rule ID so evaluation never re-parses (spec.md §9: "parsing
// happens once at rule-pack load").
type HardRule struct {
	ID          string
	Description string
	Severity    Severity
	Check       string
}

// SoftRule declares a named, weighted scoring dimension.
type SoftRule struct {
	Name        string
	Description string
	Score       string // expression yielding a real number
	Weight      float64
	Direction   Direction
	ClampMin    float64
	ClampMax    float64
}

// ExpressionDialect names the grammar version a rule pack was authored
// against, so a future grammar revision can be validated against old
// packs before they are trusted.
type ExpressionDialect string

const DialectV1 ExpressionDialect = "v1"

// RulePackMeta carries pack-level metadata outside the rule lists.
type RulePackMeta struct {
	ExpressionDialect ExpressionDialect
}

// RulePack is a versioned, airline-scoped bundle of hard and soft rules.
// Once loaded it is read-only and shared across requests; callers never
// mutate a RulePack in place.
type RulePack struct {
	Version    string
	Airline    string
	Month      string
	HardRules  []HardRule
	SoftRules  []SoftRule
	Meta       RulePackMeta

	// Compiled holds the parsed, allowlist-checked expression for each
	// hard/soft rule, indexed by rule ID / soft-rule name. Populated once
	// at load time by the evaluator's compiler.
	Compiled map[string]CompiledExpr
}

// CompiledExpr is an opaque parsed-and-validated expression handle. The
// ruleengine package is the only place that knows its concrete shape;
// domain only needs to carry it through.
type CompiledExpr any
