package ruleengine

import (
	"github.com/thehillman215/vectorbid/internal/apierrors"
)

// allowedFunctions is the closed set of callables a rule pack may invoke.
// sum/any/all/count are aggregates over the candidate's pairings and bind
// the "pairing" namespace for the duration of their single argument;
// min/max/dow/between/hours_between are plain scalar functions.
var allowedFunctions = map[string]int{
	"sum":           1,
	"any":           1,
	"all":           1,
	"count":         1,
	"min":           2,
	"max":           2,
	"dow":           1,
	"between":       3,
	"hours_between": 2,
}

var aggregateFunctions = map[string]bool{
	"sum": true, "any": true, "all": true, "count": true,
}

// namespaces is the closed set of first path segments a selector may use.
var namespaces = map[string]bool{
	"context":   true,
	"candidate": true,
	"pairing":   true,
	"far117":    true,
	"contract":  true,
	"stats":     true,
}

// compiled is the concrete shape behind domain.CompiledExpr: a validated
// AST plus the source it was parsed from, for diagnostics.
type compiled struct {
	source string
	root   node
}

// Compile parses and allowlist-checks source, returning an opaque handle
// suitable for storage in a domain.RulePack.Compiled map. It is called
// exactly once per rule, at rule-pack load time; Eval never re-parses.
func Compile(source string) (any, error) {
	root, err := parseExpr(source)
	if err != nil {
		return nil, apierrors.NewBadInput("ruleengine.Compile", "malformed expression: "+err.Error())
	}
	if err := validate(root, 0); err != nil {
		return nil, apierrors.NewBadInput("ruleengine.Compile", "disallowed expression: "+err.Error())
	}
	return &compiled{source: source, root: root}, nil
}

// validate walks the AST rejecting any selector outside the six known
// namespaces, any call to a function outside allowedFunctions, any call
// with the wrong arity, and any "pairing.*" selector reached outside an
// aggregate's argument subtree (aggregateDepth tracks nesting).
func validate(n node, aggregateDepth int) error {
	switch v := n.(type) {
	case numberLit, stringLit, boolLit:
		return nil
	case listLit:
		for _, item := range v.items {
			if err := validate(item, aggregateDepth); err != nil {
				return err
			}
		}
		return nil
	case selector:
		ns := v.path[0]
		if !namespaces[ns] {
			return unknownNamespace(ns)
		}
		if ns == "pairing" && aggregateDepth == 0 {
			return pairingOutsideAggregate()
		}
		return nil
	case unaryExpr:
		return validate(v.value, aggregateDepth)
	case binaryExpr:
		if err := validate(v.left, aggregateDepth); err != nil {
			return err
		}
		return validate(v.right, aggregateDepth)
	case callExpr:
		arity, ok := allowedFunctions[v.name]
		if !ok {
			return disallowedFunction(v.name)
		}
		if len(v.args) != arity {
			return wrongArity(v.name, arity, len(v.args))
		}
		nextDepth := aggregateDepth
		if aggregateFunctions[v.name] {
			nextDepth++
		}
		for _, a := range v.args {
			if err := validate(a, nextDepth); err != nil {
				return err
			}
		}
		return nil
	default:
		return unknownNode()
	}
}

func unknownNamespace(ns string) error  { return &syntaxError{msg: "unknown namespace: " + ns} }
func disallowedFunction(n string) error { return &syntaxError{msg: "function not allowed: " + n} }
func unknownNode() error                { return &syntaxError{msg: "unrecognized expression node"} }
func pairingOutsideAggregate() error {
	return &syntaxError{msg: "pairing.* may only be used inside sum/any/all/count"}
}

func wrongArity(name string, want, got int) error {
	if want == got {
		return nil
	}
	return &syntaxError{msg: name + " expects a fixed number of arguments"}
}
