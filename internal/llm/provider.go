// Package llm adapts natural-language preference parsing to an external
// model provider, generalizing ecoker-launchpad's internal/ai Provider
// interface: Send(ctx, message, systemPrompt) becomes Complete, and a
// single OpenAIProvider becomes a primary/secondary fallback ladder
// wrapped in circuit breakers, with response caching layered on top
// (spec.md §4.3/§9).
package llm

import "context"

// Provider abstracts one LLM backend capable of returning a single
// completion for a system+user prompt pair.
type Provider interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
	Name() string
}

// Method records which rung of the fallback ladder produced a result,
// carried alongside the parsed schema so callers can report it in
// ParseSource.ParserMethod.
type Method string

const (
	MethodPrimary   Method = "llm"
	MethodSecondary Method = "llm_fallback"
	MethodNone      Method = "rule_based"
)

// Result is what the ladder returns: the raw completion text plus which
// rung produced it, so a caller never has to inspect error types to
// learn the provenance.
type Result struct {
	Text   string
	Method Method
}
