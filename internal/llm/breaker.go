package llm

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"github.com/thehillman215/vectorbid/internal/apierrors"
)

// Ladder is the primary -> secondary -> (caller falls back to
// rule-based) provider chain, each rung guarded by its own circuit
// breaker so a sustained outage on one provider stops sending it traffic
// instead of paying its timeout on every request (spec.md §4.3).
type Ladder struct {
	primary   *breakered
	secondary *breakered
}

type breakered struct {
	provider Provider
	cb       *gobreaker.CircuitBreaker
}

func newBreakered(p Provider) *breakered {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        p.Name(),
		MaxRequests: 2,
		Interval:    30 * time.Second,
		Timeout:     20 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	return &breakered{provider: p, cb: cb}
}

func (b *breakered) complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.provider.Complete(ctx, systemPrompt, userMessage)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// NewLadder wires a primary and secondary provider into one fallback
// chain. Either may be nil, in which case that rung is skipped.
func NewLadder(primary, secondary Provider) *Ladder {
	l := &Ladder{}
	if primary != nil {
		l.primary = newBreakered(primary)
	}
	if secondary != nil {
		l.secondary = newBreakered(secondary)
	}
	return l
}

// Complete tries primary then secondary, returning the first success
// along with which rung produced it. If both fail (or are absent), it
// returns an Upstream error; the caller is expected to fall back to a
// rule-based parse rather than treat this as a request failure.
func (l *Ladder) Complete(ctx context.Context, systemPrompt, userMessage string) (Result, error) {
	if l.primary != nil {
		text, err := l.primary.complete(ctx, systemPrompt, userMessage)
		if err == nil {
			return Result{Text: text, Method: MethodPrimary}, nil
		}
	}
	if l.secondary != nil {
		text, err := l.secondary.complete(ctx, systemPrompt, userMessage)
		if err == nil {
			return Result{Text: text, Method: MethodSecondary}, nil
		}
	}
	return Result{}, apierrors.NewUpstream("llm.Ladder.Complete", "primary and secondary providers both unavailable", nil)
}
