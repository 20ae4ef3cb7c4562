package engine

import (
	"context"
	"fmt"
)

// ProbeFunc reports whether a candidate mirror is usable.
type ProbeFunc func(ctx context.Context, candidate string) bool

// Resolve probes candidates in configured order and returns the first that
// passes. Order is a preference ranking, so probing is sequential and stops
// at the first success.
func Resolve(ctx context.Context, candidates []string, probe ProbeFunc, r Reporter) (string, error) {
	if r == nil {
		r = NopReporter{}
	}
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		r.ProbeStarted(c)
		ok := probe(ctx, c)
		r.ProbeFinished(c, ok)
		if ok {
			return c, nil
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "", &Error{
		Kind: ErrNoProxyAvailable,
		Err:  fmt.Errorf("%d candidate(s) failed the probe", len(candidates)),
	}
}
