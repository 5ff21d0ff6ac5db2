// Package capability gates optional control-plane parameters on what the
// installed control-plane version actually advertises. The CLI underneath
// is versioned independently of this deployer, and passing a flag it does
// not know fails the whole invocation.
package capability

import (
	"context"
	"log/slog"
)

// FlagSet is the set of advertised flag names for one operation.
type FlagSet map[string]struct{}

func newFlagSet(names ...string) FlagSet {
	s := make(FlagSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Filter returns the candidates present in advertised, preserving candidate
// order.
func Filter(advertised FlagSet, candidates []string) []string {
	var supported []string
	for _, c := range candidates {
		if _, ok := advertised[c]; ok {
			supported = append(supported, c)
		}
	}
	return supported
}

// Source reports the advertised flag set for a control-plane operation.
// The production implementation scrapes the CLI's own help output; keeping
// it behind this interface lets a structured introspection API replace the
// scraping without touching callers.
type Source interface {
	AdvertisedFlags(ctx context.Context, operation string) (FlagSet, error)
}

// Probe filters candidate flags through a Source. It is built fresh per
// run and holds no cache: the external binary may have been upgraded
// between runs.
type Probe struct {
	source Source
	logger *slog.Logger
}

// NewProbe creates a probe over the given source.
func NewProbe(source Source, logger *slog.Logger) *Probe {
	if logger == nil {
		logger = slog.Default()
	}
	return &Probe{source: source, logger: logger.With("component", "capability")}
}

// SupportedFlags returns the subset of candidates the operation advertises.
// A failed introspection degrades to "nothing supported": the mandatory
// fields still go through, optional tuning is silently omitted.
func (p *Probe) SupportedFlags(ctx context.Context, operation string, candidates []string) []string {
	advertised, err := p.source.AdvertisedFlags(ctx, operation)
	if err != nil {
		p.logger.Warn("capability introspection failed, omitting optional parameters",
			"operation", operation,
			"error", err,
		)
		return nil
	}
	return Filter(advertised, candidates)
}
