package update

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// UnmatchedNodePolicy controls what happens to base nodes the new export no
// longer mentions.
type UnmatchedNodePolicy string

const (
	// PolicyRetain keeps unmatched base nodes unchanged.
	PolicyRetain UnmatchedNodePolicy = "retain"

	// PolicyFlag adds a review label to unmatched base nodes.
	PolicyFlag UnmatchedNodePolicy = "flag"

	// PolicyExpire closes the validity window of unmatched base nodes, and
	// of their open-ended outbound edges, at the new file's snapshot date.
	PolicyExpire UnmatchedNodePolicy = "expire"
)

// Valid reports whether p names a defined policy.
func (p UnmatchedNodePolicy) Valid() bool {
	switch p {
	case PolicyRetain, PolicyFlag, PolicyExpire:
		return true
	}
	return false
}

// FlagLabelKey is the label key PolicyFlag attaches to unmatched base nodes.
const FlagLabelKey = "omtsf.review"

// FlagLabelValue is the label value PolicyFlag attaches.
const FlagLabelValue = "unmatched-in-update"

// Option configures an Engine.
type Option func(*Engine)

// WithUnmatchedNodePolicy sets the policy for base nodes absent from the
// new export (default PolicyRetain).
func WithUnmatchedNodePolicy(p UnmatchedNodePolicy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithLogger sets the structured logger; defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTracerProvider enables span creation around update runs.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) {
		if tp != nil {
			e.tracer = tp.Tracer("github.com/omtsf/omtsf-go/update")
		}
	}
}
