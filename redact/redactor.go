package redact

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/omtsf/omtsf-go/boundary"
	"github.com/omtsf/omtsf-go/graph"
	"github.com/omtsf/omtsf-go/identity"
)

// Redactor produces scope-limited copies of graph files. Redactors are safe
// for concurrent use; every run builds its own state.
type Redactor struct {
	selector *Selector
	logger   *slog.Logger
	tracer   trace.Tracer
}

// Option configures a Redactor.
type Option func(*Redactor)

// WithSelector adds a CEL node selector; matching nodes are redacted even
// when the scope would admit them.
func WithSelector(s *Selector) Option {
	return func(r *Redactor) { r.selector = s }
}

// WithLogger sets the structured logger; defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Redactor) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTracerProvider enables span creation around redaction runs.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Redactor) {
		if tp != nil {
			r.tracer = tp.Tracer("github.com/omtsf/omtsf-go/redact")
		}
	}
}

// NewRedactor creates a redactor.
func NewRedactor(opts ...Option) *Redactor {
	r := &Redactor{logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Report summarizes one redaction run.
type Report struct {
	Scope              graph.DisclosureScope `json:"scope"`
	Salt               graph.FileSalt        `json:"salt"`
	RedactedNodes      int                   `json:"redacted_nodes"`
	DroppedIdentifiers int                   `json:"dropped_identifiers"`
	ClearedProperties  int                   `json:"cleared_properties"`
}

// ForScope returns a copy of the file safe for the target scope. The input
// is never mutated. Out-of-scope and selector-matched nodes become boundary
// references under their original ids, so every edge survives; identifiers
// and edge properties above the scope's ceiling are removed. The output
// carries the target scope and the salt used for boundary hashing.
func (r *Redactor) ForScope(ctx context.Context, f *graph.File, scope graph.DisclosureScope) (*graph.File, *Report, error) {
	if r.tracer != nil {
		var span trace.Span
		ctx, span = r.tracer.Start(ctx, "omtsf.redact")
		defer span.End()
	}
	_ = ctx

	if f == nil {
		return nil, nil, ErrNilInput
	}
	switch scope {
	case graph.ScopePublic, graph.ScopePartner, graph.ScopePrivate:
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownScope, scope)
	}
	if err := f.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	salt := f.FileSalt
	if salt == "" {
		fresh, err := boundary.NewSalt()
		if err != nil {
			return nil, nil, err
		}
		salt = fresh
	}

	report := &Report{Scope: scope, Salt: salt}

	outNodes := make([]graph.Node, 0, len(f.Nodes))
	for _, n := range f.Nodes {
		hide := !scope.Admits(NodeSensitivity(n))
		if !hide && r.selector != nil {
			matched, err := r.selector.Match(n)
			if err != nil {
				return nil, nil, err
			}
			hide = matched
		}
		if hide {
			ref, err := boundary.Redact(n, salt)
			if err != nil {
				return nil, nil, err
			}
			report.RedactedNodes++
			outNodes = append(outNodes, ref)
			continue
		}

		out := n.Clone()
		kept := out.Identifiers[:0]
		for _, id := range out.Identifiers {
			if scope.Admits(identity.EffectiveSensitivity(id, n.Type)) {
				kept = append(kept, id)
			} else {
				report.DroppedIdentifiers++
			}
		}
		out.Identifiers = kept
		if len(out.Identifiers) == 0 {
			out.Identifiers = nil
		}
		outNodes = append(outNodes, out)
	}

	outEdges := make([]graph.Edge, 0, len(f.Edges))
	for _, e := range f.Edges {
		out := e.Clone()
		for field := range out.Properties() {
			if !scope.Admits(EdgePropertySensitivity(out, field)) {
				out.ClearProperty(field)
				report.ClearedProperties++
			}
		}
		kept := out.Identifiers[:0]
		for _, id := range out.Identifiers {
			if scope.Admits(identity.EffectiveSensitivity(id, "")) {
				kept = append(kept, id)
			} else {
				report.DroppedIdentifiers++
			}
		}
		out.Identifiers = kept
		if len(out.Identifiers) == 0 {
			out.Identifiers = nil
		}
		// Below private, the override record itself names hidden fields.
		if scope != graph.ScopePrivate {
			delete(out.Extra, PropertySensitivityKey)
		}
		outEdges = append(outEdges, out)
	}

	out := f.Clone()
	out.Nodes = outNodes
	out.Edges = outEdges
	out.DisclosureScope = scope
	out.FileSalt = salt

	if err := out.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrPostRedactValidation, err)
	}

	r.logger.Debug("redaction complete",
		"scope", scope,
		"redacted_nodes", report.RedactedNodes,
		"dropped_identifiers", report.DroppedIdentifiers,
		"cleared_properties", report.ClearedProperties)

	return out, report, nil
}
