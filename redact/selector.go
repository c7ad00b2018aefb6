package redact

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/omtsf/omtsf-go/graph"
)

// Selector is a compiled CEL expression choosing nodes for redaction beyond
// the scope rules. The expression sees four variables:
//
//	type         string                 node type tag
//	name         string                 display name, empty when unset
//	jurisdiction string                 ISO 3166-1 alpha-2 code, empty when unset
//	labels       map(string, string)    the node's labels, last value per key
//
// Example: `type == "facility" && jurisdiction == "DE"`.
//
// Thread-safety: a compiled Selector is safe for concurrent use.
type Selector struct {
	expr    string
	program cel.Program
}

// NewSelector compiles a CEL expression into a node selector. The expression
// must evaluate to a boolean.
func NewSelector(expr string) (*Selector, error) {
	env, err := cel.NewEnv(
		cel.Variable("type", cel.StringType),
		cel.Variable("name", cel.StringType),
		cel.Variable("jurisdiction", cel.StringType),
		cel.Variable("labels", cel.MapType(cel.StringType, cel.StringType)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSelector, err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSelector, issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("%w: expression yields %s, want bool",
			ErrInvalidSelector, ast.OutputType())
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSelector, err)
	}
	return &Selector{expr: expr, program: program}, nil
}

// Match evaluates the selector against one node.
func (s *Selector) Match(n graph.Node) (bool, error) {
	labels := make(map[string]string, len(n.Labels))
	for _, l := range n.Labels {
		labels[l.Key] = l.Value
	}
	out, _, err := s.program.Eval(map[string]any{
		"type":         string(n.Type),
		"name":         n.Name,
		"jurisdiction": n.Jurisdiction,
		"labels":       labels,
	})
	if err != nil {
		return false, fmt.Errorf("%w: node %q: %v", ErrSelectorEval, n.ID, err)
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w: node %q: non-boolean result", ErrSelectorEval, n.ID)
	}
	return matched, nil
}

// String returns the source expression.
func (s *Selector) String() string { return s.expr }
