package identity

import (
	"fmt"

	"github.com/omtsf/omtsf-go/graph"
)

// ValidateIdentifier checks a single identifier record against the scheme
// table: record-level shape, required authority, scheme-specific value
// format, and check digits. Extension schemes pass through after the
// record-level checks.
func ValidateIdentifier(id graph.Identifier) error {
	if err := id.Validate(); err != nil {
		return err
	}

	scheme, known := LookupScheme(id.Scheme)
	if !known {
		return nil
	}

	if scheme.AuthorityRequired && id.Authority == "" {
		return fmt.Errorf("%w: scheme %q value %q", ErrMissingAuthority, id.Scheme, id.Value)
	}

	if scheme.pattern != nil && !scheme.pattern.MatchString(id.Value) {
		return fmt.Errorf("%w: scheme %q value %q does not match %s",
			ErrValueFormat, id.Scheme, id.Value, scheme.pattern)
	}

	if scheme.check != nil && !scheme.check(id.Value) {
		return fmt.Errorf("%w: scheme %q value %q", ErrCheckDigit, id.Scheme, id.Value)
	}

	return nil
}

// ValidateNodeIdentifiers validates every identifier record on a node,
// reporting the node id alongside the first failure.
func ValidateNodeIdentifiers(node graph.Node) error {
	for _, id := range node.Identifiers {
		if err := ValidateIdentifier(id); err != nil {
			return fmt.Errorf("node %q: %w", node.ID, err)
		}
	}
	return nil
}
