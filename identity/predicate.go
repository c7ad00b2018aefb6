package identity

import (
	"reflect"
	"strings"

	"github.com/omtsf/omtsf-go/graph"
)

// IsAnnulledLEI reports whether the identifier is an LEI record carrying an
// ANNULLED registration status under its "entity_status" extra field. GLEIF
// annuls an LEI when the registration was issued in error, so an annulled LEI
// is not evidence that two records describe the same entity. Status codes are
// compared exactly as GLEIF publishes them, in upper case.
func IsAnnulledLEI(id graph.Identifier) bool {
	if id.Scheme != "lei" {
		return false
	}
	status, ok := id.Extra["entity_status"].(string)
	return ok && status == "ANNULLED"
}

// IdentifiersMatch reports whether two identifier records assert the same
// real-world identity:
//
//   - neither is internal-scheme (internal ids never cross file boundaries)
//   - neither is an annulled LEI (see IsAnnulledLEI)
//   - schemes equal, case-sensitive
//   - values equal after trimming surrounding whitespace, case-sensitive,
//     leading zeros significant
//   - authority present on both sides or on neither; when present, equal
//     case-insensitively
//   - validity windows temporally compatible
func IdentifiersMatch(a, b graph.Identifier) bool {
	if a.Scheme == "internal" || b.Scheme == "internal" {
		return false
	}
	if IsAnnulledLEI(a) || IsAnnulledLEI(b) {
		return false
	}
	if a.Scheme != b.Scheme {
		return false
	}
	if strings.TrimSpace(a.Value) != strings.TrimSpace(b.Value) {
		return false
	}
	if (a.Authority == "") != (b.Authority == "") {
		return false
	}
	if a.Authority != "" && !strings.EqualFold(a.Authority, b.Authority) {
		return false
	}
	return temporallyCompatible(a, b)
}

// temporallyCompatible assumes compatibility unless both records carry a
// fully closed validity window, in which case the windows must overlap.
func temporallyCompatible(a, b graph.Identifier) bool {
	if a.ValidFrom == nil || a.ValidTo == nil || b.ValidFrom == nil || b.ValidTo == nil {
		return true
	}
	return !a.ValidFrom.After(*b.ValidTo) && !b.ValidFrom.After(*a.ValidTo)
}

// NodesCandidate reports whether two nodes are merge candidates: they share
// at least one matching identifier pair.
func NodesCandidate(a, b graph.Node) bool {
	return len(MatchingCanonicals(a, b)) > 0
}

// MatchingCanonicals returns the canonical strings of the identifier pairs
// that bridge two nodes, in a-side order. The resolver surfaces these in
// oversized-group warnings.
func MatchingCanonicals(a, b graph.Node) []string {
	var bridges []string
	for _, idA := range a.Identifiers {
		for _, idB := range b.Identifiers {
			if IdentifiersMatch(idA, idB) {
				bridges = append(bridges, CanonicalString(idA))
				break
			}
		}
	}
	return bridges
}

// edgeIdentityEqual compares the type-specific merge-identity property
// subset of two edges of the same type. Temporal fields never participate.
func edgeIdentityEqual(a, b graph.Edge) bool {
	switch a.Type {
	case graph.EdgeSupplies:
		return a.Commodity == b.Commodity && a.ContractRef == b.ContractRef
	case graph.EdgeOwnership, graph.EdgeBeneficialOwnership:
		return floatPtrEqual(a.Percentage, b.Percentage)
	case graph.EdgeOperates, graph.EdgeAttests, graph.EdgeContains, graph.EdgeShipsTo:
		return true
	default:
		// Extension edge types compare their full scalar property view.
		return reflect.DeepEqual(a.Properties(), b.Properties())
	}
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func externalIdentifiers(e graph.Edge) []graph.Identifier {
	var out []graph.Identifier
	for _, id := range e.Identifiers {
		if id.Scheme != "internal" {
			out = append(out, id)
		}
	}
	return out
}

// EdgesMatch reports whether two edges are merge candidates, given the
// resolved representatives of their endpoints in a shared ordinal space.
// same_as edges are never candidates: every same_as assertion survives a
// merge as its own edge.
func EdgesMatch(srcRepA, tgtRepA, srcRepB, tgtRepB int, a, b graph.Edge) bool {
	if a.Type == graph.EdgeSameAs || b.Type == graph.EdgeSameAs {
		return false
	}
	if a.Type != b.Type {
		return false
	}
	if srcRepA != srcRepB || tgtRepA != tgtRepB {
		return false
	}

	extA := externalIdentifiers(a)
	extB := externalIdentifiers(b)
	switch {
	case len(extA) > 0 && len(extB) > 0:
		for _, idA := range extA {
			for _, idB := range extB {
				if IdentifiersMatch(idA, idB) {
					return true
				}
			}
		}
		return false
	case len(extA) == 0 && len(extB) == 0:
		return edgeIdentityEqual(a, b)
	default:
		return false
	}
}
