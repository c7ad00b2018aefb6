package identity

import (
	"strings"

	"github.com/omtsf/omtsf-go/graph"
)

// percentEncode escapes the characters that would break the colon-delimited
// canonical form: '%', ':', LF and CR.
func percentEncode(s string) string {
	if !strings.ContainsAny(s, "%:\n\r") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 6)
	for _, r := range s {
		switch r {
		case '%':
			b.WriteString("%25")
		case ':':
			b.WriteString("%3A")
		case '\n':
			b.WriteString("%0A")
		case '\r':
			b.WriteString("%0D")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CanonicalString renders the identifier's canonical form:
// "scheme:value", or "scheme:authority:value" for authority-required
// schemes, each component percent-encoded. Identical identifiers produce
// byte-identical canonical strings regardless of the serialization they
// arrived in, which is what makes sorting and hashing encoding-independent.
func CanonicalString(id graph.Identifier) string {
	scheme := percentEncode(id.Scheme)
	value := percentEncode(id.Value)
	if RequiresAuthority(id.Scheme) {
		return scheme + ":" + percentEncode(id.Authority) + ":" + value
	}
	return scheme + ":" + value
}

// SortIdentifiersCanonical orders identifiers by canonical string
// (lexicographic over UTF-8 bytes), the order mandated for merged
// identifier arrays.
func SortIdentifiersCanonical(ids []graph.Identifier) {
	sortByCanonical(ids)
}

func sortByCanonical(ids []graph.Identifier) {
	// Insertion sort keeps this allocation-free for the short identifier
	// arrays nodes carry in practice.
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && CanonicalString(ids[j]) < CanonicalString(ids[j-1]); j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
}

// BuildIdentifierIndex maps each canonical identifier string to the ordinals
// of the nodes carrying it. Internal-scheme identifiers are excluded: they
// never participate in cross-file identity. Annulled LEIs are excluded for
// the same reason (see IsAnnulledLEI).
//
// The index key is stricter than IdentifiersMatch: nodes share a bucket only
// when their canonical strings are byte-identical, so records differing by
// authority case or surrounding whitespace in the value land in separate
// buckets even though the pairwise predicate would accept them.
func BuildIdentifierIndex(nodes []graph.Node) map[string][]int {
	index := make(map[string][]int)
	for ordinal, node := range nodes {
		seen := make(map[string]struct{}, len(node.Identifiers))
		for _, id := range node.Identifiers {
			if id.Scheme == "internal" || IsAnnulledLEI(id) {
				continue
			}
			canonical := CanonicalString(id)
			if _, dup := seen[canonical]; dup {
				continue
			}
			seen[canonical] = struct{}{}
			index[canonical] = append(index[canonical], ordinal)
		}
	}
	return index
}
