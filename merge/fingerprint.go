package merge

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/omtsf/omtsf-go/graph"
	"github.com/omtsf/omtsf-go/identity"
)

// Fingerprint computes a content fingerprint of a file that is independent
// of node and edge ordering. The engine sorts its inputs by fingerprint so
// that every "first source wins" decision is independent of argument order,
// which is what makes conflict attribution commutative.
func Fingerprint(f *graph.File) string {
	h := sha256.New()

	nodeDigests := make([]string, 0, len(f.Nodes))
	for _, n := range f.Nodes {
		nodeDigests = append(nodeDigests, nodeDigest(n))
	}
	sort.Strings(nodeDigests)
	for _, d := range nodeDigests {
		h.Write([]byte(d))
		h.Write([]byte{0})
	}

	edgeDigests := make([]string, 0, len(f.Edges))
	for _, e := range f.Edges {
		edgeDigests = append(edgeDigests, edgeDigest(e))
	}
	sort.Strings(edgeDigests)
	for _, d := range edgeDigests {
		h.Write([]byte(d))
		h.Write([]byte{1})
	}

	return hex.EncodeToString(h.Sum(nil))
}

func nodeDigest(n graph.Node) string {
	parts := []string{"node", n.ID, string(n.Type)}
	canonicals := make([]string, 0, len(n.Identifiers))
	for _, id := range n.Identifiers {
		canonicals = append(canonicals, identity.CanonicalString(id))
	}
	sort.Strings(canonicals)
	parts = append(parts, canonicals...)
	parts = append(parts, propsDigest(n.Properties()))
	return joinDigest(parts)
}

func edgeDigest(e graph.Edge) string {
	parts := []string{"edge", e.ID, string(e.Type), e.Source, e.Target}
	canonicals := make([]string, 0, len(e.Identifiers))
	for _, id := range e.Identifiers {
		canonicals = append(canonicals, identity.CanonicalString(id))
	}
	sort.Strings(canonicals)
	parts = append(parts, canonicals...)
	parts = append(parts, propsDigest(e.Properties()))
	return joinDigest(parts)
}

func propsDigest(props map[string]any) string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := ""
	for _, k := range keys {
		out += fmt.Sprintf("%s=%v;", k, props[k])
	}
	return out
}

func joinDigest(parts []string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0x1f})
	}
	return hex.EncodeToString(h.Sum(nil))
}
