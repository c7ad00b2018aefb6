package boundary

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/omtsf/omtsf-go/graph"
	"github.com/omtsf/omtsf-go/identity"
)

// OpaqueScheme is the identifier scheme carried by boundary reference nodes.
const OpaqueScheme = "opaque"

// NewSalt generates a fresh 32-byte file salt from the CSPRNG.
func NewSalt() (graph.FileSalt, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("salt generation: %w", err)
	}
	return graph.FileSalt(hex.EncodeToString(raw)), nil
}

// RandomToken returns 32 CSPRNG bytes as lowercase hex. It stands in for the
// content hash of a node without public identifiers, so that all-restricted
// entities never share a boundary value.
func RandomToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("token generation: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

// PublicCanonicals returns the sorted canonical strings of the node's
// identifiers whose effective sensitivity is public.
func PublicCanonicals(node graph.Node) []string {
	var out []string
	for _, id := range node.Identifiers {
		if identity.EffectiveSensitivity(id, node.Type) != graph.SensitivityPublic {
			continue
		}
		out = append(out, identity.CanonicalString(id))
	}
	sort.Strings(out)
	return out
}

// Hash computes the boundary value for a node under the given salt: the hex
// SHA-256 of the newline-joined public canonical strings followed by the raw
// salt bytes. A node with no public identifiers yields a random token.
func Hash(node graph.Node, salt graph.FileSalt) (string, error) {
	raw, err := salt.Bytes()
	if err != nil {
		return "", err
	}
	canonicals := PublicCanonicals(node)
	if len(canonicals) == 0 {
		return RandomToken()
	}
	h := sha256.New()
	h.Write([]byte(strings.Join(canonicals, "\n")))
	h.Write(raw)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Redact replaces a node with its boundary reference: a boundary_ref node
// under the same file-local id, carrying exactly one opaque identifier.
// Edges pointing at the node stay valid unchanged.
func Redact(node graph.Node, salt graph.FileSalt) (graph.Node, error) {
	value, err := Hash(node, salt)
	if err != nil {
		return graph.Node{}, err
	}
	return graph.NewNode(node.ID, graph.NodeBoundaryRef).
		WithIdentifier(graph.NewIdentifier(OpaqueScheme, value)), nil
}
