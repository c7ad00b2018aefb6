// Package identity implements the identifier model and the merge-candidate
// predicates: the scheme table, canonical string form, check-digit and format
// validation, default sensitivity classification, and the pairwise matching
// rules for identifiers, nodes, and edges.
//
// # Scheme Table
//
// Known schemes (lei, duns, gln, nat-reg, vat, internal) carry format
// validators, an authority-required flag, and a default sensitivity.
// Reverse-domain extension schemes (anything containing a dot, e.g.
// "com.example.sku") pass through as opaque records: no format validation,
// public default sensitivity. The table is static configuration; there is no
// runtime registry mutation.
//
// # Canonical String Form
//
// CanonicalString renders an identifier as "scheme:value", or
// "scheme:authority:value" for authority-required schemes, with '%', ':',
// CR and LF percent-encoded inside each component:
//
//	graph.NewIdentifier("nat-reg", "HRB:86891").WithAuthority("RA000548")
//	// canonical form: "nat-reg:RA000548:HRB%3A86891"
//
// Canonical strings drive identifier-array sorting, boundary-reference
// hashing, and the shared-identifier index used by the merge engine.
//
// # Match Predicates
//
// IdentifiersMatch decides whether two identifier records assert the same
// real-world identity: equal scheme (case-sensitive, never "internal"),
// equal trimmed value (case-sensitive, leading zeros significant), authority
// present on both sides or neither (case-insensitive comparison), and
// temporally compatible validity windows. NodesCandidate and EdgesMatch lift
// this to whole nodes and edges.
package identity
