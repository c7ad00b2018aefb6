// Package update implements same-origin update: directional reconciliation
// of a new export against a prior export from the same source system.
//
// Unlike the cross-file merge, matching here is non-transitive and keyed on
// internal-scheme identifiers: a node in the new export matches at most one
// node in the base via a shared internal identifier with equal authority
// (case-insensitive) and equal value (case-sensitive). An ambiguous match —
// several base nodes carrying the same internal identifier, or several new
// nodes claiming one base node — is never resolved arbitrarily: the engine
// emits a warning and treats the new node as an insert.
//
// For matched pairs the new export wins: its property values overwrite the
// base's, with every replaced value preserved in the node's "_conflicts"
// record. Identifier arrays are strictly additive — a base identifier absent
// from the new export (an enrichment, say) always survives — and the output
// node keeps the base node's file-local id, so downstream references stay
// stable across re-imports.
//
// Base nodes absent from the new export follow the configured
// UnmatchedNodePolicy:
//
//	PolicyRetain  keep unchanged (default)
//	PolicyFlag    add a review label
//	PolicyExpire  close the node's validity window, and the windows of its
//	              still-open outbound edges, at the new export's snapshot date
//
// Update is idempotent (update(B, B) reproduces B) and directional
// (update(B, N) generally differs from update(N, B)).
package update
