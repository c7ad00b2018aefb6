// Package boundary computes boundary references: privacy-preserving stub
// nodes that replace redacted entities while keeping the graph connected.
//
// A redacted node becomes a boundary_ref node with a single opaque-scheme
// identifier. Its value is the hex SHA-256 of the node's public identifiers
// in sorted canonical form, joined by newlines and salted with the file's
// 32-byte salt. Two nodes with the same public identifiers therefore hash
// identically within one file, while the same entity redacted under two
// different salts produces unlinkable values. A node with no public
// identifiers gets a random token instead of a content hash, so that
// all-restricted entities never collide onto one value.
//
// SaltStore holds per-disclosure-scope salts for producers that must redact
// consistently across a file set. MemorySaltStore serves tests and
// single-process use; EtcdStore shares salts between cooperating producers.
package boundary
