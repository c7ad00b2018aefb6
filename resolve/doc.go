// Package resolve groups pairwise merge candidates into merge groups via
// union-find and applies size-based safety thresholds to the result.
//
// The resolver is the structural basis of the merge engine's associativity:
// the partition it computes is the transitive closure of the candidate
// relation, and union-find guarantees the same partition regardless of the
// order pairs were discovered in.
//
// # Safety Thresholds
//
// Large merge groups usually mean an identifier is doing more bridging than
// it should (a shared VAT number across franchisees, a recycled DUNS).
// Group sizes map to warning tiers:
//
//	1-3 members   no action
//	4-9 members   SeverityWarning
//	10+ members   SeverityProminent (optionally a hard rejection)
//
// Both thresholds are configurable. Members linked into a group only through
// same_as edges count toward its size but not toward its warning tier.
//
// # same_as Policy
//
// same_as edges join groups only when their confidence meets the configured
// threshold; the default honors definite assertions only. WithSameAsIgnored
// disables same_as grouping entirely.
package resolve
