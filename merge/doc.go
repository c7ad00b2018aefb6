// Package merge implements the n-way graph merge engine: it combines
// independently produced supply-chain graph files into one file in which
// every real-world entity appears exactly once.
//
// # Contract
//
// Merge is commutative, associative, and idempotent up to file-local id
// renaming: the node, edge, identifier, label, and property sets of the
// output do not depend on input order, grouping, or repetition. The engine
// guarantees this by sorting its inputs by a content fingerprint before any
// order-sensitive decision, resolving groups with union-find (order-free
// transitive closure), and assigning output ids from a canonical ordering of
// the merged groups.
//
// # Pipeline
//
//  1. Concatenate all nodes, remembering each node's source file. File-local
//     ids from different files never collide: nodes are addressed by ordinal.
//  2. Index non-internal identifiers by canonical string and run the
//     identity predicate over each index bucket to collect candidate pairs.
//  3. Feed same_as edges that meet the configured confidence threshold into
//     the same candidate set, then resolve merge groups via the resolver,
//     collecting oversized-group warnings.
//  4. Merge each group into one node: identifiers unioned and sorted by
//     canonical string, labels set-unioned, scalar properties compared
//     value-wise. Divergent values keep the first source's value (inputs are
//     fingerprint-sorted, so "first" is order-independent) and record every
//     distinct (value, source) pair under the node's "_conflicts" entry.
//  5. Rewrite edge endpoints to merged node ids, partition edges with the
//     edge identity predicate, and merge duplicates the same way. Temporal
//     fields never participate in edge identity. same_as edges are copied
//     through unmerged.
//  6. Re-validate the assembled file and fail rather than emit output that
//     violates a structural invariant.
//
// A supplies-edge tier is relative to each source's reporting entity, so
// cross-source tier disagreement is expected: the primary source's tier
// stays live and the rest land in the conflict record like any other
// divergent property.
//
// # Usage
//
//	engine := merge.NewEngine()
//	merged, meta, warnings, err := engine.Merge(ctx, fileA, fileB, fileC)
package merge
