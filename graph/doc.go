// Package graph defines the parsed in-memory representation of an OMTSF
// supply-chain graph file: nodes, edges, identifier records, labels, and the
// file-level metadata the merge, update, and redaction engines operate on.
//
// The package is purely a data model. Serialization (JSON, CBOR, compression)
// is delegated to an external layer that produces and consumes these structs;
// unknown fields survive that round trip in the Extra maps carried by every
// record type.
//
// # Core Types
//
//   - File: one parsed export — header metadata plus node and edge slices
//   - Node: a typed entity (organization, facility, good, person, ...)
//   - Edge: a typed relationship between two file-local node ids
//   - Identifier: a scheme-qualified external or internal identifier record
//   - Label: a key/value tag attached to a node or edge
//   - CalendarDate, FileSalt: validated string newtypes
//
// # Building Nodes
//
// Nodes and edges use fluent builders:
//
//	node := graph.NewNode("n1", graph.NodeOrganization).
//	    WithName("Acme GmbH").
//	    WithJurisdiction("DE").
//	    WithIdentifier(graph.NewIdentifier("lei", "5493006MHB84DD0ZWV18"))
//
//	if err := node.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
// Validate checks the structural invariants the merge engine relies on:
// non-empty ids, well-formed temporal ranges, and no duplicate
// (scheme, value, authority) triples on a single node.
package graph
