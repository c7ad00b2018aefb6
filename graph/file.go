package graph

import "fmt"

// File is one parsed OMTSF export: header metadata plus the node and edge
// sets. Engines treat input files as immutable and build fresh output files.
type File struct {
	SpecVersion     string          `json:"spec_version,omitempty"`
	SnapshotDate    *CalendarDate   `json:"snapshot_date,omitempty"`
	ReportingEntity string          `json:"reporting_entity,omitempty"`
	DisclosureScope DisclosureScope `json:"disclosure_scope,omitempty"`
	FileSalt        FileSalt        `json:"file_salt,omitempty"`

	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	// Extra preserves unknown header fields for round-trip fidelity.
	Extra map[string]any `json:"-"`
}

// NewFile creates an empty file.
func NewFile() *File { return &File{} }

// WithNode appends nodes and returns the file for chaining.
func (f *File) WithNode(nodes ...Node) *File {
	f.Nodes = append(f.Nodes, nodes...)
	return f
}

// WithEdge appends edges and returns the file for chaining.
func (f *File) WithEdge(edges ...Edge) *File {
	f.Edges = append(f.Edges, edges...)
	return f
}

// Node returns the node with the given file-local id, or false.
func (f *File) Node(id string) (Node, bool) {
	for _, n := range f.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Validate checks the file's structural invariants: every node and edge
// validates individually, node ids are unique within the file, and every
// edge endpoint resolves to a node in the file.
//
// These are the invariants the merge engine re-checks on its own output
// before returning it.
func (f *File) Validate() error {
	ids := make(map[string]struct{}, len(f.Nodes))
	for _, n := range f.Nodes {
		if err := n.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidFile, err)
		}
		if _, dup := ids[n.ID]; dup {
			return fmt.Errorf("%w: duplicate node id %q", ErrInvalidFile, n.ID)
		}
		ids[n.ID] = struct{}{}
	}
	for _, e := range f.Edges {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidFile, err)
		}
		if _, ok := ids[e.Source]; !ok {
			return fmt.Errorf("%w: edge %q source %q not in file", ErrInvalidFile, e.ID, e.Source)
		}
		if _, ok := ids[e.Target]; !ok {
			return fmt.Errorf("%w: edge %q target %q not in file", ErrInvalidFile, e.ID, e.Target)
		}
	}
	return nil
}

// Clone returns a deep copy of the file.
func (f *File) Clone() *File {
	out := *f
	out.SnapshotDate = cloneDate(f.SnapshotDate)
	out.Nodes = make([]Node, len(f.Nodes))
	for i, n := range f.Nodes {
		out.Nodes[i] = n.Clone()
	}
	out.Edges = make([]Edge, len(f.Edges))
	for i, e := range f.Edges {
		out.Edges[i] = e.Clone()
	}
	out.Extra = cloneExtra(f.Extra)
	return &out
}
