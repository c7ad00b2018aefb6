package graph

import (
	"fmt"
	"sort"
)

// Node is a typed entity in a supply-chain graph. The ID is file-local and
// opaque: it identifies the node within one file only, never across files.
// Cross-file identity is established exclusively through identifier records.
type Node struct {
	ID   string   `json:"id"`
	Type NodeType `json:"type"`

	Identifiers []Identifier `json:"identifiers,omitempty"`

	// Universal optional properties.
	Name         string         `json:"name,omitempty"`
	Jurisdiction string         `json:"jurisdiction,omitempty"`
	Status       string         `json:"status,omitempty"`
	ValidFrom    *CalendarDate  `json:"valid_from,omitempty"`
	ValidTo      *CalendarDate  `json:"valid_to,omitempty"`
	DataQuality  *DataQuality   `json:"data_quality,omitempty"`
	Labels       []Label        `json:"labels,omitempty"`

	// Facility properties.
	Operator string         `json:"operator,omitempty"`
	Address  string         `json:"address,omitempty"`
	Geo      map[string]any `json:"geo,omitempty"`

	// Good / consignment properties.
	CommodityCode string `json:"commodity_code,omitempty"`
	Unit          string `json:"unit,omitempty"`

	// Person properties.
	Role string `json:"role,omitempty"`

	// Extra preserves unknown fields for round-trip fidelity. Keys starting
	// with an underscore are reserved for engine annotations (_conflicts).
	Extra map[string]any `json:"-"`
}

// NewNode creates a node with the given file-local id and type.
//
// Example:
//
//	n := graph.NewNode("n1", graph.NodeOrganization).
//	    WithName("Acme GmbH").
//	    WithIdentifier(graph.NewIdentifier("lei", "5493006MHB84DD0ZWV18"))
func NewNode(id string, nodeType NodeType) Node {
	return Node{ID: id, Type: nodeType}
}

// WithName sets the display name.
func (n Node) WithName(name string) Node {
	n.Name = name
	return n
}

// WithJurisdiction sets the ISO 3166-1 alpha-2 jurisdiction code.
func (n Node) WithJurisdiction(code string) Node {
	n.Jurisdiction = code
	return n
}

// WithIdentifier appends an identifier record.
func (n Node) WithIdentifier(ids ...Identifier) Node {
	n.Identifiers = append(append([]Identifier(nil), n.Identifiers...), ids...)
	return n
}

// WithLabel appends a label.
func (n Node) WithLabel(key, value string) Node {
	n.Labels = append(append([]Label(nil), n.Labels...), Label{Key: key, Value: value})
	return n
}

// WithProperty stores a value under an arbitrary key. Known scalar property
// names set the corresponding typed field; anything else lands in Extra.
func (n Node) WithProperty(key string, value any) Node {
	n.SetProperty(key, value)
	return n
}

// Validate checks the node's structural invariants: non-empty id and type,
// valid identifier records, no duplicate (scheme, value, authority) triples,
// and a well-ordered validity window.
func (n Node) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidNode)
	}
	if n.Type == "" {
		return fmt.Errorf("%w: node %q has empty type", ErrInvalidNode, n.ID)
	}
	if n.ValidFrom != nil && n.ValidTo != nil && n.ValidFrom.After(*n.ValidTo) {
		return fmt.Errorf("%w: node %q valid_from %s after valid_to %s",
			ErrInvalidNode, n.ID, *n.ValidFrom, *n.ValidTo)
	}
	seen := make(map[string]struct{}, len(n.Identifiers))
	for _, id := range n.Identifiers {
		if err := id.Validate(); err != nil {
			return fmt.Errorf("%w: node %q: %v", ErrInvalidNode, n.ID, err)
		}
		key := id.Key()
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: node %q has duplicate identifier %s:%s",
				ErrInvalidNode, n.ID, id.Scheme, id.Value)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	out := n
	out.Identifiers = make([]Identifier, len(n.Identifiers))
	for i, id := range n.Identifiers {
		out.Identifiers[i] = id.Clone()
	}
	if len(n.Identifiers) == 0 {
		out.Identifiers = nil
	}
	out.Labels = append([]Label(nil), n.Labels...)
	out.ValidFrom = cloneDate(n.ValidFrom)
	out.ValidTo = cloneDate(n.ValidTo)
	if n.DataQuality != nil {
		dq := *n.DataQuality
		dq.LastVerified = cloneDate(n.DataQuality.LastVerified)
		dq.Extra = cloneExtra(n.DataQuality.Extra)
		out.DataQuality = &dq
	}
	out.Geo = cloneExtra(n.Geo)
	out.Extra = cloneExtra(n.Extra)
	return out
}

// Properties returns the node's scalar properties as a name->value map:
// the typed fields that are set, plus every Extra entry whose key does not
// start with an underscore. The returned map is a copy.
func (n Node) Properties() map[string]any {
	props := make(map[string]any)
	setIfNonEmpty := func(key, val string) {
		if val != "" {
			props[key] = val
		}
	}
	setIfNonEmpty("name", n.Name)
	setIfNonEmpty("jurisdiction", n.Jurisdiction)
	setIfNonEmpty("status", n.Status)
	setIfNonEmpty("operator", n.Operator)
	setIfNonEmpty("address", n.Address)
	setIfNonEmpty("commodity_code", n.CommodityCode)
	setIfNonEmpty("unit", n.Unit)
	setIfNonEmpty("role", n.Role)
	if len(n.Geo) > 0 {
		props["geo"] = n.Geo
	}
	for k, v := range n.Extra {
		if len(k) > 0 && k[0] == '_' {
			continue
		}
		props[k] = v
	}
	return props
}

// SetProperty sets a scalar property by name, routing known names to the
// typed fields and everything else to Extra.
func (n *Node) SetProperty(key string, value any) {
	if s, ok := value.(string); ok {
		switch key {
		case "name":
			n.Name = s
			return
		case "jurisdiction":
			n.Jurisdiction = s
			return
		case "status":
			n.Status = s
			return
		case "operator":
			n.Operator = s
			return
		case "address":
			n.Address = s
			return
		case "commodity_code":
			n.CommodityCode = s
			return
		case "unit":
			n.Unit = s
			return
		case "role":
			n.Role = s
			return
		}
	}
	if key == "geo" {
		if m, ok := value.(map[string]any); ok {
			n.Geo = m
			return
		}
	}
	if n.Extra == nil {
		n.Extra = make(map[string]any)
	}
	n.Extra[key] = value
}

// ClearProperty removes a scalar property by name.
func (n *Node) ClearProperty(key string) {
	switch key {
	case "name":
		n.Name = ""
	case "jurisdiction":
		n.Jurisdiction = ""
	case "status":
		n.Status = ""
	case "operator":
		n.Operator = ""
	case "address":
		n.Address = ""
	case "commodity_code":
		n.CommodityCode = ""
	case "unit":
		n.Unit = ""
	case "role":
		n.Role = ""
	case "geo":
		n.Geo = nil
	default:
		delete(n.Extra, key)
	}
}

// SortIdentifiers orders the identifier slice by canonical comparison key.
// The canonical string form lives in the identity package; this ordering by
// (scheme, authority, value) matches it for all well-formed records and keeps
// the model free of an upward dependency.
func (n *Node) SortIdentifiers() {
	sort.Slice(n.Identifiers, func(i, j int) bool {
		a, b := n.Identifiers[i], n.Identifiers[j]
		if a.Scheme != b.Scheme {
			return a.Scheme < b.Scheme
		}
		if a.Authority != b.Authority {
			return a.Authority < b.Authority
		}
		return a.Value < b.Value
	})
}

// SortLabels orders labels by key then value; absent value sorts first.
func SortLabels(labels []Label) {
	sort.Slice(labels, func(i, j int) bool {
		if labels[i].Key != labels[j].Key {
			return labels[i].Key < labels[j].Key
		}
		return labels[i].Value < labels[j].Value
	})
}
