package graph

import "fmt"

// Edge is a typed relationship between two file-local node ids.
type Edge struct {
	ID     string   `json:"id"`
	Type   EdgeType `json:"type"`
	Source string   `json:"source"`
	Target string   `json:"target"`

	ValidFrom *CalendarDate `json:"valid_from,omitempty"`
	ValidTo   *CalendarDate `json:"valid_to,omitempty"`

	// Supplies properties. Tier is relative to the file's reporting entity,
	// which makes cross-file disagreement expected rather than erroneous.
	Tier        *int   `json:"tier,omitempty"`
	Commodity   string `json:"commodity,omitempty"`
	ContractRef string `json:"contract_ref,omitempty"`

	// Ownership properties.
	Percentage *float64 `json:"percentage,omitempty"`

	// Confidence grades a same_as assertion; unused on other types.
	Confidence Confidence `json:"confidence,omitempty"`

	Identifiers []Identifier `json:"identifiers,omitempty"`
	DataQuality *DataQuality `json:"data_quality,omitempty"`
	Labels      []Label      `json:"labels,omitempty"`

	// Extra preserves unknown fields for round-trip fidelity.
	Extra map[string]any `json:"-"`
}

// NewEdge creates an edge of the given type between two node ids.
//
// Example:
//
//	e := graph.NewEdge("e1", graph.EdgeSupplies, "n1", "n2").
//	    WithProperty("commodity", "coffee").
//	    WithTier(2)
func NewEdge(id string, edgeType EdgeType, source, target string) Edge {
	return Edge{ID: id, Type: edgeType, Source: source, Target: target}
}

// WithTier sets the reporting-entity-relative supply tier.
func (e Edge) WithTier(tier int) Edge {
	e.Tier = &tier
	return e
}

// WithConfidence sets the same_as confidence grade.
func (e Edge) WithConfidence(c Confidence) Edge {
	e.Confidence = c
	return e
}

// WithIdentifier appends an identifier record.
func (e Edge) WithIdentifier(ids ...Identifier) Edge {
	e.Identifiers = append(append([]Identifier(nil), e.Identifiers...), ids...)
	return e
}

// WithValidity sets the validity window; empty strings leave ends open.
func (e Edge) WithValidity(from, to CalendarDate) Edge {
	if from != "" {
		e.ValidFrom = datePtr(from)
	}
	if to != "" {
		e.ValidTo = datePtr(to)
	}
	return e
}

// WithProperty stores a value under an arbitrary key, routing known scalar
// names to the typed fields.
func (e Edge) WithProperty(key string, value any) Edge {
	e.SetProperty(key, value)
	return e
}

// Validate checks the edge's structural invariants.
func (e Edge) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidEdge)
	}
	if e.Type == "" {
		return fmt.Errorf("%w: edge %q has empty type", ErrInvalidEdge, e.ID)
	}
	if e.Source == "" || e.Target == "" {
		return fmt.Errorf("%w: edge %q missing source or target", ErrInvalidEdge, e.ID)
	}
	if e.ValidFrom != nil && e.ValidTo != nil && e.ValidFrom.After(*e.ValidTo) {
		return fmt.Errorf("%w: edge %q valid_from %s after valid_to %s",
			ErrInvalidEdge, e.ID, *e.ValidFrom, *e.ValidTo)
	}
	for _, id := range e.Identifiers {
		if err := id.Validate(); err != nil {
			return fmt.Errorf("%w: edge %q: %v", ErrInvalidEdge, e.ID, err)
		}
	}
	return nil
}

// Clone returns a deep copy of the edge.
func (e Edge) Clone() Edge {
	out := e
	out.Identifiers = make([]Identifier, len(e.Identifiers))
	for i, id := range e.Identifiers {
		out.Identifiers[i] = id.Clone()
	}
	if len(e.Identifiers) == 0 {
		out.Identifiers = nil
	}
	out.Labels = append([]Label(nil), e.Labels...)
	out.ValidFrom = cloneDate(e.ValidFrom)
	out.ValidTo = cloneDate(e.ValidTo)
	if e.Tier != nil {
		t := *e.Tier
		out.Tier = &t
	}
	if e.Percentage != nil {
		p := *e.Percentage
		out.Percentage = &p
	}
	if e.DataQuality != nil {
		dq := *e.DataQuality
		dq.LastVerified = cloneDate(e.DataQuality.LastVerified)
		dq.Extra = cloneExtra(e.DataQuality.Extra)
		out.DataQuality = &dq
	}
	out.Extra = cloneExtra(e.Extra)
	return out
}

// Properties returns the edge's scalar properties as a name->value map,
// excluding temporal fields (which never participate in merge identity).
// The returned map is a copy.
func (e Edge) Properties() map[string]any {
	props := make(map[string]any)
	if e.Tier != nil {
		props["tier"] = *e.Tier
	}
	if e.Commodity != "" {
		props["commodity"] = e.Commodity
	}
	if e.ContractRef != "" {
		props["contract_ref"] = e.ContractRef
	}
	if e.Percentage != nil {
		props["percentage"] = *e.Percentage
	}
	if e.Confidence != "" {
		props["confidence"] = string(e.Confidence)
	}
	for k, v := range e.Extra {
		if len(k) > 0 && k[0] == '_' {
			continue
		}
		props[k] = v
	}
	return props
}

// SetProperty sets a scalar property by name, routing known names to the
// typed fields and everything else to Extra.
func (e *Edge) SetProperty(key string, value any) {
	switch key {
	case "tier":
		switch v := value.(type) {
		case int:
			e.Tier = &v
			return
		case float64:
			t := int(v)
			e.Tier = &t
			return
		}
	case "commodity":
		if s, ok := value.(string); ok {
			e.Commodity = s
			return
		}
	case "contract_ref":
		if s, ok := value.(string); ok {
			e.ContractRef = s
			return
		}
	case "percentage":
		if f, ok := value.(float64); ok {
			e.Percentage = &f
			return
		}
	case "confidence":
		if s, ok := value.(string); ok {
			e.Confidence = Confidence(s)
			return
		}
	}
	if e.Extra == nil {
		e.Extra = make(map[string]any)
	}
	e.Extra[key] = value
}

// ClearProperty removes a scalar property by name.
func (e *Edge) ClearProperty(key string) {
	switch key {
	case "tier":
		e.Tier = nil
	case "commodity":
		e.Commodity = ""
	case "contract_ref":
		e.ContractRef = ""
	case "percentage":
		e.Percentage = nil
	case "confidence":
		e.Confidence = ""
	default:
		delete(e.Extra, key)
	}
}
