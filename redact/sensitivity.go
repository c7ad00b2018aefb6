package redact

import (
	"github.com/omtsf/omtsf-go/graph"
)

// PropertySensitivityKey is the Extra key holding per-edge overrides of the
// property sensitivity defaults: a map of property name to sensitivity.
const PropertySensitivityKey = "_property_sensitivity"

// restrictedEdgeProps are restricted by default on every edge type.
var restrictedEdgeProps = map[string]struct{}{
	"contract_ref":   {},
	"annual_value":   {},
	"value_currency": {},
	"volume":         {},
}

// EdgePropertySensitivity classifies one scalar property of an edge. An
// entry under "_property_sensitivity" wins; otherwise commercial terms
// default to restricted and percentage depends on the edge type, public on
// ownership but confidential on beneficial_ownership.
func EdgePropertySensitivity(e graph.Edge, field string) graph.Sensitivity {
	if s, ok := propertyOverride(e, field); ok {
		return s
	}
	if _, ok := restrictedEdgeProps[field]; ok {
		return graph.SensitivityRestricted
	}
	if field == "percentage" && e.Type == graph.EdgeBeneficialOwnership {
		return graph.SensitivityConfidential
	}
	return graph.SensitivityPublic
}

func propertyOverride(e graph.Edge, field string) (graph.Sensitivity, bool) {
	raw, ok := e.Extra[PropertySensitivityKey]
	if !ok {
		return "", false
	}
	var value any
	switch m := raw.(type) {
	case map[string]any:
		value, ok = m[field]
	case map[string]string:
		var s string
		s, ok = m[field]
		value = s
	default:
		return "", false
	}
	if !ok {
		return "", false
	}
	s, ok := value.(string)
	if !ok {
		return "", false
	}
	sens := graph.Sensitivity(s)
	if !sens.Valid() {
		return "", false
	}
	return sens, true
}

// NodeSensitivity classifies a node as a whole: person nodes are
// confidential, everything else is public. Identifier records carry their
// own, finer classification.
func NodeSensitivity(n graph.Node) graph.Sensitivity {
	if n.Type == graph.NodePerson {
		return graph.SensitivityConfidential
	}
	return graph.SensitivityPublic
}
