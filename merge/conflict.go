package merge

import (
	"fmt"
	"sort"
)

// Conflict records a property-level disagreement between merged sources.
// Conflicts are informational: they never fail validation or block a merge.
type Conflict struct {
	// Field is the property name that diverged.
	Field string `json:"field"`

	// Values lists every distinct value with the sources that supplied it.
	Values []ConflictValue `json:"values"`
}

// ConflictValue is one distinct value and its provenance.
type ConflictValue struct {
	Value   any      `json:"value"`
	Sources []string `json:"sources"`
}

// mergeScalar folds one property across group members. inputs are
// (value, source) observations in deterministic member order; nil values
// mean the member does not set the property.
//
// All present values equal: (value, nil). Divergent: the first present value
// wins and a Conflict carries every distinct value with its sources.
func mergeScalar(field string, inputs []scalarInput) (any, *Conflict) {
	var winner any
	distinct := make(map[string]*ConflictValue)
	var order []string

	for _, in := range inputs {
		if in.value == nil {
			continue
		}
		if winner == nil {
			winner = in.value
		}
		key := fmt.Sprintf("%v", in.value)
		cv, seen := distinct[key]
		if !seen {
			cv = &ConflictValue{Value: in.value}
			distinct[key] = cv
			order = append(order, key)
		}
		cv.Sources = appendUnique(cv.Sources, in.source)
	}

	if len(distinct) <= 1 {
		return winner, nil
	}

	conflict := &Conflict{Field: field, Values: make([]ConflictValue, 0, len(order))}
	sort.Strings(order)
	for _, key := range order {
		cv := *distinct[key]
		sort.Strings(cv.Sources)
		conflict.Values = append(conflict.Values, cv)
	}
	return winner, conflict
}

type scalarInput struct {
	value  any
	source string
}

// conflictsValue renders conflicts into the plain-data shape stored under
// the "_conflicts" key, so the record survives any serialization binding.
func ConflictsValue(conflicts []Conflict) []any {
	if len(conflicts) == 0 {
		return nil
	}
	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].Field < conflicts[j].Field })
	out := make([]any, 0, len(conflicts))
	for _, c := range conflicts {
		values := make([]any, 0, len(c.Values))
		for _, v := range c.Values {
			values = append(values, map[string]any{
				"value":   v.Value,
				"sources": append([]string(nil), v.Sources...),
			})
		}
		out = append(out, map[string]any{
			"field":  c.Field,
			"values": values,
		})
	}
	return out
}

func appendUnique(list []string, s string) []string {
	for _, have := range list {
		if have == s {
			return list
		}
	}
	return append(list, s)
}
