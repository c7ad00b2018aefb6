package graph

import (
	"fmt"
	"strings"
)

// Identifier is a scheme-qualified identifier record attached to a node or
// edge. Core schemes (lei, duns, gln, nat-reg, vat, internal) and
// reverse-domain extension schemes are all representable; scheme-specific
// format validation lives in the identity package.
type Identifier struct {
	// Scheme names the identifier system, e.g. "lei" or "com.example.sku".
	Scheme string `json:"scheme"`

	// Value is the identifier within the scheme.
	Value string `json:"value"`

	// Authority is the issuing authority. Required for the nat-reg, vat and
	// internal schemes; empty means absent.
	Authority string `json:"authority,omitempty"`

	// ValidFrom is the first date the identifier is valid, nil if unknown.
	ValidFrom *CalendarDate `json:"valid_from,omitempty"`

	// ValidTo is the last date the identifier is valid. nil means
	// open-ended (currently valid).
	ValidTo *CalendarDate `json:"valid_to,omitempty"`

	// Sensitivity is the explicit disclosure classification; empty means
	// unset, in which case scheme defaults apply.
	Sensitivity Sensitivity `json:"sensitivity,omitempty"`

	VerificationStatus VerificationStatus `json:"verification_status,omitempty"`
	VerificationDate   *CalendarDate      `json:"verification_date,omitempty"`

	// Extra preserves unknown fields for round-trip fidelity.
	Extra map[string]any `json:"-"`
}

// NewIdentifier creates an identifier record for the given scheme and value.
//
// Example:
//
//	id := graph.NewIdentifier("vat", "DE123456789").
//	    WithAuthority("DE").
//	    WithSensitivity(graph.SensitivityRestricted)
func NewIdentifier(scheme, value string) Identifier {
	return Identifier{Scheme: scheme, Value: value}
}

// WithAuthority sets the issuing authority.
func (i Identifier) WithAuthority(authority string) Identifier {
	i.Authority = authority
	return i
}

// WithValidity sets the validity window. Pass an empty to for an open-ended
// identifier.
func (i Identifier) WithValidity(from, to CalendarDate) Identifier {
	if from != "" {
		i.ValidFrom = datePtr(from)
	}
	if to != "" {
		i.ValidTo = datePtr(to)
	}
	return i
}

// WithSensitivity sets the explicit sensitivity classification.
func (i Identifier) WithSensitivity(s Sensitivity) Identifier {
	i.Sensitivity = s
	return i
}

// Key returns the (scheme, value, authority) triple as a single comparable
// string. No two identifier records on one node may share a Key.
func (i Identifier) Key() string {
	return i.Scheme + "\x00" + i.Value + "\x00" + strings.ToLower(i.Authority)
}

// Validate checks the record-level invariants: non-empty scheme and value,
// and a well-ordered validity window.
func (i Identifier) Validate() error {
	if i.Scheme == "" {
		return fmt.Errorf("%w: empty scheme", ErrInvalidIdentifier)
	}
	if i.Value == "" {
		return fmt.Errorf("%w: empty value (scheme %q)", ErrInvalidIdentifier, i.Scheme)
	}
	if i.ValidFrom != nil && i.ValidTo != nil && i.ValidFrom.After(*i.ValidTo) {
		return fmt.Errorf("%w: %s:%s valid_from %s after valid_to %s",
			ErrInvalidIdentifier, i.Scheme, i.Value, *i.ValidFrom, *i.ValidTo)
	}
	return nil
}

// Clone returns a deep copy of the identifier.
func (i Identifier) Clone() Identifier {
	out := i
	out.ValidFrom = cloneDate(i.ValidFrom)
	out.ValidTo = cloneDate(i.ValidTo)
	out.VerificationDate = cloneDate(i.VerificationDate)
	out.Extra = cloneExtra(i.Extra)
	return out
}

// Label is a free-form key/value tag on a node or edge. Value may be empty
// for boolean-flag labels.
type Label struct {
	Key   string         `json:"key"`
	Value string         `json:"value,omitempty"`
	Extra map[string]any `json:"-"`
}

// DataQuality carries confidence and provenance metadata for a node or edge.
type DataQuality struct {
	Confidence   Confidence     `json:"confidence,omitempty"`
	Source       string         `json:"source,omitempty"`
	LastVerified *CalendarDate  `json:"last_verified,omitempty"`
	Extra        map[string]any `json:"-"`
}

func cloneDate(d *CalendarDate) *CalendarDate {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

func cloneExtra(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
