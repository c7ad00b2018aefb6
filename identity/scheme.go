package identity

import (
	"regexp"
	"strings"

	"github.com/omtsf/omtsf-go/graph"
)

// Scheme describes one entry of the static identifier-scheme table.
type Scheme struct {
	// Name is the scheme string as it appears on identifier records.
	Name string

	// AuthorityRequired reports whether records of this scheme must carry an
	// issuing authority, which then becomes the middle segment of the
	// canonical string form.
	AuthorityRequired bool

	// DefaultSensitivity applies when a record carries no explicit
	// sensitivity (before the person-node override).
	DefaultSensitivity graph.Sensitivity

	// pattern is the value shape pre-check; nil means any value.
	pattern *regexp.Regexp

	// check verifies the value's check digit after the pattern matched;
	// nil means no check digit.
	check func(string) bool
}

var (
	leiPattern  = regexp.MustCompile(`^[A-Z0-9]{18}[0-9]{2}$`)
	dunsPattern = regexp.MustCompile(`^[0-9]{9}$`)
	glnPattern  = regexp.MustCompile(`^[0-9]{13}$`)
)

// schemeTable is the static configuration of known schemes. Governance of
// the public scheme registry happens elsewhere; the engines only consult
// this table.
var schemeTable = map[string]Scheme{
	"lei": {
		Name:               "lei",
		DefaultSensitivity: graph.SensitivityPublic,
		pattern:            leiPattern,
		check:              Mod97_10,
	},
	"duns": {
		Name:               "duns",
		DefaultSensitivity: graph.SensitivityPublic,
		pattern:            dunsPattern,
	},
	"gln": {
		Name:               "gln",
		DefaultSensitivity: graph.SensitivityPublic,
		pattern:            glnPattern,
		check:              GS1Mod10,
	},
	"nat-reg": {
		Name:               "nat-reg",
		AuthorityRequired:  true,
		DefaultSensitivity: graph.SensitivityRestricted,
	},
	"vat": {
		Name:               "vat",
		AuthorityRequired:  true,
		DefaultSensitivity: graph.SensitivityRestricted,
	},
	"internal": {
		Name:               "internal",
		AuthorityRequired:  true,
		DefaultSensitivity: graph.SensitivityRestricted,
	},
}

// LookupScheme returns the table entry for a known scheme.
func LookupScheme(name string) (Scheme, bool) {
	s, ok := schemeTable[name]
	return s, ok
}

// IsExtensionScheme reports whether name is a reverse-domain extension
// scheme rather than a core scheme. Extension records are opaque: they are
// matched verbatim and never format-validated.
func IsExtensionScheme(name string) bool {
	_, known := schemeTable[name]
	return !known && strings.Contains(name, ".")
}

// RequiresAuthority reports whether the scheme's canonical form and
// validation demand an authority component.
func RequiresAuthority(scheme string) bool {
	s, ok := schemeTable[scheme]
	return ok && s.AuthorityRequired
}

// DefaultSensitivity returns the scheme-based default classification.
// Unknown and extension schemes default to public.
func DefaultSensitivity(scheme string) graph.Sensitivity {
	if s, ok := schemeTable[scheme]; ok {
		return s.DefaultSensitivity
	}
	return graph.SensitivityPublic
}

// EffectiveSensitivity resolves the sensitivity of an identifier on a node
// of the given type. Resolution order: explicit value on the record, then
// the person-node override (every identifier on a person defaults to
// confidential), then the scheme default.
func EffectiveSensitivity(id graph.Identifier, nodeType graph.NodeType) graph.Sensitivity {
	if id.Sensitivity != "" {
		return id.Sensitivity
	}
	if nodeType == graph.NodePerson {
		return graph.SensitivityConfidential
	}
	return DefaultSensitivity(id.Scheme)
}
