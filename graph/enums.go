package graph

// NodeType identifies the built-in node subtypes. Extension types (reverse
// domain strings such as "com.example.widget") are carried as-is; the model
// never restricts the value set, validation of extension payloads is a
// producer concern.
type NodeType string

const (
	NodeOrganization NodeType = "organization"
	NodePerson       NodeType = "person"
	NodeFacility     NodeType = "facility"
	NodeGood         NodeType = "good"
	NodeConsignment  NodeType = "consignment"
	NodeAttestation  NodeType = "attestation"
	NodeBoundaryRef  NodeType = "boundary_ref"
)

// EdgeType identifies the built-in edge subtypes.
type EdgeType string

const (
	EdgeSupplies            EdgeType = "supplies"
	EdgeOwnership           EdgeType = "ownership"
	EdgeBeneficialOwnership EdgeType = "beneficial_ownership"
	EdgeOperates            EdgeType = "operates"
	EdgeSameAs              EdgeType = "same_as"
	EdgeAttests             EdgeType = "attests"
	EdgeContains            EdgeType = "contains"
	EdgeShipsTo             EdgeType = "ships_to"
)

// Sensitivity classifies how widely a value may be disclosed.
type Sensitivity string

const (
	SensitivityPublic       Sensitivity = "public"
	SensitivityRestricted   Sensitivity = "restricted"
	SensitivityConfidential Sensitivity = "confidential"
)

// Valid reports whether s is one of the three defined sensitivity levels.
func (s Sensitivity) Valid() bool {
	switch s {
	case SensitivityPublic, SensitivityRestricted, SensitivityConfidential:
		return true
	}
	return false
}

// Confidence grades a same_as assertion.
type Confidence string

const (
	ConfidenceDefinite Confidence = "definite"
	ConfidenceProbable Confidence = "probable"
	ConfidencePossible Confidence = "possible"
)

// AtLeast reports whether c is at least as strong as threshold.
// Ordering: definite > probable > possible. Unknown values rank lowest.
func (c Confidence) AtLeast(threshold Confidence) bool {
	return c.rank() >= threshold.rank()
}

func (c Confidence) rank() int {
	switch c {
	case ConfidenceDefinite:
		return 3
	case ConfidenceProbable:
		return 2
	case ConfidencePossible:
		return 1
	}
	return 0
}

// DisclosureScope names the audience a file was prepared for.
type DisclosureScope string

const (
	ScopePublic  DisclosureScope = "public"
	ScopePartner DisclosureScope = "partner"
	ScopePrivate DisclosureScope = "private"
)

// Admits reports whether a value of the given sensitivity may appear in a
// file prepared for scope s. Public scope admits only public values, partner
// adds restricted, private admits everything.
func (s DisclosureScope) Admits(sens Sensitivity) bool {
	switch s {
	case ScopePublic:
		return sens == SensitivityPublic
	case ScopePartner:
		return sens == SensitivityPublic || sens == SensitivityRestricted
	case ScopePrivate:
		return true
	}
	return false
}

// VerificationStatus records whether an identifier has been checked against
// its issuing authority.
type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "unverified"
	VerificationVerified   VerificationStatus = "verified"
	VerificationFailed     VerificationStatus = "failed"
)
