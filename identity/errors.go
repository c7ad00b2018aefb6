package identity

import "errors"

// Sentinel errors for identifier validation.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrMissingAuthority indicates that an identifier of an
	// authority-required scheme (nat-reg, vat, internal) has no authority.
	//
	// Example:
	//	if err := identity.ValidateIdentifier(id); errors.Is(err, identity.ErrMissingAuthority) {
	//	    log.Errorf("producer must supply the issuing authority: %v", err)
	//	}
	ErrMissingAuthority = errors.New("identifier missing required authority")

	// ErrValueFormat indicates that an identifier value does not match its
	// scheme's required shape (e.g. a DUNS that is not nine digits, or an
	// LEI that is not 20 alphanumeric characters).
	ErrValueFormat = errors.New("identifier value format invalid")

	// ErrCheckDigit indicates that an identifier value has the right shape
	// but fails its scheme's check-digit verification (MOD 97-10 for LEI,
	// GS1 mod-10 for GLN).
	ErrCheckDigit = errors.New("identifier check digit invalid")
)
