package redact

import "errors"

// Sentinel errors for redaction operations.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrNilInput indicates a nil input file.
	ErrNilInput = errors.New("redact requires an input file")

	// ErrInvalidInput indicates that the input file failed structural
	// validation.
	ErrInvalidInput = errors.New("redact input invalid")

	// ErrUnknownScope indicates a disclosure scope outside
	// public/partner/private.
	ErrUnknownScope = errors.New("unknown disclosure scope")

	// ErrInvalidSelector indicates a CEL selector that failed to compile or
	// does not evaluate to a boolean.
	ErrInvalidSelector = errors.New("invalid node selector")

	// ErrSelectorEval indicates a selector that compiled but failed at
	// evaluation time.
	ErrSelectorEval = errors.New("node selector evaluation failed")

	// ErrPostRedactValidation indicates that the redacted output violated a
	// structural invariant; the redactor never returns the invalid file.
	ErrPostRedactValidation = errors.New("redacted output failed validation")
)
