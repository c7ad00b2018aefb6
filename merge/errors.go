package merge

import "errors"

// Sentinel errors for merge operations.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrNoInput indicates that Merge was called without any input files.
	ErrNoInput = errors.New("merge requires at least one input file")

	// ErrInvalidInput indicates that an input file failed structural
	// validation before the merge began. The wrapped error names the
	// offending node or edge.
	ErrInvalidInput = errors.New("merge input invalid")

	// ErrPostMergeValidation indicates that the assembled output violated a
	// structural invariant that deterministic repair could not resolve. The
	// engine never returns the invalid file alongside this error.
	ErrPostMergeValidation = errors.New("merged output failed validation")
)
