package update

import "errors"

// Sentinel errors for same-origin update operations.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrNilInput indicates that the base or new file was nil.
	ErrNilInput = errors.New("update requires base and new files")

	// ErrInvalidInput indicates that an input file failed structural
	// validation before the update began.
	ErrInvalidInput = errors.New("update input invalid")

	// ErrUnknownPolicy indicates an unrecognized UnmatchedNodePolicy value.
	ErrUnknownPolicy = errors.New("unknown unmatched node policy")

	// ErrMissingSnapshotDate indicates that PolicyExpire was configured but
	// the new export carries no snapshot_date to expire against.
	ErrMissingSnapshotDate = errors.New("expire policy requires a snapshot date on the new file")

	// ErrPostUpdateValidation indicates that the assembled output violated
	// a structural invariant; the engine never returns the invalid file.
	ErrPostUpdateValidation = errors.New("updated output failed validation")
)
