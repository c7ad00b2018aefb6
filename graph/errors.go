package graph

import "errors"

// Sentinel errors for graph model validation.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrInvalidNode indicates that a node failed structural validation.
	// This can occur when:
	//   - The node id is empty
	//   - The node type is empty
	//   - Two identifier records share the same (scheme, value, authority) triple
	//   - An identifier or the node itself has valid_from after valid_to
	//
	// Example:
	//	if err := node.Validate(); errors.Is(err, graph.ErrInvalidNode) {
	//	    log.Errorf("rejecting node: %v", err)
	//	}
	ErrInvalidNode = errors.New("invalid node")

	// ErrInvalidEdge indicates that an edge failed structural validation:
	// empty id, empty type, missing source or target reference, or a
	// valid_from after valid_to.
	ErrInvalidEdge = errors.New("invalid edge")

	// ErrInvalidIdentifier indicates that an identifier record is malformed:
	// empty scheme or value, or valid_from after valid_to. Scheme-specific
	// format checks (check digits, required authority) live in the identity
	// package and report their own errors.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrInvalidFile indicates that a file failed structural validation.
	// This can occur when:
	//   - Two nodes share the same file-local id
	//   - An edge references a node id not present in the file
	//   - Any contained node or edge fails its own validation
	//
	// The merge engine treats this error after its own output assembly as a
	// post-merge integrity failure and aborts rather than emit the file.
	ErrInvalidFile = errors.New("invalid file")

	// ErrInvalidDate indicates that a calendar date string is not a valid
	// ISO 8601 YYYY-MM-DD date.
	ErrInvalidDate = errors.New("invalid calendar date")

	// ErrInvalidSalt indicates that a file salt is not a 64-character
	// lowercase hexadecimal string decoding to 32 bytes.
	//
	// Example:
	//	salt, err := graph.ParseFileSalt(s)
	//	if errors.Is(err, graph.ErrInvalidSalt) {
	//	    log.Errorf("bad file_salt in header: %v", err)
	//	}
	ErrInvalidSalt = errors.New("invalid file salt")
)
