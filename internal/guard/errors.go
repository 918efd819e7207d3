package guard

import "errors"

// Rejection codes surfaced to clients in error extensions.
const (
	CodeDepthLimitExceeded = "DEPTH_LIMIT_EXCEEDED"
	CodeCostLimitExceeded  = "COST_LIMIT_EXCEEDED"
	CodeFragmentCycle      = "FRAGMENT_CYCLE_DETECTED"
	CodeExpansionTooLarge  = "EXPANSION_LIMIT_EXCEEDED"
	CodeUnknownFragment    = "UNKNOWN_FRAGMENT"
	CodeOperationNotFound  = "OPERATION_NOT_FOUND"
)

var (
	// ErrFragmentCycle means a named fragment spread transitively
	// references itself. The request is rejected before measurement.
	ErrFragmentCycle = errors.New("fragment cycle detected")

	// ErrExpansionTooLarge means fragment expansion produced more
	// nodes than the configured bound allows.
	ErrExpansionTooLarge = errors.New("fragment expansion exceeds node limit")

	// ErrUnknownFragment means a spread references a fragment the
	// document does not define.
	ErrUnknownFragment = errors.New("unknown fragment")

	// ErrOperationNotFound means no operation matched the requested
	// name, or the document holds several and none was named.
	ErrOperationNotFound = errors.New("operation not found")
)
