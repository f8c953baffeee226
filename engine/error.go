package engine

import "errors"

// ErrDepthExceeded indicates a search attempt recursed deeper than
// Config.MaxCallDepth and was abandoned.
var ErrDepthExceeded = errors.New("search recursion depth exceeded")

// IllegalStateError reports a Search method called in a state that does not
// allow it, such as FindNext after a failed search.
type IllegalStateError struct {
	Op     string
	Reason string
}

// Error implements the error interface
func (e *IllegalStateError) Error() string {
	return "illegal state: " + e.Op + ": " + e.Reason
}
