package automaton

import "fmt"

// BuildError represents an error during automaton construction via the
// Builder API. It indicates a compiler bug rather than bad pattern text.
type BuildError struct {
	Message string
	NodeID  NodeID
}

// Error implements the error interface
func (e *BuildError) Error() string {
	if e.NodeID != InvalidNode {
		return fmt.Sprintf("automaton build error at node %d: %s", e.NodeID, e.Message)
	}
	return fmt.Sprintf("automaton build error: %s", e.Message)
}
