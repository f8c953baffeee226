// Package engine runs compiled label patterns over documents.
//
// The interpreter is a recursive, continuation-passing backtracker. Each
// node either extends the match and reports success only once its
// continuation has also succeeded, or it fails and leaves the search state
// exactly as it found it, so an earlier choice point can try an alternative.
//
// An Engine is immutable and safe for concurrent use. A Search holds the
// mutable state of one search and belongs to a single caller.
package engine

import "fmt"

// DefaultMaxCallDepth is the default bound on interpreter recursion
const DefaultMaxCallDepth = 250_000

// Config controls search execution
type Config struct {
	// MaxCallDepth bounds the recursion depth of one search attempt.
	// Each node visited on the current path costs one level, so deep
	// nesting multiplied by many loop iterations can reach it. A search
	// that exceeds it fails with ErrDepthExceeded instead of exhausting the
	// stack.
	// Default: 250,000
	MaxCallDepth int
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{MaxCallDepth: DefaultMaxCallDepth}
}

// Validate checks if the configuration is valid.
//
// Valid ranges:
//   - MaxCallDepth: 16 to 10,000,000
func (c Config) Validate() error {
	if c.MaxCallDepth < 16 || c.MaxCallDepth > 10_000_000 {
		return fmt.Errorf("engine: invalid config: MaxCallDepth: must be between 16 and 10,000,000, got %d", c.MaxCallDepth)
	}
	return nil
}
