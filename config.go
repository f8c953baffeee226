package corelabel

import (
	"github.com/coregx/corelabel/engine"
	"github.com/coregx/corelabel/syntax"
)

// Config controls pattern compilation and search limits.
//
// Example:
//
//	config := corelabel.DefaultConfig()
//	config.MaxCallDepth = 50_000
//	p, err := corelabel.CompileWithConfig(reg, pattern, config)
type Config struct {
	// LoopLimit is the repetition cap of *, + and {min,}.
	// Explicit {min,max} bounds may exceed it.
	// Default: 10,000
	LoopLimit int

	// MaxNestingDepth limits how deeply groups and pinnings may nest.
	// Default: 100
	MaxNestingDepth int

	// MaxCallDepth bounds interpreter recursion during one search attempt.
	// A search that needs more fails with engine.ErrDepthExceeded.
	// Default: 250,000
	MaxCallDepth int
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	cc := syntax.DefaultCompilerConfig()
	return Config{
		LoopLimit:       cc.LoopLimit,
		MaxNestingDepth: cc.MaxNestingDepth,
		MaxCallDepth:    engine.DefaultMaxCallDepth,
	}
}

// Validate checks if the configuration is valid.
//
// Valid ranges:
//   - LoopLimit: 1 to 1,000,000
//   - MaxNestingDepth: 1 to 1,000
//   - MaxCallDepth: 16 to 10,000,000
func (c Config) Validate() error {
	if c.LoopLimit < 1 || c.LoopLimit > 1_000_000 {
		return &ConfigError{
			Field:   "LoopLimit",
			Message: "must be between 1 and 1,000,000",
		}
	}
	if c.MaxNestingDepth < 1 || c.MaxNestingDepth > 1_000 {
		return &ConfigError{
			Field:   "MaxNestingDepth",
			Message: "must be between 1 and 1,000",
		}
	}
	if err := (engine.Config{MaxCallDepth: c.MaxCallDepth}).Validate(); err != nil {
		return &ConfigError{
			Field:   "MaxCallDepth",
			Message: "must be between 16 and 10,000,000",
		}
	}
	return nil
}

// ConfigError represents an invalid configuration parameter.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "corelabel: invalid config: " + e.Field + ": " + e.Message
}
