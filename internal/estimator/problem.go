package estimator

import (
	"fmt"
	"math"
)

// Problem is an immutable hard-problem instance.
type Problem interface {
	fmt.Stringer

	// Parameters returns the defining integers of the instance in a fixed order.
	Parameters() []int

	// MemoryBound is the largest admissible log2 memory, in the unit memory
	// is reported in: bits with bit complexities, elements otherwise. +Inf
	// when unbounded.
	MemoryBound() float64

	// NSolutions is the log2 of the expected number of solutions.
	NSolutions() float64

	// ToBitComplexityTime converts log2 elementary operations to log2 bit operations.
	ToBitComplexityTime(log2Ops float64) float64

	// ToBitComplexityMemory converts log2 stored elements to log2 bits.
	ToBitComplexityMemory(log2Elements float64) float64
}

// ProblemConfig holds the options shared by every problem family.
type ProblemConfig struct {
	MemoryBound float64
	NSolutions  *float64
}

// ProblemOption configures a problem at construction.
type ProblemOption func(*ProblemConfig)

// WithMemoryBound sets the log2 memory bound.
func WithMemoryBound(bound float64) ProblemOption {
	return func(c *ProblemConfig) {
		c.MemoryBound = bound
	}
}

// WithNSolutions overrides the default log2 number of solutions.
func WithNSolutions(nsolutions float64) ProblemOption {
	return func(c *ProblemConfig) {
		c.NSolutions = &nsolutions
	}
}

// NewProblemConfig applies opts over the defaults and validates the result.
func NewProblemConfig(opts ...ProblemOption) (ProblemConfig, error) {
	cfg := ProblemConfig{MemoryBound: math.Inf(1)}
	for _, opt := range opts {
		opt(&cfg)
	}
	if math.IsNaN(cfg.MemoryBound) || cfg.MemoryBound < 0 {
		return cfg, &ParameterError{Field: "memory_bound", Reason: "must be a non-negative number"}
	}
	if cfg.NSolutions != nil && (math.IsNaN(*cfg.NSolutions) || *cfg.NSolutions < 0) {
		return cfg, &ParameterError{Field: "nsolutions", Reason: "must be a non-negative number"}
	}
	return cfg, nil
}
