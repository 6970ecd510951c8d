package estimator

import (
	"fmt"
	"math"
	"strings"
)

// ComplexityType selects between concrete and asymptotic estimates.
type ComplexityType int

const (
	// Estimate searches integer parameter grids for concrete costs.
	Estimate ComplexityType = iota
	// TildeO minimises a continuous rate model for the asymptotic exponent.
	TildeO
)

func (c ComplexityType) String() string {
	switch c {
	case Estimate:
		return "estimate"
	case TildeO:
		return "tilde-o"
	default:
		return fmt.Sprintf("ComplexityType(%d)", int(c))
	}
}

func (c ComplexityType) valid() bool {
	return c == Estimate || c == TildeO
}

// ParseComplexityType parses "estimate" or "tilde-o" (also "tildeo").
func ParseComplexityType(s string) (ComplexityType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "estimate", "":
		return Estimate, nil
	case "tilde-o", "tildeo", "tilde_o":
		return TildeO, nil
	}
	return 0, fmt.Errorf("%w: unknown complexity type %q", ErrInvalidConfig, s)
}

type accessKind int

const (
	accessConstant accessKind = iota
	accessLogarithmic
	accessSquareRoot
	accessCubeRoot
	accessCustom
)

// MemoryAccess models the latency penalty of accessing log2 memory m, added
// to the time complexity.
type MemoryAccess struct {
	kind accessKind
	fn   func(float64) float64
}

var (
	ConstantAccess    = MemoryAccess{kind: accessConstant}
	LogarithmicAccess = MemoryAccess{kind: accessLogarithmic}
	SquareRootAccess  = MemoryAccess{kind: accessSquareRoot}
	CubeRootAccess    = MemoryAccess{kind: accessCubeRoot}
)

// CustomAccess uses fn(m) as the penalty. Negative results count as zero.
func CustomAccess(fn func(float64) float64) MemoryAccess {
	return MemoryAccess{kind: accessCustom, fn: fn}
}

// Cost returns the log2 penalty for log2 memory m.
func (a MemoryAccess) Cost(m float64) float64 {
	if math.IsInf(m, 1) {
		return m
	}
	var c float64
	switch a.kind {
	case accessLogarithmic:
		if m > 1 {
			c = math.Log2(m)
		}
	case accessSquareRoot:
		c = m / 2
	case accessCubeRoot:
		c = m / 3
	case accessCustom:
		c = a.fn(m)
	}
	if c < 0 || math.IsNaN(c) {
		return 0
	}
	return c
}

func (a MemoryAccess) String() string {
	switch a.kind {
	case accessConstant:
		return "constant"
	case accessLogarithmic:
		return "logarithmic"
	case accessSquareRoot:
		return "square-root"
	case accessCubeRoot:
		return "cube-root"
	default:
		return "custom"
	}
}

func (a MemoryAccess) validate() error {
	if a.kind < accessConstant || a.kind > accessCustom {
		return fmt.Errorf("%w: unknown memory access model", ErrInvalidConfig)
	}
	if a.kind == accessCustom && a.fn == nil {
		return fmt.Errorf("%w: custom memory access without a function", ErrInvalidConfig)
	}
	return nil
}

// ParseMemoryAccess parses the name of a built-in memory access model.
func ParseMemoryAccess(s string) (MemoryAccess, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "constant", "":
		return ConstantAccess, nil
	case "logarithmic", "log":
		return LogarithmicAccess, nil
	case "square-root", "sqrt":
		return SquareRootAccess, nil
	case "cube-root", "cbrt":
		return CubeRootAccess, nil
	}
	return MemoryAccess{}, fmt.Errorf("%w: unknown memory access model %q", ErrInvalidConfig, s)
}
