package opt

import (
	"errors"
	"math"
)

// Optimizer minimises an objective over a box.
type Optimizer interface {
	// Run returns the best position found and its cost.
	// eval: objective function to minimize
	// lower, upper: parameter bounds
	// dim: dimensionality of parameter space
	Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64, error)
}

// Objective is minimised by a ConstrainedMinimizer.
type Objective func(x []float64) float64

// Constraint must be non-negative at an admissible point.
type Constraint func(x []float64) float64

// Solution is the best admissible point found.
type Solution struct {
	X     []float64
	Value float64
}

// ConstrainedMinimizer minimises f over the unit box [0,1]^dim subject to
// every constraint being non-negative.
type ConstrainedMinimizer interface {
	Minimize(f Objective, constraints []Constraint, dim int) (Solution, error)
}

// FeasibilityTolerance is the total constraint violation accepted at a solution.
const FeasibilityTolerance = 1e-6

// ErrNoFeasibleSolution is returned when no restart reaches an admissible point.
var ErrNoFeasibleSolution = errors.New("no feasible solution")

// Violation sums the amounts by which x violates the constraints. A NaN
// constraint value counts as a violation of 1.
func Violation(constraints []Constraint, x []float64) float64 {
	var v float64
	for _, c := range constraints {
		g := c(x)
		switch {
		case math.IsNaN(g):
			v++
		case g < 0:
			v -= g
		}
	}
	return v
}

func clampUnit(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = min(max(v, 0), 1)
	}
	return out
}
