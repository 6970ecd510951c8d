package opt

import (
	"fmt"
	"math/rand"

	"github.com/cwbudde/mayfly"
)

// minPopulation is the smallest population mayfly accepts.
const minPopulation = 20

// MayflyAdapter runs the mayfly metaheuristic as an Optimizer.
type MayflyAdapter struct {
	maxIters int
	popSize  int
	seed     int64
}

// NewMayfly creates a mayfly optimizer. Populations below 20 are raised to 20.
func NewMayfly(maxIters, popSize int, seed int64) *MayflyAdapter {
	return &MayflyAdapter{
		maxIters: maxIters,
		popSize:  max(popSize, minPopulation),
		seed:     seed,
	}
}

// Run executes the optimization. Mayfly takes scalar bounds, so the bounds of
// the first dimension apply to all of them.
func (m *MayflyAdapter) Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64, error) {
	if dim <= 0 || len(lower) < 1 || len(upper) < 1 {
		return nil, 0, fmt.Errorf("mayfly: invalid dimension %d", dim)
	}

	config := mayfly.NewDefaultConfig()
	config.ObjectiveFunc = eval
	config.ProblemSize = dim
	config.MaxIterations = m.maxIters
	config.NPop = m.popSize
	config.LowerBound = lower[0]
	config.UpperBound = upper[0]
	config.Rand = rand.New(rand.NewSource(m.seed))

	result, err := mayfly.Optimize(config)
	if err != nil {
		return nil, 0, fmt.Errorf("mayfly: %w", err)
	}
	return result.GlobalBest.Position, result.GlobalBest.Cost, nil
}
