package opt

import (
	"fmt"
	"log/slog"
	"math"
)

// invalidCost replaces non-finite objective values.
const invalidCost = 1e6

// MultiStartConfig configures MultiStart.
type MultiStartConfig struct {
	Restarts int
	Seed     int64

	// MaxIterations and PopSize configure each mayfly run.
	MaxIterations int
	PopSize       int

	// Penalty weighs the total constraint violation added to the objective.
	Penalty float64

	// PolishEvaluations bounds each Nelder-Mead polish.
	PolishEvaluations int

	// Convergence defaults to DefaultConvergenceConfig when nil.
	Convergence *ConvergenceConfig

	// NewOptimizer builds the global optimizer of a restart. Defaults to mayfly.
	NewOptimizer func(seed int64) Optimizer
}

func (c MultiStartConfig) withDefaults() MultiStartConfig {
	if c.Restarts < 1 {
		c.Restarts = 5
	}
	if c.MaxIterations < 1 {
		c.MaxIterations = 150
	}
	if c.PopSize < 1 {
		c.PopSize = minPopulation
	}
	if c.Penalty <= 0 {
		c.Penalty = 1e3
	}
	if c.PolishEvaluations < 1 {
		c.PolishEvaluations = 4000
	}
	if c.Convergence == nil {
		conv := DefaultConvergenceConfig()
		c.Convergence = &conv
	}
	if c.NewOptimizer == nil {
		iters, pop := c.MaxIterations, c.PopSize
		c.NewOptimizer = func(seed int64) Optimizer { return NewMayfly(iters, pop, seed) }
	}
	return c
}

// MultiStart is a ConstrainedMinimizer: a penalised objective is minimised
// globally by a fresh optimizer per restart, each result is polished
// locally, and the best admissible point across restarts wins. The origin is
// always polished as an extra start.
type MultiStart struct {
	cfg MultiStartConfig
}

func NewMultiStart(cfg MultiStartConfig) *MultiStart {
	return &MultiStart{cfg: cfg.withDefaults()}
}

// Minimize implements ConstrainedMinimizer.
func (m *MultiStart) Minimize(f Objective, constraints []Constraint, dim int) (Solution, error) {
	if dim <= 0 {
		return Solution{}, fmt.Errorf("multistart: invalid dimension %d", dim)
	}

	penalised := func(x []float64) float64 {
		var outside float64
		for _, v := range x {
			outside += max(-v, 0) + max(v-1, 0)
		}
		y := clampUnit(x)
		cost := f(y)
		if math.IsNaN(cost) || math.IsInf(cost, 0) {
			cost = invalidCost
		}
		return cost + m.cfg.Penalty*(Violation(constraints, y)+outside)
	}

	best := Solution{Value: math.Inf(1)}
	consider := func(x []float64) {
		if len(x) != dim {
			return
		}
		x = clampUnit(x)
		if Violation(constraints, x) > FeasibilityTolerance {
			return
		}
		if v := f(x); v < best.Value {
			best = Solution{X: x, Value: v}
		}
	}

	origin := make([]float64, dim)
	consider(origin)
	consider(polish(penalised, origin, m.cfg.PolishEvaluations))

	lower, upper := make([]float64, dim), make([]float64, dim)
	for i := range upper {
		upper[i] = 1
	}
	tracker := NewConvergenceTracker(*m.cfg.Convergence)
	for i := 0; i < m.cfg.Restarts; i++ {
		optimizer := m.cfg.NewOptimizer(m.cfg.Seed + int64(i))
		x, _, err := optimizer.Run(penalised, lower, upper, dim)
		if err != nil {
			slog.Debug("Restart failed", "restart", i, "error", err)
			continue
		}
		consider(x)
		consider(polish(penalised, x, m.cfg.PolishEvaluations))

		slog.Debug("Restart finished", "restart", i, "best", best.Value)
		if tracker.Update(best.Value) {
			break
		}
	}

	if best.X == nil {
		return Solution{}, ErrNoFeasibleSolution
	}
	return best, nil
}
