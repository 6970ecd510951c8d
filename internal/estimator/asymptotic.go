package estimator

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/isdestimator/internal/opt"
)

// Rates assigns a value in [0, 1] to every variable of a RateModel.
type Rates map[string]float64

// RateModel is the continuous relaxation of a cost model: parameters are
// rates (parameter / n), constraints must be non-negative, and time and
// memory are exponents to be scaled by Scale.
type RateModel struct {
	Variables   []string
	Constraints []func(Rates) float64
	Time        func(Rates) float64
	Memory      func(Rates) float64
	Scale       float64
}

func (m *RateModel) rates(x []float64) Rates {
	r := make(Rates, len(m.Variables))
	for i, v := range m.Variables {
		r[v] = x[i]
	}
	return r
}

// Solve minimises the time exponent. A finite memoryBound adds the
// constraint Memory*Scale <= memoryBound. No feasible point yields +Inf.
func (m *RateModel) Solve(minimizer opt.ConstrainedMinimizer, memoryBound float64) (Result, error) {
	constraints := make([]opt.Constraint, 0, len(m.Constraints)+1)
	for _, c := range m.Constraints {
		constraints = append(constraints, func(x []float64) float64 { return c(m.rates(x)) })
	}
	if !math.IsInf(memoryBound, 1) {
		constraints = append(constraints, func(x []float64) float64 {
			return memoryBound/m.Scale - m.Memory(m.rates(x))
		})
	}

	x := []float64{}
	if len(m.Variables) > 0 {
		sol, err := minimizer.Minimize(func(x []float64) float64 { return m.Time(m.rates(x)) }, constraints, len(m.Variables))
		if errors.Is(err, opt.ErrNoFeasibleSolution) {
			return infeasible(), nil
		}
		if err != nil {
			return infeasible(), fmt.Errorf("minimise time exponent: %w", err)
		}
		x = sol.X
	} else {
		for _, c := range constraints {
			if c(x) < -opt.FeasibilityTolerance {
				return infeasible(), nil
			}
		}
	}

	r := m.rates(x)
	return Result{
		Time:       m.Time(r) * m.Scale,
		Memory:     m.Memory(r) * m.Scale,
		Parameters: r,
	}, nil
}

// TildeO returns the asymptotic estimate regardless of the complexity type.
func (a *Algorithm) TildeO() (Result, error) {
	if a.tildeO == nil {
		res, err := a.solveTildeO()
		a.tildeO = &tildeOCache{res: res, err: err}
	}
	return a.tildeO.res, a.tildeO.err
}

func (a *Algorithm) solveTildeO() (Result, error) {
	if s, ok := a.model.(TildeOSolver); ok {
		return s.SolveTildeO()
	}
	am, ok := a.model.(AsymptoticModel)
	if !ok {
		return infeasible(), fmt.Errorf("%s: %w", a.name, ErrNotImplemented)
	}
	rm, err := am.RateModel()
	if err != nil {
		return infeasible(), fmt.Errorf("%s: %w", a.name, err)
	}
	return rm.Solve(a.minimizer(), a.problem.MemoryBound())
}

func (a *Algorithm) minimizer() opt.ConstrainedMinimizer {
	if a.cfg.Minimizer == nil {
		a.cfg.Minimizer = opt.NewMultiStart(opt.MultiStartConfig{
			Restarts: a.cfg.TildeORestarts,
			Seed:     a.cfg.Seed,
		})
	}
	return a.cfg.Minimizer
}
