package sd

import (
	"iter"
	"math"

	"github.com/cwbudde/isdestimator/internal/combinat"
	"github.com/cwbudde/isdestimator/internal/estimator"
)

// Prange permutes the columns until all w error positions fall into the
// n-k redundancy positions, then reads the error off the syndrome.
type Prange struct {
	*algorithm
}

func NewPrange(p *Problem, cfg estimator.Config) *Prange {
	a := &Prange{}
	a.algorithm = newAlgorithm("Prange", p, cfg, a)
	a.declareM4RI()
	return a
}

func (a *Prange) ValidChoices(estimator.Ranges) iter.Seq[estimator.Params] {
	return func(func(estimator.Params) bool) {}
}

func (a *Prange) ParametersInvalid(estimator.Params) bool { return false }

func (a *Prange) TimeAndMemory(p estimator.Params) (float64, float64) {
	n, k, _ := a.nkw()
	r := p["r"]
	memory := math.Log2(memMatrix(n, k, r))
	return a.permutations(0, 0, 0) + math.Log2(gaussianElimination(n, k, r)), memory
}

func (a *Prange) RateModel() (*estimator.RateModel, error) {
	k, w, sol := a.rates()
	return &estimator.RateModel{
		Time: func(estimator.Rates) float64 {
			return max(0, combinat.BinomialApproximation(1, w)-combinat.BinomialApproximation(1-k, w)-sol)
		},
		Memory: func(estimator.Rates) float64 { return 0 },
		Scale:  float64(a.problem.n),
	}, nil
}
