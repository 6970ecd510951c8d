package sd

import (
	"iter"
	"math"

	"github.com/cwbudde/isdestimator/internal/combinat"
	"github.com/cwbudde/isdestimator/internal/estimator"
)

// algorithm holds what every ISD variant shares: the problem and the M4RI
// block size r.
type algorithm struct {
	*estimator.Algorithm
	problem *Problem
}

func newAlgorithm(name string, p *Problem, cfg estimator.Config, model estimator.CostModel) *algorithm {
	return &algorithm{
		Algorithm: estimator.NewAlgorithm(name, p, cfg, model),
		problem:   p,
	}
}

// declareM4RI declares r, resolved from the problem alone.
func (a *algorithm) declareM4RI() {
	a.DeclareResolved("r", func(estimator.Params) int {
		return optimizeM4RI(a.problem.n, a.problem.k, a.memoryLimit())
	})
}

// R returns the optimal M4RI block size.
func (a *algorithm) R() int {
	v, _ := a.OptimalParameter("r")
	return v
}

func (a *algorithm) param(name string) int {
	v, _ := a.OptimalParameter(name)
	return v
}

func (a *algorithm) minMax(bound, limit int) int {
	return estimator.MinMax(bound, limit, a.FullDomain())
}

// nkw returns n, k and w.
func (a *algorithm) nkw() (int, int, int) {
	return a.problem.n, a.problem.k, a.problem.w
}

// permutations is the log2 expected number of permutations until the error
// splits as required: C(n, w) / (good * C(n-k-l, w-x)), less the solutions.
func (a *algorithm) permutations(l, rest int, good float64) float64 {
	n, k, w := a.nkw()
	return max(0, combinat.Log2Binomial(n, w)-combinat.Log2Binomial(n-k-l, w-rest)-good-a.problem.nsolutions)
}

// memoryLimit is the memory bound in log2 stored vectors. The bound itself
// is in the reported unit, bits when bit complexities are on.
func (a *algorithm) memoryLimit() float64 {
	if a.Config().BitComplexities {
		return a.problem.memoryBound - a.problem.log2Width()
	}
	return a.problem.memoryBound
}

// exceedsMemory reports whether log2 memory mem breaks the bound.
func (a *algorithm) exceedsMemory(mem float64) bool {
	return mem > a.memoryLimit()
}

// overBound is returned for points breaking the memory bound.
func (a *algorithm) overBound() (float64, float64) {
	return math.Inf(1), a.problem.memoryBound + 1
}

func abort() (float64, float64) {
	return math.Inf(1), math.Inf(1)
}

// filtered drops the points of seq rejected by invalid.
func filtered(seq iter.Seq[estimator.Params], invalid func(estimator.Params) bool) iter.Seq[estimator.Params] {
	return func(yield func(estimator.Params) bool) {
		for p := range seq {
			if invalid(p) {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}

// evenFrom rounds v up to the next even number.
func evenFrom(v int) int {
	return v + v&1
}
