package mq

import (
	"iter"
	"math"

	"github.com/cwbudde/isdestimator/internal/combinat"
	"github.com/cwbudde/isdestimator/internal/estimator"
)

// omega is the linear algebra exponent used by F5.
const omega = 2.81

func noChoices(estimator.Ranges) iter.Seq[estimator.Params] {
	return func(func(estimator.Params) bool) {}
}

// ExhaustiveSearch enumerates all q^n assignments with Gray-code
// evaluation.
type ExhaustiveSearch struct {
	*estimator.Algorithm
	problem *Problem
}

func NewExhaustiveSearch(p *Problem, cfg estimator.Config) *ExhaustiveSearch {
	a := &ExhaustiveSearch{problem: p}
	a.Algorithm = estimator.NewAlgorithm("ExhaustiveSearch", p, cfg, a)
	return a
}

func (a *ExhaustiveSearch) ValidChoices(r estimator.Ranges) iter.Seq[estimator.Params] {
	return noChoices(r)
}

func (a *ExhaustiveSearch) ParametersInvalid(estimator.Params) bool { return false }

func (a *ExhaustiveSearch) TimeAndMemory(estimator.Params) (float64, float64) {
	n, m := float64(a.problem.n), float64(a.problem.m)
	time := math.Log2(4*max(1, math.Log2(n))) + n*math.Log2(float64(a.problem.q))
	return time, math.Log2(m * n * n)
}

func degreeOfRegularity(n, m, q int) (int, bool) {
	degrees := make([]int, m)
	for i := range degrees {
		degrees[i] = 2
	}
	return combinat.DegreeOfRegularity(n, degrees, q)
}

// f5 is the F5 time and memory on n variables at degree d: echelonising
// the Macaulay matrix of the C(n+d-1, d) monomials of degree d.
func f5(n, d int) (time, memory float64) {
	monomials := combinat.Log2Binomial(n+d-1, d)
	return omega * monomials, 2 * monomials
}

// F5 computes a Groebner basis up to the degree of regularity of a
// semi-regular system. It applies to overdetermined or square systems only.
type F5 struct {
	*estimator.Algorithm
	problem *Problem
}

func NewF5(p *Problem, cfg estimator.Config) (*F5, error) {
	if p.m < p.n {
		return nil, estimator.Inapplicable("F5 needs m >= n, got n=%d, m=%d", p.n, p.m)
	}
	dreg, ok := degreeOfRegularity(p.n, p.m, p.q)
	if !ok {
		return nil, estimator.Inapplicable("no degree of regularity for %s", p)
	}
	a := &F5{problem: p}
	a.Algorithm = estimator.NewAlgorithm("F5", p, cfg, a)
	a.DeclareResolved("dreg", func(estimator.Params) int { return dreg })
	return a, nil
}

// DegreeOfRegularity returns the degree F5 has to reach.
func (a *F5) DegreeOfRegularity() int {
	v, _ := a.OptimalParameter("dreg")
	return v
}

func (a *F5) ValidChoices(r estimator.Ranges) iter.Seq[estimator.Params] {
	return noChoices(r)
}

func (a *F5) ParametersInvalid(p estimator.Params) bool { return p["dreg"] < 1 }

func (a *F5) TimeAndMemory(p estimator.Params) (float64, float64) {
	return f5(a.problem.n, p["dreg"])
}

// HybridF5 guesses k variables and runs F5 on the remaining n-k for each
// guess.
type HybridF5 struct {
	*estimator.Algorithm
	problem *Problem
}

func NewHybridF5(p *Problem, cfg estimator.Config) *HybridF5 {
	a := &HybridF5{problem: p}
	a.Algorithm = estimator.NewAlgorithm("HybridF5", p, cfg, a)
	a.DeclareParameter("k", estimator.Range{Min: 0, Max: p.n - 1}, estimator.Range{Min: 0, Max: p.n - 1})
	return a
}

// K returns the optimal number of guessed variables.
func (a *HybridF5) K() int {
	v, _ := a.OptimalParameter("k")
	return v
}

func (a *HybridF5) ValidChoices(r estimator.Ranges) iter.Seq[estimator.Params] {
	return func(yield func(estimator.Params) bool) {
		for p := range estimator.Grid(r, "k") {
			if a.ParametersInvalid(p) {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}

func (a *HybridF5) ParametersInvalid(p estimator.Params) bool {
	k := p["k"]
	return k < 0 || k > a.problem.n-1 || a.problem.m < a.problem.n-k
}

func (a *HybridF5) TimeAndMemory(p estimator.Params) (float64, float64) {
	k := p["k"]
	guesses := float64(k) * math.Log2(float64(a.problem.q))
	if a.EarlyAbort(guesses) {
		return math.Inf(1), math.Inf(1)
	}
	d, ok := degreeOfRegularity(a.problem.n-k, a.problem.m, a.problem.q)
	if !ok {
		return math.Inf(1), math.Inf(1)
	}
	time, memory := f5(a.problem.n-k, d)
	return guesses + time, memory
}
