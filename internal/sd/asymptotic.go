package sd

import (
	"github.com/cwbudde/isdestimator/internal/combinat"
	"github.com/cwbudde/isdestimator/internal/estimator"
)

// Rate models express every parameter as a fraction of n. Exponents are
// per n bits and scaled back by the solver.

// binom is the asymptotic log2 binomial on rates.
func binom(n, k float64) float64 { return combinat.BinomialApproximation(n, k) }

// rates returns k/n, w/n and the solution exponent per n.
func (a *algorithm) rates() (k, w, sol float64) {
	n := float64(a.problem.n)
	return float64(a.problem.k) / n, float64(a.problem.w) / n, a.problem.nsolutions / n
}

// ratePermutations is the asymptotic permutation exponent with good
// information-set splittings of exponent good.
func ratePermutations(w, sol, redundancy, rest, good float64) float64 {
	return max(0, binom(1, w)-binom(redundancy, rest)-good-sol)
}

func (a *Stern) RateModel() (*estimator.RateModel, error) {
	k, w, sol := a.rates()
	return splitRateModel(a.algorithm, func(r estimator.Rates) float64 { return k / 2 }, k, w, sol), nil
}

func (a *Dumer) RateModel() (*estimator.RateModel, error) {
	k, w, sol := a.rates()
	return splitRateModel(a.algorithm, func(r estimator.Rates) float64 { return (k + r["l"]) / 2 }, k, w, sol), nil
}

// splitRateModel is the Stern-type model with halves of size half(r).
func splitRateModel(a *algorithm, half func(estimator.Rates) float64, k, w, sol float64) *estimator.RateModel {
	return &estimator.RateModel{
		Variables: []string{"p", "l"},
		Constraints: []func(estimator.Rates) float64{
			func(r estimator.Rates) float64 { return 1 - k - r["l"] },
			func(r estimator.Rates) float64 { return w - 2*r["p"] },
			func(r estimator.Rates) float64 { return (1 - k - r["l"]) - (w - 2*r["p"]) },
			func(r estimator.Rates) float64 { return half(r) - r["p"] },
		},
		Time: func(r estimator.Rates) float64 {
			L1 := binom(half(r), r["p"])
			perms := ratePermutations(w, sol, 1-k-r["l"], w-2*r["p"], 2*L1)
			return perms + max(L1, 2*L1-r["l"])
		},
		Memory: func(r estimator.Rates) float64 { return binom(half(r), r["p"]) },
		Scale:  float64(a.problem.n),
	}
}

func (a *BallCollision) RateModel() (*estimator.RateModel, error) {
	k, w, sol := a.rates()
	list := func(r estimator.Rates) float64 { return binom(k/2, r["p"]) + binom(r["l"]/2, r["pl"]) }
	return &estimator.RateModel{
		Variables: []string{"p", "pl", "l"},
		Constraints: []func(estimator.Rates) float64{
			func(r estimator.Rates) float64 { return 1 - k - r["l"] },
			func(r estimator.Rates) float64 { return w - 2*r["p"] - 2*r["pl"] },
			func(r estimator.Rates) float64 { return (1 - k - r["l"]) - (w - 2*r["p"] - 2*r["pl"]) },
			func(r estimator.Rates) float64 { return k/2 - r["p"] },
			func(r estimator.Rates) float64 { return r["l"]/2 - r["pl"] },
		},
		Time: func(r estimator.Rates) float64 {
			L1 := list(r)
			perms := ratePermutations(w, sol, 1-k-r["l"], w-2*r["p"]-2*r["pl"], 2*L1)
			return perms + max(L1, 2*L1-r["l"])
		},
		Memory: list,
		Scale:  float64(a.problem.n),
	}, nil
}

// representationRates holds the depth 2 tree exponents at r.
type representationRates struct {
	L1, L12, reps, perms float64
}

func depth2Rates(k, w, sol float64, r estimator.Rates) representationRates {
	p, p1, l := r["p"], r["p1"], r["l"]
	reps := binom(p, p/2) + binom(k+l-p, p1-p/2)
	L1 := binom((k+l)/2, p1/2)
	return representationRates{
		L1:    L1,
		L12:   2*L1 - reps,
		reps:  reps,
		perms: ratePermutations(w, sol, 1-k-l, w-p, binom(k+l, p)),
	}
}

func depth2Constraints(k, w float64) []func(estimator.Rates) float64 {
	return []func(estimator.Rates) float64{
		func(r estimator.Rates) float64 { return 1 - k - r["l"] },
		func(r estimator.Rates) float64 { return (1 - k - r["l"]) - (w - r["p"]) },
		func(r estimator.Rates) float64 { return w - r["p"] },
		func(r estimator.Rates) float64 { return k + r["l"] - r["p"] },
		func(r estimator.Rates) float64 { return r["p1"] - r["p"]/2 },
		func(r estimator.Rates) float64 { return (k + r["l"] - r["p"]) - (r["p1"] - r["p"]/2) },
		func(r estimator.Rates) float64 { return (k+r["l"])/2 - r["p1"]/2 },
		func(r estimator.Rates) float64 {
			return r["l"] - (binom(r["p"], r["p"]/2) + binom(k+r["l"]-r["p"], r["p1"]-r["p"]/2))
		},
	}
}

func (a *BJMMDepth2) RateModel() (*estimator.RateModel, error) {
	k, w, sol := a.rates()
	return &estimator.RateModel{
		Variables:   []string{"p", "p1", "l"},
		Constraints: depth2Constraints(k, w),
		Time: func(r estimator.Rates) float64 {
			t := depth2Rates(k, w, sol, r)
			return t.perms + max(t.L1, t.L12, 2*t.L12-(r["l"]-t.reps))
		},
		Memory: func(r estimator.Rates) float64 {
			t := depth2Rates(k, w, sol, r)
			return max(t.L1, t.L12)
		},
		Scale: float64(a.problem.n),
	}, nil
}

func (a *MayOzerovDepth2) RateModel() (*estimator.RateModel, error) {
	k, w, sol := a.rates()
	return &estimator.RateModel{
		Variables:   []string{"p", "p1", "l"},
		Constraints: depth2Constraints(k, w),
		Time: func(r estimator.Rates) float64 {
			t := depth2Rates(k, w, sol, r)
			return t.perms + max(t.L1, t.L12, mayOzerovNN(1-k-r["l"], t.L12, w-r["p"]))
		},
		Memory: func(r estimator.Rates) float64 {
			t := depth2Rates(k, w, sol, r)
			return max(t.L1, t.L12)
		},
		Scale: float64(a.problem.n),
	}, nil
}

// mayOzerovNN is the exponent of the May-Ozerov nearest-neighbour search for
// two lists of exponent lambda of vectors of length n, with matches at
// distance gamma.
func mayOzerovNN(n, lambda, gamma float64) float64 {
	if n <= 0 {
		return max(lambda, 2*lambda)
	}
	lr, gr := lambda/n, gamma/n
	d := combinat.InverseBinaryEntropy(1 - lr)
	var y float64
	if gr <= 2*d*(1-d) {
		y = (1 - gr) * (1 - combinat.BinaryEntropy((d-gr/2)/(1-gr)))
	} else {
		y = 2*lr + combinat.BinaryEntropy(gr) - 1
	}
	return max(y*n, 2*lambda-n+binom(n, gamma), lambda)
}
