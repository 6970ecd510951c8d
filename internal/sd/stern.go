package sd

import (
	"iter"
	"math"

	"github.com/cwbudde/isdestimator/internal/combinat"
	"github.com/cwbudde/isdestimator/internal/estimator"
)

// Stern splits the information set into two halves carrying p errors each
// and matches the two lists of partial syndromes on l bits.
type Stern struct {
	*algorithm
}

func NewStern(p *Problem, cfg estimator.Config) *Stern {
	a := &Stern{}
	a.algorithm = newAlgorithm("Stern", p, cfg, a)
	n, k, w := a.nkw()
	a.declareM4RI()
	a.DeclareParameter("p", estimator.Range{Min: 0, Max: a.minMax(w/2, 20)}, estimator.Range{Min: 0, Max: w / 2})
	a.DeclareParameter("l", estimator.Range{Min: 0, Max: a.minMax(n-k, 400)}, estimator.Range{Min: 0, Max: n - k})
	return a
}

// P returns the optimal weight per half.
func (a *Stern) P() int { return a.param("p") }

// L returns the optimal matching window.
func (a *Stern) L() int { return a.param("l") }

// ValidChoices scans l only around log2 of the list size, where the
// optimum lies.
func (a *Stern) ValidChoices(r estimator.Ranges) iter.Seq[estimator.Params] {
	_, k, w := a.nkw()
	radius := a.Config().AdjustRadius
	return func(yield func(estimator.Params) bool) {
		for p := r.Min("p"); p <= min(w/2, r.Max("p")); p++ {
			lv := truncLog2Binomial(k/2, p)
			for l := max(r.Min("l"), lv-radius); l <= min(r.Max("l"), lv+radius); l++ {
				params := estimator.Params{"p": p, "l": l}
				if a.ParametersInvalid(params) {
					continue
				}
				if !yield(params) {
					return
				}
			}
		}
	}
}

func (a *Stern) ParametersInvalid(p estimator.Params) bool {
	n, k, w := a.nkw()
	return p["p"] > w/2 || k/2 < p["p"] || n-k-p["l"] < w-2*p["p"]
}

func (a *Stern) TimeAndMemory(params estimator.Params) (float64, float64) {
	n, k, _ := a.nkw()
	p, l, r := params["p"], params["l"], params["r"]
	k1 := k / 2

	L1 := combinat.BinomialFloat(k1, p)
	if a.EarlyAbort(combinat.Log2(L1)) {
		return abort()
	}
	memory := math.Log2(2*L1 + memMatrix(n, k, r))
	if a.exceedsMemory(memory) {
		return a.overBound()
	}

	perms := a.permutations(l, 2*p, 2*combinat.Log2Binomial(k1, p))
	iteration := gaussianElimination(n, k, r) + listMerge(L1, l, a.HashMap()) + float64(2*p)*collisions(L1, L1, l)
	return perms + math.Log2(iteration), memory
}

// Dumer is Stern with the l matching rows merged into the information set,
// so each half covers (k+l)/2 columns.
type Dumer struct {
	*algorithm
}

func NewDumer(p *Problem, cfg estimator.Config) *Dumer {
	a := &Dumer{}
	a.algorithm = newAlgorithm("Dumer", p, cfg, a)
	n, k, w := a.nkw()
	a.declareM4RI()
	a.DeclareParameter("p", estimator.Range{Min: 0, Max: a.minMax(w/2, 20)}, estimator.Range{Min: 0, Max: w / 2})
	a.DeclareParameter("l", estimator.Range{Min: 0, Max: a.minMax(n-k, 400)}, estimator.Range{Min: 0, Max: n - k})
	return a
}

func (a *Dumer) P() int { return a.param("p") }
func (a *Dumer) L() int { return a.param("l") }

func (a *Dumer) ValidChoices(r estimator.Ranges) iter.Seq[estimator.Params] {
	return filtered(estimator.Grid(r, "p", "l"), a.ParametersInvalid)
}

func (a *Dumer) ParametersInvalid(p estimator.Params) bool {
	n, k, w := a.nkw()
	return p["p"] > w/2 || (k+p["l"])/2 < p["p"] || n-k-p["l"] < w-2*p["p"]
}

func (a *Dumer) TimeAndMemory(params estimator.Params) (float64, float64) {
	n, k, _ := a.nkw()
	p, l, r := params["p"], params["l"], params["r"]
	k1 := (k + l) / 2

	L1 := combinat.BinomialFloat(k1, p)
	if a.EarlyAbort(combinat.Log2(L1)) {
		return abort()
	}
	memory := math.Log2(2*L1 + memMatrix(n, k, r))
	if a.exceedsMemory(memory) {
		return a.overBound()
	}

	perms := a.permutations(l, 2*p, 2*combinat.Log2Binomial(k1, p))
	iteration := gaussianElimination(n, k, r) + listMerge(L1, l, a.HashMap()) + float64(2*p)*collisions(L1, L1, l)
	return perms + math.Log2(iteration), memory
}

// BallCollision is Stern with pl additional errors allowed in each half of
// the l matching coordinates.
type BallCollision struct {
	*algorithm
}

func NewBallCollision(p *Problem, cfg estimator.Config) *BallCollision {
	a := &BallCollision{}
	a.algorithm = newAlgorithm("BallCollision", p, cfg, a)
	n, k, w := a.nkw()
	a.declareM4RI()
	a.DeclareParameter("p", estimator.Range{Min: 0, Max: a.minMax(w/2, 20)}, estimator.Range{Min: 0, Max: w / 2})
	a.DeclareParameter("pl", estimator.Range{Min: 0, Max: a.minMax(w/2, 10)}, estimator.Range{Min: 0, Max: w / 2})
	a.DeclareParameter("l", estimator.Range{Min: 0, Max: a.minMax(n-k, 400)}, estimator.Range{Min: 0, Max: n - k})
	return a
}

func (a *BallCollision) P() int { return a.param("p") }
func (a *BallCollision) PL() int { return a.param("pl") }
func (a *BallCollision) L() int { return a.param("l") }

func (a *BallCollision) ValidChoices(r estimator.Ranges) iter.Seq[estimator.Params] {
	return filtered(estimator.Grid(r, "p", "pl", "l"), a.ParametersInvalid)
}

func (a *BallCollision) ParametersInvalid(params estimator.Params) bool {
	n, k, w := a.nkw()
	p, pl, l := params["p"], params["pl"], params["l"]
	return 2*p+2*pl > w || k/2 < p || l/2 < pl || n-k-l < w-2*p-2*pl
}

func (a *BallCollision) TimeAndMemory(params estimator.Params) (float64, float64) {
	n, k, _ := a.nkw()
	p, pl, l, r := params["p"], params["pl"], params["l"], params["r"]
	k1 := k / 2

	L1 := combinat.BinomialFloat(k1, p)
	if a.EarlyAbort(combinat.Log2(L1)) {
		return abort()
	}
	L1 *= max(1, combinat.BinomialFloat(l/2, pl))
	if a.EarlyAbort(combinat.Log2(L1)) {
		return abort()
	}
	memory := math.Log2(2*L1 + memMatrix(n, k, r))
	if a.exceedsMemory(memory) {
		return a.overBound()
	}

	good := 2*combinat.Log2Binomial(k1, p) + 2*combinat.Log2Binomial(l/2, pl)
	perms := a.permutations(l, 2*p+2*pl, good)
	iteration := gaussianElimination(n, k, r) + listMerge(L1, l, a.HashMap()) + float64(2*p)*collisions(L1, L1, l)
	return perms + math.Log2(iteration), memory
}
