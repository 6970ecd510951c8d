package sd

import (
	"iter"
	"math"

	"github.com/cwbudde/isdestimator/internal/combinat"
	"github.com/cwbudde/isdestimator/internal/estimator"
)

// BJMMDepth2 is the BJMM representation technique with a two-level merge
// tree. p errors in the k+l information columns are built from two vectors
// of weight p1 each, counted with their representations.
type BJMMDepth2 struct {
	*algorithm
}

func NewBJMMDepth2(p *Problem, cfg estimator.Config) *BJMMDepth2 {
	a := &BJMMDepth2{}
	a.algorithm = newAlgorithm("BJMM-d2", p, cfg, a)
	n, k, w := a.nkw()
	a.declareM4RI()
	a.DeclareParameter("p", estimator.Range{Min: 0, Max: a.minMax(w, 35)}, estimator.Range{Min: 0, Max: w})
	a.DeclareParameter("p1", estimator.Range{Min: 0, Max: a.minMax(w, 35)}, estimator.Range{Min: 0, Max: w})
	a.DeclareParameter("l", estimator.Range{Min: 0, Max: a.minMax(n-k, 500)}, estimator.Range{Min: 0, Max: n - k})
	return a
}

func (a *BJMMDepth2) P() int { return a.param("p") }
func (a *BJMMDepth2) P1() int { return a.param("p1") }
func (a *BJMMDepth2) L() int { return a.param("l") }

func (a *BJMMDepth2) ValidChoices(r estimator.Ranges) iter.Seq[estimator.Params] {
	return depth2Choices(a.algorithm, r, a.ParametersInvalid)
}

func (a *BJMMDepth2) ParametersInvalid(params estimator.Params) bool {
	return depth2Invalid(a.algorithm, params)
}

func (a *BJMMDepth2) TimeAndMemory(params estimator.Params) (float64, float64) {
	n, k, _ := a.nkw()
	p, p1, l, r := params["p"], params["p1"], params["l"], params["r"]
	hmap := a.HashMap()

	L1 := combinat.BinomialFloat((k+l)/2, p1/2)
	if a.EarlyAbort(combinat.Log2(L1)) {
		return abort()
	}

	reps := log2Product(p, p/2, k+l-p, p1-p/2)
	if math.IsInf(reps, -1) {
		return abort()
	}
	l1 := ceilLog2(reps)
	if l1 > l {
		return abort()
	}

	L12 := max(1, collisions(L1, L1, l1))
	memory := math.Log2(2*L1 + L12 + memMatrix(n, k, r))
	if a.exceedsMemory(memory) {
		return a.overBound()
	}

	perms := a.permutations(l, p, combinat.Log2Binomial(k+l, p))
	tree := 2*listMerge(L1, l1, hmap) + listMerge(L12, l-l1, hmap) + float64(p)*collisions(L12, L12, l-l1)
	repetitions := math.Ceil(math.Exp2(float64(l1) - reps))
	return perms + math.Log2(gaussianElimination(n, k, r)+repetitions*tree), memory
}

// depth2Choices enumerates even p and p1 with p1 >= p/2 and l leaving room
// for the w-p errors outside the information set.
func depth2Choices(a *algorithm, r estimator.Ranges, invalid func(estimator.Params) bool) iter.Seq[estimator.Params] {
	n, k, w := a.nkw()
	return func(yield func(estimator.Params) bool) {
		for p := evenFrom(r.Min("p")); p <= min(w, r.Max("p")); p += 2 {
			for l := r.Min("l"); l <= min(n-k-(w-p), r.Max("l")); l++ {
				for p1 := max(r.Min("p1"), (p+1)/2); p1 <= min(w, r.Max("p1")); p1++ {
					params := estimator.Params{"p": p, "p1": p1, "l": l}
					if invalid(params) {
						continue
					}
					if !yield(params) {
						return
					}
				}
			}
		}
	}
}

func depth2Invalid(a *algorithm, params estimator.Params) bool {
	n, k, w := a.nkw()
	p, p1, l := params["p"], params["p1"], params["l"]
	return p%2 == 1 || p1%2 == 1 || p > w || k+l < p || p1 < p/2 ||
		n-k-l < w-p || k+l-p < p1-p/2 || (k+l)/2 < p1/2
}

// BJMMDepth3 adds a third merge level: weight-p2 base vectors are merged to
// weight p1 on l1 bits, then to weight p on l2 bits, then on all l bits.
type BJMMDepth3 struct {
	*algorithm
}

func NewBJMMDepth3(p *Problem, cfg estimator.Config) *BJMMDepth3 {
	a := &BJMMDepth3{}
	a.algorithm = newAlgorithm("BJMM-d3", p, cfg, a)
	n, k, w := a.nkw()
	a.declareM4RI()
	a.DeclareParameter("p", estimator.Range{Min: 0, Max: a.minMax(w, 25)}, estimator.Range{Min: 0, Max: w})
	a.DeclareParameter("p1", estimator.Range{Min: 0, Max: a.minMax(w, 20)}, estimator.Range{Min: 0, Max: w})
	a.DeclareParameter("p2", estimator.Range{Min: 0, Max: a.minMax(w, 10)}, estimator.Range{Min: 0, Max: w})
	a.DeclareParameter("l", estimator.Range{Min: 0, Max: a.minMax(n-k, 400)}, estimator.Range{Min: 0, Max: n - k})
	return a
}

func (a *BJMMDepth3) P() int { return a.param("p") }
func (a *BJMMDepth3) P1() int { return a.param("p1") }
func (a *BJMMDepth3) P2() int { return a.param("p2") }
func (a *BJMMDepth3) L() int { return a.param("l") }

func (a *BJMMDepth3) ValidChoices(r estimator.Ranges) iter.Seq[estimator.Params] {
	return depth3Choices(a.algorithm, r, a.ParametersInvalid)
}

func (a *BJMMDepth3) ParametersInvalid(params estimator.Params) bool {
	return depth3Invalid(a.algorithm, params)
}

func (a *BJMMDepth3) TimeAndMemory(params estimator.Params) (float64, float64) {
	n, k, _ := a.nkw()
	p, p1, p2, l, r := params["p"], params["p1"], params["p2"], params["l"], params["r"]
	hmap := a.HashMap()

	L1 := combinat.BinomialFloat((k+l)/2, p2/2)
	if a.EarlyAbort(combinat.Log2(L1)) {
		return abort()
	}

	reps1 := log2Product(p1, p1/2, k+l-p1, p2-p1/2)
	reps2 := log2Product(p, p/2, k+l-p, p1-p/2)
	if math.IsInf(reps1, -1) || math.IsInf(reps2, -1) {
		return abort()
	}
	l1, l2 := ceilLog2(reps1), ceilLog2(reps2)
	if l1 > l2 || l2 > l {
		return abort()
	}

	L2 := max(1, collisions(L1, L1, l1))
	L3 := max(1, collisions(L2, L2, l2-l1))
	memory := math.Log2(2*L1 + L2 + L3 + memMatrix(n, k, r))
	if a.exceedsMemory(memory) {
		return a.overBound()
	}

	perms := a.permutations(l, p, combinat.Log2Binomial(k+l, p))
	tree := 4*listMerge(L1, l1, hmap) + 2*listMerge(L2, l2-l1, hmap) + listMerge(L3, l-l2, hmap) +
		float64(p)*collisions(L3, L3, l-l2)
	repetitions := math.Ceil(math.Exp2(float64(l2)-reps2)) * math.Ceil(math.Exp2(float64(l1)-reps1))
	return perms + math.Log2(gaussianElimination(n, k, r)+repetitions*tree), memory
}

func depth3Choices(a *algorithm, r estimator.Ranges, invalid func(estimator.Params) bool) iter.Seq[estimator.Params] {
	n, k, w := a.nkw()
	return func(yield func(estimator.Params) bool) {
		for p := evenFrom(r.Min("p")); p <= min(w, r.Max("p")); p += 2 {
			for l := r.Min("l"); l <= min(n-k-(w-p), r.Max("l")); l++ {
				for p1 := max(r.Min("p1"), (p+1)/2); p1 <= min(w, r.Max("p1")); p1++ {
					for p2 := max(r.Min("p2"), (p1+1)/2); p2 <= min(w, r.Max("p2")); p2++ {
						params := estimator.Params{"p": p, "p1": p1, "p2": p2, "l": l}
						if invalid(params) {
							continue
						}
						if !yield(params) {
							return
						}
					}
				}
			}
		}
	}
}

func depth3Invalid(a *algorithm, params estimator.Params) bool {
	n, k, w := a.nkw()
	p, p1, p2, l := params["p"], params["p1"], params["p2"], params["l"]
	return p%2 == 1 || p1%2 == 1 || p2%2 == 1 || p > w || k+l < p || p1 < p/2 || p2 < p1/2 ||
		n-k-l < w-p || k+l-p < p1-p/2 || k+l-p1 < p2-p1/2 || (k+l)/2 < p2/2
}

// BJMM selects the cheaper of BJMMDepth2 and BJMMDepth3.
type BJMM struct {
	*depthSelector
	Depth2 *BJMMDepth2
	Depth3 *BJMMDepth3
}

func NewBJMM(p *Problem, cfg estimator.Config) *BJMM {
	d2, d3 := NewBJMMDepth2(p, cfg), NewBJMMDepth3(p, cfg)
	return &BJMM{
		depthSelector: newDepthSelector("BJMM", p, cfg, d2.Algorithm, d3.Algorithm),
		Depth2:        d2,
		Depth3:        d3,
	}
}
