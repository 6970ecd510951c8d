package sd

import (
	"fmt"
	"iter"
	"math"
	"strings"

	"github.com/cwbudde/isdestimator/internal/combinat"
	"github.com/cwbudde/isdestimator/internal/estimator"
)

// NearestNeighbor selects the final matching step of May-Ozerov.
type NearestNeighbor int

const (
	// IndykMotwani buckets on random coordinates.
	IndykMotwani NearestNeighbor = iota
	// MITM enumerates errors on half of the coordinates.
	MITM
)

func (nn NearestNeighbor) String() string {
	if nn == MITM {
		return "mitm"
	}
	return "indyk-motwani"
}

// ParseNearestNeighbor parses "indyk-motwani" (the default for "") or "mitm".
func ParseNearestNeighbor(s string) (NearestNeighbor, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "indyk-motwani", "im", "":
		return IndykMotwani, nil
	case "mitm":
		return MITM, nil
	}
	return 0, fmt.Errorf("%w: unknown nearest-neighbour algorithm %q", estimator.ErrInvalidConfig, s)
}

// MayOzerovOption configures the May-Ozerov variants.
type MayOzerovOption func(*mayOzerovConfig)

type mayOzerovConfig struct {
	nn NearestNeighbor
}

// WithNearestNeighbor selects the nearest-neighbour algorithm.
func WithNearestNeighbor(nn NearestNeighbor) MayOzerovOption {
	return func(c *mayOzerovConfig) { c.nn = nn }
}

func newMayOzerovConfig(opts []MayOzerovOption) mayOzerovConfig {
	var c mayOzerovConfig
	for _, o := range opts {
		o(&c)
	}
	return c
}

func (c mayOzerovConfig) nearestNeighbor(L float64, l, w int, hmap bool) float64 {
	if c.nn == MITM {
		return mitmNN(L, l, w, hmap)
	}
	return indykMotwani(L, l, w, hmap)
}

// MayOzerovDepth2 builds the weight-p half of the error with a BJMM-style
// tree matched on l bits, then finds the remaining w-p errors on the n-k-l
// other coordinates by nearest-neighbour search.
type MayOzerovDepth2 struct {
	*algorithm
	mo mayOzerovConfig
}

func NewMayOzerovDepth2(p *Problem, cfg estimator.Config, opts ...MayOzerovOption) *MayOzerovDepth2 {
	a := &MayOzerovDepth2{mo: newMayOzerovConfig(opts)}
	a.algorithm = newAlgorithm("MayOzerov-d2", p, cfg, a)
	n, k, w := a.nkw()
	a.declareM4RI()
	a.DeclareParameter("p", estimator.Range{Min: 0, Max: a.minMax(w, 35)}, estimator.Range{Min: 0, Max: w})
	a.DeclareParameter("p1", estimator.Range{Min: 0, Max: a.minMax(w, 35)}, estimator.Range{Min: 0, Max: w})
	a.DeclareParameter("l", estimator.Range{Min: 0, Max: a.minMax(n-k, 500)}, estimator.Range{Min: 0, Max: n - k})
	return a
}

func (a *MayOzerovDepth2) P() int { return a.param("p") }
func (a *MayOzerovDepth2) P1() int { return a.param("p1") }
func (a *MayOzerovDepth2) L() int { return a.param("l") }

func (a *MayOzerovDepth2) ValidChoices(r estimator.Ranges) iter.Seq[estimator.Params] {
	return depth2Choices(a.algorithm, r, a.ParametersInvalid)
}

func (a *MayOzerovDepth2) ParametersInvalid(params estimator.Params) bool {
	return depth2Invalid(a.algorithm, params)
}

func (a *MayOzerovDepth2) TimeAndMemory(params estimator.Params) (float64, float64) {
	n, k, w := a.nkw()
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

	L12 := max(1, collisions(L1, L1, l))
	memory := math.Log2(2*L1 + L12 + memMatrix(n, k, r))
	if a.exceedsMemory(memory) {
		return a.overBound()
	}

	perms := a.permutations(l, p, combinat.Log2Binomial(k+l, p))
	tree := 2*listMerge(L1, l, hmap) + a.mo.nearestNeighbor(L12, n-k-l, w-p, hmap)
	repetitions := max(1, math.Ceil(math.Exp2(float64(l)-reps)))
	return perms + math.Log2(gaussianElimination(n, k, r)+repetitions*tree), memory
}

// MayOzerovDepth3 uses a three-level tree: weight-p2 base vectors merged to
// weight p1 on l1 bits, then to weight p on the remaining l-l1 bits.
type MayOzerovDepth3 struct {
	*algorithm
	mo mayOzerovConfig
}

func NewMayOzerovDepth3(p *Problem, cfg estimator.Config, opts ...MayOzerovOption) *MayOzerovDepth3 {
	a := &MayOzerovDepth3{mo: newMayOzerovConfig(opts)}
	a.algorithm = newAlgorithm("MayOzerov-d3", p, cfg, a)
	n, k, w := a.nkw()
	a.declareM4RI()
	a.DeclareParameter("p", estimator.Range{Min: 0, Max: a.minMax(w, 25)}, estimator.Range{Min: 0, Max: w})
	a.DeclareParameter("p1", estimator.Range{Min: 0, Max: a.minMax(w, 20)}, estimator.Range{Min: 0, Max: w})
	a.DeclareParameter("p2", estimator.Range{Min: 0, Max: a.minMax(w, 10)}, estimator.Range{Min: 0, Max: w})
	a.DeclareParameter("l", estimator.Range{Min: 0, Max: a.minMax(n-k, 400)}, estimator.Range{Min: 0, Max: n - k})
	return a
}

func (a *MayOzerovDepth3) P() int { return a.param("p") }
func (a *MayOzerovDepth3) P1() int { return a.param("p1") }
func (a *MayOzerovDepth3) P2() int { return a.param("p2") }
func (a *MayOzerovDepth3) L() int { return a.param("l") }

func (a *MayOzerovDepth3) ValidChoices(r estimator.Ranges) iter.Seq[estimator.Params] {
	return depth3Choices(a.algorithm, r, a.ParametersInvalid)
}

func (a *MayOzerovDepth3) ParametersInvalid(params estimator.Params) bool {
	return depth3Invalid(a.algorithm, params)
}

func (a *MayOzerovDepth3) TimeAndMemory(params estimator.Params) (float64, float64) {
	n, k, w := a.nkw()
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
	l1 := ceilLog2(reps1)
	if l1 > l {
		return abort()
	}

	L2 := max(1, collisions(L1, L1, l1))
	L3 := max(1, collisions(L2, L2, l-l1))
	memory := math.Log2(2*L1 + L2 + L3 + memMatrix(n, k, r))
	if a.exceedsMemory(memory) {
		return a.overBound()
	}

	perms := a.permutations(l, p, combinat.Log2Binomial(k+l, p))
	tree := 4*listMerge(L1, l1, hmap) + 2*listMerge(L2, l-l1, hmap) + a.mo.nearestNeighbor(L3, n-k-l, w-p, hmap)
	repetitions := max(1, math.Ceil(math.Exp2(float64(l)-reps2))) * math.Ceil(math.Exp2(float64(l1)-reps1))
	return perms + math.Log2(gaussianElimination(n, k, r)+repetitions*tree), memory
}

// MayOzerov selects the cheaper of MayOzerovDepth2 and MayOzerovDepth3.
type MayOzerov struct {
	*depthSelector
	Depth2 *MayOzerovDepth2
	Depth3 *MayOzerovDepth3
}

func NewMayOzerov(p *Problem, cfg estimator.Config, opts ...MayOzerovOption) *MayOzerov {
	d2, d3 := NewMayOzerovDepth2(p, cfg, opts...), NewMayOzerovDepth3(p, cfg, opts...)
	return &MayOzerov{
		depthSelector: newDepthSelector("MayOzerov", p, cfg, d2.Algorithm, d3.Algorithm),
		Depth2:        d2,
		Depth3:        d3,
	}
}
