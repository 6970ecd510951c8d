package estimator

import (
	"iter"
	"math"
)

type fakeProblem struct {
	bound float64
	// memoryOffset is added to log2 memory when converting to bits.
	memoryOffset float64
}

func (p fakeProblem) String() string { return "fake" }
func (p fakeProblem) Parameters() []int { return []int{10} }
func (p fakeProblem) MemoryBound() float64 { return p.bound }
func (p fakeProblem) NSolutions() float64 { return 0 }
func (p fakeProblem) ToBitComplexityTime(x float64) float64 { return x + 1 }
func (p fakeProblem) ToBitComplexityMemory(x float64) float64 { return x + p.memoryOffset }

func unbounded() fakeProblem { return fakeProblem{bound: math.Inf(1)} }

// quad has its unconstrained optimum at a=17, b=3, outside the default ranges.
type quad struct {
	*Algorithm
	evals, aborted, resolved int
}

func newQuad(p Problem, cfg Config) *quad {
	q := &quad{}
	q.Algorithm = NewAlgorithm("Quad", p, cfg, q)
	q.DeclareResolved("r", func(Params) int {
		q.resolved++
		return 2
	})
	q.DeclareParameter("a", Range{0, 5}, Range{0, 40})
	q.DeclareParameter("b", Range{0, 5}, Range{0, 40})
	return q
}

func quadTime(a, b int) float64 {
	return float64((a-17)*(a-17))/10 + float64((b-3)*(b-3))/10 + 10
}

func (q *quad) TimeAndMemory(p Params) (float64, float64) {
	q.evals++
	t := quadTime(p["a"], p["b"])
	if q.EarlyAbort(t - 0.5) {
		q.aborted++
		return math.Inf(1), math.Inf(1)
	}
	return t, 1 + float64(p["a"])/2
}

func (q *quad) ValidChoices(ranges Ranges) iter.Seq[Params] {
	return func(yield func(Params) bool) {
		for p := range Grid(ranges, "a", "b") {
			if q.ParametersInvalid(p) {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}

func (q *quad) ParametersInvalid(p Params) bool {
	return p["a"] < 0 || p["b"] < 0 || p["a"]+p["b"] > 70
}

// valley is convex in x with its minimum at x=4.
type valley struct {
	*Algorithm
	evals int
}

func newValley(p Problem, cfg Config) *valley {
	v := &valley{}
	v.Algorithm = NewAlgorithm("Valley", p, cfg, v)
	v.DeclareParameter("x", Range{0, 20}, Range{0, 20})
	return v
}

func (v *valley) TimeAndMemory(p Params) (float64, float64) {
	v.evals++
	return math.Abs(float64(p["x"]-4)) + 1, 0
}

func (v *valley) ValidChoices(ranges Ranges) iter.Seq[Params] {
	return Grid(ranges, "x")
}

func (v *valley) ParametersInvalid(Params) bool { return false }

type convexValley struct{ *valley }

func (convexValley) ConvexParameter() string { return "x" }

func newConvexValley(p Problem, cfg Config) *convexValley {
	c := &convexValley{valley: &valley{}}
	c.Algorithm = NewAlgorithm("ConvexValley", p, cfg, c)
	c.DeclareParameter("x", Range{0, 20}, Range{0, 20})
	return c
}

// bowl has an asymptotic model with optimum x=0.2 on its constraint.
type bowl struct {
	*valley
}

func newBowl(p Problem, cfg Config) *bowl {
	b := &bowl{valley: &valley{}}
	b.Algorithm = NewAlgorithm("Bowl", p, cfg, b)
	b.DeclareParameter("x", Range{0, 20}, Range{0, 20})
	return b
}

func (b *bowl) RateModel() (*RateModel, error) {
	return &RateModel{
		Variables:   []string{"x"},
		Constraints: []func(Rates) float64{func(r Rates) float64 { return 0.2 - r["x"] }},
		Time:        func(r Rates) float64 { return (r["x"]-0.25)*(r["x"]-0.25) + 0.1 },
		Memory:      func(r Rates) float64 { return r["x"] },
		Scale:       10,
	}, nil
}
