package sd

import (
	"iter"
	"math"

	"github.com/cwbudde/isdestimator/internal/estimator"
)

// depthSelector wraps the depth 2 and depth 3 variants of an attack. Its
// only parameter is the depth of the cheaper variant.
type depthSelector struct {
	*algorithm
	byDepth map[int]*estimator.Algorithm
}

func newDepthSelector(name string, p *Problem, cfg estimator.Config, d2, d3 *estimator.Algorithm) *depthSelector {
	d := &depthSelector{byDepth: map[int]*estimator.Algorithm{2: d2, 3: d3}}
	d.algorithm = newAlgorithm(name, p, cfg, d)
	d.AddChild(d2)
	d.AddChild(d3)
	d.DeclareResolved("depth", func(estimator.Params) int {
		if d2.TimeComplexity() > d3.TimeComplexity() {
			return 3
		}
		return 2
	})
	return d
}

// Depth returns the depth of the cheaper variant.
func (d *depthSelector) Depth() int { return d.param("depth") }

func (d *depthSelector) ValidChoices(estimator.Ranges) iter.Seq[estimator.Params] {
	return func(func(estimator.Params) bool) {}
}

func (d *depthSelector) ParametersInvalid(p estimator.Params) bool {
	_, ok := d.byDepth[p["depth"]]
	return !ok
}

func (d *depthSelector) TimeAndMemory(p estimator.Params) (float64, float64) {
	return d.byDepth[p["depth"]].RawComplexity()
}

// OptimalParameters returns the depth together with the optimal parameters
// of the selected variant.
func (d *depthSelector) OptimalParameters() estimator.Params {
	own := d.Algorithm.OptimalParameters()
	depth, ok := own["depth"]
	if !ok {
		return own
	}
	params := d.byDepth[depth].OptimalParameters()
	params["depth"] = depth
	return params
}

// Complexity reports the parameters of the selected variant alongside the
// depth.
func (d *depthSelector) Complexity() (estimator.Result, error) {
	res, err := d.Algorithm.Complexity()
	if err != nil || d.Config().ComplexityType == estimator.TildeO || math.IsInf(res.Time, 1) {
		return res, err
	}
	res.Parameters = d.OptimalParameters().Floats()
	return res, nil
}

// ComplexityAt evaluates the variant named by p["depth"], or the selected
// one, at the remaining parameters.
func (d *depthSelector) ComplexityAt(p estimator.Params) (float64, float64, error) {
	depth, ok := p["depth"]
	if !ok {
		depth = d.Depth()
	}
	variant, ok := d.byDepth[depth]
	if !ok {
		return 0, 0, &estimator.ParameterError{Field: "depth", Reason: "must be 2 or 3"}
	}
	rest := p.Clone()
	delete(rest, "depth")
	return variant.ComplexityAt(rest)
}

func (d *depthSelector) TimeComplexityAt(p estimator.Params) (float64, error) {
	t, _, err := d.ComplexityAt(p)
	return t, err
}

func (d *depthSelector) MemoryComplexityAt(p estimator.Params) (float64, error) {
	_, m, err := d.ComplexityAt(p)
	return m, err
}

// SolveTildeO picks the variant with the smaller asymptotic time among those
// that have an asymptotic model.
func (d *depthSelector) SolveTildeO() (estimator.Result, error) {
	var (
		best     estimator.Result
		found    bool
		firstErr error
	)
	for _, depth := range []int{2, 3} {
		res, err := d.byDepth[depth].TildeO()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if !found || res.Time < best.Time {
			params := map[string]float64{"depth": float64(depth)}
			for k, v := range res.Parameters {
				params[k] = v
			}
			best, found = estimator.Result{Time: res.Time, Memory: res.Memory, Parameters: params}, true
		}
	}
	if !found {
		return best, firstErr
	}
	return best, nil
}
