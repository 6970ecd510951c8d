package opt

import (
	"gonum.org/v1/gonum/optimize"
)

// polish runs Nelder-Mead from x0 and returns the result clamped to the
// unit box. f is expected to penalise points outside the box itself.
func polish(f func([]float64) float64, x0 []float64, evaluations int) []float64 {
	start := clampUnit(x0)
	problem := optimize.Problem{Func: f}
	settings := &optimize.Settings{FuncEvaluations: evaluations}

	result, err := optimize.Minimize(problem, start, settings, &optimize.NelderMead{})
	if result == nil || len(result.X) != len(start) {
		return start
	}
	if err != nil && f(result.X) > f(start) {
		return start
	}
	return clampUnit(result.X)
}
