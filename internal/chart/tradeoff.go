// Package chart renders memory-bound sweeps as HTML line charts.
package chart

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"

	"github.com/cwbudde/isdestimator/internal/estimator"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Series is the time and memory of one algorithm at each bound of a sweep.
// Infeasible points are +Inf.
type Series struct {
	Algorithm string
	Time      []float64
	Memory    []float64
}

// Sweep is the result of estimating one problem under increasing memory
// bounds.
type Sweep struct {
	Problem string
	Bounds  []float64
	Series  []Series
}

// NewSweep collects reports[i], estimated under bounds[i], into one series
// per algorithm in the order the algorithms first appear.
func NewSweep(problem string, bounds []float64, reports []estimator.Report) (Sweep, error) {
	if len(bounds) != len(reports) {
		return Sweep{}, fmt.Errorf("got %d bounds but %d reports", len(bounds), len(reports))
	}

	s := Sweep{Problem: problem, Bounds: slices.Clone(bounds)}
	index := map[string]int{}
	for i, r := range reports {
		for _, a := range r.Algorithms {
			j, ok := index[a.Name]
			if !ok {
				j = len(s.Series)
				index[a.Name] = j
				s.Series = append(s.Series, newSeries(a.Name, len(bounds)))
			}
			if a.Estimate != nil {
				s.Series[j].Time[i] = float64(a.Estimate.Time)
				s.Series[j].Memory[i] = float64(a.Estimate.Memory)
			}
		}
	}
	return s, nil
}

func newSeries(name string, n int) Series {
	s := Series{Algorithm: name, Time: make([]float64, n), Memory: make([]float64, n)}
	for i := range n {
		s.Time[i], s.Memory[i] = math.Inf(1), math.Inf(1)
	}
	return s
}

// Fastest returns the fastest algorithm at each bound, "" where none is
// feasible.
func (s Sweep) Fastest() []string {
	out := make([]string, len(s.Bounds))
	for i := range s.Bounds {
		best := math.Inf(1)
		for _, series := range s.Series {
			if t := series.Time[i]; t < best {
				out[i], best = series.Algorithm, t
			}
		}
	}
	return out
}

// Tradeoff plots time against memory bound, one line per algorithm.
func Tradeoff(s Sweep) *charts.Line {
	return lineChart(s, "Time", "time (log2)", func(series Series) []float64 { return series.Time })
}

// MemoryUsage plots the memory used by the optimal parameters.
func MemoryUsage(s Sweep) *charts.Line {
	return lineChart(s, "Memory", "memory (log2)", func(series Series) []float64 { return series.Memory })
}

func lineChart(s Sweep, title, yName string, values func(Series) []float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: s.Problem}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: s.Problem, Width: "1200px", Height: "600px"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "memory bound (log2)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
	)

	labels := make([]string, len(s.Bounds))
	for i, b := range s.Bounds {
		labels[i] = formatBound(b)
	}
	line.SetXAxis(labels)
	for _, series := range s.Series {
		line.AddSeries(series.Algorithm, lineItems(values(series)))
	}
	return line
}

// lineItems converts values to chart points; "-" marks a gap.
func lineItems(values []float64) []opts.LineData {
	out := make([]opts.LineData, len(values))
	for i, v := range values {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			out[i] = opts.LineData{Value: "-"}
			continue
		}
		out[i] = opts.LineData{Value: math.Round(v*1000) / 1000}
	}
	return out
}

func formatBound(b float64) string {
	if math.IsInf(b, 1) {
		return "inf"
	}
	return strconv.FormatFloat(b, 'f', -1, 64)
}

// WriteHTML renders the time and memory charts of s as one HTML page.
func WriteHTML(w io.Writer, s Sweep) error {
	page := components.NewPage().SetPageTitle(s.Problem)
	page.AddCharts(Tradeoff(s), MemoryUsage(s))
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
