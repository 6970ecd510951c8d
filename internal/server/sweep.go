package server

import (
	"context"
	"fmt"

	"github.com/cwbudde/isdestimator/internal/chart"
	"github.com/cwbudde/isdestimator/internal/estimator"
)

// Sweep runs c once per memory bound, overriding c.MemoryBound. step is
// called after each bound and may be nil.
func (c JobConfig) Sweep(ctx context.Context, bounds []float64, step func(i int, report estimator.Report)) (chart.Sweep, error) {
	if len(bounds) == 0 {
		return chart.Sweep{}, fmt.Errorf("%w: no memory bounds to sweep", estimator.ErrInvalidConfig)
	}

	reports := make([]estimator.Report, 0, len(bounds))
	var problem string
	for i, b := range bounds {
		run := c
		run.MemoryBound = &b
		report, err := run.Run(ctx, nil)
		if err != nil {
			return chart.Sweep{}, fmt.Errorf("memory bound %v: %w", b, err)
		}
		reports = append(reports, report)
		problem = report.Problem
		if step != nil {
			step(i, report)
		}
	}
	return chart.NewSweep(problem, bounds, reports)
}
