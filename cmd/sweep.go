package main

import (
	"cmp"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/isdestimator/internal/chart"
	"github.com/cwbudde/isdestimator/internal/estimator"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	sweepProblem   *problemFlags
	sweepBoundList []float64
	sweepFrom      float64
	sweepTo        float64
	sweepStep      float64
	sweepHTML      string
	sweepPrecision int
	sweepNoBar     bool
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Estimate a problem under a range of memory bounds",
	Long: `Estimates every algorithm once per memory bound and prints the time of each
algorithm per bound. With --html the time/memory trade-off is also written as
an interactive chart.`,
	Example: `  isdestimator sweep --n 1284 --k 1028 --w 24 --from 10 --to 40 --step 5 --html tradeoff.html
  isdestimator sweep --n 100 --k 50 --w 10 --bounds 6,8,10,inf`,
	RunE: runSweep,
}

func init() {
	sweepProblem = addProblemFlags(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&sweepBoundList, "bounds", nil, "Explicit log2 memory bounds")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0, "First memory bound")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 0, "Last memory bound")
	sweepCmd.Flags().Float64Var(&sweepStep, "step", 1, "Memory bound increment")
	sweepCmd.Flags().StringVar(&sweepHTML, "html", "", "Write an HTML chart to this file")
	sweepCmd.Flags().IntVar(&sweepPrecision, "precision", 1, "Decimals of the complexities")
	sweepCmd.Flags().BoolVar(&sweepNoBar, "no-progress", false, "Hide the progress bar")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := sweepProblem.config(cmd.Flags())
	if err != nil {
		return err
	}
	bounds, err := sweepBounds(sweepBoundList, sweepFrom, sweepTo, sweepStep)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	if !sweepNoBar {
		bar = progressbar.NewOptions(len(bounds),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("Sweeping memory bounds"),
			progressbar.OptionClearOnFinish(),
		)
	}

	slog.Info("Starting sweep", "family", cfg.Family, "bounds", len(bounds))
	sweep, err := cfg.Sweep(cmd.Context(), bounds, func(i int, report estimator.Report) {
		slog.Debug("Bound estimated", "bound", bounds[i], "fastest", report.Fastest)
		if bar != nil {
			bar.Add(1)
		}
	})
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	if err := writeSweepTable(cmd.OutOrStdout(), sweep, sweepPrecision); err != nil {
		return err
	}

	if sweepHTML != "" {
		f, err := os.Create(sweepHTML)
		if err != nil {
			return fmt.Errorf("failed to create chart: %w", err)
		}
		defer f.Close()
		if err := chart.WriteHTML(f, sweep); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nWrote %s\n", sweepHTML)
	}
	return nil
}

// sweepBounds returns list if given, otherwise from, from+step, ... up to to.
func sweepBounds(list []float64, from, to, step float64) ([]float64, error) {
	if len(list) > 0 {
		for _, b := range list {
			if math.IsNaN(b) || b < 0 {
				return nil, fmt.Errorf("invalid memory bound %v", b)
			}
		}
		return list, nil
	}
	if step <= 0 {
		return nil, fmt.Errorf("--step must be positive, got %v", step)
	}
	if to < from || from < 0 {
		return nil, fmt.Errorf("need 0 <= --from <= --to, got %v and %v", from, to)
	}

	var bounds []float64
	for i := 0; ; i++ {
		b := from + float64(i)*step
		if b > to+1e-9 {
			break
		}
		bounds = append(bounds, b)
	}
	return bounds, nil
}

// writeSweepTable prints one row per bound with the time of every algorithm.
func writeSweepTable(out io.Writer, sweep chart.Sweep, precision int) error {
	fmt.Fprintf(out, "%s\n\n", sweep.Problem)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	header := []string{"BOUND"}
	for _, s := range sweep.Series {
		header = append(header, s.Algorithm)
	}
	header = append(header, "FASTEST")
	fmt.Fprintln(w, strings.Join(header, "\t"))

	fastest := sweep.Fastest()
	for i, b := range sweep.Bounds {
		row := []string{estimator.FormatBits(b, precision)}
		if math.IsInf(b, 1) {
			row[0] = "inf"
		}
		for _, s := range sweep.Series {
			row = append(row, estimator.FormatBits(s.Time[i], precision))
		}
		row = append(row, cmp.Or(fastest[i], estimator.Missing))
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}
