package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/isdestimator/internal/estimator"
	"github.com/cwbudde/isdestimator/internal/store"
	"github.com/spf13/cobra"
)

var (
	estimateProblem *problemFlags
	estimateStore   storeFlags
	estimateJSON    bool
	estimateParams  bool
	precision       int
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate every algorithm on one problem",
	Long: `Estimates the time and memory of every applicable algorithm on one problem
instance and prints a table, or the JSON report with --json.

Reports are cached in the store under the hash of the request unless
--store=none is given.`,
	Example: `  isdestimator estimate --n 1284 --k 1028 --w 24
  isdestimator estimate --n 100 --k 50 --w 10 --memory-bound 12 --tilde-o
  isdestimator estimate --family mq --n 40 --m 40 --q 16 --json`,
	RunE: runEstimate,
}

func init() {
	estimateProblem = addProblemFlags(estimateCmd)
	estimateStore.bind(estimateCmd.Flags(), "none")
	estimateCmd.Flags().BoolVar(&estimateJSON, "json", false, "Print the JSON report")
	estimateCmd.Flags().BoolVar(&estimateParams, "params", true, "Show optimal parameters")
	estimateCmd.Flags().IntVar(&precision, "precision", 1, "Decimals of the complexities")
	rootCmd.AddCommand(estimateCmd)
}

func runEstimate(cmd *cobra.Command, args []string) error {
	cfg, err := estimateProblem.config(cmd.Flags())
	if err != nil {
		return err
	}

	st, err := estimateStore.open(cmd.Context())
	if err != nil {
		return err
	}
	defer store.CloseIfSupported(st)

	slog.Info("Starting estimation", "family", cfg.Family, "n", cfg.N)
	start := time.Now()
	report, cached, err := runCached(cmd.Context(), st, cfg, func(done, total int, entry estimator.AlgorithmReport) {
		slog.Debug("Algorithm estimated", "algorithm", entry.Name, "done", done, "total", total)
	})
	if err != nil {
		return err
	}
	slog.Info("Estimation complete", "elapsed", time.Since(start), "cached", cached, "fastest", report.Fastest)

	out := cmd.OutOrStdout()
	if estimateJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintf(out, "%s (%s)\n\n", report.Problem, report.ComplexityType)
	opts := estimator.TableOptions{ShowParameters: estimateParams, ShowTildeO: cfg.TildeO, Precision: precision}
	if err := report.WriteTable(out, opts); err != nil {
		return err
	}
	printErrors(cmd, report)
	if report.Fastest != "" {
		fmt.Fprintf(out, "\nFastest: %s\n", report.Fastest)
	}
	return nil
}

// printErrors lists the algorithms whose estimate failed.
func printErrors(cmd *cobra.Command, report estimator.Report) {
	for _, a := range report.Algorithms {
		if a.Estimate != nil && a.Estimate.Error != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", a.Name, a.Estimate.Error)
		}
	}
}
