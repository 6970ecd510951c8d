package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cwbudde/isdestimator/internal/estimator"
	"github.com/cwbudde/isdestimator/internal/server"
	"github.com/cwbudde/isdestimator/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// problemFlags are the flags shared by every command that estimates.
type problemFlags struct {
	family          string
	n, k, w         int
	m, q            int
	theta           float64
	memoryBound     float64
	nsolutions      float64
	excluded        []string
	complexityType  string
	memoryAccess    string
	nearestNeighbor string
	tildeO          bool
}

func (f *problemFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&f.family, "family", "sd", "Problem family: sd or mq")
	fs.IntVar(&f.n, "n", 0, "Code length (sd) or number of variables (mq)")
	fs.IntVar(&f.k, "k", 0, "Code dimension (sd)")
	fs.IntVar(&f.w, "w", 0, "Error weight (sd)")
	fs.IntVar(&f.m, "m", 0, "Number of polynomials (mq)")
	fs.IntVar(&f.q, "q", 2, "Field order (mq)")
	fs.Float64Var(&f.theta, "theta", 2, "Exponent of the field multiplication cost log2(q)^theta (mq)")
	fs.Float64Var(&f.memoryBound, "memory-bound", 0, "Log2 memory bound (default unbounded)")
	fs.Float64Var(&f.nsolutions, "nsolutions", 0, "Log2 number of solutions (default expected value)")
	fs.StringSliceVar(&f.excluded, "exclude", nil, "Algorithms to skip")
	fs.StringVar(&f.complexityType, "complexity-type", "estimate", "Complexity type: estimate or tilde-o")
	fs.StringVar(&f.memoryAccess, "memory-access", "constant", "Memory access cost: constant, logarithmic, square-root, cube-root")
	fs.StringVar(&f.nearestNeighbor, "nn", "indyk-motwani", "May-Ozerov nearest-neighbour algorithm: indyk-motwani or mitm")
	fs.BoolVar(&f.tildeO, "tilde-o", false, "Also compute asymptotic estimates")
}

// config builds the normalised job configuration. Optional values are taken
// only when their flag was set.
func (f *problemFlags) config(fs *pflag.FlagSet) (server.JobConfig, error) {
	cfg := server.JobConfig{
		Family:          f.family,
		N:               f.n,
		K:               f.k,
		W:               f.w,
		M:               f.m,
		Q:               f.q,
		Excluded:        f.excluded,
		ComplexityType:  f.complexityType,
		MemoryAccess:    f.memoryAccess,
		NearestNeighbor: f.nearestNeighbor,
		TildeO:          f.tildeO,
	}
	if fs.Changed("memory-bound") {
		cfg.MemoryBound = &f.memoryBound
	}
	if fs.Changed("nsolutions") {
		cfg.NSolutions = &f.nsolutions
	}
	if fs.Changed("theta") {
		cfg.Theta = &f.theta
	}

	cfg = cfg.Normalize()
	return cfg, cfg.Validate()
}

// storeFlags select the report store of a command.
type storeFlags struct {
	kind string
	path string
}

func (f *storeFlags) bind(fs *pflag.FlagSet, defaultKind string) {
	fs.StringVar(&f.kind, "store", defaultKind, "Report store: fs, sqlite or none")
	fs.StringVar(&f.path, "data-dir", "./data", "Store directory (fs) or database file (sqlite)")
}

// open returns nil when the store is disabled.
func (f *storeFlags) open(ctx context.Context) (store.Store, error) {
	if f.kind == "none" {
		return nil, nil
	}
	return store.NewStore(ctx, f.kind, f.path)
}

// runCached loads the report of cfg from st, or estimates and saves it. st
// may be nil.
func runCached(ctx context.Context, st store.Store, cfg server.JobConfig, progress func(done, total int, entry estimator.AlgorithmReport)) (estimator.Report, bool, error) {
	key, err := store.ReportKey(cfg)
	if err != nil {
		return estimator.Report{}, false, err
	}

	if st != nil {
		r, err := st.Load(key)
		if err == nil {
			slog.Debug("Using stored report", "key", key)
			return r.Estimate, true, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			slog.Warn("Failed to load stored report", "key", key, "error", err)
		}
	}

	report, err := cfg.Run(ctx, progress)
	if err != nil {
		return report, false, err
	}

	if st != nil {
		r, err := store.NewReport(cfg.Family, cfg, report)
		if err != nil {
			return report, false, err
		}
		if err := st.Save(r); err != nil {
			return report, false, fmt.Errorf("save report: %w", err)
		}
		slog.Info("Saved report", "key", r.Key)
	}
	return report, false, nil
}

func addProblemFlags(cmd *cobra.Command) *problemFlags {
	f := &problemFlags{}
	f.bind(cmd.Flags())
	return f
}
