package estimator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
)

// Estimator runs every applicable registered attack on one problem.
type Estimator[P Problem] struct {
	problem      P
	cfg          Config
	attacks      []Attack
	inapplicable map[string]error
}

// New instantiates every registered attack not named in excluded. Attacks
// whose factory reports ErrInapplicable are skipped; any other factory error
// is returned.
func New[P Problem](problem P, reg *Registry[P], excluded []string, opts ...Option) (*Estimator[P], error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}

	names := reg.Names()
	for _, ex := range excluded {
		if !slices.Contains(names, ex) {
			return nil, fmt.Errorf("%w: unknown algorithm %q", ErrInvalidConfig, ex)
		}
	}

	e := &Estimator[P]{problem: problem, cfg: cfg, inapplicable: map[string]error{}}
	for _, name := range names {
		if slices.Contains(excluded, name) {
			continue
		}
		factory, _ := reg.Lookup(name)
		attack, err := factory(problem, cfg)
		if errors.Is(err, ErrInapplicable) {
			slog.Debug("Skipping inapplicable algorithm", "algorithm", name, "reason", err)
			e.inapplicable[name] = err
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", name, err)
		}
		e.attacks = append(e.attacks, attack)
	}
	return e, nil
}

func (e *Estimator[P]) Problem() P { return e.problem }
func (e *Estimator[P]) Config() Config { return e.cfg }

// Algorithms returns the instantiated attacks in registration order.
func (e *Estimator[P]) Algorithms() []Attack {
	return slices.Clone(e.attacks)
}

// Inapplicable returns the skipped attacks with the reason for each.
func (e *Estimator[P]) Inapplicable() map[string]error {
	out := make(map[string]error, len(e.inapplicable))
	for k, v := range e.inapplicable {
		out[k] = v
	}
	return out
}

// FastestAlgorithm returns the attack with the smallest time complexity, the
// first one on ties, or nil if no attack has a finite time.
func (e *Estimator[P]) FastestAlgorithm() Attack {
	var fastest Attack
	best := math.Inf(1)
	for _, a := range e.attacks {
		if t := a.TimeComplexity(); t < best {
			fastest, best = a, t
		}
	}
	return fastest
}

// Reset resets every attack.
func (e *Estimator[P]) Reset() {
	for _, a := range e.attacks {
		a.Reset()
	}
}

// ReportOptions selects the content of a report.
type ReportOptions struct {
	TildeO bool

	// Progress, if set, is called after each algorithm is estimated.
	Progress func(done, total int, entry AlgorithmReport)
}

// Estimate evaluates every attack in order. It stops early with ctx.Err()
// when ctx is cancelled between algorithms.
func (e *Estimator[P]) Estimate(ctx context.Context, opts ReportOptions) (Report, error) {
	report := Report{
		Problem:        e.problem.String(),
		ComplexityType: e.cfg.ComplexityType.String(),
	}
	for i, a := range e.attacks {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		entry := AlgorithmReport{Name: a.Name(), Estimate: newEntry(a.Complexity())}
		if opts.TildeO {
			entry.TildeO = newEntry(a.TildeO())
		}
		report.Algorithms = append(report.Algorithms, entry)

		if opts.Progress != nil {
			opts.Progress(i+1, len(e.attacks), entry)
		}
	}
	if f := e.FastestAlgorithm(); f != nil {
		report.Fastest = f.Name()
	}
	return report, nil
}
