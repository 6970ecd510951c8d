package server

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/cwbudde/isdestimator/internal/estimator"
	"github.com/cwbudde/isdestimator/internal/mq"
	"github.com/cwbudde/isdestimator/internal/sd"
)

// Problem families accepted by JobConfig.
const (
	FamilySD = "sd"
	FamilyMQ = "mq"
)

// JobConfig describes one estimation request. Its JSON encoding after
// Normalize is the content key of the stored report.
type JobConfig struct {
	Family string `json:"family"`

	// SD instance.
	N int `json:"n"`
	K int `json:"k,omitempty"`
	W int `json:"w,omitempty"`

	// MQ instance; N is the number of variables.
	M     int      `json:"m,omitempty"`
	Q     int      `json:"q,omitempty"`
	Theta *float64 `json:"theta,omitempty"`

	MemoryBound *float64 `json:"memoryBound,omitempty"`
	NSolutions  *float64 `json:"nsolutions,omitempty"`

	Excluded        []string `json:"excluded,omitempty"`
	ComplexityType  string   `json:"complexityType,omitempty"`
	MemoryAccess    string   `json:"memoryAccess,omitempty"`
	NearestNeighbor string   `json:"nearestNeighbor,omitempty"`
	TildeO          bool     `json:"tildeO,omitempty"`
}

// Normalize canonicalises c so that equivalent requests encode identically:
// names are lower-cased, default options are cleared, fields of the other
// problem family are dropped and the exclusions are sorted.
func (c JobConfig) Normalize() JobConfig {
	c.Family = strings.ToLower(strings.TrimSpace(c.Family))
	if c.Family == "" {
		c.Family = FamilySD
	}

	if ct, err := estimator.ParseComplexityType(c.ComplexityType); err == nil {
		c.ComplexityType = ct.String()
		if ct == estimator.Estimate {
			c.ComplexityType = ""
		}
	}
	if access, err := estimator.ParseMemoryAccess(c.MemoryAccess); err == nil {
		c.MemoryAccess = access.String()
		if c.MemoryAccess == estimator.ConstantAccess.String() {
			c.MemoryAccess = ""
		}
	}
	if nn, err := sd.ParseNearestNeighbor(c.NearestNeighbor); err == nil {
		c.NearestNeighbor = nn.String()
		if nn == sd.IndykMotwani {
			c.NearestNeighbor = ""
		}
	}

	if c.MemoryBound != nil && math.IsInf(*c.MemoryBound, 1) {
		c.MemoryBound = nil
	}

	switch c.Family {
	case FamilySD:
		c.M, c.Q, c.Theta = 0, 0, nil
	case FamilyMQ:
		c.K, c.W, c.NearestNeighbor = 0, 0, ""
	}

	if len(c.Excluded) > 0 {
		c.Excluded = slices.Compact(slices.Sorted(slices.Values(c.Excluded)))
	}
	return c
}

// Validate checks that c describes a valid problem and configuration.
func (c JobConfig) Validate() error {
	if _, err := c.estimatorOptions(); err != nil {
		return err
	}
	var names []string
	switch c.Family {
	case FamilySD:
		if _, err := sd.ParseNearestNeighbor(c.NearestNeighbor); err != nil {
			return err
		}
		if _, err := c.sdProblem(); err != nil {
			return err
		}
		names = sd.DefaultRegistry().Names()
	case FamilyMQ:
		if _, err := c.mqProblem(); err != nil {
			return err
		}
		names = mq.DefaultRegistry().Names()
	default:
		return fmt.Errorf("%w: unknown problem family %q", estimator.ErrInvalidConfig, c.Family)
	}
	for _, ex := range c.Excluded {
		if !slices.Contains(names, ex) {
			return fmt.Errorf("%w: unknown algorithm %q", estimator.ErrInvalidConfig, ex)
		}
	}
	return nil
}

// Run estimates every applicable algorithm. progress is called after each
// algorithm and may be nil.
func (c JobConfig) Run(ctx context.Context, progress func(done, total int, entry estimator.AlgorithmReport)) (estimator.Report, error) {
	opts, err := c.estimatorOptions()
	if err != nil {
		return estimator.Report{}, err
	}
	reportOpts := estimator.ReportOptions{TildeO: c.TildeO, Progress: progress}

	switch c.Family {
	case FamilySD:
		p, err := c.sdProblem()
		if err != nil {
			return estimator.Report{}, err
		}
		nn, err := sd.ParseNearestNeighbor(c.NearestNeighbor)
		if err != nil {
			return estimator.Report{}, err
		}
		est, err := estimator.New(p, sd.DefaultRegistry(sd.WithNearestNeighbor(nn)), c.Excluded, opts...)
		if err != nil {
			return estimator.Report{}, err
		}
		return est.Estimate(ctx, reportOpts)
	case FamilyMQ:
		p, err := c.mqProblem()
		if err != nil {
			return estimator.Report{}, err
		}
		est, err := mq.NewEstimator(p, c.Excluded, opts...)
		if err != nil {
			return estimator.Report{}, err
		}
		return est.Estimate(ctx, reportOpts)
	default:
		return estimator.Report{}, fmt.Errorf("%w: unknown problem family %q", estimator.ErrInvalidConfig, c.Family)
	}
}

func (c JobConfig) estimatorOptions() ([]estimator.Option, error) {
	ct, err := estimator.ParseComplexityType(c.ComplexityType)
	if err != nil {
		return nil, err
	}
	access, err := estimator.ParseMemoryAccess(c.MemoryAccess)
	if err != nil {
		return nil, err
	}
	return []estimator.Option{
		estimator.WithComplexityType(ct),
		estimator.WithMemoryAccess(access),
	}, nil
}

func (c JobConfig) sdProblem() (*sd.Problem, error) {
	var opts []estimator.ProblemOption
	if c.MemoryBound != nil {
		opts = append(opts, estimator.WithMemoryBound(*c.MemoryBound))
	}
	if c.NSolutions != nil {
		opts = append(opts, estimator.WithNSolutions(*c.NSolutions))
	}
	return sd.NewProblem(c.N, c.K, c.W, opts...)
}

func (c JobConfig) mqProblem() (*mq.Problem, error) {
	var opts []mq.Option
	if c.MemoryBound != nil {
		opts = append(opts, mq.WithMemoryBound(*c.MemoryBound))
	}
	if c.NSolutions != nil {
		opts = append(opts, mq.WithNSolutions(*c.NSolutions))
	}
	if c.Theta != nil {
		opts = append(opts, mq.WithTheta(*c.Theta))
	}
	return mq.NewProblem(c.N, c.M, c.Q, opts...)
}
