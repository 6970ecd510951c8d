package estimator

import (
	"fmt"

	"github.com/cwbudde/isdestimator/internal/opt"
)

// Config controls how algorithms search and report their complexities.
type Config struct {
	ComplexityType  ComplexityType
	BitComplexities bool
	MemoryAccess    MemoryAccess

	// AdjustRadius is the distance to a range boundary at which the search
	// widens that boundary, and the amount it is widened by.
	AdjustRadius   int
	AdaptiveRanges bool
	EarlyAbort     bool

	// FullDomain searches every parameter over its whole domain instead of
	// the capped default range.
	FullDomain bool

	// HashMap selects hash-map list merging over sort-based merging.
	HashMap bool

	Minimizer      opt.ConstrainedMinimizer
	TildeORestarts int
	Seed           int64
}

// Option configures a Config.
type Option func(*Config)

// DefaultConfig returns the default configuration without a minimiser; call
// NewConfig to get a complete one.
func DefaultConfig() Config {
	return Config{
		ComplexityType:  Estimate,
		BitComplexities: true,
		MemoryAccess:    ConstantAccess,
		AdjustRadius:    10,
		AdaptiveRanges:  true,
		EarlyAbort:      true,
		HashMap:         true,
		TildeORestarts:  5,
		Seed:            1,
	}
}

func WithComplexityType(c ComplexityType) Option {
	return func(cfg *Config) { cfg.ComplexityType = c }
}

func WithBitComplexities(enabled bool) Option {
	return func(cfg *Config) { cfg.BitComplexities = enabled }
}

func WithMemoryAccess(a MemoryAccess) Option {
	return func(cfg *Config) { cfg.MemoryAccess = a }
}

func WithAdjustRadius(r int) Option {
	return func(cfg *Config) { cfg.AdjustRadius = r }
}

func WithAdaptiveRanges(enabled bool) Option {
	return func(cfg *Config) { cfg.AdaptiveRanges = enabled }
}

func WithEarlyAbort(enabled bool) Option {
	return func(cfg *Config) { cfg.EarlyAbort = enabled }
}

func WithFullDomain(enabled bool) Option {
	return func(cfg *Config) { cfg.FullDomain = enabled }
}

func WithHashMap(enabled bool) Option {
	return func(cfg *Config) { cfg.HashMap = enabled }
}

// WithMinimizer replaces the default mayfly multi-start minimiser.
func WithMinimizer(m opt.ConstrainedMinimizer) Option {
	return func(cfg *Config) { cfg.Minimizer = m }
}

func WithTildeORestarts(n int) Option {
	return func(cfg *Config) { cfg.TildeORestarts = n }
}

// WithSeed seeds the default minimiser.
func WithSeed(seed int64) Option {
	return func(cfg *Config) { cfg.Seed = seed }
}

// NewConfig applies opts over DefaultConfig and validates the result.
func NewConfig(opts ...Option) (Config, error) {
	cfg := DefaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if cfg.Minimizer == nil {
		cfg.Minimizer = opt.NewMultiStart(opt.MultiStartConfig{
			Restarts: cfg.TildeORestarts,
			Seed:     cfg.Seed,
		})
	}
	return cfg, nil
}

// Validate reports malformed configuration values.
func (c Config) Validate() error {
	if !c.ComplexityType.valid() {
		return fmt.Errorf("%w: unknown complexity type %d", ErrInvalidConfig, int(c.ComplexityType))
	}
	if err := c.MemoryAccess.validate(); err != nil {
		return err
	}
	if c.AdjustRadius < 0 {
		return fmt.Errorf("%w: adjust radius must be non-negative, got %d", ErrInvalidConfig, c.AdjustRadius)
	}
	if c.TildeORestarts < 1 {
		return fmt.Errorf("%w: tilde-o restarts must be positive, got %d", ErrInvalidConfig, c.TildeORestarts)
	}
	return nil
}
