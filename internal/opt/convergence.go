package opt

import (
	"log/slog"
	"math"
)

// ConvergenceConfig decides when further restarts stop paying off
type ConvergenceConfig struct {
	// Enabled controls whether convergence detection is active
	Enabled bool

	// Patience is the number of consecutive restarts without significant
	// improvement after which the minimiser stops
	Patience int

	// Threshold is the minimum relative improvement counted as progress.
	// When the reference cost is zero the improvement is absolute.
	Threshold float64
}

// DefaultConvergenceConfig stops after two restarts without a 1e-6 improvement
func DefaultConvergenceConfig() ConvergenceConfig {
	return ConvergenceConfig{
		Enabled:   true,
		Patience:  2,
		Threshold: 1e-6,
	}
}

// DisabledConvergenceConfig runs every restart
func DisabledConvergenceConfig() ConvergenceConfig {
	return ConvergenceConfig{Enabled: false}
}

// ConvergenceTracker tracks the best cost across restarts
type ConvergenceTracker struct {
	config          ConvergenceConfig
	history         []float64
	bestCost        float64
	lastSignificant float64
	staleCount      int
}

// NewConvergenceTracker creates a tracker with the given config
func NewConvergenceTracker(config ConvergenceConfig) *ConvergenceTracker {
	return &ConvergenceTracker{
		config:          config,
		bestCost:        math.Inf(1),
		lastSignificant: math.Inf(1),
	}
}

// Update records the best cost after a restart and reports convergence.
// Non-finite costs are recorded but never count as progress.
func (c *ConvergenceTracker) Update(cost float64) bool {
	c.history = append(c.history, cost)
	if cost < c.bestCost {
		c.bestCost = cost
	}
	if !c.config.Enabled {
		return false
	}

	if math.IsInf(c.lastSignificant, 1) {
		if !math.IsInf(cost, 0) && !math.IsNaN(cost) {
			c.lastSignificant = cost
			c.staleCount = 0
			return false
		}
		c.staleCount++
		return c.staleCount >= c.config.Patience
	}

	improvement := c.lastSignificant - cost
	if c.lastSignificant != 0 {
		improvement /= math.Abs(c.lastSignificant)
	}

	if improvement >= c.config.Threshold {
		c.lastSignificant = cost
		c.staleCount = 0
		slog.Debug("Restart improved cost", "cost", cost, "relative_improvement", improvement)
		return false
	}

	c.staleCount++
	if c.staleCount >= c.config.Patience {
		slog.Debug("Restarts converged",
			"stale_count", c.staleCount,
			"patience", c.config.Patience,
			"best_cost", c.bestCost,
		)
		return true
	}
	return false
}

// BestCost returns the best cost seen so far
func (c *ConvergenceTracker) BestCost() float64 {
	return c.bestCost
}

// History returns a copy of the recorded costs
func (c *ConvergenceTracker) History() []float64 {
	return append([]float64{}, c.history...)
}

// StaleCount returns the current number of restarts without improvement
func (c *ConvergenceTracker) StaleCount() int {
	return c.staleCount
}

// Reset clears the tracker's state
func (c *ConvergenceTracker) Reset() {
	c.history = nil
	c.bestCost = math.Inf(1)
	c.lastSignificant = math.Inf(1)
	c.staleCount = 0
}
