package opt

import "testing"

func TestConvergenceTrackerPatience(t *testing.T) {
	c := NewConvergenceTracker(ConvergenceConfig{Enabled: true, Patience: 2, Threshold: 0.01})

	steps := []struct {
		cost float64
		want bool
	}{
		{10, false},
		{5, false},    // 50% improvement
		{4.99, false}, // stale 1
		{4.98, true},  // stale 2
	}
	for i, s := range steps {
		if got := c.Update(s.cost); got != s.want {
			t.Errorf("step %d: Update(%v) = %v, want %v", i, s.cost, got, s.want)
		}
	}
	if c.BestCost() != 4.98 {
		t.Errorf("BestCost = %v, want 4.98", c.BestCost())
	}
	if len(c.History()) != 4 {
		t.Errorf("History has %d entries, want 4", len(c.History()))
	}
}

func TestConvergenceTrackerZeroReference(t *testing.T) {
	c := NewConvergenceTracker(ConvergenceConfig{Enabled: true, Patience: 1, Threshold: 0.5})
	c.Update(0)
	if !c.Update(-0.1) {
		t.Error("absolute improvement below threshold should converge")
	}
}

func TestConvergenceTrackerDisabled(t *testing.T) {
	c := NewConvergenceTracker(DisabledConvergenceConfig())
	for i := 0; i < 10; i++ {
		if c.Update(1) {
			t.Fatal("disabled tracker converged")
		}
	}
	c.Reset()
	if c.StaleCount() != 0 || len(c.History()) != 0 {
		t.Error("Reset did not clear the tracker")
	}
}
