package sd

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/isdestimator/internal/combinat"
	"github.com/cwbudde/isdestimator/internal/estimator"
)

func TestPrangeTildeO(t *testing.T) {
	p := newProblem(t, 100, 50, 10)
	a := NewPrange(p, newConfig(t))
	res, err := a.TildeO()
	if err != nil {
		t.Fatal(err)
	}
	want := 100 * (combinat.BinaryEntropy(0.1) - 0.5*combinat.BinaryEntropy(0.2))
	assertClose(t, "time", res.Time, want)
	assertClose(t, "memory", res.Memory, 0)
	if len(res.Parameters) != 0 {
		t.Errorf("Prange has no rates, got %v", res.Parameters)
	}
}

func TestTildeOEnvelope(t *testing.T) {
	p := newProblem(t, 100, 50, 10)
	prange, err := NewPrange(p, newConfig(t)).TildeO()
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"Stern", "Dumer", "BallCollision", "BJMM-d2", "MayOzerov-d2", "BJMM", "MayOzerov"} {
		t.Run(name, func(t *testing.T) {
			res, err := build(name, p, newConfig(t, estimator.WithTildeORestarts(2))).TildeO()
			if err != nil {
				t.Fatal(err)
			}
			if res.Time <= 0 || res.Time > prange.Time+tolerance {
				t.Errorf("time %v outside (0, %v]", res.Time, prange.Time)
			}
			if res.Memory < -tolerance {
				t.Errorf("negative memory exponent %v", res.Memory)
			}
			for v, rate := range res.Parameters {
				if v != "depth" && (rate < 0 || rate > 1) {
					t.Errorf("rate %s = %v outside [0, 1]", v, rate)
				}
			}
		})
	}
}

func TestTildeOSelectorDepth(t *testing.T) {
	p := newProblem(t, 100, 50, 10)
	res, err := NewBJMM(p, newConfig(t, estimator.WithTildeORestarts(2))).TildeO()
	if err != nil {
		t.Fatal(err)
	}
	if res.Parameters["depth"] != 2 {
		t.Errorf("selected depth %v, want 2", res.Parameters["depth"])
	}
}

func TestTildeONotImplemented(t *testing.T) {
	p := newProblem(t, 100, 50, 10)
	for _, name := range []string{"BJMM-d3", "MayOzerov-d3"} {
		a := build(name, p, newConfig(t))
		if _, err := a.TildeO(); !errors.Is(err, estimator.ErrNotImplemented) {
			t.Errorf("%s: expected ErrNotImplemented, got %v", name, err)
		}
	}
}

func TestTildeOMode(t *testing.T) {
	p := newProblem(t, 100, 50, 10)
	a := NewPrange(p, newConfig(t, estimator.WithComplexityType(estimator.TildeO)))
	want := 100 * (combinat.BinaryEntropy(0.1) - 0.5*combinat.BinaryEntropy(0.2))
	assertClose(t, "TimeComplexity", a.TimeComplexity(), want)

	if _, _, err := a.ComplexityAt(estimator.Params{}); !errors.Is(err, estimator.ErrInvalidConfig) {
		t.Errorf("pinned evaluation in tilde-O mode: expected ErrInvalidConfig, got %v", err)
	}
}

func TestTildeOMemoryBound(t *testing.T) {
	// A zero memory budget leaves only the memoryless Prange corner.
	p := newProblem(t, 100, 50, 10, estimator.WithMemoryBound(0))
	stern, err := NewStern(p, newConfig(t, estimator.WithTildeORestarts(2))).TildeO()
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsInf(stern.Time, 1) && stern.Memory > 1e-3 {
		t.Errorf("memory exponent %v breaks the zero bound", stern.Memory)
	}
}

func TestMayOzerovNN(t *testing.T) {
	if got := mayOzerovNN(0.5, 0, 0.1); got != 0 {
		t.Errorf("empty lists should cost nothing, got %v", got)
	}
	if got := mayOzerovNN(0.3, 0.05, 0.04); got < 0.05 {
		t.Errorf("cost %v below the list size", got)
	}
}
