package sd

import (
	"math"
	"testing"

	"github.com/cwbudde/isdestimator/internal/estimator"
)

const tolerance = 1e-9

func newConfig(t *testing.T, opts ...estimator.Option) estimator.Config {
	t.Helper()
	cfg, err := estimator.NewConfig(opts...)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	return cfg
}

func newProblem(t *testing.T, n, k, w int, opts ...estimator.ProblemOption) *Problem {
	t.Helper()
	p, err := NewProblem(n, k, w, opts...)
	if err != nil {
		t.Fatalf("NewProblem: %v", err)
	}
	return p
}

type attack interface {
	estimator.Attack
	ComplexityAt(estimator.Params) (float64, float64, error)
}

func build(name string, p *Problem, cfg estimator.Config) attack {
	switch name {
	case "Prange":
		return NewPrange(p, cfg)
	case "Stern":
		return NewStern(p, cfg)
	case "Dumer":
		return NewDumer(p, cfg)
	case "BallCollision":
		return NewBallCollision(p, cfg)
	case "BJMM-d2":
		return NewBJMMDepth2(p, cfg)
	case "BJMM-d3":
		return NewBJMMDepth3(p, cfg)
	case "BJMM":
		return NewBJMM(p, cfg)
	case "MayOzerov-d2":
		return NewMayOzerovDepth2(p, cfg)
	case "MayOzerov-d3":
		return NewMayOzerovDepth3(p, cfg)
	case "MayOzerov":
		return NewMayOzerov(p, cfg)
	}
	panic("unknown attack " + name)
}

func assertClose(t *testing.T, what string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > tolerance {
		t.Errorf("%s = %.15g, want %.15g", what, got, want)
	}
}

func assertParams(t *testing.T, got, want estimator.Params) {
	t.Helper()
	for name, v := range want {
		if got[name] != v {
			t.Errorf("parameter %s = %d, want %d (all: %v)", name, got[name], v, got)
		}
	}
	if len(got) != len(want) {
		t.Errorf("parameters %v, want %v", got, want)
	}
}

func TestEstimates(t *testing.T) {
	tests := []struct {
		name         string
		time, memory float64
		params       estimator.Params
	}{
		{"Prange", 28.29177422325019, 12.688250309133178, estimator.Params{"r": 4}},
		{"Stern", 23.80446872849854, 16.023234556845985, estimator.Params{"r": 4, "p": 2, "l": 9}},
		{"Dumer", 23.087566197730986, 16.51422090935813, estimator.Params{"r": 4, "p": 2, "l": 10}},
		{"BallCollision", 23.80446872849854, 16.023234556845985, estimator.Params{"r": 4, "p": 2, "pl": 0, "l": 9}},
		{"BJMM-d2", 21.79379362230885, 14.538673953082668, estimator.Params{"r": 4, "p": 4, "p1": 2, "l": 11}},
		{"BJMM-d3", 22.077224006701247, 15.131696223597775, estimator.Params{"r": 4, "p": 6, "p1": 4, "p2": 2, "l": 19}},
		{"BJMM", 21.79379362230885, 14.538673953082668, estimator.Params{"depth": 2, "r": 4, "p": 4, "p1": 2, "l": 11}},
		{"MayOzerov-d2", 20.830075389621403, 14.302067672526519, estimator.Params{"r": 4, "p": 4, "p1": 2, "l": 3}},
		{"MayOzerov-d3", 21.039777960015517, 15.036173612553483, estimator.Params{"r": 4, "p": 6, "p1": 4, "p2": 2, "l": 10}},
		{"MayOzerov", 20.830075389621403, 14.302067672526519, estimator.Params{"depth": 2, "r": 4, "p": 4, "p1": 2, "l": 3}},
	}
	p := newProblem(t, 100, 50, 10)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := build(tt.name, p, newConfig(t))
			if a.Name() != tt.name {
				t.Errorf("Name() = %q", a.Name())
			}
			assertClose(t, "time", a.TimeComplexity(), tt.time)
			assertClose(t, "memory", a.MemoryComplexity(), tt.memory)
			assertParams(t, a.OptimalParameters(), tt.params)

			res, err := a.Complexity()
			if err != nil {
				t.Fatal(err)
			}
			assertClose(t, "Complexity().Time", res.Time, tt.time)
			if len(res.Parameters) != len(tt.params) {
				t.Errorf("Complexity().Parameters = %v", res.Parameters)
			}
		})
	}
}

func TestEstimatesWithoutEarlyAbort(t *testing.T) {
	p := newProblem(t, 100, 50, 10)
	for _, name := range []string{"Stern", "Dumer", "BJMM-d2", "MayOzerov-d2", "BJMM-d3"} {
		t.Run(name, func(t *testing.T) {
			with := build(name, p, newConfig(t))
			without := build(name, p, newConfig(t, estimator.WithEarlyAbort(false)))
			if with.TimeComplexity() != without.TimeComplexity() {
				t.Errorf("early abort changed the time: %v != %v", with.TimeComplexity(), without.TimeComplexity())
			}
			assertParams(t, without.OptimalParameters(), with.OptimalParameters())
		})
	}
}

func TestLargerInstance(t *testing.T) {
	p := newProblem(t, 200, 100, 20)
	cfg := newConfig(t)

	stern := NewStern(p, cfg)
	assertClose(t, "Stern time", stern.TimeComplexity(), 33.78998545966408)
	assertParams(t, stern.OptimalParameters(), estimator.Params{"r": 5, "p": 2, "l": 11})
	if stern.P() != 2 || stern.L() != 11 || stern.R() != 5 {
		t.Errorf("accessors disagree: p=%d l=%d r=%d", stern.P(), stern.L(), stern.R())
	}

	prange := NewPrange(p, cfg)
	assertClose(t, "Prange time", prange.TimeComplexity(), 41.735292292901114)
}

func TestSortingInsteadOfHashMap(t *testing.T) {
	p := newProblem(t, 100, 50, 10)
	a := NewStern(p, newConfig(t, estimator.WithHashMap(false)))
	assertClose(t, "time", a.TimeComplexity(), 24.175880879697637)
	assertParams(t, a.OptimalParameters(), estimator.Params{"r": 4, "p": 1, "l": 1})
}

func TestMemoryBound(t *testing.T) {
	// Bounds are in bits: log2(100) above the log2 number of stored vectors.
	t.Run("Stern", func(t *testing.T) {
		a := NewStern(newProblem(t, 100, 50, 10, estimator.WithMemoryBound(14)), newConfig(t))
		assertClose(t, "time", a.TimeComplexity(), 24.103994785970116)
		assertClose(t, "memory", a.MemoryComplexity(), 13.501837184902296)
		assertParams(t, a.OptimalParameters(), estimator.Params{"r": 4, "p": 1, "l": 1})
	})

	t.Run("Prange", func(t *testing.T) {
		a := NewPrange(newProblem(t, 100, 50, 10, estimator.WithMemoryBound(12.6)), newConfig(t))
		assertClose(t, "time", a.TimeComplexity(), 28.449978655863557)
		assertClose(t, "memory", a.MemoryComplexity(), 12.501837184902296)
		assertParams(t, a.OptimalParameters(), estimator.Params{"r": 3})
	})

	t.Run("raw counts", func(t *testing.T) {
		a := NewPrange(newProblem(t, 100, 50, 10, estimator.WithMemoryBound(6)), newConfig(t, estimator.WithBitComplexities(false)))
		assertParams(t, a.OptimalParameters(), estimator.Params{"r": 3})
		if m := a.MemoryComplexity(); m > 6 {
			t.Errorf("memory = %v exceeds the bound 6", m)
		}
	})

	t.Run("representations", func(t *testing.T) {
		p := newProblem(t, 100, 50, 10, estimator.WithMemoryBound(14))
		mo := NewMayOzerovDepth2(p, newConfig(t))
		assertClose(t, "MayOzerov-d2", mo.TimeComplexity(), 21.08512251492952)
		assertParams(t, mo.OptimalParameters(), estimator.Params{"r": 4, "p": 4, "p1": 2, "l": 5})
		bjmm := NewBJMMDepth2(p, newConfig(t))
		assertClose(t, "BJMM-d2", bjmm.TimeComplexity(), 24.120228055729665)
		assertParams(t, bjmm.OptimalParameters(), estimator.Params{"r": 4, "p": 2, "p1": 2, "l": 7})
	})

	t.Run("infeasible", func(t *testing.T) {
		p := newProblem(t, 100, 50, 10, estimator.WithMemoryBound(12))
		for _, name := range []string{"Prange", "Stern", "Dumer", "BallCollision", "BJMM", "MayOzerov"} {
			a := build(name, p, newConfig(t))
			if !math.IsInf(a.TimeComplexity(), 1) || !math.IsInf(a.MemoryComplexity(), 1) {
				t.Errorf("%s: expected +Inf, got %v / %v", name, a.TimeComplexity(), a.MemoryComplexity())
			}
		}
	})

	t.Run("monotone", func(t *testing.T) {
		for _, name := range []string{"Stern", "Dumer", "BJMM-d2", "MayOzerov-d2"} {
			prev := math.Inf(1)
			for _, bound := range []float64{12, 12.6, 13, 14, 15, 16, 18, 20, 24} {
				a := build(name, newProblem(t, 100, 50, 10, estimator.WithMemoryBound(bound)), newConfig(t))
				got := a.TimeComplexity()
				if got > prev+tolerance {
					t.Errorf("%s: time grew from %v to %v when the bound was relaxed to %v", name, prev, got, bound)
				}
				prev = got
			}
		}
	})
}

func TestReportedMemoryWithinBound(t *testing.T) {
	names := []string{
		"Prange", "Stern", "Dumer", "BallCollision",
		"BJMM-d2", "BJMM-d3", "BJMM", "MayOzerov-d2", "MayOzerov-d3", "MayOzerov",
	}
	for _, bits := range []bool{true, false} {
		for _, bound := range []float64{6, 9, 12, 12.6, 14, 16} {
			p := newProblem(t, 100, 50, 10, estimator.WithMemoryBound(bound))
			for _, name := range names {
				a := build(name, p, newConfig(t, estimator.WithBitComplexities(bits)))
				time, memory := a.TimeComplexity(), a.MemoryComplexity()
				if math.IsInf(time, 1) {
					if !math.IsInf(memory, 1) {
						t.Errorf("%s bits=%v bound=%v: infinite time with memory %v", name, bits, bound, memory)
					}
					continue
				}
				if memory > bound {
					t.Errorf("%s bits=%v bound=%v: memory %v exceeds the bound (time %v)", name, bits, bound, memory, time)
				}
			}
		}
	}
}

func TestPinnedParameters(t *testing.T) {
	p := newProblem(t, 100, 50, 10)
	a := NewStern(p, newConfig(t))

	if err := a.SetParameters(estimator.Params{"p": 1, "l": 1}); err != nil {
		t.Fatal(err)
	}
	assertClose(t, "pinned time", a.TimeComplexity(), 24.103994785970116)
	assertParams(t, a.OptimalParameters(), estimator.Params{"r": 4, "p": 1, "l": 1})

	a.Reset()
	assertClose(t, "time after reset", a.TimeComplexity(), 23.80446872849854)
}

func TestComplexityAt(t *testing.T) {
	p := newProblem(t, 100, 50, 10)

	stern := NewStern(p, newConfig(t))
	got, _, err := stern.ComplexityAt(estimator.Params{"p": 2, "l": 9})
	if err != nil {
		t.Fatal(err)
	}
	assertClose(t, "Stern at (2, 9)", got, 23.80446872849854)

	bjmm := NewBJMM(p, newConfig(t))
	got, err = bjmm.TimeComplexityAt(estimator.Params{"depth": 3, "p": 6, "p1": 4, "p2": 2, "l": 19})
	if err != nil {
		t.Fatal(err)
	}
	assertClose(t, "BJMM depth 3", got, 22.077224006701247)

	if _, err := bjmm.TimeComplexityAt(estimator.Params{"depth": 4}); err == nil {
		t.Error("expected an error for depth 4")
	}
}

func TestValidChoicesAreValid(t *testing.T) {
	p := newProblem(t, 60, 30, 6)
	cfg := newConfig(t)
	models := []interface {
		estimator.CostModel
		ParameterNames() []string
		ParameterRange(string) (estimator.Range, bool)
	}{
		NewStern(p, cfg), NewDumer(p, cfg), NewBallCollision(p, cfg),
		NewBJMMDepth2(p, cfg), NewBJMMDepth3(p, cfg),
		NewMayOzerovDepth2(p, cfg), NewMayOzerovDepth3(p, cfg),
	}
	for _, m := range models {
		ranges := estimator.Ranges{}
		for _, name := range m.ParameterNames() {
			if r, ok := m.ParameterRange(name); ok {
				ranges[name] = r
			}
		}
		count := 0
		for choice := range m.ValidChoices(ranges) {
			count++
			if m.ParametersInvalid(choice) {
				t.Errorf("%T yielded invalid choice %v", m, choice)
			}
			for name, v := range choice {
				if !ranges[name].Contains(v) {
					t.Errorf("%T yielded %s=%d outside %v", m, name, v, ranges[name])
				}
			}
		}
		if count == 0 {
			t.Errorf("%T yielded no choices", m)
		}
	}
}

func TestDepthSelection(t *testing.T) {
	p := newProblem(t, 100, 50, 10)

	bjmm := NewBJMM(p, newConfig(t))
	if bjmm.Depth() != 2 {
		t.Errorf("BJMM depth = %d, want 2", bjmm.Depth())
	}
	if bjmm.TimeComplexity() != bjmm.Depth2.TimeComplexity() {
		t.Errorf("selector time %v differs from depth 2 time %v", bjmm.TimeComplexity(), bjmm.Depth2.TimeComplexity())
	}

	mo := NewMayOzerov(p, newConfig(t))
	if mo.Depth() != 2 {
		t.Errorf("MayOzerov depth = %d, want 2", mo.Depth())
	}
	if mo.Depth3.P2() != 2 {
		t.Errorf("MayOzerov depth 3 p2 = %d, want 2", mo.Depth3.P2())
	}

	if err := bjmm.SetComplexityType(estimator.TildeO); err != nil {
		t.Fatal(err)
	}
	if bjmm.Depth3.Config().ComplexityType != estimator.TildeO {
		t.Error("complexity type not propagated to the depth 3 variant")
	}
}

func TestMITMNearestNeighbor(t *testing.T) {
	p := newProblem(t, 100, 50, 10)
	a := NewMayOzerovDepth2(p, newConfig(t), WithNearestNeighbor(MITM))
	if got := a.TimeComplexity(); math.IsInf(got, 1) || got <= 0 {
		t.Fatalf("unexpected MITM time %v", got)
	}
	if a.mo.nn != MITM {
		t.Errorf("nearest neighbour = %v, want mitm", a.mo.nn)
	}
}
