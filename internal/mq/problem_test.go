package mq

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/isdestimator/internal/estimator"
)

func TestNewProblem(t *testing.T) {
	p, err := NewProblem(10, 5, 4)
	if err != nil {
		t.Fatal(err)
	}
	if p.NVariables() != 10 || p.NPolynomials() != 5 || p.Order() != 4 {
		t.Errorf("unexpected parameters %v", p.Parameters())
	}
	if got, want := p.NSolutions(), 10.0; got != want {
		t.Errorf("NSolutions = %v, want %v", got, want)
	}
	if p.String() != "MQ(n=10, m=5, q=4)" {
		t.Errorf("String = %q", p.String())
	}
}

func TestNewProblemValidation(t *testing.T) {
	tests := []struct {
		name    string
		n, m, q int
		opts    []Option
		field   string
	}{
		{"no variables", 0, 5, 2, nil, "n"},
		{"no polynomials", 5, 0, 2, nil, "m"},
		{"composite order", 5, 5, 6, nil, "q"},
		{"order one", 5, 5, 1, nil, "q"},
		{"theta too large", 5, 5, 2, []Option{WithTheta(2.5)}, "theta"},
		{"negative theta", 5, 5, 2, []Option{WithTheta(-1)}, "theta"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProblem(tt.n, tt.m, tt.q, tt.opts...)
			var pe *estimator.ParameterError
			if !errors.As(err, &pe) || pe.Field != tt.field {
				t.Fatalf("expected a parameter error on %q, got %v", tt.field, err)
			}
			if !errors.Is(err, estimator.ErrInvalidParameter) {
				t.Errorf("error does not match ErrInvalidParameter: %v", err)
			}
		})
	}
}

func TestIsPrimePower(t *testing.T) {
	for q, want := range map[int]bool{2: true, 3: true, 4: true, 8: true, 9: true, 25: true, 31: true, 256: true, 6: false, 12: false, 1: false, 0: false} {
		if got := isPrimePower(q); got != want {
			t.Errorf("isPrimePower(%d) = %v, want %v", q, got, want)
		}
	}
}

func TestBitComplexity(t *testing.T) {
	binary, _ := NewProblem(10, 10, 2)
	if got, want := binary.ToBitComplexityTime(5), 5+math.Log2(3); got != want {
		t.Errorf("schoolbook F2 time = %v, want %v", got, want)
	}
	if got := binary.ToBitComplexityMemory(5); got != 5 {
		t.Errorf("F2 memory = %v, want 5", got)
	}

	large, _ := NewProblem(10, 10, 16, WithTheta(1.5))
	if got, want := large.ToBitComplexityTime(5), 5+1.5*2; math.Abs(got-want) > 1e-12 {
		t.Errorf("theta time = %v, want %v", got, want)
	}
	if got, want := large.ToBitComplexityMemory(5), 7.0; math.Abs(got-want) > 1e-12 {
		t.Errorf("F16 memory = %v, want %v", got, want)
	}

	bounded, err := NewProblem(10, 10, 2, WithMemoryBound(20), WithNSolutions(1))
	if err != nil {
		t.Fatal(err)
	}
	if bounded.MemoryBound() != 20 || bounded.NSolutions() != 1 {
		t.Errorf("options ignored: bound %v, nsolutions %v", bounded.MemoryBound(), bounded.NSolutions())
	}
}
