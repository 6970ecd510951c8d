// Package sd estimates information-set decoding attacks on binary
// syndrome decoding instances.
package sd

import (
	"fmt"
	"math"

	"github.com/cwbudde/isdestimator/internal/combinat"
	"github.com/cwbudde/isdestimator/internal/estimator"
)

// Problem is a binary syndrome decoding instance: find e of weight w with
// He = s for a random (n-k) x n parity-check matrix H.
type Problem struct {
	n, k, w     int
	memoryBound float64
	nsolutions  float64
}

// NewProblem validates n, k and w. It requires 1 <= k < n and 1 <= w <= n-k.
func NewProblem(n, k, w int, opts ...estimator.ProblemOption) (*Problem, error) {
	cfg, err := estimator.NewProblemConfig(opts...)
	if err != nil {
		return nil, err
	}
	switch {
	case n < 2:
		return nil, &estimator.ParameterError{Field: "n", Reason: fmt.Sprintf("code length must be at least 2, got %d", n)}
	case k < 1 || k >= n:
		return nil, &estimator.ParameterError{Field: "k", Reason: fmt.Sprintf("dimension must satisfy 1 <= k < n, got %d", k)}
	case w < 1 || w > n-k:
		return nil, &estimator.ParameterError{Field: "w", Reason: fmt.Sprintf("weight must satisfy 1 <= w <= n-k, got %d", w)}
	}

	p := &Problem{n: n, k: k, w: w, memoryBound: cfg.MemoryBound}
	if cfg.NSolutions != nil {
		p.nsolutions = *cfg.NSolutions
	} else {
		p.nsolutions = max(combinat.Log2Binomial(n, w)-float64(n-k), 0)
	}
	return p, nil
}

func (p *Problem) N() int { return p.n }
func (p *Problem) K() int { return p.k }
func (p *Problem) W() int { return p.w }

func (p *Problem) Parameters() []int { return []int{p.n, p.k, p.w} }
func (p *Problem) MemoryBound() float64 { return p.memoryBound }
func (p *Problem) NSolutions() float64 { return p.nsolutions }

// log2Width is log2 of the bits in one length-n vector.
func (p *Problem) log2Width() float64 {
	return math.Log2(float64(p.n))
}

// ToBitComplexityTime charges log2(n) bit operations per vector operation.
func (p *Problem) ToBitComplexityTime(x float64) float64 {
	return x + p.log2Width()
}

// ToBitComplexityMemory charges n bits per stored vector.
func (p *Problem) ToBitComplexityMemory(x float64) float64 {
	return x + p.log2Width()
}

func (p *Problem) String() string {
	return fmt.Sprintf("SD(n=%d, k=%d, w=%d)", p.n, p.k, p.w)
}
