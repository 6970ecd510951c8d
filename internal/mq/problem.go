// Package mq estimates attacks on the multivariate quadratic problem: find a
// common root in F_q^n of m quadratic polynomials.
package mq

import (
	"fmt"
	"math"

	"github.com/cwbudde/isdestimator/internal/estimator"
)

// Problem is an MQ instance with n variables and m polynomials over F_q.
type Problem struct {
	n, m, q     int
	theta       *float64
	memoryBound float64
	nsolutions  float64
}

type options struct {
	theta   *float64
	problem []estimator.ProblemOption
}

// Option configures a Problem.
type Option func(*options)

// WithTheta charges log2(q)^theta bit operations per field multiplication
// instead of the schoolbook 2 log2(q)^2 + log2(q). theta must lie in [0, 2].
func WithTheta(theta float64) Option {
	return func(o *options) { o.theta = &theta }
}

func WithMemoryBound(bound float64) Option {
	return func(o *options) { o.problem = append(o.problem, estimator.WithMemoryBound(bound)) }
}

func WithNSolutions(log2Solutions float64) Option {
	return func(o *options) { o.problem = append(o.problem, estimator.WithNSolutions(log2Solutions)) }
}

// NewProblem validates n >= 1, m >= 1 and that q is a prime power.
func NewProblem(n, m, q int, opts ...Option) (*Problem, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	cfg, err := estimator.NewProblemConfig(o.problem...)
	if err != nil {
		return nil, err
	}
	switch {
	case n < 1:
		return nil, &estimator.ParameterError{Field: "n", Reason: fmt.Sprintf("need at least one variable, got %d", n)}
	case m < 1:
		return nil, &estimator.ParameterError{Field: "m", Reason: fmt.Sprintf("need at least one polynomial, got %d", m)}
	case !isPrimePower(q):
		return nil, &estimator.ParameterError{Field: "q", Reason: fmt.Sprintf("%d is not a prime power", q)}
	case o.theta != nil && (*o.theta < 0 || *o.theta > 2 || math.IsNaN(*o.theta)):
		return nil, &estimator.ParameterError{Field: "theta", Reason: fmt.Sprintf("must lie in [0, 2], got %v", *o.theta)}
	}

	p := &Problem{n: n, m: m, q: q, theta: o.theta, memoryBound: cfg.MemoryBound}
	if cfg.NSolutions != nil {
		p.nsolutions = *cfg.NSolutions
	} else {
		p.nsolutions = max(float64(n-m)*math.Log2(float64(q)), 0)
	}
	return p, nil
}

func isPrimePower(q int) bool {
	if q < 2 {
		return false
	}
	p := 2
	for p*p <= q && q%p != 0 {
		p++
	}
	if q%p != 0 {
		return true // q is prime
	}
	for q%p == 0 {
		q /= p
	}
	return q == 1
}

func (p *Problem) NVariables() int { return p.n }
func (p *Problem) NPolynomials() int { return p.m }
func (p *Problem) Order() int { return p.q }

func (p *Problem) Parameters() []int { return []int{p.n, p.m, p.q} }
func (p *Problem) MemoryBound() float64 { return p.memoryBound }
func (p *Problem) NSolutions() float64 { return p.nsolutions }

// ToBitComplexityTime converts field operations into bit operations.
func (p *Problem) ToBitComplexityTime(x float64) float64 {
	lq := math.Log2(float64(p.q))
	if p.theta != nil {
		return x + *p.theta*math.Log2(lq)
	}
	return x + math.Log2(2*lq*lq+lq)
}

// ToBitComplexityMemory charges log2(q) bits per field element.
func (p *Problem) ToBitComplexityMemory(x float64) float64 {
	return x + math.Log2(math.Log2(float64(p.q)))
}

func (p *Problem) String() string {
	return fmt.Sprintf("MQ(n=%d, m=%d, q=%d)", p.n, p.m, p.q)
}
