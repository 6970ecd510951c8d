package mq

import "github.com/cwbudde/isdestimator/internal/estimator"

var (
	_ estimator.Attack = (*ExhaustiveSearch)(nil)
	_ estimator.Attack = (*F5)(nil)
	_ estimator.Attack = (*HybridF5)(nil)
)

// DefaultRegistry returns the MQ attacks in reporting order.
func DefaultRegistry() *estimator.Registry[*Problem] {
	reg := estimator.NewRegistry[*Problem]()
	reg.Register("ExhaustiveSearch", func(p *Problem, cfg estimator.Config) (estimator.Attack, error) {
		return NewExhaustiveSearch(p, cfg), nil
	})
	reg.Register("F5", func(p *Problem, cfg estimator.Config) (estimator.Attack, error) {
		a, err := NewF5(p, cfg)
		if err != nil {
			return nil, err
		}
		return a, nil
	})
	reg.Register("HybridF5", func(p *Problem, cfg estimator.Config) (estimator.Attack, error) {
		return NewHybridF5(p, cfg), nil
	})
	return reg
}

// NewEstimator runs every applicable MQ attack not in excluded on p.
func NewEstimator(p *Problem, excluded []string, opts ...estimator.Option) (*estimator.Estimator[*Problem], error) {
	return estimator.New(p, DefaultRegistry(), excluded, opts...)
}
