package sd

import "github.com/cwbudde/isdestimator/internal/estimator"

var (
	_ estimator.Attack = (*Prange)(nil)
	_ estimator.Attack = (*Stern)(nil)
	_ estimator.Attack = (*Dumer)(nil)
	_ estimator.Attack = (*BallCollision)(nil)
	_ estimator.Attack = (*BJMM)(nil)
	_ estimator.Attack = (*MayOzerov)(nil)

	_ estimator.AsymptoticModel = (*Prange)(nil)
	_ estimator.AsymptoticModel = (*MayOzerovDepth2)(nil)
	_ estimator.TildeOSolver    = (*depthSelector)(nil)
)

// DefaultRegistry returns the SD attacks in reporting order. opts configure
// May-Ozerov.
func DefaultRegistry(opts ...MayOzerovOption) *estimator.Registry[*Problem] {
	reg := estimator.NewRegistry[*Problem]()
	reg.Register("Prange", func(p *Problem, cfg estimator.Config) (estimator.Attack, error) {
		return NewPrange(p, cfg), nil
	})
	reg.Register("Stern", func(p *Problem, cfg estimator.Config) (estimator.Attack, error) {
		return NewStern(p, cfg), nil
	})
	reg.Register("Dumer", func(p *Problem, cfg estimator.Config) (estimator.Attack, error) {
		return NewDumer(p, cfg), nil
	})
	reg.Register("BallCollision", func(p *Problem, cfg estimator.Config) (estimator.Attack, error) {
		return NewBallCollision(p, cfg), nil
	})
	reg.Register("BJMM", func(p *Problem, cfg estimator.Config) (estimator.Attack, error) {
		return NewBJMM(p, cfg), nil
	})
	reg.Register("MayOzerov", func(p *Problem, cfg estimator.Config) (estimator.Attack, error) {
		return NewMayOzerov(p, cfg, opts...), nil
	})
	return reg
}

// NewEstimator runs every SD attack not in excluded on p.
func NewEstimator(p *Problem, excluded []string, opts ...estimator.Option) (*estimator.Estimator[*Problem], error) {
	return estimator.New(p, DefaultRegistry(), excluded, opts...)
}
