package estimator

import "fmt"

// Attack is the view of an algorithm consumed by estimators.
type Attack interface {
	Name() string
	Complexity() (Result, error)
	TildeO() (Result, error)
	TimeComplexity() float64
	MemoryComplexity() float64
	OptimalParameters() Params
	Reset()
}

// Factory builds an attack on problem. It returns an error matching
// ErrInapplicable when the attack does not apply.
type Factory[P Problem] func(problem P, cfg Config) (Attack, error)

// Registry is an ordered set of named attack factories.
type Registry[P Problem] struct {
	names     []string
	factories map[string]Factory[P]
}

func NewRegistry[P Problem]() *Registry[P] {
	return &Registry[P]{factories: map[string]Factory[P]{}}
}

// Register adds a factory. Registering a name twice panics.
func (r *Registry[P]) Register(name string, f Factory[P]) {
	if _, dup := r.factories[name]; dup {
		panic(fmt.Sprintf("estimator: algorithm %q registered twice", name))
	}
	r.names = append(r.names, name)
	r.factories[name] = f
}

// Names returns the registered names in registration order.
func (r *Registry[P]) Names() []string {
	return append([]string(nil), r.names...)
}

// Lookup returns the factory registered under name.
func (r *Registry[P]) Lookup(name string) (Factory[P], bool) {
	f, ok := r.factories[name]
	return f, ok
}
