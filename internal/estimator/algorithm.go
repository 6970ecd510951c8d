package estimator

import (
	"fmt"
	"iter"
	"math"
	"slices"
)

// CostModel is implemented by every concrete attack. Costs are log2 counts
// of elementary operations and stored elements, before bit conversion.
type CostModel interface {
	TimeAndMemory(p Params) (time, memory float64)

	// ValidChoices enumerates candidate assignments of the searched
	// parameters within ranges. Every yielded assignment must satisfy
	// ParametersInvalid(p) == false.
	ValidChoices(ranges Ranges) iter.Seq[Params]

	ParametersInvalid(p Params) bool
}

// ConvexModel is implemented by models whose time is convex along one
// searched parameter, enumerated in increasing order by ValidChoices.
type ConvexModel interface {
	ConvexParameter() string
}

// AsymptoticModel is implemented by models with a continuous rate relaxation.
type AsymptoticModel interface {
	RateModel() (*RateModel, error)
}

// TildeOSolver replaces the default asymptotic driver, e.g. for depth selectors.
type TildeOSolver interface {
	SolveTildeO() (Result, error)
}

// Result is a complexity estimate with the parameters achieving it. Estimate
// parameters are integers; tilde-O parameters are rates in [0, 1].
type Result struct {
	Time       float64
	Memory     float64
	Parameters map[string]float64
}

func infeasible() Result {
	return Result{Time: math.Inf(1), Memory: math.Inf(1), Parameters: map[string]float64{}}
}

type step struct {
	name     string
	searched bool
	resolve  func(Params) int
}

type estimateCache struct {
	time, memory float64
}

type tildeOCache struct {
	res Result
	err error
}

// Algorithm is the state shared by every attack: declared parameters, their
// ranges, memoised optima and the configuration they were computed under.
type Algorithm struct {
	name    string
	problem Problem
	model   CostModel
	cfg     Config

	steps   []step
	ranges  Ranges
	domains Ranges
	fixed   Params
	pinned  map[string]Range

	optimal  Params
	searched bool
	found    bool
	estimate *estimateCache
	tildeO   *tildeOCache

	earlyAbortMin float64
	children      []*Algorithm
}

// NewAlgorithm returns the base state for an attack named name, evaluated by model.
func NewAlgorithm(name string, problem Problem, cfg Config, model CostModel) *Algorithm {
	return &Algorithm{
		name:          name,
		problem:       problem,
		model:         model,
		cfg:           cfg,
		ranges:        Ranges{},
		domains:       Ranges{},
		fixed:         Params{},
		pinned:        map[string]Range{},
		optimal:       Params{},
		earlyAbortMin: math.Inf(1),
	}
}

func (a *Algorithm) Name() string { return a.name }
func (a *Algorithm) Problem() Problem { return a.problem }
func (a *Algorithm) Config() Config { return a.cfg }
func (a *Algorithm) HashMap() bool { return a.cfg.HashMap }
func (a *Algorithm) FullDomain() bool { return a.cfg.FullDomain }
func (a *Algorithm) Children() []*Algorithm { return a.children }

// AddChild registers an algorithm whose results a depends on. Configuration
// changes and invalidation propagate to children.
func (a *Algorithm) AddChild(child *Algorithm) {
	a.children = append(a.children, child)
}

// DeclareParameter adds a searched parameter with its default range and its
// domain. Under FullDomain the range is the whole domain.
func (a *Algorithm) DeclareParameter(name string, rng, domain Range) {
	if a.cfg.FullDomain {
		rng = domain
	}
	a.steps = append(a.steps, step{name: name, searched: true})
	a.ranges[name] = rng
	a.domains[name] = domain
}

// DeclareResolved adds a parameter computed from the problem and the
// parameters declared before it.
func (a *Algorithm) DeclareResolved(name string, resolve func(Params) int) {
	a.steps = append(a.steps, step{name: name, resolve: resolve})
}

// ParameterNames returns every declared parameter in declaration order.
func (a *Algorithm) ParameterNames() []string {
	names := make([]string, len(a.steps))
	for i, s := range a.steps {
		names[i] = s.name
	}
	return names
}

func (a *Algorithm) stepIndex(name string) int {
	return slices.IndexFunc(a.steps, func(s step) bool { return s.name == name })
}

// ParameterRange returns the current range of a searched parameter.
func (a *Algorithm) ParameterRange(name string) (Range, bool) {
	r, ok := a.ranges[name]
	return r, ok
}

// SetParameterRange replaces the range of a searched parameter. It fails if
// the range is empty or excludes a value already fixed for name.
func (a *Algorithm) SetParameterRange(name string, lo, hi int) error {
	idx := a.stepIndex(name)
	if idx < 0 || !a.steps[idx].searched {
		return &ParameterError{Field: name, Reason: "not a searched parameter of " + a.name}
	}
	if lo > hi {
		return &RangeError{Name: name, Min: lo, Max: hi, Empty: true}
	}
	for _, fixed := range []Params{a.fixed, a.optimal} {
		if v, ok := fixed[name]; ok && (v < lo || v > hi) {
			return &RangeError{Name: name, Min: lo, Max: hi, Value: v}
		}
	}

	a.ranges[name] = Range{Min: lo, Max: hi}
	d := a.domains[name]
	a.domains[name] = Range{Min: min(d.Min, lo), Max: max(d.Max, hi)}
	delete(a.pinned, name)
	a.invalidate()
	return nil
}

// SetParameters pins parameters to concrete values. Searched parameters must
// lie in their current range, which is then narrowed to the pinned value.
func (a *Algorithm) SetParameters(p Params) error {
	for name, v := range p {
		idx := a.stepIndex(name)
		if idx < 0 {
			return &ParameterError{Field: name, Reason: "unknown parameter of " + a.name}
		}
		if a.steps[idx].searched {
			if r := a.ranges[name]; !r.Contains(v) {
				return &RangeError{Name: name, Min: r.Min, Max: r.Max, Value: v}
			}
		}
	}
	for name, v := range p {
		a.fixed[name] = v
		if r, ok := a.ranges[name]; ok {
			if _, seen := a.pinned[name]; !seen {
				a.pinned[name] = r
			}
			a.ranges[name] = Range{Min: v, Max: v}
		}
	}
	a.invalidate()
	return nil
}

// SetComplexityType switches between concrete and asymptotic estimates.
func (a *Algorithm) SetComplexityType(c ComplexityType) error {
	if !c.valid() {
		return fmt.Errorf("%w: unknown complexity type %d", ErrInvalidConfig, int(c))
	}
	a.configure(func(cfg *Config) { cfg.ComplexityType = c })
	return nil
}

// SetMemoryAccess replaces the memory access model.
func (a *Algorithm) SetMemoryAccess(m MemoryAccess) error {
	if err := m.validate(); err != nil {
		return err
	}
	a.configure(func(cfg *Config) { cfg.MemoryAccess = m })
	return nil
}

// SetBitComplexities toggles reporting in bit operations.
func (a *Algorithm) SetBitComplexities(enabled bool) {
	a.configure(func(cfg *Config) { cfg.BitComplexities = enabled })
}

func (a *Algorithm) configure(fn func(*Config)) {
	fn(&a.cfg)
	for _, c := range a.children {
		c.configure(fn)
	}
	a.invalidate()
}

// Reset drops every memoised result and pinned value, restoring the ranges
// pinned parameters had before.
func (a *Algorithm) Reset() {
	for name, r := range a.pinned {
		a.ranges[name] = r
	}
	a.pinned = map[string]Range{}
	a.fixed = Params{}
	for _, c := range a.children {
		c.Reset()
	}
	a.invalidate()
}

func (a *Algorithm) invalidate() {
	a.optimal = a.fixed.Clone()
	a.searched = false
	a.found = false
	a.estimate = nil
	a.tildeO = nil
	a.earlyAbortMin = math.Inf(1)
	for _, c := range a.children {
		c.invalidate()
	}
}

// resolveThrough resolves steps 0..idx in declaration order.
func (a *Algorithm) resolveThrough(idx int) {
	for i := 0; i <= idx && i < len(a.steps); i++ {
		s := a.steps[i]
		if _, ok := a.optimal[s.name]; ok {
			continue
		}
		if s.searched {
			if !a.searched {
				a.runSearch()
			}
			if !a.found {
				return
			}
			continue
		}
		a.optimal[s.name] = s.resolve(a.optimal.Clone())
	}
}

func (a *Algorithm) runSearch() {
	best, ok := a.search(a.optimal.Clone())
	a.searched = true
	a.found = ok
	for k, v := range best {
		a.optimal[k] = v
	}
}

// hasOptimum reports whether every declared parameter has a value.
func (a *Algorithm) hasOptimum() bool {
	a.resolveThrough(len(a.steps) - 1)
	for _, s := range a.steps {
		if _, ok := a.optimal[s.name]; !ok {
			return false
		}
	}
	return true
}

// OptimalParameter returns the optimal value of name, resolving every
// parameter declared before it first.
func (a *Algorithm) OptimalParameter(name string) (int, bool) {
	idx := a.stepIndex(name)
	if idx < 0 {
		return 0, false
	}
	a.resolveThrough(idx)
	v, ok := a.optimal[name]
	return v, ok
}

// OptimalParameters returns the full optimal assignment, empty when no
// feasible assignment exists.
func (a *Algorithm) OptimalParameters() Params {
	if !a.hasOptimum() {
		return a.fixed.Clone()
	}
	return a.optimal.Clone()
}

// TimeComplexity returns the time complexity under the current complexity
// type, +Inf when infeasible or unavailable.
func (a *Algorithm) TimeComplexity() float64 {
	t, _ := a.complexities()
	return t
}

// MemoryComplexity returns the memory complexity under the current complexity
// type, +Inf when infeasible or unavailable.
func (a *Algorithm) MemoryComplexity() float64 {
	_, m := a.complexities()
	return m
}

func (a *Algorithm) complexities() (float64, float64) {
	if a.cfg.ComplexityType == TildeO {
		r, err := a.TildeO()
		if err != nil {
			return math.Inf(1), math.Inf(1)
		}
		return r.Time, r.Memory
	}
	if a.estimate == nil {
		t, m := math.Inf(1), math.Inf(1)
		if a.hasOptimum() {
			t, m = a.evaluate(a.optimal)
		}
		a.estimate = &estimateCache{time: t, memory: m}
	}
	return a.estimate.time, a.estimate.memory
}

// Complexity returns the estimate under the current complexity type.
func (a *Algorithm) Complexity() (Result, error) {
	if a.cfg.ComplexityType == TildeO {
		return a.TildeO()
	}
	t, m := a.complexities()
	params := map[string]float64{}
	if !math.IsInf(t, 1) {
		params = a.optimal.Floats()
	}
	return Result{Time: t, Memory: m, Parameters: params}, nil
}

// ComplexityAt evaluates time and memory at p, bypassing the search. Every
// searched parameter must be given; resolved parameters not in p are
// computed from it.
func (a *Algorithm) ComplexityAt(p Params) (time, memory float64, err error) {
	if a.cfg.ComplexityType == TildeO {
		return 0, 0, fmt.Errorf("%w: pinned evaluation needs the estimate complexity type", ErrInvalidConfig)
	}
	for name := range p {
		if a.stepIndex(name) < 0 {
			return 0, 0, &ParameterError{Field: name, Reason: "unknown parameter of " + a.name}
		}
	}
	full := Params{}
	for _, s := range a.steps {
		if v, ok := p[s.name]; ok {
			full[s.name] = v
			continue
		}
		if s.searched {
			return 0, 0, &ParameterError{Field: s.name, Reason: "missing value"}
		}
		full[s.name] = s.resolve(full.Clone())
	}
	time, memory = a.evaluate(full)
	return time, memory, nil
}

// TimeComplexityAt is ComplexityAt reduced to the time.
func (a *Algorithm) TimeComplexityAt(p Params) (float64, error) {
	t, _, err := a.ComplexityAt(p)
	return t, err
}

// MemoryComplexityAt is ComplexityAt reduced to the memory.
func (a *Algorithm) MemoryComplexityAt(p Params) (float64, error) {
	_, m, err := a.ComplexityAt(p)
	return m, err
}

// RawComplexity returns the unconverted model output at the optimum.
func (a *Algorithm) RawComplexity() (time, memory float64) {
	if !a.hasOptimum() {
		return math.Inf(1), math.Inf(1)
	}
	saved := a.earlyAbortMin
	a.earlyAbortMin = math.Inf(1)
	defer func() { a.earlyAbortMin = saved }()
	if a.model.ParametersInvalid(a.optimal) {
		return math.Inf(1), math.Inf(1)
	}
	return a.model.TimeAndMemory(a.optimal)
}

// EarlyAbort reports whether a point whose log2 time is at least lowerBound
// cannot beat the best point of the running search.
func (a *Algorithm) EarlyAbort(lowerBound float64) bool {
	if !a.cfg.EarlyAbort || math.IsInf(a.earlyAbortMin, 1) {
		return false
	}
	if a.cfg.BitComplexities {
		lowerBound = a.problem.ToBitComplexityTime(lowerBound)
	}
	return lowerBound > a.earlyAbortMin
}

// evaluate converts the model output at p into reported time and memory.
func (a *Algorithm) evaluate(p Params) (time, memory float64) {
	if a.model.ParametersInvalid(p) {
		return math.Inf(1), math.Inf(1)
	}
	saved := a.earlyAbortMin
	a.earlyAbortMin = math.Inf(1)
	t, m := a.model.TimeAndMemory(p)
	a.earlyAbortMin = saved

	if !a.WithinMemoryBound(m) {
		return math.Inf(1), math.Inf(1)
	}
	time = a.objective(t, m)
	if math.IsInf(time, 1) {
		return time, math.Inf(1)
	}
	return time, a.memoryBits(m)
}

// objective is the quantity the search minimises and TimeComplexity reports.
func (a *Algorithm) objective(t, m float64) float64 {
	if math.IsNaN(t) || math.IsInf(t, 1) {
		return math.Inf(1)
	}
	if a.cfg.BitComplexities {
		return a.problem.ToBitComplexityTime(t) + a.cfg.MemoryAccess.Cost(a.problem.ToBitComplexityMemory(m))
	}
	return t + a.cfg.MemoryAccess.Cost(m)
}

// WithinMemoryBound reports whether raw log2 memory m, converted to the
// reported unit, stays within the problem's memory bound.
func (a *Algorithm) WithinMemoryBound(m float64) bool {
	return a.memoryBits(m) <= a.problem.MemoryBound()
}

func (a *Algorithm) memoryBits(m float64) float64 {
	if a.cfg.BitComplexities {
		return a.problem.ToBitComplexityMemory(m)
	}
	return m
}
