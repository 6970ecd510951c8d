package estimator

import (
	"iter"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Params assigns integer values to named algorithm parameters.
type Params map[string]int

// Clone returns a copy of p.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	maps.Copy(out, p)
	return out
}

// With returns a copy of p with name set to v.
func (p Params) With(name string, v int) Params {
	out := p.Clone()
	out[name] = v
	return out
}

func (p Params) String() string {
	keys := slices.Sorted(maps.Keys(p))
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + strconv.Itoa(p[k])
	}
	return strings.Join(parts, ", ")
}

// Floats converts p for reporting.
func (p Params) Floats() map[string]float64 {
	out := make(map[string]float64, len(p))
	for k, v := range p {
		out[k] = float64(v)
	}
	return out
}

// Range is an inclusive integer interval.
type Range struct {
	Min, Max int
}

// Contains reports whether v lies in r.
func (r Range) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// Ranges holds the current search range of every searched parameter.
type Ranges map[string]Range

// Min returns the lower bound of name.
func (r Ranges) Min(name string) int { return r[name].Min }

// Max returns the upper bound of name.
func (r Ranges) Max(name string) int { return r[name].Max }

// Grid enumerates the cartesian product of the ranges of names, with the
// first name varying slowest.
func Grid(ranges Ranges, names ...string) iter.Seq[Params] {
	return func(yield func(Params) bool) {
		if len(names) == 0 {
			return
		}
		cur := make([]int, len(names))
		for i, n := range names {
			r := ranges[n]
			if r.Min > r.Max {
				return
			}
			cur[i] = r.Min
		}
		for {
			p := make(Params, len(names))
			for i, n := range names {
				p[n] = cur[i]
			}
			if !yield(p) {
				return
			}
			i := len(names) - 1
			for ; i >= 0; i-- {
				cur[i]++
				if cur[i] <= ranges[names[i]].Max {
					break
				}
				cur[i] = ranges[names[i]].Min
			}
			if i < 0 {
				return
			}
		}
	}
}

// MinMax caps an upper bound: min(bound, limit) unless full is set.
func MinMax(bound, limit int, full bool) int {
	if full {
		return bound
	}
	return min(bound, limit)
}
