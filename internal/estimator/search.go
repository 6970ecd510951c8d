package estimator

import (
	"log/slog"
	"maps"
	"math"
)

// search finds the assignment of the searched parameters minimising the
// reported time subject to the memory bound. base holds the parameters
// resolved before the search. The second result is false when no candidate
// is feasible.
func (a *Algorithm) search(base Params) (Params, bool) {
	var free []string
	for _, s := range a.steps {
		if _, fixed := a.fixed[s.name]; s.searched && !fixed {
			free = append(free, s.name)
		}
	}

	convex := ""
	if c, ok := a.model.(ConvexModel); ok {
		convex = c.ConvexParameter()
	}

	for round := 1; ; round++ {
		best, bestTime := a.scan(base, convex)
		if best == nil {
			slog.Debug("No feasible parameters", "algorithm", a.name, "round", round)
			return nil, false
		}
		if !a.cfg.AdaptiveRanges || len(free) < 2 || !a.widen(best, free) {
			slog.Debug("Parameter search finished",
				"algorithm", a.name,
				"params", best.String(),
				"time", bestTime,
				"rounds", round,
			)
			return best, true
		}
		slog.Debug("Optimum near range boundary, widening",
			"algorithm", a.name,
			"params", best.String(),
			"round", round,
		)
	}
}

// scan runs one pass over the candidates of the current ranges.
func (a *Algorithm) scan(base Params, convex string) (Params, float64) {
	var best Params
	bestTime := math.Inf(1)

	var (
		stopped map[string]bool
		last    map[string]float64
	)
	if convex != "" {
		stopped = map[string]bool{}
		last = map[string]float64{}
	}

	a.earlyAbortMin = math.Inf(1)
	defer func() { a.earlyAbortMin = math.Inf(1) }()

	for cand := range a.model.ValidChoices(maps.Clone(a.ranges)) {
		p := base.Clone()
		maps.Copy(p, cand)

		var group string
		if convex != "" {
			rest := p.Clone()
			delete(rest, convex)
			group = rest.String()
			if stopped[group] {
				continue
			}
		}

		t, m := a.model.TimeAndMemory(p)
		time := a.objective(t, m)
		if time < bestTime && a.WithinMemoryBound(m) {
			best, bestTime = p, time
			a.earlyAbortMin = time
		}

		if convex != "" && !math.IsInf(time, 1) {
			if prev, ok := last[group]; ok && time > prev {
				stopped[group] = true
			}
			last[group] = time
		}
	}
	return best, bestTime
}

// widen moves every range boundary lying within the adjust radius of the
// optimum outwards by the radius, without leaving the domain. It reports
// whether any range changed.
func (a *Algorithm) widen(best Params, names []string) bool {
	radius := a.cfg.AdjustRadius
	changed := false
	for _, name := range names {
		r, d, v := a.ranges[name], a.domains[name], best[name]
		next := r
		if v-r.Min < radius {
			next.Min = max(d.Min, r.Min-radius, 0)
		}
		if r.Max-v < radius {
			next.Max = min(d.Max, r.Max+radius)
		}
		if next != r {
			a.ranges[name] = next
			changed = true
		}
	}
	return changed
}
