package sd

import (
	"math"
	"math/big"

	"github.com/cwbudde/isdestimator/internal/combinat"
)

// gaussianElimination is the cost of bringing the (n-k) x n parity-check
// matrix into systematic form with the Method of Four Russians using blocks
// of r columns. r = 0 is plain elimination.
func gaussianElimination(n, k, r int) float64 {
	if r == 0 {
		return float64((n - k) * (n - k))
	}
	return (float64(r*r) + math.Exp2(float64(r)) + float64(n-k-r)) * float64((n+r-1)/r)
}

// memMatrix is the memory of the working matrix and the M4RI table.
func memMatrix(n, k, r int) float64 {
	return float64(n-k) + math.Exp2(float64(r))
}

// optimizeM4RI returns the r in [0, n-k) minimising the elimination cost
// whose log2 memory stays within mem.
func optimizeM4RI(n, k int, mem float64) int {
	r, best := 0, math.Inf(1)
	for i := 0; i < n-k; i++ {
		t := math.Log2(gaussianElimination(n, k, i))
		if best > t && math.Log2(memMatrix(n, k, i)) <= mem {
			r, best = i, t
		}
	}
	return r
}

// collisions is floor(a*b / 2^l), the expected number of matches between
// lists of sizes a and b on l bits.
func collisions(a, b float64, l int) float64 {
	return math.Floor(math.Ldexp(a, -l) * b)
}

// listMerge is the cost of matching two lists of size L on l bits, with a
// hash map or by sorting.
func listMerge(L float64, l int, hmap bool) float64 {
	if L <= 1 {
		return 1
	}
	c := collisions(L, L, l)
	if !hmap {
		return max(1, 2*math.Trunc(math.Log2(L))*L+c)
	}
	return 2*L + c
}

// indykMotwani is the cost of finding pairs at Hamming distance w between
// two lists of size L of l-bit vectors by bucketing on lambda random
// coordinates.
func indykMotwani(L float64, l, w int, hmap bool) float64 {
	if w == 0 {
		return listMerge(L, l, hmap)
	}
	ceilLog := 0
	if L > 1 {
		ceilLog = int(math.Ceil(math.Log2(L)))
	}
	lambda := max(0, min(ceilLog, l-2*w))

	den := combinat.Binomial(l-w, lambda)
	if den.Sign() == 0 {
		return math.Inf(1)
	}
	reps := new(big.Int).Quo(combinat.Binomial(l, lambda), den)
	f, _ := new(big.Float).SetInt(reps).Float64()
	return f * listMerge(L, lambda, hmap)
}

// mitmNN is the meet-in-the-middle nearest-neighbour cost: every vector is
// expanded by all weight-w/2 errors on half of the l coordinates.
func mitmNN(L float64, l, w int, hmap bool) float64 {
	return listMerge(L*combinat.BinomialFloat(l/2, w/2), l, hmap)
}

// log2Product returns log2 C(a, b) + log2 C(c, d).
func log2Product(a, b, c, d int) float64 {
	return combinat.Log2Binomial(a, b) + combinat.Log2Binomial(c, d)
}

// ceilLog2 is ceil(x) for x > 0 and 0 otherwise, for log2 values.
func ceilLog2(x float64) int {
	if x <= 0 {
		return 0
	}
	return int(math.Ceil(x))
}

// truncLog2Binomial is int(log2 C(n, k)), 0 when C(n, k) is zero.
func truncLog2Binomial(n, k int) int {
	v := combinat.Log2Binomial(n, k)
	if math.IsInf(v, -1) {
		return 0
	}
	return int(v)
}
