package combinat

import "math"

// BinaryEntropy returns H(x) = -x log2 x - (1-x) log2 (1-x), clamping x to [0, 1].
func BinaryEntropy(x float64) float64 {
	if x <= 0 || x >= 1 || math.IsNaN(x) {
		return 0
	}
	return -x*math.Log2(x) - (1-x)*math.Log2(1-x)
}

// InverseBinaryEntropy returns the x in [0, 1/2] with H(x) = y.
// Values of y outside [0, 1] are clamped.
func InverseBinaryEntropy(y float64) float64 {
	if y <= 0 {
		return 0
	}
	if y >= 1 {
		return 0.5
	}
	lo, hi := 0.0, 0.5
	for i := 0; i < 100; i++ {
		mid := (lo + hi) / 2
		if BinaryEntropy(mid) < y {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// BinomialApproximation is the asymptotic log2 C(n, k) ~ n H(k/n) for real
// arguments. Degenerate arguments (k <= 0, k >= n) give 0.
func BinomialApproximation(n, k float64) float64 {
	if n <= 0 || k <= 0 || k >= n {
		return 0
	}
	return n * BinaryEntropy(k/n)
}
