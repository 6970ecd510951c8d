// Package combinat holds the stateless counting helpers shared by every cost model:
// exact and logarithmic binomials, binary entropy, and truncated power series.
package combinat

import (
	"math"
	"math/big"
	"sync"
	"sync/atomic"
)

type binomialKey struct {
	n, k int
}

type binomialEntry struct {
	value float64
	log2  float64
}

// maxCachedEntries caps the memo. Past it, coefficients are computed on every
// call; results are the same either way.
var maxCachedEntries int64 = 1 << 20

// binomialCache memoises C(n, k) as float64 and log2. Cost models evaluate the
// same handful of coefficients millions of times during a grid search.
var (
	binomialCache  sync.Map
	binomialCached atomic.Int64
)

// Binomial returns C(n, k) exactly. Arguments outside 0 <= k <= n yield 0.
func Binomial(n, k int) *big.Int {
	if n < 0 || k < 0 || k > n {
		return new(big.Int)
	}
	return new(big.Int).Binomial(int64(n), int64(k))
}

func lookup(n, k int) binomialEntry {
	key := binomialKey{n, k}
	if v, ok := binomialCache.Load(key); ok {
		return v.(binomialEntry)
	}

	b := Binomial(n, k)
	entry := binomialEntry{value: bigToFloat(b), log2: Log2Big(b)}
	if binomialCached.Load() < maxCachedEntries {
		if _, loaded := binomialCache.LoadOrStore(key, entry); !loaded {
			binomialCached.Add(1)
		}
	}
	return entry
}

// BinomialFloat returns C(n, k) rounded to the nearest float64, +Inf when it
// does not fit, and 0 outside 0 <= k <= n.
func BinomialFloat(n, k int) float64 {
	if n < 0 || k < 0 || k > n {
		return 0
	}
	return lookup(n, k).value
}

// Log2Binomial returns log2 C(n, k), or -Inf when the coefficient is zero.
func Log2Binomial(n, k int) float64 {
	if n < 0 || k < 0 || k > n {
		return math.Inf(-1)
	}
	return lookup(n, k).log2
}

// Log2Big returns log2(x) for a non-negative integer of any size.
// Zero maps to -Inf.
func Log2Big(x *big.Int) float64 {
	if x.Sign() <= 0 {
		return math.Inf(-1)
	}
	bits := x.BitLen()
	if bits <= 1000 {
		return math.Log2(bigToFloat(x))
	}
	shift := bits - 64
	top := new(big.Int).Rsh(x, uint(shift))
	return math.Log2(bigToFloat(top)) + float64(shift)
}

func bigToFloat(x *big.Int) float64 {
	f, _ := new(big.Float).SetInt(x).Float64()
	return f
}

// Log2 is math.Log2 with the convention log2(x) = -Inf for x <= 0.
func Log2(x float64) float64 {
	if x <= 0 {
		return math.Inf(-1)
	}
	return math.Log2(x)
}
