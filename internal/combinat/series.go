package combinat

import "math/big"

// Series is a power series truncated to len(s) coefficients.
type Series []*big.Int

// NewSeries returns the zero series with the given number of coefficients.
func NewSeries(length int) Series {
	s := make(Series, length)
	for i := range s {
		s[i] = new(big.Int)
	}
	return s
}

// Mul returns s*t truncated to the length of s.
func (s Series) Mul(t Series) Series {
	out := NewSeries(len(s))
	tmp := new(big.Int)
	for i, a := range s {
		if a.Sign() == 0 {
			continue
		}
		for j, b := range t {
			if i+j >= len(s) {
				break
			}
			if b.Sign() == 0 {
				continue
			}
			out[i+j].Add(out[i+j], tmp.Mul(a, b))
		}
	}
	return out
}

// Coefficient returns the coefficient of z^i, or 0 beyond the truncation.
func (s Series) Coefficient(i int) *big.Int {
	if i < 0 || i >= len(s) {
		return new(big.Int)
	}
	return s[i]
}

// HilbertSeries returns the Hilbert series of a semi-regular system of
// polynomials with the given degrees in n variables over F_q, truncated to
// length coefficients. Over F_2 the field equations are taken into account:
//
//	q = 2:  (1+z)^n / prod (1+z^d)
//	q > 2:  prod (1-z^d) / (1-z)^n
func HilbertSeries(n int, degrees []int, q int, length int) Series {
	s := NewSeries(length)
	if q == 2 {
		for i := 0; i <= n && i < length; i++ {
			s[i].Set(Binomial(n, i))
		}
		for _, d := range degrees {
			inv := NewSeries(length)
			for j := 0; j*d < length; j++ {
				if j%2 == 0 {
					inv[j*d].SetInt64(1)
				} else {
					inv[j*d].SetInt64(-1)
				}
			}
			s = s.Mul(inv)
		}
		return s
	}

	s[0].SetInt64(1)
	for _, d := range degrees {
		f := NewSeries(length)
		f[0].SetInt64(1)
		if d < length {
			f[d].SetInt64(-1)
		}
		s = s.Mul(f)
	}
	inv := NewSeries(length)
	inv[0].SetInt64(1)
	for i := 1; i < length && n > 0; i++ {
		inv[i].Set(Binomial(n+i-1, i))
	}
	return s.Mul(inv)
}

// DegreeOfRegularity returns the index of the first non-positive coefficient
// of the Hilbert series. The search stops past the Macaulay bound; ok is false
// when no such coefficient exists there (underdetermined systems).
func DegreeOfRegularity(n int, degrees []int, q int) (degree int, ok bool) {
	bound := n
	macaulay := 0
	for _, d := range degrees {
		macaulay += d - 1
	}
	if macaulay > bound {
		bound = macaulay
	}
	bound += 2

	s := HilbertSeries(n, degrees, q, bound+1)
	for i, c := range s {
		if c.Sign() <= 0 {
			return i, true
		}
	}
	return 0, false
}
