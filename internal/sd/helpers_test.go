package sd

import (
	"math"
	"testing"
)

func TestGaussianElimination(t *testing.T) {
	if got := gaussianElimination(100, 50, 0); got != 2500 {
		t.Errorf("plain elimination = %v, want 2500", got)
	}
	// (r^2 + 2^r + n-k-r) * ceil(n/r) = (16+16+46) * 25
	if got := gaussianElimination(100, 50, 4); got != 1950 {
		t.Errorf("M4RI r=4 = %v, want 1950", got)
	}
	if got := memMatrix(100, 50, 4); got != 66 {
		t.Errorf("memMatrix = %v, want 66", got)
	}
}

func TestOptimizeM4RI(t *testing.T) {
	tests := []struct {
		mem  float64
		want int
	}{
		{math.Inf(1), 4},
		{6, 3},
		{5, 0},
	}
	for _, tt := range tests {
		if got := optimizeM4RI(100, 50, tt.mem); got != tt.want {
			t.Errorf("optimizeM4RI(100, 50, %v) = %d, want %d", tt.mem, got, tt.want)
		}
	}
}

func TestListMerge(t *testing.T) {
	tests := []struct {
		name string
		L    float64
		l    int
		hmap bool
		want float64
	}{
		{"singleton", 1, 5, true, 1},
		{"hash map", 4, 1, true, 16},
		{"sorting", 4, 1, false, 24},
		{"no collisions", 4, 10, true, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := listMerge(tt.L, tt.l, tt.hmap); got != tt.want {
				t.Errorf("listMerge = %v, want %v", got, tt.want)
			}
		})
	}

	if got := collisions(8, 8, 3); got != 8 {
		t.Errorf("collisions(8, 8, 3) = %v, want 8", got)
	}
	if got := collisions(1e200, 1e200, 700); math.IsInf(got, 0) {
		t.Errorf("collisions overflowed: %v", got)
	}
}

func TestNearestNeighbor(t *testing.T) {
	if got, want := indykMotwani(16, 20, 0, true), listMerge(16, 20, true); got != want {
		t.Errorf("weight 0 should reduce to a list merge: %v != %v", got, want)
	}
	// lambda = min(ceil(log2 16), 20-2*3) = 4; C(20,4)/C(17,4) = 4845/2380 = 2
	if got, want := indykMotwani(16, 20, 3, true), 2*listMerge(16, 4, true); got != want {
		t.Errorf("indykMotwani = %v, want %v", got, want)
	}
	if got, want := mitmNN(16, 20, 2, true), listMerge(160, 20, true); got != want {
		t.Errorf("mitmNN = %v, want %v", got, want)
	}
	if IndykMotwani.String() != "indyk-motwani" || MITM.String() != "mitm" {
		t.Errorf("unexpected names %q, %q", IndykMotwani, MITM)
	}
}

func TestLogHelpers(t *testing.T) {
	if got := log2Product(4, 2, 10, 0); math.Abs(got-math.Log2(6)) > 1e-12 {
		t.Errorf("log2Product = %v, want log2 6", got)
	}
	if got := log2Product(4, 5, 10, 0); !math.IsInf(got, -1) {
		t.Errorf("empty binomial should give -Inf, got %v", got)
	}
	if ceilLog2(2.3) != 3 || ceilLog2(0) != 0 || ceilLog2(-1) != 0 {
		t.Error("ceilLog2 mismatch")
	}
	if truncLog2Binomial(25, 2) != 8 || truncLog2Binomial(2, 3) != 0 {
		t.Error("truncLog2Binomial mismatch")
	}
	if evenFrom(3) != 4 || evenFrom(4) != 4 {
		t.Error("evenFrom mismatch")
	}
}
