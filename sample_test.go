package acor

import (
	"math"
	"math/rand"
	"testing"
)

func TestRankWeights_Normalized(t *testing.T) {
	cases := []struct {
		k int
		q float64
	}{
		{1, 0.1},
		{2, 0.01},
		{3, 0.1},
		{50, 0.1},
		{50, 0.01},
		{100, 2.0},
	}

	for _, tc := range cases {
		weights := rankWeights(tc.k, tc.q)

		if len(weights) != tc.k {
			t.Fatalf("k=%d q=%g: expected %d weights, got %d", tc.k, tc.q, tc.k, len(weights))
		}

		var total float64
		for i, w := range weights {
			if w < 0 {
				t.Errorf("k=%d q=%g: weight %d is negative: %g", tc.k, tc.q, i, w)
			}
			total += w
		}
		if math.Abs(total-1) > 1e-9 {
			t.Errorf("k=%d q=%g: weights sum to %g, expected 1", tc.k, tc.q, total)
		}

		// Rank 1 sits at the kernel mean, so weights never increase with rank.
		for i := 1; i < len(weights); i++ {
			if weights[i] > weights[i-1] {
				t.Errorf("k=%d q=%g: weight %d (%g) exceeds weight %d (%g)",
					tc.k, tc.q, i, weights[i], i-1, weights[i-1])
			}
		}
	}
}

func TestRankWeights_SmallQConcentratesOnBest(t *testing.T) {
	weights := rankWeights(50, 0.01)

	if weights[0] < 0.6 {
		t.Errorf("Expected q=0.01 to concentrate mass on rank 0, got %g", weights[0])
	}
	if weights[49] > 1e-6 {
		t.Errorf("Expected negligible weight on last rank, got %g", weights[49])
	}
}

func TestNormalPDF(t *testing.T) {
	// Standard normal density at the mean is 1/sqrt(2*pi).
	want := 0.3989422804014327
	if got := normalPDF(0, 0, 1); math.Abs(got-want) > 1e-12 {
		t.Errorf("normalPDF(0,0,1) = %g, want %g", got, want)
	}

	// Symmetric around the mean.
	left, right := normalPDF(-1.3, 0.5, 2), normalPDF(2.3, 0.5, 2)
	if math.Abs(left-right) > 1e-15 {
		t.Errorf("Expected symmetric density, got %g and %g", left, right)
	}
}

func TestRouletteSelect_IndexInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	weights := rankWeights(10, 0.2)

	for i := 0; i < 1000; i++ {
		idx := rouletteSelect(rng.Float64()*sum(weights), weights)
		if idx < 0 || idx >= len(weights) {
			t.Fatalf("Selection returned out-of-range index %d", idx)
		}
	}
}

func TestRouletteSelect_Degenerate(t *testing.T) {
	// All mass on one entry: selection must land there for any draw.
	weights := []float64{0, 0, 1, 0}
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 100; i++ {
		if idx := rouletteSelect(rng.Float64()*sum(weights), weights); idx != 2 {
			t.Fatalf("Expected index 2 for degenerate weights, got %d", idx)
		}
	}
}

func TestRouletteSelect_UnderflowCapsToLast(t *testing.T) {
	// A draw that survives the full subtraction walk must still terminate
	// at the last index.
	weights := []float64{0.3, 0.3}
	if idx := rouletteSelect(0.6+1e-9, weights); idx != 1 {
		t.Errorf("Expected cap to last index 1, got %d", idx)
	}
}

func TestSpread(t *testing.T) {
	o := &optimizer{
		cfg: Config{ArchiveSize: 3, Xi: 0.5},
		archive: []Solution{
			{Position: []float64{1}},
			{Position: []float64{4}},
			{Position: []float64{10}},
		},
	}

	// Deviations from the guide value 1 are 0, 3 and 9.
	want := 0.5 * (0 + 3 + 9) / 2
	if got := o.spread(0, 0); got != want {
		t.Errorf("spread(0,0) = %g, want %g", got, want)
	}

	// From the guide value 4 the deviations are 3, 0 and 6.
	want = 0.5 * (3 + 0 + 6) / 2
	if got := o.spread(1, 0); got != want {
		t.Errorf("spread(1,0) = %g, want %g", got, want)
	}
}

func TestSpread_IdenticalArchiveIsZero(t *testing.T) {
	o := &optimizer{
		cfg: Config{ArchiveSize: 3, Xi: 0.85},
		archive: []Solution{
			{Position: []float64{2.5}},
			{Position: []float64{2.5}},
			{Position: []float64{2.5}},
		},
	}

	if got := o.spread(0, 0); got != 0 {
		t.Errorf("Expected zero spread for identical archive, got %g", got)
	}
}
