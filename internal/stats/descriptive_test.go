package stats

import (
	"errors"
	"math"
	"testing"

	"compendium/domain/core"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestDescribe_KnownValues(t *testing.T) {
	summary, err := Describe([]float64{6.0, 6.5, 7.0}, 50)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}

	if !almostEqual(summary.Mean, 6.5, 1e-12) {
		t.Errorf("expected mean 6.5, got %f", summary.Mean)
	}
	if !almostEqual(summary.Std, 0.5, 1e-12) {
		t.Errorf("expected sample std 0.5, got %f", summary.Std)
	}
	if summary.Min != 6.0 || summary.Max != 7.0 {
		t.Errorf("expected min/max 6.0/7.0, got %f/%f", summary.Min, summary.Max)
	}
	if summary.Count != 3 {
		t.Errorf("expected count 3, got %d", summary.Count)
	}
}

func TestDescribe_EmptySignalsNoData(t *testing.T) {
	_, err := Describe(nil, 50)
	if !errors.Is(err, core.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestClean_DropsNonFinite(t *testing.T) {
	in := []float64{1.0, math.NaN(), 2.0, math.Inf(1), math.Inf(-1), 3.0}
	out := Clean(in)
	if len(out) != 3 {
		t.Fatalf("expected 3 clean values, got %d: %v", len(out), out)
	}
	for i, want := range []float64{1.0, 2.0, 3.0} {
		if out[i] != want {
			t.Errorf("clean[%d]: expected %f, got %f", i, want, out[i])
		}
	}
}

func TestSampleStd_TwoStudyMeans(t *testing.T) {
	// Per-study means baseline from two compendium studies.
	means := []float64{7.0, 8.0}
	std := SampleStd(means, 7.5)
	if !almostEqual(std, math.Sqrt(0.5), 1e-12) {
		t.Errorf("expected std ~0.7071, got %f", std)
	}
}

func TestSampleStd_SingleValueIsZero(t *testing.T) {
	if std := SampleStd([]float64{42.0}, 42.0); std != 0 {
		t.Errorf("expected 0 std for single value, got %f", std)
	}
}

func TestHistogram_BinCountsSumToValues(t *testing.T) {
	values := make([]float64, 0, 1000)
	for i := 0; i < 1000; i++ {
		values = append(values, float64(i%97))
	}
	summary, err := Describe(values, 50)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}

	h := summary.Histogram
	if len(h.Counts) != 50 {
		t.Fatalf("expected 50 bins, got %d", len(h.Counts))
	}
	if len(h.BinEdges) != 51 {
		t.Fatalf("expected 51 bin edges, got %d", len(h.BinEdges))
	}

	total := 0
	for _, c := range h.Counts {
		total += c
	}
	if total != len(values) {
		t.Errorf("bin counts sum to %d, expected %d", total, len(values))
	}
}

func TestHistogram_TopEdgeInclusive(t *testing.T) {
	h := HistogramOf([]float64{0, 10}, 0, 10, 50)
	if h.Counts[49] != 1 {
		t.Errorf("expected max value in last bin, got counts %v", h.Counts)
	}
}

func TestHistogram_DegenerateRangeWidens(t *testing.T) {
	h := HistogramOf([]float64{5, 5, 5}, 5, 5, 50)
	if h.BinEdges[0] != 4.5 || h.BinEdges[len(h.BinEdges)-1] != 5.5 {
		t.Errorf("expected widened range [4.5, 5.5], got [%f, %f]",
			h.BinEdges[0], h.BinEdges[len(h.BinEdges)-1])
	}
	total := 0
	for _, c := range h.Counts {
		total += c
	}
	if total != 3 {
		t.Errorf("expected all 3 values binned, got %d", total)
	}
}

func TestZScore(t *testing.T) {
	if z := ZScore(14.0, 10.0, 2.0); !almostEqual(z, 2.0, 1e-12) {
		t.Errorf("expected z-score 2.0, got %f", z)
	}
	if z := ZScore(14.0, 10.0, 0.0); z != 0 {
		t.Errorf("expected 0 for zero std, got %f", z)
	}
}
