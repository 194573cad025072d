package stats

import (
	"math/rand"
	"testing"
)

func TestMannWhitney_IdenticalMultisets(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5}
	b := []float64{1, 2, 3, 4, 5}

	res := MannWhitney(a, b, 0.05)
	if res.Significant {
		t.Error("identical samples must not be significant")
	}
	if res.PValue < 0.9 {
		t.Errorf("expected p-value near 1 for identical samples, got %f", res.PValue)
	}
}

func TestMannWhitney_EmptySideSkipsTest(t *testing.T) {
	res := MannWhitney(nil, []float64{1, 2, 3}, 0.05)
	if res.PValue != 1.0 || res.Significant {
		t.Errorf("expected skipped test (p=1, not significant), got p=%f sig=%v",
			res.PValue, res.Significant)
	}
}

func TestMannWhitney_ClearSeparation(t *testing.T) {
	a := make([]float64, 20)
	b := make([]float64, 20)
	for i := range a {
		a[i] = float64(i + 1)
		b[i] = float64(i + 101)
	}

	res := MannWhitney(a, b, 0.05)
	if !res.Significant {
		t.Errorf("fully separated samples should be significant, p=%f", res.PValue)
	}
	if res.PValue > 0.001 {
		t.Errorf("expected tiny p-value, got %f", res.PValue)
	}
	if res.U != 0 {
		t.Errorf("a entirely below b should give U=0, got %f", res.U)
	}
}

func TestMannWhitney_AllValuesTied(t *testing.T) {
	a := []float64{3, 3, 3}
	b := []float64{3, 3, 3, 3}

	res := MannWhitney(a, b, 0.05)
	if res.PValue != 1.0 || res.Significant {
		t.Errorf("degenerate pooled sample should skip: p=%f sig=%v", res.PValue, res.Significant)
	}
}

func TestMannWhitney_TieCorrectionKeepsPInRange(t *testing.T) {
	a := []float64{1, 1, 2, 2, 3, 3, 4}
	b := []float64{2, 2, 3, 3, 4, 4, 5}

	res := MannWhitney(a, b, 0.05)
	if res.PValue < 0 || res.PValue > 1 {
		t.Errorf("p-value out of range: %f", res.PValue)
	}
}

func TestMannWhitney_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	a := make([]float64, 40)
	b := make([]float64, 60)
	for i := range a {
		a[i] = rng.NormFloat64()
	}
	for i := range b {
		b[i] = rng.NormFloat64() + 0.3
	}

	first := MannWhitney(a, b, 0.05)
	second := MannWhitney(a, b, 0.05)
	if first != second {
		t.Errorf("repeated runs differ: %+v vs %+v", first, second)
	}
}
