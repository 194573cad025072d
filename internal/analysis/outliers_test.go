package analysis

import (
	"math"
	"testing"

	"compendium/domain/catalog"
)

// buildRecords spreads one value per synthetic sample for a single entity.
func buildRecords(entity string, values []float64) []catalog.AbundanceRecord {
	out := make([]catalog.AbundanceRecord, len(values))
	for i, v := range values {
		out[i] = rec("s"+string(rune('a'+i%26))+string(rune('a'+i/26)), entity, v)
	}
	return out
}

func TestOutliers_DetectsClearSeparation(t *testing.T) {
	study := buildRecords("Toluene", []float64{100, 101, 102, 103, 104, 105, 106, 107})
	compendium := buildRecords("Toluene", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})

	out := Outliers(study, compendium, 0.05)
	if len(out) != 1 {
		t.Fatalf("expected 1 outlier, got %d", len(out))
	}
	o := out[0]
	if o.ID != "Toluene" {
		t.Errorf("id = %s", o.ID)
	}
	if !o.Significant || o.PValue >= 0.05 {
		t.Errorf("expected significant, p=%f", o.PValue)
	}
	if o.EffectSize != 1.0 || o.Direction != "higher" {
		t.Errorf("effect=%f direction=%s", o.EffectSize, o.Direction)
	}
	if o.Count != 8 || o.CompendiumCount != 10 {
		t.Errorf("counts: study=%d compendium=%d", o.Count, o.CompendiumCount)
	}
}

func TestOutliers_SkipsNonSignificant(t *testing.T) {
	values := []float64{5, 6, 7, 8, 9}
	out := Outliers(buildRecords("X", values), buildRecords("X", values), 0.05)
	if len(out) != 0 {
		t.Errorf("identical distributions should yield no outliers, got %d", len(out))
	}
}

func TestOutliers_SkipsEntityMissingFromCompendium(t *testing.T) {
	study := buildRecords("OnlyHere", []float64{1, 2, 3})
	compendium := buildRecords("Other", []float64{1, 2, 3})
	if out := Outliers(study, compendium, 0.05); len(out) != 0 {
		t.Errorf("entity absent from compendium must be skipped, got %d", len(out))
	}
}

func TestOutliers_NegativeDeltaForDepressedEntity(t *testing.T) {
	study := buildRecords("Glycine", []float64{1, 2, 3, 4, 5, 6, 7, 8})
	compendium := buildRecords("Glycine", []float64{100, 101, 102, 103, 104, 105, 106, 107, 108, 109})

	out := Outliers(study, compendium, 0.05)
	if len(out) != 1 {
		t.Fatalf("expected 1 outlier, got %d", len(out))
	}
	if out[0].EffectSize != -1.0 || out[0].Direction != "lower" {
		t.Errorf("effect=%f direction=%s", out[0].EffectSize, out[0].Direction)
	}
}

func TestOutliers_OrderedByAbsoluteEffect(t *testing.T) {
	// Full separation in both directions gives |delta| = 1 for each; a
	// partially overlapping entity lands below them.
	study := append(buildRecords("high", []float64{100, 101, 102, 103, 104, 105, 106, 107}),
		buildRecords("partial", []float64{8, 9, 10, 11, 12, 13, 14, 15})...)
	compendium := append(buildRecords("high", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}),
		buildRecords("partial", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})...)

	out := Outliers(study, compendium, 0.05)
	if len(out) < 2 {
		t.Fatalf("expected at least 2 outliers, got %d", len(out))
	}
	for i := 1; i < len(out); i++ {
		if math.Abs(out[i].EffectSize) > math.Abs(out[i-1].EffectSize) {
			t.Errorf("order violated at %d: %f after %f",
				i, out[i].EffectSize, out[i-1].EffectSize)
		}
	}
	if out[0].ID != "high" {
		t.Errorf("strongest effect should rank first, got %s", out[0].ID)
	}
}
