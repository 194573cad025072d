package analysis

import (
	"math"
	"testing"

	"compendium/domain/catalog"
	"compendium/domain/core"
)

func rec(sample, entity string, abundance float64) catalog.AbundanceRecord {
	return catalog.AbundanceRecord{
		SampleID:  core.SampleID(sample),
		EntityID:  core.EntityID(entity),
		Abundance: abundance,
	}
}

func TestGroupRecords_CollectsValuesPerEntity(t *testing.T) {
	records := []catalog.AbundanceRecord{
		rec("s1", "Glucose", 10),
		rec("s2", "Glucose", 14),
		rec("s1", "Sucrose", 3),
	}

	groups := GroupRecords(records)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if got := groups["Glucose"].Values; len(got) != 2 || got[0] != 10 || got[1] != 14 {
		t.Errorf("glucose values = %v", got)
	}
}

func TestGroupRecords_FirstMetadataWins(t *testing.T) {
	first := &catalog.CompoundMeta{MolecularFormula: "C6H12O6"}
	second := &catalog.CompoundMeta{MolecularFormula: "WRONG"}
	records := []catalog.AbundanceRecord{
		{SampleID: "s1", EntityID: "Glucose", Abundance: 1, Compound: first},
		{SampleID: "s2", EntityID: "Glucose", Abundance: 2, Compound: second},
	}

	groups := GroupRecords(records)
	if groups["Glucose"].Compound != first {
		t.Error("expected first-seen metadata to be retained")
	}
}

func TestTopK_RanksByMeanDescending(t *testing.T) {
	records := []catalog.AbundanceRecord{
		rec("s1", "A", 1), rec("s2", "A", 3), // mean 2
		rec("s1", "B", 10), rec("s2", "B", 20), // mean 15
		rec("s1", "C", 5), // mean 5
	}

	top := TopK(records, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(top))
	}
	if top[0].ID != "B" || top[1].ID != "C" {
		t.Errorf("expected [B C], got [%s %s]", top[0].ID, top[1].ID)
	}
	if top[0].MeanAbundance != 15 || top[0].SampleCount != 2 {
		t.Errorf("B: mean=%f count=%d", top[0].MeanAbundance, top[0].SampleCount)
	}
}

func TestTopK_EqualMeansBreakTiesByID(t *testing.T) {
	records := []catalog.AbundanceRecord{
		rec("s1", "zeta", 5),
		rec("s1", "alpha", 5),
		rec("s1", "mid", 5),
	}

	top := TopK(records, 3)
	if top[0].ID != "alpha" || top[1].ID != "mid" || top[2].ID != "zeta" {
		t.Errorf("tie order wrong: %s %s %s", top[0].ID, top[1].ID, top[2].ID)
	}
}

func TestTopK_FewerEntitiesThanK(t *testing.T) {
	records := []catalog.AbundanceRecord{rec("s1", "A", 1)}
	if top := TopK(records, 10); len(top) != 1 {
		t.Errorf("expected 1 entry, got %d", len(top))
	}
}

func TestTopK_StdIsSampleStd(t *testing.T) {
	records := []catalog.AbundanceRecord{
		rec("s1", "A", 7),
		rec("s2", "A", 8),
	}

	top := TopK(records, 1)
	if want := math.Sqrt(0.5); math.Abs(top[0].StdAbundance-want) > 1e-12 {
		t.Errorf("std = %f, want %f", top[0].StdAbundance, want)
	}
}

func TestFilterRank(t *testing.T) {
	records := []catalog.AbundanceRecord{
		{SampleID: "s1", EntityID: "Bacteria", Rank: catalog.RankSuperkingdom, Abundance: 0.9},
		{SampleID: "s1", EntityID: "Proteobacteria", Rank: catalog.RankPhylum, Abundance: 0.4},
	}

	phyla := FilterRank(records, catalog.RankPhylum)
	if len(phyla) != 1 || phyla[0].EntityID != "Proteobacteria" {
		t.Errorf("unexpected filter result: %v", phyla)
	}
}
