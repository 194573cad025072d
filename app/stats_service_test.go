package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"compendium/domain/catalog"
	"compendium/domain/core"
	"compendium/internal/testkit"
)

func TestStatsService_VariableStatistics(t *testing.T) {
	svc := NewStatsService(buildFixture(), nil, DefaultOptions())

	result, err := svc.VariableStatistics(context.Background(), "ph")
	require.NoError(t, err)

	// 13 samples in total: [6.0 6.5 7.0] + five 7.0 + five 8.0.
	require.Equal(t, 13, result.Count)
	require.InDelta(t, 6.0, result.Min, 1e-9)
	require.InDelta(t, 8.0, result.Max, 1e-9)
	require.Len(t, result.Histogram.Counts, 50)

	total := 0
	for _, c := range result.Histogram.Counts {
		total += c
	}
	require.Equal(t, result.Count, total)
}

func TestStatsService_UnknownVariableIsInvalid(t *testing.T) {
	svc := NewStatsService(buildFixture(), nil, DefaultOptions())

	_, err := svc.VariableStatistics(context.Background(), "favorite_color")
	require.ErrorIs(t, err, core.ErrInvalidVariable)
}

func TestStatsService_VariableWithoutValuesIsNoData(t *testing.T) {
	svc := NewStatsService(buildFixture(), nil, DefaultOptions())

	_, err := svc.VariableStatistics(context.Background(), "wind_speed")
	require.True(t, core.IsNoData(err))
}

func TestStatsService_EcosystemStatistics(t *testing.T) {
	svc := NewStatsService(buildFixture(), nil, DefaultOptions())

	result, err := svc.EcosystemStatistics(context.Background(), "ecosystem_type")
	require.NoError(t, err)

	require.Equal(t, 13, result.TotalSamples)
	require.Equal(t, 3, result.ValueCounts["Soil"])
	// The ten compendium samples carry no label.
	require.Equal(t, 10, result.ValueCounts["Unknown"])
	require.Equal(t, 2, result.UniqueValues)
}

func TestStatsService_EcosystemUnknownVariableIsInvalid(t *testing.T) {
	svc := NewStatsService(buildFixture(), nil, DefaultOptions())

	_, err := svc.EcosystemStatistics(context.Background(), "ph")
	require.ErrorIs(t, err, core.ErrInvalidVariable)
}

func TestStatsService_OmicsStatistics(t *testing.T) {
	f := buildFixture()
	// A second compound observed once, with a higher mean than Glucose.
	f.AddAbundance(catalog.TableMetabolomics, catalog.AbundanceRecord{
		SampleID:  "s1-a",
		EntityID:  "Sucrose",
		Abundance: 500,
		Compound:  &catalog.CompoundMeta{CommonName: "sucrose"},
	})
	svc := NewStatsService(f, nil, DefaultOptions())

	top, err := svc.OmicsStatistics(context.Background(), "metabolomics")
	require.NoError(t, err)
	require.Len(t, top, 2)

	require.Equal(t, "Sucrose", top[0].ID)
	require.InDelta(t, 500.0, top[0].MeanAbundance, 1e-9)

	glucose := top[1]
	require.Equal(t, "Glucose", glucose.ID)
	require.Equal(t, 13, glucose.SampleCount)
	require.NotNil(t, glucose.Compound)
	require.Equal(t, "glucose", glucose.Compound.CommonName)
}

func TestStatsService_OmicsUnknownCategoryIsInvalid(t *testing.T) {
	svc := NewStatsService(buildFixture(), nil, DefaultOptions())

	_, err := svc.OmicsStatistics(context.Background(), "glycomics")
	require.ErrorIs(t, err, core.ErrInvalidVariable)
}

func TestStatsService_TaxonomicStatistics(t *testing.T) {
	f := buildFixture()
	for i, abundance := range []float64{10, 30, 20} {
		id := core.SampleID("s1-" + string(rune('a'+i)))
		f.AddAbundance(catalog.TableKraken, catalog.AbundanceRecord{
			SampleID:  id,
			EntityID:  "Proteobacteria",
			Rank:      catalog.RankPhylum,
			Abundance: abundance,
		})
		f.AddAbundance(catalog.TableKraken, catalog.AbundanceRecord{
			SampleID:  id,
			EntityID:  "Escherichia coli",
			Rank:      catalog.RankSpecies,
			Abundance: abundance / 2,
		})
	}
	svc := NewStatsService(f, nil, DefaultOptions())

	byRank, err := svc.TaxonomicStatistics(context.Background(), "kraken")
	require.NoError(t, err)
	require.Len(t, byRank, len(catalog.Ranks()))

	phylum := byRank[catalog.RankPhylum]
	require.Len(t, phylum, 1)
	require.Equal(t, "Proteobacteria", phylum[0].ID)
	require.InDelta(t, 20.0, phylum[0].MeanAbundance, 1e-9)
	require.Equal(t, catalog.RankPhylum, phylum[0].Rank)

	// Ranks without records are present with empty lists.
	require.Contains(t, byRank, catalog.RankGenus)
	require.Empty(t, byRank[catalog.RankGenus])
}

func TestStatsService_TaxonomicUnknownToolIsInvalid(t *testing.T) {
	svc := NewStatsService(buildFixture(), nil, DefaultOptions())

	_, err := svc.TaxonomicStatistics(context.Background(), "blast")
	require.ErrorIs(t, err, core.ErrInvalidVariable)
}

func TestStatsService_Timeline(t *testing.T) {
	svc := NewStatsService(buildFixture(), nil, DefaultOptions())

	result, err := svc.Timeline(context.Background())
	require.NoError(t, err)

	require.Len(t, result.StudyTimelines, 3)
	require.Equal(t, core.StudyID("s1"), result.StudyTimelines[0].StudyID)

	// Only the three s1 samples carry collection dates.
	require.Len(t, result.SampleTimeline, 3)
	for i := 1; i < len(result.SampleTimeline); i++ {
		require.False(t, result.SampleTimeline[i].Date.Before(result.SampleTimeline[i-1].Date))
	}
}

func TestCoverageService_Report(t *testing.T) {
	svc := NewCoverageService(buildFixture(), nil, DefaultOptions())

	report, err := svc.Report(context.Background())
	require.NoError(t, err)

	require.Equal(t, 3, report.TotalStudies)
	require.Equal(t, 13, report.Summary["total_samples"])
	require.Equal(t, 3, report.Summary["studies_with_metabolomics"])

	s1 := report.Studies["s1"]
	require.Equal(t, 3, s1.TotalSamples)
	require.Equal(t, 3, s1.Omics["metabolomics"])
	require.Equal(t, 3, s1.Physical["ph"])
	require.Equal(t, 3, s1.Physical["depth"])

	s2 := report.Studies["s2"]
	require.Equal(t, 5, s2.Omics["metabolomics"])
	require.Zero(t, s2.Physical["depth"])

	require.NotEmpty(t, report.TopStudies)
	require.LessOrEqual(t, len(report.TopStudies), 10)
}

func TestCoverageService_DeterministicWithSeededCompendium(t *testing.T) {
	f := testkit.GenerateCompendium(7, 4, 6)
	svc := NewCoverageService(f, nil, DefaultOptions())

	report, err := svc.Report(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, report.TotalStudies)
	require.Equal(t, 24, report.Summary["total_samples"])
	for _, cov := range report.Studies {
		require.Equal(t, 6, cov.TotalSamples)
		require.Equal(t, 6, cov.Omics["metabolomics"])
	}
}
