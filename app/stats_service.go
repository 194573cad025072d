package app

import (
	"context"
	"fmt"
	"sort"

	model "compendium/domain/analysis"
	"compendium/domain/catalog"
	"compendium/domain/core"
	"compendium/internal"
	entities "compendium/internal/analysis"
	"compendium/internal/stats"
	"compendium/ports"
)

// StatsService answers compendium-wide questions: the distribution of one
// physical variable over every sample, the value counts of one ecosystem
// label, the top entities of one abundance table, and the collection
// timeline.
type StatsService struct {
	source ports.TabularSource
	log    *internal.Logger
	opts   Options
}

func NewStatsService(source ports.TabularSource, log *internal.Logger, opts Options) *StatsService {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &StatsService{source: source, log: log, opts: opts}
}

// VariableStatistics describes one physical variable across the whole
// collection. Unknown variables are a validation error; a known variable
// with no values reports core.ErrNoData.
func (s *StatsService) VariableStatistics(ctx context.Context, variable string) (*model.VariableStatistics, error) {
	if !catalog.IsPhysicalVariable(variable) {
		return nil, core.NewInvalidVariableError("physical", variable)
	}

	samples, err := s.source.Samples(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading samples: %w", err)
	}

	values := collectVariable(samples, variable)
	summary, err := stats.Describe(values, s.opts.HistogramBins)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", variable, err)
	}

	return &model.VariableStatistics{
		Variable:  variable,
		Mean:      summary.Mean,
		Std:       summary.Std,
		Min:       summary.Min,
		Max:       summary.Max,
		Count:     summary.Count,
		Histogram: summary.Histogram,
	}, nil
}

// EcosystemStatistics counts the values of one categorical ecosystem
// variable across every sample. Samples without a label count as "Unknown".
func (s *StatsService) EcosystemStatistics(ctx context.Context, variable string) (*model.EcosystemStatistics, error) {
	if !catalog.IsEcosystemVariable(variable) {
		return nil, core.NewInvalidVariableError("ecosystem", variable)
	}

	samples, err := s.source.Samples(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading samples: %w", err)
	}

	counts := make(map[string]int)
	for _, sm := range samples {
		v := sm.Ecosystem[variable]
		if v == "" {
			v = "Unknown"
		}
		counts[v]++
	}

	return &model.EcosystemStatistics{
		Variable:     variable,
		ValueCounts:  counts,
		TotalSamples: len(samples),
		UniqueValues: len(counts),
	}, nil
}

// OmicsStatistics ranks the top entities of one omics category over the
// whole collection, metadata included. Unknown categories are a validation
// error.
func (s *StatsService) OmicsStatistics(ctx context.Context, category string) ([]model.RankedEntity, error) {
	cat, err := catalog.ParseOmicsCategory(category)
	if err != nil {
		return nil, err
	}

	records, err := s.source.Abundance(ctx, cat.Table())
	if err != nil {
		return nil, fmt.Errorf("loading %s records: %w", cat, err)
	}
	return entities.TopK(records, s.opts.TopK), nil
}

// TaxonomicStatistics ranks the top entities of one classification tool over
// the whole collection, one list per rank. A rank with no records maps to an
// empty list rather than being omitted.
func (s *StatsService) TaxonomicStatistics(ctx context.Context, tool string) (map[catalog.Rank][]model.RankedEntity, error) {
	tl, err := catalog.ParseTaxonomicTool(tool)
	if err != nil {
		return nil, err
	}

	records, err := s.source.Abundance(ctx, tl.Table())
	if err != nil {
		return nil, fmt.Errorf("loading %s records: %w", tl, err)
	}

	out := make(map[catalog.Rank][]model.RankedEntity, len(catalog.Ranks()))
	for _, rank := range catalog.Ranks() {
		out[rank] = entities.TopK(entities.FilterRank(records, rank), s.opts.TopK)
	}
	return out, nil
}

// Timeline assembles per-study collection windows and the dated samples of
// the whole collection, ordered by date then sample id.
func (s *StatsService) Timeline(ctx context.Context) (*model.TimelineData, error) {
	samples, err := s.source.Samples(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading samples: %w", err)
	}
	studies, err := s.source.Studies(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading studies: %w", err)
	}

	byStudy := make(map[core.StudyID][]catalog.Sample)
	for _, sm := range samples {
		byStudy[sm.StudyID] = append(byStudy[sm.StudyID], sm)
	}

	out := &model.TimelineData{}
	for _, st := range studies {
		members := byStudy[st.ID]
		if len(members) == 0 {
			continue
		}
		out.StudyTimelines = append(out.StudyTimelines, buildTimeline(st.ID, members))
	}
	sort.Slice(out.StudyTimelines, func(i, j int) bool {
		return out.StudyTimelines[i].StudyID < out.StudyTimelines[j].StudyID
	})

	for _, sm := range samples {
		if sm.CollectedAt == nil {
			continue
		}
		out.SampleTimeline = append(out.SampleTimeline, model.SamplePoint{
			SampleID: sm.ID,
			StudyID:  sm.StudyID,
			Date:     *sm.CollectedAt,
		})
	}
	sort.Slice(out.SampleTimeline, func(i, j int) bool {
		a, b := out.SampleTimeline[i], out.SampleTimeline[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.SampleID < b.SampleID
	})

	return out, nil
}
