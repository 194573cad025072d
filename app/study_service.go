// Package app composes the analysis engine: orchestrators that load the
// source tables, run the statistical modules, and manage the layered cache.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/singleflight"

	model "compendium/domain/analysis"
	"compendium/domain/catalog"
	"compendium/domain/core"
	"compendium/internal"
	entities "compendium/internal/analysis"
	"compendium/internal/cache"
	"compendium/internal/config"
	"compendium/internal/stats"
	"compendium/ports"
)

// Options carries the analysis parameters shared by the orchestrators.
type Options struct {
	Alpha             float64
	TopK              int
	HistogramBins     int
	Baseline          config.BaselineMode
	PhysicalVariables []string
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		Alpha:             0.05,
		TopK:              10,
		HistogramBins:     50,
		Baseline:          config.BaselineStudyMeans,
		PhysicalVariables: catalog.DefaultPhysicalVariables(),
	}
}

// OptionsFromConfig projects the loaded configuration onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Alpha:             cfg.Alpha,
		TopK:              cfg.TopK,
		HistogramBins:     cfg.HistogramBins,
		Baseline:          cfg.Baseline,
		PhysicalVariables: cfg.PhysicalVariables,
	}
}

// StudyCacheKey is the cache key scheme for study analyses.
func StudyCacheKey(id core.StudyID) string { return "study/" + id.String() }

// StudyService computes and caches per-study analyses: every physical
// variable compared against the rest of the compendium, top-K and outlier
// entity lists per omics category and taxonomic tool x rank, plus the
// ecosystem, map and timeline aggregates.
type StudyService struct {
	source ports.TabularSource
	cache  *cache.Layered
	log    *internal.Logger
	opts   Options
	flight singleflight.Group
}

func NewStudyService(source ports.TabularSource, store *cache.Layered, log *internal.Logger, opts Options) *StudyService {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &StudyService{source: source, cache: store, log: log, opts: opts}
}

// Analyze returns the study's analysis, computing and caching it if the
// cached entry is absent or stale.
func (s *StudyService) Analyze(ctx context.Context, id core.StudyID) (*model.StudyAnalysis, error) {
	entry, err := s.Ensure(ctx, id)
	if err != nil {
		return nil, err
	}
	var out model.StudyAnalysis
	if err := json.Unmarshal(entry.Payload, &out); err != nil {
		return nil, core.NewCacheCorruptError(StudyCacheKey(id), err)
	}
	return &out, nil
}

// Ensure returns the current valid cache entry for the study, computing one
// when needed. Concurrent callers for the same study share one computation.
// Sample analyses validate against the returned entry's CachedAt.
func (s *StudyService) Ensure(ctx context.Context, id core.StudyID) (*ports.CacheEntry, error) {
	if id.IsEmpty() {
		return nil, core.NewStudyNotFoundError(id)
	}

	freshness, err := s.source.MaxModificationTime(ctx, catalog.SourceTables()...)
	if err != nil {
		return nil, fmt.Errorf("freshness check: %w", err)
	}

	key := StudyCacheKey(id)
	if entry, err := s.cache.Get(ctx, key, freshness); err == nil {
		return entry, nil
	} else if !core.IsCacheMiss(err) {
		return nil, err
	}

	v, err, _ := s.flight.Do(key, func() (any, error) {
		// A sibling flight may have filled the cache while we queued.
		if entry, err := s.cache.Get(ctx, key, freshness); err == nil {
			return entry, nil
		}
		s.log.Info("computing study analysis for %s", id)
		started := time.Now()
		result, err := s.compute(ctx, id)
		if err != nil {
			return nil, err
		}
		s.log.Info("study %s analyzed in %s", id, time.Since(started).Round(time.Millisecond))
		return s.cache.Put(ctx, key, result, freshness)
	})
	if err != nil {
		return nil, err
	}
	return v.(*ports.CacheEntry), nil
}

// WarmAll precomputes the analysis of every study in the collection.
// Per-study failures are logged and skipped; the first study id that fails
// fatally is reported in the returned error only if nothing succeeded.
func (s *StudyService) WarmAll(ctx context.Context) (int, error) {
	studies, err := s.source.Studies(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading studies: %w", err)
	}

	warmed := 0
	var firstErr error
	for _, st := range studies {
		if _, err := s.Ensure(ctx, st.ID); err != nil {
			s.log.Warn("warming study %s failed: %v", st.ID, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		warmed++
	}
	if warmed == 0 && firstErr != nil {
		return 0, firstErr
	}
	return warmed, nil
}

func (s *StudyService) compute(ctx context.Context, id core.StudyID) (*model.StudyAnalysis, error) {
	samples, err := s.source.Samples(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading samples: %w", err)
	}

	var study, compendium []catalog.Sample
	for _, sm := range samples {
		if sm.StudyID == id {
			study = append(study, sm)
		} else {
			compendium = append(compendium, sm)
		}
	}
	if len(study) == 0 {
		return nil, core.NewStudyNotFoundError(id)
	}

	studyIDs := make(map[core.SampleID]bool, len(study))
	for _, sm := range study {
		studyIDs[sm.ID] = true
	}

	out := &model.StudyAnalysis{
		StudyID:   id,
		Physical:  s.comparePhysical(study, compendium),
		Ecosystem: summarizeEcosystem(study),
		MapData:   buildMapData(study),
		Timeline:  buildTimeline(id, study),
	}
	out.Omics = s.analyzeOmics(ctx, studyIDs)
	out.Taxonomic = s.analyzeTaxonomic(ctx, studyIDs)
	return out, nil
}

// comparePhysical runs the per-variable comparison. The descriptive
// compendium baseline is the distribution of per-study means (or the raw
// pooled values under the pooled baseline mode); the rank-sum test always
// runs on raw pooled values. Study and compendium subsets are disjoint.
func (s *StudyService) comparePhysical(study, compendium []catalog.Sample) map[string]model.ComparisonResult {
	results := make(map[string]model.ComparisonResult)

	for _, variable := range s.opts.PhysicalVariables {
		studyValues := collectVariable(study, variable)
		if len(studyValues) == 0 {
			continue
		}

		pooled, studyMeans := compendiumBaseline(compendium, variable)
		if len(pooled) == 0 {
			s.log.Debug("no compendium data for %s, skipping", variable)
			continue
		}

		summary, err := stats.Describe(studyValues, s.opts.HistogramBins)
		if err != nil {
			s.log.Warn("describing %s failed: %v", variable, err)
			results[variable] = model.ErrorResult(err)
			continue
		}

		baseline := studyMeans
		if s.opts.Baseline == config.BaselinePooled {
			baseline = pooled
		}
		compMean, compStd := stats.MeanStd(baseline)

		test := stats.MannWhitney(studyValues, pooled, s.opts.Alpha)
		delta := stats.CliffsDelta(studyValues, pooled)

		hist := summary.Histogram
		results[variable] = model.ComparisonResult{
			Status:               model.StatusOK,
			Mean:                 summary.Mean,
			Std:                  summary.Std,
			Min:                  summary.Min,
			Max:                  summary.Max,
			Count:                summary.Count,
			Histogram:            &hist,
			CompendiumMean:       compMean,
			CompendiumStd:        compStd,
			CompendiumCount:      len(pooled),
			CompendiumStudyCount: len(studyMeans),
			PValue:               test.PValue,
			Significant:          test.Significant,
			EffectSize:           delta,
		}
	}
	return results
}

// analyzeOmics builds top-K and outlier lists per omics category. A table
// that fails to load degrades to empty lists for its category; siblings are
// unaffected.
func (s *StudyService) analyzeOmics(ctx context.Context, studyIDs map[core.SampleID]bool) model.OmicsAnalysis {
	out := model.OmicsAnalysis{
		Top10:    make(map[catalog.OmicsCategory][]model.RankedEntity),
		Outliers: make(map[catalog.OmicsCategory][]model.ComparisonResult),
	}

	for _, category := range catalog.OmicsCategories() {
		records, err := s.source.Abundance(ctx, category.Table())
		if err != nil {
			s.log.Warn("loading %s records failed: %v", category, err)
			continue
		}
		studyRecs, compRecs := splitRecords(records, studyIDs)
		if len(studyRecs) == 0 {
			continue
		}
		out.Top10[category] = entities.TopK(studyRecs, s.opts.TopK)
		out.Outliers[category] = entities.Outliers(studyRecs, compRecs, s.opts.Alpha)
	}
	return out
}

// analyzeTaxonomic does the same per classification tool and rank.
func (s *StudyService) analyzeTaxonomic(ctx context.Context, studyIDs map[core.SampleID]bool) model.TaxonomicAnalysis {
	out := model.TaxonomicAnalysis{
		Top10:    make(map[catalog.TaxonomicTool]map[catalog.Rank][]model.RankedEntity),
		Outliers: make(map[catalog.TaxonomicTool]map[catalog.Rank][]model.ComparisonResult),
	}

	for _, tool := range catalog.TaxonomicTools() {
		records, err := s.source.Abundance(ctx, tool.Table())
		if err != nil {
			s.log.Warn("loading %s records failed: %v", tool, err)
			continue
		}
		studyRecs, compRecs := splitRecords(records, studyIDs)
		if len(studyRecs) == 0 {
			continue
		}

		top := make(map[catalog.Rank][]model.RankedEntity)
		outliers := make(map[catalog.Rank][]model.ComparisonResult)
		for _, rank := range catalog.Ranks() {
			studyRank := entities.FilterRank(studyRecs, rank)
			if len(studyRank) == 0 {
				continue
			}
			compRank := entities.FilterRank(compRecs, rank)
			top[rank] = entities.TopK(studyRank, s.opts.TopK)
			outliers[rank] = entities.Outliers(studyRank, compRank, s.opts.Alpha)
		}
		if len(top) > 0 {
			out.Top10[tool] = top
			out.Outliers[tool] = outliers
		}
	}
	return out
}

// collectVariable gathers the finite values of one physical variable.
func collectVariable(samples []catalog.Sample, variable string) []float64 {
	values := make([]float64, 0, len(samples))
	for _, sm := range samples {
		if v, ok := sm.PhysicalValue(variable); ok {
			values = append(values, v)
		}
	}
	return stats.Clean(values)
}

// compendiumBaseline pools the compendium's raw values for a variable and
// reduces them to one mean per study.
func compendiumBaseline(compendium []catalog.Sample, variable string) (pooled, studyMeans []float64) {
	byStudy := make(map[core.StudyID][]float64)
	for _, sm := range compendium {
		if v, ok := sm.PhysicalValue(variable); ok {
			byStudy[sm.StudyID] = append(byStudy[sm.StudyID], v)
		}
	}

	ids := make([]core.StudyID, 0, len(byStudy))
	for sid := range byStudy {
		ids = append(ids, sid)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, sid := range ids {
		values := stats.Clean(byStudy[sid])
		if len(values) == 0 {
			continue
		}
		pooled = append(pooled, values...)
		mean, _ := stats.MeanStd(values)
		studyMeans = append(studyMeans, mean)
	}
	return pooled, studyMeans
}

// splitRecords partitions abundance records into study and compendium sides.
func splitRecords(records []catalog.AbundanceRecord, studyIDs map[core.SampleID]bool) (study, compendium []catalog.AbundanceRecord) {
	for _, r := range records {
		if studyIDs[r.SampleID] {
			study = append(study, r)
		} else {
			compendium = append(compendium, r)
		}
	}
	return study, compendium
}

// summarizeEcosystem tallies the categorical label columns over the study's
// samples. Most-common ties resolve to the lexicographically smallest value.
func summarizeEcosystem(study []catalog.Sample) model.EcosystemSummary {
	out := model.EcosystemSummary{
		Values:       make(map[string][]string),
		MostCommon:   make(map[string]string),
		SampleCounts: make(map[string]map[string]int),
	}

	for _, variable := range catalog.EcosystemVariables() {
		counts := make(map[string]int)
		for _, sm := range study {
			if v, ok := sm.Ecosystem[variable]; ok && v != "" {
				counts[v]++
			}
		}
		if len(counts) == 0 {
			continue
		}

		values := make([]string, 0, len(counts))
		for v := range counts {
			values = append(values, v)
		}
		sort.Strings(values)

		best := values[0]
		for _, v := range values[1:] {
			if counts[v] > counts[best] {
				best = v
			}
		}

		out.Values[variable] = values
		out.MostCommon[variable] = best
		out.SampleCounts[variable] = counts
	}
	return out
}

// buildMapData collects the study's samples that carry valid coordinates.
func buildMapData(study []catalog.Sample) model.MapData {
	var locations []model.MapLocation
	for _, sm := range study {
		if !sm.HasCoordinates() {
			continue
		}
		loc := model.MapLocation{
			SampleID:    sm.ID,
			Name:        sm.Name,
			Latitude:    *sm.Latitude,
			Longitude:   *sm.Longitude,
			Ecosystem:   sm.Ecosystem,
			CollectedAt: sm.CollectedAt,
		}
		if v, ok := sm.PhysicalValue("depth"); ok {
			loc.Depth = &v
		}
		if v, ok := sm.PhysicalValue("temp_has_numeric_value"); ok {
			loc.Temperature = &v
		}
		if v, ok := sm.PhysicalValue("ph"); ok {
			loc.PH = &v
		}
		locations = append(locations, loc)
	}
	return model.MapData{Locations: locations}
}

// buildTimeline derives the collection-date span of the study's samples.
func buildTimeline(id core.StudyID, study []catalog.Sample) model.StudyTimeline {
	tl := model.StudyTimeline{StudyID: id, SampleCount: len(study)}
	for _, sm := range study {
		if sm.CollectedAt == nil {
			continue
		}
		if tl.StartDate == nil || sm.CollectedAt.Before(*tl.StartDate) {
			tl.StartDate = sm.CollectedAt
		}
		if tl.EndDate == nil || sm.CollectedAt.After(*tl.EndDate) {
			tl.EndDate = sm.CollectedAt
		}
	}
	return tl
}
