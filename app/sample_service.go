package app

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/singleflight"

	model "compendium/domain/analysis"
	"compendium/domain/catalog"
	"compendium/domain/core"
	"compendium/internal"
	"compendium/internal/cache"
	"compendium/internal/stats"
	"compendium/ports"
)

// SampleCacheKey is the cache key scheme for sample analyses.
func SampleCacheKey(id core.SampleID) string { return "sample/" + id.String() }

// SampleService re-projects a study's cached analysis onto one sample. It
// depends on the study entry: a sample entry computed before the study's
// current entry is stale, so the owning study is always ensured first.
type SampleService struct {
	source  ports.TabularSource
	cache   *cache.Layered
	studies *StudyService
	log     *internal.Logger
	flight  singleflight.Group
}

func NewSampleService(source ports.TabularSource, store *cache.Layered, studies *StudyService, log *internal.Logger) *SampleService {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &SampleService{source: source, cache: store, studies: studies, log: log}
}

// Analyze returns the sample's analysis, computing the owning study's
// analysis first when needed.
func (s *SampleService) Analyze(ctx context.Context, id core.SampleID) (*model.SampleAnalysis, error) {
	if id.IsEmpty() {
		return nil, core.NewSampleNotFoundError(id)
	}

	sample, err := s.findSample(ctx, id)
	if err != nil {
		return nil, err
	}

	studyEntry, err := s.studies.Ensure(ctx, sample.StudyID)
	if err != nil {
		return nil, err
	}

	freshness, err := s.source.MaxModificationTime(ctx, catalog.SourceTables()...)
	if err != nil {
		return nil, fmt.Errorf("freshness check: %w", err)
	}
	// The sample entry must postdate both the source data and the study
	// entry it was projected from.
	required := freshness
	if studyEntry.CachedAt.After(required) {
		required = studyEntry.CachedAt
	}

	key := SampleCacheKey(id)
	if entry, err := s.cache.Get(ctx, key, required); err == nil {
		return decodeSample(key, entry)
	} else if !core.IsCacheMiss(err) {
		return nil, err
	}

	v, err, _ := s.flight.Do(key, func() (any, error) {
		if entry, err := s.cache.Get(ctx, key, required); err == nil {
			return entry, nil
		}
		s.log.Info("computing sample analysis for %s", id)
		result, err := s.project(ctx, sample, studyEntry)
		if err != nil {
			return nil, err
		}
		return s.cache.Put(ctx, key, result, required)
	})
	if err != nil {
		return nil, err
	}
	return decodeSample(key, v.(*ports.CacheEntry))
}

func decodeSample(key string, entry *ports.CacheEntry) (*model.SampleAnalysis, error) {
	var out model.SampleAnalysis
	if err := json.Unmarshal(entry.Payload, &out); err != nil {
		return nil, core.NewCacheCorruptError(key, err)
	}
	return &out, nil
}

func (s *SampleService) findSample(ctx context.Context, id core.SampleID) (*catalog.Sample, error) {
	samples, err := s.source.Samples(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading samples: %w", err)
	}
	for i := range samples {
		if samples[i].ID == id {
			return &samples[i], nil
		}
	}
	return nil, core.NewSampleNotFoundError(id)
}

// project positions the sample's observed values against its study's cached
// distributions: z-scores per physical variable, and raw abundance plus
// z-score for every entity in the study's top-K lists.
func (s *SampleService) project(ctx context.Context, sample *catalog.Sample, studyEntry *ports.CacheEntry) (*model.SampleAnalysis, error) {
	var study model.StudyAnalysis
	if err := json.Unmarshal(studyEntry.Payload, &study); err != nil {
		return nil, core.NewCacheCorruptError(studyEntry.Key, err)
	}

	out := &model.SampleAnalysis{
		SampleID:    sample.ID,
		StudyID:     sample.StudyID,
		Name:        sample.Name,
		CollectedAt: sample.CollectedAt,
		Ecosystem:   sample.Ecosystem,
		Location:    model.SampleLocation{Latitude: sample.Latitude, Longitude: sample.Longitude},
		Physical:    make(map[string]model.SampleVariable),
		Omics:       make(map[catalog.OmicsCategory][]model.SampleEntity),
		Taxonomic:   make(map[catalog.TaxonomicTool]map[catalog.Rank][]model.SampleEntity),
	}

	for variable, slot := range study.Physical {
		if slot.Status != model.StatusOK {
			continue
		}
		value, ok := sample.PhysicalValue(variable)
		if !ok {
			continue
		}
		out.Physical[variable] = model.SampleVariable{
			Value:     value,
			ZScore:    stats.ZScore(value, slot.Mean, slot.Std),
			StudyMean: slot.Mean,
			StudyStd:  slot.Std,
		}
	}

	for category, top := range study.Omics.Top10 {
		abundances, err := s.sampleAbundances(ctx, category.Table(), sample.ID)
		if err != nil {
			s.log.Warn("loading %s records for %s failed: %v", category, sample.ID, err)
			continue
		}
		out.Omics[category] = projectEntities(top, abundances, "")
	}

	for tool, byRank := range study.Taxonomic.Top10 {
		abundances, err := s.sampleAbundances(ctx, tool.Table(), sample.ID)
		if err != nil {
			s.log.Warn("loading %s records for %s failed: %v", tool, sample.ID, err)
			continue
		}
		ranks := make(map[catalog.Rank][]model.SampleEntity, len(byRank))
		for rank, top := range byRank {
			ranks[rank] = projectEntities(top, abundances, rank)
		}
		out.Taxonomic[tool] = ranks
	}

	return out, nil
}

// sampleAbundances indexes one table's records for a single sample by
// entity id (first occurrence wins). Taxonomic entries are keyed by rank
// as well, since the same name can recur across ranks.
func (s *SampleService) sampleAbundances(ctx context.Context, table catalog.Table, id core.SampleID) (map[string]float64, error) {
	records, err := s.source.Abundance(ctx, table)
	if err != nil {
		return nil, err
	}
	values := make(map[string]float64)
	for _, r := range records {
		if r.SampleID != id {
			continue
		}
		key := entityKey(r.EntityID.String(), r.Rank)
		if _, seen := values[key]; !seen {
			values[key] = r.Abundance
		}
	}
	return values, nil
}

func entityKey(id string, rank catalog.Rank) string {
	if rank == "" {
		return id
	}
	return string(rank) + "|" + id
}

// projectEntities maps the study's ranked entities onto the sample's own
// values. An entity the sample never observed projects with abundance 0.
func projectEntities(top []model.RankedEntity, abundances map[string]float64, rank catalog.Rank) []model.SampleEntity {
	out := make([]model.SampleEntity, 0, len(top))
	for _, e := range top {
		abundance := abundances[entityKey(e.ID, rank)]
		out = append(out, model.SampleEntity{
			ID:            e.ID,
			Abundance:     abundance,
			MeanAbundance: e.MeanAbundance,
			StdAbundance:  e.StdAbundance,
			SampleCount:   e.SampleCount,
			ZScore:        stats.ZScore(abundance, e.MeanAbundance, e.StdAbundance),
			Rank:          e.Rank,
		})
	}
	return out
}
