package app

import (
	"context"
	"fmt"
	"sort"

	model "compendium/domain/analysis"
	"compendium/domain/catalog"
	"compendium/domain/core"
	"compendium/internal"
	"compendium/ports"
)

// topCoverageStudies caps the highlighted list in the coverage report.
const topCoverageStudies = 10

// CoverageService reports how much measurement data each study carries:
// per-study sample counts for every omics category, taxonomic tool and
// physical variable, plus a compendium summary.
type CoverageService struct {
	source ports.TabularSource
	log    *internal.Logger
	opts   Options
}

func NewCoverageService(source ports.TabularSource, log *internal.Logger, opts Options) *CoverageService {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &CoverageService{source: source, log: log, opts: opts}
}

// Report walks every source table once and tallies coverage. A study's
// score is the number of measurement kinds (categories plus tools) it has
// at least one sample for.
func (c *CoverageService) Report(ctx context.Context) (*model.CoverageReport, error) {
	samples, err := c.source.Samples(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading samples: %w", err)
	}
	studies, err := c.source.Studies(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading studies: %w", err)
	}

	sampleStudy := make(map[core.SampleID]core.StudyID, len(samples))
	coverage := make(map[core.StudyID]*model.StudyCoverage, len(studies))
	for _, st := range studies {
		coverage[st.ID] = &model.StudyCoverage{
			StudyID:   st.ID,
			Omics:     make(map[string]int),
			Taxonomic: make(map[string]int),
			Physical:  make(map[string]int),
		}
	}
	ensure := func(id core.StudyID) *model.StudyCoverage {
		cov, ok := coverage[id]
		if !ok {
			// Samples may reference studies missing from the study table.
			cov = &model.StudyCoverage{
				StudyID:   id,
				Omics:     make(map[string]int),
				Taxonomic: make(map[string]int),
				Physical:  make(map[string]int),
			}
			coverage[id] = cov
		}
		return cov
	}

	for _, sm := range samples {
		sampleStudy[sm.ID] = sm.StudyID
		cov := ensure(sm.StudyID)
		cov.TotalSamples++
		for _, variable := range c.opts.PhysicalVariables {
			if _, ok := sm.PhysicalValue(variable); ok {
				cov.Physical[variable]++
			}
		}
	}

	for _, category := range catalog.OmicsCategories() {
		counts, err := c.samplesPerStudy(ctx, category.Table(), sampleStudy)
		if err != nil {
			c.log.Warn("coverage for %s failed: %v", category, err)
			continue
		}
		for sid, n := range counts {
			ensure(sid).Omics[string(category)] = n
		}
	}
	for _, tool := range catalog.TaxonomicTools() {
		counts, err := c.samplesPerStudy(ctx, tool.Table(), sampleStudy)
		if err != nil {
			c.log.Warn("coverage for %s failed: %v", tool, err)
			continue
		}
		for sid, n := range counts {
			ensure(sid).Taxonomic[string(tool)] = n
		}
	}

	report := &model.CoverageReport{
		TotalStudies: len(coverage),
		Studies:      make(map[core.StudyID]model.StudyCoverage, len(coverage)),
		Summary:      map[string]int{"total_samples": len(samples)},
	}

	ranked := make([]model.StudyCoverage, 0, len(coverage))
	for _, cov := range coverage {
		cov.Score = len(cov.Omics) + len(cov.Taxonomic)
		report.Studies[cov.StudyID] = *cov
		ranked = append(ranked, *cov)

		for kind := range cov.Omics {
			report.Summary["studies_with_"+kind]++
		}
		for kind := range cov.Taxonomic {
			report.Summary["studies_with_"+kind]++
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].StudyID < ranked[j].StudyID
	})
	if len(ranked) > topCoverageStudies {
		ranked = ranked[:topCoverageStudies]
	}
	report.TopStudies = ranked

	return report, nil
}

// samplesPerStudy counts, for one abundance table, the distinct samples per
// study that have at least one record.
func (c *CoverageService) samplesPerStudy(ctx context.Context, table catalog.Table, sampleStudy map[core.SampleID]core.StudyID) (map[core.StudyID]int, error) {
	records, err := c.source.Abundance(ctx, table)
	if err != nil {
		return nil, err
	}

	seen := make(map[core.SampleID]bool)
	counts := make(map[core.StudyID]int)
	for _, r := range records {
		if seen[r.SampleID] {
			continue
		}
		seen[r.SampleID] = true
		if sid, ok := sampleStudy[r.SampleID]; ok {
			counts[sid]++
		}
	}
	return counts, nil
}
