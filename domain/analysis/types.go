// Package analysis defines the result model: the structures the orchestrators
// assemble and the cache persists. Everything here is JSON-serializable with
// stable field names; downstream collaborators (report generators, summary
// services) traverse these shapes directly.
package analysis

import (
	"time"

	"compendium/domain/catalog"
	"compendium/domain/core"
)

// Status marks whether a per-variable or per-entity slot computed cleanly.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Histogram is a fixed-bin-count distribution over observed values.
// BinEdges has one more element than Counts; the top edge is inclusive.
type Histogram struct {
	Counts   []int     `json:"counts"`
	BinEdges []float64 `json:"bin_edges"`
}

// ComparisonResult compares one variable or entity in one study against the
// compendium. For physical variables the compendium baseline is the
// distribution of per-study means (CompendiumStudyCount studies); for
// abundance entities it is the pooled compendium values (CompendiumCount
// samples). The significance test always runs on raw pooled values.
type ComparisonResult struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`

	// Entity identity, set for abundance comparisons only.
	ID   string       `json:"id,omitempty"`
	Rank catalog.Rank `json:"rank,omitempty"`

	// Study-subset statistics.
	Mean      float64    `json:"mean"`
	Std       float64    `json:"std"`
	Min       float64    `json:"min,omitempty"`
	Max       float64    `json:"max,omitempty"`
	Count     int        `json:"count"`
	Histogram *Histogram `json:"histogram,omitempty"`

	// Compendium-subset statistics.
	CompendiumMean       float64 `json:"compendium_mean"`
	CompendiumStd        float64 `json:"compendium_std"`
	CompendiumCount      int     `json:"compendium_count,omitempty"`
	CompendiumStudyCount int     `json:"compendium_study_count,omitempty"`

	// Significance and effect size.
	PValue      float64 `json:"p_value"`
	Significant bool    `json:"significant"`
	EffectSize  float64 `json:"effect_size"`
	Direction   string  `json:"direction,omitempty"`

	// First-seen category metadata, set for abundance comparisons.
	Compound *catalog.CompoundMeta `json:"compound,omitempty"`
	Lipid    *catalog.LipidMeta    `json:"lipid,omitempty"`
	Protein  *catalog.ProteinMeta  `json:"protein,omitempty"`
}

// ErrorResult builds an error-status slot without aborting sibling slots.
func ErrorResult(err error) ComparisonResult {
	return ComparisonResult{Status: StatusError, Error: err.Error()}
}

// RankedEntity is one row of a top-K list: an entity ranked by its mean
// abundance within a study.
type RankedEntity struct {
	ID            string       `json:"id"`
	MeanAbundance float64      `json:"mean_abundance"`
	StdAbundance  float64      `json:"std_abundance"`
	SampleCount   int          `json:"sample_count"`
	Rank          catalog.Rank `json:"rank,omitempty"`

	Compound *catalog.CompoundMeta `json:"compound,omitempty"`
	Lipid    *catalog.LipidMeta    `json:"lipid,omitempty"`
	Protein  *catalog.ProteinMeta  `json:"protein,omitempty"`
}

// OmicsAnalysis holds per-category top-K and outlier lists for one study.
type OmicsAnalysis struct {
	Top10    map[catalog.OmicsCategory][]RankedEntity     `json:"top10"`
	Outliers map[catalog.OmicsCategory][]ComparisonResult `json:"outliers"`
}

// TaxonomicAnalysis holds per-tool, per-rank top-K and outlier lists.
type TaxonomicAnalysis struct {
	Top10    map[catalog.TaxonomicTool]map[catalog.Rank][]RankedEntity     `json:"top10"`
	Outliers map[catalog.TaxonomicTool]map[catalog.Rank][]ComparisonResult `json:"outliers"`
}

// EcosystemSummary describes the categorical ecosystem labels of a study's
// samples: distinct values, the most common value, and per-value counts.
type EcosystemSummary struct {
	Values       map[string][]string       `json:"values"`
	MostCommon   map[string]string         `json:"most_common"`
	SampleCounts map[string]map[string]int `json:"sample_counts"`
}

// MapLocation is one sample's plotted position with display context.
type MapLocation struct {
	SampleID    core.SampleID     `json:"sample_id"`
	Name        string            `json:"name,omitempty"`
	Latitude    float64           `json:"latitude"`
	Longitude   float64           `json:"longitude"`
	Ecosystem   map[string]string `json:"ecosystem,omitempty"`
	Depth       *float64          `json:"depth,omitempty"`
	Temperature *float64          `json:"temperature,omitempty"`
	PH          *float64          `json:"ph,omitempty"`
	CollectedAt *time.Time        `json:"collected_at,omitempty"`
}

// MapData lists the study's samples that carry valid coordinates.
type MapData struct {
	Locations []MapLocation `json:"locations"`
}

// StudyTimeline is the collection-date span of one study.
type StudyTimeline struct {
	StudyID     core.StudyID `json:"study_id"`
	StartDate   *time.Time   `json:"start_date,omitempty"`
	EndDate     *time.Time   `json:"end_date,omitempty"`
	SampleCount int          `json:"sample_count"`
}

// StudyAnalysis is the cached unit for one study: every physical variable
// compared against the compendium, top-K and outlier entity lists for every
// omics category and taxonomic tool x rank, plus display aggregates.
type StudyAnalysis struct {
	StudyID   core.StudyID                `json:"study_id"`
	Physical  map[string]ComparisonResult `json:"physical"`
	Omics     OmicsAnalysis               `json:"omics"`
	Taxonomic TaxonomicAnalysis           `json:"taxonomic"`
	Ecosystem EcosystemSummary            `json:"ecosystem"`
	MapData   MapData                     `json:"map_data"`
	Timeline  StudyTimeline               `json:"timeline"`
}

// SampleVariable is one physical value observed on a sample, positioned
// against its study's cached distribution.
type SampleVariable struct {
	Value     float64 `json:"value"`
	ZScore    float64 `json:"z_score"`
	StudyMean float64 `json:"study_mean"`
	StudyStd  float64 `json:"study_std"`
}

// SampleEntity maps one of the study's top entities onto a single sample's
// raw abundance (0 if the sample never observed the entity).
type SampleEntity struct {
	ID            string       `json:"id"`
	Abundance     float64      `json:"abundance"`
	MeanAbundance float64      `json:"mean_abundance"`
	StdAbundance  float64      `json:"std_abundance"`
	SampleCount   int          `json:"sample_count"`
	ZScore        float64      `json:"z_score"`
	Rank          catalog.Rank `json:"rank,omitempty"`
}

// SampleLocation is a nullable coordinate pair.
type SampleLocation struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// SampleAnalysis re-projects the owning study's cached analysis onto one
// sample's observed values. Its cache entry depends on the study's entry.
type SampleAnalysis struct {
	SampleID    core.SampleID                                             `json:"sample_id"`
	StudyID     core.StudyID                                              `json:"study_id"`
	Name        string                                                    `json:"name,omitempty"`
	CollectedAt *time.Time                                                `json:"collected_at,omitempty"`
	Ecosystem   map[string]string                                         `json:"ecosystem,omitempty"`
	Location    SampleLocation                                            `json:"location"`
	Physical    map[string]SampleVariable                                 `json:"physical"`
	Omics       map[catalog.OmicsCategory][]SampleEntity                  `json:"omics"`
	Taxonomic   map[catalog.TaxonomicTool]map[catalog.Rank][]SampleEntity `json:"taxonomic"`
}
