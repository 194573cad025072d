package analysis

import (
	"time"

	"compendium/domain/core"
)

// VariableStatistics is the compendium-wide descriptive view of one physical
// variable across every sample in the collection.
type VariableStatistics struct {
	Variable  string    `json:"variable"`
	Mean      float64   `json:"mean"`
	Std       float64   `json:"std"`
	Min       float64   `json:"min"`
	Max       float64   `json:"max"`
	Count     int       `json:"count"`
	Histogram Histogram `json:"histogram"`
}

// EcosystemStatistics is the compendium-wide value distribution of one
// categorical ecosystem variable. Null labels count as "Unknown".
type EcosystemStatistics struct {
	Variable     string         `json:"variable"`
	ValueCounts  map[string]int `json:"value_counts"`
	TotalSamples int            `json:"total_samples"`
	UniqueValues int            `json:"unique_values"`
}

// SamplePoint is one dated sample on the collection timeline.
type SamplePoint struct {
	SampleID core.SampleID `json:"sample_id"`
	StudyID  core.StudyID  `json:"study_id"`
	Date     time.Time     `json:"date"`
}

// TimelineData spans the whole compendium: per-study collection windows plus
// every dated sample. Samples without a collection date are skipped.
type TimelineData struct {
	StudyTimelines []StudyTimeline `json:"study_timelines"`
	SampleTimeline []SamplePoint   `json:"sample_timeline"`
}

// StudyCoverage counts, for one study, the samples carrying each kind of
// measurement data.
type StudyCoverage struct {
	StudyID      core.StudyID   `json:"study_id"`
	TotalSamples int            `json:"total_samples"`
	Omics        map[string]int `json:"omics"`
	Taxonomic    map[string]int `json:"taxonomic"`
	Physical     map[string]int `json:"physical"`
	Score        int            `json:"score"`
}

// CoverageReport summarizes data availability across the compendium.
type CoverageReport struct {
	TotalStudies int                            `json:"total_studies"`
	Studies      map[core.StudyID]StudyCoverage `json:"studies"`
	TopStudies   []StudyCoverage                `json:"top_studies"`
	Summary      map[string]int                 `json:"summary"`
}
