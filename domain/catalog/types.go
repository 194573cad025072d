// Package catalog models the source data the engine ingests: studies, their
// samples, and the per-sample abundance tables produced by the measurement
// pipelines. All records here are immutable snapshots of the source tables.
package catalog

import (
	"time"

	"compendium/domain/core"
)

// OmicsCategory identifies a chemical-abundance measurement category.
type OmicsCategory string

const (
	Metabolomics OmicsCategory = "metabolomics"
	Lipidomics   OmicsCategory = "lipidomics"
	Proteomics   OmicsCategory = "proteomics"
)

// OmicsCategories returns all categories in a fixed processing order.
func OmicsCategories() []OmicsCategory {
	return []OmicsCategory{Metabolomics, Lipidomics, Proteomics}
}

// ParseOmicsCategory resolves a category name given as external input.
func ParseOmicsCategory(name string) (OmicsCategory, error) {
	for _, c := range OmicsCategories() {
		if string(c) == name {
			return c, nil
		}
	}
	return "", core.NewInvalidVariableError("omics", name)
}

// TaxonomicTool identifies the classification tool that produced a
// taxonomic-abundance table.
type TaxonomicTool string

const (
	Gottcha    TaxonomicTool = "gottcha"
	Kraken     TaxonomicTool = "kraken"
	Centrifuge TaxonomicTool = "centrifuge"
	Contigs    TaxonomicTool = "contigs"
)

// TaxonomicTools returns all tools in a fixed processing order.
func TaxonomicTools() []TaxonomicTool {
	return []TaxonomicTool{Gottcha, Kraken, Centrifuge, Contigs}
}

// ParseTaxonomicTool resolves a tool name given as external input.
func ParseTaxonomicTool(name string) (TaxonomicTool, error) {
	for _, t := range TaxonomicTools() {
		if string(t) == name {
			return t, nil
		}
	}
	return "", core.NewInvalidVariableError("taxonomic", name)
}

// Rank is a level in the fixed taxonomic classification hierarchy.
type Rank string

const (
	RankSuperkingdom Rank = "superkingdom"
	RankPhylum       Rank = "phylum"
	RankClass        Rank = "class"
	RankOrder        Rank = "order"
	RankFamily       Rank = "family"
	RankGenus        Rank = "genus"
	RankSpecies      Rank = "species"
)

// Ranks returns the hierarchy from broadest to narrowest.
func Ranks() []Rank {
	return []Rank{
		RankSuperkingdom, RankPhylum, RankClass, RankOrder,
		RankFamily, RankGenus, RankSpecies,
	}
}

// Table is the logical name of a source table exposed by the tabular accessor.
type Table string

const (
	TableSamples      Table = "samples"
	TableStudies      Table = "studies"
	TableMetabolomics Table = "metabolomics"
	TableLipidomics   Table = "lipidomics"
	TableProteomics   Table = "proteomics"
	TableGottcha      Table = "gottcha"
	TableKraken       Table = "kraken"
	TableCentrifuge   Table = "centrifuge"
	TableContigs      Table = "contigs"
)

// SourceTables lists every declared source table; cache freshness is derived
// from the maximum modification time across this set.
func SourceTables() []Table {
	return []Table{
		TableSamples, TableStudies,
		TableMetabolomics, TableLipidomics, TableProteomics,
		TableGottcha, TableKraken, TableCentrifuge, TableContigs,
	}
}

// Table returns the source table holding this category's abundance records.
func (c OmicsCategory) Table() Table {
	switch c {
	case Metabolomics:
		return TableMetabolomics
	case Lipidomics:
		return TableLipidomics
	default:
		return TableProteomics
	}
}

// Table returns the source table holding this tool's abundance records.
func (t TaxonomicTool) Table() Table {
	switch t {
	case Gottcha:
		return TableGottcha
	case Kraken:
		return TableKraken
	case Centrifuge:
		return TableCentrifuge
	default:
		return TableContigs
	}
}

// Sample is one collected specimen. Physical holds the numeric measurement
// columns that had a value for this sample; absent keys are nulls in the
// source table. Ecosystem holds the categorical classification labels.
type Sample struct {
	ID          core.SampleID     `json:"id"`
	StudyID     core.StudyID      `json:"study_id"`
	Name        string            `json:"name,omitempty"`
	Physical    map[string]float64 `json:"physical,omitempty"`
	Ecosystem   map[string]string  `json:"ecosystem,omitempty"`
	Latitude    *float64          `json:"latitude,omitempty"`
	Longitude   *float64          `json:"longitude,omitempty"`
	CollectedAt *time.Time        `json:"collected_at,omitempty"`
}

// PhysicalValue returns the sample's value for a physical variable, if set.
func (s Sample) PhysicalValue(variable string) (float64, bool) {
	v, ok := s.Physical[variable]
	return v, ok
}

// HasCoordinates reports whether the sample carries a usable location.
func (s Sample) HasCoordinates() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// Study references its samples by study_id; samples are loaded independently
// from the accessor and filtered, never owned.
type Study struct {
	ID   core.StudyID `json:"id"`
	Name string       `json:"name,omitempty"`
}

// AbundanceRecord is one measurement of one entity in one sample, from either
// a chemical-abundance table or a taxonomic-abundance table. Rank is set only
// for taxonomic records. Exactly one of the metadata variants is set,
// matching the record's category.
type AbundanceRecord struct {
	SampleID  core.SampleID  `json:"sample_id"`
	EntityID  core.EntityID  `json:"entity_id"`
	Rank      Rank           `json:"rank,omitempty"`
	Abundance float64        `json:"abundance"`
	Compound  *CompoundMeta  `json:"compound,omitempty"`
	Lipid     *LipidMeta     `json:"lipid,omitempty"`
	Protein   *ProteinMeta   `json:"protein,omitempty"`
	Taxon     *TaxonMeta     `json:"taxon,omitempty"`
}

// CompoundMeta carries metabolomics identification fields.
type CompoundMeta struct {
	CommonName       string `json:"common_name,omitempty"`
	IUPACName        string `json:"iupac_name,omitempty"`
	TraditionalName  string `json:"traditional_name,omitempty"`
	MolecularFormula string `json:"molecular_formula,omitempty"`
	ChebiID          string `json:"chebi_id,omitempty"`
	KeggCompoundID   string `json:"kegg_compound_id,omitempty"`
}

// LipidMeta carries lipidomics classification fields.
type LipidMeta struct {
	Class    string `json:"lipid_class,omitempty"`
	Category string `json:"lipid_category,omitempty"`
}

// ProteinMeta carries proteomics annotation fields.
type ProteinMeta struct {
	ECNumber           string `json:"ec_number,omitempty"`
	Pfam               string `json:"pfam,omitempty"`
	KO                 string `json:"ko,omitempty"`
	COG                string `json:"cog,omitempty"`
	GeneCount          int    `json:"gene_count,omitempty"`
	UniquePeptideCount int    `json:"unique_peptide_count,omitempty"`
}

// TaxonMeta carries taxonomic identification fields.
type TaxonMeta struct {
	Lineage    string `json:"lineage,omitempty"`
	TaxonomyID string `json:"taxonomy_id,omitempty"`
}
