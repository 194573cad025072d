// Package analysis implements the per-entity computations the study and
// sample services orchestrate: grouping abundance records by entity,
// ranking entities by mean abundance, and flagging entities whose study
// distribution differs significantly from the compendium.
package analysis

import (
	"sort"

	model "compendium/domain/analysis"
	"compendium/domain/catalog"
	"compendium/internal/stats"
)

// Group collects one entity's observed abundance values across samples,
// with first-seen category metadata.
type Group struct {
	ID     string
	Rank   catalog.Rank
	Values []float64

	Compound *catalog.CompoundMeta
	Lipid    *catalog.LipidMeta
	Protein  *catalog.ProteinMeta
}

// GroupRecords buckets records by entity id. Metadata is taken from the
// first record that carries it; later records never overwrite. Callers
// working with taxonomic tables filter to a single rank first, so the id
// alone identifies the entity.
func GroupRecords(records []catalog.AbundanceRecord) map[string]*Group {
	groups := make(map[string]*Group)
	for _, r := range records {
		id := r.EntityID.String()
		g, ok := groups[id]
		if !ok {
			g = &Group{ID: id, Rank: r.Rank}
			groups[id] = g
		}
		g.Values = append(g.Values, r.Abundance)
		if g.Compound == nil && r.Compound != nil {
			g.Compound = r.Compound
		}
		if g.Lipid == nil && r.Lipid != nil {
			g.Lipid = r.Lipid
		}
		if g.Protein == nil && r.Protein != nil {
			g.Protein = r.Protein
		}
	}
	return groups
}

// FilterRank keeps only the records classified at the given rank.
func FilterRank(records []catalog.AbundanceRecord, rank catalog.Rank) []catalog.AbundanceRecord {
	out := make([]catalog.AbundanceRecord, 0, len(records))
	for _, r := range records {
		if r.Rank == rank {
			out = append(out, r)
		}
	}
	return out
}

// TopK ranks the entities in records by descending mean abundance and
// returns the first k. Equal means break ties by id ascending so repeated
// runs over the same data produce identical lists.
func TopK(records []catalog.AbundanceRecord, k int) []model.RankedEntity {
	groups := GroupRecords(records)

	ranked := make([]model.RankedEntity, 0, len(groups))
	for _, g := range groups {
		mean, std := stats.MeanStd(g.Values)
		ranked = append(ranked, model.RankedEntity{
			ID:            g.ID,
			MeanAbundance: mean,
			StdAbundance:  std,
			SampleCount:   len(g.Values),
			Rank:          g.Rank,
			Compound:      g.Compound,
			Lipid:         g.Lipid,
			Protein:       g.Protein,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].MeanAbundance != ranked[j].MeanAbundance {
			return ranked[i].MeanAbundance > ranked[j].MeanAbundance
		}
		return ranked[i].ID < ranked[j].ID
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
