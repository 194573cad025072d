package analysis

import (
	"math"
	"sort"

	model "compendium/domain/analysis"
	"compendium/domain/catalog"
	"compendium/internal/stats"
)

// Outliers compares every entity observed in the study against the pooled
// compendium distribution of the same entity and keeps those where the
// rank-sum test rejects at alpha. Results are ordered by absolute effect
// size descending, id ascending on ties.
func Outliers(studyRecords, compendiumRecords []catalog.AbundanceRecord, alpha float64) []model.ComparisonResult {
	studyGroups := GroupRecords(studyRecords)
	compendiumGroups := GroupRecords(compendiumRecords)

	out := make([]model.ComparisonResult, 0)
	for id, sg := range studyGroups {
		cg, ok := compendiumGroups[id]
		if !ok || len(cg.Values) == 0 || len(sg.Values) == 0 {
			continue
		}

		test := stats.MannWhitney(sg.Values, cg.Values, alpha)
		if !test.Significant {
			continue
		}

		studyMean, studyStd := stats.MeanStd(sg.Values)
		compMean, compStd := stats.MeanStd(cg.Values)
		delta := stats.CliffsDelta(sg.Values, cg.Values)

		out = append(out, model.ComparisonResult{
			Status:          model.StatusOK,
			ID:              sg.ID,
			Rank:            sg.Rank,
			Mean:            studyMean,
			Std:             studyStd,
			Count:           len(sg.Values),
			CompendiumMean:  compMean,
			CompendiumStd:   compStd,
			CompendiumCount: len(cg.Values),
			PValue:          test.PValue,
			Significant:     true,
			EffectSize:      delta,
			Direction:       stats.Direction(delta),
			Compound:        sg.Compound,
			Lipid:           sg.Lipid,
			Protein:         sg.Protein,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		ai, aj := math.Abs(out[i].EffectSize), math.Abs(out[j].EffectSize)
		if ai != aj {
			return ai > aj
		}
		return out[i].ID < out[j].ID
	})
	return out
}
