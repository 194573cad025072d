// Package stats implements the numeric building blocks of the comparison
// engine: descriptive statistics over row subsets, the two-sided rank-sum
// significance test, and the Cliff's delta effect size.
package stats

import (
	"math"

	mstats "github.com/montanaflynn/stats"

	"compendium/domain/analysis"
	"compendium/domain/core"
)

// Summary holds the descriptive statistics of one numeric subset. Std is the
// sample standard deviation (ddof=1); downstream z-scores divide by it.
type Summary struct {
	Mean      float64
	Std       float64
	Min       float64
	Max       float64
	Count     int
	Histogram analysis.Histogram
}

// Clean drops NaN and infinite values, returning a fresh slice.
func Clean(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// Describe computes count, mean, sample standard deviation, min, max and a
// fixed-bin histogram over the already-cleaned values. An empty input yields
// core.ErrNoData; callers treat that as "skip this variable".
func Describe(values []float64, bins int) (*Summary, error) {
	if len(values) == 0 {
		return nil, core.ErrNoData
	}

	mean, err := mstats.Mean(values)
	if err != nil {
		return nil, err
	}
	min, err := mstats.Min(values)
	if err != nil {
		return nil, err
	}
	max, err := mstats.Max(values)
	if err != nil {
		return nil, err
	}
	std := SampleStd(values, mean)

	return &Summary{
		Mean:      mean,
		Std:       std,
		Min:       min,
		Max:       max,
		Count:     len(values),
		Histogram: HistogramOf(values, min, max, bins),
	}, nil
}

// MeanStd returns the mean and sample standard deviation of values.
func MeanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean, _ = mstats.Mean(values)
	return mean, SampleStd(values, mean)
}

// SampleStd returns the sample standard deviation around the given mean.
// A single observation has no spread; its std is defined as 0.
func SampleStd(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}

// HistogramOf bins the values into `bins` equal-width bins spanning
// [min, max]. When all values coincide the range widens by 0.5 on each side
// so the single value still lands in a bin. The top edge is inclusive.
func HistogramOf(values []float64, min, max float64, bins int) analysis.Histogram {
	lo, hi := min, max
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}

	edges := make([]float64, bins+1)
	width := (hi - lo) / float64(bins)
	for i := 0; i <= bins; i++ {
		edges[i] = lo + float64(i)*width
	}
	edges[bins] = hi // guard against accumulated float error

	counts := make([]int, bins)
	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		counts[idx]++
	}

	return analysis.Histogram{Counts: counts, BinEdges: edges}
}

// ZScore positions a value against a distribution; a zero spread yields 0.
func ZScore(value, mean, std float64) float64 {
	if std == 0 {
		return 0
	}
	return (value - mean) / std
}
