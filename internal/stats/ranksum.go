package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// RankSumResult is the outcome of the two-sided Mann-Whitney U test.
type RankSumResult struct {
	U           float64 `json:"u"`
	PValue      float64 `json:"p_value"`
	Significant bool    `json:"significant"`
}

var unitNormal = distuv.Normal{Mu: 0, Sigma: 1}

// MannWhitney runs the two-sided rank-sum test on two independent samples
// using the normal approximation with mid-rank tie correction and a 0.5
// continuity correction. An empty side or a fully tied pooled sample is a
// degenerate comparison: the test is skipped (p=1, not significant).
func MannWhitney(a, b []float64, alpha float64) RankSumResult {
	n1, n2 := len(a), len(b)
	if n1 == 0 || n2 == 0 {
		return RankSumResult{PValue: 1.0}
	}

	type obs struct {
		value float64
		fromA bool
	}
	pooled := make([]obs, 0, n1+n2)
	for _, v := range a {
		pooled = append(pooled, obs{v, true})
	}
	for _, v := range b {
		pooled = append(pooled, obs{v, false})
	}
	sort.Slice(pooled, func(i, j int) bool { return pooled[i].value < pooled[j].value })

	// Assign mid-ranks and accumulate the tie-correction term sum(t^3 - t).
	rankSumA := 0.0
	tieTerm := 0.0
	n := len(pooled)
	for i := 0; i < n; {
		j := i
		for j < n && pooled[j].value == pooled[i].value {
			j++
		}
		t := float64(j - i)
		midRank := float64(i+j+1) / 2.0 // ranks are 1-based
		for k := i; k < j; k++ {
			if pooled[k].fromA {
				rankSumA += midRank
			}
		}
		tieTerm += t*t*t - t
		i = j
	}

	fn1, fn2 := float64(n1), float64(n2)
	fn := fn1 + fn2
	u1 := rankSumA - fn1*(fn1+1)/2.0

	mu := fn1 * fn2 / 2.0
	variance := (fn1 * fn2 / 12.0) * ((fn + 1) - tieTerm/(fn*(fn-1)))
	if variance <= 0 {
		// Every pooled value tied: no ordering information.
		return RankSumResult{U: u1, PValue: 1.0}
	}

	z := u1 - mu
	switch {
	case z > 0:
		z -= 0.5
	case z < 0:
		z += 0.5
	}
	z /= math.Sqrt(variance)

	p := 2 * unitNormal.Survival(math.Abs(z))
	if p > 1 {
		p = 1
	}

	return RankSumResult{U: u1, PValue: p, Significant: p < alpha}
}
