package stats

import "sort"

// CliffsDelta computes the distribution-free effect size
//
//	delta = (#(a > b) - #(a < b)) / (|A|*|B|)
//
// in O((n+m) log m) by sorting one side and counting dominated and
// dominating values with binary searches, instead of the O(n*m) pairwise
// definition. Tied pairs contribute nothing, so identical multisets give
// exactly 0 and delta(A,B) == -delta(B,A). Positive delta means A tends to
// exceed B; an empty side is defined as 0.
func CliffsDelta(a, b []float64) float64 {
	n1, n2 := len(a), len(b)
	if n1 == 0 || n2 == 0 {
		return 0.0
	}

	sorted := make([]float64, n2)
	copy(sorted, b)
	sort.Float64s(sorted)

	net := 0
	for _, x := range a {
		// Lower bound counts b < x, upper bound counts b <= x.
		lo := sort.SearchFloat64s(sorted, x)
		hi := sort.Search(n2, func(i int) bool { return sorted[i] > x })
		net += lo - (n2 - hi)
	}

	return float64(net) / float64(n1*n2)
}

// Direction labels the sign of an effect size the way outlier lists report
// it: the study subset tends "higher" or "lower" than the compendium.
func Direction(delta float64) string {
	if delta > 0 {
		return "higher"
	}
	return "lower"
}
