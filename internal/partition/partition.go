package partition

import "github.com/sarat-asymmetrica/dpam/internal/resrange"

// SegmentAffinityThreshold is the minimum segment-pair affinity
// (spec.md §4.J.7) a pair must exceed to become a clustering candidate.
const SegmentAffinityThreshold = 0.54

// Run executes the full stage 13 pipeline over a precomputed combined-
// probability matrix: segment construction, pairwise affinity, greedy
// clustering, gap fill, overlap resolution, length filter, and final
// numbering. n is the chain length and disordered is stage 12's disorder
// call.
func Run(p [][]float64, n int, disordered resrange.Set) []Domain {
	segs := BuildSegments(n, disordered)
	pairs := AllPairAffinities(p, segs, SegmentAffinityThreshold)
	clusters := Cluster(p, segs, pairs)

	filled := make([]resrange.Set, len(clusters))
	for i, c := range clusters {
		filled[i] = GapFill(c)
	}
	resolved := ResolveOverlap(filled)
	final := LengthFilter(resolved)
	return Number(final)
}
