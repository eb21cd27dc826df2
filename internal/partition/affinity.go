package partition

import (
	"sort"

	"github.com/sarat-asymmetrica/dpam/internal/resrange"
)

// sequenceSeparation is the mandatory minimum |a-b| for a residue pair to
// contribute to segment-pair affinity (spec.md §4.J.6): without it,
// sequence-adjacent pairs (which are always highly "linked" in P simply by
// being close in the chain) would inflate affinity and corrupt merges.
const sequenceSeparation = 5

// Pair is one candidate segment-pair affinity, kept only when it exceeds
// the clustering threshold.
type Pair struct {
	A, B      int // segment ids, A < B by construction
	Affinity float64
}

// segmentAffinity computes the mean of P[a,b] over a in segA, b in segB
// restricted to pairs with |a-b| > sequenceSeparation. ok is false if no
// residue pair in the two segments satisfies the separation filter (the
// pair then carries no signal and is never a clustering candidate).
func segmentAffinity(p [][]float64, segA, segB Segment) (affinity float64, ok bool) {
	sum, count := crossStats(p, segA.Residues.Slice(), segB.Residues.Slice())
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// crossStats sums P[a,b] over every a in a, b in b with |a-b| >
// sequenceSeparation, and returns the qualifying pair count alongside it.
// Shared by segment-pair affinity and the domain merge test, which applies
// the identical mandatory separation filter to whole residue sets.
func crossStats(p [][]float64, a, b []resrange.ResId) (sum float64, count int) {
	for _, ra := range a {
		for _, rb := range b {
			sep := int(ra) - int(rb)
			if sep < 0 {
				sep = -sep
			}
			if sep <= sequenceSeparation {
				continue
			}
			sum += p[int(ra)-1][int(rb)-1]
			count++
		}
	}
	return sum, count
}

// AllPairAffinities computes segmentAffinity for every distinct pair of
// segments and returns the ones exceeding threshold, sorted descending by
// affinity with a deterministic tie-break of (lower segment id, higher
// segment id) — spec.md §4.J's determinism requirement.
func AllPairAffinities(p [][]float64, segs []Segment, threshold float64) []Pair {
	var out []Pair
	for i := 0; i < len(segs); i++ {
		for j := i + 1; j < len(segs); j++ {
			aff, ok := segmentAffinity(p, segs[i], segs[j])
			if !ok || aff <= threshold {
				continue
			}
			out = append(out, Pair{A: segs[i].ID, B: segs[j].ID, Affinity: aff})
		}
	}
	sortPairsDescending(out)
	return out
}

// sortPairsDescending orders by affinity descending; ties broken by lower
// segment id ascending, then higher segment id ascending.
func sortPairsDescending(pairs []Pair) {
	sort.Slice(pairs, func(i, j int) bool { return less(pairs[i], pairs[j]) })
}

func less(x, y Pair) bool {
	if x.Affinity != y.Affinity {
		return x.Affinity > y.Affinity
	}
	if x.A != y.A {
		return x.A < y.A
	}
	return x.B < y.B
}
