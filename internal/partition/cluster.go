package partition

import "github.com/sarat-asymmetrica/dpam/internal/resrange"

// mergeSlack and smallSideMax implement the merge test's two admission
// routes (spec.md §4.J.7): a clearly-stronger cross affinity, or a
// small enough candidate that weak internal signal shouldn't block growth.
const (
	mergeSlack   = 1.07
	smallSideMax = 20
)

// cluster is a growing domain candidate during greedy clustering: its
// member segment ids, the union of their residues, and running internal-
// affinity statistics maintained incrementally so the merge test never
// needs to recompute a domain's full internal pair sum from scratch.
type cluster struct {
	segments  map[int]bool
	residues  resrange.Set
	intraSum  float64
	intraCnt  int
}

func newCluster(segs ...Segment) *cluster {
	c := &cluster{segments: make(map[int]bool)}
	var all resrange.Set
	for _, s := range segs {
		c.segments[s.ID] = true
		all = resrange.Union(all, s.Residues)
	}
	c.residues = all
	return c
}

func (c *cluster) meanIntra() float64 {
	if c.intraCnt == 0 {
		return 0
	}
	return c.intraSum / float64(c.intraCnt)
}

// passesMergeTest applies spec.md §4.J.7's merge test between this cluster
// and a candidate part (another cluster, or a lone free segment) given the
// pre-existing internal stats of the candidate part.
func passesMergeTest(p [][]float64, x, y *cluster) bool {
	interSum, interCnt := crossStats(p, x.residues.Slice(), y.residues.Slice())
	inter := 0.0
	if interCnt > 0 {
		inter = interSum / float64(interCnt)
	}
	intra := x.meanIntra()
	if y.meanIntra() < intra {
		intra = y.meanIntra()
	}
	smaller := x.residues.Len()
	if y.residues.Len() < smaller {
		smaller = y.residues.Len()
	}
	return inter*mergeSlack >= intra || smaller < smallSideMax
}

// absorb folds y into x: merges segment membership, residue sets, and
// internal-affinity running stats (x's prior internal pairs, y's prior
// internal pairs, and the new cross pairs created by the union).
func absorb(p [][]float64, x, y *cluster) {
	interSum, interCnt := crossStats(p, x.residues.Slice(), y.residues.Slice())
	x.intraSum += y.intraSum + interSum
	x.intraCnt += y.intraCnt + interCnt
	for id := range y.segments {
		x.segments[id] = true
	}
	x.residues = resrange.Union(x.residues, y.residues)
}

// Cluster runs spec.md §4.J.7's greedy clustering pass: segment-pair
// affinities are consumed in descending order (already sorted by the
// caller via AllPairAffinities, which also applies the deterministic tie-
// break), growing or merging domain candidates as each pair is admitted.
func Cluster(p [][]float64, segs []Segment, pairs []Pair) []*cluster {
	segByID := make(map[int]Segment, len(segs))
	for _, s := range segs {
		segByID[s.ID] = s
	}
	owner := make(map[int]*cluster) // segment id -> its current cluster
	var all []*cluster

	for _, pr := range pairs {
		cA, inA := owner[pr.A]
		cB, inB := owner[pr.B]

		switch {
		case !inA && !inB:
			c := newCluster(segByID[pr.A], segByID[pr.B])
			// initial pair's own cross affinity seeds intra stats.
			sum, cnt := crossStats(p, segByID[pr.A].Residues.Slice(), segByID[pr.B].Residues.Slice())
			c.intraSum, c.intraCnt = sum, cnt
			owner[pr.A] = c
			owner[pr.B] = c
			all = append(all, c)

		case inA && !inB:
			free := newCluster(segByID[pr.B])
			if passesMergeTest(p, cA, free) {
				absorb(p, cA, free)
				owner[pr.B] = cA
			}

		case !inA && inB:
			free := newCluster(segByID[pr.A])
			if passesMergeTest(p, cB, free) {
				absorb(p, cB, free)
				owner[pr.A] = cB
			}

		default: // both already placed
			if cA == cB {
				continue
			}
			if passesMergeTest(p, cA, cB) {
				absorb(p, cA, cB)
				for id := range cB.segments {
					owner[id] = cA
				}
				all = removeCluster(all, cB)
			}
		}
	}
	return all
}

func removeCluster(all []*cluster, target *cluster) []*cluster {
	out := all[:0]
	for _, c := range all {
		if c != target {
			out = append(out, c)
		}
	}
	return out
}
