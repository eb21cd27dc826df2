package partition

import (
	"testing"

	"github.com/sarat-asymmetrica/dpam/internal/resrange"
	"github.com/stretchr/testify/require"
)

func TestPDistMonotoneDecreasing(t *testing.T) {
	require.Equal(t, 0.95, pDist(1))
	require.Equal(t, 0.95, pDist(3))
	require.Equal(t, 0.94, pDist(4))
	require.Equal(t, distDefault, pDist(500))
}

func TestPHHAscendingThresholds(t *testing.T) {
	require.Equal(t, 0.98, pHH(200))
	require.Equal(t, 0.98, pHH(180))
	require.Equal(t, 0.94, pHH(179))
	require.Equal(t, hhDefault, pHH(10))
}

func TestPDaliFloorsAtDefault(t *testing.T) {
	require.Equal(t, daliDefault, pDali(1))
	require.Equal(t, 0.50, pDali(2))
	require.Equal(t, 0.97, pDali(40))
}

// flatMatrix returns an N x N matrix filled with v (diagonal included,
// though the diagonal is never read by this package).
func flatMatrix(n int, v float64) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		for j := range m[i] {
			m[i][j] = v
		}
	}
	return m
}

func TestBuildSegmentsDropsDisorderedWindows(t *testing.T) {
	disordered := resrange.New(rangeIds(6, 10)...) // the whole second window
	segs := BuildSegments(15, disordered)

	// windows: [1-5] kept, [6-10] fully disordered -> dropped, [11-15] kept
	require.Len(t, segs, 2)
	require.Equal(t, 5, segs[0].Residues.Len())
	require.Equal(t, 5, segs[1].Residues.Len())
}

func TestBuildSegmentsRequiresThreeOrderedResidues(t *testing.T) {
	// window [1-5] with 3 disordered (1,2,3) leaves only 2 ordered -> dropped
	disordered := resrange.New(1, 2, 3)
	segs := BuildSegments(5, disordered)
	require.Empty(t, segs)
}

func rangeIds(a, b int) []resrange.ResId {
	var out []resrange.ResId
	for i := a; i <= b; i++ {
		out = append(out, resrange.ResId(i))
	}
	return out
}

func TestSegmentAffinityAppliesSeparationFilter(t *testing.T) {
	// two adjacent 5-residue segments: residues 1-5 and 6-10. Every cross
	// pair has |a-b| in [1,9]; only pairs with separation > 5 count.
	p := flatMatrix(11, 0.9)
	segA := Segment{ID: 0, Residues: resrange.New(rangeIds(1, 5)...)}
	segB := Segment{ID: 1, Residues: resrange.New(rangeIds(6, 10)...)}

	aff, ok := segmentAffinity(p, segA, segB)
	require.True(t, ok)
	require.InDelta(t, 0.9, aff, 1e-9) // flat matrix, so mean is still 0.9 regardless of which pairs qualify
}

func TestSegmentAffinityNoQualifyingPairsIsNotOK(t *testing.T) {
	p := flatMatrix(6, 0.9)
	segA := Segment{ID: 0, Residues: resrange.New(1, 2)}
	segB := Segment{ID: 1, Residues: resrange.New(3, 4)} // max separation 3, all filtered
	_, ok := segmentAffinity(p, segA, segB)
	require.False(t, ok)
}

func TestClusterMergesStrongAffinityChain(t *testing.T) {
	// three segments far enough apart in sequence that all cross-pairs
	// qualify; uniformly high affinity should merge them into one cluster.
	n := 20
	p := flatMatrix(n, 0.9)
	segs := []Segment{
		{ID: 0, Residues: resrange.New(rangeIds(1, 5)...)},
		{ID: 1, Residues: resrange.New(rangeIds(11, 15)...)},
		{ID: 2, Residues: resrange.New(rangeIds(16, 20)...)},
	}
	pairs := AllPairAffinities(p, segs, SegmentAffinityThreshold)
	require.NotEmpty(t, pairs)
	clusters := Cluster(p, segs, pairs)
	require.Len(t, clusters, 1)
	require.Equal(t, 15, clusters[0].residues.Len())
}

func TestClusterLeavesWeaklyRelatedSegmentsApart(t *testing.T) {
	n := 20
	p := flatMatrix(n, 0.1) // below threshold everywhere
	segs := []Segment{
		{ID: 0, Residues: resrange.New(rangeIds(1, 5)...)},
		{ID: 1, Residues: resrange.New(rangeIds(16, 20)...)},
	}
	pairs := AllPairAffinities(p, segs, SegmentAffinityThreshold)
	require.Empty(t, pairs)
	clusters := Cluster(p, segs, pairs)
	require.Empty(t, clusters)
}

func TestGapFillAbsorbsSmallGap(t *testing.T) {
	c := &cluster{residues: resrange.New(1, 2, 3, 10, 11, 12)} // gap of 6 (4-9)
	filled := GapFill(c)
	require.Equal(t, "1-3,10-12", resrange.Format(c.residues))
	require.Equal(t, "1-12", resrange.Format(filled))
}

func TestGapFillLeavesLargeGapUnfilled(t *testing.T) {
	c := &cluster{residues: resrange.New(append(rangeIds(1, 3), rangeIds(20, 22)...)...)} // gap of 16
	filled := GapFill(c)
	require.Equal(t, "1-3,20-22", resrange.Format(filled))
}

func TestResolveOverlapDropsSharedResiduesAndShortFragments(t *testing.T) {
	a := resrange.New(rangeIds(1, 30)...)
	b := resrange.New(rangeIds(25, 50)...) // residues 25-30 shared
	out := ResolveOverlap([]resrange.Set{a, b})
	require.Len(t, out, 2)
	require.Equal(t, "1-24", resrange.Format(out[0]))
	require.Equal(t, "31-50", resrange.Format(out[1]))
}

func TestResolveOverlapDropsDomainBelowMinimumAfterSplit(t *testing.T) {
	a := resrange.New(rangeIds(1, 10)...)            // fully swallowed by overlap below
	b := resrange.New(rangeIds(1, 100)...)
	out := ResolveOverlap([]resrange.Set{a, b})
	require.Len(t, out, 1) // a has zero unique residues and is dropped entirely
	require.Equal(t, "11-100", resrange.Format(out[0]))
}

func TestLengthFilterDropsShortDomains(t *testing.T) {
	short := resrange.New(rangeIds(1, 24)...)
	long := resrange.New(rangeIds(1, 25)...)
	out := LengthFilter([]resrange.Set{short, long})
	require.Len(t, out, 1)
	require.Equal(t, 25, out[0].Len())
}

func TestNumberOrdersByMeanResidueIndexAscending(t *testing.T) {
	late := resrange.New(rangeIds(100, 125)...)
	early := resrange.New(rangeIds(1, 25)...)
	domains := Number([]resrange.Set{late, early})
	require.Equal(t, 1, domains[0].ID)
	require.Equal(t, "1-25", resrange.Format(domains[0].Residues))
	require.Equal(t, 2, domains[1].ID)
	require.Equal(t, "100-125", resrange.Format(domains[1].Residues))
}

func TestRunEndToEndProducesDisjointNumberedDomains(t *testing.T) {
	n := 60
	p := flatMatrix(n, 0.9)
	domains := Run(p, n, resrange.Set{})
	require.Len(t, domains, 1)
	require.Equal(t, 1, domains[0].ID)
	require.GreaterOrEqual(t, domains[0].Residues.Len(), minDomainLen)
}

func TestRunProducesPairwiseNearDisjointDomains(t *testing.T) {
	n := 120
	p := flatMatrix(n, 0.05) // low affinity everywhere: two independent halves
	for i := 0; i < 60; i++ {
		for j := 0; j < 60; j++ {
			p[i][j] = 0.9
		}
	}
	for i := 60; i < 120; i++ {
		for j := 60; j < 120; j++ {
			p[i][j] = 0.9
		}
	}
	domains := Run(p, n, resrange.Set{})
	for i := 0; i < len(domains); i++ {
		for j := i + 1; j < len(domains); j++ {
			inter := resrange.Intersect(domains[i].Residues, domains[j].Residues)
			require.Zero(t, inter.Len(), "domains must be pairwise disjoint after stage 13 refinement")
		}
	}
}
