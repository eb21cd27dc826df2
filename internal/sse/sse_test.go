package sse

import (
	"testing"

	"github.com/sarat-asymmetrica/dpam/internal/resrange"
	"github.com/stretchr/testify/require"
)

func rawFromString(s string) map[resrange.ResId]Type {
	out := make(map[resrange.ResId]Type, len(s))
	for i, c := range s {
		out[resrange.ResId(i+1)] = Type(c)
	}
	return out
}

func TestAssignFillsMissingResiduesAsCoil(t *testing.T) {
	raw := map[resrange.ResId]Type{1: Helix, 2: Helix} // residues 3..5 absent
	assignments, _ := Assign(5, raw)
	require.Len(t, assignments, 5)
	for i := 2; i < 5; i++ {
		require.Equal(t, Coil, assignments[i].Type)
	}
}

func TestAssignGroupsLongHelixIntoElement(t *testing.T) {
	raw := rawFromString("CCHHHHHHCCC") // 6 H's: residues 3-8
	assignments, elements := Assign(11, raw)
	require.Len(t, elements, 1)
	require.Equal(t, Helix, elements[0].Type)
	require.Equal(t, resrange.ResId(3), elements[0].Start)
	require.Equal(t, resrange.ResId(8), elements[0].End)
	for i := 2; i < 8; i++ {
		require.Equal(t, 1, assignments[i].ElementID)
	}
	require.Equal(t, 0, assignments[0].ElementID)
}

func TestAssignDemotesShortRuns(t *testing.T) {
	raw := rawFromString("CCHHHCC") // only 3 H's: too short for a helix (needs 6)
	_, elements := Assign(7, raw)
	require.Empty(t, elements)
}

func TestAssignKeepsShortStrand(t *testing.T) {
	raw := rawFromString("CCEEECC") // 3 E's: exactly the strand minimum
	_, elements := Assign(7, raw)
	require.Len(t, elements, 1)
	require.Equal(t, Strand, elements[0].Type)
}

func TestCountByTypeRestrictsToResidueSet(t *testing.T) {
	raw := rawFromString("HHHHHHCCCEEE") // helix 1-6, strand 10-12
	_, elements := Assign(12, raw)
	require.Len(t, elements, 2)

	helices, strands := CountByType(elements, resrange.New(1, 2, 3, 4, 5, 6))
	require.Equal(t, 1, helices)
	require.Equal(t, 0, strands)

	helices, strands = CountByType(elements, resrange.New(10, 11, 12))
	require.Equal(t, 0, helices)
	require.Equal(t, 1, strands)
}
