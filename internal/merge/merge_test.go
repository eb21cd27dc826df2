package merge

import (
	"testing"

	"github.com/sarat-asymmetrica/dpam/internal/resrange"
	"github.com/stretchr/testify/require"
)

func ids(a, b int) []resrange.ResId {
	var out []resrange.ResId
	for i := a; i <= b; i++ {
		out = append(out, resrange.ResId(i))
	}
	return out
}

func TestProposeCandidatesMergesDisjointCoverageOfSharedTemplate(t *testing.T) {
	preds := []DomainPrediction{
		{DomainID: 1, TemplateID: "tX", Probability: 0.9, TemplateRange: resrange.New(ids(1, 50)...)},
		{DomainID: 2, TemplateID: "tX", Probability: 0.9, TemplateRange: resrange.New(ids(51, 100)...)},
	}
	got := ProposeCandidates(preds)
	require.Len(t, got, 1)
	require.Equal(t, 1, got[0].DomainA)
	require.Equal(t, 2, got[0].DomainB)
}

func TestProposeCandidatesRejectsOverlappingTemplateRanges(t *testing.T) {
	preds := []DomainPrediction{
		{DomainID: 1, TemplateID: "tX", Probability: 0.9, TemplateRange: resrange.New(ids(1, 50)...)},
		{DomainID: 2, TemplateID: "tX", Probability: 0.9, TemplateRange: resrange.New(ids(10, 60)...)},
	}
	got := ProposeCandidates(preds)
	require.Empty(t, got)
}

func TestProposeCandidatesDropsNonNearBestPredictions(t *testing.T) {
	preds := []DomainPrediction{
		{DomainID: 1, TemplateID: "tX", Probability: 0.95, TemplateRange: resrange.New(ids(1, 50)...)},
		{DomainID: 1, TemplateID: "tY", Probability: 0.50, TemplateRange: resrange.New(ids(1, 50)...)}, // too far below best, excluded
		{DomainID: 2, TemplateID: "tX", Probability: 0.9, TemplateRange: resrange.New(ids(51, 100)...)},
	}
	got := ProposeCandidates(preds)
	require.Len(t, got, 1)
}

func TestCloseComponentsUnionsTransitively(t *testing.T) {
	domains := map[int]resrange.Set{
		1: resrange.New(ids(1, 10)...),
		2: resrange.New(ids(11, 20)...),
		3: resrange.New(ids(21, 30)...),
		4: resrange.New(ids(40, 50)...), // isolated, no judged pair
	}
	judged := []JudgedPair{
		{DomainA: 1, DomainB: 2, Judgment: SequenceConnected},
		{DomainA: 2, DomainB: 3, Judgment: StructureConnected},
	}
	merged := CloseComponents(judged, domains)
	require.Len(t, merged, 2)

	var big, lone *Merged
	for i := range merged {
		if len(merged[i].DomainIDs) == 3 {
			big = &merged[i]
		} else {
			lone = &merged[i]
		}
	}
	require.NotNil(t, big)
	require.NotNil(t, lone)
	require.Equal(t, []int{1, 2, 3}, big.DomainIDs)
	require.Equal(t, 30, big.Residues.Len())
	require.Equal(t, []int{4}, lone.DomainIDs)
}

func TestSequenceConnectedWithinAdjacency(t *testing.T) {
	structured := resrange.New(ids(1, 100)...)
	a := resrange.New(ids(1, 10)...)
	b := resrange.New(ids(13, 20)...) // nearest gap: |10-13| = 3
	require.True(t, sequenceConnected(structured, a, b))
}

func TestSequenceConnectedFalseWhenFar(t *testing.T) {
	structured := resrange.New(ids(1, 100)...)
	a := resrange.New(ids(1, 10)...)
	b := resrange.New(ids(30, 40)...)
	require.False(t, sequenceConnected(structured, a, b))
}
