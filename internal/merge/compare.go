package merge

import (
	"github.com/sarat-asymmetrica/dpam/internal/geomidx"
	"github.com/sarat-asymmetrica/dpam/internal/model"
	"github.com/sarat-asymmetrica/dpam/internal/resrange"
)

// sequenceAdjacency is stage 21's sequence-connectivity threshold: the
// minimum index gap, within the chain's structured-residue order, for two
// domains to be considered sequence-connected.
const sequenceAdjacency = 5

// contactDistanceAngstrom and minContactPairs are stage 21's structural-
// connectivity thresholds.
const (
	contactDistanceAngstrom = 8.0
	minContactPairs         = 9
)

// Judgment is stage 21's per-pair connectivity verdict.
type Judgment int

const (
	NotConnected Judgment = iota
	SequenceConnected
	StructureConnected
)

// Compare implements stage 21 for one candidate pair: sequence connectivity
// is checked first (cheaper, and spec.md lists it first), falling back to
// structural connectivity via a spatial index over the full chain.
func Compare(full *model.Structure, idx *geomidx.Index, structured resrange.Set, a, b resrange.Set) Judgment {
	if sequenceConnected(structured, a, b) {
		return SequenceConnected
	}
	if structurallyConnected(idx, a, b) {
		return StructureConnected
	}
	return NotConnected
}

// sequenceConnected finds the minimum gap, measured in index-within-S
// (the chain's ordered structured-residue list), between any residue of A
// and any residue of B.
func sequenceConnected(structured resrange.Set, a, b resrange.Set) bool {
	order := make(map[resrange.ResId]int)
	for i, id := range structured.Slice() {
		order[id] = i
	}

	minGap := -1
	for _, x := range a.Slice() {
		ix, ok := order[x]
		if !ok {
			continue
		}
		for _, y := range b.Slice() {
			iy, ok := order[y]
			if !ok {
				continue
			}
			gap := ix - iy
			if gap < 0 {
				gap = -gap
			}
			if minGap == -1 || gap < minGap {
				minGap = gap
			}
		}
	}
	return minGap != -1 && minGap <= sequenceAdjacency
}

func structurallyConnected(idx *geomidx.Index, a, b resrange.Set) bool {
	return geomidx.ContactCount(idx, a.Slice(), b.Slice(), contactDistanceAngstrom) >= minContactPairs
}
