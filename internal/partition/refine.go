package partition

import (
	"sort"

	"github.com/sarat-asymmetrica/dpam/internal/resrange"
)

// gapFillMax, minKeptSegmentLen, minKeptTotal, and minDomainLen implement
// spec.md §4.J.8-10's refinement thresholds.
const (
	gapFillMax        = 10
	minKeptSegmentLen = 15
	minKeptTotal      = 20
	minDomainLen      = 25
)

// Domain is one final, numbered structural domain.
type Domain struct {
	ID       int
	Residues resrange.Set
}

// GapFill absorbs any internal gap of at most gapFillMax residues into a
// cluster's residue set (spec.md §4.J.8).
func GapFill(c *cluster) resrange.Set {
	ids := c.residues.Slice()
	if len(ids) == 0 {
		return c.residues
	}
	filled := append([]resrange.ResId(nil), ids...)
	for i := 1; i < len(ids); i++ {
		gap := int(ids[i]) - int(ids[i-1]) - 1
		if gap > 0 && gap <= gapFillMax {
			for r := ids[i-1] + 1; r < ids[i]; r++ {
				filled = append(filled, r)
			}
		}
	}
	return resrange.New(filled...)
}

// ResolveOverlap splits every cluster's residues so that residues claimed
// by more than one cluster are removed, keeps only the surviving maximal
// segments of length >= minKeptSegmentLen, and drops any cluster whose
// total retained residues fall below minKeptTotal (spec.md §4.J.9).
func ResolveOverlap(filled []resrange.Set) []resrange.Set {
	claims := make(map[resrange.ResId]int)
	for _, s := range filled {
		for _, id := range s.Slice() {
			claims[id]++
		}
	}

	out := make([]resrange.Set, 0, len(filled))
	for _, s := range filled {
		var unique []resrange.ResId
		for _, id := range s.Slice() {
			if claims[id] == 1 {
				unique = append(unique, id)
			}
		}
		kept := keepLongSegments(unique, minKeptSegmentLen)
		if kept.Len() < minKeptTotal {
			continue
		}
		out = append(out, kept)
	}
	return out
}

// keepLongSegments splits a sorted-by-construction residue list into
// maximal contiguous runs and keeps only runs of at least minLen.
func keepLongSegments(sortedIDs []resrange.ResId, minLen int) resrange.Set {
	if len(sortedIDs) == 0 {
		return resrange.Set{}
	}
	set := resrange.New(sortedIDs...)
	var kept []resrange.ResId
	runStart := 0
	ids := set.Slice()
	flush := func(end int) {
		if end-runStart+1 >= minLen {
			kept = append(kept, ids[runStart:end+1]...)
		}
	}
	for i := 1; i < len(ids); i++ {
		if int(ids[i]-ids[i-1]) == 1 {
			continue
		}
		flush(i - 1)
		runStart = i
	}
	flush(len(ids) - 1)
	return resrange.New(kept...)
}

// LengthFilter drops any candidate domain with fewer than minDomainLen
// residues (spec.md §4.J.10).
func LengthFilter(sets []resrange.Set) []resrange.Set {
	out := make([]resrange.Set, 0, len(sets))
	for _, s := range sets {
		if s.Len() >= minDomainLen {
			out = append(out, s)
		}
	}
	return out
}

// Number sorts surviving domains by mean residue index and assigns stable
// D1, D2, ... ids (spec.md §4.J.11).
func Number(sets []resrange.Set) []Domain {
	type scored struct {
		set  resrange.Set
		mean float64
	}
	scoredSets := make([]scored, len(sets))
	for i, s := range sets {
		var sum int
		for _, id := range s.Slice() {
			sum += int(id)
		}
		mean := 0.0
		if s.Len() > 0 {
			mean = float64(sum) / float64(s.Len())
		}
		scoredSets[i] = scored{set: s, mean: mean}
	}
	sort.Slice(scoredSets, func(i, j int) bool { return scoredSets[i].mean < scoredSets[j].mean })

	out := make([]Domain, len(scoredSets))
	for i, s := range scoredSets {
		out[i] = Domain{ID: i + 1, Residues: s.set}
	}
	return out
}
