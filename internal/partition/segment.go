package partition

import "github.com/sarat-asymmetrica/dpam/internal/resrange"

// segmentWidth is the fixed window width used to build initial segments
// (spec.md §4.J.5).
const segmentWidth = 5

// minOrderedInSegment is the minimum number of non-disordered residues a
// 5-wide window must retain to survive as a segment.
const minOrderedInSegment = 3

// Segment is one of the disjoint windows segmentation produces: its id is
// its index in submission order (used for the deterministic tie-break when
// sorting segment pairs), and Residues holds only the ordered (non-
// disordered) members of its window.
type Segment struct {
	ID       int
	Residues resrange.Set
}

// BuildSegments slides a disjoint 5-wide window over [1,n], dropping
// disordered residues from each window and discarding windows that retain
// fewer than 3 ordered residues.
func BuildSegments(n int, disordered resrange.Set) []Segment {
	var segs []Segment
	id := 0
	for start := 1; start <= n; start += segmentWidth {
		end := start + segmentWidth - 1
		if end > n {
			end = n
		}
		var ids []resrange.ResId
		for r := start; r <= end; r++ {
			rid := resrange.ResId(r)
			if !disordered.Contains(rid) {
				ids = append(ids, rid)
			}
		}
		if len(ids) < minOrderedInSegment {
			continue
		}
		segs = append(segs, Segment{ID: id, Residues: resrange.New(ids...)})
		id++
	}
	return segs
}
