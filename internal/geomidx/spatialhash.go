// Package geomidx provides a 3D uniform-grid spatial index over a
// structure's Cα atoms, used for structural contact and connectivity
// queries (stage 13's distance term, stage 21's structural merge test).
package geomidx

import (
	"github.com/sarat-asymmetrica/dpam/internal/model"
	"github.com/sarat-asymmetrica/dpam/internal/resrange"
)

// cellKey identifies one grid cell by integer coordinate.
type cellKey struct {
	x, y, z int
}

// atomEntry is one atom's position plus the residue it belongs to, bucketed
// for the all-atom contact test ContactCount needs (spec.md §4.O.21: a
// contact is a minimum inter-atomic distance over ALL atoms, not just Cα).
type atomEntry struct {
	pos   [3]float64
	resID resrange.ResId
}

// Index buckets a structure's atoms into fixed-size 3D cells so that
// neighbor queries only need to visit a handful of nearby buckets instead
// of scanning every residue or atom. It keeps two views: a Cα-only view
// (Neighbors/WithinRadius, residue-granularity proximity) and an all-atom
// view (ContactCount's per-atom contact test).
type Index struct {
	cellSize float64
	buckets  map[cellKey][]resrange.ResId
	pos      map[resrange.ResId][3]float64

	atomBuckets    map[cellKey][]atomEntry
	atomsByResidue map[resrange.ResId][][3]float64
}

// Build constructs an Index over every structured residue's Cα atom, plus
// every atom in the structure (backbone and side chain) for the all-atom
// contact test. cellSize should be at or above the contact radius the
// caller will query with (8 Å works well for the 8 Å contact threshold
// used elsewhere).
func Build(s *model.Structure, cellSize float64) *Index {
	idx := &Index{
		cellSize:       cellSize,
		buckets:        make(map[cellKey][]resrange.ResId),
		pos:            make(map[resrange.ResId][3]float64),
		atomBuckets:    make(map[cellKey][]atomEntry),
		atomsByResidue: make(map[resrange.ResId][][3]float64),
	}
	for _, r := range s.Residues {
		if !r.Structured() {
			continue
		}
		p := [3]float64{r.CA.X, r.CA.Y, r.CA.Z}
		idx.pos[r.ResId] = p
		key := idx.cellOf(p)
		idx.buckets[key] = append(idx.buckets[key], r.ResId)
	}
	for _, a := range s.Atoms {
		p := [3]float64{a.X, a.Y, a.Z}
		key := idx.cellOf(p)
		idx.atomBuckets[key] = append(idx.atomBuckets[key], atomEntry{pos: p, resID: a.ResId})
		idx.atomsByResidue[a.ResId] = append(idx.atomsByResidue[a.ResId], p)
	}
	return idx
}

func (idx *Index) cellOf(p [3]float64) cellKey {
	return cellKey{
		x: floorDiv(p[0], idx.cellSize),
		y: floorDiv(p[1], idx.cellSize),
		z: floorDiv(p[2], idx.cellSize),
	}
}

func floorDiv(v, size float64) int {
	q := v / size
	i := int(q)
	if q < 0 && float64(i) != q {
		i--
	}
	return i
}

// Neighbors returns every residue whose Cα lies within radius of resID's
// Cα, excluding resID itself. Returns (nil, false) if resID has no
// structured Cα in the index.
func (idx *Index) Neighbors(resID resrange.ResId, radius float64) ([]resrange.ResId, bool) {
	center, ok := idx.pos[resID]
	if !ok {
		return nil, false
	}
	radiusSq := radius * radius
	reach := int(radius/idx.cellSize) + 1

	centerCell := idx.cellOf(center)
	var out []resrange.ResId
	for dx := -reach; dx <= reach; dx++ {
		for dy := -reach; dy <= reach; dy++ {
			for dz := -reach; dz <= reach; dz++ {
				key := cellKey{centerCell.x + dx, centerCell.y + dy, centerCell.z + dz}
				for _, candidate := range idx.buckets[key] {
					if candidate == resID {
						continue
					}
					p := idx.pos[candidate]
					if distSq(center, p) <= radiusSq {
						out = append(out, candidate)
					}
				}
			}
		}
	}
	return out, true
}

// WithinRadius reports whether two residues' Cα atoms lie within radius
// of each other. Returns false if either residue is absent from the
// index (disordered / missing backbone atom).
func (idx *Index) WithinRadius(a, b resrange.ResId, radius float64) bool {
	pa, ok := idx.pos[a]
	if !ok {
		return false
	}
	pb, ok := idx.pos[b]
	if !ok {
		return false
	}
	return distSq(pa, pb) <= radius*radius
}

func distSq(a, b [3]float64) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	dz := a[2] - b[2]
	return dx*dx + dy*dy + dz*dz
}

// ContactCount returns the number of distinct residue pairs (ra in a, rb in
// b) whose minimum inter-atomic distance -- over every atom of ra and every
// atom of rb, not just their Cα atoms -- is within radius. This is spec.md
// §4.O.21's structural contact count: each qualifying (ra, rb) pair
// contributes exactly one to the total, however many atom pairs between
// them happen to be in range.
func ContactCount(idx *Index, a, b []resrange.ResId, radius float64) int {
	bSet := make(map[resrange.ResId]bool, len(b))
	for _, r := range b {
		bSet[r] = true
	}
	radiusSq := radius * radius
	reach := int(radius/idx.cellSize) + 1

	count := 0
	for _, ra := range a {
		contacted := make(map[resrange.ResId]bool)
		for _, p := range idx.atomsByResidue[ra] {
			cell := idx.cellOf(p)
			for dx := -reach; dx <= reach; dx++ {
				for dy := -reach; dy <= reach; dy++ {
					for dz := -reach; dz <= reach; dz++ {
						key := cellKey{cell.x + dx, cell.y + dy, cell.z + dz}
						for _, cand := range idx.atomBuckets[key] {
							if contacted[cand.resID] || !bSet[cand.resID] {
								continue
							}
							if distSq(p, cand.pos) <= radiusSq {
								contacted[cand.resID] = true
							}
						}
					}
				}
			}
		}
		count += len(contacted)
	}
	return count
}
