// Package resrange implements residue-range algebra: parsing and formatting
// of canonical range strings, set operations over residue ids, and the
// gap-tolerant segmentation used by the iterative alignment engine.
package resrange

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ResId is a 1-based residue identifier matching the input coordinate
// numbering.
type ResId int

// Empty is the canonical textual form of an empty set.
const Empty = "na"

// Set is an unordered set of residue ids. The zero value is the empty set.
// Internally the ids are kept sorted and deduplicated so that Format,
// Slice, and iteration are deterministic without re-sorting on every call.
type Set struct {
	ids []ResId
}

// New builds a Set from arbitrary (possibly unsorted, possibly duplicate) ids.
func New(ids ...ResId) Set {
	s := Set{ids: append([]ResId(nil), ids...)}
	s.normalize()
	return s
}

func (s *Set) normalize() {
	sort.Slice(s.ids, func(i, j int) bool { return s.ids[i] < s.ids[j] })
	out := s.ids[:0]
	var prev ResId
	first := true
	for _, id := range s.ids {
		if first || id != prev {
			out = append(out, id)
		}
		prev = id
		first = false
	}
	s.ids = out
}

// Len returns the number of residues in the set.
func (s Set) Len() int { return len(s.ids) }

// Slice returns the sorted residue ids. The returned slice must not be mutated.
func (s Set) Slice() []ResId { return s.ids }

// Contains reports whether id is a member of s.
func (s Set) Contains(id ResId) bool {
	i := sort.Search(len(s.ids), func(i int) bool { return s.ids[i] >= id })
	return i < len(s.ids) && s.ids[i] == id
}

// Parse reads a canonical range string ("1-50,60-100" or "na") into a Set.
// It rejects malformed input and non-monotonic or overlapping segments.
func Parse(str string) (Set, error) {
	str = strings.TrimSpace(str)
	if str == "" || str == Empty {
		return Set{}, nil
	}
	segs := strings.Split(str, ",")
	ids := make([]ResId, 0, len(segs)*2)
	lastEnd := -1
	for _, seg := range segs {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			return Set{}, fmt.Errorf("resrange: empty segment in %q", str)
		}
		parts := strings.SplitN(seg, "-", 2)
		var a, b int
		var err error
		if len(parts) == 1 {
			a, err = strconv.Atoi(parts[0])
			if err != nil {
				return Set{}, fmt.Errorf("resrange: bad segment %q: %w", seg, err)
			}
			b = a
		} else {
			a, err = strconv.Atoi(parts[0])
			if err != nil {
				return Set{}, fmt.Errorf("resrange: bad segment %q: %w", seg, err)
			}
			b, err = strconv.Atoi(parts[1])
			if err != nil {
				return Set{}, fmt.Errorf("resrange: bad segment %q: %w", seg, err)
			}
		}
		if a > b {
			return Set{}, fmt.Errorf("resrange: segment %q has a>b", seg)
		}
		if a <= lastEnd {
			return Set{}, fmt.Errorf("resrange: segment %q not strictly increasing after previous end %d", seg, lastEnd)
		}
		for id := a; id <= b; id++ {
			ids = append(ids, ResId(id))
		}
		lastEnd = b
	}
	return Set{ids: ids}, nil
}

// Format renders s in canonical "a-b,c-d" form, or "na" when empty.
func Format(s Set) string {
	if len(s.ids) == 0 {
		return Empty
	}
	var b strings.Builder
	start := s.ids[0]
	prev := s.ids[0]
	first := true
	flush := func(end ResId) {
		if !first {
			b.WriteByte(',')
		}
		first = false
		if start == end {
			fmt.Fprintf(&b, "%d", start)
		} else {
			fmt.Fprintf(&b, "%d-%d", start, end)
		}
	}
	for _, id := range s.ids[1:] {
		if id == prev+1 {
			prev = id
			continue
		}
		flush(prev)
		start = id
		prev = id
	}
	flush(prev)
	return b.String()
}

// Union returns the union of a and b.
func Union(a, b Set) Set {
	out := make([]ResId, 0, len(a.ids)+len(b.ids))
	out = append(out, a.ids...)
	out = append(out, b.ids...)
	s := Set{ids: out}
	s.normalize()
	return s
}

// Intersect returns the intersection of a and b.
func Intersect(a, b Set) Set {
	out := make([]ResId, 0, min(len(a.ids), len(b.ids)))
	i, j := 0, 0
	for i < len(a.ids) && j < len(b.ids) {
		switch {
		case a.ids[i] == b.ids[j]:
			out = append(out, a.ids[i])
			i++
			j++
		case a.ids[i] < b.ids[j]:
			i++
		default:
			j++
		}
	}
	return Set{ids: out}
}

// Difference returns the residues in a that are not in b.
func Difference(a, b Set) Set {
	out := make([]ResId, 0, len(a.ids))
	i, j := 0, 0
	for i < len(a.ids) {
		if j >= len(b.ids) || a.ids[i] < b.ids[j] {
			out = append(out, a.ids[i])
			i++
		} else if a.ids[i] == b.ids[j] {
			i++
			j++
		} else {
			j++
		}
	}
	return Set{ids: out}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Tolerance is the minimum gap tolerance used by SegmentsWithTolerance when
// called from the stage 7 alignment loop: max(5, floor(0.05*|set|)).
func Tolerance(n int) int {
	t := n * 5 / 100
	if t < 5 {
		return 5
	}
	return t
}

// SegmentsWithTolerance splits s into maximal runs where consecutive
// elements differ by at most tol, returning one Set per run (each run's
// members filled in contiguously between its min and max, i.e. gaps of at
// most tol are closed). This matches stage 7's use: the aligned range is the
// tolerant hull of the matched residues, not just the matched residues
// themselves.
func SegmentsWithTolerance(s Set, tol int) []Set {
	if len(s.ids) == 0 {
		return nil
	}
	if tol < 0 {
		tol = 0
	}
	var segs []Set
	runStart := s.ids[0]
	prev := s.ids[0]
	flush := func(end ResId) {
		ids := make([]ResId, 0, int(end-runStart)+1)
		for id := runStart; id <= end; id++ {
			ids = append(ids, id)
		}
		segs = append(segs, Set{ids: ids})
	}
	for _, id := range s.ids[1:] {
		if int(id-prev) <= tol {
			prev = id
			continue
		}
		flush(prev)
		runStart = id
		prev = id
	}
	flush(prev)
	return segs
}

// HullSet returns the union of all residues covered by SegmentsWithTolerance,
// i.e. s with internal gaps of at most tol closed.
func HullSet(s Set, tol int) Set {
	segs := SegmentsWithTolerance(s, tol)
	out := Set{}
	for _, seg := range segs {
		out = Union(out, seg)
	}
	return out
}

// OverlapPermissive implements the stage 15 overlap rule: |A∩B| >= 0.5*|A|
// or |A∩B| >= 0.5*|B|. Empty sets never overlap.
func OverlapPermissive(a, b Set) bool {
	if a.Len() == 0 || b.Len() == 0 {
		return false
	}
	inter := Intersect(a, b).Len()
	return float64(inter) >= 0.5*float64(a.Len()) || float64(inter) >= 0.5*float64(b.Len())
}

// OverlapStrict implements the stage 18 overlap rule: first require
// |A∩B| >= 0.33*|A|, then require the permissive rule above.
func OverlapStrict(a, b Set) bool {
	if a.Len() == 0 || b.Len() == 0 {
		return false
	}
	inter := Intersect(a, b).Len()
	if float64(inter) < 0.33*float64(a.Len()) {
		return false
	}
	return float64(inter) >= 0.5*float64(a.Len()) || float64(inter) >= 0.5*float64(b.Len())
}
