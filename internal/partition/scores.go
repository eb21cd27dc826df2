package partition

import (
	"math"

	"github.com/sarat-asymmetrica/dpam/internal/hits"
	"github.com/sarat-asymmetrica/dpam/internal/model"
	"github.com/sarat-asymmetrica/dpam/internal/resrange"
)

// matrix is a dense symmetric N x N table indexed by 0-based offset from
// residue id 1 (i.e. matrix.at(i,j) corresponds to residues i+1, j+1).
type matrix struct {
	n     int
	best  [][]float64
	count [][]int
}

func newMatrix(n int) *matrix {
	m := &matrix{n: n, best: make([][]float64, n), count: make([][]int, n)}
	for i := range m.best {
		m.best[i] = make([]float64, n)
		m.count[i] = make([]int, n)
	}
	return m
}

func (m *matrix) observe(i, j int, score float64) {
	if score > m.best[i][j] {
		m.best[i][j] = score
	}
	m.count[i][j]++
}

// buildHitMatrix folds a set of hits into a best-score + multiplicity
// matrix over every residue pair each hit's query_resids covers.
func buildHitMatrix(n int, hitSet []hits.Hit, score func(hits.Hit) float64) *matrix {
	m := newMatrix(n)
	for _, h := range hitSet {
		ids := h.QueryResids.Slice()
		s := score(h)
		for a := 0; a < len(ids); a++ {
			i := int(ids[a]) - 1
			if i < 0 || i >= n {
				continue
			}
			for b := a + 1; b < len(ids); b++ {
				j := int(ids[b]) - 1
				if j < 0 || j >= n {
					continue
				}
				if i == j {
					continue
				}
				lo, hi := i, j
				if lo > hi {
					lo, hi = hi, lo
				}
				m.observe(lo, hi, s)
			}
		}
	}
	return m
}

// hhScoreAt returns the combined sequence-evidence score for residue pair
// (i,j): best covering hit's probability plus a multiplicity bonus of
// min(10k-10, 100), or the spec's default of 20 when no hit covers both.
func hhScoreAt(m *matrix, i, j int) float64 {
	k := m.count[i][j]
	if k == 0 {
		return 20
	}
	bonus := 10*k - 10
	if bonus > 100 {
		bonus = 100
	}
	return m.best[i][j] + float64(bonus)
}

// daliScoreAt returns the combined structural-evidence score for residue
// pair (i,j): best covering hit's z-score plus a multiplicity bonus of
// min(k-1, 5), or the spec's default of 1 when no hit covers both.
func daliScoreAt(m *matrix, i, j int) float64 {
	k := m.count[i][j]
	if k == 0 {
		return 1
	}
	bonus := k - 1
	if bonus > 5 {
		bonus = 5
	}
	return m.best[i][j] + float64(bonus)
}

// Scores holds the per-pair HH, DALI, and distance matrices and the
// combined probability matrix P derived from them, all N x N over the
// chain's full residue range (0-based offset from residue 1).
type Scores struct {
	N   int
	HH  [][]float64
	DAL [][]float64
	Dst [][]float64
	P   [][]float64
}

// BuildScores computes every per-pair matrix for a chain given its
// structure (for Cα distance and PAE) and the sequence/structural hit
// sets that survived stage 10's filtering.
func BuildScores(s *model.Structure, sequenceHits, structuralHits []hits.Hit) *Scores {
	n := s.N()
	hhRaw := buildHitMatrix(n, sequenceHits, func(h hits.Hit) float64 { return h.Probability })
	dalRaw := buildHitMatrix(n, structuralHits, func(h hits.Hit) float64 { return h.ZScore })

	sc := &Scores{
		N:   n,
		HH:  make([][]float64, n),
		DAL: make([][]float64, n),
		Dst: make([][]float64, n),
		P:   make([][]float64, n),
	}
	for i := 0; i < n; i++ {
		sc.HH[i] = make([]float64, n)
		sc.DAL[i] = make([]float64, n)
		sc.Dst[i] = make([]float64, n)
		sc.P[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			lo, hi := i, j
			if lo > hi {
				lo, hi = hi, lo
			}
			hh := hhScoreAt(hhRaw, lo, hi)
			dal := daliScoreAt(dalRaw, lo, hi)
			dist := s.Distance(resrange.ResId(i+1), resrange.ResId(j+1))
			pae := s.PAEAt(resrange.ResId(i+1), resrange.ResId(j+1))

			sc.HH[i][j] = hh
			sc.DAL[i][j] = dal
			sc.Dst[i][j] = dist
			sc.P[i][j] = combinedProbability(dist, pae, hh, dal)
		}
	}
	return sc
}

// combinedProbability implements P[i,j] = p_dist^0.1 * p_pae^0.1 *
// p_hh^0.4 * p_dali^0.4 (spec.md §4.J.4): homology and structural
// alignment are the dominant signals, distance and PAE contribute less.
func combinedProbability(dist, pae, hh, dal float64) float64 {
	return math.Pow(pDist(dist), 0.1) * math.Pow(pPAE(pae), 0.1) * math.Pow(pHH(hh), 0.4) * math.Pow(pDali(dal), 0.4)
}
