// Package evidence implements stage 8's per-hit scoring (position-weight
// coverage, historical z/q percentile, and the running template-rank
// statistic), stage 9's support selection, and stage 10's unified
// goodDomains row format.
package evidence

import (
	"sort"
	"strings"

	"github.com/sarat-asymmetrica/dpam/internal/hits"
	"github.com/sarat-asymmetrica/dpam/internal/refdata"
	"github.com/sarat-asymmetrica/dpam/internal/resrange"
)

// Scored wraps a parsed hit with stage 8's derived per-hit statistics.
type Scored struct {
	hits.Hit
	QScore        float64 // position-weight coverage, -1 if weights absent
	ZTile         float64 // historical z-score percentile, -1 if no history
	QTile         float64 // historical q-score (probability) percentile, -1 if no history
	Rank          float64 // mean |positions -> h_groups seen so far|, in descending-score order
	QueryRange    string
	TemplateRange string
}

// ScoreHits computes stage 8's per-hit statistics for every hit in all.
// ref may be nil (no reference data available); q_score, z_tile, and
// q_tile then default to -1 for every hit, per the "absent" fallback.
func ScoreHits(all []hits.Hit, ref *refdata.Store) []Scored {
	scored := make([]Scored, len(all))
	for i, h := range all {
		s := Scored{
			Hit:           h,
			QScore:        -1,
			ZTile:         -1,
			QTile:         -1,
			QueryRange:    resrange.Format(h.QueryResids),
			TemplateRange: resrange.Format(h.TemplateResids),
		}
		if ref != nil {
			s.QScore = qScore(h, ref)
			if zt, err := ref.ZPercentile(h.TemplateID, h.ZScore); err == nil {
				s.ZTile = zt
			}
			if qt, err := ref.QPercentile(h.TemplateID, h.Probability); err == nil {
				s.QTile = qt
			}
		}
		scored[i] = s
	}
	assignRank(scored)
	return scored
}

// qScore computes Σ weight[t_res] / Σ all weights over the template's full
// length, where an unlisted position defaults to weight 1.0 (spec.md
// §4.D). If the template has no weight file at all, q_score is -1.
func qScore(h hits.Hit, ref *refdata.Store) float64 {
	weights, err := ref.PositionWeights(h.TemplateID)
	if err != nil || len(weights) == 0 || h.TemplateLength <= 0 {
		return -1
	}
	var sumAll float64
	for pos := 1; pos <= h.TemplateLength; pos++ {
		if w, ok := weights[pos]; ok {
			sumAll += w
		} else {
			sumAll += 1.0
		}
	}
	if sumAll == 0 {
		return -1
	}
	var sumHit float64
	for _, t := range h.TemplateResids.Slice() {
		if w, ok := weights[int(t)]; ok {
			sumHit += w
		} else {
			sumHit += 1.0
		}
	}
	return sumHit / sumAll
}

// assignRank implements stage 8's running rank statistic: hits are
// processed in descending channel-appropriate score order, and a per-query-
// position set of h_groups-seen-so-far is maintained; a hit's rank is the
// mean, over its own covered positions, of how large that set has grown
// (including this hit's own h_group).
func assignRank(scored []Scored) {
	order := make([]int, len(scored))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scored[order[i]].Score() > scored[order[j]].Score()
	})

	seen := make(map[resrange.ResId]map[string]bool)
	for _, idx := range order {
		h := scored[idx]
		hg := hGroup(h.HPath)
		ids := h.QueryResids.Slice()
		if len(ids) == 0 {
			continue
		}
		var sum int
		for _, pos := range ids {
			set, ok := seen[pos]
			if !ok {
				set = make(map[string]bool)
				seen[pos] = set
			}
			set[hg] = true
			sum += len(set)
		}
		scored[idx].Rank = float64(sum) / float64(len(ids))
	}
}

// hGroup extracts the h_group (first two dot-separated components) from an
// ECOD hierarchical path "x.h.t.f". Returns the whole path if it has fewer
// than two components (template has no known classification yet).
func hGroup(hpath string) string {
	parts := strings.SplitN(hpath, ".", 3)
	if len(parts) < 2 {
		return hpath
	}
	return parts[0] + "." + parts[1]
}
