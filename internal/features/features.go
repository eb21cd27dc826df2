// Package features builds the fixed 13-feature vector the classifier
// consumes for each (domain, template) pair (stage 15), by combining the
// per-hit statistics internal/evidence computed at stage 8 with the SSE
// counts internal/sse assigned at stage 11.
package features

import (
	"sort"
	"strings"

	"github.com/sarat-asymmetrica/dpam/internal/evidence"
	"github.com/sarat-asymmetrica/dpam/internal/hits"
	"github.com/sarat-asymmetrica/dpam/internal/partition"
	"github.com/sarat-asymmetrica/dpam/internal/resrange"
	"github.com/sarat-asymmetrica/dpam/internal/sse"
)

// maxRank is the sentinel "no evidence" rank value used for hh_rank and
// d_rank when a channel has no hit to a template. It sits on the same
// normalized (÷10) scale as a real computed rank, as the single worst-case
// value a real rank could plausibly reach.
const maxRank = 1.0

// Feature is one classifier input row: one (domain, template) pair.
type Feature struct {
	DomainID     int
	DomainRange  string
	TGroup       string
	TemplateID   string
	DomainLength int
	Helices      int
	Strands      int

	HHProb float64
	HHCov  float64
	HHRank float64

	DZ     float64
	DQ     float64
	DZTile float64
	DQTile float64
	DRank  float64

	CDiff float64
	CCov  float64
}

// Vector returns the 13 classifier inputs in the fixed training order.
func (f Feature) Vector() [13]float64 {
	return [13]float64{
		float64(f.Helices), float64(f.Strands),
		f.HHProb, f.HHCov, f.HHRank,
		f.DZ, f.DQ, f.DZTile, f.DQTile, f.DRank,
		f.CDiff, f.CCov,
		float64(f.DomainLength),
	}
}

// Build emits one feature row per template present in either evidence
// channel for domain d, using the permissive overlap rule (spec.md §4.A)
// to select which scored hits belong to this domain.
func Build(d partition.Domain, scored []evidence.Scored, elements []sse.Element) []Feature {
	var candidates []evidence.Scored
	for _, s := range scored {
		if resrange.OverlapPermissive(s.QueryResids, d.Residues) {
			candidates = append(candidates, s)
		}
	}

	bestSeq := bestPerTemplate(candidates, hits.Sequence)
	bestStruct := bestPerTemplate(candidates, hits.Structural)

	templateSet := make(map[string]bool)
	for t := range bestSeq {
		templateSet[t] = true
	}
	for t := range bestStruct {
		templateSet[t] = true
	}
	templates := make([]string, 0, len(templateSet))
	for t := range templateSet {
		templates = append(templates, t)
	}
	sort.Strings(templates)

	helices, strands := sse.CountByType(elements, d.Residues)
	domainRange := resrange.Format(d.Residues)
	hhRank := meanHGroupCount(candidates, d.Residues)

	rows := make([]Feature, 0, len(templates))
	for _, t := range templates {
		seqHit, hasSeq := bestSeq[t]
		structHit, hasStruct := bestStruct[t]

		f := Feature{
			DomainID:     d.ID,
			DomainRange:  domainRange,
			TemplateID:   t,
			DomainLength: d.Residues.Len(),
			Helices:      helices,
			Strands:      strands,
			HHRank:       maxRank,
			DRank:        maxRank,
			DZTile:       10,
			DQTile:       10,
			CDiff:        -1,
			CCov:         0,
		}
		if hasSeq {
			f.HHProb = seqHit.Probability
			f.HHCov = seqHit.Coverage()
			f.HHRank = hhRank
		}
		if hasStruct {
			f.DZ = structHit.ZScore / 10
			f.DQ = structHit.QScore
			f.DZTile = structHit.ZTile
			f.DQTile = structHit.QTile
			f.DRank = structHit.Rank / 10
		}
		if hasSeq && hasStruct {
			f.CDiff, f.CCov = consensus(seqHit, structHit, d.Residues.Len())
		}
		f.TGroup = chooseTGroup(hasStruct, structHit, hasSeq, seqHit)
		rows = append(rows, f)
	}
	return rows
}

func bestPerTemplate(candidates []evidence.Scored, ch hits.Channel) map[string]evidence.Scored {
	best := make(map[string]evidence.Scored)
	for _, c := range candidates {
		if c.Channel != ch {
			continue
		}
		cur, ok := best[c.TemplateID]
		if !ok || c.Score() > cur.Score() {
			best[c.TemplateID] = c
		}
	}
	return best
}

// meanHGroupCount is hh_rank's domain-wide term: the mean, over every
// residue in the domain, of how many distinct h_groups among candidates
// cover that residue, normalized to the same ÷10 scale as a real rank.
func meanHGroupCount(candidates []evidence.Scored, domain resrange.Set) float64 {
	ids := domain.Slice()
	if len(ids) == 0 {
		return maxRank
	}
	var sum int
	for _, q := range ids {
		seen := make(map[string]bool)
		for _, c := range candidates {
			if c.QueryResids.Contains(q) {
				seen[hGroup(c.HPath)] = true
			}
		}
		sum += len(seen)
	}
	return float64(sum) / float64(len(ids)) / 10
}

// consensus computes c_diff/c_cov over the intersection of query residues
// covered by both channels' best hits, mapping each query residue to its
// paired template residue by rank within the (sorted) aligned range.
func consensus(seqHit, structHit evidence.Scored, domainLen int) (cDiff, cCov float64) {
	seqMap := queryToTemplateMap(seqHit)
	structMap := queryToTemplateMap(structHit)

	var sum float64
	var n int
	for q, tq := range seqMap {
		tt, ok := structMap[q]
		if !ok {
			continue
		}
		d := float64(tq - tt)
		if d < 0 {
			d = -d
		}
		sum += d
		n++
	}
	if n == 0 {
		return -1, 0
	}
	if domainLen == 0 {
		return sum / float64(n), 0
	}
	return sum / float64(n), float64(n) / float64(domainLen)
}

func queryToTemplateMap(s evidence.Scored) map[resrange.ResId]resrange.ResId {
	q := s.QueryResids.Slice()
	t := s.TemplateResids.Slice()
	n := len(q)
	if len(t) < n {
		n = len(t)
	}
	out := make(map[resrange.ResId]resrange.ResId, n)
	for i := 0; i < n; i++ {
		out[q[i]] = t[i]
	}
	return out
}

func chooseTGroup(hasStruct bool, structHit evidence.Scored, hasSeq bool, seqHit evidence.Scored) string {
	if hasStruct {
		return tGroup(structHit.HPath)
	}
	if hasSeq {
		return tGroup(seqHit.HPath)
	}
	return ""
}

// tGroup extracts ECOD's t_group (x.h.t, the first three dot-separated
// components) from a hierarchical path "x.h.t.f".
func tGroup(hpath string) string {
	parts := strings.SplitN(hpath, ".", 4)
	if len(parts) < 3 {
		return hpath
	}
	return parts[0] + "." + parts[1] + "." + parts[2]
}

// hGroup extracts the h_group (first two dot-separated components),
// matching internal/evidence's definition for the per-residue support count.
func hGroup(hpath string) string {
	parts := strings.SplitN(hpath, ".", 3)
	if len(parts) < 2 {
		return hpath
	}
	return parts[0] + "." + parts[1]
}
