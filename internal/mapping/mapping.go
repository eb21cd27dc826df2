// Package mapping implements stage 18: for each confident (domain,
// template) pair, locate the originating hit and emit the query/template
// ranges restricted to residues actually inside the domain.
package mapping

import (
	"github.com/sarat-asymmetrica/dpam/internal/evidence"
	"github.com/sarat-asymmetrica/dpam/internal/partition"
	"github.com/sarat-asymmetrica/dpam/internal/resrange"
)

// naRange is emitted when a domain has no hit to a template in a given
// evidence channel.
const naRange = "na"

// Mapped is one confident (domain, template) pair's range mapping.
type Mapped struct {
	DomainID      int
	TemplateID    string
	QueryRange    string
	TemplateRange string
}

// Map finds, for each (domainID, templateID) pair, the scored hit that
// strictly overlaps (spec.md §4.A strict rule) the domain's residues, and
// restricts its query/template ranges to residues actually inside the
// domain. Absent channel (no strictly-overlapping hit) yields "na" for both
// ranges.
func Map(domains map[int]partition.Domain, scored []evidence.Scored, pairs []Pair) []Mapped {
	out := make([]Mapped, 0, len(pairs))
	for _, p := range pairs {
		d, ok := domains[p.DomainID]
		m := Mapped{DomainID: p.DomainID, TemplateID: p.TemplateID, QueryRange: naRange, TemplateRange: naRange}
		if !ok {
			out = append(out, m)
			continue
		}
		if best, found := bestStrictHit(scored, p.TemplateID, d.Residues); found {
			m.QueryRange = resrange.Format(resrange.Intersect(best.QueryResids, d.Residues))
			m.TemplateRange = resrange.Format(mappedTemplateRange(best, d.Residues))
		}
		out = append(out, m)
	}
	return out
}

// Pair is a confident (domain, template) assignment stage 17 produced.
type Pair struct {
	DomainID   int
	TemplateID string
}

func bestStrictHit(scored []evidence.Scored, templateID string, domain resrange.Set) (evidence.Scored, bool) {
	var best evidence.Scored
	var found bool
	for _, s := range scored {
		if s.TemplateID != templateID {
			continue
		}
		if !resrange.OverlapStrict(s.QueryResids, domain) {
			continue
		}
		if !found || s.Score() > best.Score() {
			best = s
			found = true
		}
	}
	return best, found
}

// mappedTemplateRange restricts a hit's template residues to the subset
// paired with query residues inside the domain, by rank-correspondence
// within the hit's sorted query/template residue lists (the same
// alignment-order assumption used by internal/features' consensus mapping).
func mappedTemplateRange(h evidence.Scored, domain resrange.Set) resrange.Set {
	q := h.QueryResids.Slice()
	t := h.TemplateResids.Slice()
	n := len(q)
	if len(t) < n {
		n = len(t)
	}
	var kept []resrange.ResId
	for i := 0; i < n; i++ {
		if domain.Contains(q[i]) {
			kept = append(kept, t[i])
		}
	}
	return resrange.New(kept...)
}
