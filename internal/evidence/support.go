package evidence

import (
	"sort"

	"github.com/sarat-asymmetrica/dpam/internal/hits"
	"github.com/sarat-asymmetrica/dpam/internal/partition"
	"github.com/sarat-asymmetrica/dpam/internal/resrange"
)

// newTemplateResidueFraction is stage 9's forwarding threshold: a hit is
// kept for a domain only if it brings at least this fraction of its
// template residues not already covered by a higher-scoring hit already
// forwarded to that domain. No probability or coverage threshold applies
// here -- that filtering is the classifier's job (spec.md §4.H, stage 9).
const newTemplateResidueFraction = 0.5

// Support is stage 9's per-domain, per-channel forwarding result.
type Support struct {
	DomainID   int
	Sequence   []Scored
	Structural []Scored
}

// GetSupport groups scored hits by the predicted domain they overlap
// (permissive overlap rule, spec.md §4.A) and, within each domain,
// forwards a hit to its channel's support list only if it brings enough
// new template residues relative to what is already covered for that
// domain. Hits are considered in descending channel-score order so that
// the strongest evidence claims template residues first.
func GetSupport(domains []partition.Domain, scored []Scored) []Support {
	out := make([]Support, len(domains))
	for i, d := range domains {
		out[i] = Support{DomainID: d.ID}
		covered := resrange.Set{}

		var candidates []Scored
		for _, s := range scored {
			if resrange.OverlapPermissive(s.QueryResids, d.Residues) {
				candidates = append(candidates, s)
			}
		}
		sort.SliceStable(candidates, func(a, b int) bool { return candidates[a].Score() > candidates[b].Score() })

		for _, s := range candidates {
			newResidues := resrange.Difference(s.TemplateResids, covered)
			total := s.TemplateResids.Len()
			if total == 0 {
				continue
			}
			if float64(newResidues.Len())/float64(total) < newTemplateResidueFraction {
				continue
			}
			covered = resrange.Union(covered, s.TemplateResids)
			if s.Channel == hits.Sequence {
				out[i].Sequence = append(out[i].Sequence, s)
			} else {
				out[i].Structural = append(out[i].Structural, s)
			}
		}
	}
	return out
}
