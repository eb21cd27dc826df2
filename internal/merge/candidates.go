// Package merge implements stages 19-22: proposing candidate domain merges,
// extracting per-domain coordinates, judging connectivity, and closing the
// judged pairs into merged entities via connected components.
package merge

import "github.com/sarat-asymmetrica/dpam/internal/resrange"

// nearBestMargin is stage 19's "within 0.1 of its best" filter: a domain's
// predictions more than this far below its own best probability are
// excluded from merge consideration.
const nearBestMargin = 0.1

// maxTemplateOverlapFraction is stage 19's "overlap by <25%" requirement,
// checked in both directions.
const maxTemplateOverlapFraction = 0.25

// opposingProbability is the confidence floor a domain's hit to some other
// template must clear to count as evidence the domain already fits well on
// its own (an "opposing" template, spec.md §4.O.19).
const opposingProbability = 0.85

// DomainPrediction is one confident (domain, template) assignment together
// with its stage-18 mapped template range, as consumed by candidate
// proposal.
type DomainPrediction struct {
	DomainID      int
	TemplateID    string
	Probability   float64
	TemplateRange resrange.Set
}

// CandidatePair is a proposed merge between two domains.
type CandidatePair struct {
	DomainA, DomainB int
}

// ProposeCandidates implements stage 19: for every template hit by two or
// more domains (after each domain is restricted to its near-best
// predictions), with template ranges that don't substantially overlap,
// count supporting vs. opposing templates per domain and propose the merge
// if support wins out on at least one side.
func ProposeCandidates(preds []DomainPrediction) []CandidatePair {
	nearBest := filterNearBest(preds)
	byTemplate := groupByTemplate(nearBest)
	byDomain := groupByDomain(nearBest)

	seen := make(map[[2]int]bool)
	var out []CandidatePair
	for _, group := range byTemplate {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				a, b := group[i], group[j]
				if a.DomainID == b.DomainID {
					continue
				}
				if !rangesDisjointEnough(a.TemplateRange, b.TemplateRange) {
					continue
				}
				key := pairKey(a.DomainID, b.DomainID)
				if seen[key] {
					continue
				}
				seen[key] = true

				// The shared, disjointly-covered template that qualified this
				// pair as a candidate is itself one piece of supporting
				// evidence for both sides; additional templates each domain
				// separately co-hits (or doesn't) add to the tally.
				supportA, opposeA := supportOppose(a.DomainID, b.TemplateID, byDomain[a.DomainID], byTemplate)
				supportB, opposeB := supportOppose(b.DomainID, a.TemplateID, byDomain[b.DomainID], byTemplate)
				supportA++
				supportB++
				if supportA > opposeA || supportB > opposeB {
					out = append(out, CandidatePair{DomainA: key[0], DomainB: key[1]})
				}
			}
		}
	}
	return out
}

func filterNearBest(preds []DomainPrediction) []DomainPrediction {
	best := make(map[int]float64)
	for _, p := range preds {
		if p.Probability > best[p.DomainID] {
			best[p.DomainID] = p.Probability
		}
	}
	var out []DomainPrediction
	for _, p := range preds {
		if p.Probability >= best[p.DomainID]-nearBestMargin {
			out = append(out, p)
		}
	}
	return out
}

func groupByTemplate(preds []DomainPrediction) map[string][]DomainPrediction {
	m := make(map[string][]DomainPrediction)
	for _, p := range preds {
		m[p.TemplateID] = append(m[p.TemplateID], p)
	}
	return m
}

func groupByDomain(preds []DomainPrediction) map[int][]DomainPrediction {
	m := make(map[int][]DomainPrediction)
	for _, p := range preds {
		m[p.DomainID] = append(m[p.DomainID], p)
	}
	return m
}

// rangesDisjointEnough checks the <25%-overlap-each-side requirement.
func rangesDisjointEnough(a, b resrange.Set) bool {
	if a.Len() == 0 || b.Len() == 0 {
		return true
	}
	inter := resrange.Intersect(a, b).Len()
	return float64(inter)/float64(a.Len()) < maxTemplateOverlapFraction &&
		float64(inter)/float64(b.Len()) < maxTemplateOverlapFraction
}

// supportOppose counts, for domain d considering a merge anchored on
// sharedTemplate, how many of its other near-best templates are also
// co-hit (with disjoint ranges) by some other domain on that template
// (supporting: the two domains plausibly tile distinct parts of the same
// fold elsewhere too) versus how many are high-confidence hits unique to
// this domain (opposing: evidence the domain already stands on its own).
func supportOppose(d int, sharedTemplate string, domainPreds []DomainPrediction, byTemplate map[string][]DomainPrediction) (support, oppose int) {
	for _, p := range domainPreds {
		if p.TemplateID == sharedTemplate {
			continue
		}
		group := byTemplate[p.TemplateID]
		coHit := false
		for _, other := range group {
			if other.DomainID != d && rangesDisjointEnough(p.TemplateRange, other.TemplateRange) {
				coHit = true
				break
			}
		}
		if coHit {
			support++
		} else if p.Probability >= opposingProbability {
			oppose++
		}
	}
	return support, oppose
}

func pairKey(a, b int) [2]int {
	if a < b {
		return [2]int{a, b}
	}
	return [2]int{b, a}
}
