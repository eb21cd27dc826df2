// Package final implements stages 23-24: ranking a merged domain's
// candidate template assignments into a single full/part/miss
// classification, then refining that into a final label using the domain's
// recounted secondary-structure element count.
package final

// classifierProbFloor, fullWeightedCov, fullLengthCov, and partCovFloor
// are stage 23's classification thresholds (spec.md §4.P).
const (
	classifierProbFloor = 0.85
	fullWeightedCov      = 0.66
	fullLengthCov        = 0.33
	partCovFloor         = 0.33
)

// Class is stage 23's coverage classification.
type Class int

const (
	Miss Class = iota
	Part
	Full
)

func (c Class) String() string {
	switch c {
	case Full:
		return "full"
	case Part:
		return "part"
	default:
		return "miss"
	}
}

// Candidate is one (merged domain, template) assignment under
// consideration at stage 23. WeightedCov and LengthCov are the template's
// position-weight coverage and aligned-length coverage (spec.md §4.P.23);
// HHProb is the sequence-channel probability feature used by stage 24's
// low-SSE-count exception.
type Candidate struct {
	TemplateID     string
	ClassifierProb float64
	WeightedCov    float64
	LengthCov      float64
	HHProb         float64
}

// Classify applies stage 23's classification rule to one candidate.
func Classify(c Candidate) Class {
	switch {
	case c.ClassifierProb >= classifierProbFloor && c.WeightedCov >= fullWeightedCov && c.LengthCov >= fullLengthCov:
		return Full
	case c.ClassifierProb >= classifierProbFloor && (c.WeightedCov >= partCovFloor || c.LengthCov >= partCovFloor):
		return Part
	default:
		return Miss
	}
}

// Ranked is stage 23's single emitted row for a merged domain: the best
// candidate, by class priority (full > part > miss) then by classifier
// probability, then by weighted coverage, then by template ID for
// determinism.
type Ranked struct {
	Candidate
	Class Class
}

// RankBest picks stage 23's single best candidate among all templates
// proposed for one merged domain. Returns false if candidates is empty.
func RankBest(candidates []Candidate) (Ranked, bool) {
	var best Ranked
	var have bool
	for _, c := range candidates {
		cls := Classify(c)
		r := Ranked{Candidate: c, Class: cls}
		if !have || better(r, best) {
			best = r
			have = true
		}
	}
	return best, have
}

func better(a, b Ranked) bool {
	if a.Class != b.Class {
		return a.Class > b.Class // Full > Part > Miss
	}
	if a.ClassifierProb != b.ClassifierProb {
		return a.ClassifierProb > b.ClassifierProb
	}
	if a.WeightedCov != b.WeightedCov {
		return a.WeightedCov > b.WeightedCov
	}
	return a.TemplateID < b.TemplateID
}
