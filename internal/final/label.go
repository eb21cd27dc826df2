package final

import (
	"sort"
	"strconv"

	"github.com/sarat-asymmetrica/dpam/internal/resrange"
)

// simpleTopologySSECount is stage 24's "fewer than three SSEs" threshold
// that marks a domain too structurally spare to confidently classify.
const simpleTopologySSECount = 3

// lowSSEHHProb, lowSSEWeightedCov, and lowSSELengthCov are the
// extra-condition floors stage 24 applies when a
// full/part domain has fewer than three SSEs: only a near-perfect hit
// still earns a confident label.
const (
	lowSSEHHProb      = 0.95
	lowSSEWeightedCov = 0.8
	lowSSELengthCov   = 0.8
)

// Label is stage 24's final per-domain classification.
type Label string

const (
	GoodDomain     Label = "good_domain"
	PartialDomain  Label = "partial_domain"
	SimpleTopology Label = "simple_topology"
	LowConfidence  Label = "low_confidence"
)

// AssignLabel implements stage 24's refinement table, given the stage-23
// class, the recounted SSE count (helix_count + strand_count) within the
// domain, and the winning candidate's hh_prob/weighted_cov/length_cov.
func AssignLabel(class Class, sseCount int, hhProb, weightedCov, lengthCov float64) Label {
	switch {
	case class == Miss && sseCount < simpleTopologySSECount:
		return SimpleTopology
	case class == Miss:
		return LowConfidence
	case sseCount >= simpleTopologySSECount:
		if class == Full {
			return GoodDomain
		}
		return PartialDomain
	case hhProb >= lowSSEHHProb && weightedCov >= lowSSEWeightedCov && lengthCov >= lowSSELengthCov:
		if class == Full {
			return GoodDomain
		}
		return PartialDomain
	default:
		return SimpleTopology
	}
}

// Assignment is one merged domain's complete stage 23/24 result, carried
// through renumbering.
type Assignment struct {
	Residues resrange.Set
	Ranked   Ranked
	SSECount int
	Label    Label
}

// Numbered is a renumbered assignment, labeled nD1, nD2, ... by mean
// residue index (spec.md §4.P.24's final renumbering step).
type Numbered struct {
	Assignment
	Name string
}

// Renumber sorts assignments by mean residue index and assigns sequential
// "nD<k>" names.
func Renumber(assignments []Assignment) []Numbered {
	sorted := make([]Assignment, len(assignments))
	copy(sorted, assignments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return meanIndex(sorted[i].Residues) < meanIndex(sorted[j].Residues)
	})

	out := make([]Numbered, len(sorted))
	for i, a := range sorted {
		out[i] = Numbered{Assignment: a, Name: nName(i + 1)}
	}
	return out
}

func meanIndex(s resrange.Set) float64 {
	ids := s.Slice()
	if len(ids) == 0 {
		return 0
	}
	var sum int
	for _, id := range ids {
		sum += int(id)
	}
	return float64(sum) / float64(len(ids))
}

func nName(k int) string {
	return "nD" + strconv.Itoa(k)
}
