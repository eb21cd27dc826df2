// Package hits models the two evidence channels this pipeline consumes —
// sequence-profile hits and structural-alignment hits — as a small tagged
// variant, and parses the external tools' textual output into it. Parsing
// only: the tools themselves are invoked outside this system (spec.md §1).
package hits

import "github.com/sarat-asymmetrica/dpam/internal/resrange"

// Channel distinguishes the evidence source of a Hit.
type Channel int

const (
	Sequence Channel = iota
	Structural
)

func (c Channel) String() string {
	if c == Sequence {
		return "sequence"
	}
	return "structure"
}

// Hit is one alignment of the query to a reference template, from either
// evidence channel.
type Hit struct {
	Channel        Channel
	TemplateID     string // 9-digit canonical token
	ShortID        string // e.g. "e1abcA1"
	HPath          string // hierarchical path x.h.t.f, when known
	Probability    float64 // sequence channel: 0..100
	ZScore         float64 // structural channel
	QueryResids    resrange.Set
	TemplateResids resrange.Set
	TemplateLength int // 0 if unknown
}

// Score returns the channel-appropriate ranking score: probability for
// sequence hits, z-score for structural hits.
func (h Hit) Score() float64 {
	if h.Channel == Sequence {
		return h.Probability
	}
	return h.ZScore
}

// Coverage is |query_resids| / template_length, or 0 if the template length
// is unknown.
func (h Hit) Coverage() float64 {
	if h.TemplateLength <= 0 {
		return 0
	}
	return float64(h.QueryResids.Len()) / float64(h.TemplateLength)
}

// MinAlignedResidues is the minimum number of paired residues a hit must
// carry to be retained by any parser in this package (spec.md §4.C).
const MinAlignedResidues = 10
