package stages

import (
	"bufio"
	"fmt"
	"os"

	"github.com/sarat-asymmetrica/dpam/internal/evidence"
	finalpkg "github.com/sarat-asymmetrica/dpam/internal/final"
	"github.com/sarat-asymmetrica/dpam/internal/hits"
	"github.com/sarat-asymmetrica/dpam/internal/pipeline"
	"github.com/sarat-asymmetrica/dpam/internal/resrange"
	"github.com/sarat-asymmetrica/dpam/internal/sse"
)

// Stage23_24Final ranks each merged component's surviving candidate
// templates into a single full/part/miss row (stage 23), then refines
// that into a final label using the domain's recounted SSE count (stage
// 24), and renumbers the surviving domains by mean residue index.
func Stage23_24Final(ctx *pipeline.StageContext) *pipeline.StageError {
	merged, err := readMerged(ctx.Path("merged"))
	if err != nil {
		return &pipeline.StageError{Stage: 23, Kind: pipeline.InputMissing, Message: "read merged domains", Err: err}
	}
	confident, err := readConfident(ctx.Path("confident"))
	if err != nil {
		return &pipeline.StageError{Stage: 23, Kind: pipeline.InputMissing, Message: "read confident predictions", Err: err}
	}
	scored, err := readScored(ctx.Path("scored_hits"))
	if err != nil {
		return &pipeline.StageError{Stage: 23, Kind: pipeline.InputMissing, Message: "read scored hits", Err: err}
	}
	elements, err := readSSEElements(ctx.Path("sse.elements"))
	if err != nil {
		return &pipeline.StageError{Stage: 23, Kind: pipeline.InputMissing, Message: "read SSE elements", Err: err}
	}

	byOriginalDomain := make(map[int][]confidentRow)
	for _, c := range confident {
		byOriginalDomain[c.DomainID] = append(byOriginalDomain[c.DomainID], c)
	}

	var assignments []finalpkg.Assignment
	for _, m := range merged {
		var candidates []finalpkg.Candidate
		seenTemplate := make(map[string]bool)
		for _, origID := range m.DomainIDs {
			for _, c := range byOriginalDomain[origID] {
				if seenTemplate[c.TemplateID] {
					continue
				}
				seenTemplate[c.TemplateID] = true
				wcov, lcov, hhprob := candidateCoverage(scored, c.TemplateID, m.Residues)
				candidates = append(candidates, finalpkg.Candidate{
					TemplateID:     c.TemplateID,
					ClassifierProb: c.Probability,
					WeightedCov:    wcov,
					LengthCov:      lcov,
					HHProb:         hhprob,
				})
			}
		}

		ranked, ok := finalpkg.RankBest(candidates)
		if !ok {
			continue
		}
		helices, strands := sse.CountByType(elements, m.Residues)
		sseCount := helices + strands
		label := finalpkg.AssignLabel(ranked.Class, sseCount, ranked.HHProb, ranked.WeightedCov, ranked.LengthCov)
		assignments = append(assignments, finalpkg.Assignment{
			Residues: m.Residues,
			Ranked:   ranked,
			SSECount: sseCount,
			Label:    label,
		})
	}

	numbered := finalpkg.Renumber(assignments)
	if err := writeFinalDomains(ctx.Path("finalDPAM.domains"), numbered); err != nil {
		return &pipeline.StageError{Stage: 24, Kind: pipeline.ParseError, Message: "write final domains", Err: err}
	}
	return nil
}

func Stage23_24Outputs(ctx *pipeline.StageContext) []string {
	return []string{ctx.Path("finalDPAM.domains")}
}

// candidateCoverage finds the best scored hit to templateID overlapping
// domainResidues (permissive rule) and derives stage 23's weighted/length
// coverage directly from stage 8's q_score and coverage statistics, plus
// the best sequence-channel probability, rescaled from percent to a 0-1
// fraction, feeding stage 24's low-SSE exception.
func candidateCoverage(scored []evidence.Scored, templateID string, domainResidues resrange.Set) (weightedCov, lengthCov, hhProb float64) {
	var best evidence.Scored
	var haveBest bool
	for _, s := range scored {
		if s.TemplateID != templateID {
			continue
		}
		if !resrange.OverlapPermissive(s.QueryResids, domainResidues) {
			continue
		}
		if s.Channel == hits.Sequence && s.Probability/100 > hhProb {
			hhProb = s.Probability / 100
		}
		if !haveBest || s.QScore > best.QScore {
			best = s
			haveBest = true
		}
	}
	if !haveBest {
		return 0, 0, hhProb
	}
	if best.QScore > 0 {
		weightedCov = best.QScore
	}
	lengthCov = best.Coverage()
	return weightedCov, lengthCov, hhProb
}

func writeFinalDomains(path string, numbered []finalpkg.Numbered) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, n := range numbered {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			n.Name, resrange.Format(n.Residues), n.Ranked.TemplateID, n.Ranked.Class.String(), string(n.Label)); err != nil {
			return err
		}
	}
	return w.Flush()
}
