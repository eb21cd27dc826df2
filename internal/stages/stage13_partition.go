package stages

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sarat-asymmetrica/dpam/internal/evidence"
	"github.com/sarat-asymmetrica/dpam/internal/hits"
	"github.com/sarat-asymmetrica/dpam/internal/model"
	"github.com/sarat-asymmetrica/dpam/internal/partition"
	"github.com/sarat-asymmetrica/dpam/internal/pipeline"
	"github.com/sarat-asymmetrica/dpam/internal/resrange"
)

// Stage13Partition runs the probabilistic domain partition engine over the
// forwarded evidence (stage 9's support lists) and the chain's coordinates,
// PAE, and disorder call (stage 12), and writes the resulting domain
// ranges to *.domains and, as stage 13's preliminary *.finalDPAM.domains
// write, to the file stage 24 overwrites with final labels.
func Stage13Partition(ctx *pipeline.StageContext) *pipeline.StageError {
	s, err := model.ParsePDB(ctx.Path("pdb"))
	if err != nil {
		return &pipeline.StageError{Stage: 13, Kind: pipeline.InputMissing, Message: "parse input coordinates", Err: err}
	}
	if err := model.ReadPAE(ctx.Path("pae.json"), s); err != nil {
		return &pipeline.StageError{Stage: 13, Kind: pipeline.InputMissing, Message: "parse PAE matrix", Err: err}
	}
	disordered, err := readDisorder(ctx.Path("disorder"))
	if err != nil {
		return &pipeline.StageError{Stage: 13, Kind: pipeline.InputMissing, Message: "read disorder range", Err: err}
	}
	support, err := readSupport(ctx.Path("support"))
	if err != nil {
		return &pipeline.StageError{Stage: 13, Kind: pipeline.InputMissing, Message: "read support", Err: err}
	}

	sequenceHits, structuralHits := flattenSupport(support)

	scores := partition.BuildScores(s, sequenceHits, structuralHits)
	domains := partition.Run(scores.P, s.N(), disordered)

	if err := writeDomains(ctx.Path("domains"), domains); err != nil {
		return &pipeline.StageError{Stage: 13, Kind: pipeline.ParseError, Message: "write domains", Err: err}
	}
	if err := writeDomains(ctx.Path("finalDPAM.domains"), domains); err != nil {
		return &pipeline.StageError{Stage: 13, Kind: pipeline.ParseError, Message: "write preliminary final domains", Err: err}
	}
	return nil
}

func Stage13Outputs(ctx *pipeline.StageContext) []string {
	return []string{ctx.Path("domains")}
}

func writeDomains(path string, domains []partition.Domain) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, d := range domains {
		if _, err := fmt.Fprintf(w, "%d\t%s\n", d.ID, resrange.Format(d.Residues)); err != nil {
			return err
		}
	}
	return w.Flush()
}

func readDomains(path string) (map[int]partition.Domain, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	out := make(map[int]partition.Domain)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.SplitN(strings.TrimSpace(sc.Text()), "\t", 2)
		if len(fields) < 2 {
			continue
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		res, err := resrange.Parse(fields[1])
		if err != nil {
			return nil, err
		}
		out[id] = partition.Domain{ID: id, Residues: res}
	}
	return out, sc.Err()
}

// flattenSupport extracts the plain hits.Hit slices BuildScores expects
// from stage 9's forwarded (domain-scoped) evidence.
func flattenSupport(support []evidence.Support) (sequence, structural []hits.Hit) {
	for _, sp := range support {
		for _, s := range sp.Sequence {
			sequence = append(sequence, s.Hit)
		}
		for _, s := range sp.Structural {
			structural = append(structural, s.Hit)
		}
	}
	return sequence, structural
}
