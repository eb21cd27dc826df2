package stages

import (
	"bufio"
	"fmt"
	"os"

	"github.com/sarat-asymmetrica/dpam/internal/model"
	"github.com/sarat-asymmetrica/dpam/internal/pipeline"
)

// Stage1Prepare validates the chain's input coordinate and PAE files parse
// cleanly and emits a canonical FASTA sequence file for the external
// search tools (stage 2/3) to consume.
func Stage1Prepare(ctx *pipeline.StageContext) *pipeline.StageError {
	s, err := model.ParsePDB(ctx.Path("pdb"))
	if err != nil {
		return &pipeline.StageError{Stage: 1, Kind: pipeline.InputMissing, Message: "parse input coordinates", Err: err}
	}
	if err := model.ReadPAE(ctx.Path("pae.json"), s); err != nil {
		return &pipeline.StageError{Stage: 1, Kind: pipeline.InputMissing, Message: "parse PAE matrix", Err: err}
	}
	if err := writeFasta(ctx.Path("fa"), ctx.Chain, s.Seq); err != nil {
		return &pipeline.StageError{Stage: 1, Kind: pipeline.ParseError, Message: "write fasta", Err: err}
	}
	return nil
}

func Stage1Outputs(ctx *pipeline.StageContext) []string {
	return []string{ctx.Path("fa")}
}

func writeFasta(path, chain string, seq []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if _, err := fmt.Fprintf(w, ">%s\n", chain); err != nil {
		return err
	}
	const lineWidth = 60
	for i := 0; i < len(seq); i += lineWidth {
		end := i + lineWidth
		if end > len(seq) {
			end = len(seq)
		}
		if _, err := w.Write(seq[i:end]); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return w.Flush()
}
