package stages

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/sarat-asymmetrica/dpam/internal/align"
	"github.com/sarat-asymmetrica/dpam/internal/model"
	"github.com/sarat-asymmetrica/dpam/internal/pipeline"
)

// Stage7Align runs the iterative residue-excision structural alignment
// loop (internal/align.Engine) against every stage 6 candidate template
// and writes the concatenated per-template, per-iteration pair output for
// stage 8 to turn into scored hits.
func Stage7Align(ctx *pipeline.StageContext) *pipeline.StageError {
	s, err := model.ParsePDB(ctx.Path("pdb"))
	if err != nil {
		return &pipeline.StageError{Stage: 7, Kind: pipeline.InputMissing, Message: "parse input coordinates", Err: err}
	}
	templateIDs, err := readLines(ctx.Path("dali_candidates"))
	if err != nil {
		return &pipeline.StageError{Stage: 7, Kind: pipeline.InputMissing, Message: "read DALI candidate list", Err: err}
	}

	engine := &align.Engine{
		Runner: align.ExecRunner{
			ToolPath:    ctx.Cfg.AlignToolPath,
			TemplateDir: ctx.Cfg.TemplateDir,
		},
		ScratchDir: filepath.Join(ctx.Cfg.ScratchRoot, ctx.Chain, "align-7"),
		Workers:    int64(ctx.Cfg.AlignWorkers),
	}

	out, err := engine.RunAll(context.Background(), s, templateIDs)
	if err != nil {
		return &pipeline.StageError{Stage: 7, Kind: pipeline.ToolFailure, Message: "structural alignment engine", Err: err}
	}
	if err := os.WriteFile(ctx.Path("struct_align.out"), out, 0o644); err != nil {
		return &pipeline.StageError{Stage: 7, Kind: pipeline.ParseError, Message: "write structural alignment output", Err: err}
	}
	return nil
}

func Stage7Outputs(ctx *pipeline.StageContext) []string {
	return []string{ctx.Path("struct_align.out")}
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			out = append(out, line)
		}
	}
	return out, sc.Err()
}
