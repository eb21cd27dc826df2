package align

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/sarat-asymmetrica/dpam/internal/hits"
)

// ExecRunner shells out to an external pairwise structural alignment
// binary, invoked as:
//
//	<ToolPath> -query <workingPDBPath> -template <templateDir>/<templateID>.pdb
//
// and parsed from its stdout via hits.ParsePairwiseAlignment. A non-zero
// exit or malformed output is reported as an error, which runTemplate
// treats as a per-template crash (zero hits recorded, loop ends for that
// template only).
type ExecRunner struct {
	ToolPath    string
	TemplateDir string
}

func (r ExecRunner) Align(ctx context.Context, workingPDBPath, templateID, scratchDir string) (hits.PairwiseAlignment, error) {
	templatePath := filepath.Join(r.TemplateDir, templateID+".pdb")
	cmd := exec.CommandContext(ctx, r.ToolPath,
		"-query", workingPDBPath,
		"-template", templatePath,
		"-scratch", scratchDir,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return hits.PairwiseAlignment{}, fmt.Errorf("align: exec %s for %s: %w: %s", r.ToolPath, templateID, err, stderr.String())
	}
	return hits.ParsePairwiseAlignment(&stdout)
}
