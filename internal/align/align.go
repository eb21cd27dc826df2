// Package align implements the iterative per-template structural alignment
// engine (stage 7): residue excision loop, bounded worker pool, isolated
// scratch directories, and stable-order output concatenation.
package align

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/sarat-asymmetrica/dpam/internal/hits"
	"github.com/sarat-asymmetrica/dpam/internal/model"
	"github.com/sarat-asymmetrica/dpam/internal/resrange"
)

// minPairs is the per-iteration stop condition: fewer matched pairs than
// this and the loop halts for this template.
const minPairs = 20

// minRemaining is the residual-structure stop condition: once fewer than
// this many residues remain after excision, further iteration cannot
// produce a meaningful alignment.
const minRemaining = 20

// Runner performs one pairwise structural alignment of the working
// coordinate file against a template and is the external-tool invocation
// boundary: a real implementation shells out to the pairwise alignment
// binary; tests supply a fake.
type Runner interface {
	Align(ctx context.Context, workingPDBPath, templateID, scratchDir string) (hits.PairwiseAlignment, error)
}

// Engine runs the iterative alignment loop across a set of candidate
// templates with a bounded worker pool. Workers are fully isolated: each
// owns its own scratch directory and writes its own working copy of the
// query structure, so there is no shared mutable state between them.
type Engine struct {
	Runner     Runner
	ScratchDir string
	Workers    int64 // bounded worker pool size
}

// templateResult pairs a template's output bytes with its submission index,
// so the concatenation step can restore stable template-submission order
// even though workers finish out of order.
type templateResult struct {
	index int
	out   []byte
}

// RunAll runs the iterative loop for every template in templateIDs against
// query, in parallel up to Workers concurrent templates, and returns the
// concatenated output in template-submission order. A per-template runner
// crash records zero hits for that template (see runTemplate) and never
// fails the batch; RunAll only returns an error if it cannot even set up
// scratch space.
func (e *Engine) RunAll(ctx context.Context, query *model.Structure, templateIDs []string) ([]byte, error) {
	if err := os.MkdirAll(e.ScratchDir, 0o755); err != nil {
		return nil, fmt.Errorf("align: create scratch root: %w", err)
	}

	workers := e.Workers
	if workers < 1 {
		workers = 1
	}
	sem := semaphore.NewWeighted(workers)
	g, gctx := errgroup.WithContext(ctx)

	results := make([]templateResult, len(templateIDs))
	for i, tmpl := range templateIDs {
		i, tmpl := i, tmpl
		if err := sem.Acquire(gctx, 1); err != nil {
			// context cancelled; the spec's cancellation contract is that
			// in-flight workers finish their current alignment and exit,
			// and partial (not-yet-started) output is discarded.
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			out := e.runTemplate(gctx, query, tmpl)
			results[i] = templateResult{index: i, out: out}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("align: worker pool: %w", err)
	}

	var buf bytes.Buffer
	for _, r := range results {
		buf.Write(r.out)
	}
	return buf.Bytes(), nil
}

// runTemplate runs the residue-excision alignment loop for a single
// template. A tool crash (Runner.Align returning an error) at any
// iteration discards every record already emitted for this template, so a
// crash records zero hits for the template; it does not abort the engine.
func (e *Engine) runTemplate(ctx context.Context, query *model.Structure, templateID string) []byte {
	var buf bytes.Buffer
	remaining := query.StructuredResidues()
	iteration := 1

	for {
		if ctx.Err() != nil {
			break
		}
		scratchDir := filepath.Join(e.ScratchDir, templateID+"-"+uuid.NewString())
		if err := os.MkdirAll(scratchDir, 0o755); err != nil {
			break
		}

		workingPath := filepath.Join(scratchDir, "working.pdb")
		if err := writeWorking(query, remaining, workingPath); err != nil {
			os.RemoveAll(scratchDir)
			break
		}

		pa, err := e.Runner.Align(ctx, workingPath, templateID, scratchDir)
		os.RemoveAll(scratchDir)
		if err != nil {
			return nil
		}
		if pa.NumPairs() < minPairs {
			break
		}

		fmt.Fprintf(&buf, ">%s_%d\t%.4f\t%d\t%d\t0\n",
			templateID, iteration, pa.ZScore, pa.NumPairs(), remaining.Len())
		for i, q := range pa.QResids {
			fmt.Fprintf(&buf, "%d\t%d\n", q, pa.TResids[i])
		}

		tol := resrange.Tolerance(len(pa.QResids))
		alignedRange := resrange.HullSet(resrange.New(pa.QResids...), tol)
		remaining = resrange.Difference(remaining, alignedRange)
		if remaining.Len() < minRemaining {
			break
		}
		iteration++
	}
	return buf.Bytes()
}

// writeWorking materializes the subset of query restricted to keep as a
// standalone coordinate file for one alignment iteration.
func writeWorking(query *model.Structure, keep resrange.Set, path string) error {
	sub := &model.Structure{
		Name:     query.Name,
		Residues: make(map[resrange.ResId]*model.Residue, keep.Len()),
	}
	var seq []byte
	for _, id := range keep.Slice() {
		res, ok := query.Residues[id]
		if !ok {
			continue
		}
		sub.Residues[id] = res
		if int(id) > len(seq) {
			grown := make([]byte, id)
			copy(grown, seq)
			seq = grown
		}
		seq[id-1] = res.Code
	}
	for _, a := range query.Atoms {
		if keep.Contains(a.ResId) {
			sub.Atoms = append(sub.Atoms, a)
		}
	}
	sub.Seq = seq
	return model.WritePDB(path, sub)
}
