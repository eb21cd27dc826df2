package pipeline

import (
	"fmt"

	"github.com/sarat-asymmetrica/dpam/internal/config"
	"github.com/sarat-asymmetrica/dpam/internal/logx"
	"github.com/sarat-asymmetrica/dpam/internal/refdata"
)

// StageContext is everything a stage function needs: which chain it is
// processing, where that chain's files live, the batch config, and the
// shared read-only reference data. Stages communicate with each other only
// through files under Dir -- no stage holds a reference to another stage's
// in-memory results (spec.md §5: "stage N observes only the file artifacts
// produced by stages < N").
type StageContext struct {
	Chain string // file prefix, e.g. "P"
	Dir   string
	Cfg   config.Config
	Ref   *refdata.Store
}

// Path joins Dir with a chain-prefixed filename, e.g. ctx.Path("fa") ->
// "dir/P.fa".
func (c *StageContext) Path(suffix string) string {
	return fmt.Sprintf("%s/%s.%s", c.Dir, c.Chain, suffix)
}

// Stage is one entry in the 24-stage registry: a declared id/name, the set
// of output files it is expected to produce (used by the resume check),
// and its implementation.
type Stage struct {
	ID      int
	Name    string
	Outputs func(*StageContext) []string
	Run     func(*StageContext) *StageError
}

// Registry is the ordered set of stages the driver executes. Order is the
// order stages are attempted in, not necessarily stage ID order, though in
// practice the two coincide.
type Registry []Stage

// Run executes every stage in reg against ctx in order, checkpointing after
// each stage. It implements spec.md §4.E's resume semantics: a stage is
// skipped only if resume is requested, the stage is marked completed in the
// persisted state, and every one of its declared output files exists.
//
// A non-fatal stage failure is recorded and execution continues to the next
// stage (error isolation). An InvariantViolation aborts the chain
// immediately; Run returns that error to the caller.
func Run(reg Registry, ctx *StageContext, statePath string) error {
	state, err := LoadState(statePath)
	if err != nil {
		return fmt.Errorf("pipeline: load state: %w", err)
	}

	for _, stage := range reg {
		if ctx.Cfg.Resume && state.Completed(stage.ID) && allExist(stage.Outputs(ctx)) {
			logx.StageSkip(ctx.Chain, stage.ID, stage.Name)
			continue
		}

		logx.StageStart(ctx.Chain, stage.ID, stage.Name)
		serr := stage.Run(ctx)
		if serr == nil {
			state.MarkCompleted(stage.ID)
			if err := state.Save(statePath); err != nil {
				return fmt.Errorf("pipeline: persist state after stage %d: %w", stage.ID, err)
			}
			continue
		}

		state.MarkFailed(stage.ID, serr.Error())
		if err := state.Save(statePath); err != nil {
			return fmt.Errorf("pipeline: persist state after stage %d failure: %w", stage.ID, err)
		}
		if serr.Fatal() {
			logx.StageFatal(ctx.Chain, stage.ID, stage.Name, serr)
			return serr
		}
		logx.StageFailed(ctx.Chain, stage.ID, stage.Name, serr)
		// error isolation: continue to the next stage; stages consuming
		// this stage's missing outputs will themselves fail and be
		// reported independently.
	}
	return nil
}

func allExist(paths []string) bool {
	for _, p := range paths {
		if !fileExists(p) {
			return false
		}
	}
	return true
}
