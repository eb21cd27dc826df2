package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sarat-asymmetrica/dpam/internal/config"
	"github.com/stretchr/testify/require"
)

func TestStateSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".P.dpam_state.json")

	s := newState()
	s.MarkCompleted(1)
	s.MarkCompleted(2)
	s.MarkFailed(3, "boom")
	require.NoError(t, s.Save(path))

	loaded, err := LoadState(path)
	require.NoError(t, err)
	require.True(t, loaded.Completed(1))
	require.True(t, loaded.Completed(2))
	require.False(t, loaded.Completed(3))
	require.Equal(t, "boom", loaded.FailedStages[3])
}

func TestLoadStateMissingFileStartsFresh(t *testing.T) {
	s, err := LoadState(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	require.False(t, s.Completed(1))
}

func TestRunResumeSkipsCompletedStages(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "P.out")
	statePath := filepath.Join(dir, ".P.dpam_state.json")

	runs := 0
	reg := Registry{{
		ID:   1,
		Name: "WRITE",
		Outputs: func(ctx *StageContext) []string {
			return []string{outPath}
		},
		Run: func(ctx *StageContext) *StageError {
			runs++
			if err := os.WriteFile(outPath, []byte("ok"), 0o644); err != nil {
				return newErr(1, ToolFailure, "write failed", err)
			}
			return nil
		},
	}}
	ctx := &StageContext{Chain: "P", Dir: dir, Cfg: config.Config{Resume: true}}

	require.NoError(t, Run(reg, ctx, statePath))
	require.NoError(t, Run(reg, ctx, statePath))
	require.Equal(t, 1, runs, "second run should skip the already-completed stage")
}

func TestRunInvariantViolationAborts(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, ".P.dpam_state.json")

	secondRan := false
	reg := Registry{
		{
			ID:      1,
			Name:    "BAD",
			Outputs: func(ctx *StageContext) []string { return nil },
			Run: func(ctx *StageContext) *StageError {
				return newErr(1, InvariantViolation, "residue out of range", nil)
			},
		},
		{
			ID:      2,
			Name:    "NEXT",
			Outputs: func(ctx *StageContext) []string { return nil },
			Run: func(ctx *StageContext) *StageError {
				secondRan = true
				return nil
			},
		},
	}
	ctx := &StageContext{Chain: "P", Dir: dir, Cfg: config.Config{Resume: true}}
	err := Run(reg, ctx, statePath)
	require.Error(t, err)
	require.False(t, secondRan, "fatal stage must abort the chain before later stages run")
}

func TestRunNonFatalErrorIsolationContinues(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, ".P.dpam_state.json")

	secondRan := false
	reg := Registry{
		{
			ID:      1,
			Name:    "MISSING_INPUT",
			Outputs: func(ctx *StageContext) []string { return nil },
			Run: func(ctx *StageContext) *StageError {
				return newErr(1, InputMissing, "no input file", nil)
			},
		},
		{
			ID:      2,
			Name:    "NEXT",
			Outputs: func(ctx *StageContext) []string { return nil },
			Run: func(ctx *StageContext) *StageError {
				secondRan = true
				return nil
			},
		},
	}
	ctx := &StageContext{Chain: "P", Dir: dir, Cfg: config.Config{Resume: true}}
	require.NoError(t, Run(reg, ctx, statePath))
	require.True(t, secondRan, "non-fatal failure must not block later stages")
}
