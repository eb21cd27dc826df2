package stages

import "github.com/sarat-asymmetrica/dpam/internal/pipeline"

// Stage2HHsearch and Stage3Foldseek are the external-tool-invocation
// boundary: the search tools themselves run outside this system
// (spec.md §1 Non-goal), so these stages only verify their expected
// tool-native output files are present before the pipeline continues.
// A missing file is InputMissing, not ToolFailure -- this stage never
// observes whether the external process itself succeeded or failed.

func Stage2HHsearch(ctx *pipeline.StageContext) *pipeline.StageError {
	return requireExists(2, ctx.Path("hhsearch.out"))
}

func Stage2Outputs(ctx *pipeline.StageContext) []string {
	return []string{ctx.Path("hhsearch.out")}
}

func Stage3Foldseek(ctx *pipeline.StageContext) *pipeline.StageError {
	return requireExists(3, ctx.Path("foldseek.out"))
}

func Stage3Outputs(ctx *pipeline.StageContext) []string {
	return []string{ctx.Path("foldseek.out")}
}

func requireExists(stage int, path string) *pipeline.StageError {
	if !fileExists(path) {
		return &pipeline.StageError{Stage: stage, Kind: pipeline.InputMissing, Message: "expected external tool output " + path}
	}
	return nil
}
