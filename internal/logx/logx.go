// Package logx wraps github.com/projectdiscovery/gologger as a package-level
// sink, the way the pack uses gologger directly (projectdiscovery-alterx:
// gologger.Warning().Msgf(...)) rather than threading a logger instance
// through every call.
package logx

import "github.com/projectdiscovery/gologger"

// StageStart logs that a chain is about to execute a stage.
func StageStart(chain string, stage int, name string) {
	gologger.Info().Msgf("chain %s: stage %02d %s starting", chain, stage, name)
}

// StageSkip logs that a stage was skipped on resume.
func StageSkip(chain string, stage int, name string) {
	gologger.Verbose().Msgf("chain %s: stage %02d %s skipped (resume)", chain, stage, name)
}

// StageFailed logs a recorded, non-fatal stage failure.
func StageFailed(chain string, stage int, name string, err error) {
	gologger.Warning().Msgf("chain %s: stage %02d %s failed: %v", chain, stage, name, err)
}

// StageFatal logs an invariant violation that aborts the chain.
func StageFatal(chain string, stage int, name string, err error) {
	gologger.Error().Msgf("chain %s: stage %02d %s fatal: %v", chain, stage, name, err)
}

// EmptyResult logs a stage producing zero output, which is a valid outcome
// per spec.md §7, not an error.
func EmptyResult(chain string, stage int, name string) {
	gologger.Verbose().Msgf("chain %s: stage %02d %s produced no output (valid empty result)", chain, stage, name)
}
