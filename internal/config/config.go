// Package config loads the batch-run configuration: reference-data paths,
// worker-pool sizing, and the threshold constants an experiment might
// override. Modeled on the pack's flat-struct-with-yaml-tags style
// (ehrlich-b-wingthing/internal/config/wing.go).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level batch configuration.
type Config struct {
	// RefData locates the reference-data directory contents.
	RefData RefDataPaths `yaml:"ref_data"`

	// ScratchRoot is the root directory stage 7 workers create their
	// per-template scratch directories under.
	ScratchRoot string `yaml:"scratch_root"`

	// AlignWorkers bounds the stage 7 worker pool size (W in spec.md §5).
	AlignWorkers int `yaml:"align_workers"`

	// AlignToolPath is the external pairwise structural alignment binary
	// stage 7's exec-based Runner invokes once per iteration per template.
	AlignToolPath string `yaml:"align_tool_path"`

	// TemplateDir holds one reference coordinate file per template ID,
	// named "<template_id>.pdb", that the alignment tool aligns against.
	TemplateDir string `yaml:"template_dir"`

	// Resume enables skipping stages whose outputs already exist and are
	// marked completed in a chain's state file.
	Resume bool `yaml:"resume"`

	// Thresholds holds the tunable constants named throughout spec.md §4;
	// defaults match the spec exactly.
	Thresholds Thresholds `yaml:"thresholds,omitempty"`
}

// RefDataPaths points at the reference-data directory's contents.
type RefDataPaths struct {
	HierarchyTSV string `yaml:"hierarchy_tsv"`
	LengthTSV    string `yaml:"length_tsv"`
	WeightsDir   string `yaml:"weights_dir"`
	HistoryDir   string `yaml:"history_dir"`
	SQLitePath   string `yaml:"sqlite_path"`
	Checkpoint   string `yaml:"classifier_checkpoint"`
}

// Thresholds are the spec's named numeric constants, exposed for
// experimentation but never required to change for a standard run.
type Thresholds struct {
	SegmentAffinity   float64 `yaml:"segment_affinity,omitempty"`   // stage 13 step 7: > 0.54
	MergeSlack        float64 `yaml:"merge_slack,omitempty"`        // stage 13 step 7: inter*1.07 >= intra
	GapFillMax        int     `yaml:"gap_fill_max,omitempty"`       // stage 13 step 8: <= 10
	MinSegmentLen     int     `yaml:"min_segment_len,omitempty"`    // stage 13 step 9: >= 15
	MinDomainLen      int     `yaml:"min_domain_len,omitempty"`     // stage 13 step 10: >= 25
	ConfidentTGroup   float64 `yaml:"confident_t_group,omitempty"`  // stage 17: >= 0.60
	SimilarSlack      float64 `yaml:"similar_slack,omitempty"`      // stage 17: p >= p* - 0.05
	ClassifierFull    float64 `yaml:"classifier_full,omitempty"`    // stage 23: >= 0.85
	WeightedCovFull   float64 `yaml:"weighted_cov_full,omitempty"`  // stage 23: >= 0.66
	LengthCovFull     float64 `yaml:"length_cov_full,omitempty"`    // stage 23: >= 0.33
}

// Default returns the spec-mandated defaults.
func Default() Config {
	return Config{
		ScratchRoot:   "scratch",
		AlignWorkers:  8,
		AlignToolPath: "dpam-align",
		Resume:        true,
		Thresholds: Thresholds{
			SegmentAffinity: 0.54,
			MergeSlack:      1.07,
			GapFillMax:      10,
			MinSegmentLen:   15,
			MinDomainLen:    25,
			ConfidentTGroup: 0.60,
			SimilarSlack:    0.05,
			ClassifierFull:  0.85,
			WeightedCovFull: 0.66,
			LengthCovFull:   0.33,
		},
	}
}

// Load reads a YAML config file and overlays it on Default().
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
