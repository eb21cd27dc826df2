// Command dpam runs the domain-parsing pipeline for a single chain: it
// loads the batch configuration and reference data once, then drives
// every registered stage in order against one chain's input directory.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarat-asymmetrica/dpam/internal/config"
	"github.com/sarat-asymmetrica/dpam/internal/logx"
	"github.com/sarat-asymmetrica/dpam/internal/pipeline"
	"github.com/sarat-asymmetrica/dpam/internal/refdata"
	"github.com/sarat-asymmetrica/dpam/internal/stages"

	"github.com/projectdiscovery/gologger"
)

func main() {
	var (
		chain      = flag.String("chain", "", "chain identifier; also the input/output file prefix (required)")
		dir        = flag.String("dir", ".", "directory holding <chain>.pdb and <chain>.pae.json, and where stage outputs are written")
		configPath = flag.String("config", "", "YAML config file overlaid on defaults (optional)")
		buildRef   = flag.Bool("build-ref", false, "build the reference SQLite database from the hierarchy/length TSVs before running, instead of opening an existing one")
	)
	flag.Parse()

	if *chain == "" {
		fmt.Fprintln(os.Stderr, "dpam: -chain is required")
		os.Exit(2)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			gologger.Fatal().Msgf("dpam: %v", err)
		}
		cfg = loaded
	}

	var (
		ref *refdata.Store
		err error
	)
	if *buildRef {
		ref, err = refdata.Build(cfg.RefData.SQLitePath, cfg.RefData.HierarchyTSV, cfg.RefData.LengthTSV, cfg.RefData.WeightsDir, cfg.RefData.HistoryDir)
	} else {
		ref, err = refdata.Open(cfg.RefData.SQLitePath, cfg.RefData.WeightsDir, cfg.RefData.HistoryDir)
	}
	if err != nil {
		gologger.Fatal().Msgf("dpam: reference data: %v", err)
	}
	defer ref.Close()

	ctx := &pipeline.StageContext{
		Chain: *chain,
		Dir:   *dir,
		Cfg:   cfg,
		Ref:   ref,
	}

	statePath := pipeline.StatePath(*dir, *chain)
	if err := pipeline.Run(stages.Registry, ctx, statePath); err != nil {
		logx.StageFatal(*chain, 0, "RUN", err)
		os.Exit(1)
	}
}
