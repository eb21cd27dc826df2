package stages

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/sarat-asymmetrica/dpam/internal/classifier"
	"github.com/sarat-asymmetrica/dpam/internal/pipeline"
)

// Stage16Classify runs every stage 15 feature row through the fixed
// 13->64->2 classifier network and writes each (domain, template)
// pair's p(correct).
func Stage16Classify(ctx *pipeline.StageContext) *pipeline.StageError {
	rows, err := readFeatures(ctx.Path("features"))
	if err != nil {
		return &pipeline.StageError{Stage: 16, Kind: pipeline.InputMissing, Message: "read features", Err: err}
	}
	weights, err := classifier.LoadFile(ctx.Cfg.RefData.Checkpoint)
	if err != nil {
		return &pipeline.StageError{Stage: 16, Kind: pipeline.InputMissing, Message: "load classifier checkpoint", Err: err}
	}

	f, ferr := createFile(ctx.Path("predictions"))
	if ferr != nil {
		return &pipeline.StageError{Stage: 16, Kind: pipeline.ParseError, Message: "write predictions", Err: ferr}
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, r := range rows {
		p := weights.Predict(r.Vector)
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.DomainID, r.TGroup, r.TemplateID, strconv.FormatFloat(p, 'f', -1, 64)); err != nil {
			return &pipeline.StageError{Stage: 16, Kind: pipeline.ParseError, Message: "write predictions", Err: err}
		}
	}
	if err := w.Flush(); err != nil {
		return &pipeline.StageError{Stage: 16, Kind: pipeline.ParseError, Message: "write predictions", Err: err}
	}
	return nil
}

func Stage16Outputs(ctx *pipeline.StageContext) []string {
	return []string{ctx.Path("predictions")}
}

// predictionRow is stage 17's decoded view of one stage 16 prediction.
type predictionRow struct {
	DomainID   int
	TGroup     string
	TemplateID string
	Prob       float64
}

func readPredictions(path string) ([]predictionRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []predictionRow
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := splitTab(sc.Text())
		if len(fields) < 4 {
			continue
		}
		domainID, _ := strconv.Atoi(fields[0])
		prob, _ := strconv.ParseFloat(fields[3], 64)
		out = append(out, predictionRow{DomainID: domainID, TGroup: fields[1], TemplateID: fields[2], Prob: prob})
	}
	return out, sc.Err()
}
