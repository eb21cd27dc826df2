package stages

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/sarat-asymmetrica/dpam/internal/confidence"
	"github.com/sarat-asymmetrica/dpam/internal/pipeline"
)

// Stage17Confidence groups stage 16's predictions by domain and applies
// the threshold/quality-label filter independently within each domain.
func Stage17Confidence(ctx *pipeline.StageContext) *pipeline.StageError {
	preds, err := readPredictions(ctx.Path("predictions"))
	if err != nil {
		return &pipeline.StageError{Stage: 17, Kind: pipeline.InputMissing, Message: "read predictions", Err: err}
	}

	byDomain := make(map[int][]confidence.Prediction)
	var domainIDs []int
	for _, p := range preds {
		if _, ok := byDomain[p.DomainID]; !ok {
			domainIDs = append(domainIDs, p.DomainID)
		}
		byDomain[p.DomainID] = append(byDomain[p.DomainID], confidence.Prediction{
			TGroup: p.TGroup, TemplateID: p.TemplateID, Probability: p.Prob,
		})
	}
	sort.Ints(domainIDs)

	f, ferr := createFile(ctx.Path("confident"))
	if ferr != nil {
		return &pipeline.StageError{Stage: 17, Kind: pipeline.ParseError, Message: "write confident predictions", Err: ferr}
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, id := range domainIDs {
		for _, c := range confidence.Filter(byDomain[id]) {
			if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
				id, c.TGroup, c.TemplateID, strconv.FormatFloat(c.Probability, 'f', -1, 64), string(c.Quality)); err != nil {
				return &pipeline.StageError{Stage: 17, Kind: pipeline.ParseError, Message: "write confident predictions", Err: err}
			}
		}
	}
	if err := w.Flush(); err != nil {
		return &pipeline.StageError{Stage: 17, Kind: pipeline.ParseError, Message: "write confident predictions", Err: err}
	}
	return nil
}

func Stage17Outputs(ctx *pipeline.StageContext) []string {
	return []string{ctx.Path("confident")}
}

// confidentRow is stage 18/23's decoded view of one stage 17 survivor.
type confidentRow struct {
	DomainID int
	confidence.Confident
}

func readConfident(path string) ([]confidentRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []confidentRow
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := splitTab(sc.Text())
		if len(fields) < 5 {
			continue
		}
		domainID, _ := strconv.Atoi(fields[0])
		prob, _ := strconv.ParseFloat(fields[3], 64)
		out = append(out, confidentRow{
			DomainID: domainID,
			Confident: confidence.Confident{
				TGroup:      fields[1],
				TemplateID:  fields[2],
				Probability: prob,
				Quality:     confidence.Quality(fields[4]),
			},
		})
	}
	return out, sc.Err()
}
