package stages

import (
	"bufio"
	"fmt"
	"os"

	"github.com/sarat-asymmetrica/dpam/internal/mapping"
	"github.com/sarat-asymmetrica/dpam/internal/pipeline"
)

// Stage18Mapping maps every stage 17 confident (domain, template) pair
// back to its query/template residue correspondence.
func Stage18Mapping(ctx *pipeline.StageContext) *pipeline.StageError {
	confident, err := readConfident(ctx.Path("confident"))
	if err != nil {
		return &pipeline.StageError{Stage: 18, Kind: pipeline.InputMissing, Message: "read confident predictions", Err: err}
	}
	domains, err := readDomains(ctx.Path("domains"))
	if err != nil {
		return &pipeline.StageError{Stage: 18, Kind: pipeline.InputMissing, Message: "read domains", Err: err}
	}
	scored, err := readScored(ctx.Path("scored_hits"))
	if err != nil {
		return &pipeline.StageError{Stage: 18, Kind: pipeline.InputMissing, Message: "read scored hits", Err: err}
	}

	pairs := make([]mapping.Pair, 0, len(confident))
	for _, c := range confident {
		pairs = append(pairs, mapping.Pair{DomainID: c.DomainID, TemplateID: c.TemplateID})
	}
	mapped := mapping.Map(domains, scored, pairs)

	f, ferr := createFile(ctx.Path("mapped"))
	if ferr != nil {
		return &pipeline.StageError{Stage: 18, Kind: pipeline.ParseError, Message: "write mapped ranges", Err: ferr}
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, m := range mapped {
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", m.DomainID, m.TemplateID, m.QueryRange, m.TemplateRange); err != nil {
			return &pipeline.StageError{Stage: 18, Kind: pipeline.ParseError, Message: "write mapped ranges", Err: err}
		}
	}
	if err := w.Flush(); err != nil {
		return &pipeline.StageError{Stage: 18, Kind: pipeline.ParseError, Message: "write mapped ranges", Err: err}
	}
	return nil
}

func Stage18Outputs(ctx *pipeline.StageContext) []string {
	return []string{ctx.Path("mapped")}
}
