package stages

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/sarat-asymmetrica/dpam/internal/features"
	"github.com/sarat-asymmetrica/dpam/internal/pipeline"
)

// Stage15Features builds the classifier's 13-feature rows for every
// (domain, template) pair with enough evidence overlap, one domain at a
// time, in ascending domain ID order for determinism.
func Stage15Features(ctx *pipeline.StageContext) *pipeline.StageError {
	domains, err := readDomains(ctx.Path("domains"))
	if err != nil {
		return &pipeline.StageError{Stage: 15, Kind: pipeline.InputMissing, Message: "read domains", Err: err}
	}
	scored, err := readScored(ctx.Path("scored_hits"))
	if err != nil {
		return &pipeline.StageError{Stage: 15, Kind: pipeline.InputMissing, Message: "read scored hits", Err: err}
	}
	elements, err := readSSEElements(ctx.Path("sse.elements"))
	if err != nil {
		return &pipeline.StageError{Stage: 15, Kind: pipeline.InputMissing, Message: "read SSE elements", Err: err}
	}

	ids := make([]int, 0, len(domains))
	for id := range domains {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var all []features.Feature
	for _, id := range ids {
		all = append(all, features.Build(domains[id], scored, elements)...)
	}
	if err := writeFeatures(ctx.Path("features"), all); err != nil {
		return &pipeline.StageError{Stage: 15, Kind: pipeline.ParseError, Message: "write features", Err: err}
	}
	return nil
}

func Stage15Outputs(ctx *pipeline.StageContext) []string {
	return []string{ctx.Path("features")}
}

func writeFeatures(path string, all []features.Feature) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, ft := range all {
		v := ft.Vector()
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d", ft.DomainID, ft.DomainRange, ft.TGroup, ft.TemplateID, ft.DomainLength); err != nil {
			return err
		}
		for _, x := range v {
			if _, err := fmt.Fprintf(w, "\t%s", strconv.FormatFloat(x, 'f', -1, 64)); err != nil {
				return err
			}
		}
		if _, err := w.WriteString("\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}

// featureRow is stage 16's decoded view of one feature line: the
// identifying columns plus the raw 13-value vector the classifier reads.
type featureRow struct {
	DomainID     int
	DomainRange  string
	TGroup       string
	TemplateID   string
	DomainLength int
	Vector       [13]float64
}

func readFeatures(path string) ([]featureRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []featureRow
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := splitTab(sc.Text())
		if len(fields) < 18 {
			continue
		}
		domainID, _ := strconv.Atoi(fields[0])
		domainLength, _ := strconv.Atoi(fields[4])
		var vec [13]float64
		for i := 0; i < 13; i++ {
			vec[i], _ = strconv.ParseFloat(fields[5+i], 64)
		}
		out = append(out, featureRow{
			DomainID:     domainID,
			DomainRange:  fields[1],
			TGroup:       fields[2],
			TemplateID:   fields[3],
			DomainLength: domainLength,
			Vector:       vec,
		})
	}
	return out, sc.Err()
}
