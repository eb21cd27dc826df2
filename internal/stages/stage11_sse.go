package stages

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sarat-asymmetrica/dpam/internal/model"
	"github.com/sarat-asymmetrica/dpam/internal/pipeline"
	"github.com/sarat-asymmetrica/dpam/internal/resrange"
	"github.com/sarat-asymmetrica/dpam/internal/sse"
)

// Stage11SSE parses the external secondary-structure assignment tool's
// per-residue output ("resid<TAB>type", type one of C/H/E; the tool
// itself runs outside this system, spec.md §1) and writes the grouped,
// length-filtered element list.
func Stage11SSE(ctx *pipeline.StageContext) *pipeline.StageError {
	s, err := model.ParsePDB(ctx.Path("pdb"))
	if err != nil {
		return &pipeline.StageError{Stage: 11, Kind: pipeline.InputMissing, Message: "parse input coordinates", Err: err}
	}
	raw, err := readSSETool(ctx.Path("sse.out"))
	if err != nil {
		return &pipeline.StageError{Stage: 11, Kind: pipeline.InputMissing, Message: "read SSE assignment tool output", Err: err}
	}
	_, elements := sse.Assign(s.N(), raw)
	if err := writeSSEElements(ctx.Path("sse.elements"), elements); err != nil {
		return &pipeline.StageError{Stage: 11, Kind: pipeline.ParseError, Message: "write SSE elements", Err: err}
	}
	return nil
}

func Stage11Outputs(ctx *pipeline.StageContext) []string {
	return []string{ctx.Path("sse.elements")}
}

func readSSETool(path string) (map[resrange.ResId]sse.Type, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	out := make(map[resrange.ResId]sse.Type)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		t := fields[1][0]
		out[resrange.ResId(id)] = sse.Type(t)
	}
	return out, sc.Err()
}

func writeSSEElements(path string, elements []sse.Element) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, e := range elements {
		if _, err := fmt.Fprintf(w, "%d\t%c\t%d\t%d\n", e.ID, e.Type, e.Start, e.End); err != nil {
			return err
		}
	}
	return w.Flush()
}

func readSSEElements(path string) ([]sse.Element, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []sse.Element
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 {
			continue
		}
		id, _ := strconv.Atoi(fields[0])
		start, _ := strconv.Atoi(fields[2])
		end, _ := strconv.Atoi(fields[3])
		out = append(out, sse.Element{ID: id, Type: sse.Type(fields[1][0]), Start: resrange.ResId(start), End: resrange.ResId(end)})
	}
	return out, sc.Err()
}
