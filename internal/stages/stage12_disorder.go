package stages

import (
	"os"

	"github.com/sarat-asymmetrica/dpam/internal/model"
	"github.com/sarat-asymmetrica/dpam/internal/pipeline"
	"github.com/sarat-asymmetrica/dpam/internal/resrange"
)

// plddtFloor and paeWindowRadius/paeUncertainty implement stage 12's
// disorder call: ResId i is disordered iff its own pLDDT sits below the
// floor AND its local window's mean PAE to neighboring residues indicates
// the region's relative placement is still uncertain -- a low-confidence
// coordinate in a locally well-pinned neighborhood is not disorder, it is
// just a flexible side chain; a low-confidence coordinate surrounded by
// high mutual PAE is disorder.
const (
	plddtFloor      = 50.0
	paeWindowRadius = 5
	paeUncertainty  = 10.0
)

// Stage12Disorder computes the chain's disordered residue set and writes
// it as a range string for stage 13's segment construction to consume.
func Stage12Disorder(ctx *pipeline.StageContext) *pipeline.StageError {
	s, err := model.ParsePDB(ctx.Path("pdb"))
	if err != nil {
		return &pipeline.StageError{Stage: 12, Kind: pipeline.InputMissing, Message: "parse input coordinates", Err: err}
	}
	if err := model.ReadPAE(ctx.Path("pae.json"), s); err != nil {
		return &pipeline.StageError{Stage: 12, Kind: pipeline.InputMissing, Message: "parse PAE matrix", Err: err}
	}

	var ids []resrange.ResId
	n := s.N()
	for i := 1; i <= n; i++ {
		id := resrange.ResId(i)
		if s.PLDDTAt(id) >= plddtFloor {
			continue
		}
		if localPAEUncertain(s, id, n) {
			ids = append(ids, id)
		}
	}
	disordered := resrange.New(ids...)
	if err := os.WriteFile(ctx.Path("disorder"), []byte(resrange.Format(disordered)+"\n"), 0o644); err != nil {
		return &pipeline.StageError{Stage: 12, Kind: pipeline.ParseError, Message: "write disorder range", Err: err}
	}
	return nil
}

func Stage12Outputs(ctx *pipeline.StageContext) []string {
	return []string{ctx.Path("disorder")}
}

func localPAEUncertain(s *model.Structure, id resrange.ResId, n int) bool {
	lo := int(id) - paeWindowRadius
	if lo < 1 {
		lo = 1
	}
	hi := int(id) + paeWindowRadius
	if hi > n {
		hi = n
	}
	var sum float64
	var count int
	for j := lo; j <= hi; j++ {
		if resrange.ResId(j) == id {
			continue
		}
		sum += s.PAEAt(id, resrange.ResId(j))
		count++
	}
	if count == 0 {
		return false
	}
	return sum/float64(count) > paeUncertainty
}

func readDisorder(path string) (resrange.Set, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return resrange.Set{}, err
	}
	return resrange.Parse(trimNewline(string(raw)))
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
