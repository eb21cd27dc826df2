package stages

import (
	"fmt"

	"github.com/sarat-asymmetrica/dpam/internal/hits"
	"github.com/sarat-asymmetrica/dpam/internal/pipeline"
)

// Stage4FilterFoldseek parses stage 3's raw structural-search output and
// retains the single best (longest-aligned) hit per template.
func Stage4FilterFoldseek(ctx *pipeline.StageContext) *pipeline.StageError {
	raw, err := hits.ParseFoldseek(ctx.Path("foldseek.out"), nil)
	if err != nil {
		return &pipeline.StageError{Stage: 4, Kind: pipeline.ParseError, Message: "parse foldseek output", Err: err}
	}
	filtered := hits.FilterBestPerTemplate(raw)
	if err := writeHits(ctx.Path("struct_hits.filtered"), filtered); err != nil {
		return &pipeline.StageError{Stage: 4, Kind: pipeline.ParseError, Message: "write filtered structural hits", Err: err}
	}
	return nil
}

func Stage4Outputs(ctx *pipeline.StageContext) []string {
	return []string{ctx.Path("struct_hits.filtered")}
}

// Stage5MapECOD enriches each filtered structural hit with its ECOD
// hierarchy metadata (short_id, h.t.f path, template length) looked up
// from the reference store by template ID.
func Stage5MapECOD(ctx *pipeline.StageContext) *pipeline.StageError {
	filtered, err := readHits(ctx.Path("struct_hits.filtered"))
	if err != nil {
		return &pipeline.StageError{Stage: 5, Kind: pipeline.InputMissing, Message: "read filtered structural hits", Err: err}
	}
	if ctx.Ref == nil {
		return &pipeline.StageError{Stage: 5, Kind: pipeline.InputMissing, Message: "reference data store unavailable"}
	}
	mapped := make([]hits.Hit, 0, len(filtered))
	for _, h := range filtered {
		entry, ok, err := ctx.Ref.Lookup(h.TemplateID)
		if err != nil {
			return &pipeline.StageError{Stage: 5, Kind: pipeline.ParseError, Message: fmt.Sprintf("hierarchy lookup for %s", h.TemplateID), Err: err}
		}
		if ok {
			h.ShortID = entry.ShortID
			h.HPath = entry.HTFPath
		}
		if tlen, ok, err := ctx.Ref.TemplateLength(h.TemplateID); err == nil && ok {
			h.TemplateLength = tlen
		}
		mapped = append(mapped, h)
	}
	if err := writeHits(ctx.Path("struct_hits.mapped"), mapped); err != nil {
		return &pipeline.StageError{Stage: 5, Kind: pipeline.ParseError, Message: "write mapped structural hits", Err: err}
	}
	return nil
}

func Stage5Outputs(ctx *pipeline.StageContext) []string {
	return []string{ctx.Path("struct_hits.mapped")}
}

// Stage6DaliCandidates selects the distinct set of templates stage 7's
// iterative structural alignment will run against.
func Stage6DaliCandidates(ctx *pipeline.StageContext) *pipeline.StageError {
	mapped, err := readHits(ctx.Path("struct_hits.mapped"))
	if err != nil {
		return &pipeline.StageError{Stage: 6, Kind: pipeline.InputMissing, Message: "read mapped structural hits", Err: err}
	}
	seen := make(map[string]bool)
	f, ferr := createFile(ctx.Path("dali_candidates"))
	if ferr != nil {
		return &pipeline.StageError{Stage: 6, Kind: pipeline.ParseError, Message: "write DALI candidate list", Err: ferr}
	}
	defer f.Close()
	for _, h := range mapped {
		if seen[h.TemplateID] {
			continue
		}
		seen[h.TemplateID] = true
		if _, err := f.WriteString(h.TemplateID + "\n"); err != nil {
			return &pipeline.StageError{Stage: 6, Kind: pipeline.ParseError, Message: "write DALI candidate list", Err: err}
		}
	}
	return nil
}

func Stage6Outputs(ctx *pipeline.StageContext) []string {
	return []string{ctx.Path("dali_candidates")}
}
