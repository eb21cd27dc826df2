package stages

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sarat-asymmetrica/dpam/internal/evidence"
	"github.com/sarat-asymmetrica/dpam/internal/hits"
	"github.com/sarat-asymmetrica/dpam/internal/model"
	"github.com/sarat-asymmetrica/dpam/internal/partition"
	"github.com/sarat-asymmetrica/dpam/internal/pipeline"
	"github.com/sarat-asymmetrica/dpam/internal/resrange"
)

// parseStructAlignOutput reads the concatenated output of the structural
// alignment engine (stage 7): a run of records, each a ">templateID_iter"
// header carrying the iteration's z-score, followed by that iteration's
// "q_res<TAB>t_res" pair lines. Every iteration becomes its own structural
// Hit -- later iterations cover residues excised by earlier ones, so they
// are independent pieces of evidence for the same template, not duplicates.
func parseStructAlignOutput(path string) ([]hits.Hit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("stages: open %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)

	var out []hits.Hit
	var cur *hits.Hit
	var qids, tids []resrange.ResId
	flush := func() {
		if cur == nil {
			return
		}
		cur.QueryResids = resrange.New(qids...)
		cur.TemplateResids = resrange.New(tids...)
		out = append(out, *cur)
		cur = nil
		qids, tids = nil, nil
	}

	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, ">") {
			flush()
			fields := strings.Split(line, "\t")
			header := strings.TrimPrefix(fields[0], ">")
			templateID := header
			if idx := strings.LastIndex(header, "_"); idx >= 0 {
				templateID = header[:idx]
			}
			var z float64
			if len(fields) > 1 {
				z, _ = strconv.ParseFloat(fields[1], 64)
			}
			h := hits.Hit{Channel: hits.Structural, TemplateID: templateID, ZScore: z}
			cur = &h
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || cur == nil {
			continue
		}
		q, err1 := strconv.Atoi(fields[0])
		t, err2 := strconv.Atoi(fields[1])
		if err1 != nil || err2 != nil {
			continue
		}
		qids = append(qids, resrange.ResId(q))
		tids = append(tids, resrange.ResId(t))
	}
	flush()
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("stages: scan %s: %w", path, err)
	}
	return out, nil
}

// Stage8ScoreHits combines the sequence-profile channel (stage 2) and the
// structural channel (stage 7, enriched with ECOD metadata via stage 5's
// lookups) into position-normalized Scored hits.
func Stage8ScoreHits(ctx *pipeline.StageContext) *pipeline.StageError {
	seqHits, err := hits.ParseHHsearch(ctx.Path("hhsearch.out"))
	if err != nil {
		return &pipeline.StageError{Stage: 8, Kind: pipeline.ParseError, Message: "parse sequence hits", Err: err}
	}
	structHits, err := parseStructAlignOutput(ctx.Path("struct_align.out"))
	if err != nil {
		return &pipeline.StageError{Stage: 8, Kind: pipeline.InputMissing, Message: "parse structural alignment output", Err: err}
	}
	if ctx.Ref != nil {
		for i := range structHits {
			entry, ok, lerr := ctx.Ref.Lookup(structHits[i].TemplateID)
			if lerr == nil && ok {
				structHits[i].ShortID = entry.ShortID
				structHits[i].HPath = entry.HTFPath
			}
			if tlen, ok, lerr := ctx.Ref.TemplateLength(structHits[i].TemplateID); lerr == nil && ok {
				structHits[i].TemplateLength = tlen
			}
		}
	}
	all := append(seqHits, structHits...)

	scored := evidence.ScoreHits(all, ctx.Ref)
	if err := writeScored(ctx.Path("scored_hits"), scored); err != nil {
		return &pipeline.StageError{Stage: 8, Kind: pipeline.ParseError, Message: "write scored hits", Err: err}
	}
	return nil
}

func Stage8Outputs(ctx *pipeline.StageContext) []string {
	return []string{ctx.Path("scored_hits")}
}

// preliminaryDomain is stage 9's "predicted domain" when no partition has
// run yet (it runs at stage 13): the whole chain's structured residue
// range, so every hit is considered for forwarding against one shared
// covered-residue tally. Spec: "iterate over predicted domains (from a
// preliminary stage or directly over hits grouped by query residues)".
func preliminaryDomain(ctx *pipeline.StageContext) (partition.Domain, error) {
	s, err := model.ParsePDB(ctx.Path("pdb"))
	if err != nil {
		return partition.Domain{}, err
	}
	return partition.Domain{ID: 1, Residues: s.StructuredResidues()}, nil
}

// Stage9Support computes the preliminary domain's sequence/structural
// support tallies (evidence.GetSupport) ahead of stage 10's good-domain
// summary.
func Stage9Support(ctx *pipeline.StageContext) *pipeline.StageError {
	scored, err := readScored(ctx.Path("scored_hits"))
	if err != nil {
		return &pipeline.StageError{Stage: 9, Kind: pipeline.InputMissing, Message: "read scored hits", Err: err}
	}
	dom, err := preliminaryDomain(ctx)
	if err != nil {
		return &pipeline.StageError{Stage: 9, Kind: pipeline.InputMissing, Message: "parse input coordinates", Err: err}
	}
	support := evidence.GetSupport([]partition.Domain{dom}, scored)
	if err := writeSupport(ctx.Path("support"), support); err != nil {
		return &pipeline.StageError{Stage: 9, Kind: pipeline.ParseError, Message: "write support", Err: err}
	}
	return nil
}

func Stage9Outputs(ctx *pipeline.StageContext) []string {
	return []string{ctx.Path("support")}
}

// Stage10GoodDomains assembles the tab-separated good-domains summary
// (evidence.BuildGoodDomains / WriteGoodDomains) from stage 9's support
// lists. No later stage reads it back: stage 13 reads the support file.
func Stage10GoodDomains(ctx *pipeline.StageContext) *pipeline.StageError {
	support, err := readSupport(ctx.Path("support"))
	if err != nil {
		return &pipeline.StageError{Stage: 10, Kind: pipeline.InputMissing, Message: "read support", Err: err}
	}
	rows := evidence.BuildGoodDomains(ctx.Chain, support)
	f, ferr := createFile(ctx.Path("goodDomains"))
	if ferr != nil {
		return &pipeline.StageError{Stage: 10, Kind: pipeline.ParseError, Message: "write good domains", Err: ferr}
	}
	defer f.Close()
	if err := evidence.WriteGoodDomains(f, rows); err != nil {
		return &pipeline.StageError{Stage: 10, Kind: pipeline.ParseError, Message: "write good domains", Err: err}
	}
	return nil
}

func Stage10Outputs(ctx *pipeline.StageContext) []string {
	return []string{ctx.Path("goodDomains")}
}
