package stages

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/sarat-asymmetrica/dpam/internal/geomidx"
	"github.com/sarat-asymmetrica/dpam/internal/merge"
	"github.com/sarat-asymmetrica/dpam/internal/model"
	"github.com/sarat-asymmetrica/dpam/internal/pipeline"
	"github.com/sarat-asymmetrica/dpam/internal/resrange"
)

// cellSize is the spatial index's uniform grid cell width, matched to
// stage 21's contact-distance radius so a contact can never span more
// than one cell boundary in the common case.
const cellSize = 8.0

// Stage19_22Merge runs the full candidate-merge pipeline: propose
// candidates from stage 18's mapped template ranges (stage 19), extract
// each candidate domain's coordinates (stage 20), judge connectivity
// (stage 21), and close the judged pairs into merged entities (stage 22).
func Stage19_22Merge(ctx *pipeline.StageContext) *pipeline.StageError {
	mapped, err := readMapped(ctx.Path("mapped"))
	if err != nil {
		return &pipeline.StageError{Stage: 19, Kind: pipeline.InputMissing, Message: "read mapped ranges", Err: err}
	}
	confident, err := readConfident(ctx.Path("confident"))
	if err != nil {
		return &pipeline.StageError{Stage: 19, Kind: pipeline.InputMissing, Message: "read confident predictions", Err: err}
	}
	domains, err := readDomains(ctx.Path("domains"))
	if err != nil {
		return &pipeline.StageError{Stage: 19, Kind: pipeline.InputMissing, Message: "read domains", Err: err}
	}
	s, err := model.ParsePDB(ctx.Path("pdb"))
	if err != nil {
		return &pipeline.StageError{Stage: 19, Kind: pipeline.InputMissing, Message: "parse input coordinates", Err: err}
	}

	probByPair := make(map[[2]string]float64)
	for _, c := range confident {
		probByPair[[2]string{strconv.Itoa(c.DomainID), c.TemplateID}] = c.Probability
	}

	preds := make([]merge.DomainPrediction, 0, len(mapped))
	for _, m := range mapped {
		if m.TemplateRange == "na" {
			continue
		}
		tr, err := resrange.Parse(m.TemplateRange)
		if err != nil {
			continue
		}
		prob := probByPair[[2]string{strconv.Itoa(m.DomainID), m.TemplateID}]
		preds = append(preds, merge.DomainPrediction{
			DomainID: m.DomainID, TemplateID: m.TemplateID,
			Probability: prob, TemplateRange: tr,
		})
	}

	pairs := merge.ProposeCandidates(preds)

	residueSets := make(map[int]resrange.Set, len(domains))
	for id, d := range domains {
		residueSets[id] = d.Residues
	}

	extracted := merge.ExtractDomains(s, residueSets, pairs)
	extractedIDs := make([]int, 0, len(extracted))
	for id := range extracted {
		extractedIDs = append(extractedIDs, id)
	}
	sort.Ints(extractedIDs)
	for _, id := range extractedIDs {
		if err := model.WritePDB(domainPDBPath(ctx, id), extracted[id]); err != nil {
			return &pipeline.StageError{Stage: 20, Kind: pipeline.ParseError, Message: fmt.Sprintf("write domain %d coordinates", id), Err: err}
		}
	}
	if err := writeDomainManifest(ctx.Path("step20_domains"), extractedIDs); err != nil {
		return &pipeline.StageError{Stage: 20, Kind: pipeline.ParseError, Message: "write domain extraction manifest", Err: err}
	}

	idx := geomidx.Build(s, cellSize)
	structured := s.StructuredResidues()

	judged := make([]merge.JudgedPair, 0, len(pairs))
	for _, p := range pairs {
		a, okA := residueSets[p.DomainA]
		b, okB := residueSets[p.DomainB]
		if !okA || !okB {
			continue
		}
		j := merge.Compare(s, idx, structured, a, b)
		judged = append(judged, merge.JudgedPair{DomainA: p.DomainA, DomainB: p.DomainB, Judgment: j})
	}

	merged := merge.CloseComponents(judged, residueSets)
	if err := writeMerged(ctx.Path("merged"), merged); err != nil {
		return &pipeline.StageError{Stage: 22, Kind: pipeline.ParseError, Message: "write merged domains", Err: err}
	}
	return nil
}

func Stage19_22Outputs(ctx *pipeline.StageContext) []string {
	return []string{ctx.Path("merged"), ctx.Path("step20_domains")}
}

// domainPDBPath is stage 20's per-domain coordinate file for domain id,
// named after the chain prefix the rest of the pipeline's stage outputs use.
func domainPDBPath(ctx *pipeline.StageContext, id int) string {
	return ctx.Path(fmt.Sprintf("step20_D%d.pdb", id))
}

// writeDomainManifest records which domain IDs stage 20 extracted, so later
// inspection (or a resumed run) can find each domain's coordinate file
// without recomputing the candidate-pair set.
func writeDomainManifest(path string, ids []int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, id := range ids {
		if _, err := fmt.Fprintf(w, "%d\n", id); err != nil {
			return err
		}
	}
	return w.Flush()
}

type mappedRow struct {
	DomainID      int
	TemplateID    string
	QueryRange    string
	TemplateRange string
}

func readMapped(path string) ([]mappedRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []mappedRow
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := splitTab(sc.Text())
		if len(fields) < 4 {
			continue
		}
		domainID, _ := strconv.Atoi(fields[0])
		out = append(out, mappedRow{DomainID: domainID, TemplateID: fields[1], QueryRange: fields[2], TemplateRange: fields[3]})
	}
	return out, sc.Err()
}

func writeMerged(path string, merged []merge.Merged) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for i, m := range merged {
		ids := make([]string, len(m.DomainIDs))
		for j, id := range m.DomainIDs {
			ids[j] = strconv.Itoa(id)
		}
		sort.Strings(ids)
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, strings.Join(ids, ","), resrange.Format(m.Residues)); err != nil {
			return err
		}
	}
	return w.Flush()
}

func readMerged(path string) ([]merge.Merged, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []merge.Merged
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := splitTab(sc.Text())
		if len(fields) < 3 {
			continue
		}
		res, err := resrange.Parse(fields[2])
		if err != nil {
			return nil, err
		}
		ids := strings.Split(fields[1], ",")
		domainIDs := make([]int, 0, len(ids))
		for _, idStr := range ids {
			id, err := strconv.Atoi(idStr)
			if err != nil {
				continue
			}
			domainIDs = append(domainIDs, id)
		}
		out = append(out, merge.Merged{DomainIDs: domainIDs, Residues: res})
	}
	return out, sc.Err()
}

