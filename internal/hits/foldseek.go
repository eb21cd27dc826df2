package hits

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarat-asymmetrica/dpam/internal/resrange"
)

// ECODMaps maps, per template, raw aligner residue numbers to canonical
// ECOD template numbering. A nil or missing entry means "no remapping
// needed" (identity).
type ECODMaps map[string]map[int]int

// ParseFoldseek reads fast-structure search output (stage 3's tool-native
// file), the same tab-separated shape as ParseHHsearch but with z_score in
// place of probability:
//
//	template_id  z_score  query_resids(csv)  raw_template_resids(csv)  template_length
//
// Template residues are remapped to canonical numbering via maps before
// being attached to the Hit.
func ParseFoldseek(path string, maps ECODMaps) ([]Hit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseFoldseekReader(f, maps)
}

func parseFoldseekReader(r io.Reader, maps ECODMaps) ([]Hit, error) {
	var out []Hit
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 5 {
			continue
		}
		z, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			continue
		}
		qres, err := parseCSVResids(fields[2])
		if err != nil {
			continue
		}
		rawT, err := parseRawCSVInts(fields[3])
		if err != nil {
			continue
		}
		tlen, _ := strconv.Atoi(fields[4])
		if qres.Len() < MinAlignedResidues || len(rawT) < MinAlignedResidues {
			continue
		}
		tres := remap(fields[0], rawT, maps)
		out = append(out, Hit{
			Channel:        Structural,
			TemplateID:     fields[0],
			ZScore:         z,
			QueryResids:    qres,
			TemplateResids: tres,
			TemplateLength: tlen,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseRawCSVInts(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "na" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func remap(templateID string, raw []int, maps ECODMaps) resrange.Set {
	m := maps[templateID]
	ids := make([]resrange.ResId, 0, len(raw))
	for _, r := range raw {
		if m != nil {
			if canon, ok := m[r]; ok {
				ids = append(ids, resrange.ResId(canon))
				continue
			}
		}
		ids = append(ids, resrange.ResId(r))
	}
	return resrange.New(ids...)
}

// FilterBestPerTemplate implements stage 4: within each template, retain
// only the single hit with the largest |query_resids|, then drop hits
// covering fewer than MinAlignedResidues residues (already true of every
// Hit this package parses, but re-checked here for hits built by callers
// directly).
func FilterBestPerTemplate(in []Hit) []Hit {
	best := make(map[string]Hit)
	order := make([]string, 0, len(in))
	for _, h := range in {
		if h.QueryResids.Len() < MinAlignedResidues {
			continue
		}
		cur, ok := best[h.TemplateID]
		if !ok {
			order = append(order, h.TemplateID)
			best[h.TemplateID] = h
			continue
		}
		if h.QueryResids.Len() > cur.QueryResids.Len() {
			best[h.TemplateID] = h
		}
	}
	out := make([]Hit, 0, len(order))
	for _, id := range order {
		out = append(out, best[id])
	}
	return out
}
