package hits

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarat-asymmetrica/dpam/internal/resrange"
)

// ParseHHsearch reads sequence-profile search output (stage 2's tool-native
// file). Each data row is tab-separated:
//
//	template_id  probability  query_resids(csv)  template_resids(csv)  template_length
//
// Header lines (leading '#') and trailing blank lines are tolerated. Hits
// with fewer than MinAlignedResidues paired residues are dropped.
func ParseHHsearch(path string) ([]Hit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseHHsearchReader(f)
}

func parseHHsearchReader(r io.Reader) ([]Hit, error) {
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
			continue // tolerate malformed row; parser never raises across its boundary
		}
		prob, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			continue
		}
		qres, err := parseCSVResids(fields[2])
		if err != nil {
			continue
		}
		tres, err := parseCSVResids(fields[3])
		if err != nil {
			continue
		}
		tlen, _ := strconv.Atoi(fields[4])
		if qres.Len() < MinAlignedResidues || tres.Len() < MinAlignedResidues {
			continue
		}
		out = append(out, Hit{
			Channel:        Sequence,
			TemplateID:     fields[0],
			Probability:    prob,
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

func parseCSVResids(s string) (resrange.Set, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "na" {
		return resrange.Set{}, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]resrange.ResId, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return resrange.Set{}, err
		}
		ids = append(ids, resrange.ResId(v))
	}
	return resrange.New(ids...), nil
}
