package hits

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarat-asymmetrica/dpam/internal/resrange"
)

// PairwiseAlignment is the parsed result of one pairwise structural
// alignment tool invocation (stage 7's inner loop).
type PairwiseAlignment struct {
	ZScore  float64
	QResids []resrange.ResId
	TResids []resrange.ResId
}

// NumPairs is the number of matched residue pairs.
func (p PairwiseAlignment) NumPairs() int { return len(p.QResids) }

// ParsePairwiseAlignment reads one pairwise structural-alignment tool
// output: a header line "Z-score: <float>" (any leading '#' or blank lines
// tolerated before it), followed by "q_res<TAB>t_res" pair lines until EOF
// or a blank line. A tool that produced no usable alignment (crash, or an
// empty result) yields a zero-pair PairwiseAlignment, not an error — per
// spec.md §4.G's failure semantics, a per-template crash records zero hits
// and the engine continues.
func ParsePairwiseAlignment(r io.Reader) (PairwiseAlignment, error) {
	var pa PairwiseAlignment
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	foundHeader := false
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			if foundHeader {
				break
			}
			continue
		}
		if !foundHeader {
			z, ok := parseZScoreHeader(line)
			if !ok {
				continue // tolerate stray preamble lines
			}
			pa.ZScore = z
			foundHeader = true
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		q, err1 := strconv.Atoi(fields[0])
		t, err2 := strconv.Atoi(fields[1])
		if err1 != nil || err2 != nil {
			continue
		}
		pa.QResids = append(pa.QResids, resrange.ResId(q))
		pa.TResids = append(pa.TResids, resrange.ResId(t))
	}
	if err := sc.Err(); err != nil {
		return PairwiseAlignment{}, fmt.Errorf("hits: scan pairwise alignment: %w", err)
	}
	return pa, nil
}

func parseZScoreHeader(line string) (float64, bool) {
	lower := strings.ToLower(line)
	if !strings.HasPrefix(lower, "z-score:") && !strings.HasPrefix(lower, "z-score=") {
		return 0, false
	}
	rest := strings.TrimSpace(line[len("Z-score:"):])
	v, err := strconv.ParseFloat(rest, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
