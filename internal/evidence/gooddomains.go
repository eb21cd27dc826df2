package evidence

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// GoodDomainRow is one row of the unified goodDomains format (stage 10):
// one row per forwarded hit, tab-separated, source channel preserved.
type GoodDomainRow struct {
	Type           string // "sequence" | "structure"
	QueryID        string
	TemplateUID    string
	ShortID        string
	TGroup         string
	Score          float64 // probability (sequence) or z-score (structural)
	Coverage       float64
	TemplateLength int
	TemplateRange  string
	QueryRange     string
}

// BuildGoodDomains flattens stage 9's per-domain support lists into the
// unified goodDomains row set, one row per forwarded hit. queryID is the
// chain identifier shared by every row.
func BuildGoodDomains(queryID string, support []Support) []GoodDomainRow {
	var rows []GoodDomainRow
	for _, sp := range support {
		rows = append(rows, rowsFor(queryID, sp.Sequence, "sequence")...)
		rows = append(rows, rowsFor(queryID, sp.Structural, "structure")...)
	}
	return rows
}

func rowsFor(queryID string, scored []Scored, typ string) []GoodDomainRow {
	out := make([]GoodDomainRow, 0, len(scored))
	for _, s := range scored {
		out = append(out, GoodDomainRow{
			Type:           typ,
			QueryID:        queryID,
			TemplateUID:    s.TemplateID,
			ShortID:        s.ShortID,
			TGroup:         hGroup(s.HPath),
			Score:          s.Score(),
			Coverage:       s.Coverage(),
			TemplateLength: s.TemplateLength,
			TemplateRange:  s.TemplateRange,
			QueryRange:     s.QueryRange,
		})
	}
	return out
}

// WriteGoodDomains writes rows in the canonical tab-separated goodDomains
// format: (type, query_id, template_uid, short_id, t_group, score,
// coverage, template_length, template_range, query_range).
func WriteGoodDomains(w io.Writer, rows []GoodDomainRow) error {
	bw := bufio.NewWriter(w)
	for _, r := range rows {
		_, err := fmt.Fprintf(bw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			r.Type, r.QueryID, r.TemplateUID, r.ShortID, r.TGroup,
			strconv.FormatFloat(r.Score, 'f', 4, 64),
			strconv.FormatFloat(r.Coverage, 'f', 4, 64),
			r.TemplateLength, r.TemplateRange, r.QueryRange)
		if err != nil {
			return fmt.Errorf("evidence: write goodDomains row: %w", err)
		}
	}
	return bw.Flush()
}
