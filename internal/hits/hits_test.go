package hits

import (
	"strings"
	"testing"
)

func TestParseHHsearchReader(t *testing.T) {
	data := "# header\n" +
		"000001234\t85.5\t1,2,3,4,5,6,7,8,9,10\t1,2,3,4,5,6,7,8,9,10\t120\n" +
		"000005678\t40.0\t1,2,3\t1,2,3\t80\n" + // fewer than 10 paired -> dropped
		"\n"
	hits, err := parseHHsearchReader(strings.NewReader(data))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 surviving hit, got %d", len(hits))
	}
	if hits[0].TemplateID != "000001234" || hits[0].Probability != 85.5 {
		t.Errorf("unexpected hit: %+v", hits[0])
	}
}

func TestParseFoldseekRemap(t *testing.T) {
	data := "000001234\t25.3\t1,2,3,4,5,6,7,8,9,10,11\t101,102,103,104,105,106,107,108,109,110,111\t200\n"
	maps := ECODMaps{"000001234": {101: 1, 102: 2}}
	hits, err := parseFoldseekReader(strings.NewReader(data), maps)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	tres := hits[0].TemplateResids.Slice()
	if tres[0] != 1 || tres[1] != 2 {
		t.Errorf("expected remapped residues, got %v", tres)
	}
	if tres[2] != 103 {
		t.Errorf("expected identity fallback for unmapped residue, got %v", tres[2])
	}
}

func TestFilterBestPerTemplate(t *testing.T) {
	small, _ := parseCSVResids("1,2,3,4,5,6,7,8,9,10")
	big, _ := parseCSVResids("1,2,3,4,5,6,7,8,9,10,11,12")
	in := []Hit{
		{TemplateID: "A", QueryResids: small},
		{TemplateID: "A", QueryResids: big},
		{TemplateID: "B", QueryResids: small},
	}
	out := FilterBestPerTemplate(in)
	if len(out) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(out))
	}
	for _, h := range out {
		if h.TemplateID == "A" && h.QueryResids.Len() != 12 {
			t.Errorf("expected the larger hit for template A, got len %d", h.QueryResids.Len())
		}
	}
}

func TestParsePairwiseAlignment(t *testing.T) {
	data := "Z-score: 12.5\n1\t101\n2\t102\n3\t103\n"
	pa, err := ParsePairwiseAlignment(strings.NewReader(data))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if pa.ZScore != 12.5 || pa.NumPairs() != 3 {
		t.Errorf("unexpected alignment: %+v", pa)
	}
}

func TestParsePairwiseAlignmentEmpty(t *testing.T) {
	pa, err := ParsePairwiseAlignment(strings.NewReader(""))
	if err != nil {
		t.Fatalf("empty input should not error: %v", err)
	}
	if pa.NumPairs() != 0 {
		t.Errorf("expected zero pairs for crashed/empty tool output")
	}
}
