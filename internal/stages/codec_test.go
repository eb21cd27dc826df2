package stages

import (
	"path/filepath"
	"testing"

	"github.com/sarat-asymmetrica/dpam/internal/evidence"
	"github.com/sarat-asymmetrica/dpam/internal/features"
	"github.com/sarat-asymmetrica/dpam/internal/hits"
	"github.com/sarat-asymmetrica/dpam/internal/partition"
	"github.com/sarat-asymmetrica/dpam/internal/resrange"
)

func sampleHit(templateID string, ch hits.Channel) hits.Hit {
	return hits.Hit{
		Channel:        ch,
		TemplateID:     templateID,
		ShortID:        "e1abcA1",
		HPath:          "1.1.1.1",
		Probability:    87.5,
		ZScore:         12.25,
		QueryResids:    resrange.New(1, 2, 3, 4, 5),
		TemplateResids: resrange.New(10, 11, 12, 13, 14),
		TemplateLength: 120,
	}
}

func TestWriteReadHitsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hits.txt")
	in := []hits.Hit{sampleHit("000000001", hits.Sequence), sampleHit("000000002", hits.Structural)}

	if err := writeHits(path, in); err != nil {
		t.Fatalf("writeHits: %v", err)
	}
	out, err := readHits(path)
	if err != nil {
		t.Fatalf("readHits: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d hits, got %d", len(in), len(out))
	}
	for i, h := range out {
		if h.TemplateID != in[i].TemplateID || h.Channel != in[i].Channel {
			t.Errorf("hit %d: got %+v, want %+v", i, h, in[i])
		}
		if resrange.Format(h.QueryResids) != resrange.Format(in[i].QueryResids) {
			t.Errorf("hit %d: query resids mismatch: %s vs %s", i, resrange.Format(h.QueryResids), resrange.Format(in[i].QueryResids))
		}
	}
}

func TestWriteReadScoredRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scored.txt")
	in := []evidence.Scored{
		{Hit: sampleHit("000000001", hits.Sequence), QScore: 0.75, ZTile: 0.9, QTile: 0.8, Rank: 1},
		{Hit: sampleHit("000000002", hits.Structural), QScore: -1, ZTile: -1, QTile: -1, Rank: 2},
	}

	if err := writeScored(path, in); err != nil {
		t.Fatalf("writeScored: %v", err)
	}
	out, err := readScored(path)
	if err != nil {
		t.Fatalf("readScored: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d rows, got %d", len(in), len(out))
	}
	for i, s := range out {
		if s.TemplateID != in[i].TemplateID || s.QScore != in[i].QScore || s.Rank != in[i].Rank {
			t.Errorf("row %d: got %+v, want %+v", i, s, in[i])
		}
	}
}

func TestWriteReadSupportRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "support.txt")
	in := []evidence.Support{
		{
			DomainID:   1,
			Sequence:   []evidence.Scored{{Hit: sampleHit("000000001", hits.Sequence), QScore: 0.5}},
			Structural: []evidence.Scored{{Hit: sampleHit("000000002", hits.Structural), QScore: 0.6}, {Hit: sampleHit("000000003", hits.Structural), QScore: 0.7}},
		},
		{DomainID: 2},
	}

	if err := writeSupport(path, in); err != nil {
		t.Fatalf("writeSupport: %v", err)
	}
	out, err := readSupport(path)
	if err != nil {
		t.Fatalf("readSupport: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d domains, got %d", len(in), len(out))
	}
	if out[0].DomainID != 1 || len(out[0].Sequence) != 1 || len(out[0].Structural) != 2 {
		t.Fatalf("domain 1 mismatch: %+v", out[0])
	}
	if out[0].Structural[1].TemplateID != "000000003" {
		t.Errorf("expected second structural hit 000000003, got %s", out[0].Structural[1].TemplateID)
	}
	if out[1].DomainID != 2 || len(out[1].Sequence) != 0 || len(out[1].Structural) != 0 {
		t.Fatalf("domain 2 (empty) mismatch: %+v", out[1])
	}
}

func TestWriteReadDomainsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domains.txt")
	in := []partition.Domain{
		{ID: 1, Residues: resrange.New(1, 2, 3, 4, 5)},
		{ID: 2, Residues: resrange.New(20, 21, 22)},
	}

	if err := writeDomains(path, in); err != nil {
		t.Fatalf("writeDomains: %v", err)
	}
	out, err := readDomains(path)
	if err != nil {
		t.Fatalf("readDomains: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 domains, got %d", len(out))
	}
	if resrange.Format(out[1].Residues) != resrange.Format(in[0].Residues) {
		t.Errorf("domain 1 residues mismatch: %s", resrange.Format(out[1].Residues))
	}
	if resrange.Format(out[2].Residues) != resrange.Format(in[1].Residues) {
		t.Errorf("domain 2 residues mismatch: %s", resrange.Format(out[2].Residues))
	}
}

func TestWriteReadFeaturesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features.txt")
	in := []features.Feature{
		{
			DomainID: 1, DomainRange: "1-50", TGroup: "1.1.1.1", TemplateID: "000000001", DomainLength: 50,
			Helices: 2, Strands: 3,
			HHProb: 87.5, HHCov: 0.8, HHRank: 1,
			DZ: 12.25, DQ: 0.6, DZTile: 0.9, DQTile: 0.7, DRank: 1,
			CDiff: 0.1, CCov: 0.2,
		},
	}
	vec := in[0].Vector()

	if err := writeFeatures(path, in); err != nil {
		t.Fatalf("writeFeatures: %v", err)
	}
	out, err := readFeatures(path)
	if err != nil {
		t.Fatalf("readFeatures: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 row, got %d", len(out))
	}
	if out[0].DomainID != 1 || out[0].TemplateID != "000000001" || out[0].DomainLength != 50 {
		t.Fatalf("unexpected row: %+v", out[0])
	}
	if out[0].Vector != vec {
		t.Errorf("vector mismatch: got %v, want %v", out[0].Vector, vec)
	}
}
