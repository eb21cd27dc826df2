package model

import (
	"path/filepath"
	"testing"

	"github.com/sarat-asymmetrica/dpam/internal/resrange"
)

func writeFixture(t *testing.T, dir string) *Structure {
	t.Helper()
	s := &Structure{Name: "fixture", Residues: make(map[resrange.ResId]*Residue)}
	for i := 1; i <= 3; i++ {
		id := resrange.ResId(i)
		res := &Residue{ResId: id, Code: 'A', PLDDT: 90.0}
		base := float64(i) * 3.8
		res.N = &Atom{Name: "N", Element: "N", ResId: id, X: base, Y: 0, Z: 0}
		res.CA = &Atom{Name: "CA", Element: "C", ResId: id, X: base + 1, Y: 0, Z: 0}
		res.C = &Atom{Name: "C", Element: "C", ResId: id, X: base + 2, Y: 0, Z: 0}
		res.O = &Atom{Name: "O", Element: "O", ResId: id, X: base + 3, Y: 0, Z: 0}
		s.Residues[id] = res
		s.Atoms = append(s.Atoms, res.N, res.CA, res.C, res.O)
	}
	s.Seq = []byte{'A', 'A', 'A'}
	path := filepath.Join(dir, "fixture.pdb")
	if err := WritePDB(path, s); err != nil {
		t.Fatalf("WritePDB: %v", err)
	}
	got, err := ParsePDB(path)
	if err != nil {
		t.Fatalf("ParsePDB: %v", err)
	}
	return got
}

func TestWriteParseRoundTrip(t *testing.T) {
	s := writeFixture(t, t.TempDir())
	if s.N() != 3 {
		t.Fatalf("N() = %d, want 3", s.N())
	}
	if !s.Residues[2].Structured() {
		t.Errorf("residue 2 should be structured")
	}
	if got := s.PLDDTAt(1); got < 89 || got > 91 {
		t.Errorf("pLDDT round-trip = %v, want ~90", got)
	}
}

func TestDistance(t *testing.T) {
	s := writeFixture(t, t.TempDir())
	d := s.Distance(1, 2)
	if d <= 0 {
		t.Errorf("Distance(1,2) = %v, want > 0", d)
	}
	if s.Distance(1, 1) != 0 {
		t.Errorf("Distance(1,1) should be 0")
	}
}

func TestStructuredResidues(t *testing.T) {
	s := writeFixture(t, t.TempDir())
	structured := s.StructuredResidues()
	if structured.Len() != 3 {
		t.Errorf("expected 3 structured residues, got %d", structured.Len())
	}
}
