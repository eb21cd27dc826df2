package model

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/sarat-asymmetrica/dpam/internal/resrange"
)

// WriteBackbonePDB emits a deterministic, fixed-width ATOM record stream for s,
// ordered by residue id then backbone atom order (N, CA, C, O). Generic
// placeholder atom names are never written: real names are required by the
// downstream secondary-structure assigner.
func WriteBackbonePDB(path string, s *Structure) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("model: create coordinate file: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := writePDB(w, s); err != nil {
		return err
	}
	return w.Flush()
}

func writePDB(w io.Writer, s *Structure) error {
	ids := make([]resrange.ResId, 0, len(s.Residues))
	for id := range s.Residues {
		ids = append(ids, id)
	}
	sortResIds(ids)

	serial := 1
	for _, id := range ids {
		res := s.Residues[id]
		for _, a := range []*Atom{res.N, res.CA, res.C, res.O} {
			if a == nil {
				continue
			}
			if _, err := fmt.Fprintf(w,
				"ATOM  %5d %4s %3s A%4d    %8.3f%8.3f%8.3f  1.00%6.2f           %-2s\n",
				serial, padAtomName(a.Name), resName3(res.Code), int(id),
				a.X, a.Y, a.Z, res.PLDDT, a.Element); err != nil {
				return fmt.Errorf("model: write atom record: %w", err)
			}
			serial++
		}
	}
	_, err := fmt.Fprintln(w, "END")
	return err
}

func sortResIds(ids []resrange.ResId) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}

func padAtomName(name string) string {
	// PDB convention: 1-2 char names get a leading space; keep it simple
	// and consistent since names are always real backbone atoms here.
	if len(name) >= 4 {
		return name[:4]
	}
	switch len(name) {
	case 1:
		return " " + name + "  "
	case 2:
		return " " + name + " "
	case 3:
		return " " + name
	default:
		return name
	}
}

var backboneThreeLetter = map[byte]string{
	'A': "ALA", 'R': "ARG", 'N': "ASN", 'D': "ASP", 'C': "CYS",
	'Q': "GLN", 'E': "GLU", 'G': "GLY", 'H': "HIS", 'I': "ILE",
	'L': "LEU", 'K': "LYS", 'M': "MET", 'F': "PHE", 'P': "PRO",
	'S': "SER", 'T': "THR", 'W': "TRP", 'Y': "TYR", 'V': "VAL",
}

func resName3(code byte) string {
	if n, ok := backboneThreeLetter[code]; ok {
		return n
	}
	return "UNK"
}
