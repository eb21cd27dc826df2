// Package model is the in-memory representation of a predicted chain:
// atomic coordinates, per-atom metadata, per-residue confidence, and the
// residue-pair predicted-aligned-error matrix. Adapted from the teacher's
// PDB parser (backend/internal/parser/pdb_parser.go) and extended with the
// confidence channels this pipeline's later stages depend on.
package model

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/sarat-asymmetrica/dpam/internal/resrange"
)

// Atom is a single atomic record. Atom names and element symbols are
// preserved verbatim; the downstream secondary-structure assigner requires
// real backbone names (N, CA, C, O), so placeholder names are never emitted
// by the writer.
type Atom struct {
	Serial  int
	Name    string
	Element string
	ResId   resrange.ResId
	X, Y, Z float64
}

// Residue groups the backbone atoms for one residue position, plus the
// per-residue confidence channel.
type Residue struct {
	ResId resrange.ResId
	Code  byte // one-letter amino acid code, 'X' if unknown
	N     *Atom
	CA    *Atom
	C     *Atom
	O     *Atom
	PLDDT float64
}

// Structured reports whether the residue has the backbone atoms (N, CA, C,
// O) required for secondary-structure assignment.
func (r *Residue) Structured() bool {
	return r.N != nil && r.CA != nil && r.C != nil && r.O != nil
}

// Structure is the complete per-chain model: sequence, atoms, residues, and
// the pair-confidence matrix. Invariant: ResId in [1, N] for every atom,
// len(Seq) == N.
type Structure struct {
	Name     string
	Seq      []byte // 1-indexed access via Seq[id-1]
	Residues map[resrange.ResId]*Residue
	Atoms    []*Atom
	PAE      [][]float64 // PAE[i-1][j-1]; nonnegative, lower = more confident
}

// N returns the chain length.
func (s *Structure) N() int { return len(s.Seq) }

// StructuredResidues returns the set of residues carrying a full backbone.
func (s *Structure) StructuredResidues() resrange.Set {
	ids := make([]resrange.ResId, 0, len(s.Residues))
	for id, r := range s.Residues {
		if r.Structured() {
			ids = append(ids, id)
		}
	}
	return resrange.New(ids...)
}

// PLDDTAt returns the per-residue confidence, or 0 if the residue is absent.
func (s *Structure) PLDDTAt(id resrange.ResId) float64 {
	if r, ok := s.Residues[id]; ok {
		return r.PLDDT
	}
	return 0
}

// PAEAt returns PAE[i,j], or a large sentinel value if either index is out
// of the matrix's range (treated as maximally uncertain).
func (s *Structure) PAEAt(i, j resrange.ResId) float64 {
	ii, jj := int(i)-1, int(j)-1
	if s.PAE == nil || ii < 0 || jj < 0 || ii >= len(s.PAE) || jj >= len(s.PAE[ii]) {
		return 1e6
	}
	return s.PAE[ii][jj]
}

// Distance returns the CA-CA Euclidean distance between two residues, or a
// large sentinel if either lacks a CA atom.
func (s *Structure) Distance(i, j resrange.ResId) float64 {
	ri, okI := s.Residues[i]
	rj, okJ := s.Residues[j]
	if !okI || !okJ || ri.CA == nil || rj.CA == nil {
		return 1e6
	}
	dx := ri.CA.X - rj.CA.X
	dy := ri.CA.Y - rj.CA.Y
	dz := ri.CA.Z - rj.CA.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// ParsePDB reads a standardized coordinate file (ATOM records with real
// atom names) and the one-letter sequence. pLDDT is read from the B-factor
// column per AlphaFold convention (SPEC_FULL.md §5).
func ParsePDB(path string) (*Structure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("model: open coordinate file: %w", err)
	}
	defer f.Close()
	return parsePDBReader(f, path)
}

func parsePDBReader(f *os.File, name string) (*Structure, error) {
	st := &Structure{
		Name:     name,
		Residues: make(map[resrange.ResId]*Residue),
	}
	maxResId := resrange.ResId(0)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < 6 {
			continue
		}
		rec := strings.TrimRight(line[:6], " ")
		if rec != "ATOM" && rec != "HETATM" {
			continue
		}
		atom, resId, aaCode, plddt, err := parseAtomLine(line)
		if err != nil {
			continue // tolerate malformed lines, per spec §4.C tolerance
		}
		st.Atoms = append(st.Atoms, atom)
		res, ok := st.Residues[resId]
		if !ok {
			res = &Residue{ResId: resId, Code: aaCode, PLDDT: plddt}
			st.Residues[resId] = res
		}
		switch strings.TrimSpace(atom.Name) {
		case "N":
			res.N = atom
		case "CA":
			res.CA = atom
		case "C":
			res.C = atom
		case "O":
			res.O = atom
		}
		if resId > maxResId {
			maxResId = resId
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("model: scan coordinate file: %w", err)
	}

	st.Seq = make([]byte, maxResId)
	for i := range st.Seq {
		st.Seq[i] = 'X'
	}
	for id, res := range st.Residues {
		if int(id) >= 1 && int(id) <= len(st.Seq) {
			st.Seq[id-1] = res.Code
		}
	}
	return st, nil
}

func parseAtomLine(line string) (*Atom, resrange.ResId, byte, float64, error) {
	if len(line) < 54 {
		return nil, 0, 0, 0, fmt.Errorf("model: atom line too short")
	}
	serial, err := strconv.Atoi(strings.TrimSpace(line[6:11]))
	if err != nil {
		return nil, 0, 0, 0, fmt.Errorf("model: bad serial: %w", err)
	}
	name := strings.TrimSpace(line[12:16])
	resName := strings.TrimSpace(line[17:20])
	resSeq, err := strconv.Atoi(strings.TrimSpace(line[22:26]))
	if err != nil {
		return nil, 0, 0, 0, fmt.Errorf("model: bad resSeq: %w", err)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(line[30:38]), 64)
	if err != nil {
		return nil, 0, 0, 0, fmt.Errorf("model: bad x: %w", err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(line[38:46]), 64)
	if err != nil {
		return nil, 0, 0, 0, fmt.Errorf("model: bad y: %w", err)
	}
	z, err := strconv.ParseFloat(strings.TrimSpace(line[46:54]), 64)
	if err != nil {
		return nil, 0, 0, 0, fmt.Errorf("model: bad z: %w", err)
	}
	plddt := 0.0
	if len(line) >= 66 {
		plddt, _ = strconv.ParseFloat(strings.TrimSpace(line[60:66]), 64)
	}
	elem := ""
	if len(line) >= 78 {
		elem = strings.TrimSpace(line[76:78])
	}
	if elem == "" {
		elem = guessElement(name)
	}
	return &Atom{
		Serial:  serial,
		Name:    name,
		Element: elem,
		ResId:   resrange.ResId(resSeq),
		X:       x, Y: y, Z: z,
	}, resrange.ResId(resSeq), oneLetter(resName), plddt, nil
}

func guessElement(atomName string) string {
	n := strings.TrimSpace(atomName)
	if n == "" {
		return ""
	}
	return strings.ToUpper(n[:1])
}

var threeToOne = map[string]byte{
	"ALA": 'A', "ARG": 'R', "ASN": 'N', "ASP": 'D', "CYS": 'C',
	"GLN": 'Q', "GLU": 'E', "GLY": 'G', "HIS": 'H', "ILE": 'I',
	"LEU": 'L', "LYS": 'K', "MET": 'M', "PHE": 'F', "PRO": 'P',
	"SER": 'S', "THR": 'T', "TRP": 'W', "TYR": 'Y', "VAL": 'V',
}

func oneLetter(resName string) byte {
	if c, ok := threeToOne[strings.ToUpper(resName)]; ok {
		return c
	}
	return 'X'
}

var oneToThree = func() map[byte]string {
	m := make(map[byte]string, len(threeToOne))
	for three, one := range threeToOne {
		m[one] = three
	}
	return m
}()

func threeLetter(code byte) string {
	if s, ok := oneToThree[code]; ok {
		return s
	}
	return "UNK"
}

// WritePDB writes s's atoms as fixed-column ATOM records in the same layout
// parseAtomLine reads, so a file WritePDB produces round-trips through
// ParsePDB. Used by stage 20 to emit per-domain coordinate subsets.
func WritePDB(path string, s *Structure) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("model: create %s: %w", path, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, a := range s.Atoms {
		code := byte('X')
		if int(a.ResId) >= 1 && int(a.ResId) <= len(s.Seq) {
			code = s.Seq[a.ResId-1]
		}
		plddt := s.PLDDTAt(a.ResId)
		if _, err := fmt.Fprintln(w, formatAtomLine(a, threeLetter(code), plddt)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, "END"); err != nil {
		return err
	}
	return w.Flush()
}

// formatAtomLine renders a into the exact fixed-column ranges parseAtomLine
// slices: serial [6:11], name [12:16], resName [17:20], resSeq [22:26],
// x/y/z [30:38]/[38:46]/[46:54], occupancy/B-factor [54:60]/[60:66],
// element [76:78].
func formatAtomLine(a *Atom, resName string, plddt float64) string {
	line := []byte(strings.Repeat(" ", 80))
	copy(line[0:6], "ATOM  ")
	copy(line[6:11], fmt.Sprintf("%5d", a.Serial))
	copy(line[12:16], fmt.Sprintf("%-4s", a.Name))
	copy(line[17:20], fmt.Sprintf("%-3s", resName))
	copy(line[21:22], "A")
	copy(line[22:26], fmt.Sprintf("%4d", a.ResId))
	copy(line[30:38], fmt.Sprintf("%8.3f", a.X))
	copy(line[38:46], fmt.Sprintf("%8.3f", a.Y))
	copy(line[46:54], fmt.Sprintf("%8.3f", a.Z))
	copy(line[54:60], fmt.Sprintf("%6.2f", 1.0))
	copy(line[60:66], fmt.Sprintf("%6.2f", plddt))
	copy(line[76:78], fmt.Sprintf("%2s", a.Element))
	return strings.TrimRight(string(line), " ")
}
