package merge

import (
	"github.com/sarat-asymmetrica/dpam/internal/model"
	"github.com/sarat-asymmetrica/dpam/internal/resrange"
)

// ExtractDomains implements stage 20: builds one coordinate subset per
// domain ID appearing in any proposed pair, filtering the full structure's
// atoms down to each domain's residues. Domains not referenced by any
// candidate pair are skipped -- stage 20 only extracts what stage 21 needs.
func ExtractDomains(full *model.Structure, domains map[int]resrange.Set, pairs []CandidatePair) map[int]*model.Structure {
	needed := make(map[int]bool)
	for _, p := range pairs {
		needed[p.DomainA] = true
		needed[p.DomainB] = true
	}

	out := make(map[int]*model.Structure, len(needed))
	for id := range needed {
		residues, ok := domains[id]
		if !ok {
			continue
		}
		out[id] = subset(full, residues)
	}
	return out
}

func subset(full *model.Structure, keep resrange.Set) *model.Structure {
	sub := &model.Structure{
		Name:     full.Name,
		Residues: make(map[resrange.ResId]*model.Residue, keep.Len()),
	}
	var seq []byte
	for _, id := range keep.Slice() {
		res, ok := full.Residues[id]
		if !ok {
			continue
		}
		sub.Residues[id] = res
		if int(id) > len(seq) {
			grown := make([]byte, id)
			copy(grown, seq)
			seq = grown
		}
		if int(id) <= len(full.Seq) {
			seq[id-1] = full.Seq[id-1]
		}
	}
	sub.Seq = seq
	for _, a := range full.Atoms {
		if keep.Contains(a.ResId) {
			sub.Atoms = append(sub.Atoms, a)
		}
	}
	return sub
}
