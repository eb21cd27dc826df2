package mapping

import (
	"testing"

	"github.com/sarat-asymmetrica/dpam/internal/evidence"
	"github.com/sarat-asymmetrica/dpam/internal/hits"
	"github.com/sarat-asymmetrica/dpam/internal/partition"
	"github.com/sarat-asymmetrica/dpam/internal/resrange"
	"github.com/stretchr/testify/require"
)

func ids(a, b int) []resrange.ResId {
	var out []resrange.ResId
	for i := a; i <= b; i++ {
		out = append(out, resrange.ResId(i))
	}
	return out
}

func TestMapRestrictsRangesToDomain(t *testing.T) {
	domains := map[int]partition.Domain{1: {ID: 1, Residues: resrange.New(ids(1, 10)...)}}
	scored := []evidence.Scored{{
		Hit: hits.Hit{TemplateID: "tA", Channel: hits.Sequence, Probability: 90,
			QueryResids:    resrange.New(ids(1, 20)...),
			TemplateResids: resrange.New(ids(101, 120)...)},
	}}
	got := Map(domains, scored, []Pair{{DomainID: 1, TemplateID: "tA"}})
	require.Len(t, got, 1)
	require.Equal(t, "1-10", got[0].QueryRange)
	require.Equal(t, "101-110", got[0].TemplateRange)
}

func TestMapReturnsNAWhenNoStrictOverlap(t *testing.T) {
	domains := map[int]partition.Domain{1: {ID: 1, Residues: resrange.New(ids(1, 10)...)}}
	scored := []evidence.Scored{{
		Hit: hits.Hit{TemplateID: "tA", Channel: hits.Sequence, Probability: 90,
			QueryResids:    resrange.New(ids(100, 120)...), // no overlap at all
			TemplateResids: resrange.New(ids(1, 20)...)},
	}}
	got := Map(domains, scored, []Pair{{DomainID: 1, TemplateID: "tA"}})
	require.Equal(t, naRange, got[0].QueryRange)
	require.Equal(t, naRange, got[0].TemplateRange)
}

func TestMapUnknownDomainYieldsNA(t *testing.T) {
	got := Map(map[int]partition.Domain{}, nil, []Pair{{DomainID: 9, TemplateID: "tA"}})
	require.Len(t, got, 1)
	require.Equal(t, naRange, got[0].QueryRange)
}
