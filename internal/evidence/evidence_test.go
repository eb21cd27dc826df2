package evidence

import (
	"bytes"
	"testing"

	"github.com/sarat-asymmetrica/dpam/internal/hits"
	"github.com/sarat-asymmetrica/dpam/internal/partition"
	"github.com/sarat-asymmetrica/dpam/internal/resrange"
	"github.com/stretchr/testify/require"
)

func TestScoreHitsNilRefDataDefaultsToAbsent(t *testing.T) {
	h := hits.Hit{Channel: hits.Sequence, TemplateID: "e1abcA1", Probability: 90,
		QueryResids: resrange.New(1, 2, 3), TemplateResids: resrange.New(1, 2, 3), TemplateLength: 3}
	scored := ScoreHits([]hits.Hit{h}, nil)
	require.Len(t, scored, 1)
	require.Equal(t, -1.0, scored[0].QScore)
	require.Equal(t, -1.0, scored[0].ZTile)
	require.Equal(t, -1.0, scored[0].QTile)
	require.Equal(t, "1-3", scored[0].QueryRange)
}

func TestAssignRankGrowsWithOverlappingHGroups(t *testing.T) {
	// two hits covering the same positions, different h_groups: the
	// second-processed hit (lower score, so processed second) should see
	// its positions' h_group-set grow to size 2.
	h1 := hits.Hit{Channel: hits.Sequence, HPath: "1.1.1.1", Probability: 90, QueryResids: resrange.New(1, 2, 3)}
	h2 := hits.Hit{Channel: hits.Sequence, HPath: "2.2.2.2", Probability: 50, QueryResids: resrange.New(1, 2, 3)}
	scored := ScoreHits([]hits.Hit{h1, h2}, nil)

	var first, second Scored
	for _, s := range scored {
		if s.Probability == 90 {
			first = s
		} else {
			second = s
		}
	}
	require.Equal(t, 1.0, first.Rank, "first-processed hit sees only its own h_group at each position")
	require.Equal(t, 2.0, second.Rank, "second-processed hit sees both h_groups at each position")
}

func TestGetSupportForwardsFirstHitAndEnoughNewResidues(t *testing.T) {
	domains := []partition.Domain{{ID: 1, Residues: resrange.New(resrangeSeq(1, 50)...)}}
	h1 := hits.Hit{Channel: hits.Sequence, TemplateID: "tA", Probability: 90,
		QueryResids: resrange.New(1, 2, 3), TemplateResids: resrange.New(resrangeSeq(1, 20)...)}
	// overlaps covered 1-20 in 16 of its 20 residues -> only 4 new (20%), dropped
	h2 := hits.Hit{Channel: hits.Sequence, TemplateID: "tB", Probability: 80,
		QueryResids: resrange.New(4, 5, 6), TemplateResids: resrange.New(resrangeSeq(5, 24)...)}
	scored := ScoreHits([]hits.Hit{h1, h2}, nil)

	support := GetSupport(domains, scored)
	require.Len(t, support, 1)
	require.Len(t, support[0].Sequence, 1)
	require.Equal(t, "tA", support[0].Sequence[0].TemplateID)
}

func TestGetSupportForwardsHitWithEnoughNewResidues(t *testing.T) {
	domains := []partition.Domain{{ID: 1, Residues: resrange.New(resrangeSeq(1, 50)...)}}
	h1 := hits.Hit{Channel: hits.Sequence, TemplateID: "tA", Probability: 90,
		QueryResids: resrange.New(1, 2, 3), TemplateResids: resrange.New(resrangeSeq(1, 20)...)}
	// brings 20 new out of 30 total (67%) -> forwarded
	h2 := hits.Hit{Channel: hits.Sequence, TemplateID: "tB", Probability: 80,
		QueryResids: resrange.New(4, 5, 6), TemplateResids: resrange.New(resrangeSeq(11, 40)...)}
	scored := ScoreHits([]hits.Hit{h1, h2}, nil)

	support := GetSupport(domains, scored)
	require.Len(t, support[0].Sequence, 2)
}

func TestBuildAndWriteGoodDomains(t *testing.T) {
	support := []Support{{
		DomainID: 1,
		Sequence: []Scored{{
			Hit: hits.Hit{TemplateID: "tA", ShortID: "e1abcA1", HPath: "1.1.1.1",
				Probability: 95, QueryResids: resrange.New(1, 2, 3), TemplateLength: 3,
				TemplateResids: resrange.New(1, 2, 3)},
			QueryRange: "1-3", TemplateRange: "1-3",
		}},
	}}
	rows := BuildGoodDomains("Q", support)
	require.Len(t, rows, 1)
	require.Equal(t, "sequence", rows[0].Type)
	require.Equal(t, "1.1", rows[0].TGroup)

	var buf bytes.Buffer
	require.NoError(t, WriteGoodDomains(&buf, rows))
	require.Contains(t, buf.String(), "sequence\tQ\ttA\te1abcA1\t1.1\t95.0000\t1.0000\t3\t1-3\t1-3\n")
}

func resrangeSeq(a, b int) []resrange.ResId {
	var out []resrange.ResId
	for i := a; i <= b; i++ {
		out = append(out, resrange.ResId(i))
	}
	return out
}
