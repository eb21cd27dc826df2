package features

import (
	"testing"

	"github.com/sarat-asymmetrica/dpam/internal/evidence"
	"github.com/sarat-asymmetrica/dpam/internal/hits"
	"github.com/sarat-asymmetrica/dpam/internal/partition"
	"github.com/sarat-asymmetrica/dpam/internal/resrange"
	"github.com/sarat-asymmetrica/dpam/internal/sse"
	"github.com/stretchr/testify/require"
)

func seqIDs(a, b int) []resrange.ResId {
	var out []resrange.ResId
	for i := a; i <= b; i++ {
		out = append(out, resrange.ResId(i))
	}
	return out
}

func TestBuildDefaultsWhenOnlySequenceChannelPresent(t *testing.T) {
	d := partition.Domain{ID: 1, Residues: resrange.New(seqIDs(1, 30)...)}
	scored := []evidence.Scored{{
		Hit: hits.Hit{Channel: hits.Sequence, TemplateID: "tA", HPath: "1.1.1.1",
			Probability: 88, QueryResids: resrange.New(seqIDs(1, 10)...),
			TemplateResids: resrange.New(seqIDs(1, 10)...), TemplateLength: 20},
	}}
	rows := Build(d, scored, nil)
	require.Len(t, rows, 1)
	f := rows[0]
	require.Equal(t, "tA", f.TemplateID)
	require.Equal(t, 88.0, f.HHProb)
	require.Equal(t, 0.0, f.DZ)
	require.Equal(t, 10.0, f.DZTile)
	require.Equal(t, 10.0, f.DQTile)
	require.Equal(t, maxRank, f.DRank)
	require.Equal(t, -1.0, f.CDiff)
	require.Equal(t, 0.0, f.CCov)
	require.Equal(t, "1.1.1", f.TGroup)
}

func TestBuildComputesConsensusWhenBothChannelsPresent(t *testing.T) {
	d := partition.Domain{ID: 1, Residues: resrange.New(seqIDs(1, 30)...)}
	scored := []evidence.Scored{
		{Hit: hits.Hit{Channel: hits.Sequence, TemplateID: "tA", HPath: "1.1.1.1",
			Probability: 88, QueryResids: resrange.New(seqIDs(1, 5)...),
			TemplateResids: resrange.New(seqIDs(101, 105)...), TemplateLength: 20}},
		{Hit: hits.Hit{Channel: hits.Structural, TemplateID: "tA", HPath: "1.1.1.1",
			ZScore: 30, QueryResids: resrange.New(seqIDs(1, 5)...),
			TemplateResids: resrange.New(seqIDs(201, 205)...), TemplateLength: 20},
			QScore: 0.5, ZTile: 0.9, QTile: 0.8, Rank: 20},
	}
	rows := Build(d, scored, nil)
	require.Len(t, rows, 1)
	f := rows[0]
	require.Equal(t, 3.0, f.DZ)  // 30/10
	require.Equal(t, 2.0, f.DRank) // 20/10
	require.Equal(t, 0.5, f.DQ)
	require.Equal(t, 100.0, f.CDiff) // |101-201| == 100 for every paired residue
	require.InDelta(t, 5.0/30.0, f.CCov, 1e-9)
}

func TestBuildIncludesSSECounts(t *testing.T) {
	d := partition.Domain{ID: 2, Residues: resrange.New(seqIDs(1, 12)...)}
	raw := map[resrange.ResId]sse.Type{}
	for i := 1; i <= 6; i++ {
		raw[resrange.ResId(i)] = sse.Helix
	}
	for i := 10; i <= 12; i++ {
		raw[resrange.ResId(i)] = sse.Strand
	}
	_, elements := sse.Assign(12, raw)

	scored := []evidence.Scored{{
		Hit: hits.Hit{Channel: hits.Sequence, TemplateID: "tA", HPath: "1.1.1.1",
			Probability: 70, QueryResids: resrange.New(seqIDs(1, 3)...),
			TemplateResids: resrange.New(seqIDs(1, 3)...), TemplateLength: 10},
	}}
	rows := Build(d, scored, elements)
	require.Len(t, rows, 1)
	require.Equal(t, 1, rows[0].Helices)
	require.Equal(t, 1, rows[0].Strands)
}

func TestBuildEmitsNoRowsWithoutOverlappingHits(t *testing.T) {
	d := partition.Domain{ID: 1, Residues: resrange.New(seqIDs(1, 30)...)}
	scored := []evidence.Scored{{
		Hit: hits.Hit{Channel: hits.Sequence, TemplateID: "tA",
			QueryResids: resrange.New(seqIDs(500, 501)...), TemplateResids: resrange.New(1, 2)},
	}}
	rows := Build(d, scored, nil)
	require.Empty(t, rows)
}
