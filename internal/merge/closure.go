package merge

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/katalvlaran/lvlath/bfs"
	"github.com/katalvlaran/lvlath/core"
	"github.com/sarat-asymmetrica/dpam/internal/resrange"
)

// JudgedPair pairs a candidate merge with its stage-21 connectivity verdict.
type JudgedPair struct {
	DomainA, DomainB int
	Judgment         Judgment
}

// Merged is one merged entity: the transitive-closure union of every
// domain connected (directly or through intermediate domains) by a
// positive judgment.
type Merged struct {
	DomainIDs []int
	Residues  resrange.Set
}

// CloseComponents implements stage 22: builds a graph with one vertex per
// domain in domains and an edge per positively-judged pair, then returns
// one Merged entity per connected component -- including domains that
// never appear in a positive judgment, which come back as their own
// singleton component.
func CloseComponents(judged []JudgedPair, domains map[int]resrange.Set) []Merged {
	g := core.NewGraph()
	for id := range domains {
		_ = g.AddVertex(vertexID(id))
	}
	for _, j := range judged {
		if j.Judgment == NotConnected {
			continue
		}
		if _, err := g.AddEdge(vertexID(j.DomainA), vertexID(j.DomainB), 0); err != nil {
			continue
		}
	}

	visited := make(map[string]bool)
	var merged []Merged
	for _, v := range g.Vertices() {
		if visited[v] {
			continue
		}
		res, err := bfs.BFS(g, v)
		if err != nil {
			continue
		}
		var ids []int
		union := resrange.Set{}
		for _, member := range res.Order {
			visited[member] = true
			id := domainIDFromVertex(member)
			ids = append(ids, id)
			union = resrange.Union(union, domains[id])
		}
		sort.Ints(ids)
		merged = append(merged, Merged{DomainIDs: ids, Residues: union})
	}
	return merged
}

func vertexID(id int) string {
	return fmt.Sprintf("d%d", id)
}

func domainIDFromVertex(v string) int {
	n, _ := strconv.Atoi(v[1:])
	return n
}
