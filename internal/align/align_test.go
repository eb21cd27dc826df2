package align

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/sarat-asymmetrica/dpam/internal/hits"
	"github.com/sarat-asymmetrica/dpam/internal/model"
	"github.com/sarat-asymmetrica/dpam/internal/resrange"
	"github.com/stretchr/testify/require"
)

func buildQuery(n int) *model.Structure {
	s := &model.Structure{Name: "Q", Residues: make(map[resrange.ResId]*model.Residue), Seq: make([]byte, n)}
	for i := 1; i <= n; i++ {
		id := resrange.ResId(i)
		s.Seq[i-1] = 'A'
		s.Residues[id] = &model.Residue{
			ResId: id, Code: 'A',
			N:  &model.Atom{Name: "N", ResId: id, X: float64(i), Y: 0, Z: 0},
			CA: &model.Atom{Name: "CA", ResId: id, X: float64(i), Y: 1, Z: 0},
			C:  &model.Atom{Name: "C", ResId: id, X: float64(i), Y: 2, Z: 0},
			O:  &model.Atom{Name: "O", ResId: id, X: float64(i), Y: 3, Z: 0},
		}
	}
	return s
}

// fakeRunner returns one alignment per call from a per-template queue, then
// a zero-pair alignment once each template's queue is exhausted (loop
// terminates naturally).
type fakeRunner struct {
	mu    sync.Mutex
	calls int
	plans map[string][]hits.PairwiseAlignment // per-template; "" is the default plan
	idx   map[string]int
}

func newFakeRunner(plan []hits.PairwiseAlignment) *fakeRunner {
	return &fakeRunner{plans: map[string][]hits.PairwiseAlignment{"": plan}, idx: make(map[string]int)}
}

func newFakeRunnerPerTemplate(plans map[string][]hits.PairwiseAlignment) *fakeRunner {
	return &fakeRunner{plans: plans, idx: make(map[string]int)}
}

func (f *fakeRunner) Align(ctx context.Context, workingPDBPath, templateID, scratchDir string) (hits.PairwiseAlignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	plan, ok := f.plans[templateID]
	if !ok {
		plan = f.plans[""]
	}
	i := f.idx[templateID]
	f.idx[templateID] = i + 1
	if i < len(plan) {
		return plan[i], nil
	}
	return hits.PairwiseAlignment{}, nil
}

func rangeIds(a, b int) []resrange.ResId {
	var out []resrange.ResId
	for i := a; i <= b; i++ {
		out = append(out, resrange.ResId(i))
	}
	return out
}

func TestRunTemplateStopsOnFewPairs(t *testing.T) {
	query := buildQuery(100)
	runner := newFakeRunner(nil) // zero pairs immediately
	e := &Engine{Runner: runner, ScratchDir: t.TempDir(), Workers: 1}

	out := e.runTemplate(context.Background(), query, "e1abc1")
	require.Empty(t, out, "a first-call crash/empty result must emit no records")
	require.Equal(t, 1, runner.calls)
}

func TestRunTemplateExcisesAndIterates(t *testing.T) {
	query := buildQuery(100)
	runner := newFakeRunner([]hits.PairwiseAlignment{
		{ZScore: 12.5, QResids: rangeIds(1, 40), TResids: rangeIds(1, 40)},
		{ZScore: 8.0, QResids: rangeIds(50, 80), TResids: rangeIds(1, 31)},
	})
	e := &Engine{Runner: runner, ScratchDir: t.TempDir(), Workers: 1}

	out := string(e.runTemplate(context.Background(), query, "e1abc1"))
	require.Equal(t, 3, runner.calls, "two real hits then one terminating empty/short call")
	require.Contains(t, out, ">e1abc1_1\t12.5000\t40\t100\t0")
	require.Contains(t, out, ">e1abc1_2\t8.0000\t31\t")
	require.Contains(t, out, "1\t1\n")
	require.Contains(t, out, "50\t1\n")
}

func TestRunAllEmitsNothingWhenNoTemplateAligns(t *testing.T) {
	query := buildQuery(50)
	runner := newFakeRunner(nil) // every template gets zero pairs
	e := &Engine{Runner: runner, ScratchDir: t.TempDir(), Workers: 3}

	out, err := e.RunAll(context.Background(), query, []string{"tA", "tB", "tC"})
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestRunAllConcatenatesInTemplateOrder(t *testing.T) {
	query := buildQuery(50)
	runner := newFakeRunnerPerTemplate(map[string][]hits.PairwiseAlignment{
		"tA": {{ZScore: 5.0, QResids: rangeIds(1, 25), TResids: rangeIds(1, 25)}},
		"tB": {{ZScore: 5.0, QResids: rangeIds(1, 25), TResids: rangeIds(1, 25)}},
	})
	e := &Engine{Runner: runner, ScratchDir: t.TempDir(), Workers: 1}

	out, err := e.RunAll(context.Background(), query, []string{"tA", "tB"})
	require.NoError(t, err)
	posA := strings.Index(string(out), ">tA_1")
	posB := strings.Index(string(out), ">tB_1")
	require.NotEqual(t, -1, posA)
	require.NotEqual(t, -1, posB)
	require.Less(t, posA, posB)
}
