package sssp_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexproxy/engine/internal/sssp"
)

// cycleNeighbors is the 4-node directed cycle 0->1->2->3->0 with weights
// 60,120,60,120, the minimal graph used throughout the engine's test
// scenarios: one directed edge per node, so every node has exactly one
// path to each anchor.
func cycleNeighbors(node int32) ([]int32, []uint16) {
	switch node {
	case 0:
		return []int32{1}, []uint16{60}
	case 1:
		return []int32{2}, []uint16{120}
	case 2:
		return []int32{3}, []uint16{60}
	case 3:
		return []int32{0}, []uint16{120}
	}
	return nil, nil
}

func anchors() []sssp.Source {
	return []sssp.Source{{Node: 0, ID: 10}, {Node: 2, ID: 20}}
}

func TestRun_MinimalGraph_NoCutoff(t *testing.T) {
	labels, err := sssp.Run(context.Background(), 4, cycleNeighbors, anchors(), sssp.Options{
		K: 2, CutoffSeconds: 65534, OverflowCutoffSeconds: 65534,
	})
	require.NoError(t, err)

	assertEntries(t, labels[0], []sssp.Entry{{ID: 10, Seconds: 0}, {ID: 20, Seconds: 180}})
	assertEntries(t, labels[1], []sssp.Entry{{ID: 10, Seconds: 60}, {ID: 20, Seconds: 240}})
	assertEntries(t, labels[2], []sssp.Entry{{ID: 20, Seconds: 0}, {ID: 10, Seconds: 180}})
	assertEntries(t, labels[3], []sssp.Entry{{ID: 20, Seconds: 60}, {ID: 10, Seconds: 240}})
}

func TestRun_CutoffClipsFartherEntries(t *testing.T) {
	labels, err := sssp.Run(context.Background(), 4, cycleNeighbors, anchors(), sssp.Options{
		K: 2, CutoffSeconds: 100, OverflowCutoffSeconds: 100,
	})
	require.NoError(t, err)

	assertEntries(t, labels[1], []sssp.Entry{{ID: 10, Seconds: 60}})
	assertEntries(t, labels[3], []sssp.Entry{{ID: 20, Seconds: 60}})
}

func TestRun_OverflowTierFillsRemainingSlot(t *testing.T) {
	labels, err := sssp.Run(context.Background(), 4, cycleNeighbors, anchors(), sssp.Options{
		K: 2, CutoffSeconds: 100, OverflowCutoffSeconds: 200,
	})
	require.NoError(t, err)

	assertEntries(t, labels[0], []sssp.Entry{{ID: 10, Seconds: 0}, {ID: 20, Seconds: 180}})
	assertEntries(t, labels[1], []sssp.Entry{{ID: 10, Seconds: 60}})
	assertEntries(t, labels[2], []sssp.Entry{{ID: 20, Seconds: 0}, {ID: 10, Seconds: 180}})
	assertEntries(t, labels[3], []sssp.Entry{{ID: 20, Seconds: 60}})
}

func TestRun_RaisingCutoffOnlyAdds(t *testing.T) {
	low, err := sssp.Run(context.Background(), 4, cycleNeighbors, anchors(), sssp.Options{K: 2, CutoffSeconds: 100, OverflowCutoffSeconds: 100})
	require.NoError(t, err)
	high, err := sssp.Run(context.Background(), 4, cycleNeighbors, anchors(), sssp.Options{K: 2, CutoffSeconds: 65534, OverflowCutoffSeconds: 65534})
	require.NoError(t, err)

	for node := range low {
		lowSet := toSet(low[node].Sorted())
		highSet := toSet(high[node].Sorted())
		for pair := range lowSet {
			assert.Contains(t, highSet, pair, "raising cutoff must never remove a (cell,anchor) pair")
		}
	}
}

func TestTopK_RejectsNonImprovingDuplicate(t *testing.T) {
	top := sssp.NewTopK(2)
	assert.True(t, top.Try(1, 100))
	assert.False(t, top.Try(1, 100)) // equal cost is not an improvement
	assert.True(t, top.Try(1, 50))
	assert.Equal(t, uint16(50), top.Sorted()[0].Seconds)
}

func TestTopK_SortedTiesBrokenByID(t *testing.T) {
	top := sssp.NewTopK(3)
	top.Try(30, 100)
	top.Try(10, 100)
	top.Try(20, 100)

	sorted := top.Sorted()
	require.Len(t, sorted, 3)
	assert.Equal(t, []int32{10, 20, 30}, []int32{sorted[0].ID, sorted[1].ID, sorted[2].ID})
}

func TestTopK_EvictsWorstWhenFull(t *testing.T) {
	top := sssp.NewTopK(2)
	top.Try(1, 10)
	top.Try(2, 20)
	assert.False(t, top.Try(3, 30)) // worse than both, rejected
	assert.True(t, top.Try(3, 5))   // better than worst (20), evicts it

	sorted := top.Sorted()
	require.Len(t, sorted, 2)
	assert.Equal(t, int32(3), sorted[0].ID)
	assert.Equal(t, int32(1), sorted[1].ID)
}

func assertEntries(t *testing.T, top *sssp.TopK, want []sssp.Entry) {
	t.Helper()
	require.NotNil(t, top)
	assert.Equal(t, want, top.Sorted())
}

type pair struct {
	id      int32
	seconds uint16
}

func toSet(entries []sssp.Entry) map[pair]bool {
	out := make(map[pair]bool, len(entries))
	for _, e := range entries {
		out[pair{id: e.ID, seconds: e.Seconds}] = true
	}
	return out
}
