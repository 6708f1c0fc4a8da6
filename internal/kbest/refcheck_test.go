package kbest_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexproxy/engine/internal/config"
	"github.com/hexproxy/engine/internal/csrgraph"
	"github.com/hexproxy/engine/internal/refcheck"
	"github.com/hexproxy/engine/internal/sssp"
)

// edgesOf flattens a graph's CSR adjacency into the plain edge list
// refcheck.AllPairs expects.
func edgesOf(g *csrgraph.Graph) []refcheck.Edge {
	var edges []refcheck.Edge
	for i := 0; i < g.N(); i++ {
		heads, weights := g.Neighbors(int32(i))
		for j, h := range heads {
			edges = append(edges, refcheck.Edge{From: i, To: int(h), Weight: weights[j]})
		}
	}
	return edges
}

// TestSSSPAgreesWithFloydWarshallReference cross-checks the bucketed
// multi-source kernel kbest.Engine.Run delegates to against an independent
// O(N^3) Floyd-Warshall reference computed from the same graph: every
// distance the bucket queue reports for a node/anchor pair must equal the
// reference shortest path from the anchor's node to that node, the direction
// the kernel propagates in.
func TestSSSPAgreesWithFloydWarshallReference(t *testing.T) {
	cfg := &config.Config{
		Speeds:                map[config.Mode]config.SpeedTable{config.ModeDrive: {"residential": 10.0}},
		KBest:                 2,
		BatchSize:             2,
		Workers:               1,
		Resolutions:           []int{7},
		CutoffSeconds:         1000,
		OverflowCutoffSeconds: 1000,
	}
	g := buildCycle(t, cfg)
	sites := cycleAnchorSites(g)

	sources := make([]sssp.Source, len(sites))
	nodeOfAnchor := make(map[int32]int, len(sites))
	for i, s := range sites {
		sources[i] = sssp.Source{Node: s.NodeIndex, ID: s.AnchorIntID}
		nodeOfAnchor[s.AnchorIntID] = int(s.NodeIndex)
	}

	reference := refcheck.AllPairs(g.N(), edgesOf(g))

	labels, err := sssp.Run(context.Background(), g.N(), g.Neighbors, sources, sssp.Options{
		K:                     cfg.KBest,
		CutoffSeconds:         cfg.CutoffSeconds,
		OverflowCutoffSeconds: cfg.OverflowCutoffSeconds,
	})
	require.NoError(t, err)

	for node, label := range labels {
		for _, entry := range label.Sorted() {
			anchorNode, ok := nodeOfAnchor[entry.ID]
			require.True(t, ok, "label references unknown anchor id %d", entry.ID)
			want := reference[anchorNode][node]
			assert.Equal(t, want, uint32(entry.Seconds),
				"node %d anchor %d: bucket queue reported %d, reference shortest path is %d", node, entry.ID, entry.Seconds, want)
		}

		// Every anchor within cutoff must actually appear in this node's
		// label, not just agree in value when present.
		for _, s := range sites {
			d := reference[int(s.NodeIndex)][node]
			if d > uint32(cfg.CutoffSeconds) {
				continue
			}
			found := false
			for _, entry := range label.Sorted() {
				if entry.ID == s.AnchorIntID {
					found = true
					break
				}
			}
			assert.True(t, found, "node %d: anchor %d reachable at %d within cutoff but missing from its label", node, s.AnchorIntID, d)
		}
	}
}
