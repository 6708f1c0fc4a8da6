// Package kbest implements KBestEngine: batches anchors across
// bounded-concurrency workers, runs the shared sssp kernel per batch, merges
// every batch's per-node top-K into one shared table, and aggregates the
// result up to H3 cells at every configured resolution to produce T_hex rows.
//
// The batching/worker-pool shape follows a parallel-loader idiom: errgroup
// with a concurrency limit, one goroutine per unit of work, results merged
// back under a lock. A loader merging independent per-repo lists uses the
// same shape to merge independent per-batch TopK labels here.
package kbest

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hexproxy/engine/internal/anchor"
	"github.com/hexproxy/engine/internal/cellgrid"
	"github.com/hexproxy/engine/internal/config"
	"github.com/hexproxy/engine/internal/csrgraph"
	"github.com/hexproxy/engine/internal/sssp"
)

// shardCount bounds lock contention during merge: each node index hashes to
// one of shardCount mutexes, so concurrent batches merging disjoint node
// ranges rarely block each other.
const shardCount = 256

// Engine runs the batched multi-source SSSP and cell aggregation for one
// mode's graph.
type Engine struct {
	graph *csrgraph.Graph
	cfg   *config.Config
}

// New builds an Engine over g using cfg's k_best, batch_size, workers,
// cutoff_seconds, overflow_cutoff_seconds and resolutions settings.
func New(g *csrgraph.Graph, cfg *config.Config) *Engine {
	return &Engine{graph: g, cfg: cfg}
}

// Run computes the global per-node top-K table from sites, then aggregates
// it to T_hex rows at every resolution in the config, grouped by resolution
// in the order the config lists them and, within each resolution, in the
// ordering cellgrid.Aggregate produces. The second return value is the total count of cells, summed
// across every configured resolution, that ended up with no reachable
// anchor at all.
func (e *Engine) Run(ctx context.Context, sites []anchor.Site) ([]cellgrid.Row, int, error) {
	n := e.graph.N()

	global := make([]*sssp.TopK, n)
	for i := range global {
		global[i] = sssp.NewTopK(e.cfg.KBest)
	}
	locks := make([]sync.Mutex, shardCount)

	sources := make([]sssp.Source, len(sites))
	for i, s := range sites {
		sources[i] = sssp.Source{Node: s.NodeIndex, ID: s.AnchorIntID}
	}

	g, gctx := errgroup.WithContext(ctx)
	if e.cfg.Workers > 0 {
		g.SetLimit(e.cfg.Workers)
	}

	for _, batch := range batchify(sources, e.cfg.BatchSize) {
		batch := batch
		g.Go(func() error {
			labels, err := sssp.Run(gctx, n, e.graph.Neighbors, batch, sssp.Options{
				K:                     e.cfg.KBest,
				CutoffSeconds:         e.cfg.CutoffSeconds,
				OverflowCutoffSeconds: e.cfg.OverflowCutoffSeconds,
			})
			if err != nil {
				return err
			}
			mergeInto(global, locks, labels)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	var rows []cellgrid.Row
	var unreachable int
	for _, res := range e.cfg.Resolutions {
		table := cellgrid.BuildTable(e.graph.NodeLon, e.graph.NodeLat, res)
		resRows, resUnreachable := cellgrid.Aggregate(table, global, e.cfg.KBest, res)
		rows = append(rows, resRows...)
		unreachable += resUnreachable
	}
	return rows, unreachable, nil
}

// mergeInto folds one batch's per-node labels into the shared global table,
// locking only the shard each node falls in.
func mergeInto(global []*sssp.TopK, locks []sync.Mutex, labels []*sssp.TopK) {
	for node, label := range labels {
		if label.Len() == 0 {
			continue
		}
		shard := node % len(locks)
		locks[shard].Lock()
		global[node].Merge(label)
		locks[shard].Unlock()
	}
}

// batchify splits sources into chunks of at most size, preserving order.
// Chunk boundaries have no effect on the final result: Run's bucket queue
// processes every source in one batch together regardless of where the
// batch boundary falls, and merge is order-independent.
func batchify(sources []sssp.Source, size int) [][]sssp.Source {
	if size <= 0 || size >= len(sources) {
		if len(sources) == 0 {
			return nil
		}
		return [][]sssp.Source{sources}
	}
	var batches [][]sssp.Source
	for start := 0; start < len(sources); start += size {
		end := start + size
		if end > len(sources) {
			end = len(sources)
		}
		batches = append(batches, sources[start:end])
	}
	return batches
}
