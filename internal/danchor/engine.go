// Package danchor implements DAnchorEngine: for every category
// and brand, a single-source-set, K=1 SSSP run from every site carrying
// that entity, producing one D_anchor row per anchor (seconds to the
// nearest carrier, or the sentinel if unreached). Entities run concurrently
// under a bounded errgroup, each gated by FingerprintLedger so an entity
// whose output already reflects the current anchor set is skipped unless
// --force was given.
package danchor

import (
	"context"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/hexproxy/engine/internal/anchor"
	"github.com/hexproxy/engine/internal/codec"
	"github.com/hexproxy/engine/internal/config"
	"github.com/hexproxy/engine/internal/csrgraph"
	"github.com/hexproxy/engine/internal/fingerprint"
	"github.com/hexproxy/engine/internal/sssp"
)

// Engine runs DAnchorEngine for one mode's graph.
type Engine struct {
	graph *csrgraph.Graph
	cfg   *config.Config
}

// New builds an Engine over g.
func New(g *csrgraph.Graph, cfg *config.Config) *Engine {
	return &Engine{graph: g, cfg: cfg}
}

// EntityResult reports one entity's outcome.
type EntityResult struct {
	Entity Entity
	// Unreachable counts how many of this entity's D_anchor rows carry the
	// sentinel (no carrying site reachable from that anchor). Zero on a
	// skipped or failed entity, since neither wrote fresh rows.
	Unreachable int
	Skipped     bool
	Err         error
}

// Run computes D_anchor rows for every entity and writes each to a
// Hive-partitioned parquet file under outputDir
// ("{outputDir}/d_anchor_{kind}/mode={mode}/{kind}_id={id}/part-000.parquet"),
// skipping entities whose prior fingerprint side-file already matches
// digest unless force is set.
func (e *Engine) Run(ctx context.Context, sites []anchor.Site, entities []Entity, digest string, outputDir string, force bool) ([]EntityResult, error) {
	mode := string(e.graph.Mode)

	results := make([]EntityResult, len(entities))
	g, gctx := errgroup.WithContext(ctx)
	if e.cfg.Workers > 0 {
		g.SetLimit(e.cfg.Workers)
	}

	for i, ent := range entities {
		i, ent := i, ent
		g.Go(func() error {
			res, err := e.runEntity(gctx, sites, ent, digest, outputDir, mode, force)
			results[i] = res
			// An entity's own failure must not cancel its siblings: only
			// cooperative cancellation of the whole run propagates.
			if err != nil && gctx.Err() != nil {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (e *Engine) runEntity(ctx context.Context, sites []anchor.Site, ent Entity, digest, outputDir, mode string, force bool) (EntityResult, error) {
	partitionDir := PartitionDir(outputDir, mode, ent)
	sideFile := fingerprint.SideFilePath(filepath.Join(partitionDir, "part-000.parquet"))

	if !force {
		prior, present, err := fingerprint.Read(sideFile)
		if err == nil && !fingerprint.Stale(prior, present, digest) {
			return EntityResult{Entity: ent, Skipped: true}, nil
		}
	}

	cutoff, overflow := e.cutoffFor(ent)

	sources := make([]sssp.Source, len(ent.SourceNodes))
	for i, node := range ent.SourceNodes {
		sources[i] = sssp.Source{Node: node, ID: node}
	}

	labels, err := sssp.Run(ctx, e.graph.N(), e.graph.Neighbors, sources, sssp.Options{
		K:                     1,
		CutoffSeconds:         cutoff,
		OverflowCutoffSeconds: overflow,
	})
	if err != nil {
		return EntityResult{Entity: ent, Err: err}, err
	}

	rows := make([]codec.DAnchorRow, 0, len(sites))
	unreachable := 0
	for _, s := range sites {
		seconds := sssp.Sentinel
		if best := labels[s.NodeIndex]; best.Len() > 0 {
			seconds = best.Sorted()[0].Seconds
		}
		if seconds == sssp.Sentinel {
			unreachable++
		}
		rows = append(rows, codec.DAnchorRow{AnchorIntID: s.AnchorIntID, Seconds: seconds})
	}

	path := filepath.Join(partitionDir, "part-000.parquet")
	if err := codec.WriteAtomic(path, rows); err != nil {
		return EntityResult{Entity: ent, Err: err}, err
	}
	if err := fingerprint.Write(sideFile, digest); err != nil {
		return EntityResult{Entity: ent, Err: err}, err
	}
	return EntityResult{Entity: ent, Unreachable: unreachable}, nil
}

// cutoffFor resolves an entity's per-category/brand cutoff, falling back to
// "_defaults", and in turn to the engine's global cutoffs if the config
// carries no entity cutoff tables at all.
func (e *Engine) cutoffFor(ent Entity) (cutoff, overflow uint16) {
	table := e.cfg.CategoryCutoffs
	if ent.Kind == "brand" {
		table = e.cfg.BrandCutoffs
	}
	if ec, ok := config.CutoffFor(table, ent.ID); ok {
		seconds := uint16(ec.MaxMinutes * 60)
		return seconds, e.cfg.OverflowCutoffSeconds
	}
	return e.cfg.CutoffSeconds, e.cfg.OverflowCutoffSeconds
}

// PartitionDir returns the Hive-style partition directory for one entity's
// output.
func PartitionDir(outputDir, mode string, ent Entity) string {
	return filepath.Join(outputDir, fmt.Sprintf("d_anchor_%s", ent.Kind), fmt.Sprintf("mode=%s", mode), fmt.Sprintf("%s_id=%s", ent.Kind, ent.ID))
}
