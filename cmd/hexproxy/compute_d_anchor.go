package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hexproxy/engine/internal/config"
	"github.com/hexproxy/engine/internal/danchor"
	"github.com/hexproxy/engine/internal/errs"
	"github.com/hexproxy/engine/internal/fingerprint"
	"github.com/hexproxy/engine/internal/runlog"
)

var (
	daKind     string
	daExtract  string
	daAnchors  string
	daMode     string
	daCutoff   uint16
	daOverflow uint16
	daEntities []string
	daForce    bool
	daOutDir   string
	daMapPath  string
)

var computeDAnchorCmd = &cobra.Command{
	Use:   "compute-d-anchor",
	Short: "Compute the anchor-to-category/brand travel time table",
	RunE:  runComputeDAnchor,
}

func init() {
	f := computeDAnchorCmd.Flags()
	f.StringVar(&daKind, "kind", "", "entity kind: category or brand (required)")
	f.StringVar(&daExtract, "extract", "", "path to the network extract file (required)")
	f.StringVar(&daAnchors, "anchors", "", "path to anchors_{mode}.parquet (required)")
	f.StringVar(&daMapPath, "anchor-map", "", "path to anchor_id_map_{mode}.parquet (required, fingerprint input)")
	f.StringVar(&daMode, "mode", "", "travel mode: drive or walk (required)")
	f.Uint16Var(&daCutoff, "cutoff", 0, "primary cutoff in seconds (required)")
	f.Uint16Var(&daOverflow, "overflow-cutoff", 0, "overflow cutoff in seconds (required)")
	f.StringArrayVar(&daEntities, "entity", nil, "restrict to specific entity ids; repeatable")
	f.BoolVar(&daForce, "force", false, "recompute every entity regardless of fingerprint state")
	f.StringVar(&daOutDir, "out-dir", "", "output directory root for d_anchor_{kind} partitions (required)")
	for _, name := range []string{"kind", "extract", "anchors", "anchor-map", "mode", "cutoff", "overflow-cutoff", "out-dir"} {
		_ = computeDAnchorCmd.MarkFlagRequired(name)
	}
}

func runComputeDAnchor(cmd *cobra.Command, args []string) error {
	start := time.Now()
	if daKind != "category" && daKind != "brand" {
		return errs.Input("--kind", fmt.Errorf("kind must be category or brand, got %q", daKind))
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg.CutoffSeconds = daCutoff
	cfg.OverflowCutoffSeconds = daOverflow

	mode := config.Mode(daMode)
	g, err := loadGraph(daExtract, mode, cfg)
	if err != nil {
		return err
	}
	sites, err := loadSites(daAnchors, g)
	if err != nil {
		return err
	}

	digest, err := fingerprint.Compute(daAnchors, daMapPath)
	if err != nil {
		return err
	}

	var entities []danchor.Entity
	if daKind == "category" {
		entities = danchor.CategoriesOf(sites)
	} else {
		entities = danchor.BrandsOf(sites)
	}
	entities = filterEntities(entities, daEntities)

	engine := danchor.New(g, cfg)
	results, err := engine.Run(cmd.Context(), sites, entities, digest, daOutDir, daForce)
	if err != nil {
		return err
	}

	ok, failed, skipped, unreachable := 0, 0, 0, 0
	sourcesPerEntity := make([]int, len(entities))
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
			logger.Error().Str("entity", r.Entity.ID).Err(r.Err).Msg("entity failed")
		case r.Skipped:
			skipped++
		default:
			ok++
			unreachable += r.Unreachable
		}
	}
	for i, e := range entities {
		sourcesPerEntity[i] = len(e.SourceNodes)
	}
	runlog.Emit(logger, "compute-d-anchor", runlog.Stage{
		Anchors:          len(sites),
		SourcesPerEntity: sourcesPerEntity,
		EntitiesOK:       ok,
		EntitiesFailed:   failed,
		UnreachableCells: unreachable,
		Runtime:          time.Since(start),
	})

	if failed > 0 {
		return errs.Invariantf("danchor", "%d of %d entities failed", failed, len(results))
	}
	return nil
}

// filterEntities restricts entities to the ids named by --entity, or
// returns entities unchanged if --entity was never passed.
func filterEntities(entities []danchor.Entity, want []string) []danchor.Entity {
	if len(want) == 0 {
		return entities
	}
	keep := make(map[string]bool, len(want))
	for _, id := range want {
		keep[id] = true
	}
	out := entities[:0]
	for _, e := range entities {
		if keep[e.ID] {
			out = append(out, e)
		}
	}
	return out
}
