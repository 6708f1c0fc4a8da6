package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hexproxy/engine/internal/anchor"
	"github.com/hexproxy/engine/internal/codec"
	"github.com/hexproxy/engine/internal/config"
	"github.com/hexproxy/engine/internal/errs"
	"github.com/hexproxy/engine/internal/runlog"
)

var (
	baMode     string
	baPOIs     string
	baExtract  string
	baOutSites string
	baOutMap   string
)

var buildAnchorsCmd = &cobra.Command{
	Use:   "build-anchors",
	Short: "Snap POIs onto graph nodes and assign stable anchor ids",
	RunE:  runBuildAnchors,
}

func init() {
	f := buildAnchorsCmd.Flags()
	f.StringVar(&baMode, "mode", "", "travel mode: drive or walk (required)")
	f.StringVar(&baPOIs, "pois", "", "path to the canonical POI JSON table (required)")
	f.StringVar(&baExtract, "extract", "", "path to the network extract file (required)")
	f.StringVar(&baOutSites, "out-sites", "", "output path for anchors_{mode}.parquet (required)")
	f.StringVar(&baOutMap, "out-map", "", "output path for anchor_id_map_{mode}.parquet (required)")
	for _, name := range []string{"mode", "pois", "extract", "out-sites", "out-map"} {
		_ = buildAnchorsCmd.MarkFlagRequired(name)
	}
}

func runBuildAnchors(cmd *cobra.Command, args []string) error {
	start := time.Now()
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	mode := config.Mode(baMode)
	if mode != config.ModeDrive && mode != config.ModeWalk {
		return errs.Input("--mode", fmt.Errorf("mode must be drive or walk, got %q", baMode))
	}

	g, err := loadGraph(baExtract, mode, cfg)
	if err != nil {
		return err
	}

	pois, err := loadPOIs(baPOIs)
	if err != nil {
		return err
	}

	sites, err := anchor.Build(g, pois)
	if err != nil {
		return err
	}

	anchorRows := make([]codec.AnchorRow, len(sites))
	mapRows := make([]codec.AnchorIDMapRow, len(sites))
	for i, s := range sites {
		anchorRows[i] = codec.AnchorRow{
			SiteID:       s.SiteID,
			AnchorIntID:  s.AnchorIntID,
			ExternalNode: s.ExternalNode,
			Lon:          s.Lon,
			Lat:          s.Lat,
			CategoryIDs:  s.CategoryIDs,
			BrandIDs:     s.BrandIDs,
			POICount:     int32(len(s.POIIDs)),
		}
		mapRows[i] = codec.AnchorIDMapRow{SiteID: s.SiteID, AnchorIntID: s.AnchorIntID}
	}

	if err := codec.WriteAtomic(baOutSites, anchorRows); err != nil {
		return err
	}
	if err := codec.WriteAtomic(baOutMap, mapRows); err != nil {
		return err
	}

	runlog.Emit(logger, "build-anchors", runlog.Stage{
		Anchors: len(sites),
		Runtime: time.Since(start),
	})
	return nil
}
