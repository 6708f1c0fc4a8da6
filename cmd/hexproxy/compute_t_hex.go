package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/hexproxy/engine/internal/codec"
	"github.com/hexproxy/engine/internal/config"
	"github.com/hexproxy/engine/internal/kbest"
	"github.com/hexproxy/engine/internal/runlog"
)

var (
	thExtract  string
	thAnchors  string
	thMode     string
	thCutoff   uint16
	thOverflow uint16
	thKBest    int
	thRes      []int
	thOut      string
)

var computeTHexCmd = &cobra.Command{
	Use:   "compute-t-hex",
	Short: "Compute the top-K cell-to-anchor travel time table",
	RunE:  runComputeTHex,
}

func init() {
	f := computeTHexCmd.Flags()
	f.StringVar(&thExtract, "extract", "", "path to the network extract file (required)")
	f.StringVar(&thAnchors, "anchors", "", "path to anchors_{mode}.parquet (required)")
	f.StringVar(&thMode, "mode", "", "travel mode: drive or walk (required)")
	f.Uint16Var(&thCutoff, "cutoff", 0, "primary cutoff in seconds (required)")
	f.Uint16Var(&thOverflow, "overflow-cutoff", 0, "overflow cutoff in seconds (required)")
	f.IntVar(&thKBest, "k-best", 0, "number of anchors retained per cell (required)")
	f.IntSliceVar(&thRes, "res", nil, "H3 resolutions, comma-separated or repeated, e.g. 7,8 (required)")
	f.StringVar(&thOut, "out", "", "output path for t_hex parquet (required)")
	for _, name := range []string{"extract", "anchors", "mode", "cutoff", "overflow-cutoff", "k-best", "res", "out"} {
		_ = computeTHexCmd.MarkFlagRequired(name)
	}
}

func runComputeTHex(cmd *cobra.Command, args []string) error {
	start := time.Now()
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg.CutoffSeconds = thCutoff
	cfg.OverflowCutoffSeconds = thOverflow
	cfg.KBest = thKBest
	cfg.Resolutions = thRes

	mode := config.Mode(thMode)
	g, err := loadGraph(thExtract, mode, cfg)
	if err != nil {
		return err
	}
	sites, err := loadSites(thAnchors, g)
	if err != nil {
		return err
	}

	engine := kbest.New(g, cfg)
	rows, unreachable, err := engine.Run(cmd.Context(), sites)
	if err != nil {
		return err
	}

	ts := snapshotTimestamp()
	out := make([]codec.THexRow, len(rows))
	for i, r := range rows {
		out[i] = codec.THexRow{
			CellID:      r.CellID,
			AnchorIntID: r.AnchorIntID,
			Seconds:     r.Seconds,
			Resolution:  r.Resolution,
			Mode:        thMode,
			SnapshotTS:  ts,
		}
	}
	if err := codec.WriteAtomic(thOut, out); err != nil {
		return err
	}

	runlog.Emit(logger, "compute-t-hex", runlog.Stage{
		Anchors:          len(sites),
		CellsWritten:     len(out),
		UnreachableCells: unreachable,
		Runtime:          time.Since(start),
	})
	return nil
}
