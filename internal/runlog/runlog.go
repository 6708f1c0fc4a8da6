// Package runlog emits the single summary line each stage logs on
// completion: anchor count, median sources-per-entity, cells
// written, unreachable cells, entity success/failure counts, and wall-clock
// runtime, all in one zerolog event rather than scattered across the run.
package runlog

import (
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// Stage is the set of counters one pipeline stage reports at completion.
type Stage struct {
	Anchors          int
	SourcesPerEntity []int // one sample per entity processed, for the median
	CellsWritten     int
	// UnreachableCells counts units left with no reachable anchor: T_hex
	// cells omitted entirely for compute-t-hex, D_anchor rows left at the
	// sentinel for compute-d-anchor.
	UnreachableCells int
	EntitiesOK       int
	EntitiesFailed   int
	Runtime          time.Duration
}

// Emit writes one summary event for the stage at info level.
func Emit(log zerolog.Logger, stage string, s Stage) {
	log.Info().
		Str("stage", stage).
		Int("anchors", s.Anchors).
		Int("sources_per_entity_median", median(s.SourcesPerEntity)).
		Int("cells_written", s.CellsWritten).
		Int("unreachable_cells", s.UnreachableCells).
		Int("entities_ok", s.EntitiesOK).
		Int("entities_failed", s.EntitiesFailed).
		Float64("runtime_seconds", s.Runtime.Seconds()).
		Msg("stage complete")
}

func median(samples []int) int {
	if len(samples) == 0 {
		return 0
	}
	sorted := append([]int(nil), samples...)
	sort.Ints(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
