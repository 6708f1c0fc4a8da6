// Package cellgrid resolves the hex cell each graph node belongs to and
// aggregates per-node top-K results up to the cell level. Cells are literal
// H3 indexes via github.com/uber/h3-go/v4: H3's own resolution levels are
// named r0..r15, so the configured resolutions map directly.
//
// The membership-grouping idea here — bucket members by a shared key, union
// their per-member results, trim to a budget — is the same shape as a
// grid-connected-components routine, adapted from a rectangular
// 4/8-connectivity grid to a hex index with no connectivity walk at all:
// H3 already assigns every coordinate to exactly one cell per resolution,
// so there is no frontier to explore, only a groupBy.
package cellgrid

import (
	"sort"

	"github.com/uber/h3-go/v4"

	"github.com/hexproxy/engine/internal/sssp"
)

// NodeCell returns the H3 cell index containing (lon, lat) at resolution
// res.
func NodeCell(lon, lat float64, res int) uint64 {
	cell := h3.LatLngToCell(h3.NewLatLng(lat, lon), res)
	return uint64(cell)
}

// Table maps every node's internal index to its cell id at one resolution.
type Table []uint64

// BuildTable resolves NodeCell for every node at the given resolution.
func BuildTable(lon, lat []float64, res int) Table {
	t := make(Table, len(lon))
	for i := range lon {
		t[i] = NodeCell(lon[i], lat[i], res)
	}
	return t
}

// Row is one long-form T_hex output row.
type Row struct {
	CellID      uint64
	AnchorIntID int32
	Seconds     uint16
	Resolution  int32
}

// Aggregate unions every member node's top-K list within each cell and
// trims the union back to K entries by ascending seconds. Cells with no
// reachable anchor are omitted entirely, never written with sentinels; the
// second return value counts exactly those omitted cells, so callers can
// report how many cells a run left with no anchor at all.
func Aggregate(table Table, nodeLabels []*sssp.TopK, k int, resolution int) ([]Row, int) {
	byCell := make(map[uint64]*sssp.TopK)
	allCells := make(map[uint64]struct{}, len(table))
	for node, cellID := range table {
		allCells[cellID] = struct{}{}
		label := nodeLabels[node]
		if label.Len() == 0 {
			continue
		}
		merged, ok := byCell[cellID]
		if !ok {
			merged = sssp.NewTopK(k)
			byCell[cellID] = merged
		}
		for _, e := range label.Sorted() {
			merged.Try(e.ID, e.Seconds)
		}
	}

	cellIDs := make([]uint64, 0, len(byCell))
	for id := range byCell {
		cellIDs = append(cellIDs, id)
	}
	sort.Slice(cellIDs, func(i, j int) bool { return cellIDs[i] < cellIDs[j] })

	rows := make([]Row, 0, len(byCell))
	for _, id := range cellIDs {
		for _, e := range byCell[id].Sorted() {
			rows = append(rows, Row{CellID: id, AnchorIntID: e.ID, Seconds: e.Seconds, Resolution: int32(resolution)})
		}
	}
	return rows, len(allCells) - len(byCell)
}
