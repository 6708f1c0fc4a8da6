package cellgrid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexproxy/engine/internal/cellgrid"
	"github.com/hexproxy/engine/internal/sssp"
)

func TestBuildTable_OneCellPerCoordinate(t *testing.T) {
	lon := []float64{-122.42, -122.42, -74.00}
	lat := []float64{37.77, 37.77, 40.71}

	table := cellgrid.BuildTable(lon, lat, 7)
	require.Len(t, table, 3)
	assert.Equal(t, table[0], table[1], "identical coordinates must map to the same cell")
	assert.NotEqual(t, table[0], table[2], "distant coordinates must map to different cells")
}

func TestAggregate_UnionsAndTrimsToK(t *testing.T) {
	// Two nodes share a cell, a third is alone in another cell.
	table := cellgrid.Table{100, 100, 200}

	a := sssp.NewTopK(2)
	a.Try(1, 50)
	a.Try(2, 999) // will be evicted once a closer entry for anchor 2 arrives
	b := sssp.NewTopK(2)
	b.Try(2, 80)
	b.Try(3, 120)
	c := sssp.NewTopK(2)
	c.Try(1, 10)

	rows, unreachable := cellgrid.Aggregate(table, []*sssp.TopK{a, b, c}, 2, 7)
	assert.Equal(t, 0, unreachable)

	var cell100, cell200 []cellgrid.Row
	for _, r := range rows {
		if r.CellID == 100 {
			cell100 = append(cell100, r)
		} else {
			cell200 = append(cell200, r)
		}
	}

	require.Len(t, cell100, 2) // trimmed to K=2 from the 3-way union
	assert.Equal(t, uint16(50), cell100[0].Seconds)
	assert.Equal(t, int32(1), cell100[0].AnchorIntID)
	assert.Equal(t, uint16(80), cell100[1].Seconds)
	assert.Equal(t, int32(2), cell100[1].AnchorIntID)

	require.Len(t, cell200, 1)
	assert.Equal(t, int32(1), cell200[0].AnchorIntID)
	assert.Equal(t, uint16(10), cell200[0].Seconds)
}

func TestAggregate_OmitsUnreachableCells(t *testing.T) {
	table := cellgrid.Table{100}
	empty := sssp.NewTopK(2)

	rows, unreachable := cellgrid.Aggregate(table, []*sssp.TopK{empty}, 2, 7)
	assert.Empty(t, rows)
	assert.Equal(t, 1, unreachable)
}
