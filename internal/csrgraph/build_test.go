package csrgraph_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexproxy/engine/internal/config"
	"github.com/hexproxy/engine/internal/csrgraph"
	"github.com/hexproxy/engine/internal/extract"
)

func driveConfig() *config.Config {
	return &config.Config{
		Speeds: map[config.Mode]config.SpeedTable{
			config.ModeDrive: {
				"residential": 10.0,
				"motorway":    30.0,
			},
		},
		PedestrianSpeedMPS:    1.4,
		MotorwayClasses:       []string{"motorway"},
		KBest:                 2,
		Resolutions:           []int{7},
		BatchSize:             10,
		CutoffSeconds:         1800,
		OverflowCutoffSeconds: 2400,
	}
}

func threeNodeSource() extract.Source {
	nodes := []extract.NodeRecord{
		{ExternalID: 1, Lon: 0, Lat: 0},
		{ExternalID: 2, Lon: 0.01, Lat: 0},
		{ExternalID: 3, Lon: 0.02, Lat: 0},
	}
	ways := []extract.WayRecord{
		{
			ExternalID:     1,
			Nodes:          []int64{1, 2, 3},
			Classification: "residential",
			Oneway:         extract.OnewayNone,
			LengthMeters:   []float64{100, 100},
		},
	}
	return extract.NewMemorySource(nodes, ways)
}

func TestBuild_UndirectedWayProducesBothDirections(t *testing.T) {
	g, err := csrgraph.Build(config.ModeDrive, threeNodeSource(), driveConfig(), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, g.Validate())

	assert.Equal(t, 3, g.N())
	assert.Equal(t, 4, g.E()) // 2 segments, both directions

	n1, ok := g.InternalIndex(1)
	require.True(t, ok)
	heads, weights := g.Neighbors(n1)
	require.Len(t, heads, 1)
	assert.Equal(t, uint16(10), weights[0]) // 100m / 10mps = 10s
}

func TestBuild_OnewayForwardOmitsReverseEdge(t *testing.T) {
	nodes := []extract.NodeRecord{
		{ExternalID: 1, Lon: 0, Lat: 0},
		{ExternalID: 2, Lon: 0.01, Lat: 0},
	}
	ways := []extract.WayRecord{
		{ExternalID: 1, Nodes: []int64{1, 2}, Classification: "residential", Oneway: extract.OnewayForward, LengthMeters: []float64{100}},
	}
	g, err := csrgraph.Build(config.ModeDrive, extract.NewMemorySource(nodes, ways), driveConfig(), zerolog.Nop())
	require.NoError(t, err)

	n1, _ := g.InternalIndex(1)
	n2, _ := g.InternalIndex(2)
	assert.Equal(t, 1, g.Degree(n1))
	assert.Equal(t, 0, g.Degree(n2))
}

func TestBuild_ParallelEdgesCollapseToMinimum(t *testing.T) {
	nodes := []extract.NodeRecord{
		{ExternalID: 1, Lon: 0, Lat: 0},
		{ExternalID: 2, Lon: 0.01, Lat: 0},
	}
	ways := []extract.WayRecord{
		{ExternalID: 1, Nodes: []int64{1, 2}, Classification: "residential", Oneway: extract.OnewayForward, LengthMeters: []float64{500}},
		{ExternalID: 2, Nodes: []int64{1, 2}, Classification: "motorway", Oneway: extract.OnewayForward, LengthMeters: []float64{300}},
	}
	g, err := csrgraph.Build(config.ModeDrive, extract.NewMemorySource(nodes, ways), driveConfig(), zerolog.Nop())
	require.NoError(t, err)

	n1, _ := g.InternalIndex(1)
	heads, weights := g.Neighbors(n1)
	require.Len(t, heads, 1) // collapsed to one edge
	assert.Equal(t, uint16(10), weights[0])  // min(500/10=50s, 300/30=10s)
}

func TestBuild_WalkModeDropsMotorwaysAndUsesPedestrianSpeed(t *testing.T) {
	nodes := []extract.NodeRecord{
		{ExternalID: 1, Lon: 0, Lat: 0},
		{ExternalID: 2, Lon: 0.01, Lat: 0},
		{ExternalID: 3, Lon: 0.02, Lat: 0},
	}
	ways := []extract.WayRecord{
		{ExternalID: 1, Nodes: []int64{1, 2}, Classification: "residential", Oneway: extract.OnewayNone, LengthMeters: []float64{14}},
		{ExternalID: 2, Nodes: []int64{2, 3}, Classification: "motorway", Oneway: extract.OnewayNone, LengthMeters: []float64{1000}},
	}
	g, err := csrgraph.Build(config.ModeWalk, extract.NewMemorySource(nodes, ways), driveConfig(), zerolog.Nop())
	require.NoError(t, err)

	n1, _ := g.InternalIndex(1)
	n2, ok2 := g.InternalIndex(2)
	require.True(t, ok2)
	heads, weights := g.Neighbors(n1)
	require.Len(t, heads, 1)
	assert.Equal(t, n2, heads[0])
	assert.Equal(t, uint16(10), weights[0]) // ceil(14 / 1.4) = 10s

	// node 3 is only reachable via the motorway segment, which walk mode drops.
	_, ok3 := g.InternalIndex(3)
	assert.False(t, ok3)
}

func TestBuild_SelfLoopDropped(t *testing.T) {
	nodes := []extract.NodeRecord{{ExternalID: 1, Lon: 0, Lat: 0}}
	ways := []extract.WayRecord{
		{ExternalID: 1, Nodes: []int64{1, 1}, Classification: "residential", Oneway: extract.OnewayNone, LengthMeters: []float64{5}},
	}
	g, err := csrgraph.Build(config.ModeDrive, extract.NewMemorySource(nodes, ways), driveConfig(), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 0, g.E())
	assert.NoError(t, g.Validate())
}

func TestBuild_UnknownClassificationDropsEdgeWithoutError(t *testing.T) {
	nodes := []extract.NodeRecord{
		{ExternalID: 1, Lon: 0, Lat: 0},
		{ExternalID: 2, Lon: 0.01, Lat: 0},
	}
	ways := []extract.WayRecord{
		{ExternalID: 1, Nodes: []int64{1, 2}, Classification: "unpaved_track", Oneway: extract.OnewayNone, LengthMeters: []float64{10}},
	}
	g, err := csrgraph.Build(config.ModeDrive, extract.NewMemorySource(nodes, ways), driveConfig(), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 0, g.E())
}
