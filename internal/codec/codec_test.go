package codec_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexproxy/engine/internal/codec"
)

func TestWriteAtomic_ReadRoundTrip_AnchorRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anchors_drive.parquet")
	rows := []codec.AnchorRow{
		{SiteID: "a", AnchorIntID: 1, ExternalNode: 100, Lon: -122.4, Lat: 37.7, CategoryIDs: []string{"grocery"}, POICount: 1},
		{SiteID: "b", AnchorIntID: 2, ExternalNode: 200, Lon: -74.0, Lat: 40.7, BrandIDs: []string{"acme"}, POICount: 2},
	}

	require.NoError(t, codec.WriteAtomic(path, rows))

	got, err := codec.Read[codec.AnchorRow](path)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestWriteAtomic_ReadRoundTrip_THexRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t_hex.parquet")
	rows := []codec.THexRow{
		{CellID: 1000, AnchorIntID: 10, Seconds: 120, Resolution: 7, Mode: "drive", SnapshotTS: "2026-01-01T00:00:00Z"},
		{CellID: 1000, AnchorIntID: 20, Seconds: 180, Resolution: 7, Mode: "drive", SnapshotTS: "2026-01-01T00:00:00Z"},
	}

	require.NoError(t, codec.WriteAtomic(path, rows))

	got, err := codec.Read[codec.THexRow](path)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestWriteAtomic_ReadRoundTrip_DAnchorRow_Sentinel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d_anchor.parquet")
	rows := []codec.DAnchorRow{
		{AnchorIntID: 10, Seconds: 0},
		{AnchorIntID: 20, Seconds: 65535}, // unreached sentinel must survive round-trip intact
	}

	require.NoError(t, codec.WriteAtomic(path, rows))

	got, err := codec.Read[codec.DAnchorRow](path)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestWriteAtomic_OverwritesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.parquet")
	first := []codec.AnchorIDMapRow{{SiteID: "a", AnchorIntID: 1}}
	second := []codec.AnchorIDMapRow{{SiteID: "b", AnchorIntID: 2}, {SiteID: "c", AnchorIntID: 3}}

	require.NoError(t, codec.WriteAtomic(path, first))
	require.NoError(t, codec.WriteAtomic(path, second))

	got, err := codec.Read[codec.AnchorIDMapRow](path)
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestWriteAtomic_NoTempFileLeftBehindOnSuccess(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clean.parquet")
	require.NoError(t, codec.WriteAtomic(path, []codec.AnchorIDMapRow{{SiteID: "a", AnchorIntID: 1}}))

	entries, err := filepath.Glob(filepath.Join(dir, ".tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, entries, "atomic writer must not leave a temp file after a successful rename")
}
