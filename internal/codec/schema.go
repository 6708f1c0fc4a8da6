// Package codec defines the on-disk parquet schemas for every artifact the
// engine reads or writes (anchors, anchor_id_map, t_hex, d_anchor_category,
// d_anchor_brand) and a small atomic writer on top of
// github.com/parquet-go/parquet-go with zstd compression, which pulls in
// github.com/klauspost/compress transitively for the codec implementation.
//
// parquet-go is named in DESIGN.md as a dependency with no prior usage
// elsewhere in this codebase, chosen because every downstream reader needs a
// row-group-ordered, compressed, schema-typed columnar file and nothing else
// in scope covers that concern.
package codec

// AnchorRow is one row of anchors_{mode}.parquet.
type AnchorRow struct {
	SiteID       string   `parquet:"site_id"`
	AnchorIntID  int32    `parquet:"anchor_int_id"`
	ExternalNode int64    `parquet:"external_node"`
	Lon          float64  `parquet:"lon"`
	Lat          float64  `parquet:"lat"`
	CategoryIDs  []string `parquet:"category_ids,list"`
	BrandIDs     []string `parquet:"brand_ids,list"`
	POICount     int32    `parquet:"poi_count"`
}

// AnchorIDMapRow is one row of anchor_id_map_{mode}.parquet, the
// site_id <-> anchor_int_id cross-reference kept separate from AnchorRow so
// downstream joins never need the full POI/category payload.
type AnchorIDMapRow struct {
	SiteID      string `parquet:"site_id"`
	AnchorIntID int32  `parquet:"anchor_int_id"`
}

// THexRow is one row of t_hex/{state}_{mode}_t_hex.parquet: one cell's
// distance to one anchor at one resolution, row-group-ordered by CellID.
type THexRow struct {
	CellID      uint64 `parquet:"cell_id"`
	AnchorIntID int32  `parquet:"anchor_int_id"`
	Seconds     uint16 `parquet:"seconds"`
	Resolution  int32  `parquet:"resolution"`
	Mode        string `parquet:"mode"`
	SnapshotTS  string `parquet:"snapshot_ts"`
}

// DAnchorRow is one row of a d_anchor_{category,brand} partition: one
// anchor's distance to the partition's entity, row-group-ordered by
// AnchorIntID. Every anchor appears exactly once per entity, with
// Seconds == 65535 when unreached.
type DAnchorRow struct {
	AnchorIntID int32  `parquet:"anchor_int_id"`
	Seconds     uint16 `parquet:"seconds"`
}
