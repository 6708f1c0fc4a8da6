package anchor

// Site is one anchor: a road-graph node that has >=1 POI snapped to it in a
// given mode.
type Site struct {
	SiteID       string // uuid5(namespace, "mode|node_id"); deterministic
	AnchorIntID  int32  // dense id assigned by sorting SiteID ascending
	NodeIndex    int32  // internal CSR node index
	ExternalNode int64  // external node id, carried for debugging/export
	Lon, Lat     float64
	POIIDs       []string
	CategoryIDs  []string // sorted, deduplicated
	BrandIDs     []string // sorted, deduplicated
}
