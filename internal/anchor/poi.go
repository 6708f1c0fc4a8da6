// Package anchor implements AnchorSiteBuilder: snapping POIs onto graph
// nodes with connectivity-aware selection, and assigning the resulting
// sites stable, deterministic integer ids.
package anchor

// POI is the canonical upstream record this engine consumes, delivered by
// an upstream normalization/brand-alias-resolution stage.
type POI struct {
	ID       string
	BrandID  string // empty if the POI has no brand
	Category string
	Lon, Lat float64
	Source   string
}
