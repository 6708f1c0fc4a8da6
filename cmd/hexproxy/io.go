package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/hexproxy/engine/internal/anchor"
	"github.com/hexproxy/engine/internal/codec"
	"github.com/hexproxy/engine/internal/config"
	"github.com/hexproxy/engine/internal/csrgraph"
	"github.com/hexproxy/engine/internal/errs"
	"github.com/hexproxy/engine/internal/extract"
)

// loadPOIs reads a JSON array of POI records from path, the canonical POI
// table handed off by the upstream normalization/brand-alias-resolution
// stage.
func loadPOIs(path string) ([]anchor.POI, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Input(path, err)
	}
	var pois []anchor.POI
	if err := json.Unmarshal(raw, &pois); err != nil {
		return nil, errs.Schema(path, err)
	}
	return pois, nil
}

// loadGraph decodes an extract file and builds the CSR graph for mode.
func loadGraph(extractPath string, mode config.Mode, cfg *config.Config) (*csrgraph.Graph, error) {
	f, err := os.Open(extractPath)
	if err != nil {
		return nil, errs.Input(extractPath, err)
	}
	defer f.Close()

	src, err := extract.Decode(f)
	if err != nil {
		return nil, err
	}
	return csrgraph.Build(mode, src, cfg, logger)
}

// loadSites reads back the anchors_{mode}.parquet file written by
// build-anchors, reconstructing the []anchor.Site slice compute-t-hex and
// compute-d-anchor need, keyed to the graph's current internal node
// indices via each site's external node id.
func loadSites(path string, g *csrgraph.Graph) ([]anchor.Site, error) {
	rows, err := codec.Read[codec.AnchorRow](path)
	if err != nil {
		return nil, err
	}
	sites := make([]anchor.Site, 0, len(rows))
	for _, r := range rows {
		node, ok := g.InternalIndex(r.ExternalNode)
		if !ok {
			return nil, errs.Invariantf("anchor", "site %s references external node %d absent from this graph", r.SiteID, r.ExternalNode)
		}
		sites = append(sites, anchor.Site{
			SiteID:       r.SiteID,
			AnchorIntID:  r.AnchorIntID,
			NodeIndex:    node,
			ExternalNode: r.ExternalNode,
			Lon:          r.Lon,
			Lat:          r.Lat,
			CategoryIDs:  r.CategoryIDs,
			BrandIDs:     r.BrandIDs,
		})
	}
	return sites, nil
}

func snapshotTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
