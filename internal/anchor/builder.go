package anchor

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/hexproxy/engine/internal/csrgraph"
	"github.com/hexproxy/engine/internal/errs"
)

// namespace is the fixed UUID namespace for site_id generation. A constant,
// project-specific namespace keeps ids stable across runs and across
// deployments of this engine, the same role a DNS/URL/OID namespace plays
// for UUIDv5 use.
var namespace = uuid.MustParse("8f14e45f-ceea-467e-bd0d-93c7b3b6e4a2")

const kNearestCandidates = 10

// Build snaps pois onto g's nodes and returns the resulting sites, already
// sorted by SiteID with AnchorIntID assigned densely.
func Build(g *csrgraph.Graph, pois []POI) ([]Site, error) {
	if len(pois) == 0 {
		return nil, nil
	}

	idx := newPlanarIndex(g.NodeLon, g.NodeLat, 250.0)

	groups := make(map[int32][]POI)
	for _, p := range pois {
		node := snap(g, idx, p)
		groups[node] = append(groups[node], p)
	}

	sites := make([]Site, 0, len(groups))
	for node, group := range groups {
		site, err := aggregate(g, string(g.Mode), node, group)
		if err != nil {
			return nil, err
		}
		sites = append(sites, site)
	}

	sort.Slice(sites, func(i, j int) bool { return sites[i].SiteID < sites[j].SiteID })
	for i := range sites {
		sites[i].AnchorIntID = int32(i)
	}

	if err := checkDense(sites); err != nil {
		return nil, errs.Invariant("anchor", err)
	}

	return sites, nil
}

// snap picks the graph node a POI is assigned to:
//  1. query the k=10 nearest nodes,
//  2. filter to degree >= 2, falling back to the full candidate set if none qualify,
//  3. among those, retain candidates within 2x the nearest distance,
//  4. pick the highest-degree survivor, ties broken by smaller distance then smaller node index.
func snap(g *csrgraph.Graph, idx *planarIndex, p POI) int32 {
	candidates := idx.kNearest(p.Lon, p.Lat, kNearestCandidates)
	if len(candidates) == 0 {
		return 0
	}

	connected := make([]candidate, 0, len(candidates))
	for _, c := range candidates {
		if g.Degree(c.node) >= 2 {
			connected = append(connected, c)
		}
	}
	pool := connected
	if len(pool) == 0 {
		pool = candidates
	}

	nearest := pool[0].dist
	accepted := make([]candidate, 0, len(pool))
	for _, c := range pool {
		if c.dist <= 2*nearest {
			accepted = append(accepted, c)
		}
	}

	best := accepted[0]
	bestDeg := g.Degree(best.node)
	for _, c := range accepted[1:] {
		deg := g.Degree(c.node)
		switch {
		case deg > bestDeg:
			best, bestDeg = c, deg
		case deg == bestDeg && c.dist < best.dist:
			best = c
		case deg == bestDeg && c.dist == best.dist && c.node < best.node:
			best = c
		}
	}
	return best.node
}

func aggregate(g *csrgraph.Graph, mode string, node int32, group []POI) (Site, error) {
	if int(node) >= g.N() {
		return Site{}, errs.Invariant("anchor", ErrInvalidNode)
	}
	if len(group) == 0 {
		return Site{}, errs.Invariant("anchor", ErrEmptySite)
	}

	categories := make(map[string]struct{})
	brands := make(map[string]struct{})
	poiIDs := make([]string, 0, len(group))
	for _, p := range group {
		poiIDs = append(poiIDs, p.ID)
		categories[p.Category] = struct{}{}
		if p.BrandID != "" {
			brands[p.BrandID] = struct{}{}
		}
	}
	sort.Strings(poiIDs)

	site := Site{
		SiteID:       uuid.NewSHA1(namespace, []byte(fmt.Sprintf("%s|%d", mode, g.ExternalID[node]))).String(),
		NodeIndex:    node,
		ExternalNode: g.ExternalID[node],
		Lon:          g.NodeLon[node],
		Lat:          g.NodeLat[node],
		POIIDs:       poiIDs,
		CategoryIDs:  sortedKeys(categories),
		BrandIDs:     sortedKeys(brands),
	}
	return site, nil
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func checkDense(sites []Site) error {
	for i, s := range sites {
		if s.AnchorIntID != int32(i) {
			return fmt.Errorf("%w: expected %d, got %d", ErrDuplicateAnchorID, i, s.AnchorIntID)
		}
	}
	return nil
}
