package anchor

import "math"

// planarIndex is a uniform-grid spatial index over nodes projected to a
// local equirectangular plane, used to answer "k nearest nodes" queries
// during snapping. It is built on the standard library rather than a pack
// dependency — see DESIGN.md for why no corpus library covers 2-D
// nearest-neighbor over points at this scale.
type planarIndex struct {
	cellSize   float64
	refLat     float64
	cells      map[[2]int][]int32 // grid cell -> node indices
	nodeLon    []float64
	nodeLat    []float64
}

const metersPerDegreeLat = 111_320.0

// newPlanarIndex builds an index over the given node coordinates. refLat
// fixes the longitude-scaling projection used for every query — a fast
// planar projection at a fixed reference latitude, approximated here with
// the graph's centroid latitude, which is accurate enough for the
// city/metro scale this engine targets.
func newPlanarIndex(lon, lat []float64, cellMeters float64) *planarIndex {
	var sumLat float64
	for _, l := range lat {
		sumLat += l
	}
	refLat := 0.0
	if len(lat) > 0 {
		refLat = sumLat / float64(len(lat))
	}

	idx := &planarIndex{
		cellSize: cellMeters,
		refLat:   refLat,
		cells:    make(map[[2]int][]int32),
		nodeLon:  lon,
		nodeLat:  lat,
	}
	for i := range lon {
		x, y := idx.project(lon[i], lat[i])
		key := idx.cellKey(x, y)
		idx.cells[key] = append(idx.cells[key], int32(i))
	}
	return idx
}

func (idx *planarIndex) project(lon, lat float64) (x, y float64) {
	lonScale := metersPerDegreeLat * math.Cos(idx.refLat*math.Pi/180)
	return lon * lonScale, lat * metersPerDegreeLat
}

func (idx *planarIndex) cellKey(x, y float64) [2]int {
	return [2]int{int(math.Floor(x / idx.cellSize)), int(math.Floor(y / idx.cellSize))}
}

type candidate struct {
	node int32
	dist float64
}

// kNearest returns up to k node indices nearest to (lon, lat), sorted
// ascending by planar distance, searching outward ring-by-ring until k
// candidates are found that no unscanned cell could beat, or the search
// reaches its 64-ring cap.
func (idx *planarIndex) kNearest(lon, lat float64, k int) []candidate {
	x, y := idx.project(lon, lat)
	cx, cy := int(math.Floor(x/idx.cellSize)), int(math.Floor(y/idx.cellSize))

	var found []candidate
	for radius := 0; radius < 64; radius++ {
		for dx := -radius; dx <= radius; dx++ {
			for dy := -radius; dy <= radius; dy++ {
				if radius > 0 && abs(dx) != radius && abs(dy) != radius {
					continue // only the outer ring of this radius; inner cells already scanned
				}
				for _, n := range idx.cells[[2]int{cx + dx, cy + dy}] {
					nx, ny := idx.project(idx.nodeLon[n], idx.nodeLat[n])
					d := math.Hypot(nx-x, ny-y)
					found = append(found, candidate{node: n, dist: d})
				}
			}
		}
		// Every cell outside this radius lies at least radius*cellSize from
		// the query point, so once the k-th candidate is within that, no
		// unscanned node can displace it.
		if len(found) >= k {
			sortCandidates(found)
			if found[k-1].dist <= float64(radius)*idx.cellSize {
				break
			}
		}
	}

	sortCandidates(found)
	if len(found) > k {
		found = found[:k]
	}
	return found
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func maxDist(cs []candidate) float64 {
	m := 0.0
	for _, c := range cs {
		if c.dist > m {
			m = c.dist
		}
	}
	return m
}

func sortCandidates(cs []candidate) {
	// Small k (10): insertion sort is simpler and fast enough, and keeps
	// this package free of a sort.Slice closure allocation per query.
	for i := 1; i < len(cs); i++ {
		for j := i; j > 0 && cs[j].dist < cs[j-1].dist; j-- {
			cs[j], cs[j-1] = cs[j-1], cs[j]
		}
	}
}
