package csrgraph

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/hexproxy/engine/internal/config"
	"github.com/hexproxy/engine/internal/errs"
	"github.com/hexproxy/engine/internal/extract"
)

// edgeCandidate is a not-yet-deduplicated directed edge, addressed by
// internal node index.
type edgeCandidate struct {
	from, to int32
	weight   uint16
}

// Build constructs the CSR graph for one travel mode from a decoded
// extract:
//
//  1. stream ways, filter by mode admissibility (classification + oneway),
//  2. assign internal node indices by first-appearance order within the mode,
//  3. compute edge seconds = ceil(length / speed), saturating at MaxWeight,
//  4. collapse parallel edges to the minimum weight and drop self-loops,
//  5. finalize into CSR with a single linear pass (sort by source, then
//     stable by destination).
//
// Unparseable/truncated extracts are the caller's concern (extract.Decode
// already reports those); Build's own fatal condition is an edge that
// references a way node never declared in Nodes().
func Build(mode config.Mode, src extract.Source, cfg *config.Config, log zerolog.Logger) (*Graph, error) {
	nodes := src.Nodes()
	ways := src.Ways()

	extToInt := make(map[int64]int32, len(nodes))
	lon := make([]float64, 0, len(nodes))
	lat := make([]float64, 0, len(nodes))
	extID := make([]int64, 0, len(nodes))

	// coordByExt maps external id -> coordinates, looked up lazily as ways
	// reference them, so internal indices follow first-appearance order
	// within admissible ways rather than the raw node table's order.
	coordByExt := make(map[int64][2]float64, len(nodes))
	for _, n := range nodes {
		coordByExt[n.ExternalID] = [2]float64{n.Lon, n.Lat}
	}

	speeds := cfg.Speeds[mode]
	isWalk := mode == config.ModeWalk
	motorway := make(map[string]struct{}, len(cfg.MotorwayClasses))
	for _, c := range cfg.MotorwayClasses {
		motorway[c] = struct{}{}
	}

	internalOf := func(ext int64) (int32, bool) {
		if idx, ok := extToInt[ext]; ok {
			return idx, true
		}
		c, ok := coordByExt[ext]
		if !ok {
			return 0, false
		}
		idx := int32(len(extID))
		extToInt[ext] = idx
		extID = append(extID, ext)
		lon = append(lon, c[0])
		lat = append(lat, c[1])
		return idx, true
	}

	var candidates []edgeCandidate
	var droppedTags int
	for _, way := range ways {
		if isWalk {
			if _, blocked := motorway[way.Classification]; blocked {
				continue
			}
		}
		var speed float64
		if isWalk {
			speed = cfg.PedestrianSpeedMPS
		} else {
			var ok bool
			speed, ok = speeds[way.Classification]
			if !ok {
				droppedTags++
				continue
			}
		}
		if speed <= 0 {
			droppedTags++
			continue
		}

		for i := 0; i+1 < len(way.Nodes); i++ {
			fromExt, toExt := way.Nodes[i], way.Nodes[i+1]
			fromIdx, ok1 := internalOf(fromExt)
			toIdx, ok2 := internalOf(toExt)
			if !ok1 || !ok2 {
				return nil, errs.Invariantf("csrgraph", "way %d references undeclared node", way.ExternalID)
			}
			w := secondsFor(way.LengthMeters[i], speed)

			switch way.Oneway {
			case extract.OnewayForward:
				candidates = append(candidates, edgeCandidate{fromIdx, toIdx, w})
			case extract.OnewayBackward:
				candidates = append(candidates, edgeCandidate{toIdx, fromIdx, w})
			default:
				candidates = append(candidates, edgeCandidate{fromIdx, toIdx, w})
				candidates = append(candidates, edgeCandidate{toIdx, fromIdx, w})
			}
		}
	}

	if droppedTags > 0 {
		log.Warn().Int("dropped_edges", droppedTags).Str("mode", string(mode)).
			Msg("classification outside speed table; edges dropped")
	}

	g := finalize(mode, candidates, extID, lon, lat, extToInt)

	components := g.componentCount()
	log.Info().Str("mode", string(mode)).Int("nodes", g.N()).Int("edges", g.E()).
		Int("components", components).Msg("graph built")

	return g, nil
}

// secondsFor computes ceil(length/speed) clamped to [0, MaxWeight].
func secondsFor(lengthMeters, speedMPS float64) uint16 {
	secs := math.Ceil(lengthMeters / speedMPS)
	if secs < 0 {
		secs = 0
	}
	if secs >= float64(MaxWeight) {
		return MaxWeight
	}
	return uint16(secs)
}

// finalize drops self-loops, collapses parallel edges to their minimum
// weight, and builds the CSR arrays via a source-major, destination-minor
// sort. A
// counting sort over the bounded source range is used in place of a
// general radix sort since node indices are already dense integers.
func finalize(mode config.Mode, candidates []edgeCandidate, extID []int64, lon, lat []float64, extToInt map[int64]int32) *Graph {
	n := len(extID)

	// Drop self-loops up front.
	filtered := candidates[:0]
	for _, c := range candidates {
		if c.from == c.to {
			continue
		}
		filtered = append(filtered, c)
	}
	candidates = filtered

	// Counting-sort by source (stable).
	counts := make([]int32, n+1)
	for _, c := range candidates {
		counts[c.from+1]++
	}
	for i := 0; i < n; i++ {
		counts[i+1] += counts[i]
	}
	bySource := make([]edgeCandidate, len(candidates))
	cursor := append([]int32(nil), counts[:n]...)
	for _, c := range candidates {
		bySource[cursor[c.from]] = c
		cursor[c.from]++
	}

	xadj := make([]uint32, n+1)
	var head []int32
	var weight []uint16

	for u := 0; u < n; u++ {
		lo, hi := counts[u], counts[u+1]
		bucket := bySource[lo:hi]
		sort.Slice(bucket, func(i, j int) bool { return bucket[i].to < bucket[j].to })

		xadj[u] = uint32(len(head))
		var lastTo int32 = -1
		for _, c := range bucket {
			if c.to == lastTo {
				// Parallel edge: collapse to the minimum weight.
				if c.weight < weight[len(weight)-1] {
					weight[len(weight)-1] = c.weight
				}
				continue
			}
			head = append(head, c.to)
			weight = append(weight, c.weight)
			lastTo = c.to
		}
	}
	xadj[n] = uint32(len(head))

	return &Graph{
		Mode:       mode,
		NodeLon:    lon,
		NodeLat:    lat,
		ExternalID: extID,
		Xadj:       xadj,
		Head:       head,
		Weight:     weight,
		extToInt:   extToInt,
	}
}

// componentCount runs an undirected connectivity diagnostic over the graph
// (edges treated as undirected for this purpose) and returns the number of
// weakly-connected components — logged as a build-time diagnostic, not used
// by any downstream algorithm, since disconnected components are preserved
// rather than rejected.
func (g *Graph) componentCount() int {
	n := g.N()
	visited := make([]bool, n)
	// reverse adjacency built lazily via a pass over Head, since Xadj only
	// gives forward neighbors and components must treat edges as undirected.
	revHeads := make([][]int32, n)
	for u := 0; u < n; u++ {
		heads, _ := g.Neighbors(int32(u))
		for _, v := range heads {
			revHeads[v] = append(revHeads[v], int32(u))
		}
	}

	components := 0
	queue := make([]int32, 0, n)
	for start := 0; start < n; start++ {
		if visited[start] {
			continue
		}
		components++
		visited[start] = true
		queue = queue[:0]
		queue = append(queue, int32(start))
		for qi := 0; qi < len(queue); qi++ {
			u := queue[qi]
			heads, _ := g.Neighbors(u)
			for _, v := range heads {
				if !visited[v] {
					visited[v] = true
					queue = append(queue, v)
				}
			}
			for _, v := range revHeads[u] {
				if !visited[v] {
					visited[v] = true
					queue = append(queue, v)
				}
			}
		}
	}
	return components
}
