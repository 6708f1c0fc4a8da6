// Package csrgraph is the routable graph at the center of the engine: an
// immutable, directed, compressed-sparse-row graph with uint16 edge weights
// in seconds, one instance per travel mode.
//
// The graph is owned once by GraphBuilder and shared read-only by every
// downstream worker (KBestEngine batches, DAnchorEngine entities) — no
// back-pointers from edges to nodes, no locking, because nothing ever
// mutates it after Build returns (Design Note "Cycle-free ownership of the
// graph").
package csrgraph

import (
	"errors"

	"github.com/hexproxy/engine/internal/config"
)

// Sentinel is the reserved "unreachable / overflow" cost value; no real edge
// weight may equal it.
const Sentinel uint16 = 65535

// MaxWeight is the largest admissible real edge weight; ceil()'d seconds
// saturate here rather than overflow into Sentinel.
const MaxWeight uint16 = 65534

var (
	// ErrSelfLoop would be returned by a validator that found a self-loop
	// surviving into the CSR; Build itself drops self-loops rather than
	// erroring, but downstream invariant checks reuse this
	// sentinel to report an InvariantViolation if one is ever found.
	ErrSelfLoop = errors.New("csrgraph: self-loop present in CSR")

	// ErrBadEdgeIndex indicates an edge's head index falls outside [0, N),
	// a fatal graph inconsistency.
	ErrBadEdgeIndex = errors.New("csrgraph: edge references out-of-range node index")
)

// Graph is an immutable directed CSR graph for one travel mode.
type Graph struct {
	Mode config.Mode

	// NodeLon, NodeLat hold each node's coordinates; ExternalID holds its
	// stable external identifier. All three are indexed by internal node
	// index 0..N.
	NodeLon    []float64
	NodeLat    []float64
	ExternalID []int64

	// Xadj is the offsets array of length N+1: node i's outgoing edges are
	// Head[Xadj[i]:Xadj[i+1]] with matching Weight slice.
	Xadj []uint32

	// Head is the destination node index of each edge, len E.
	Head []int32

	// Weight is the edge cost in seconds, len E, always < Sentinel.
	Weight []uint16

	extToInt map[int64]int32
}

// N returns the number of nodes.
func (g *Graph) N() int { return len(g.Xadj) - 1 }

// E returns the number of edges.
func (g *Graph) E() int { return len(g.Head) }

// InternalIndex resolves an external node id to its internal index, or
// (-1, false) if unknown.
func (g *Graph) InternalIndex(externalID int64) (int32, bool) {
	idx, ok := g.extToInt[externalID]
	if !ok {
		return -1, false
	}
	return idx, true
}

// Neighbors returns the edge slice [head, weight) for node i's outgoing
// edges. Callers must not retain or mutate the returned slices' backing
// arrays beyond the lifetime of g.
func (g *Graph) Neighbors(i int32) (heads []int32, weights []uint16) {
	lo, hi := g.Xadj[i], g.Xadj[i+1]
	return g.Head[lo:hi], g.Weight[lo:hi]
}

// Degree returns the out-degree of node i.
func (g *Graph) Degree(i int32) int {
	return int(g.Xadj[i+1] - g.Xadj[i])
}

// Validate re-checks the CSR invariants a well-formed graph from Build
// always satisfies. It exists for InvariantViolation reporting when a Graph
// was reconstructed from serialized state rather than freshly built.
func (g *Graph) Validate() error {
	n := g.N()
	for i, h := range g.Head {
		if h < 0 || int(h) >= n {
			return ErrBadEdgeIndex
		}
		_ = i
	}
	for u := 0; u < n; u++ {
		heads, _ := g.Neighbors(int32(u))
		for _, h := range heads {
			if int(h) == u {
				return ErrSelfLoop
			}
		}
	}
	return nil
}
