package sssp

import "context"

// queueItem is one pending (node, source, tentative-distance) relaxation,
// as pushed into a bucketQueue bucket.
type queueItem struct {
	node   int32
	srcID  int32
	dist   uint16
}

// bucketQueue is Dial's algorithm's bucket priority queue: a FIFO bucket per
// tentative distance, width 1 second, advanced by a monotonically
// increasing "current second" cursor. Buckets are
// indexed 0..overflowCutoff inclusive; nothing is ever pushed past the
// overflow cutoff, so the array never needs to grow or wrap.
type bucketQueue struct {
	buckets [][]queueItem
}

func newBucketQueue(overflowCutoff uint16) *bucketQueue {
	return &bucketQueue{buckets: make([][]queueItem, int(overflowCutoff)+1)}
}

func (bq *bucketQueue) push(node, srcID int32, dist uint16) {
	bq.buckets[dist] = append(bq.buckets[dist], queueItem{node: node, srcID: srcID, dist: dist})
}

// NeighborFunc abstracts outgoing-edge lookup so this package never imports
// csrgraph; it receives an internal node index and returns its destination
// indices with matching edge weights.
type NeighborFunc func(node int32) (heads []int32, weights []uint16)

// Source is one multi-source origin: an internal node index paired with the
// opaque id (anchor_int_id, or any caller-chosen id) to record in the
// resulting top-K lists.
type Source struct {
	Node int32
	ID   int32
}

// Options parameterizes one Run.
type Options struct {
	// K is the number of best entries retained per node.
	K int
	// CutoffSeconds is the primary cost budget.
	CutoffSeconds uint16
	// OverflowCutoffSeconds is the secondary, looser cost budget; entries
	// beyond CutoffSeconds but within this bound are admitted only if they
	// would still improve a node's top-K.
	OverflowCutoffSeconds uint16
}

// saturateAdd adds a and b without uint16 wraparound, returning a uint32 so
// the caller can compare against cutoffs before truncating back to uint16.
func saturateAdd(a uint16, b uint16) uint32 {
	return uint32(a) + uint32(b)
}

// Run executes one multi-source bucketed SSSP pass: relax from every source
// at distance 0 and propagate via Dial's algorithm, maintaining a
// capacity-K top-K list per node. It is the kernel both KBestEngine (per
// batch, K from config) and DAnchorEngine (per entity, K=1) invoke.
//
// Run owns no shared mutable state across calls: labels is freshly
// allocated, so concurrent Run calls over disjoint source sets (different
// batches, different entities) never contend.
func Run(ctx context.Context, n int, neighbors NeighborFunc, sources []Source, opts Options) ([]*TopK, error) {
	labels := make([]*TopK, n)
	for i := range labels {
		labels[i] = NewTopK(opts.K)
	}

	bq := newBucketQueue(opts.OverflowCutoffSeconds)
	for _, s := range sources {
		bq.push(s.Node, s.ID, 0)
	}

	for cur := 0; cur <= int(opts.OverflowCutoffSeconds); cur++ {
		if cur%4096 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		bucket := bq.buckets[cur]
		for i := 0; i < len(bucket); i++ {
			item := bucket[i]
			bucket = bq.buckets[cur] // pick up same-bucket pushes from zero-weight edges

			if !labels[item.node].Try(item.srcID, item.dist) {
				continue // stale or non-improving: lazy-decrease-key skip
			}

			heads, weights := neighbors(item.node)
			for e, v := range heads {
				nd32 := saturateAdd(item.dist, weights[e])
				if nd32 > uint32(opts.OverflowCutoffSeconds) {
					continue // beyond even the overflow tier: not admitted
				}
				nd := uint16(nd32)

				if nd <= opts.CutoffSeconds {
					bq.push(v, item.srcID, nd)
					continue
				}
				// Overflow tier: only worth pushing if it could still
				// improve v's heap.
				if worst, full := labels[v].Worst(); !full || nd < worst {
					bq.push(v, item.srcID, nd)
				}
			}
		}
		bq.buckets[cur] = nil
	}

	return labels, nil
}
