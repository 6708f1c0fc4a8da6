// Package sssp implements the bucketed multi-source shortest-path kernel
// shared by KBestEngine (K>1, all anchors as sources) and DAnchorEngine
// (K=1, one entity's source set at a time). It is the batch/entity-scoped
// compute core: callers own parallelism and merging, this package owns one
// run's bucket queue and per-node top-K bookkeeping.
package sssp

import "sort"

// Sentinel mirrors csrgraph.Sentinel; duplicated here (not imported) to keep
// this package free of a csrgraph dependency — it only needs uint16 costs
// and int32 node/anchor indices, never the graph's coordinate or CSR types.
const Sentinel uint16 = 65535

// Entry is one (source id, seconds) pair kept in a node's top-K list.
type Entry struct {
	ID      int32
	Seconds uint16
}

// TopK is an inline, capacity-K max-heap keyed on Seconds, with the
// additional constraint that each source ID appears at most once: a
// candidate is admitted only if its distance beats the current worst entry
// in the heap and its source is not already present. K is expected to be
// small (single digits to a few dozen), so an O(K) linear scan for the
// existing-ID check is cheaper in practice than a secondary index.
type TopK struct {
	k       int
	entries []Entry
}

// NewTopK allocates a TopK with the given capacity.
func NewTopK(k int) *TopK {
	return &TopK{k: k, entries: make([]Entry, 0, k)}
}

// Try offers (id, seconds) to the heap. It returns true iff the heap's
// state changed. An existing entry for id is updated only if seconds
// strictly improves it (a relaxation rule of "<", never "<=", so
// equal-cost duplicates are rejected silently).
func (t *TopK) Try(id int32, seconds uint16) bool {
	for i := range t.entries {
		if t.entries[i].ID == id {
			if seconds < t.entries[i].Seconds {
				t.entries[i].Seconds = seconds
				t.fixAfterDecrease(i)
				return true
			}
			return false
		}
	}
	if len(t.entries) < t.k {
		t.entries = append(t.entries, Entry{ID: id, Seconds: seconds})
		t.siftUp(len(t.entries) - 1)
		return true
	}
	if t.k > 0 && seconds < t.entries[0].Seconds {
		t.entries[0] = Entry{ID: id, Seconds: seconds}
		t.siftDown(0)
		return true
	}
	return false
}

// Worst returns the current maximum (worst) seconds in the heap and true,
// or (0, false) if the heap has not yet reached capacity K — callers use
// this to decide whether an overflow-tier candidate (admitted under the
// secondary, looser cutoff) can still fill a remaining slot.
func (t *TopK) Worst() (uint16, bool) {
	if len(t.entries) < t.k || len(t.entries) == 0 {
		return 0, false
	}
	return t.entries[0].Seconds, true
}

// Len reports the number of entries currently held.
func (t *TopK) Len() int { return len(t.entries) }

// Sorted returns the heap's entries in ascending-seconds order, ties broken
// by smaller ID.
func (t *TopK) Sorted() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Seconds != out[j].Seconds {
			return out[i].Seconds < out[j].Seconds
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Merge folds another TopK's entries into t, preserving t's capacity and
// dedup-by-ID semantics. Order of merge does not affect the final content
// since Try is commutative over a fixed final entry set.
func (t *TopK) Merge(other *TopK) {
	for _, e := range other.entries {
		t.Try(e.ID, e.Seconds)
	}
}

func (t *TopK) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if t.entries[parent].Seconds >= t.entries[i].Seconds {
			break
		}
		t.entries[parent], t.entries[i] = t.entries[i], t.entries[parent]
		i = parent
	}
}

func (t *TopK) siftDown(i int) {
	n := len(t.entries)
	for {
		left, right := 2*i+1, 2*i+2
		largest := i
		if left < n && t.entries[left].Seconds > t.entries[largest].Seconds {
			largest = left
		}
		if right < n && t.entries[right].Seconds > t.entries[largest].Seconds {
			largest = right
		}
		if largest == i {
			return
		}
		t.entries[i], t.entries[largest] = t.entries[largest], t.entries[i]
		i = largest
	}
}

// fixAfterDecrease restores heap order after entries[i].Seconds decreased.
func (t *TopK) fixAfterDecrease(i int) {
	// In a max-heap a smaller key can only violate order against its
	// children, so the entry moves down.
	t.siftDown(i)
}
