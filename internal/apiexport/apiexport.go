// Package apiexport materializes a node's resolved TT(cell, category) table
// into the browser-facing JSON shape.
//
// The one rule this package exists to enforce: labels and values are paired
// positionally, by index, never by re-sorting one series independently of
// the other. A prior version of this kind of export sorted ids and seconds separately for
// display and silently produced id/seconds pairs that never occurred
// together in the source data. FromParallel zips both series by index into
// Pairs, and ToObject takes them only as one caller-owned slice of Pairs, so
// that mistake is structurally impossible here.
package apiexport

import "github.com/hexproxy/engine/internal/errs"

// Pair is one (label, value) observation to export, e.g. one anchor id and
// its resolved seconds.
type Pair struct {
	Label string
	Value int64
}

// ToObject converts pairs into a label -> value map suitable for JSON
// encoding, preserving every pair exactly as given. A duplicate label is an
// InvariantViolation: two different values claiming the same key would
// silently discard one.
func ToObject(pairs []Pair) (map[string]int64, error) {
	out := make(map[string]int64, len(pairs))
	for _, p := range pairs {
		if _, exists := out[p.Label]; exists {
			return nil, errs.Invariantf("apiexport", "duplicate label %q in export", p.Label)
		}
		out[p.Label] = p.Value
	}
	return out, nil
}

// FromParallel zips two equal-length slices into Pairs by index, the
// positional-pairing discipline applied to the raw (labels, values) series
// as they come off storage, before any sorting or filtering happens.
func FromParallel(labels []string, values []int64) ([]Pair, error) {
	if len(labels) != len(values) {
		return nil, errs.Invariantf("apiexport", "labels/values length mismatch: %d vs %d", len(labels), len(values))
	}
	pairs := make([]Pair, len(labels))
	for i := range labels {
		pairs[i] = Pair{Label: labels[i], Value: values[i]}
	}
	return pairs, nil
}
