// Package extract reads the project's binary network-extract format: a
// length-prefixed stream of node and way records with tags, analogous to the
// pack's own bulk-loader readers (a single forward pass, internal ids
// assigned by first appearance, no random access into the source file).
//
// The wire format is intentionally narrow — it is a stand-in for whatever
// real extract decoder (PBF, GeoJSON, a vendor dump) the deployment uses.
// internal/csrgraph depends only on the Source interface, so swapping the
// decoder never touches graph construction.
package extract

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hexproxy/engine/internal/errs"
)

// magic identifies the stream format; version allows the layout to evolve.
const (
	magic          uint32 = 0x48584E58 // "HXNX"
	formatVersion  uint16 = 1
)

// OnewayMode records the one-way semantics of a way.
type OnewayMode uint8

const (
	// OnewayNone means the way is traversable in both directions.
	OnewayNone OnewayMode = iota
	// OnewayForward means the way is traversable only from Nodes[0] to Nodes[len-1].
	OnewayForward
	// OnewayBackward means the way is traversable only from Nodes[len-1] to Nodes[0].
	OnewayBackward
)

// NodeRecord is one raw node from the extract: a stable external id and its
// coordinates.
type NodeRecord struct {
	ExternalID int64
	Lon, Lat   float64
}

// WayRecord is one raw way: an ordered chain of external node ids, the
// highway classification tag used to look up speed, and one-way semantics.
type WayRecord struct {
	ExternalID     int64
	Nodes          []int64
	Classification string
	Oneway         OnewayMode
	LengthMeters   []float64 // per-segment length, len(Nodes)-1 entries
}

// Source exposes the parsed extract to GraphBuilder. Ways returns records in
// file order; GraphBuilder relies on that order only to assign internal node
// indices by first appearance, not for correctness.
type Source interface {
	Nodes() []NodeRecord
	Ways() []WayRecord
}

// memorySource is the one Source implementation in this repo: the whole
// extract loaded into memory after a single streaming decode pass. Extracts
// in the few-GiB range this engine targets comfortably fit; a decoder for
// a genuinely unbounded source would implement Source directly over a
// lazily-paged backing store without changing GraphBuilder.
type memorySource struct {
	nodes []NodeRecord
	ways  []WayRecord
}

func (s *memorySource) Nodes() []NodeRecord { return s.nodes }
func (s *memorySource) Ways() []WayRecord   { return s.ways }

// NewMemorySource builds a Source directly from decoded records, primarily
// for tests and for callers that already have the extract in another form.
func NewMemorySource(nodes []NodeRecord, ways []WayRecord) Source {
	return &memorySource{nodes: nodes, ways: ways}
}

// Decode performs one forward pass over r, parsing the binary extract
// format, and returns a ready-to-use Source. A truncated or malformed
// stream is fatal: InputError.
func Decode(r io.Reader) (Source, error) {
	br := bufio.NewReader(r)

	var gotMagic uint32
	if err := binary.Read(br, binary.LittleEndian, &gotMagic); err != nil {
		return nil, errs.Input("extract", fmt.Errorf("reading magic: %w", err))
	}
	if gotMagic != magic {
		return nil, errs.Input("extract", fmt.Errorf("bad magic %08x", gotMagic))
	}
	var version uint16
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return nil, errs.Input("extract", fmt.Errorf("reading version: %w", err))
	}
	if version != formatVersion {
		return nil, errs.Input("extract", fmt.Errorf("unsupported extract version %d", version))
	}

	var nodeCount uint32
	if err := binary.Read(br, binary.LittleEndian, &nodeCount); err != nil {
		return nil, errs.Input("extract", fmt.Errorf("reading node count: %w", err))
	}
	nodes := make([]NodeRecord, 0, nodeCount)
	for i := uint32(0); i < nodeCount; i++ {
		var rec NodeRecord
		if err := binary.Read(br, binary.LittleEndian, &rec.ExternalID); err != nil {
			return nil, errs.Input("extract", fmt.Errorf("node %d id: %w", i, err))
		}
		if err := binary.Read(br, binary.LittleEndian, &rec.Lon); err != nil {
			return nil, errs.Input("extract", fmt.Errorf("node %d lon: %w", i, err))
		}
		if err := binary.Read(br, binary.LittleEndian, &rec.Lat); err != nil {
			return nil, errs.Input("extract", fmt.Errorf("node %d lat: %w", i, err))
		}
		nodes = append(nodes, rec)
	}

	var wayCount uint32
	if err := binary.Read(br, binary.LittleEndian, &wayCount); err != nil {
		return nil, errs.Input("extract", fmt.Errorf("reading way count: %w", err))
	}
	ways := make([]WayRecord, 0, wayCount)
	for i := uint32(0); i < wayCount; i++ {
		w, err := decodeWay(br)
		if err != nil {
			return nil, errs.Input("extract", fmt.Errorf("way %d: %w", i, err))
		}
		ways = append(ways, w)
	}

	return &memorySource{nodes: nodes, ways: ways}, nil
}

func decodeWay(br *bufio.Reader) (WayRecord, error) {
	var w WayRecord
	if err := binary.Read(br, binary.LittleEndian, &w.ExternalID); err != nil {
		return w, err
	}
	var oneway uint8
	if err := binary.Read(br, binary.LittleEndian, &oneway); err != nil {
		return w, err
	}
	w.Oneway = OnewayMode(oneway)

	var classLen uint16
	if err := binary.Read(br, binary.LittleEndian, &classLen); err != nil {
		return w, err
	}
	classBuf := make([]byte, classLen)
	if _, err := io.ReadFull(br, classBuf); err != nil {
		return w, err
	}
	w.Classification = string(classBuf)

	var nodeCount uint32
	if err := binary.Read(br, binary.LittleEndian, &nodeCount); err != nil {
		return w, err
	}
	w.Nodes = make([]int64, nodeCount)
	for i := range w.Nodes {
		if err := binary.Read(br, binary.LittleEndian, &w.Nodes[i]); err != nil {
			return w, err
		}
	}
	if nodeCount > 1 {
		w.LengthMeters = make([]float64, nodeCount-1)
		for i := range w.LengthMeters {
			if err := binary.Read(br, binary.LittleEndian, &w.LengthMeters[i]); err != nil {
				return w, err
			}
		}
	}
	return w, nil
}

// Encode writes nodes and ways to w in the format Decode understands. Used
// by tests and by any tool that produces a Source in-process and wants to
// round-trip it through the wire format.
func Encode(w io.Writer, nodes []NodeRecord, ways []WayRecord) error {
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, magic); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, formatVersion); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(nodes))); err != nil {
		return err
	}
	for _, n := range nodes {
		if err := binary.Write(bw, binary.LittleEndian, n.ExternalID); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, n.Lon); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, n.Lat); err != nil {
			return err
		}
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(ways))); err != nil {
		return err
	}
	for _, way := range ways {
		if err := binary.Write(bw, binary.LittleEndian, way.ExternalID); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, uint8(way.Oneway)); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, uint16(len(way.Classification))); err != nil {
			return err
		}
		if _, err := bw.WriteString(way.Classification); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, uint32(len(way.Nodes))); err != nil {
			return err
		}
		for _, id := range way.Nodes {
			if err := binary.Write(bw, binary.LittleEndian, id); err != nil {
				return err
			}
		}
		for _, l := range way.LengthMeters {
			if err := binary.Write(bw, binary.LittleEndian, l); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
