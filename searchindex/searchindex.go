// Package searchindex projects a lattice.Lattice into the flat record form
// an external inverted-index builder ingests (§4.6): one fixed-size Record
// per edge plus a single concatenated label pool, so a downstream indexer
// can slice labels out of the pool by offset and length instead of being
// handed a separate allocation per edge — the same zero-copy-by-slicing
// discipline the codec package uses for decode.
package searchindex

import (
	"github.com/parattice/parattice-go/lattice"
)

// Record describes one lattice edge for ingestion, in the field layout of
// §4.6. From and To are kept for convenience; a consumer following §4.6
// exactly never reads them, reconstructing from_node_id instead as the
// running sum of Increment minus one (see the search_index_relative_to_absolute
// transform this mirrors). Offset and TextLen locate the edge's label inside
// the pool returned alongside the records.
type Record struct {
	From uint32
	To   uint32

	// Increment is from_node_id - previous_from_node_id: the first record
	// in canonical order gets from_node_id + 1; a record sharing its
	// from_node_id with the one before it gets 0.
	Increment uint32
	// Length is to_node_id - from_node_id.
	Length uint32
	// OffsetStart is trunk_span(from_node_id).l.
	OffsetStart uint32
	// OffsetEnd is trunk_span(to_node_id).r.
	OffsetEnd uint32

	Offset  uint32 // label offset into Pool
	TextLen uint32 // label byte length in Pool
}

// Project flattens every edge of l, in the lattice's own canonical
// (From, To, Label) order, into records and a shared label pool.
func Project(l *lattice.Lattice) (records []Record, pool []byte) {
	records = make([]Record, 0, l.RequiredCapacity())
	var prevFrom uint32
	first := true
	for v := 0; v < l.Size(); v++ {
		from := uint32(v)
		for _, e := range l.Edges(from) {
			var increment uint32
			if first {
				increment = from + 1
				first = false
			} else {
				increment = from - prevFrom
			}
			prevFrom = from

			fromSpan := l.Span(from)
			toSpan := l.Span(e.To)
			offset := uint32(len(pool))
			pool = append(pool, e.Label...)

			records = append(records, Record{
				From:        from,
				To:          e.To,
				Increment:   increment,
				Length:      e.To - from,
				OffsetStart: fromSpan.L,
				OffsetEnd:   toSpan.R,
				Offset:      offset,
				TextLen:     uint32(len(e.Label)),
			})
		}
	}
	return records, pool
}

// Label slices a record's label out of the pool Project returned it
// alongside. Callers must not mutate the returned slice.
func Label(pool []byte, r Record) []byte {
	return pool[r.Offset : r.Offset+r.TextLen]
}
