// Package codec implements §4.4's deterministic binary serialization of a
// lattice.Lattice: a small fixed header (magic, version, build id) followed
// by varint-encoded nodes, spans and edges, closed off with a CRC-32C
// checksum. The layout is designed so Decode can read labels directly out of
// a backing byte slice — including one obtained from an mmap — without
// copying them, mirroring the teacher's own zero-copy philosophy even though
// the wire shape itself is custom to this format rather than the teacher's
// DAWG header (see internal/mmapfile and DESIGN.md).
package codec

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/parattice/parattice-go/lattice"
)

// Magic identifies a parattice binary lattice file.
var Magic = [8]byte{'P', 'A', 'R', 'A', 'T', 'T', 'C', '1'}

// Version is the current wire format version. Version 2 added the
// trunkWords section (lattice.Lattice.TrunkWords), needed once invariant 4
// stopped being re-derivable from the graph alone.
const Version = 2

var crcTable = crc32.MakeTable(crc32.Castagnoli)

// Encode serializes l into the format described above.
func Encode(l *lattice.Lattice) ([]byte, error) {
	n := l.Size()
	buf := make([]byte, 0, 64+n*16)
	buf = append(buf, Magic[:]...)
	buf = append(buf, Version)
	id := l.BuildID()
	buf = append(buf, id[:]...)
	buf = binary.AppendUvarint(buf, uint64(n))

	trunkWords := l.TrunkWords()
	buf = binary.AppendUvarint(buf, uint64(len(trunkWords)))
	for _, w := range trunkWords {
		buf = binary.AppendUvarint(buf, uint64(len(w)))
		buf = append(buf, w...)
	}

	for v := uint32(0); v < uint32(n); v++ {
		span := l.Span(v)
		buf = binary.AppendUvarint(buf, uint64(span.L))
		buf = binary.AppendUvarint(buf, uint64(span.R))
		edges := l.Edges(v)
		buf = binary.AppendUvarint(buf, uint64(len(edges)))
		for _, e := range edges {
			if e.To <= v {
				return nil, fmt.Errorf("%w: edge %d->%d is not forward", lattice.ErrInput, v, e.To)
			}
			buf = binary.AppendUvarint(buf, uint64(e.To-v))
			buf = binary.AppendUvarint(buf, uint64(len(e.Label)))
			buf = append(buf, e.Label...)
		}
	}

	sum := crc32.Checksum(buf, crcTable)
	buf = binary.LittleEndian.AppendUint32(buf, sum)
	return buf, nil
}

// Decode parses a buffer produced by Encode. Edge labels in the returned
// lattice alias data into the passed-in slice; callers must keep it alive
// (and must not mutate it) for the lattice's lifetime, matching the
// zero-copy contract an mmap-backed caller relies on.
func Decode(data []byte) (*lattice.Lattice, error) {
	if len(data) < len(Magic)+1+16+4 {
		return nil, fmt.Errorf("%w: buffer too small for header and checksum", lattice.ErrDecode)
	}
	if string(data[:len(Magic)]) != string(Magic[:]) {
		return nil, fmt.Errorf("%w: bad magic", lattice.ErrDecode)
	}
	off := len(Magic)
	version := data[off]
	off++
	if version != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", lattice.ErrDecode, version)
	}

	wantSum := binary.LittleEndian.Uint32(data[len(data)-4:])
	body := data[:len(data)-4]
	if gotSum := crc32.Checksum(body, crcTable); gotSum != wantSum {
		return nil, fmt.Errorf("%w: checksum mismatch", lattice.ErrDecode)
	}

	var buildID [16]byte
	copy(buildID[:], data[off:off+16])
	off += 16

	n, consumed, err := readUvarint(data, off)
	if err != nil {
		return nil, err
	}
	off = consumed

	wordCount, c, err := readUvarint(data, off)
	if err != nil {
		return nil, err
	}
	off = c
	trunkWords := make([][]byte, wordCount)
	for i := uint64(0); i < wordCount; i++ {
		wlen, c, err := readUvarint(data, off)
		if err != nil {
			return nil, err
		}
		off = c
		if uint64(off)+wlen > uint64(len(body)) {
			return nil, fmt.Errorf("%w: trunk word runs past end of buffer", lattice.ErrDecode)
		}
		trunkWords[i] = data[off : off+int(wlen)]
		off += int(wlen)
	}

	adj := make([][]lattice.Edge, n)
	spanL := make([]uint32, n)
	spanR := make([]uint32, n)
	for v := uint64(0); v < n; v++ {
		l, c, err := readUvarint(data, off)
		if err != nil {
			return nil, err
		}
		off = c
		r, c, err := readUvarint(data, off)
		if err != nil {
			return nil, err
		}
		off = c
		spanL[v] = uint32(l)
		spanR[v] = uint32(r)

		edgeCount, c, err := readUvarint(data, off)
		if err != nil {
			return nil, err
		}
		off = c

		edges := make([]lattice.Edge, edgeCount)
		for i := uint64(0); i < edgeCount; i++ {
			delta, c, err := readUvarint(data, off)
			if err != nil {
				return nil, err
			}
			off = c
			labelLen, c, err := readUvarint(data, off)
			if err != nil {
				return nil, err
			}
			off = c
			if uint64(off)+labelLen > uint64(len(body)) {
				return nil, fmt.Errorf("%w: label runs past end of buffer", lattice.ErrDecode)
			}
			edges[i] = lattice.Edge{To: uint32(v) + uint32(delta), Label: data[off : off+int(labelLen)]}
			off += int(labelLen)
		}
		adj[v] = edges
	}

	return lattice.New(adj, spanL, spanR, trunkWords, buildID)
}

func readUvarint(data []byte, off int) (uint64, int, error) {
	v, n := binary.Uvarint(data[off:])
	if n <= 0 {
		return 0, 0, fmt.Errorf("%w: malformed varint at offset %d", lattice.ErrDecode, off)
	}
	return v, off + n, nil
}
