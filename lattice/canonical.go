package lattice

import (
	"bytes"
	"encoding/binary"
	"sort"
)

// RenumberPermutation computes a deterministic old-id -> new-id mapping via
// a wavefront (level-by-level) topological sort: at each round every node
// whose predecessors are all already numbered becomes "ready"; ready nodes
// are ordered by a key built from their already-assigned predecessors'
// canonical ids and the edge labels that reach them, so the result depends
// on graph shape and labels; ready nodes whose keys are equal keep their
// input id order relative to each other. This is the
// scheme SPEC_FULL.md grounds on the canonical-BFS renumbering pattern used
// by dependency-resolution graphs: assign ids by reachability wavefront,
// breaking ties structurally rather than by whatever order nodes happened
// to be discovered in.
//
// Because every edge in a valid lattice already goes from a lower to a
// higher id, the source (id 0) is always the sole first-wavefront member,
// and trunk nodes — connected in a single chain — always end up in strictly
// increasing relative order in the output, satisfying §4.2 step 5's
// renumbering contract.
func RenumberPermutation(adj [][]Edge) []uint32 {
	n := len(adj)
	type inEdge struct {
		from  uint32
		label []byte
	}
	incoming := make([][]inEdge, n)
	indeg := make([]int, n)
	for u, edges := range adj {
		for _, e := range edges {
			incoming[e.To] = append(incoming[e.To], inEdge{from: uint32(u), label: e.Label})
			indeg[e.To]++
		}
	}

	canonID := make([]uint32, n)
	assigned := make([]bool, n)
	next := uint32(0)

	var ready []uint32
	for v := 0; v < n; v++ {
		if indeg[v] == 0 {
			ready = append(ready, uint32(v))
		}
	}

	keyOf := func(v uint32) []byte {
		pairs := make([][]byte, len(incoming[v]))
		for i, ie := range incoming[v] {
			buf := make([]byte, 4+len(ie.label))
			binary.BigEndian.PutUint32(buf, canonID[ie.from])
			copy(buf[4:], ie.label)
			pairs[i] = buf
		}
		sort.Slice(pairs, func(i, j int) bool { return bytes.Compare(pairs[i], pairs[j]) < 0 })
		var out []byte
		for _, p := range pairs {
			var lenBuf [4]byte
			binary.BigEndian.PutUint32(lenBuf[:], uint32(len(p)))
			out = append(out, lenBuf[:]...)
			out = append(out, p...)
		}
		return out
	}

	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool {
			c := bytes.Compare(keyOf(ready[i]), keyOf(ready[j]))
			if c != 0 {
				return c < 0
			}
			return ready[i] < ready[j]
		})
		for _, v := range ready {
			canonID[v] = next
			next++
			assigned[v] = true
		}
		var nextReady []uint32
		for _, v := range ready {
			for _, e := range adj[v] {
				indeg[e.To]--
				if indeg[e.To] == 0 && !assigned[e.To] {
					nextReady = append(nextReady, e.To)
				}
			}
		}
		ready = nextReady
	}
	return canonID
}

// Remap applies an old-id -> new-id permutation to adjacency and span
// arrays, producing fresh arrays indexed by the new ids.
func Remap(adj [][]Edge, spanL, spanR []uint32, perm []uint32) (newAdj [][]Edge, newSpanL, newSpanR []uint32) {
	n := len(adj)
	newAdj = make([][]Edge, n)
	newSpanL = make([]uint32, n)
	newSpanR = make([]uint32, n)
	for oldID := 0; oldID < n; oldID++ {
		newID := perm[oldID]
		edges := make([]Edge, len(adj[oldID]))
		for i, e := range adj[oldID] {
			edges[i] = Edge{To: perm[e.To], Label: e.Label}
		}
		sortEdges(edges)
		newAdj[newID] = edges
		newSpanL[newID] = perm[spanL[oldID]]
		newSpanR[newID] = perm[spanR[oldID]]
	}
	return newAdj, newSpanL, newSpanR
}

// Canonicalize renumbers l deterministically by graph shape. Two lattices
// that are structurally equivalent up to node numbering produce identical
// Canonicalize output, which is how tests compare builder output across
// implementations per §9's numbering open question — provided no two nodes
// become ready in the same round with equal incoming keys; such nodes are
// ordered by their ids in l.
func Canonicalize(l *Lattice) (*Lattice, error) {
	perm := RenumberPermutation(l.adj)
	newAdj, newSpanL, newSpanR := Remap(l.adj, l.spanL, l.spanR, perm)
	return New(newAdj, newSpanL, newSpanR, l.trunkWords, l.buildID)
}
