// Package lattice implements the paraphrase-lattice data structure: nodes,
// labelled multigraph edges, the distinguished trunk path, and the trunk-span
// bookkeeping that ties every branch node back to the input range it
// paraphrases.
//
// A Lattice is immutable once built: the builder and the codec are the only
// producers, and both run validate before handing a *Lattice to a caller.
package lattice

import "bytes"

// Edge is a labelled arc to node To. Label is nil or empty only for trunk
// edges spelling an empty input token (never for branch edges).
type Edge struct {
	To    uint32
	Label []byte
}

// Span is the trunk span (l, r) of a node: l is the greatest trunk node id
// that reaches the node, r is the least trunk node id the node reaches.
type Span struct {
	L, R uint32
}

// Step is one hop of a path through a lattice: the label of the edge taken
// to reach Node, or an empty Label for the path's starting node.
type Step struct {
	Label []byte
	Node  uint32
}

// Lattice is an immutable DAG: nodes are the half-open range [0, Size()),
// node 0 is the source, Size()-1 is the sink. adj is sorted per node by
// (To, Label) so that every canonical ordering required by the codec, the
// DOT dump, and the search-index projection (§4.4, §4.5, §4.6) falls out of
// a single forward scan.
type Lattice struct {
	adj   [][]Edge
	spanL []uint32
	spanR []uint32

	// trunkWords is the token sequence spelled by the trunk, in order. It is
	// not derivable from adj alone (invariant 4: a branch edge can target the
	// same trunk successor a genuine trunk edge does, making the two
	// structurally indistinguishable), so it is carried as an explicit field
	// supplied by whoever assembles the lattice (the builder, or the codec
	// on decode).
	trunkWords [][]byte

	// buildID is a purely diagnostic build stamp (see SPEC_FULL.md §2); it
	// never participates in equality or validation.
	buildID [16]byte
}

// New assembles a Lattice from adjacency, trunk-span and trunk-word arrays
// and validates invariants 1, 2, 3, 5 and 6 of the data model, plus the
// structural half of invariant 4 (trunkWords has exactly one entry per
// trunk edge). The content of invariant 4 — that each trunkWords entry
// matches the corresponding input token — is still a builder-time
// guarantee; the codec's caller is trusted to have produced trunkWords from
// a prior Encode.
func New(adj [][]Edge, spanL, spanR []uint32, trunkWords [][]byte, buildID [16]byte) (*Lattice, error) {
	l := &Lattice{adj: sortedCopy(adj), spanL: spanL, spanR: spanR, trunkWords: trunkWords, buildID: buildID}
	if err := l.validate(); err != nil {
		return nil, err
	}
	return l, nil
}

func sortedCopy(adj [][]Edge) [][]Edge {
	out := make([][]Edge, len(adj))
	for i, edges := range adj {
		cp := make([]Edge, len(edges))
		copy(cp, edges)
		sortEdges(cp)
		out[i] = cp
	}
	return out
}

func sortEdges(edges []Edge) {
	// insertion sort: adjacency lists are small (bounded by dictionary
	// fan-out), so this avoids pulling in sort.Slice's reflection path.
	for i := 1; i < len(edges); i++ {
		for j := i; j > 0 && edgeLess(edges[j], edges[j-1]); j-- {
			edges[j], edges[j-1] = edges[j-1], edges[j]
		}
	}
}

func edgeLess(a, b Edge) bool {
	if a.To != b.To {
		return a.To < b.To
	}
	return bytes.Compare(a.Label, b.Label) < 0
}

// Size returns the node count.
func (l *Lattice) Size() int { return len(l.adj) }

// RequiredCapacity returns the total edge count, the upper bound a binding
// must size its search-index output buffers to.
func (l *Lattice) RequiredCapacity() int {
	n := 0
	for _, edges := range l.adj {
		n += len(edges)
	}
	return n
}

// BuildID returns the diagnostic build stamp (see SPEC_FULL.md §2).
func (l *Lattice) BuildID() [16]byte { return l.buildID }

// Edges returns node v's outgoing edges, sorted by (To, Label). Callers
// must not mutate the returned slice.
func (l *Lattice) Edges(v uint32) []Edge { return l.adj[v] }

// Span returns the trunk span of node v.
func (l *Lattice) Span(v uint32) Span { return Span{L: l.spanL[v], R: l.spanR[v]} }

// TrunkSpans returns the trunk span of every node, indexed by node id.
func (l *Lattice) TrunkSpans() []Span {
	out := make([]Span, l.Size())
	for v := range out {
		out[v] = Span{L: l.spanL[v], R: l.spanR[v]}
	}
	return out
}

// IsTrunk reports whether v is a trunk node (span(v) == (v, v)).
func (l *Lattice) IsTrunk(v uint32) bool { return l.spanL[v] == v && l.spanR[v] == v }

// TrunkWords spells the trunk: the input tokens carried by the lattice's
// trunk edges, in order. Callers must not mutate the returned slice.
func (l *Lattice) TrunkWords() [][]byte { return l.trunkWords }
