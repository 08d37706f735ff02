// Package dot renders a lattice.Lattice as Graphviz DOT source for visual
// debugging (§4.5), grounded on the plain bytes.Buffer digraph writers used
// across the example pack (e.g. rdf-graph's Graph.dot) rather than a full
// graph-layout dependency — the lattice's own node/edge iteration already
// gives a stable, deterministic output order.
package dot

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/parattice/parattice-go/lattice"
)

// Write renders l as "digraph parattice { ... }". Trunk nodes are drawn as
// filled boxes so the spine of the lattice is visually obvious; every other
// node is a plain ellipse. Edge labels are escaped for embedding in a
// quoted DOT string.
func Write(l *lattice.Lattice) string {
	var b bytes.Buffer
	b.WriteString("digraph parattice {\n\trankdir=LR;\n\tnode [fontname=\"monospace\"];\n\n")

	for v := 0; v < l.Size(); v++ {
		shape := "ellipse"
		style := ""
		if l.IsTrunk(uint32(v)) {
			shape = "box"
			style = ", style=filled, fillcolor=\"#e0e0e0\""
		}
		span := l.Span(uint32(v))
		fmt.Fprintf(&b, "\t%d [shape=%s%s, label=\"%d\\n(%d,%d)\"];\n", v, shape, style, v, span.L, span.R)
	}
	b.WriteString("\n")

	for v := 0; v < l.Size(); v++ {
		for _, e := range l.Edges(uint32(v)) {
			fmt.Fprintf(&b, "\t%d -> %d [label=\"%s\"];\n", v, e.To, escapeLabel(e.Label))
		}
	}

	b.WriteString("}\n")
	return b.String()
}

func escapeLabel(label []byte) string {
	s := string(label)
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}
