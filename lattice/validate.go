package lattice

import (
	"bytes"
	"fmt"
)

// validate checks invariants 1, 2, 3, 5 and 6 of §3, plus the structural
// half of invariant 4: trunkWords must have exactly one entry per trunk
// edge. Whether each entry's content actually matches the corresponding
// input token is a builder-time guarantee, not a structural property of
// the graph, and is not re-derivable here.
func (l *Lattice) validate() error {
	n := len(l.adj)
	if n == 0 {
		return fmt.Errorf("%w: lattice has no nodes", ErrInput)
	}
	if len(l.spanL) != n || len(l.spanR) != n {
		return fmt.Errorf("%w: span arrays do not match node count", ErrDecode)
	}
	trunkNodes := 0
	for v := 0; v < n; v++ {
		if l.spanL[v] == uint32(v) && l.spanR[v] == uint32(v) {
			trunkNodes++
		}
	}
	if trunkNodes == 0 {
		return fmt.Errorf("%w: lattice has no trunk nodes", ErrDecode)
	}
	if len(l.trunkWords) != trunkNodes-1 {
		return fmt.Errorf("%w: trunkWords has %d entries, want %d for %d trunk nodes", ErrDecode, len(l.trunkWords), trunkNodes-1, trunkNodes)
	}
	sink := uint32(n - 1)

	for u := 0; u < n; u++ {
		edges := l.adj[u]
		for i, e := range edges {
			if e.To <= uint32(u) {
				return fmt.Errorf("%w: edge %d->%d is not forward", ErrDecode, u, e.To)
			}
			if int(e.To) >= n {
				return fmt.Errorf("%w: edge %d->%d targets a node out of range", ErrDecode, u, e.To)
			}
			if i > 0 {
				prev := edges[i-1]
				if prev.To == e.To && bytes.Equal(prev.Label, e.Label) {
					return fmt.Errorf("%w: duplicate edge %d->%d label %q", ErrDecode, u, e.To, e.Label)
				}
			}
			if l.spanR[u] > l.spanL[e.To] || l.spanL[u] > l.spanL[e.To] || l.spanR[u] > l.spanR[e.To] {
				return fmt.Errorf("%w: trunk span ordering violated on edge %d->%d", ErrDecode, u, e.To)
			}
		}
	}

	reachFromSource := bfs(forwardAdj(l.adj), 0)
	for v := 0; v < n; v++ {
		if !reachFromSource[v] {
			return fmt.Errorf("%w: node %d is unreachable from the source", ErrDecode, v)
		}
	}
	reachToSink := bfs(reverseAdj(l.adj), sink)
	for v := 0; v < n; v++ {
		if !reachToSink[v] {
			return fmt.Errorf("%w: node %d cannot reach the sink", ErrDecode, v)
		}
	}
	return nil
}

// bfs runs a breadth-first reachability scan over a plain id-to-ids
// adjacency, shared by both the forward and the reverse-graph checks.
func bfs(adj [][]uint32, start uint32) []bool {
	n := len(adj)
	visited := make([]bool, n)
	queue := []uint32{start}
	visited[start] = true
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, v := range adj[u] {
			if !visited[v] {
				visited[v] = true
				queue = append(queue, v)
			}
		}
	}
	return visited
}

func forwardAdj(adj [][]Edge) [][]uint32 {
	plain := make([][]uint32, len(adj))
	for u, edges := range adj {
		ids := make([]uint32, len(edges))
		for i, e := range edges {
			ids[i] = e.To
		}
		plain[u] = ids
	}
	return plain
}

func reverseAdj(adj [][]Edge) [][]uint32 {
	rev := make([][]uint32, len(adj))
	for u, edges := range adj {
		for _, e := range edges {
			rev[e.To] = append(rev[e.To], uint32(u))
		}
	}
	return rev
}
