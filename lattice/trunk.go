package lattice

// ComputeTrunkSpans derives (l, r) for every node from the graph structure
// alone, given which nodes are trunk nodes. Because every edge goes strictly
// forward (u -> v implies u < v), a single increasing-id pass computes l
// (the greatest trunk ancestor) and a single decreasing-id pass computes r
// (the least trunk descendant): for a trunk node t, l = r = t outright
// (SPEC_FULL.md: a node always reaches itself, and no other trunk node can
// have a larger/smaller id while still being an ancestor/descendant); for a
// branch node v, l is the max over spanL of v's predecessors and r is the
// min over spanR of v's successors, both already computed since predecessors
// have smaller ids and successors have larger ids.
//
// The builder calls this on its working graph after putting it in
// topological id order (in the shrink pass and once more before assembling
// the lattice); after the final renumbering span values are carried through
// the permutation instead of being recomputed.
func ComputeTrunkSpans(adj [][]Edge, isTrunk []bool) (spanL, spanR []uint32) {
	n := len(adj)
	spanL = make([]uint32, n)
	spanR = make([]uint32, n)

	preds := reverseAdj(adj)
	for v := 0; v < n; v++ {
		if isTrunk[v] {
			spanL[v] = uint32(v)
			continue
		}
		var best uint32
		for i, u := range preds[v] {
			if i == 0 || spanL[u] > best {
				best = spanL[u]
			}
		}
		spanL[v] = best
	}

	for v := n - 1; v >= 0; v-- {
		if isTrunk[v] {
			spanR[v] = uint32(v)
			continue
		}
		var best uint32
		first := true
		for _, e := range adj[v] {
			if first || spanR[e.To] < best {
				best = spanR[e.To]
				first = false
			}
		}
		spanR[v] = best
	}
	return spanL, spanR
}

// GetTrunkSpan implements §4.3's get_trunk_span: it takes a user-supplied
// path and returns the trunk-projected canonical path connecting the
// outermost trunk nodes the path touches. The path's own steps are kept
// verbatim; the gap from the left trunk endpoint to the path's first node,
// and from the path's last node to the right trunk endpoint, is filled by a
// deterministic depth-first walk (lowest (to, label) edge first, matching
// the lattice's canonical adjacency order) — the unique such walk whenever
// the span in question was produced by a single expansion chain, and an
// arbitrary-but-reproducible choice when shrink has introduced branching.
func (l *Lattice) GetTrunkSpan(path []Step) []Step {
	if len(path) == 0 {
		return nil
	}
	v0 := path[0].Node
	vm := path[len(path)-1].Node
	left := l.spanL[v0]
	right := l.spanR[vm]

	prefix := l.findPath(left, v0)
	suffix := l.findPath(vm, right)

	out := make([]Step, 0, len(prefix)+len(path)-1+len(suffix)-1)
	out = append(out, prefix...)
	out = append(out, path[1:]...)
	out = append(out, suffix[1:]...)
	return out
}

// findPath returns the steps of a depth-first path from "from" to "to",
// starting with an empty-label step at "from". It explores each node's
// edges in their canonical (To, Label) order and backtracks on dead ends;
// since the lattice is a finite DAG this always terminates, and it always
// succeeds when "to" is reachable from "from" (which GetTrunkSpan's callers
// guarantee via the span relation).
func (l *Lattice) findPath(from, to uint32) []Step {
	if from == to {
		return []Step{{Node: from}}
	}
	visited := make(map[uint32]bool)
	path := []Step{{Node: from}}
	var dfs func(u uint32) bool
	dfs = func(u uint32) bool {
		if u == to {
			return true
		}
		visited[u] = true
		for _, e := range l.adj[u] {
			if visited[e.To] {
				continue
			}
			path = append(path, Step{Label: e.Label, Node: e.To})
			if dfs(e.To) {
				return true
			}
			path = path[:len(path)-1]
		}
		return false
	}
	dfs(from)
	return path
}
