package builder

import (
	"fmt"
	"sort"

	"github.com/parattice/parattice-go/lattice"
)

// shrink implements §4.2 step 4: nodes that share a trunk span and whose
// outgoing structure (or, in the second pass, incoming structure) is
// identical after merging are collapsed into one representative. It runs a
// suffix pass (merge by common right-language, processed high id to low)
// followed by a prefix pass (merge by common left-language, low to high),
// matching the suffix/prefix step 4 of SPEC_FULL.md §3.3.
//
// Merging is restricted to nodes sharing the same (spanL, spanR): since every
// such node's id lies strictly between its span's endpoints, and every edge
// is forward, collapsing same-span nodes can never turn a forward edge into
// a backward one (a merge target is always itself inside the same span
// bracket). Trunk nodes are never merge candidates — one node per input
// position must survive.
func shrink(adj [][]lattice.Edge, isTrunk []bool) ([][]lattice.Edge, []bool) {
	spanL, spanR := lattice.ComputeTrunkSpans(adj, isTrunk)
	adj, isTrunk = mergePass(adj, isTrunk, spanL, spanR, false)

	spanL, spanR = lattice.ComputeTrunkSpans(adj, isTrunk)
	adj, isTrunk = mergePass(adj, isTrunk, spanL, spanR, true)

	return adj, isTrunk
}

func mergePass(adj [][]lattice.Edge, isTrunk []bool, spanL, spanR []uint32, prefixMode bool) ([][]lattice.Edge, []bool) {
	n := len(adj)
	mergeTarget := make([]uint32, n)
	seen := make(map[string]uint32, n)

	if !prefixMode {
		for v := n - 1; v >= 0; v-- {
			assign(uint32(v), isTrunk, seen, mergeTarget, suffixKey(uint32(v), adj[v], spanL, spanR, mergeTarget))
		}
	} else {
		preds := predecessors(adj)
		for v := 0; v < n; v++ {
			assign(uint32(v), isTrunk, seen, mergeTarget, prefixKey(uint32(v), preds[v], spanL, spanR, mergeTarget))
		}
	}

	return rebuild(adj, isTrunk, mergeTarget)
}

func assign(v uint32, isTrunk []bool, seen map[string]uint32, mergeTarget []uint32, key string) {
	if isTrunk[v] {
		mergeTarget[v] = v
		return
	}
	if rep, ok := seen[key]; ok {
		mergeTarget[v] = rep
		return
	}
	mergeTarget[v] = v
	seen[key] = v
}

func suffixKey(v uint32, edges []lattice.Edge, spanL, spanR []uint32, mergeTarget []uint32) string {
	type pair struct {
		to    uint32
		label string
	}
	pairs := make([]pair, len(edges))
	for i, e := range edges {
		pairs[i] = pair{to: mergeTarget[e.To], label: string(e.Label)}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].to != pairs[j].to {
			return pairs[i].to < pairs[j].to
		}
		return pairs[i].label < pairs[j].label
	})
	return fmt.Sprintf("%d,%d|%v", spanL[v], spanR[v], pairs)
}

type predEdge struct {
	from  uint32
	label []byte
}

func predecessors(adj [][]lattice.Edge) [][]predEdge {
	preds := make([][]predEdge, len(adj))
	for u, edges := range adj {
		for _, e := range edges {
			preds[e.To] = append(preds[e.To], predEdge{from: uint32(u), label: e.Label})
		}
	}
	return preds
}

func prefixKey(v uint32, preds []predEdge, spanL, spanR []uint32, mergeTarget []uint32) string {
	type pair struct {
		from  uint32
		label string
	}
	pairs := make([]pair, len(preds))
	for i, e := range preds {
		pairs[i] = pair{from: mergeTarget[e.from], label: string(e.label)}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].from != pairs[j].from {
			return pairs[i].from < pairs[j].from
		}
		return pairs[i].label < pairs[j].label
	})
	return fmt.Sprintf("%d,%d|%v", spanL[v], spanR[v], pairs)
}

// rebuild compacts the node set to survivors (mergeTarget[v] == v), remapping
// every edge endpoint through mergeTarget and deduping the result.
func rebuild(adj [][]lattice.Edge, isTrunk []bool, mergeTarget []uint32) ([][]lattice.Edge, []bool) {
	n := len(adj)
	compact := make([]int, n)
	for i := range compact {
		compact[i] = -1
	}
	var survivors []uint32
	for v := 0; v < n; v++ {
		if mergeTarget[v] == uint32(v) {
			compact[v] = len(survivors)
			survivors = append(survivors, uint32(v))
		}
	}

	resolve := func(v uint32) int { return compact[mergeTarget[v]] }

	newAdj := make([][]lattice.Edge, len(survivors))
	newIsTrunk := make([]bool, len(survivors))
	dedup := make([]map[string]bool, len(survivors))
	for i, old := range survivors {
		newIsTrunk[i] = isTrunk[old]
		dedup[i] = make(map[string]bool)
	}

	for u := 0; u < n; u++ {
		ru := resolve(uint32(u))
		for _, e := range adj[u] {
			rt := resolve(e.To)
			dk := fmt.Sprintf("%d\x00%s", rt, e.Label)
			if dedup[ru][dk] {
				continue
			}
			dedup[ru][dk] = true
			newAdj[ru] = append(newAdj[ru], lattice.Edge{To: uint32(rt), Label: cloneBytes(e.Label)})
		}
	}
	for _, edges := range newAdj {
		sort.Slice(edges, func(i, j int) bool {
			if edges[i].To != edges[j].To {
				return edges[i].To < edges[j].To
			}
			return string(edges[i].Label) < string(edges[j].Label)
		})
	}
	return newAdj, newIsTrunk
}
