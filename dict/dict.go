// Package dict indexes a paraphrase dictionary — groups of mutually
// paraphrastic phrases — for fast exact-match lookup of token sub-ranges
// and fast enumeration of a phrase's siblings (§4.1).
package dict

import (
	"bytes"
	"fmt"

	"github.com/parattice/parattice-go/lattice"
)

// Phrase is an ordered token sequence.
type Phrase = [][]byte

// Dict is a read-only, internalised paraphrase dictionary. It is built once
// by New and never mutated afterwards, matching §5's "read-only after
// construction" lifecycle for a PaRattice.
type Dict struct {
	root   *trieNode
	groups []group
}

type group struct {
	phrases []Phrase
}

type trieNode struct {
	children map[string]*trieNode
	groupID  int // -1 until a phrase ends here
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[string]*trieNode), groupID: -1}
}

// New ingests a paraphrase dictionary: groups of phrases of tokens. Empty
// phrases are rejected with ErrInput. Phrases that repeat across multiple
// raw groups merge those groups together (the documented choice of §4.1's
// "implementer choice"), following the teacher's own tendency to accumulate
// rather than reject when the same key reappears (see
// MorphAnalyzer.paradigmToLemmaID's merge-by-overwrite construction).
func New(raw []([]Phrase)) (*Dict, error) {
	uf := newUnionFind(len(raw))
	seenAt := make(map[string]int, 64) // phrase key -> raw group index first seen

	for gi, g := range raw {
		for _, phrase := range g {
			if len(phrase) == 0 {
				return nil, fmt.Errorf("%w: empty phrase in group %d", lattice.ErrInput, gi)
			}
			key := phraseKey(phrase)
			if first, ok := seenAt[key]; ok {
				uf.union(first, gi)
			} else {
				seenAt[key] = gi
			}
		}
	}

	merged := make(map[int][]Phrase)
	order := make([]int, 0, len(raw))
	dedup := make(map[int]map[string]bool)
	for gi, g := range raw {
		root := uf.find(gi)
		if _, ok := merged[root]; !ok {
			order = append(order, root)
			dedup[root] = make(map[string]bool)
		}
		for _, phrase := range g {
			key := phraseKey(phrase)
			if dedup[root][key] {
				continue
			}
			dedup[root][key] = true
			merged[root] = append(merged[root], phrase)
		}
	}

	d := &Dict{root: newTrieNode()}
	for _, root := range order {
		gid := len(d.groups)
		d.groups = append(d.groups, group{phrases: merged[root]})
		for _, phrase := range merged[root] {
			d.insert(phrase, gid)
		}
	}
	return d, nil
}

func (d *Dict) insert(phrase Phrase, groupID int) {
	node := d.root
	for _, tok := range phrase {
		key := string(tok)
		next, ok := node.children[key]
		if !ok {
			next = newTrieNode()
			node.children[key] = next
		}
		node = next
	}
	node.groupID = groupID
}

// Lookup reports whether tokens exactly match some dictionary phrase, and
// if so, which group it belongs to.
func (d *Dict) Lookup(tokens Phrase) (groupID int, ok bool) {
	node := d.root
	for _, tok := range tokens {
		next, found := node.children[string(tok)]
		if !found {
			return 0, false
		}
		node = next
	}
	if node.groupID < 0 {
		return 0, false
	}
	return node.groupID, true
}

// Siblings returns every phrase in groupID other than phrase itself
// (compared by exact token equality, not identity).
func (d *Dict) Siblings(groupID int, phrase Phrase) []Phrase {
	var out []Phrase
	for _, p := range d.groups[groupID].phrases {
		if !phraseEqual(p, phrase) {
			out = append(out, p)
		}
	}
	return out
}

func phraseKey(p Phrase) string {
	var b bytes.Buffer
	for _, tok := range p {
		fmt.Fprintf(&b, "%d:", len(tok))
		b.Write(tok)
	}
	return b.String()
}

func phraseEqual(a, b Phrase) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

type unionFind struct{ parent []int }

func newUnionFind(n int) *unionFind {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &unionFind{parent: p}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}
