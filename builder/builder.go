// Package builder implements the paraphrase-expansion algorithm of §4.2:
// given an input token sequence and a dictionary, it grows a trunk, queues
// and processes paraphrase-expansion tasks up to a bounded recursion depth,
// optionally shrinks the result, and renumbers nodes deterministically.
package builder

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/parattice/parattice-go/dict"
	"github.com/parattice/parattice-go/internal/diag"
	"github.com/parattice/parattice-go/lattice"
)

// Options controls lattice construction.
type Options struct {
	// Shrink enables the canonicalisation pass that merges equivalent
	// branch chains (§4.2 step 4).
	Shrink bool
	// MaxDepth bounds paraphrase-of-paraphrase recursion (§4.2 step 3).
	MaxDepth int
	// Logger receives build-progress diagnostics; nil is treated as a
	// no-op logger (the core performs no I/O, so this is purely
	// observational — see SPEC_FULL.md §1).
	Logger diag.Logger
}

// taskKey deduplicates expansion tasks by (l, r, phrase) per §9.
type taskKey struct {
	l, r uint32
	key  string
}

type task struct {
	l, r    uint32
	phrase  dict.Phrase
	groupID int
	depth   int
}

type state struct {
	d       *dict.Dict
	adj     [][]lattice.Edge
	isTrunk []bool
	edges   map[edgeKey]bool
	install map[spanKey]map[string]bool
	seen    map[taskKey]bool
	queue   []task
	log     diag.Logger
}

type edgeKey struct {
	from, to uint32
	label    string
}

type spanKey struct{ l, r uint32 }

// Build runs the full expansion algorithm and returns a validated, finally
// renumbered lattice whose trunk spells words.
func Build(d *dict.Dict, words dict.Phrase, opts Options) (*lattice.Lattice, error) {
	log := opts.Logger
	if log == nil {
		log = diag.Nop()
	}
	b := &state{
		d:       d,
		edges:   make(map[edgeKey]bool),
		install: make(map[spanKey]map[string]bool),
		seen:    make(map[taskKey]bool),
		log:     log,
	}

	trunk := b.buildTrunk(words)
	b.seedExpansions(words, trunk)
	log.Debugf("seeded %d expansion tasks from %d trunk nodes", len(b.queue), len(trunk))

	for len(b.queue) > 0 {
		t := b.queue[0]
		b.queue = b.queue[1:]
		b.process(t, opts.MaxDepth)
	}
	log.Infof("expansion complete: %d nodes, %d edges before shrink", len(b.adj), b.edgeCount())

	// Chain nodes are appended after the trunk, so a chain's last edge points
	// back to a lower id. Renumber into a topological order first: shrink,
	// ComputeTrunkSpans and lattice.New all rely on every edge going forward.
	perm := lattice.RenumberPermutation(b.adj)
	noSpans := make([]uint32, len(b.adj))
	adj, _, _ := lattice.Remap(b.adj, noSpans, noSpans, perm)
	isTrunk := make([]bool, len(adj))
	for old, t := range b.isTrunk {
		isTrunk[perm[old]] = t
	}
	if opts.Shrink {
		adj, isTrunk = shrink(adj, isTrunk)
		log.Infof("shrink complete: %d nodes remain", len(adj))
	}

	spanL, spanR := lattice.ComputeTrunkSpans(adj, isTrunk)
	buildID := [16]byte(uuid.New())
	provisional, err := lattice.New(adj, spanL, spanR, cloneTokens(words), buildID)
	if err != nil {
		return nil, fmt.Errorf("builder: invalid intermediate lattice: %w", err)
	}
	return lattice.Canonicalize(provisional)
}

func (b *state) newNode() uint32 {
	id := uint32(len(b.adj))
	b.adj = append(b.adj, nil)
	b.isTrunk = append(b.isTrunk, false)
	return id
}

func (b *state) addEdge(from, to uint32, label []byte) bool {
	key := edgeKey{from: from, to: to, label: string(label)}
	if b.edges[key] {
		return false
	}
	b.edges[key] = true
	b.adj[from] = append(b.adj[from], lattice.Edge{To: to, Label: cloneBytes(label)})
	return true
}

func (b *state) edgeCount() int {
	n := 0
	for _, edges := range b.adj {
		n += len(edges)
	}
	return n
}

func (b *state) buildTrunk(words dict.Phrase) []uint32 {
	trunk := make([]uint32, len(words)+1)
	for i := range trunk {
		id := b.newNode()
		b.isTrunk[id] = true
		trunk[i] = id
	}
	for i, w := range words {
		b.addEdge(trunk[i], trunk[i+1], w)
	}
	return trunk
}

func (b *state) seedExpansions(words dict.Phrase, trunk []uint32) {
	n := len(words)
	for i := 0; i < n; i++ {
		for j := i + 1; j <= n; j++ {
			gid, ok := b.d.Lookup(words[i:j])
			if !ok {
				continue
			}
			b.enqueue(trunk[i], trunk[j], cloneTokens(words[i:j]), gid, 0)
		}
	}
}

func (b *state) enqueue(l, r uint32, phrase dict.Phrase, groupID, depth int) {
	key := taskKey{l: l, r: r, key: phraseKey(phrase)}
	if b.seen[key] {
		return
	}
	b.seen[key] = true
	b.queue = append(b.queue, task{l: l, r: r, phrase: phrase, groupID: groupID, depth: depth})
}

func (b *state) alreadyInstalled(l, r uint32, siblingKey string) bool {
	set, ok := b.install[spanKey{l: l, r: r}]
	return ok && set[siblingKey]
}

func (b *state) markInstalled(l, r uint32, siblingKey string) {
	key := spanKey{l: l, r: r}
	set, ok := b.install[key]
	if !ok {
		set = make(map[string]bool)
		b.install[key] = set
	}
	set[siblingKey] = true
}

func (b *state) process(t task, maxDepth int) {
	siblings := b.d.Siblings(t.groupID, t.phrase)
	for _, s := range siblings {
		key := phraseKey(s)
		if b.alreadyInstalled(t.l, t.r, key) {
			continue
		}
		b.markInstalled(t.l, t.r, key)

		if len(s) == 1 {
			b.addEdge(t.l, t.r, s[0])
			continue
		}

		chain := make([]uint32, len(s)+1)
		chain[0] = t.l
		chain[len(s)] = t.r
		for i := 1; i < len(s); i++ {
			chain[i] = b.newNode()
		}
		for i, label := range s {
			b.addEdge(chain[i], chain[i+1], label)
		}

		if t.depth < maxDepth {
			b.scanChain(chain, s, t.depth+1)
		}
	}
}

// scanChain enqueues further expansion tasks for every dictionary match
// among the sub-ranges of a just-inserted chain, per §4.2 step 3's "scan
// the newly-added path ... only over spans whose endpoints are existing
// nodes of the lattice".
func (b *state) scanChain(nodes []uint32, labels dict.Phrase, nextDepth int) {
	k := len(labels)
	for p := 0; p < k; p++ {
		for q := p + 1; q <= k; q++ {
			gid, ok := b.d.Lookup(labels[p:q])
			if !ok {
				continue
			}
			b.enqueue(nodes[p], nodes[q], cloneTokens(labels[p:q]), gid, nextDepth)
		}
	}
}

func phraseKey(p dict.Phrase) string {
	var out []byte
	for _, tok := range p {
		out = append(out, byte(len(tok)>>8), byte(len(tok)))
		out = append(out, tok...)
	}
	return string(out)
}

func cloneTokens(p dict.Phrase) dict.Phrase {
	out := make(dict.Phrase, len(p))
	for i, tok := range p {
		out[i] = cloneBytes(tok)
	}
	return out
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
