package lattice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func tok(s string) []byte { return []byte(s) }

// linear builds a pure-trunk lattice spelling words, with no branches.
func linear(words ...string) *Lattice {
	n := len(words) + 1
	adj := make([][]Edge, n)
	spanL := make([]uint32, n)
	spanR := make([]uint32, n)
	for i := 0; i < n; i++ {
		spanL[i] = uint32(i)
		spanR[i] = uint32(i)
	}
	for i, w := range words {
		adj[i] = []Edge{{To: uint32(i + 1), Label: tok(w)}}
	}
	trunkWords := make([][]byte, len(words))
	for i, w := range words {
		trunkWords[i] = tok(w)
	}
	l, err := New(adj, spanL, spanR, trunkWords, [16]byte{})
	if err != nil {
		panic(err)
	}
	return l
}

func TestNewRejectsEmptyLattice(t *testing.T) {
	_, err := New(nil, nil, nil, nil, [16]byte{})
	assert.ErrorIs(t, err, ErrInput)
}

func TestNewRejectsBackwardEdge(t *testing.T) {
	adj := [][]Edge{
		{{To: 1, Label: tok("a")}},
		{{To: 0, Label: tok("b")}},
	}
	_, err := New(adj, []uint32{0, 1}, []uint32{0, 1}, [][]byte{tok("a")}, [16]byte{})
	assert.ErrorIs(t, err, ErrDecode)
}

func TestNewRejectsDuplicateEdge(t *testing.T) {
	adj := [][]Edge{
		{{To: 1, Label: tok("a")}, {To: 1, Label: tok("a")}},
		{},
	}
	_, err := New(adj, []uint32{0, 1}, []uint32{0, 1}, [][]byte{tok("a")}, [16]byte{})
	assert.ErrorIs(t, err, ErrDecode)
}

func TestNewRejectsUnreachableNode(t *testing.T) {
	adj := [][]Edge{
		{{To: 2, Label: tok("a")}},
		{{To: 2, Label: tok("b")}},
		{},
	}
	_, err := New(adj, []uint32{0, 1, 2}, []uint32{0, 1, 2}, [][]byte{tok("x"), tok("y")}, [16]byte{})
	assert.ErrorIs(t, err, ErrDecode)
}

func TestTrunkWords(t *testing.T) {
	l := linear("the", "cat", "sat")
	got := l.TrunkWords()
	require.Len(t, got, 3)
	assert.Equal(t, "the", string(got[0]))
	assert.Equal(t, "cat", string(got[1]))
	assert.Equal(t, "sat", string(got[2]))
}

func TestIsTrunkAndSpan(t *testing.T) {
	l := linear("a", "b")
	for v := 0; v < l.Size(); v++ {
		assert.True(t, l.IsTrunk(uint32(v)))
		span := l.Span(uint32(v))
		assert.Equal(t, uint32(v), span.L)
		assert.Equal(t, uint32(v), span.R)
	}
}

func TestEdgesSortedCanonically(t *testing.T) {
	adj := [][]Edge{
		{{To: 2, Label: tok("z")}, {To: 1, Label: tok("a")}},
		{{To: 2, Label: tok("x")}},
		{},
	}
	l, err := New(adj, []uint32{0, 0, 2}, []uint32{0, 2, 2}, [][]byte{tok("z")}, [16]byte{})
	require.NoError(t, err)
	edges := l.Edges(0)
	require.Len(t, edges, 2)
	assert.Equal(t, uint32(1), edges[0].To)
	assert.Equal(t, uint32(2), edges[1].To)
}

func TestGetTrunkSpanPureTrunkPath(t *testing.T) {
	l := linear("a", "b", "c")
	path := []Step{{Node: 1}, {Label: tok("b"), Node: 2}}
	span := l.GetTrunkSpan(path)
	require.Len(t, span, 2)
	assert.Equal(t, uint32(1), span[0].Node)
	assert.Equal(t, uint32(2), span[1].Node)
}

func TestGetTrunkSpanExpandsToBracket(t *testing.T) {
	// trunk 0 -a-> 1 -b-> 3 -c-> 4, plus a branch node 2 with span (0,3)
	// reached via 0 -x-> 2 -y-> 3.
	adj := [][]Edge{
		{{To: 1, Label: tok("a")}, {To: 2, Label: tok("x")}},
		{{To: 3, Label: tok("b")}},
		{{To: 3, Label: tok("y")}},
		{{To: 4, Label: tok("c")}},
		{},
	}
	spanL := []uint32{0, 1, 0, 3, 4}
	spanR := []uint32{0, 1, 3, 3, 4}
	trunkWords := [][]byte{tok("a"), tok("b"), tok("c")}
	l, err := New(adj, spanL, spanR, trunkWords, [16]byte{})
	require.NoError(t, err)

	// A path that only touches the branch node (2) should expand outward
	// to the trunk endpoints of its span: 0 and 3.
	span := l.GetTrunkSpan([]Step{{Node: 2}})
	require.NotEmpty(t, span)
	assert.Equal(t, uint32(0), span[0].Node)
	assert.Equal(t, uint32(3), span[len(span)-1].Node)
}

func TestCanonicalizeIsNumberingIndependent(t *testing.T) {
	// Two structurally identical lattices built with different (but both
	// topologically valid) id assignments must canonicalize to the same
	// shape.
	// a and b differ only in which branch node (x-then-p or y-then-q) got
	// id 1 and which got id 2.
	spanL := []uint32{0, 0, 0, 3}
	spanR := []uint32{0, 3, 3, 3}
	aAdj := [][]Edge{
		{{To: 1, Label: tok("x")}, {To: 2, Label: tok("y")}, {To: 3, Label: tok("t")}},
		{{To: 3, Label: tok("p")}},
		{{To: 3, Label: tok("q")}},
		{},
	}
	a, err := New(aAdj, spanL, spanR, [][]byte{tok("t")}, [16]byte{})
	require.NoError(t, err)
	bAdj := [][]Edge{
		{{To: 1, Label: tok("y")}, {To: 2, Label: tok("x")}, {To: 3, Label: tok("t")}},
		{{To: 3, Label: tok("q")}},
		{{To: 3, Label: tok("p")}},
		{},
	}
	b, err := New(bAdj, spanL, spanR, [][]byte{tok("t")}, [16]byte{})
	require.NoError(t, err)

	ca, err := Canonicalize(a)
	require.NoError(t, err)
	cb, err := Canonicalize(b)
	require.NoError(t, err)

	require.Equal(t, ca.Size(), cb.Size())
	for v := 0; v < ca.Size(); v++ {
		assert.Equal(t, ca.Edges(uint32(v)), cb.Edges(uint32(v)))
	}
}
