package dot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/parattice/parattice-go/lattice"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWriteProducesValidDigraph(t *testing.T) {
	adj := [][]lattice.Edge{
		{{To: 1, Label: []byte("a")}, {To: 2, Label: []byte("big")}},
		{{To: 2, Label: []byte("b")}},
		{},
	}
	trunkWords := [][]byte{[]byte("a"), []byte("b")}
	l, err := lattice.New(adj, []uint32{0, 1, 2}, []uint32{0, 1, 2}, trunkWords, [16]byte{})
	require.NoError(t, err)

	out := Write(l)
	assert.True(t, strings.HasPrefix(out, "digraph parattice {"))
	assert.True(t, strings.HasSuffix(out, "}\n"))
	assert.Contains(t, out, `0 -> 1 [label="a"];`)
	assert.Contains(t, out, `0 -> 2 [label="big"];`)
}

func TestWriteEscapesQuotesAndBackslashes(t *testing.T) {
	adj := [][]lattice.Edge{
		{{To: 1, Label: []byte(`say "hi"\n`)}},
		{},
	}
	trunkWords := [][]byte{[]byte(`say "hi"\n`)}
	l, err := lattice.New(adj, []uint32{0, 1}, []uint32{0, 1}, trunkWords, [16]byte{})
	require.NoError(t, err)

	out := Write(l)
	assert.Contains(t, out, `\"hi\"`)
	assert.Contains(t, out, `\\n`)
}
