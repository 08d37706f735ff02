package builder_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parattice/parattice-go/builder"
	"github.com/parattice/parattice-go/codec"
	"github.com/parattice/parattice-go/dict"
	"github.com/parattice/parattice-go/dot"
	"github.com/parattice/parattice-go/kmp"
	"github.com/parattice/parattice-go/lattice"
	"github.com/parattice/parattice-go/searchindex"
)

func tokens(ss ...string) dict.Phrase {
	p := make(dict.Phrase, len(ss))
	for i, s := range ss {
		p[i] = []byte(s)
	}
	return p
}

// sixGroupDict reproduces original_source/examples/cpp/parattice_example.cc's
// six-group dictionary, also used by §8's S1-S5 scenarios.
func sixGroupDict() (*dict.Dict, error) {
	return dict.New([]([]dict.Phrase){
		{tokens("blood", "stem", "cell"), tokens("造血", "幹", "細胞"), tokens("hematopoietic", "stem", "cell")},
		{tokens("造血", "幹", "細胞", "移植"), tokens("hematopoietic", "stem", "cell", "transplantation")},
		{tokens("stem", "cell"), tokens("幹", "細胞")},
		{tokens("幹", "細胞", "移植"), tokens("rescue", "transplant"), tokens("stem", "cell", "rescue")},
		{tokens("rescue"), tokens("救命")},
		{tokens("blood"), tokens("血液")},
	})
}

// This reproduces original_source/examples/cpp/parattice_example.cc's
// six-group dictionary and ["造血","幹","細胞","移植"] input end to end:
// build, dump dot, round-trip through the codec, search with LatticeKMP,
// and trunk-span each match.
func Example_bloodStemCellTransplant() {
	d, err := sixGroupDict()
	if err != nil {
		fmt.Println("dict error:", err)
		return
	}

	words := tokens("造血", "幹", "細胞", "移植")
	l, err := builder.Build(d, words, builder.Options{Shrink: true, MaxDepth: 10})
	if err != nil {
		fmt.Println("build error:", err)
		return
	}

	dotOut := dot.Write(l)
	if len(dotOut) == 0 {
		fmt.Println("empty dot dump")
		return
	}

	encoded, err := codec.Encode(l)
	if err != nil {
		fmt.Println("encode error:", err)
		return
	}
	decoded, err := codec.Decode(encoded)
	if err != nil {
		fmt.Println("decode error:", err)
		return
	}

	m := kmp.New(tokens("幹", "細胞"))
	matches := m.FindAll(decoded)
	fmt.Println("matches found:", len(matches) > 0)

	allSpansNonEmpty := true
	for _, match := range matches {
		span := decoded.GetTrunkSpan(match.Path)
		if len(span) == 0 {
			allSpansNonEmpty = false
		}
	}
	fmt.Println("every trunk span resolved:", allSpansNonEmpty)
	// Output:
	// matches found: true
	// every trunk span resolved: true
}

// TestBloodStemCellTransplantScenarios checks §8's S1 and S3 against the
// same build as the example above (MaxDepth: 10, shrink enabled).
func TestBloodStemCellTransplantScenarios(t *testing.T) {
	d, err := sixGroupDict()
	require.NoError(t, err)

	words := tokens("造血", "幹", "細胞", "移植")
	l, err := builder.Build(d, words, builder.Options{Shrink: true, MaxDepth: 10})
	require.NoError(t, err)

	// S1: the built lattice has exactly 17 nodes.
	assert.Equal(t, 17, l.Size())

	encoded, err := codec.Encode(l)
	require.NoError(t, err)
	decoded, err := codec.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, l.Size(), decoded.Size())

	// S2: every node's trunk span still resolves after the round trip.
	for v := 0; v < decoded.Size(); v++ {
		span := decoded.GetTrunkSpan([]lattice.Step{{Node: uint32(v)}})
		assert.NotEmpty(t, span, "node %d has no trunk span", v)
	}

	// S3: exactly 5 matches for pattern ["幹","細胞"].
	m := kmp.New(tokens("幹", "細胞"))
	matches := m.FindAll(decoded)
	require.Len(t, matches, 5)
	for _, match := range matches {
		labels := match.Labels()
		require.Len(t, labels, 2)
		assert.Equal(t, "幹", string(labels[0]))
		assert.Equal(t, "細胞", string(labels[1]))
		span := decoded.GetTrunkSpan(match.Path)
		assert.NotEmpty(t, span)
	}
}

// TestBloodStemCellTransplantSearchIndex checks §8's S5: with MaxDepth 1 the
// projected search index has exactly 18 records, and the running sum of
// Increment, minus one, reconstructs each record's from_node_id (testable
// property 4).
func TestBloodStemCellTransplantSearchIndex(t *testing.T) {
	d, err := sixGroupDict()
	require.NoError(t, err)

	words := tokens("造血", "幹", "細胞", "移植")
	l, err := builder.Build(d, words, builder.Options{Shrink: true, MaxDepth: 1})
	require.NoError(t, err)

	records, pool := searchindex.Project(l)
	require.Len(t, records, 18)

	var cum uint32
	for i, r := range records {
		cum += r.Increment
		assert.Equal(t, r.From, cum-1)
		if i > 0 {
			assert.GreaterOrEqual(t, cum-1, records[i-1].From)
		}
		assert.LessOrEqual(t, int(r.Offset+r.TextLen), len(pool))
	}
}
