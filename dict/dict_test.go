package dict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/parattice/parattice-go/lattice"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func phrase(tokens ...string) Phrase {
	p := make(Phrase, len(tokens))
	for i, t := range tokens {
		p[i] = []byte(t)
	}
	return p
}

func TestNewRejectsEmptyPhrase(t *testing.T) {
	_, err := New([][]Phrase{{phrase()}})
	assert.ErrorIs(t, err, lattice.ErrInput)
}

func TestLookupAndSiblings(t *testing.T) {
	raw := [][]Phrase{
		{phrase("big"), phrase("large"), phrase("huge")},
		{phrase("small"), phrase("tiny")},
	}
	d, err := New(raw)
	require.NoError(t, err)

	gid, ok := d.Lookup(phrase("big"))
	require.True(t, ok)
	siblings := d.Siblings(gid, phrase("big"))
	require.Len(t, siblings, 2)

	_, ok = d.Lookup(phrase("gigantic"))
	assert.False(t, ok)
}

func TestLookupMultiToken(t *testing.T) {
	raw := [][]Phrase{
		{phrase("kick", "the", "bucket"), phrase("die")},
	}
	d, err := New(raw)
	require.NoError(t, err)

	gid, ok := d.Lookup(phrase("kick", "the", "bucket"))
	require.True(t, ok)
	siblings := d.Siblings(gid, phrase("kick", "the", "bucket"))
	require.Len(t, siblings, 1)
	assert.Equal(t, "die", string(siblings[0][0]))

	// "kick the" alone is not a phrase in the dictionary.
	_, ok = d.Lookup(phrase("kick", "the"))
	assert.False(t, ok)
}

func TestNewMergesGroupsSharingAPhrase(t *testing.T) {
	raw := [][]Phrase{
		{phrase("couch"), phrase("sofa")},
		{phrase("sofa"), phrase("divan")},
	}
	d, err := New(raw)
	require.NoError(t, err)

	gid, ok := d.Lookup(phrase("couch"))
	require.True(t, ok)
	siblings := d.Siblings(gid, phrase("couch"))
	var got []string
	for _, s := range siblings {
		got = append(got, string(s[0]))
	}
	assert.ElementsMatch(t, []string{"sofa", "divan"}, got)
}

func TestSiblingsExcludesExactPhrase(t *testing.T) {
	raw := [][]Phrase{{phrase("a"), phrase("b")}}
	d, err := New(raw)
	require.NoError(t, err)
	gid, _ := d.Lookup(phrase("a"))
	siblings := d.Siblings(gid, phrase("a"))
	for _, s := range siblings {
		assert.NotEqual(t, "a", string(s[0]))
	}
}
