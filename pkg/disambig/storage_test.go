package disambig

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const countVariant = `
- words: [she, "'d"]
  tags: [PRP, MD]
  expansions:
    she would: 3
    she had: 1
`

const listVariant = `
- words: [she, "'d"]
  tags: [PRP, MD]
  expansions:
    - she would
    - she had
`

func TestParseCountVariant(t *testing.T) {
	tbl, err := Parse([]byte(countVariant))
	require.NoError(t, err)

	rec, ok := tbl.Lookup(Key{Words: []string{"she", "'d"}, Tags: []string{"PRP", "MD"}})
	require.True(t, ok)
	assert.Equal(t, 3, rec.Counts["she would"])
	assert.Equal(t, 1, rec.Counts["she had"])
}

func TestParseListVariant(t *testing.T) {
	// The frequency-agnostic variant predates counts; each listed phrase
	// reads as one observation.
	tbl, err := Parse([]byte(listVariant))
	require.NoError(t, err)

	rec, ok := tbl.Lookup(Key{Words: []string{"she", "'d"}, Tags: []string{"PRP", "MD"}})
	require.True(t, ok)
	assert.Equal(t, 1, rec.Counts["she would"])
	assert.Equal(t, 1, rec.Counts["she had"])
}

func TestParseRejectsMisalignedKey(t *testing.T) {
	_, err := Parse([]byte("- words: [a, b]\n  tags: [X]\n  expansions: [a b]\n"))
	assert.Error(t, err)
}

func TestParseRejectsScalarExpansions(t *testing.T) {
	_, err := Parse([]byte("- words: [a]\n  tags: [X]\n  expansions: 3\n"))
	assert.Error(t, err)
}

func TestParseRejectsNonPositiveCount(t *testing.T) {
	_, err := Parse([]byte("- words: [a]\n  tags: [X]\n  expansions:\n    a: 0\n"))
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	tbl := NewTable()
	k := Key{Words: []string{"she", "'d"}, Tags: []string{"PRP", "MD"}}
	tbl.Add(k, "she would")
	tbl.Add(k, "she would")
	tbl.Add(k, "she had")

	path := filepath.Join(t.TempDir(), "disambiguations.yaml")
	require.NoError(t, tbl.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	rec, ok := loaded.Lookup(k)
	require.True(t, ok)
	assert.Equal(t, 2, rec.Counts["she would"])
	assert.Equal(t, 1, rec.Counts["she had"])
}

func TestMarshalDeterministic(t *testing.T) {
	build := func() *Table {
		tbl := NewTable()
		tbl.Add(Key{Words: []string{"it", "'s"}, Tags: []string{"PRP", "VBZ"}}, "it is")
		tbl.Add(Key{Words: []string{"she", "'d"}, Tags: []string{"PRP", "MD"}}, "she had")
		tbl.Add(Key{Words: []string{"she", "'d"}, Tags: []string{"PRP", "MD"}}, "she would")
		return tbl
	}
	a, err := build().Marshal()
	require.NoError(t, err)
	b, err := build().Marshal()
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)
}
