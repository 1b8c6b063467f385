package refcatalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_DocOf(t *testing.T) {
	// T = "AC$AC$", two documents of length 3 each. doc_of(p) counts the
	// ends E[k] <= p, so the terminator at E[0] = 2 already maps to doc 1.
	docEnds := []int{2, 5}
	catalog := FromDocEnds(docEnds)

	assert.Equal(t, 2, catalog.NumDocs())
	assert.Equal(t, 6, catalog.TotalLength())

	testCases := []struct {
		pos      int
		expected int
	}{
		{0, 0}, {1, 0}, {2, 1},
		{3, 1}, {4, 1}, {5, 1},
	}
	for _, tc := range testCases {
		assert.Equalf(t, tc.expected, catalog.DocOf(tc.pos), "DocOf(%d)", tc.pos)
	}
}

func TestCatalog_DocOf_Monotone(t *testing.T) {
	docEnds := []int{4, 9, 30, 31, 100}
	catalog := FromDocEnds(docEnds)

	prev := catalog.DocOf(0)
	for p := 1; p < catalog.TotalLength(); p++ {
		curr := catalog.DocOf(p)
		require.GreaterOrEqual(t, curr, prev)
		prev = curr
	}
	assert.Equal(t, len(docEnds)-1, catalog.DocOf(catalog.TotalLength()-1))
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	fa := filepath.Join(dir, "a.fasta")
	fb := filepath.Join(dir, "b.fasta")
	require.NoError(t, os.WriteFile(fa, []byte(">doc-a\nACGT\n"), 0o644))
	require.NoError(t, os.WriteFile(fb, []byte(">doc-b\nGGCC\n"), 0o644))

	catalog, text, err := Build([]string{fa, fb})
	require.NoError(t, err)
	assert.Equal(t, 2, catalog.NumDocs())
	assert.Equal(t, len(text), catalog.TotalLength())
	assert.Equal(t, Terminator, text[catalog.DocEnds()[0]])
	assert.Equal(t, Terminator, text[catalog.DocEnds()[1]])
	assert.NotEmpty(t, catalog.Fingerprint())
}

func TestBuild_EmptyFileList(t *testing.T) {
	_, _, err := Build(nil)
	require.Error(t, err)
}

func TestSidecarRoundTrip(t *testing.T) {
	docEnds := []int{3, 7}
	catalog := FromDocEnds(docEnds)
	catalog.fingerprint = "deadbeef"

	path := filepath.Join(t.TempDir(), "ref.fna.catalog")
	require.NoError(t, catalog.WriteSidecar(path))

	reloaded, err := LoadSidecar(path)
	require.NoError(t, err)
	assert.Equal(t, catalog.NumDocs(), reloaded.NumDocs())
	assert.Equal(t, catalog.DocEnds(), reloaded.DocEnds())
	assert.Equal(t, catalog.Fingerprint(), reloaded.Fingerprint())
}

func TestFingerprint_AlgorithmsDiffer(t *testing.T) {
	text := []byte("ACGTACGTACGT")
	blake3Sum := Fingerprint(text, AlgorithmBLAKE3)
	sha256Sum := Fingerprint(text, AlgorithmSHA256)
	assert.NotEqual(t, blake3Sum, sha256Sum)
	assert.Equal(t, blake3Sum, Fingerprint(text, AlgorithmBLAKE3))
}

func TestParseAlgorithm_Fallback(t *testing.T) {
	assert.Equal(t, AlgorithmDefault, ParseAlgorithm("not-a-real-algorithm"))
	assert.Equal(t, AlgorithmSHA256, ParseAlgorithm("sha256"))
}
