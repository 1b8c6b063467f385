package dapindex

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TimothyStiles/dap/refcatalog"
)

// writeRawArtifacts hand-encodes a tiny two-run, two-document artifact
// set in dapbuilder's on-disk format, so dapindex can be tested without
// driving a full streaming build.
func writeRawArtifacts(t *testing.T, prefix string) {
	t.Helper()

	require.NoError(t, os.WriteFile(prefix+".bwt.heads", []byte{'A', 'C'}, 0o644))

	lenBuf := make([]byte, 0, 10)
	putLE := func(v uint64, width int) []byte {
		b := make([]byte, width)
		for i := 0; i < width; i++ {
			b[i] = byte(v)
			v >>= 8
		}
		return b
	}
	lenBuf = append(lenBuf, putLE(3, 5)...)
	lenBuf = append(lenBuf, putLE(2, 5)...)
	require.NoError(t, os.WriteFile(prefix+".bwt.len", lenBuf, 0o644))

	writeMatrix := func(path string, numDocs int, rows [][]uint64) {
		buf := make([]byte, 8+8*numDocs*len(rows))
		binary.LittleEndian.PutUint64(buf, uint64(numDocs))
		off := 8
		for _, row := range rows {
			for _, v := range row {
				binary.LittleEndian.PutUint64(buf[off:], v)
				off += 8
			}
		}
		require.NoError(t, os.WriteFile(path, buf, 0o644))
	}
	writeMatrix(prefix+".sdap", 2, [][]uint64{{1, 2}, {3, 4}})
	writeMatrix(prefix+".edap", 2, [][]uint64{{5, 6}, {7, 8}})
}

func TestLoad_ValidatesAndExposesQueries(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "toy")
	writeRawArtifacts(t, prefix)

	catalog := refcatalog.FromDocEnds([]int{2, 4})

	idx, err := Load(prefix, catalog)
	require.NoError(t, err)

	assert.Equal(t, 2, idx.NumRuns())
	assert.Equal(t, 2, idx.NumDocs())
	assert.Equal(t, 5, idx.TextLength())

	assert.Equal(t, 0, idx.RunOf(0))
	assert.Equal(t, 0, idx.RunOf(2))
	assert.Equal(t, 1, idx.RunOf(3))
	assert.Equal(t, 1, idx.RunOf(4))

	row, err := idx.LongestMatch(0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, row)

	row, err = idx.LongestMatch(2)
	require.NoError(t, err)
	assert.Equal(t, []uint64{5, 6}, row)

	_, err = idx.LongestMatch(5)
	assert.Error(t, err)
}

func TestLoad_RejectsDocCountMismatch(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "toy")
	writeRawArtifacts(t, prefix)

	catalog := refcatalog.FromDocEnds([]int{4})

	_, err := Load(prefix, catalog)
	assert.Error(t, err)
}

func TestLoad_RejectsMismatchedHeadsAndLens(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "toy")
	writeRawArtifacts(t, prefix)
	require.NoError(t, os.WriteFile(prefix+".bwt.heads", []byte{'A'}, 0o644))

	catalog := refcatalog.FromDocEnds([]int{2, 4})
	_, err := Load(prefix, catalog)
	assert.Error(t, err)
}
