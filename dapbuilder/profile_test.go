package dapbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCatalog is a minimal docOf for feeding processor by hand, with
// (bwt_ch, sa_sample, lcp_with_prev) triples computed offline rather
// than through a synthetic PFP fixture.
type fakeCatalog struct {
	n       int
	docEnds []int
}

func (f fakeCatalog) NumDocs() int     { return len(f.docEnds) }
func (f fakeCatalog) TotalLength() int { return f.n }
func (f fakeCatalog) DocOf(p int) int {
	for i, end := range f.docEnds {
		if p < end {
			return i
		}
	}
	return len(f.docEnds) - 1
}

func row(vals ...uint64) []uint64 { return vals }

// TestProcessor_TwoIdenticalDocuments replays, by hand, the full
// backward-walk/retirement bookkeeping for T = "AC$AC$" (d=2): the
// suffix array, BWT and LCP array were computed offline and fed in as
// the merged stream processor expects, isolating the profile logic
// from PFP-merge correctness.
func TestProcessor_TwoIdenticalDocuments(t *testing.T) {
	catalog := fakeCatalog{n: 6, docEnds: []int{3, 6}}
	p := newProcessor(catalog)

	type step struct {
		ch      byte
		ssa     int
		lcp     int
		isStart bool
	}
	steps := []step{
		{'C', 5, 0, true},
		{'C', 2, 1, false},
		{'$', 3, 0, true},
		{'$', 0, 3, false},
		{'A', 4, 0, true},
		{'A', 1, 2, false},
	}

	for _, s := range steps {
		require.NoError(t, p.ProcessPosition(s.ch, s.ssa, s.lcp, s.isStart))
	}
	require.NoError(t, p.validate())

	retired := p.Drain()
	require.Len(t, retired, 6)

	var sdap, edap [][]uint64
	for _, r := range retired {
		if r.isStart {
			sdap = append(sdap, r.row)
		}
		if r.isEnd {
			edap = append(edap, r.row)
		}
	}

	require.Len(t, sdap, 3)
	require.Len(t, edap, 3)

	assert.Equal(t, row(1, 2), sdap[0])
	assert.Equal(t, row(4, 1), sdap[1])
	assert.Equal(t, row(1, 3), sdap[2])

	assert.Equal(t, row(5, 1), edap[0])
	assert.Equal(t, row(1, 1), edap[1])
	assert.Equal(t, row(6, 1), edap[2])
}

// TestProcessor_SingleDocument exercises the self-seed ceiling
// semantics (§9's resolved Open Question): with one document, the
// backward walk never finds a different doc_num to collect or amend,
// so every profile value is exactly the raw upper bound
// total_length - pos_of_LF_i, reproduced verbatim rather than replaced
// by an exact LCP.
func TestProcessor_SingleDocument(t *testing.T) {
	catalog := fakeCatalog{n: 7, docEnds: []int{7}}
	p := newProcessor(catalog)

	type step struct {
		ch      byte
		ssa     int
		lcp     int
		isStart bool
	}
	// SA=[6,2,0,3,1,4,5], BWT=G,C,$,A,A,A,C, LCP=0,0,1,2,0,1,0
	steps := []step{
		{'G', 6, 0, true},
		{'C', 2, 0, true},
		{'$', 0, 1, true},
		{'A', 3, 2, true},
		{'A', 1, 0, false},
		{'A', 4, 1, false},
		{'C', 5, 0, true},
	}
	for _, s := range steps {
		require.NoError(t, p.ProcessPosition(s.ch, s.ssa, s.lcp, s.isStart))
	}

	retired := p.Drain()
	require.Len(t, retired, 7)

	expectedSelfSeed := []uint64{2, 6, 1, 5, 7, 4, 3}
	for i, r := range retired {
		assert.Equal(t, expectedSelfSeed[i], r.row[0], "position %d", i)
	}
}

func TestProcessor_RejectsNothingOnEmptyDrain(t *testing.T) {
	catalog := fakeCatalog{n: 1, docEnds: []int{1}}
	p := newProcessor(catalog)
	assert.Empty(t, p.Drain())
}
