package dapbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TimothyStiles/dap/pfpview"
)

// buildTestView assembles a tiny two-phrase PFP fixture: phrases "ACGT"
// and "ACGG" (both length 4, window w=2), dictionary-concatenated with
// a phrase-start bitmap, so phraseSuffixAt/sameSuffix can be exercised
// without needing a real external PFP toolchain.
func buildTestView(t *testing.T) pfpview.View {
	t.Helper()
	dict := []byte("ACGTACGG")
	bd := make([]bool, len(dict))
	bd[0] = true
	bd[4] = true

	saD := make([]int, len(dict))
	for i := range saD {
		saD[i] = i
	}
	// not lexicographically sorted; phraseSuffixAt/sameSuffix don't
	// require sortedness to be exercised in isolation.
	lcpD := make([]int, len(dict))

	ilist := []int{0, 1}
	ilistStarts := []int{0, 1, 2}
	posT := []int{10, 20}
	sLcpT := []int{0, 5}

	view, err := pfpview.FromParts(pfpview.Parts{
		W:           2,
		N:           30,
		Dict:        dict,
		SaD:         saD,
		LcpD:        lcpD,
		BD:          bd,
		Ilist:       ilist,
		IlistStarts: ilistStarts,
		PosT:        posT,
		SLcpT:       sLcpT,
	})
	require.NoError(t, err)
	return view
}

func TestPhraseSuffixAt_ValidityByWindowAndBoundary(t *testing.T) {
	view := buildTestView(t)
	m := newMerger(view)

	// sn=0 is a phrase start but sn < w, so it's invalid overlap padding.
	ps0 := m.phraseSuffixAt(0)
	assert.False(t, ps0.valid)

	// sn=2: suffix_length to the next boundary (4) is 2, equal to w; valid.
	ps2 := m.phraseSuffixAt(2)
	assert.True(t, ps2.valid)
	assert.Equal(t, byte('C'), ps2.bwtChar) // dict[sn-1] = dict[1] = 'C'
	assert.Equal(t, 2, ps2.suffixLength)

	// sn=4 is the second phrase's start, sn >= w but still a phrase
	// boundary; still valid since suffix_length(4) >= w.
	ps4 := m.phraseSuffixAt(4)
	assert.True(t, ps4.valid)
}

func TestSameSuffix_ThresholdOnSuffixLength(t *testing.T) {
	view := buildTestView(t)
	m := newMerger(view)

	a := m.phraseSuffixAt(2) // suffix_length 2
	b := m.phraseSuffixAt(6) // suffix_length 2

	assert.True(t, m.sameSuffix(a, b, 2))
	assert.False(t, m.sameSuffix(a, b, 1))
}

func TestOccBlock_MatchesIlistStarts(t *testing.T) {
	view := buildTestView(t)
	m := newMerger(view)

	start, end := m.occBlock(0)
	assert.Equal(t, 0, start)
	assert.Equal(t, 1, end)

	start, end = m.occBlock(1)
	assert.Equal(t, 1, start)
	assert.Equal(t, 2, end)
}

// buildMergeFixture assembles a hand-verified, two-phrase dictionary
// ("GACTA" and "GACTG", w=2) where phrase "GACTA" occurs twice in the
// parse and "GACTG" occurs once. Its suffix array, LCP array, and
// phrase/occurrence boundaries were worked out by hand (not produced by
// an external PFP tool, which package pfpview documents as out of
// scope); pos_T and s_lcp_T, which genuinely do come from an external
// tool, are chosen values consistent with that derivation. This drives
// Run end to end, exercising grouping across distinct suffix lengths,
// multi-occurrence merging of a repeated phrase, the cross-group
// lcp_suffix computed straight off lcpD (not from suffix_length), and
// the same-suffix extension through s_lcp_T.
func buildMergeFixture(t *testing.T) pfpview.View {
	t.Helper()
	dict := []byte("GACTAGACTG")
	bd := make([]bool, len(dict))
	bd[0] = true
	bd[5] = true

	saD := []int{1, 6, 4, 2, 7, 9, 0, 5, 3, 8}
	lcpD := []int{0, 3, 1, 0, 2, 0, 1, 4, 0, 1}

	ilist := []int{0, 1, 2}
	ilistStarts := []int{0, 2, 3}
	posT := []int{50, 80, 65}
	sLcpT := []int{0, 7, 0}

	view, err := pfpview.FromParts(pfpview.Parts{
		W:           2,
		N:           1000,
		Dict:        dict,
		SaD:         saD,
		LcpD:        lcpD,
		BD:          bd,
		Ilist:       ilist,
		IlistStarts: ilistStarts,
		PosT:        posT,
		SLcpT:       sLcpT,
	})
	require.NoError(t, err)
	return view
}

func TestRun_EmitsExpectedStreamAcrossGroupsAndOccurrences(t *testing.T) {
	view := buildMergeFixture(t)
	m := newMerger(view)

	var got []emitted
	require.NoError(t, m.Run(func(e emitted) error {
		got = append(got, e)
		return nil
	}))

	want := []emitted{
		{bwtCh: 'G', ssa: 61, lcpWithPrev: 0, isRunStart: true},
		{bwtCh: 'A', ssa: 47, lcpWithPrev: 0, isRunStart: true},
		{bwtCh: 'A', ssa: 77, lcpWithPrev: 8, isRunStart: false},
		{bwtCh: 'A', ssa: 62, lcpWithPrev: 2, isRunStart: false},
		{bwtCh: 'A', ssa: 60, lcpWithPrev: 0, isRunStart: false},
		{bwtCh: 'C', ssa: 48, lcpWithPrev: 0, isRunStart: true},
		{bwtCh: 'C', ssa: 78, lcpWithPrev: 7, isRunStart: false},
		{bwtCh: 'C', ssa: 63, lcpWithPrev: 1, isRunStart: false},
	}
	assert.Equal(t, want, got)
}
