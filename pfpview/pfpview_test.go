package pfpview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDictSA(dict []byte) []int {
	return sortedIndices(len(dict), func(a, b int) bool {
		return string(dict[a:]) < string(dict[b:])
	})
}

func TestFromParts_Accessors(t *testing.T) {
	dict := []byte("ACGTACGT")
	saD := buildDictSA(dict)
	bd := make([]bool, len(dict))
	bd[0] = true
	bd[4] = true

	ilist := []int{0, 3, 1, 2, 4}
	ilistStarts := []int{0, 2, 5}
	posT := []int{5, 10, 15, 20, 25}
	sLcpT := []int{0, 3, 1, 4, 2}

	view, err := FromParts(Parts{
		W:           2,
		N:           20,
		Dict:        dict,
		SaD:         saD,
		LcpD:        make([]int, len(dict)),
		BD:          bd,
		Ilist:       ilist,
		IlistStarts: ilistStarts,
		PosT:        posT,
		SLcpT:       sLcpT,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, view.Window())
	assert.Equal(t, 20, view.TextLength())
	assert.Equal(t, len(dict), view.DictLen())
	assert.Equal(t, byte('A'), view.DictAt(0))
	assert.Equal(t, 0, view.RankBD(0))
	assert.Equal(t, 1, view.RankBD(1))
	assert.Equal(t, 2, view.RankBD(5))
	assert.Equal(t, 0, view.SelectBD(1))
	assert.Equal(t, 4, view.SelectBD(2))

	assert.Equal(t, 0, view.SelectIlistS(0))
	assert.Equal(t, 2, view.SelectIlistS(1))
	assert.Equal(t, 5, view.SelectIlistS(2))
	assert.Equal(t, len(ilist), view.IlistLen())

	assert.Equal(t, 10, view.PosT(1))
}

func TestRMQ_SLcpT(t *testing.T) {
	values := []int{5, 2, 4, 7, 6, 3, 1, 8}
	r := buildRMQ(values)

	testCases := []struct {
		l, rr, expected int
	}{
		{0, 7, 6},
		{0, 2, 1},
		{3, 4, 4},
		{5, 7, 6},
		{2, 2, 2},
	}
	for _, tc := range testCases {
		got := values[r.argmin(tc.l, tc.rr)]
		assert.Equalf(t, values[tc.expected], got, "argmin(%d,%d)", tc.l, tc.rr)
	}
}

func TestFromParts_RejectsMismatchedBD(t *testing.T) {
	_, err := FromParts(Parts{
		Dict:        []byte("AC"),
		BD:          []bool{true},
		IlistStarts: []int{0},
	})
	require.Error(t, err)
}

func TestFromParts_RejectsBadIlistStarts(t *testing.T) {
	_, err := FromParts(Parts{
		Dict:        []byte("AC"),
		BD:          []bool{true, false},
		Ilist:       []int{1, 2, 3},
		IlistStarts: []int{0, 1},
	})
	require.Error(t, err)
}
