package refcatalog

import "math/bits"

// wordSize matches the sub-chunk width used by the bwt package's Jacobson
// rank structure; doc_of is a rank-only query so no select support is built
// here.
const wordSize = 64

// rankBitVector is a packed bit array supporting O(1) rank_1 queries via a
// Jacobson rank index, the same approach the bwt package uses for its BWT
// run-head bitvectors, adapted here for the document-ends bitvector: a 1
// bit marks the last position of a document in the concatenated text.
type rankBitVector struct {
	words              []uint64
	numberOfBits       int
	chunkCumulative    []int
	subChunkCumulative [][4]int
	totalOnesRank      int
}

func newRankBitVector(numberOfBits int, onePositions []int) rankBitVector {
	numWords := (numberOfBits + wordSize - 1) / wordSize
	words := make([]uint64, numWords)
	for _, p := range onePositions {
		words[p/wordSize] |= uint64(1) << uint(63-p%wordSize)
	}

	rbv := rankBitVector{words: words, numberOfBits: numberOfBits}
	rbv.build()
	return rbv
}

func (rbv *rankBitVector) build() {
	cumulative := 0
	rbv.chunkCumulative = make([]int, 0, (len(rbv.words)+3)/4)
	rbv.subChunkCumulative = make([][4]int, 0, (len(rbv.words)+3)/4)

	for i := 0; i < len(rbv.words); i += 4 {
		var subCum [4]int
		chunkStart := cumulative
		subRunning := 0
		for j := 0; j < 4; j++ {
			subCum[j] = subRunning
			if i+j < len(rbv.words) {
				subRunning += bits.OnesCount64(rbv.words[i+j])
			}
		}
		rbv.chunkCumulative = append(rbv.chunkCumulative, chunkStart)
		rbv.subChunkCumulative = append(rbv.subChunkCumulative, subCum)
		cumulative += subRunning
	}
	rbv.totalOnesRank = cumulative
}

// rank1 returns |{k < i : bit k is set}|.
func (rbv rankBitVector) rank1(i int) int {
	if i >= rbv.numberOfBits {
		return rbv.totalOnesRank
	}
	if i <= 0 {
		return 0
	}

	chunkIdx := i / (wordSize * 4)
	subChunkIdx := (i % (wordSize * 4)) / wordSize
	bitOffset := i % wordSize

	rank := rbv.chunkCumulative[chunkIdx] + rbv.subChunkCumulative[chunkIdx][subChunkIdx]
	if bitOffset > 0 {
		word := rbv.words[chunkIdx*4+subChunkIdx]
		rank += bits.OnesCount64(word >> uint(wordSize-bitOffset))
	}
	return rank
}
