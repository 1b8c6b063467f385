/*
Package pfpview defines the read-only view over a precomputed Prefix-Free
Parse (PFP) of a text T that DAPBuilder consumes: the dictionary D with its
suffix array and LCP array, the phrase-start bitmap over D, the parse P's
inverted list, and the pos_T/s_lcp_T arrays with range-minimum support.

Producing these structures (running the external parseNT/newscan/pscan
helpers over a reference) is out of scope for this module; pfpview only
defines the consumption contract and provides two ways to satisfy it:
FromParts, for an already-resident PFP (tests, or an embedding caller),
and Load, for PFP artifacts serialized to disk by an external helper.
*/
package pfpview

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"

	"golang.org/x/exp/slices"

	"github.com/TimothyStiles/dap/dap"
)

// View is the read-only accessor set required by DAPBuilder. All methods
// are side-effect-free; a View is immutable once constructed.
type View interface {
	// Window returns w, the PFP window size.
	Window() int
	// TextLength returns n, the length of T.
	TextLength() int

	// DictLen returns the length of the dictionary byte sequence D.
	DictLen() int
	// DictAt returns D[i].
	DictAt(i int) byte
	// SaD returns saD[i], the suffix array of D.
	SaD(i int) int
	// SaDLen returns len(saD).
	SaDLen() int
	// LcpD returns lcpD[i], the LCP array over saD.
	LcpD(i int) int
	// RMQLcpD returns min(lcpD[l..r]), inclusive on both ends. This is
	// the true dictionary LCP between saD[l-1] and saD[r] (or, more
	// generally, the shared prefix length of every suffix saD[l-1..r]),
	// used to compute lcp_suffix across a same_suffix group boundary.
	RMQLcpD(l, r int) int

	// RankBD returns rank_1 of the phrase-start bitmap b_d up to
	// (not including) position i.
	RankBD(i int) int
	// SelectBD returns the position of the k-th (1-indexed) set bit
	// in b_d, or DictLen() if k exceeds the number of set bits.
	SelectBD(k int) int

	// SelectIlistS returns the start offset into the inverted list for
	// the k-th phrase's occurrence block (so occurrences of phrase p
	// live in ilist[SelectIlistS(p) : SelectIlistS(p+1)], read with IlistAt).
	SelectIlistS(k int) int
	// IlistAt returns ilist[i], a parse-BWT position.
	IlistAt(i int) int
	// IlistLen returns len(ilist).
	IlistLen() int

	// PosT returns pos_T[k], the text offset at which the k-th parse
	// symbol occurrence ends.
	PosT(k int) int

	// RMQSLcpT returns min(s_lcp_T[l..r]), inclusive on both ends.
	RMQSLcpT(l, r int) int
}

// Parts is the fully materialized set of PFP structures FromParts wraps
// into a View. Callers populate every field; FromParts derives the rank
// and range-minimum auxiliary structures.
type Parts struct {
	W int
	N int

	Dict []byte
	SaD  []int
	LcpD []int
	// BD marks, for each position in Dict, whether it starts a phrase.
	BD []bool

	Ilist []int
	// IlistStarts[p] is the start offset of phrase p's occurrence
	// block in Ilist; it must have one more entry than the number of
	// phrases (a final sentinel equal to len(Ilist)).
	IlistStarts []int

	PosT   []int
	SLcpT  []int
}

type view struct {
	parts Parts
	bdRank
	rmq
	lcpDRmq rmq
}

// FromParts builds a View over already-resident PFP structures.
func FromParts(p Parts) (View, error) {
	if len(p.BD) != len(p.Dict) {
		return nil, fmt.Errorf("%w: len(BD)=%d != len(Dict)=%d", dap.ErrInputShape, len(p.BD), len(p.Dict))
	}
	if len(p.IlistStarts) == 0 || p.IlistStarts[len(p.IlistStarts)-1] != len(p.Ilist) {
		return nil, fmt.Errorf("%w: IlistStarts must end with len(Ilist)", dap.ErrInputShape)
	}

	v := &view{parts: p}
	v.bdRank = buildBDRank(p.BD)
	v.rmq = buildRMQ(p.SLcpT)
	v.lcpDRmq = buildRMQ(p.LcpD)
	return v, nil
}

func (v *view) Window() int     { return v.parts.W }
func (v *view) TextLength() int { return v.parts.N }

func (v *view) DictLen() int      { return len(v.parts.Dict) }
func (v *view) DictAt(i int) byte { return v.parts.Dict[i] }
func (v *view) SaD(i int) int     { return v.parts.SaD[i] }
func (v *view) SaDLen() int       { return len(v.parts.SaD) }
func (v *view) LcpD(i int) int    { return v.parts.LcpD[i] }

func (v *view) RMQLcpD(l, r int) int {
	if l > r {
		return 0
	}
	return v.parts.LcpD[v.lcpDRmq.argmin(l, r)]
}

func (v *view) RankBD(i int) int { return v.bdRank.rank1(i) }
func (v *view) SelectBD(k int) int {
	return v.bdRank.select1(k)
}

func (v *view) SelectIlistS(k int) int {
	if k >= len(v.parts.IlistStarts) {
		return len(v.parts.Ilist)
	}
	return v.parts.IlistStarts[k]
}
func (v *view) IlistAt(i int) int { return v.parts.Ilist[i] }
func (v *view) IlistLen() int     { return len(v.parts.Ilist) }

func (v *view) PosT(k int) int { return v.parts.PosT[k] }

func (v *view) RMQSLcpT(l, r int) int {
	return v.parts.SLcpT[v.rmq.argmin(l, r)]
}

// Load reads PFP artifacts written by an external helper at <prefix>,
// using this package's own little-endian binary layout: one file per
// array (dict bytes as-is; all int arrays as 8-byte little-endian
// signed integers; the phrase-start bitmap as one byte per bit, nonzero
// meaning set). This is this module's consumption contract, not a
// format imposed by an upstream tool.
func Load(prefix string) (View, error) {
	dict, err := os.ReadFile(prefix + ".dict")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", dap.ErrInputMissing, err)
	}
	bdBytes, err := os.ReadFile(prefix + ".dict.bd")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", dap.ErrInputMissing, err)
	}
	bd := make([]bool, len(bdBytes))
	for i, b := range bdBytes {
		bd[i] = b != 0
	}

	saD, err := readIntArray(prefix + ".dict.sa")
	if err != nil {
		return nil, err
	}
	lcpD, err := readIntArray(prefix + ".dict.lcp")
	if err != nil {
		return nil, err
	}
	ilist, err := readIntArray(prefix + ".ilist")
	if err != nil {
		return nil, err
	}
	ilistStarts, err := readIntArray(prefix + ".ilist.starts")
	if err != nil {
		return nil, err
	}
	posT, err := readIntArray(prefix + ".pos_t")
	if err != nil {
		return nil, err
	}
	sLcpT, err := readIntArray(prefix + ".s_lcp_t")
	if err != nil {
		return nil, err
	}
	meta, err := readIntArray(prefix + ".pfp.meta")
	if err != nil {
		return nil, err
	}
	if len(meta) != 2 {
		return nil, fmt.Errorf("%w: %s.pfp.meta must hold exactly [w, n]", dap.ErrInputShape, prefix)
	}

	return FromParts(Parts{
		W:           meta[0],
		N:           meta[1],
		Dict:        dict,
		SaD:         saD,
		LcpD:        lcpD,
		BD:          bd,
		Ilist:       ilist,
		IlistStarts: ilistStarts,
		PosT:        posT,
		SLcpT:       sLcpT,
	})
}

func readIntArray(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", dap.ErrInputMissing, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var out []int
	for {
		var v int64
		err := binary.Read(r, binary.LittleEndian, &v)
		if err != nil {
			break
		}
		out = append(out, int(v))
	}
	return out, nil
}

// sortedIndices is a small helper used by tests to build a suffix array
// over an in-memory dictionary without depending on an external PFP
// toolchain; grounded on the bwt package's own prefix-sort-based suffix
// array construction.
func sortedIndices(n int, less func(a, b int) bool) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	slices.SortFunc(idx, less)
	return idx
}
