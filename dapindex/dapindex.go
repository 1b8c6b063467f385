/*
Package dapindex loads the run-length BWT and the SDAP/EDAP
document-profile matrices that DAPBuilder writes (the LCP and SA-sample
streams are not read) into a read-only, immutable query structure: the F-array,
LF-mapping, and the two supplemental accessors (LongestMatch, RunOf)
that complete the original's stubbed query side.

Index is never mutated after Load returns; every exported method is a
pure function of the loaded state.
*/
package dapindex

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/TimothyStiles/dap/bwt"
	"github.com/TimothyStiles/dap/dap"
	"github.com/TimothyStiles/dap/dapbuilder"
	"github.com/TimothyStiles/dap/refcatalog"
)

// Index is the immutable, loaded query structure over one DAPBuilder
// output prefix.
type Index struct {
	transform bwt.BWT

	numRuns    int
	numDocs    int
	textLength int

	runStarts []int // cumulative BWT start position of each run
	runHeads  []byte

	f                [256]int
	terminatorRun    int

	sdap [][]uint64
	edap [][]uint64
}

// NumRuns returns r, the number of BWT runs.
func (idx *Index) NumRuns() int { return idx.numRuns }

// NumDocs returns d, the number of documents.
func (idx *Index) NumDocs() int { return idx.numDocs }

// TextLength returns n, the total length of T.
func (idx *Index) TextLength() int { return idx.textLength }

// LF implements the LF-mapping: F[c] + rank(i, c), the position in T's
// BWT that i's preceding character maps to.
func (idx *Index) LF(i int, c byte) int {
	return idx.f[c] + idx.transform.RankChar(c, i)
}

// RunOf returns the run index containing BWT position p.
func (idx *Index) RunOf(p int) int {
	// largest run index whose start is <= p.
	j := sort.Search(len(idx.runStarts), func(i int) bool { return idx.runStarts[i] > p })
	if j == 0 {
		return 0
	}
	return j - 1
}

// LongestMatch returns the interpolated per-document longest-match
// profile at an arbitrary BWT position: the SDAP or EDAP row of the
// position's enclosing run, whichever boundary (start or end) is
// nearer. This is a supplemental query completing the original's
// stubbed query side (§4.4).
func (idx *Index) LongestMatch(bwtPos int) ([]uint64, error) {
	if bwtPos < 0 || bwtPos >= idx.textLength {
		return nil, fmt.Errorf("%w: bwt position %d out of range [0,%d)", dap.ErrInputShape, bwtPos, idx.textLength)
	}
	run := idx.RunOf(bwtPos)
	start := idx.runStarts[run]
	end := start
	if run+1 < len(idx.runStarts) {
		end = idx.runStarts[run+1] - 1
	} else {
		end = idx.textLength - 1
	}

	distToStart := bwtPos - start
	distToEnd := end - bwtPos
	if distToStart <= distToEnd {
		return idx.sdap[run], nil
	}
	return idx.edap[run], nil
}

// Load reads <prefix>.bwt.heads, .bwt.len, .sdap and .edap, as written
// by dapbuilder, and
// validates them against catalog (the document count the SDAP/EDAP
// headers must agree with, per §4.4/§9's resolved invariant 2).
func Load(prefix string, catalog *refcatalog.Catalog) (*Index, error) {
	heads, err := os.ReadFile(prefix + ".bwt.heads")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", dap.ErrInputMissing, err)
	}
	lenBytes, err := os.ReadFile(prefix + ".bwt.len")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", dap.ErrInputMissing, err)
	}
	if len(lenBytes)%dapbuilder.BwtLenBytes != 0 {
		return nil, fmt.Errorf("%w: %s.bwt.len size %d not a multiple of %d", dap.ErrInputShape, prefix, len(lenBytes), dapbuilder.BwtLenBytes)
	}
	numRuns := len(lenBytes) / dapbuilder.BwtLenBytes
	if numRuns != len(heads) {
		return nil, fmt.Errorf("%w: %d run heads but %d run lengths", dap.ErrInputShape, len(heads), numRuns)
	}

	lengths := make([]int, numRuns)
	runStarts := make([]int, numRuns)
	pos := 0
	for i := 0; i < numRuns; i++ {
		v := readUintN(lenBytes[i*dapbuilder.BwtLenBytes:], dapbuilder.BwtLenBytes)
		if v == 0 {
			return nil, fmt.Errorf("%w: run %d has zero length", dap.ErrInvariantViolation, i)
		}
		lengths[i] = int(v)
		runStarts[i] = pos
		pos += int(v)
	}
	textLength := pos

	transform, err := bwt.NewFromRuns(heads, lengths)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", dap.ErrInputShape, err)
	}

	idx := &Index{
		transform:  transform,
		numRuns:    numRuns,
		numDocs:    catalog.NumDocs(),
		textLength: textLength,
		runStarts:  runStarts,
		runHeads:   heads,
	}
	idx.buildF(heads, lengths)

	if idx.sdap, err = loadProfileMatrix(prefix+".sdap", numRuns, idx.numDocs); err != nil {
		return nil, err
	}
	if idx.edap, err = loadProfileMatrix(prefix+".edap", numRuns, idx.numDocs); err != nil {
		return nil, err
	}

	return idx, nil
}

// buildF scans the run-length encoding once, folding every byte at or
// below the terminator into a single TERMINATOR bucket (§4.4), then
// turns per-character counts into prefix-sum starts.
func (idx *Index) buildF(heads []byte, lengths []int) {
	var counts [256]int
	for i, h := range heads {
		c := h
		if c <= refcatalog.Terminator {
			c = refcatalog.Terminator
			idx.terminatorRun = i
		}
		counts[c] += lengths[i]
	}
	sum := 0
	for c := 0; c < 256; c++ {
		idx.f[c] = sum
		sum += counts[c]
	}
}

func loadProfileMatrix(path string, numRuns, numDocs int) ([][]uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", dap.ErrInputMissing, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var header uint64
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", dap.ErrIoFailure, path, err)
	}
	if int(header) != numDocs {
		return nil, fmt.Errorf("%w: %s num_docs header %d != catalog doc count %d", dap.ErrInputShape, path, header, numDocs)
	}

	expected := 8 + 8*numRuns*numDocs
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", dap.ErrIoFailure, err)
	}
	if info.Size() != int64(expected) {
		return nil, fmt.Errorf("%w: %s size %d != expected %d", dap.ErrInputShape, path, info.Size(), expected)
	}

	rows := make([][]uint64, numRuns)
	for i := 0; i < numRuns; i++ {
		row := make([]uint64, numDocs)
		for j := 0; j < numDocs; j++ {
			var v uint64
			if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
				if err == io.EOF {
					return nil, fmt.Errorf("%w: %s truncated at run %d doc %d", dap.ErrInputShape, path, i, j)
				}
				return nil, fmt.Errorf("%w: %s: %s", dap.ErrIoFailure, path, err)
			}
			row[j] = v
		}
		rows[i] = row
	}
	return rows, nil
}

func readUintN(buf []byte, width int) uint64 {
	var v uint64
	for i := width - 1; i >= 0; i-- {
		v = v<<8 | uint64(buf[i])
	}
	return v
}
