/*
Package refcatalog holds the document boundaries of a multi-document
reference text and answers doc_of queries against them.

A Catalog is built once, at build time, from a list of FASTA reference
files: every record's sequence is concatenated into a single buffer with
a Terminator byte appended after each document, and the cumulative end
offsets are recorded as E[]. The same Catalog, or one reloaded from its
sidecar file, is then used read-only by both DAPBuilder (during
construction, to resolve which document a BWT position's predecessor
belongs to) and DAPIndex (during load, to validate the num_docs recorded
in the SDAP/EDAP headers).

doc_of(p) is answered with rank_1 over a bitvector marking every E[k],
not with a cursor, because the builder queries it in suffix-array order
rather than left-to-right text order.
*/
package refcatalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/TimothyStiles/dap/dap"
	pio "github.com/TimothyStiles/dap/io"
	"github.com/TimothyStiles/dap/io/fasta2"
)

// Terminator is the sentinel byte appended after every document in the
// concatenated text. It is chosen as a value lower than any nucleotide or
// amino acid code so that it sorts first in the BWT's first column.
const Terminator byte = 0x01

// Catalog holds the document boundaries over a concatenated text T.
type Catalog struct {
	n        int
	docEnds  []int
	ends     rankBitVector
	fingerprint string
}

// NumDocs returns d, the number of documents in the catalog.
func (c *Catalog) NumDocs() int {
	return len(c.docEnds)
}

// TotalLength returns n, the length of the concatenated text.
func (c *Catalog) TotalLength() int {
	return c.n
}

// DocEnds returns the sorted sequence E[0..d-1].
func (c *Catalog) DocEnds() []int {
	out := make([]int, len(c.docEnds))
	copy(out, c.docEnds)
	return out
}

// Fingerprint returns the content fingerprint computed over the
// concatenated text at build time (see Fingerprint in fingerprint.go).
func (c *Catalog) Fingerprint() string {
	return c.fingerprint
}

// DocOf returns j = doc_of(p) = |{k : E[k] <= p}|, clamped to [0, d-1].
// It is backed by rank_1 over a bitvector marking every document end, so
// it is safe to call in any order, including strictly suffix-array order.
func (c *Catalog) DocOf(p int) int {
	if p < 0 {
		p = 0
	}
	if p >= c.n {
		p = c.n - 1
	}
	j := c.ends.rank1(p + 1)
	if j >= len(c.docEnds) {
		j = len(c.docEnds) - 1
	}
	return j
}

// Build concatenates every FASTA reference named in paths into a single
// text, appending Terminator after each document, and returns the
// resulting Catalog together with the concatenated text itself.
//
// Files are read concurrently with an errgroup; the resulting records
// are then concatenated in the caller's input order so that E[] is
// deterministic regardless of read completion order.
func Build(paths []string) (*Catalog, []byte, error) {
	if len(paths) == 0 {
		return nil, nil, fmt.Errorf("%w: reference file list is empty", dap.ErrInputMissing)
	}

	sequences := make([]string, len(paths))
	g := new(errgroup.Group)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			f, err := os.Open(p)
			if err != nil {
				return fmt.Errorf("%w: %s: %s", dap.ErrInputMissing, p, err)
			}
			defer f.Close()

			// References are sometimes hand-edited or come from a
			// different OS than the one running the build; normalize
			// line endings before parsing so a stray "\r\n" never ends
			// up embedded in a sequence.
			records, err := fasta2.ParseAll(pio.NewNewlineNormalizingReader(f))
			if err != nil {
				return fmt.Errorf("%w: %s: %s", dap.ErrInputMissing, p, err)
			}
			var b strings.Builder
			for _, r := range records {
				b.WriteString(strings.ToUpper(r.Sequence))
			}
			sequences[i] = b.String()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var text strings.Builder
	docEnds := make([]int, 0, len(paths))
	for _, seq := range sequences {
		text.WriteString(seq)
		text.WriteByte(Terminator)
		docEnds = append(docEnds, text.Len()-1)
	}

	raw := []byte(text.String())
	catalog := FromDocEnds(docEnds)
	catalog.fingerprint = Fingerprint(raw, AlgorithmDefault)

	return catalog, raw, nil
}

// FromDocEnds builds a Catalog directly from a precomputed E[] sequence,
// used when the concatenated text already exists (e.g. a reloaded
// catalog, or a synthetic scenario in tests).
func FromDocEnds(docEnds []int) *Catalog {
	n := 0
	if len(docEnds) > 0 {
		n = docEnds[len(docEnds)-1] + 1
	}
	return &Catalog{
		n:       n,
		docEnds: append([]int(nil), docEnds...),
		ends:    newRankBitVector(n, docEnds),
	}
}

// sidecar is the persisted JSON shape written alongside <prefix>.fna.
type sidecar struct {
	NumDocs     int    `json:"num_docs"`
	TotalLength int    `json:"total_length"`
	DocEnds     []int  `json:"doc_ends"`
	Fingerprint string `json:"fingerprint"`
}

// WriteSidecar persists the catalog's document boundaries and fingerprint
// to <prefix>.fna.catalog as JSON.
func (c *Catalog) WriteSidecar(path string) error {
	data, err := json.MarshalIndent(sidecar{
		NumDocs:     c.NumDocs(),
		TotalLength: c.n,
		DocEnds:     c.docEnds,
		Fingerprint: c.fingerprint,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshaling catalog sidecar: %s", dap.ErrIoFailure, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: writing catalog sidecar %s: %s", dap.ErrIoFailure, path, err)
	}
	return nil
}

// LoadSidecar reads a catalog previously persisted with WriteSidecar.
func LoadSidecar(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading catalog sidecar %s: %s", dap.ErrInputMissing, path, err)
	}
	var sc sidecar
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%w: parsing catalog sidecar %s: %s", dap.ErrInputShape, path, err)
	}
	if len(sc.DocEnds) != sc.NumDocs {
		return nil, fmt.Errorf("%w: catalog sidecar %s: num_docs=%d but found %d doc_ends", dap.ErrInputShape, path, sc.NumDocs, len(sc.DocEnds))
	}

	catalog := FromDocEnds(sc.DocEnds)
	catalog.fingerprint = sc.Fingerprint
	return catalog, nil
}
