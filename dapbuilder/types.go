/*
Package dapbuilder implements the streaming construction of Document Array
Profiles from a Prefix-Free Parse view (pfpview.View) and a document
catalog (refcatalog.Catalog): it emits, in suffix-array order, a
run-length compressed BWT, an LCP stream, SA samples at run boundaries,
and a per-run document profile matrix (SDAP/EDAP) — without ever
materializing the suffix array or LCP array of the full text.

The construction is split into two cooperating halves, mirroring the two
responsibilities called out in the specification this package implements:

  - merge.go walks the dictionary suffix array and merges phrase
    occurrences by common text suffix, producing one (bwt_ch, sa_sample,
    lcp_with_prev) triple per emitted BWT-of-T position, strictly in SA
    order.
  - profile.go consumes that stream and performs the actual document
    profile bookkeeping: the sliding LCP queue, the backward walk that
    computes and back-patches profile rows, and the counting-invariant
    driven retirement that bounds queue memory.

The self-document column of every profile row is seeded with n -
pos_of_LF_i and never lowered, so it is an upper bound on the match with
the owning document, not an exact LCP.

Byte widths for the on-disk streams, matching the reference format.
*/
package dapbuilder

const (
	// ThrBytes is the width of one LCP record.
	ThrBytes = 3
	// SsaBytes is the width of each of the two fields (position, value)
	// of an SA-sample record.
	SsaBytes = 5
	// BwtLenBytes is the width of one BWT run-length record.
	BwtLenBytes = 5
)

// phraseSuffix is a cursor over the dictionary suffix array, tracking the
// fields needed to decide validity and to merge phrase occurrences: the
// dictionary SA index i, the phrase number the suffix at saD[i] belongs
// to, the length of the dictionary suffix from that position to the next
// phrase boundary, the raw dictionary offset sn = saD[i], and the BWT
// character that would precede this suffix in T.
type phraseSuffix struct {
	i            int
	phrase       int
	suffixLength int
	sn           int
	bwtChar      byte
	valid        bool
}

// queueEntry is one live BWT position in the sliding LCP queue: enough to
// drive the backward walk and the retirement invariant, but not the
// profile row itself (that lives in a parallel slice of rows, see profile.go).
type queueEntry struct {
	bwtCh       byte
	docNum      int
	isStart     bool
	isEnd       bool
	lcpWithPrev int
}

func mod(a, n int) int {
	if n == 0 {
		return 0
	}
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
