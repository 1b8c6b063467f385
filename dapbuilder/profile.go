package dapbuilder

import (
	"fmt"

	"github.com/TimothyStiles/dap/dap"
	"github.com/TimothyStiles/dap/refcatalog"
)

// docOf abstracts the one RefCatalog query the profile bookkeeping
// needs, so tests can supply a plain E[]-backed catalog or a synthetic
// one without going through a full Build.
type docOf interface {
	DocOf(p int) int
	NumDocs() int
	TotalLength() int
}

var _ docOf = (*refcatalog.Catalog)(nil)

// retiredRow is one profile row leaving the sliding queue, tagged with
// whether it should be written to SDAP, EDAP, both, or neither.
type retiredRow struct {
	isStart bool
	isEnd   bool
	row     []uint64
}

// processor owns the sliding LCP queue, the parallel profile-row buffer,
// and the ch_doc_counters retirement invariant described in §4.3. It
// consumes one (bwt_ch, sa_sample, lcp_with_prev) triple at a time, in SA
// order, and yields retired rows as they fall out of the queue.
type processor struct {
	catalog docOf
	d       int
	n       int

	queue    []queueEntry
	profiles [][]uint64 // profiles[i] corresponds 1:1 to queue[i]

	// ch_doc_counters[ch][doc] = number of queue-resident entries with
	// that (bwt_ch, doc_num) pair.
	counters map[byte][]int

	bwtPos  int
	retired []retiredRow
}

func newProcessor(catalog docOf) *processor {
	return &processor{
		catalog:  catalog,
		d:        catalog.NumDocs(),
		n:        catalog.TotalLength(),
		counters: make(map[byte][]int),
	}
}

func (p *processor) counterFor(ch byte) []int {
	c, ok := p.counters[ch]
	if !ok {
		c = make([]int, p.d)
		p.counters[ch] = c
	}
	return c
}

// ProcessPosition feeds one emitted BWT-of-T position into the profile
// bookkeeping. ssa is the SA sample at this position (§4.3's sa_i); the
// caller passes the run-start flag that merge.go computed; a run's end
// is only known once the next position's character is, so the previous
// tail entry's end flag is back-patched here when a new run starts (and
// set for the last entry by Drain).
func (p *processor) ProcessPosition(bwtCh byte, ssa int, lcpWithPrev int, isStart bool) error {
	posOfLFi := mod(ssa-1, p.n)
	docOfLFi := p.catalog.DocOf(posOfLFi)

	if isStart && len(p.queue) > 0 {
		p.queue[len(p.queue)-1].isEnd = true
	}

	entry := queueEntry{
		bwtCh:       bwtCh,
		docNum:      docOfLFi,
		isStart:     isStart,
		lcpWithPrev: lcpWithPrev,
	}

	row := make([]uint64, p.d)
	row[docOfLFi] = uint64(p.n - posOfLFi)

	p.backwardWalk(bwtCh, docOfLFi, lcpWithPrev, row)

	p.queue = append(p.queue, entry)
	p.profiles = append(p.profiles, row)
	p.counterFor(bwtCh)[docOfLFi]++

	p.bwtPos++

	return p.retireEligible()
}

// backwardWalk implements §4.3's "Now walk backward through the queue":
// it both fills in row (the entry being pushed) via Case B1 and amends
// already-queued rows via Case B2, stopping once every document has been
// collected for row and a same-(ch,doc) ancestor has been witnessed.
func (p *processor) backwardWalk(curCh byte, docOfLFi int, lcpSuffix int, row []uint64) {
	if len(p.queue) == 0 {
		return
	}

	docsToCollect := make([]bool, p.d)
	docsToCollect[docOfLFi] = true
	collectedCount := 1
	passedSameDocument := false
	minLCP := lcpSuffix

	for q := len(p.queue) - 1; q >= 0; q-- {
		minLCP = minInt(minLCP, p.queue[q].lcpWithPrev)

		entry := p.queue[q]
		if entry.bwtCh != curCh {
			if collectedCount == p.d && passedSameDocument {
				break
			}
			continue
		}

		if entry.docNum == docOfLFi {
			passedSameDocument = true
		} else {
			if !docsToCollect[entry.docNum] {
				row[entry.docNum] = uint64(minLCP + 1)
				docsToCollect[entry.docNum] = true
				collectedCount++
			}
			if !passedSameDocument && (entry.isStart || entry.isEnd) {
				candidate := uint64(minLCP + 1)
				if candidate > p.profiles[q][docOfLFi] {
					p.profiles[q][docOfLFi] = candidate
				}
			}
		}

		if collectedCount == p.d && passedSameDocument {
			break
		}
	}
}

// retireEligible walks the queue head forward while its (bwt_ch, doc_num)
// pair is witnessed by at least one other live entry, per the counting
// invariant in §4.3 and §9.
func (p *processor) retireEligible() error {
	for len(p.queue) > 0 {
		head := p.queue[0]
		counter := p.counterFor(head.bwtCh)
		if counter[head.docNum] < 2 {
			break
		}
		counter[head.docNum]--

		row := p.profiles[0]
		p.queue = p.queue[1:]
		p.profiles = p.profiles[1:]

		if head.isStart || head.isEnd {
			p.retired = append(p.retired, retiredRow{isStart: head.isStart, isEnd: head.isEnd, row: row})
		} else {
			p.retired = append(p.retired, retiredRow{row: row})
		}
	}
	return nil
}

// Drain flushes every remaining queue entry at the end of construction,
// marking the final entry as a run end first (the outer loop no longer
// has a "next position" to detect the change with).
func (p *processor) Drain() []retiredRow {
	if len(p.queue) > 0 {
		p.queue[len(p.queue)-1].isEnd = true
	}
	for i, e := range p.queue {
		row := p.profiles[i]
		if e.isStart || e.isEnd {
			p.retired = append(p.retired, retiredRow{isStart: e.isStart, isEnd: e.isEnd, row: row})
		} else {
			p.retired = append(p.retired, retiredRow{row: row})
		}
	}
	p.queue = nil
	p.profiles = nil

	out := p.retired
	p.retired = nil
	return out
}

// TakeRetired returns and clears the rows retired so far without
// draining the rest of the queue.
func (p *processor) TakeRetired() []retiredRow {
	out := p.retired
	p.retired = nil
	return out
}

func (p *processor) validate() error {
	if len(p.queue) != len(p.profiles) {
		return fmt.Errorf("%w: queue/profile size mismatch: %d vs %d", dap.ErrInvariantViolation, len(p.queue), len(p.profiles))
	}
	for ch, counts := range p.counters {
		for doc, c := range counts {
			if c < 0 {
				return fmt.Errorf("%w: negative counter for ch=%q doc=%d", dap.ErrInvariantViolation, ch, doc)
			}
		}
	}
	return nil
}
