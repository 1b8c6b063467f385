package dapbuilder

import (
	"fmt"

	"github.com/TimothyStiles/dap/dap"
	"github.com/TimothyStiles/dap/pfpview"
)

// emitted is one row of the merged stream this package produces: a
// single BWT-of-T position, strictly in suffix-array order, together
// with the LCP it shares with the position emitted immediately before
// it. isRunStart is set on the first position of every maximal run of
// equal bwtCh, which is all the downstream profile bookkeeping needs
// to detect run boundaries (a run's end is inferred one position
// later, by the merger's caller).
type emitted struct {
	bwtCh       byte
	ssa         int
	lcpWithPrev int
	isRunStart  bool
}

// merger walks the dictionary suffix array of a pfpview.View and merges
// phrase occurrences sharing a common text suffix, producing the
// `emitted` stream consumed by processor.ProcessPosition. It never
// materializes the suffix array or LCP array of T itself: every
// position is derived from the dictionary's own SA/LCP plus the
// parse's inverted list and pos_T/s_lcp_T arrays.
type merger struct {
	view pfpview.View
	w    int

	saPos  int // next index into the dictionary SA to consider
	prev   *phraseSuffix
	prevK  int
	havePrev bool
	lastCh byte
}

func newMerger(view pfpview.View) *merger {
	return &merger{view: view, w: view.Window()}
}

// phraseSuffixAt builds the phraseSuffix cursor for dictionary SA
// index i. A dictionary suffix is only a valid BWT-of-T context when
// it extends at least w characters past its phrase boundary — shorter
// suffixes are the w-1 character overlap padding PFP prepends to every
// phrase and never correspond to a real occurrence.
func (m *merger) phraseSuffixAt(i int) phraseSuffix {
	sn := m.view.SaD(i)
	phrase := m.view.RankBD(sn+1) - 1
	nextBoundary := m.view.SelectBD(phrase + 2)
	suffixLength := nextBoundary - sn

	ps := phraseSuffix{i: i, phrase: phrase, suffixLength: suffixLength, sn: sn}
	if sn < m.w || suffixLength < m.w {
		return ps
	}
	ps.bwtChar = m.view.DictAt(sn - 1)
	ps.valid = true
	return ps
}

// sameSuffix reports whether dictionary SA entries i and i+1 share a
// text suffix long enough that both represent the same BWT-of-T
// context, using the dictionary's own LCP array rather than comparing
// bytes directly.
func (m *merger) sameSuffix(a, b phraseSuffix, lcp int) bool {
	return lcp >= minInt(a.suffixLength, b.suffixLength)
}

// occBlock returns the [start, end) range in the inverted list holding
// phrase p's occurrences.
func (m *merger) occBlock(phrase int) (int, int) {
	return m.view.SelectIlistS(phrase), m.view.SelectIlistS(phrase + 1)
}

// Run drives the full merge, invoking emit for every position in
// ascending BWT-of-T (suffix-array) order.
func (m *merger) Run(emit func(emitted) error) error {
	n := m.view.SaDLen()
	for i := 0; i < n; {
		group := []phraseSuffix{m.phraseSuffixAt(i)}
		j := i + 1
		for j < n {
			next := m.phraseSuffixAt(j)
			if !m.sameSuffix(group[len(group)-1], next, m.view.LcpD(j)) {
				break
			}
			group = append(group, next)
			j++
		}

		if err := m.emitGroup(group, emit); err != nil {
			return err
		}
		i = j
	}
	return nil
}

// emitGroup merges the occurrence lists of every valid phraseSuffix in
// a same_suffix group by ascending ilist value (§4.3's "merge the
// group's occurrence lists") and emits one row per occurrence.
func (m *merger) emitGroup(group []phraseSuffix, emit func(emitted) error) error {
	merge := newOccMerger(func(c *occCursor) int {
		return m.view.IlistAt(c.ilistI)
	})

	hasValid := false
	for gi := range group {
		ps := group[gi]
		if !ps.valid {
			continue
		}
		hasValid = true
		start, end := m.occBlock(ps.phrase)
		merge.add(&occCursor{suffix: &group[gi], ilistI: start, end: end})
	}
	if !hasValid {
		return nil
	}

	for {
		occ := merge.next()
		if occ == nil {
			break
		}
		ps := occ.suffix
		k := m.view.IlistAt(occ.ilistI)
		textEnd := m.view.PosT(k)
		modulus := m.view.TextLength() - m.w + 1
		ssa := mod(textEnd-ps.suffixLength, modulus)

		// lcp_suffix is the measured dictionary LCP between the two
		// specific suffixes at prev.i and ps.i, read straight off lcpD
		// via range-min — not a function of their nominal suffix_length
		// fields. Only when that measured LCP reaches all the way to
		// curr's phrase boundary, and both suffixes have the same
		// suffix_length, can the true match extend past the
		// w-character dictionary overlap; in that case the extra
		// length comes from s_lcp_T. Otherwise lcp_suffix already is
		// the true LCP, since the dictionary suffixes diverge strictly
		// before either boundary.
		lcp := 0
		isStart := true
		if m.havePrev {
			isStart = m.lastCh != ps.bwtChar
			var lcpSuffix int
			if m.prev.i == ps.i {
				// Same dictionary SA index: both occurrences share the
				// identical suffix context, so the measured LCP is at
				// least its full suffix_length (an empty RMQ range has
				// no smaller bound to report).
				lcpSuffix = ps.suffixLength
			} else {
				lo, hi := m.prev.i, ps.i
				if lo > hi {
					lo, hi = hi, lo
				}
				lcpSuffix = m.view.RMQLcpD(lo+1, hi)
			}
			lcp = lcpSuffix
			if lcpSuffix >= ps.suffixLength && ps.suffixLength == m.prev.suffixLength {
				lo, hi := m.prevK, k
				if lo > hi {
					lo, hi = hi, lo
				}
				if hi > lo {
					minSLcpT := m.view.RMQSLcpT(lo+1, hi)
					if minSLcpT < m.w {
						return fmt.Errorf("%w: s_lcp_T range-min %d below window %d between ilist positions %d and %d", dap.ErrInvariantViolation, minSLcpT, m.w, lo, hi)
					}
					lcp = ps.suffixLength + (minSLcpT - m.w)
				} else {
					lcp = ps.suffixLength
				}
			}
		}

		if err := emit(emitted{bwtCh: ps.bwtChar, ssa: ssa, lcpWithPrev: lcp, isRunStart: isStart}); err != nil {
			return err
		}

		m.prev = ps
		m.prevK = k
		m.havePrev = true
		m.lastCh = ps.bwtChar
	}
	return nil
}
