package dapbuilder

import "container/heap"

// occCursor walks one phrase's occurrence block within the inverted
// list, in increasing ilist order. Several cursors — one per
// phraseSuffix in a same_suffix group — are merged by the priority
// queue below so that occurrences surface in the global order their
// BWT-of-T positions would have, without ever sorting the full BWT.
type occCursor struct {
	suffix *phraseSuffix
	ilistI int
	end    int
}

func (c *occCursor) exhausted() bool { return c.ilistI >= c.end }

// cursorHeap is a container/heap min-heap over occCursors, ordered by
// the ilist value each currently points at (the parse-side BWT
// position), which is what determines emission order.
type cursorHeap struct {
	cursors []*occCursor
	keyOf   func(*occCursor) int
}

func (h cursorHeap) Len() int { return len(h.cursors) }
func (h cursorHeap) Less(i, j int) bool {
	return h.keyOf(h.cursors[i]) < h.keyOf(h.cursors[j])
}
func (h cursorHeap) Swap(i, j int) { h.cursors[i], h.cursors[j] = h.cursors[j], h.cursors[i] }

func (h *cursorHeap) Push(x interface{}) {
	h.cursors = append(h.cursors, x.(*occCursor))
}

func (h *cursorHeap) Pop() interface{} {
	old := h.cursors
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	h.cursors = old[:n-1]
	return item
}

// occMerger merges the occurrence blocks of every phraseSuffix in a
// same_suffix group, yielding occCursors in ascending ilist order one
// at a time via next. Exhausted cursors are dropped automatically.
type occMerger struct {
	h *cursorHeap
}

func newOccMerger(keyOf func(*occCursor) int) *occMerger {
	h := &cursorHeap{keyOf: keyOf}
	heap.Init(h)
	return &occMerger{h: h}
}

func (m *occMerger) add(c *occCursor) {
	if !c.exhausted() {
		heap.Push(m.h, c)
	}
}

// next pops the cursor with the smallest current key, advances it, and
// re-inserts it into the heap if it still has occurrences left. It
// returns nil once every cursor is exhausted.
func (m *occMerger) next() *occCursor {
	if m.h.Len() == 0 {
		return nil
	}
	c := heap.Pop(m.h).(*occCursor)
	out := &occCursor{suffix: c.suffix, ilistI: c.ilistI, end: c.end}
	c.ilistI++
	if !c.exhausted() {
		heap.Push(m.h, c)
	}
	return out
}
