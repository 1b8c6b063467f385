package dapbuilder

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/TimothyStiles/dap/dap"
)

// outputs bundles the seven append-only streams DAPBuilder writes, one
// per file named in §6.2. Every writer is opened once and only ever
// appended to — DAPBuilder never seeks.
type outputs struct {
	heads *bufio.Writer
	lens  *bufio.Writer
	lcp   *bufio.Writer
	ssa   *bufio.Writer
	esa   *bufio.Writer
	sdap  *bufio.Writer
	edap  *bufio.Writer

	closers []io.Closer

	numRuns int
}

func createOutputs(prefix string, numDocs int) (*outputs, error) {
	o := &outputs{}
	open := func(suffix string) (*bufio.Writer, error) {
		f, err := os.Create(prefix + suffix)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", dap.ErrIoFailure, err)
		}
		o.closers = append(o.closers, f)
		return bufio.NewWriter(f), nil
	}

	var err error
	if o.heads, err = open(".bwt.heads"); err != nil {
		return nil, err
	}
	if o.lens, err = open(".bwt.len"); err != nil {
		return nil, err
	}
	if o.lcp, err = open(".lcp"); err != nil {
		return nil, err
	}
	if o.ssa, err = open(".ssa"); err != nil {
		return nil, err
	}
	if o.esa, err = open(".esa"); err != nil {
		return nil, err
	}
	if o.sdap, err = open(".sdap"); err != nil {
		return nil, err
	}
	if o.edap, err = open(".edap"); err != nil {
		return nil, err
	}

	header := make([]byte, 8)
	binary.LittleEndian.PutUint64(header, uint64(numDocs))
	if _, err := o.sdap.Write(header); err != nil {
		return nil, fmt.Errorf("%w: %s", dap.ErrIoFailure, err)
	}
	if _, err := o.edap.Write(header); err != nil {
		return nil, fmt.Errorf("%w: %s", dap.ErrIoFailure, err)
	}

	return o, nil
}

func putUintN(buf []byte, v uint64, width int) {
	for i := 0; i < width; i++ {
		buf[i] = byte(v)
		v >>= 8
	}
}

func (o *outputs) writeRun(head byte, length int) error {
	if _, err := o.heads.Write([]byte{head}); err != nil {
		return fmt.Errorf("%w: %s", dap.ErrIoFailure, err)
	}
	buf := make([]byte, BwtLenBytes)
	putUintN(buf, uint64(length), BwtLenBytes)
	if _, err := o.lens.Write(buf); err != nil {
		return fmt.Errorf("%w: %s", dap.ErrIoFailure, err)
	}
	o.numRuns++
	return nil
}

func (o *outputs) writeLCP(v int) error {
	buf := make([]byte, ThrBytes)
	putUintN(buf, uint64(v), ThrBytes)
	if _, err := o.lcp.Write(buf); err != nil {
		return fmt.Errorf("%w: %s", dap.ErrIoFailure, err)
	}
	return nil
}

func (o *outputs) writeSample(w *bufio.Writer, pos, saValue int) error {
	buf := make([]byte, SsaBytes*2)
	putUintN(buf[:SsaBytes], uint64(pos), SsaBytes)
	putUintN(buf[SsaBytes:], uint64(saValue), SsaBytes)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("%w: %s", dap.ErrIoFailure, err)
	}
	return nil
}

func (o *outputs) writeSSA(pos, saValue int) error { return o.writeSample(o.ssa, pos, saValue) }
func (o *outputs) writeESA(pos, saValue int) error { return o.writeSample(o.esa, pos, saValue) }

func (o *outputs) writeProfileRow(w *bufio.Writer, row []uint64) error {
	buf := make([]byte, 8*len(row))
	for i, v := range row {
		binary.LittleEndian.PutUint64(buf[i*8:], v)
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("%w: %s", dap.ErrIoFailure, err)
	}
	return nil
}

func (o *outputs) writeSDAPRow(row []uint64) error { return o.writeProfileRow(o.sdap, row) }
func (o *outputs) writeEDAPRow(row []uint64) error { return o.writeProfileRow(o.edap, row) }

func (o *outputs) flushAndClose() error {
	writers := []*bufio.Writer{o.heads, o.lens, o.lcp, o.ssa, o.esa, o.sdap, o.edap}
	for _, w := range writers {
		if err := w.Flush(); err != nil {
			return fmt.Errorf("%w: %s", dap.ErrIoFailure, err)
		}
	}
	for _, c := range o.closers {
		if err := c.Close(); err != nil {
			return fmt.Errorf("%w: %s", dap.ErrIoFailure, err)
		}
	}
	return nil
}
