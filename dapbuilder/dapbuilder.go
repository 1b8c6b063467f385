package dapbuilder

import (
	"fmt"

	"github.com/TimothyStiles/dap/dap"
	"github.com/TimothyStiles/dap/pfpview"
	"github.com/TimothyStiles/dap/refcatalog"
)

// Options configures a Build call. There is currently only one knob:
// the output prefix under which the seven streams of §6.2 are created.
type Options struct {
	OutputPrefix string
}

// Stats summarizes a completed build, for logging and tests.
type Stats struct {
	NumRuns       int
	NumDocs       int
	TextLength    int
	SDAPRowsWritten int
	EDAPRowsWritten int
}

// Build drives the full streaming DAP construction described in §4.3:
// it merges the PFP view's phrase occurrences in suffix-array order via
// merger, feeds each position through processor's sliding LCP queue and
// backward walk, and writes the seven output streams as rows retire.
// It makes a single pass over the merged stream and holds only the
// queue's live window in memory; it never seeks on any writer.
func Build(view pfpview.View, catalog *refcatalog.Catalog, opts Options) (Stats, error) {
	if view == nil || catalog == nil {
		return Stats{}, fmt.Errorf("%w: view and catalog are required", dap.ErrInputMissing)
	}
	if opts.OutputPrefix == "" {
		return Stats{}, fmt.Errorf("%w: output prefix is required", dap.ErrInputMissing)
	}
	if catalog.TotalLength() != view.TextLength() {
		return Stats{}, fmt.Errorf("%w: catalog total length %d != PFP text length %d", dap.ErrInputShape, catalog.TotalLength(), view.TextLength())
	}

	out, err := createOutputs(opts.OutputPrefix, catalog.NumDocs())
	if err != nil {
		return Stats{}, err
	}

	proc := newProcessor(catalog)
	m := newMerger(view)

	var stats Stats
	stats.NumDocs = catalog.NumDocs()
	stats.TextLength = catalog.TotalLength()

	var runHead byte
	runLen := 0
	haveRun := false
	lastSSA := 0

	// flushRun closes out the run in progress: it writes the
	// (head, length) record and, now that the run's index is known,
	// the ESA sample for its last position.
	flushRun := func() error {
		if !haveRun {
			return nil
		}
		if err := out.writeRun(runHead, runLen); err != nil {
			return err
		}
		return out.writeESA(out.numRuns-1, lastSSA)
	}

	runErr := m.Run(func(e emitted) error {
		if e.isRunStart {
			if err := flushRun(); err != nil {
				return err
			}
			runHead = e.bwtCh
			runLen = 0
			haveRun = true
			if err := out.writeSSA(out.numRuns, e.ssa); err != nil {
				return err
			}
		}
		runLen++
		lastSSA = e.ssa

		if err := out.writeLCP(e.lcpWithPrev); err != nil {
			return err
		}

		if err := proc.ProcessPosition(e.bwtCh, e.ssa, e.lcpWithPrev, e.isRunStart); err != nil {
			return err
		}
		return flushRetired(out, proc, &stats)
	})
	if runErr != nil {
		out.flushAndClose()
		return Stats{}, runErr
	}

	if err := flushRun(); err != nil {
		out.flushAndClose()
		return Stats{}, err
	}

	for _, r := range proc.Drain() {
		if err := writeRetired(out, r, &stats); err != nil {
			out.flushAndClose()
			return Stats{}, err
		}
	}

	if err := proc.validate(); err != nil {
		out.flushAndClose()
		return Stats{}, err
	}

	stats.NumRuns = out.numRuns
	if err := out.flushAndClose(); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

func flushRetired(out *outputs, proc *processor, stats *Stats) error {
	for _, r := range proc.TakeRetired() {
		if err := writeRetired(out, r, stats); err != nil {
			return err
		}
	}
	return nil
}

func writeRetired(out *outputs, r retiredRow, stats *Stats) error {
	if r.isStart {
		if err := out.writeSDAPRow(r.row); err != nil {
			return err
		}
		stats.SDAPRowsWritten++
	}
	if r.isEnd {
		if err := out.writeEDAPRow(r.row); err != nil {
			return err
		}
		stats.EDAPRowsWritten++
	}
	return nil
}
