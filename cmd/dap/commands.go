package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/TimothyStiles/dap/dapbuilder"
	"github.com/TimothyStiles/dap/dapindex"
	"github.com/TimothyStiles/dap/pfpview"
	"github.com/TimothyStiles/dap/refcatalog"
)

/******************************************************************************
File is structured as so:

	Top level commands:
		buildAction
		runAction
		fingerprintAction

	Helper functions:
		readFileList

Each command owns the error-message formatting it needs; main.go keeps
only the flag and command wiring.
******************************************************************************/

// buildAction runs RefCatalog construction over the given file list,
// persists the concatenated reference and its sidecar, then loads the
// PFP artifacts an external parse step produced at the same prefix and
// runs DAPBuilder over them.
func buildAction(c *cli.Context) error {
	filelist := c.String("filelist")
	output := c.String("output")
	window := c.Int("window")

	paths, err := readFileList(filelist)
	if err != nil {
		return err
	}

	log.Printf("concatenating %d reference file(s) into %s.fna", len(paths), output)
	catalog, raw, err := refcatalog.Build(paths)
	if err != nil {
		return err
	}
	if err := os.WriteFile(output+".fna", raw, 0o644); err != nil {
		return fmt.Errorf("writing %s.fna: %w", output, err)
	}
	if err := catalog.WriteSidecar(output + ".fna.catalog"); err != nil {
		return err
	}
	log.Printf("catalog: %d document(s), %d bytes, fingerprint %s", catalog.NumDocs(), catalog.TotalLength(), catalog.Fingerprint())

	view, err := pfpview.Load(output)
	if err != nil {
		return fmt.Errorf("loading PFP artifacts for %s (expected from an external parse step with window %d): %w", output, window, err)
	}
	if view.Window() != window {
		log.Printf("warning: PFP artifacts were built with window %d, not the requested %d", view.Window(), window)
	}

	stats, err := dapbuilder.Build(view, catalog, dapbuilder.Options{OutputPrefix: output})
	if err != nil {
		return err
	}
	log.Printf("built %d run(s) over %d document(s) (%d bytes); wrote %d SDAP row(s), %d EDAP row(s)",
		stats.NumRuns, stats.NumDocs, stats.TextLength, stats.SDAPRowsWritten, stats.EDAPRowsWritten)
	return nil
}

// runAction loads a previously built DAP index and prints the
// interpolated document profile at a single BWT position (§4.4's
// supplemental query, completing the original's stubbed query side).
func runAction(c *cli.Context) error {
	output := c.String("output")
	pos := c.Int("pos")

	catalog, err := refcatalog.LoadSidecar(output + ".fna.catalog")
	if err != nil {
		return err
	}
	idx, err := dapindex.Load(output, catalog)
	if err != nil {
		return err
	}

	row, err := idx.LongestMatch(pos)
	if err != nil {
		return err
	}

	run := idx.RunOf(pos)
	values := make([]string, len(row))
	for i, v := range row {
		values[i] = fmt.Sprintf("%d", v)
	}
	fmt.Fprintf(c.App.Writer, "run=%d pos=%d profile=[%s]\n", run, pos, strings.Join(values, ", "))
	return nil
}

// fingerprintAction computes a content fingerprint over a reference
// file list's concatenation, independent of a full build — useful for
// confirming two file lists describe the same reference set before
// re-running build.
func fingerprintAction(c *cli.Context) error {
	filelist := c.String("filelist")
	algorithm := c.String("algorithm")

	paths, err := readFileList(filelist)
	if err != nil {
		return err
	}

	_, raw, err := refcatalog.Build(paths)
	if err != nil {
		return err
	}

	fp := refcatalog.Fingerprint(raw, refcatalog.ParseAlgorithm(algorithm))
	fmt.Fprintln(c.App.Writer, fp)
	return nil
}

// readFileList reads one reference path per line, skipping blank lines.
func readFileList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file list %s: %w", path, err)
	}
	defer f.Close()

	var paths []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		paths = append(paths, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading file list %s: %w", path, err)
	}
	return paths, nil
}
