package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

/******************************************************************************
This file is the entry point for the dap command line utility. It also
acts as a general template outlining everything available to the user.

Argparsing and the app definition go through
"github.com/urfave/cli/v2"; see https://github.com/urfave/cli for docs.

The app is defined via the &cli.App{} struct, given Name, Usage, and a
Commands slice, each command carrying its own Flags and Action. This
keeps main.go a thin template and commands.go doing the actual work.
******************************************************************************/

// main is the entry point; separated from run for testing.
func main() {
	run(os.Args)
}

// run is separated from main for debugging's sake.
func run(args []string) {
	app := application()
	if err := app.Run(args); err != nil {
		log.Fatal(err)
	}
}

// application defines the dap CLI: its global flags and its Commands.
func application() *cli.App {
	return &cli.App{
		Name:  "dap",
		Usage: "Build and query Document Array Profiles over multi-document references.",

		Commands: []*cli.Command{
			{
				Name:  "build",
				Usage: "Concatenate a reference file list into a catalog and construct a DAP index over it.",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "filelist", Aliases: []string{"f"}, Required: true, Usage: "Path to a text file listing one reference path per line."},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: "Output prefix for the .fna, catalog sidecar, and DAP artifacts."},
					&cli.IntFlag{Name: "window", Aliases: []string{"w"}, Value: 10, Usage: "PFP window size used by the external parse step."},
				},
				Action: buildAction,
			},
			{
				Name:  "run",
				Usage: "Load a DAP index and print the interpolated document profile at a BWT position.",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: "Output prefix a previous build wrote artifacts under."},
					&cli.IntFlag{Name: "pos", Aliases: []string{"p"}, Required: true, Usage: "BWT position to query."},
				},
				Action: runAction,
			},
			{
				Name:  "fingerprint",
				Usage: "Compute a content fingerprint for a reference file list without running a full build.",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "filelist", Aliases: []string{"f"}, Required: true, Usage: "Path to a text file listing one reference path per line."},
					&cli.StringFlag{Name: "algorithm", Aliases: []string{"a"}, Value: "BLAKE3", Usage: "Fingerprint algorithm: MD5, SHA256, SHA512, RIPEMD160, SHA3_256, BLAKE2b_256, BLAKE2s_256, BLAKE3."},
				},
				Action: fingerprintAction,
			},
		},
	}
}
