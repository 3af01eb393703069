// Command rok4ctl is a single-purpose inspection/debug CLI for pyramid
// tile files: one subcommand per narrow operation, stdlib flag, no
// framework.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "dump":
		err = runDump(os.Args[2:])
	case "check":
		err = runCheck(os.Args[2:])
	case "nodata":
		err = runNodata(os.Args[2:])
	case "strip-white":
		err = runStrip(os.Args[2:], 0xFF)
	case "strip-ff":
		err = runStrip(os.Args[2:], 0xFF)
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "rok4ctl %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: rok4ctl <command> [flags]

Commands:
  dump         decode a single tile file and re-encode it for inspection
  check        validate a slab file's tile-index structure (spec.md §8)
  nodata       report whether a tile file's samples are all no-data
  strip-white  replace all-white (0xFF per channel) pixels with no-data
  strip-ff     alias for strip-white (0xFF border convention)
`)
}
