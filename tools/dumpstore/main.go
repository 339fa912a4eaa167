package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"reelfeed/services/library"
)

// dumpstore prints the persisted library document after normalization and
// migration, followed by its stats. Useful for inspecting snapshots from
// older versions.
func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: dumpstore <data-dir>")
		os.Exit(1)
	}

	svc, err := library.NewService(flag.Arg(0))
	if err != nil {
		panic(err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(svc.Load()); err != nil {
		panic(err)
	}
	if err := enc.Encode(svc.Stats()); err != nil {
		panic(err)
	}
}
