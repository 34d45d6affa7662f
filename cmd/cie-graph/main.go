// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Command cie-graph indexes a repository into a labeled property graph of
// functions, types, calls, and framework-specific relationships.
//
// Usage:
//
//	cie-graph index [path]        Index a repository
//	cie-graph version             Show version and exit
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/kraklabs/cie-graph/internal/ui"
)

// Version information, set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GlobalFlags carries the flags every subcommand respects, referenced
// throughout cmd/cie (progress.go's NewProgressConfig) but never defined
// in this retrieval pack — authored here from those usage sites.
type GlobalFlags struct {
	JSON    bool
	Quiet   bool
	NoColor bool
	Verbose int
}

func main() {
	var (
		showVersion bool
		jsonOut     bool
		quiet       bool
		noColor     bool
		verbose     int
		configPath  string
	)
	pflag.BoolVar(&showVersion, "version", false, "Show version and exit")
	pflag.BoolVar(&jsonOut, "json", false, "Machine-readable JSON output")
	pflag.BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")
	pflag.BoolVar(&noColor, "no-color", false, "Disable colored output")
	pflag.CountVarP(&verbose, "verbose", "v", "Increase verbosity (repeatable)")
	pflag.StringVar(&configPath, "config", "", "Path to project config YAML (default: .cie-graph.yaml in the repository path)")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, `cie-graph - code graph indexer

Usage:
  cie-graph <command> [options]

Commands:
  index [path]   Index a repository (defaults to the current directory)
  version        Show version and exit

Global Options:
`)
		pflag.PrintDefaults()
	}

	pflag.Parse()

	globals := GlobalFlags{JSON: jsonOut, Quiet: quiet || jsonOut, NoColor: noColor, Verbose: verbose}
	ui.InitColors(globals.NoColor)

	if showVersion {
		printVersion()
		os.Exit(0)
	}

	args := pflag.Args()
	if len(args) == 0 {
		pflag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "index":
		runIndex(cmdArgs, configPath, globals)
	case "version":
		printVersion()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		pflag.Usage()
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("cie-graph version %s\n", version)
	fmt.Printf("commit: %s\n", commit)
	fmt.Printf("built: %s\n", date)
}
