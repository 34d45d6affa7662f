// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	cieerrors "github.com/kraklabs/cie-graph/internal/errors"
	"github.com/kraklabs/cie-graph/internal/output"
	"github.com/kraklabs/cie-graph/internal/ui"
	"github.com/kraklabs/cie-graph/pkg/ingestor"
	"github.com/kraklabs/cie-graph/pkg/orchestrator"
)

// runIndex executes the 'index' subcommand: load config, run the
// orchestrator over a repository, and report the result. Grounded on
// cmd/cie's runIndex/runLocalIndex, reshaped around orchestrator.Config
// and orchestrator.Run since this module has no checkpoint/embedding
// pipeline to drive instead.
func runIndex(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	workers := fs.Int("workers", 0, "Parse worker count (0 keeps the config/default value)")
	scheduler := fs.String("scheduler", "", "Scheduler mode: inline, threadpool, process (empty keeps config/default)")
	noIncremental := fs.Bool("no-incremental", false, "Disable the incremental parse cache for this run")
	metricsAddr := fs.String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: cie-graph index [path] [options]

Indexes a repository into a labeled property graph. path defaults to
the current directory.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	repoPath, err := resolveRepoPath(fs.Args())
	if err != nil {
		cieerrors.FatalError(cieerrors.NewInputError("Cannot resolve repository path", err.Error(),
			"Pass an existing directory, e.g. cie-graph index ."), globals.JSON)
	}

	cfg, err := loadProjectConfig(configPath, repoPath)
	if err != nil {
		cieerrors.FatalError(cieerrors.NewConfigError("Cannot load project config", err.Error(),
			"Check the YAML syntax of your .cie-graph.yaml, or omit --config to use defaults", err), globals.JSON)
	}
	if *workers > 0 {
		cfg.ParseWorkers = *workers
	}
	if *scheduler != "" {
		cfg.SchedulerMode = orchestrator.SchedulerMode(*scheduler)
	}
	if *noIncremental {
		cfg.EnableIncrementalCache = false
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = filepath.Join(repoPath, ".cie-graph", "cache")
	}
	if err := cfg.Validate(); err != nil {
		cieerrors.FatalError(cieerrors.NewConfigError("Invalid project config", err.Error(),
			"Fix the reported field in .cie-graph.yaml or the matching CLI flag", err), globals.JSON)
	}

	logger := newLogger(globals)

	if *metricsAddr != "" {
		go serveMetrics(logger, *metricsAddr)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("shutdown.signal", "signal", sig.String())
		cancel()
	}()

	sink := ingestor.NewMemorySink()
	o, err := orchestrator.New(cfg, sink, logger)
	if err != nil {
		cieerrors.FatalError(cieerrors.NewInternalError("Cannot construct orchestrator", err.Error(),
			"This is a bug; please report it", err), globals.JSON)
	}

	if !globals.Quiet {
		ui.Infof("Indexing %s (project %s)...", repoPath, cfg.ProjectName)
	}

	result, err := o.Run(ctx)
	if err != nil {
		cieerrors.FatalError(cieerrors.NewInternalError("Indexing failed", err.Error(), "", err), globals.JSON)
	}

	if globals.JSON {
		if err := output.JSON(result); err != nil {
			cieerrors.FatalError(err, true)
		}
		return
	}
	printIndexResult(result, sink)
}

// resolveRepoPath picks the repository path from positional args,
// defaulting to the current directory, and confirms it exists.
func resolveRepoPath(positional []string) (string, error) {
	path := "."
	if len(positional) > 0 {
		path = positional[0]
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}

// loadProjectConfig reads configPath if set (or <repoPath>/.cie-graph.yaml
// if it exists), overlaying orchestrator.DefaultConfig. RepoPath is always
// set to repoPath; ProjectName is set to repoPath's base name when the
// config left it blank or at the default "project".
func loadProjectConfig(configPath, repoPath string) (orchestrator.Config, error) {
	if configPath == "" {
		candidate := filepath.Join(repoPath, ".cie-graph.yaml")
		if _, err := os.Stat(candidate); err == nil {
			configPath = candidate
		}
	}

	var cfg orchestrator.Config
	if configPath != "" {
		loaded, err := orchestrator.LoadConfig(configPath)
		if err != nil {
			return orchestrator.Config{}, err
		}
		cfg = loaded
	} else {
		cfg = orchestrator.DefaultConfig()
	}

	cfg.RepoPath = repoPath
	if cfg.ProjectName == "" || cfg.ProjectName == "project" {
		cfg.ProjectName = filepath.Base(repoPath)
	}
	return cfg, nil
}

func newLogger(globals GlobalFlags) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case globals.Verbose >= 2:
		level = slog.LevelDebug
	case globals.Quiet:
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func serveMetrics(logger *slog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	logger.Info("metrics.http.start", "addr", addr, "path", "/metrics")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Warn("metrics.http.error", "err", err)
	}
}

func printIndexResult(result *orchestrator.Result, sink *ingestor.MemorySink) {
	fmt.Println()
	ui.Header("Indexing Complete")
	fmt.Printf("%s %s\n", ui.Label("Project:"), result.ProjectName)
	fmt.Printf("%s %s\n", ui.Label("Run ID:"), result.RunID)
	fmt.Printf("%s %s\n", ui.Label("Files Scanned:"), ui.CountText(result.FilesScanned))
	fmt.Printf("%s %s\n", ui.Label("Files Parsed:"), ui.CountText(result.FilesParsed))
	fmt.Printf("%s %s\n", ui.Label("Functions Found:"), ui.CountText(result.FunctionsFound))
	fmt.Printf("%s %s\n", ui.Label("Calls Resolved:"), ui.CountText(result.CallsResolved))
	fmt.Printf("%s %s\n", ui.Label("Calls Unresolved:"), ui.CountText(result.CallsUnresolved))
	fmt.Printf("%s %s\n", ui.Label("Graph Nodes:"), ui.CountText(sink.NodeCount()))
	fmt.Printf("%s %s\n", ui.Label("Graph Edges:"), ui.CountText(sink.EdgeCount()))

	if result.ParseErrors > 0 {
		ui.Warningf("%d file(s) failed to parse", result.ParseErrors)
	}
	if len(result.Cycles) > 0 {
		ui.Warningf("%d import cycle(s) detected", len(result.Cycles))
	}

	fmt.Println("\nTimings:")
	fmt.Printf("  Prescan: %s\n", result.PrescanDuration)
	fmt.Printf("  Parse:   %s\n", result.ParseDuration)
	fmt.Printf("  Resolve: %s\n", result.ResolveDuration)
	fmt.Printf("  Link:    %s\n", result.LinkDuration)
	fmt.Printf("  Total:   %s\n", result.TotalDuration)
	fmt.Println()
}
