// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package orchestrator wires every indexing pass — pre-scan, per-file
// entity extraction, type inference, framework linking, cross-file
// resolution, and cross-file graph analytics — into a single run,
// grounded on pkg/ingestion's LocalPipeline/Run. Config is authored from
// scratch the same way entityextract.FunctionEntity was: LocalPipeline
// references a Config/IngestionConfig pair throughout (NewLocalPipeline,
// Run) that is never defined in this retrieval pack; the feature-flag
// shape below is reconstructed from those usage sites and SPEC_FULL.md's
// feature-flag table rather than copied from a file that doesn't exist.
package orchestrator

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SchedulerMode selects which pkg/scheduler.Scheduler implementation
// drives a run, matching process_manager.py's "inline"/"threaded"/
// "process" mode string.
type SchedulerMode string

const (
	SchedulerInline     SchedulerMode = "inline"
	SchedulerThreadPool SchedulerMode = "threadpool"
	SchedulerProcess    SchedulerMode = "process"
)

// Config holds every feature flag and tunable SPEC_FULL.md names for one
// indexing run. Zero value is invalid; use DefaultConfig and override.
type Config struct {
	ProjectName string `yaml:"project_name"`
	RepoPath    string `yaml:"repo_path"`
	CacheDir    string `yaml:"cache_dir"`

	EnablePreScan          bool `yaml:"enable_prescan"`
	EnableIncrementalCache bool `yaml:"enable_incremental_cache"`
	EnableGitDelta         bool `yaml:"enable_git_delta"`
	EnableFrameworkLinker  bool `yaml:"enable_framework_linker"`
	EnableTailwind         bool `yaml:"enable_tailwind"`
	EnableDjangoTemplates  bool `yaml:"enable_django_templates"`
	EnableTypeInference    bool `yaml:"enable_type_inference"`

	SchedulerMode SchedulerMode `yaml:"scheduler_mode"`
	// StrictIngest inverts the teacher's ParseErrors/ParseErrorRate
	// tolerance model for callers that would rather fail fast than ingest
	// a partial graph: Run returns an error when any file fails (read,
	// parse, or its Module/entity/CONTAINS writes) and on the first failed
	// type-relation or CALLS write. Without it, failed files are counted in
	// Result.ParseErrors, failed type-relation/CALLS writes are logged, and
	// the run continues. Decorator/exception, framework-link, Tailwind and
	// Django-template errors are logged in either mode.
	StrictIngest bool `yaml:"strict_ingest"`

	ParseWorkers     int      `yaml:"parse_workers"`
	MaxFileSizeBytes int64    `yaml:"max_file_size_bytes"`
	CacheTTLSeconds  int      `yaml:"cache_ttl_seconds"`
	ExcludeGlobs     []string `yaml:"exclude_globs"`
}

// DefaultConfig returns the documented defaults for every flag.
func DefaultConfig() Config {
	return Config{
		ProjectName:            "project",
		EnablePreScan:          true,
		EnableIncrementalCache: true,
		EnableGitDelta:         false,
		EnableFrameworkLinker:  true,
		EnableTailwind:         true,
		EnableDjangoTemplates:  true,
		EnableTypeInference:    true,
		SchedulerMode:          SchedulerThreadPool,
		StrictIngest:           false,
		ParseWorkers:           4,
		MaxFileSizeBytes:       2 << 20, // 2 MiB
		CacheTTLSeconds:        24 * 60 * 60,
		ExcludeGlobs: []string{
			"**/.git/**", "**/node_modules/**", "**/vendor/**",
			"**/__pycache__/**", "**/dist/**", "**/build/**",
		},
	}
}

// LoadConfig reads a YAML config file at path and overlays it onto
// DefaultConfig, the way a `.cie-graph.yaml` project file is expected to
// sit alongside the repo it indexes.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("orchestrator: read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("orchestrator: parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that required fields are set and numeric tunables are
// sane, returning a descriptive error otherwise.
func (c Config) Validate() error {
	if c.ProjectName == "" {
		return fmt.Errorf("orchestrator: project_name is required")
	}
	if c.RepoPath == "" {
		return fmt.Errorf("orchestrator: repo_path is required")
	}
	if c.ParseWorkers <= 0 {
		return fmt.Errorf("orchestrator: parse_workers must be positive, got %d", c.ParseWorkers)
	}
	switch c.SchedulerMode {
	case SchedulerInline, SchedulerThreadPool, SchedulerProcess:
	default:
		return fmt.Errorf("orchestrator: unknown scheduler_mode %q", c.SchedulerMode)
	}
	return nil
}
