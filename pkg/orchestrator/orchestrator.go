// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package orchestrator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/kraklabs/cie-graph/pkg/astcache"
	"github.com/kraklabs/cie-graph/pkg/cache"
	"github.com/kraklabs/cie-graph/pkg/crossfile"
	"github.com/kraklabs/cie-graph/pkg/djangotmpl"
	"github.com/kraklabs/cie-graph/pkg/entityextract"
	"github.com/kraklabs/cie-graph/pkg/frameworklink"
	"github.com/kraklabs/cie-graph/pkg/graphmodel"
	"github.com/kraklabs/cie-graph/pkg/ingestor"
	"github.com/kraklabs/cie-graph/pkg/metrics"
	"github.com/kraklabs/cie-graph/pkg/prescan"
	"github.com/kraklabs/cie-graph/pkg/resolve"
	"github.com/kraklabs/cie-graph/pkg/scheduler"
	"github.com/kraklabs/cie-graph/pkg/tailwind"
	"github.com/kraklabs/cie-graph/pkg/typeinfer"
)

// Result summarizes one indexing run, the way pkg/ingestion's
// IngestionResult does for LocalPipeline.Run, reshaped around this
// module's own graph-construction counters instead of the teacher's
// embedding/storage-write counters.
type Result struct {
	ProjectName string
	RunID       string

	FilesScanned    int
	FilesParsed     int
	ParseErrors     int
	FunctionsFound  int
	TypesFound      int
	CallsResolved   int
	CallsUnresolved int
	Cycles          [][]string

	PrescanDuration time.Duration
	ParseDuration   time.Duration
	ResolveDuration time.Duration
	LinkDuration    time.Duration
	TotalDuration   time.Duration
}

// Orchestrator wires PreScanner, per-file entity extraction, framework
// linking, and the cross-file resolver passes into one run, grounded on
// pkg/ingestion/local_pipeline.go's LocalPipeline.
type Orchestrator struct {
	Config  Config
	Sink    ingestor.Sink
	Logger  *slog.Logger
	Metrics *metrics.Pipeline

	ctx *RunContext
}

// New constructs an Orchestrator. logger defaults to slog.Default() when
// nil, mirroring NewLocalPipeline's nil-logger fallback.
func New(cfg Config, sink ingestor.Sink, logger *slog.Logger) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	m := &metrics.Pipeline{}
	m.Init()

	return &Orchestrator{
		Config:  cfg,
		Sink:    sink,
		Logger:  logger,
		Metrics: m,
		ctx:     NewRunContext(time.Duration(cfg.CacheTTLSeconds) * time.Second),
	}, nil
}

// generateRunID deterministically derives a run ID from the project name
// and start time rounded to the second, ported unchanged from
// LocalPipeline.generateRunID.
func generateRunID(projectName string, startTime time.Time) string {
	rounded := startTime.Truncate(time.Second)
	base := fmt.Sprintf("run-%s-%d", projectName, rounded.Unix())
	hash := sha256.Sum256([]byte(base))
	return hex.EncodeToString(hash[:16])
}

type discoveredFile struct {
	path     string // relative to RepoPath
	fullPath string
	language astcache.Language
}

// Run executes PreScan -> parse+extract+link -> resolve -> cross-file
// analytics, in that order, ensuring one Module node per file and
// CONTAINS edges along the way.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	runID := generateRunID(o.Config.ProjectName, start)
	o.Logger.Info("local.indexing.start", "project", o.Config.ProjectName, "run_id", runID)

	var incremental *cache.Incremental
	if o.Config.EnableIncrementalCache {
		var err error
		incremental, err = cache.NewIncremental(o.Config.CacheDir, time.Duration(o.Config.CacheTTLSeconds)*time.Second)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: open incremental cache: %w", err)
		}
	}

	var prescanIndex *prescan.Index
	if o.Config.EnablePreScan {
		prescanStart := time.Now()
		o.Logger.Info("local.indexing.step.prescan", "run_id", runID)
		scanner := prescan.NewScanner(o.Config.RepoPath, o.Config.ProjectName, o.shouldSkip)
		idx, err := scanner.ScanRepo()
		if err != nil {
			o.Logger.Warn("local.indexing.prescan.error", "err", err)
		}
		prescanIndex = idx
		o.record(o.Metrics.PrescanDuration, time.Since(prescanStart))
	}

	o.Logger.Info("local.indexing.step.discover_files", "run_id", runID)
	files, err := o.discoverFiles()
	if err != nil {
		return nil, fmt.Errorf("orchestrator: discover files: %w", err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].path < files[j].path })
	o.Metrics.FilesScanned.Add(float64(len(files)))

	o.Logger.Info("local.indexing.step.parse_files", "run_id", runID, "file_count", len(files))
	parseStart := time.Now()

	var unresolvedCalls []entityextract.UnresolvedCall
	var allFunctions []functionWithLang
	var parseErrors int

	jobs := make([]scheduler.Job, 0, len(files))
	fileByPath := make(map[string]discoveredFile, len(files))
	for _, f := range files {
		f := f
		fileByPath[f.path] = f
		jobs = append(jobs, scheduler.Job{
			FilePath: f.path,
			Language: string(f.language),
			ParseFn: func(filePath, language string) (any, error) {
				return o.parseFile(ctx, fileByPath[filePath], incremental)
			},
		})
	}

	sched := o.newScheduler()
	batch := sched.RunBatch(jobs)
	for path, result := range batch.Results {
		pr, ok := result.(*entityextract.ParseResult)
		if !ok || pr == nil {
			continue
		}
		o.ctx.Files.Set(pr.ModuleQN, path)
		unresolvedCalls = append(unresolvedCalls, pr.UnresolvedCalls...)
		for _, fn := range pr.Functions {
			allFunctions = append(allFunctions, functionWithLang{fn: fn, language: fileByPath[path].language, moduleQN: pr.ModuleQN})
		}
		o.Metrics.FunctionsFound.Add(float64(len(pr.Functions)))
		o.Metrics.TypesFound.Add(float64(len(pr.Types)))
	}
	parseErrors = batch.Failed
	o.Metrics.ParseErrors.Add(float64(parseErrors))
	o.record(o.Metrics.ParseDuration, time.Since(parseStart))

	if o.Config.StrictIngest && parseErrors > 0 {
		return nil, fmt.Errorf("orchestrator: %d file(s) failed to parse under strict_ingest", parseErrors)
	}

	o.Logger.Info("local.indexing.parse.complete",
		"files_parsed", batch.Completed, "parse_errors", parseErrors,
		"functions", len(allFunctions), "duration_ms", time.Since(parseStart).Milliseconds())

	resolveStart := time.Now()
	resolverPass := resolve.NewResolverPass(o.ctx.Functions, o.ctx.Simple, o.ctx.Imports, prescanIndex)
	callsEdges := resolverPass.Resolve(unresolvedCalls)
	o.Metrics.CallsResolved.Add(float64(len(callsEdges)))
	o.Metrics.CallsUnresolved.Add(float64(len(unresolvedCalls) - len(callsEdges)))

	typeRelation := resolve.NewTypeRelationPass(o.Sink)

	for _, entry := range allFunctions {
		label := graphmodel.LabelFunction
		if entry.fn.ReceiverType != "" {
			label = graphmodel.LabelMethod
		}
		if err := typeRelation.Process(ctx, entry.fn, label); err != nil {
			if o.Config.StrictIngest {
				return nil, fmt.Errorf("orchestrator: type relation for %s: %w", entry.fn.QualifiedName, err)
			}
			o.Logger.Warn("local.indexing.type_relation.error", "fn", entry.fn.QualifiedName, "err", err)
		}
		if o.Config.EnableTypeInference {
			o.registerSignature(entry)
		}
	}

	for _, edge := range callsEdges {
		if err := o.Sink.EnsureRelationship(ctx,
			graphmodel.NewRef(graphmodel.LabelFunction, edge.CallerQN), graphmodel.RelCalls,
			graphmodel.NewRef(graphmodel.LabelFunction, edge.CalleeQN), nil); err != nil {
			if o.Config.StrictIngest {
				return nil, fmt.Errorf("orchestrator: ingest call edge: %w", err)
			}
			o.Logger.Warn("local.indexing.call_edge.error", "caller", edge.CallerQN, "callee", edge.CalleeQN, "err", err)
		}
	}
	o.record(o.Metrics.ResolveDuration, time.Since(resolveStart))

	var cycles [][]string
	if len(o.ctx.ImportMapping) > 0 {
		resolver := crossfile.NewResolver(o.ctx.ImportMapping)
		stats := resolver.BuildIndex()
		cycles = stats.Cycles
		if len(cycles) > 0 {
			o.Logger.Warn("local.indexing.cross_file.cycles_detected", "count", len(cycles))
		}
	}

	total := time.Since(start)
	o.record(o.Metrics.TotalDuration, total)

	result := &Result{
		ProjectName:     o.Config.ProjectName,
		RunID:           runID,
		FilesScanned:    len(files),
		FilesParsed:     batch.Completed,
		ParseErrors:     parseErrors,
		FunctionsFound:  len(allFunctions),
		CallsResolved:   len(callsEdges),
		CallsUnresolved: len(unresolvedCalls) - len(callsEdges),
		Cycles:          cycles,
		ParseDuration:   time.Since(parseStart),
		TotalDuration:   total,
	}
	o.Logger.Info("local.indexing.complete",
		"run_id", runID, "files", result.FilesParsed, "functions", result.FunctionsFound,
		"calls_resolved", result.CallsResolved, "total_duration_ms", total.Milliseconds())
	return result, nil
}

type functionWithLang struct {
	fn       entityextract.FunctionEntity
	language astcache.Language
	moduleQN string
}

func (o *Orchestrator) record(h interface{ Observe(float64) }, d time.Duration) {
	h.Observe(d.Seconds())
}

// registerSignature feeds one function's discovered signature into its
// language's shared typeinfer.Registry, so later type-inference lookups
// (e.g. a call site inferring a callee's return type) see every function
// discovered so far in the run rather than only the current file.
func (o *Orchestrator) registerSignature(entry functionWithLang) {
	eng := o.ctx.EngineFor(string(entry.language))

	params := make(map[string]typeinfer.Result, len(entry.fn.Params))
	for _, p := range entry.fn.Params {
		if p.Type == "" {
			continue
		}
		params[p.Name] = typeinfer.Result{TypeString: p.Type, Confidence: 1.0, Source: typeinfer.SourceAnnotation, Language: string(entry.language)}
	}
	var returnType *typeinfer.Result
	if entry.fn.ReturnType != "" {
		returnType = &typeinfer.Result{TypeString: entry.fn.ReturnType, Confidence: 1.0, Source: typeinfer.SourceAnnotation, Language: string(entry.language)}
	}

	eng.Registry.RegisterFunction(entry.fn.QualifiedName, typeinfer.FunctionSignature{
		Name:       entry.fn.Name,
		Parameters: params,
		ReturnType: returnType,
		FilePath:   entry.fn.FilePath,
		Line:       entry.fn.StartLine,
		Module:     entry.moduleQN,
		Language:   string(entry.language),
		IsMethod:   entry.fn.ReceiverType != "",
		ClassName:  entry.fn.ReceiverType,
	})
}

func (o *Orchestrator) shouldSkip(path string) bool {
	rel, err := filepath.Rel(o.Config.RepoPath, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	for _, glob := range o.Config.ExcludeGlobs {
		if ok, _ := doublestar.Match(glob, rel); ok {
			return true
		}
	}
	return false
}

func (o *Orchestrator) discoverFiles() ([]discoveredFile, error) {
	var out []discoveredFile
	err := filepath.WalkDir(o.Config.RepoPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if o.shouldSkip(path) {
			return nil
		}
		lang := languageForExt(filepath.Ext(path))
		if lang == "" {
			return nil
		}
		info, err := d.Info()
		if err == nil && o.Config.MaxFileSizeBytes > 0 && info.Size() > o.Config.MaxFileSizeBytes {
			return nil
		}
		rel, err := filepath.Rel(o.Config.RepoPath, path)
		if err != nil {
			rel = path
		}
		out = append(out, discoveredFile{path: filepath.ToSlash(rel), fullPath: path, language: lang})
		return nil
	})
	return out, err
}

func languageForExt(ext string) astcache.Language {
	switch strings.ToLower(ext) {
	case ".go":
		return astcache.LangGo
	case ".py":
		return astcache.LangPython
	case ".js", ".jsx", ".mjs", ".cjs":
		return astcache.LangJavaScript
	case ".ts":
		return astcache.LangTypeScript
	case ".tsx":
		return astcache.LangTSX
	case ".cs":
		return astcache.LangCSharp
	case ".php":
		return astcache.LangPHP
	case ".rs":
		return astcache.LangRust
	default:
		return ""
	}
}

func (o *Orchestrator) newScheduler() scheduler.Scheduler {
	switch o.Config.SchedulerMode {
	case SchedulerInline:
		return scheduler.NewInlineScheduler()
	case SchedulerProcess:
		return scheduler.NewProcessScheduler(scheduler.ExecInvoker{ExecPath: os.Args[0], WorkerArgs: []string{"--worker"}}, o.Config.ParseWorkers, 300*time.Second)
	default:
		return scheduler.NewThreadPoolScheduler(o.Config.ParseWorkers)
	}
}

// extract dispatches to the language-specific entityextract.Extractor for
// f's language, feeding the orchestrator's shared FunctionRegistry and
// SimpleNameIndex the way LocalPipeline.parseFilesParallel's per-language
// parser field does.
func (o *Orchestrator) extract(tree *astcache.CachedTree, source []byte, f discoveredFile, moduleQN string) *entityextract.ParseResult {
	switch f.language {
	case astcache.LangGo:
		return entityextract.NewGoExtractor(o.ctx.Functions, o.ctx.Simple).Extract(tree.Root, source, f.path, moduleQN)
	case astcache.LangPython:
		return entityextract.NewPythonExtractor(o.ctx.Functions, o.ctx.Simple).Extract(tree.Root, source, f.path, moduleQN)
	case astcache.LangJavaScript, astcache.LangTypeScript, astcache.LangTSX:
		return entityextract.NewTSExtractor(o.ctx.Functions, o.ctx.Simple).Extract(tree.Root, source, f.path, moduleQN)
	case astcache.LangCSharp:
		return entityextract.NewCSharpExtractor(o.ctx.Functions, o.ctx.Simple).Extract(tree.Root, source, f.path, moduleQN)
	case astcache.LangPHP:
		return entityextract.NewPHPExtractor(o.ctx.Functions, o.ctx.Simple).Extract(tree.Root, source, f.path, moduleQN)
	case astcache.LangRust:
		return entityextract.NewRustExtractor(o.ctx.Functions, o.ctx.Simple).Extract(tree.Root, source, f.path, moduleQN)
	default:
		return &entityextract.ParseResult{ModuleQN: moduleQN}
	}
}

// parseFile parses one file end to end: tree-sitter parse, entity
// extraction, framework/tailwind/django linking, node/edge ingestion.
// Returns *entityextract.ParseResult so the caller can fold its
// functions/imports/unresolved calls into the shared registries.
func (o *Orchestrator) parseFile(ctx context.Context, f discoveredFile, incremental *cache.Incremental) (*entityextract.ParseResult, error) {
	source, err := os.ReadFile(f.fullPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	moduleQN := moduleQNForPath(o.Config.ProjectName, f.path)

	var pr *entityextract.ParseResult
	if incremental != nil {
		var cached entityextract.ParseResult
		hit, err := incremental.GetResult(f.fullPath, &cached)
		if err == nil && hit {
			o.Metrics.CacheHits.Inc()
			pr = &cached
		} else {
			o.Metrics.CacheMisses.Inc()
		}
	}

	if pr == nil {
		tree, err := o.ctx.AST.Parse(ctx, f.path, f.language, source)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f.path, err)
		}
		pr = o.extract(tree, source, f, moduleQN)
		if incremental != nil {
			if err := incremental.CacheResult(f.fullPath, string(f.language), "", pr); err != nil {
				o.Logger.Warn("local.indexing.cache.store_error", "path", f.path, "err", err)
			}
		}
	}

	if err := o.ingestFile(ctx, f, moduleQN, pr); err != nil {
		return pr, err
	}

	if o.Config.EnableFrameworkLinker {
		linker := frameworklink.NewLinker(o.Config.ProjectName, o.Sink)
		if o.Config.EnableDjangoTemplates {
			linker.TemplateIndex = djangotmpl.BuildTemplateIndex(o.Config.RepoPath)
		}
		linker.BladeViewIndex = frameworklink.BuildBladeViewIndex(o.Config.RepoPath)
		linkStart := time.Now()
		if err := linker.LinkFile(ctx, f.path, moduleQN, string(source)); err != nil {
			o.Logger.Warn("local.indexing.framework_link.error", "path", f.path, "err", err)
		}
		o.record(o.Metrics.LinkDuration, time.Since(linkStart))
	}

	if o.Config.EnableTailwind && isWebFile(f.path) {
		processor := tailwind.NewProcessor(o.Sink, o.Config.ProjectName, o.Config.RepoPath)
		if err := processor.ProcessFile(ctx, f.path, moduleQN, string(source)); err != nil {
			o.Logger.Warn("local.indexing.tailwind.error", "path", f.path, "err", err)
		}
	}

	if o.Config.EnableDjangoTemplates && strings.HasSuffix(f.path, ".html") {
		walker := djangotmpl.NewWalker(o.Sink, o.Config.ProjectName, nil)
		if err := walker.ProcessFile(ctx, f.path, string(source)); err != nil {
			o.Logger.Warn("local.indexing.django_template.error", "path", f.path, "err", err)
		}
	}

	lines := strings.Split(string(source), "\n")
	extended := resolve.NewExtendedRelationPass(o.Sink)
	for _, fn := range pr.Functions {
		label := graphmodel.LabelFunction
		if fn.ReceiverType != "" {
			label = graphmodel.LabelMethod
		}
		if err := extended.Process(ctx, fn, label, moduleQN, string(f.language), lines); err != nil {
			o.Logger.Warn("local.indexing.extended_relation.error", "fn", fn.QualifiedName, "err", err)
		}
	}

	return pr, nil
}

func isWebFile(path string) bool {
	for _, ext := range []string{".html", ".jsx", ".tsx", ".vue", ".css"} {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func moduleQNForPath(project, relPath string) string {
	trimmed := strings.TrimSuffix(relPath, filepath.Ext(relPath))
	segments := strings.Split(filepath.ToSlash(trimmed), "/")
	return graphmodel.BuildModuleQN(project, segments)
}

// ingestFile ensures the file's Module node (the relative path is its
// "path" property; no separate File node is written) and CONTAINS edges
// to every function/type the file defines, and records its imports.
func (o *Orchestrator) ingestFile(ctx context.Context, f discoveredFile, moduleQN string, pr *entityextract.ParseResult) error {
	if err := o.Sink.EnsureNode(ctx, graphmodel.LabelModule, moduleQN, filepath.Base(f.path), map[string]any{"path": f.path}, false); err != nil {
		return err
	}
	for _, fn := range pr.Functions {
		label := graphmodel.LabelFunction
		if fn.ReceiverType != "" {
			label = graphmodel.LabelMethod
		}
		if err := o.Sink.EnsureNode(ctx, label, fn.QualifiedName, fn.Name, map[string]any{
			"start_line": fn.StartLine, "end_line": fn.EndLine, "is_exported": fn.IsExported,
		}, false); err != nil {
			return err
		}
		if err := o.Sink.EnsureRelationship(ctx,
			graphmodel.NewRef(graphmodel.LabelModule, moduleQN), graphmodel.RelContains,
			graphmodel.NewRef(label, fn.QualifiedName), nil); err != nil {
			return err
		}
	}
	for _, ty := range pr.Types {
		if err := o.Sink.EnsureNode(ctx, graphmodel.LabelClass, ty.QualifiedName, ty.Name, map[string]any{"kind": ty.Kind}, false); err != nil {
			return err
		}
		if err := o.Sink.EnsureRelationship(ctx,
			graphmodel.NewRef(graphmodel.LabelModule, moduleQN), graphmodel.RelContains,
			graphmodel.NewRef(graphmodel.LabelClass, ty.QualifiedName), nil); err != nil {
			return err
		}
	}
	for _, imp := range pr.Imports {
		targetQN := importPathToModuleQN(o.Config.ProjectName, imp.ImportPath)
		alias := imp.Alias
		o.ctx.RecordImport(f.path, moduleQN, alias, targetQN)
	}
	return nil
}

// importPathToModuleQN is a best-effort mapping from an import string to
// the internal module QN convention: only imports inside this project
// resolve to a useful QN (an external package's import path simply
// becomes its own opaque "QN", which never matches anything in
// FunctionRegistry and so safely resolves to no edge).
func importPathToModuleQN(project, importPath string) string {
	cleaned := strings.Trim(importPath, "\"'")
	cleaned = strings.TrimPrefix(cleaned, "./")
	cleaned = strings.TrimPrefix(cleaned, "/")
	segments := strings.Split(cleaned, "/")
	return graphmodel.BuildModuleQN(project, segments)
}
