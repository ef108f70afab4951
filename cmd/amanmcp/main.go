// Package main wires up and runs the amanmcp MCP server for one indexed
// folder. All components are constructed here, at startup, as a single
// compile-time dependency graph; there is no runtime container or plugin
// loader. A missing or misconfigured dependency is a startup error.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Aman-CERP/amanmcp/internal/async"
	"github.com/Aman-CERP/amanmcp/internal/chunk"
	"github.com/Aman-CERP/amanmcp/internal/config"
	"github.com/Aman-CERP/amanmcp/internal/embed"
	"github.com/Aman-CERP/amanmcp/internal/index"
	"github.com/Aman-CERP/amanmcp/internal/logging"
	"github.com/Aman-CERP/amanmcp/internal/mcp"
	"github.com/Aman-CERP/amanmcp/internal/parse"
	"github.com/Aman-CERP/amanmcp/internal/preflight"
	"github.com/Aman-CERP/amanmcp/internal/scanner"
	"github.com/Aman-CERP/amanmcp/internal/search"
	"github.com/Aman-CERP/amanmcp/internal/store"
	"github.com/Aman-CERP/amanmcp/internal/telemetry"
	"github.com/Aman-CERP/amanmcp/internal/watcher"
	"github.com/Aman-CERP/amanmcp/pkg/version"
)

func main() {
	root := flag.String("root", ".", "folder to index and serve")
	offline := flag.Bool("offline", false, "use static embeddings, skip model download")
	skipCheck := flag.Bool("skip-check", false, "skip pre-flight system checks")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *root, *offline, *skipCheck); err != nil {
		slog.Error("amanmcp exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run builds the full dependency graph for one project folder and blocks
// serving the MCP protocol over stdio until ctx is canceled.
func run(ctx context.Context, rootArg string, offline, skipCheck bool) error {
	rootPath, err := filepath.Abs(rootArg)
	if err != nil {
		return fmt.Errorf("resolve root path: %w", err)
	}
	if info, err := os.Stat(rootPath); err != nil || !info.IsDir() {
		return fmt.Errorf("root path is not a directory: %s", rootPath)
	}

	// BUG-034 (teacher): the MCP stdio transport requires stdout to carry
	// nothing but JSON-RPC. All diagnostics go to the rotating log file.
	logCfg := logging.DefaultConfig()
	logCfg.WriteToStderr = false
	logger, cleanup, err := logging.Setup(logCfg)
	if err == nil {
		slog.SetDefault(logger)
		defer cleanup()
	}

	cfg, err := config.Load(rootPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	dataDir := filepath.Join(rootPath, ".amanmcp")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	if !skipCheck && preflight.NeedsCheck(dataDir) {
		checker := preflight.New(preflight.WithOffline(offline))
		results := checker.RunAll(ctx, rootPath)
		if checker.HasCriticalFailures(results) {
			return fmt.Errorf("pre-flight checks failed")
		}
		if err := preflight.MarkPassed(dataDir); err != nil {
			slog.Debug("failed to record pre-flight pass", slog.String("error", err.Error()))
		}
	}

	metadata, err := store.NewSQLiteStore(filepath.Join(dataDir, "metadata.db"))
	if err != nil {
		return fmt.Errorf("open metadata store: %w", err)
	}
	defer func() { _ = metadata.Close() }()

	bm25, err := store.NewBM25IndexWithBackend(filepath.Join(dataDir, "bm25"), store.DefaultBM25Config(), cfg.Search.BM25Backend)
	if err != nil {
		return fmt.Errorf("open bm25 index: %w", err)
	}
	defer func() { _ = bm25.Close() }()

	embed.SetThermalConfig(embed.ThermalConfig{
		TimeoutProgression:     cfg.Embeddings.TimeoutProgression,
		RetryTimeoutMultiplier: cfg.Embeddings.RetryTimeoutMultiplier,
	})
	embed.SetMLXConfig(embed.MLXServerConfig{
		Endpoint: cfg.Embeddings.MLXEndpoint,
		Model:    cfg.Embeddings.MLXModel,
	})

	var embedder embed.Embedder
	if offline {
		embedder = embed.NewStaticEmbedder768()
	} else {
		embedCtx, embedCancel := context.WithTimeout(ctx, 15*time.Second)
		embedder, err = embed.NewEmbedder(embedCtx, embed.ParseProvider(cfg.Embeddings.Provider), cfg.Embeddings.Model)
		embedCancel()
		if err != nil {
			return fmt.Errorf("initialize embedder: %w", err)
		}
	}
	defer func() { _ = embedder.Close() }()

	vectorCfg := store.DefaultVectorStoreConfig(embedder.Dimensions())
	vector, err := store.NewHNSWStore(vectorCfg)
	if err != nil {
		return fmt.Errorf("open vector store: %w", err)
	}
	defer func() { _ = vector.Close() }()

	metrics := telemetry.NewQueryMetrics(nil)
	defer func() { _ = metrics.Close() }()

	engine, err := search.NewEngine(bm25, vector, embedder, metadata, search.EngineConfig{
		DefaultLimit:   cfg.Search.MaxResults,
		MaxLimit:       100,
		DefaultWeights: search.Weights{BM25: cfg.Search.BM25Weight, Semantic: cfg.Search.SemanticWeight},
		RRFConstant:    cfg.Search.RRFConstant,
		SearchTimeout:  5 * time.Second,
	}, search.WithMetrics(metrics))
	if err != nil {
		return fmt.Errorf("build search engine: %w", err)
	}
	defer func() { _ = engine.Close() }()

	fileScanner, err := scanner.New()
	if err != nil {
		return fmt.Errorf("build scanner: %w", err)
	}
	parsers := parse.NewRegistry()
	chunker := chunk.NewDocumentChunker()

	coordinator := index.NewCoordinator(index.CoordinatorConfig{
		ProjectID:       rootPath,
		RootPath:        rootPath,
		DataDir:         dataDir,
		Engine:          engine,
		Metadata:        metadata,
		Chunker:         chunker,
		Parsers:         parsers,
		Scanner:         fileScanner,
		ExcludePatterns: cfg.Paths.Exclude,
	})

	progress := async.NewIndexProgress()
	progress.SetStage(async.StageScanning, 0)
	if err := coordinator.ReconcileFilesOnStartup(ctx); err != nil {
		slog.Warn("startup reconciliation failed", slog.String("error", err.Error()))
	}
	progress.SetReady()

	var debounce time.Duration
	if cfg.Watcher.DebounceMS > 0 {
		debounce = time.Duration(cfg.Watcher.DebounceMS) * time.Millisecond
	} else if d, err := time.ParseDuration(cfg.Performance.WatchDebounce); err == nil {
		debounce = d
	} else {
		debounce = 500 * time.Millisecond
	}
	watchOpts := watcher.DefaultOptions()
	watchOpts.DebounceWindow = debounce
	watchOpts.IgnorePatterns = cfg.Paths.Exclude

	fsWatcher, err := watcher.NewHybridWatcher(watchOpts)
	if err != nil {
		return fmt.Errorf("build file watcher: %w", err)
	}
	defer func() { _ = fsWatcher.Stop() }()
	if err := fsWatcher.Start(ctx, rootPath); err != nil {
		return fmt.Errorf("start file watcher: %w", err)
	}
	go watchEvents(ctx, fsWatcher, coordinator)

	server, err := mcp.NewServer(engine, metadata, embedder, cfg, rootPath)
	if err != nil {
		return fmt.Errorf("build mcp server: %w", err)
	}
	server.SetProject(rootPath)
	server.SetCoordinator(coordinator)
	server.SetIndexProgress(progress)
	server.SetMetrics(metrics)

	slog.Info("amanmcp ready",
		slog.String("version", version.Version),
		slog.String("root", rootPath))

	return server.Serve(ctx, "stdio", "")
}

// watchEvents forwards debounced filesystem events to the coordinator until
// ctx is canceled or the watcher's event channel closes.
func watchEvents(ctx context.Context, w *watcher.HybridWatcher, c *index.Coordinator) {
	for {
		select {
		case <-ctx.Done():
			return
		case events, ok := <-w.Events():
			if !ok {
				return
			}
			if err := c.HandleEvents(ctx, events); err != nil {
				slog.Error("failed to apply file events", slog.String("error", err.Error()))
			}
		case err, ok := <-w.Errors():
			if !ok {
				continue
			}
			slog.Error("file watcher error", slog.String("error", err.Error()))
		}
	}
}
