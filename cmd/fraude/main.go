package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/situkangsayur/fraude-ai/internal/analyzer"
	"github.com/situkangsayur/fraude-ai/internal/api"
	"github.com/situkangsayur/fraude-ai/internal/bus"
	"github.com/situkangsayur/fraude-ai/internal/cache"
	"github.com/situkangsayur/fraude-ai/internal/domain"
	"github.com/situkangsayur/fraude-ai/internal/graph"
	"github.com/situkangsayur/fraude-ai/internal/orchestrator"
	"github.com/situkangsayur/fraude-ai/internal/rules"
	"github.com/situkangsayur/fraude-ai/internal/store"
	"github.com/situkangsayur/fraude-ai/internal/worker"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	// Load .env if present; real environment wins.
	_ = godotenv.Load()

	logLevel := slog.LevelInfo
	if os.Getenv("FRAUDE_DEBUG") == "true" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("starting fraude",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	cfg := domain.DefaultConfig()
	if os.Getenv("TESTING") == "true" {
		cfg = domain.TestingConfig()
		slog.Info("TESTING=true - using the embedded in-memory store")
	}

	applyEnvOverrides(cfg)

	slog.Info("configuration loaded",
		"store", cfg.Store.Driver,
		"cache", cfg.Cache.Type,
		"eventbus", cfg.EventBus.Type,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Initialize Store
	storeImpl, err := store.New(cfg.Store)
	if err != nil {
		slog.Error("failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer storeImpl.Close()
	slog.Info("store initialized", "driver", cfg.Store.Driver)

	// Initialize Cache
	cacheImpl, err := cache.New(cfg.Cache)
	if err != nil {
		slog.Error("failed to initialize cache", "error", err)
		os.Exit(1)
	}
	defer cacheImpl.Close()
	slog.Info("cache initialized", "type", cfg.Cache.Type)

	// Initialize EventBus
	busImpl, err := bus.New(cfg.EventBus)
	if err != nil {
		slog.Error("failed to initialize event bus", "error", err)
		os.Exit(1)
	}
	defer busImpl.Close()
	slog.Info("event bus initialized", "type", cfg.EventBus.Type)

	// Initialize Graph Engine
	graphEngine := graph.NewEngine(storeImpl)
	if err := graphEngine.Initialize(ctx); err != nil {
		slog.Error("failed to initialize graph engine", "error", err)
		os.Exit(1)
	}

	// Initialize Rules Engine
	rulesEngine := rules.NewEngine(storeImpl)
	if err := rulesEngine.Reload(ctx); err != nil {
		slog.Error("failed to load policies", "error", err)
		os.Exit(1)
	}
	slog.Info("rules engine initialized",
		"policies_count", rulesEngine.PoliciesCount(),
		"rules_count", rulesEngine.RulesCount(),
	)

	// Remote analyzer clients
	nnClient := analyzer.NewNeuralNetClient(cfg.Analyzer.NNServiceURL, cfg.Analyzer.Timeout)
	textClient := analyzer.NewTextAnalyzerClient(cfg.Analyzer.TextAnalyzerURL, cfg.Analyzer.Timeout)

	// The policy and graph legs run in process unless a standalone
	// service is configured.
	var policyScorer orchestrator.PolicyScorer = rulesEngine
	if cfg.Analyzer.RulesURL != "" {
		policyScorer = orchestrator.NewRemotePolicyScorer(
			analyzer.NewRulesServiceClient(cfg.Analyzer.RulesURL, cfg.Analyzer.Timeout))
		slog.Info("using remote rules service", "url", cfg.Analyzer.RulesURL)
	}

	var graphAnalyzer orchestrator.GraphAnalyzer = graphEngine
	if cfg.Analyzer.GraphServiceURL != "" {
		graphAnalyzer = orchestrator.NewRemoteGraphAnalyzer(
			analyzer.NewGraphServiceClient(cfg.Analyzer.GraphServiceURL, cfg.Analyzer.Timeout))
		slog.Info("using remote graph service", "url", cfg.Analyzer.GraphServiceURL)
	}

	// Initialize Orchestrator
	orch := orchestrator.New(storeImpl, policyScorer, graphAnalyzer, nnClient, textClient, busImpl, cacheImpl, cfg.Analyzer.Timeout)

	// Start fraud recorder worker
	fraudRecorder := worker.NewWorker(busImpl, storeImpl)
	if err := fraudRecorder.Start(); err != nil {
		slog.Error("failed to start fraud recorder", "error", err)
	}

	// Initialize Server
	srv := api.NewServer(cfg.Server, storeImpl, graphEngine, rulesEngine, orch, cacheImpl, busImpl, Version)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("fraude is ready",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	printBanner(cfg, Version)

	<-ctx.Done()
	slog.Info("shutting down...")

	if err := fraudRecorder.Stop(); err != nil {
		slog.Error("failed to stop fraud recorder", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("fraude shutdown complete")
}

func printBanner(cfg *domain.Config, version string) {
	fmt.Println()
	fmt.Println("  fraude - transaction fraud scoring pipeline")
	fmt.Println()
	fmt.Printf("  Version:  %s\n", version)
	fmt.Printf("  Store:    %s\n", cfg.Store.Driver)
	fmt.Printf("  Server:   http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()
	fmt.Println("  Endpoints:")
	fmt.Println("    POST /transactions               - Score a transaction against policies")
	fmt.Println("    GET  /fraud_check/{id}           - Orchestrated fraud check")
	fmt.Println("    GET  /analyze                    - Graph proximity analysis")
	fmt.Println("    POST /users/                     - Create a user")
	fmt.Println("    POST /links/                     - Create a link")
	fmt.Println("    POST /generate_links/            - Bulk link generation")
	fmt.Println("    POST /cluster_nodes/             - Re-cluster users")
	fmt.Println("    POST /policies/                  - Create a policy with rules")
	fmt.Println("    POST /standard_rules/            - Create a standard rule")
	fmt.Println("    POST /velocity_rules/            - Create a velocity rule")
	fmt.Println("    POST /graph_rules/               - Create a graph rule")
	fmt.Println("    GET  /health                     - Health check")
	fmt.Println()
}

// applyEnvOverrides applies environment variable overrides to the config.
// This enables configuration via environment for Docker/Kubernetes
// deployments.
func applyEnvOverrides(cfg *domain.Config) {
	// Store settings
	if driver := os.Getenv("STORE_DRIVER"); driver != "" {
		cfg.Store.Driver = driver
	}
	if uri := os.Getenv("STORE_URI"); uri != "" {
		cfg.Store.URI = uri
	}
	if db := os.Getenv("STORE_DB"); db != "" {
		cfg.Store.Database = db
		cfg.Store.PostgresDB = db
	}
	if path := os.Getenv("STORE_SQLITE_PATH"); path != "" {
		cfg.Store.SQLitePath = path
	}

	// PostgreSQL settings
	if host := os.Getenv("FRAUDE_POSTGRES_HOST"); host != "" {
		cfg.Store.PostgresHost = host
	}
	if port := os.Getenv("FRAUDE_POSTGRES_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Store.PostgresPort = p
		}
	}
	if user := os.Getenv("FRAUDE_POSTGRES_USER"); user != "" {
		cfg.Store.PostgresUser = user
	}
	if password := os.Getenv("FRAUDE_POSTGRES_PASSWORD"); password != "" {
		cfg.Store.PostgresPassword = password
	}

	// Remote analyzer endpoints
	if url := os.Getenv("NN_SERVICE_URL"); url != "" {
		cfg.Analyzer.NNServiceURL = url
	}
	if url := os.Getenv("TEXT_ANALYZER_URL"); url != "" {
		cfg.Analyzer.TextAnalyzerURL = url
	}
	if url := os.Getenv("GRAPH_SERVICE_URL"); url != "" {
		cfg.Analyzer.GraphServiceURL = url
	}
	if url := os.Getenv("RULES_URL"); url != "" {
		cfg.Analyzer.RulesURL = url
	}
	if ms := os.Getenv("FRAUDE_ANALYZER_TIMEOUT_MS"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 {
			cfg.Analyzer.Timeout = time.Duration(v) * time.Millisecond
		}
	}

	// Server settings
	if host := os.Getenv("FRAUDE_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("FRAUDE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}

	// Cache settings
	if cacheType := os.Getenv("FRAUDE_CACHE"); cacheType != "" {
		cfg.Cache.Type = cacheType
	}
	if addr := os.Getenv("FRAUDE_REDIS_ADDR"); addr != "" {
		cfg.Cache.RedisAddr = addr
	}
	if password := os.Getenv("FRAUDE_REDIS_PASSWORD"); password != "" {
		cfg.Cache.RedisPassword = password
	}

	// Event bus settings
	if busType := os.Getenv("FRAUDE_BUS"); busType != "" {
		cfg.EventBus.Type = busType
	}
	if url := os.Getenv("FRAUDE_NATS_URL"); url != "" {
		cfg.EventBus.NATSUrl = url
	}
}
