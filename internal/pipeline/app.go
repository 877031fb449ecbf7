// Package pipeline wires every component stage (ingest, preference
// parsing, enrichment, optimization, strategy, linting, export) behind
// one HTTP surface, generalizing the teacher's
// services/api_gateway/src/gateway/gateway.go Gateway type: one
// explicit struct built once at startup, no package-level singletons.
package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/thehillman215/vectorbid/internal/config"
	"github.com/thehillman215/vectorbid/internal/enrich"
	"github.com/thehillman215/vectorbid/internal/export"
	"github.com/thehillman215/vectorbid/internal/export/audit"
	"github.com/thehillman215/vectorbid/internal/ingest"
	"github.com/thehillman215/vectorbid/internal/llm"
	"github.com/thehillman215/vectorbid/internal/observability/logging"
	"github.com/thehillman215/vectorbid/internal/optimizer"
	"github.com/thehillman215/vectorbid/internal/ruleengine"
	"github.com/thehillman215/vectorbid/internal/secrets"
)

// App is the pipeline orchestrator: every dependency is constructed
// once at startup and held here, never behind a package-level var.
type App struct {
	cfg     *config.Config
	logger  *logging.Logger
	router  *mux.Router
	server  *http.Server

	contexts  *FileContextLoader
	rulePacks *ruleengine.Cache
	packages  *ingest.Service
	enricher  *enrich.Enricher
	ladder    prefLadder
	optimizer *optimizer.Optimizer
	exporter  *export.Exporter
	audit     *audit.Store // nil when no database DSN is configured

	requestCounter  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// prefLadder is the subset of prefparser.Ladder the app depends on,
// letting New build either a real llm.CachingLadder or nil (no LLM
// configured, rule_based-only parsing).
type prefLadder interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (llm.Result, error)
}

// New builds an App from cfg: rule-pack cache, package store, LLM
// ladder (only if API keys are configured), optimizer, exporter, and
// optionally the Postgres-backed audit store.
func New(cfg *config.Config, logger *logging.Logger) (*App, error) {
	rulePacks, err := ruleengine.NewCache(cfg.RulePack.Dir, cfg.RulePack.CacheCapacity)
	if err != nil {
		return nil, err
	}

	store, err := ingest.NewStore(cfg.PackageStore.Dir)
	if err != nil {
		return nil, err
	}
	packages := ingest.NewService(store)

	secretsProvider := secretsProviderFor(cfg, logger)

	var ladder prefLadder
	if cfg.LLM.PrimaryKey != "" {
		primary := llm.NewOpenAIProvider(cfg.LLM.PrimaryKey, cfg.LLM.PrimaryModel, "primary")
		var secondary llm.Provider
		if cfg.LLM.SecondaryKey != "" {
			secondary = llm.NewOpenAIProvider(cfg.LLM.SecondaryKey, cfg.LLM.SecondaryModel, "secondary")
		}
		base := llm.NewLadder(primary, secondary)
		if cfg.Redis.Address != "" {
			redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, DB: cfg.Redis.DB})
			ladder = llm.NewRedisCachingLadder(base, redisClient, cfg.LLM.CacheTTL)
		} else {
			ladder = llm.NewCachingLadder(base, cfg.LLM.CacheTTL)
		}
	}

	opt := optimizer.New(optimizer.Config{})
	exporter := export.New(secretsProvider)

	var auditStore *audit.Store
	if cfg.Database.DSN != "" {
		auditStore, err = audit.Open(cfg.Database.DSN, cfg.Database.MigrationsPath)
		if err != nil {
			logger.Sugar().Warnf("audit store unavailable, exports will not be persisted: %v", err)
			auditStore = nil
		}
	}

	requestCounter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vectorbid_requests_total",
		Help: "Total number of pipeline requests processed, by route and status.",
	}, []string{"route", "status"})
	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vectorbid_request_duration_seconds",
		Help:    "Pipeline request duration in seconds, by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	if err := prometheus.Register(requestCounter); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, err
		}
		requestCounter = are.ExistingCollector.(*prometheus.CounterVec)
	}
	if err := prometheus.Register(requestDuration); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, err
		}
		requestDuration = are.ExistingCollector.(*prometheus.HistogramVec)
	}

	contexts := NewFileContextLoader(cfg.ContextStore.Dir)

	app := &App{
		cfg:             cfg,
		logger:          logger,
		contexts:        contexts,
		rulePacks:       rulePacks,
		packages:        packages,
		enricher:        enrich.New(contexts, rulePacks, packages),
		ladder:          ladder,
		optimizer:       opt,
		exporter:        exporter,
		audit:           auditStore,
		requestCounter:  requestCounter,
		requestDuration: requestDuration,
	}

	app.router = mux.NewRouter()
	app.setupMiddleware()
	app.setupRoutes()

	app.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return app, nil
}

func secretsProviderFor(cfg *config.Config, logger *logging.Logger) secrets.Provider {
	if cfg.Vault.Address != "" {
		provider, err := secrets.NewVaultProvider(cfg.Vault.Address, cfg.Vault.Token, cfg.Vault.Path, logger.Logger)
		if err == nil {
			return provider
		}
		logger.Sugar().Warnf("vault provider unavailable, falling back to env secrets: %v", err)
	}
	return secrets.NewEnvProvider()
}

// Router exposes the mux.Router for testing without starting a server.
func (a *App) Router() *mux.Router {
	return a.router
}

func (a *App) setupMiddleware() {
	a.router.Use(handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST"}),
		handlers.AllowedHeaders([]string{"Content-Type", "X-API-Key", "X-Request-ID"}),
	))
	a.router.Use(requestIDMiddleware)
	a.router.Use(a.loggingMiddleware)
	a.router.Use(a.metricsMiddleware)
	a.router.Use(recoveryMiddleware(a.logger))
}

func (a *App) setupRoutes() {
	a.router.HandleFunc("/ping", pingHandler).Methods(http.MethodGet)
	a.router.HandleFunc("/health", a.healthHandler).Methods(http.MethodGet)
	a.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	a.router.HandleFunc("/api/parse_preferences", a.parsePreferencesHandler).Methods(http.MethodPost)
	a.router.HandleFunc("/api/validate_constraints", a.validateConstraintsHandler).Methods(http.MethodPost)
	a.router.HandleFunc("/api/optimize", a.optimizeHandler).Methods(http.MethodPost)
	a.router.HandleFunc("/api/optimize/retune", a.retuneHandler).Methods(http.MethodPost)
	a.router.HandleFunc("/api/strategy", a.strategyHandler).Methods(http.MethodPost)
	a.router.HandleFunc("/api/generate_layers", a.generateLayersHandler).Methods(http.MethodPost)
	a.router.HandleFunc("/api/lint", a.lintHandler).Methods(http.MethodPost)
	a.router.HandleFunc("/api/export", a.apiKeyGate(a.exportHandler)).Methods(http.MethodPost)

	a.router.HandleFunc("/api/ingest", a.ingestHandler).Methods(http.MethodPost)
	a.router.HandleFunc("/api/meta/parsers", a.metaParsersHandler).Methods(http.MethodGet)

	a.router.HandleFunc("/api/rule-packs", a.listRulePacksHandler).Methods(http.MethodGet)
	a.router.HandleFunc("/api/rule-packs/{airline}/{month}", a.getRulePackHandler).Methods(http.MethodGet)
}

// requestDeadline seeds a context.WithTimeout from the configured
// per-request deadline, per spec.md §5.
func (a *App) requestDeadline(parent context.Context) (context.Context, context.CancelFunc) {
	deadline := a.cfg.Pipeline.RequestDeadline
	if deadline <= 0 {
		deadline = 8 * time.Second
	}
	return context.WithTimeout(parent, deadline)
}

// Start begins serving HTTP traffic; it blocks until the server stops.
func (a *App) Start() error {
	a.logger.Sugar().Infof("starting vectorbid pipeline on port %d", a.cfg.Server.Port)
	err := a.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP server and closes the audit store.
func (a *App) Shutdown(ctx context.Context) error {
	if a.audit != nil {
		_ = a.audit.Close()
	}
	return a.server.Shutdown(ctx)
}
