// Package main implements the Portside quote API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/spf13/viper"

	"github.com/PortsideHQ/portside-engine/engine/catalog"
	"github.com/PortsideHQ/portside-engine/engine/domain"
	"github.com/PortsideHQ/portside-engine/engine/normalize"
	"github.com/PortsideHQ/portside-engine/engine/quote"
	"github.com/PortsideHQ/portside-engine/engine/refdata"
	"github.com/PortsideHQ/portside-engine/engine/semantic"
	"github.com/PortsideHQ/portside-engine/pkg/metrics"
	"github.com/PortsideHQ/portside-engine/pkg/mid"
	"github.com/PortsideHQ/portside-engine/pkg/natsutil"
	"github.com/PortsideHQ/portside-engine/pkg/ollama"
	"github.com/PortsideHQ/portside-engine/pkg/repo"
	"github.com/PortsideHQ/portside-engine/pkg/resilience"
)

// Config holds all server configuration. Every key can be set via a
// PORTSIDE_-prefixed environment variable or a portside.yaml config file.
type Config struct {
	Port        string
	CORSOrigin  string
	DatasetPath string // empty means the built-in seed dataset
	RateRPS     float64
	RateBurst   int

	NATSURL string // empty disables the refresh subscription

	Neo4jURL  string // empty disables the catalog
	Neo4jUser string
	Neo4jPass string

	QdrantAddr string // empty disables semantic matching
	Collection string
	OllamaURL  string
	EmbedModel string
}

func loadConfig() Config {
	v := viper.New()
	v.SetEnvPrefix("PORTSIDE")
	v.AutomaticEnv()
	v.SetConfigName("portside")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/portside")

	v.SetDefault("port", "8080")
	v.SetDefault("cors_origin", "*")
	v.SetDefault("dataset_path", "")
	v.SetDefault("rate_rps", 50.0)
	v.SetDefault("rate_burst", 100)
	v.SetDefault("nats_url", "")
	v.SetDefault("neo4j_url", "")
	v.SetDefault("neo4j_user", "neo4j")
	v.SetDefault("neo4j_pass", "password")
	v.SetDefault("qdrant_addr", "")
	v.SetDefault("collection", "portside-vehicles")
	v.SetDefault("ollama_url", "http://localhost:11434")
	v.SetDefault("embed_model", "nomic-embed-text")

	// Missing config file is fine; env vars and defaults cover everything.
	_ = v.ReadInConfig()

	return Config{
		Port:        v.GetString("port"),
		CORSOrigin:  v.GetString("cors_origin"),
		DatasetPath: v.GetString("dataset_path"),
		RateRPS:     v.GetFloat64("rate_rps"),
		RateBurst:   v.GetInt("rate_burst"),
		NATSURL:     v.GetString("nats_url"),
		Neo4jURL:    v.GetString("neo4j_url"),
		Neo4jUser:   v.GetString("neo4j_user"),
		Neo4jPass:   v.GetString("neo4j_pass"),
		QdrantAddr:  v.GetString("qdrant_addr"),
		Collection:  v.GetString("collection"),
		OllamaURL:   v.GetString("ollama_url"),
		EmbedModel:  v.GetString("embed_model"),
	}
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := loadConfig()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Reference data ---
	var snap *refdata.Snapshot
	var err error
	if cfg.DatasetPath != "" {
		snap, err = refdata.LoadDataset(cfg.DatasetPath)
		if err != nil {
			return err
		}
		logger.Info("dataset loaded", "path", cfg.DatasetPath, "version", snap.Version())
	} else {
		snap = refdata.SeedSnapshot()
		logger.Info("using built-in seed dataset", "version", snap.Version())
	}
	store := refdata.NewStore(snap)

	// --- Semantic matching (optional) ---
	var normOpts []normalize.Option
	normOpts = append(normOpts, normalize.WithLogger(logger))
	if cfg.QdrantAddr != "" {
		vectors, err := semantic.New(cfg.QdrantAddr, cfg.Collection)
		if err != nil {
			return fmt.Errorf("qdrant connect: %w", err)
		}
		defer vectors.Close()
		embedder := ollama.NewEmbedClient(cfg.OllamaURL, cfg.EmbedModel)
		matcher := semantic.NewMatcher(vectors, embedder, 5, 0.5)
		normOpts = append(normOpts, normalize.WithSemanticMatcher(matcher))
		logger.Info("semantic matching enabled", "qdrant", cfg.QdrantAddr, "collection", cfg.Collection)
	}

	norm := normalize.New(normOpts...)
	svc := quote.NewService(store, norm, quote.WithLogger(logger))
	reg := metrics.New()
	reg.Gauge("portside_dataset_version", "Published dataset version").Set(int64(snap.Version()))

	// --- Catalog (optional) ---
	var vehicleRepo *repo.Neo4jRepo[domain.CanonicalVehicle, string]
	if cfg.Neo4jURL != "" {
		driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURL, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPass, ""))
		if err != nil {
			return fmt.Errorf("neo4j driver: %w", err)
		}
		defer driver.Close(ctx)

		vehicleRepo = newVehicleRepo(driver)

		// --- Refresh subscription (optional, needs the catalog) ---
		if cfg.NATSURL != "" {
			nc, err := nats.Connect(cfg.NATSURL)
			if err != nil {
				return fmt.Errorf("nats connect: %w", err)
			}
			defer nc.Close()

			refresher := newRefresher(store, catalog.NewStore(driver), reg, logger)
			sub, err := natsutil.Subscribe(nc, refdata.RefreshSubject, refresher.handle)
			if err != nil {
				return fmt.Errorf("subscribe %s: %w", refdata.RefreshSubject, err)
			}
			defer sub.Unsubscribe()
			logger.Info("refresh subscription active", "subject", refdata.RefreshSubject)
		}
	}

	// --- HTTP server ---
	api := newAPI(svc, store, vehicleRepo, reg, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", api.handleHealth)
	mux.HandleFunc("GET /api/jurisdictions", api.handleJurisdictions)
	mux.HandleFunc("POST /api/quote", api.handleQuote)
	mux.HandleFunc("POST /api/quote/batch", api.handleQuoteBatch)
	if vehicleRepo != nil {
		mux.HandleFunc("GET /api/vehicles", api.handleVehicleList)
		mux.HandleFunc("GET /api/vehicles/{id}", api.handleVehicleGet)
	}
	mux.Handle("GET /metrics", reg.Handler())

	handler := mid.Chain(mux,
		mid.Recover(logger),
		mid.Logger(logger),
		mid.RequestID(),
		mid.CORS(cfg.CORSOrigin),
		mid.Throttle(cfg.RateRPS, cfg.RateBurst),
		mid.OTel("portside-api"),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// refresher rebuilds the reference-data snapshot from the catalog when a new
// dataset version is announced. The circuit breaker keeps a flapping Neo4j
// from being hammered by repeated rebuild attempts.
type refresher struct {
	store    *refdata.Store
	src      refdata.CatalogSource
	breaker  *resilience.Breaker
	logger   *slog.Logger
	swaps    *metrics.Counter
	failures *metrics.Counter
	version  *metrics.Gauge
}

func newRefresher(store *refdata.Store, src refdata.CatalogSource, reg *metrics.Registry, logger *slog.Logger) *refresher {
	return &refresher{
		store: store,
		src:   src,
		breaker: resilience.NewBreaker(resilience.BreakerOpts{
			FailThreshold: 3,
			Timeout:       30 * time.Second,
		}),
		logger:   logger,
		swaps:    reg.Counter("portside_snapshot_swaps_total", "Successful snapshot refreshes"),
		failures: reg.Counter("portside_snapshot_rebuild_failures_total", "Failed snapshot rebuilds"),
		version:  reg.Gauge("portside_dataset_version", "Published dataset version"),
	}
}

func (r *refresher) handle(ctx context.Context, ev refdata.UpdateEvent) {
	cur := r.store.Current()
	if ev.Version <= cur.Version() {
		r.logger.Info("ignoring stale dataset announcement", "announced", ev.Version, "current", cur.Version())
		return
	}
	if len(ev.Jurisdictions) == 0 {
		// Swapping without the announced regulation set would stamp the new
		// version onto the old fee schedules; keep serving the current one.
		r.failures.Inc()
		r.logger.Error("dataset announcement carries no regulations, refusing to swap", "announced", ev.Version)
		return
	}

	var next *refdata.Snapshot
	err := r.breaker.Call(ctx, func(ctx context.Context) error {
		var err error
		next, err = refdata.FromCatalog(ctx, r.src, ev.Jurisdictions, ev.Version, ev.AsOf)
		return err
	})
	if err != nil {
		r.failures.Inc()
		r.logger.Error("snapshot rebuild failed", "version", ev.Version, "err", err)
		return
	}
	if r.store.Swap(next) {
		r.swaps.Inc()
		r.version.Set(int64(ev.Version))
		r.logger.Info("snapshot swapped", "version", ev.Version, "as_of", ev.AsOf)
	} else {
		r.logger.Info("snapshot swap skipped, newer version already live", "announced", ev.Version)
	}
}

// newVehicleRepo builds the generic catalog-inspection repository over
// Vehicle nodes. It reads the same nodes the catalog store writes.
func newVehicleRepo(driver neo4j.DriverWithContext) *repo.Neo4jRepo[domain.CanonicalVehicle, string] {
	return repo.NewNeo4jRepo[domain.CanonicalVehicle, string](
		driver,
		"Vehicle",
		catalog.VehicleProps,
		catalog.VehicleFromRecord,
	)
}
