package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/staysearch/internal/config"
	"github.com/kailas-cloud/staysearch/internal/dataset"
	dbRedis "github.com/kailas-cloud/staysearch/internal/db/redis"
	"github.com/kailas-cloud/staysearch/internal/domain"
	logpkg "github.com/kailas-cloud/staysearch/internal/logger"
	"github.com/kailas-cloud/staysearch/internal/metrics"
	"github.com/kailas-cloud/staysearch/internal/repository/embcache"
	listingrepo "github.com/kailas-cloud/staysearch/internal/repository/listing"
	schemarepo "github.com/kailas-cloud/staysearch/internal/repository/schema"
	searchrepo "github.com/kailas-cloud/staysearch/internal/repository/search"
	chiTransport "github.com/kailas-cloud/staysearch/internal/transport/chi"
	"github.com/kailas-cloud/staysearch/internal/transport/console"
	openaiEmb "github.com/kailas-cloud/staysearch/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/staysearch/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/staysearch/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/staysearch/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/staysearch/internal/usecase/search"
	"github.com/kailas-cloud/staysearch/internal/version"
)

const opsShutdownTimeout = 5 * time.Second

// embedder is the assembled embedding chain.
type embedder interface {
	domain.Embedder
	domain.HealthChecker
}

// app is the composition root shared by all commands. Everything is built
// once at startup and used read-only afterwards.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	store  *dbRedis.Store
	index  domain.IndexConfig

	schema   *schemarepo.Repo
	listings *listingrepo.Repo
	embedder embedder
}

// bootstrap loads configuration, builds the logger and waits for the store.
func bootstrap(ctx context.Context, env string) (*app, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	logger.Info("Starting staysearch",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.String("db_addr", cfg.Database.Addr()),
		zap.String("index", cfg.Index.Name),
	)

	metrics.Register()

	logger.Info("Connecting to Redis...")
	store, err := dbRedis.Connect(ctx, dbRedis.Config{
		Addrs:    []string{cfg.Database.Addr()},
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	}, cfg.Database.RetryInterval(), func(attempt int, err error) {
		logger.Info("Waiting for Redis to be ready...",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	})
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("connect to store: %w", err)
	}
	logger.Info("Connected to Redis")

	a := newApp(cfg, logger, store)
	a.embedder = a.buildEmbedder()
	return a, nil
}

// newApp wires the repositories over a connected store.
func newApp(cfg config.Config, logger *zap.Logger, store *dbRedis.Store) *app {
	index := domain.IndexConfig{
		Name:               cfg.Index.Name,
		KeyPrefix:          cfg.Index.KeyPrefix,
		HNSWM:              cfg.Index.HNSWM,
		HNSWEFConstruction: cfg.Index.HNSWEFConstruct,
	}
	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		index:    index,
		schema:   schemarepo.New(store, index),
		listings: listingrepo.New(store, index),
	}
}

func (a *app) close() {
	a.store.Close()
	_ = a.logger.Sync()
}

// buildEmbedder assembles the decorator chain:
// OpenAI -> Cached -> Instrumented -> Normalizing.
// Normalizing is outermost so the cache key sees the normalized text.
func (a *app) buildEmbedder() embedder {
	ec := a.cfg.Embedding

	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     ec.APIKey,
		BaseURL:    ec.BaseURL,
		Model:      ec.Model,
		Dimensions: ec.Dimensions,
		Provider:   ec.Provider,
		Timeout:    ec.Timeout(),
		MaxRetries: ec.MaxRetries,
		Logger:     a.logger,
	})

	var inner embedder = base
	if ttl := ec.CacheTTL(); ttl > 0 {
		inner = embcache.New(base, a.store, embcache.Options{
			Model:      ec.Model,
			Dimensions: ec.Dimensions,
			TTL:        ttl,
		}, metrics.EmbeddingCacheTotal, a.logger)
	}

	instrumented := embeddinguc.NewInstrumentedEmbedder(
		inner, ec.Provider, ec.Model, ec.Dimensions, a.logger,
	)

	a.logger.Info("Embedder created",
		zap.String("provider", ec.Provider),
		zap.String("model", ec.Model),
		zap.Int("dimensions", ec.Dimensions),
		zap.Duration("cache_ttl", ec.CacheTTL()),
	)
	return domain.NewNormalizingEmbedder(instrumented)
}

func (a *app) healthService() *healthuc.Service {
	return healthuc.New(a.store, a.schema, a.embedder)
}

func (a *app) ingestService() *ingestuc.Service {
	return ingestuc.New(a.listings, a.schema, a.logger).
		WithProgressEvery(a.cfg.Dataset.ProgressEvery)
}

func (a *app) searchService() *searchuc.Service {
	return searchuc.New(searchrepo.New(a.store, a.index), a.embedder)
}

// setup creates the index if needed.
func (a *app) setup(ctx context.Context) error {
	return a.ingestService().Setup(ctx)
}

// ingest creates the index and loads the dataset. A store that already
// holds data is left alone without touching the dataset file, and an empty
// dataset path skips loading.
func (a *app) ingest(ctx context.Context) error {
	svc := a.ingestService()
	if err := svc.Setup(ctx); err != nil {
		return err
	}

	loaded, err := svc.Loaded(ctx)
	if err != nil || loaded {
		return err
	}

	path := a.cfg.Dataset.Path
	if path == "" {
		a.logger.Warn("No dataset configured, skipping data load")
		return nil
	}

	src, err := dataset.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	summary, err := svc.Load(ctx, src)
	if err != nil {
		return fmt.Errorf("load dataset %s: %w", path, err)
	}

	for _, f := range summary.Failures {
		a.logger.Warn("Listing not loaded", zap.String("id", f.ID()), zap.Error(f.Err()))
	}
	return nil
}

// reset drops the index. A missing index is not an error. With deleteDocs
// the listing hashes and the cached query embeddings are removed too, so the
// next ingest finds an empty store.
func (a *app) reset(ctx context.Context, deleteDocs bool) error {
	err := a.schema.Drop(ctx, deleteDocs)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.logger.Info("Index does not exist", zap.String("index", a.index.Name))
	case err != nil:
		return fmt.Errorf("drop index: %w", err)
	default:
		a.logger.Info("Index dropped",
			zap.String("index", a.index.Name),
			zap.Bool("delete_docs", deleteDocs),
		)
	}
	if !deleteDocs {
		return nil
	}

	n, err := embcache.Purge(ctx, a.store)
	if err != nil {
		return fmt.Errorf("clear embedding cache: %w", err)
	}
	a.logger.Info("Embedding cache cleared", zap.Int64("keys", n))
	return nil
}

// show prints one stored listing. Reading it back also checks that the FLAT
// and HNSW fields hold the same vector.
func (a *app) show(ctx context.Context, id string, out io.Writer) error {
	l, err := a.listings.Get(ctx, id)
	if err != nil {
		return err
	}
	console.NewPrinter(out).Listing(&l)
	return nil
}

// startOps starts the /metrics and /healthz listener when configured and
// returns the func that stops it.
func (a *app) startOps() (func(), error) {
	if a.cfg.Metrics.Addr == "" {
		return func() {}, nil
	}

	router := chiTransport.NewRouter(chiTransport.RouterConfig{
		Health: a.healthService(),
		Tokens: []string{a.cfg.Metrics.Token},
		Logger: a.logger,
	})
	srv := chiTransport.NewServer(a.cfg.Metrics.Addr, router, a.logger)
	if err := srv.Start(); err != nil {
		return nil, fmt.Errorf("start ops server: %w", err)
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), opsShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			a.logger.Error("Error during ops server shutdown", zap.Error(err))
		}
	}, nil
}
