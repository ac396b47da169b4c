// Package server exposes the concierge over HTTP: the customer chat and
// itinerary endpoints, the admin surfaces, health and metrics. It also owns
// top-level dependency wiring so the binary degrades gracefully when a
// provider or database is not configured.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wanderplan/concierge/config"
	"github.com/wanderplan/concierge/internal/notify"
	"github.com/wanderplan/concierge/internal/rag"
	"github.com/wanderplan/concierge/internal/store"
	"github.com/wanderplan/concierge/internal/trip"
	"github.com/wanderplan/concierge/models"
	"github.com/wanderplan/concierge/provider"
	openai_provider "github.com/wanderplan/concierge/provider/openai"
	"github.com/wanderplan/concierge/session"
	"github.com/wanderplan/concierge/session/inmemory"
	redis_session "github.com/wanderplan/concierge/session/redis"
	"github.com/wanderplan/concierge/tools/embedding"
	web_search "github.com/wanderplan/concierge/tools/web_search"
)

func Run(cfg *config.Config) error {
	e := newEcho(cfg.General.Debug)
	logger := log.New(log.Writer(), "[SERVER] ", log.LstdFlags)

	// Startup work (migrations, ping, catalog indexing) shares one deadline.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.General.DefaultTimeout)
	defer cancel()

	// Booking persistence: Postgres when configured, otherwise in-process.
	var backend store.Backend
	if cfg.Storage.Postgres.Enabled() {
		dsn := cfg.Storage.Postgres.DSN()
		if err := store.Migrate("file://migrations", dsn, "up", 0); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		st, err := store.NewWithDSN(ctx, dsn)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		backend = st
	} else {
		logger.Printf("postgres not configured, bookings held in memory")
		backend = store.NewMemory()
	}

	// Live sessions: Redis when selected, otherwise in-process.
	var sessions session.Store
	switch session.StoreType(cfg.Storage.Sessions.Backend) {
	case session.RedisStore:
		sessions = redis_session.NewStore(cfg.Storage.Redis.Addr, cfg.Storage.Redis.Password, cfg.Storage.Redis.DB)
	case session.InMemoryStore, "":
		sessions = inmemory.NewStore()
	default:
		return session.ErrUnsupportedStore(session.StoreType(cfg.Storage.Sessions.Backend))
	}

	// Model provider; nil means the deterministic reply path.
	prov := NewProviderFromConfig(cfg)
	if prov == nil {
		logger.Printf("llm provider not configured, replies are catalog-only")
	}

	// Retrieval engine depends on embeddings, so it follows the provider.
	var engine *rag.Engine
	if prov != nil {
		eng, err := NewEngineFromConfig(cfg, prov)
		if err != nil {
			return fmt.Errorf("rag engine: %w", err)
		}
		if err := eng.IndexCatalog(ctx); err != nil {
			// A provider outage at startup degrades retrieval; anything
			// else is a broken index and the process should not serve.
			if !errors.Is(err, models.ErrRetrievalUnavailable) {
				return fmt.Errorf("index catalog: %w", err)
			}
			logger.Printf("catalog indexing failed, retrieval degraded: %v", err)
		}
		engine = eng
	}

	var searcher web_search.WebSearcher
	if cfg.WebSearch.Enabled() {
		ws, err := web_search.NewWebSearcher(web_search.Provider(cfg.WebSearch.Provider), cfg.WebSearch.APIKey)
		if err != nil {
			return fmt.Errorf("web search: %w", err)
		}
		searcher = ws
	}

	manager := trip.NewManager(sessions, cfg.Trip.DefaultNights, nil)
	notifier := notify.NewNotifier(backend, notifyIndexer(engine), nil)

	ch := &ChatHandler{
		Manager:       manager,
		Provider:      prov,
		Engine:        engine,
		Searcher:      searcher,
		Notifier:      notifier,
		WebMaxResults: cfg.WebSearch.MaxResults,
		Logger:        log.New(log.Writer(), "[CHAT] ", log.LstdFlags),
	}
	ah := &AdminHandler{
		Backend: backend,
		Manager: manager,
		Engine:  engine,
	}

	api := e.Group("/api")
	ch.Register(api)
	ah.Register(api.Group("/admin"))

	addr := cfg.Server.Address
	if addr == "" {
		addr = ":8000"
	}
	logger.Printf("listening on %s", addr)
	return e.Start(addr)
}

// NewProviderFromConfig builds the model provider from config, falling back
// to the OPENAI_API_KEY environment variable. nil means no provider.
func NewProviderFromConfig(cfg *config.Config) provider.Provider {
	if cfg.Providers.OpenAI.Enabled() {
		return openai_provider.NewClient(
			cfg.Providers.OpenAI.APIKey,
			cfg.Providers.OpenAI.BaseURL,
			cfg.Providers.OpenAI.ChatModel,
			cfg.Providers.OpenAI.EmbeddingModel,
			cfg.Providers.OpenAI.Temperature,
			cfg.Providers.OpenAI.MaxTokens,
			cfg.Providers.OpenAI.Timeout,
		)
	}
	if p, err := provider.NewProvider(provider.OpenAI); err == nil {
		return p
	}
	return nil
}

// NewEngineFromConfig builds a retrieval engine over the provider's
// embeddings with the configured retrieval options.
func NewEngineFromConfig(cfg *config.Config, prov provider.Provider) (*rag.Engine, error) {
	emb := embedding.NewEmbedding(prov)
	return rag.NewEngine(emb, nil, rag.Options{
		TopK:                cfg.Retrieval.TopK,
		ConversationTopK:    cfg.Retrieval.ConversationTopK,
		SimilarityThreshold: cfg.Retrieval.SimilarityThreshold,
	}, nil)
}

// notifyIndexer adapts the engine to the notifier interface without handing
// it a typed-nil when retrieval is disabled.
func notifyIndexer(engine *rag.Engine) notify.ConversationIndexer {
	if engine == nil {
		return nil
	}
	return engine
}

func newEcho(debug bool) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Debug = debug
	e.Use(middleware.Recover())

	// Unified HTTP error handler with structured JSON and logging.
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Cookie"},
		AllowCredentials: true,
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	return e
}
