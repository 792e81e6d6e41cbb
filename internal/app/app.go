// Package app wires configuration into the chat pipeline and its collaborators.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"mira/internal/config"
	"mira/internal/handler"
	"mira/internal/repository"
	"mira/internal/service"
)

// App holds the long-lived components shared by the server and the CLI
type App struct {
	Config   *config.Config
	Catalog  *repository.Catalog
	Chat     *service.ChatService
	Provider service.Provider // nil when lexical-only

	closers []func() error
}

// New builds the catalog, provider and pipeline described by cfg. The
// catalog itself is loaded lazily on first use.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	tuning, err := config.LoadTuning(cfg.TuningFile)
	if err != nil {
		return nil, err
	}

	source, err := a.newSource()
	if err != nil {
		return nil, err
	}
	a.Catalog = repository.NewCatalog(source)

	provider, err := NewProvider(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Provider = provider

	a.Chat = service.NewChatService(service.ChatServiceOptions{
		Provider:        provider,
		Catalog:         a.Catalog,
		Filter:          service.NewCatalogFilterFromTuning(tuning),
		Ranker:          service.NewRanker(service.DefaultRankWeights().WithTuning(tuning)),
		ExtractTimeout:  cfg.AI.ExtractTimeout,
		GenerateTimeout: cfg.AI.GenerateTimeout,
		HistoryWindow:   cfg.AI.HistoryWindow,
	})

	return a, nil
}

func (a *App) newSource() (repository.Source, error) {
	switch a.Config.Catalog.Source {
	case config.CatalogSourcePostgres:
		repo, err := repository.NewPostgresRepository(
			a.Config.GetPostgreSQLDSN(),
			a.Config.PostgreSQL.MaxConnections,
			a.Config.PostgreSQL.MaxIdleConnections,
		)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, repo.Close)
		log.Info().Msg("catalog source: postgres")
		return repo, nil
	case config.CatalogSourceJSON, "":
		log.Info().Str("dir", a.Config.Catalog.DataDir).Msg("catalog source: json files")
		return repository.NewJSONFileSource(a.Config.Catalog.DataDir), nil
	default:
		return nil, fmt.Errorf("unknown CATALOG_SOURCE %q", a.Config.Catalog.Source)
	}
}

// NewProvider resolves the configured hosted provider. Lexical selection
// yields nil. A hosted provider without credentials is returned anyway and
// reports itself unavailable, so every call falls through to the lexical tier.
func NewProvider(ctx context.Context, cfg *config.Config) (service.Provider, error) {
	kind := service.ParseProviderKind(cfg.AI.Provider)

	var provider service.Provider
	switch kind {
	case service.ProviderOpenAI:
		provider = service.NewOpenAIProvider(service.NewOpenAIClient(&cfg.OpenAI), &cfg.OpenAI)
	case service.ProviderGemini:
		gemini, err := service.NewGeminiProvider(ctx, &cfg.Gemini)
		if err != nil {
			return nil, err
		}
		provider = gemini
	default:
		log.Info().Msg("extraction provider: lexical")
		return nil, nil
	}

	if !provider.Available() {
		log.Warn().Str("provider", provider.Name()).Msg("provider selected but no API key set, using lexical extraction")
	} else {
		log.Info().Str("provider", provider.Name()).Msg("extraction provider ready")
	}
	return provider, nil
}

// NewRateLimiter returns a Redis-backed limiter when REDIS_ADDR is set and
// reachable, and an in-process one otherwise.
func NewRateLimiter(ctx context.Context, cfg config.RateLimitConfig) handler.RateLimiter {
	if cfg.RedisAddr == "" {
		return handler.NewMemoryRateLimiter(cfg.Requests, cfg.Window)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, rate limiting in memory")
		_ = client.Close()
		return handler.NewMemoryRateLimiter(cfg.Requests, cfg.Window)
	}

	log.Info().Str("addr", cfg.RedisAddr).Msg("rate limiting via redis")
	return handler.NewRedisRateLimiter(client, cfg.Requests, cfg.Window)
}

// Close releases database connections
func (a *App) Close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			log.Warn().Err(err).Msg("close failed")
		}
	}
	a.closers = nil
}
