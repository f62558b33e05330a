package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"trip-itinerary-ai/internal/config"
	"trip-itinerary-ai/internal/domain/ports/adapter"
	"trip-itinerary-ai/internal/domain/ports/repository"
	"trip-itinerary-ai/internal/generation"
	aiAdapters "trip-itinerary-ai/internal/infra/adapters/ai"
	pg "trip-itinerary-ai/internal/infra/db/postgres"
	"trip-itinerary-ai/internal/infra/logging"
	red "trip-itinerary-ai/internal/infra/redis"
	"trip-itinerary-ai/internal/usecase"
)

// app holds the wired dependencies shared by every command.
type app struct {
	cfg    *config.Config
	log    *zerolog.Logger
	pool   *pgxpool.Pool
	genUC  usecase.GenerationUseCase
	closer []func()
}

func (a *app) Close() {
	for i := len(a.closer) - 1; i >= 0; i-- {
		a.closer[i]()
	}
}

func loadConfig(f *rootFlags) (*config.Config, *zerolog.Logger, error) {
	cfg, err := config.LoadConfig(f.configPath, f.dev)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}
	return cfg, logger, nil
}

func buildApp(ctx context.Context, f *rootFlags) (*app, error) {
	cfg, logger, err := loadConfig(f)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: logger}

	// ---- Postgres ----
	pool, err := pg.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	a.pool = pool
	a.closer = append(a.closer, pool.Close)

	// ---- Repositories ----
	drafts := pg.NewDraftRepo(pool)
	var jobs repository.GenerationJobRepository = pg.NewGenerationJobRepo(pool)
	audits := pg.NewAuditRepo(pool)
	tm := pg.NewTxManager(pool)

	// ---- Redis (optional): admission lock + terminal job cache ----
	var locker repository.Locker
	if cfg.Redis.URL != "" {
		rc, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		a.closer = append(a.closer, func() { _ = rc.Close() })
		locker = red.NewLocker(rc)
		jobs = pg.NewGenerationJobRepoCacheDecorator(jobs, rc, cfg.Redis.TTL, logger)
		logger.Info().Msg("redis enabled: admission lock and job cache")
	}

	// ---- AI provider ----
	provider, err := buildProvider(ctx, cfg.AI, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	// ---- Use case ----
	a.genUC = usecase.NewGenerationUseCase(drafts, jobs, audits, tm, provider, locker,
		usecase.GenerationOptions{
			Pipeline: generation.Config{
				Model:       cfg.AI.DefaultModel,
				Temperature: *cfg.AI.Temperature,
				Backoff:     generation.Backoff(cfg.Generation.Backoff),
			},
			Async: cfg.Generation.Async(),
			Dev:   cfg.Runtime.Dev,
		},
		logger,
	)
	return a, nil
}

func buildProvider(ctx context.Context, cfg config.AIConfig, logger *zerolog.Logger) (adapter.Provider, error) {
	if strings.EqualFold(cfg.Provider, aiAdapters.ProviderNoop) {
		logger.Warn().Msg("AI adapter: noop (canned itineraries)")
		return aiAdapters.NewNoopAIAdapter(logger), nil
	}

	byProvider := map[string]adapter.Provider{}
	defaultProvider := ""
	if cfg.OpenAIKey != "" {
		oa, err := aiAdapters.NewOpenAIAdapter(cfg.OpenAIKey, cfg.DefaultModel, cfg.OpenAIBaseURL, cfg.RequestTimeout)
		if err != nil {
			return nil, fmt.Errorf("openai adapter: %w", err)
		}
		byProvider[aiAdapters.ProviderOpenAI] = oa
		defaultProvider = aiAdapters.ProviderOpenAI
		logger.Info().Str("base", cfg.OpenAIBaseURL).Msg("AI adapter: OpenAI")
	}
	if cfg.GeminiKey != "" {
		gm, err := aiAdapters.NewGeminiAdapter(ctx, cfg.GeminiKey, cfg.GeminiURL, "", cfg.RequestTimeout)
		if err != nil {
			return nil, fmt.Errorf("gemini adapter: %w", err)
		}
		byProvider[aiAdapters.ProviderGemini] = gm
		if defaultProvider == "" {
			defaultProvider = aiAdapters.ProviderGemini
		}
		logger.Info().Str("base", cfg.GeminiURL).Msg("AI adapter: Gemini")
	}
	if len(byProvider) == 0 {
		return nil, fmt.Errorf("no AI provider configured")
	}

	multi := aiAdapters.NewMultiAIAdapter(defaultProvider, byProvider, cfg.ModelProviders)
	return aiAdapters.NewLimitedAI(multi, cfg.ConcurrentLimit), nil
}
