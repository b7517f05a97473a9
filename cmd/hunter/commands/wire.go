package commands

import (
	"context"
	"fmt"

	"github.com/hunterlabs/hunter/internal/contracts"
	"github.com/hunterlabs/hunter/internal/ingest"
	"github.com/hunterlabs/hunter/internal/labeling"
	"github.com/hunterlabs/hunter/internal/pipeline"
	"github.com/hunterlabs/hunter/internal/report"
	"github.com/hunterlabs/hunter/internal/runconfig"
	"github.com/hunterlabs/hunter/internal/saturation"
	"github.com/hunterlabs/hunter/pkg/config"
	"github.com/hunterlabs/hunter/pkg/database"
	"github.com/hunterlabs/hunter/pkg/httputil"
	"github.com/hunterlabs/hunter/pkg/logger"
	"github.com/hunterlabs/hunter/pkg/redis"
)

// app holds everything a command needs after wiring.
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	db     *database.DB
	redis  *redis.Client
	repo   *report.Repository
	runCfg *runconfig.Config
	hash   string

	orchestrator *pipeline.Orchestrator
}

// Close releases held connections.
func (a *app) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

// newApp wires the full pipeline from environment config and the optional
// run config YAML. Demo mode swaps live connectors for fixtures and the LLM
// for the template labeler, so it needs no credentials and no network.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	runCfg := runconfig.Default()
	if runConfigFile != "" {
		runCfg, err = runconfig.Load(runConfigFile)
		if err != nil {
			return nil, fmt.Errorf("load run config: %w", err)
		}
	}
	hash, err := runconfig.Hash(runCfg)
	if err != nil {
		return nil, fmt.Errorf("hash run config: %w", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	repo := report.NewRepository(db.Pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		redisClient.Close()
		db.Close()
		return nil, err
	}

	httpClient := httputil.New(cfg, log)

	var ingestor contracts.SignalIngestor
	mode := "live"
	if cfg.DemoMode {
		mode = "demo"
		ingestor = ingest.NewFixtureIngestor(cfg.FixturesDir, log)
	} else {
		var cache *redis.Cache
		if redisClient.Enabled() {
			cache = redis.NewCache(redisClient, "hunter")
		}
		ingestor = ingest.NewLiveIngestor(
			ingest.NewOnchainIngestor(cfg, httpClient, log),
			ingest.NewDevIngestor(cfg, cache, log),
			ingest.NewSocialIngestor(cfg, httpClient, log),
			log,
		)
	}

	var labeler contracts.Labeler
	if cfg.HasLLM() {
		labeler = labeling.NewLLMLabeler(labeling.NewClient(cfg, httpClient, log), log)
	} else {
		labeler = labeling.NewTemplateLabeler()
	}

	corpus := saturation.NewFileCorpusLoader(cfg.FixturesDir, log)

	orchestrator := pipeline.NewOrchestrator(
		ingestor, labeler, corpus, repo,
		runCfg, hash, mode, log,
	)

	return &app{
		cfg:          cfg,
		log:          log,
		db:           db,
		redis:        redisClient,
		repo:         repo,
		runCfg:       runCfg,
		hash:         hash,
		orchestrator: orchestrator,
	}, nil
}
