package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bistsignal/backend/internal/api"
	"github.com/bistsignal/backend/internal/brain"
	"github.com/bistsignal/backend/internal/contracts"
	"github.com/bistsignal/backend/internal/external/tcmb"
	"github.com/bistsignal/backend/internal/external/yahoo"
	"github.com/bistsignal/backend/internal/metrics"
	"github.com/bistsignal/backend/internal/s0_data"
	"github.com/bistsignal/backend/internal/strategyconfig"
	"github.com/bistsignal/backend/pkg/config"
	"github.com/bistsignal/backend/pkg/database"
	"github.com/bistsignal/backend/pkg/httputil"
	"github.com/bistsignal/backend/pkg/logger"
	"github.com/bistsignal/backend/pkg/redis"
)

// app holds the wired collaborators shared by the commands
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	redis     *redis.Client
	cache     s0_data.Cache        // Redis, or in-process when Redis is disabled
	memory    *s0_data.MemoryCache // set when Redis is disabled
	db        *database.DB         // nil when DATABASE_URL is empty
	metrics   *metrics.Recorder    // nil when METRICS_ENABLED=false
	strategy  *strategyconfig.Config
	yahoo     *yahoo.Client
	tcmb      *tcmb.Client
	prices    *s0_data.PriceService
	snapshots *s0_data.SnapshotFileStore
	collector *s0_data.MacroCollector
	brain     *brain.Orchestrator
}

// loadBase loads the environment config and creates the logger
func loadBase() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if analysisConfigPath != "" {
		cfg.AnalysisConfig = analysisConfigPath
	}
	return cfg, logger.New(cfg), nil
}

// newApp wires every collaborator
func newApp() (*app, error) {
	// 1. Load config
	cfg, log, err := loadBase()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log}

	// 2. Load the analysis config
	strategy, found, err := strategyconfig.LoadOrDefault(cfg.AnalysisConfig)
	if err != nil {
		return nil, err
	}
	if !found {
		log.WithField("path", cfg.AnalysisConfig).Warn("Analysis config not found, using defaults")
	}
	a.strategy = strategy

	// 3. Connect to Redis
	a.redis, err = redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	if a.redis.Enabled() {
		a.cache = redis.NewCache(a.redis, "bist")
	} else {
		a.memory = s0_data.NewMemoryCache(log)
		a.cache = a.memory
	}

	// 4. Connect to database (optional)
	var store s0_data.SeriesStore
	if cfg.Database.Enabled() {
		a.db, err = database.New(cfg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.db.Migrate(ctx); err != nil {
			a.Close()
			return nil, err
		}
		store = s0_data.NewPriceRepository(a.db.Pool)
	} else {
		log.Debug("DATABASE_URL not set, price history is not persisted")
	}

	// 5. Metrics
	var recorder contracts.MetricsRecorder
	if cfg.MetricsEnabled {
		a.metrics = metrics.New()
		recorder = a.metrics
	}

	// 6. Create HTTP clients; price retries live in the price service
	yahooHTTP := httputil.NewWithTimeout(cfg, log, cfg.Yahoo.Timeout).
		DisableRetry().
		WithCircuitBreaker("yahoo", 5, 30*time.Second).
		WithHeader("User-Agent", cfg.Yahoo.UserAgent)
	tcmbHTTP := httputil.NewWithTimeout(cfg, log, cfg.TCMB.Timeout).
		WithCircuitBreaker("tcmb", 3, time.Minute).
		WithHeader("User-Agent", cfg.Yahoo.UserAgent)
	if a.redis.Enabled() {
		limiter := redis.NewRateLimiter(a.redis, "bist:ratelimit")
		yahooHTTP.WithRateLimiter(limiter, redis.YahooRateLimit)
		tcmbHTTP.WithRateLimiter(limiter, redis.TCMBRateLimit)
	}

	// 7. Create external API clients
	a.yahoo = yahoo.NewClient(yahooHTTP, cfg.Yahoo.BaseURL, log)
	a.tcmb = tcmb.NewClient(tcmbHTTP, cfg.TCMB.URL, log)

	// 8. Create data services
	a.prices = s0_data.NewPriceService(a.yahoo, store, a.cache, cfg.Fetch, log)
	a.snapshots = s0_data.NewSnapshotFileStore(cfg.MacroDataPath, a.cache, log)
	a.collector = s0_data.NewMacroCollector(a.yahoo, a.snapshots, log)

	// 9. Create orchestrator
	a.brain, err = brain.NewOrchestrator(a.prices, a.snapshots, strategy, recorder, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	if a.db != nil {
		a.brain.WithReportSink(s0_data.NewAnalysisRepository(a.db.Pool))
	}

	return a, nil
}

// Close releases connections
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.WithError(err).Warn("Failed to close redis")
		}
	}
}

// healthChecks returns the dependency probes used by /health and `status`
func (a *app) healthChecks() map[string]api.HealthCheck {
	checks := map[string]api.HealthCheck{
		"macro_snapshot": func(ctx context.Context) error {
			_, err := a.snapshots.Load(ctx)
			return err
		},
	}
	if a.redis.Enabled() {
		checks["redis"] = a.redis.Ping
	}
	if a.db != nil {
		checks["database"] = a.db.Ping
	}
	return checks
}

// errUsage marks invalid command input
var errUsage = errors.New("invalid usage")
