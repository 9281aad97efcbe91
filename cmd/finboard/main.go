package main

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os"
	"time"

	"finboard/internal/auth"
	"finboard/internal/backend"
	"finboard/internal/cache"
	"finboard/internal/cli"
	"finboard/internal/config"
	"finboard/internal/core"
	apphttp "finboard/internal/http"
	"finboard/internal/insight"
	"finboard/internal/log"
	"finboard/internal/services"

	"github.com/getsentry/sentry-go"
	"golang.org/x/sync/errgroup"
)

const (
	categoryCacheSize = 1000
	categoryCacheTTL  = 24 * time.Hour
	shutdownTimeout   = 30 * time.Second
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.MustConfig()
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server failed", log.FieldError, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.SentryEnvironment,
		}); err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
		logger.Info("Error reporting enabled", "environment", cfg.SentryEnvironment)
	}

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return fmt.Errorf("create backend: %w", err)
	}
	defer cli.RunCleanup(logger, shutdownTimeout, res.Cleanup)

	var advisor insight.Advisor
	if cfg.AdvisorEnabled() {
		g, err := insight.NewGemini(ctx, insight.GeminiConfig{
			APIKey:     cfg.GeminiAPIKey,
			Model:      cfg.GeminiModel,
			MaxRetries: cfg.LLMMaxRetries,
			Timeout:    cfg.InsightTimeout,
		}, logger)
		if err != nil {
			return fmt.Errorf("create advisor: %w", err)
		}
		advisor = g
		logger.Info("Advisor enabled", "model", cfg.GeminiModel)
	} else {
		logger.Info("Advisor disabled, using rule-based fallbacks")
	}

	rules, err := loadRules(cfg)
	if err != nil {
		return fmt.Errorf("load categorization rules: %w", err)
	}
	logger.Info("Categorization rules loaded", "count", rules.Len())

	resolver, err := auth.NewResolver(auth.Mode(cfg.AuthMode), res.Repository, cfg.SessionCacheTTL, logger)
	if err != nil {
		return err
	}

	categories := cache.NewLRUCache[core.Category](categoryCacheSize, categoryCacheTTL)
	janitor := cache.NewJanitor(logger)
	janitor.Register(categories)
	if c := resolver.Cache(); c != nil {
		janitor.Register(c)
	}
	janitorCtx, stopJanitor := context.WithCancel(ctx)
	janitor.Start(janitorCtx, time.Minute)
	defer func() {
		stopJanitor()
		janitor.Wait()
	}()

	clock := services.ClockIn(loc)
	publisher := res.Publisher()
	repo := res.Repository
	svc := apphttp.Services{
		Ledger:    services.NewLedgerService(repo, publisher, clock, logger),
		Budgets:   services.NewBudgetService(repo, publisher, clock, logger),
		Goals:     services.NewGoalService(repo, clock, logger),
		Dashboard: services.NewDashboardService(repo, clock, logger),
		Insights:  services.NewInsightService(repo, advisor, rules, categories, services.InsightConfig{Timeout: cfg.InsightTimeout}, clock, logger),
		Alerts:    services.NewAlertService(repo, cfg.BudgetAlertThreshold, clock, logger),
	}

	srv := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Location:           loc,
	}, svc, resolver, repo, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server starting",
			"addr", srv.Addr,
			"backend", cfg.DataBackend,
			"auth_mode", cfg.AuthMode,
			log.FieldOperation, log.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown failed", log.FieldError, err)
		}
		return nil
	})
	g.Go(func() error {
		srv.RunMaintenance(gctx)
		return nil
	})
	return g.Wait()
}

func loadRules(cfg *config.Config) (*insight.Rules, error) {
	if cfg.CategoryRulesFile != "" {
		return insight.LoadRulesFile(cfg.CategoryRulesFile)
	}
	return insight.DefaultRules()
}
