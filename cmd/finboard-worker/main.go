package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"finboard/internal/auth"
	"finboard/internal/backend"
	"finboard/internal/cli"
	"finboard/internal/config"
	"finboard/internal/log"
	"finboard/internal/services"
	"finboard/internal/sheets"
	"finboard/internal/sheets/google"
	"finboard/internal/worker"

	"golang.org/x/sync/errgroup"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.MustConfig()
	logger := cli.SetupLogger(cfg, log.ComponentWorker)

	if err := run(cfg, logger); err != nil {
		logger.Error("Worker failed", log.FieldError, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	backendCfg.RequireAMQP = true
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return fmt.Errorf("create backend: %w", err)
	}
	defer cli.RunCleanup(logger, 10*time.Second, res.Cleanup)

	var exporter sheets.TransactionExporter
	if cfg.ExportEnabled() {
		client, err := google.New(ctx, google.Config{
			SpreadsheetID: cfg.GoogleSpreadsheetID,
			SheetName:     cfg.GoogleSheetName,
		}, logger)
		if err != nil {
			return fmt.Errorf("create sheets exporter: %w", err)
		}
		if err := client.EnsureHeader(ctx); err != nil {
			return fmt.Errorf("prepare export sheet: %w", err)
		}
		exporter = client
		logger.Info("Sheet export enabled", "sheet", cfg.GoogleSheetName)
	}

	repo := res.Repository
	clock := services.ClockIn(loc)
	w := worker.New(
		services.NewAlertService(repo, cfg.BudgetAlertThreshold, clock, logger),
		repo,
		exporter,
		auth.NewSessions(repo, cfg.SessionTTL, nil),
		clock,
		worker.Config{SweepInterval: cfg.WorkerSweepInterval, Location: loc},
		logger,
	)

	logger.Info("Worker starting",
		"queue", cfg.AMQPQueue,
		"sweep_interval", cfg.WorkerSweepInterval.String(),
		log.FieldOperation, log.OpStartup)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := res.AMQP.Consume(gctx, w.HandleEvent)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		return w.RunSweeper(gctx)
	})
	return g.Wait()
}
