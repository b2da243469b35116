package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"railists/internal/amqp"
	"railists/internal/cli"
	"railists/internal/log"
	"railists/internal/metrics"
	"railists/internal/services"
	"railists/internal/sheets"
	gsheet "railists/internal/sheets/google"
	"railists/internal/sheets/memory"
	"railists/internal/storage"
	"railists/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	bootstrap := cli.SetupLogger("info", os.Stdout, log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(bootstrap)
	logger := cli.SetupLogger(cfg.LogLevel, os.Stdout, log.ComponentWorker)

	logger.Info("Starting railists-worker", log.FieldOperation, log.OpStartup)
	metrics.Init()

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()
	if version, dirty, err := storage.SchemaVersion(cfg.SQLiteDBPath); err == nil {
		logger.Info("SQLite schema ready", "path", cfg.SQLiteDBPath, "version", version, "dirty", dirty)
	}

	// Without a spreadsheet the reports are kept in memory, which still
	// exercises the whole sync path and marks imports as synced.
	var writer sheets.ReportWriter
	if cfg.HasSheets() {
		client, err := gsheet.New(context.Background(), gsheet.Options{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			StatsSheet:      cfg.GoogleStatsSheetName,
			DepotSheet:      cfg.GoogleDepotSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err.Error())
			os.Exit(1)
		}
		writer = client
	} else {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, writing to memory")
		writer = memory.New()
	}

	processor := services.NewSyncProcessor(repo, writer, services.SyncProcessorConfig{
		PollInterval: cfg.SyncInterval,
		BatchSize:    cfg.SyncBatchSize,
	})
	syncWorker := worker.NewStatsSyncWorker(repo, processor, cfg.SyncBatchSize)

	metricsServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		logger.Info("Shutting down worker...")
		if err := processor.Stop(shutdownCtx); err != nil {
			logger.Warn("Sync processor stop failed", log.FieldError, err.Error())
		}
		_ = metricsServer.Shutdown(shutdownCtx)
	})

	// On startup, process any imports that were left pending
	logger.Info("Performing startup sync check...")
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", log.FieldError, err.Error())
		// Don't exit - continue with normal operation
	}

	// The poller is the backup for lost or missing AMQP messages
	if err := processor.Start(ctx); err != nil {
		logger.Error("Failed to start sync processor", log.FieldError, err.Error())
		os.Exit(1)
	}

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
			os.Exit(1)
		}
		defer amqpClient.Close()

		go func() {
			err := amqpClient.ConsumeCollectionImported(ctx, syncWorker.HandleImportMessage)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", log.FieldError, err.Error())
			}
		}()
	} else {
		logger.Info("Skipping AMQP message consumption - no AMQP_URL provided, relying on polling")
	}

	go func() {
		logger.Info("Serving worker metrics", "addr", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", log.FieldError, err.Error())
		}
	}()

	cli.WaitForShutdown(ctx, done)
}
