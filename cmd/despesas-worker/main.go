package main

import (
	"context"
	"os"

	"despesas/internal/amqp"
	"despesas/internal/cli"
	applog "despesas/internal/log"
	"despesas/internal/sheets"
	gsheet "despesas/internal/sheets/google"
	"despesas/internal/sheets/memory"
	"despesas/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(cli.BootstrapLogger(applog.ComponentWorker))
	logger := cli.SetupLogger(cfg, applog.ComponentWorker)

	logger.Info("Starting despesas-worker", applog.FieldOperation, applog.OpStartup)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	var exporter sheets.RecordExporter
	if cfg.GoogleSpreadsheetID != "" {
		exp, err := gsheet.New(context.Background(), gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets exporter", applog.FieldError, err)
			os.Exit(1)
		}
		exporter = exp
		logger.Info("Google Sheets exporter initialized",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet", cfg.GoogleSheetName)
	} else {
		exporter = memory.New()
		logger.Warn("GOOGLE_SPREADSHEET_ID not set, records are mirrored in memory only")
	}

	var consume worker.Consumer
	if cfg.AMQPURL != "" {
		consume = func(ctx context.Context, handler amqp.Handler) error {
			return amqp.ConsumeWithReconnect(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, handler)
		}
	} else {
		logger.Info("AMQP disabled, relying on scheduled resync only", "schedule", cfg.SyncSchedule)
	}

	ctx, stop := cli.GracefulShutdown(logger)
	defer stop()

	w := worker.NewSyncWorker(repo, exporter, logger)
	if err := w.Run(ctx, cfg.SyncSchedule, consume); err != nil {
		logger.Error("Worker stopped with error", applog.FieldError, err)
		repo.Close()
		os.Exit(1)
	}

	logger.Info("Worker shutdown complete", applog.FieldOperation, applog.OpShutdown)
}
