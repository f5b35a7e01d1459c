package main

import (
	"context"
	"flag"
	"os"
	"time"

	"despesas/internal/amqp"
	"despesas/internal/cli"
	"despesas/internal/core"
	applog "despesas/internal/log"
	"despesas/internal/services"
)

func main() {
	reset := flag.Bool("reset", false, "delete every existing record before seeding")
	flag.Parse()

	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(cli.BootstrapLogger(applog.ComponentSeed))
	logger := cli.SetupLogger(cfg, applog.ComponentSeed)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)

	if *reset {
		n, err := repo.DeleteAll(ctx)
		if err != nil {
			logger.Error("Failed to reset records", applog.FieldError, err)
			repo.Close()
			os.Exit(1)
		}
		logger.Info("Existing records deleted", applog.FieldCount, n)
	}

	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		if client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue); err != nil {
			logger.Warn("AMQP unavailable, seeding without record events", applog.FieldError, err)
		} else {
			publisher = client
		}
	}

	svc := services.NewRecordService(repo, publisher)
	defer svc.Close()

	recs, err := svc.Seed(ctx, services.SampleInputs())
	if err != nil {
		logger.Error("Seeding failed", applog.FieldError, err, applog.FieldCount, len(recs))
		svc.Close()
		os.Exit(1)
	}

	for _, rec := range recs {
		logger.Info("Seeded record",
			applog.FieldRecordID, rec.ID,
			applog.FieldPeriod, rec.Period.String(),
			applog.FieldTotal, core.FormatAmount(rec.Total))
	}
	logger.Info("Seeding completed", applog.FieldCount, len(recs))
}
