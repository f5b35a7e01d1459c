package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"despesas/internal/amqp"
	"despesas/internal/cli"
	apphttp "despesas/internal/http"
	applog "despesas/internal/log"
	"despesas/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(cli.BootstrapLogger(applog.ComponentApp))
	logger := cli.SetupLogger(cfg, applog.ComponentApp)

	logger.Info("Starting despesas",
		applog.FieldOperation, applog.OpStartup,
		"port", cfg.Port,
		"env", cfg.AppEnv)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)

	// Record events are optional; the API works without a broker.
	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without record events",
				applog.FieldError, err)
		} else {
			publisher = client
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled, record events will not be published")
	}

	svc := services.NewRecordService(repo, publisher)
	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		Logger:             logger,
		AllowedOrigins:     cfg.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		ExposeErrors:       cfg.IsDevelopment(),
	})

	ctx, stop := cli.GracefulShutdown(logger)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	err := g.Wait()
	if cerr := svc.Close(); cerr != nil {
		logger.Error("Failed to release resources", applog.FieldError, cerr)
	}
	if err != nil {
		logger.Error("Server error", applog.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully", applog.FieldOperation, applog.OpShutdown)
}
