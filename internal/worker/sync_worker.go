package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"despesas/internal/amqp"
	applog "despesas/internal/log"
	"despesas/internal/sheets"
	"despesas/internal/storage"
)

const resyncTimeout = 2 * time.Minute

// Consumer delivers record events to handler until ctx ends.
// amqp.ConsumeWithReconnect fits once bound to its connection settings.
type Consumer func(ctx context.Context, handler amqp.Handler) error

// SyncWorker mirrors the record store into a spreadsheet. Record events keep
// single rows current; a scheduled full resync repairs anything missed.
type SyncWorker struct {
	source   sheets.RecordSource
	exporter sheets.RecordExporter
	logger   *applog.Logger

	// mu serializes writes so an event never interleaves with a resync.
	mu sync.Mutex
}

func NewSyncWorker(source sheets.RecordSource, exporter sheets.RecordExporter, logger *applog.Logger) *SyncWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &SyncWorker{
		source:   source,
		exporter: exporter,
		logger:   logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleRecordEvent applies one record event to the spreadsheet. Upserts
// re-read the record so the sheet always reflects the store, and a record
// deleted since the event was published is removed instead.
func (w *SyncWorker) HandleRecordEvent(ctx context.Context, msg *amqp.RecordEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	logger := w.logger.With(
		applog.FieldMessageID, msg.MessageID,
		applog.FieldEventType, msg.Type,
		applog.FieldRecordID, msg.ID)

	switch msg.Type {
	case amqp.EventUpsert:
		rec, err := w.source.Get(ctx, msg.ID)
		if errors.Is(err, storage.ErrNotFound) {
			logger.InfoContext(ctx, "Record no longer exists, removing from sheet")
			return w.remove(ctx, msg.ID)
		}
		if err != nil {
			return fmt.Errorf("load record %d: %w", msg.ID, err)
		}
		if err := w.exporter.Upsert(ctx, rec); err != nil {
			return fmt.Errorf("export record %d: %w", msg.ID, err)
		}
		logger.InfoContext(ctx, "Record exported", applog.FieldOperation, applog.OpSync, applog.FieldPeriod, rec.Period.String())
		return nil

	case amqp.EventDelete:
		if err := w.remove(ctx, msg.ID); err != nil {
			return err
		}
		logger.InfoContext(ctx, "Record removed from sheet", applog.FieldOperation, applog.OpDelete)
		return nil

	default:
		return fmt.Errorf("unsupported event type %q", msg.Type)
	}
}

func (w *SyncWorker) remove(ctx context.Context, id int64) error {
	if err := w.exporter.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove record %d: %w", id, err)
	}
	return nil
}

// Resync rewrites the whole sheet from the store and returns the number of
// records written.
func (w *SyncWorker) Resync(ctx context.Context) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	start := time.Now()
	recs, err := w.source.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list records: %w", err)
	}
	if err := w.exporter.ReplaceAll(ctx, recs); err != nil {
		return 0, fmt.Errorf("replace sheet contents: %w", err)
	}

	w.logger.InfoContext(ctx, "Full resync completed",
		applog.FieldOperation, applog.OpResync,
		applog.FieldCount, len(recs),
		applog.FieldDuration, time.Since(start).Milliseconds())
	return len(recs), nil
}

// StartSchedule runs Resync on the cron schedule spec until the returned
// cron is stopped. Each run is bounded by resyncTimeout and derives from ctx.
func (w *SyncWorker) StartSchedule(ctx context.Context, spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		runCtx, cancel := context.WithTimeout(ctx, resyncTimeout)
		defer cancel()
		if _, err := w.Resync(runCtx); err != nil {
			w.logger.ErrorContext(runCtx, "Scheduled resync failed",
				applog.FieldOperation, applog.OpResync,
				applog.FieldError, err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule resync %q: %w", spec, err)
	}

	c.Start()
	w.logger.InfoContext(ctx, "Resync scheduled", "schedule", spec)
	return c, nil
}

// Run resyncs once, starts the schedule and consumes events until ctx is
// cancelled or consume fails. A nil consume runs the schedule alone.
func (w *SyncWorker) Run(ctx context.Context, schedule string, consume Consumer) error {
	if _, err := w.Resync(ctx); err != nil {
		// The schedule retries later.
		w.logger.ErrorContext(ctx, "Startup resync failed",
			applog.FieldOperation, applog.OpResync,
			applog.FieldError, err)
	}

	c, err := w.StartSchedule(ctx, schedule)
	if err != nil {
		return err
	}
	defer func() { <-c.Stop().Done() }()

	g, gctx := errgroup.WithContext(ctx)
	if consume != nil {
		g.Go(func() error {
			return consume(gctx, w.HandleRecordEvent)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
