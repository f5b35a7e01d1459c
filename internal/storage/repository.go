package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"despesas/internal/core"
	applog "despesas/internal/log"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("expense not found")
	// ErrConstraint wraps failures reported by a table constraint.
	ErrConstraint = errors.New("constraint violation")
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     func() time.Time { return time.Now().UTC() },
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// Create inserts rec and returns it with the assigned id and timestamps.
func (r *SQLiteRepository) Create(ctx context.Context, rec core.ExpenseRecord) (core.ExpenseRecord, error) {
	now := r.now().Format(time.RFC3339Nano)
	row, err := r.queries.CreateExpense(ctx, CreateExpenseParams{
		Period:              rec.Period.FirstDay(),
		CondominioCents:     core.ToCents(rec.Condominio),
		PlanoSaudeCents:     core.ToCents(rec.PlanoSaude),
		EletricidadeCents:   core.ToCents(rec.Eletricidade),
		GasCents:            core.ToCents(rec.Gas),
		InternetCents:       core.ToCents(rec.Internet),
		CelularCents:        core.ToCents(rec.Celular),
		CreditCardCents:     core.ToCents(rec.CreditCard),
		TotalCents:          core.ToCents(rec.Total),
		AmountToPayCents:    core.ToCents(rec.AmountToPay),
		AmountToPayExplicit: rec.AmountToPayExplicit,
		CreatedAt:           now,
		UpdatedAt:           now,
	})
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("create expense: %w", classify(err))
	}

	slog.DebugContext(ctx, "Expense saved to SQLite",
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldRecordID, row.ID,
		applog.FieldPeriod, row.Period,
		"total_cents", row.TotalCents)

	return row.toRecord()
}

// Get returns the record with the given id or ErrNotFound.
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (core.ExpenseRecord, error) {
	row, err := r.queries.GetExpense(ctx, id)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("get expense %d: %w", id, classify(err))
	}
	return row.toRecord()
}

// List returns every record, newest period first.
func (r *SQLiteRepository) List(ctx context.Context) ([]core.ExpenseRecord, error) {
	rows, err := r.queries.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", classify(err))
	}
	return toRecords(rows)
}

// ListByMonth returns the records whose period falls inside p.
func (r *SQLiteRepository) ListByMonth(ctx context.Context, p core.Period) ([]core.ExpenseRecord, error) {
	rows, err := r.queries.ListExpensesByPeriodRange(ctx, ListExpensesByPeriodRangeParams{
		From: p.FirstDay(),
		To:   p.LastDay(),
	})
	if err != nil {
		return nil, fmt.Errorf("list expenses for %s: %w", p, classify(err))
	}
	return toRecords(rows)
}

// Update overwrites every mutable column of rec.ID in a single statement.
func (r *SQLiteRepository) Update(ctx context.Context, rec core.ExpenseRecord) (core.ExpenseRecord, error) {
	row, err := r.queries.UpdateExpense(ctx, UpdateExpenseParams{
		ID:                  rec.ID,
		Period:              rec.Period.FirstDay(),
		CondominioCents:     core.ToCents(rec.Condominio),
		PlanoSaudeCents:     core.ToCents(rec.PlanoSaude),
		EletricidadeCents:   core.ToCents(rec.Eletricidade),
		GasCents:            core.ToCents(rec.Gas),
		InternetCents:       core.ToCents(rec.Internet),
		CelularCents:        core.ToCents(rec.Celular),
		CreditCardCents:     core.ToCents(rec.CreditCard),
		TotalCents:          core.ToCents(rec.Total),
		AmountToPayCents:    core.ToCents(rec.AmountToPay),
		AmountToPayExplicit: rec.AmountToPayExplicit,
		UpdatedAt:           r.now().Format(time.RFC3339Nano),
	})
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("update expense %d: %w", rec.ID, classify(err))
	}

	slog.DebugContext(ctx, "Expense updated in SQLite",
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldRecordID, row.ID,
		"total_cents", row.TotalCents)

	return row.toRecord()
}

// Delete removes the record with the given id or returns ErrNotFound.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteExpense(ctx, id)
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, classify(err))
	}
	if n == 0 {
		return fmt.Errorf("delete expense %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteAll empties the table. Ids already issued are still never reused.
func (r *SQLiteRepository) DeleteAll(ctx context.Context) (int64, error) {
	n, err := r.queries.DeleteAllExpenses(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete all expenses: %w", classify(err))
	}
	slog.WarnContext(ctx, "All expenses deleted",
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldCount, n)
	return n, nil
}

// classify maps driver errors onto the package sentinels.
func classify(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return fmt.Errorf("%w: %s", ErrConstraint, sqliteErr.Error())
	}
	return err
}

func (e Expense) toRecord() (core.ExpenseRecord, error) {
	period, err := core.ParseStoredPeriod(e.Period)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("expense %d: %w", e.ID, err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, e.CreatedAt)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("expense %d created_at: %w", e.ID, err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, e.UpdatedAt)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("expense %d updated_at: %w", e.ID, err)
	}

	return core.ExpenseRecord{
		ID:     e.ID,
		Period: period,
		Categories: core.Categories{
			Condominio:   core.FromCents(e.CondominioCents),
			PlanoSaude:   core.FromCents(e.PlanoSaudeCents),
			Eletricidade: core.FromCents(e.EletricidadeCents),
			Gas:          core.FromCents(e.GasCents),
			Internet:     core.FromCents(e.InternetCents),
			Celular:      core.FromCents(e.CelularCents),
			CreditCard:   core.FromCents(e.CreditCardCents),
		},
		Total:               core.FromCents(e.TotalCents),
		AmountToPay:         core.FromCents(e.AmountToPayCents),
		AmountToPayExplicit: e.AmountToPayExplicit,
		CreatedAt:           createdAt,
		UpdatedAt:           updatedAt,
	}, nil
}

func toRecords(rows []Expense) ([]core.ExpenseRecord, error) {
	records := make([]core.ExpenseRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
