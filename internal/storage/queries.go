package storage

import (
	"context"
)

const expenseColumns = `id, period, condominio_cents, plano_saude_cents, eletricidade_cents,
	gas_cents, internet_cents, celular_cents, credit_card_cents, total_cents,
	amount_to_pay_cents, amount_to_pay_explicit, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanExpense(row rowScanner) (Expense, error) {
	var i Expense
	err := row.Scan(
		&i.ID,
		&i.Period,
		&i.CondominioCents,
		&i.PlanoSaudeCents,
		&i.EletricidadeCents,
		&i.GasCents,
		&i.InternetCents,
		&i.CelularCents,
		&i.CreditCardCents,
		&i.TotalCents,
		&i.AmountToPayCents,
		&i.AmountToPayExplicit,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createExpense = `INSERT INTO expenses (
	period, condominio_cents, plano_saude_cents, eletricidade_cents,
	gas_cents, internet_cents, celular_cents, credit_card_cents, total_cents,
	amount_to_pay_cents, amount_to_pay_explicit, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + expenseColumns

type CreateExpenseParams struct {
	Period              string
	CondominioCents     int64
	PlanoSaudeCents     int64
	EletricidadeCents   int64
	GasCents            int64
	InternetCents       int64
	CelularCents        int64
	CreditCardCents     int64
	TotalCents          int64
	AmountToPayCents    int64
	AmountToPayExplicit bool
	CreatedAt           string
	UpdatedAt           string
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (Expense, error) {
	row := q.db.QueryRowContext(ctx, createExpense,
		arg.Period,
		arg.CondominioCents,
		arg.PlanoSaudeCents,
		arg.EletricidadeCents,
		arg.GasCents,
		arg.InternetCents,
		arg.CelularCents,
		arg.CreditCardCents,
		arg.TotalCents,
		arg.AmountToPayCents,
		arg.AmountToPayExplicit,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanExpense(row)
}

const getExpense = `SELECT ` + expenseColumns + ` FROM expenses WHERE id = ?`

func (q *Queries) GetExpense(ctx context.Context, id int64) (Expense, error) {
	return scanExpense(q.db.QueryRowContext(ctx, getExpense, id))
}

const listExpenses = `SELECT ` + expenseColumns + ` FROM expenses ORDER BY period DESC, id DESC`

func (q *Queries) ListExpenses(ctx context.Context) ([]Expense, error) {
	return q.queryExpenses(ctx, listExpenses)
}

const listExpensesByPeriodRange = `SELECT ` + expenseColumns + `
FROM expenses
WHERE period BETWEEN ? AND ?
ORDER BY period DESC, id DESC`

type ListExpensesByPeriodRangeParams struct {
	From string
	To   string
}

func (q *Queries) ListExpensesByPeriodRange(ctx context.Context, arg ListExpensesByPeriodRangeParams) ([]Expense, error) {
	return q.queryExpenses(ctx, listExpensesByPeriodRange, arg.From, arg.To)
}

func (q *Queries) queryExpenses(ctx context.Context, query string, args ...interface{}) ([]Expense, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Expense{}
	for rows.Next() {
		i, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateExpense = `UPDATE expenses SET
	period = ?,
	condominio_cents = ?,
	plano_saude_cents = ?,
	eletricidade_cents = ?,
	gas_cents = ?,
	internet_cents = ?,
	celular_cents = ?,
	credit_card_cents = ?,
	total_cents = ?,
	amount_to_pay_cents = ?,
	amount_to_pay_explicit = ?,
	updated_at = ?
WHERE id = ?
RETURNING ` + expenseColumns

type UpdateExpenseParams struct {
	ID                  int64
	Period              string
	CondominioCents     int64
	PlanoSaudeCents     int64
	EletricidadeCents   int64
	GasCents            int64
	InternetCents       int64
	CelularCents        int64
	CreditCardCents     int64
	TotalCents          int64
	AmountToPayCents    int64
	AmountToPayExplicit bool
	UpdatedAt           string
}

func (q *Queries) UpdateExpense(ctx context.Context, arg UpdateExpenseParams) (Expense, error) {
	row := q.db.QueryRowContext(ctx, updateExpense,
		arg.Period,
		arg.CondominioCents,
		arg.PlanoSaudeCents,
		arg.EletricidadeCents,
		arg.GasCents,
		arg.InternetCents,
		arg.CelularCents,
		arg.CreditCardCents,
		arg.TotalCents,
		arg.AmountToPayCents,
		arg.AmountToPayExplicit,
		arg.UpdatedAt,
		arg.ID,
	)
	return scanExpense(row)
}

const deleteExpense = `DELETE FROM expenses WHERE id = ?`

func (q *Queries) DeleteExpense(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteExpense, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteAllExpenses = `DELETE FROM expenses`

func (q *Queries) DeleteAllExpenses(ctx context.Context) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteAllExpenses)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
