package sheets

import (
	"context"

	"despesas/internal/core"
)

// Ports for outbound adapters.
type (
	// RecordExporter mirrors expense records into a spreadsheet, one row per record.
	RecordExporter interface {
		// Upsert writes rec into the row keyed by its id, appending when absent.
		Upsert(ctx context.Context, rec core.ExpenseRecord) error
		// Remove clears the row keyed by id. A missing row is not an error.
		Remove(ctx context.Context, id int64) error
		// ReplaceAll rewrites the whole sheet from recs.
		ReplaceAll(ctx context.Context, recs []core.ExpenseRecord) error
	}

	// RecordSource is the read side of the record store the exporter mirrors.
	RecordSource interface {
		Get(ctx context.Context, id int64) (core.ExpenseRecord, error)
		List(ctx context.Context) ([]core.ExpenseRecord, error)
	}
)

// Header is the first row of an exported sheet.
var Header = []any{
	"ID", "Period",
	"Condominio", "Plano Saude", "Eletricidade", "Gas", "Internet", "Celular", "Credit Card",
	"Total", "Amount To Pay", "Split Amount", "Updated At",
}

// Row renders rec in Header column order. Amounts are plain numbers so the
// sheet can sum them.
func Row(rec core.ExpenseRecord) []any {
	return []any{
		rec.ID,
		rec.Period.String(),
		rec.Condominio.InexactFloat64(),
		rec.PlanoSaude.InexactFloat64(),
		rec.Eletricidade.InexactFloat64(),
		rec.Gas.InexactFloat64(),
		rec.Internet.InexactFloat64(),
		rec.Celular.InexactFloat64(),
		rec.CreditCard.InexactFloat64(),
		rec.Total.InexactFloat64(),
		rec.AmountToPay.InexactFloat64(),
		rec.Categories.SplitAmount().InexactFloat64(),
		rec.UpdatedAt.UTC().Format("2006-01-02 15:04:05"),
	}
}
