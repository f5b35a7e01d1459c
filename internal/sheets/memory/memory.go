package memory

import (
	"context"
	"sort"
	"sync"

	"despesas/internal/core"
	ports "despesas/internal/sheets"
)

// Exporter keeps the mirrored rows in memory. The worker falls back to it
// when no spreadsheet is configured, and tests use it as a fake.
type Exporter struct {
	mu   sync.Mutex
	rows map[int64][]any
}

var _ ports.RecordExporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{rows: make(map[int64][]any)}
}

func (e *Exporter) Upsert(_ context.Context, rec core.ExpenseRecord) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows[rec.ID] = ports.Row(rec)
	return nil
}

func (e *Exporter) Remove(_ context.Context, id int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.rows, id)
	return nil
}

func (e *Exporter) ReplaceAll(_ context.Context, recs []core.ExpenseRecord) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows = make(map[int64][]any, len(recs))
	for _, rec := range recs {
		e.rows[rec.ID] = ports.Row(rec)
	}
	return nil
}

// IDs returns the mirrored record ids in ascending order.
func (e *Exporter) IDs() []int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]int64, 0, len(e.rows))
	for id := range e.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Row returns a copy of the row mirrored for id.
func (e *Exporter) Row(id int64) ([]any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	row, ok := e.rows[id]
	if !ok {
		return nil, false
	}
	return append([]any(nil), row...), true
}
