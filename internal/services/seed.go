package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"despesas/internal/core"
)

// SampleInputs returns the two demonstration months inserted by the seed
// command, newest first.
func SampleInputs() []core.RecordInput {
	return []core.RecordInput{
		sample(2024, time.March, 500, 300, 150, 50, 100, 80, 1200),
		sample(2024, time.February, 500, 300, 180, 45, 100, 80, 950),
	}
}

func sample(year int, month time.Month, amounts ...int64) core.RecordInput {
	p, err := core.NewPeriod(year, month)
	if err != nil {
		panic(err)
	}
	in := core.RecordInput{Period: p}
	for i, key := range core.CategoryKeys {
		if err := in.Categories.SetAmount(key, decimal.NewFromInt(amounts[i])); err != nil {
			panic(err)
		}
	}
	return in
}

// Seed creates one record per input through the normal create path, so
// derived fields and events behave exactly as for API writes.
func (s *RecordService) Seed(ctx context.Context, inputs []core.RecordInput) ([]core.ExpenseRecord, error) {
	out := make([]core.ExpenseRecord, 0, len(inputs))
	for _, in := range inputs {
		rec, err := s.Create(ctx, in)
		if err != nil {
			return out, fmt.Errorf("seed %s: %w", in.Period, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
