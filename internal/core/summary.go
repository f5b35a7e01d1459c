package core

import "github.com/shopspring/decimal"

// Summary holds the derived figures for a set of category amounts.
type Summary struct {
	Total       decimal.Decimal
	AmountToPay decimal.Decimal
	SplitAmount decimal.Decimal
}

// Summarize computes the derived figures for in without persisting anything.
// AmountToPay follows the same fallback to Total that a save applies.
func Summarize(in RecordInput) Summary {
	total := in.Categories.Total()
	amountToPay := total
	if in.AmountToPay != nil {
		amountToPay = *in.AmountToPay
	}
	return Summary{
		Total:       total,
		AmountToPay: amountToPay,
		SplitAmount: in.Categories.SplitAmount(),
	}
}
