package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParsePeriod(t *testing.T) {
	cases := []struct {
		in    string
		first string
		last  string
		ok    bool
	}{
		{"2024-03", "2024-03-01", "2024-03-31", true},
		{"2024-02", "2024-02-01", "2024-02-29", true},
		{"2023-02", "2023-02-01", "2023-02-28", true},
		{"2024-12", "2024-12-01", "2024-12-31", true},
		{"2024-13", "", "", false},
		{"2024-00", "", "", false},
		{"2024-3", "", "", false},
		{"24-03", "", "", false},
		{"2024-03-01", "", "", false},
		{"", "", "", false},
	}
	for _, tc := range cases {
		p, err := ParsePeriod(tc.in)
		if !tc.ok {
			if !errors.Is(err, ErrInvalidPeriod) {
				t.Fatalf("%q expected ErrInvalidPeriod, got %v", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q unexpected error: %v", tc.in, err)
		}
		if p.String() != tc.in {
			t.Fatalf("%q round-tripped to %q", tc.in, p.String())
		}
		if p.FirstDay() != tc.first || p.LastDay() != tc.last {
			t.Fatalf("%q range = %s..%s, want %s..%s", tc.in, p.FirstDay(), p.LastDay(), tc.first, tc.last)
		}
	}
}

func TestParseStoredPeriodNormalizesDay(t *testing.T) {
	p, err := ParseStoredPeriod("2024-03-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.FirstDay() != "2024-03-01" || p.Location() != time.UTC {
		t.Fatalf("got %s in %v", p.FirstDay(), p.Location())
	}
}

func TestPeriodJSON(t *testing.T) {
	p, _ := NewPeriod(2024, time.January)
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"2024-01"` {
		t.Fatalf("marshal = %s", b)
	}
	var back Period
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if !back.Equal(p.Time) {
		t.Fatalf("unmarshal = %v, want %v", back, p)
	}
	if err := json.Unmarshal([]byte(`"2024-13"`), &back); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestCategoriesTotal(t *testing.T) {
	cases := []struct {
		name string
		c    Categories
		want string
	}{
		{"zero", Categories{}, "0"},
		{
			"scenario",
			Categories{
				Condominio: dec("500"), PlanoSaude: dec("300"), Eletricidade: dec("150"),
				Gas: dec("50"), Internet: dec("100"), Celular: dec("80"), CreditCard: dec("800"),
			},
			"1980",
		},
		{
			"no float drift",
			Categories{Condominio: dec("0.1"), PlanoSaude: dec("0.2"), Gas: dec("0.01")},
			"0.31",
		},
		{
			"max in every field",
			Categories{
				Condominio: MaxAmount, PlanoSaude: MaxAmount, Eletricidade: MaxAmount,
				Gas: MaxAmount, Internet: MaxAmount, Celular: MaxAmount, CreditCard: MaxAmount,
			},
			"6999999.93",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.c.Total(); !got.Equal(dec(tc.want)) {
				t.Fatalf("Total() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestCategoriesSplitAmount(t *testing.T) {
	c := Categories{
		Condominio: dec("500"), PlanoSaude: dec("300"), Eletricidade: dec("150"),
		Gas: dec("50"), Internet: dec("100"), Celular: dec("80"), CreditCard: dec("800"),
	}
	// (1980 - 500) / 2 - 500
	if got := c.SplitAmount(); !got.Equal(dec("240")) {
		t.Fatalf("SplitAmount() = %s, want 240", got)
	}

	odd := Categories{Gas: dec("0.01")}
	if got := odd.SplitAmount(); !got.Equal(dec("0.01")) {
		t.Fatalf("SplitAmount() = %s, want 0.01", got)
	}

	negative := Categories{Condominio: dec("100")}
	if got := negative.SplitAmount(); !got.Equal(dec("-100")) {
		t.Fatalf("SplitAmount() = %s, want -100", got)
	}
}

func TestCategoriesAmountByKey(t *testing.T) {
	var c Categories
	for i, key := range CategoryKeys {
		if err := c.SetAmount(key, decimal.NewFromInt(int64(i+1))); err != nil {
			t.Fatalf("SetAmount(%s): %v", key, err)
		}
	}
	for i, key := range CategoryKeys {
		got, err := c.Amount(key)
		if err != nil || !got.Equal(decimal.NewFromInt(int64(i+1))) {
			t.Fatalf("Amount(%s) = %s, %v", key, got, err)
		}
	}
	if _, err := c.Amount("rent"); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
	if err := c.SetAmount("rent", decimal.Zero); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
}

func TestExpenseRecordValidate(t *testing.T) {
	p, _ := NewPeriod(2024, time.March)
	ok := ExpenseRecord{Period: p, Categories: Categories{Gas: dec("10")}, Total: dec("10"), AmountToPay: dec("10")}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	noPeriod := ok
	noPeriod.Period = Period{}
	if err := noPeriod.Validate(); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}

	negative := ok
	negative.Gas = dec("-1")
	if err := negative.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	var full Categories
	for _, key := range CategoryKeys {
		_ = full.SetAmount(key, dec("999999.99"))
	}
	tests := []struct {
		name    string
		rec     ExpenseRecord
		wantErr error
	}{
		{
			name: "derived amountToPay above single amount bound",
			rec:  ExpenseRecord{Period: p, Categories: full, Total: dec("6999999.93"), AmountToPay: dec("6999999.93")},
		},
		{
			name: "explicit zero",
			rec:  ExpenseRecord{Period: p, Categories: full, Total: dec("6999999.93"), AmountToPayExplicit: true},
		},
		{
			name:    "explicit amountToPay above bound",
			rec:     ExpenseRecord{Period: p, Categories: full, Total: dec("6999999.93"), AmountToPay: dec("1000000"), AmountToPayExplicit: true},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "stale total",
			rec:     ExpenseRecord{Period: p, Categories: Categories{Gas: dec("10")}, Total: dec("9"), AmountToPay: dec("9")},
			wantErr: ErrInconsistentRecord,
		},
		{
			name:    "derived amountToPay differs from total",
			rec:     ExpenseRecord{Period: p, Categories: Categories{Gas: dec("10")}, Total: dec("10"), AmountToPay: dec("5")},
			wantErr: ErrInconsistentRecord,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
