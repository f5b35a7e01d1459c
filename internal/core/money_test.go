package core

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestAmountProblems(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"0", nil},
		{"12.34", nil},
		{"12.340", nil},
		{"999999.99", nil},
		{"-1", []string{MsgNegative}},
		{"1000000", []string{MsgTooLarge}},
		{"1.005", []string{MsgTooManyDecimals}},
		{"-1.005", []string{MsgNegative, MsgTooManyDecimals}},
		{"1000000.001", []string{MsgTooLarge, MsgTooManyDecimals}},
		{"5e5", nil},
		{"1e6", []string{MsgTooLarge}},
		{"1.5000", nil},
		{"1e-3", []string{MsgTooManyDecimals}},
		{"0e999999999", nil},
		{"1e30000000", []string{MsgTooLarge}},
		{"-1e30000000", []string{MsgNegative}},
		{"1e-999999999", []string{MsgTooManyDecimals}},
		{"-7e-2000000000", []string{MsgNegative, MsgTooManyDecimals}},
		{"1200e-5", []string{MsgTooManyDecimals}},
		{"1200e-4", nil},
	}
	for _, tc := range cases {
		got := AmountProblems(dec(tc.in))
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.in, got, tc.want)
		}
		if err := ValidateAmount(dec(tc.in)); (err != nil) != (tc.want != nil) {
			t.Fatalf("%s: ValidateAmount err = %v", tc.in, err)
		} else if err != nil && !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("%s: expected ErrInvalidAmount, got %v", tc.in, err)
		}
	}
}

func TestAmountProblemsExtremeExponentsAreFast(t *testing.T) {
	start := time.Now()
	for _, in := range []string{"1e2147483000", "1e-2147483000", "-9e2000000000", "123456789e-999999999"} {
		if got := AmountProblems(dec(in)); len(got) == 0 {
			t.Fatalf("%s: expected problems", in)
		}
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("extreme exponents took %s", elapsed)
	}
}

func TestCentsConversion(t *testing.T) {
	cases := []struct {
		in    string
		cents int64
		fixed string
	}{
		{"0", 0, "0.00"},
		{"1", 100, "1.00"},
		{"1.5", 150, "1.50"},
		{"12.34", 1234, "12.34"},
		{"999999.99", 99999999, "999999.99"},
	}
	for _, tc := range cases {
		cents := ToCents(dec(tc.in))
		if cents != tc.cents {
			t.Fatalf("%s: ToCents = %d, want %d", tc.in, cents, tc.cents)
		}
		back := FromCents(cents)
		if !back.Equal(dec(tc.in)) {
			t.Fatalf("%s: FromCents = %s", tc.in, back)
		}
		if got := FormatAmount(back); got != tc.fixed {
			t.Fatalf("%s: FormatAmount = %s, want %s", tc.in, got, tc.fixed)
		}
	}
}
