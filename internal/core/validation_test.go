package core

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func validationErrors(t *testing.T, err error) ValidationErrors {
	t.Helper()
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %T: %v", err, err)
	}
	return verrs
}

func TestParseRecordInputValid(t *testing.T) {
	body := `{"period":"2024-01","condominio":500,"planoSaude":300,"eletricidade":150,
		"gas":50,"internet":100,"celular":80,"creditCard":800,"id":99,"total":1}`

	in, err := ParseRecordInput([]byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Period.String() != "2024-01" {
		t.Fatalf("period = %s", in.Period)
	}
	if !in.Categories.Total().Equal(dec("1980")) {
		t.Fatalf("total = %s", in.Categories.Total())
	}
	if in.AmountToPay != nil || in.AmountToPayPresent {
		t.Fatalf("amountToPay should be unset, got %v present=%v", in.AmountToPay, in.AmountToPayPresent)
	}
}

func TestParseRecordInputDefaultsAndForms(t *testing.T) {
	in, err := ParseRecordInput([]byte(`{"period":"2024-02","gas":"45.50","internet":null,"amountToPay":0}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !in.Categories.Gas.Equal(dec("45.5")) {
		t.Fatalf("gas = %s", in.Categories.Gas)
	}
	if !in.Categories.Condominio.IsZero() || !in.Categories.Internet.IsZero() {
		t.Fatal("omitted and null categories should default to 0")
	}
	if in.AmountToPay == nil || !in.AmountToPay.IsZero() || !in.AmountToPayPresent {
		t.Fatalf("explicit zero amountToPay lost: %v", in.AmountToPay)
	}

	in, err = ParseRecordInput([]byte(`{"period":"2024-02","amountToPay":null}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.AmountToPay != nil || !in.AmountToPayPresent {
		t.Fatalf("null amountToPay should be present and unset, got %v", in.AmountToPay)
	}

	in, err = ParseRecordInput([]byte(`{"period":"2024-02","gas":1200e-4,"celular":0e999999999,"internet":"5e5"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !in.Categories.Gas.Equal(dec("0.12")) || in.Categories.Gas.Exponent() != -2 {
		t.Fatalf("gas = %s (exp %d), want 0.12 at scale 2", in.Categories.Gas, in.Categories.Gas.Exponent())
	}
	if !in.Categories.Celular.IsZero() || in.Categories.Celular.Exponent() < -2 {
		t.Fatalf("celular = %s (exp %d), want plain zero", in.Categories.Celular, in.Categories.Celular.Exponent())
	}
	if got := in.Categories.Total().StringFixed(2); got != "500000.12" {
		t.Fatalf("total = %s", got)
	}
}

func TestParseRecordInputLegacyDateKey(t *testing.T) {
	in, err := ParseRecordInput([]byte(`{"date":"2024-03","gas":1}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Period.String() != "2024-03" {
		t.Fatalf("period = %s", in.Period)
	}

	_, err = ParseRecordInput([]byte(`{"date":"2024-13"}`))
	verrs := validationErrors(t, err)
	if !reflect.DeepEqual(verrs[FieldDate], []string{MsgPeriodInvalid}) {
		t.Fatalf("date errors = %v", verrs[FieldDate])
	}
}

func TestParseRecordInputErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want ValidationErrors
	}{
		{
			name: "missing period",
			body: `{}`,
			want: ValidationErrors{FieldPeriod: {MsgPeriodRequired, MsgPeriodFormat, MsgPeriodInvalid}},
		},
		{
			name: "empty period",
			body: `{"period":""}`,
			want: ValidationErrors{FieldPeriod: {MsgPeriodRequired, MsgPeriodFormat, MsgPeriodInvalid}},
		},
		{
			name: "month 13",
			body: `{"period":"2024-13"}`,
			want: ValidationErrors{FieldPeriod: {MsgPeriodInvalid}},
		},
		{
			name: "bad format",
			body: `{"period":"March 2024"}`,
			want: ValidationErrors{FieldPeriod: {MsgPeriodFormat, MsgPeriodInvalid}},
		},
		{
			name: "full date",
			body: `{"period":"2024-03-01"}`,
			want: ValidationErrors{FieldPeriod: {MsgPeriodFormat}},
		},
		{
			name: "numeric period",
			body: `{"period":202403}`,
			want: ValidationErrors{FieldPeriod: {MsgPeriodFormat, MsgPeriodInvalid}},
		},
		{
			name: "negative category",
			body: `{"period":"2024-01","gas":-5}`,
			want: ValidationErrors{KeyGas: {MsgNegative}},
		},
		{
			name: "too large category",
			body: `{"period":"2024-01","creditCard":1000000}`,
			want: ValidationErrors{KeyCreditCard: {MsgTooLarge}},
		},
		{
			name: "three decimals",
			body: `{"period":"2024-01","internet":10.005}`,
			want: ValidationErrors{KeyInternet: {MsgTooManyDecimals}},
		},
		{
			name: "multiple messages on one field",
			body: `{"period":"2024-01","celular":-1.234}`,
			want: ValidationErrors{KeyCelular: {MsgNegative, MsgTooManyDecimals}},
		},
		{
			name: "huge exponent",
			body: `{"period":"2024-01","gas":1e30000000,"internet":"-1e30000000"}`,
			want: ValidationErrors{KeyGas: {MsgTooLarge}, KeyInternet: {MsgNegative}},
		},
		{
			name: "tiny exponent",
			body: `{"period":"2024-01","gas":1e-999999999}`,
			want: ValidationErrors{KeyGas: {MsgTooManyDecimals}},
		},
		{
			name: "not a number",
			body: `{"period":"2024-01","planoSaude":"abc","eletricidade":true}`,
			want: ValidationErrors{KeyPlanoSaude: {MsgNotNumber}, KeyEletricidade: {MsgNotNumber}},
		},
		{
			name: "aggregate across fields",
			body: `{"period":"2024-00","condominio":-1,"amountToPay":1.001}`,
			want: ValidationErrors{
				FieldPeriod:      {MsgPeriodInvalid},
				KeyCondominio:    {MsgNegative},
				FieldAmountToPay: {MsgTooManyDecimals},
			},
		},
		{
			name: "malformed json",
			body: `{"period":`,
			want: ValidationErrors{FieldBody: {MsgInvalidBody}},
		},
		{
			name: "json array",
			body: `[1,2]`,
			want: ValidationErrors{FieldBody: {MsgInvalidBody}},
		},
		{
			name: "json null",
			body: `null`,
			want: ValidationErrors{FieldBody: {MsgInvalidBody}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecordInput([]byte(tt.body))
			got := validationErrors(t, err)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidationErrorsError(t *testing.T) {
	v := ValidationErrors{}
	if v.Err() != nil {
		t.Fatal("empty ValidationErrors should yield nil error")
	}
	v.Add(KeyGas, MsgNegative)
	v.Add(FieldPeriod, MsgPeriodInvalid)
	msg := v.Err().Error()
	if !strings.HasPrefix(msg, "validation failed: gas: Must be a non-negative number; period:") {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestParseID(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"1", 1, true},
		{"42", 42, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"1.5", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseID(tc.in)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.want, got, err)
			}
			continue
		}
		verrs := validationErrors(t, err)
		if !reflect.DeepEqual(verrs[FieldID], []string{MsgInvalidID}) {
			t.Fatalf("%q: got %v", tc.in, verrs)
		}
	}
}

func TestParseYearMonth(t *testing.T) {
	p, err := ParseYearMonth("2024", "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Year() != 2024 || p.Month() != time.January {
		t.Fatalf("got %s", p)
	}
	if p, err = ParseYearMonth("2024", "02"); err != nil || p.String() != "2024-02" {
		t.Fatalf("got %s, %v", p, err)
	}

	_, err = ParseYearMonth("24", "13")
	verrs := validationErrors(t, err)
	if len(verrs[FieldYear]) != 1 || len(verrs[FieldMonth]) != 1 {
		t.Fatalf("expected year and month errors, got %v", verrs)
	}

	_, err = ParseYearMonth("2024", "0")
	verrs = validationErrors(t, err)
	if _, ok := verrs[FieldYear]; ok {
		t.Fatalf("year should be valid, got %v", verrs)
	}
}

func TestSummarize(t *testing.T) {
	in, err := ParseRecordInput([]byte(`{"period":"2024-01","condominio":500,"planoSaude":300,
		"eletricidade":150,"gas":50,"internet":100,"celular":80,"creditCard":800}`))
	if err != nil {
		t.Fatal(err)
	}
	s := Summarize(in)
	if !s.Total.Equal(dec("1980")) || !s.AmountToPay.Equal(dec("1980")) || !s.SplitAmount.Equal(dec("240")) {
		t.Fatalf("got %+v", s)
	}

	override := dec("100")
	in.AmountToPay = &override
	if s := Summarize(in); !s.AmountToPay.Equal(override) {
		t.Fatalf("override ignored: %+v", s)
	}
}
