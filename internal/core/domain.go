package core

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// PeriodLayout is the wire form of a period.
	PeriodLayout = "2006-01"
	// PeriodStoreLayout is the stored form, always the first day of the month.
	PeriodStoreLayout = "2006-01-02"
)

// Category keys as they appear on the wire.
const (
	KeyCondominio   = "condominio"
	KeyPlanoSaude   = "planoSaude"
	KeyEletricidade = "eletricidade"
	KeyGas          = "gas"
	KeyInternet     = "internet"
	KeyCelular      = "celular"
	KeyCreditCard   = "creditCard"
)

// CategoryKeys lists the seven category amounts in display order.
var CategoryKeys = []string{
	KeyCondominio,
	KeyPlanoSaude,
	KeyEletricidade,
	KeyGas,
	KeyInternet,
	KeyCelular,
	KeyCreditCard,
}

type (
	// Period is a calendar month normalized to 00:00 UTC on day 1.
	Period struct {
		time.Time
	}

	// Categories holds the seven monthly amounts of a record.
	Categories struct {
		Condominio   decimal.Decimal
		PlanoSaude   decimal.Decimal
		Eletricidade decimal.Decimal
		Gas          decimal.Decimal
		Internet     decimal.Decimal
		Celular      decimal.Decimal
		CreditCard   decimal.Decimal
	}

	// ExpenseRecord is the persisted monthly expense entry.
	ExpenseRecord struct {
		ID     int64
		Period Period
		Categories
		Total       decimal.Decimal
		AmountToPay decimal.Decimal
		// AmountToPayExplicit is true when AmountToPay was supplied by a caller
		// rather than derived from Total.
		AmountToPayExplicit bool
		CreatedAt           time.Time
		UpdatedAt           time.Time
	}
)

var (
	ErrInvalidPeriod = errors.New("invalid period")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrUnknownKey    = errors.New("unknown category")

	// ErrInconsistentRecord means a derived field disagrees with its inputs.
	ErrInconsistentRecord = errors.New("inconsistent record")
)

var periodPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// NewPeriod returns the period for the given year and month.
func NewPeriod(year int, month time.Month) (Period, error) {
	if year < 1 || year > 9999 || month < time.January || month > time.December {
		return Period{}, fmt.Errorf("%w: %04d-%02d", ErrInvalidPeriod, year, int(month))
	}
	return Period{Time: time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)}, nil
}

// ParsePeriod parses the wire form "YYYY-MM".
func ParsePeriod(s string) (Period, error) {
	if !periodPattern.MatchString(s) {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	year, _ := strconv.Atoi(s[:4])
	month, _ := strconv.Atoi(s[5:])
	return NewPeriod(year, time.Month(month))
}

// ParseStoredPeriod parses the stored "YYYY-MM-DD" form, normalizing to day 1.
func ParseStoredPeriod(s string) (Period, error) {
	t, err := time.Parse(PeriodStoreLayout, s)
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return NewPeriod(t.Year(), t.Month())
}

// String returns the wire form.
func (p Period) String() string {
	return p.Format(PeriodLayout)
}

// FirstDay returns the stored form of the first day of the month.
func (p Period) FirstDay() string {
	return p.Format(PeriodStoreLayout)
}

// LastDay returns the stored form of the last day of the month.
func (p Period) LastDay() string {
	return p.AddDate(0, 1, -1).Format(PeriodStoreLayout)
}

func (p Period) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(p.String())), nil
}

func (p *Period) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPeriod, data)
	}
	parsed, err := ParsePeriod(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Amount returns the category amount stored under a wire key.
func (c Categories) Amount(key string) (decimal.Decimal, error) {
	ptr := c.field(key)
	if ptr == nil {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return *ptr, nil
}

// SetAmount sets the category amount stored under a wire key.
func (c *Categories) SetAmount(key string, d decimal.Decimal) error {
	ptr := c.field(key)
	if ptr == nil {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	*ptr = d
	return nil
}

func (c *Categories) field(key string) *decimal.Decimal {
	switch key {
	case KeyCondominio:
		return &c.Condominio
	case KeyPlanoSaude:
		return &c.PlanoSaude
	case KeyEletricidade:
		return &c.Eletricidade
	case KeyGas:
		return &c.Gas
	case KeyInternet:
		return &c.Internet
	case KeyCelular:
		return &c.Celular
	case KeyCreditCard:
		return &c.CreditCard
	}
	return nil
}

// Total is the exact sum of the seven amounts rounded to cents.
func (c Categories) Total() decimal.Decimal {
	return decimal.Sum(
		c.Condominio,
		c.PlanoSaude,
		c.Eletricidade,
		c.Gas,
		c.Internet,
		c.Celular,
		c.CreditCard,
	).Round(2)
}

// SplitAmount is the half-split share: half of every category except the
// condominium fee, minus the condominium fee. It can be negative.
func (c Categories) SplitAmount() decimal.Decimal {
	shared := c.Total().Sub(c.Condominio)
	return shared.Div(decimal.NewFromInt(2)).Sub(c.Condominio).Round(2)
}

// Validate checks the stored-form invariants of a record: every category
// within the amount rules, total equal to their sum, and amountToPay either
// a valid explicit amount or equal to total.
func (r ExpenseRecord) Validate() error {
	if r.Period.IsZero() || r.Period.Day() != 1 {
		return ErrInvalidPeriod
	}
	for _, key := range CategoryKeys {
		d, _ := r.Amount(key)
		if err := ValidateAmount(d); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	if want := r.Categories.Total(); !r.Total.Equal(want) {
		return fmt.Errorf("%w: total %s, categories sum to %s", ErrInconsistentRecord, r.Total, want)
	}

	if r.AmountToPayExplicit {
		if err := ValidateAmount(r.AmountToPay); err != nil {
			return fmt.Errorf("amountToPay: %w", err)
		}
		return nil
	}
	if !r.AmountToPay.Equal(r.Total) {
		return fmt.Errorf("%w: derived amountToPay %s differs from total %s", ErrInconsistentRecord, r.AmountToPay, r.Total)
	}
	return nil
}
