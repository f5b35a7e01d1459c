package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Field keys used in validation reports.
const (
	FieldPeriod      = "period"
	FieldDate        = "date" // legacy alias of period
	FieldAmountToPay = "amountToPay"
	FieldID          = "id"
	FieldYear        = "year"
	FieldMonth       = "month"
	FieldBody        = "body"
)

const (
	MsgPeriodRequired = "Period is required"
	MsgPeriodFormat   = "Period must be in YYYY-MM format"
	MsgPeriodInvalid  = "Invalid period"
	MsgInvalidID      = "Invalid ID parameter"
	MsgInvalidYear    = "Year must be a 4-digit number"
	MsgInvalidMonth   = "Month must be between 1 and 12"
	MsgInvalidBody    = "Invalid JSON body"
)

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// ValidationErrors maps a field name to every rule it broke.
type ValidationErrors map[string][]string

// Add records a message for field.
func (v ValidationErrors) Add(field string, msgs ...string) {
	v[field] = append(v[field], msgs...)
}

// Err returns v as an error, or nil when nothing was recorded.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(v[f], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// RecordInput is a validated create or update payload.
type RecordInput struct {
	Period     Period
	Categories Categories
	// AmountToPay is nil when the caller omitted it or sent null.
	AmountToPay *decimal.Decimal
	// AmountToPayPresent distinguishes an explicit null from an omitted key.
	AmountToPayPresent bool
}

// ParseRecordInput decodes and validates a record payload, collecting every
// violation before returning. Keys it does not know are ignored.
func ParseRecordInput(body []byte) (RecordInput, error) {
	var in RecordInput
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return in, ValidationErrors{FieldBody: {MsgInvalidBody}}
	}

	verrs := ValidationErrors{}

	periodKey := FieldPeriod
	if _, ok := raw[FieldPeriod]; !ok {
		if _, ok := raw[FieldDate]; ok {
			periodKey = FieldDate
		}
	}
	if p, msgs := parsePeriodField(raw[periodKey]); len(msgs) > 0 {
		verrs.Add(periodKey, msgs...)
	} else {
		in.Period = p
	}

	for _, key := range CategoryKeys {
		d, present, msgs := parseAmountField(raw[key])
		if len(msgs) > 0 {
			verrs.Add(key, msgs...)
			continue
		}
		if present {
			_ = in.Categories.SetAmount(key, d)
		}
	}

	if rawAmount, ok := raw[FieldAmountToPay]; ok {
		in.AmountToPayPresent = true
		d, present, msgs := parseAmountField(rawAmount)
		if len(msgs) > 0 {
			verrs.Add(FieldAmountToPay, msgs...)
		} else if present {
			in.AmountToPay = &d
		}
	}

	if err := verrs.Err(); err != nil {
		return RecordInput{}, err
	}
	return in, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func parsePeriodField(raw json.RawMessage) (Period, []string) {
	if isNull(raw) {
		return Period{}, []string{MsgPeriodRequired, MsgPeriodFormat, MsgPeriodInvalid}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return Period{}, []string{MsgPeriodFormat, MsgPeriodInvalid}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return Period{}, []string{MsgPeriodRequired, MsgPeriodFormat, MsgPeriodInvalid}
	}

	var msgs []string
	if !periodPattern.MatchString(s) {
		msgs = append(msgs, MsgPeriodFormat)
	}
	p, err := ParsePeriod(s)
	if err != nil {
		// A full date is still a real month even though the format is wrong.
		if t, terr := time.Parse(PeriodStoreLayout, s); terr == nil {
			p, err = NewPeriod(t.Year(), t.Month())
		}
	}
	if err != nil {
		msgs = append(msgs, MsgPeriodInvalid)
	}
	return p, msgs
}

// parseAmountField accepts a JSON number or a numeric string. Null and an
// absent key both report present=false.
func parseAmountField(raw json.RawMessage) (decimal.Decimal, bool, []string) {
	if isNull(raw) {
		return decimal.Zero, false, nil
	}

	text := string(bytes.TrimSpace(raw))
	if text[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero, false, []string{MsgNotNumber}
		}
		text = strings.TrimSpace(s)
	} else if text[0] != '-' && (text[0] < '0' || text[0] > '9') {
		return decimal.Zero, false, []string{MsgNotNumber}
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, false, []string{MsgNotNumber}
	}
	if msgs := AmountProblems(d); len(msgs) > 0 {
		return decimal.Zero, false, msgs
	}
	if d.IsZero() {
		return decimal.Zero, true, nil
	}
	// Canonical scale, so later sums never rescale an odd exponent.
	return d.Round(2), true, nil
}

// ParseID validates a path identifier.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, ValidationErrors{FieldID: {MsgInvalidID}}
	}
	return id, nil
}

// ParseYearMonth validates the month route parameters.
func ParseYearMonth(year, month string) (Period, error) {
	verrs := ValidationErrors{}

	y, err := strconv.Atoi(year)
	if !yearPattern.MatchString(year) || err != nil || y < 1 {
		verrs.Add(FieldYear, MsgInvalidYear)
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		verrs.Add(FieldMonth, MsgInvalidMonth)
	}
	if err := verrs.Err(); err != nil {
		return Period{}, err
	}
	return NewPeriod(y, time.Month(m))
}
