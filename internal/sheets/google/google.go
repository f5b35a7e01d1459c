package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"despesas/internal/core"
	applog "despesas/internal/log"
	ports "despesas/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Config selects the spreadsheet and the credentials used to reach it.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// valuesAPI is the slice of the Sheets values API the exporter uses.
type valuesAPI interface {
	get(ctx context.Context, rng string) ([][]any, error)
	update(ctx context.Context, rng string, rows [][]any) error
	clear(ctx context.Context, rng string) error
}

// Exporter mirrors expense records into one sheet, keyed by the id in column A.
type Exporter struct {
	values    valuesAPI
	sheetName string
}

// Ensure interface conformance
var _ ports.RecordExporter = (*Exporter)(nil)

// New creates an Exporter authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Exporter, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		return nil, errors.New("missing sheet name")
	}

	svc, err := newSheetsService(ctx, cfg.CredentialsJSON, cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Exporter{
		values:    &sheetsValues{svc: svc, spreadsheetID: spreadsheetID},
		sheetName: sheetName,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Falls back to GOOGLE_APPLICATION_CREDENTIALS when neither input is set.
func newSheetsService(ctx context.Context, credentialsJSON, credentialsFile string) (*gsheet.Service, error) {
	credentialsJSON = strings.TrimSpace(credentialsJSON)
	credentialsFile = strings.TrimSpace(credentialsFile)
	if credentialsJSON == "" && credentialsFile == "" {
		credentialsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var creds []byte
	switch {
	case credentialsJSON != "":
		creds = []byte(credentialsJSON)
	case credentialsFile != "":
		b, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		creds = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.DebugContext(ctx, "Creating Google Sheets service",
		applog.FieldComponent, applog.ComponentSheets,
		"credentials_size", len(creds),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope),
		goption.WithHTTPClient(newHTTPClientWithPooling()))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// newHTTPClientWithPooling creates an HTTP client for the Sheets API with
// connection pooling and bounded timeouts.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   5,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

// Upsert overwrites the row holding rec.ID or appends a new one. An empty
// sheet gets the header row first.
func (e *Exporter) Upsert(ctx context.Context, rec core.ExpenseRecord) error {
	ids, err := e.values.get(ctx, a1(e.sheetName, "A:A"))
	if err != nil {
		return fmt.Errorf("read ids from %s: %w", e.sheetName, err)
	}

	row := findRow(ids, rec.ID)
	if row == 0 {
		if len(ids) == 0 {
			if err := e.values.update(ctx, rowRange(e.sheetName, 1), [][]any{ports.Header}); err != nil {
				return fmt.Errorf("write header to %s: %w", e.sheetName, err)
			}
			row = 2
		} else {
			row = len(ids) + 1
		}
	}

	if err := e.values.update(ctx, rowRange(e.sheetName, row), [][]any{ports.Row(rec)}); err != nil {
		return fmt.Errorf("write record %d to %s row %d: %w", rec.ID, e.sheetName, row, err)
	}
	return nil
}

// Remove blanks the row holding id. Rows are compacted by the next ReplaceAll.
func (e *Exporter) Remove(ctx context.Context, id int64) error {
	ids, err := e.values.get(ctx, a1(e.sheetName, "A:A"))
	if err != nil {
		return fmt.Errorf("read ids from %s: %w", e.sheetName, err)
	}

	row := findRow(ids, id)
	if row == 0 {
		return nil
	}
	if err := e.values.clear(ctx, rowRange(e.sheetName, row)); err != nil {
		return fmt.Errorf("clear record %d in %s row %d: %w", id, e.sheetName, row, err)
	}
	return nil
}

// ReplaceAll clears the sheet and writes the header followed by recs.
func (e *Exporter) ReplaceAll(ctx context.Context, recs []core.ExpenseRecord) error {
	if err := e.values.clear(ctx, a1(e.sheetName, "A:"+lastColumn())); err != nil {
		return fmt.Errorf("clear %s: %w", e.sheetName, err)
	}

	rows := make([][]any, 0, len(recs)+1)
	rows = append(rows, ports.Header)
	for _, rec := range recs {
		rows = append(rows, ports.Row(rec))
	}
	if err := e.values.update(ctx, a1(e.sheetName, "A1"), rows); err != nil {
		return fmt.Errorf("write %d records to %s: %w", len(recs), e.sheetName, err)
	}
	return nil
}

// sheetsValues adapts gsheet.Service to valuesAPI.
type sheetsValues struct {
	svc           *gsheet.Service
	spreadsheetID string
}

func (s *sheetsValues) get(ctx context.Context, rng string) ([][]any, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// update writes RAW values so periods stay text and amounts stay numbers.
func (s *sheetsValues) update(ctx context.Context, rng string, rows [][]any) error {
	vr := &gsheet.ValueRange{Values: rows}
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	return err
}

func (s *sheetsValues) clear(ctx context.Context, rng string) error {
	_, err := s.svc.Spreadsheets.Values.Clear(s.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	return err
}
