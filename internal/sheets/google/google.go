// Package google implements the spreadsheet ports against the Google Sheets
// API using service-account credentials.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"amplo/internal/core"
	ports "amplo/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Options struct {
	// GeneralSpreadsheetID hosts the full-dataset mirror.
	GeneralSpreadsheetID string
	// GeneralSheetName is the mirror tab, default "Geral".
	GeneralSheetName string
	// MappingSpreadsheetID hosts the manager name -> spreadsheet ID table.
	MappingSpreadsheetID string
	// MappingRange is the lookup range, default "A2:B".
	MappingRange string
}

type Client struct {
	svc  *gsheet.Service
	opts Options
}

// Ensure interface conformance
var (
	_ ports.TransactionMirror = (*Client)(nil)
	_ ports.ManagerDirectory  = (*Client)(nil)
	_ ports.MonthlyLedger     = (*Client)(nil)
)

// New creates a Sheets client. Credentials come from the environment:
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.GeneralSpreadsheetID) == "" {
		return nil, errors.New("missing general spreadsheet ID")
	}
	if opts.GeneralSheetName == "" {
		opts.GeneralSheetName = "Geral"
	}
	if opts.MappingRange == "" {
		opts.MappingRange = "A2:B"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc, opts: opts}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// ReplaceAll clears the general sheet and rewrites it with the header plus
// one row per transaction, in the order received.
func (c *Client) ReplaceAll(ctx context.Context, txs []core.Transaction) (int, error) {
	if c.svc == nil {
		return 0, errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:Z", c.opts.GeneralSheetName)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.opts.GeneralSpreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return 0, fmt.Errorf("clear general sheet %s: %w", c.opts.GeneralSheetName, err)
	}

	values := make([][]any, 0, len(txs)+1)
	header := make([]any, len(ports.MirrorHeader))
	for i, h := range ports.MirrorHeader {
		header[i] = h
	}
	values = append(values, header)
	for _, t := range txs {
		values = append(values, ports.MirrorRow(t))
	}

	vr := &gsheet.ValueRange{Values: values}
	if _, err := c.svc.Spreadsheets.Values.Append(c.opts.GeneralSpreadsheetID, fmt.Sprintf("%s!A1", c.opts.GeneralSheetName), vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return 0, fmt.Errorf("append to general sheet %s: %w", c.opts.GeneralSheetName, err)
	}

	slog.InfoContext(ctx, "General sheet rewritten",
		"spreadsheet_id", c.opts.GeneralSpreadsheetID, "rows", len(txs))
	return len(txs), nil
}

// Load reads the manager directory. Keys and values are trimmed; blank or
// commented rows are skipped. Duplicate names keep the first entry.
func (c *Client) Load(ctx context.Context) (map[string]string, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	if strings.TrimSpace(c.opts.MappingSpreadsheetID) == "" {
		return map[string]string{}, nil
	}

	rng := c.opts.MappingRange
	resp, err := c.svc.Spreadsheets.Values.Get(c.opts.MappingSpreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read mapping %s: %w", rng, err)
	}

	out := make(map[string]string, len(resp.Values))
	for _, row := range resp.Values {
		if len(row) < 2 {
			continue
		}
		name := strings.TrimSpace(fmt.Sprint(row[0]))
		id := strings.TrimSpace(fmt.Sprint(row[1]))
		if name == "" || id == "" || strings.HasPrefix(name, "#") {
			continue
		}
		if _, seen := out[name]; seen {
			continue
		}
		out[name] = id
	}
	return out, nil
}

// AppendMonth bulk-appends rows to the named tab. The tab must already exist;
// ErrMissingTab is returned otherwise so the caller can skip and warn.
func (c *Client) AppendMonth(ctx context.Context, spreadsheetID, tab string, rows [][]any) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if len(rows) == 0 {
		return nil
	}

	ok, err := c.hasTab(ctx, spreadsheetID, tab)
	if err != nil {
		return fmt.Errorf("inspect spreadsheet %s: %w", spreadsheetID, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ports.ErrMissingTab, tab)
	}

	vr := &gsheet.ValueRange{Values: rows}
	if _, err := c.svc.Spreadsheets.Values.Append(spreadsheetID, fmt.Sprintf("%s!A:N", tab), vr).
		ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do(); err != nil {
		return fmt.Errorf("append %d rows to %s!%s: %w", len(rows), spreadsheetID, tab, err)
	}
	return nil
}

func (c *Client) hasTab(ctx context.Context, spreadsheetID, tab string) (bool, error) {
	meta, err := c.svc.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return false, err
	}
	for _, sh := range meta.Sheets {
		if sh.Properties != nil && strings.EqualFold(strings.TrimSpace(sh.Properties.Title), strings.TrimSpace(tab)) {
			return true, nil
		}
	}
	return false, nil
}
