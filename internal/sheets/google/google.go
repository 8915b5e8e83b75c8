package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"presupuesto/internal/log"
	ports "presupuesto/internal/sheets"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	logger        *log.Logger
}

// Ensure interface conformance
var _ ports.SummaryWriter = (*Client)(nil)

// Options configures the Sheets client. One of CredentialsJSON or
// CredentialsFile must hold a service account key; when both are empty
// GOOGLE_APPLICATION_CREDENTIALS is used.
type Options struct {
	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string
	Logger          *log.Logger
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentSheets)

	creds, err := credentials(opts)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(creds),
		"scope", gsheet.SpreadsheetsScope)

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{svc: svc, spreadsheetID: spreadsheetID, logger: logger}, nil
}

func credentials(opts Options) ([]byte, error) {
	inline := strings.TrimSpace(opts.CredentialsJSON)
	file := strings.TrimSpace(opts.CredentialsFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// WriteSummary replaces the content of s.Sheet with s.Rows, creating the
// sheet when missing. It returns the updated A1 range.
func (c *Client) WriteSummary(ctx context.Context, s ports.Summary) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if strings.TrimSpace(s.Sheet) == "" {
		return "", errors.New("summary has no sheet name")
	}

	if err := c.ensureSheet(ctx, s.Sheet); err != nil {
		return "", err
	}

	clearRange := a1(s.Sheet, "A:Z")
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("failed to clear %s: %w", clearRange, err)
	}

	rng := a1(s.Sheet, "A1")
	resp, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: padRows(s.Rows)}).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to update %s: %w", rng, err)
	}

	c.logger.InfoContext(ctx, "Summary written",
		log.FieldSheetRange, resp.UpdatedRange,
		"rows", resp.UpdatedRows)
	return resp.UpdatedRange, nil
}

func (c *Client) ensureSheet(ctx context.Context, title string) error {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet: %w", err)
	}
	if hasSheet(ss, title) {
		return nil
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: title}},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %q: %w", title, err)
	}
	c.logger.InfoContext(ctx, "Created summary sheet", "sheet", title)
	return nil
}

func hasSheet(ss *gsheet.Spreadsheet, title string) bool {
	if ss == nil {
		return false
	}
	for _, sh := range ss.Sheets {
		if sh != nil && sh.Properties != nil && sh.Properties.Title == title {
			return true
		}
	}
	return false
}

// a1 quotes sheet for A1 notation: 'Resumen 2025-03'!A1.
func a1(sheet, cells string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(sheet, "'", "''"), cells)
}

// padRows turns empty rows into a single blank cell; the API drops
// zero-length rows and would shift everything below up.
func padRows(rows [][]any) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		if len(r) == 0 {
			out[i] = []any{""}
			continue
		}
		out[i] = r
	}
	return out
}
