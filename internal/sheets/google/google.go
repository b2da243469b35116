package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"railists/internal/core"
	"railists/internal/report"
	ports "railists/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const valueInputOption = "USER_ENTERED"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	statsSheet    string
	depotSheet    string
}

// Ensure interface conformance
var _ ports.ReportWriter = (*Client)(nil)

// Options selects the spreadsheet, sheet names and service account.
// CredentialsJSON wins over CredentialsFile; with neither set the standard
// GOOGLE_APPLICATION_CREDENTIALS file is used.
type Options struct {
	SpreadsheetID   string
	StatsSheet      string
	DepotSheet      string
	CredentialsJSON string
	CredentialsFile string
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	opts.SpreadsheetID = strings.TrimSpace(opts.SpreadsheetID)
	if opts.SpreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(opts.StatsSheet) == "" {
		opts.StatsSheet = "Stats"
	}
	if strings.TrimSpace(opts.DepotSheet) == "" {
		opts.DepotSheet = "Depot"
	}

	creds, err := credentials(ctx, opts)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created",
		"spreadsheet_id", opts.SpreadsheetID,
		"stats_sheet", opts.StatsSheet,
		"depot_sheet", opts.DepotSheet)

	return &Client{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		statsSheet:    opts.StatsSheet,
		depotSheet:    opts.DepotSheet,
	}, nil
}

// credentials returns the service account key, inline JSON first.
func credentials(ctx context.Context, opts Options) ([]byte, error) {
	inline := strings.TrimSpace(opts.CredentialsJSON)
	file := strings.TrimSpace(opts.CredentialsFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		slog.DebugContext(ctx, "Using inline service account credentials", "json_length", len(inline))
		return []byte(inline), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		slog.DebugContext(ctx, "Read service account credentials", "path", file, "size", len(data))
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// WriteStats replaces the stats sheet with the yearly table and its summary.
func (c *Client) WriteStats(ctx context.Context, stats core.CollectionStats) (string, error) {
	return c.replaceSheet(ctx, c.statsSheet, report.StatsTable(stats))
}

// WriteDepot replaces the depot sheet with the locomotive roster.
func (c *Client) WriteDepot(ctx context.Context, depot core.Depot) (string, error) {
	return c.replaceSheet(ctx, c.depotSheet, report.DepotTable(depot))
}

func (c *Client) replaceSheet(ctx context.Context, sheet string, t report.Table) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, sheet, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("clear sheet %s: %w", sheet, err)
	}

	values := tableValues(t)
	ref := sheetRange(sheet, len(values), width(values))
	vr := &gsheet.ValueRange{Values: values}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, ref, vr).
		ValueInputOption(valueInputOption).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", ref, err)
	}

	slog.InfoContext(ctx, "Sheet updated", "range", ref, "rows", len(t.Rows))
	return ref, nil
}

// tableValues lays a table out as header, rows, a blank row and footer lines.
func tableValues(t report.Table) [][]any {
	values := make([][]any, 0, len(t.Rows)+len(t.Footer)+2)
	values = append(values, toAny(t.Header))
	for _, row := range t.Rows {
		values = append(values, toAny(row))
	}
	if len(t.Footer) > 0 {
		values = append(values, []any{})
		for _, line := range t.Footer {
			values = append(values, []any{line})
		}
	}
	return values
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func width(values [][]any) int {
	w := 1
	for _, row := range values {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// sheetRange returns the A1 range covering rows x cols from the top-left cell.
func sheetRange(sheet string, rows, cols int) string {
	if rows < 1 {
		rows = 1
	}
	return fmt.Sprintf("%s!A1:%s%d", quoteSheet(sheet), columnName(cols), rows)
}

// columnName converts a 1-based column index to its letter form (1 -> A, 27 -> AA).
func columnName(n int) string {
	if n < 1 {
		n = 1
	}
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

// quoteSheet wraps names containing spaces or punctuation in single quotes.
func quoteSheet(name string) string {
	for _, r := range name {
		if !(r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_') {
			return "'" + strings.ReplaceAll(name, "'", "''") + "'"
		}
	}
	return name
}
