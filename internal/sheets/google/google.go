package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Config selects the spreadsheet and the service account used to reach it.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	CredentialsJSON string
}

// values is the part of the Sheets values API the mirror needs.
type values interface {
	Get(ctx context.Context, rng string) ([][]any, error)
	Update(ctx context.Context, rng string, rows [][]any) error
	Append(ctx context.Context, rng string, rows [][]any) error
	Clear(ctx context.Context, rng string) error
}

// Client mirrors expenses into one sheet, one row per expense.
type Client struct {
	values values
	sheet  string
	logger *log.Logger

	// find-then-write must not interleave
	mu sync.Mutex
}

var _ sheets.Mirror = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
// Credentials come from cfg, then GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheet := strings.TrimSpace(cfg.SheetName)
	if sheet == "" {
		sheet = "Expenses"
	}

	logger = logger.WithComponent(log.ComponentSheets)
	svc, err := newSheetsService(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(&serviceValues{svc: svc, spreadsheetID: cfg.SpreadsheetID}, sheet, logger), nil
}

func newClient(v values, sheet string, logger *log.Logger) *Client {
	return &Client{
		values: v,
		sheet:  sheet,
		logger: logger.WithComponent(log.ComponentSheets),
	}
}

func credentials(cfg Config) ([]byte, error) {
	inline := strings.TrimSpace(cfg.CredentialsJSON)
	file := strings.TrimSpace(cfg.CredentialsFile)
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
		return nil, errors.New("missing service account credentials (set GOOGLE_CREDENTIALS_JSON, GOOGLE_CREDENTIALS_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

func newSheetsService(ctx context.Context, cfg Config, logger *log.Logger) (*gsheet.Service, error) {
	creds, err := credentials(cfg)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Creating Google Sheets service", "credentials_size", len(creds))

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// EnsureHeader writes the header row when the sheet is empty.
func (c *Client) EnsureHeader(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	first, err := c.values.Get(ctx, rowRange(c.sheet, 1))
	if err != nil {
		return fmt.Errorf("read header of %s: %w", c.sheet, err)
	}
	if len(first) > 0 && len(first[0]) > 0 {
		return nil
	}
	if err := c.values.Update(ctx, rowRange(c.sheet, 1), [][]any{header}); err != nil {
		return fmt.Errorf("write header of %s: %w", c.sheet, err)
	}
	return nil
}

func (c *Client) UpsertExpense(ctx context.Context, e core.Expense) error {
	if e.ID == "" {
		return core.ErrEmptyID
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	row, err := c.locate(ctx, e.ID)
	if err != nil {
		return err
	}
	data := [][]any{expenseRow(e)}
	if row == 0 {
		if err := c.values.Append(ctx, tableRange(c.sheet), data); err != nil {
			return fmt.Errorf("append row to %s: %w", c.sheet, err)
		}
		c.logger.DebugContext(ctx, "Appended expense row", log.FieldExpenseID, e.ID)
		return nil
	}
	if err := c.values.Update(ctx, rowRange(c.sheet, row), data); err != nil {
		return fmt.Errorf("update row %d in %s: %w", row, c.sheet, err)
	}
	c.logger.DebugContext(ctx, "Updated expense row", log.FieldExpenseID, e.ID, "row", row)
	return nil
}

// DeleteExpense blanks the row for id. Rows are cleared rather than removed
// so that row numbers held by concurrent readers stay valid.
func (c *Client) DeleteExpense(ctx context.Context, id string) error {
	if id == "" {
		return core.ErrEmptyID
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	row, err := c.locate(ctx, id)
	if err != nil {
		return err
	}
	if row == 0 {
		c.logger.DebugContext(ctx, "No mirror row to delete", log.FieldExpenseID, id)
		return nil
	}
	if err := c.values.Clear(ctx, rowRange(c.sheet, row)); err != nil {
		return fmt.Errorf("clear row %d in %s: %w", row, c.sheet, err)
	}
	return nil
}

func (c *Client) locate(ctx context.Context, id string) (int, error) {
	column, err := c.values.Get(ctx, idColumn(c.sheet))
	if err != nil {
		return 0, fmt.Errorf("read ids of %s: %w", c.sheet, err)
	}
	return findRow(column, id), nil
}

// serviceValues adapts the generated Sheets service to values.
type serviceValues struct {
	svc           *gsheet.Service
	spreadsheetID string
}

func (s *serviceValues) Get(ctx context.Context, rng string) ([][]any, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (s *serviceValues) Update(ctx context.Context, rng string, rows [][]any) error {
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	return err
}

func (s *serviceValues) Append(ctx context.Context, rng string, rows [][]any) error {
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	return err
}

func (s *serviceValues) Clear(ctx context.Context, rng string) error {
	_, err := s.svc.Spreadsheets.Values.Clear(s.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	return err
}
