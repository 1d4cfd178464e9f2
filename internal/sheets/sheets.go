// Package sheets appends ledger transactions to a Google Sheet as an
// off-site backup. The client authenticates with a service account and
// implements ledger.Listener so the cmd layer can wire it in like the AMQP
// publisher; the ledger itself never knows it exists.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"budgetbook/internal/core"
	"budgetbook/internal/ledger"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Config carries the credentials, either inline JSON or a file path. One of
// the two must be set.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if cfg.SheetName == "" {
		cfg.SheetName = "Expenses"
	}

	credentials := []byte(cfg.CredentialsJSON)
	if len(credentials) == 0 {
		if cfg.CredentialsFile == "" {
			return nil, errors.New("missing service account credentials")
		}
		raw, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		credentials = raw
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentials),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
	}, nil
}

// LedgerChanged implements ledger.Listener. Only added transactions are
// mirrored; a failed append is logged, never propagated.
func (c *Client) LedgerChanged(ev ledger.Event) {
	if ev.Kind != ledger.EventTransactionAdded || ev.Transaction == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.AppendTransaction(ctx, *ev.Transaction); err != nil {
		slog.ErrorContext(ctx, "Failed to back up transaction to sheet",
			"id", ev.Transaction.ID, "error", err)
	}
}

// AppendTransaction writes one row: date, title, amount, category, flag.
func (c *Client) AppendTransaction(ctx context.Context, tx core.Transaction) error {
	row := []interface{}{
		tx.Date.String(),
		tx.Title,
		tx.Amount.Float(),
		string(tx.Category),
		tx.IsRecurring,
	}
	vr := &gsheet.ValueRange{Values: [][]interface{}{row}}

	_, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, c.sheetName+"!A:E", vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append row: %w", err)
	}

	slog.DebugContext(ctx, "Backed up transaction to sheet",
		"id", tx.ID, "sheet", c.sheetName)
	return nil
}
