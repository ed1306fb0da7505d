// Package export appends monthly overview rows to a Google
// spreadsheet using a service account.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"cuentas/internal/config"
	"cuentas/internal/core"
	"cuentas/internal/log"
	"cuentas/internal/metrics"
)

type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
}

// New creates an exporter from the configured spreadsheet and
// credentials.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Exporter, error) {
	if cfg.GoogleSpreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Exporter{
		svc:           svc,
		spreadsheetID: cfg.GoogleSpreadsheetID,
		sheetName:     cfg.GoogleSheetName,
		logger:        logger.WithComponent(log.ComponentExport),
	}, nil
}

func newSheetsService(ctx context.Context, cfg *config.Config) (*gsheet.Service, error) {
	var credentialsJSON []byte
	switch {
	case cfg.GoogleCredentialsJSON != "":
		credentialsJSON = []byte(cfg.GoogleCredentialsJSON)
	case cfg.GoogleCredentialsFile != "":
		data, err := os.ReadFile(cfg.GoogleCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// AppendOverview appends one row summarizing the month.
func (e *Exporter) AppendOverview(ctx context.Context, b core.MonthlyBalance) error {
	if e.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:I", e.sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{overviewRow(b, time.Now().UTC())}}

	_, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		metrics.ExportErrorsTotal.Inc()
		return fmt.Errorf("append overview row to %s: %w", e.sheetName, err)
	}

	metrics.ExportsTotal.Inc()
	e.logger.InfoContext(ctx, "overview exported",
		log.FieldMonth, b.Month.String(),
		"sheet", e.sheetName)
	return nil
}

// overviewRow flattens a monthly balance into a spreadsheet row.
func overviewRow(b core.MonthlyBalance, exportedAt time.Time) []any {
	return []any{
		b.Month.String(),
		b.TotalOwedIncoming.String(),
		b.TotalOwedOutgoing.String(),
		b.IncomingDue.String(),
		b.OutgoingDue.String(),
		b.FixedPending.String(),
		b.Balance.String(),
		b.OutstandingBalance.String(),
		exportedAt.Format(time.RFC3339),
	}
}
