package mirror

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const noCategory = "Не указана"

// SheetsSink appends one row per expense to a Google Sheets range.
type SheetsSink struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
	log           *slog.Logger
}

// NewSheetsSink builds a sink writing to the given spreadsheet using a
// service-account credentials file.
func NewSheetsSink(ctx context.Context, spreadsheetID, sheetName, credentialsFile string, log *slog.Logger) (*SheetsSink, error) {
	svc, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	if log == nil {
		log = slog.Default()
	}

	return &SheetsSink{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		log:           log,
	}, nil
}

// Append writes the record as a new row: date, employee, amount, category,
// purpose, recorded-at timestamp.
func (s *SheetsSink) Append(ctx context.Context, rec Record) error {
	category := rec.Category
	if category == "" {
		category = noCategory
	}

	row := []any{
		rec.Date.Format("02.01.2006"),
		rec.FullName,
		rec.Amount.StringFixed(2),
		category,
		rec.Purpose,
		rec.RecordedAt.Format("02.01.2006 15:04:05"),
	}

	_, err := s.svc.Spreadsheets.Values.Append(
		s.spreadsheetID,
		fmt.Sprintf("%s!A:F", s.sheetName),
		&sheets.ValueRange{Values: [][]any{row}},
	).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append row to %s: %w", s.sheetName, err)
	}

	s.log.Debug("expense mirrored to sheet", "sheet", s.sheetName, "employee", rec.FullName)

	return nil
}
