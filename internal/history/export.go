package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"turfkiosk/internal/models"

	"github.com/xuri/excelize/v2"
)

var exportHeaders = []string{"Booking ID", "Date", "Time", "Facility", "Sport", "Price", "Status", "Created"}

// ExportRange writes the records dated within [from, to] to an XLSX
// workbook at path and reports how many were written.
func (s *Store) ExportRange(ctx context.Context, from, to, path string) (int, error) {
	records, err := s.ListByDateRange(ctx, from, to)
	if err != nil {
		return 0, err
	}
	if err := ExportXLSX(ctx, path, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// ExportXLSX writes the given records to an Excel workbook at path.
func ExportXLSX(ctx context.Context, path string, records []models.BookingRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Bookings"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	for col, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}

	for i, rec := range records {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		row := i + 2
		values := []interface{}{
			rec.BookingID,
			rec.Date,
			rec.DisplayTime,
			rec.FacilityID,
			rec.SportName,
			rec.Price,
			rec.Status,
			rec.CreatedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	return f.SaveAs(path)
}
