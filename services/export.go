package services

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"homepro-server/models"
)

const bookingsSheet = "Bookings"

var bookingExportColumns = []string{
	"ID", "Provider", "Date", "Time", "Hours", "Total", "Status", "Address", "Notes", "Created",
}

// WriteBookingsXLSX renders bookings as a single-sheet workbook
func WriteBookingsXLSX(w io.Writer, bookings []models.Booking) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", bookingsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := writeXLSXRow(f, 1, toRow(bookingExportColumns)); err != nil {
		return err
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		endCell, _ := excelize.CoordinatesToCellName(len(bookingExportColumns), 1)
		_ = f.SetCellStyle(bookingsSheet, "A1", endCell, style)
	}

	for i, b := range bookings {
		providerName := ""
		if b.Provider != nil {
			providerName = b.Provider.BusinessName
		}
		address := ""
		if b.Address != nil {
			address = fmt.Sprintf("%s, %s, %s %s", b.Address.AddressLine1, b.Address.City, b.Address.State, b.Address.ZipCode)
		}
		notes := ""
		if b.Notes != nil {
			notes = *b.Notes
		}

		row := []interface{}{
			b.ID, providerName, b.ServiceDate, b.ServiceTime, b.EstimatedHours, b.TotalAmount,
			string(b.Status), address, notes, b.CreatedAt.Format("2006-01-02 15:04"),
		}
		if err := writeXLSXRow(f, i+2, row); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(bookingsSheet, "B", "B", 28)
	_ = f.SetColWidth(bookingsSheet, "H", "H", 40)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeXLSXRow(f *excelize.File, rowNum int, values []interface{}) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(bookingsSheet, cell, v); err != nil {
			return fmt.Errorf("set %s: %w", cell, err)
		}
	}
	return nil
}

func toRow(values []string) []interface{} {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}
