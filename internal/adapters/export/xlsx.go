// Package export renders borrower records as spreadsheets and PDFs.
// Everything is generated locally from records already fetched.
package export

import (
	"bytes"
	"fmt"
	"time"

	"daterbo-console/internal/core/domain"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Data Peminjam"

// RecordHeader is the column set of the record spreadsheet
var RecordHeader = []string{
	"No",
	"NIK",
	"Nama Peminjam",
	"User",
	"No. HP",
	"Aset",
	"Tahun Aset",
	"Kota",
	"Status",
	"Leasing",
	"Tgl Input",
	"Keterangan",
}

var columnWidths = []float64{6, 20, 28, 20, 18, 22, 11, 18, 18, 20, 12, 45}

// recordCells returns the row values of a record in RecordHeader order
func recordCells(no int, r *domain.BorrowerRecord) []any {
	return []any{
		no,
		r.NIK,
		r.Name,
		r.UserName(),
		r.Phone,
		r.Asset,
		r.AssetYear,
		r.City,
		r.StatusName(),
		r.LeasingName(),
		r.InputDate.Display(),
		r.Notes,
	}
}

// XLSXFileName names the spreadsheet after the export date
func XLSXFileName(at time.Time) string {
	return "DataPeminjam_" + at.Format("20060102") + ".xlsx"
}

// WriteXLSX renders records into a single-sheet workbook
func WriteXLSX(records []domain.BorrowerRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#1F4E78"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]any, len(RecordHeader))
	for i, h := range RecordHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(RecordHeader), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheetName, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i := range records {
		row := recordCells(i+1, &records[i])
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
