package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Dataset defines tabular export content. Rows are keyed by header name so
// renderers stay independent of the query shape that produced them.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Sheet pairs a dataset with the worksheet name it renders into.
type Sheet struct {
	Name string
	Data Dataset
}

const (
	minColumnWidth = 10
	maxColumnWidth = 60
)

// ExcelExporter renders datasets into an xlsx workbook, one sheet per
// logical report.
type ExcelExporter struct{}

// NewExcelExporter builds an Excel exporter.
func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{}
}

// Render produces workbook bytes. Each sheet gets a styled header row
// followed by one row per dataset entry; column widths are sized from the
// longest stringified value in each column.
func (e *ExcelExporter) Render(sheets ...Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook requires at least one sheet")
	}

	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "bottom", Color: "2F528F", Style: 2},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, sheet := range sheets {
		if len(sheet.Data.Headers) == 0 {
			return nil, fmt.Errorf("sheet %q requires at least one header", sheet.Name)
		}

		name := sheet.Name
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return nil, fmt.Errorf("add sheet %q: %w", name, err)
			}
		}

		widths := make([]int, len(sheet.Data.Headers))
		for col, header := range sheet.Data.Headers {
			cell, err := excelize.CoordinatesToCellName(col+1, 1)
			if err != nil {
				return nil, fmt.Errorf("header cell: %w", err)
			}
			if err := f.SetCellValue(name, cell, header); err != nil {
				return nil, fmt.Errorf("write header: %w", err)
			}
			widths[col] = len(header)
		}

		lastHeader, err := excelize.CoordinatesToCellName(len(sheet.Data.Headers), 1)
		if err != nil {
			return nil, fmt.Errorf("header range: %w", err)
		}
		if err := f.SetCellStyle(name, "A1", lastHeader, headerStyle); err != nil {
			return nil, fmt.Errorf("style header: %w", err)
		}

		for rowIdx, row := range sheet.Data.Rows {
			for col, header := range sheet.Data.Headers {
				value := row[header]
				cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
				if err != nil {
					return nil, fmt.Errorf("data cell: %w", err)
				}
				if err := f.SetCellValue(name, cell, value); err != nil {
					return nil, fmt.Errorf("write cell %s: %w", cell, err)
				}
				if len(value) > widths[col] {
					widths[col] = len(value)
				}
			}
		}

		for col := range sheet.Data.Headers {
			colName, err := excelize.ColumnNumberToName(col + 1)
			if err != nil {
				return nil, fmt.Errorf("column name: %w", err)
			}
			width := widths[col] + 2
			if width < minColumnWidth {
				width = minColumnWidth
			}
			if width > maxColumnWidth {
				width = maxColumnWidth
			}
			if err := f.SetColWidth(name, colName, colName, float64(width)); err != nil {
				return nil, fmt.Errorf("size column %s: %w", colName, err)
			}
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("render workbook: %w", err)
	}
	return buf.Bytes(), nil
}
