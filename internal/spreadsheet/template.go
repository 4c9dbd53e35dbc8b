package spreadsheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const templateSheet = "Contacts"

// TemplateHeader is the header row of the downloadable import template.
var TemplateHeader = []string{"name", "phoneNumber"}

var templateExamples = [][]string{
	{"Jane Doe", "+256701234567"},
	{"John Doe", "0781234567"},
}

// GenerateImportTemplate builds an .xlsx workbook with the import header and two sample rows.
func GenerateImportTemplate() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(templateSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	// text format so spreadsheet apps keep the leading zero of local numbers
	textStyle, err := f.NewStyle(&excelize.Style{NumFmt: 49})
	if err != nil {
		return nil, fmt.Errorf("failed to create text style: %w", err)
	}

	if err := f.SetColStyle(templateSheet, "B", textStyle); err != nil {
		return nil, fmt.Errorf("failed to set column style: %w", err)
	}
	if err := writeRow(f, 1, TemplateHeader); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(templateSheet, "A1", "B1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}
	for i, ex := range templateExamples {
		if err := writeRow(f, i+2, ex); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(templateSheet, "A", "B", 22); err != nil {
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, row int, values []string) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellStr(templateSheet, cell, v); err != nil {
			return fmt.Errorf("failed to set cell %s: %w", cell, err)
		}
	}
	return nil
}
