package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// PhoneHeaders lists the column names that may hold a phone number, in lookup order.
var PhoneHeaders = []string{
	"phoneNumber",
	"phone",
	"mobile",
	"contact",
	"number",
	"Phone Number",
	"Mobile Number",
	"Contact Number",
	"PhoneNumber",
	"Phone",
	"Mobile",
	"Contact",
	"Number",
}

var (
	ErrNoSheets        = errors.New("spreadsheet has no sheets")
	ErrUnsupportedType = errors.New("unsupported file type, upload an .xlsx or .csv file")
	ErrNotText         = errors.New("CSV file is not valid UTF-8 text")
)

// Row maps a header cell to the value in that column.
type Row map[string]string

// Candidate returns the first non-empty phone column of the row.
func (r Row) Candidate() (string, bool) {
	for _, h := range PhoneHeaders {
		if v := strings.TrimSpace(r[h]); v != "" {
			return v, true
		}
	}
	return "", false
}

// Candidates collects the phone column of every row that has one.
func Candidates(rows []Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		if v, ok := r.Candidate(); ok {
			out = append(out, v)
		}
	}
	return out
}

// Parse reads the first sheet of an .xlsx workbook or a .csv file. The first row is the header.
// Names without an extension are sniffed: zip content is read as xlsx, anything else as csv.
// Any other extension is rejected with ErrUnsupportedType.
func Parse(fileName string, data []byte) ([]Row, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case "", ".csv", ".xlsx", ".xlsm", ".xltx":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var (
		records [][]string
		err     error
	)
	switch ext {
	case ".csv":
		records, err = readCSV(data)
	case ".xlsx", ".xlsm", ".xltx":
		records, err = readWorkbook(data)
	default:
		if bytes.HasPrefix(data, []byte("PK")) {
			records, err = readWorkbook(data)
		} else {
			records, err = readCSV(data)
		}
	}
	if err != nil {
		return nil, err
	}
	return toRows(records), nil
}

func readWorkbook(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse Excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, ErrNoSheets
	}

	// raw values keep long numbers like 256701234567 out of scientific notation
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return rows, nil
}

func readCSV(data []byte) ([][]string, error) {
	if !utf8.Valid(data) || bytes.IndexByte(data, 0) >= 0 {
		return nil, fmt.Errorf("failed to parse CSV file: %w", ErrNotText)
	}

	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV file: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func toRows(records [][]string) []Row {
	if len(records) < 2 {
		return nil
	}

	header := records[0]
	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(Row, len(header))
		empty := true
		for i, h := range header {
			h = strings.TrimSpace(h)
			if h == "" || i >= len(rec) {
				continue
			}
			row[h] = rec[i]
			if strings.TrimSpace(rec[i]) != "" {
				empty = false
			}
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows
}
