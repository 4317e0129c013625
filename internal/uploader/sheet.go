package uploader

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadSheet parses the first worksheet of an XLSX file into backend-ready
// records. The first row is the header; header names are normalized with
// NormalizeHeader. Empty cells are omitted from the record entirely (the
// backend treats absent and null differently) and textual values are
// trimmed.
func ReadSheet(path string) ([]map[string]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheet)
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = NormalizeHeader(h)
	}

	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, normalizeRecord(headers, row))
	}
	return records, nil
}

// NormalizeHeader maps a spreadsheet column name to its canonical backend
// form: uppercased and stripped of surrounding whitespace. Idempotent.
func NormalizeHeader(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// normalizeRecord builds one outgoing record. Cells beyond the header width
// are dropped; blank cells produce no field at all.
func normalizeRecord(headers []string, row []string) map[string]string {
	record := make(map[string]string, len(headers))
	for i, cell := range row {
		if i >= len(headers) || headers[i] == "" {
			continue
		}
		value := strings.TrimSpace(cell)
		if value == "" {
			continue
		}
		record[headers[i]] = value
	}
	return record
}
