package tabular

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"stokhos/domain/variable"
	"stokhos/ports"
)

// Reader handles reading XLSX and CSV files into a headers-plus-rows
// table. Cells must not contain the state-key separator; composite keys
// would become ambiguous downstream.
type Reader struct{}

// NewReader creates a new tabular file reader
func NewReader() *Reader {
	return &Reader{}
}

// ReadTable implements ports.TabularReaderPort
func (r *Reader) ReadTable(ctx context.Context, path string) (*ports.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("data file not found: %s", path)
	}

	var rows [][]string
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		rows, err = readCSVRows(path)
	case ".xlsx":
		rows, err = readExcelRows(path)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
	if err != nil {
		return nil, err
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("data file must have a header row and at least one data row")
	}
	return processRows(rows)
}

func readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

func readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	// Always read Sheet1
	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, fmt.Errorf("failed to read Sheet1: %w", err)
	}
	return rows, nil
}

// processRows trims cells, pads short rows to the header width, and
// rejects cells containing the reserved separator.
func processRows(rows [][]string) (*ports.Table, error) {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	dataRows := make([][]string, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := make([]string, len(headers))
		for j := range headers {
			if j < len(rows[i]) {
				cell := strings.TrimSpace(rows[i][j])
				if strings.Contains(cell, variable.KeySeparator) {
					return nil, fmt.Errorf("row %d column %q: cell %q contains reserved separator %q",
						i+1, headers[j], cell, variable.KeySeparator)
				}
				row[j] = cell
			}
		}
		dataRows = append(dataRows, row)
	}

	return &ports.Table{Headers: headers, Rows: dataRows}, nil
}
