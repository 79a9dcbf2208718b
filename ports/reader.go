package ports

import "context"

// Table is tabular data already split into header/row form. Producing it
// from raw delimited text is a pure I/O boundary; the engine only ever
// sees this shape.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// TabularReaderPort reads a file into header/row form
type TabularReaderPort interface {
	ReadTable(ctx context.Context, path string) (*Table, error)
}
