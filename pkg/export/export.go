// Package export writes the species catalog as CSV or Parquet.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/Sternrassler/pokedex-client/pkg/logging"
	"github.com/Sternrassler/pokedex-client/pkg/pokedex"
	"github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/writer"
)

// Format is an output encoding.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// ParseFormat accepts "csv" or "parquet", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatParquet:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want csv or parquet)", s)
	}
}

// CatalogRow is one catalog entry as written to disk.
type CatalogRow struct {
	ID   int32  `parquet:"name=id, type=INT32"`
	Name string `parquet:"name=name, type=BYTE_ARRAY, convertedtype=UTF8"`
	URL  string `parquet:"name=url, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// Rows converts references into rows, keeping their order.
func Rows(refs []pokedex.Reference) []CatalogRow {
	rows := make([]CatalogRow, len(refs))
	for i, r := range refs {
		rows[i] = CatalogRow{ID: int32(r.ID()), Name: r.Name, URL: r.URL}
	}
	return rows
}

// InitialCapacity is the starting size of the in-memory file buffer.
const InitialCapacity = 1024 * 1024

// parquetParallelism is the number of goroutines the parquet writer uses.
const parquetParallelism = 4

// Write encodes rows in format f to w.
func Write(w io.Writer, f Format, rows []CatalogRow) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, rows)
	case FormatParquet:
		return WriteParquet(w, rows)
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
}

// WriteCSV writes a header line of column names followed by one line per
// row.
func WriteCSV(w io.Writer, rows []CatalogRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columnNames()); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{strconv.Itoa(int(r.ID)), r.Name, r.URL}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteParquet encodes rows into an in-memory parquet file and copies it
// to w.
func WriteParquet(w io.Writer, rows []CatalogRow) error {
	buf := buffer.NewBufferFileCapacity(InitialCapacity)
	pw, err := writer.NewParquetWriter(buf, new(CatalogRow), parquetParallelism)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}

	for i := range rows {
		if err := pw.Write(&rows[i]); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("finish parquet file: %w", err)
	}

	logger := logging.NewLogger(logging.ComponentExport)
	logger.Debug().
		Int("rows", len(rows)).
		Int("bytes", len(buf.Bytes())).
		Msg("Parquet file written")

	_, err = w.Write(buf.Bytes())
	return err
}

// columnNames reads the column names from the parquet tags so both
// formats share one schema.
func columnNames() []string {
	t := reflect.TypeOf(CatalogRow{})
	names := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		for _, kv := range strings.Split(t.Field(i).Tag.Get("parquet"), ",") {
			k, v, ok := strings.Cut(strings.TrimSpace(kv), "=")
			if ok && k == "name" {
				names = append(names, v)
			}
		}
	}
	return names
}
