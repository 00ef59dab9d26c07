// Package csvexport serializes a record list into spreadsheet-friendly CSV.
package csvexport

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// BOM makes spreadsheet applications read the file as UTF-8.
	BOM         = "\ufeff"
	ContentType = "text/csv;charset=utf-8"
)

// Column maps a record to one cell. Index is the 1-based row number.
type Column[T any] struct {
	Header string
	Value  func(index int, rec T) string
}

// Write emits the BOM, a header row and one row per record, LF separated.
func Write[T any](w io.Writer, cols []Column[T], rows []T) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(BOM); err != nil {
		return err
	}

	cells := make([]string, len(cols))
	for i, c := range cols {
		cells[i] = c.Header
	}
	if err := writeRow(bw, cells); err != nil {
		return err
	}

	for n, rec := range rows {
		for i, c := range cols {
			cells[i] = c.Value(n+1, rec)
		}
		if err := writeRow(bw, cells); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeRow(w *bufio.Writer, cells []string) error {
	for i, cell := range cells {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(Escape(cell)); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}

// Escape quotes a cell that contains a comma, a double quote or a line
// break, doubling any inner quotes.
func Escape(cell string) string {
	if !strings.ContainsAny(cell, ",\"\r\n") {
		return cell
	}
	return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
}

// Filename returns "<entity>-<YYYY-MM-DD>.csv" for the day of now.
func Filename(entity string, now time.Time) string {
	return fmt.Sprintf("%s-%s.csv", entity, now.Format("2006-01-02"))
}

// Serve writes rows as a file download.
func Serve[T any](w http.ResponseWriter, entity string, now time.Time, cols []Column[T], rows []T) error {
	w.Header().Set("Content-Type", ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, Filename(entity, now)))
	w.WriteHeader(http.StatusOK)
	return Write(w, cols, rows)
}
