package csvexport

import (
	"encoding/csv"
	"io"

	"dealsheet/internal/domain"
	"dealsheet/internal/sheet"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Writer wraps csv.Writer for exporting a deal letter in the workbook layout.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteLetter writes the same rows the workbook carries, three columns each.
// Separator lines become empty records.
func (w *Writer) WriteLetter(letter *domain.DealLetter) error {
	for _, line := range sheet.Plan(letter) {
		row := make([]string, len(line.Cells))
		for i, cell := range line.Cells {
			row[i] = escapeFormula(cell)
		}
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// escapeFormula prefixes cells that spreadsheet applications would evaluate
// as formulas with a single quote.
func escapeFormula(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// Export writes the BOM and the full letter to out.
func Export(out io.Writer, letter *domain.DealLetter) error {
	if _, err := out.Write(BOM); err != nil {
		return err
	}
	w := NewWriter(out)
	if err := w.WriteLetter(letter); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
