package sheet

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"dealsheet/internal/domain"
	"dealsheet/internal/port"
)

// SheetName is the title of the single worksheet.
const SheetName = "Deal & Placements"

// Column widths: label, value, comment.
var columnWidths = [3]float64{50, 30, 55}

var columns = [3]string{"A", "B", "C"}

var _ port.SheetRenderer = (*Renderer)(nil)

// Renderer implements port.SheetRenderer with excelize.
type Renderer struct {
	outputDir string
	log       logrus.FieldLogger
}

// NewRenderer creates a renderer writing workbooks into outputDir.
func NewRenderer(outputDir string, log logrus.FieldLogger) *Renderer {
	return &Renderer{outputDir: outputDir, log: log}
}

// OutputName returns the workbook file name for a conversion.
func OutputName(id string) string {
	return "output_" + id + ".xlsx"
}

// Render writes the workbook for letter into the output directory and
// returns its path.
func (r *Renderer) Render(letter *domain.DealLetter, id string) (string, error) {
	path := filepath.Join(r.outputDir, OutputName(id))
	if err := r.RenderFile(letter, path); err != nil {
		return "", err
	}
	r.log.WithFields(logrus.Fields{
		"path":       path,
		"placements": placementCount(letter),
	}).Debug("sheet.Renderer: workbook written")
	return path, nil
}

// RenderFile writes the workbook for letter to path.
func (r *Renderer) RenderFile(letter *domain.DealLetter, path string) error {
	f, err := Build(letter)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("%w: saving %s: %w", domain.ErrRender, path, err)
	}
	return nil
}

// Write streams the workbook for letter to w.
func Write(letter *domain.DealLetter, w io.Writer) error {
	f, err := Build(letter)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrRender, err)
	}
	return nil
}

// Build lays out letter in a new in-memory workbook.
func Build(letter *domain.DealLetter) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := build(f, letter); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrRender, err)
	}
	return f, nil
}

func build(f *excelize.File, letter *domain.DealLetter) error {
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	headerStyle, bodyStyle, err := newStyles(f)
	if err != nil {
		return err
	}

	for i, line := range Plan(letter) {
		row := i + 1
		if line.Kind == LineBlank {
			continue
		}
		first, _ := excelize.CoordinatesToCellName(1, row)
		last, _ := excelize.CoordinatesToCellName(len(columns), row)
		values := []interface{}{line.Cells[0], line.Cells[1], line.Cells[2]}
		if err := f.SetSheetRow(SheetName, first, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", row, err)
		}
		style := bodyStyle
		if line.Kind == LineHeader {
			style = headerStyle
		}
		if err := f.SetCellStyle(SheetName, first, last, style); err != nil {
			return fmt.Errorf("styling row %d: %w", row, err)
		}
	}

	for i, col := range columns {
		if err := f.SetColWidth(SheetName, col, col, columnWidths[i]); err != nil {
			return fmt.Errorf("setting width of %s: %w", col, err)
		}
	}
	return nil
}

func newStyles(f *excelize.File) (header, body int, err error) {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	header, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 10},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"FFFF00"}, Pattern: 1},
		Border: border,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("creating header style: %w", err)
	}
	body, err = f.NewStyle(&excelize.Style{Border: border})
	if err != nil {
		return 0, 0, fmt.Errorf("creating body style: %w", err)
	}
	return header, body, nil
}

func placementCount(letter *domain.DealLetter) int {
	if letter == nil {
		return 0
	}
	return len(letter.Placements)
}
