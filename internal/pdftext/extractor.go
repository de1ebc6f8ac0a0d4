// Package pdftext extracts page-delimited plain text from PDF documents.
package pdftext

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/sirupsen/logrus"

	"dealsheet/internal/domain"
	"dealsheet/internal/port"
)

var _ port.TextExtractor = (*Extractor)(nil)

// Extractor implements port.TextExtractor. The page tree is checked with
// pdfcpu first so corrupt, encrypted and empty documents fail before any
// text decoding starts.
type Extractor struct {
	log logrus.FieldLogger
}

// NewExtractor creates a PDF text extractor.
func NewExtractor(log logrus.FieldLogger) *Extractor {
	return &Extractor{log: log}
}

// PageMarker returns the separator written before the text of page n (1-based).
func PageMarker(n int) string {
	return fmt.Sprintf("--- Page %d ---", n)
}

// ExtractText returns the text of every page, each preceded by its page
// marker, trimmed of surrounding whitespace.
func (e *Extractor) ExtractText(ctx context.Context, path string) (text string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	pages, err := e.pageCount(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrExtraction, err)
	}
	if pages == 0 {
		return "", fmt.Errorf("%w: document has no pages", domain.ErrExtraction)
	}

	// The text decoder panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: decoding pdf: %v", domain.ErrExtraction, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: opening pdf: %w", domain.ErrExtraction, err)
	}
	defer func() { _ = f.Close() }()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		b.WriteString("\n" + PageMarker(i) + "\n")

		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %w", domain.ErrExtraction, i, err)
		}
		b.WriteString(pageText)
	}

	text = strings.TrimSpace(b.String())
	e.log.WithFields(logrus.Fields{
		"pages": pages,
		"chars": len(text),
	}).Debug("pdftext: extracted text")
	return text, nil
}

func (e *Extractor) pageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening pdf: %w", err)
	}
	defer func() { _ = f.Close() }()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	n, err := api.PageCount(f, conf)
	if err != nil {
		return 0, fmt.Errorf("reading page tree: %w", err)
	}
	return n, nil
}
