package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"dealsheet/internal/csvexport"
	"dealsheet/internal/domain"
	"dealsheet/internal/parser"
	"dealsheet/internal/port"
	"dealsheet/internal/service"
	"dealsheet/internal/sheet"
)

// runner holds the pipeline pieces behind the CLI commands. The parser is
// built lazily so --text-only works without provider credentials.
type runner struct {
	out       io.Writer
	log       logrus.FieldLogger
	extractor port.TextExtractor
	newParser func() (port.DealLetterParser, error)
	minChars  int
}

func (r *runner) convert(c *cli.Context) error {
	if c.Bool("text-only") && c.Bool("json-only") {
		return errors.New("--text-only and --json-only are mutually exclusive")
	}
	input, output := c.String("input"), c.String("output")
	log := r.log.WithField("input", input)

	started := time.Now()
	log.Info("[1/3] extracting text")
	text, err := r.extractor.ExtractText(c.Context, input)
	if err != nil {
		return err
	}
	if c.Bool("text-only") {
		_, err = fmt.Fprintln(r.out, text)
		return err
	}
	if err := service.EnsureEnoughText(text, r.minChars); err != nil {
		return err
	}

	log.Info("[2/3] parsing deal letter")
	p, err := r.newParser()
	if err != nil {
		return err
	}
	out, err := p.Parse(c.Context, port.ParseInput{Text: text})
	if err != nil {
		return err
	}
	letter := out.Letter
	if letter == nil {
		letter = &domain.DealLetter{}
	}
	letter.Normalize()
	if c.Bool("json-only") {
		return writeJSON(r.out, letter)
	}

	log.WithField("output", output).Info("[3/3] rendering workbook")
	if err := r.writeOutput(letter, output); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"output":     output,
		"placements": len(letter.Placements),
		"model":      out.ModelUsed,
		"elapsed":    time.Since(started).Round(time.Millisecond),
	}).Info("conversion complete")
	return nil
}

func (r *runner) render(c *cli.Context) error {
	raw, err := os.ReadFile(c.String("json"))
	if err != nil {
		return err
	}
	letter, err := parser.DecodeDealLetter(parser.StripCodeFences(string(raw)))
	if err != nil {
		return err
	}
	if err := r.writeOutput(letter, c.String("output")); err != nil {
		return err
	}
	r.log.WithFields(logrus.Fields{
		"output":     c.String("output"),
		"placements": len(letter.Placements),
	}).Info("workbook written")
	return nil
}

// writeOutput renders letter to path as a workbook, or as CSV when path ends
// in .csv.
func (r *runner) writeOutput(letter *domain.DealLetter, path string) error {
	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		return sheet.NewRenderer(filepath.Dir(path), r.log).RenderFile(letter, path)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := csvexport.Export(f, letter); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func writeJSON(w io.Writer, letter *domain.DealLetter) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(letter)
}
