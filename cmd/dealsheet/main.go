// Command dealsheet converts deal letter PDFs on the local machine using the
// same pipeline as the HTTP service.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"dealsheet/internal/config"
	"dealsheet/internal/logging"
	"dealsheet/internal/parser"
	"dealsheet/internal/parser/providers"
	"dealsheet/internal/pdftext"
	"dealsheet/internal/port"
)

var Version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	// Progress goes to stderr so stdout stays clean for --text-only and --json-only.
	logger := logging.NewWithOutput(cfg.Log, os.Stderr)

	r := &runner{
		out:       os.Stdout,
		log:       logger,
		extractor: pdftext.NewExtractor(logger),
		newParser: func() (port.DealLetterParser, error) {
			return buildParser(cfg, logger)
		},
		minChars: cfg.Upload.MinTextChars,
	}

	if err := newApp(r).Run(os.Args); err != nil {
		logger.WithError(err).Error("dealsheet failed")
		os.Exit(1)
	}
}

func buildParser(cfg *config.Config, log logrus.FieldLogger) (port.DealLetterParser, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	providers.Register()
	completer, err := parser.NewChain(&cfg.Parser, log)
	if err != nil {
		return nil, err
	}
	return parser.NewExtractor(completer, log), nil
}

func newApp(r *runner) *cli.App {
	return &cli.App{
		Name:    "dealsheet",
		Usage:   "turn deal letter PDFs into YuktaOne import workbooks",
		Version: Version,
		Commands: []*cli.Command{
			{
				Name:  "convert",
				Usage: "extract, parse and render a deal letter PDF",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "deal letter PDF", Required: true},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "workbook to write (.xlsx, or .csv for a plain export)", Value: "campaign_output.xlsx"},
					&cli.BoolFlag{Name: "text-only", Usage: "print the extracted text and stop"},
					&cli.BoolFlag{Name: "json-only", Usage: "print the structured JSON and stop"},
				},
				Action: r.convert,
			},
			{
				Name:  "render",
				Usage: "render a saved structured JSON payload without calling a model",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "json", Aliases: []string{"j"}, Usage: "structured deal letter JSON", Required: true},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "workbook to write (.xlsx, or .csv for a plain export)", Value: "campaign_output.xlsx"},
				},
				Action: r.render,
			},
		},
	}
}
