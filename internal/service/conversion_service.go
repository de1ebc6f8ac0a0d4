package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"dealsheet/internal/config"
	"dealsheet/internal/domain"
	"dealsheet/internal/metrics"
	"dealsheet/internal/port"
)

const sniffLen = 512

// ConvertInput is the DTO for a single deal letter conversion.
type ConvertInput struct {
	// RequestID correlates log lines. File names never derive from it.
	RequestID string
	FileName  string
	// Size is the declared upload size, or a negative value when unknown.
	Size int64
	File io.Reader
}

// ConversionService turns an uploaded deal letter PDF into a CRM workbook.
type ConversionService interface {
	Convert(ctx context.Context, input ConvertInput) (*domain.Conversion, error)
}

type conversionService struct {
	extractor port.TextExtractor
	parser    port.DealLetterParser
	renderer  port.SheetRenderer
	storage   port.ObjectStorage
	metrics   *metrics.Metrics
	cfg       *config.UploadConfig
	log       logrus.FieldLogger
}

// NewConversionService creates a new ConversionService implementation.
// storage and m may be nil.
func NewConversionService(
	extractor port.TextExtractor,
	parser port.DealLetterParser,
	renderer port.SheetRenderer,
	storage port.ObjectStorage,
	m *metrics.Metrics,
	cfg *config.UploadConfig,
	log logrus.FieldLogger,
) ConversionService {
	return &conversionService{
		extractor: extractor,
		parser:    parser,
		renderer:  renderer,
		storage:   storage,
		metrics:   m,
		cfg:       cfg,
		log:       log,
	}
}

func (s *conversionService) Convert(ctx context.Context, input ConvertInput) (result *domain.Conversion, err error) {
	id := uuid.New().String()
	requestID := input.RequestID
	if requestID == "" {
		requestID = id
	}
	log := s.log.WithFields(logrus.Fields{"request_id": requestID, "conversion_id": id, "file": input.FileName})
	defer func() { s.metrics.RecordConversion(err) }()

	if input.File == nil {
		return nil, domain.ErrMissingFile
	}

	// Validate file extension
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.FileName), "."))
	if _, ok := domain.AllowedExtensions[ext]; !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	// Validate declared size
	maxBytes := s.cfg.MaxBytes()
	if input.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	// Sniff magic bytes without consuming them
	br := bufio.NewReaderSize(input.File, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading file header: %w", err)
	}
	if _, ok := domain.AllowedContentTypes[http.DetectContentType(head)]; !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	log.Info("[1/4] saving uploaded PDF")
	started := time.Now()
	pdfPath, err := s.save(br, id, maxBytes)
	if pdfPath != "" {
		defer func() {
			if rmErr := os.Remove(pdfPath); rmErr != nil && !os.IsNotExist(rmErr) {
				log.WithError(rmErr).Warn("conversionService.Convert: failed to remove temporary PDF")
			}
		}()
	}
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveStage(domain.StageSave, time.Since(started))

	log.Info("[2/4] extracting text from PDF")
	started = time.Now()
	text, err := s.extractor.ExtractText(ctx, pdfPath)
	if err != nil {
		log.WithError(err).Error("conversionService.Convert: text extraction failed")
		return nil, asExtractionError(err)
	}
	s.metrics.ObserveStage(domain.StageExtract, time.Since(started))

	chars := utf8.RuneCountInString(text)
	log.WithField("chars", chars).Info("text extracted")
	if err := EnsureEnoughText(text, s.cfg.MinTextChars); err != nil {
		log.WithField("chars", chars).Warn("conversionService.Convert: document has too little text")
		return nil, err
	}

	log.Info("[3/4] parsing deal letter with the extraction service")
	started = time.Now()
	out, err := s.parser.Parse(ctx, port.ParseInput{Text: text})
	if err != nil {
		log.WithError(err).Error("conversionService.Convert: parsing failed")
		return nil, err
	}
	s.metrics.ObserveStage(domain.StageParse, time.Since(started))

	letter := out.Letter
	if letter == nil {
		letter = &domain.DealLetter{}
	}
	letter.Normalize()
	s.metrics.ObserveLetter(chars, len(letter.Placements))
	log.WithFields(logrus.Fields{
		"advertiser": letter.Deal.Text("advertiser_name"),
		"placements": len(letter.Placements),
		"model":      out.ModelUsed,
	}).Info("deal letter parsed")

	log.Info("[4/4] rendering workbook")
	started = time.Now()
	outputPath, err := s.renderer.Render(letter, id)
	if err != nil {
		log.WithError(err).Error("conversionService.Convert: rendering failed")
		if !errors.Is(err, domain.ErrRender) {
			err = fmt.Errorf("%w: %w", domain.ErrRender, err)
		}
		return nil, err
	}
	s.metrics.ObserveStage(domain.StageRender, time.Since(started))

	result = &domain.Conversion{
		ID:         id,
		RequestID:  requestID,
		SourceName: input.FileName,
		OutputPath: outputPath,
		TextChars:  chars,
		Placements: len(letter.Placements),
		ModelUsed:  out.ModelUsed,
	}
	result.ArchiveLocation = s.archive(ctx, log, id, outputPath)

	log.WithField("output", outputPath).Info("conversion complete")
	return result, nil
}

// save copies the upload into the work directory as temp_{id}.pdf. The
// returned path is set whenever a file was created, even on error.
func (s *conversionService) save(r io.Reader, id string, maxBytes int64) (string, error) {
	path := filepath.Join(s.cfg.WorkDir, "temp_"+id+".pdf")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating temporary PDF: %w", err)
	}

	n, err := io.Copy(f, io.LimitReader(r, maxBytes+1))
	closeErr := f.Close()
	if err != nil {
		return path, fmt.Errorf("writing temporary PDF: %w", err)
	}
	if closeErr != nil {
		return path, fmt.Errorf("closing temporary PDF: %w", closeErr)
	}
	if n > maxBytes {
		return path, domain.ErrFileTooLarge
	}
	return path, nil
}

// archive uploads the workbook when storage is configured. Failures are
// logged and never fail the conversion.
func (s *conversionService) archive(ctx context.Context, log logrus.FieldLogger, id, outputPath string) string {
	if s.storage == nil {
		return ""
	}
	started := time.Now()

	f, err := os.Open(outputPath)
	if err != nil {
		log.WithError(err).Warn("conversionService.archive: cannot open workbook")
		s.metrics.RecordArchive(err)
		return ""
	}
	defer f.Close()

	out, err := s.storage.Upload(ctx, port.UploadInput{
		Key:         id + ".xlsx",
		Body:        f,
		ContentType: domain.SpreadsheetContentType,
	})
	s.metrics.RecordArchive(err)
	if err != nil {
		log.WithError(fmt.Errorf("%w: %w", domain.ErrUploadFailed, err)).Warn("conversionService.archive: upload failed")
		return ""
	}
	s.metrics.ObserveStage(domain.StageArchive, time.Since(started))
	if out.Location != "" {
		log.WithField("location", out.Location).Info("workbook archived")
	}
	return out.Location
}

// EnsureEnoughText fails with ErrInsufficientText when text, once trimmed,
// has fewer than minChars characters.
func EnsureEnoughText(text string, minChars int) error {
	n := utf8.RuneCountInString(strings.TrimSpace(text))
	if n < minChars {
		return fmt.Errorf("%w: %d characters, need at least %d", domain.ErrInsufficientText, n, minChars)
	}
	return nil
}

func asExtractionError(err error) error {
	if errors.Is(err, domain.ErrExtraction) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrExtraction, err)
}
