package service_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dealsheet/internal/config"
	"dealsheet/internal/domain"
	"dealsheet/internal/metrics"
	"dealsheet/internal/port"
	"dealsheet/internal/service"
	"dealsheet/mocks"
)

const dealText = "\n--- Page 1 ---\nDEAL LETTER Advertiser: Acme Foods Agency: Blue Media Campaign: IPL 2025 Rate 350 per 10s"

type fixture struct {
	extractor *mocks.MockTextExtractor
	parser    *mocks.MockDealLetterParser
	renderer  *mocks.MockSheetRenderer
	storage   *mocks.MockObjectStorage
	cfg       *config.UploadConfig
	hook      *test.Hook
	svc       service.ConversionService
}

func newFixture(t *testing.T, withStorage bool) *fixture {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	f := &fixture{
		extractor: new(mocks.MockTextExtractor),
		parser:    new(mocks.MockDealLetterParser),
		renderer:  new(mocks.MockSheetRenderer),
		storage:   new(mocks.MockObjectStorage),
		cfg: &config.UploadConfig{
			MaxFileSizeMB: 1,
			MinTextChars:  50,
			WorkDir:       t.TempDir(),
			OutputDir:     t.TempDir(),
		},
		hook: hook,
	}
	var storage port.ObjectStorage
	if withStorage {
		storage = f.storage
	}
	f.svc = service.NewConversionService(f.extractor, f.parser, f.renderer, storage,
		metrics.New(prometheus.NewRegistry()), f.cfg, logger)
	return f
}

// pdfContent returns bytes that sniff as a PDF.
func pdfContent() []byte {
	return []byte("%PDF-1.4 test content that is at least a few bytes long for detection purposes")
}

// pngContent returns minimal valid PNG bytes (magic bytes).
func pngContent() []byte {
	header := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	return append(header, bytes.Repeat([]byte{0x00}, 100)...)
}

func input(name string, content []byte) service.ConvertInput {
	return service.ConvertInput{
		RequestID: "req-1",
		FileName:  name,
		Size:      int64(len(content)),
		File:      bytes.NewReader(content),
	}
}

// leftovers lists temporary PDFs still in the work directory.
func (f *fixture) leftovers(t *testing.T) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(f.cfg.WorkDir, "temp_*.pdf"))
	require.NoError(t, err)
	return matches
}

func (f *fixture) isTempPDF(path string) bool {
	name := filepath.Base(path)
	return filepath.Dir(path) == f.cfg.WorkDir && strings.HasPrefix(name, "temp_") && strings.HasSuffix(name, ".pdf")
}

func (f *fixture) writeOutput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(f.cfg.OutputDir, "output.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("workbook"), 0o600))
	return path
}

func TestConvert_Success(t *testing.T) {
	f := newFixture(t, false)
	outPath := f.writeOutput(t)
	letter := &domain.DealLetter{
		Deal:       domain.Fields{"advertiser_name": "Acme Foods"},
		Placements: []domain.Fields{{"platform": "CTV"}, {"platform": "Mobile"}},
	}

	f.extractor.On("ExtractText", mock.Anything, mock.MatchedBy(f.isTempPDF)).
		Run(func(args mock.Arguments) {
			data, err := os.ReadFile(args.String(1))
			require.NoError(t, err)
			assert.Equal(t, pdfContent(), data)
		}).
		Return(dealText, nil)
	f.parser.On("Parse", mock.Anything, port.ParseInput{Text: dealText}).
		Return(&port.ParseOutput{Letter: letter, ModelUsed: "gpt-4o"}, nil)
	f.renderer.On("Render", letter, mock.AnythingOfType("string")).Return(outPath, nil)

	result, err := f.svc.Convert(context.Background(), input("Deal Letter.PDF", pdfContent()))
	require.NoError(t, err)

	assert.Equal(t, "req-1", result.RequestID)
	assert.Len(t, result.ID, 36)
	assert.Equal(t, result.ID, f.renderer.Calls[0].Arguments.String(1))
	assert.Equal(t, "temp_"+result.ID+".pdf", filepath.Base(f.extractor.Calls[0].Arguments.String(1)))
	assert.Equal(t, "Deal Letter.PDF", result.SourceName)
	assert.Equal(t, outPath, result.OutputPath)
	assert.Equal(t, 2, result.Placements)
	assert.Equal(t, "gpt-4o", result.ModelUsed)
	assert.Equal(t, len([]rune(dealText)), result.TextChars)
	assert.Empty(t, result.ArchiveLocation)
	assert.Empty(t, f.leftovers(t))

	var stages []string
	for _, e := range f.hook.AllEntries() {
		if strings.HasPrefix(e.Message, "[") {
			stages = append(stages, e.Message[:5])
		}
		assert.Equal(t, "req-1", e.Data["request_id"])
	}
	assert.Equal(t, []string{"[1/4]", "[2/4]", "[3/4]", "[4/4]"}, stages)

	f.extractor.AssertExpectations(t)
	f.parser.AssertExpectations(t)
	f.renderer.AssertExpectations(t)
}

func TestConvert_RequestIDDefaultsToConversionID(t *testing.T) {
	f := newFixture(t, false)
	outPath := f.writeOutput(t)
	f.extractor.On("ExtractText", mock.Anything, mock.Anything).Return(dealText, nil)
	f.parser.On("Parse", mock.Anything, mock.Anything).Return(&port.ParseOutput{Letter: &domain.DealLetter{}}, nil)
	f.renderer.On("Render", mock.Anything, mock.Anything).Return(outPath, nil)

	in := input("deal.pdf", pdfContent())
	in.RequestID = ""
	result, err := f.svc.Convert(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, result.ID, result.RequestID)
}

func TestConvert_HostileRequestIDNeverNamesFiles(t *testing.T) {
	f := newFixture(t, false)
	f.extractor.On("ExtractText", mock.Anything, mock.MatchedBy(f.isTempPDF)).Return("", nil)

	in := input("deal.pdf", pdfContent())
	in.RequestID = "../../etc/passwd"
	_, err := f.svc.Convert(context.Background(), in)
	require.ErrorIs(t, err, domain.ErrInsufficientText)
	f.extractor.AssertExpectations(t)
}

func TestConvert_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		input service.ConvertInput
		want  error
	}{
		{"missing file", service.ConvertInput{FileName: "deal.pdf"}, domain.ErrMissingFile},
		{"wrong extension", input("deal.docx", pdfContent()), domain.ErrUnsupportedFileType},
		{"no extension", input("deal", pdfContent()), domain.ErrUnsupportedFileType},
		{"not a pdf", input("deal.pdf", pngContent()), domain.ErrUnsupportedFileType},
		{"declared too large", service.ConvertInput{FileName: "deal.pdf", Size: 2 << 20, File: bytes.NewReader(pdfContent())}, domain.ErrFileTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, false)

			_, err := f.svc.Convert(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.want)
			f.extractor.AssertNotCalled(t, "ExtractText", mock.Anything, mock.Anything)
		})
	}
}

func TestConvert_StreamTooLarge(t *testing.T) {
	f := newFixture(t, false)
	content := append(pdfContent(), bytes.Repeat([]byte("x"), 1<<20)...)

	in := input("deal.pdf", content)
	in.Size = -1
	_, err := f.svc.Convert(context.Background(), in)

	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
	assert.Empty(t, f.leftovers(t))
	f.extractor.AssertNotCalled(t, "ExtractText", mock.Anything, mock.Anything)
}

func TestConvert_InsufficientTextSkipsParser(t *testing.T) {
	f := newFixture(t, false)
	f.extractor.On("ExtractText", mock.Anything, mock.Anything).Return("\n--- Page 1 ---\n   short   ", nil)

	_, err := f.svc.Convert(context.Background(), input("deal.pdf", pdfContent()))

	require.ErrorIs(t, err, domain.ErrInsufficientText)
	assert.ErrorIs(t, err, domain.ErrExtraction)
	f.parser.AssertNotCalled(t, "Parse", mock.Anything, mock.Anything)
	assert.Empty(t, f.leftovers(t))
}

func TestConvert_ExtractionFailure(t *testing.T) {
	t.Run("taxonomy error passes through", func(t *testing.T) {
		f := newFixture(t, false)
		cause := fmt.Errorf("%w: corrupt xref", domain.ErrExtraction)
		f.extractor.On("ExtractText", mock.Anything, mock.Anything).Return("", cause)

		_, err := f.svc.Convert(context.Background(), input("deal.pdf", pdfContent()))
		assert.Equal(t, cause, err)
		assert.Empty(t, f.leftovers(t))
	})

	t.Run("plain error is classified", func(t *testing.T) {
		f := newFixture(t, false)
		f.extractor.On("ExtractText", mock.Anything, mock.Anything).Return("", errors.New("bad stream"))

		_, err := f.svc.Convert(context.Background(), input("deal.pdf", pdfContent()))
		assert.ErrorIs(t, err, domain.ErrExtraction)
	})
}

func TestConvert_ParserErrorsPropagate(t *testing.T) {
	for _, cause := range []error{
		fmt.Errorf("%w: unexpected end of JSON input", domain.ErrResponseFormat),
		fmt.Errorf("%w: azure: timeout", domain.ErrService),
	} {
		f := newFixture(t, false)
		f.extractor.On("ExtractText", mock.Anything, mock.Anything).Return(dealText, nil)
		f.parser.On("Parse", mock.Anything, mock.Anything).Return(nil, cause)

		_, err := f.svc.Convert(context.Background(), input("deal.pdf", pdfContent()))
		assert.Equal(t, cause, err)
		f.renderer.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
		assert.Empty(t, f.leftovers(t))
	}
}

func TestConvert_RenderFailure(t *testing.T) {
	f := newFixture(t, false)
	f.extractor.On("ExtractText", mock.Anything, mock.Anything).Return(dealText, nil)
	f.parser.On("Parse", mock.Anything, mock.Anything).Return(&port.ParseOutput{Letter: &domain.DealLetter{}}, nil)
	f.renderer.On("Render", mock.Anything, mock.Anything).Return("", errors.New("disk full"))

	_, err := f.svc.Convert(context.Background(), input("deal.pdf", pdfContent()))
	assert.ErrorIs(t, err, domain.ErrRender)
}

func TestConvert_NormalizesLetter(t *testing.T) {
	f := newFixture(t, false)
	outPath := f.writeOutput(t)
	f.extractor.On("ExtractText", mock.Anything, mock.Anything).Return(dealText, nil)
	f.parser.On("Parse", mock.Anything, mock.Anything).Return(&port.ParseOutput{}, nil)
	f.renderer.On("Render", mock.MatchedBy(func(l *domain.DealLetter) bool {
		return l.Deal != nil && l.Placements != nil && len(l.Placements) == 0
	}), mock.Anything).Return(outPath, nil)

	result, err := f.svc.Convert(context.Background(), input("deal.pdf", pdfContent()))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Placements)
}

func TestConvert_Archive(t *testing.T) {
	setup := func(t *testing.T) (*fixture, string) {
		f := newFixture(t, true)
		outPath := f.writeOutput(t)
		f.extractor.On("ExtractText", mock.Anything, mock.Anything).Return(dealText, nil)
		f.parser.On("Parse", mock.Anything, mock.Anything).Return(&port.ParseOutput{Letter: &domain.DealLetter{}}, nil)
		f.renderer.On("Render", mock.Anything, mock.Anything).Return(outPath, nil)
		return f, outPath
	}

	t.Run("location recorded", func(t *testing.T) {
		f, outPath := setup(t)
		f.storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
			return strings.HasSuffix(in.Key, ".xlsx") && in.ContentType == domain.SpreadsheetContentType
		})).Return(&port.UploadOutput{Location: "s3://sheets/deal-sheets/x.xlsx"}, nil)

		result, err := f.svc.Convert(context.Background(), input("deal.pdf", pdfContent()))
		require.NoError(t, err)
		assert.Equal(t, "s3://sheets/deal-sheets/x.xlsx", result.ArchiveLocation)
		upload := f.storage.Calls[0].Arguments.Get(1).(port.UploadInput)
		assert.Equal(t, result.ID+".xlsx", upload.Key)
		assert.FileExists(t, outPath)
		f.storage.AssertExpectations(t)
	})

	t.Run("failure is not fatal", func(t *testing.T) {
		f, _ := setup(t)
		f.storage.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

		result, err := f.svc.Convert(context.Background(), input("deal.pdf", pdfContent()))
		require.NoError(t, err)
		assert.Empty(t, result.ArchiveLocation)

		var warned bool
		for _, e := range f.hook.AllEntries() {
			if e.Level == logrus.WarnLevel && strings.Contains(e.Message, "upload failed") {
				warned = true
			}
		}
		assert.True(t, warned)
	})
}

func TestEnsureEnoughText(t *testing.T) {
	assert.NoError(t, service.EnsureEnoughText(strings.Repeat("a", 50), 50))
	assert.ErrorIs(t, service.EnsureEnoughText(strings.Repeat("a", 49), 50), domain.ErrInsufficientText)
	assert.ErrorIs(t, service.EnsureEnoughText("   \n\t  ", 1), domain.ErrInsufficientText)
	assert.NoError(t, service.EnsureEnoughText("", 0))
	assert.NoError(t, service.EnsureEnoughText(strings.Repeat("é", 50), 50))
}
