package handler

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"dealsheet/internal/domain"
	"dealsheet/internal/middleware"
	"dealsheet/internal/service"
)

// multipartOverhead is the allowance for form boundaries and headers on top
// of the file size limit.
const multipartOverhead = 1 << 20

// DealLetterHandler converts uploaded deal letters into CRM workbooks.
type DealLetterHandler struct {
	svc      service.ConversionService
	maxBytes int64
	log      logrus.FieldLogger
}

// NewDealLetterHandler creates a new DealLetterHandler. maxBytes caps the
// accepted file size.
func NewDealLetterHandler(svc service.ConversionService, maxBytes int64, log logrus.FieldLogger) *DealLetterHandler {
	return &DealLetterHandler{svc: svc, maxBytes: maxBytes, log: log}
}

// Convert handles POST /upload and POST /api/v1/deal-letters/convert
// @Summary Convert a deal letter
// @Description Upload a deal letter PDF and download the YuktaOne import workbook
// @Tags deal-letters
// @Accept multipart/form-data
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param file formData file true "Deal letter PDF"
// @Success 200 {file} file "campaign_output.xlsx"
// @Header 200 {string} X-Request-ID "Request correlation id"
// @Header 200 {string} X-Conversion-ID "Conversion id"
// @Header 200 {integer} X-Placement-Count "Number of placements written"
// @Failure 400 {object} ErrorResponseBody "Missing file, unsupported type or not enough text"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 429 {object} ErrorResponseBody "Extraction service rate limited"
// @Failure 500 {object} ErrorResponseBody "Conversion failed"
// @Router /api/v1/deal-letters/convert [post]
func (h *DealLetterHandler) Convert(c *gin.Context) {
	if c.Request.Body != nil {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			HandleError(c, h.log, domain.ErrFileTooLarge)
			return
		}
		HandleError(c, h.log, domain.ErrMissingFile)
		return
	}
	defer func() { _ = file.Close() }()

	requestID := middleware.GetRequestID(c)
	result, err := h.svc.Convert(c.Request.Context(), service.ConvertInput{
		RequestID: requestID,
		FileName:  header.Filename,
		Size:      header.Size,
		File:      file,
	})
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	defer func() {
		if rmErr := os.Remove(result.OutputPath); rmErr != nil && !os.IsNotExist(rmErr) {
			h.log.WithField("request_id", requestID).WithError(rmErr).Warn("dealLetterHandler.Convert: failed to remove workbook")
		}
	}()

	c.Header("X-Conversion-ID", result.ID)
	c.Header("X-Placement-Count", strconv.Itoa(result.Placements))
	if result.ArchiveLocation != "" {
		c.Header("X-Archive-Location", result.ArchiveLocation)
	}
	c.Header("Content-Type", domain.SpreadsheetContentType)
	c.FileAttachment(result.OutputPath, domain.DownloadFileName)
}
