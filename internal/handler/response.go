package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"dealsheet/internal/domain"
	"dealsheet/internal/middleware"
	"dealsheet/internal/parser"
)

// APIResponse is the standard envelope for all JSON responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	var rle *parser.RateLimitError
	switch {
	case errors.Is(err, domain.ErrMissingFile):
		return http.StatusBadRequest, "MISSING_FILE", "file field is required"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: pdf"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrInsufficientText):
		return http.StatusBadRequest, "INSUFFICIENT_TEXT", "Could not extract enough text from PDF"
	case errors.Is(err, domain.ErrExtraction):
		return http.StatusInternalServerError, "EXTRACTION_FAILED", "could not read text from the PDF"
	case errors.As(err, &rle):
		return http.StatusTooManyRequests, "RATE_LIMITED", "extraction service is rate limited; retry later"
	case errors.Is(err, domain.ErrService):
		return http.StatusInternalServerError, "EXTRACTION_SERVICE_FAILED", "extraction service call failed"
	case errors.Is(err, domain.ErrResponseFormat):
		return http.StatusInternalServerError, "INVALID_MODEL_RESPONSE", "extraction service returned malformed JSON"
	case errors.Is(err, domain.ErrRender):
		return http.StatusInternalServerError, "RENDER_FAILED", "spreadsheet could not be written"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, log logrus.FieldLogger, err error) {
	status, code, msg := MapDomainError(err)

	var rle *parser.RateLimitError
	if errors.As(err, &rle) {
		c.Header("Retry-After", strconv.Itoa(int(rle.RetryAfter.Seconds())))
	}
	if status >= 500 {
		log.WithField("request_id", middleware.GetRequestID(c)).WithError(err).Error("internal error")
	}
	RespondError(c, status, code, msg)
}
