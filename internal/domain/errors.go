package domain

import (
	"errors"
	"fmt"
)

var (
	ErrExtraction          = errors.New("text extraction failed")
	ErrInsufficientText    = fmt.Errorf("%w: not enough text in document", ErrExtraction)
	ErrResponseFormat      = errors.New("extraction service returned malformed JSON")
	ErrService             = errors.New("extraction service call failed")
	ErrRender              = errors.New("spreadsheet could not be written")
	ErrMissingFile         = errors.New("file field is required")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")
)
