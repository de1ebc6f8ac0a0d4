package port

import "context"

// TextExtractor returns the page-delimited text of the document at path.
type TextExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}
