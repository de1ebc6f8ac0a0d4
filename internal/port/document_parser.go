package port

import (
	"context"

	"dealsheet/internal/domain"
)

// CompletionRequest is a single system-plus-user exchange with a text model.
type CompletionRequest struct {
	System      string
	User        string
	Temperature float64
}

// CompletionResponse is the raw text a model returned.
type CompletionResponse struct {
	Content string
	Model   string
}

// Completer abstracts a hosted text-completion service.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// ParseInput carries the extracted document text.
type ParseInput struct {
	Text string
}

// ParseOutput contains the structured deal letter and the audit trail of the call.
type ParseOutput struct {
	Letter      *domain.DealLetter
	RawResponse string
	ModelUsed   string
	PromptUsed  string
}

// DealLetterParser turns document text into a structured deal letter.
type DealLetterParser interface {
	Parse(ctx context.Context, input ParseInput) (*ParseOutput, error)
}
