package parser

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"dealsheet/internal/domain"
	"dealsheet/internal/logging"
	"dealsheet/internal/port"
)

var _ port.DealLetterParser = (*Extractor)(nil)

// rawLogLimit caps how much of an unparseable response is logged.
const rawLogLimit = 500

// Extractor implements port.DealLetterParser on top of a text Completer:
// one call per document at temperature 0, fence stripping, then decoding.
type Extractor struct {
	completer port.Completer
	log       logrus.FieldLogger
}

// NewExtractor creates a deal letter parser backed by completer.
func NewExtractor(completer port.Completer, log logrus.FieldLogger) *Extractor {
	return &Extractor{completer: completer, log: log}
}

func (x *Extractor) Parse(ctx context.Context, input port.ParseInput) (*port.ParseOutput, error) {
	resp, err := x.completer.Complete(ctx, port.CompletionRequest{
		System:      SystemPrompt,
		User:        BuildUserMessage(input.Text),
		Temperature: 0,
	})
	if err != nil {
		return nil, NewServiceError("completer", err)
	}

	log := x.log.WithField("model", resp.Model)
	log.WithField("response_chars", len(resp.Content)).Debug("parser.Extractor: response received")

	letter, err := DecodeDealLetter(StripCodeFences(resp.Content))
	if err != nil {
		log.WithError(err).WithField("raw", logging.Truncate(resp.Content, rawLogLimit)).
			Error("parser.Extractor: response is not valid JSON")
		return nil, fmt.Errorf("%w: %w", domain.ErrResponseFormat, err)
	}

	log.WithFields(logrus.Fields{
		"advertiser": letter.Deal.Text("advertiser_name"),
		"placements": len(letter.Placements),
	}).Info("parser.Extractor: deal letter parsed")

	return &port.ParseOutput{
		Letter:      letter,
		RawResponse: resp.Content,
		ModelUsed:   resp.Model,
		PromptUsed:  SystemPrompt,
	}, nil
}
