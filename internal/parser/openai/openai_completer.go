// Package openai talks to chat completion endpoints through the official SDK.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"dealsheet/internal/config"
	"dealsheet/internal/parser"
	"dealsheet/internal/port"
)

const defaultBaseURL = "https://api.openai.com/v1/"

var _ port.Completer = (*Completer)(nil)

// Completer implements port.Completer on the Chat Completions protocol.
// SDK retries are disabled; each Complete is exactly one HTTP call.
type Completer struct {
	provider string
	model    string
	client   sdk.Client
}

// NewCompleter creates an OpenAI completer from a provider config. A
// configured endpoint replaces the public API base URL.
func NewCompleter(cfg *config.ParserProviderConfig) *Completer {
	baseURL := cfg.Endpoint
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return NewCompleterWithEndpoint(cfg, baseURL)
}

// NewCompleterWithEndpoint creates a completer pointing at a custom base URL (for testing).
func NewCompleterWithEndpoint(cfg *config.ParserProviderConfig, baseURL string) *Completer {
	model := cfg.DefaultModel
	if model == "" {
		model = config.DefaultDeployment
	}
	return New("openai", model,
		option.WithBaseURL(baseURL),
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout()}),
	)
}

// New creates a completer for provider that sends model with every request.
// opts select the endpoint and credentials.
func New(provider, model string, opts ...option.RequestOption) *Completer {
	opts = append(opts, option.WithMaxRetries(0))
	return &Completer{
		provider: provider,
		model:    model,
		client:   sdk.NewClient(opts...),
	}
}

func (c *Completer) Complete(ctx context.Context, in port.CompletionRequest) (*port.CompletionResponse, error) {
	resp, err := c.client.Chat.Completions.New(ctx, sdk.ChatCompletionNewParams{
		Model: c.model,
		Messages: []sdk.ChatCompletionMessageParamUnion{
			sdk.SystemMessage(in.System),
			sdk.UserMessage(in.User),
		},
		Temperature: sdk.Float(in.Temperature),
	})
	if err != nil {
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
			retryAfter := 0
			if apiErr.Response != nil {
				retryAfter = parser.ParseRetryAfterHeader(apiErr.Response.Header.Get("Retry-After"))
			}
			return nil, parser.NewRateLimitError(c.provider, err, retryAfter)
		}
		return nil, parser.NewServiceError(c.provider, err)
	}

	if len(resp.Choices) == 0 {
		return nil, parser.NewServiceError(c.provider, fmt.Errorf("empty response from API: no choices"))
	}
	if resp.Choices[0].FinishReason == "length" {
		return nil, parser.NewServiceError(c.provider, fmt.Errorf("output truncated (finish_reason: length)"))
	}

	model := resp.Model
	if model == "" {
		model = c.model
	}
	return &port.CompletionResponse{
		Content: resp.Choices[0].Message.Content,
		Model:   model,
	}, nil
}
