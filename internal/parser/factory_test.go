package parser_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealsheet/internal/config"
	"dealsheet/internal/logging"
	"dealsheet/internal/parser"
	"dealsheet/internal/port"
)

// stubCompleter is a minimal Completer for testing the factory.
type stubCompleter struct {
	model string
}

func (s *stubCompleter) Complete(_ context.Context, _ port.CompletionRequest) (*port.CompletionResponse, error) {
	return &port.CompletionResponse{Content: "{}", Model: s.model}, nil
}

func registerStub(name string) {
	parser.RegisterProvider(name, func(cfg *config.ParserProviderConfig) (port.Completer, error) {
		return &stubCompleter{model: cfg.DefaultModel}, nil
	})
}

func TestFactory_RegisterAndCreate(t *testing.T) {
	registerStub("test-provider")

	c, err := parser.NewCompleter(&config.ParserProviderConfig{
		Provider:     "test-provider",
		DefaultModel: "test-model",
	})
	require.NoError(t, err)

	resp, err := c.Complete(context.Background(), port.CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "test-model", resp.Model)
}

func TestFactory_UnknownProvider(t *testing.T) {
	c, err := parser.NewCompleter(&config.ParserProviderConfig{
		Provider: "nonexistent-provider-xyz",
	})

	assert.Nil(t, c)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown parser provider")
}

func TestNewChain_SingleProvider(t *testing.T) {
	registerStub("chain-a")

	c, err := parser.NewChain(&config.ParserConfig{Provider: "chain-a", DefaultModel: "m"}, logging.Discard())
	require.NoError(t, err)
	assert.IsType(t, &stubCompleter{}, c)
}

func TestNewChain_Fallback(t *testing.T) {
	registerStub("chain-a")
	registerStub("chain-b")

	c, err := parser.NewChain(&config.ParserConfig{
		Primary:   config.ParserProviderConfig{Provider: "chain-a"},
		Secondary: config.ParserProviderConfig{Provider: "chain-b"},
	}, logging.Discard())
	require.NoError(t, err)
	assert.IsType(t, &parser.FallbackCompleter{}, c)
}

func TestNewChain_UnknownSecondary(t *testing.T) {
	registerStub("chain-a")

	_, err := parser.NewChain(&config.ParserConfig{
		Primary:   config.ParserProviderConfig{Provider: "chain-a"},
		Secondary: config.ParserProviderConfig{Provider: "missing"},
	}, logging.Discard())
	assert.ErrorContains(t, err, "unknown parser provider: missing")
}
