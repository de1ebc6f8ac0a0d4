// Package azure talks to Azure OpenAI deployments through the official SDK.
package azure

import (
	"errors"
	"net/http"

	azureopt "github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"

	"dealsheet/internal/config"
	"dealsheet/internal/parser/openai"
	"dealsheet/internal/port"
)

var _ port.Completer = (*Completer)(nil)

// Completer implements port.Completer against an Azure OpenAI deployment.
// The deployment name is sent as the model and routes the request.
type Completer struct {
	*openai.Completer
}

// NewCompleter creates an Azure OpenAI completer. Endpoint and key are
// required; API version and deployment fall back to the package defaults.
func NewCompleter(cfg *config.ParserProviderConfig) (*Completer, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("azure: endpoint is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("azure: api key is required")
	}
	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = config.DefaultAPIVersion
	}
	deployment := cfg.DefaultModel
	if deployment == "" {
		deployment = config.DefaultDeployment
	}

	return &Completer{openai.New("azure", deployment,
		azureopt.WithEndpoint(cfg.Endpoint, apiVersion),
		azureopt.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout()}),
	)}, nil
}
