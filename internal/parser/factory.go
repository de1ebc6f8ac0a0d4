package parser

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"dealsheet/internal/config"
	"dealsheet/internal/port"
)

// ProviderFactory is a function that creates a Completer from a provider config.
type ProviderFactory func(cfg *config.ParserProviderConfig) (port.Completer, error)

// registry of provider factories, filled explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewCompleter creates a Completer from a provider config using the registered factory.
func NewCompleter(cfg *config.ParserProviderConfig) (port.Completer, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown parser provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewChain builds the completer for the configured provider chain. A single
// provider is returned as is; several are wrapped in a FallbackCompleter.
func NewChain(cfg *config.ParserConfig, log logrus.FieldLogger) (port.Completer, error) {
	chain := cfg.Chain()
	completers := make([]port.Completer, 0, len(chain))
	names := make([]string, 0, len(chain))
	for _, pc := range chain {
		c, err := NewCompleter(pc)
		if err != nil {
			return nil, err
		}
		completers = append(completers, c)
		names = append(names, pc.Provider)
	}
	if len(completers) == 1 {
		return completers[0], nil
	}
	return NewFallbackCompleter(completers, names).WithLogger(log), nil
}
