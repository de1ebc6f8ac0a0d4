// Package providers wires the built-in completion clients into the parser registry.
package providers

import (
	"dealsheet/internal/config"
	"dealsheet/internal/parser"
	"dealsheet/internal/parser/azure"
	"dealsheet/internal/parser/claude"
	"dealsheet/internal/parser/gemini"
	"dealsheet/internal/parser/openai"
	"dealsheet/internal/port"
)

// Names lists the registered provider names.
var Names = []string{"azure", "openai", "claude", "gemini"}

// Register adds every built-in provider to the parser registry.
func Register() {
	parser.RegisterProvider("azure", func(cfg *config.ParserProviderConfig) (port.Completer, error) {
		return azure.NewCompleter(cfg)
	})
	parser.RegisterProvider("openai", func(cfg *config.ParserProviderConfig) (port.Completer, error) {
		return openai.NewCompleter(cfg), nil
	})
	parser.RegisterProvider("claude", func(cfg *config.ParserProviderConfig) (port.Completer, error) {
		return claude.NewCompleter(cfg), nil
	})
	parser.RegisterProvider("gemini", func(cfg *config.ParserProviderConfig) (port.Completer, error) {
		return gemini.NewCompleter(cfg), nil
	})
}
