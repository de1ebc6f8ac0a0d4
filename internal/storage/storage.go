// Package storage selects the archive backend for generated workbooks.
package storage

import (
	"fmt"

	"dealsheet/internal/config"
	"dealsheet/internal/port"
	"dealsheet/internal/storage/noop"
	"dealsheet/internal/storage/s3"
)

// Provider names.
const (
	ProviderNoop = "noop"
	ProviderS3   = "s3"
)

// New builds the ObjectStorage named by cfg.Storage.Provider.
func New(cfg *config.Config) (port.ObjectStorage, error) {
	switch cfg.Storage.Provider {
	case "", ProviderNoop:
		return noop.NewStorage(), nil
	case ProviderS3:
		return s3.NewS3Client(&cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Storage.Provider)
	}
}

// Archiving reports whether uploads are kept anywhere.
func Archiving(cfg *config.Config) bool {
	return cfg.Storage.Provider == ProviderS3
}
