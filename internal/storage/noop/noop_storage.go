package noop

import (
	"context"
	"io"

	"dealsheet/internal/port"
)

// Storage discards everything it is given. It is the default archive when
// no bucket is configured.
type Storage struct{}

// NewStorage returns a storage that keeps nothing.
func NewStorage() *Storage {
	return &Storage{}
}

func (s *Storage) Upload(_ context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	if input.Body != nil {
		if _, err := io.Copy(io.Discard, input.Body); err != nil {
			return nil, err
		}
	}
	return &port.UploadOutput{}, nil
}

func (s *Storage) Delete(context.Context, string) error {
	return nil
}
