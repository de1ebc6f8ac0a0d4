package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"dealsheet/internal/port"
)

// MockDealLetterParser is a mock implementation of port.DealLetterParser.
type MockDealLetterParser struct {
	mock.Mock
}

func (m *MockDealLetterParser) Parse(ctx context.Context, input port.ParseInput) (*port.ParseOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ParseOutput), args.Error(1)
}
