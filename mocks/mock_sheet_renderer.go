package mocks

import (
	"github.com/stretchr/testify/mock"

	"dealsheet/internal/domain"
)

// MockSheetRenderer is a mock implementation of port.SheetRenderer.
type MockSheetRenderer struct {
	mock.Mock
}

func (m *MockSheetRenderer) Render(letter *domain.DealLetter, requestID string) (string, error) {
	args := m.Called(letter, requestID)
	return args.String(0), args.Error(1)
}
