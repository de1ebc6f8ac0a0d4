package port

import "dealsheet/internal/domain"

// SheetRenderer writes a deal letter as a workbook and returns its path.
type SheetRenderer interface {
	Render(letter *domain.DealLetter, id string) (string, error)
}
