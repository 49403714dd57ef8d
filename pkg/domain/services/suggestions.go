package services

import (
	"github.com/vsinha/lineplan/pkg/domain/entities"
)

// LineQuantity pairs a line with a quantity destined for it
type LineQuantity struct {
	LineID   string            `json:"line_id"`
	Quantity entities.Quantity `json:"quantity"`
}

// SuggestLineQuantities proposes a split of remaining across lines for a range of
// productionDays: each line in turn takes min(dailyCapacity * days, what is left).
// Lines that would get nothing are still listed with zero.
func SuggestLineQuantities(lines []entities.ProductionLine, productionDays int, remaining entities.Quantity) []LineQuantity {
	suggestions := make([]LineQuantity, 0, len(lines))
	left := remaining
	for _, line := range lines {
		qty := entities.Quantity(0)
		if productionDays > 0 && line.DailyCapacity > 0 && left > 0 {
			qty = entities.Quantity(line.DailyCapacity) * entities.Quantity(productionDays)
			if qty > left {
				qty = left
			}
		}
		left -= qty
		suggestions = append(suggestions, LineQuantity{LineID: line.ID, Quantity: qty})
	}
	return suggestions
}
