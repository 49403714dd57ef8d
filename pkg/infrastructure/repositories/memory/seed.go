package memory

import (
	"fmt"

	"github.com/vsinha/lineplan/pkg/domain/entities"
)

type seedOrder struct {
	id, number, customer, style string
	qty                         entities.Quantity
	orderOffset, etdOffset      int
	tentative                   bool
}

var seedOrders = []seedOrder{
	{"ord-1", "OC-1201A", "Alpha Corp", "ST-001", 5000, -20, 10, false},
	{"ord-2", "OC-1202B", "Bravo Inc", "ST-002", 3500, -15, 15, false},
	{"ord-3", "OC-1203C", "Planning Dept", "ST-003", 8000, -10, 20, true},
	{"ord-4", "OC-1204D", "Alpha Corp", "ST-001", 2200, -5, 25, false},
	{"ord-5", "OC-1205E", "Delta LLC", "ST-004", 6000, -25, 30, false},
	{"ord-6", "OC-1206F", "Bravo Inc", "ST-002", 1500, -2, 18, true},
}

type seedLine struct {
	id, name string
	capacity entities.Capacity
}

var seedUnits = []struct {
	id, name string
	lines    []seedLine
}{
	{"unit-1", "Stitching Unit 1", []seedLine{
		{"line-1A", "Line 1A", 250},
		{"line-1B", "Line 1B", 300},
		{"line-1C", "Line 1C", 200},
	}},
	{"unit-2", "Stitching Unit 2", []seedLine{
		{"line-2A", "Line 2A", 400},
		{"line-2B", "Line 2B", 350},
	}},
	{"unit-3", "Cutting Unit A", []seedLine{
		{"line-3A", "Cutting Line A", 1000},
	}},
}

// SeedBoard builds the demo board: six unassigned orders dated around
// reference and three units with six empty lines.
func SeedBoard(reference entities.Day) (*entities.Board, error) {
	orders := make([]entities.Order, 0, len(seedOrders))
	for _, s := range seedOrders {
		o, err := entities.NewOrder(s.id, s.number, s.customer, s.style,
			reference.AddDays(s.orderOffset), reference.AddDays(s.etdOffset), s.qty, s.tentative)
		if err != nil {
			return nil, fmt.Errorf("seed order %s: %w", s.id, err)
		}
		orders = append(orders, *o)
	}

	units := make([]entities.Unit, 0, len(seedUnits))
	for _, su := range seedUnits {
		lines := make([]entities.ProductionLine, 0, len(su.lines))
		for _, sl := range su.lines {
			l, err := entities.NewProductionLine(sl.id, sl.name, sl.capacity)
			if err != nil {
				return nil, fmt.Errorf("seed line %s: %w", sl.id, err)
			}
			lines = append(lines, *l)
		}
		u, err := entities.NewUnit(su.id, su.name, lines...)
		if err != nil {
			return nil, fmt.Errorf("seed unit %s: %w", su.id, err)
		}
		units = append(units, *u)
	}

	return entities.NewBoard(orders, units)
}
