package planning

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vsinha/lineplan/pkg/domain/entities"
)

func mustDay(s string) entities.Day {
	return entities.MustParseDay(s)
}

// sequentialIDs returns an IDGenerator yielding as-1, as-2, ...
func sequentialIDs() IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("as-%d", n)
	}
}

func mustOrder(t *testing.T, id string, total entities.Quantity) entities.Order {
	t.Helper()
	o, err := entities.NewOrder(id, "OC-"+id, "Alpha Corp", "ST-001",
		mustDay("2023-12-01"), mustDay("2024-03-31"), total, false)
	require.NoError(t, err)
	return *o
}

func mustLine(t *testing.T, id string, capacity entities.Capacity) entities.ProductionLine {
	t.Helper()
	l, err := entities.NewProductionLine(id, "Line "+id, capacity)
	require.NoError(t, err)
	return *l
}

// newTestBoard builds one unit with lines A (250/day) and B (400/day) and
// orders ord-1 (5000) and ord-2 (1000).
func newTestBoard(t *testing.T) *entities.Board {
	t.Helper()
	unit, err := entities.NewUnit("unit-1", "Stitching Unit 1",
		mustLine(t, "A", 250),
		mustLine(t, "B", 400),
	)
	require.NoError(t, err)
	board, err := entities.NewBoard(
		[]entities.Order{mustOrder(t, "ord-1", 5000), mustOrder(t, "ord-2", 1000)},
		[]entities.Unit{*unit},
	)
	require.NoError(t, err)
	return board
}

func requireBalanced(t *testing.T, board *entities.Board) {
	t.Helper()
	for _, o := range board.Orders {
		require.Truef(t, o.Balanced(), "order %s is unbalanced: %+v", o.ID, o)
		var onLines entities.Quantity
		for _, as := range board.AssignmentsForOrder(o.ID) {
			for _, a := range as {
				onLines += a.Quantity
			}
		}
		require.Equalf(t, o.AssignedQty, onLines, "order %s assigned qty does not match its assignments", o.ID)
	}
}
