package entities

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrder_Validation(t *testing.T) {
	orderDate := MustParseDay("2024-01-01")
	etd := MustParseDay("2024-01-31")

	order, err := NewOrder("ord-1", "OC-1201A", "Alpha Corp", "ST-001", orderDate, etd, 5000, false)
	require.NoError(t, err)
	assert.Equal(t, Quantity(5000), order.RemainingQty)
	assert.Equal(t, Quantity(0), order.AssignedQty)
	assert.Equal(t, Planned, order.Status)

	testCases := []struct {
		name        string
		id          string
		number      string
		qty         Quantity
		orderDate   Day
		etd         Day
		expectError string
	}{
		{"empty id", "", "OC", 10, orderDate, etd, "order id cannot be empty"},
		{"empty number", "ord", "", 10, orderDate, etd, "order number cannot be empty"},
		{"zero quantity", "ord", "OC", 0, orderDate, etd, "total quantity must be positive, got 0"},
		{"etd before order date", "ord", "OC", 10, etd, orderDate, "etd date 2024-01-01 cannot be before order date 2024-01-31"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewOrder(tc.id, tc.number, "c", "s", tc.orderDate, tc.etd, tc.qty, false)
			require.Error(t, err)
			assert.Equal(t, tc.expectError, err.Error())
		})
	}
}

func TestOrder_WithAssigned(t *testing.T) {
	order, err := NewOrder("ord-1", "OC-1", "c", "s", Day{}, Day{}, 1000, false)
	require.NoError(t, err)

	partial, err := order.WithAssigned(300)
	require.NoError(t, err)
	assert.Equal(t, Quantity(300), partial.AssignedQty)
	assert.Equal(t, Quantity(700), partial.RemainingQty)
	assert.Equal(t, PartiallyAssigned, partial.Status)
	assert.True(t, partial.Balanced())

	// the receiver is untouched
	assert.Equal(t, Quantity(1000), order.RemainingQty)

	full, err := partial.WithAssigned(700)
	require.NoError(t, err)
	assert.Equal(t, FullyAssigned, full.Status)

	released, err := full.WithAssigned(-1000)
	require.NoError(t, err)
	assert.Equal(t, Planned, released.Status)
	assert.Equal(t, *order, released)

	_, err = partial.WithAssigned(701)
	assert.True(t, errors.Is(err, ErrInsufficientRemaining))

	_, err = partial.WithAssigned(-301)
	assert.Error(t, err)
}

func TestOrderStatus_Text(t *testing.T) {
	for _, s := range []OrderStatus{Planned, PartiallyAssigned, FullyAssigned} {
		text, err := s.MarshalText()
		require.NoError(t, err)
		var parsed OrderStatus
		require.NoError(t, parsed.UnmarshalText(text))
		assert.Equal(t, s, parsed)
	}
	_, err := ParseOrderStatus("shipped")
	assert.Error(t, err)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, Planned, StatusFor(100, 100))
	assert.Equal(t, PartiallyAssigned, StatusFor(100, 1))
	assert.Equal(t, FullyAssigned, StatusFor(100, 0))
}
