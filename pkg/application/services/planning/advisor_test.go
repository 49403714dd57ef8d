package planning

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/lineplan/pkg/domain/entities"
)

func TestRangeAdvisor(t *testing.T) {
	req := AdvisoryRequest{
		OrderID:          "ord-1",
		LineID:           "A",
		StartDate:        mustDay("2024-01-01"),
		EndDate:          mustDay("2024-01-10"),
		DailyCapacity:    250,
		AssignedCapacity: 1000,
	}

	t.Run("fits", func(t *testing.T) {
		req := req
		req.Quantity = 1500
		op, err := RangeAdvisor{}.Evaluate(context.Background(), req)
		require.NoError(t, err)
		assert.True(t, op.IsValid)
		assert.Zero(t, op.SuggestedQuantity)
	})

	t.Run("suggests what is left", func(t *testing.T) {
		req := req
		req.Quantity = 2000
		op, err := RangeAdvisor{}.Evaluate(context.Background(), req)
		require.NoError(t, err)
		assert.False(t, op.IsValid)
		assert.Equal(t, entities.Quantity(1500), op.SuggestedQuantity)
		assert.Contains(t, op.Reason, "1500")
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := RangeAdvisor{}.Evaluate(ctx, req)
		assert.ErrorIs(t, err, entities.ErrAdvisoryUnavailable)
	})
}

func TestNewAdvisoryRequest(t *testing.T) {
	line := mustLine(t, "A", 250)
	line.Assignments = []entities.Assignment{{ID: "x", OrderID: "o", Quantity: 500,
		StartDate: mustDay("2024-01-01"), EndDate: mustDay("2024-01-02")}}
	order := mustOrder(t, "ord-1", 5000)

	req := NewAdvisoryRequest(order, "unit-1", line, 100, mustDay("2024-01-01"), mustDay("2024-01-05"))
	assert.Equal(t, "unit-1", req.UnitID)
	assert.Equal(t, order.ETDDate, req.ETDDate)
	assert.Equal(t, entities.Capacity(250), req.DailyCapacity)
	assert.InDelta(t, 500.0, req.AssignedCapacity, 1e-9)
}
