package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/lineplan/pkg/domain/entities"
)

func TestSeedBoard(t *testing.T) {
	ref := entities.MustParseDay("2025-03-01")
	board, err := SeedBoard(ref)
	require.NoError(t, err)

	require.Len(t, board.Orders, 6)
	require.Len(t, board.Units, 3)
	assert.Len(t, board.Lines(), 6)

	first := board.Orders[0]
	assert.Equal(t, "OC-1201A", first.OrderNumber)
	assert.Equal(t, entities.MustParseDay("2025-02-09"), first.OrderDate)
	assert.Equal(t, entities.MustParseDay("2025-03-11"), first.ETDDate)
	assert.Equal(t, entities.Planned, first.Status)
	assert.Equal(t, entities.Quantity(5000), first.RemainingQty)

	ord3, ok := board.FindOrder("ord-3")
	require.True(t, ok)
	assert.True(t, ord3.Tentative)

	line, ref3, ok := board.FindLine("line-3A")
	require.True(t, ok)
	assert.Equal(t, "unit-3", ref3.UnitID)
	assert.Equal(t, entities.Capacity(1000), line.DailyCapacity)
	assert.Empty(t, line.Assignments)
}

func TestBoardRepository_LoadSave(t *testing.T) {
	seed, err := SeedBoard(entities.MustParseDay("2025-03-01"))
	require.NoError(t, err)
	repo := NewBoardRepository(seed)

	loaded, err := repo.Load()
	require.NoError(t, err)
	assert.Same(t, seed, loaded)

	next, err := seed.WithNewOrder(entities.Order{ID: "ord-new", OrderNumber: "TENT-1", TotalQty: 10, RemainingQty: 10})
	require.NoError(t, err)
	require.NoError(t, repo.Save(next))

	loaded, err = repo.Load()
	require.NoError(t, err)
	assert.Len(t, loaded.Orders, 7)
	assert.Len(t, seed.Orders, 6, "previous snapshot must be untouched")

	assert.Error(t, repo.Save(nil))
}

func TestBoardRepository_ConcurrentAccess(t *testing.T) {
	seed, err := SeedBoard(entities.MustParseDay("2025-03-01"))
	require.NoError(t, err)
	repo := NewBoardRepository(seed)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			b, err := repo.Load()
			assert.NoError(t, err)
			assert.NotNil(t, b)
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.Save(seed.Clone()))
		}()
	}
	wg.Wait()
}
