package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func filterFixture() []Order {
	mk := func(id, number, customer, style, orderDate, etd string, qty Quantity) Order {
		o, err := NewOrder(id, number, customer, style, MustParseDay(orderDate), MustParseDay(etd), qty, false)
		if err != nil {
			panic(err)
		}
		return *o
	}
	partial := mk("ord-3", "OC-1203C", "Planning Dept", "ST-003", "2024-01-10", "2024-02-20", 8000)
	partial, _ = partial.WithAssigned(8000)
	return []Order{
		mk("ord-1", "OC-1201A", "Alpha Corp", "ST-001", "2024-01-01", "2024-02-10", 5000),
		mk("ord-2", "OC-1202B", "Bravo Inc", "ST-002", "2024-01-05", "2024-02-05", 3500),
		partial,
	}
}

func TestOrderFilter(t *testing.T) {
	orders := filterFixture()
	ids := func(os []Order) []string {
		var out []string
		for _, o := range os {
			out = append(out, o.ID)
		}
		return out
	}

	testCases := []struct {
		name   string
		filter OrderFilter
		want   []string
	}{
		{"empty matches all", OrderFilter{}, []string{"ord-1", "ord-2", "ord-3"}},
		{"customer", OrderFilter{Customers: []string{"Bravo Inc"}}, []string{"ord-2"}},
		{"status", OrderFilter{Statuses: []OrderStatus{FullyAssigned}}, []string{"ord-3"}},
		{"search is case-insensitive", OrderFilter{Search: "1201a"}, []string{"ord-1"}},
		{"quantity bounds", OrderFilter{MinQty: 4000, MaxQty: 6000}, []string{"ord-1"}},
		{"order date range", OrderFilter{OrderDateFrom: MustParseDay("2024-01-02"), OrderDateTo: MustParseDay("2024-01-09")}, []string{"ord-2"}},
		{"etd exact", OrderFilter{ETD: MustParseDay("2024-02-20")}, []string{"ord-3"}},
		{"style and customer", OrderFilter{Styles: []string{"ST-001"}, Customers: []string{"Bravo Inc"}}, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(tc.filter.Apply(orders)))
		})
	}
}

func TestAvailableByETD(t *testing.T) {
	available := AvailableByETD(filterFixture())
	if assert.Len(t, available, 2) {
		assert.Equal(t, "ord-2", available[0].ID)
		assert.Equal(t, "ord-1", available[1].ID)
	}
}
