package csv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/lineplan/pkg/domain/entities"
)

const testLines = `unit_id,unit_name,line_id,line_name,daily_capacity
unit-1,Stitching Unit 1,line-1A,Line 1A,250
unit-1,Stitching Unit 1,line-1B,Line 1B,300
unit-2,Stitching Unit 2,line-2A,Line 2A,400
`

const testOrders = `order_id,order_number,customer,style,order_date,etd_date,total_qty,tentative
ord-1,OC-1201A,Alpha Corp,ST-001,2024-01-01,2024-02-15,5000,false
ord-2,OC-1202B,Bravo Inc,ST-002,2024-01-05,2024-02-20,1500,true
`

func writeScenario(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestLoader_LoadScenario(t *testing.T) {
	dir := writeScenario(t, map[string]string{
		LinesFile:  testLines,
		OrdersFile: testOrders,
		AssignmentsFile: `assignment_id,order_id,line_id,quantity,start_date,end_date
as-1,ord-1,line-1A,2500,2024-01-01,2024-01-10
`,
		RequestsFile: `order_id,quantity
ord-2,1500
ord-1,1000
`,
	})

	scenario, err := NewLoader().LoadScenario(dir)
	require.NoError(t, err)

	board := scenario.Board
	require.Len(t, board.Units, 2)
	assert.Len(t, board.Units[0].Lines, 2)
	assert.Len(t, board.Lines(), 3)

	order, ok := board.FindOrder("ord-1")
	require.True(t, ok)
	assert.Equal(t, entities.Quantity(2500), order.AssignedQty)
	assert.Equal(t, entities.PartiallyAssigned, order.Status)

	tentative, _ := board.FindOrder("ord-2")
	assert.True(t, tentative.Tentative)

	line, _, _ := board.FindLine("line-1A")
	require.Len(t, line.Assignments, 1)
	assert.Equal(t, "OC-1201A", line.Assignments[0].OrderNumber)

	require.Len(t, scenario.Requests, 2)
	assert.Equal(t, "ord-2", scenario.Requests[0].OrderID)
	assert.Equal(t, entities.Quantity(1000), scenario.Requests[1].Quantity)
}

func TestLoader_OptionalFiles(t *testing.T) {
	dir := writeScenario(t, map[string]string{LinesFile: testLines, OrdersFile: testOrders})

	scenario, err := NewLoader().LoadScenario(dir)
	require.NoError(t, err)
	assert.Empty(t, scenario.Requests)
	for _, l := range scenario.Board.Lines() {
		assert.Empty(t, l.Assignments)
	}
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{
			name:  "missing lines file",
			files: map[string]string{OrdersFile: testOrders},
			want:  "failed to open lines file",
		},
		{
			name:  "bad header",
			files: map[string]string{LinesFile: "unit,line\nu,l\n", OrdersFile: testOrders},
			want:  "lines CSV header mismatch",
		},
		{
			name: "bad capacity",
			files: map[string]string{
				LinesFile:  "unit_id,unit_name,line_id,line_name,daily_capacity\nu,U,l,L,lots\n",
				OrdersFile: testOrders,
			},
			want: "invalid daily_capacity",
		},
		{
			name: "bad date",
			files: map[string]string{
				LinesFile:  testLines,
				OrdersFile: "order_id,order_number,customer,style,order_date,etd_date,total_qty,tentative\nord-1,OC-1,A,S,01/02/2024,2024-02-01,10,false\n",
			},
			want: "invalid order_date format",
		},
		{
			name: "overbooked assignment",
			files: map[string]string{
				LinesFile:  testLines,
				OrdersFile: testOrders,
				AssignmentsFile: `assignment_id,order_id,line_id,quantity,start_date,end_date
as-1,ord-1,line-1A,2500,2024-01-01,2024-01-10
as-2,ord-1,line-1A,10,2024-01-05,2024-01-05
`,
			},
			want: "assignments CSV row 3: capacity exceeded",
		},
		{
			name: "assignment over remaining",
			files: map[string]string{
				LinesFile:  testLines,
				OrdersFile: testOrders,
				AssignmentsFile: `assignment_id,order_id,line_id,quantity,start_date,end_date
as-1,ord-2,line-2A,2000,2024-01-01,2024-01-10
`,
			},
			want: "insufficient remaining",
		},
		{
			name: "duplicate line",
			files: map[string]string{
				LinesFile:  testLines + "unit-2,Stitching Unit 2,line-1A,Line 1A,100\n",
				OrdersFile: testOrders,
			},
			want: "duplicate line id line-1A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeScenario(t, tt.files)
			_, err := NewLoader().LoadScenario(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
