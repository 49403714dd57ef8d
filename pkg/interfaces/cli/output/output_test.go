package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vsinha/lineplan/pkg/application/services/planning"
	"github.com/vsinha/lineplan/pkg/domain/entities"
	"github.com/vsinha/lineplan/pkg/domain/services"
)

func mustDay(s string) entities.Day {
	return entities.MustParseDay(s)
}

// testReport builds a board with one committed assignment, auto-plans one
// placeable and one oversized request over February 2024 and attaches the
// utilization report for the same window.
func testReport(t *testing.T) *Report {
	t.Helper()
	lineA, err := entities.NewProductionLine("line-A", "Line A", 100)
	require.NoError(t, err)
	lineB, err := entities.NewProductionLine("line-B", "Line B", 250)
	require.NoError(t, err)
	unit, err := entities.NewUnit("unit-1", "R&D Unit", *lineA, *lineB)
	require.NoError(t, err)

	ord1, err := entities.NewOrder("ord-1", "OC-1", "Alpha Corp", "ST-001", mustDay("2024-01-01"), mustDay("2024-03-01"), 1000, false)
	require.NoError(t, err)
	ord2, err := entities.NewOrder("ord-2", "OC-2", "Bravo Inc", "ST-002", mustDay("2024-01-01"), mustDay("2024-03-01"), 99999, true)
	require.NoError(t, err)
	board, err := entities.NewBoard([]entities.Order{*ord1, *ord2}, []entities.Unit{*unit})
	require.NoError(t, err)

	mutator := planning.NewMutator(nil)
	board, _, err = mutator.CommitAssignment(board, "ord-1", "line-B", 500, mustDay("2024-02-01"), mustDay("2024-02-05"))
	require.NoError(t, err)

	window := planning.Window{From: mustDay("2024-02-01"), To: mustDay("2024-02-29")}
	board, result, err := planning.NewAutoPlanner(nil, mutator).Plan(board, []planning.PlanRequest{
		{OrderID: "ord-1", Quantity: 500},
		{OrderID: "ord-2", Quantity: 99999},
	}, window, planning.AutoPlanOptions{})
	require.NoError(t, err)
	require.Len(t, result.Placed, 1)
	require.Len(t, result.Failed, 1)

	return &Report{
		Board:       board,
		AutoPlan:    result,
		Utilization: planning.BuildUtilizationReport(board, window),
		GeneratedAt: time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC),
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		ratio services.Ratio
		want  string
	}{
		{0, "0.0%"},
		{0.5, "50.0%"},
		{5.0 / 6.0, "83.3%"},
		{1, "100.0%"},
		{services.Ratio(math.Inf(1)), "n/a"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Percent(tt.ratio))
	}
}

func TestGenerate_Validation(t *testing.T) {
	report := testReport(t)
	var out bytes.Buffer

	err := Generate(report, Config{Format: "yaml"}, &out)
	assert.ErrorContains(t, err, "unsupported output format")

	err = Generate(report, Config{Format: "csv"}, &out)
	assert.ErrorContains(t, err, "output directory required")

	err = Generate(report, Config{Format: "xlsx"}, &out)
	assert.ErrorContains(t, err, "output directory required")

	err = Generate(&Report{}, Config{Format: "text"}, &out)
	assert.Error(t, err)
}

func TestGenerate_Text(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Generate(testReport(t), Config{Format: "text", PlanTime: time.Millisecond}, &out))

	text := out.String()
	assert.Contains(t, text, "Line Plan Summary")
	assert.Contains(t, text, "OC-1")
	assert.Contains(t, text, "Placed: 1")
	assert.Contains(t, text, "Failed: 1")
	assert.Contains(t, text, "Fully Assigned")
	assert.Contains(t, text, "(tentative)")
	assert.Contains(t, text, "Utilization (2024-02-01 .. 2024-02-29)")
}

func TestGenerate_JSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Generate(testReport(t), Config{Format: "json"}, &out))

	var decoded struct {
		Orders   []entities.Order `json:"orders"`
		AutoPlan struct {
			Placed []json.RawMessage `json:"placed"`
			Failed []json.RawMessage `json:"failed"`
		} `json:"auto_plan"`
		Utilization struct {
			From string `json:"from"`
		} `json:"utilization"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Len(t, decoded.Orders, 2)
	assert.Len(t, decoded.AutoPlan.Placed, 1)
	assert.Len(t, decoded.AutoPlan.Failed, 1)
	assert.Equal(t, "2024-02-01", decoded.Utilization.From)
}

func TestGenerate_CSVWritesOneFilePerTable(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	require.NoError(t, Generate(testReport(t), Config{Format: "csv", OutputDir: dir, Verbose: true}, &out))

	for _, name := range []string{"orders.csv", "assignments.csv", "placements.csv", "failures.csv", "utilization.csv"} {
		assert.FileExists(t, filepath.Join(dir, name))
		assert.Contains(t, out.String(), name)
	}

	file, err := os.Open(filepath.Join(dir, "assignments.csv"))
	require.NoError(t, err)
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"assignment_id", "order_id", "line_id", "quantity", "start_date", "end_date"}, records[0])

	file, err = os.Open(filepath.Join(dir, "utilization.csv"))
	require.NoError(t, err)
	defer file.Close()
	records, err = csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	// 2 lines x 29 days plus header
	assert.Len(t, records, 59)
}

func TestWriteXLSX(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, WriteXLSX(&out, testReport(t)))

	f, err := excelize.OpenReader(&out)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Orders", "Assignments", "Auto Plan", "Utilization"}, f.GetSheetList())

	value, err := f.GetCellValue("Orders", "B2")
	require.NoError(t, err)
	assert.Equal(t, "OC-1", value)

	rows, err := f.GetRows("Assignments")
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	header, err := f.GetCellValue("Utilization", "D1")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", header)
}

func TestGenerate_XLSXToDirectory(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	require.NoError(t, Generate(testReport(t), Config{Format: "xlsx", OutputDir: dir}, &out))
	assert.FileExists(t, filepath.Join(dir, "lineplan_report.xlsx"))
}

func TestWritePDF(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, WritePDF(&out, testReport(t)))
	assert.True(t, bytes.HasPrefix(out.Bytes(), []byte("%PDF")))
}

func TestBoardChart_SVG(t *testing.T) {
	report := testReport(t)
	svg := NewBoardChart(report).GenerateSVG(report)

	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.True(t, strings.HasSuffix(svg, "</svg>"))
	assert.Contains(t, svg, "R&amp;D Unit / Line A")
	assert.NotContains(t, svg, "R&D Unit")
	assert.Contains(t, svg, "OC-1")
	// the auto-placed bar is highlighted
	assert.Contains(t, svg, `fill="#FF9800" class="assignment-bar"`)
}

func TestBoardChart_WindowFallsBackToAssignments(t *testing.T) {
	report := testReport(t)
	report.AutoPlan = nil
	report.Utilization = nil

	chart := NewBoardChart(report)
	assert.Equal(t, "2024-02-01", chart.From.String())
	assert.Equal(t, "2024-02-05", chart.To.String())
}

func TestBoardChart_EmptyBoard(t *testing.T) {
	board, err := entities.NewBoard(nil, nil)
	require.NoError(t, err)
	report := &Report{Board: board}

	svg := NewBoardChart(report).GenerateSVG(report)
	assert.Contains(t, svg, "No Production Lines Found")
}

func TestWriteHTML(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, WriteHTML(&out, testReport(t)))

	page := out.String()
	assert.Contains(t, page, "<!DOCTYPE html>")
	assert.Contains(t, page, "<svg")
	assert.Contains(t, page, "Alpha Corp")
	assert.Contains(t, page, `class="tentative"`)
	assert.Contains(t, page, "Auto Plan 2024-02-01 .. 2024-02-29")
}
