package output

import (
	"fmt"
	"io"
	"math"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/vsinha/lineplan/pkg/domain/entities"
	"github.com/vsinha/lineplan/pkg/domain/services"
)

var (
	orderSheetHeaders      = []string{"Order ID", "Order Number", "Customer", "Style", "Order Date", "ETD", "Total", "Assigned", "Remaining", "Status", "Tentative"}
	assignmentSheetHeaders = []string{"Unit", "Line", "Assignment ID", "Order Number", "Quantity", "Start", "End", "Days", "Rate/Day", "Tentative"}
	placementSheetHeaders  = []string{"Order Number", "Unit", "Line", "Assignment ID", "Quantity", "Start", "End", "Days", "Rate/Day"}
	failureSheetHeaders    = []string{"Order", "Quantity", "Reason"}
)

// WriteXLSX writes the report as a workbook with one sheet per table:
// Orders, Assignments, and when present Auto Plan and Utilization.
func WriteXLSX(w io.Writer, report *Report) error {
	f, err := BuildWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// BuildWorkbook assembles the report workbook
func BuildWorkbook(report *Report) (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", "Orders"); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	steps := []func(*excelize.File, int) error{
		func(f *excelize.File, style int) error { return writeOrderSheet(f, style, report.Board) },
		func(f *excelize.File, style int) error { return writeAssignmentSheet(f, style, report.Board) },
	}
	if report.AutoPlan != nil {
		steps = append(steps, func(f *excelize.File, style int) error { return writeAutoPlanSheet(f, style, report) })
	}
	if report.Utilization != nil {
		steps = append(steps, func(f *excelize.File, style int) error { return writeUtilizationSheet(f, style, report) })
	}
	for _, step := range steps {
		if err := step(f, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func writeHeader(f *excelize.File, sheet string, row int, headers []string, style int) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func setColWidths(f *excelize.File, sheet string, widths []float64) error {
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	return nil
}

func writeOrderSheet(f *excelize.File, style int, board *entities.Board) error {
	const sheet = "Orders"
	if err := writeHeader(f, sheet, 1, orderSheetHeaders, style); err != nil {
		return fmt.Errorf("orders header: %w", err)
	}
	for i, o := range board.Orders {
		row := []interface{}{
			o.ID, o.OrderNumber, o.Customer, o.Style, o.OrderDate.String(), o.ETDDate.String(),
			int64(o.TotalQty), int64(o.AssignedQty), int64(o.RemainingQty), o.Status.String(), o.Tentative,
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return fmt.Errorf("orders row %d: %w", i+2, err)
		}
	}
	return setColWidths(f, sheet, []float64{24, 14, 22, 16, 12, 12, 10, 10, 10, 18, 10})
}

func writeAssignmentSheet(f *excelize.File, style int, board *entities.Board) error {
	const sheet = "Assignments"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create %s sheet: %w", sheet, err)
	}
	if err := writeHeader(f, sheet, 1, assignmentSheetHeaders, style); err != nil {
		return fmt.Errorf("assignments header: %w", err)
	}
	row := 2
	for _, u := range board.Units {
		for _, l := range u.Lines {
			for _, a := range l.Assignments {
				values := []interface{}{
					u.Name, l.Name, a.ID, a.OrderNumber, int64(a.Quantity),
					a.StartDate.String(), a.EndDate.String(), a.DurationDays(), roundRate(a.DailyRate()), a.Tentative,
				}
				if err := writeRow(f, sheet, row, values); err != nil {
					return fmt.Errorf("assignments row %d: %w", row, err)
				}
				row++
			}
		}
	}
	return setColWidths(f, sheet, []float64{16, 16, 42, 14, 10, 12, 12, 6, 10, 10})
}

func writeAutoPlanSheet(f *excelize.File, style int, report *Report) error {
	const sheet = "Auto Plan"
	result := report.AutoPlan
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create %s sheet: %w", sheet, err)
	}
	if err := writeHeader(f, sheet, 1, placementSheetHeaders, style); err != nil {
		return fmt.Errorf("auto plan header: %w", err)
	}
	row := 2
	for _, p := range result.Placed {
		values := []interface{}{
			p.OrderNumber, p.UnitID, p.LineName, p.AssignmentID, int64(p.Quantity),
			p.StartDate.String(), p.EndDate.String(), p.RequiredDays, roundRate(p.DailyRate),
		}
		if err := writeRow(f, sheet, row, values); err != nil {
			return fmt.Errorf("auto plan row %d: %w", row, err)
		}
		row++
	}

	if len(result.Failed) > 0 {
		row++
		if err := writeHeader(f, sheet, row, failureSheetHeaders, style); err != nil {
			return fmt.Errorf("auto plan failures header: %w", err)
		}
		row++
		for _, fail := range result.Failed {
			label := fail.OrderNumber
			if label == "" {
				label = fail.OrderID
			}
			if err := writeRow(f, sheet, row, []interface{}{label, int64(fail.Quantity), fail.Reason}); err != nil {
				return fmt.Errorf("auto plan row %d: %w", row, err)
			}
			row++
		}
	}
	return setColWidths(f, sheet, []float64{14, 12, 16, 42, 10, 12, 12, 6, 10})
}

// writeUtilizationSheet lays out one row per line and one column per day of
// the window holding the apportioned load, followed by the window utilization.
func writeUtilizationSheet(f *excelize.File, style int, report *Report) error {
	const sheet = "Utilization"
	util := report.Utilization
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create %s sheet: %w", sheet, err)
	}

	days := entities.DaysInRange(util.From, util.To)
	headers := []string{"Unit", "Line", "Cap/Day"}
	for _, d := range days {
		headers = append(headers, d.String())
	}
	headers = append(headers, "Utilization")
	if err := writeHeader(f, sheet, 1, headers, style); err != nil {
		return fmt.Errorf("utilization header: %w", err)
	}

	criticalStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#F8CBAD"}},
	})
	if err != nil {
		return fmt.Errorf("create band style: %w", err)
	}

	for i, line := range util.Lines {
		row := i + 2
		values := []interface{}{line.UnitName, line.LineName, int64(line.DailyCapacity)}
		for _, load := range line.Days {
			values = append(values, roundRate(load.Load))
		}
		values = append(values, Percent(line.Utilization))
		if err := writeRow(f, sheet, row, values); err != nil {
			return fmt.Errorf("utilization row %d: %w", row, err)
		}
		for j, load := range line.Days {
			if load.Band != services.BandCritical {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+4, row)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, cell, cell, criticalStyle); err != nil {
				return err
			}
		}
	}

	row := len(util.Lines) + 3
	for _, u := range util.Units {
		if err := writeRow(f, sheet, row, []interface{}{u.UnitName, "(all lines)", "", Percent(u.Utilization)}); err != nil {
			return fmt.Errorf("utilization unit row %d: %w", row, err)
		}
		row++
	}
	return setColWidths(f, sheet, []float64{16, 16, 10})
}

// roundRate keeps two decimals of an apportioned rate for spreadsheet cells
func roundRate(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
