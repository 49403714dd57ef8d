package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/vsinha/lineplan/pkg/application/dto"
	"github.com/vsinha/lineplan/pkg/domain/entities"
)

// generateCSVOutput writes one CSV file per table into OutputDir
func generateCSVOutput(report *Report, config Config, stdout io.Writer) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for CSV format")
	}
	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	type table struct {
		name  string
		write func(io.Writer) error
	}
	tables := []table{
		{"orders.csv", func(w io.Writer) error { return WriteOrdersCSV(w, report.Board.Orders) }},
		{"assignments.csv", func(w io.Writer) error { return WriteAssignmentsCSV(w, report.Board) }},
	}
	if report.AutoPlan != nil {
		tables = append(tables,
			table{"placements.csv", func(w io.Writer) error { return WritePlacementsCSV(w, report.AutoPlan) }},
			table{"failures.csv", func(w io.Writer) error { return WriteFailuresCSV(w, report.AutoPlan) }},
		)
	}
	if report.Utilization != nil {
		tables = append(tables, table{"utilization.csv", func(w io.Writer) error { return WriteUtilizationCSV(w, report.Utilization) }})
	}

	var written []string
	for _, t := range tables {
		filename := filepath.Join(config.OutputDir, t.name)
		if err := writeFile(filename, t.write); err != nil {
			return fmt.Errorf("failed to write %s: %w", t.name, err)
		}
		written = append(written, filename)
	}

	if config.Verbose {
		fmt.Fprintf(stdout, "💾 CSV results saved to:\n")
		for _, filename := range written {
			fmt.Fprintf(stdout, "  %s\n", filename)
		}
	}
	return nil
}

func writeFile(filename string, write func(io.Writer) error) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func writeRecords(w io.Writer, header []string, records [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return err
	}
	if err := writer.WriteAll(records); err != nil {
		return err
	}
	return writer.Error()
}

func qty(q entities.Quantity) string {
	return strconv.FormatInt(int64(q), 10)
}

// WriteOrdersCSV writes the order book
func WriteOrdersCSV(w io.Writer, orders []entities.Order) error {
	records := make([][]string, 0, len(orders))
	for _, o := range orders {
		records = append(records, []string{
			o.ID, o.OrderNumber, o.Customer, o.Style, o.OrderDate.String(), o.ETDDate.String(),
			qty(o.TotalQty), qty(o.AssignedQty), qty(o.RemainingQty), o.Status.String(),
			strconv.FormatBool(o.Tentative),
		})
	}
	return writeRecords(w, []string{
		"order_id", "order_number", "customer", "style", "order_date", "etd_date",
		"total_qty", "assigned_qty", "remaining_qty", "status", "tentative",
	}, records)
}

// WriteAssignmentsCSV writes every assignment on the board. The columns match
// the scenario assignments.csv so an export can be loaded back as a scenario.
func WriteAssignmentsCSV(w io.Writer, board *entities.Board) error {
	var records [][]string
	for _, u := range board.Units {
		for _, l := range u.Lines {
			for _, a := range l.Assignments {
				records = append(records, []string{
					a.ID, a.OrderID, l.ID, qty(a.Quantity), a.StartDate.String(), a.EndDate.String(),
				})
			}
		}
	}
	return writeRecords(w, []string{
		"assignment_id", "order_id", "line_id", "quantity", "start_date", "end_date",
	}, records)
}

// WritePlacementsCSV writes the placed requests of an auto-plan run
func WritePlacementsCSV(w io.Writer, result *dto.AutoPlanResult) error {
	records := make([][]string, 0, len(result.Placed))
	for _, p := range result.Placed {
		records = append(records, []string{
			p.OrderID, p.OrderNumber, p.UnitID, p.LineID, p.AssignmentID, qty(p.Quantity),
			p.StartDate.String(), p.EndDate.String(), strconv.Itoa(p.RequiredDays), entities.FormatUnits(p.DailyRate),
		})
	}
	return writeRecords(w, []string{
		"order_id", "order_number", "unit_id", "line_id", "assignment_id", "quantity",
		"start_date", "end_date", "required_days", "daily_rate",
	}, records)
}

// WriteFailuresCSV writes the requests an auto-plan run could not place
func WriteFailuresCSV(w io.Writer, result *dto.AutoPlanResult) error {
	records := make([][]string, 0, len(result.Failed))
	for _, f := range result.Failed {
		records = append(records, []string{f.OrderID, f.OrderNumber, qty(f.Quantity), f.Reason})
	}
	return writeRecords(w, []string{"order_id", "order_number", "quantity", "reason"}, records)
}

// WriteUtilizationCSV writes one row per line per day of the window
func WriteUtilizationCSV(w io.Writer, report *dto.UtilizationReport) error {
	var records [][]string
	for _, l := range report.Lines {
		for _, d := range l.Days {
			records = append(records, []string{
				l.UnitID, l.LineID, d.Day.String(), entities.FormatUnits(d.Load),
				entities.FormatUnits(d.Capacity), entities.FormatUnits(d.Headroom),
				Percent(d.Utilization), string(d.Band),
			})
		}
	}
	return writeRecords(w, []string{
		"unit_id", "line_id", "day", "load", "capacity", "headroom", "utilization", "band",
	}, records)
}
