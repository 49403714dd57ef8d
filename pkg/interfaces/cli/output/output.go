package output

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/lineplan/pkg/application/dto"
	"github.com/vsinha/lineplan/pkg/domain/entities"
	"github.com/vsinha/lineplan/pkg/domain/services"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	PlanTime  time.Duration
}

// Report is everything a renderer can show about a planning run.
// AutoPlan and Utilization are optional.
type Report struct {
	Board       *entities.Board
	AutoPlan    *dto.AutoPlanResult
	Utilization *dto.UtilizationReport
	GeneratedAt time.Time
}

// Format describes one output format
type Format struct {
	Name        string
	Extension   string
	ContentType string
}

// Formats lists the supported output formats by name
var Formats = map[string]Format{
	"text": {Name: "text", Extension: "txt", ContentType: "text/plain; charset=utf-8"},
	"json": {Name: "json", Extension: "json", ContentType: "application/json"},
	"csv":  {Name: "csv", Extension: "csv", ContentType: "text/csv; charset=utf-8"},
	"xlsx": {Name: "xlsx", Extension: "xlsx", ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
	"pdf":  {Name: "pdf", Extension: "pdf", ContentType: "application/pdf"},
	"svg":  {Name: "svg", Extension: "svg", ContentType: "image/svg+xml"},
	"html": {Name: "html", Extension: "html", ContentType: "text/html; charset=utf-8"},
}

// reportBaseName is the file name (without extension) used when writing to OutputDir
const reportBaseName = "lineplan_report"

// Generate renders the report in the configured format. Output goes to stdout
// unless OutputDir is set, in which case a file is written there. CSV always
// needs OutputDir because it produces one file per table.
func Generate(report *Report, config Config, stdout io.Writer) error {
	if report == nil || report.Board == nil {
		return fmt.Errorf("report has no board")
	}
	format, ok := Formats[config.Format]
	if !ok {
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}

	if format.Name == "csv" {
		return generateCSVOutput(report, config, stdout)
	}

	if config.OutputDir == "" {
		if format.Name == "xlsx" || format.Name == "pdf" {
			return fmt.Errorf("output directory required for %s format", format.Name)
		}
		return Write(stdout, report, format.Name, config)
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	filename := filepath.Join(config.OutputDir, reportBaseName+"."+format.Extension)
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	if err := Write(file, report, format.Name, config); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", filename, err)
	}

	if config.Verbose {
		fmt.Fprintf(stdout, "💾 %s report saved to: %s\n", format.Name, filename)
	}
	return nil
}

// Write renders the report in a single stream. For csv it writes the
// assignments table only.
func Write(w io.Writer, report *Report, format string, config Config) error {
	switch format {
	case "text":
		return writeText(w, report, config)
	case "json":
		return writeJSON(w, report)
	case "csv":
		return WriteAssignmentsCSV(w, report.Board)
	case "xlsx":
		return WriteXLSX(w, report)
	case "pdf":
		return WritePDF(w, report)
	case "svg":
		_, err := io.WriteString(w, NewBoardChart(report).GenerateSVG(report))
		return err
	case "html":
		return WriteHTML(w, report)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// writeText creates human-readable text output
func writeText(w io.Writer, report *Report, config Config) error {
	board := report.Board
	fmt.Fprintf(w, "📊 Line Plan Summary\n")
	fmt.Fprintf(w, "====================\n\n")

	fmt.Fprintf(w, "Orders: %d\n", len(board.Orders))
	fmt.Fprintf(w, "Lines: %d\n", len(board.Lines()))
	if report.AutoPlan != nil {
		fmt.Fprintf(w, "Placed: %d\n", len(report.AutoPlan.Placed))
		fmt.Fprintf(w, "Failed: %d\n", len(report.AutoPlan.Failed))
	}
	if config.PlanTime > 0 {
		fmt.Fprintf(w, "Plan Time: %v\n", config.PlanTime)
	}
	fmt.Fprintln(w)

	if len(board.Orders) > 0 {
		fmt.Fprintf(w, "📋 Orders:\n")
		fmt.Fprintf(w, "%-12s %-20s %-12s %-10s %-10s %-10s %-20s\n",
			"Order", "Customer", "ETD", "Total", "Assigned", "Remaining", "Status")
		fmt.Fprintf(w, "%-12s %-20s %-12s %-10s %-10s %-10s %-20s\n",
			"------------", "--------------------", "------------", "----------", "----------", "----------", "--------------------")
		for _, o := range board.Orders {
			status := o.Status.String()
			if o.Tentative {
				status += " (tentative)"
			}
			fmt.Fprintf(w, "%-12s %-20s %-12s %-10d %-10d %-10d %-20s\n",
				o.OrderNumber, truncate(o.Customer, 20), o.ETDDate, o.TotalQty, o.AssignedQty, o.RemainingQty, status)
		}
		fmt.Fprintln(w)
	}

	if result := report.AutoPlan; result != nil {
		if len(result.Placed) > 0 {
			fmt.Fprintf(w, "🗓️  Placements (%s .. %s):\n", result.From, result.To)
			fmt.Fprintf(w, "%-12s %-16s %-10s %-12s %-12s %-6s %-10s\n",
				"Order", "Line", "Qty", "Start", "End", "Days", "Rate/Day")
			fmt.Fprintf(w, "%-12s %-16s %-10s %-12s %-12s %-6s %-10s\n",
				"------------", "----------------", "----------", "------------", "------------", "------", "----------")
			for _, p := range result.Placed {
				fmt.Fprintf(w, "%-12s %-16s %-10d %-12s %-12s %-6d %-10s\n",
					p.OrderNumber, truncate(p.LineName, 16), p.Quantity, p.StartDate, p.EndDate,
					p.RequiredDays, entities.FormatUnits(p.DailyRate))
			}
			fmt.Fprintln(w)
		}
		if len(result.Failed) > 0 {
			fmt.Fprintf(w, "⚠️  Not placed:\n")
			for _, f := range result.Failed {
				label := f.OrderNumber
				if label == "" {
					label = f.OrderID
				}
				fmt.Fprintf(w, "  %-12s qty %-8d %s\n", label, f.Quantity, f.Reason)
			}
			fmt.Fprintln(w)
		}
	}

	if util := report.Utilization; util != nil {
		fmt.Fprintf(w, "🏭 Utilization (%s .. %s):\n", util.From, util.To)
		fmt.Fprintf(w, "%-16s %-16s %-10s %-12s\n", "Unit", "Line", "Cap/Day", "Utilization")
		fmt.Fprintf(w, "%-16s %-16s %-10s %-12s\n", "----------------", "----------------", "----------", "------------")
		for _, l := range util.Lines {
			fmt.Fprintf(w, "%-16s %-16s %-10d %-12s\n",
				truncate(l.UnitName, 16), truncate(l.LineName, 16), l.DailyCapacity, Percent(l.Utilization))
		}
		for _, u := range util.Units {
			fmt.Fprintf(w, "%-16s %-16s %-10s %-12s\n", truncate(u.UnitName, 16), "(all lines)", "", Percent(u.Utilization))
		}
		fmt.Fprintln(w)
	}

	return nil
}

// jsonReport is the stable JSON envelope of a report
type jsonReport struct {
	GeneratedAt time.Time              `json:"generated_at"`
	Orders      []entities.Order       `json:"orders"`
	Units       []entities.Unit        `json:"units"`
	AutoPlan    *dto.AutoPlanResult    `json:"auto_plan,omitempty"`
	Utilization *dto.UtilizationReport `json:"utilization,omitempty"`
}

// writeJSON creates JSON output
func writeJSON(w io.Writer, report *Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	err := encoder.Encode(jsonReport{
		GeneratedAt: report.GeneratedAt,
		Orders:      report.Board.Orders,
		Units:       report.Board.Units,
		AutoPlan:    report.AutoPlan,
		Utilization: report.Utilization,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}

// Percent renders a utilization ratio as a percentage with one decimal.
// An infinite ratio (load on a zero-capacity line) renders as "n/a".
func Percent(r services.Ratio) string {
	f := float64(r)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "n/a"
	}
	return decimal.NewFromFloat(f).Shift(2).Round(1).StringFixed(1) + "%"
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return string(runes[:n])
	}
	return string(runes[:n-1]) + "…"
}
