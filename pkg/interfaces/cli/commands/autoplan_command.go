package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/lineplan/pkg/application/services/planning"
	"github.com/vsinha/lineplan/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/lineplan/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/lineplan/pkg/interfaces/cli/output"
)

// Config holds configuration for the autoplan command
type Config struct {
	ScenarioDir  string
	From         string
	To           string
	OutputDir    string
	Format       string
	AllOrNothing bool
	Verbose      bool
	Help         bool
	// Out receives all output; os.Stdout when nil
	Out io.Writer
}

// AutoPlanCommand loads a scenario and runs its requests through the auto-planner
type AutoPlanCommand struct {
	config Config
	out    io.Writer
}

// NewAutoPlanCommand creates a new autoplan command with the given configuration
func NewAutoPlanCommand(config Config) *AutoPlanCommand {
	out := config.Out
	if out == nil {
		out = os.Stdout
	}
	return &AutoPlanCommand{config: config, out: out}
}

// Execute runs the autoplan command
func (c *AutoPlanCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	if c.config.ScenarioDir == "" {
		return fmt.Errorf("validation error: must specify -scenario directory")
	}
	window, err := planning.ParseWindow(c.config.From, c.config.To)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if c.config.Verbose {
		c.printHeader(window)
		fmt.Fprintln(c.out, "📂 Loading scenario from CSV files...")
	}
	scenario, err := csv.NewLoader().LoadScenario(c.config.ScenarioDir)
	if err != nil {
		return fmt.Errorf("error loading scenario: %w", err)
	}
	if len(scenario.Requests) == 0 {
		return fmt.Errorf("scenario %s has no %s", c.config.ScenarioDir, csv.RequestsFile)
	}

	if c.config.Verbose {
		fmt.Fprintf(c.out, "✅ Scenario loaded successfully:\n")
		fmt.Fprintf(c.out, "  Orders: %d\n", len(scenario.Board.Orders))
		fmt.Fprintf(c.out, "  Lines: %d\n", len(scenario.Board.Lines()))
		fmt.Fprintf(c.out, "  Requests: %d\n", len(scenario.Requests))
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, "🔄 Running auto-plan...")
	}

	svc := planning.NewServiceWithConfig(memory.NewBoardRepository(scenario.Board), planning.Dependencies{
		Logger: zap.NewNop(),
	}, planning.ServiceConfig{AutoPlanAllOrNothing: c.config.AllOrNothing})

	startTime := time.Now()
	result, err := svc.AutoPlan(ctx, planning.AutoPlanRequest{
		Requests: scenario.Requests,
		From:     window.From,
		To:       window.To,
	})
	planTime := time.Since(startTime)
	if err != nil {
		return fmt.Errorf("error running auto-plan: %w", err)
	}

	if c.config.Verbose {
		fmt.Fprintf(c.out, "✅ Auto-plan completed in %v\n\n", planTime)
	}

	board, err := svc.Board()
	if err != nil {
		return err
	}
	report := &output.Report{
		Board:       board,
		AutoPlan:    result,
		Utilization: planning.BuildUtilizationReport(board, window),
		GeneratedAt: time.Now(),
	}
	outputConfig := output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Verbose:   c.config.Verbose,
		PlanTime:  planTime,
	}
	if err := output.Generate(report, outputConfig, c.out); err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}

	if c.config.Verbose {
		fmt.Fprintln(c.out, "🏁 Auto-plan complete!")
	}
	return nil
}

// printHeader prints the command header information
func (c *AutoPlanCommand) printHeader(window planning.Window) {
	fmt.Fprintf(c.out, "🚀 Line Planner CLI\n")
	fmt.Fprintf(c.out, "Scenario: %s\n", c.config.ScenarioDir)
	fmt.Fprintf(c.out, "Window: %s .. %s\n", window.From, window.To)
	fmt.Fprintf(c.out, "Output format: %s\n", c.config.Format)
	if c.config.OutputDir != "" {
		fmt.Fprintf(c.out, "Output directory: %s\n", c.config.OutputDir)
	}
	fmt.Fprintln(c.out)
}

// showHelp displays the help message
func (c *AutoPlanCommand) showHelp() {
	fmt.Fprint(c.out, `Line Planner - greedy first-fit auto-planning for production lines

USAGE:
    lineplan autoplan -scenario <directory> [OPTIONS]

OPTIONS:
    -scenario <dir>     Path to scenario directory containing CSV files
    -from <date>        First day of the planning window (default: first of this month)
    -to <date>          Last day of the planning window (default: end of the -from month)
    -output <dir>       Output directory for results (required for csv, xlsx, pdf)
    -format <fmt>       Output format: text, json, csv, xlsx, pdf, svg, html (default: text)
    -all-or-nothing     Roll the whole batch back when any request fails
    -verbose            Enable verbose output
    -help               Show this help message

SCENARIO DIRECTORY STRUCTURE:
    scenario_name/
    ├── lines.csv        # Units and their production lines
    ├── orders.csv       # Order book
    ├── assignments.csv  # Existing assignments (optional)
    └── requests.csv     # Auto-plan batch, in priority order

CSV FILE FORMATS:

lines.csv:
    unit_id,unit_name,line_id,line_name,daily_capacity
    unit-1,Stitching Unit 1,line-1A,Line 1A,250

orders.csv:
    order_id,order_number,customer,style,order_date,etd_date,total_qty,tentative
    ord-1,OC-1201A,Alpha Corp,ST-001,2024-01-01,2024-02-15,5000,false

assignments.csv:
    assignment_id,order_id,line_id,quantity,start_date,end_date
    as-1,ord-1,line-1A,1000,2024-02-01,2024-02-04

requests.csv:
    order_id,quantity
    ord-1,4000

EXAMPLES:
    # Plan the sample scenario over February 2024
    lineplan autoplan -scenario example/garment_basic -from 2024-02-01 -to 2024-02-29 -verbose

    # Write a workbook with the placements and the utilization grid
    lineplan autoplan -scenario example/garment_basic -from 2024-02-01 -format xlsx -output results/

    # Only commit when every request fits
    lineplan autoplan -scenario example/garment_basic -from 2024-02-01 -all-or-nothing
`)
}
