package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vsinha/lineplan/pkg/application/services/planning"
	"github.com/vsinha/lineplan/pkg/domain/entities"
	"github.com/vsinha/lineplan/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/lineplan/pkg/interfaces/cli/output"
)

// UtilizationConfig holds configuration for the utilization command
type UtilizationConfig struct {
	ScenarioDir string
	From        string
	To          string
	LineID      string
	OutputDir   string
	Format      string
	Verbose     bool
	Help        bool
	Out         io.Writer
}

// UtilizationCommand reports the daily load of a scenario's lines
type UtilizationCommand struct {
	config UtilizationConfig
	out    io.Writer
}

// NewUtilizationCommand creates a new utilization command
func NewUtilizationCommand(config UtilizationConfig) *UtilizationCommand {
	out := config.Out
	if out == nil {
		out = os.Stdout
	}
	return &UtilizationCommand{config: config, out: out}
}

// Execute runs the utilization command
func (c *UtilizationCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.printHelp()
		return nil
	}
	if c.config.ScenarioDir == "" {
		return fmt.Errorf("validation error: must specify -scenario directory")
	}
	window, err := planning.ParseWindow(c.config.From, c.config.To)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	scenario, err := csv.NewLoader().LoadScenario(c.config.ScenarioDir)
	if err != nil {
		return fmt.Errorf("error loading scenario: %w", err)
	}

	report := planning.BuildUtilizationReport(scenario.Board, window)
	if c.config.LineID != "" {
		if _, _, ok := scenario.Board.FindLine(c.config.LineID); !ok {
			return entities.NewNotFound("line", c.config.LineID)
		}
		lines := report.Lines[:0]
		for _, l := range report.Lines {
			if l.LineID == c.config.LineID {
				lines = append(lines, l)
			}
		}
		report.Lines = lines
	}

	if c.config.Verbose {
		fmt.Fprintf(c.out, "📊 Utilization of %d line(s) from %s to %s\n\n", len(report.Lines), window.From, window.To)
	}
	return output.Generate(&output.Report{
		Board:       scenario.Board,
		Utilization: report,
		GeneratedAt: time.Now(),
	}, output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Verbose:   c.config.Verbose,
	}, c.out)
}

func (c *UtilizationCommand) printHelp() {
	fmt.Fprintln(c.out, `Line Utilization Report

USAGE:
    lineplan utilization -scenario <directory> [OPTIONS]

OPTIONS:
    -scenario <dir>     Path to scenario directory containing CSV files
    -from <date>        First day of the window (default: first of this month)
    -to <date>          Last day of the window (default: end of the -from month)
    -line <id>          Only report this line
    -output <dir>       Output directory for results
    -format <fmt>       Output format: text, json, csv, xlsx, pdf, svg, html (default: text)
    -verbose            Enable verbose output
    -help               Show this help message

DESCRIPTION:
    Apportions every assignment evenly over its days and reports the load,
    headroom and band of each line per day, plus the utilization of every
    line and unit over the window.`)
}
