package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/vsinha/lineplan/pkg/interfaces/cli/commands"
)

// command is implemented by every subcommand
type command interface {
	Execute(ctx context.Context) error
}

const usage = `Line Planner - capacity planning for production lines

USAGE:
    lineplan <command> [OPTIONS]

COMMANDS:
    autoplan      Place a scenario's requests with the greedy first-fit planner
    utilization   Report daily line load for a scenario
    session       Interactive planning session
    generate      Write a random scenario
    serve         Serve the planning board over HTTP

Run 'lineplan <command> -help' for the options of a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cmd, err := parseCommand(os.Args[1], os.Args[2:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if cmd == nil {
		fmt.Fprint(os.Stdout, usage)
		return
	}

	if err := cmd.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseCommand(name string, args []string) (command, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)

	switch name {
	case "autoplan":
		var config commands.Config
		fs.StringVar(&config.ScenarioDir, "scenario", "", "Path to scenario directory containing CSV files")
		fs.StringVar(&config.From, "from", "", "First day of the planning window")
		fs.StringVar(&config.To, "to", "", "Last day of the planning window")
		fs.StringVar(&config.OutputDir, "output", "", "Output directory for results (optional)")
		fs.StringVar(&config.Format, "format", "text", "Output format: text, json, csv, xlsx, pdf, svg, html")
		fs.BoolVar(&config.AllOrNothing, "all-or-nothing", false, "Roll the batch back when any request fails")
		fs.BoolVar(&config.Verbose, "verbose", false, "Enable verbose output")
		fs.BoolVar(&config.Help, "help", false, "Show help message")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		return commands.NewAutoPlanCommand(config), nil

	case "utilization":
		var config commands.UtilizationConfig
		fs.StringVar(&config.ScenarioDir, "scenario", "", "Path to scenario directory containing CSV files")
		fs.StringVar(&config.From, "from", "", "First day of the window")
		fs.StringVar(&config.To, "to", "", "Last day of the window")
		fs.StringVar(&config.LineID, "line", "", "Only report this line")
		fs.StringVar(&config.OutputDir, "output", "", "Output directory for results (optional)")
		fs.StringVar(&config.Format, "format", "text", "Output format: text, json, csv, xlsx, pdf, svg, html")
		fs.BoolVar(&config.Verbose, "verbose", false, "Enable verbose output")
		fs.BoolVar(&config.Help, "help", false, "Show help message")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		return commands.NewUtilizationCommand(config), nil

	case "session":
		var config commands.SessionConfig
		fs.StringVar(&config.ScenarioDir, "scenario", "", "Load the board from a scenario directory")
		fs.StringVar(&config.ReferenceDate, "reference", "", "Date the demo board is built around")
		fs.BoolVar(&config.Verbose, "verbose", false, "Log every change")
		fs.BoolVar(&config.Help, "help", false, "Show help message")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		return commands.NewSessionCommand(config), nil

	case "generate":
		var config commands.GenerateConfig
		fs.IntVar(&config.Units, "units", 3, "Number of units")
		fs.IntVar(&config.LinesPerUnit, "lines", 3, "Maximum lines per unit")
		fs.IntVar(&config.Orders, "orders", 20, "Number of orders")
		fs.Float64Var(&config.RequestShare, "requests", 0.5, "Share of orders added to requests.csv")
		fs.StringVar(&config.Reference, "reference", "", "Day the order dates are generated around")
		fs.StringVar(&config.OutputDir, "output", "", "Output directory for generated files")
		fs.Int64Var(&config.Seed, "seed", 0, "Random seed (0 = time based)")
		fs.BoolVar(&config.Verbose, "verbose", false, "Enable verbose output")
		fs.BoolVar(&config.Help, "help", false, "Show help message")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		return commands.NewGenerateCommand(config), nil

	case "serve":
		var config commands.ServeConfig
		fs.StringVar(&config.ConfigFile, "config", "", "Path to config file")
		fs.IntVar(&config.Port, "port", 0, "Override server.port")
		fs.BoolVar(&config.Help, "help", false, "Show help message")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		return commands.NewServeCommand(config), nil

	case "help", "-help", "--help", "-h":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown command %q\n\n%s", name, usage)
	}
}
