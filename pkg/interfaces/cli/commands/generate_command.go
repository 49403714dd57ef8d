package commands

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/vsinha/lineplan/pkg/domain/entities"
	"github.com/vsinha/lineplan/pkg/infrastructure/repositories/csv"
)

// GenerateConfig holds configuration for scenario generation
type GenerateConfig struct {
	Units        int     // Number of units
	LinesPerUnit int     // Maximum lines per unit (each unit gets 1..LinesPerUnit)
	Orders       int     // Number of orders
	RequestShare float64 // Share of orders that get an auto-plan request (0..1)
	Reference    string  // Day the order dates are generated around (default: today)
	OutputDir    string  // Output directory for generated files
	Seed         int64   // Random seed for reproducible generation
	Help         bool    // Show help
	Verbose      bool    // Verbose output
	Out          io.Writer
}

// GenerateCommand writes a random but plausible planning scenario
type GenerateCommand struct {
	config GenerateConfig
	rand   *rand.Rand
	out    io.Writer
}

// NewGenerateCommand creates a new generate command
func NewGenerateCommand(config GenerateConfig) *GenerateCommand {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	out := config.Out
	if out == nil {
		out = os.Stdout
	}

	return &GenerateCommand{
		config: config,
		rand:   rand.New(rand.NewSource(seed)),
		out:    out,
	}
}

type generatedOrder struct {
	id, number, customer, style string
	orderDate, etd              entities.Day
	qty                         int
	tentative                   bool
}

var customers = []string{"Alpha Corp", "Bravo Inc", "Charlie Apparel", "Delta LLC", "Echo Ltd", "Foxtrot Retail"}

// Execute runs the generate command
func (cmd *GenerateCommand) Execute(ctx context.Context) error {
	if cmd.config.Help {
		cmd.printHelp()
		return nil
	}
	if err := cmd.validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	reference := entities.Today()
	if cmd.config.Reference != "" {
		d, err := entities.ParseDay(cmd.config.Reference)
		if err != nil {
			return fmt.Errorf("validation error: %w", err)
		}
		reference = d
	}

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.out,
			"🔧 Generating scenario with %d units, up to %d lines each, %d orders\n",
			cmd.config.Units,
			cmd.config.LinesPerUnit,
			cmd.config.Orders,
		)
		fmt.Fprintf(cmd.out, "📁 Output directory: %s\n", cmd.config.OutputDir)
		fmt.Fprintf(cmd.out, "🎲 Random seed: %d\n", cmd.config.Seed)
	}

	if err := os.MkdirAll(cmd.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.out, "🏭 Generating %s...\n", csv.LinesFile)
	}
	if err := cmd.generateLines(); err != nil {
		return fmt.Errorf("failed to generate lines: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	orders := cmd.buildOrders(reference)
	if cmd.config.Verbose {
		fmt.Fprintf(cmd.out, "📋 Generating %s...\n", csv.OrdersFile)
	}
	if err := cmd.generateOrders(orders); err != nil {
		return fmt.Errorf("failed to generate orders: %w", err)
	}

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.out, "🗓️  Generating %s...\n", csv.RequestsFile)
	}
	if err := cmd.generateRequests(orders); err != nil {
		return fmt.Errorf("failed to generate requests: %w", err)
	}

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.out, "✅ Scenario generated successfully in %s\n", cmd.config.OutputDir)
	}
	return nil
}

func (cmd *GenerateCommand) validate() error {
	switch {
	case cmd.config.OutputDir == "":
		return fmt.Errorf("-output is required")
	case cmd.config.Units <= 0:
		return fmt.Errorf("-units must be positive")
	case cmd.config.LinesPerUnit <= 0:
		return fmt.Errorf("-lines must be positive")
	case cmd.config.Orders <= 0:
		return fmt.Errorf("-orders must be positive")
	case cmd.config.RequestShare < 0 || cmd.config.RequestShare > 1:
		return fmt.Errorf("-requests must be between 0 and 1")
	}
	return nil
}

// generateLines creates lines.csv; capacities run from 150 to 500 a day in steps of 50
func (cmd *GenerateCommand) generateLines() error {
	file, err := os.Create(filepath.Join(cmd.config.OutputDir, csv.LinesFile))
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintln(file, "unit_id,unit_name,line_id,line_name,daily_capacity")
	for u := 1; u <= cmd.config.Units; u++ {
		lines := 1 + cmd.rand.Intn(cmd.config.LinesPerUnit)
		for l := 0; l < lines; l++ {
			suffix := string(rune('A' + l%26))
			capacity := 150 + 50*cmd.rand.Intn(8)
			fmt.Fprintf(file, "unit-%d,Stitching Unit %d,line-%d%s,Line %d%s,%d\n",
				u, u, u, suffix, u, suffix, capacity)
		}
	}
	return nil
}

func (cmd *GenerateCommand) buildOrders(reference entities.Day) []generatedOrder {
	orders := make([]generatedOrder, 0, cmd.config.Orders)
	for i := 1; i <= cmd.config.Orders; i++ {
		orderDate := reference.AddDays(-cmd.rand.Intn(30))
		orders = append(orders, generatedOrder{
			id:        fmt.Sprintf("ord-%d", i),
			number:    fmt.Sprintf("OC-%04d", 1000+i),
			customer:  customers[cmd.rand.Intn(len(customers))],
			style:     fmt.Sprintf("ST-%03d", 1+cmd.rand.Intn(40)),
			orderDate: orderDate,
			etd:       reference.AddDays(7 + cmd.rand.Intn(60)),
			qty:       500 + 250*cmd.rand.Intn(20),
			tentative: cmd.rand.Float64() < 0.2,
		})
	}
	return orders
}

// generateOrders creates orders.csv
func (cmd *GenerateCommand) generateOrders(orders []generatedOrder) error {
	file, err := os.Create(filepath.Join(cmd.config.OutputDir, csv.OrdersFile))
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintln(file, "order_id,order_number,customer,style,order_date,etd_date,total_qty,tentative")
	for _, o := range orders {
		fmt.Fprintf(file, "%s,%s,%s,%s,%s,%s,%d,%t\n",
			o.id, o.number, o.customer, o.style, o.orderDate, o.etd, o.qty, o.tentative)
	}
	return nil
}

// generateRequests creates requests.csv: a share of the orders, earliest ETD
// first, each asking for all or half of its quantity
func (cmd *GenerateCommand) generateRequests(orders []generatedOrder) error {
	file, err := os.Create(filepath.Join(cmd.config.OutputDir, csv.RequestsFile))
	if err != nil {
		return err
	}
	defer file.Close()

	selected := make([]generatedOrder, 0, len(orders))
	for _, o := range orders {
		if cmd.rand.Float64() < cmd.config.RequestShare {
			selected = append(selected, o)
		}
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].etd.Before(selected[j].etd)
	})

	fmt.Fprintln(file, "order_id,quantity")
	for _, o := range selected {
		qty := o.qty
		if cmd.rand.Intn(2) == 0 {
			qty /= 2
		}
		fmt.Fprintf(file, "%s,%d\n", o.id, qty)
	}
	return nil
}

// printHelp shows usage information
func (cmd *GenerateCommand) printHelp() {
	fmt.Fprintln(cmd.out, `Planning Scenario Generator

USAGE:
    lineplan generate [OPTIONS]

OPTIONS:
    -units <N>          Number of units (default: 3)
    -lines <N>          Maximum lines per unit (default: 3)
    -orders <N>         Number of orders (default: 20)
    -requests <F>       Share of orders added to requests.csv, 0..1 (default: 0.5)
    -reference <date>   Day the order dates are generated around (default: today)
    -output <DIR>       Output directory for generated files (required)
    -seed <N>           Random seed for reproducible generation (optional)
    -verbose            Enable verbose output
    -help               Show this help message

EXAMPLES:
    # Generate a small scenario
    lineplan generate -units 2 -lines 3 -orders 10 -output ./test_scenario

    # Generate a reproducible scenario dated around February 2024
    lineplan generate -units 5 -orders 200 -reference 2024-02-01 -seed 12345 -output ./repro_scenario`)
}
