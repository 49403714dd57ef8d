package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/lineplan/pkg/application/services/planning"
	"github.com/vsinha/lineplan/pkg/domain/entities"
	"github.com/vsinha/lineplan/pkg/domain/services"
	"github.com/vsinha/lineplan/pkg/infrastructure/config"
	"github.com/vsinha/lineplan/pkg/infrastructure/importer"
	"github.com/vsinha/lineplan/pkg/interfaces/cli/output"
)

// SessionConfig holds configuration for the interactive planning session
type SessionConfig struct {
	ScenarioDir   string
	ReferenceDate string
	Verbose       bool
	Help          bool
	In            io.Reader
	Out           io.Writer
}

// SessionCommand runs an interactive planning session against one board
type SessionCommand struct {
	config  SessionConfig
	service *planning.Service
	scanner *bufio.Scanner
	out     io.Writer
}

// NewSessionCommand creates a new session command with the given configuration
func NewSessionCommand(config SessionConfig) *SessionCommand {
	in, out := config.In, config.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &SessionCommand{
		config:  config,
		scanner: bufio.NewScanner(in),
		out:     out,
	}
}

// errQuit ends the session loop
var errQuit = errors.New("quit")

// Execute runs the session until quit or end of input
func (c *SessionCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.printHelp()
		return nil
	}

	logger := zap.NewNop()
	if c.config.Verbose {
		if dev, err := zap.NewDevelopment(); err == nil {
			logger = dev
		}
	}
	svc, err := NewPlanningService(&config.Config{
		Planning: config.PlanningConfig{
			SeedDemo:      true,
			ScenarioDir:   c.config.ScenarioDir,
			ReferenceDate: c.config.ReferenceDate,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to load board: %w", err)
	}
	c.service = svc

	return c.runInteractiveSession(ctx)
}

func (c *SessionCommand) runInteractiveSession(ctx context.Context) error {
	fmt.Fprintln(c.out, "=== Line Planning Session ===")
	fmt.Fprintln(c.out, "Type 'help' for available commands")
	fmt.Fprintln(c.out)

	for {
		fmt.Fprint(c.out, "plan> ")
		if !c.scanner.Scan() {
			break
		}

		line := strings.TrimSpace(c.scanner.Text())
		if line == "" {
			continue
		}

		err := c.processCommand(ctx, line)
		if errors.Is(err, errQuit) {
			fmt.Fprintln(c.out, "Goodbye!")
			return nil
		}
		if err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
		}
		fmt.Fprintln(c.out)
	}

	return c.scanner.Err()
}

func (c *SessionCommand) processCommand(ctx context.Context, line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}

	command := parts[0]
	args := parts[1:]

	switch command {
	case "help", "h":
		c.printInteractiveHelp()
	case "orders":
		return c.handleOrders(args)
	case "lines":
		return c.handleLines()
	case "assign":
		return c.handleAssign(ctx, args)
	case "unassign":
		return c.handleUnassign(ctx, args)
	case "unassign-all":
		return c.handleUnassignAll(ctx, args)
	case "move":
		return c.handleMove(ctx, args)
	case "suggest":
		return c.handleSuggest(args)
	case "autoplan":
		return c.handleAutoPlan(ctx, args)
	case "tentative":
		return c.handleTentative(ctx, args)
	case "import":
		return c.handleImport(ctx, args)
	case "utilization", "util":
		return c.handleUtilization(args)
	case "export":
		return c.handleExport(args)
	case "events":
		return c.handleShowEvents(args)
	case "history":
		return c.handleHistory(args)
	case "status":
		return c.handleStatus()
	case "reset":
		if err := c.service.Reset(ctx); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "Board reset")
	case "quit", "q", "exit":
		return errQuit
	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", command)
	}

	return nil
}

func (c *SessionCommand) handleOrders(args []string) error {
	var (
		orders []entities.Order
		err    error
	)
	if len(args) > 0 && args[0] == "available" {
		orders, err = c.service.AvailableOrders(entities.OrderFilter{})
	} else {
		orders, err = c.service.Orders(entities.OrderFilter{Search: strings.Join(args, " ")})
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "%-12s %-14s %-18s %-10s %8s %8s %8s  %s\n",
		"ID", "Order", "Customer", "ETD", "Total", "Assigned", "Left", "Status")
	for _, o := range orders {
		status := o.Status.String()
		if o.Tentative {
			status += " (tentative)"
		}
		fmt.Fprintf(c.out, "%-12s %-14s %-18s %-10s %8d %8d %8d  %s\n",
			o.ID, o.OrderNumber, o.Customer, o.ETDDate, o.TotalQty, o.AssignedQty, o.RemainingQty, status)
	}
	return nil
}

func (c *SessionCommand) handleLines() error {
	board, err := c.service.Board()
	if err != nil {
		return err
	}
	for _, u := range board.Units {
		fmt.Fprintf(c.out, "%s (%s) %d/day\n", u.Name, u.ID, u.TotalCapacity())
		for _, l := range u.Lines {
			fmt.Fprintf(c.out, "  %s (%s) %d/day\n", l.Name, l.ID, l.DailyCapacity)
			for _, a := range l.Assignments {
				fmt.Fprintf(c.out, "    %s %s qty %d %s..%s (%s/day)\n",
					a.ID, a.OrderNumber, a.Quantity, a.StartDate, a.EndDate, entities.FormatUnits(a.DailyRate()))
			}
		}
	}
	return nil
}

func (c *SessionCommand) handleAssign(ctx context.Context, args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("usage: assign <order-id> <line-id>=<qty>[,<line-id>=<qty>...] <start> <end>")
	}
	lines, err := parseLineQuantities(args[1])
	if err != nil {
		return err
	}
	start, end, err := parseDays(args[2], args[3])
	if err != nil {
		return err
	}

	result, err := c.service.Assign(ctx, planning.AssignRequest{
		OrderID:   args[0],
		Lines:     lines,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		return err
	}
	for _, al := range result.Assignments {
		fmt.Fprintf(c.out, "Assigned %d of %s to %s as %s (%s..%s)\n",
			al.Assignment.Quantity, result.Order.OrderNumber, al.LineName, al.Assignment.ID,
			al.Assignment.StartDate, al.Assignment.EndDate)
	}
	for _, note := range result.Advisories {
		if note.Reason != "" {
			fmt.Fprintf(c.out, "  advisor on %s: %s\n", note.LineID, note.Reason)
		}
	}
	fmt.Fprintf(c.out, "%s now has %d remaining (%s)\n", result.Order.OrderNumber, result.Order.RemainingQty, result.Order.Status)
	return nil
}

func (c *SessionCommand) handleUnassign(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: unassign <order-id> <line-id> <assignment-id>")
	}
	result, err := c.service.Unassign(ctx, args[0], args[1], args[2])
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Released %d of %s\n", result.Released, result.Order.OrderNumber)
	return nil
}

func (c *SessionCommand) handleUnassignAll(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: unassign-all <order-id>")
	}
	result, err := c.service.UnassignAll(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Removed %d assignment(s), released %d of %s\n",
		len(result.Removed), result.Released, result.Order.OrderNumber)
	return nil
}

func (c *SessionCommand) handleMove(ctx context.Context, args []string) error {
	if len(args) < 5 {
		return fmt.Errorf("usage: move <assignment-id> <source-line-id> <target-line-id> <new-start> <qty>")
	}
	newStart, err := entities.ParseDay(args[3])
	if err != nil {
		return err
	}
	qty, err := parseQuantity(args[4])
	if err != nil {
		return err
	}

	result, err := c.service.Move(ctx, planning.MoveRequest{
		AssignmentID: args[0],
		SourceLineID: args[1],
		TargetLineID: args[2],
		NewStart:     newStart,
		Quantity:     qty,
	})
	if err != nil {
		return err
	}
	switch {
	case result.NoOp:
		fmt.Fprintln(c.out, "Nothing to move")
	case result.Merged:
		fmt.Fprintf(c.out, "Merged into %s on %s, now %d\n", result.Moved.ID, result.TargetLineID, result.Moved.Quantity)
	default:
		fmt.Fprintf(c.out, "Moved %d to %s as %s (%s..%s)\n",
			result.Moved.Quantity, result.TargetLineID, result.Moved.ID, result.Moved.StartDate, result.Moved.EndDate)
	}
	if result.Remaining != nil {
		fmt.Fprintf(c.out, "%d stay on %s\n", result.Remaining.Quantity, result.SourceLineID)
	}
	return nil
}

func (c *SessionCommand) handleSuggest(args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("usage: suggest <order-id> <unit-id> <start> <end>")
	}
	start, end, err := parseDays(args[2], args[3])
	if err != nil {
		return err
	}
	lines, err := c.service.SuggestQuantities(args[0], args[1], start, end)
	if err != nil {
		return err
	}
	pairs := make([]string, 0, len(lines))
	for _, lq := range lines {
		pairs = append(pairs, fmt.Sprintf("%s=%d", lq.LineID, lq.Quantity))
	}
	fmt.Fprintln(c.out, strings.Join(pairs, ","))
	return nil
}

func (c *SessionCommand) handleAutoPlan(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: autoplan <from> <to> <order-id>=<qty> [<order-id>=<qty>...]")
	}
	from, to, err := parseDays(args[0], args[1])
	if err != nil {
		return err
	}
	var requests []planning.PlanRequest
	for _, arg := range args[2:] {
		id, qty, err := splitPair(arg)
		if err != nil {
			return err
		}
		requests = append(requests, planning.PlanRequest{OrderID: id, Quantity: qty})
	}

	result, err := c.service.AutoPlan(ctx, planning.AutoPlanRequest{Requests: requests, From: from, To: to})
	if err != nil {
		return err
	}
	for _, p := range result.Placed {
		fmt.Fprintf(c.out, "Placed %s qty %d on %s %s..%s\n", p.OrderNumber, p.Quantity, p.LineName, p.StartDate, p.EndDate)
	}
	for _, f := range result.Failed {
		fmt.Fprintf(c.out, "Not placed %s qty %d: %s\n", f.OrderID, f.Quantity, f.Reason)
	}
	return nil
}

func (c *SessionCommand) handleTentative(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: tentative <order-number> <qty> <etd> [style]")
	}
	qty, err := parseQuantity(args[1])
	if err != nil {
		return err
	}
	etd, err := entities.ParseDay(args[2])
	if err != nil {
		return err
	}
	req := planning.TentativeOrderRequest{OrderNumber: args[0], Quantity: qty, ETDDate: etd}
	if len(args) > 3 {
		req.Style = args[3]
	}
	order, err := c.service.AddTentativeOrder(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Added tentative order %s (%s) qty %d\n", order.OrderNumber, order.ID, order.TotalQty)
	return nil
}

func (c *SessionCommand) handleImport(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: import <orders.xlsx>")
	}
	result, err := importer.ImportOrdersFile(args[0])
	if err != nil {
		return err
	}
	created := 0
	for _, req := range result.Orders {
		if _, err := c.service.AddTentativeOrder(ctx, req); err != nil {
			fmt.Fprintf(c.out, "  skipped %s: %v\n", req.OrderNumber, err)
			continue
		}
		created++
	}
	for _, msg := range append(result.Errors, result.Warnings...) {
		fmt.Fprintf(c.out, "  %s\n", msg)
	}
	fmt.Fprintf(c.out, "Imported %d tentative order(s)\n", created)
	return nil
}

func (c *SessionCommand) handleUtilization(args []string) error {
	var from, to string
	if len(args) > 0 {
		from = args[0]
	}
	if len(args) > 1 {
		to = args[1]
	}
	window, err := planning.ParseWindow(from, to)
	if err != nil {
		return err
	}
	report, err := c.service.Utilization(window.From, window.To)
	if err != nil {
		return err
	}
	for _, l := range report.Lines {
		peak := 0.0
		for _, d := range l.Days {
			if d.Load > peak {
				peak = d.Load
			}
		}
		fmt.Fprintf(c.out, "%-20s %-16s %6s  peak %s/%d\n",
			l.UnitName, l.LineName, output.Percent(l.Utilization), entities.FormatUnits(peak), l.DailyCapacity)
	}
	for _, u := range report.Units {
		fmt.Fprintf(c.out, "%-20s %-16s %6s\n", u.UnitName, "(all lines)", output.Percent(u.Utilization))
	}
	return nil
}

func (c *SessionCommand) handleExport(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: export <format> <output-dir> [from] [to]")
	}
	board, err := c.service.Board()
	if err != nil {
		return err
	}
	report := &output.Report{Board: board, GeneratedAt: time.Now()}
	if len(args) > 2 {
		to := ""
		if len(args) > 3 {
			to = args[3]
		}
		window, err := planning.ParseWindow(args[2], to)
		if err != nil {
			return err
		}
		report.Utilization = planning.BuildUtilizationReport(board, window)
	}
	return output.Generate(report, output.Config{Format: args[0], OutputDir: args[1], Verbose: true}, c.out)
}

func (c *SessionCommand) handleStatus() error {
	board, err := c.service.Board()
	if err != nil {
		return err
	}
	allEvents, err := c.service.Events(0)
	if err != nil {
		return fmt.Errorf("failed to read events: %w", err)
	}

	counts := make(map[entities.OrderStatus]int)
	var remaining entities.Quantity
	for _, o := range board.Orders {
		counts[o.Status]++
		remaining += o.RemainingQty
	}
	assignments := 0
	for _, l := range board.Lines() {
		assignments += len(l.Assignments)
	}

	fmt.Fprintf(c.out, "=== Board Status ===\n")
	fmt.Fprintf(c.out, "Orders: %d (%d planned, %d partial, %d full)\n", len(board.Orders),
		counts[entities.Planned], counts[entities.PartiallyAssigned], counts[entities.FullyAssigned])
	fmt.Fprintf(c.out, "Units remaining: %d\n", remaining)
	fmt.Fprintf(c.out, "Lines: %d, assignments: %d\n", len(board.Lines()), assignments)
	fmt.Fprintf(c.out, "Total events recorded: %d\n", len(allEvents))

	eventCounts := make(map[string]int)
	for _, event := range allEvents {
		eventCounts[event.Type]++
	}
	types := make([]string, 0, len(eventCounts))
	for t := range eventCounts {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(c.out, "  %s: %d\n", t, eventCounts[t])
	}
	return nil
}

func (c *SessionCommand) handleShowEvents(args []string) error {
	limit := 10
	if len(args) > 0 {
		l, err := strconv.Atoi(args[0])
		if err != nil || l < 1 {
			return fmt.Errorf("usage: events [n] with n >= 1, got %q", args[0])
		}
		limit = l
	}

	allEvents, err := c.service.Events(0)
	if err != nil {
		return fmt.Errorf("failed to read events: %w", err)
	}

	fmt.Fprintf(c.out, "=== Recent Events (last %d) ===\n", limit)
	start := len(allEvents) - limit
	if start < 0 {
		start = 0
	}
	for _, event := range allEvents[start:] {
		fmt.Fprintf(c.out, "[%s] %s -> %s\n",
			event.At.Format("15:04:05"),
			event.Type,
			event.Stream)
	}
	return nil
}

func (c *SessionCommand) handleHistory(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: history <order-id>")
	}
	history, err := c.service.OrderHistory(args[0])
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Fprintf(c.out, "No changes recorded for %s\n", args[0])
		return nil
	}
	for _, event := range history {
		fmt.Fprintf(c.out, "v%d [%s] %s\n", event.Version, event.At.Format("15:04:05"), event.Type)
	}
	return nil
}

// parseLineQuantities parses "line-1A=500,line-1B=300"
func parseLineQuantities(arg string) ([]services.LineQuantity, error) {
	var lines []services.LineQuantity
	for _, pair := range strings.Split(arg, ",") {
		id, qty, err := splitPair(pair)
		if err != nil {
			return nil, err
		}
		lines = append(lines, services.LineQuantity{LineID: id, Quantity: qty})
	}
	return lines, nil
}

func splitPair(pair string) (string, entities.Quantity, error) {
	id, raw, ok := strings.Cut(pair, "=")
	if !ok || id == "" {
		return "", 0, fmt.Errorf("expected <id>=<qty>, got %q", pair)
	}
	qty, err := parseQuantity(raw)
	return id, qty, err
}

func parseQuantity(s string) (entities.Quantity, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity: %s", s)
	}
	return entities.Quantity(v), nil
}

func parseDays(from, to string) (entities.Day, entities.Day, error) {
	start, err := entities.ParseDay(from)
	if err != nil {
		return entities.Day{}, entities.Day{}, err
	}
	end, err := entities.ParseDay(to)
	if err != nil {
		return entities.Day{}, entities.Day{}, err
	}
	return start, end, nil
}

func (c *SessionCommand) printHelp() {
	fmt.Fprintln(c.out, `Interactive Planning Session

USAGE:
    lineplan session [OPTIONS]

OPTIONS:
    -scenario <dir>     Load the board from a scenario directory (default: demo board)
    -reference <date>   Date the demo board is built around (default: today)
    -verbose            Log every change
    -help               Show this help message

DESCRIPTION:
    Starts an interactive session where you can assign, move and unassign
    orders on the production lines and watch the capacity picture change.`)
}

func (c *SessionCommand) printInteractiveHelp() {
	fmt.Fprintln(c.out, `Available commands:
  orders [available|<search>]                       - List orders
  lines                                             - Show units, lines and assignments
  assign <order> <line>=<qty>[,...] <start> <end>   - Commit an assignment over one or more lines
  unassign <order> <line> <assignment>              - Remove one assignment
  unassign-all <order>                              - Remove every assignment of an order
  move <assignment> <from-line> <to-line> <start> <qty>
                                                    - Move all or part of an assignment
  suggest <order> <unit> <start> <end>              - Propose a split over a unit's lines
  autoplan <from> <to> <order>=<qty> ...            - Auto-plan a batch of requests
  tentative <order-number> <qty> <etd> [style]      - Add a tentative order
  import <orders.xlsx>                              - Add tentative orders from a workbook
  utilization [from] [to]                           - Show line and unit utilization
  export <format> <dir> [from] [to]                 - Write a report
  events [n]                                        - Show the last n events
  history <order>                                   - Show every change to one order
  status                                            - Show board status
  reset                                             - Restore the initial board
  help                                              - Show this help
  quit                                              - Exit the session`)
}
