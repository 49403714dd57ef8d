package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vsinha/lineplan/pkg/application/services/planning"
	"github.com/vsinha/lineplan/pkg/domain/entities"
	"github.com/vsinha/lineplan/pkg/domain/services"
)

// Scenario file names inside a scenario directory
const (
	LinesFile       = "lines.csv"
	OrdersFile      = "orders.csv"
	AssignmentsFile = "assignments.csv"
	RequestsFile    = "requests.csv"
)

var (
	linesHeader       = []string{"unit_id", "unit_name", "line_id", "line_name", "daily_capacity"}
	ordersHeader      = []string{"order_id", "order_number", "customer", "style", "order_date", "etd_date", "total_qty", "tentative"}
	assignmentsHeader = []string{"assignment_id", "order_id", "line_id", "quantity", "start_date", "end_date"}
	requestsHeader    = []string{"order_id", "quantity"}
)

// Scenario is a board plus an optional batch of auto-plan requests
type Scenario struct {
	Board    *entities.Board
	Requests []planning.PlanRequest
}

// Loader handles loading planning scenarios from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadScenario reads lines.csv and orders.csv from dir, then applies
// assignments.csv and reads requests.csv when they exist.
func (l *Loader) LoadScenario(dir string) (*Scenario, error) {
	units, err := l.LoadUnits(filepath.Join(dir, LinesFile))
	if err != nil {
		return nil, err
	}
	orders, err := l.LoadOrders(filepath.Join(dir, OrdersFile))
	if err != nil {
		return nil, err
	}
	board, err := entities.NewBoard(orders, units)
	if err != nil {
		return nil, fmt.Errorf("invalid scenario in %s: %w", dir, err)
	}

	assignmentsPath := filepath.Join(dir, AssignmentsFile)
	if fileExists(assignmentsPath) {
		if board, err = l.ApplyAssignments(assignmentsPath, board); err != nil {
			return nil, err
		}
	}

	scenario := &Scenario{Board: board}
	requestsPath := filepath.Join(dir, RequestsFile)
	if fileExists(requestsPath) {
		if scenario.Requests, err = l.LoadRequests(requestsPath); err != nil {
			return nil, err
		}
	}
	return scenario, nil
}

// LoadUnits loads units and their lines from a CSV file. Rows of the same
// unit_id are grouped in first-seen order.
func (l *Loader) LoadUnits(filename string) ([]entities.Unit, error) {
	records, err := readTable(filename, "lines", linesHeader)
	if err != nil {
		return nil, err
	}

	var units []entities.Unit
	index := make(map[string]int)
	for i, record := range records {
		capacity, err := strconv.ParseInt(strings.TrimSpace(record[4]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("lines CSV row %d: invalid daily_capacity: %s", i+2, record[4])
		}
		line, err := entities.NewProductionLine(record[2], record[3], entities.Capacity(capacity))
		if err != nil {
			return nil, fmt.Errorf("lines CSV row %d: %w", i+2, err)
		}

		pos, ok := index[record[0]]
		if !ok {
			unit, err := entities.NewUnit(record[0], record[1])
			if err != nil {
				return nil, fmt.Errorf("lines CSV row %d: %w", i+2, err)
			}
			index[record[0]] = len(units)
			units = append(units, *unit)
			pos = len(units) - 1
		}
		units[pos].Lines = append(units[pos].Lines, *line)
	}
	return units, nil
}

// LoadOrders loads orders from a CSV file
func (l *Loader) LoadOrders(filename string) ([]entities.Order, error) {
	records, err := readTable(filename, "orders", ordersHeader)
	if err != nil {
		return nil, err
	}

	orders := make([]entities.Order, 0, len(records))
	for i, record := range records {
		order, err := parseOrder(record)
		if err != nil {
			return nil, fmt.Errorf("orders CSV row %d: %w", i+2, err)
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// ApplyAssignments commits every row of an assignments CSV onto board.
// Each row must fit its line day by day, given the rows before it.
func (l *Loader) ApplyAssignments(filename string, board *entities.Board) (*entities.Board, error) {
	records, err := readTable(filename, "assignments", assignmentsHeader)
	if err != nil {
		return nil, err
	}

	for i, record := range records {
		row := i + 2
		qty, err := parseQuantity(record[3])
		if err != nil {
			return nil, fmt.Errorf("assignments CSV row %d: %w", row, err)
		}
		start, err := entities.ParseDay(record[4])
		if err != nil {
			return nil, fmt.Errorf("assignments CSV row %d: invalid start_date: %w", row, err)
		}
		end, err := entities.ParseDay(record[5])
		if err != nil {
			return nil, fmt.Errorf("assignments CSV row %d: invalid end_date: %w", row, err)
		}

		order, ok := board.FindOrder(record[1])
		if !ok {
			return nil, fmt.Errorf("assignments CSV row %d: %w", row, entities.NewNotFound("order", record[1]))
		}
		line, _, ok := board.FindLine(record[2])
		if !ok {
			return nil, fmt.Errorf("assignments CSV row %d: %w", row, entities.NewNotFound("line", record[2]))
		}
		if err := services.ValidateAssignment(line, qty, start, end, ""); err != nil {
			return nil, fmt.Errorf("assignments CSV row %d: %w", row, err)
		}

		a, err := entities.NewAssignment(record[0], order.ID, order.OrderNumber, qty, start, end, order.Tentative)
		if err != nil {
			return nil, fmt.Errorf("assignments CSV row %d: %w", row, err)
		}
		if _, exists := line.FindAssignment(a.ID); exists {
			return nil, fmt.Errorf("assignments CSV row %d: duplicate assignment id %s", row, a.ID)
		}
		updated, err := order.WithAssigned(qty)
		if err != nil {
			return nil, fmt.Errorf("assignments CSV row %d: %w", row, err)
		}
		if board, err = board.WithLine(line.WithAssignment(*a)); err != nil {
			return nil, err
		}
		if board, err = board.WithOrder(updated); err != nil {
			return nil, err
		}
	}
	return board, nil
}

// LoadRequests loads auto-plan requests from a CSV file, keeping file order
func (l *Loader) LoadRequests(filename string) ([]planning.PlanRequest, error) {
	records, err := readTable(filename, "requests", requestsHeader)
	if err != nil {
		return nil, err
	}

	requests := make([]planning.PlanRequest, 0, len(records))
	for i, record := range records {
		qty, err := strconv.ParseInt(strings.TrimSpace(record[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("requests CSV row %d: invalid quantity: %s", i+2, record[1])
		}
		requests = append(requests, planning.PlanRequest{
			OrderID:  strings.TrimSpace(record[0]),
			Quantity: entities.Quantity(qty),
		})
	}
	return requests, nil
}

// Helper functions for parsing CSV records

// readTable opens filename, checks its header and returns the data rows
func readTable(filename, kind string, expectedHeader []string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", kind, filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("%s CSV must have header and at least one data row", kind)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", kind, expectedHeader, header)
	}

	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", kind, i+2, len(expectedHeader), len(record))
		}
	}
	return records[1:], nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseOrder(record []string) (entities.Order, error) {
	orderDate, err := entities.ParseDay(record[4])
	if err != nil {
		return entities.Order{}, fmt.Errorf("invalid order_date format: %s (expected YYYY-MM-DD)", record[4])
	}
	etdDate, err := entities.ParseDay(record[5])
	if err != nil {
		return entities.Order{}, fmt.Errorf("invalid etd_date format: %s (expected YYYY-MM-DD)", record[5])
	}
	total, err := parseQuantity(record[6])
	if err != nil {
		return entities.Order{}, err
	}
	tentative, err := parseBool(record[7])
	if err != nil {
		return entities.Order{}, err
	}

	order, err := entities.NewOrder(record[0], record[1], record[2], record[3], orderDate, etdDate, total, tentative)
	if err != nil {
		return entities.Order{}, err
	}
	return *order, nil
}

func parseQuantity(s string) (entities.Quantity, error) {
	qty, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity: %s", s)
	}
	return entities.Quantity(qty), nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "false", "no", "0":
		return false, nil
	case "true", "yes", "1":
		return true, nil
	default:
		return false, fmt.Errorf("invalid tentative flag: %s (expected true or false)", s)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}
