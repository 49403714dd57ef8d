// Package importer reads tentative orders from Excel workbooks. Headers are
// matched case-insensitively against a set of aliases so sheets exported from
// other tools can be used as they are.
package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/vsinha/lineplan/pkg/application/services/planning"
	"github.com/vsinha/lineplan/pkg/domain/entities"
)

// ImportResult holds the orders that parsed and a message per skipped row
type ImportResult struct {
	Orders   []planning.TentativeOrderRequest `json:"orders"`
	Errors   []string                         `json:"errors,omitempty"`
	Warnings []string                         `json:"warnings,omitempty"`
}

// ColumnMapping maps each order field to its column index, -1 when absent
type ColumnMapping struct {
	OrderNumber int
	Customer    int
	Style       int
	OrderDate   int
	ETDDate     int
	Quantity    int
}

var headerAliases = map[string][]string{
	"order_number": {"order_number", "order number", "order no", "order", "oc", "oc number", "po"},
	"customer":     {"customer", "buyer", "client"},
	"style":        {"style", "style number", "article"},
	"order_date":   {"order_date", "order date", "date"},
	"etd_date":     {"etd_date", "etd", "etd date", "ship date"},
	"quantity":     {"quantity", "qty", "total_qty", "total qty", "pcs"},
}

// DetectColumns matches a header row against the known aliases. The second
// return value is false when no cell looked like a header.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{-1, -1, -1, -1, -1, -1}
	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				target := mapping.field(role)
				if *target == -1 {
					*target = i
				}
			}
		}
	}
	return mapping, isHeader
}

func (m *ColumnMapping) field(role string) *int {
	switch role {
	case "order_number":
		return &m.OrderNumber
	case "customer":
		return &m.Customer
	case "style":
		return &m.Style
	case "order_date":
		return &m.OrderDate
	case "etd_date":
		return &m.ETDDate
	default:
		return &m.Quantity
	}
}

// ImportOrdersFile reads the first sheet of the workbook at path
func ImportOrdersFile(path string) (ImportResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()
	return ImportOrders(f), nil
}

// ImportOrdersFrom reads the first sheet of a workbook streamed from r
func ImportOrdersFrom(r io.Reader) (ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return ImportOrders(f), nil
}

// ImportOrders parses the first sheet of f. The first row must be a header
// naming at least the quantity and ETD columns.
func ImportOrders(f *excelize.File) ImportResult {
	var result ImportResult

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "workbook has no sheets")
		return result
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("read sheet %q: %v", sheets[0], err))
		return result
	}
	if len(rows) == 0 {
		result.Errors = append(result.Errors, "sheet is empty")
		return result
	}

	mapping, isHeader := DetectColumns(rows[0])
	if !isHeader {
		result.Errors = append(result.Errors, "first row is not a header")
		return result
	}
	var missing []string
	if mapping.Quantity == -1 {
		missing = append(missing, "quantity")
	}
	if mapping.ETDDate == -1 {
		missing = append(missing, "etd_date")
	}
	if len(missing) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("required columns not found in header: %s", strings.Join(missing, ", ")))
		return result
	}

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		label := fmt.Sprintf("row %d", i+1)
		req, err := parseRow(row, mapping)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", label, err))
			continue
		}
		if req.OrderNumber == "" {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: no order number", label))
		}
		result.Orders = append(result.Orders, req)
	}
	return result
}

func parseRow(row []string, m ColumnMapping) (planning.TentativeOrderRequest, error) {
	req := planning.TentativeOrderRequest{
		OrderNumber: cell(row, m.OrderNumber),
		Customer:    cell(row, m.Customer),
		Style:       cell(row, m.Style),
	}

	qty, err := strconv.ParseInt(strings.ReplaceAll(cell(row, m.Quantity), ",", ""), 10, 64)
	if err != nil {
		return req, fmt.Errorf("invalid quantity %q", cell(row, m.Quantity))
	}
	if qty <= 0 {
		return req, fmt.Errorf("quantity must be positive, got %d", qty)
	}
	req.Quantity = entities.Quantity(qty)

	if req.ETDDate, err = entities.ParseDay(cell(row, m.ETDDate)); err != nil {
		return req, fmt.Errorf("invalid etd_date: %w", err)
	}
	if raw := cell(row, m.OrderDate); raw != "" {
		if req.OrderDate, err = entities.ParseDay(raw); err != nil {
			return req, fmt.Errorf("invalid order_date: %w", err)
		}
	}
	return req, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
