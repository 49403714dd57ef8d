package api

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vsinha/lineplan/pkg/application/services/planning"
	"github.com/vsinha/lineplan/pkg/domain/entities"
	"github.com/vsinha/lineplan/pkg/infrastructure/importer"
)

// OrderHandler serves the order list and order-level changes
type OrderHandler struct {
	svc    *planning.Service
	logger *zap.Logger
}

func NewOrderHandler(svc *planning.Service, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{svc: svc, logger: logger}
}

// List GET /orders
// Query: customer, order_number, style, status (repeatable), etd, min_qty,
// max_qty, order_date_from, order_date_to, search, available=true
func (h *OrderHandler) List(c *gin.Context) {
	filter, err := parseOrderFilter(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	var orders []entities.Order
	if c.Query("available") == "true" {
		orders, err = h.svc.AvailableOrders(filter)
	} else {
		orders, err = h.svc.Orders(filter)
	}
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"items": orders, "total": len(orders)})
}

// CreateTentative POST /orders/tentative
func (h *OrderHandler) CreateTentative(c *gin.Context) {
	var req planning.TentativeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	order, err := h.svc.AddTentativeOrder(c.Request.Context(), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, order)
}

// Import POST /orders/import
// Multipart form with a "file" workbook; every parsed row becomes a tentative order.
func (h *OrderHandler) Import(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		BadRequest(c, "upload an Excel file in the \"file\" field")
		return
	}
	defer file.Close()

	result, err := importer.ImportOrdersFrom(file)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	created := make([]entities.Order, 0, len(result.Orders))
	for i, req := range result.Orders {
		order, err := h.svc.AddTentativeOrder(c.Request.Context(), req)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("order %d (%s): %v", i+1, req.OrderNumber, err))
			continue
		}
		created = append(created, *order)
	}
	h.logger.Info("orders imported", zap.Int("created", len(created)), zap.Int("errors", len(result.Errors)))

	Success(c, gin.H{"created": created, "errors": result.Errors, "warnings": result.Warnings})
}

type suggestionRequest struct {
	UnitID    string       `json:"unit_id" binding:"required"`
	StartDate entities.Day `json:"start_date"`
	EndDate   entities.Day `json:"end_date"`
}

// Suggest POST /orders/:id/suggestions
func (h *OrderHandler) Suggest(c *gin.Context) {
	var req suggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	lines, err := h.svc.SuggestQuantities(c.Param("id"), req.UnitID, req.StartDate, req.EndDate)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"lines": lines})
}

// UnassignAll DELETE /orders/:id/assignments
func (h *OrderHandler) UnassignAll(c *gin.Context) {
	result, err := h.svc.UnassignAll(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, result)
}

func parseOrderFilter(c *gin.Context) (entities.OrderFilter, error) {
	filter := entities.OrderFilter{
		Customers:    c.QueryArray("customer"),
		OrderNumbers: c.QueryArray("order_number"),
		Styles:       c.QueryArray("style"),
		Search:       c.Query("search"),
	}
	for _, s := range c.QueryArray("status") {
		status, err := entities.ParseOrderStatus(s)
		if err != nil {
			return filter, err
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	days := map[string]*entities.Day{
		"etd":             &filter.ETD,
		"order_date_from": &filter.OrderDateFrom,
		"order_date_to":   &filter.OrderDateTo,
	}
	for key, target := range days {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		day, err := entities.ParseDay(raw)
		if err != nil {
			return filter, fmt.Errorf("%s: %w", key, err)
		}
		*target = day
	}

	quantities := map[string]*entities.Quantity{
		"min_qty": &filter.MinQty,
		"max_qty": &filter.MaxQty,
	}
	for key, target := range quantities {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, fmt.Errorf("%s: invalid quantity %q", key, raw)
		}
		*target = entities.Quantity(v)
	}
	return filter, nil
}

// History GET /orders/:id/events
func (h *OrderHandler) History(c *gin.Context) {
	history, err := h.svc.OrderHistory(c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"items": history, "total": len(history)})
}
