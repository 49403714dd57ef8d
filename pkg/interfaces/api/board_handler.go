package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vsinha/lineplan/pkg/application/services/planning"
	"github.com/vsinha/lineplan/pkg/domain/entities"
	"github.com/vsinha/lineplan/pkg/interfaces/cli/output"
)

// BoardHandler serves the board-wide views and operations
type BoardHandler struct {
	svc    *planning.Service
	logger *zap.Logger
}

func NewBoardHandler(svc *planning.Service, logger *zap.Logger) *BoardHandler {
	return &BoardHandler{svc: svc, logger: logger}
}

// Units GET /units
func (h *BoardHandler) Units(c *gin.Context) {
	board, err := h.svc.Board()
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"items": board.Units})
}

// LineUtilization GET /lines/:id/utilization?from=&to=
func (h *BoardHandler) LineUtilization(c *gin.Context) {
	window, err := planning.ParseWindow(c.Query("from"), c.Query("to"))
	if err != nil {
		Fail(c, err)
		return
	}
	report, err := h.svc.LineUtilization(c.Param("id"), window.From, window.To)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, report)
}

// Utilization GET /utilization?from=&to=
func (h *BoardHandler) Utilization(c *gin.Context) {
	window, err := planning.ParseWindow(c.Query("from"), c.Query("to"))
	if err != nil {
		Fail(c, err)
		return
	}
	report, err := h.svc.Utilization(window.From, window.To)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, report)
}

// AutoPlan POST /autoplan
func (h *BoardHandler) AutoPlan(c *gin.Context) {
	var req planning.AutoPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	result, err := h.svc.AutoPlan(c.Request.Context(), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, result)
}

// Reset POST /reset
func (h *BoardHandler) Reset(c *gin.Context) {
	if err := h.svc.Reset(c.Request.Context()); err != nil {
		Fail(c, err)
		return
	}
	board, err := h.svc.Board()
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"orders": len(board.Orders), "lines": len(board.Lines())})
}

// Events GET /events?from=
func (h *BoardHandler) Events(c *gin.Context) {
	from, err := strconv.Atoi(c.DefaultQuery("from", "0"))
	if err != nil || from < 0 {
		BadRequest(c, "from must be a non-negative position")
		return
	}
	events, err := h.svc.Events(from)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"items": events, "total": len(events)})
}

// Export GET /export?format=xlsx&from=&to=
// The report includes utilization when a window is given.
func (h *BoardHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "xlsx")
	outFormat, ok := output.Formats[format]
	if !ok {
		BadRequest(c, fmt.Sprintf("unsupported export format: %s", format))
		return
	}

	board, err := h.svc.Board()
	if err != nil {
		Fail(c, err)
		return
	}
	report := &output.Report{Board: board, GeneratedAt: time.Now()}
	if c.Query("from") != "" || c.Query("to") != "" {
		window, err := planning.ParseWindow(c.Query("from"), c.Query("to"))
		if err != nil {
			Fail(c, err)
			return
		}
		if report.Utilization, err = h.svc.Utilization(window.From, window.To); err != nil {
			Fail(c, err)
			return
		}
	}

	var buf bytes.Buffer
	if err := output.Write(&buf, report, format, output.Config{Format: format}); err != nil {
		h.logger.Error("export failed", zap.String("format", format), zap.Error(err))
		InternalError(c, "export failed: "+err.Error())
		return
	}

	filename := fmt.Sprintf("lineplan_%s.%s", entities.Today(), outFormat.Extension)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, outFormat.ContentType, buf.Bytes())
}
