// Package api exposes the planning board over HTTP with gin. Every JSON reply
// uses the Response envelope; planning errors are mapped by Fail.
package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vsinha/lineplan/pkg/application/services/planning"
)

// Handlers groups the HTTP handlers of the board
type Handlers struct {
	Orders      *OrderHandler
	Assignments *AssignmentHandler
	Board       *BoardHandler
}

func NewHandlers(svc *planning.Service, logger *zap.Logger) *Handlers {
	return &Handlers{
		Orders:      NewOrderHandler(svc, logger),
		Assignments: NewAssignmentHandler(svc),
		Board:       NewBoardHandler(svc, logger),
	}
}

// NewRouter builds the engine with middleware and all routes registered
func NewRouter(svc *planning.Service, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), Logger(logger), CORS())

	r.GET("/health/live", func(c *gin.Context) {
		Success(c, gin.H{"status": "ok"})
	})

	RegisterRoutes(r.Group("/api/v1"), NewHandlers(svc, logger))
	return r
}

// RegisterRoutes mounts the board routes on g
func RegisterRoutes(g *gin.RouterGroup, h *Handlers) {
	orders := g.Group("/orders")
	{
		orders.GET("", h.Orders.List)
		orders.POST("/tentative", h.Orders.CreateTentative)
		orders.POST("/import", h.Orders.Import)
		orders.POST("/:id/suggestions", h.Orders.Suggest)
		orders.DELETE("/:id/assignments", h.Orders.UnassignAll)
		orders.GET("/:id/events", h.Orders.History)
	}

	assignments := g.Group("/assignments")
	{
		assignments.POST("", h.Assignments.Assign)
		assignments.POST("/unassign", h.Assignments.Unassign)
		assignments.POST("/:id/move", h.Assignments.Move)
	}

	g.GET("/units", h.Board.Units)
	g.GET("/lines/:id/utilization", h.Board.LineUtilization)
	g.GET("/utilization", h.Board.Utilization)
	g.POST("/autoplan", h.Board.AutoPlan)
	g.POST("/reset", h.Board.Reset)
	g.GET("/events", h.Board.Events)
	g.GET("/export", h.Board.Export)
}
