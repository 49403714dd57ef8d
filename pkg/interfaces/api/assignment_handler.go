package api

import (
	"github.com/gin-gonic/gin"

	"github.com/vsinha/lineplan/pkg/application/services/planning"
)

// AssignmentHandler serves commit, unassign and move
type AssignmentHandler struct {
	svc *planning.Service
}

func NewAssignmentHandler(svc *planning.Service) *AssignmentHandler {
	return &AssignmentHandler{svc: svc}
}

// Assign POST /assignments
func (h *AssignmentHandler) Assign(c *gin.Context) {
	var req planning.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	result, err := h.svc.Assign(c.Request.Context(), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, result)
}

type unassignRequest struct {
	OrderID      string `json:"order_id" binding:"required"`
	LineID       string `json:"line_id" binding:"required"`
	AssignmentID string `json:"assignment_id" binding:"required"`
}

// Unassign POST /assignments/unassign
func (h *AssignmentHandler) Unassign(c *gin.Context) {
	var req unassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	result, err := h.svc.Unassign(c.Request.Context(), req.OrderID, req.LineID, req.AssignmentID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, result)
}

// Move POST /assignments/:id/move
func (h *AssignmentHandler) Move(c *gin.Context) {
	var req planning.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	req.AssignmentID = c.Param("id")

	result, err := h.svc.Move(c.Request.Context(), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, result)
}
