package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vsinha/lineplan/pkg/domain/entities"
)

// Response is the envelope of every JSON reply
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// CapacityDetail is the data attached to a capacity rejection
type CapacityDetail struct {
	LineID       string            `json:"line_id"`
	LineName     string            `json:"line_name"`
	Day          entities.Day      `json:"day"`
	ExistingLoad float64           `json:"existing_load"`
	Requested    float64           `json:"requested"`
	Total        float64           `json:"total"`
	Capacity     entities.Capacity `json:"capacity"`
}

// Success writes a 200 reply
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

// Created writes a 201 reply
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: 0, Message: "success", Data: data})
}

// Error writes an error reply; the HTTP status is code / 100
func Error(c *gin.Context, code int, message string) {
	ErrorWithData(c, code, message, nil)
}

// ErrorWithData writes an error reply carrying details
func ErrorWithData(c *gin.Context, code int, message string, data interface{}) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = http.StatusInternalServerError
	}
	c.JSON(statusCode, Response{Code: code, Message: message, Data: data})
}

// BadRequest writes a 400 reply
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// NotFound writes a 404 reply
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// InternalError writes a 500 reply
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// Fail maps a planning error onto a reply. Capacity rejections carry the
// offending day so the board can highlight it.
func Fail(c *gin.Context, err error) {
	var capErr *entities.CapacityError
	switch {
	case errors.As(err, &capErr):
		ErrorWithData(c, 40900, err.Error(), CapacityDetail{
			LineID:       capErr.LineID,
			LineName:     capErr.LineName,
			Day:          capErr.Day,
			ExistingLoad: capErr.ExistingLoad,
			Requested:    capErr.Requested,
			Total:        capErr.Total(),
			Capacity:     capErr.Capacity,
		})
	case errors.Is(err, entities.ErrCapacityExceeded):
		Error(c, 40900, err.Error())
	case errors.Is(err, entities.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, entities.ErrInvalidRange), errors.Is(err, entities.ErrInsufficientRemaining):
		BadRequest(c, err.Error())
	case errors.Is(err, entities.ErrAdvisoryUnavailable):
		Error(c, 50300, err.Error())
	default:
		InternalError(c, err.Error())
	}
}
