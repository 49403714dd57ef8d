package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/vsinha/lineplan/pkg/application/dto"
	"github.com/vsinha/lineplan/pkg/application/services/planning"
	"github.com/vsinha/lineplan/pkg/domain/entities"
	"github.com/vsinha/lineplan/pkg/infrastructure/repositories/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

var reference = entities.MustParseDay("2024-02-01")

// newTestRouter serves the demo board dated around 2024-02-01
func newTestRouter(t *testing.T) (*gin.Engine, *planning.Service) {
	t.Helper()
	seed := func() (*entities.Board, error) { return memory.SeedBoard(reference) }
	board, err := seed()
	require.NoError(t, err)

	svc := planning.NewServiceWithConfig(memory.NewBoardRepository(board), planning.Dependencies{
		Logger: zap.NewNop(),
		Seed:   seed,
	}, planning.ServiceConfig{})
	return NewRouter(svc, zap.NewNop()), svc
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func assignBody(orderID, lineID string, qty entities.Quantity, start, end string) gin.H {
	return gin.H{
		"order_id":   orderID,
		"lines":      []gin.H{{"line_id": lineID, "quantity": qty}},
		"start_date": start,
		"end_date":   end,
	}
}

func TestHealthAndRequestID(t *testing.T) {
	r, _ := newTestRouter(t)

	w, env := do(t, r, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, env.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/orders", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestListOrders(t *testing.T) {
	r, _ := newTestRouter(t)

	var page struct {
		Items []entities.Order `json:"items"`
		Total int              `json:"total"`
	}

	w, env := do(t, r, http.MethodGet, "/api/v1/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, 6, page.Total)

	w, env = do(t, r, http.MethodGet, "/api/v1/orders?customer=Alpha+Corp&customer=Delta+LLC", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, 3, page.Total)

	w, env = do(t, r, http.MethodGet, "/api/v1/orders?available=true&min_qty=5000", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Equal(t, 3, page.Total)
	// earliest ETD first
	assert.Equal(t, "OC-1201A", page.Items[0].OrderNumber)

	w, env = do(t, r, http.MethodGet, "/api/v1/orders?status=unknown", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 40000, env.Code)

	w, _ = do(t, r, http.MethodGet, "/api/v1/orders?etd=tomorrow", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssign_CapacityConflict(t *testing.T) {
	r, svc := newTestRouter(t)

	// 1000 units over four days fills Line 1A (250/day) exactly
	w, env := do(t, r, http.MethodPost, "/api/v1/assignments", assignBody("ord-1", "line-1A", 1000, "2024-02-01", "2024-02-04"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var result dto.AssignResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	require.Len(t, result.Assignments, 1)
	assert.Equal(t, entities.Quantity(1000), result.Order.AssignedQty)

	w, env = do(t, r, http.MethodPost, "/api/v1/assignments", assignBody("ord-2", "line-1A", 10, "2024-02-01", "2024-02-04"))
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 40900, env.Code)
	var detail CapacityDetail
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, "line-1A", detail.LineID)
	assert.Equal(t, "2024-02-01", detail.Day.String())
	assert.InDelta(t, 250, detail.ExistingLoad, 0.001)
	assert.InDelta(t, 252.5, detail.Total, 0.001)

	// the rejected change left the board untouched
	board, err := svc.Board()
	require.NoError(t, err)
	order, _ := board.FindOrder("ord-2")
	assert.Equal(t, entities.Quantity(0), order.AssignedQty)

	w, _ = do(t, r, http.MethodPost, "/api/v1/assignments", assignBody("missing", "line-1A", 10, "2024-02-01", "2024-02-04"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/v1/assignments", assignBody("ord-2", "line-1B", 10, "2024-02-04", "2024-02-01"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/v1/assignments", assignBody("ord-2", "line-3A", 3600, "2024-02-01", "2024-02-04"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnassignMoveAndUnassignAll(t *testing.T) {
	r, _ := newTestRouter(t)

	_, env := do(t, r, http.MethodPost, "/api/v1/assignments", assignBody("ord-1", "line-1A", 1000, "2024-02-01", "2024-02-04"))
	var created dto.AssignResult
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assignmentID := created.Assignments[0].Assignment.ID

	w, env := do(t, r, http.MethodPost, "/api/v1/assignments/"+assignmentID+"/move", gin.H{
		"source_line_id": "line-1A",
		"target_line_id": "line-1B",
		"new_start":      "2024-02-10",
		"quantity":       400,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var moved dto.MoveResult
	require.NoError(t, json.Unmarshal(env.Data, &moved))
	require.NotNil(t, moved.Remaining)
	assert.Equal(t, entities.Quantity(600), moved.Remaining.Quantity)
	assert.Equal(t, "2024-02-13", moved.Moved.EndDate.String())

	w, env = do(t, r, http.MethodPost, "/api/v1/assignments/unassign", gin.H{
		"order_id": "ord-1", "line_id": "line-1A", "assignment_id": assignmentID,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var unassigned dto.UnassignResult
	require.NoError(t, json.Unmarshal(env.Data, &unassigned))
	assert.Equal(t, entities.Quantity(600), unassigned.Released)
	assert.Equal(t, entities.Quantity(400), unassigned.Order.AssignedQty)

	w, _ = do(t, r, http.MethodPost, "/api/v1/assignments/unassign", gin.H{
		"order_id": "ord-1", "line_id": "line-1A", "assignment_id": assignmentID,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/v1/assignments/unassign", gin.H{"order_id": "ord-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = do(t, r, http.MethodDelete, "/api/v1/orders/ord-1/assignments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &unassigned))
	assert.Equal(t, entities.Quantity(400), unassigned.Released)
	assert.Equal(t, entities.Quantity(0), unassigned.Order.AssignedQty)
}

func TestSuggestions(t *testing.T) {
	r, _ := newTestRouter(t)

	w, env := do(t, r, http.MethodPost, "/api/v1/orders/ord-4/suggestions", gin.H{
		"unit_id": "unit-1", "start_date": "2024-02-01", "end_date": "2024-02-04",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Lines []struct {
			LineID   string            `json:"line_id"`
			Quantity entities.Quantity `json:"quantity"`
		} `json:"lines"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &body))
	require.Len(t, body.Lines, 3)
	// 2200 remaining: Line 1A takes 1000, Line 1B takes 1200, Line 1C nothing
	assert.Equal(t, entities.Quantity(1000), body.Lines[0].Quantity)
	assert.Equal(t, entities.Quantity(1200), body.Lines[1].Quantity)
	assert.Equal(t, entities.Quantity(0), body.Lines[2].Quantity)

	w, _ = do(t, r, http.MethodPost, "/api/v1/orders/ord-4/suggestions", gin.H{
		"unit_id": "unit-9", "start_date": "2024-02-01", "end_date": "2024-02-04",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAutoPlanAndUtilization(t *testing.T) {
	r, _ := newTestRouter(t)

	w, env := do(t, r, http.MethodPost, "/api/v1/autoplan", gin.H{
		"requests": []gin.H{{"order_id": "ord-2", "quantity": 3500}, {"order_id": "ord-9", "quantity": 10}},
		"from":     "2024-02-01",
		"to":       "2024-02-29",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result dto.AutoPlanResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Len(t, result.Placed, 1)
	assert.Len(t, result.Failed, 1)

	w, env = do(t, r, http.MethodGet, "/api/v1/utilization?from=2024-02-01&to=2024-02-29", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var report struct {
		Lines []json.RawMessage `json:"lines"`
		Units []json.RawMessage `json:"units"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Len(t, report.Lines, 6)
	assert.Len(t, report.Units, 3)

	w, _ = do(t, r, http.MethodGet, "/api/v1/utilization?from=2024-03-01&to=2024-02-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/v1/lines/line-1A/utilization?from=2024-02-01&to=2024-02-07", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/v1/lines/line-9/utilization?from=2024-02-01&to=2024-02-07", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = do(t, r, http.MethodGet, "/api/v1/lines/line-1A/utilization?from=2024-02-01", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var line struct {
		Days []json.RawMessage `json:"days"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &line))
	assert.Len(t, line.Days, 29)

	w, env = do(t, r, http.MethodGet, "/api/v1/utilization?from=2027-03-01", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var future struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &future))
	assert.Equal(t, "2027-03-01", future.From)
	assert.Equal(t, "2027-03-31", future.To)

	w, _ = do(t, r, http.MethodGet, "/api/v1/utilization?from=1900-01-01&to=9999-12-31", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/v1/export?format=csv&from=1900-01-01&to=9999-12-31", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/v1/autoplan", gin.H{"from": "2024-02-29", "to": "2024-02-01"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTentativeOrderEventsAndReset(t *testing.T) {
	r, svc := newTestRouter(t)

	w, env := do(t, r, http.MethodPost, "/api/v1/orders/tentative", gin.H{
		"order_number": "OC-NEW", "style": "ST-900", "order_date": "2024-02-01", "etd_date": "2024-03-15", "quantity": 1200,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var order entities.Order
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.True(t, order.Tentative)
	assert.Equal(t, "Planning Dept", order.Customer)

	w, _ = do(t, r, http.MethodPost, "/api/v1/orders/tentative", gin.H{
		"order_number": "OC-BAD", "order_date": "2024-02-01", "etd_date": "2024-03-15", "quantity": 0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = do(t, r, http.MethodGet, "/api/v1/events", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var events struct {
		Items []struct {
			Type   string `json:"type"`
			Stream string `json:"stream"`
		} `json:"items"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &events))
	require.Equal(t, 1, events.Total)
	assert.Equal(t, "order.created", events.Items[0].Type)
	assert.Equal(t, order.ID, events.Items[0].Stream)

	w, env = do(t, r, http.MethodGet, "/api/v1/orders/"+order.ID+"/events", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &events))
	assert.Equal(t, 1, events.Total)

	w, _ = do(t, r, http.MethodGet, "/api/v1/orders/ord-404/events", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/v1/events?from=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/v1/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	board, err := svc.Board()
	require.NoError(t, err)
	assert.Len(t, board.Orders, 6)
}

func TestImportOrders(t *testing.T) {
	r, svc := newTestRouter(t)

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"Order Number", "Customer", "Quantity", "Order Date", "ETD"},
		{"OC-X1", "Echo Ltd", 800, "2024-02-01", "2024-03-10"},
		{"OC-X2", "Echo Ltd", "lots", "2024-02-01", "2024-03-10"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		values := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &values))
	}
	var workbook bytes.Buffer
	require.NoError(t, f.Write(&workbook))
	require.NoError(t, f.Close())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "orders.xlsx")
	require.NoError(t, err)
	_, err = part.Write(workbook.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var result struct {
		Created []entities.Order `json:"created"`
		Errors  []string         `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	require.Len(t, result.Created, 1)
	assert.Equal(t, "OC-X1", result.Created[0].OrderNumber)
	assert.Len(t, result.Errors, 1)

	board, err := svc.Board()
	require.NoError(t, err)
	assert.Len(t, board.Orders, 7)
	// new tentative orders go to the top of the list
	assert.Equal(t, "OC-X1", board.Orders[0].OrderNumber)

	w, _ = do(t, r, http.MethodPost, "/api/v1/orders/import", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExport(t *testing.T) {
	r, _ := newTestRouter(t)
	do(t, r, http.MethodPost, "/api/v1/assignments", assignBody("ord-1", "line-1A", 1000, "2024-02-01", "2024-02-04"))

	w, _ := do(t, r, http.MethodGet, "/api/v1/export?format=xlsx&from=2024-02-01&to=2024-02-29", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Utilization")

	w, _ = do(t, r, http.MethodGet, "/api/v1/export?format=csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "assignment_id,order_id,line_id")

	w, _ = do(t, r, http.MethodGet, "/api/v1/export?format=yaml", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
