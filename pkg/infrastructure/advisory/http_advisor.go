package advisory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/lineplan/pkg/application/services/planning"
	"github.com/vsinha/lineplan/pkg/domain/entities"
)

// maxResponseBytes caps how much of an advisor reply is read
const maxResponseBytes = 64 << 10

// HTTPAdvisor asks a remote service for a capacity opinion by POSTing the
// advisory request as JSON and decoding an Opinion from the reply.
type HTTPAdvisor struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

// NewHTTPAdvisor creates an advisor for endpoint. timeout bounds each call on
// top of the caller's context.
func NewHTTPAdvisor(endpoint string, timeout time.Duration, logger *zap.Logger) *HTTPAdvisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPAdvisor{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

var _ planning.CapacityAdvisor = (*HTTPAdvisor)(nil)

// Evaluate implements planning.CapacityAdvisor. Every transport or decoding
// failure is reported as entities.ErrAdvisoryUnavailable.
func (a *HTTPAdvisor) Evaluate(ctx context.Context, req planning.AdvisoryRequest) (planning.Opinion, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return planning.Opinion{}, unavailable(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return planning.Opinion{}, unavailable(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := a.client.Do(httpReq)
	if err != nil {
		return planning.Opinion{}, unavailable(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return planning.Opinion{}, unavailable(err)
	}
	if resp.StatusCode != http.StatusOK {
		return planning.Opinion{}, unavailable(fmt.Errorf("advisor returned %s", resp.Status))
	}

	var reply opinionReply
	if err := json.Unmarshal(payload, &reply); err != nil {
		return planning.Opinion{}, unavailable(fmt.Errorf("invalid advisor reply: %w", err))
	}
	opinion := reply.opinion()

	a.logger.Debug("capacity advisory received",
		zap.String("order", req.OrderID),
		zap.String("line", req.LineID),
		zap.Bool("valid", opinion.IsValid),
		zap.Duration("latency", time.Since(start)))
	return opinion, nil
}

// opinionReply is the wire form of an Opinion. Model-backed advisors may
// suggest fractional quantities, which are floored.
type opinionReply struct {
	IsValid           bool    `json:"isValid"`
	SuggestedQuantity float64 `json:"suggestedQuantity"`
	Reason            string  `json:"reason"`
}

func (r opinionReply) opinion() planning.Opinion {
	suggested := math.Floor(r.SuggestedQuantity)
	if suggested < 0 || math.IsNaN(suggested) {
		suggested = 0
	}
	return planning.Opinion{
		IsValid:           r.IsValid,
		SuggestedQuantity: entities.Quantity(suggested),
		Reason:            r.Reason,
	}
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", entities.ErrAdvisoryUnavailable, err)
}
