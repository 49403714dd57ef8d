package planning

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vsinha/lineplan/pkg/application/dto"
	"github.com/vsinha/lineplan/pkg/domain/entities"
	"github.com/vsinha/lineplan/pkg/domain/repositories"
	"github.com/vsinha/lineplan/pkg/domain/services"
	"github.com/vsinha/lineplan/pkg/infrastructure/events"
)

// advisorConcurrency caps in-flight advisor calls for one assign request
const advisorConcurrency = 4

// ServiceConfig holds tunables for the planning service
type ServiceConfig struct {
	// AcceptSuggested lets a smaller advisor suggestion replace the requested quantity
	AcceptSuggested bool
	// AdvisorTimeout bounds each advisor call (0 = only the caller's context)
	AdvisorTimeout time.Duration
	// AutoPlanAllOrNothing is the default for auto-plan runs that do not choose
	AutoPlanAllOrNothing bool
}

// Dependencies are the collaborators of a Service. Nil fields get defaults.
type Dependencies struct {
	Advisor  CapacityAdvisor
	Events   events.EventStore
	Logger   *zap.Logger
	NewID    IDGenerator
	Searcher SlotSearcher
	// Seed rebuilds the initial board for Reset
	Seed func() (*entities.Board, error)
}

// Service is the single writer of the planning board. Every change is worked
// out on a private copy of the current snapshot and published with one Save;
// a rejected change leaves the stored board exactly as it was.
type Service struct {
	config  ServiceConfig
	repo    repositories.BoardRepository
	mutator *Mutator
	planner *AutoPlanner
	advisor CapacityAdvisor
	events  events.EventStore
	logger  *zap.Logger
	seed    func() (*entities.Board, error)

	mu sync.Mutex
}

// NewService creates a planning service with default configuration
func NewService(repo repositories.BoardRepository) *Service {
	return NewServiceWithConfig(repo, Dependencies{}, ServiceConfig{
		AdvisorTimeout: 5 * time.Second,
	})
}

// NewServiceWithConfig creates a planning service with custom collaborators and configuration
func NewServiceWithConfig(repo repositories.BoardRepository, deps Dependencies, config ServiceConfig) *Service {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Advisor == nil {
		deps.Advisor = NoopAdvisor{}
	}
	if deps.Events == nil {
		deps.Events = events.NewInMemoryEventStore(deps.Logger)
	}
	mutator := NewMutator(deps.NewID)
	return &Service{
		config:  config,
		repo:    repo,
		mutator: mutator,
		planner: NewAutoPlanner(deps.Searcher, mutator),
		advisor: deps.Advisor,
		events:  deps.Events,
		logger:  deps.Logger,
		seed:    deps.Seed,
	}
}

// AssignRequest splits an order across one or more lines over one date range
type AssignRequest struct {
	OrderID   string                  `json:"order_id"`
	Lines     []services.LineQuantity `json:"lines"`
	StartDate entities.Day            `json:"start_date"`
	EndDate   entities.Day            `json:"end_date"`
}

// Assign validates every line of the request and commits all of them, or none.
func (s *Service) Assign(ctx context.Context, req AssignRequest) (*dto.AssignResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	board, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	order, ok := board.FindOrder(req.OrderID)
	if !ok {
		return nil, s.reject("assign", entities.NewNotFound("order", req.OrderID))
	}
	if len(req.Lines) == 0 {
		return nil, s.reject("assign", entities.InvalidRangef("at least one line quantity is required"))
	}

	type plannedLine struct {
		line     entities.ProductionLine
		unitID   string
		quantity entities.Quantity
	}
	planned := make([]plannedLine, 0, len(req.Lines))
	seen := make(map[string]bool, len(req.Lines))
	for _, lq := range req.Lines {
		if seen[lq.LineID] {
			return nil, s.reject("assign", entities.InvalidRangef("line %s is listed more than once", lq.LineID))
		}
		seen[lq.LineID] = true

		line, ref, ok := board.FindLine(lq.LineID)
		if !ok {
			return nil, s.reject("assign", entities.NewNotFound("line", lq.LineID))
		}
		if err := entities.ValidateRange(lq.Quantity, req.StartDate, req.EndDate); err != nil {
			return nil, s.reject("assign", err)
		}
		planned = append(planned, plannedLine{line: line, unitID: ref.UnitID, quantity: lq.Quantity})
	}

	// one advisor call per line, in parallel
	result := &dto.AssignResult{Advisories: make([]dto.AdvisoryNote, len(planned))}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(advisorConcurrency)
	for i := range planned {
		i := i
		g.Go(func() error {
			p := &planned[i]
			result.Advisories[i], p.quantity = s.consult(gctx, order, p.unitID, p.line, p.quantity, req.StartDate, req.EndDate)
			return nil
		})
	}
	_ = g.Wait()

	var total entities.Quantity
	for _, p := range planned {
		if err := services.ValidateAssignment(p.line, p.quantity, req.StartDate, req.EndDate, ""); err != nil {
			return nil, s.reject("assign", err)
		}
		total += p.quantity
	}

	if total > order.RemainingQty {
		return nil, s.reject("assign", fmt.Errorf("%w: order %s has %d remaining, requested %d",
			entities.ErrInsufficientRemaining, order.OrderNumber, order.RemainingQty, total))
	}

	next := board
	for _, p := range planned {
		var a entities.Assignment
		next, a, err = s.mutator.CommitAssignment(next, order.ID, p.line.ID, p.quantity, req.StartDate, req.EndDate)
		if err != nil {
			return nil, s.reject("assign", err)
		}
		result.Assignments = append(result.Assignments, dto.AssignedLine{
			UnitID:     p.unitID,
			LineID:     p.line.ID,
			LineName:   p.line.Name,
			Assignment: a,
		})
	}

	if err := s.save(next); err != nil {
		return nil, err
	}
	result.Order, _ = next.FindOrder(order.ID)
	for _, al := range result.Assignments {
		s.record(events.NewAssignmentCommittedEvent(al.UnitID, al.LineID, al.Assignment))
	}
	s.logger.Info("assignment committed",
		zap.String("order", order.OrderNumber),
		zap.Int("lines", len(result.Assignments)),
		zap.Int64("quantity", int64(total)),
		zap.Stringer("start", req.StartDate),
		zap.Stringer("end", req.EndDate))
	return result, nil
}

// consult asks the advisor about one line and returns the quantity to validate.
// Advisor failures are logged and never block the request.
func (s *Service) consult(
	ctx context.Context,
	order entities.Order,
	unitID string,
	line entities.ProductionLine,
	quantity entities.Quantity,
	start, end entities.Day,
) (dto.AdvisoryNote, entities.Quantity) {
	note := dto.AdvisoryNote{LineID: line.ID}
	if s.config.AdvisorTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.AdvisorTimeout)
		defer cancel()
	}

	opinion, err := s.advisor.Evaluate(ctx, NewAdvisoryRequest(order, unitID, line, quantity, start, end))
	if err != nil {
		if !errors.Is(err, entities.ErrAdvisoryUnavailable) {
			err = fmt.Errorf("%w: %v", entities.ErrAdvisoryUnavailable, err)
		}
		s.logger.Warn("capacity advisory unavailable", zap.String("line", line.ID), zap.Error(err))
		note.Unavailable = true
		note.Reason = err.Error()
		return note, quantity
	}

	note.Valid = opinion.IsValid
	note.SuggestedQuantity = opinion.SuggestedQuantity
	note.Reason = opinion.Reason
	if s.config.AcceptSuggested && !opinion.IsValid &&
		opinion.SuggestedQuantity > 0 && opinion.SuggestedQuantity < quantity {
		note.Applied = true
		s.logger.Info("advisor suggestion applied",
			zap.String("line", line.ID),
			zap.Int64("requested", int64(quantity)),
			zap.Int64("suggested", int64(opinion.SuggestedQuantity)))
		return note, opinion.SuggestedQuantity
	}
	return note, quantity
}

// Unassign removes one assignment and returns its units to the order
func (s *Service) Unassign(ctx context.Context, orderID, lineID, assignmentID string) (*dto.UnassignResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	board, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	next, removed, err := s.mutator.Unassign(board, orderID, lineID, assignmentID)
	if err != nil {
		return nil, s.reject("unassign", err)
	}
	if err := s.save(next); err != nil {
		return nil, err
	}

	order, _ := next.FindOrder(orderID)
	s.record(events.NewAssignmentRemovedEvent(lineID, removed, "unassigned"))
	s.logger.Info("assignment removed",
		zap.String("order", order.OrderNumber),
		zap.String("line", lineID),
		zap.String("assignment", removed.ID),
		zap.Int64("quantity", int64(removed.Quantity)))
	return &dto.UnassignResult{
		Order:    order,
		Removed:  []entities.Assignment{removed},
		Released: removed.Quantity,
	}, nil
}

// UnassignAll removes every assignment of an order from every line
func (s *Service) UnassignAll(ctx context.Context, orderID string) (*dto.UnassignResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	board, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	lineOf := make(map[string]string)
	for lineID, assignments := range board.AssignmentsForOrder(orderID) {
		for _, a := range assignments {
			lineOf[a.ID] = lineID
		}
	}

	next, removed, err := s.mutator.UnassignAll(board, orderID)
	if err != nil {
		return nil, s.reject("unassign all", err)
	}
	if len(removed) > 0 {
		if err := s.save(next); err != nil {
			return nil, err
		}
	}

	result := &dto.UnassignResult{Removed: removed}
	result.Order, _ = next.FindOrder(orderID)
	for _, a := range removed {
		result.Released += a.Quantity
		s.record(events.NewAssignmentRemovedEvent(lineOf[a.ID], a, "unassigned all"))
	}
	s.logger.Info("order unassigned",
		zap.String("order", result.Order.OrderNumber),
		zap.Int("assignments", len(removed)),
		zap.Int64("released", int64(result.Released)))
	return result, nil
}

// Move relocates all or part of an assignment. The moved piece must fit the
// target line day by day, with the source change already applied when source
// and target are the same line.
func (s *Service) Move(ctx context.Context, req MoveRequest) (*dto.MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	board, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	next, result, err := s.mutator.MoveAssignment(board, req)
	if err != nil {
		return nil, s.reject("move", err)
	}
	if result.NoOp {
		return result, nil
	}

	source, _, _ := board.FindLine(req.SourceLineID)
	original, _ := source.FindAssignment(req.AssignmentID)
	target, _, _ := board.FindLine(req.TargetLineID)
	if req.SourceLineID == req.TargetLineID {
		target, _ = detach(target, original, req.Quantity)
	}
	end := req.NewStart.AddDays(original.DurationDays() - 1)
	if err := services.ValidateAssignment(target, req.Quantity, req.NewStart, end, ""); err != nil {
		return nil, s.reject("move", err)
	}

	if err := s.save(next); err != nil {
		return nil, err
	}
	s.record(events.NewAssignmentMovedEvent(events.AssignmentMoved{
		SourceLineID: result.SourceLineID,
		TargetLineID: result.TargetLineID,
		Remaining:    result.Remaining,
		Moved:        result.Moved,
		Merged:       result.Merged,
	}))
	s.logger.Info("assignment moved",
		zap.String("assignment", req.AssignmentID),
		zap.String("from_line", req.SourceLineID),
		zap.String("to_line", req.TargetLineID),
		zap.Int64("quantity", int64(req.Quantity)),
		zap.Bool("merged", result.Merged))
	return result, nil
}

// AutoPlanRequest is a batch of requests placed within [From, To]
type AutoPlanRequest struct {
	Requests []PlanRequest `json:"requests"`
	From     entities.Day  `json:"from"`
	To       entities.Day  `json:"to"`
	// AllOrNothing overrides ServiceConfig.AutoPlanAllOrNothing when set
	AllOrNothing *bool `json:"all_or_nothing,omitempty"`
}

// AutoPlan places each request on the least utilized line that can take it
func (s *Service) AutoPlan(ctx context.Context, req AutoPlanRequest) (*dto.AutoPlanResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	board, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	opts := AutoPlanOptions{AllOrNothing: s.config.AutoPlanAllOrNothing}
	if req.AllOrNothing != nil {
		opts.AllOrNothing = *req.AllOrNothing
	}

	next, result, err := s.planner.Plan(board, req.Requests, Window{From: req.From, To: req.To}, opts)
	if err != nil {
		return nil, s.reject("auto-plan", err)
	}
	if result.Committed {
		if err := s.save(next); err != nil {
			return nil, err
		}
		for _, p := range result.Placed {
			a := entities.Assignment{
				ID:          p.AssignmentID,
				OrderID:     p.OrderID,
				OrderNumber: p.OrderNumber,
				Quantity:    p.Quantity,
				StartDate:   p.StartDate,
				EndDate:     p.EndDate,
			}
			if order, ok := next.FindOrder(p.OrderID); ok {
				a.Tentative = order.Tentative
			}
			s.record(events.NewAssignmentCommittedEvent(p.UnitID, p.LineID, a))
		}
	}
	for _, f := range result.Failed {
		s.logger.Warn("auto-plan request not placed",
			zap.String("order", f.OrderID),
			zap.Int64("quantity", int64(f.Quantity)),
			zap.String("reason", f.Reason))
	}

	s.record(events.NewAutoPlanCompletedEvent(events.AutoPlanCompleted{
		From:      result.From,
		To:        result.To,
		Placed:    len(result.Placed),
		Failed:    len(result.Failed),
		Committed: result.Committed,
	}))
	s.logger.Info("auto-plan completed",
		zap.Int("requests", len(req.Requests)),
		zap.Int("placed", len(result.Placed)),
		zap.Int("failed", len(result.Failed)),
		zap.Bool("committed", result.Committed))
	return result, nil
}

// TentativeOrderRequest describes an order entered by planning ahead of confirmation
type TentativeOrderRequest struct {
	OrderNumber string            `json:"order_number"`
	Customer    string            `json:"customer"`
	Style       string            `json:"style"`
	OrderDate   entities.Day      `json:"order_date"`
	ETDDate     entities.Day      `json:"etd_date"`
	Quantity    entities.Quantity `json:"quantity"`
}

// AddTentativeOrder registers a new unassigned tentative order at the top of the list
func (s *Service) AddTentativeOrder(ctx context.Context, req TentativeOrderRequest) (*entities.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	board, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if req.Customer == "" {
		req.Customer = "Planning Dept"
	}
	if req.OrderDate.IsZero() {
		req.OrderDate = entities.Today()
	}

	order, err := entities.NewOrder("ord-"+uuid.NewString(), req.OrderNumber, req.Customer, req.Style,
		req.OrderDate, req.ETDDate, req.Quantity, true)
	if err != nil {
		return nil, s.reject("add tentative order", fmt.Errorf("%w: %v", entities.ErrInvalidRange, err))
	}
	next, err := board.WithNewOrder(*order)
	if err != nil {
		return nil, s.reject("add tentative order", err)
	}
	if err := s.save(next); err != nil {
		return nil, err
	}

	s.record(events.NewOrderCreatedEvent(*order))
	s.logger.Info("tentative order created",
		zap.String("order", order.OrderNumber),
		zap.Int64("quantity", int64(order.TotalQty)))
	return order, nil
}

// Reset replaces the board with a fresh seed
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if s.seed == nil {
		return fmt.Errorf("no seed board configured")
	}
	board, err := s.seed()
	if err != nil {
		return fmt.Errorf("failed to build seed board: %w", err)
	}
	if err := s.save(board); err != nil {
		return err
	}
	s.record(events.NewBoardResetEvent(len(board.Orders), len(board.Lines())))
	s.logger.Info("board reset", zap.Int("orders", len(board.Orders)))
	return nil
}

// Board returns the current snapshot
func (s *Service) Board() (*entities.Board, error) {
	board, err := s.repo.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load board: %w", err)
	}
	return board, nil
}

// Orders returns the orders that pass filter, in board order
func (s *Service) Orders(filter entities.OrderFilter) ([]entities.Order, error) {
	board, err := s.Board()
	if err != nil {
		return nil, err
	}
	return filter.Apply(board.Orders), nil
}

// AvailableOrders returns filtered orders that still have units to place, earliest ETD first
func (s *Service) AvailableOrders(filter entities.OrderFilter) ([]entities.Order, error) {
	orders, err := s.Orders(filter)
	if err != nil {
		return nil, err
	}
	return entities.AvailableByETD(orders), nil
}

// LineUtilization reports one line's load over [from, to]
func (s *Service) LineUtilization(lineID string, from, to entities.Day) (*dto.LineUtilization, error) {
	window := Window{From: from, To: to}
	if err := window.Validate(); err != nil {
		return nil, err
	}
	board, err := s.Board()
	if err != nil {
		return nil, err
	}
	line, ref, ok := board.FindLine(lineID)
	if !ok {
		return nil, entities.NewNotFound("line", lineID)
	}
	report := lineReport(ref, line, window.Days())
	return &report, nil
}

// Utilization reports every line and unit over [from, to]
func (s *Service) Utilization(from, to entities.Day) (*dto.UtilizationReport, error) {
	window := Window{From: from, To: to}
	if err := window.Validate(); err != nil {
		return nil, err
	}
	board, err := s.Board()
	if err != nil {
		return nil, err
	}
	return BuildUtilizationReport(board, window), nil
}

// BuildUtilizationReport computes the load picture of board over window
func BuildUtilizationReport(board *entities.Board, window Window) *dto.UtilizationReport {
	days := window.Days()
	report := &dto.UtilizationReport{From: window.From, To: window.To}
	for _, u := range board.Units {
		ref := entities.LineRef{UnitID: u.ID, UnitName: u.Name}
		for _, l := range u.Lines {
			report.Lines = append(report.Lines, lineReport(ref, l, days))
		}
		report.Units = append(report.Units, services.UnitUtilization(u, days))
	}
	return report
}

func lineReport(ref entities.LineRef, line entities.ProductionLine, days []entities.Day) dto.LineUtilization {
	return dto.LineUtilization{
		UnitID:        ref.UnitID,
		UnitName:      ref.UnitName,
		LineID:        line.ID,
		LineName:      line.Name,
		DailyCapacity: line.DailyCapacity,
		Utilization:   services.Ratio(services.UtilizationOverWindow(line, days)),
		Days:          services.DailyUsage(line, days),
		Tracks:        services.AssignmentTracks(line),
	}
}

// SuggestQuantities proposes how an order's remaining units could be split over
// the lines of a unit for [start, end]
func (s *Service) SuggestQuantities(orderID, unitID string, start, end entities.Day) ([]services.LineQuantity, error) {
	board, err := s.Board()
	if err != nil {
		return nil, err
	}
	order, ok := board.FindOrder(orderID)
	if !ok {
		return nil, entities.NewNotFound("order", orderID)
	}
	unit, ok := board.FindUnit(unitID)
	if !ok {
		return nil, entities.NewNotFound("unit", unitID)
	}
	if err := (Window{From: start, To: end}).Validate(); err != nil {
		return nil, err
	}
	return services.SuggestLineQuantities(unit.Lines, entities.DurationDays(start, end), order.RemainingQty), nil
}

// Events returns the audit trail from position on
func (s *Service) Events(fromPosition int) ([]events.Event, error) {
	return s.events.ReadAll(fromPosition)
}

// OrderHistory returns every recorded change to one order, oldest first
func (s *Service) OrderHistory(orderID string) ([]events.Event, error) {
	board, err := s.Board()
	if err != nil {
		return nil, err
	}
	if _, ok := board.FindOrder(orderID); !ok {
		return nil, entities.NewNotFound("order", orderID)
	}
	return s.events.ReadStream(orderID, 1)
}

func (s *Service) load(ctx context.Context) (*entities.Board, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Board()
}

func (s *Service) save(board *entities.Board) error {
	if err := s.repo.Save(board); err != nil {
		return fmt.Errorf("failed to save board: %w", err)
	}
	return nil
}

func (s *Service) reject(operation string, err error) error {
	s.logger.Warn("change rejected", zap.String("operation", operation), zap.Error(err))
	return err
}

func (s *Service) record(event events.Event) {
	if _, err := s.events.Append(event); err != nil {
		s.logger.Warn("failed to record event", zap.String("event_type", event.Type), zap.Error(err))
	}
}
