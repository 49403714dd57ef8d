package planning

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/vsinha/lineplan/pkg/application/dto"
	"github.com/vsinha/lineplan/pkg/domain/entities"
	"github.com/vsinha/lineplan/pkg/domain/services"
)

// ErrNoFeasibleSlot is returned by a SlotSearcher that found nowhere to put a request
var ErrNoFeasibleSlot = errors.New("no feasible slot")

// PlanRequest asks the planner to place Quantity units of an order
type PlanRequest struct {
	OrderID  string            `json:"order_id"`
	Quantity entities.Quantity `json:"quantity"`
}

// Window is the inclusive range of days the planner may use
type Window struct {
	From entities.Day `json:"from"`
	To   entities.Day `json:"to"`
}

// MaxWindowDays bounds the length of any window, two years inclusive
const MaxWindowDays = 731

// Validate rejects missing, inverted and overlong windows
func (w Window) Validate() error {
	if w.From.IsZero() || w.To.IsZero() {
		return entities.InvalidRangef("planning window needs both from and to dates")
	}
	if w.To.Before(w.From) {
		return entities.InvalidRangef("planning window ends %s before it starts %s", w.To, w.From)
	}
	if n := w.From.DaysUntil(w.To) + 1; n > MaxWindowDays {
		return entities.InvalidRangef("planning window spans %d days, at most %d allowed", n, MaxWindowDays)
	}
	return nil
}

// ParseWindow builds a window from optional YYYY-MM-DD bounds. With neither it
// is the current month; with from alone it runs to the end of from's month.
func ParseWindow(from, to string) (Window, error) {
	start, end := entities.MonthWindow(entities.Today())
	if from != "" {
		d, err := entities.ParseDay(from)
		if err != nil {
			return Window{}, entities.InvalidRangef("from: %v", err)
		}
		start = d
		if to == "" {
			_, end = entities.MonthWindow(d)
		}
	}
	if to != "" {
		d, err := entities.ParseDay(to)
		if err != nil {
			return Window{}, entities.InvalidRangef("to: %v", err)
		}
		end = d
	}
	window := Window{From: start, To: end}
	return window, window.Validate()
}

// Days lists every day of the window
func (w Window) Days() []entities.Day {
	return entities.DaysInRange(w.From, w.To)
}

// Slot is a contiguous range on one line that can take a request
type Slot struct {
	UnitID       string
	LineID       string
	LineName     string
	Start        entities.Day
	End          entities.Day
	RequiredDays int
	DailyRate    float64
}

// SlotSearcher finds where quantity units can go on board within window
type SlotSearcher interface {
	FindSlot(board *entities.Board, quantity entities.Quantity, window Window) (Slot, error)
}

// FirstFitSearcher tries lines from least to most utilized over the window and
// takes the earliest start on the first line where the whole range fits.
// A line is given ceil(quantity / capacity) days so it would run at full rate.
type FirstFitSearcher struct{}

// FindSlot implements SlotSearcher
func (FirstFitSearcher) FindSlot(board *entities.Board, quantity entities.Quantity, window Window) (Slot, error) {
	days := window.Days()
	for _, ranked := range RankLines(board, days) {
		line := ranked.Line
		if line.DailyCapacity <= 0 {
			continue
		}
		required := requiredDays(quantity, line.DailyCapacity)
		if required == 0 || required > len(days) {
			continue
		}
		for offset := 0; offset+required <= len(days); offset++ {
			start := days[offset]
			end := start.AddDays(required - 1)
			if err := services.ValidateAssignment(line, quantity, start, end, ""); err != nil {
				continue
			}
			return Slot{
				UnitID:       ranked.UnitID,
				LineID:       line.ID,
				LineName:     line.Name,
				Start:        start,
				End:          end,
				RequiredDays: required,
				DailyRate:    entities.DailyRate(quantity, start, end),
			}, nil
		}
	}
	return Slot{}, fmt.Errorf("%w: no line can take %d units between %s and %s",
		ErrNoFeasibleSlot, quantity, window.From, window.To)
}

func requiredDays(quantity entities.Quantity, capacity entities.Capacity) int {
	if capacity <= 0 || quantity <= 0 {
		return 0
	}
	return int((int64(quantity) + int64(capacity) - 1) / int64(capacity))
}

// RankedLine is a line with its utilization over a window
type RankedLine struct {
	UnitID      string
	Line        entities.ProductionLine
	Utilization float64
}

// RankLines orders every line by ascending utilization over days. Ties keep
// board order and lines without capacity go last.
func RankLines(board *entities.Board, days []entities.Day) []RankedLine {
	var ranked []RankedLine
	for _, u := range board.Units {
		for _, l := range u.Lines {
			util := services.UtilizationOverWindow(l, days)
			if l.DailyCapacity <= 0 {
				util = math.Inf(1)
			}
			ranked = append(ranked, RankedLine{UnitID: u.ID, Line: l, Utilization: util})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Utilization < ranked[j].Utilization
	})
	return ranked
}

// AutoPlanOptions tunes an auto-plan run
type AutoPlanOptions struct {
	// AllOrNothing discards every placement when any request fails
	AllOrNothing bool
}

// AutoPlanner places requests one after another, each seeing the placements
// made before it.
type AutoPlanner struct {
	searcher SlotSearcher
	mutator  *Mutator
}

// NewAutoPlanner creates an AutoPlanner; a nil searcher means FirstFitSearcher
func NewAutoPlanner(searcher SlotSearcher, mutator *Mutator) *AutoPlanner {
	if searcher == nil {
		searcher = FirstFitSearcher{}
	}
	if mutator == nil {
		mutator = NewMutator(nil)
	}
	return &AutoPlanner{searcher: searcher, mutator: mutator}
}

// Plan runs requests against board in order and returns the resulting board.
// Every request ends up either placed or failed in the result. When
// opts.AllOrNothing is set and anything failed, the input board is returned
// and the would-be placements are reported as failed.
func (p *AutoPlanner) Plan(
	board *entities.Board,
	requests []PlanRequest,
	window Window,
	opts AutoPlanOptions,
) (*entities.Board, *dto.AutoPlanResult, error) {
	if err := window.Validate(); err != nil {
		return board, nil, err
	}

	result := &dto.AutoPlanResult{
		From:   window.From,
		To:     window.To,
		Placed: make([]dto.Placement, 0, len(requests)),
		Failed: make([]dto.PlanFailure, 0),
	}
	working := board

	for _, req := range requests {
		failure := dto.PlanFailure{OrderID: req.OrderID, Quantity: req.Quantity}
		order, ok := working.FindOrder(req.OrderID)
		if !ok {
			failure.Reason = entities.NewNotFound("order", req.OrderID).Error()
			result.Failed = append(result.Failed, failure)
			continue
		}
		failure.OrderNumber = order.OrderNumber

		if req.Quantity <= 0 {
			failure.Reason = fmt.Sprintf("quantity must be positive, got %d", req.Quantity)
			result.Failed = append(result.Failed, failure)
			continue
		}
		if req.Quantity > order.RemainingQty {
			failure.Reason = fmt.Sprintf("%v: order %s has %d remaining, requested %d",
				entities.ErrInsufficientRemaining, order.OrderNumber, order.RemainingQty, req.Quantity)
			result.Failed = append(result.Failed, failure)
			continue
		}

		slot, err := p.searcher.FindSlot(working, req.Quantity, window)
		if err != nil {
			failure.Reason = err.Error()
			result.Failed = append(result.Failed, failure)
			continue
		}

		next, a, err := p.mutator.CommitAssignment(working, order.ID, slot.LineID, req.Quantity, slot.Start, slot.End)
		if err != nil {
			failure.Reason = err.Error()
			result.Failed = append(result.Failed, failure)
			continue
		}
		working = next
		result.Placed = append(result.Placed, dto.Placement{
			OrderID:      order.ID,
			OrderNumber:  order.OrderNumber,
			UnitID:       slot.UnitID,
			LineID:       slot.LineID,
			LineName:     slot.LineName,
			AssignmentID: a.ID,
			Quantity:     a.Quantity,
			StartDate:    a.StartDate,
			EndDate:      a.EndDate,
			RequiredDays: slot.RequiredDays,
			DailyRate:    slot.DailyRate,
		})
	}

	if opts.AllOrNothing && len(result.Failed) > 0 {
		failed := len(result.Failed)
		for _, placed := range result.Placed {
			result.Failed = append(result.Failed, dto.PlanFailure{
				OrderID:     placed.OrderID,
				OrderNumber: placed.OrderNumber,
				Quantity:    placed.Quantity,
				Reason:      fmt.Sprintf("rolled back: %d other request(s) in the batch failed", failed),
			})
		}
		result.Placed = result.Placed[:0]
		return board, result, nil
	}

	result.Committed = len(result.Placed) > 0
	return working, result, nil
}
