package commands

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/vsinha/lineplan/pkg/application/services/planning"
	"github.com/vsinha/lineplan/pkg/domain/entities"
	"github.com/vsinha/lineplan/pkg/infrastructure/advisory"
	"github.com/vsinha/lineplan/pkg/infrastructure/config"
	"github.com/vsinha/lineplan/pkg/infrastructure/events"
	"github.com/vsinha/lineplan/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/lineplan/pkg/infrastructure/repositories/memory"
)

// SeedFunc builds the initial board; Reset calls it again
type SeedFunc func() (*entities.Board, error)

// NewSeedFunc picks the board source: a scenario directory when set, the demo
// board when seeding is on, and an empty board otherwise.
func NewSeedFunc(cfg config.PlanningConfig) (SeedFunc, error) {
	if cfg.ScenarioDir != "" {
		dir := cfg.ScenarioDir
		return func() (*entities.Board, error) {
			scenario, err := csv.NewLoader().LoadScenario(dir)
			if err != nil {
				return nil, err
			}
			return scenario.Board, nil
		}, nil
	}
	if !cfg.SeedDemo {
		return func() (*entities.Board, error) { return entities.NewBoard(nil, nil) }, nil
	}
	reference, err := cfg.Reference()
	if err != nil {
		return nil, err
	}
	return func() (*entities.Board, error) { return memory.SeedBoard(reference) }, nil
}

// NewAdvisor returns the remote advisor when an endpoint is configured, the
// local range advisor when enabled without one, and no advice otherwise.
func NewAdvisor(cfg config.AdvisorConfig, logger *zap.Logger) planning.CapacityAdvisor {
	switch {
	case cfg.Endpoint != "":
		return advisory.NewHTTPAdvisor(cfg.Endpoint, cfg.Timeout, logger.Named("advisor"))
	case cfg.Enabled:
		return planning.RangeAdvisor{}
	default:
		return planning.NoopAdvisor{}
	}
}

// NewPlanningService wires a planning service over an in-memory board
// repository according to cfg.
func NewPlanningService(cfg *config.Config, logger *zap.Logger) (*planning.Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	seed, err := NewSeedFunc(cfg.Planning)
	if err != nil {
		return nil, err
	}
	board, err := seed()
	if err != nil {
		return nil, fmt.Errorf("failed to build initial board: %w", err)
	}

	deps := planning.Dependencies{
		Advisor: NewAdvisor(cfg.Advisor, logger),
		Events:  events.NewInMemoryEventStore(logger.Named("events")),
		Logger:  logger.Named("planning"),
		Seed:    seed,
	}
	return planning.NewServiceWithConfig(memory.NewBoardRepository(board), deps, planning.ServiceConfig{
		AcceptSuggested:      cfg.Advisor.AcceptSuggested,
		AdvisorTimeout:       cfg.Advisor.Timeout,
		AutoPlanAllOrNothing: cfg.Planning.AutoPlanAllOrNothing,
	}), nil
}
