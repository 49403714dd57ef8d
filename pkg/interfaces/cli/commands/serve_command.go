package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vsinha/lineplan/pkg/infrastructure/config"
	"github.com/vsinha/lineplan/pkg/infrastructure/logging"
	"github.com/vsinha/lineplan/pkg/interfaces/api"
)

// ServeConfig holds configuration for the HTTP server command
type ServeConfig struct {
	ConfigFile string
	Port       int
	Help       bool
	Out        io.Writer
}

// ServeCommand serves the planning board over HTTP
type ServeCommand struct {
	config ServeConfig
	out    io.Writer
}

// NewServeCommand creates a new serve command
func NewServeCommand(config ServeConfig) *ServeCommand {
	out := config.Out
	if out == nil {
		out = os.Stdout
	}
	return &ServeCommand{config: config, out: out}
}

// Execute loads configuration, starts the server and blocks until ctx is
// cancelled or SIGINT/SIGTERM arrives, then shuts down gracefully.
func (c *ServeCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.printHelp()
		return nil
	}

	cfg, err := config.Load(c.config.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if c.config.Port != 0 {
		cfg.Server.Port = c.config.Port
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer logger.Sync()

	gin.SetMode(cfg.Server.Mode)

	svc, err := NewPlanningService(cfg, logger)
	if err != nil {
		return err
	}
	router := api.NewRouter(svc, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", zap.Int("port", cfg.Server.Port), zap.String("mode", cfg.Server.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-quit:
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	logger.Info("Server exited")
	return nil
}

func (c *ServeCommand) printHelp() {
	fmt.Fprintln(c.out, `Planning Board Server

USAGE:
    lineplan serve [OPTIONS]

OPTIONS:
    -config <file>      Path to config file (default: configs/config.yaml or ./config.yaml)
    -port <n>           Override server.port
    -help               Show this help message

ENVIRONMENT:
    SERVER_PORT, SERVER_MODE, LOG_LEVEL, LOG_FORMAT,
    ADVISOR_ENABLED, ADVISOR_ENDPOINT, ADVISOR_TIMEOUT, ADVISOR_ACCEPT_SUGGESTED,
    PLANNING_SEED_DEMO, PLANNING_REFERENCE_DATE, PLANNING_SCENARIO_DIR,
    PLANNING_AUTO_PLAN_ALL_OR_NOTHING
    A .env file in the working directory is loaded first.

ROUTES:
    GET    /health/live
    GET    /api/v1/orders
    POST   /api/v1/orders/tentative
    POST   /api/v1/orders/import
    POST   /api/v1/orders/:id/suggestions
    DELETE /api/v1/orders/:id/assignments
    GET    /api/v1/orders/:id/events
    POST   /api/v1/assignments
    POST   /api/v1/assignments/unassign
    POST   /api/v1/assignments/:id/move
    GET    /api/v1/units
    GET    /api/v1/lines/:id/utilization
    GET    /api/v1/utilization
    POST   /api/v1/autoplan
    POST   /api/v1/reset
    GET    /api/v1/events
    GET    /api/v1/export`)
}
