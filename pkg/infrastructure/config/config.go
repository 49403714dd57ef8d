package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/vsinha/lineplan/pkg/domain/entities"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Advisor  AdvisorConfig  `mapstructure:"advisor"`
	Planning PlanningConfig `mapstructure:"planning"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AdvisorConfig points at an optional remote capacity advisor.
// With no endpoint the local range advisor is used when Enabled is set.
type AdvisorConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Endpoint        string        `mapstructure:"endpoint"`
	Timeout         time.Duration `mapstructure:"timeout"`
	AcceptSuggested bool          `mapstructure:"accept_suggested"`
}

type PlanningConfig struct {
	SeedDemo             bool   `mapstructure:"seed_demo"`
	ReferenceDate        string `mapstructure:"reference_date"`
	ScenarioDir          string `mapstructure:"scenario_dir"`
	AutoPlanAllOrNothing bool   `mapstructure:"auto_plan_all_or_nothing"`
}

// Reference is the day the demo seed is dated around; today when unset
func (c PlanningConfig) Reference() (entities.Day, error) {
	if c.ReferenceDate == "" {
		return entities.Today(), nil
	}
	d, err := entities.ParseDay(c.ReferenceDate)
	if err != nil {
		return entities.Day{}, fmt.Errorf("invalid planning.reference_date: %w", err)
	}
	return d, nil
}

// Load reads configuration from path (or config.yaml in ./configs or .),
// a .env file when present, and the environment, in increasing precedence.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVariables(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid server.mode %q (expected debug, release or test)", c.Server.Mode)
	}
	if c.Advisor.Timeout < 0 {
		return fmt.Errorf("advisor.timeout cannot be negative")
	}
	if _, err := c.Planning.Reference(); err != nil {
		return err
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("advisor.enabled", false)
	v.SetDefault("advisor.timeout", 5*time.Second)
	v.SetDefault("advisor.accept_suggested", false)

	v.SetDefault("planning.seed_demo", true)
	v.SetDefault("planning.auto_plan_all_or_nothing", false)
}

func bindEnvVariables(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.mode", "SERVER_MODE")

	// Log
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.format", "LOG_FORMAT")

	// Advisor
	v.BindEnv("advisor.enabled", "ADVISOR_ENABLED")
	v.BindEnv("advisor.endpoint", "ADVISOR_ENDPOINT")
	v.BindEnv("advisor.timeout", "ADVISOR_TIMEOUT")
	v.BindEnv("advisor.accept_suggested", "ADVISOR_ACCEPT_SUGGESTED")

	// Planning
	v.BindEnv("planning.seed_demo", "PLANNING_SEED_DEMO")
	v.BindEnv("planning.reference_date", "PLANNING_REFERENCE_DATE")
	v.BindEnv("planning.scenario_dir", "PLANNING_SCENARIO_DIR")
	v.BindEnv("planning.auto_plan_all_or_nothing", "PLANNING_AUTO_PLAN_ALL_OR_NOTHING")
}
