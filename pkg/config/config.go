package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned for any configuration that cannot produce a
// valid environment or experiment.
var ErrInvalidConfig = errors.New("invalid configuration")

type ExperimentConfig struct {
	Name        string          `yaml:"name" validate:"required"`
	Episodes    int             `yaml:"episodes" validate:"gte=1"`
	Steps       int             `yaml:"steps" validate:"gte=1"`
	Seed        *int64          `yaml:"seed"`
	Agent       AgentConfig     `yaml:"agent"`
	Environment RiverSwimConfig `yaml:"environment"`
	Logging     LogConfig       `yaml:"logging"`
	Output      OutputConfig    `yaml:"output"`
}

// RiverSwimConfig holds every construction parameter of a RiverSwim
// environment. Each instance gets its own copy; there are no package-level
// defaults shared between environments.
type RiverSwimConfig struct {
	NStates            int     `yaml:"n_states" validate:"gte=2"`
	MaxReward          float64 `yaml:"max_reward"`
	IntermediateReward float64 `yaml:"intermediate_reward"`
	CommonReward       float64 `yaml:"common_reward"`
	PRight             float64 `yaml:"p_right" validate:"gte=0,lte=1"`
	PLeft              float64 `yaml:"p_left" validate:"gte=0,lte=1"`
	RenderMode         string  `yaml:"render_mode" validate:"omitempty,oneof=ansi"`
	RenderColor        bool    `yaml:"render_color"`
}

type AgentConfig struct {
	Type           string `yaml:"type" validate:"oneof=random human llm"`
	Provider       string `yaml:"provider" validate:"omitempty,oneof=openai gemini"`
	Model          string `yaml:"model"`
	MemoryCapacity int    `yaml:"memory_capacity" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

type OutputConfig struct {
	StatsCSV    string `yaml:"stats_csv"`
	ChartHTML   string `yaml:"chart_html"`
	MetricsAddr string `yaml:"metrics_addr"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterStructValidation(riverSwimStructLevel, RiverSwimConfig{})
}

// riverSwimStructLevel rejects probability pairs that leave no mass for
// staying in place.
func riverSwimStructLevel(sl validator.StructLevel) {
	c := sl.Current().Interface().(RiverSwimConfig)
	if c.PLeft+c.PRight > 1 {
		sl.ReportError(c.PLeft, "PLeft", "p_left", "psum", "")
	}
}

// DefaultRiverSwimConfig returns the classic six-state RiverSwim setup.
func DefaultRiverSwimConfig() RiverSwimConfig {
	return RiverSwimConfig{
		NStates:            6,
		MaxReward:          10_000,
		IntermediateReward: 5,
		CommonReward:       0,
		PRight:             0.3,
		PLeft:              0.1,
	}
}

func DefaultExperimentConfig() ExperimentConfig {
	return ExperimentConfig{
		Name:     "riverswim",
		Episodes: 1,
		Steps:    100,
		Agent: AgentConfig{
			Type:           "random",
			Provider:       "openai",
			Model:          "gpt-4o-mini",
			MemoryCapacity: 20,
		},
		Environment: DefaultRiverSwimConfig(),
		Logging: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks the environment parameters.
func (c RiverSwimConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Validate checks the whole experiment, including the nested environment.
func (c ExperimentConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ParseConfig decodes YAML on top of DefaultExperimentConfig, so any field
// left out of the document keeps its default.
func ParseConfig(data []byte) (*ExperimentConfig, error) {
	cfg := DefaultExperimentConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: decode yaml: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func LoadConfig(path string) (*ExperimentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return ParseConfig(data)
}
