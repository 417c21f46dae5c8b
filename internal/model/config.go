package model

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds all runtime settings of a conversion
type Config struct {
	Input    InputConfig    `yaml:"input" mapstructure:"input"`
	Router   RouterConfig   `yaml:"router" mapstructure:"router"`
	Logging  LoggingConfig  `yaml:"logging" mapstructure:"logging"`
	Progress ProgressConfig `yaml:"progress" mapstructure:"progress"`
}

// InputConfig controls the read-ahead source
type InputConfig struct {
	BufferSize int `yaml:"buffer_size" mapstructure:"buffer_size" validate:"gt=0"` // bytes per read-ahead buffer
	QueueDepth int `yaml:"queue_depth" mapstructure:"queue_depth" validate:"gt=0"` // buffers queued ahead of the parser
}

// RouterConfig controls variant shape classification
type RouterConfig struct {
	// Lower-case measure types routed to the structural variant files.
	StructuralTypes []string `yaml:"structural_types" mapstructure:"structural_types" validate:"dive,required"`
}

// LoggingConfig controls the logger
type LoggingConfig struct {
	Level              string        `yaml:"level" mapstructure:"level" validate:"omitempty,oneof=debug info warn error"` // empty: taken from -v/-q
	Encoding           string        `yaml:"encoding" mapstructure:"encoding" validate:"oneof=console json"`
	RepeatWarningAfter time.Duration `yaml:"repeat_warning_after" mapstructure:"repeat_warning_after" validate:"gte=0"`
}

// ProgressConfig controls progress reporting
type ProgressConfig struct {
	Interval time.Duration `yaml:"interval" mapstructure:"interval" validate:"gt=0"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			BufferSize: 256 * 1024,
			QueueDepth: 5,
		},
		Router: RouterConfig{
			StructuralTypes: []string{
				"copy number gain",
				"copy number loss",
				"inversion",
				"translocation",
				"tandem duplication",
				"complex",
				"fusion",
			},
		},
		Logging: LoggingConfig{
			Encoding:           "console",
			RepeatWarningAfter: 10 * time.Minute,
		},
		Progress: ProgressConfig{
			Interval: 30 * time.Second,
		},
	}
}

var configValidator = validator.New()

// Validate checks the config for out-of-range values
func (c *Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
