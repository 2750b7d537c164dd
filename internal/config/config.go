package config

import (
	"fmt"
	"time"

	"github.com/couchcryptid/discharge-warning/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all tool settings, populated from environment variables.
// Command-line flags override individual fields after Load.
type Config struct {
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json text"`

	CurveTablePath string `envconfig:"CURVE_TABLE_PATH"`
	WarningLevels  string `envconfig:"WARNING_LEVELS" default:"1:50,2:20,3:10,4:5,5:2" validate:"required"`
	OutputFormat   string `envconfig:"OUTPUT_FORMAT" default:"csv" validate:"oneof=csv json"`

	// Publishing to Kafka is off unless brokers are set.
	KafkaBrokers        []string      `envconfig:"KAFKA_BROKERS" validate:"omitempty,dive,hostname_port"`
	KafkaTopic          string        `envconfig:"KAFKA_TOPIC" default:"station-warning-levels" validate:"required"`
	KafkaPublishTimeout time.Duration `envconfig:"KAFKA_PUBLISH_TIMEOUT" default:"10s" validate:"gt=0"`

	MetricsTextfile string `envconfig:"METRICS_TEXTFILE"`
}

// Load reads configuration from environment variables, applying defaults where unset.
// WarningLevels is kept as text so a -levels flag can replace it before parsing.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// ParseWarningLevels parses levels, or WarningLevels when levels is empty.
func (c *Config) ParseWarningLevels(levels string) (domain.LevelMapping, error) {
	source := "-levels"
	if levels == "" || levels == c.WarningLevels {
		levels, source = c.WarningLevels, "WARNING_LEVELS"
	}
	mapping, err := domain.ParseLevelMapping(levels)
	if err != nil {
		return domain.LevelMapping{}, fmt.Errorf("invalid %s: %w", source, err)
	}
	return mapping, nil
}

// KafkaEnabled reports whether results should also be published to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}
