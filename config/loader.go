package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/crunchmind/target-kinesis/errors"
)

// Loader handles configuration loading with environment overrides
type Loader struct {
	envPrefix  string
	validation bool
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		envPrefix:  "TARGET_KINESIS",
		validation: true,
	}
}

// EnableValidation enables or disables configuration validation
func (l *Loader) EnableValidation(enable bool) {
	l.validation = enable
}

// LoadFile loads configuration from a JSON file, applies environment
// overrides, and validates the result.
func (l *Loader) LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := safeReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "Loader", "LoadFile",
			fmt.Sprintf("failed to read config file %s", path))
	}

	if err := validateJSONDepth(data); err != nil {
		return nil, errors.WrapInvalid(err, "Loader", "LoadFile",
			"invalid JSON structure")
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.WrapInvalid(err, "Loader", "LoadFile",
			"failed to parse config")
	}

	l.applyEnvOverrides(cfg)

	if l.validation {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides
func (l *Loader) applyEnvOverrides(cfg *Config) {
	if val := os.Getenv(l.envPrefix + "_SINK_KIND"); val != "" {
		cfg.SinkKind = val
	}
	if val := os.Getenv(l.envPrefix + "_STREAM_NAME"); val != "" {
		cfg.StreamName = val
	}
	if val := os.Getenv(l.envPrefix + "_PARTITION_KEY_FIELD"); val != "" {
		cfg.PartitionKeyField = val
	}
	if val := os.Getenv(l.envPrefix + "_MAX_RECORD_COUNT"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.MaxRecordCount = n
		}
	}
	if val := os.Getenv(l.envPrefix + "_MAX_SIZE_ESTIMATE_BYTES"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.MaxSizeEstimateBytes = n
		}
	}
	if val := os.Getenv(l.envPrefix + "_ADD_METADATA_COLUMNS"); val != "" {
		cfg.AddMetadataColumns = parseBool(val)
	}
	if val := os.Getenv(l.envPrefix + "_VALIDATE_RECORDS"); val != "" {
		cfg.ValidateRecords = parseBool(val)
	}
	if val := os.Getenv(l.envPrefix + "_METRICS_PORT"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.MetricsPort = n
		}
	}
	if val := os.Getenv(l.envPrefix + "_AWS_REGION"); val != "" {
		cfg.AWSRegion = val
	}
}

func parseBool(val string) bool {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// ToJSON converts config to JSON string for debugging
func (c *Config) ToJSON() (string, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
