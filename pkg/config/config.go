// Package config holds client configuration for the interpreter: defensive
// evaluation limits, store location, and logging level. Values load from the
// environment with safe defaults; named profiles load from YAML.
package config

import (
	"os"
	"strconv"
)

// Config holds interpreter client configuration.
type Config struct {
	LogLevel          string
	StorePath         string
	MaxReductionSteps int
	StrictSchema      bool
}

// Load loads configuration from environment variables.
func Load() *Config {
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "INFO"
	}

	storePath := os.Getenv("ACCORD_STORE_PATH")
	if storePath == "" {
		storePath = "accord.db"
	}

	maxSteps := 0
	if raw := os.Getenv("ACCORD_MAX_REDUCTION_STEPS"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			maxSteps = n
		}
	}

	strictSchema := os.Getenv("ACCORD_STRICT_SCHEMA") != "false"

	return &Config{
		LogLevel:          logLevel,
		StorePath:         storePath,
		MaxReductionSteps: maxSteps,
		StrictSchema:      strictSchema,
	}
}
