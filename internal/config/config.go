package config

import (
	"os"
	"runtime"
	"strconv"

	"sheetpress/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig
	Process ProcessConfig
	Output  OutputConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// ProcessConfig holds consolidation pipeline settings
type ProcessConfig struct {
	Workers     int
	ZeroAsBlank bool
}

// OutputConfig holds output database settings
type OutputConfig struct {
	Path      string
	TableName string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("SHEETPRESS_PORT", "8080"),
		},
		Process: ProcessConfig{
			Workers:     getEnvIntOrDefault("SHEETPRESS_WORKERS", runtime.NumCPU()),
			ZeroAsBlank: getEnvBoolOrDefault("SHEETPRESS_ZERO_BLANK", false),
		},
		Output: OutputConfig{
			Path:      getEnvOrDefault("SHEETPRESS_OUTPUT", "consolidated_data.db"),
			TableName: "DATA",
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Process.Workers < 1 {
		return errors.ConfigInvalid("worker count must be at least 1")
	}
	if config.Output.Path == "" {
		return errors.ConfigInvalid("output database path is required")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
