package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port int
	Env  string

	// Database
	DatabaseURL string

	// NATS
	NATSURL string

	// Call graph generation
	OutputDir  string
	MavenRepos []string

	// Analyzer
	Analyzer AnalyzerConfig
}

// AnalyzerConfig holds settings for the external bytecode analyzer
type AnalyzerConfig struct {
	// Command is the analyzer executable invoked per artifact
	Command string

	// Args are passed before the classpath argument
	Args []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnvInt("PORT", 8080),
		Env:         getEnv("ENV", "development"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		NATSURL:     getEnv("NATS_URL", "nats://localhost:4222"),
		OutputDir:   getEnv("OUTPUT_DIR", "output"),
		MavenRepos:  splitList(getEnv("MAVEN_REPOS", "")),

		Analyzer: AnalyzerConfig{
			Command: getEnv("ANALYZER_CMD", "javacg-wala"),
			Args:    splitList(getEnv("ANALYZER_ARGS", "")),
		},
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Analyzer.Command == "" {
		return fmt.Errorf("ANALYZER_CMD must not be empty")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR must not be empty")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// splitList parses a comma-separated environment value, dropping empty items.
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
