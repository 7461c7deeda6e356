package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// JobConfig represents a .javacg.yaml file describing a batch run
type JobConfig struct {
	Version string `yaml:"version"`

	// Input is the JSON-lines coordinate file to process
	Input string `yaml:"input,omitempty"`

	// Output directory for generated call graphs
	Output string `yaml:"output,omitempty"`

	// Maven repositories tried in order
	Repos []string `yaml:"repos,omitempty"`

	// Analyzer settings
	Analyzer JobAnalyzerConfig `yaml:"analyzer,omitempty"`
}

// JobAnalyzerConfig holds analyzer overrides for a job file
type JobAnalyzerConfig struct {
	Command string   `yaml:"command,omitempty"`
	Args    []string `yaml:"args,omitempty"`
}

// DefaultJobConfig returns sensible defaults
func DefaultJobConfig() *JobConfig {
	return &JobConfig{
		Version: "1.0",
		Output:  "output",
		Repos:   []string{"https://repo.maven.apache.org/maven2/"},
		Analyzer: JobAnalyzerConfig{
			Command: "javacg-wala",
		},
	}
}

// LoadJobConfig loads a .javacg.yaml from the given directory
func LoadJobConfig(dir string) (*JobConfig, error) {
	configPath := filepath.Join(dir, ".javacg.yaml")

	// Check if config exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Also try .javacg.yml
		configPath = filepath.Join(dir, ".javacg.yml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return DefaultJobConfig(), nil
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	cfg := DefaultJobConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveJobConfig saves the config to .javacg.yaml
func SaveJobConfig(dir string, cfg *JobConfig) error {
	configPath := filepath.Join(dir, ".javacg.yaml")

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// Merge applies overrides from another config (e.g., CLI flags)
func (c *JobConfig) Merge(other *JobConfig) {
	if other == nil {
		return
	}

	if other.Input != "" {
		c.Input = other.Input
	}

	if other.Output != "" {
		c.Output = other.Output
	}

	if len(other.Repos) > 0 {
		c.Repos = other.Repos
	}

	if other.Analyzer.Command != "" {
		c.Analyzer.Command = other.Analyzer.Command
	}

	if len(other.Analyzer.Args) > 0 {
		c.Analyzer.Args = other.Analyzer.Args
	}
}
