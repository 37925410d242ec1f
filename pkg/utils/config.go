package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the gravitas configuration
type Config struct {
	Simulation SimulationConfig `yaml:"simulation" mapstructure:"simulation"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Analysis   AnalysisConfig   `yaml:"analysis" mapstructure:"analysis"`
}

// SimulationConfig contains the default simulation parameters
type SimulationConfig struct {
	Theta     float64 `yaml:"theta" mapstructure:"theta"`
	TimeStep  float64 `yaml:"time_step" mapstructure:"time_step"`
	Steps     int     `yaml:"steps" mapstructure:"steps"`
	BodyCount int     `yaml:"body_count" mapstructure:"body_count"`
	Seed      uint64  `yaml:"seed" mapstructure:"seed"`
	// Extent is the half-width of the square simulation boundary, centered
	// at the origin.
	Extent float64 `yaml:"extent" mapstructure:"extent"`
}

// OutputConfig contains snapshot output settings
type OutputConfig struct {
	DataDir       string `yaml:"data_dir" mapstructure:"data_dir"`
	SnapshotEvery int    `yaml:"snapshot_every" mapstructure:"snapshot_every"`
}

// AnalysisConfig contains accuracy-analysis settings
type AnalysisConfig struct {
	Thetas []float64 `yaml:"thetas" mapstructure:"thetas"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	gravitasDir := filepath.Join(homeDir, ".gravitas")

	return &Config{
		Simulation: SimulationConfig{
			Theta:     0.5,
			TimeStep:  1.0,
			Steps:     10,
			BodyCount: 100,
			Seed:      42,
			Extent:    1e6,
		},
		Output: OutputConfig{
			DataDir:       filepath.Join(gravitasDir, "data"),
			SnapshotEvery: 1,
		},
		Analysis: AnalysisConfig{
			Thetas: []float64{0.1, 0.25, 0.5, 0.75, 1.0},
		},
	}
}

// LoadConfig loads configuration from file or creates default
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	homeDir, _ := os.UserHomeDir()
	viper.AddConfigPath(filepath.Join(homeDir, ".gravitas"))
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("GRAVITAS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createDefaultConfig()
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *Config) error {
	homeDir, _ := os.UserHomeDir()
	configDir := filepath.Join(homeDir, ".gravitas")
	configFile := filepath.Join(configDir, "config.yaml")

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := createDirectories(config); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Configuration saved to: %s\n", configFile)
	return nil
}

// createDefaultConfig creates and saves a default configuration
func createDefaultConfig() (*Config, error) {
	config := DefaultConfig()

	if err := SaveConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.Simulation.Theta < 0 {
		return fmt.Errorf("theta must be non-negative")
	}

	if config.Simulation.TimeStep <= 0 {
		return fmt.Errorf("time step must be positive")
	}

	if config.Simulation.Steps <= 0 {
		return fmt.Errorf("step count must be positive")
	}

	if config.Simulation.BodyCount <= 0 {
		return fmt.Errorf("body count must be positive")
	}

	if config.Simulation.Extent <= 0 {
		return fmt.Errorf("boundary extent must be positive")
	}

	if config.Output.SnapshotEvery <= 0 {
		return fmt.Errorf("snapshot interval must be positive")
	}

	for _, theta := range config.Analysis.Thetas {
		if theta < 0 {
			return fmt.Errorf("analysis theta values must be non-negative, got %g", theta)
		}
	}

	return nil
}

// createDirectories creates necessary directories based on config
func createDirectories(config *Config) error {
	if config.Output.DataDir != "" {
		if err := os.MkdirAll(config.Output.DataDir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", config.Output.DataDir, err)
		}
	}
	return nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".gravitas", "config.yaml"), nil
}
