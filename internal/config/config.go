package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Source  SourceConfig  `yaml:"source" envconfig:"SOURCE"`
	Engine  EngineConfig  `yaml:"engine" envconfig:"ENGINE"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
}

// SourceConfig describes where and how the import workbook is found.
type SourceConfig struct {
	DataDir        string   `yaml:"data_dir" envconfig:"DATA_DIR"`
	SheetName      string   `yaml:"sheet_name" envconfig:"SHEET_NAME"`
	HiddenPrograms []string `yaml:"hidden_programs" envconfig:"HIDDEN_PROGRAMS"`
}

// EngineConfig contains metric computation settings.
type EngineConfig struct {
	// Workers bounds the per-program fan-out. 1 computes sequentially;
	// results are identical either way.
	Workers int `yaml:"workers" envconfig:"WORKERS"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Source: SourceConfig{
			DataDir:   "data",
			SheetName: "Importtabelle",
		},
		Engine: EngineConfig{
			Workers: 1,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/qadash.log",
		},
	}
}

// Load loads configuration in three layers: built-in defaults, an optional
// YAML file, then environment variables with the QA_ prefix. Later layers
// win.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			if err := loadFromFile(configFile, &cfg); err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
		}
	}

	if err := envconfig.Process("QA", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile overlays configuration from a YAML file.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate checks the configuration for invalid values.
func (c *Config) validate() error {
	if c.Source.DataDir == "" {
		return fmt.Errorf("source data_dir must not be empty")
	}
	if c.Source.SheetName == "" {
		return fmt.Errorf("source sheet_name must not be empty")
	}
	if c.Engine.Workers < 1 {
		return fmt.Errorf("engine workers must be at least 1, got %d", c.Engine.Workers)
	}
	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("logging output must be console, file or both, got %q", c.Logging.Output)
	}
	return nil
}
