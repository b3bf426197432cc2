package config

import (
	"os"
	"strconv"

	"cartool/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data     DataConfig
	Pipeline PipelineConfig
	Database DatabaseConfig
}

// DataConfig holds the file-system boundary of the pipeline
type DataConfig struct {
	WorkbookFile string // raw interim workbook
	SheetName    string // sheet to clean
	OutputFile   string // cleaned CSV artifact
	SchemaFile   string // metadata schema JSON; empty uses the built-in schema
	LabelsFile   string // label vocabulary JSON; empty uses the built-in maps
}

// PipelineConfig holds the pipeline feature flags
type PipelineConfig struct {
	StrictSchema  bool
	DeriveColumns bool
}

// DatabaseConfig holds optional warehouse publishing settings
type DatabaseConfig struct {
	URL     string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Data: DataConfig{
			WorkbookFile: getEnvOrDefault("WORKBOOK_FILE", ""),
			SheetName:    getEnvOrDefault("SHEET_NAME", "Main Results - Perfusion Mimick"),
			OutputFile:   getEnvOrDefault("OUTPUT_FILE", "perfusion_data.csv"),
			SchemaFile:   getEnvOrDefault("SCHEMA_FILE", ""),
			LabelsFile:   getEnvOrDefault("LABELS_FILE", ""),
		},
		Pipeline: PipelineConfig{
			StrictSchema:  getEnvBoolOrDefault("STRICT_SCHEMA", false),
			DeriveColumns: getEnvBoolOrDefault("DERIVE_COLUMNS", true),
		},
	}

	dbURL := getEnvOrDefault("DATABASE_URL", "")
	config.Database = DatabaseConfig{
		URL:     dbURL,
		Enabled: dbURL != "",
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Data.SheetName == "" {
		return errors.ConfigInvalid("SHEET_NAME must not be empty")
	}
	if config.Data.OutputFile == "" {
		return errors.ConfigInvalid("OUTPUT_FILE must not be empty")
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
