package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds the batch pipeline configuration
type Config struct {
	LogbookFile    string
	FormTemplate   string
	FormOutput     string
	PilotName      string
	ColumnMapping  string
	CustomAirports string
}

// Load loads the configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	logbookFile := os.Getenv("LOGBOOK_FILE")
	if logbookFile == "" {
		return nil, fmt.Errorf("LOGBOOK_FILE environment variable is required")
	}

	formTemplate := os.Getenv("FORM_TEMPLATE")
	if formTemplate == "" {
		formTemplate = "tofes-shaot.xlsx" // Default CAAI template
	}

	formOutput := os.Getenv("FORM_OUTPUT")
	if formOutput == "" {
		formOutput = "tofes-filled.xlsx"
	}

	return &Config{
		LogbookFile:    logbookFile,
		FormTemplate:   formTemplate,
		FormOutput:     formOutput,
		PilotName:      os.Getenv("PILOT_NAME"),
		ColumnMapping:  os.Getenv("COLUMN_MAPPING"),
		CustomAirports: os.Getenv("CUSTOM_AIRPORTS"),
	}, nil
}
