package config

import (
	"os"
	"testing"
)

func TestLoad_WithFullEnvironment(t *testing.T) {
	// Set up test environment
	os.Setenv("LOGBOOK_FILE", "/data/logbook.xlsx")
	os.Setenv("FORM_TEMPLATE", "/data/tofes-shaot.xlsx")
	os.Setenv("FORM_OUTPUT", "/data/filled.xlsx")
	os.Setenv("PILOT_NAME", "A. Pilot")
	os.Setenv("COLUMN_MAPPING", "/data/columns.yaml")
	os.Setenv("CUSTOM_AIRPORTS", "/data/airports.json")
	defer func() {
		os.Unsetenv("LOGBOOK_FILE")
		os.Unsetenv("FORM_TEMPLATE")
		os.Unsetenv("FORM_OUTPUT")
		os.Unsetenv("PILOT_NAME")
		os.Unsetenv("COLUMN_MAPPING")
		os.Unsetenv("CUSTOM_AIRPORTS")
	}()

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if config == nil {
		t.Fatal("Load() returned nil config")
	}

	if config.LogbookFile != "/data/logbook.xlsx" {
		t.Errorf("Expected LogbookFile = /data/logbook.xlsx, got %s", config.LogbookFile)
	}
	if config.FormTemplate != "/data/tofes-shaot.xlsx" {
		t.Errorf("Expected FormTemplate = /data/tofes-shaot.xlsx, got %s", config.FormTemplate)
	}
	if config.FormOutput != "/data/filled.xlsx" {
		t.Errorf("Expected FormOutput = /data/filled.xlsx, got %s", config.FormOutput)
	}
	if config.PilotName != "A. Pilot" {
		t.Errorf("Expected PilotName = A. Pilot, got %s", config.PilotName)
	}
	if config.ColumnMapping != "/data/columns.yaml" {
		t.Errorf("Expected ColumnMapping = /data/columns.yaml, got %s", config.ColumnMapping)
	}
	if config.CustomAirports != "/data/airports.json" {
		t.Errorf("Expected CustomAirports = /data/airports.json, got %s", config.CustomAirports)
	}
}

func TestLoad_WithDefaults(t *testing.T) {
	// Set up test environment
	os.Setenv("LOGBOOK_FILE", "logbook.xlsx")
	os.Unsetenv("FORM_TEMPLATE")
	os.Unsetenv("FORM_OUTPUT")
	os.Unsetenv("PILOT_NAME")
	os.Unsetenv("COLUMN_MAPPING")
	os.Unsetenv("CUSTOM_AIRPORTS")
	defer func() {
		os.Unsetenv("LOGBOOK_FILE")
	}()

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if config == nil {
		t.Fatal("Load() returned nil config")
	}

	if config.FormTemplate != "tofes-shaot.xlsx" {
		t.Errorf("Expected default FormTemplate = tofes-shaot.xlsx, got %s", config.FormTemplate)
	}
	if config.FormOutput != "tofes-filled.xlsx" {
		t.Errorf("Expected default FormOutput = tofes-filled.xlsx, got %s", config.FormOutput)
	}
	if config.PilotName != "" {
		t.Errorf("Expected empty PilotName, got %s", config.PilotName)
	}
	if config.ColumnMapping != "" {
		t.Errorf("Expected empty ColumnMapping, got %s", config.ColumnMapping)
	}
}

func TestLoad_WithMissingLogbookFile(t *testing.T) {
	// Set up test environment
	os.Unsetenv("LOGBOOK_FILE")
	os.Unsetenv("FORM_TEMPLATE")

	config, err := Load()
	if err == nil {
		t.Fatal("Load() should have failed with missing LOGBOOK_FILE")
	}

	if config != nil {
		t.Fatal("Load() should have returned nil config")
	}

	expectedError := "LOGBOOK_FILE environment variable is required"
	if err.Error() != expectedError {
		t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
	}
}

func TestLoad_WithEmptyLogbookFile(t *testing.T) {
	// Set up test environment
	os.Setenv("LOGBOOK_FILE", "")
	defer func() {
		os.Unsetenv("LOGBOOK_FILE")
	}()

	config, err := Load()
	if err == nil {
		t.Fatal("Load() should have failed with empty LOGBOOK_FILE")
	}

	if config != nil {
		t.Fatal("Load() should have returned nil config")
	}
}
