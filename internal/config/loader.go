package config

import (
	"encoding/json"
	"fmt"

	"github.com/rpattn/logreport/internal/domain"
	"github.com/spf13/viper"
)

// Config carries everything the report pipeline needs. It is constructed
// once at startup; validation happens at the start of each run so a missing
// credential produces a failure response instead of a dead process.
type Config struct {
	// CredentialsJSON is the service account key blob.
	CredentialsJSON string
	// FolderID names the Drive folder holding the input and the report.
	FolderID string

	ListenAddr     string
	InputFileName  string
	ReportFileName string
}

// Default returns the fixed file names and listen address.
func Default() Config {
	return Config{
		ListenAddr:     ":8080",
		InputFileName:  "failed_logs.xlsx",
		ReportFileName: "failed_logs_report.pdf",
	}
}

// Load builds a Config from an optional config.yaml plus environment
// variables. Loading never fails; missing required values are caught by
// Validate before any remote call is attempted.
func Load(configPath string) Config {
	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv() // allow environment overrides

	v.BindEnv("credentials_json", "SERVICE_ACCOUNT_CREDENTIALS_JSON")
	v.BindEnv("folder_id", "TARGET_FOLDER_ID")
	v.BindEnv("listen_addr", "LISTEN_ADDR")

	if err := v.ReadInConfig(); err != nil {
		// Config file not found? Just use defaults + env.
		fmt.Println("No config.yaml found, using defaults and env vars")
	} else {
		fmt.Println("Loaded config.yaml")
	}

	if v.IsSet("credentials_json") {
		cfg.CredentialsJSON = v.GetString("credentials_json")
	}
	if v.IsSet("folder_id") {
		cfg.FolderID = v.GetString("folder_id")
	}
	if v.IsSet("listen_addr") {
		cfg.ListenAddr = v.GetString("listen_addr")
	}
	if v.IsSet("input_file_name") {
		cfg.InputFileName = v.GetString("input_file_name")
	}
	if v.IsSet("report_file_name") {
		cfg.ReportFileName = v.GetString("report_file_name")
	}

	return cfg
}

// Validate checks the required values and that the credentials blob parses
// as JSON. Returns a configuration failure (500) when anything is missing.
func (c Config) Validate() *domain.Failure {
	if c.CredentialsJSON == "" || c.FolderID == "" {
		return domain.ConfigurationFailure(
			"Error: Required environment variables (SERVICE_ACCOUNT_CREDENTIALS_JSON, TARGET_FOLDER_ID) are missing.")
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(c.CredentialsJSON), &parsed); err != nil {
		return domain.ConfigurationFailure("Error: Failed to parse SERVICE_ACCOUNT_CREDENTIALS_JSON: %v", err)
	}
	return nil
}
