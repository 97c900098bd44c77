package config

import (
	"testing"

	"github.com/rpattn/logreport/internal/domain"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("SERVICE_ACCOUNT_CREDENTIALS_JSON", `{"type":"service_account"}`)
	t.Setenv("TARGET_FOLDER_ID", "folder-123")

	cfg := Load(t.TempDir())

	if cfg.CredentialsJSON != `{"type":"service_account"}` {
		t.Fatalf("unexpected credentials: %q", cfg.CredentialsJSON)
	}
	if cfg.FolderID != "folder-123" {
		t.Fatalf("unexpected folder id: %q", cfg.FolderID)
	}
	if cfg.InputFileName != "failed_logs.xlsx" || cfg.ReportFileName != "failed_logs_report.pdf" {
		t.Fatalf("unexpected file names: %+v", cfg)
	}
	if fail := cfg.Validate(); fail != nil {
		t.Fatalf("expected valid config, got %v", fail)
	}
}

func TestValidateMissingValues(t *testing.T) {
	cfg := Default()

	fail := cfg.Validate()
	if fail == nil {
		t.Fatalf("expected configuration failure")
	}
	if fail.Kind != domain.FailureConfiguration {
		t.Fatalf("expected configuration kind, got %s", fail.Kind)
	}
	if fail.HTTPStatus() != 500 {
		t.Fatalf("expected status 500, got %d", fail.HTTPStatus())
	}
}

func TestValidateRejectsMalformedCredentials(t *testing.T) {
	cfg := Default()
	cfg.CredentialsJSON = "{not json"
	cfg.FolderID = "folder-123"

	fail := cfg.Validate()
	if fail == nil || fail.Kind != domain.FailureConfiguration {
		t.Fatalf("expected configuration failure, got %v", fail)
	}
}
