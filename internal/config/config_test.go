package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadFileMissingUsesDefaults(t *testing.T) {
	t.Setenv(EnvSubmissionEndpoint, "")
	t.Setenv(EnvRosterPath, "")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Submission.Timeout != 30*time.Second {
		t.Errorf("Submission.Timeout = %v, want 30s", cfg.Submission.Timeout)
	}
}

func TestLoadFileYAMLAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlData := `
submission:
  endpoint_url: https://example.test/from-file
  timeout: 5s
queue:
  max_pending: 3
roster:
  path: roster.json
`
	if err := os.WriteFile(path, []byte(yamlData), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvSubmissionEndpoint, "  https://example.test/from-env ")
	t.Setenv(EnvRosterPath, "")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Submission.EndpointURL != "https://example.test/from-env" {
		t.Errorf("EndpointURL = %q, want env override", cfg.Submission.EndpointURL)
	}
	if cfg.Submission.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Submission.Timeout)
	}
	if cfg.Queue.MaxPending != 3 {
		t.Errorf("MaxPending = %d, want 3", cfg.Queue.MaxPending)
	}
	if cfg.Roster.Path != "roster.json" {
		t.Errorf("Roster.Path = %q, want roster.json", cfg.Roster.Path)
	}
	// Defaults survive for keys the file leaves out.
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestValidateWarnsOnMissingEndpoint(t *testing.T) {
	cfg := Default()
	warnings := cfg.Validate()
	if len(warnings) != 1 || !strings.Contains(warnings[0], EnvSubmissionEndpoint) {
		t.Fatalf("Validate() = %v, want single endpoint warning", warnings)
	}

	cfg.Submission.EndpointURL = "https://example.test"
	if warnings := cfg.Validate(); len(warnings) != 0 {
		t.Fatalf("Validate() = %v, want none", warnings)
	}
}
