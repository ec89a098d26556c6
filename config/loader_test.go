package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, yml string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
}

func TestLoadAppConfig(t *testing.T) {
	writeConfig(t, `
api:
  baseURL: "https://example.org/api/action"
  timeoutMS: 5000
collector:
  dataDir: "testdata"
  liveMinutes: 5
analysis:
  speedLimitKMH: 60
`)

	if err := LoadAppConfig(); err != nil {
		t.Fatalf("LoadAppConfig: %v", err)
	}
	if Config.API.BaseURL != "https://example.org/api/action" {
		t.Errorf("BaseURL = %q", Config.API.BaseURL)
	}
	if Config.Collector.LiveMinutes != 5 {
		t.Errorf("LiveMinutes = %d, want 5", Config.Collector.LiveMinutes)
	}
	if Config.Analysis.SpeedLimitKMH != 60 {
		t.Errorf("SpeedLimitKMH = %g, want 60", Config.Analysis.SpeedLimitKMH)
	}
	// Unset fields fall back to defaults.
	if Config.Collector.Workers != 64 {
		t.Errorf("Workers = %d, want default 64", Config.Collector.Workers)
	}
	if Config.Analysis.EarlyToleranceSec != 120 {
		t.Errorf("EarlyToleranceSec = %d, want default 120", Config.Analysis.EarlyToleranceSec)
	}
	if Config.API.APIKeyEnv != "API_KEY" {
		t.Errorf("APIKeyEnv = %q, want default API_KEY", Config.API.APIKeyEnv)
	}
}

func TestLoadAppConfigMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	if err := LoadAppConfig(); err == nil {
		t.Fatal("expected error when config.yml is absent")
	}
}

func TestLoadAppConfigInvalidURL(t *testing.T) {
	writeConfig(t, `
api:
  baseURL: "not a url"
`)
	if err := LoadAppConfig(); err == nil {
		t.Fatal("expected validation error for malformed baseURL")
	}
}

func TestAPIKeyFromEnv(t *testing.T) {
	writeConfig(t, `
api:
  apiKeyEnv: "BUSWATCH_TEST_KEY"
`)
	t.Setenv("BUSWATCH_TEST_KEY", "secret")
	if err := LoadAppConfig(); err != nil {
		t.Fatal(err)
	}
	if got := APIKey(); got != "secret" {
		t.Errorf("APIKey() = %q, want secret", got)
	}
}
