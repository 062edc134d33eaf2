package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "triad.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_NoFileIsDefault(t *testing.T) {
	t.Setenv(EnvDB, "")
	t.Setenv(EnvAddr, "")
	t.Setenv(EnvLogLevel, "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("config (-default +loaded):\n%s", diff)
	}
}

func TestLoad_FileOverlaysDefaults(t *testing.T) {
	t.Setenv(EnvDB, "")
	t.Setenv(EnvAddr, "")
	t.Setenv(EnvLogLevel, "")

	path := writeConfig(t, `
log:
  level: debug
  format: json
tracker:
  max_history: 50
  cycle_window: 12
field:
  critical_resonance: 0.9
cascade:
  steps: 25
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := Default()
	want.Log = LogConfig{Level: "debug", Format: "json"}
	want.Tracker.MaxHistory = 50
	want.Tracker.CycleWindow = 12
	want.Field.CriticalResonance = 0.9
	want.Cascade.Steps = 25
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvDB, "/tmp/other.db")
	t.Setenv(EnvAddr, "0.0.0.0:9000")
	t.Setenv(EnvLogLevel, "warn")

	path := writeConfig(t, "store:\n  path: file.db\nserver:\n  addr: localhost:1\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Path != "/tmp/other.db" || cfg.Server.Addr != "0.0.0.0:9000" || cfg.Log.Level != "warn" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv(EnvLogLevel, "")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Load(writeConfig(t, "log: [unclosed")); err == nil {
		t.Error("expected parse error")
	}

	_, err := Load(writeConfig(t, "log:\n  level: loud\n  format: xml\ncascade:\n  steps: -1\n"))
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"loud", "xml", "cascade.steps"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}
