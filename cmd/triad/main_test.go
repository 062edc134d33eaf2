package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// run executes the CLI in-process and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--log-format", "text", "--log-level", "warn"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestSimulate_BuiltinJSON(t *testing.T) {
	out, err := run(t, "simulate", "--builtin", "convergence", "--builtin", "noise-field", "--json")
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	var results []simulation
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Name != "convergence" || results[1].Name != "noise-field" {
		t.Errorf("results out of order: %s, %s", results[0].Name, results[1].Name)
	}
	for _, r := range results {
		if len(r.Cascade) != r.Steps+2 {
			t.Errorf("%s: %d reports for %d steps", r.Name, len(r.Cascade), r.Steps)
		}
		if r.Timeline == nil {
			t.Errorf("%s: expected a timeline summary", r.Name)
		}
	}
}

func TestSimulate_PersistThenInspect(t *testing.T) {
	db := filepath.Join(t.TempDir(), "triad.db")
	out, err := run(t, "--db", db, "simulate", "--builtin", "convergence", "--persist", "--json")
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	var results []simulation
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if results[0].RunID == "" || results[0].TimelineID == "" {
		t.Fatalf("expected stored ids, got %+v", results[0])
	}

	list, err := run(t, "--db", db, "inspect")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !strings.Contains(list, results[0].RunID) || !strings.Contains(list, results[0].TimelineID) {
		t.Errorf("inspect list missing stored ids:\n%s", list)
	}

	detail, err := run(t, "--db", db, "inspect", "--timeline", results[0].TimelineID)
	if err != nil {
		t.Fatalf("inspect timeline: %v", err)
	}
	if !strings.Contains(detail, "emergence") {
		t.Errorf("expected the emergence event in:\n%s", detail)
	}

	runJSON, err := run(t, "--db", db, "inspect", "--run", results[0].RunID, "--json")
	if err != nil {
		t.Fatalf("inspect run: %v", err)
	}
	if !strings.Contains(runJSON, `"reached_phase_transition"`) {
		t.Errorf("expected summary in:\n%s", runJSON)
	}

	if _, err := run(t, "--db", db, "inspect", "--run", "missing"); err == nil {
		t.Error("expected error for unknown run")
	}
}

func TestSimulate_NoScenarios(t *testing.T) {
	if _, err := run(t, "simulate"); err == nil {
		t.Fatal("expected error without scenarios")
	}
}

func TestReplay_Fixture(t *testing.T) {
	fixture := filepath.Join("..", "..", "internal", "replay", "testdata", "emergence_cycle.json")
	out, err := run(t, "replay", "-f", fixture, "--builtin", "noise-field", "-v")
	if err != nil {
		t.Fatalf("replay: %v\n%s", err, out)
	}
	if strings.Count(out, "PASS") != 2 {
		t.Errorf("expected two passing fixtures:\n%s", out)
	}
}

func TestReplay_MismatchFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	body := `{"description":"bad","points":[{"pattern":0,"intent":0,"presence":0},{"pattern":1,"intent":1,"presence":1}],
	"expected_results":[{"index":1,"transition":"collapse"}]}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	out, err := run(t, "replay", "-f", path)
	if err == nil || !strings.Contains(err.Error(), "mismatch") {
		t.Fatalf("expected mismatch error, got %v", err)
	}
	if !strings.Contains(out, "FAIL") {
		t.Errorf("expected FAIL in output:\n%s", out)
	}
}

func TestInvalidConfigFlag(t *testing.T) {
	if _, err := run(t, "--log-format", "xml", "simulate", "--builtin", "convergence"); err == nil {
		t.Fatal("expected validation error for unknown log format")
	}
}
