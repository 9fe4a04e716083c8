package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestListCommandDefaultBattery(t *testing.T) {
	workspace(t)
	out, _, err := execute(t, "list")
	if err != nil {
		t.Fatalf("command execute: %v", err)
	}
	for _, name := range []string{"config", "logger", "threadpool", "network_utils", "error_handling", "application", "integration"} {
		if !strings.Contains(out, "./tests/test_"+name) {
			t.Fatalf("expected %s in list output:\n%s", name, out)
		}
	}
	if !strings.Contains(out, "1m0s") {
		t.Fatalf("expected default timeout in list output:\n%s", out)
	}
}

func TestListCommandJSONWithFilters(t *testing.T) {
	workspace(t)
	out, _, err := execute(t, "list", "--format", "json", "--skip-test", "/^(logger|threadpool|network_utils|error_handling|application)$/", "--test-timeout", "90s")
	if err != nil {
		t.Fatalf("command execute: %v", err)
	}

	var entries []listEntry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode list json: %v\n%s", err, out)
	}
	if len(entries) != 2 || entries[0].Name != "config" || entries[1].Name != "integration" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if entries[0].Timeout != "1m30s" {
		t.Fatalf("expected flag timeout, got %q", entries[0].Timeout)
	}
}

func TestListCommandDiscovery(t *testing.T) {
	skipOnWindows(t)
	root := workspace(t)
	writeScript(t, filepath.Join(root, "build", "tests", "test_extra"), "exit 0\n")
	configYAML := []byte("discover: tests/test_*\n")
	if err := os.WriteFile(filepath.Join(root, ".testreport.yml"), configYAML, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, _, err := execute(t, "list", "--only-test", "extra")
	if err != nil {
		t.Fatalf("command execute: %v", err)
	}
	if !strings.Contains(out, "./tests/test_extra") {
		t.Fatalf("expected discovered test:\n%s", out)
	}
	if strings.Contains(out, "test_config") {
		t.Fatalf("filter not applied:\n%s", out)
	}
}

func TestListCommandBadFormat(t *testing.T) {
	workspace(t)
	if _, _, err := execute(t, "list", "--format", "xml"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
