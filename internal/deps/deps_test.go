package deps

import (
	"os"
	"path/filepath"
	"testing"
)

func writeStub(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestCheckBinaries(t *testing.T) {
	present := writeStub(t, t.TempDir(), "converter")
	reqs := []Requirement{
		{Name: "Converter", Command: present},
		{Name: "Missing", Command: " clearly-not-present-binary "},
		{Name: "Blank", Command: "  ", Optional: true},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Path != present || results[0].Detail != "" {
		t.Fatalf("expected converter to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Command != "clearly-not-present-binary" || results[1].Detail == "" {
		t.Fatalf("unexpected missing status: %#v", results[1])
	}
	if results[2].Available || results[2].Detail != "command not configured" || !results[2].Optional {
		t.Fatalf("unexpected blank requirement status: %#v", results[2])
	}

	missing, ok := FirstMissing(results)
	if !ok || missing.Name != "Missing" {
		t.Fatalf("FirstMissing = %#v, %v", missing, ok)
	}
	if _, ok := FirstMissing(results[:1]); ok {
		t.Fatal("expected no missing requirement")
	}
	if _, ok := FirstMissing(results[2:]); ok {
		t.Fatal("optional requirements never count as missing")
	}
}

func TestCheckBinariesResolvesFromPath(t *testing.T) {
	binDir := t.TempDir()
	stub := writeStub(t, binDir, "qslgen-stub")
	t.Setenv("PATH", binDir)

	results := CheckBinaries([]Requirement{{Name: "Stub", Command: "qslgen-stub"}})
	if !results[0].Available || results[0].Path != stub {
		t.Fatalf("expected stub resolved from PATH, got %#v", results[0])
	}
}
