package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderStatusLinePlain(t *testing.T) {
	got := renderStatusLine("Raster failures", statusWarn, "2 card(s) have no image", false)
	if !strings.HasPrefix(got, "  Raster failures:") {
		t.Fatalf("unexpected prefix: %q", got)
	}
	if !strings.HasSuffix(got, "[WARN] 2 card(s) have no image") {
		t.Fatalf("unexpected status: %q", got)
	}
	if strings.Contains(got, "\x1b[") {
		t.Fatalf("plain output should not contain ANSI codes: %q", got)
	}
}

func TestRenderStatusLineColorized(t *testing.T) {
	got := renderStatusLine("Ready", statusOK, "", true)
	if !strings.HasPrefix(got, "\x1b[32m") || !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected green output, got %q", got)
	}
	if !strings.Contains(got, "[OK]") {
		t.Fatalf("expected OK label, got %q", got)
	}
}

func TestShouldColorizeRejectsBuffers(t *testing.T) {
	if shouldColorize(&bytes.Buffer{}) {
		t.Fatal("buffers are not terminals")
	}
}
