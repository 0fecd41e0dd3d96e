package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"qslgen/internal/history"
	"qslgen/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "inkscape", "rasterize", "exit status 1", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"inkscape", "rasterize", "exit status 1"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutDetail(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker default, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err)
	}
}

func TestOutcomeStatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want history.Status
	}{
		{err: nil, want: history.StatusRendered},
		{err: services.Wrap(services.ErrTimeout, "inkscape", "rasterize", "", nil), want: history.StatusTimedOut},
		{err: fmt.Errorf("run: %w", context.DeadlineExceeded), want: history.StatusTimedOut},
		{err: services.Wrap(services.ErrNotFound, "inkscape", "lookup", "binary missing", nil), want: history.StatusRasterFailed},
		{err: services.Wrap(services.ErrConfiguration, "inkscape", "rasterize", "bad args", nil), want: history.StatusRasterFailed},
		{err: services.Wrap(services.ErrExternalTool, "inkscape", "rasterize", "", errors.New("exit 1")), want: history.StatusRasterFailed},
	}
	for _, tc := range tests {
		if got := services.OutcomeStatus(tc.err); got != tc.want {
			t.Fatalf("OutcomeStatus(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}
