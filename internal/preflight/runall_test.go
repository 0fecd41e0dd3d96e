package preflight_test

import (
	"strings"
	"testing"

	"qslgen/internal/preflight"
	"qslgen/internal/testsupport"
)

func TestRunAllPassesWithStubbedConverter(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithADIF("<CALL:4>W1AW <EOR>"),
		testsupport.WithTemplate("<svg>$VAR_CALL $VAR_QSO_DATE</svg>"),
		testsupport.WithStubbedBinaries(),
	)

	results := preflight.RunAll(cfg)
	if failed, ok := preflight.FirstFailure(results); ok {
		t.Fatalf("unexpected failure: %+v", failed)
	}
	for _, r := range results {
		if r.Name == "Converter" && !strings.Contains(r.Detail, testsupport.BaseDir(cfg)) {
			t.Fatalf("expected stub path in detail, got %q", r.Detail)
		}
		if r.Name == "SVG template" && !strings.Contains(r.Detail, "CALL, QSO_DATE") {
			t.Fatalf("expected placeholders in detail, got %q", r.Detail)
		}
	}
}
