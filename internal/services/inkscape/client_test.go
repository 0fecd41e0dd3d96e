package inkscape_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"qslgen/internal/services"
	"qslgen/internal/services/inkscape"
)

type stubExecutor struct {
	lines  []string
	err    error
	block  bool
	calls  int
	binary string
	args   [][]string
}

func (s *stubExecutor) Run(ctx context.Context, binary string, args []string, onOutput func(string)) error {
	s.calls++
	s.binary = binary
	s.args = append(s.args, append([]string(nil), args...))
	for _, line := range s.lines {
		onOutput(line)
	}
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.err
}

func defaultArgs() []string {
	return []string{"{input}", "--export-filename={output}"}
}

func TestNewRequiresBinaryAndTokens(t *testing.T) {
	if _, err := inkscape.New("", defaultArgs(), 0); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for empty binary, got %v", err)
	}
	if _, err := inkscape.New("inkscape", []string{"{input}"}, 0); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for missing output token, got %v", err)
	}
}

func TestRasterizeSubstitutesPaths(t *testing.T) {
	exec := &stubExecutor{}
	client, err := inkscape.New("inkscape", defaultArgs(), 0, inkscape.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := client.Rasterize(context.Background(), "/out/W1AW.svg", "/out/W1AW.png"); err != nil {
		t.Fatalf("Rasterize returned error: %v", err)
	}
	if exec.calls != 1 || exec.binary != "inkscape" {
		t.Fatalf("unexpected executor calls: %d %q", exec.calls, exec.binary)
	}
	got := strings.Join(exec.args[0], " ")
	if got != "/out/W1AW.svg --export-filename=/out/W1AW.png" {
		t.Fatalf("unexpected args: %q", got)
	}
}

func TestRasterizeWrapsExecutorError(t *testing.T) {
	exec := &stubExecutor{lines: []string{"", "** (inkscape): WARNING: bad font", "Failed to export"}, err: errors.New("exit status 1")}
	var seen []string
	client, err := inkscape.New("inkscape", defaultArgs(), 0,
		inkscape.WithExecutor(exec),
		inkscape.WithOutputHandler(func(line string) { seen = append(seen, line) }),
	)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	err = client.Rasterize(context.Background(), "a.svg", "a.png")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Failed to export") || !strings.Contains(err.Error(), "exit status 1") {
		t.Fatalf("expected converter output in error, got %v", err)
	}
	if len(seen) != 3 {
		t.Fatalf("expected output handler to see 3 lines, got %d", len(seen))
	}
	if services.OutcomeStatus(err) != "raster_failed" {
		t.Fatalf("unexpected outcome status %q", services.OutcomeStatus(err))
	}
}

func TestRasterizeTimeout(t *testing.T) {
	exec := &stubExecutor{block: true}
	client, err := inkscape.New("inkscape", defaultArgs(), 10*time.Millisecond, inkscape.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	err = client.Rasterize(context.Background(), "a.svg", "a.png")
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestRasterizeParentCancellation(t *testing.T) {
	exec := &stubExecutor{block: true}
	client, err := inkscape.New("inkscape", defaultArgs(), time.Minute, inkscape.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := client.Rasterize(ctx, "a.svg", "a.png"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRasterizeRequiresPaths(t *testing.T) {
	client, err := inkscape.New("inkscape", defaultArgs(), 0, inkscape.WithExecutor(&stubExecutor{}))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := client.Rasterize(context.Background(), "", "a.png"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
