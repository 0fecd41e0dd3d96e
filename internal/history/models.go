package history

import (
	"errors"
	"time"
)

// Status describes how a single record fared during a render run.
type Status string

const (
	// StatusRendered means the SVG was written and, when enabled, rasterized.
	StatusRendered Status = "rendered"
	// StatusRasterFailed means the SVG was written but the converter failed.
	StatusRasterFailed Status = "raster_failed"
	// StatusTimedOut means the converter exceeded the configured timeout.
	StatusTimedOut Status = "timed_out"
	// StatusSkipped means rasterization was not attempted.
	StatusSkipped Status = "skipped"
)

var statusSet = map[Status]struct{}{
	StatusRendered:     {},
	StatusRasterFailed: {},
	StatusTimedOut:     {},
	StatusSkipped:      {},
}

// ParseStatus returns the Status for value when it is known.
func ParseStatus(value string) (Status, bool) {
	status := Status(value)
	_, ok := statusSet[status]
	return status, ok
}

// ErrRunNotFound is returned when a run identifier does not exist in the ledger.
var ErrRunNotFound = errors.New("run not found")

// Run is one invocation of the render pipeline.
type Run struct {
	ID             string
	StartedAt      time.Time
	FinishedAt     *time.Time
	InputPath      string
	TemplatePath   string
	OutputDir      string
	Total          int
	WithEmail      int
	WithoutEmail   int
	RasterFailures int
	SkippedFields  int
}

// Finished reports whether the run recorded its final counts.
func (r Run) Finished() bool {
	return r.FinishedAt != nil
}

// Totals carries the counts stored when a run finishes.
type Totals struct {
	Total          int
	WithEmail      int
	WithoutEmail   int
	RasterFailures int
	SkippedFields  int
}

// Outcome is the ledger entry for a single processed record.
type Outcome struct {
	RunID       string
	Seq         int
	CallSign    string
	Email       string
	SVGPath     string
	RasterPath  string
	Status      Status
	Error       string
	DeliveredAt *time.Time
}

// Delivered reports whether the card was sent.
func (o Outcome) Delivered() bool {
	return o.DeliveredAt != nil
}
