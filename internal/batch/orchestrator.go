package batch

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"qslgen/internal/address"
	"qslgen/internal/adif"
	"qslgen/internal/fieldmap"
	"qslgen/internal/history"
	"qslgen/internal/logging"
	"qslgen/internal/manifest"
	"qslgen/internal/services"
)

// Rasterizer converts a rendered SVG into an image file.
type Rasterizer interface {
	Rasterize(ctx context.Context, svgPath, outputPath string) error
}

// ManifestSink receives one row per processed record.
type ManifestSink interface {
	Add(row manifest.Row) error
}

// Recorder stores per-record outcomes in the run ledger.
type Recorder interface {
	RecordOutcome(ctx context.Context, outcome history.Outcome) error
}

// Options controls how records are rendered.
type Options struct {
	// OutputDir receives <call>.svg and the raster images.
	OutputDir string
	// RasterExtension is the image extension without the dot.
	RasterExtension string
	// Enrich adds ZIP, STATE and COUNTRY derived from ADDRESS to the mapping
	// copy of a record when those fields are absent.
	Enrich bool
	// EscapeMarkup XML-escapes substituted values.
	EscapeMarkup bool
}

// Option configures the orchestrator's collaborators.
type Option func(*Orchestrator)

// WithRasterizer enables image conversion.
func WithRasterizer(r Rasterizer) Option {
	return func(o *Orchestrator) {
		o.rasterizer = r
	}
}

// WithRecorder stores outcomes in the run ledger.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) {
		o.recorder = r
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// Orchestrator renders cards for a sequence of records.
type Orchestrator struct {
	opts       Options
	manifests  ManifestSink
	rasterizer Rasterizer
	recorder   Recorder
	logger     *slog.Logger
}

// New constructs an Orchestrator writing into opts.OutputDir.
func New(opts Options, manifests ManifestSink, options ...Option) (*Orchestrator, error) {
	if strings.TrimSpace(opts.OutputDir) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "batch", "new", "output directory required", nil)
	}
	if manifests == nil {
		return nil, services.Wrap(services.ErrConfiguration, "batch", "new", "manifest sink required", nil)
	}
	if opts.RasterExtension == "" {
		opts.RasterExtension = "png"
	}
	opts.RasterExtension = strings.TrimPrefix(opts.RasterExtension, ".")
	o := &Orchestrator{opts: opts, manifests: manifests}
	for _, opt := range options {
		opt(o)
	}
	o.logger = logging.NewComponentLogger(o.logger, "batch")
	return o, nil
}

// Run processes every record of doc against tmpl. The summary reflects every
// record handled before an error, which is returned alongside it.
func (o *Orchestrator) Run(ctx context.Context, doc adif.Result, tmpl string) (Summary, error) {
	summary := Summary{SkippedFields: len(doc.Skipped)}
	o.logSkipped(ctx, doc.Skipped)

	var mapOpts []fieldmap.Option
	if o.opts.EscapeMarkup {
		mapOpts = append(mapOpts, fieldmap.WithEscaper(html.EscapeString))
	}

	for i, record := range doc.Records {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		seq := i + 1
		outcome, err := o.processRecord(ctx, seq, record, tmpl, mapOpts)
		if err != nil {
			return summary, fmt.Errorf("record %d: %w", seq, err)
		}
		summary.Total++
		if outcome.Email != "" {
			summary.WithEmail++
		} else {
			summary.WithoutEmail++
		}
		if outcome.Status == history.StatusRasterFailed || outcome.Status == history.StatusTimedOut {
			summary.RasterFailures++
		}
	}
	return summary, nil
}

func (o *Orchestrator) processRecord(ctx context.Context, seq int, record adif.Record, tmpl string, mapOpts []fieldmap.Option) (history.Outcome, error) {
	callSign, ok := record.Get("CALL")
	if !ok || callSign == "" {
		callSign = UnknownCallSign
	}
	email, _ := record.Get("EMAIL")

	ctx = services.WithRecordIndex(services.WithCallSign(ctx, callSign), seq)
	logger := logging.WithContext(ctx, o.logger)

	details := resolveDetails(record)
	mapped := record
	if o.opts.Enrich {
		mapped = enrich(record, details)
	}

	stem := FileStem(callSign)
	svgPath := filepath.Join(o.opts.OutputDir, stem+".svg")
	content := fieldmap.Apply(mapped, tmpl, mapOpts...)
	if err := os.WriteFile(svgPath, []byte(content), 0o644); err != nil {
		return history.Outcome{}, fmt.Errorf("write %s: %w", svgPath, err)
	}
	logger.Info("card written", logging.String("svg", svgPath))
	logger.Debug("mapped card content", logging.Int("bytes", len(content)))

	outcome := history.Outcome{
		Seq:      seq,
		CallSign: callSign,
		Email:    email,
		SVGPath:  svgPath,
		Status:   history.StatusSkipped,
	}
	if id, ok := services.RunIDFromContext(ctx); ok {
		outcome.RunID = id
	}

	if o.rasterizer != nil {
		rasterPath, err := filepath.Abs(filepath.Join(o.opts.OutputDir, stem+"."+o.opts.RasterExtension))
		if err != nil {
			return history.Outcome{}, fmt.Errorf("resolve raster path: %w", err)
		}
		outcome.RasterPath = rasterPath
		rasterErr := o.rasterizer.Rasterize(ctx, svgPath, rasterPath)
		if rasterErr != nil && ctx.Err() != nil {
			return history.Outcome{}, rasterErr
		}
		outcome.Status = services.OutcomeStatus(rasterErr)
		if rasterErr != nil {
			outcome.Error = rasterErr.Error()
			logging.ErrorWithContext(logger, "card conversion failed", "raster_failed",
				logging.String("svg", svgPath),
				logging.String("output", rasterPath),
				logging.Error(rasterErr),
				logging.String(logging.FieldErrorHint, "run qslgen check to verify the converter is installed"),
			)
		} else {
			logger.Info("card converted", logging.String("output", rasterPath))
		}
	}

	row := manifest.Row{
		CallSign: callSign,
		Email:    email,
		PNGPath:  outcome.RasterPath,
		Address:  details.Address,
		QTH:      record["QTH"],
		State:    details.State,
		ZipCode:  details.Zip,
		Country:  details.Country,
	}
	if err := o.manifests.Add(row); err != nil {
		return history.Outcome{}, fmt.Errorf("manifest: %w", err)
	}

	if o.recorder != nil && outcome.RunID != "" {
		if err := o.recorder.RecordOutcome(ctx, outcome); err != nil {
			logging.WarnWithContext(logger, "run ledger update failed", "history_write_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "qslgen history will miss this card"),
			)
		}
	}
	return outcome, nil
}

func (o *Orchestrator) logSkipped(ctx context.Context, skipped []adif.SkippedField) {
	for _, skip := range skipped {
		logger := logging.WithContext(services.WithRecordIndex(ctx, skip.Record+1), o.logger)
		logging.WarnWithContext(logger, "adif field skipped", "adif_field_skipped",
			logging.String("descriptor", skip.Descriptor),
			logging.Error(skip.Err),
			logging.String(logging.FieldErrorHint, "fix the field descriptor in the ADIF file"),
			logging.String(logging.FieldImpact, "field is missing from the card"),
		)
	}
}

// resolveDetails derives the manifest address columns for a record. Values
// parsed from ADDRESS take precedence over the record's own ZIP, STATE and
// COUNTRY fields.
func resolveDetails(record adif.Record) address.Parts {
	details := address.Parts{
		Zip:     record["ZIP"],
		State:   record["STATE"],
		Country: record["COUNTRY"],
	}
	raw, ok := record.Get("ADDRESS")
	if !ok || raw == "" {
		return details
	}
	parts := address.Decompose(raw)
	details.Address = parts.Address
	if parts.Zip != "" {
		details.Zip = parts.Zip
	}
	if parts.State != "" {
		details.State = parts.State
	}
	if parts.Country != "" {
		details.Country = parts.Country
	}
	return details
}

func enrich(record adif.Record, details address.Parts) adif.Record {
	additions := map[string]string{
		"ZIP":     details.Zip,
		"STATE":   details.State,
		"COUNTRY": details.Country,
	}
	var out adif.Record
	for field, value := range additions {
		if value == "" {
			continue
		}
		if _, exists := record[field]; exists {
			continue
		}
		if out == nil {
			out = record.Clone()
		}
		out[field] = value
	}
	if out == nil {
		return record
	}
	return out
}
