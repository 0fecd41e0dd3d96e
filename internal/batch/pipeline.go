package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"qslgen/internal/adif"
	"qslgen/internal/config"
	"qslgen/internal/history"
	"qslgen/internal/logging"
	"qslgen/internal/manifest"
	"qslgen/internal/services"
)

// Dependencies carries the collaborators Execute wires into the orchestrator.
type Dependencies struct {
	// Rasterizer converts cards; nil renders SVGs only.
	Rasterizer Rasterizer
	// History records the run; nil disables the ledger.
	History *history.Store
	Logger  *slog.Logger
}

// Report describes a finished run.
type Report struct {
	RunID        string
	Summary      Summary
	Manifests    manifest.Paths
	SummaryPath  string
	WorkbookPath string
}

// Execute renders every record of the configured ADIF file. Missing inputs
// fail before any output is produced. Once processing starts, the manifests
// and summary file are written even if a later record fails.
func Execute(ctx context.Context, cfg *config.Config, deps Dependencies) (Report, error) {
	logger := logging.NewComponentLogger(deps.Logger, "render")

	doc, tmpl, err := loadInputs(cfg)
	if err != nil {
		return Report{}, err
	}

	lock, err := AcquireLock(cfg.Paths.OutputDir)
	if err != nil {
		return Report{}, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("release output lock failed", logging.Error(err))
		}
	}()

	report := Report{
		Manifests: manifest.Paths{
			NoEmail:   cfg.OutputPath(cfg.Manifest.NoEmailFile),
			WithEmail: cfg.OutputPath(cfg.Manifest.WithEmailFile),
			All:       cfg.OutputPath(cfg.Manifest.AllFile),
		},
		SummaryPath: cfg.OutputPath(cfg.Manifest.SummaryFile),
	}
	set, err := manifest.Create(report.Manifests)
	if err != nil {
		return Report{}, err
	}

	report.RunID = uuid.NewString()
	options := []Option{WithLogger(deps.Logger)}
	if deps.History != nil {
		run, err := deps.History.StartRun(ctx, history.RunInput{
			InputPath:    cfg.Paths.InputFile,
			TemplatePath: cfg.Paths.TemplateFile,
			OutputDir:    cfg.Paths.OutputDir,
		})
		if err != nil {
			_ = set.Close()
			return Report{}, fmt.Errorf("start run: %w", err)
		}
		report.RunID = run.ID
		options = append(options, WithRecorder(deps.History))
	}
	if deps.Rasterizer != nil {
		options = append(options, WithRasterizer(deps.Rasterizer))
	}
	ctx = services.WithRunID(ctx, report.RunID)
	logger = logging.WithContext(ctx, logger)

	orchestrator, err := New(Options{
		OutputDir:       cfg.Paths.OutputDir,
		RasterExtension: cfg.Raster.Extension,
		Enrich:          cfg.Address.Enrich,
		EscapeMarkup:    cfg.Template.EscapeMarkup,
	}, set, options...)
	if err != nil {
		_ = set.Close()
		return Report{}, err
	}

	logger.Info("run started",
		logging.String("input", cfg.Paths.InputFile),
		logging.String("template", cfg.Paths.TemplateFile),
		logging.Int("records", len(doc.Records)),
		logging.Bool("raster", deps.Rasterizer != nil),
	)

	summary, runErr := orchestrator.Run(ctx, doc, tmpl)
	report.Summary = summary

	var errs []error
	if runErr != nil {
		errs = append(errs, runErr)
	}
	if err := set.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close manifests: %w", err))
	}
	if err := os.WriteFile(report.SummaryPath, []byte(summary.Text()), 0o644); err != nil {
		errs = append(errs, fmt.Errorf("write summary: %w", err))
	}
	if cfg.Manifest.XLSX {
		report.WorkbookPath = cfg.OutputPath(cfg.Manifest.XLSXFile)
		if err := manifest.WriteWorkbook(report.WorkbookPath, set.Rows()); err != nil {
			errs = append(errs, err)
		}
	}
	if deps.History != nil {
		// The run context may already be cancelled; the totals still belong in the ledger.
		if err := deps.History.FinishRun(context.WithoutCancel(ctx), report.RunID, history.Totals{
			Total:          summary.Total,
			WithEmail:      summary.WithEmail,
			WithoutEmail:   summary.WithoutEmail,
			RasterFailures: summary.RasterFailures,
			SkippedFields:  summary.SkippedFields,
		}); err != nil {
			errs = append(errs, fmt.Errorf("finish run: %w", err))
		}
	}

	logger.Info("run finished",
		logging.Int("total", summary.Total),
		logging.Int("with_email", summary.WithEmail),
		logging.Int("without_email", summary.WithoutEmail),
		logging.Int("raster_failures", summary.RasterFailures),
		logging.Int("skipped_fields", summary.SkippedFields),
	)
	return report, errors.Join(errs...)
}

func loadInputs(cfg *config.Config) (adif.Result, string, error) {
	input, err := os.Open(cfg.Paths.InputFile)
	if err != nil {
		return adif.Result{}, "", inputError("input file", cfg.Paths.InputFile, err)
	}
	defer input.Close()

	doc, err := adif.Read(input)
	if err != nil {
		return adif.Result{}, "", fmt.Errorf("read adif: %w", err)
	}

	tmpl, err := os.ReadFile(cfg.Paths.TemplateFile)
	if err != nil {
		return adif.Result{}, "", inputError("template file", cfg.Paths.TemplateFile, err)
	}
	return doc, string(tmpl), nil
}

func inputError(label, path string, err error) error {
	marker := services.ErrValidation
	if errors.Is(err, fs.ErrNotExist) {
		marker = services.ErrNotFound
	}
	return services.Wrap(marker, "render", "load inputs", fmt.Sprintf("%s %s", label, path), err)
}
