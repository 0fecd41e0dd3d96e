package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"qslgen/internal/batch"
	"qslgen/internal/config"
	"qslgen/internal/deps"
	"qslgen/internal/logging"
	"qslgen/internal/notifications"
	"qslgen/internal/preflight"
	"qslgen/internal/services"
	"qslgen/internal/services/inkscape"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var inputPath string
	var templatePath string
	var outputDir string
	var noRaster bool

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a QSL card for every record in the ADIF log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := applyPathOverrides(cfg, inputPath, templatePath, outputDir); err != nil {
				return err
			}
			if noRaster {
				cfg.Raster.Enabled = false
			}

			// Nothing, including the diagnostic log, may be written when an input is missing.
			if err := requireFile("input file", cfg.Paths.InputFile); err != nil {
				return err
			}
			if err := requireFile("template file", cfg.Paths.TemplateFile); err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			logger, err := ctx.newLogger(cfg)
			if err != nil {
				return err
			}

			runDeps := batch.Dependencies{Logger: logger}
			if cfg.Raster.Enabled {
				if missing, ok := deps.FirstMissing(preflight.CheckSystemDeps(cfg)); ok {
					return services.Wrap(services.ErrConfiguration, "render", "check converter",
						fmt.Sprintf("%s (set raster.enabled = false or pass --no-raster)", missing.Detail), nil)
				}
				converterLogger := logging.NewComponentLogger(logger, "inkscape")
				client, err := inkscape.New(cfg.Raster.Binary, cfg.Raster.Args, cfg.RasterTimeout(),
					inkscape.WithOutputHandler(func(line string) {
						converterLogger.Debug(line)
					}),
				)
				if err != nil {
					return err
				}
				runDeps.Rasterizer = client
			}

			store, err := ctx.openHistory(cfg)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
				runDeps.History = store
			}

			report, runErr := batch.Execute(cmd.Context(), cfg, runDeps)
			if runErr != nil {
				ctx.notify(cmd.Context(), cfg, logger, notifications.EventRunFailed, notifications.Payload{
					"context": "render",
					"error":   runErr,
				})
			} else {
				ctx.notify(cmd.Context(), cfg, logger, notifications.EventRenderCompleted, notifications.Payload{
					"total":           report.Summary.Total,
					"with_email":      report.Summary.WithEmail,
					"without_email":   report.Summary.WithoutEmail,
					"raster_failures": report.Summary.RasterFailures,
				})
			}
			if report.SummaryPath == "" {
				return runErr
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, report.Summary.Text())
			colorize := shouldColorize(out)
			if report.Summary.RasterFailures > 0 {
				fmt.Fprintln(out, renderStatusLine("Raster failures", statusWarn,
					fmt.Sprintf("%d card(s) have no image; see %s", report.Summary.RasterFailures, cfg.LogFilePath()), colorize))
			}
			if report.Summary.SkippedFields > 0 {
				fmt.Fprintln(out, renderStatusLine("Skipped fields", statusWarn,
					fmt.Sprintf("%d malformed ADIF field(s) ignored", report.Summary.SkippedFields), colorize))
			}
			if report.RunID != "" && store != nil {
				fmt.Fprintln(out, renderStatusLine("Run", statusInfo, report.RunID, colorize))
			}
			return runErr
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "ADIF log to read (overrides paths.input_file)")
	cmd.Flags().StringVarP(&templatePath, "template", "t", "", "SVG template (overrides paths.template_file)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (overrides paths.output_dir)")
	cmd.Flags().BoolVar(&noRaster, "no-raster", false, "Write SVG cards only")
	return cmd
}

func applyPathOverrides(cfg *config.Config, input, template, output string) error {
	overrides := []struct {
		value  string
		target *string
	}{
		{input, &cfg.Paths.InputFile},
		{template, &cfg.Paths.TemplateFile},
		{output, &cfg.Paths.OutputDir},
	}
	for _, o := range overrides {
		value := strings.TrimSpace(o.value)
		if value == "" {
			continue
		}
		expanded, err := config.ExpandPath(value)
		if err != nil {
			return err
		}
		*o.target = expanded
	}
	return nil
}

func requireFile(label, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		marker := services.ErrValidation
		if errors.Is(err, fs.ErrNotExist) {
			marker = services.ErrNotFound
		}
		return services.Wrap(marker, "render", "load inputs", fmt.Sprintf("%s %s", label, path), err)
	}
	if info.IsDir() {
		return services.Wrap(services.ErrValidation, "render", "load inputs", fmt.Sprintf("%s %s is a directory", label, path), nil)
	}
	return nil
}
