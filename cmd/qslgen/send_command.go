package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"qslgen/internal/batch"
	"qslgen/internal/config"
	"qslgen/internal/delivery"
	"qslgen/internal/history"
	"qslgen/internal/logging"
	"qslgen/internal/manifest"
	"qslgen/internal/notifications"
	"qslgen/internal/services/mailer"
	"qslgen/internal/services/objectstore"
)

func newSendCommand(ctx *commandContext) *cobra.Command {
	var runRef string
	var manifestPath string
	var dryRun bool
	var resend bool

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Email rendered cards to the recipients in the with-email manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Email.Enabled && !dryRun {
				return errors.New("email delivery is disabled (set email.enabled = true or pass --dry-run)")
			}

			path := strings.TrimSpace(manifestPath)
			if path == "" {
				path = cfg.OutputPath(cfg.Manifest.WithEmailFile)
			} else if path, err = config.ExpandPath(path); err != nil {
				return err
			}
			rows, err := manifest.ReadWithEmail(path)
			if err != nil {
				return err
			}

			lock, err := batch.AcquireLock(cfg.Paths.OutputDir)
			if err != nil {
				return err
			}
			defer lock.Release()

			logger, err := ctx.newLogger(cfg)
			if err != nil {
				return err
			}

			store, err := ctx.openHistory(cfg)
			if err != nil {
				return err
			}
			runID := strings.TrimSpace(runRef)
			if store != nil {
				defer store.Close()
				if runID == "" {
					run, err := store.LatestRun(cmd.Context())
					switch {
					case err == nil:
						runID = run.ID
					case !errors.Is(err, history.ErrRunNotFound):
						return err
					}
				}
			}

			var sender mailer.Sender
			var options []delivery.Option
			options = append(options, delivery.WithLogger(logger))
			if dryRun {
				sender = mailer.NewNoopSender(logger)
			} else {
				ses, err := mailer.NewSESSender(cmd.Context(), cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName)
				if err != nil {
					return err
				}
				sender = ses
				if cfg.Storage.Enabled {
					archive, err := objectstore.NewS3Store(cmd.Context(), cfg.Storage)
					if err != nil {
						return err
					}
					options = append(options, delivery.WithArchiver(archive))
				}
				if store != nil {
					options = append(options, delivery.WithLedger(store))
				}
			}

			service, err := delivery.New(sender, delivery.Options{
				Subject: cfg.Email.Subject,
				Body:    cfg.Email.Body,
				Resend:  resend,
			}, options...)
			if err != nil {
				return err
			}

			logger.Info("delivery started",
				logging.String("manifest", path),
				logging.Int("rows", len(rows)),
				logging.Bool("dry_run", dryRun),
				logging.String(logging.FieldRunID, runID),
			)
			result, sendErr := service.Send(cmd.Context(), runID, rows)
			if !dryRun {
				ctx.notify(cmd.Context(), cfg, logger, notifications.EventDeliveryCompleted, notifications.Payload{
					"sent":    result.Sent,
					"skipped": result.Skipped,
					"failed":  result.Failed,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, renderTable(
				[]string{"Outcome", "Cards"},
				[][]string{
					{"Sent", strconv.Itoa(result.Sent)},
					{"Archived", strconv.Itoa(result.Archived)},
					{"Skipped", strconv.Itoa(result.Skipped)},
					{"Failed", strconv.Itoa(result.Failed)},
				},
				[]columnAlignment{alignLeft, alignRight},
			))
			if dryRun {
				fmt.Fprintln(out, renderStatusLine("Dry run", statusInfo, "no email was sent", shouldColorize(out)))
			}
			if sendErr != nil {
				return sendErr
			}
			if result.Failed > 0 {
				return fmt.Errorf("%d card(s) failed to send; see %s", result.Failed, cfg.LogFilePath())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&runRef, "run", "", "Run to attribute deliveries to (defaults to the latest run)")
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "With-email manifest to read (defaults to the output directory's)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log the messages instead of sending them")
	cmd.Flags().BoolVar(&resend, "resend", false, "Send cards that were already delivered")
	return cmd
}
