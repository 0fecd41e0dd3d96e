package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"qslgen/internal/history"
)

const historyTimeLayout = "2006-01-02 15:04:05"

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded render runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistoryForRead(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			total := 0
			for _, run := range runs {
				total += run.Total
				rows = append(rows, []string{
					run.ID,
					run.StartedAt.Local().Format(historyTimeLayout),
					yesNo(run.Finished()),
					strconv.Itoa(run.Total),
					strconv.Itoa(run.WithEmail),
					strconv.Itoa(run.WithoutEmail),
					strconv.Itoa(run.RasterFailures),
					run.InputPath,
				})
			}
			fmt.Fprint(out, renderTable(
				[]string{"Run", "Started", "Finished", "Total", "Email", "No Email", "Raster Fail", "Input"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
				"", "", "", strconv.Itoa(total),
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 lists all)")

	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id|latest>",
		Short: "Show per-card outcomes for a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistoryForRead(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := resolveRun(cmd, store, args[0])
			if err != nil {
				return err
			}
			outcomes, err := store.Outcomes(cmd.Context(), run.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s (%s)\n", run.ID, run.StartedAt.Local().Format(historyTimeLayout))
			fmt.Fprintf(out, "Input: %s\nTemplate: %s\nOutput: %s\n", run.InputPath, run.TemplatePath, run.OutputDir)
			if len(outcomes) == 0 {
				fmt.Fprintln(out, "No cards recorded")
				return nil
			}

			rows := make([][]string, 0, len(outcomes))
			for _, o := range outcomes {
				delivered := "-"
				if o.Delivered() {
					delivered = o.DeliveredAt.Local().Format(historyTimeLayout)
				}
				email := o.Email
				if email == "" {
					email = "-"
				}
				rows = append(rows, []string{
					strconv.Itoa(o.Seq),
					o.CallSign,
					email,
					string(o.Status),
					delivered,
					o.Error,
				})
			}
			fmt.Fprint(out, renderTable(
				[]string{"#", "Call Sign", "Email", "Status", "Delivered", "Error"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func openHistoryForRead(ctx *commandContext) (*history.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.History.Enabled {
		return nil, errors.New("history is disabled (set history.enabled = true)")
	}
	return ctx.openHistory(cfg)
}

func resolveRun(cmd *cobra.Command, store *history.Store, ref string) (history.Run, error) {
	ref = strings.TrimSpace(ref)
	if strings.EqualFold(ref, "latest") {
		run, err := store.LatestRun(cmd.Context())
		if errors.Is(err, history.ErrRunNotFound) {
			return history.Run{}, errors.New("no runs recorded")
		}
		return run, err
	}
	run, err := store.GetRun(cmd.Context(), ref)
	if errors.Is(err, history.ErrRunNotFound) {
		return history.Run{}, fmt.Errorf("run %q not found", ref)
	}
	return run, err
}
