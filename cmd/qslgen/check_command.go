package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"qslgen/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify inputs, directories, and the converter before rendering",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := preflight.RunAll(cfg)
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				status := "OK"
				if !r.Passed {
					status = "FAIL"
				}
				rows = append(rows, []string{r.Name, status, r.Detail})
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, renderTable(
				[]string{"Check", "Status", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))

			if failed, ok := preflight.FirstFailure(results); ok {
				return fmt.Errorf("check failed: %s: %s", failed.Name, failed.Detail)
			}
			fmt.Fprintln(out, renderStatusLine("Ready", statusOK, "all checks passed", shouldColorize(out)))
			return nil
		},
	}
}
