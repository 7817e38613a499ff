package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tracksift/internal/deps"
	"tracksift/internal/display"
	"tracksift/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify external tools and directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			statuses := preflight.CheckSystemDeps(cfg)
			rows := make([][]string, 0, len(statuses))
			for _, s := range statuses {
				rows = append(rows, []string{s.Name, s.Command, dependencyState(s), s.Description, s.Detail})
			}
			fmt.Fprintln(out, display.RenderTable(
				[]string{"Tool", "Command", "Status", "Purpose", "Detail"}, rows, nil))

			results := preflight.RunAll(cmd.Context(), cfg)
			rows = rows[:0]
			for _, r := range results {
				state := "ok"
				if !r.Passed {
					state = "FAILED"
				}
				rows = append(rows, []string{r.Name, state, r.Detail})
			}
			fmt.Fprintln(out, display.RenderTable([]string{"Check", "Status", "Detail"}, rows, nil))

			if len(deps.MissingRequired(statuses)) > 0 || len(preflight.Failed(results)) > 0 {
				return errors.New("environment check failed")
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}
}

func dependencyState(s deps.Status) string {
	switch {
	case s.Available:
		return "ok"
	case s.Optional:
		return "missing (optional)"
	default:
		return "MISSING"
	}
}
