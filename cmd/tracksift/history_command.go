package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"tracksift/internal/display"
	"tracksift/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent transcodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.Paths.HistoryDB)
			if err != nil {
				return err
			}
			defer store.Close()

			var entries []history.Entry
			if runID != "" {
				entries, err = store.ByRun(cmd.Context(), runID)
			} else {
				entries, err = store.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No transcodes recorded")
				return nil
			}
			fmt.Fprintln(out, renderHistory(entries, time.Now()))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries")
	cmd.Flags().StringVar(&runID, "run", "", "Only show entries of this run id")
	return cmd
}

func renderHistory(entries []history.Entry, now time.Time) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		elapsed := "-"
		if d := e.Duration(); d > 0 {
			elapsed = d.Round(time.Second).String()
		}
		status := string(e.Status)
		if e.Failure != "" {
			status += " (" + e.Failure + ")"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", e.ID),
			humanize.RelTime(e.StartedAt, now, "ago", "from now"),
			filepath.Base(e.SourcePath),
			e.VideoCodec,
			e.HardwareVendor,
			status,
			elapsed,
		})
	}
	return display.RenderTable(
		[]string{"ID", "Started", "File", "Video", "GPU", "Status", "Elapsed"},
		rows,
		[]display.ColumnAlignment{display.AlignRight},
	)
}
