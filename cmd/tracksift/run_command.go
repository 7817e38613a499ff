package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tracksift/internal/deps"
	"tracksift/internal/display"
	"tracksift/internal/history"
	"tracksift/internal/logging"
	"tracksift/internal/preflight"
	"tracksift/internal/workflow"
)

func runInteractive(cmd *cobra.Command, ctx *commandContext) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.logger()
	if err != nil {
		return err
	}
	printer := display.NewPrinter(cmd.OutOrStdout())

	if missing := deps.MissingRequired(preflight.CheckSystemDeps(cfg)); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, m := range missing {
			names[i] = fmt.Sprintf("%s (%s)", m.Name, m.Detail)
		}
		return fmt.Errorf("missing required tools: %s", strings.Join(names, ", "))
	}
	for _, failed := range preflight.Failed(preflight.RunAll(cmd.Context(), cfg)) {
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", failed.Name),
			logging.String("detail", failed.Detail),
		)
	}

	opts := []workflow.Option{workflow.WithPrinter(printer)}
	if cfg.History.Enabled {
		store, err := history.Open(cfg.Paths.HistoryDB)
		if err != nil {
			logging.WarnWithContext(logger, "history unavailable", "history_open_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "transcodes are not recorded"),
			)
		} else {
			defer store.Close()
			opts = append(opts, workflow.WithHistory(store))
		}
	}

	logger.Info("run started", logging.String("config_log_dir", cfg.Paths.LogDir))
	summary, err := workflow.New(cfg, logger, ctx.runID, opts...).Run(cmd.Context())
	if err != nil {
		return err
	}
	if summary.Processed+summary.Failed > 0 {
		printer.Println(fmt.Sprintf("Done: %d processed, %d failed.", summary.Processed, summary.Failed))
	}
	logger.Info("run finished",
		logging.Int("processed", summary.Processed),
		logging.Int("failed", summary.Failed),
		logging.Bool("aborted", summary.Aborted),
	)
	return nil
}
