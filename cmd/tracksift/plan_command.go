package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tracksift/internal/display"
	"tracksift/internal/encoding"
	"tracksift/internal/gpu"
	"tracksift/internal/workflow"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var videoFlag string
	var gpuFlag string
	var quality int

	cmd := &cobra.Command{
		Use:   "plan <file>...",
		Short: "Show the track selection and ffmpeg command for files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			codec, err := encoding.ParseVideoCodec(videoFlag)
			if err != nil {
				return err
			}
			vendor := gpuFlag
			if vendor == "auto" {
				vendor = gpu.Detector{}.Vendor(cmd.Context())
			}
			opts := encoding.Options{Video: codec, Vendor: encoding.ParseVendor(vendor)}
			if cmd.Flags().Changed("quality") {
				opts.Quality = &quality
			}

			out := cmd.OutOrStdout()
			printer := display.NewPrinter(out)
			plans, failures := workflow.New(cfg, logger, ctx.runID, workflow.WithPrinter(printer)).
				Plan(cmd.Context(), args, opts)
			for _, plan := range plans {
				fmt.Fprintf(out, "File: %s (%s, %s)\n",
					plan.Tracks.Path,
					display.Size(plan.Tracks.Probe.SizeBytes()),
					display.Duration(plan.Tracks.Probe.DurationSeconds()),
				)
				fmt.Fprintln(out, display.TrackTable(plan.Tracks.Selection))
				fmt.Fprintf(out, "%s\n\n", plan.Command)
			}
			for _, err := range failures {
				printer.Failure("Error: %v", err)
			}
			if len(plans) == 0 {
				return fmt.Errorf("no file could be planned")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&videoFlag, "video", "none", "Video target: none, h264 or h265")
	cmd.Flags().StringVar(&gpuFlag, "gpu", "none", "Encoder family: none, nvidia, amd or auto")
	cmd.Flags().IntVar(&quality, "quality", encoding.DefaultQuality, "Constant quality value (0-51)")
	return cmd
}
