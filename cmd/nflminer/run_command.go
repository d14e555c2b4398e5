package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nickblackbourn/nfl-process-mining/internal/pipeline"
	"github.com/nickblackbourn/nfl-process-mining/internal/report"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch the season feed and derive the event log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			p, err := pipeline.New(cfg, logger)
			if err != nil {
				return err
			}
			result, err := p.Run(runCtx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if verbose {
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("Validation", colorize) {
					fmt.Fprintln(out, line)
				}
				for _, line := range validationLines(result.Validation, colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out)
			}
			fmt.Fprint(out, report.Render(result.Summary, cfg.Output.SampleRows, cfg.Output.TopActivities))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show individual invariant check results")
	return cmd
}
