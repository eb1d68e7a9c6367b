package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/uberrun/uber/internal/pipeline"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Create virtual environments, install dependencies, and run the project",
		Long: `Create every declared virtual environment that does not exist yet, install
each dependency into its environment unless pip already has it, then run the
project's entry point with the main environment's interpreter.

A failed environment creation or installation stops the run with exit
status 1. When the project itself fails, uber exits with its status.`,
		Example: `  uberrun --dir ./myproject run

  # Show the commands without running them
  uberrun --dir ./myproject --dry-run run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			p := pipeline.New(pipeline.Options{
				Project:  current.Project,
				Tool:     current.Tool,
				Runner:   newRunner(),
				Reporter: current.Reporter,
				Stdin:    cmd.InOrStdin(),
				Stdout:   cmd.OutOrStdout(),
				Stderr:   cmd.ErrOrStderr(),
				DryRun:   flagDryRun,
			})
			return p.Run(ctx)
		},
	}
}

func init() {
	rootCmd.AddCommand(newRunCmd())
}
