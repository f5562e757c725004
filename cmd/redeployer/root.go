package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/akuity/redeployer/internal/os"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "redeployer",
		Short:             "Redeploy ECS services and Lambda functions when their image is pushed",
		DisableAutoGenTag: true,
		SilenceErrors:     true,
		SilenceUsage:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Container images for Lambda run the entrypoint without arguments.
			if os.IsLambda() {
				return runLambda(cmd.Context())
			}
			cmd.HelpFunc()(cmd, args)
			return nil
		},
	}
	cmd.AddCommand(newLambdaCommand())
	cmd.AddCommand(newHandleEventCommand())
	cmd.AddCommand(newRedeployCommand())
	cmd.AddCommand(newVersionCommand())
	return cmd
}

func Execute(ctx context.Context) error {
	return newRootCommand().ExecuteContext(ctx)
}
