package main

import (
	"github.com/spf13/cobra"
)

type redeployOptions struct {
	verify bool
}

func newRedeployCommand() *cobra.Command {
	opts := &redeployOptions{}
	cmd := &cobra.Command{
		Use:   "redeploy IMAGE",
		Short: "Redeploy every opted-in ECS service that references IMAGE",
		Long: "Redeploy every opted-in ECS service whose task definition " +
			"references IMAGE. IMAGE is either registry/repository:tag or " +
			"repository:tag, in which case the ECR registry of the current " +
			"account and region is assumed. Lambda functions are not updated.",
		DisableAutoGenTag: true,
		SilenceErrors:     true,
		SilenceUsage:      true,
		Args:              cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, clients, err := newHandler(cmd.Context())
			if err != nil {
				return err
			}
			if opts.verify {
				h = h.WithImageVerifier(clients.Images)
			}
			res, err := h.RedeployServices(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err = printResult(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if res.Failed() {
				return errRedeployFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(
		&opts.verify,
		"verify",
		false,
		"confirm that IMAGE exists in ECR before redeploying anything",
	)
	return cmd
}
