package main

import (
	"fmt"
	"io"
	stdos "os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/spf13/cobra"

	"github.com/akuity/redeployer/internal/event"
)

type handleEventOptions struct {
	file string
}

func newHandleEventCommand() *cobra.Command {
	opts := &handleEventOptions{}
	cmd := &cobra.Command{
		Use:               "handle-event",
		Short:             "Handle a single image push event read from a file or stdin",
		DisableAutoGenTag: true,
		SilenceErrors:     true,
		SilenceUsage:      true,
		Args:              cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := opts.readEvent(cmd.InOrStdin())
			if err != nil {
				return err
			}
			h, _, err := newHandler(cmd.Context())
			if err != nil {
				return err
			}
			res, err := h.Handle(cmd.Context(), raw)
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
	cmd.Flags().StringVarP(
		&opts.file,
		"file",
		"f",
		"-",
		"path to a JSON EventBridge event; - reads from stdin",
	)
	return cmd
}

func (o *handleEventOptions) readEvent(stdin io.Reader) (events.EventBridgeEvent, error) {
	var data []byte
	var err error
	if o.file == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = stdos.ReadFile(o.file)
	}
	if err != nil {
		return events.EventBridgeEvent{}, fmt.Errorf("error reading event: %w", err)
	}
	return event.ParseEventBridgeEvent(data)
}
