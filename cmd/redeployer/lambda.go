package main

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"

	"github.com/akuity/redeployer/internal/event"
	"github.com/akuity/redeployer/internal/logging"
	"github.com/akuity/redeployer/internal/redeploy"
)

// deadlineMargin is reserved at the end of every invocation so the Result
// gathered before the budget ran out can still be returned to the runtime.
const deadlineMargin = 2 * time.Second

// Response is returned to the Lambda runtime for every invocation.
type Response struct {
	Rejected bool             `json:"rejected,omitempty"`
	Reason   string           `json:"reason,omitempty"`
	Result   *redeploy.Result `json:"result,omitempty"`
}

type eventHandler interface {
	Handle(context.Context, events.EventBridgeEvent) (*redeploy.Result, error)
}

func newLambdaCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "lambda",
		Short:             "Serve image push events as an AWS Lambda function",
		DisableAutoGenTag: true,
		SilenceErrors:     true,
		SilenceUsage:      true,
		Args:              cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLambda(cmd.Context())
		},
	}
}

func runLambda(ctx context.Context) error {
	h, _, err := newHandler(ctx)
	if err != nil {
		return err
	}
	lambda.StartWithOptions(newLambdaHandler(h), lambda.WithContext(ctx))
	return nil
}

// newLambdaHandler adapts h to the Lambda runtime. Rejected events yield a
// Response rather than an error so that asynchronous invocations of events
// that can never succeed are not retried.
func newLambdaHandler(
	h eventHandler,
) func(context.Context, events.EventBridgeEvent) (*Response, error) {
	return func(ctx context.Context, raw events.EventBridgeEvent) (*Response, error) {
		ctx = logging.ContextWithLogger(
			ctx,
			logging.LoggerFromContext(ctx).WithValues("eventID", raw.ID),
		)
		if deadline, ok := ctx.Deadline(); ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithDeadline(ctx, deadline.Add(-deadlineMargin))
			defer cancel()
		}
		res, err := h.Handle(ctx, raw)
		if err != nil {
			if errors.Is(err, event.ErrRejected) {
				return &Response{Rejected: true, Reason: err.Error()}, nil
			}
			return nil, err
		}
		return &Response{Result: res}, nil
	}
}
