package awsclient

import (
	"context"
	"fmt"
	"iter"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"go.uber.org/ratelimit"

	"github.com/akuity/redeployer/internal/workload"
)

// LambdaAPI is the subset of the Lambda client used by FunctionClient.
type LambdaAPI interface {
	ListFunctions(
		ctx context.Context,
		params *lambda.ListFunctionsInput,
		optFns ...func(*lambda.Options),
	) (*lambda.ListFunctionsOutput, error)
	GetFunction(
		ctx context.Context,
		params *lambda.GetFunctionInput,
		optFns ...func(*lambda.Options),
	) (*lambda.GetFunctionOutput, error)
	ListTags(
		ctx context.Context,
		params *lambda.ListTagsInput,
		optFns ...func(*lambda.Options),
	) (*lambda.ListTagsOutput, error)
	UpdateFunctionCode(
		ctx context.Context,
		params *lambda.UpdateFunctionCodeInput,
		optFns ...func(*lambda.Options),
	) (*lambda.UpdateFunctionCodeOutput, error)
}

// FunctionClient reads and mutates Lambda functions. It implements the
// redeploy.FunctionAPI interface.
type FunctionClient struct {
	api     LambdaAPI
	limiter ratelimit.Limiter
}

// NewFunctionClient returns a FunctionClient for the Lambda control plane of
// the account and region cfg points at.
func NewFunctionClient(cfg aws.Config, limiter ratelimit.Limiter) *FunctionClient {
	return &FunctionClient{
		api:     lambda.NewFromConfig(cfg),
		limiter: limiter,
	}
}

// Functions lazily enumerates all functions.
func (c *FunctionClient) Functions(
	ctx context.Context,
	pageSize int32,
) iter.Seq2[workload.Function, error] {
	return func(yield func(workload.Function, error) bool) {
		pages := lambda.NewListFunctionsPaginator(c.api, &lambda.ListFunctionsInput{
			MaxItems: aws.Int32(pageSize),
		})
		for pages.HasMorePages() {
			if err := wait(ctx, c.limiter); err != nil {
				yield(workload.Function{}, err)
				return
			}
			page, err := pages.NextPage(ctx)
			if err != nil {
				yield(workload.Function{}, err)
				return
			}
			for _, fn := range page.Functions {
				if !yield(workload.Function{
					Name:        aws.ToString(fn.FunctionName),
					ARN:         aws.ToString(fn.FunctionArn),
					PackageType: workload.PackageType(fn.PackageType),
				}, nil) {
					return
				}
			}
		}
	}
}

// GetFunction describes a function, tags and current image included.
func (c *FunctionClient) GetFunction(
	ctx context.Context,
	arn string,
) (workload.Function, error) {
	if err := wait(ctx, c.limiter); err != nil {
		return workload.Function{}, err
	}
	out, err := c.api.GetFunction(ctx, &lambda.GetFunctionInput{
		FunctionName: aws.String(arn),
	})
	if err != nil {
		return workload.Function{}, err
	}
	fn := workload.Function{
		ARN:  arn,
		Tags: out.Tags,
	}
	if out.Configuration != nil {
		fn.Name = aws.ToString(out.Configuration.FunctionName)
		fn.PackageType = workload.PackageType(out.Configuration.PackageType)
	}
	if out.Code != nil {
		fn.ImageURI = aws.ToString(out.Code.ImageUri)
	}
	return fn, nil
}

// ListTags returns the tags of a function.
func (c *FunctionClient) ListTags(
	ctx context.Context,
	arn string,
) (map[string]string, error) {
	if err := wait(ctx, c.limiter); err != nil {
		return nil, err
	}
	out, err := c.api.ListTags(ctx, &lambda.ListTagsInput{
		Resource: aws.String(arn),
	})
	if err != nil {
		return nil, err
	}
	return out.Tags, nil
}

// UpdateFunctionImage points a function at imageURI, publishes a new version,
// and returns that version.
func (c *FunctionClient) UpdateFunctionImage(
	ctx context.Context,
	name string,
	imageURI string,
) (string, error) {
	if err := wait(ctx, c.limiter); err != nil {
		return "", err
	}
	out, err := c.api.UpdateFunctionCode(ctx, &lambda.UpdateFunctionCodeInput{
		FunctionName: aws.String(name),
		ImageUri:     aws.String(imageURI),
		Publish:      true,
	})
	if err != nil {
		return "", err
	}
	if out.Version == nil {
		return "", fmt.Errorf("update of function %q published no version", name)
	}
	return *out.Version, nil
}
