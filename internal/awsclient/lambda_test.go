package awsclient

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/ratelimit"

	"github.com/akuity/redeployer/internal/workload"
)

func TestFunctionClientFunctions(t *testing.T) {
	api := &mockLambdaAPI{
		ListFunctionsFn: func(
			_ context.Context,
			in *lambda.ListFunctionsInput,
		) (*lambda.ListFunctionsOutput, error) {
			require.Equal(t, int32(50), aws.ToInt32(in.MaxItems))
			if in.Marker == nil {
				return &lambda.ListFunctionsOutput{
					Functions: []lambdatypes.FunctionConfiguration{{
						FunctionName: aws.String("resizer"),
						FunctionArn:  aws.String("arn:resizer"),
						PackageType:  lambdatypes.PackageTypeImage,
					}},
					NextMarker: aws.String("page-2"),
				}, nil
			}
			return &lambda.ListFunctionsOutput{
				Functions: []lambdatypes.FunctionConfiguration{{
					FunctionName: aws.String("legacy"),
					FunctionArn:  aws.String("arn:legacy"),
					PackageType:  lambdatypes.PackageTypeZip,
				}},
			}, nil
		},
	}
	c := &FunctionClient{api: api, limiter: ratelimit.NewUnlimited()}

	var functions []workload.Function
	for fn, err := range c.Functions(context.Background(), 50) {
		require.NoError(t, err)
		functions = append(functions, fn)
	}
	require.Equal(
		t,
		[]workload.Function{
			{Name: "resizer", ARN: "arn:resizer", PackageType: workload.PackageTypeImage},
			{Name: "legacy", ARN: "arn:legacy", PackageType: workload.PackageTypeZip},
		},
		functions,
	)
}

func TestFunctionClientFunctionsError(t *testing.T) {
	api := &mockLambdaAPI{
		ListFunctionsFn: func(
			context.Context,
			*lambda.ListFunctionsInput,
		) (*lambda.ListFunctionsOutput, error) {
			return nil, errors.New("something went wrong")
		},
	}
	c := &FunctionClient{api: api, limiter: ratelimit.NewUnlimited()}
	var errs []error
	for _, err := range c.Functions(context.Background(), 50) {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	require.ErrorContains(t, errs[0], "something went wrong")
}

func TestFunctionClientGetFunction(t *testing.T) {
	testCases := []struct {
		name       string
		api        *mockLambdaAPI
		assertions func(*testing.T, workload.Function, error)
	}{
		{
			name: "error",
			api: &mockLambdaAPI{
				GetFunctionFn: func(
					context.Context,
					*lambda.GetFunctionInput,
				) (*lambda.GetFunctionOutput, error) {
					return nil, errors.New("something went wrong")
				},
			},
			assertions: func(t *testing.T, _ workload.Function, err error) {
				require.ErrorContains(t, err, "something went wrong")
			},
		},
		{
			name: "image function",
			api: &mockLambdaAPI{
				GetFunctionFn: func(
					_ context.Context,
					in *lambda.GetFunctionInput,
				) (*lambda.GetFunctionOutput, error) {
					require.Equal(t, "arn:resizer", aws.ToString(in.FunctionName))
					return &lambda.GetFunctionOutput{
						Configuration: &lambdatypes.FunctionConfiguration{
							FunctionName: aws.String("resizer"),
							PackageType:  lambdatypes.PackageTypeImage,
						},
						Code: &lambdatypes.FunctionCodeLocation{
							ImageUri: aws.String("111.dkr.ecr.us-east-1.amazonaws.com/app:v2"),
						},
						Tags: map[string]string{"AutoDeploy": "true"},
					}, nil
				},
			},
			assertions: func(t *testing.T, fn workload.Function, err error) {
				require.NoError(t, err)
				require.Equal(
					t,
					workload.Function{
						Name:        "resizer",
						ARN:         "arn:resizer",
						PackageType: workload.PackageTypeImage,
						Tags:        map[string]string{"AutoDeploy": "true"},
						ImageURI:    "111.dkr.ecr.us-east-1.amazonaws.com/app:v2",
					},
					fn,
				)
			},
		},
		{
			name: "no code location",
			api: &mockLambdaAPI{
				GetFunctionFn: func(
					context.Context,
					*lambda.GetFunctionInput,
				) (*lambda.GetFunctionOutput, error) {
					return &lambda.GetFunctionOutput{}, nil
				},
			},
			assertions: func(t *testing.T, fn workload.Function, err error) {
				require.NoError(t, err)
				require.Empty(t, fn.ImageURI)
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			c := &FunctionClient{api: testCase.api, limiter: ratelimit.NewUnlimited()}
			fn, err := c.GetFunction(context.Background(), "arn:resizer")
			testCase.assertions(t, fn, err)
		})
	}
}

func TestFunctionClientListTags(t *testing.T) {
	api := &mockLambdaAPI{
		ListTagsFn: func(
			_ context.Context,
			in *lambda.ListTagsInput,
		) (*lambda.ListTagsOutput, error) {
			require.Equal(t, "arn:resizer", aws.ToString(in.Resource))
			return &lambda.ListTagsOutput{
				Tags: map[string]string{"AutoDeploy": "TRUE"},
			}, nil
		},
	}
	c := &FunctionClient{api: api, limiter: ratelimit.NewUnlimited()}
	tags, err := c.ListTags(context.Background(), "arn:resizer")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"AutoDeploy": "TRUE"}, tags)
}

func TestFunctionClientUpdateFunctionImage(t *testing.T) {
	testCases := []struct {
		name       string
		api        *mockLambdaAPI
		assertions func(*testing.T, string, error)
	}{
		{
			name: "error",
			api: &mockLambdaAPI{
				UpdateFunctionCodeFn: func(
					context.Context,
					*lambda.UpdateFunctionCodeInput,
				) (*lambda.UpdateFunctionCodeOutput, error) {
					return nil, errors.New("something went wrong")
				},
			},
			assertions: func(t *testing.T, _ string, err error) {
				require.ErrorContains(t, err, "something went wrong")
			},
		},
		{
			name: "no version published",
			api: &mockLambdaAPI{
				UpdateFunctionCodeFn: func(
					context.Context,
					*lambda.UpdateFunctionCodeInput,
				) (*lambda.UpdateFunctionCodeOutput, error) {
					return &lambda.UpdateFunctionCodeOutput{}, nil
				},
			},
			assertions: func(t *testing.T, _ string, err error) {
				require.ErrorContains(t, err, "published no version")
			},
		},
		{
			name: "success",
			api: &mockLambdaAPI{
				UpdateFunctionCodeFn: func(
					_ context.Context,
					in *lambda.UpdateFunctionCodeInput,
				) (*lambda.UpdateFunctionCodeOutput, error) {
					require.Equal(t, "resizer", aws.ToString(in.FunctionName))
					require.Equal(
						t,
						"111.dkr.ecr.us-east-1.amazonaws.com/app:v2",
						aws.ToString(in.ImageUri),
					)
					require.True(t, in.Publish)
					return &lambda.UpdateFunctionCodeOutput{Version: aws.String("12")}, nil
				},
			},
			assertions: func(t *testing.T, version string, err error) {
				require.NoError(t, err)
				require.Equal(t, "12", version)
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			c := &FunctionClient{api: testCase.api, limiter: ratelimit.NewUnlimited()}
			version, err := c.UpdateFunctionImage(
				context.Background(),
				"resizer",
				"111.dkr.ecr.us-east-1.amazonaws.com/app:v2",
			)
			testCase.assertions(t, version, err)
		})
	}
}

func TestFunctionClientStopsWaitingOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &FunctionClient{api: &mockLambdaAPI{}, limiter: ratelimit.NewUnlimited()}

	_, err := c.GetFunction(ctx, "arn:resizer")
	require.ErrorIs(t, err, context.Canceled)
	_, err = c.UpdateFunctionImage(ctx, "resizer", "111.dkr.ecr.us-east-1.amazonaws.com/app:v2")
	require.ErrorIs(t, err, context.Canceled)
}
