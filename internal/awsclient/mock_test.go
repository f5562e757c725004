package awsclient

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

type mockECSAPI struct {
	ListClustersFn func(
		context.Context,
		*ecs.ListClustersInput,
	) (*ecs.ListClustersOutput, error)
	ListServicesFn func(
		context.Context,
		*ecs.ListServicesInput,
	) (*ecs.ListServicesOutput, error)
	DescribeServicesFn func(
		context.Context,
		*ecs.DescribeServicesInput,
	) (*ecs.DescribeServicesOutput, error)
	DescribeTaskDefinitionFn func(
		context.Context,
		*ecs.DescribeTaskDefinitionInput,
	) (*ecs.DescribeTaskDefinitionOutput, error)
	UpdateServiceFn func(
		context.Context,
		*ecs.UpdateServiceInput,
	) (*ecs.UpdateServiceOutput, error)
}

func (m *mockECSAPI) ListClusters(
	ctx context.Context,
	params *ecs.ListClustersInput,
	_ ...func(*ecs.Options),
) (*ecs.ListClustersOutput, error) {
	return m.ListClustersFn(ctx, params)
}

func (m *mockECSAPI) ListServices(
	ctx context.Context,
	params *ecs.ListServicesInput,
	_ ...func(*ecs.Options),
) (*ecs.ListServicesOutput, error) {
	return m.ListServicesFn(ctx, params)
}

func (m *mockECSAPI) DescribeServices(
	ctx context.Context,
	params *ecs.DescribeServicesInput,
	_ ...func(*ecs.Options),
) (*ecs.DescribeServicesOutput, error) {
	return m.DescribeServicesFn(ctx, params)
}

func (m *mockECSAPI) DescribeTaskDefinition(
	ctx context.Context,
	params *ecs.DescribeTaskDefinitionInput,
	_ ...func(*ecs.Options),
) (*ecs.DescribeTaskDefinitionOutput, error) {
	return m.DescribeTaskDefinitionFn(ctx, params)
}

func (m *mockECSAPI) UpdateService(
	ctx context.Context,
	params *ecs.UpdateServiceInput,
	_ ...func(*ecs.Options),
) (*ecs.UpdateServiceOutput, error) {
	return m.UpdateServiceFn(ctx, params)
}

type mockLambdaAPI struct {
	ListFunctionsFn func(
		context.Context,
		*lambda.ListFunctionsInput,
	) (*lambda.ListFunctionsOutput, error)
	GetFunctionFn func(
		context.Context,
		*lambda.GetFunctionInput,
	) (*lambda.GetFunctionOutput, error)
	ListTagsFn func(
		context.Context,
		*lambda.ListTagsInput,
	) (*lambda.ListTagsOutput, error)
	UpdateFunctionCodeFn func(
		context.Context,
		*lambda.UpdateFunctionCodeInput,
	) (*lambda.UpdateFunctionCodeOutput, error)
}

func (m *mockLambdaAPI) ListFunctions(
	ctx context.Context,
	params *lambda.ListFunctionsInput,
	_ ...func(*lambda.Options),
) (*lambda.ListFunctionsOutput, error) {
	return m.ListFunctionsFn(ctx, params)
}

func (m *mockLambdaAPI) GetFunction(
	ctx context.Context,
	params *lambda.GetFunctionInput,
	_ ...func(*lambda.Options),
) (*lambda.GetFunctionOutput, error) {
	return m.GetFunctionFn(ctx, params)
}

func (m *mockLambdaAPI) ListTags(
	ctx context.Context,
	params *lambda.ListTagsInput,
	_ ...func(*lambda.Options),
) (*lambda.ListTagsOutput, error) {
	return m.ListTagsFn(ctx, params)
}

func (m *mockLambdaAPI) UpdateFunctionCode(
	ctx context.Context,
	params *lambda.UpdateFunctionCodeInput,
	_ ...func(*lambda.Options),
) (*lambda.UpdateFunctionCodeOutput, error) {
	return m.UpdateFunctionCodeFn(ctx, params)
}

type mockSTSAPI struct {
	GetCallerIdentityFn func(
		context.Context,
		*sts.GetCallerIdentityInput,
	) (*sts.GetCallerIdentityOutput, error)
}

func (m *mockSTSAPI) GetCallerIdentity(
	ctx context.Context,
	params *sts.GetCallerIdentityInput,
	_ ...func(*sts.Options),
) (*sts.GetCallerIdentityOutput, error) {
	return m.GetCallerIdentityFn(ctx, params)
}

type mockECRAPI struct {
	DescribeImagesFn func(
		context.Context,
		*ecr.DescribeImagesInput,
	) (*ecr.DescribeImagesOutput, error)
}

func (m *mockECRAPI) DescribeImages(
	ctx context.Context,
	params *ecr.DescribeImagesInput,
	_ ...func(*ecr.Options),
) (*ecr.DescribeImagesOutput, error) {
	return m.DescribeImagesFn(ctx, params)
}
