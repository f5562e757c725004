package redeploy

import (
	"context"
	"iter"

	"github.com/akuity/redeployer/internal/image"
	"github.com/akuity/redeployer/internal/workload"
)

// MockServiceAPI is a mock implementation of the ServiceAPI interface that can
// be used to facilitate unit testing.
type MockServiceAPI struct {
	ClustersFn     func(context.Context) iter.Seq2[string, error]
	ServicePagesFn func(
		ctx context.Context,
		cluster string,
		pageSize int32,
	) iter.Seq2[[]workload.Service, error]
	TaskDefinitionFn     func(ctx context.Context, ref string) (workload.TaskDefinition, error)
	ForceNewDeploymentFn func(ctx context.Context, cluster, service string) (string, error)
}

// Clusters implements the ServiceAPI interface.
func (m *MockServiceAPI) Clusters(ctx context.Context) iter.Seq2[string, error] {
	if m.ClustersFn == nil {
		return func(func(string, error) bool) {}
	}
	return m.ClustersFn(ctx)
}

// ServicePages implements the ServiceAPI interface.
func (m *MockServiceAPI) ServicePages(
	ctx context.Context,
	cluster string,
	pageSize int32,
) iter.Seq2[[]workload.Service, error] {
	if m.ServicePagesFn == nil {
		return func(func([]workload.Service, error) bool) {}
	}
	return m.ServicePagesFn(ctx, cluster, pageSize)
}

// TaskDefinition implements the ServiceAPI interface.
func (m *MockServiceAPI) TaskDefinition(
	ctx context.Context,
	ref string,
) (workload.TaskDefinition, error) {
	return m.TaskDefinitionFn(ctx, ref)
}

// ForceNewDeployment implements the ServiceAPI interface.
func (m *MockServiceAPI) ForceNewDeployment(
	ctx context.Context,
	cluster string,
	service string,
) (string, error) {
	return m.ForceNewDeploymentFn(ctx, cluster, service)
}

// MockFunctionAPI is a mock implementation of the FunctionAPI interface that
// can be used to facilitate unit testing.
type MockFunctionAPI struct {
	FunctionsFn func(
		ctx context.Context,
		pageSize int32,
	) iter.Seq2[workload.Function, error]
	GetFunctionFn         func(ctx context.Context, arn string) (workload.Function, error)
	ListTagsFn            func(ctx context.Context, arn string) (map[string]string, error)
	UpdateFunctionImageFn func(ctx context.Context, name, imageURI string) (string, error)
}

// Functions implements the FunctionAPI interface.
func (m *MockFunctionAPI) Functions(
	ctx context.Context,
	pageSize int32,
) iter.Seq2[workload.Function, error] {
	if m.FunctionsFn == nil {
		return func(func(workload.Function, error) bool) {}
	}
	return m.FunctionsFn(ctx, pageSize)
}

// GetFunction implements the FunctionAPI interface.
func (m *MockFunctionAPI) GetFunction(
	ctx context.Context,
	arn string,
) (workload.Function, error) {
	return m.GetFunctionFn(ctx, arn)
}

// ListTags implements the FunctionAPI interface.
func (m *MockFunctionAPI) ListTags(
	ctx context.Context,
	arn string,
) (map[string]string, error) {
	return m.ListTagsFn(ctx, arn)
}

// UpdateFunctionImage implements the FunctionAPI interface.
func (m *MockFunctionAPI) UpdateFunctionImage(
	ctx context.Context,
	name string,
	imageURI string,
) (string, error) {
	return m.UpdateFunctionImageFn(ctx, name, imageURI)
}

// MockIdentityResolver is a mock implementation of the IdentityResolver
// interface that can be used to facilitate unit testing.
type MockIdentityResolver struct {
	InvocationContextFn func(context.Context) (image.InvocationContext, error)
}

// InvocationContext implements the IdentityResolver interface.
func (m *MockIdentityResolver) InvocationContext(
	ctx context.Context,
) (image.InvocationContext, error) {
	return m.InvocationContextFn(ctx)
}
