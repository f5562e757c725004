package redeploy

import (
	"context"
	"iter"

	"github.com/akuity/redeployer/internal/image"
	"github.com/akuity/redeployer/internal/workload"
)

// ServiceAPI is read and write access to the ECS control plane.
type ServiceAPI interface {
	// Clusters lazily enumerates cluster identifiers. Enumeration stops at the
	// first error, which is yielded.
	Clusters(ctx context.Context) iter.Seq2[string, error]
	// ServicePages lazily enumerates the services of a cluster, pageSize at a
	// time, with their tags populated. Enumeration stops at the first error,
	// which is yielded.
	ServicePages(
		ctx context.Context,
		cluster string,
		pageSize int32,
	) iter.Seq2[[]workload.Service, error]
	// TaskDefinition describes a task definition by family:revision or ARN.
	TaskDefinition(ctx context.Context, ref string) (workload.TaskDefinition, error)
	// ForceNewDeployment restarts the tasks of a service against its current
	// task definition and returns the ID of the new deployment.
	ForceNewDeployment(ctx context.Context, cluster, service string) (string, error)
}

// FunctionAPI is read and write access to the Lambda control plane.
type FunctionAPI interface {
	// Functions lazily enumerates all functions, fetching pageSize at a time.
	// Tags and ImageURI are not populated. Enumeration stops at the first
	// error, which is yielded.
	Functions(ctx context.Context, pageSize int32) iter.Seq2[workload.Function, error]
	// GetFunction describes a function, including its tags and current image.
	GetFunction(ctx context.Context, arn string) (workload.Function, error)
	// ListTags returns the tags of a function.
	ListTags(ctx context.Context, arn string) (map[string]string, error)
	// UpdateFunctionImage points a function at imageURI, publishes a new
	// version, and returns that version.
	UpdateFunctionImage(ctx context.Context, name, imageURI string) (string, error)
}

// IdentityResolver resolves the account and region the redeployer runs in.
type IdentityResolver interface {
	InvocationContext(ctx context.Context) (image.InvocationContext, error)
}

// ImageVerifier checks that a tagged image exists in its registry.
type ImageVerifier interface {
	ImageExists(ctx context.Context, ref image.Reference) (bool, error)
}
