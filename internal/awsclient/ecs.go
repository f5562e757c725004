package awsclient

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/arn"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"
	"go.uber.org/ratelimit"

	"github.com/akuity/redeployer/internal/logging"
	"github.com/akuity/redeployer/internal/workload"
)

// ECSAPI is the subset of the ECS client used by ServiceClient.
type ECSAPI interface {
	ListClusters(
		ctx context.Context,
		params *ecs.ListClustersInput,
		optFns ...func(*ecs.Options),
	) (*ecs.ListClustersOutput, error)
	ListServices(
		ctx context.Context,
		params *ecs.ListServicesInput,
		optFns ...func(*ecs.Options),
	) (*ecs.ListServicesOutput, error)
	DescribeServices(
		ctx context.Context,
		params *ecs.DescribeServicesInput,
		optFns ...func(*ecs.Options),
	) (*ecs.DescribeServicesOutput, error)
	DescribeTaskDefinition(
		ctx context.Context,
		params *ecs.DescribeTaskDefinitionInput,
		optFns ...func(*ecs.Options),
	) (*ecs.DescribeTaskDefinitionOutput, error)
	UpdateService(
		ctx context.Context,
		params *ecs.UpdateServiceInput,
		optFns ...func(*ecs.Options),
	) (*ecs.UpdateServiceOutput, error)
}

// ServiceClient reads and mutates ECS services. It implements the
// redeploy.ServiceAPI interface.
type ServiceClient struct {
	api     ECSAPI
	limiter ratelimit.Limiter
}

// NewServiceClient returns a ServiceClient for the ECS control plane of the
// account and region cfg points at.
func NewServiceClient(cfg aws.Config, limiter ratelimit.Limiter) *ServiceClient {
	return &ServiceClient{
		api:     ecs.NewFromConfig(cfg),
		limiter: limiter,
	}
}

// Clusters lazily enumerates the names of all clusters.
func (c *ServiceClient) Clusters(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		pages := ecs.NewListClustersPaginator(c.api, &ecs.ListClustersInput{})
		for pages.HasMorePages() {
			if err := wait(ctx, c.limiter); err != nil {
				yield("", err)
				return
			}
			page, err := pages.NextPage(ctx)
			if err != nil {
				yield("", err)
				return
			}
			for _, clusterARN := range page.ClusterArns {
				if !yield(clusterName(clusterARN), nil) {
					return
				}
			}
		}
	}
}

// ServicePages lazily enumerates the services of a cluster, describing each
// page of service ARNs, tags included, as it is listed.
func (c *ServiceClient) ServicePages(
	ctx context.Context,
	cluster string,
	pageSize int32,
) iter.Seq2[[]workload.Service, error] {
	return func(yield func([]workload.Service, error) bool) {
		pages := ecs.NewListServicesPaginator(c.api, &ecs.ListServicesInput{
			Cluster:    aws.String(cluster),
			MaxResults: aws.Int32(pageSize),
		})
		for pages.HasMorePages() {
			if err := wait(ctx, c.limiter); err != nil {
				yield(nil, err)
				return
			}
			page, err := pages.NextPage(ctx)
			if err != nil {
				yield(nil, err)
				return
			}
			if len(page.ServiceArns) == 0 {
				continue
			}
			services, err := c.describeServices(ctx, cluster, page.ServiceArns)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(services, nil) {
				return
			}
		}
	}
}

func (c *ServiceClient) describeServices(
	ctx context.Context,
	cluster string,
	serviceARNs []string,
) ([]workload.Service, error) {
	if err := wait(ctx, c.limiter); err != nil {
		return nil, err
	}
	out, err := c.api.DescribeServices(ctx, &ecs.DescribeServicesInput{
		Cluster:  aws.String(cluster),
		Services: serviceARNs,
		Include:  []ecstypes.ServiceField{ecstypes.ServiceFieldTags},
	})
	if err != nil {
		return nil, fmt.Errorf("error describing services: %w", err)
	}
	services := make([]workload.Service, 0, len(out.Services)+len(out.Failures))
	for _, svc := range out.Services {
		services = append(services, workload.Service{
			Cluster:        cluster,
			Name:           aws.ToString(svc.ServiceName),
			ARN:            aws.ToString(svc.ServiceArn),
			TaskDefinition: aws.ToString(svc.TaskDefinition),
			Tags:           ecsTags(svc.Tags),
		})
	}
	if len(out.Failures) > 0 {
		logger := logging.LoggerFromContext(ctx).WithValues("cluster", cluster)
		for _, f := range out.Failures {
			serviceARN := aws.ToString(f.Arn)
			reason := aws.ToString(f.Reason)
			logger.Debug(
				"service could not be described",
				"service", serviceARN,
				"reason", reason,
			)
			services = append(services, workload.Service{
				Cluster:     cluster,
				Name:        serviceName(serviceARN),
				ARN:         serviceARN,
				Unavailable: cmp.Or(reason, "unknown failure"),
			})
		}
	}
	return services, nil
}

// TaskDefinition describes a task definition and returns the images of its
// containers.
func (c *ServiceClient) TaskDefinition(
	ctx context.Context,
	ref string,
) (workload.TaskDefinition, error) {
	if err := wait(ctx, c.limiter); err != nil {
		return workload.TaskDefinition{}, err
	}
	out, err := c.api.DescribeTaskDefinition(ctx, &ecs.DescribeTaskDefinitionInput{
		TaskDefinition: aws.String(ref),
	})
	if err != nil {
		return workload.TaskDefinition{}, err
	}
	if out.TaskDefinition == nil {
		return workload.TaskDefinition{}, fmt.Errorf("task definition %q not found", ref)
	}
	taskDef := workload.TaskDefinition{
		Ref:             aws.ToString(out.TaskDefinition.TaskDefinitionArn),
		ContainerImages: make([]string, 0, len(out.TaskDefinition.ContainerDefinitions)),
	}
	for _, container := range out.TaskDefinition.ContainerDefinitions {
		if container.Image != nil {
			taskDef.ContainerImages = append(taskDef.ContainerImages, *container.Image)
		}
	}
	return taskDef, nil
}

// ForceNewDeployment starts a new deployment of a service using its current
// task definition and returns the ID of the resulting primary deployment.
func (c *ServiceClient) ForceNewDeployment(
	ctx context.Context,
	cluster string,
	service string,
) (string, error) {
	if err := wait(ctx, c.limiter); err != nil {
		return "", err
	}
	out, err := c.api.UpdateService(ctx, &ecs.UpdateServiceInput{
		Cluster:            aws.String(cluster),
		Service:            aws.String(service),
		ForceNewDeployment: true,
	})
	if err != nil {
		return "", err
	}
	if out.Service == nil {
		return "", errors.New("update returned no service")
	}
	for _, deployment := range out.Service.Deployments {
		if aws.ToString(deployment.Status) == "PRIMARY" {
			return aws.ToString(deployment.Id), nil
		}
	}
	return "", nil
}

// clusterName returns the name of the cluster identified by clusterARN. If
// clusterARN cannot be parsed it is returned unchanged; the ECS API accepts
// either form.
func clusterName(clusterARN string) string {
	parsed, err := arn.Parse(clusterARN)
	if err != nil {
		return clusterARN
	}
	return strings.TrimPrefix(parsed.Resource, "cluster/")
}

// serviceName returns the last path segment of serviceARN, which is the
// service name in both the short and long ARN formats.
func serviceName(serviceARN string) string {
	parsed, err := arn.Parse(serviceARN)
	if err != nil {
		return serviceARN
	}
	return parsed.Resource[strings.LastIndex(parsed.Resource, "/")+1:]
}

func ecsTags(tags []ecstypes.Tag) map[string]string {
	m := make(map[string]string, len(tags))
	for _, tag := range tags {
		if tag.Key != nil {
			m[*tag.Key] = aws.ToString(tag.Value)
		}
	}
	return m
}
