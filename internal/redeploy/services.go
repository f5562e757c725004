package redeploy

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/akuity/redeployer/internal/image"
	"github.com/akuity/redeployer/internal/logging"
	"github.com/akuity/redeployer/internal/workload"
)

// ServiceReconciler redeploys opted-in ECS services whose task definitions
// reference a pushed image.
type ServiceReconciler struct {
	api            ServiceAPI
	tagKey         string
	pageSize       int32
	maxConcurrency int
}

// NewServiceReconciler returns a ServiceReconciler that reads and mutates
// services through the provided ServiceAPI.
func NewServiceReconciler(
	api ServiceAPI,
	tagKey string,
	pageSize int32,
	maxConcurrency int,
) *ServiceReconciler {
	return &ServiceReconciler{
		api:            api,
		tagKey:         tagKey,
		pageSize:       pageSize,
		maxConcurrency: maxConcurrency,
	}
}

// Reconcile forces a new deployment of every opted-in service, in every
// cluster, whose task definition references ref. One Outcome is returned per
// service visited. The returned error reports clusters or pages that could
// not be enumerated; it never reflects the failure of an individual service.
func (r *ServiceReconciler) Reconcile(
	ctx context.Context,
	ref image.Reference,
) ([]Outcome, error) {
	rec := &recorder{}
	workers := &errgroup.Group{}
	workers.SetLimit(r.maxConcurrency)

	var errs []error
	for cluster, err := range r.api.Clusters(ctx) {
		if err != nil {
			errs = append(errs, fmt.Errorf("error listing clusters: %w", err))
			break
		}
		if err = r.reconcileCluster(ctx, workers, rec, cluster, ref); err != nil {
			errs = append(errs, err)
			if ctx.Err() != nil {
				break
			}
		}
	}
	// Workers never return errors; failures are recorded as Outcomes.
	_ = workers.Wait()

	return rec.sorted(), errors.Join(errs...)
}

// reconcileCluster walks the services of one cluster page by page, handing
// opted-in services to the worker pool. An error ends the walk of this
// cluster only.
func (r *ServiceReconciler) reconcileCluster(
	ctx context.Context,
	workers *errgroup.Group,
	rec *recorder,
	cluster string,
	ref image.Reference,
) error {
	logger := logging.LoggerFromContext(ctx).WithValues("cluster", cluster)
	var count int
	for page, err := range r.api.ServicePages(ctx, cluster, r.pageSize) {
		if err != nil {
			return fmt.Errorf("error listing services in cluster %q: %w", cluster, err)
		}
		for _, svc := range page {
			if err = ctx.Err(); err != nil {
				return fmt.Errorf("stopped reconciling cluster %q: %w", cluster, err)
			}
			count++
			if svc.Unavailable != "" {
				out := Outcome{
					Kind:     TargetKindService,
					TargetID: svc.Name,
					Cluster:  svc.Cluster,
				}
				out.fail(readFailure("describing service", errors.New(svc.Unavailable)))
				logger.Error(out.Err, "error evaluating service", "service", svc.Name)
				rec.add(out)
				continue
			}
			if !workload.OptedIn(svc.Tags, r.tagKey) {
				logger.Trace("service not opted in", "service", svc.Name)
				rec.add(Outcome{
					Kind:     TargetKindService,
					TargetID: svc.Name,
					Cluster:  svc.Cluster,
					Status:   StatusSkippedNotOptedIn,
				})
				continue
			}
			workers.Go(func() error {
				rec.add(r.reconcileService(ctx, svc, ref))
				return nil
			})
		}
	}
	logger.Debug("enumerated services", "count", count)
	return nil
}

// reconcileService decides, and if necessary triggers, the redeployment of a
// single opted-in service.
func (r *ServiceReconciler) reconcileService(
	ctx context.Context,
	svc workload.Service,
	ref image.Reference,
) Outcome {
	logger := logging.LoggerFromContext(ctx).WithValues(
		"cluster", svc.Cluster,
		"service", svc.Name,
	)
	out := Outcome{
		Kind:     TargetKindService,
		TargetID: svc.Name,
		Cluster:  svc.Cluster,
	}

	taskDef, err := r.api.TaskDefinition(ctx, svc.TaskDefinition)
	if err != nil {
		out.fail(readFailure(
			fmt.Sprintf("describing task definition %q", svc.TaskDefinition),
			err,
		))
		logger.Error(out.Err, "error evaluating service")
		return out
	}
	if !slices.ContainsFunc(taskDef.ContainerImages, ref.Matches) {
		logger.Debug(
			"service does not reference image",
			"taskDefinition", taskDef.Ref,
			"images", taskDef.ContainerImages,
		)
		out.Status = StatusSkippedNoMatch
		return out
	}

	logger.Info("redeploying service", "taskDefinition", taskDef.Ref)
	deploymentID, err := r.api.ForceNewDeployment(ctx, svc.Cluster, svc.Name)
	if err != nil {
		out.fail(writeFailure("forcing new deployment", err))
		logger.Error(out.Err, "error redeploying service")
		return out
	}
	out.Status = StatusTriggered
	out.Revision = deploymentID
	logger.Debug("triggered new deployment", "deployment", deploymentID)
	return out
}
