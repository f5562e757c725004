package redeploy

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/akuity/redeployer/internal/config"
	"github.com/akuity/redeployer/internal/image"
	"github.com/akuity/redeployer/internal/logging"
	"github.com/akuity/redeployer/internal/workload"
)

// FunctionReconciler updates opted-in, image-packaged Lambda functions whose
// current image is a pushed image.
type FunctionReconciler struct {
	api            FunctionAPI
	tagKey         string
	tagSource      config.FunctionTagSource
	pageSize       int32
	maxConcurrency int

	// describeFn sources the tags and current image of a function according
	// to tagSource.
	describeFn func(
		ctx context.Context,
		fn workload.Function,
	) (workload.Function, Status, *RemoteError)
}

// NewFunctionReconciler returns a FunctionReconciler that reads and mutates
// functions through the provided FunctionAPI.
func NewFunctionReconciler(
	api FunctionAPI,
	tagKey string,
	tagSource config.FunctionTagSource,
	pageSize int32,
	maxConcurrency int,
) *FunctionReconciler {
	r := &FunctionReconciler{
		api:            api,
		tagKey:         tagKey,
		tagSource:      tagSource,
		pageSize:       pageSize,
		maxConcurrency: maxConcurrency,
	}
	switch tagSource {
	case config.FunctionTagSourceTags:
		r.describeFn = r.describeWithListTags
	default:
		r.describeFn = r.describeWithGetFunction
	}
	return r
}

// Reconcile updates the code of every opted-in, image-packaged function whose
// current image is ref and publishes a new version. One Outcome is returned
// per image-packaged function visited. The returned error reports a failure
// to enumerate functions; it never reflects the failure of an individual
// function.
func (r *FunctionReconciler) Reconcile(
	ctx context.Context,
	ref image.Reference,
) ([]Outcome, error) {
	rec := &recorder{}
	workers := &errgroup.Group{}
	workers.SetLimit(r.maxConcurrency)

	var err error
	for fn, listErr := range r.api.Functions(ctx, r.pageSize) {
		if listErr != nil {
			err = fmt.Errorf("error listing functions: %w", listErr)
			break
		}
		if fn.PackageType != workload.PackageTypeImage {
			continue
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("stopped reconciling functions: %w", ctxErr)
			break
		}
		workers.Go(func() error {
			rec.add(r.reconcileFunction(ctx, fn, ref))
			return nil
		})
	}
	// Workers never return errors; failures are recorded as Outcomes.
	_ = workers.Wait()

	return rec.sorted(), err
}

// reconcileFunction decides, and if necessary triggers, the update of a
// single image-packaged function.
func (r *FunctionReconciler) reconcileFunction(
	ctx context.Context,
	fn workload.Function,
	ref image.Reference,
) Outcome {
	logger := logging.LoggerFromContext(ctx).WithValues("function", fn.Name)
	out := Outcome{
		Kind:     TargetKindFunction,
		TargetID: fn.Name,
	}

	described, status, remoteErr := r.describeFn(ctx, fn)
	if remoteErr != nil {
		out.fail(remoteErr)
		logger.Error(out.Err, "error evaluating function")
		return out
	}
	if status != "" {
		out.Status = status
		logger.Trace("function skipped", "status", status)
		return out
	}
	if described.ImageURI == "" || !ref.Matches(described.ImageURI) {
		logger.Debug("function does not reference image", "image", described.ImageURI)
		out.Status = StatusSkippedNoMatch
		return out
	}

	logger.Info("redeploying function")
	version, err := r.api.UpdateFunctionImage(ctx, fn.Name, ref.String())
	if err != nil {
		out.fail(writeFailure("updating function code", err))
		logger.Error(out.Err, "error redeploying function")
		return out
	}
	out.Status = StatusTriggered
	out.Revision = version
	logger.Debug("published new function version", "version", version)
	return out
}

// describeWithGetFunction sources tags and the current image from a single
// GetFunction call. A non-empty Status means the function is settled without
// inspecting its image.
func (r *FunctionReconciler) describeWithGetFunction(
	ctx context.Context,
	fn workload.Function,
) (workload.Function, Status, *RemoteError) {
	described, err := r.api.GetFunction(ctx, fn.ARN)
	if err != nil {
		return fn, "", readFailure("getting function", err)
	}
	if !workload.OptedIn(described.Tags, r.tagKey) {
		return described, StatusSkippedNotOptedIn, nil
	}
	return described, "", nil
}

// describeWithListTags sources tags from ListTags and only describes the
// function if it is opted in.
func (r *FunctionReconciler) describeWithListTags(
	ctx context.Context,
	fn workload.Function,
) (workload.Function, Status, *RemoteError) {
	tags, err := r.api.ListTags(ctx, fn.ARN)
	if err != nil {
		return fn, "", readFailure("listing function tags", err)
	}
	if !workload.OptedIn(tags, r.tagKey) {
		fn.Tags = tags
		return fn, StatusSkippedNotOptedIn, nil
	}
	described, err := r.api.GetFunction(ctx, fn.ARN)
	if err != nil {
		return fn, "", readFailure("getting function", err)
	}
	described.Tags = tags
	return described, "", nil
}
