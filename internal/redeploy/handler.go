package redeploy

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/akuity/redeployer/internal/config"
	"github.com/akuity/redeployer/internal/event"
	"github.com/akuity/redeployer/internal/image"
	"github.com/akuity/redeployer/internal/logging"
)

// Handler is the entry point for a single redeployment invocation.
type Handler struct {
	cfg       config.Config
	validator event.Validator
	identity  IdentityResolver
	verifier  ImageVerifier

	// The following behaviors are overridable for testing purposes:

	reconcileServicesFn func(context.Context, image.Reference) ([]Outcome, error)

	reconcileFunctionsFn func(context.Context, image.Reference) ([]Outcome, error)
}

// NewHandler returns a Handler that reconciles services through services and
// functions through functions. identity is consulted only when an image must
// be resolved against the account and region the redeployer runs in.
func NewHandler(
	cfg config.Config,
	services ServiceAPI,
	functions FunctionAPI,
	identity IdentityResolver,
) *Handler {
	return &Handler{
		cfg: cfg,
		validator: event.Validator{
			DetailType:    cfg.EventDetailType,
			SuccessResult: cfg.EventSuccessResult,
		},
		identity: identity,
		reconcileServicesFn: NewServiceReconciler(
			services,
			cfg.TagKey,
			cfg.ServicePageSize,
			cfg.MaxConcurrency,
		).Reconcile,
		reconcileFunctionsFn: NewFunctionReconciler(
			functions,
			cfg.TagKey,
			cfg.FunctionTagSource,
			cfg.FunctionPageSize,
			cfg.MaxConcurrency,
		).Reconcile,
	}
}

// WithImageVerifier makes RedeployServices confirm that the requested image
// exists before redeploying anything.
func (h *Handler) WithImageVerifier(v ImageVerifier) *Handler {
	h.verifier = v
	return h
}

// Handle reacts to a raw image push event. If the event is not a successful
// image push notification, an error wrapping event.ErrRejected is returned
// and no remote calls are made. Otherwise services and functions are
// reconciled concurrently and a Result is always returned.
func (h *Handler) Handle(ctx context.Context, raw events.EventBridgeEvent) (*Result, error) {
	logger := logging.LoggerFromContext(ctx)

	evt, err := h.validator.Validate(raw)
	if err != nil {
		logger.Info("rejecting event", "reason", err.Error())
		return nil, err
	}

	res := &Result{
		InvocationID: uuid.NewString(),
		Event:        &evt,
	}
	logger = logger.WithValues(
		"invocation", res.InvocationID,
		"repository", evt.RepositoryName,
		"tag", evt.ImageTag,
	)
	ctx = logging.ContextWithLogger(ctx, logger)
	logger.Info(
		"received image push",
		"registryAccount", evt.RegistryAccount,
		"registryRegion", evt.RegistryRegion,
		"serviceStrategy", h.cfg.ServiceImageStrategy,
		"functionStrategy", h.cfg.FunctionImageStrategy,
	)

	var ictx image.InvocationContext
	var ictxErr error
	if h.cfg.NeedsInvocationContext() {
		if ictx, ictxErr = h.identity.InvocationContext(ctx); ictxErr != nil {
			logger.Error(ictxErr, "error resolving invocation context")
		}
	}
	resolve := func(strategy image.Strategy) (image.Reference, error) {
		if strategy == image.StrategyLocal && ictxErr != nil {
			return image.Reference{}, fmt.Errorf(
				"error resolving invocation context: %w", ictxErr,
			)
		}
		return strategy.Resolve(evt.ImageSource(), ictx)
	}

	// The two branches read and write disjoint fields of res.
	branches := &errgroup.Group{}
	branches.Go(func() error {
		ref, err := resolve(h.cfg.ServiceImageStrategy)
		if err != nil {
			res.ServiceErr = fmt.Errorf("error resolving service image: %w", err)
			return nil
		}
		res.ServiceImage = ref.String()
		logger.Info("reconciling services", "image", res.ServiceImage)
		res.ServiceOutcomes, res.ServiceErr = h.reconcileServicesFn(ctx, ref)
		return nil
	})
	branches.Go(func() error {
		ref, err := resolve(h.cfg.FunctionImageStrategy)
		if err != nil {
			res.FunctionErr = fmt.Errorf("error resolving function image: %w", err)
			return nil
		}
		res.FunctionImage = ref.String()
		logger.Info("reconciling functions", "image", res.FunctionImage)
		res.FunctionOutcomes, res.FunctionErr = h.reconcileFunctionsFn(ctx, ref)
		return nil
	})
	_ = branches.Wait()

	logResult(logger, res)
	return res, nil
}

// RedeployServices forces a new deployment of every opted-in service that
// references imageRef. imageRef is either host/repository:tag or
// repository:tag; the latter is completed with the ECR registry of the
// account and region the redeployer runs in. No event validation and no
// function reconciliation take place.
func (h *Handler) RedeployServices(ctx context.Context, imageRef string) (*Result, error) {
	ref, err := image.ParseReference(imageRef)
	if err != nil {
		return nil, err
	}
	if ref.Host == "" {
		ictx, err := h.identity.InvocationContext(ctx)
		if err != nil {
			return nil, fmt.Errorf("error resolving invocation context: %w", err)
		}
		ref = ref.WithHost(image.ECRHost(ictx.Account, ictx.Region))
	}

	res := &Result{
		InvocationID: uuid.NewString(),
		ServiceImage: ref.String(),
	}
	logger := logging.LoggerFromContext(ctx).WithValues(
		"invocation", res.InvocationID,
		"image", res.ServiceImage,
	)
	ctx = logging.ContextWithLogger(ctx, logger)

	if h.verifier != nil {
		exists, err := h.verifier.ImageExists(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("error verifying image %q: %w", ref, err)
		}
		if !exists {
			return nil, fmt.Errorf("image %q does not exist", ref)
		}
		logger.Debug("verified image exists")
	}

	logger.Info("redeploying services")
	res.ServiceOutcomes, res.ServiceErr = h.reconcileServicesFn(ctx, ref)
	logResult(logger, res)
	return res, nil
}

func logResult(logger *logging.Logger, res *Result) {
	counts := res.Counts()
	keysAndValues := []any{
		"triggered", counts[StatusTriggered],
		"noMatch", counts[StatusSkippedNoMatch],
		"notOptedIn", counts[StatusSkippedNotOptedIn],
		"failed", counts[StatusFailed],
	}
	if res.ServiceErr != nil {
		logger.Error(res.ServiceErr, "service reconciliation incomplete")
	}
	if res.FunctionErr != nil {
		logger.Error(res.FunctionErr, "function reconciliation incomplete")
	}
	logger.Info("invocation complete", keysAndValues...)
}
